package dashboard

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gin-gonic/gin"

	"ogc-reserve-cli/logging"
	ogc_reserve "ogc-reserve-cli/solana"
)

type errorResponse struct {
	Error string `json:"error"`
}

// TokenAmount carries both the raw base units and the display value.
type TokenAmount struct {
	Amount   uint64 `json:"amount"`
	UiAmount string `json:"ui_amount"`
}

func amount(v uint64, decimals uint8) TokenAmount {
	return TokenAmount{Amount: v, UiAmount: ogc_reserve.FormatAmount(v, decimals)}
}

type HealthResponse struct {
	Status string `json:"status"`
	Uptime string `json:"uptime"`
}

type GlobalResponse struct {
	Initialized    bool        `json:"initialized"`
	Authority      string      `json:"authority,omitempty"`
	Epoch          uint64      `json:"epoch"`
	EpochEndTime   time.Time   `json:"epoch_end_time"`
	EpochLength    uint64      `json:"epoch_length"`
	EpochLockTime  uint64      `json:"epoch_lock_time"`
	RewardPercent  uint64      `json:"reward_percent"`
	ProgramBalance TokenAmount `json:"program_balance"`
}

type BalanceResponse struct {
	Address string      `json:"address"`
	Sol     TokenAmount `json:"sol"`
	Ogc     TokenAmount `json:"ogc"`
	Ogg     TokenAmount `json:"ogg"`
}

type LockResponse struct {
	Address string      `json:"address"`
	Locked  TokenAmount `json:"locked"`
}

type LockEntry struct {
	Address     string      `json:"address"`
	Epoch       uint64      `json:"epoch"`
	UnlockEpoch uint64      `json:"unlock_epoch"`
	Amount      TokenAmount `json:"amount"`
}

type UnlockResponse struct {
	Epoch    uint64      `json:"epoch"`
	Accounts []LockEntry `json:"accounts"`
	Total    TokenAmount `json:"total"`
}

type ClaimableResponse struct {
	Epoch  uint64      `json:"epoch"`
	Reward TokenAmount `json:"reward"`
	Epochs []uint64    `json:"epochs"`
}

type VoteResponse struct {
	Epoch  uint64   `json:"epoch"`
	Voted  bool     `json:"voted"`
	Fields []uint64 `json:"fields"`
}

const solDecimals = 9

func fail(c *gin.Context, status int, err error) {
	if status >= http.StatusInternalServerError {
		logging.Error("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	c.AbortWithStatusJSON(status, errorResponse{Error: err.Error()})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status: "healthy",
		Uptime: time.Since(s.startTime).Round(time.Second).String(),
	})
}

func (s *Server) handleGlobal(c *gin.Context) {
	ctx := c.Request.Context()
	global, err := s.reader.FetchGlobalData(ctx)
	if err != nil {
		fail(c, http.StatusBadGateway, err)
		return
	}
	balance, err := s.reader.GetProgramBalance(ctx)
	if err != nil {
		fail(c, http.StatusBadGateway, err)
		return
	}

	resp := GlobalResponse{ProgramBalance: amount(balance, s.config.OgcDecimals)}
	if global != nil {
		resp.Initialized = true
		resp.Authority = global.Authority.String()
		resp.Epoch = global.Epoch
		resp.EpochEndTime = time.Unix(global.EpochEndTime, 0).UTC()
		resp.EpochLength = global.EpochLength
		resp.EpochLockTime = global.EpochLockTime
		resp.RewardPercent = global.RewardPercent
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleProfiles(c *gin.Context) {
	if s.profiles == nil {
		c.JSON(http.StatusOK, []any{})
		return
	}
	wallets, err := s.profiles.GetAllWallets()
	if err != nil {
		fail(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, wallets)
}

func (s *Server) handleEpochVotes(c *gin.Context) {
	epoch, err := strconv.ParseUint(c.Param("epoch"), 10, 64)
	if err != nil {
		fail(c, http.StatusBadRequest, fmt.Errorf("invalid epoch %q", c.Param("epoch")))
		return
	}
	votes, err := s.reader.GetEpochVotes(c.Request.Context(), epoch)
	if errors.Is(err, ogc_reserve.ErrAccountNotFound) {
		fail(c, http.StatusNotFound, err)
		return
	}
	if err != nil {
		fail(c, http.StatusBadGateway, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"epoch": epoch, "votes": votes})
}

// resolveWallet accepts either a base58 address or a stored profile name.
func (s *Server) resolveWallet(c *gin.Context) (solana.PublicKey, bool) {
	param := c.Param("wallet")
	if pk, err := solana.PublicKeyFromBase58(param); err == nil {
		return pk, true
	}
	if s.profiles != nil {
		wallets, err := s.profiles.GetAllWallets()
		if err != nil {
			fail(c, http.StatusInternalServerError, err)
			return solana.PublicKey{}, false
		}
		for _, w := range wallets {
			if w.Name == param {
				return w.PublicKey, true
			}
		}
	}
	fail(c, http.StatusBadRequest, fmt.Errorf("%q is neither an address nor a profile", param))
	return solana.PublicKey{}, false
}

// epochParam reads ?epoch=, defaulting to the program's current epoch.
func (s *Server) epochParam(c *gin.Context) (uint64, bool) {
	if raw := c.Query("epoch"); raw != "" {
		epoch, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			fail(c, http.StatusBadRequest, fmt.Errorf("invalid epoch %q", raw))
			return 0, false
		}
		return epoch, true
	}
	global, err := s.reader.FetchGlobalData(c.Request.Context())
	if err != nil {
		fail(c, http.StatusBadGateway, err)
		return 0, false
	}
	if global == nil {
		return 0, true
	}
	return global.Epoch, true
}

func (s *Server) handleBalance(c *gin.Context) {
	owner, ok := s.resolveWallet(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	sol, err := s.reader.GetBalance(ctx, owner)
	if err != nil {
		fail(c, http.StatusBadGateway, err)
		return
	}
	ogc, err := s.reader.GetTokenBalance(ctx, owner, s.config.OgcMint)
	if err != nil {
		fail(c, http.StatusBadGateway, err)
		return
	}
	ogg, err := s.reader.GetTokenBalance(ctx, owner, s.config.OggMint)
	if err != nil {
		fail(c, http.StatusBadGateway, err)
		return
	}

	c.JSON(http.StatusOK, BalanceResponse{
		Address: owner.String(),
		Sol:     amount(sol, solDecimals),
		Ogc:     amount(ogc, s.config.OgcDecimals),
		Ogg:     amount(ogg, s.config.OggDecimals),
	})
}

func (s *Server) handleLockStatus(c *gin.Context) {
	owner, ok := s.resolveWallet(c)
	if !ok {
		return
	}
	locked, err := s.reader.GetLockStatus(c.Request.Context(), owner)
	if err != nil {
		fail(c, http.StatusBadGateway, err)
		return
	}
	c.JSON(http.StatusOK, LockResponse{Address: owner.String(), Locked: amount(locked, s.config.OggDecimals)})
}

func (s *Server) handleUnlockStatus(c *gin.Context) {
	owner, ok := s.resolveWallet(c)
	if !ok {
		return
	}
	epoch, ok := s.epochParam(c)
	if !ok {
		return
	}
	status, err := s.reader.GetUnlockStatus(c.Request.Context(), owner, epoch)
	if err != nil {
		fail(c, http.StatusBadGateway, err)
		return
	}

	resp := UnlockResponse{Epoch: epoch, Accounts: make([]LockEntry, 0, len(status.Accounts)), Total: amount(status.Amount, s.config.OggDecimals)}
	for _, l := range status.Accounts {
		resp.Accounts = append(resp.Accounts, LockEntry{
			Address:     l.PublicKey.String(),
			Epoch:       l.Account.Epoch,
			UnlockEpoch: l.Account.UnlockEpoch,
			Amount:      amount(l.Account.Amount, s.config.OggDecimals),
		})
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleClaimable(c *gin.Context) {
	owner, ok := s.resolveWallet(c)
	if !ok {
		return
	}
	epoch, ok := s.epochParam(c)
	if !ok {
		return
	}
	claimable, err := s.reader.GetClaimable(c.Request.Context(), owner, epoch)
	if err != nil {
		fail(c, http.StatusBadGateway, err)
		return
	}
	c.JSON(http.StatusOK, ClaimableResponse{
		Epoch:  epoch,
		Reward: amount(claimable.Amount, s.config.OgcDecimals),
		Epochs: claimable.Epochs,
	})
}

func (s *Server) handleMyVote(c *gin.Context) {
	owner, ok := s.resolveWallet(c)
	if !ok {
		return
	}
	epoch, err := strconv.ParseUint(c.Param("epoch"), 10, 64)
	if err != nil {
		fail(c, http.StatusBadRequest, fmt.Errorf("invalid epoch %q", c.Param("epoch")))
		return
	}
	vote, err := s.reader.GetMyVote(c.Request.Context(), owner, epoch)
	if err != nil {
		fail(c, http.StatusBadGateway, err)
		return
	}

	resp := VoteResponse{Epoch: epoch, Fields: []uint64{}}
	if vote != nil {
		resp.Voted = true
		resp.Fields = vote.Fields
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleHistory(c *gin.Context) {
	owner, ok := s.resolveWallet(c)
	if !ok {
		return
	}
	limit := 100
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			fail(c, http.StatusBadRequest, fmt.Errorf("invalid limit %q", raw))
			return
		}
		limit = n
	}
	history, err := s.reader.GetHistory(c.Request.Context(), owner, limit)
	if err != nil {
		fail(c, http.StatusBadGateway, err)
		return
	}
	c.JSON(http.StatusOK, history)
}

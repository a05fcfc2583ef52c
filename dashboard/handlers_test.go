package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ogc_reserve "ogc-reserve-cli/solana"
	"ogc-reserve-cli/storage"
)

type fakeReader struct {
	global    *ogc_reserve.GlobalDataAccount
	balance   uint64
	locked    uint64
	unlock    *ogc_reserve.UnlockStatus
	votes     map[uint64][]uint64
	myVote    *ogc_reserve.VoteAccount
	claimable *ogc_reserve.Claimable
	sol       uint64
	tokens    map[solana.PublicKey]uint64
	history   *ogc_reserve.HistoryResult
	err       error
	lastOwner solana.PublicKey
	lastEpoch uint64
	lastLimit int
}

func (f *fakeReader) FetchGlobalData(ctx context.Context) (*ogc_reserve.GlobalDataAccount, error) {
	return f.global, f.err
}

func (f *fakeReader) GetProgramBalance(ctx context.Context) (uint64, error) {
	return f.balance, f.err
}

func (f *fakeReader) GetLockStatus(ctx context.Context, owner solana.PublicKey) (uint64, error) {
	f.lastOwner = owner
	return f.locked, f.err
}

func (f *fakeReader) GetUnlockStatus(ctx context.Context, owner solana.PublicKey, epoch uint64) (*ogc_reserve.UnlockStatus, error) {
	f.lastOwner, f.lastEpoch = owner, epoch
	return f.unlock, f.err
}

func (f *fakeReader) GetEpochVotes(ctx context.Context, epoch uint64) ([]uint64, error) {
	if f.err != nil {
		return nil, f.err
	}
	votes, ok := f.votes[epoch]
	if !ok {
		return nil, fmt.Errorf("failed to fetch epoch %d: %w", epoch, ogc_reserve.ErrAccountNotFound)
	}
	return votes, nil
}

func (f *fakeReader) GetMyVote(ctx context.Context, owner solana.PublicKey, epoch uint64) (*ogc_reserve.VoteAccount, error) {
	f.lastOwner, f.lastEpoch = owner, epoch
	return f.myVote, f.err
}

func (f *fakeReader) GetClaimable(ctx context.Context, owner solana.PublicKey, epoch uint64) (*ogc_reserve.Claimable, error) {
	f.lastOwner, f.lastEpoch = owner, epoch
	return f.claimable, f.err
}

func (f *fakeReader) GetBalance(ctx context.Context, publicKey solana.PublicKey) (uint64, error) {
	return f.sol, f.err
}

func (f *fakeReader) GetTokenBalance(ctx context.Context, owner, mint solana.PublicKey) (uint64, error) {
	return f.tokens[mint], f.err
}

func (f *fakeReader) GetHistory(ctx context.Context, publicKey solana.PublicKey, limit int) (*ogc_reserve.HistoryResult, error) {
	f.lastOwner, f.lastLimit = publicKey, limit
	return f.history, f.err
}

type fakeProfiles []storage.WalletInfo

func (p fakeProfiles) GetAllWallets() ([]storage.WalletInfo, error) {
	return p, nil
}

type testServer struct {
	reader  *fakeReader
	config  Config
	router  *gin.Engine
	profile storage.WalletInfo
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	reader := &fakeReader{tokens: map[solana.PublicKey]uint64{}, votes: map[uint64][]uint64{}}
	profile := storage.WalletInfo{Name: "alice", PublicKey: solana.NewWallet().PublicKey()}
	config := Config{
		Listen:      "127.0.0.1:0",
		OgcMint:     solana.NewWallet().PublicKey(),
		OggMint:     solana.NewWallet().PublicKey(),
		OgcDecimals: 6,
		OggDecimals: 6,
	}
	server := NewServer(config, reader, fakeProfiles{profile})
	gin.SetMode(gin.TestMode)

	return &testServer{reader: reader, config: config, router: server.Router(), profile: profile}
}

func (ts *testServer) get(t *testing.T, path string, out any) int {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	if out != nil {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), out), w.Body.String())
	}
	return w.Code
}

func TestHandleHealth(t *testing.T) {
	ts := newTestServer(t)

	var resp HealthResponse
	code := ts.get(t, "/api/v1/health", &resp)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "healthy", resp.Status)
}

func TestHandleGlobal(t *testing.T) {
	t.Run("uninitialized", func(t *testing.T) {
		ts := newTestServer(t)

		var resp GlobalResponse
		code := ts.get(t, "/api/v1/global", &resp)
		assert.Equal(t, http.StatusOK, code)
		assert.False(t, resp.Initialized)
		assert.Equal(t, uint64(0), resp.ProgramBalance.Amount)
	})

	t.Run("initialized", func(t *testing.T) {
		ts := newTestServer(t)
		ts.reader.global = &ogc_reserve.GlobalDataAccount{
			Authority:     solana.NewWallet().PublicKey(),
			Epoch:         7,
			EpochEndTime:  1700000000,
			EpochLength:   86400,
			EpochLockTime: 3,
			RewardPercent: 10,
		}
		ts.reader.balance = 2_500_000

		var resp GlobalResponse
		code := ts.get(t, "/api/v1/global", &resp)
		assert.Equal(t, http.StatusOK, code)
		assert.True(t, resp.Initialized)
		assert.Equal(t, uint64(7), resp.Epoch)
		assert.Equal(t, uint64(10), resp.RewardPercent)
		assert.Equal(t, "2.5", resp.ProgramBalance.UiAmount)
		assert.Equal(t, int64(1700000000), resp.EpochEndTime.Unix())
	})

	t.Run("rpc failure", func(t *testing.T) {
		ts := newTestServer(t)
		ts.reader.err = errors.New("connection refused")

		var resp errorResponse
		code := ts.get(t, "/api/v1/global", &resp)
		assert.Equal(t, http.StatusBadGateway, code)
		assert.Contains(t, resp.Error, "connection refused")
	})
}

func TestHandleProfiles(t *testing.T) {
	ts := newTestServer(t)

	var resp []storage.WalletInfo
	code := ts.get(t, "/api/v1/profiles", &resp)
	assert.Equal(t, http.StatusOK, code)
	require.Len(t, resp, 1)
	assert.Equal(t, ts.profile, resp[0])
}

func TestHandleEpochVotes(t *testing.T) {
	ts := newTestServer(t)
	ts.reader.votes[3] = []uint64{10, 0, 5}

	var resp struct {
		Epoch uint64   `json:"epoch"`
		Votes []uint64 `json:"votes"`
	}
	assert.Equal(t, http.StatusOK, ts.get(t, "/api/v1/epochs/3/votes", &resp))
	assert.Equal(t, uint64(3), resp.Epoch)
	assert.Equal(t, []uint64{10, 0, 5}, resp.Votes)

	assert.Equal(t, http.StatusNotFound, ts.get(t, "/api/v1/epochs/4/votes", nil))
	assert.Equal(t, http.StatusBadRequest, ts.get(t, "/api/v1/epochs/abc/votes", nil))
}

func TestResolveWallet(t *testing.T) {
	ts := newTestServer(t)
	ts.reader.locked = 42

	var byName LockResponse
	assert.Equal(t, http.StatusOK, ts.get(t, "/api/v1/wallets/alice/lock", &byName))
	assert.Equal(t, ts.profile.PublicKey.String(), byName.Address)
	assert.Equal(t, ts.profile.PublicKey, ts.reader.lastOwner)

	other := solana.NewWallet().PublicKey()
	var byAddress LockResponse
	assert.Equal(t, http.StatusOK, ts.get(t, "/api/v1/wallets/"+other.String()+"/lock", &byAddress))
	assert.Equal(t, other.String(), byAddress.Address)
	assert.Equal(t, uint64(42), byAddress.Locked.Amount)

	var resp errorResponse
	assert.Equal(t, http.StatusBadRequest, ts.get(t, "/api/v1/wallets/bob/lock", &resp))
	assert.Contains(t, resp.Error, "bob")
}

func TestHandleBalance(t *testing.T) {
	ts := newTestServer(t)
	ts.reader.sol = 1_500_000_000
	ts.reader.tokens[ts.config.OgcMint] = 1_000_000
	ts.reader.tokens[ts.config.OggMint] = 250_000

	var resp BalanceResponse
	assert.Equal(t, http.StatusOK, ts.get(t, "/api/v1/wallets/alice/balance", &resp))
	assert.Equal(t, "1.5", resp.Sol.UiAmount)
	assert.Equal(t, uint64(1_000_000), resp.Ogc.Amount)
	assert.Equal(t, "1", resp.Ogc.UiAmount)
	assert.Equal(t, "0.25", resp.Ogg.UiAmount)
}

func TestHandleUnlockStatus(t *testing.T) {
	lock := &ogc_reserve.LockAccountResult{
		PublicKey: solana.NewWallet().PublicKey(),
		Account:   ogc_reserve.LockAccount{Epoch: 1, UnlockEpoch: 4, Amount: 300},
	}

	t.Run("defaults to current epoch", func(t *testing.T) {
		ts := newTestServer(t)
		ts.reader.global = &ogc_reserve.GlobalDataAccount{Epoch: 9}
		ts.reader.unlock = &ogc_reserve.UnlockStatus{Accounts: []*ogc_reserve.LockAccountResult{lock}, Amount: 300}

		var resp UnlockResponse
		assert.Equal(t, http.StatusOK, ts.get(t, "/api/v1/wallets/alice/unlock", &resp))
		assert.Equal(t, uint64(9), resp.Epoch)
		assert.Equal(t, uint64(9), ts.reader.lastEpoch)
		require.Len(t, resp.Accounts, 1)
		assert.Equal(t, lock.PublicKey.String(), resp.Accounts[0].Address)
		assert.Equal(t, uint64(4), resp.Accounts[0].UnlockEpoch)
		assert.Equal(t, uint64(300), resp.Total.Amount)
	})

	t.Run("explicit epoch", func(t *testing.T) {
		ts := newTestServer(t)
		ts.reader.unlock = &ogc_reserve.UnlockStatus{Accounts: []*ogc_reserve.LockAccountResult{}}

		var resp UnlockResponse
		assert.Equal(t, http.StatusOK, ts.get(t, "/api/v1/wallets/alice/unlock?epoch=2", &resp))
		assert.Equal(t, uint64(2), ts.reader.lastEpoch)
		assert.Empty(t, resp.Accounts)
	})

	t.Run("bad epoch", func(t *testing.T) {
		ts := newTestServer(t)
		assert.Equal(t, http.StatusBadRequest, ts.get(t, "/api/v1/wallets/alice/unlock?epoch=-1", nil))
	})
}

func TestHandleClaimable(t *testing.T) {
	ts := newTestServer(t)
	ts.reader.claimable = &ogc_reserve.Claimable{Amount: 250, Epochs: []uint64{1, 2}}

	var resp ClaimableResponse
	assert.Equal(t, http.StatusOK, ts.get(t, "/api/v1/wallets/alice/claimable?epoch=3", &resp))
	assert.Equal(t, uint64(250), resp.Reward.Amount)
	assert.Equal(t, "0.00025", resp.Reward.UiAmount)
	assert.Equal(t, []uint64{1, 2}, resp.Epochs)
}

func TestHandleMyVote(t *testing.T) {
	ts := newTestServer(t)

	var none VoteResponse
	assert.Equal(t, http.StatusOK, ts.get(t, "/api/v1/wallets/alice/votes/2", &none))
	assert.False(t, none.Voted)
	assert.Empty(t, none.Fields)

	ts.reader.myVote = &ogc_reserve.VoteAccount{Owner: ts.profile.PublicKey, Epoch: 2, Fields: []uint64{0, 7}}
	var voted VoteResponse
	assert.Equal(t, http.StatusOK, ts.get(t, "/api/v1/wallets/alice/votes/2", &voted))
	assert.True(t, voted.Voted)
	assert.Equal(t, []uint64{0, 7}, voted.Fields)
}

func TestHandleHistory(t *testing.T) {
	ts := newTestServer(t)
	ts.reader.history = &ogc_reserve.HistoryResult{Events: []ogc_reserve.ProgramEvent{
		{Slot: 10, Instruction: "lock", Args: map[string]uint64{"epoch": 1, "amount": 5}},
	}}

	var resp ogc_reserve.HistoryResult
	assert.Equal(t, http.StatusOK, ts.get(t, "/api/v1/wallets/alice/history?limit=20", &resp))
	assert.Equal(t, 20, ts.reader.lastLimit)
	require.Len(t, resp.Events, 1)
	assert.Equal(t, "lock", resp.Events[0].Instruction)

	assert.Equal(t, http.StatusBadRequest, ts.get(t, "/api/v1/wallets/alice/history?limit=0", nil))
}

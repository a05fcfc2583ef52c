package ogc_reserve

import (
	"context"
	"errors"
	"fmt"
	"math/bits"
	"slices"
	"strconv"
	"strings"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

var ErrAccountNotFound = errors.New("account not found")

// isAccountNotFound reports whether err means the queried account does not
// exist, as opposed to the query itself failing.
func isAccountNotFound(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, rpc.ErrNotFound) || errors.Is(err, ErrAccountNotFound) {
		return true
	}
	msg := err.Error()
	return msg == "not found" || strings.Contains(msg, "could not find account")
}

func (c *Client) fetchAccountData(ctx context.Context, address solana.PublicKey) ([]byte, error) {
	resp, err := c.RpcClient.GetAccountInfoWithOpts(ctx, address, &rpc.GetAccountInfoOpts{
		Commitment: c.commitment(),
	})
	if err != nil {
		if isAccountNotFound(err) {
			return nil, fmt.Errorf("%w: %s", ErrAccountNotFound, address)
		}
		return nil, fmt.Errorf("failed to get account info for %s: %w", address, err)
	}
	if resp == nil || resp.Value == nil {
		return nil, fmt.Errorf("%w: %s", ErrAccountNotFound, address)
	}
	return resp.Value.Data.GetBinary(), nil
}

func (c *Client) accountExists(ctx context.Context, address solana.PublicKey) (bool, error) {
	_, err := c.fetchAccountData(ctx, address)
	if errors.Is(err, ErrAccountNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// FetchGlobalData returns the program's global data, or nil when the
// program has not been initialized.
func (c *Client) FetchGlobalData(ctx context.Context) (*GlobalDataAccount, error) {
	globalData, _, err := GetGlobalDataPDA(c.ProgramID)
	if err != nil {
		return nil, fmt.Errorf("failed to get global data PDA: %w", err)
	}
	data, err := c.fetchAccountData(ctx, globalData)
	if errors.Is(err, ErrAccountNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return ParseAccount_GlobalDataAccount(data)
}

// GetProgramBalance returns the OGC held by the program, 0 when the holder
// account does not exist yet.
func (c *Client) GetProgramBalance(ctx context.Context) (uint64, error) {
	holder, _, err := GetProgramHolderPDA(c.ProgramID)
	if err != nil {
		return 0, fmt.Errorf("failed to get program holder PDA: %w", err)
	}
	return c.tokenAccountAmount(ctx, holder)
}

// GetLockStatus returns the total OGG owner has locked.
func (c *Client) GetLockStatus(ctx context.Context, owner solana.PublicKey) (uint64, error) {
	userData, _, err := GetUserDataPDA(c.ProgramID, owner)
	if err != nil {
		return 0, fmt.Errorf("failed to get user data PDA: %w", err)
	}
	data, err := c.fetchAccountData(ctx, userData)
	if errors.Is(err, ErrAccountNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	acc, err := ParseAccount_UserDataAccount(data)
	if err != nil {
		return 0, err
	}
	return acc.Amount, nil
}

// UnlockStatus lists the lock accounts releasable at an epoch.
type UnlockStatus struct {
	Accounts []*LockAccountResult
	Amount   uint64
}

// GetUnlockStatus returns owner's lock accounts whose unlock epoch is at or
// before epoch, ordered by unlock epoch, and their total.
func (c *Client) GetUnlockStatus(ctx context.Context, owner solana.PublicKey, epoch uint64) (*UnlockStatus, error) {
	locks, err := c.FetchLockAccounts(ctx, owner)
	if err != nil {
		return nil, err
	}

	status := &UnlockStatus{Accounts: []*LockAccountResult{}}
	for _, l := range locks {
		if l.Account.UnlockEpoch <= epoch {
			status.Accounts = append(status.Accounts, l)
			status.Amount += l.Account.Amount
		}
	}
	slices.SortStableFunc(status.Accounts, func(a, b *LockAccountResult) int {
		switch {
		case a.Account.UnlockEpoch < b.Account.UnlockEpoch:
			return -1
		case a.Account.UnlockEpoch > b.Account.UnlockEpoch:
			return 1
		}
		return 0
	})
	return status, nil
}

// FetchEpochAccount returns the tally of epoch. A missing account is an error.
func (c *Client) FetchEpochAccount(ctx context.Context, epoch uint64) (*EpochAccount, error) {
	address, _, err := GetEpochAccountPDA(c.ProgramID, epoch)
	if err != nil {
		return nil, fmt.Errorf("failed to get epoch PDA: %w", err)
	}
	data, err := c.fetchAccountData(ctx, address)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch epoch %d: %w", epoch, err)
	}
	return ParseAccount_EpochAccount(data)
}

// GetEpochVotes returns the per-option vote totals of epoch.
func (c *Client) GetEpochVotes(ctx context.Context, epoch uint64) ([]uint64, error) {
	acc, err := c.FetchEpochAccount(ctx, epoch)
	if err != nil {
		return nil, err
	}
	return acc.Fields, nil
}

// GetMyVote returns owner's vote for epoch, or nil when owner did not vote.
func (c *Client) GetMyVote(ctx context.Context, owner solana.PublicKey, epoch uint64) (*VoteAccount, error) {
	address, _, err := GetVoteAccountPDA(c.ProgramID, owner, epoch)
	if err != nil {
		return nil, fmt.Errorf("failed to get vote PDA: %w", err)
	}
	data, err := c.fetchAccountData(ctx, address)
	if errors.Is(err, ErrAccountNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return ParseAccount_VoteAccount(data)
}

// Claimable is the reward owner can collect and the epochs it comes from.
type Claimable struct {
	Amount uint64
	Epochs []uint64
}

// GetClaimable sums owner's share of the reward of every epoch before
// epoch in which owner voted and the winning option received votes.
func (c *Client) GetClaimable(ctx context.Context, owner solana.PublicKey, epoch uint64) (*Claimable, error) {
	votes, err := c.FetchVoteAccounts(ctx, owner)
	if err != nil {
		return nil, err
	}

	out := &Claimable{Epochs: []uint64{}}
	for _, v := range votes {
		if v.Account.Epoch >= epoch {
			continue
		}
		epochAccount, err := c.FetchEpochAccount(ctx, v.Account.Epoch)
		if err != nil {
			return nil, err
		}
		winner := epochAccount.Winner
		if winner >= uint64(len(epochAccount.Fields)) || epochAccount.Fields[winner] == 0 {
			continue
		}
		var weight uint64
		if winner < uint64(len(v.Account.Fields)) {
			weight = v.Account.Fields[winner]
		}
		share, err := rewardShare(weight, epochAccount.Reward, epochAccount.Fields[winner])
		if err != nil {
			return nil, fmt.Errorf("epoch %d: %w", v.Account.Epoch, err)
		}
		out.Amount += share
		out.Epochs = append(out.Epochs, v.Account.Epoch)
	}
	slices.Sort(out.Epochs)
	return out, nil
}

// rewardShare computes weight*reward/tally with a 128-bit intermediate.
func rewardShare(weight, reward, tally uint64) (uint64, error) {
	if tally == 0 {
		return 0, nil
	}
	hi, lo := bits.Mul64(weight, reward)
	if hi >= tally {
		return 0, fmt.Errorf("reward share overflows: %d * %d / %d", weight, reward, tally)
	}
	quo, _ := bits.Div64(hi, lo, tally)
	return quo, nil
}

// GetBalance retrieves the SOL balance, in lamports, for a given public key.
func (c *Client) GetBalance(ctx context.Context, publicKey solana.PublicKey) (uint64, error) {
	balance, err := c.RpcClient.GetBalance(ctx, publicKey, c.commitment())
	if err != nil {
		return 0, fmt.Errorf("failed to get balance: %w", err)
	}
	return balance.Value, nil
}

// GetTokenBalance retrieves owner's balance of mint. A missing associated
// token account counts as 0.
func (c *Client) GetTokenBalance(ctx context.Context, owner, mint solana.PublicKey) (uint64, error) {
	ata, _, err := solana.FindAssociatedTokenAddress(owner, mint)
	if err != nil {
		return 0, fmt.Errorf("failed to find associated token address: %w", err)
	}
	return c.tokenAccountAmount(ctx, ata)
}

func (c *Client) tokenAccountAmount(ctx context.Context, account solana.PublicKey) (uint64, error) {
	balance, err := c.RpcClient.GetTokenAccountBalance(ctx, account, c.commitment())
	if err != nil {
		if isAccountNotFound(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to get token account balance for %s: %w", account, err)
	}
	if balance == nil || balance.Value == nil {
		return 0, nil
	}

	amount, err := strconv.ParseUint(balance.Value.Amount, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse token amount string: %w", err)
	}
	return amount, nil
}

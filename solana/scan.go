package ogc_reserve

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"

	"ogc-reserve-cli/logging"
)

// LockAccountResult wraps a LockAccount with its address.
type LockAccountResult struct {
	PublicKey solana.PublicKey
	Account   LockAccount
}

// VoteAccountResult wraps a VoteAccount with its address.
type VoteAccountResult struct {
	PublicKey solana.PublicKey
	Account   VoteAccount
}

// scanProgramAccounts returns the program accounts carrying discriminator
// whose owner field, at ownerOffset, equals owner.
func (c *Client) scanProgramAccounts(ctx context.Context, discriminator [8]byte, ownerOffset uint64, owner solana.PublicKey) (rpc.GetProgramAccountsResult, error) {
	resp, err := c.RpcClient.GetProgramAccountsWithOpts(
		ctx,
		c.ProgramID,
		&rpc.GetProgramAccountsOpts{
			Commitment: c.commitment(),
			Filters: []rpc.RPCFilter{
				{
					Memcmp: &rpc.RPCFilterMemcmp{
						Offset: 0,
						Bytes:  discriminator[:],
					},
				},
				{
					Memcmp: &rpc.RPCFilterMemcmp{
						Offset: ownerOffset,
						Bytes:  owner.Bytes(),
					},
				},
			},
		},
	)
	if err != nil {
		if isAccountNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get program accounts: %w", err)
	}
	return resp, nil
}

// FetchLockAccounts returns every lock account owned by owner.
func (c *Client) FetchLockAccounts(ctx context.Context, owner solana.PublicKey) ([]*LockAccountResult, error) {
	resp, err := c.scanProgramAccounts(ctx, Account_LockAccount, lockAccountOwnerOffset, owner)
	if err != nil {
		return nil, err
	}

	locks := make([]*LockAccountResult, 0, len(resp))
	for _, item := range resp {
		if item == nil || item.Account == nil {
			continue
		}
		acc, err := ParseAccount_LockAccount(item.Account.Data.GetBinary())
		if err != nil {
			logging.Warn("Skipping lock account %s: %v", item.Pubkey, err)
			continue
		}
		locks = append(locks, &LockAccountResult{PublicKey: item.Pubkey, Account: *acc})
	}
	return locks, nil
}

// FetchVoteAccounts returns every vote account owned by owner.
func (c *Client) FetchVoteAccounts(ctx context.Context, owner solana.PublicKey) ([]*VoteAccountResult, error) {
	resp, err := c.scanProgramAccounts(ctx, Account_VoteAccount, voteAccountOwnerOffset, owner)
	if err != nil {
		return nil, err
	}

	votes := make([]*VoteAccountResult, 0, len(resp))
	for _, item := range resp {
		if item == nil || item.Account == nil {
			continue
		}
		acc, err := ParseAccount_VoteAccount(item.Account.Data.GetBinary())
		if err != nil {
			logging.Warn("Skipping vote account %s: %v", item.Pubkey, err)
			continue
		}
		votes = append(votes, &VoteAccountResult{PublicKey: item.Pubkey, Account: *acc})
	}
	return votes, nil
}

package ogc_reserve

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	associatedtokenaccount "github.com/gagliardetto/solana-go/programs/associated-token-account"
	"github.com/gagliardetto/solana-go/rpc"

	"ogc-reserve-cli/config"
	"ogc-reserve-cli/logging"
)

var ErrInvalidArgument = errors.New("invalid argument")

// RPC is the subset of *rpc.Client the program client uses.
type RPC interface {
	GetAccountInfoWithOpts(ctx context.Context, account solana.PublicKey, opts *rpc.GetAccountInfoOpts) (*rpc.GetAccountInfoResult, error)
	GetProgramAccountsWithOpts(ctx context.Context, publicKey solana.PublicKey, opts *rpc.GetProgramAccountsOpts) (rpc.GetProgramAccountsResult, error)
	GetLatestBlockhash(ctx context.Context, commitment rpc.CommitmentType) (*rpc.GetLatestBlockhashResult, error)
	SendTransactionWithOpts(ctx context.Context, transaction *solana.Transaction, opts rpc.TransactionOpts) (solana.Signature, error)
	GetSignatureStatuses(ctx context.Context, searchTransactionHistory bool, transactionSignatures ...solana.Signature) (*rpc.GetSignatureStatusesResult, error)
	GetBalance(ctx context.Context, publicKey solana.PublicKey, commitment rpc.CommitmentType) (*rpc.GetBalanceResult, error)
	GetTokenAccountBalance(ctx context.Context, account solana.PublicKey, commitment rpc.CommitmentType) (*rpc.GetTokenAccountBalanceResult, error)
	GetSignaturesForAddressWithOpts(ctx context.Context, account solana.PublicKey, opts *rpc.GetSignaturesForAddressOpts) ([]*rpc.TransactionSignature, error)
	GetTransaction(ctx context.Context, txSig solana.Signature, opts *rpc.GetTransactionOpts) (*rpc.GetTransactionResult, error)
}

// Client is a client for the OGC reserve program.
type Client struct {
	RpcClient RPC
	Wallet    Wallet

	ProgramID solana.PublicKey
	OgcMint   solana.PublicKey
	OggMint   solana.PublicKey

	UnlockBatchSize int
	ClaimBatchSize  int

	ConfirmTimeout time.Duration
	PollInterval   time.Duration
	Commitment     rpc.CommitmentType
}

// NewClient creates a Client that signs with wallet.
func NewClient(cfg *config.Config, wallet Wallet) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &Client{
		RpcClient:       rpc.New(cfg.RpcEndpoint),
		Wallet:          wallet,
		ProgramID:       cfg.Program(),
		OgcMint:         cfg.Ogc(),
		OggMint:         cfg.Ogg(),
		UnlockBatchSize: cfg.Batch.Unlock,
		ClaimBatchSize:  cfg.Batch.Claim,
		ConfirmTimeout:  cfg.ConfirmTimeout,
		PollInterval:    cfg.PollInterval,
		Commitment:      rpc.CommitmentConfirmed,
	}, nil
}

// NewReadOnlyClient creates a client for queries only. Write operations
// fail with ErrNoWallet.
func NewReadOnlyClient(cfg *config.Config) (*Client, error) {
	return NewClient(cfg, nil)
}

func (c *Client) commitment() rpc.CommitmentType {
	if c.Commitment == "" {
		return rpc.CommitmentConfirmed
	}
	return c.Commitment
}

func (c *Client) unlockBatchSize() int {
	if c.UnlockBatchSize <= 0 {
		return UnlockBatchSize
	}
	return c.UnlockBatchSize
}

func (c *Client) claimBatchSize() int {
	if c.ClaimBatchSize <= 0 {
		return ClaimBatchSize
	}
	return c.ClaimBatchSize
}

func (c *Client) signer() (solana.PublicKey, error) {
	if c.Wallet == nil {
		return solana.PublicKey{}, ErrNoWallet
	}
	return c.Wallet.PublicKey(), nil
}

// Initialize creates the global data account, then the first epoch account,
// in two consecutive transactions.
func (c *Client) Initialize(ctx context.Context) ([]solana.Signature, error) {
	signer, err := c.signer()
	if err != nil {
		return nil, err
	}

	globalData, _, err := GetGlobalDataPDA(c.ProgramID)
	if err != nil {
		return nil, fmt.Errorf("failed to get global data PDA: %w", err)
	}
	holder, _, err := GetProgramHolderPDA(c.ProgramID)
	if err != nil {
		return nil, fmt.Errorf("failed to get program holder PDA: %w", err)
	}
	firstEpoch, _, err := GetEpochAccountPDA(c.ProgramID, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to get first epoch PDA: %w", err)
	}

	initIx, err := NewInitializeInstruction(c.ProgramID, signer, globalData, holder, c.OgcMint, c.OggMint)
	if err != nil {
		return nil, fmt.Errorf("failed to create initialize instruction: %w", err)
	}
	epochIx, err := NewInitializeFirstEpochAccountInstruction(c.ProgramID, signer, globalData, firstEpoch)
	if err != nil {
		return nil, fmt.Errorf("failed to create first epoch instruction: %w", err)
	}

	return SubmitBatched(ctx, c, []solana.Instruction{initIx, epochIx}, 1)
}

// NewEpoch closes epoch-1 and opens epoch.
func (c *Client) NewEpoch(ctx context.Context, epoch uint64) (solana.Signature, error) {
	if epoch == 0 {
		return solana.Signature{}, fmt.Errorf("%w: epoch 0 is created by initialize", ErrInvalidArgument)
	}
	signer, err := c.signer()
	if err != nil {
		return solana.Signature{}, err
	}

	globalData, _, err := GetGlobalDataPDA(c.ProgramID)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to get global data PDA: %w", err)
	}
	prevEpoch, _, err := GetEpochAccountPDA(c.ProgramID, epoch-1)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to get previous epoch PDA: %w", err)
	}
	currEpoch, _, err := GetEpochAccountPDA(c.ProgramID, epoch)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to get epoch PDA: %w", err)
	}

	ix, err := NewNewEpochInstruction(c.ProgramID, epoch, signer, globalData, prevEpoch, currEpoch)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to create new epoch instruction: %w", err)
	}
	return c.SendAndConfirm(ctx, []solana.Instruction{ix})
}

// ModifyGlobalData updates the epoch timing and the reward percentage.
func (c *Client) ModifyGlobalData(ctx context.Context, epochLockTime, epochLength, rewardPercent uint64) (solana.Signature, error) {
	if rewardPercent > 100 {
		return solana.Signature{}, fmt.Errorf("%w: reward percent %d exceeds 100", ErrInvalidArgument, rewardPercent)
	}
	signer, err := c.signer()
	if err != nil {
		return solana.Signature{}, err
	}

	globalData, _, err := GetGlobalDataPDA(c.ProgramID)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to get global data PDA: %w", err)
	}

	ix, err := NewModifyGlobalDataInstruction(c.ProgramID, epochLockTime, epochLength, rewardPercent, signer, globalData)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to create modify global data instruction: %w", err)
	}
	return c.SendAndConfirm(ctx, []solana.Instruction{ix})
}

// Deposit moves amount base units of OGC from the signer into the program holder.
func (c *Client) Deposit(ctx context.Context, amount uint64) (solana.Signature, error) {
	return c.moveOgc(ctx, amount, NewDepositOggInstruction, "deposit")
}

// Withdraw moves amount base units of OGC from the program holder back to the signer.
func (c *Client) Withdraw(ctx context.Context, amount uint64) (solana.Signature, error) {
	return c.moveOgc(ctx, amount, NewWithdrawOggInstruction, "withdraw")
}

type ogcTransferBuilder func(programID solana.PublicKey, amount uint64, signer, globalData, signerTokenAccount, programHolder solana.PublicKey) (solana.Instruction, error)

func (c *Client) moveOgc(ctx context.Context, amount uint64, build ogcTransferBuilder, action string) (solana.Signature, error) {
	if amount == 0 {
		return solana.Signature{}, fmt.Errorf("%w: %s amount must be positive", ErrInvalidArgument, action)
	}
	signer, err := c.signer()
	if err != nil {
		return solana.Signature{}, err
	}

	globalData, _, err := GetGlobalDataPDA(c.ProgramID)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to get global data PDA: %w", err)
	}
	holder, _, err := GetProgramHolderPDA(c.ProgramID)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to get program holder PDA: %w", err)
	}
	signerTokenAccount, _, err := solana.FindAssociatedTokenAddress(signer, c.OgcMint)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to find OGC token account: %w", err)
	}

	ix, err := build(c.ProgramID, amount, signer, globalData, signerTokenAccount, holder)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to create %s instruction: %w", action, err)
	}
	return c.SendAndConfirm(ctx, []solana.Instruction{ix})
}

// Vote records the signer's vote weights for epoch.
func (c *Client) Vote(ctx context.Context, epoch uint64, votes []uint64) (solana.Signature, error) {
	if len(votes) == 0 {
		return solana.Signature{}, fmt.Errorf("%w: at least one vote weight is required", ErrInvalidArgument)
	}
	signer, err := c.signer()
	if err != nil {
		return solana.Signature{}, err
	}

	globalData, _, err := GetGlobalDataPDA(c.ProgramID)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to get global data PDA: %w", err)
	}
	userData, _, err := GetUserDataPDA(c.ProgramID, signer)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to get user data PDA: %w", err)
	}
	epochAccount, _, err := GetEpochAccountPDA(c.ProgramID, epoch)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to get epoch PDA: %w", err)
	}
	voteAccount, _, err := GetVoteAccountPDA(c.ProgramID, signer, epoch)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to get vote PDA: %w", err)
	}

	ix, err := NewVoteInstruction(c.ProgramID, epoch, votes, signer, globalData, userData, epochAccount, voteAccount)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to create vote instruction: %w", err)
	}
	return c.SendAndConfirm(ctx, []solana.Instruction{ix})
}

// Lock locks amount base units of OGG for epoch. The user data account and
// the epoch's lock account are created in the same transaction when missing.
func (c *Client) Lock(ctx context.Context, epoch, amount uint64) (solana.Signature, error) {
	if amount == 0 {
		return solana.Signature{}, fmt.Errorf("%w: lock amount must be positive", ErrInvalidArgument)
	}
	signer, err := c.signer()
	if err != nil {
		return solana.Signature{}, err
	}

	globalData, _, err := GetGlobalDataPDA(c.ProgramID)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to get global data PDA: %w", err)
	}
	userData, _, err := GetUserDataPDA(c.ProgramID, signer)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to get user data PDA: %w", err)
	}
	userVault, _, err := GetUserVaultPDA(c.ProgramID, signer)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to get user vault PDA: %w", err)
	}
	lockAccount, _, err := GetLockAccountPDA(c.ProgramID, signer, epoch)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to get lock account PDA: %w", err)
	}
	signerTokenAccount, _, err := solana.FindAssociatedTokenAddress(signer, c.OggMint)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to find OGG token account: %w", err)
	}

	var instructions []solana.Instruction

	userDataExists, err := c.accountExists(ctx, userData)
	if err != nil {
		return solana.Signature{}, err
	}
	if !userDataExists {
		ix, err := NewCreateDataAccountInstruction(c.ProgramID, signer, userData, c.OggMint, userVault)
		if err != nil {
			return solana.Signature{}, fmt.Errorf("failed to create data account instruction: %w", err)
		}
		instructions = append(instructions, ix)
	}

	lockExists, err := c.accountExists(ctx, lockAccount)
	if err != nil {
		return solana.Signature{}, err
	}
	if !lockExists {
		ix, err := NewCreateLockAccountInstruction(c.ProgramID, epoch, signer, lockAccount)
		if err != nil {
			return solana.Signature{}, fmt.Errorf("failed to create lock account instruction: %w", err)
		}
		instructions = append(instructions, ix)
	}

	ix, err := NewLockInstruction(c.ProgramID, epoch, amount, signer, globalData, userData, lockAccount, signerTokenAccount, userVault)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to create lock instruction: %w", err)
	}
	instructions = append(instructions, ix)

	return c.SendAndConfirm(ctx, instructions)
}

// Unlock releases the signer's lock accounts that are unlockable at epoch,
// oldest unlock epoch first, until amount is covered. An amount of 0
// releases every eligible account. Instructions are sent in batches.
func (c *Client) Unlock(ctx context.Context, epoch, amount uint64) ([]solana.Signature, error) {
	signer, err := c.signer()
	if err != nil {
		return nil, err
	}

	status, err := c.GetUnlockStatus(ctx, signer, epoch)
	if err != nil {
		return nil, err
	}
	selected := selectUnlockAccounts(status.Accounts, amount)
	if len(selected) == 0 {
		logging.Info("No unlockable accounts at epoch %d", epoch)
		return []solana.Signature{}, nil
	}

	globalData, _, err := GetGlobalDataPDA(c.ProgramID)
	if err != nil {
		return nil, fmt.Errorf("failed to get global data PDA: %w", err)
	}
	userData, _, err := GetUserDataPDA(c.ProgramID, signer)
	if err != nil {
		return nil, fmt.Errorf("failed to get user data PDA: %w", err)
	}
	userVault, _, err := GetUserVaultPDA(c.ProgramID, signer)
	if err != nil {
		return nil, fmt.Errorf("failed to get user vault PDA: %w", err)
	}
	signerTokenAccount, _, err := solana.FindAssociatedTokenAddress(signer, c.OggMint)
	if err != nil {
		return nil, fmt.Errorf("failed to find OGG token account: %w", err)
	}

	instructions := make([]solana.Instruction, 0, len(selected))
	for _, lock := range selected {
		ix, err := NewUnlockInstruction(c.ProgramID, signer, globalData, userData, lock.PublicKey, signerTokenAccount, userVault)
		if err != nil {
			return nil, fmt.Errorf("failed to create unlock instruction for %s: %w", lock.PublicKey, err)
		}
		instructions = append(instructions, ix)
	}

	return SubmitBatched(ctx, c, instructions, c.unlockBatchSize())
}

// selectUnlockAccounts takes accounts in order until their total reaches
// amount. Zero selects them all.
func selectUnlockAccounts(accounts []*LockAccountResult, amount uint64) []*LockAccountResult {
	if amount == 0 {
		return accounts
	}
	var covered uint64
	for i, acc := range accounts {
		covered += acc.Account.Amount
		if covered >= amount {
			return accounts[:i+1]
		}
	}
	return accounts
}

// Claim collects the rewards of every past epoch the signer voted in. The
// signer's OGC token account is created first, in its own transaction, when
// missing. Claims are then sent in batches.
func (c *Client) Claim(ctx context.Context, epoch uint64) ([]solana.Signature, error) {
	signer, err := c.signer()
	if err != nil {
		return nil, err
	}

	claimable, err := c.GetClaimable(ctx, signer, epoch)
	if err != nil {
		return nil, err
	}
	if len(claimable.Epochs) == 0 {
		logging.Info("Nothing to claim before epoch %d", epoch)
		return []solana.Signature{}, nil
	}

	signerTokenAccount, _, err := solana.FindAssociatedTokenAddress(signer, c.OgcMint)
	if err != nil {
		return nil, fmt.Errorf("failed to find OGC token account: %w", err)
	}
	exists, err := c.accountExists(ctx, signerTokenAccount)
	if err != nil {
		return nil, err
	}
	if !exists {
		createIx := associatedtokenaccount.NewCreateInstruction(signer, signer, c.OgcMint).Build()
		sig, err := c.SendAndConfirm(ctx, []solana.Instruction{createIx})
		if err != nil {
			return nil, fmt.Errorf("failed to create OGC token account: %w", err)
		}
		logging.Info("Created OGC token account %s (%s)", signerTokenAccount, sig)
	}

	globalData, _, err := GetGlobalDataPDA(c.ProgramID)
	if err != nil {
		return nil, fmt.Errorf("failed to get global data PDA: %w", err)
	}
	holder, _, err := GetProgramHolderPDA(c.ProgramID)
	if err != nil {
		return nil, fmt.Errorf("failed to get program holder PDA: %w", err)
	}

	instructions := make([]solana.Instruction, 0, len(claimable.Epochs))
	for _, e := range claimable.Epochs {
		epochAccount, _, err := GetEpochAccountPDA(c.ProgramID, e)
		if err != nil {
			return nil, fmt.Errorf("failed to get epoch PDA: %w", err)
		}
		voteAccount, _, err := GetVoteAccountPDA(c.ProgramID, signer, e)
		if err != nil {
			return nil, fmt.Errorf("failed to get vote PDA: %w", err)
		}
		ix, err := NewClaimInstruction(c.ProgramID, e, signer, globalData, epochAccount, voteAccount, signerTokenAccount, holder)
		if err != nil {
			return nil, fmt.Errorf("failed to create claim instruction for epoch %d: %w", e, err)
		}
		instructions = append(instructions, ix)
	}

	return SubmitBatched(ctx, c, instructions, c.claimBatchSize())
}

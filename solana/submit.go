package ogc_reserve

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"

	"ogc-reserve-cli/logging"
)

var (
	ErrTransactionFailed   = errors.New("transaction failed on-chain")
	ErrConfirmationTimeout = errors.New("timed out waiting for transaction confirmation")
)

const (
	defaultConfirmTimeout = 60 * time.Second
	defaultPollInterval   = time.Second
)

// SendAndConfirm builds one transaction from instructions, signs it with the
// client's wallet, sends it and blocks until it is confirmed.
func (c *Client) SendAndConfirm(ctx context.Context, instructions []solana.Instruction) (solana.Signature, error) {
	if c.Wallet == nil {
		return solana.Signature{}, ErrNoWallet
	}
	if len(instructions) == 0 {
		return solana.Signature{}, fmt.Errorf("refusing to send a transaction without instructions")
	}

	latestBlockhash, err := c.RpcClient.GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to get latest blockhash: %w", err)
	}

	tx, err := solana.NewTransaction(
		instructions,
		latestBlockhash.Value.Blockhash,
		solana.TransactionPayer(c.Wallet.PublicKey()),
	)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to create transaction: %w", err)
	}

	if err := c.Wallet.SignTransaction(tx); err != nil {
		return solana.Signature{}, err
	}

	sig, err := c.RpcClient.SendTransactionWithOpts(ctx, tx, rpc.TransactionOpts{
		PreflightCommitment: c.commitment(),
	})
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to send transaction: %w", err)
	}
	logging.Debug("Sent transaction %s with %d instruction(s)", sig, len(instructions))

	if err := c.waitForConfirmation(ctx, sig); err != nil {
		return sig, err
	}
	return sig, nil
}

// waitForConfirmation polls the signature status until the cluster reports
// it confirmed, reports an error for it, or the confirm timeout passes.
func (c *Client) waitForConfirmation(ctx context.Context, sig solana.Signature) error {
	timeout := c.ConfirmTimeout
	if timeout <= 0 {
		timeout = defaultConfirmTimeout
	}
	interval := c.PollInterval
	if interval <= 0 {
		interval = defaultPollInterval
	}

	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		out, err := c.RpcClient.GetSignatureStatuses(waitCtx, false, sig)
		switch {
		case err == nil && len(out.Value) > 0 && out.Value[0] != nil:
			status := out.Value[0]
			if status.Err != nil {
				return fmt.Errorf("%w: %s: %v", ErrTransactionFailed, sig, status.Err)
			}
			if status.ConfirmationStatus == rpc.ConfirmationStatusConfirmed ||
				status.ConfirmationStatus == rpc.ConfirmationStatusFinalized {
				return nil
			}
		case err != nil && !errors.Is(err, rpc.ErrNotFound) && waitCtx.Err() == nil:
			return fmt.Errorf("failed to get signature status for %s: %w", sig, err)
		}

		select {
		case <-waitCtx.Done():
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("%w: %s", ErrConfirmationTimeout, sig)
		case <-ticker.C:
		}
	}
}

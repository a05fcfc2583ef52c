package ogc_reserve

import (
	"context"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"

	"ogc-reserve-cli/logging"
)

// Instructions per transaction for the multi-account operations.
const (
	UnlockBatchSize = 3
	ClaimBatchSize  = 5
)

var ErrInvalidBatchSize = errors.New("batch size must be positive")

// Submitter sends one transaction made of the given instructions and waits
// until the cluster has confirmed it.
type Submitter interface {
	SendAndConfirm(ctx context.Context, instructions []solana.Instruction) (solana.Signature, error)
}

// BatchError reports the batch that failed and the signatures of the
// batches confirmed before it. Those batches are not rolled back.
type BatchError struct {
	Batch     int // 1-based index of the failed batch
	Total     int
	Completed []solana.Signature
	Err       error
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("batch %d of %d failed after %d confirmed: %v", e.Batch, e.Total, len(e.Completed), e.Err)
}

func (e *BatchError) Unwrap() error {
	return e.Err
}

// Chunk splits items into consecutive groups of at most size elements.
// The last group may be shorter; no group is ever empty.
func Chunk[T any](items []T, size int) [][]T {
	if size <= 0 || len(items) == 0 {
		return nil
	}
	chunks := make([][]T, 0, (len(items)+size-1)/size)
	for start := 0; start < len(items); start += size {
		end := start + size
		if end > len(items) {
			end = len(items)
		}
		chunks = append(chunks, items[start:end])
	}
	return chunks
}

// SubmitBatched sends instructions in groups of batchSize, one transaction
// per group, waiting for each confirmation before building the next one.
//
// On failure it stops: the returned signatures cover the batches already
// confirmed and the error is a *BatchError. Nothing is retried.
func SubmitBatched(ctx context.Context, submitter Submitter, instructions []solana.Instruction, batchSize int) ([]solana.Signature, error) {
	if batchSize <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidBatchSize, batchSize)
	}

	batches := Chunk(instructions, batchSize)
	signatures := make([]solana.Signature, 0, len(batches))
	log := logging.With("batches", len(batches), "size", batchSize)

	for i, batch := range batches {
		if err := ctx.Err(); err != nil {
			return signatures, &BatchError{Batch: i + 1, Total: len(batches), Completed: signatures, Err: err}
		}

		sig, err := submitter.SendAndConfirm(ctx, batch)
		if err != nil {
			log.Error("batch failed", "batch", i+1, "err", err)
			return signatures, &BatchError{Batch: i + 1, Total: len(batches), Completed: signatures, Err: err}
		}
		log.Debug("batch confirmed", "batch", i+1, "instructions", len(batch), "signature", sig)
		signatures = append(signatures, sig)
	}

	return signatures, nil
}

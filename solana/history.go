package ogc_reserve

import (
	"context"
	"encoding/binary"
	"fmt"
	"sync"
	"time"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"

	"ogc-reserve-cli/logging"
)

const (
	// DefaultHistoryLimit is the maximum the RPC allows per request.
	DefaultHistoryLimit = 1000
	// transactions fetched in parallel while building the history
	historyFetchConcurrency = 10
)

// ProgramEvent is one instruction sent to the program.
type ProgramEvent struct {
	Signature   solana.Signature  `json:"signature"`
	Slot        uint64            `json:"slot"`
	Timestamp   time.Time         `json:"timestamp"`
	Instruction string            `json:"instruction"`
	Args        map[string]uint64 `json:"args,omitempty"`
	Failed      bool              `json:"failed,omitempty"`
}

// HistoryResult holds the program activity of a wallet, newest first.
type HistoryResult struct {
	Events []ProgramEvent `json:"events"`
}

// GetHistory lists the program instructions found in the most recent
// transactions of publicKey. limit <= 0 uses DefaultHistoryLimit.
func (c *Client) GetHistory(ctx context.Context, publicKey solana.PublicKey, limit int) (*HistoryResult, error) {
	if _, err := ProgramIDL(); err != nil {
		return nil, fmt.Errorf("failed to initialize IDL: %w", err)
	}
	if limit <= 0 || limit > DefaultHistoryLimit {
		limit = DefaultHistoryLimit
	}

	result := &HistoryResult{Events: make([]ProgramEvent, 0)}

	signatures, err := c.RpcClient.GetSignaturesForAddressWithOpts(
		ctx,
		publicKey,
		&rpc.GetSignaturesForAddressOpts{
			Limit:      &limit,
			Commitment: c.commitment(),
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch transaction signatures: %w", err)
	}
	if len(signatures) == 0 {
		return result, nil
	}

	// One slot per signature keeps the output in signature order.
	perTx := make([][]ProgramEvent, len(signatures))
	var wg sync.WaitGroup

	for _, group := range chunkIndexes(len(signatures), historyFetchConcurrency) {
		for _, idx := range group {
			wg.Add(1)
			go func(idx int, sigInfo *rpc.TransactionSignature) {
				defer wg.Done()

				version := uint64(0)
				tx, err := c.RpcClient.GetTransaction(
					ctx,
					sigInfo.Signature,
					&rpc.GetTransactionOpts{
						Encoding:                       solana.EncodingBase64,
						Commitment:                     c.commitment(),
						MaxSupportedTransactionVersion: &version,
					},
				)
				if err != nil {
					logging.Warn("Failed to fetch transaction %s: %v", sigInfo.Signature, err)
					return
				}
				perTx[idx] = c.programEvents(tx, sigInfo.Signature)
			}(idx, signatures[idx])
		}
		// finish this group before starting the next one
		wg.Wait()
	}

	for _, events := range perTx {
		result.Events = append(result.Events, events...)
	}
	return result, nil
}

// chunkIndexes groups the indexes 0..n-1 with Chunk.
func chunkIndexes(n, size int) [][]int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	return Chunk(idx, size)
}

// programEvents decodes every top-level instruction of tx that targets the program.
func (c *Client) programEvents(tx *rpc.GetTransactionResult, signature solana.Signature) []ProgramEvent {
	if tx == nil || tx.Transaction == nil {
		return nil
	}
	parsed, err := tx.Transaction.GetTransaction()
	if err != nil {
		logging.Debug("Failed to decode transaction %s: %v", signature, err)
		return nil
	}

	var timestamp time.Time
	if tx.BlockTime != nil {
		timestamp = tx.BlockTime.Time()
	}
	failed := tx.Meta != nil && tx.Meta.Err != nil

	var events []ProgramEvent
	for _, inst := range parsed.Message.Instructions {
		programID, err := parsed.ResolveProgramIDIndex(inst.ProgramIDIndex)
		if err != nil || !programID.Equals(c.ProgramID) {
			continue
		}
		event := ProgramEvent{
			Signature: signature,
			Slot:      tx.Slot,
			Timestamp: timestamp,
			Failed:    failed,
		}
		if idlIx, ok := lookupInstruction(inst.Data); ok {
			event.Instruction = idlIx.Name
			event.Args = decodeU64Args(idlIx, inst.Data[8:])
		} else {
			event.Instruction = "unknown"
		}
		events = append(events, event)
	}
	return events
}

// decodeU64Args reads the leading u64 arguments of an instruction, stopping
// at the first argument of another type.
func decodeU64Args(ix *IDLInstruction, data []byte) map[string]uint64 {
	if len(ix.Args) == 0 {
		return nil
	}
	decoder := bin.NewBorshDecoder(data)
	args := make(map[string]uint64)
	for _, arg := range ix.Args {
		if !arg.IsType("u64") {
			break
		}
		v, err := decoder.ReadUint64(binary.LittleEndian)
		if err != nil {
			break
		}
		args[arg.Name] = v
	}
	return args
}

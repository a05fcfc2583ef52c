package ogc_reserve

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (e *testEnv) addHistoryTx(t *testing.T, slot uint64, instructions ...solana.Instruction) solana.Signature {
	t.Helper()
	tx, err := solana.NewTransaction(instructions, solana.Hash{9}, solana.TransactionPayer(e.signer))
	require.NoError(t, err)
	require.NoError(t, e.client.Wallet.SignTransaction(tx))
	raw, err := tx.MarshalBinary()
	require.NoError(t, err)

	body := fmt.Sprintf(`{"slot":%d,"blockTime":1700000000,"transaction":[%q,"base64"]}`, slot, base64.StdEncoding.EncodeToString(raw))
	var result rpc.GetTransactionResult
	require.NoError(t, json.Unmarshal([]byte(body), &result))

	sig := tx.Signatures[0]
	e.rpc.signatures = append(e.rpc.signatures, &rpc.TransactionSignature{Signature: sig, Slot: slot})
	e.rpc.transactions[sig] = &result
	return sig
}

func TestGetHistoryDecodesProgramInstructions(t *testing.T) {
	env := newTestEnv(t)
	k := env.signer
	program := env.client.ProgramID

	voteIx, err := NewVoteInstruction(program, 4, []uint64{1, 2}, k, k, k, k, k)
	require.NoError(t, err)
	lockIx, err := NewLockInstruction(program, 4, 250, k, k, k, k, k, k)
	require.NoError(t, err)
	transfer := system.NewTransferInstruction(1, k, solana.NewWallet().PublicKey()).Build()

	voteSig := env.addHistoryTx(t, 20, voteIx)
	lockSig := env.addHistoryTx(t, 10, transfer, lockIx)

	history, err := env.client.GetHistory(context.Background(), k, 0)
	require.NoError(t, err)
	require.Len(t, history.Events, 2)

	assert.Equal(t, voteSig, history.Events[0].Signature)
	assert.Equal(t, "vote", history.Events[0].Instruction)
	assert.Equal(t, map[string]uint64{"epoch": 4}, history.Events[0].Args)
	assert.Equal(t, uint64(20), history.Events[0].Slot)

	assert.Equal(t, lockSig, history.Events[1].Signature)
	assert.Equal(t, "lock", history.Events[1].Instruction)
	assert.Equal(t, map[string]uint64{"epoch": 4, "amount": 250}, history.Events[1].Args)
	assert.False(t, history.Events[1].Timestamp.IsZero())
}

func TestGetHistorySkipsUnfetchableTransactions(t *testing.T) {
	env := newTestEnv(t)
	ix, err := NewUnlockInstruction(env.client.ProgramID, env.signer, env.signer, env.signer, env.signer, env.signer, env.signer)
	require.NoError(t, err)
	env.addHistoryTx(t, 3, ix)
	env.rpc.signatures = append(env.rpc.signatures, &rpc.TransactionSignature{Signature: solana.Signature{7}})

	history, err := env.client.GetHistory(context.Background(), env.signer, 50)
	require.NoError(t, err)
	require.Len(t, history.Events, 1)
	assert.Equal(t, "unlock", history.Events[0].Instruction)
	assert.Empty(t, history.Events[0].Args)
}

func TestGetHistoryEmpty(t *testing.T) {
	env := newTestEnv(t)
	history, err := env.client.GetHistory(context.Background(), env.signer, 10)
	require.NoError(t, err)
	assert.NotNil(t, history.Events)
	assert.Empty(t, history.Events)
}

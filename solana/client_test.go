package ogc_reserve

import (
	"context"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (e *testEnv) addLock(t *testing.T, epoch, unlockEpoch, amount uint64) solana.PublicKey {
	t.Helper()
	address, _, err := GetLockAccountPDA(e.client.ProgramID, e.signer, epoch)
	require.NoError(t, err)
	e.rpc.setAccount(t, address, LockAccount{Epoch: epoch, UnlockEpoch: unlockEpoch, Owner: e.signer, Amount: amount})
	return address
}

func (e *testEnv) addVote(t *testing.T, epoch uint64, fields []uint64) {
	t.Helper()
	address, _, err := GetVoteAccountPDA(e.client.ProgramID, e.signer, epoch)
	require.NoError(t, err)
	e.rpc.setAccount(t, address, VoteAccount{Owner: e.signer, Epoch: epoch, Fields: fields})
}

func (e *testEnv) addEpoch(t *testing.T, epoch uint64, fields []uint64, winner, reward uint64) {
	t.Helper()
	address, _, err := GetEpochAccountPDA(e.client.ProgramID, epoch)
	require.NoError(t, err)
	e.rpc.setAccount(t, address, EpochAccount{Epoch: epoch, Fields: fields, Winner: winner, Reward: reward})
}

func TestReadsDefaultWhenAccountsMissing(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	c := env.client

	global, err := c.FetchGlobalData(ctx)
	require.NoError(t, err)
	assert.Nil(t, global)

	balance, err := c.GetProgramBalance(ctx)
	require.NoError(t, err)
	assert.Zero(t, balance)

	locked, err := c.GetLockStatus(ctx, env.signer)
	require.NoError(t, err)
	assert.Zero(t, locked)

	vote, err := c.GetMyVote(ctx, env.signer, 3)
	require.NoError(t, err)
	assert.Nil(t, vote)

	tokens, err := c.GetTokenBalance(ctx, env.signer, c.OgcMint)
	require.NoError(t, err)
	assert.Zero(t, tokens)

	status, err := c.GetUnlockStatus(ctx, env.signer, 10)
	require.NoError(t, err)
	assert.Empty(t, status.Accounts)
	assert.Zero(t, status.Amount)

	claimable, err := c.GetClaimable(ctx, env.signer, 10)
	require.NoError(t, err)
	assert.Zero(t, claimable.Amount)
	assert.Empty(t, claimable.Epochs)

	_, err = c.GetEpochVotes(ctx, 4)
	assert.ErrorIs(t, err, ErrAccountNotFound)
}

func TestReadsPropagateRPCFailures(t *testing.T) {
	env := newTestEnv(t)
	env.rpc.accountErr = errors.New("connection refused")
	ctx := context.Background()

	_, err := env.client.FetchGlobalData(ctx)
	assert.ErrorContains(t, err, "connection refused")

	_, err = env.client.GetLockStatus(ctx, env.signer)
	assert.ErrorContains(t, err, "connection refused")

	_, err = env.client.GetUnlockStatus(ctx, env.signer, 1)
	assert.ErrorContains(t, err, "connection refused")
}

func TestFetchGlobalData(t *testing.T) {
	env := newTestEnv(t)
	address, _, err := GetGlobalDataPDA(env.client.ProgramID)
	require.NoError(t, err)
	want := GlobalDataAccount{
		Authority:     env.signer,
		OgcMint:       env.client.OgcMint,
		OggMint:       env.client.OggMint,
		Epoch:         7,
		EpochEndTime:  1_700_000_000,
		EpochLength:   86_400,
		EpochLockTime: 3_600,
		RewardPercent: 10,
	}
	env.rpc.setAccount(t, address, want)

	got, err := env.client.FetchGlobalData(context.Background())
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, want, *got)
}

func TestGetUnlockStatusFiltersAndOrders(t *testing.T) {
	env := newTestEnv(t)
	late := env.addLock(t, 1, 4, 100)
	early := env.addLock(t, 2, 2, 50)
	env.addLock(t, 3, 9, 999) // not yet unlockable

	status, err := env.client.GetUnlockStatus(context.Background(), env.signer, 5)
	require.NoError(t, err)
	require.Len(t, status.Accounts, 2)
	assert.Equal(t, early, status.Accounts[0].PublicKey)
	assert.Equal(t, late, status.Accounts[1].PublicKey)
	assert.Equal(t, uint64(150), status.Amount)
}

func TestGetClaimable(t *testing.T) {
	env := newTestEnv(t)
	env.addEpoch(t, 1, []uint64{100, 50}, 0, 1_000)
	env.addVote(t, 1, []uint64{25, 0})
	env.addEpoch(t, 2, []uint64{10, 0}, 1, 500) // nobody voted for the winner
	env.addVote(t, 2, []uint64{10, 0})
	env.addVote(t, 5, []uint64{1, 1}) // current epoch, not claimable yet

	claimable, err := env.client.GetClaimable(context.Background(), env.signer, 5)
	require.NoError(t, err)
	assert.Equal(t, uint64(250), claimable.Amount)
	assert.Equal(t, []uint64{1}, claimable.Epochs)
}

func TestRewardShare(t *testing.T) {
	got, err := rewardShare(1<<40, 1<<40, 1<<41)
	require.NoError(t, err)
	assert.Equal(t, uint64(1<<39), got)

	got, err = rewardShare(3, 10, 0)
	require.NoError(t, err)
	assert.Zero(t, got)

	_, err = rewardShare(1<<63, 1<<63, 2)
	assert.Error(t, err)
}

func TestSelectUnlockAccounts(t *testing.T) {
	accounts := []*LockAccountResult{
		{Account: LockAccount{Amount: 10}},
		{Account: LockAccount{Amount: 20}},
		{Account: LockAccount{Amount: 30}},
	}
	assert.Len(t, selectUnlockAccounts(accounts, 0), 3)
	assert.Len(t, selectUnlockAccounts(accounts, 10), 1)
	assert.Len(t, selectUnlockAccounts(accounts, 11), 2)
	assert.Len(t, selectUnlockAccounts(accounts, 1_000), 3)
}

func TestUnlockBatchesByThree(t *testing.T) {
	env := newTestEnv(t)
	var wantOrder []solana.PublicKey
	for i := uint64(0); i < 7; i++ {
		// unlock epochs inserted in reverse so ordering is observable
		env.addLock(t, 10+i, 7-i, 10)
	}
	for unlockEpoch := uint64(1); unlockEpoch <= 7; unlockEpoch++ {
		address, _, err := GetLockAccountPDA(env.client.ProgramID, env.signer, 10+7-unlockEpoch)
		require.NoError(t, err)
		wantOrder = append(wantOrder, address)
	}

	sigs, err := env.client.Unlock(context.Background(), 8, 0)
	require.NoError(t, err)
	assert.Len(t, sigs, 3)

	sent := env.rpc.sentTransactions()
	require.Len(t, sent, 3)
	var gotOrder []solana.PublicKey
	for i, want := range []int{3, 3, 1} {
		data := instructionData(sent[i])
		require.Len(t, data, want)
		for j, d := range data {
			assert.Equal(t, Instruction_Unlock[:], d[:8])
			gotOrder = append(gotOrder, instructionAccount(t, sent[i], j, 3))
		}
	}
	assert.Equal(t, wantOrder, gotOrder)
}

func TestUnlockNothingEligible(t *testing.T) {
	env := newTestEnv(t)
	env.addLock(t, 1, 9, 10)

	sigs, err := env.client.Unlock(context.Background(), 2, 0)
	require.NoError(t, err)
	assert.Empty(t, sigs)
	assert.Empty(t, env.rpc.sentTransactions())
}

func TestUnlockStopsAtFailedBatch(t *testing.T) {
	env := newTestEnv(t)
	for i := uint64(0); i < 7; i++ {
		env.addLock(t, i, 1, 10)
	}
	env.rpc.sendFailAt = 2

	sigs, err := env.client.Unlock(context.Background(), 5, 0)
	require.Error(t, err)
	var batchErr *BatchError
	require.ErrorAs(t, err, &batchErr)
	assert.Equal(t, 2, batchErr.Batch)
	assert.Len(t, sigs, 1)
	assert.Len(t, env.rpc.sentTransactions(), 2)
}

func TestClaimCreatesTokenAccountThenBatchesByFive(t *testing.T) {
	env := newTestEnv(t)
	for e := uint64(0); e < 6; e++ {
		env.addEpoch(t, e, []uint64{100}, 0, 1_000)
		env.addVote(t, e, []uint64{10})
	}

	sigs, err := env.client.Claim(context.Background(), 6)
	require.NoError(t, err)
	assert.Len(t, sigs, 2)

	sent := env.rpc.sentTransactions()
	require.Len(t, sent, 3)

	createData := instructionData(sent[0])
	require.Len(t, createData, 1)
	programID, err := sent[0].ResolveProgramIDIndex(sent[0].Message.Instructions[0].ProgramIDIndex)
	require.NoError(t, err)
	assert.Equal(t, solana.SPLAssociatedTokenAccountProgramID, programID)

	var epochs []uint64
	for i, want := range []int{5, 1} {
		data := instructionData(sent[i+1])
		require.Len(t, data, want)
		for _, d := range data {
			assert.Equal(t, Instruction_Claim[:], d[:8])
			epochs = append(epochs, binary.LittleEndian.Uint64(d[8:16]))
		}
	}
	assert.Equal(t, []uint64{0, 1, 2, 3, 4, 5}, epochs)
}

func TestClaimSkipsTokenAccountWhenPresent(t *testing.T) {
	env := newTestEnv(t)
	env.addEpoch(t, 0, []uint64{100}, 0, 1_000)
	env.addVote(t, 0, []uint64{10})
	ata, _, err := solana.FindAssociatedTokenAddress(env.signer, env.client.OgcMint)
	require.NoError(t, err)
	env.rpc.accounts[ata] = make([]byte, 165)

	sigs, err := env.client.Claim(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, sigs, 1)
	assert.Len(t, env.rpc.sentTransactions(), 1)
}

func TestLockCreatesMissingAccounts(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.client.Lock(context.Background(), 3, 1_000)
	require.NoError(t, err)

	sent := env.rpc.sentTransactions()
	require.Len(t, sent, 1)
	data := instructionData(sent[0])
	require.Len(t, data, 3)
	assert.Equal(t, Instruction_CreateDataAccount[:], data[0][:8])
	assert.Equal(t, Instruction_CreateLockAccount[:], data[1][:8])
	assert.Equal(t, Instruction_Lock[:], data[2][:8])
	assert.Equal(t, uint64(3), binary.LittleEndian.Uint64(data[2][8:16]))
	assert.Equal(t, uint64(1_000), binary.LittleEndian.Uint64(data[2][16:24]))
}

func TestLockReusesExistingAccounts(t *testing.T) {
	env := newTestEnv(t)
	userData, _, err := GetUserDataPDA(env.client.ProgramID, env.signer)
	require.NoError(t, err)
	env.rpc.setAccount(t, userData, UserDataAccount{Owner: env.signer, Amount: 5})
	env.addLock(t, 3, 5, 5)

	_, err = env.client.Lock(context.Background(), 3, 1_000)
	require.NoError(t, err)

	sent := env.rpc.sentTransactions()
	require.Len(t, sent, 1)
	data := instructionData(sent[0])
	require.Len(t, data, 1)
	assert.Equal(t, Instruction_Lock[:], data[0][:8])
}

func TestInitializeSendsTwoTransactions(t *testing.T) {
	env := newTestEnv(t)

	sigs, err := env.client.Initialize(context.Background())
	require.NoError(t, err)
	assert.Len(t, sigs, 2)

	sent := env.rpc.sentTransactions()
	require.Len(t, sent, 2)
	assert.Equal(t, Instruction_Initialize[:], instructionData(sent[0])[0][:8])
	assert.Equal(t, Instruction_InitializeFirstEpochAccount[:], instructionData(sent[1])[0][:8])
}

func TestNewEpochUsesPreviousEpochAccount(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.client.NewEpoch(context.Background(), 4)
	require.NoError(t, err)

	sent := env.rpc.sentTransactions()
	require.Len(t, sent, 1)
	prev, _, err := GetEpochAccountPDA(env.client.ProgramID, 3)
	require.NoError(t, err)
	curr, _, err := GetEpochAccountPDA(env.client.ProgramID, 4)
	require.NoError(t, err)
	assert.Equal(t, prev, instructionAccount(t, sent[0], 0, 2))
	assert.Equal(t, curr, instructionAccount(t, sent[0], 0, 3))
}

func TestWriteValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	c := env.client

	tests := []struct {
		name string
		call func() error
	}{
		{name: "epoch zero", call: func() error { _, err := c.NewEpoch(ctx, 0); return err }},
		{name: "reward over 100", call: func() error { _, err := c.ModifyGlobalData(ctx, 1, 1, 101); return err }},
		{name: "zero deposit", call: func() error { _, err := c.Deposit(ctx, 0); return err }},
		{name: "zero withdraw", call: func() error { _, err := c.Withdraw(ctx, 0); return err }},
		{name: "empty vote", call: func() error { _, err := c.Vote(ctx, 1, nil); return err }},
		{name: "zero lock", call: func() error { _, err := c.Lock(ctx, 1, 0); return err }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.call(), ErrInvalidArgument)
		})
	}
	assert.Empty(t, env.rpc.sentTransactions())
}

func TestSendAndConfirmReportsOnChainFailure(t *testing.T) {
	env := newTestEnv(t)
	env.rpc.statusErr = map[string]interface{}{"InstructionError": []interface{}{0, "Custom"}}

	sig, err := env.client.Deposit(context.Background(), 5)
	assert.ErrorIs(t, err, ErrTransactionFailed)
	assert.False(t, sig.IsZero())
}

func TestClientWithoutWalletCannotWrite(t *testing.T) {
	env := newTestEnv(t)
	env.client.Wallet = nil

	_, err := env.client.Vote(context.Background(), 1, []uint64{1})
	assert.ErrorIs(t, err, ErrNoWallet)

	_, err = env.client.SendAndConfirm(context.Background(), testInstructions(1))
	assert.ErrorIs(t, err, ErrNoWallet)
}

func TestWatchWalletRefusesToSign(t *testing.T) {
	w := WatchWallet(solana.NewWallet().PublicKey())
	assert.ErrorIs(t, w.SignTransaction(&solana.Transaction{}), ErrNoWallet)
}

package ogc_reserve

import (
	"bytes"
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/stretchr/testify/require"
)

// fakeRPC is an in-memory cluster: accounts by address, token balances,
// recorded transactions and canned history.
type fakeRPC struct {
	mu sync.Mutex

	accounts      map[solana.PublicKey][]byte
	tokenBalances map[solana.PublicKey]uint64
	lamports      uint64

	accountErr error
	sendFailAt int // 1-based send that fails, 0 never
	statusErr  interface{}

	sent []*solana.Transaction

	signatures   []*rpc.TransactionSignature
	transactions map[solana.Signature]*rpc.GetTransactionResult
}

func newFakeRPC() *fakeRPC {
	return &fakeRPC{
		accounts:      make(map[solana.PublicKey][]byte),
		tokenBalances: make(map[solana.PublicKey]uint64),
		transactions:  make(map[solana.Signature]*rpc.GetTransactionResult),
	}
}

func (f *fakeRPC) setAccount(t *testing.T, address solana.PublicKey, v interface{}) {
	t.Helper()
	buf := new(bytes.Buffer)
	require.NoError(t, bin.NewBorshEncoder(buf).Encode(v))
	f.mu.Lock()
	f.accounts[address] = buf.Bytes()
	f.mu.Unlock()
}

func (f *fakeRPC) sentTransactions() []*solana.Transaction {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*solana.Transaction(nil), f.sent...)
}

func (f *fakeRPC) GetAccountInfoWithOpts(ctx context.Context, account solana.PublicKey, opts *rpc.GetAccountInfoOpts) (*rpc.GetAccountInfoResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.accountErr != nil {
		return nil, f.accountErr
	}
	data, ok := f.accounts[account]
	if !ok {
		return nil, rpc.ErrNotFound
	}
	return &rpc.GetAccountInfoResult{
		Value: &rpc.Account{Data: rpc.DataBytesOrJSONFromBytes(data)},
	}, nil
}

func (f *fakeRPC) GetProgramAccountsWithOpts(ctx context.Context, publicKey solana.PublicKey, opts *rpc.GetProgramAccountsOpts) (rpc.GetProgramAccountsResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.accountErr != nil {
		return nil, f.accountErr
	}

	var out rpc.GetProgramAccountsResult
	for address, data := range f.accounts {
		if opts != nil && !matchesFilters(data, opts.Filters) {
			continue
		}
		out = append(out, &rpc.KeyedAccount{
			Pubkey:  address,
			Account: &rpc.Account{Data: rpc.DataBytesOrJSONFromBytes(data)},
		})
	}
	return out, nil
}

func matchesFilters(data []byte, filters []rpc.RPCFilter) bool {
	for _, filter := range filters {
		if filter.Memcmp == nil {
			continue
		}
		start := int(filter.Memcmp.Offset)
		end := start + len(filter.Memcmp.Bytes)
		if end > len(data) || !bytes.Equal(data[start:end], filter.Memcmp.Bytes) {
			return false
		}
	}
	return true
}

func (f *fakeRPC) GetLatestBlockhash(ctx context.Context, commitment rpc.CommitmentType) (*rpc.GetLatestBlockhashResult, error) {
	return &rpc.GetLatestBlockhashResult{
		Value: &rpc.LatestBlockhashResult{Blockhash: solana.Hash{1, 2, 3}},
	}, nil
}

func (f *fakeRPC) SendTransactionWithOpts(ctx context.Context, transaction *solana.Transaction, opts rpc.TransactionOpts) (solana.Signature, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, transaction)
	if f.sendFailAt == len(f.sent) {
		return solana.Signature{}, errors.New("Transaction simulation failed: custom program error: 0x1770")
	}
	return transaction.Signatures[0], nil
}

func (f *fakeRPC) GetSignatureStatuses(ctx context.Context, searchTransactionHistory bool, transactionSignatures ...solana.Signature) (*rpc.GetSignatureStatusesResult, error) {
	out := &rpc.GetSignatureStatusesResult{}
	for range transactionSignatures {
		out.Value = append(out.Value, &rpc.SignatureStatusesResult{
			ConfirmationStatus: rpc.ConfirmationStatusConfirmed,
			Err:                f.statusErr,
		})
	}
	return out, nil
}

func (f *fakeRPC) GetBalance(ctx context.Context, publicKey solana.PublicKey, commitment rpc.CommitmentType) (*rpc.GetBalanceResult, error) {
	return &rpc.GetBalanceResult{Value: f.lamports}, nil
}

func (f *fakeRPC) GetTokenAccountBalance(ctx context.Context, account solana.PublicKey, commitment rpc.CommitmentType) (*rpc.GetTokenAccountBalanceResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	amount, ok := f.tokenBalances[account]
	if !ok {
		return nil, errors.New("Invalid param: could not find account")
	}
	return &rpc.GetTokenAccountBalanceResult{
		Value: &rpc.UiTokenAmount{Amount: strconv.FormatUint(amount, 10), Decimals: TokenDecimals},
	}, nil
}

func (f *fakeRPC) GetSignaturesForAddressWithOpts(ctx context.Context, account solana.PublicKey, opts *rpc.GetSignaturesForAddressOpts) ([]*rpc.TransactionSignature, error) {
	return f.signatures, nil
}

func (f *fakeRPC) GetTransaction(ctx context.Context, txSig solana.Signature, opts *rpc.GetTransactionOpts) (*rpc.GetTransactionResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	tx, ok := f.transactions[txSig]
	if !ok {
		return nil, rpc.ErrNotFound
	}
	return tx, nil
}

type testEnv struct {
	rpc    *fakeRPC
	client *Client
	signer solana.PublicKey
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	f := newFakeRPC()
	key := solana.NewWallet().PrivateKey
	c := &Client{
		RpcClient:      f,
		Wallet:         NewKeypairWallet(key),
		ProgramID:      solana.NewWallet().PublicKey(),
		OgcMint:        solana.NewWallet().PublicKey(),
		OggMint:        solana.NewWallet().PublicKey(),
		ConfirmTimeout: time.Second,
		PollInterval:   time.Millisecond,
	}
	return &testEnv{rpc: f, client: c, signer: key.PublicKey()}
}

// instructionData returns the data of each instruction of tx, in order.
func instructionData(tx *solana.Transaction) [][]byte {
	out := make([][]byte, 0, len(tx.Message.Instructions))
	for _, inst := range tx.Message.Instructions {
		out = append(out, []byte(inst.Data))
	}
	return out
}

// instructionAccount returns the account at position pos of instruction i.
func instructionAccount(t *testing.T, tx *solana.Transaction, i, pos int) solana.PublicKey {
	t.Helper()
	inst := tx.Message.Instructions[i]
	require.Greater(t, len(inst.Accounts), pos)
	return tx.Message.AccountKeys[inst.Accounts[pos]]
}

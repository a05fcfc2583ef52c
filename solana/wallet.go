package ogc_reserve

import (
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

var ErrNoWallet = errors.New("client has no signing wallet")

// Wallet identifies the fee payer and signs transactions for it.
type Wallet interface {
	PublicKey() solana.PublicKey
	SignTransaction(tx *solana.Transaction) error
}

// KeypairWallet signs with a locally stored private key.
type KeypairWallet struct {
	PrivateKey solana.PrivateKey
}

func NewKeypairWallet(privateKey solana.PrivateKey) *KeypairWallet {
	return &KeypairWallet{PrivateKey: privateKey}
}

// PublicKey returns the public key of the wallet.
func (w *KeypairWallet) PublicKey() solana.PublicKey {
	return w.PrivateKey.PublicKey()
}

func (w *KeypairWallet) SignTransaction(tx *solana.Transaction) error {
	_, err := tx.Sign(
		func(key solana.PublicKey) *solana.PrivateKey {
			if w.PrivateKey.PublicKey().Equals(key) {
				return &w.PrivateKey
			}
			return nil
		},
	)
	if err != nil {
		return fmt.Errorf("failed to sign transaction: %w", err)
	}
	return nil
}

// WatchWallet knows only a public key. Reads work, signing fails.
type WatchWallet solana.PublicKey

func (w WatchWallet) PublicKey() solana.PublicKey {
	return solana.PublicKey(w)
}

func (w WatchWallet) SignTransaction(*solana.Transaction) error {
	return ErrNoWallet
}

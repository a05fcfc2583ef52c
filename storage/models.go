package storage

import "github.com/gagliardetto/solana-go"

// WalletData is one named profile as stored in the JSON file.
type WalletData struct {
	Name       string `json:"name"`
	PrivateKey string `json:"private_key"` // base64
}

type walletFile struct {
	Wallets []WalletData `json:"wallets"`
}

// WalletInfo is the public view of a profile.
type WalletInfo struct {
	Name      string           `json:"name"`
	PublicKey solana.PublicKey `json:"public_key"`
}

package storage

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"

	"ogc-reserve-cli/logging"
)

const (
	defaultConfigDirName = ".config"
	appConfigDirName     = "ogc-reserve"
	walletFileName       = "wallets.json"
)

var (
	ErrWalletNotFound = errors.New("wallet profile not found")
	ErrInvalidName    = errors.New("invalid wallet profile name")
)

// WalletStorage keeps named keypair profiles in a JSON file.
type WalletStorage struct {
	mu   sync.Mutex
	path string
}

// NewWalletStorage opens the store at ~/.config/ogc-reserve/wallets.json.
func NewWalletStorage() (*WalletStorage, error) {
	path, err := defaultPath()
	if err != nil {
		return nil, err
	}
	return NewWalletStorageAt(path)
}

// NewWalletStorageAt opens (creating if needed) the store at path.
func NewWalletStorageAt(path string) (*WalletStorage, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("could not create wallet directory: %w", err)
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := os.WriteFile(path, []byte(`{"wallets":[]}`), 0600); err != nil {
			return nil, fmt.Errorf("could not create wallet file: %w", err)
		}
		logging.Debug("Created wallet file %s", path)
	} else if err != nil {
		return nil, fmt.Errorf("could not stat wallet file: %w", err)
	}

	return &WalletStorage{path: path}, nil
}

// Path returns the location of the wallet file.
func (s *WalletStorage) Path() string {
	return s.path
}

func (s *WalletStorage) load() (*walletFile, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("could not read wallet file: %w", err)
	}
	f := &walletFile{}
	if len(strings.TrimSpace(string(data))) == 0 {
		return f, nil
	}
	if err := json.Unmarshal(data, f); err != nil {
		return nil, fmt.Errorf("could not parse wallet file: %w", err)
	}
	return f, nil
}

func (s *WalletStorage) store(f *walletFile) error {
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("could not marshal wallet data: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("could not write wallet file: %w", err)
	}
	return nil
}

func decodeKey(w WalletData) (solana.PrivateKey, error) {
	privateKeyBytes, err := base64.StdEncoding.DecodeString(w.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("could not decode private key of %q: %w", w.Name, err)
	}
	if len(privateKeyBytes) != solana.PrivateKeyLength {
		return nil, fmt.Errorf("invalid private key length for %q: expected %d, got %d", w.Name, solana.PrivateKeyLength, len(privateKeyBytes))
	}
	return solana.PrivateKey(privateKeyBytes), nil
}

// GetAllWalletNames returns the profile names in alphabetical order.
func (s *WalletStorage) GetAllWalletNames() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.load()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(f.Wallets))
	for _, w := range f.Wallets {
		names = append(names, w.Name)
	}
	sort.Strings(names)
	return names, nil
}

// GetAllWallets returns the name and address of every profile.
func (s *WalletStorage) GetAllWallets() ([]WalletInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.load()
	if err != nil {
		return nil, err
	}
	out := make([]WalletInfo, 0, len(f.Wallets))
	for _, w := range f.Wallets {
		key, err := decodeKey(w)
		if err != nil {
			return nil, err
		}
		out = append(out, WalletInfo{Name: w.Name, PublicKey: key.PublicKey()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// GetWallet returns the private key of the named profile.
func (s *WalletStorage) GetWallet(name string) (solana.PrivateKey, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.load()
	if err != nil {
		return nil, err
	}
	for _, w := range f.Wallets {
		if w.Name == name {
			return decodeKey(w)
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrWalletNotFound, name)
}

// SaveWallet stores key under name, replacing any profile with that name.
func (s *WalletStorage) SaveWallet(name string, key solana.PrivateKey) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrInvalidName
	}
	if len(key) != solana.PrivateKeyLength {
		return fmt.Errorf("invalid private key length: expected %d, got %d", solana.PrivateKeyLength, len(key))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.load()
	if err != nil {
		return err
	}
	entry := WalletData{Name: name, PrivateKey: base64.StdEncoding.EncodeToString(key)}
	replaced := false
	for i := range f.Wallets {
		if f.Wallets[i].Name == name {
			f.Wallets[i] = entry
			replaced = true
		}
	}
	if !replaced {
		f.Wallets = append(f.Wallets, entry)
	}
	return s.store(f)
}

// DeleteWallet removes the named profile.
func (s *WalletStorage) DeleteWallet(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.load()
	if err != nil {
		return err
	}
	kept := f.Wallets[:0]
	for _, w := range f.Wallets {
		if w.Name != name {
			kept = append(kept, w)
		}
	}
	if len(kept) == len(f.Wallets) {
		return fmt.Errorf("%w: %s", ErrWalletNotFound, name)
	}
	f.Wallets = kept
	return s.store(f)
}

// CreateWallet generates a fresh keypair and stores it under name.
func (s *WalletStorage) CreateWallet(name string) (solana.PrivateKey, error) {
	key := solana.NewWallet().PrivateKey
	if err := s.SaveWallet(name, key); err != nil {
		return nil, err
	}
	return key, nil
}

// ImportBase58 stores a base58 encoded 64-byte secret key, as exported by
// browser wallets, under name.
func (s *WalletStorage) ImportBase58(name, secret string) (solana.PrivateKey, error) {
	raw, err := base58.Decode(strings.TrimSpace(secret))
	if err != nil {
		return nil, fmt.Errorf("could not decode base58 secret key: %w", err)
	}
	if len(raw) != solana.PrivateKeyLength {
		return nil, fmt.Errorf("invalid secret key length: expected %d, got %d", solana.PrivateKeyLength, len(raw))
	}
	key := solana.PrivateKey(raw)
	if err := s.SaveWallet(name, key); err != nil {
		return nil, err
	}
	return key, nil
}

// ImportKeygenFile stores the keypair of a solana-keygen JSON file under name.
func (s *WalletStorage) ImportKeygenFile(name, path string) (solana.PrivateKey, error) {
	key, err := solana.PrivateKeyFromSolanaKeygenFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read keygen file %s: %w", path, err)
	}
	if err := s.SaveWallet(name, key); err != nil {
		return nil, err
	}
	return key, nil
}

func defaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, defaultConfigDirName, appConfigDirName, walletFileName), nil
}

// Package config loads the CLI configuration from an optional YAML file and
// the environment (.env is honoured), then validates it.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"ogc-reserve-cli/logging"
)

const (
	DefaultConfigFile  = "ogc-reserve.yaml"
	DefaultRpcEndpoint = "https://api.devnet.solana.com"

	DefaultUnlockBatchSize = 3
	DefaultClaimBatchSize  = 5
	DefaultTokenDecimals   = 6
)

// Config drives the client, the CLI and the dashboard.
type Config struct {
	RpcEndpoint string `yaml:"rpc_endpoint" validate:"required,url"`
	ProgramID   string `yaml:"program_id" validate:"required,pubkey"`
	OgcMint     string `yaml:"ogc_mint" validate:"required,pubkey"`
	OggMint     string `yaml:"ogg_mint" validate:"required,pubkey"`
	LogLevel    string `yaml:"log_level" validate:"omitempty,oneof=debug info warn error DEBUG INFO WARN ERROR"`

	Batch struct {
		Unlock int `yaml:"unlock" validate:"min=1"` // unlock instructions per transaction
		Claim  int `yaml:"claim" validate:"min=1"`  // claim instructions per transaction
	} `yaml:"batch"`

	Decimals struct {
		Ogc uint8 `yaml:"ogc" validate:"max=18"`
		Ogg uint8 `yaml:"ogg" validate:"max=18"`
	} `yaml:"decimals"`

	ConfirmTimeout time.Duration `yaml:"confirm_timeout" validate:"gt=0"`
	PollInterval   time.Duration `yaml:"poll_interval" validate:"gt=0"`

	Dashboard struct {
		Listen string `yaml:"listen" validate:"required,hostname_port"`
	} `yaml:"dashboard"`

	WalletFile string `yaml:"wallet_file"`
}

// Default returns a configuration with every optional field filled in.
// ProgramID and the mints have no sensible default and stay empty.
func Default() *Config {
	c := &Config{
		RpcEndpoint:    DefaultRpcEndpoint,
		LogLevel:       "info",
		ConfirmTimeout: 60 * time.Second,
		PollInterval:   time.Second,
	}
	c.Batch.Unlock = DefaultUnlockBatchSize
	c.Batch.Claim = DefaultClaimBatchSize
	c.Decimals.Ogc = DefaultTokenDecimals
	c.Decimals.Ogg = DefaultTokenDecimals
	c.Dashboard.Listen = "127.0.0.1:8088"
	return c
}

// Load reads path (a missing file is not an error), applies environment
// overrides and validates the result.
func Load(path string) (*Config, error) {
	c := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, c); err != nil {
				return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist):
			logging.Debug("Config file %s not found, using defaults and environment", path)
		default:
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	if err := godotenv.Load(); err != nil {
		logging.Debug(".env file not found, using process environment only")
	}
	c.applyEnv()

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("RPC_URL"); v != "" {
		c.RpcEndpoint = v
	} else if heliusApiKey := os.Getenv("HELIUS_API_KEY"); heliusApiKey != "" {
		c.RpcEndpoint = fmt.Sprintf("https://devnet.helius-rpc.com/?api-key=%s", heliusApiKey)
		logging.Info("Using Helius RPC endpoint")
	}
	if v := os.Getenv("OGC_RESERVE_PROGRAM_ID"); v != "" {
		c.ProgramID = v
	}
	if v := os.Getenv("OGC_MINT"); v != "" {
		c.OgcMint = v
	}
	if v := os.Getenv("OGG_MINT"); v != "" {
		c.OggMint = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if os.Getenv("DEBUG") == "true" {
		c.LogLevel = "debug"
	}
	if v := os.Getenv("OGC_WALLET_FILE"); v != "" {
		c.WalletFile = v
	}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("pubkey", func(fl validator.FieldLevel) bool {
		_, err := solana.PublicKeyFromBase58(fl.Field().String())
		return err == nil
	})
	return v
}

// Validate checks every field and reports the first few failures in one error.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
	}
	return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
}

func (c *Config) Program() solana.PublicKey { return solana.MustPublicKeyFromBase58(c.ProgramID) }
func (c *Config) Ogc() solana.PublicKey     { return solana.MustPublicKeyFromBase58(c.OgcMint) }
func (c *Config) Ogg() solana.PublicKey     { return solana.MustPublicKeyFromBase58(c.OggMint) }

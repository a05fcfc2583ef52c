package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"ogc-reserve-cli/config"
	"ogc-reserve-cli/logging"
	ogc_reserve "ogc-reserve-cli/solana"
	"ogc-reserve-cli/storage"
)

// set by the persistent flags on the root command
var (
	configFile  string
	profileName string
	logLevel    string
)

// cfg is loaded once per invocation by the root command's pre-run hook.
var cfg *config.Config

// skipConfigAnnotation marks commands, and their subcommands, that must run
// without a valid config.
const skipConfigAnnotation = "skip-config"

func skipsConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations[skipConfigAnnotation] == "true" {
			return true
		}
	}
	return false
}

// loadConfig runs before every command. Commands marked with
// skipConfigAnnotation fall back to defaults when the config is incomplete.
func loadConfig(cmd *cobra.Command, args []string) error {
	c, err := config.Load(configFile)
	if err != nil {
		if !skipsConfig(cmd) {
			return err
		}
		logging.Debug("Ignoring incomplete configuration: %v", err)
		c = config.Default()
	}
	if logLevel != "" {
		c.LogLevel = logLevel
	}
	logging.SetLevel(c.LogLevel)
	cfg = c
	return nil
}

func openWalletStorage() (*storage.WalletStorage, error) {
	if cfg != nil && cfg.WalletFile != "" {
		return storage.NewWalletStorageAt(cfg.WalletFile)
	}
	return storage.NewWalletStorage()
}

// resolveProfile picks the profile named by --profile, or the only stored
// profile when the flag is empty.
func resolveProfile(db *storage.WalletStorage) (string, solana.PrivateKey, error) {
	name := profileName
	if name == "" {
		names, err := db.GetAllWalletNames()
		if err != nil {
			return "", nil, err
		}
		switch len(names) {
		case 0:
			return "", nil, fmt.Errorf("no wallet profiles found, create one with 'ogc-reserve profile create <name>'")
		case 1:
			name = names[0]
		default:
			return "", nil, fmt.Errorf("several wallet profiles found, choose one with --profile")
		}
	}

	key, err := db.GetWallet(name)
	if err != nil {
		return "", nil, err
	}
	return name, key, nil
}

// signingClient returns a client that signs with the selected profile.
func signingClient() (*ogc_reserve.Client, error) {
	db, err := openWalletStorage()
	if err != nil {
		return nil, fmt.Errorf("failed to open wallet storage: %w", err)
	}
	name, key, err := resolveProfile(db)
	if err != nil {
		return nil, err
	}
	logging.Debug("Using profile %s (%s)", name, key.PublicKey())
	return ogc_reserve.NewClient(cfg, ogc_reserve.NewKeypairWallet(key))
}

// queryTarget returns a read-only client and the address to report on: the
// --address flag when given, else the selected profile.
func queryTarget(address string) (*ogc_reserve.Client, solana.PublicKey, error) {
	client, err := ogc_reserve.NewReadOnlyClient(cfg)
	if err != nil {
		return nil, solana.PublicKey{}, err
	}
	if address != "" {
		pk, err := solana.PublicKeyFromBase58(address)
		if err != nil {
			return nil, solana.PublicKey{}, fmt.Errorf("invalid address %q: %w", address, err)
		}
		return client, pk, nil
	}

	db, err := openWalletStorage()
	if err != nil {
		return nil, solana.PublicKey{}, fmt.Errorf("failed to open wallet storage: %w", err)
	}
	_, key, err := resolveProfile(db)
	if err != nil {
		return nil, solana.PublicKey{}, err
	}
	return client, key.PublicKey(), nil
}

// currentEpoch reads the program's epoch counter.
func currentEpoch(ctx context.Context, client *ogc_reserve.Client) (uint64, error) {
	global, err := client.FetchGlobalData(ctx)
	if err != nil {
		return 0, err
	}
	if global == nil {
		return 0, errors.New("the reserve program is not initialized")
	}
	return global.Epoch, nil
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or create the CLI configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		out, err := yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("failed to encode config: %w", err)
		}
		fmt.Print(string(out))
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:         "init",
	Short:       "Write a default configuration file",
	Annotations: map[string]string{skipConfigAnnotation: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configFile
		if path == "" {
			path = config.DefaultConfigFile
		}
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists", path)
		}

		out, err := yaml.Marshal(config.Default())
		if err != nil {
			return fmt.Errorf("failed to encode config: %w", err)
		}
		if err := os.WriteFile(path, out, 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
		fmt.Println(titleStyle.Render(fmt.Sprintf("✅ Wrote %s", path)))
		fmt.Println(promptStyle.Render("   Fill in program_id, ogc_mint and ogg_mint before use."))
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd, configInitCmd)
	rootCmd.AddCommand(configCmd)
}

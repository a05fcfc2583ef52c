package cmd

import (
	"fmt"

	"github.com/AlecAivazis/survey/v2"
	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"

	"ogc-reserve-cli/storage"
)

func createProfile(db *storage.WalletStorage, name string) error {
	fmt.Println(promptStyle.Render(fmt.Sprintf("\nCreating new wallet '%s'...", name)))
	key, err := db.CreateWallet(name)
	if err != nil {
		return fmt.Errorf("failed to create wallet: %w", err)
	}
	fmt.Println(titleStyle.Render("\n✅ Profile Created!"))
	fmt.Println(promptStyle.Render("   Your wallet address:"), key.PublicKey().String())
	return nil
}

// importProfile stores a key given either as a solana-keygen JSON file or
// as a base58 secret.
func importProfile(db *storage.WalletStorage, name, keyFile, secret string) error {
	var (
		key solana.PrivateKey
		err error
	)
	if keyFile != "" {
		key, err = db.ImportKeygenFile(name, keyFile)
	} else {
		key, err = db.ImportBase58(name, secret)
	}
	if err != nil {
		return fmt.Errorf("failed to import wallet: %w", err)
	}
	fmt.Println(titleStyle.Render("\n✅ Profile Imported!"))
	fmt.Println(promptStyle.Render("   Wallet address:"), key.PublicKey().String())
	return nil
}

func listProfiles(db *storage.WalletStorage) error {
	wallets, err := db.GetAllWallets()
	if err != nil {
		return fmt.Errorf("failed to list wallet profiles: %w", err)
	}
	if len(wallets) == 0 {
		fmt.Println(promptStyle.Render("No wallet profiles yet."))
		return nil
	}
	fmt.Println(titleStyle.Render("🔑 Wallet Profiles"))
	for _, w := range wallets {
		fmt.Println(field(w.Name, w.PublicKey.String()))
	}
	return nil
}

func exportProfile(key solana.PrivateKey) {
	fmt.Println(warningStyle.Render("\n⚠️ WARNING: EXPORTING YOUR PRIVATE KEY ⚠️"))
	fmt.Println(promptStyle.Render("Sharing your private key can result in the permanent loss of your funds."))
	confirm := false
	prompt := &survey.Confirm{Message: "Are you absolutely sure?", Default: false}
	survey.AskOne(prompt, &confirm)
	if !confirm {
		fmt.Println(promptStyle.Render("\nExport cancelled."))
		return
	}
	fmt.Println(titleStyle.Render("\n🔐 Your Private Key (Base58):"))
	fmt.Println(key.String())
}

var profileCmd = &cobra.Command{
	Use:         "profile",
	Short:       "Manage local wallet profiles",
	Annotations: map[string]string{skipConfigAnnotation: "true"},
}

var profileListCmd = &cobra.Command{
	Use:   "list",
	Short: "List wallet profiles",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openWalletStorage()
		if err != nil {
			return err
		}
		return listProfiles(db)
	},
}

var profileCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Generate a new wallet profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openWalletStorage()
		if err != nil {
			return err
		}
		return createProfile(db, args[0])
	},
}

var importKeyFile string

var profileImportCmd = &cobra.Command{
	Use:   "import <name>",
	Short: "Import a wallet from a solana-keygen file or a base58 secret key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openWalletStorage()
		if err != nil {
			return err
		}
		secret := ""
		if importKeyFile == "" {
			prompt := &survey.Password{Message: "Enter the base58 secret key:"}
			if err := survey.AskOne(prompt, &secret, survey.WithValidator(survey.Required)); err != nil {
				return err
			}
		}
		return importProfile(db, args[0], importKeyFile, secret)
	},
}

var profileDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a wallet profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openWalletStorage()
		if err != nil {
			return err
		}
		confirm := false
		prompt := &survey.Confirm{Message: fmt.Sprintf("Delete profile '%s'? The key cannot be recovered.", args[0])}
		survey.AskOne(prompt, &confirm)
		if !confirm {
			fmt.Println(promptStyle.Render("Delete cancelled."))
			return nil
		}
		if err := db.DeleteWallet(args[0]); err != nil {
			return err
		}
		fmt.Println(titleStyle.Render(fmt.Sprintf("✅ Profile '%s' deleted.", args[0])))
		return nil
	},
}

var profileExportCmd = &cobra.Command{
	Use:   "export <name>",
	Short: "Print a profile's private key (UNSAFE)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openWalletStorage()
		if err != nil {
			return err
		}
		key, err := db.GetWallet(args[0])
		if err != nil {
			return err
		}
		exportProfile(key)
		return nil
	},
}

func init() {
	profileImportCmd.Flags().StringVar(&importKeyFile, "keyfile", "", "solana-keygen JSON key file")

	profileCmd.AddCommand(profileListCmd, profileCreateCmd, profileImportCmd, profileDeleteCmd, profileExportCmd)
	rootCmd.AddCommand(profileCmd)
}

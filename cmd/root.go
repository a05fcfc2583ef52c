package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
	figure "github.com/common-nighthawk/go-figure"
	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"

	"ogc-reserve-cli/config"
	ogc_reserve "ogc-reserve-cli/solana"
	"ogc-reserve-cli/storage"
)

var errExit = errors.New("user exited")

var rootCmd = &cobra.Command{
	Use:               "ogc-reserve",
	Short:             "OGC Reserve CLI locks OGG, votes on epochs and claims OGC rewards.",
	Long:              `An interactive command-line interface to the OGC reserve program: manage wallet profiles, lock and unlock OGG, vote each epoch, claim rewards and run the admin operations.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: loadConfig,
	RunE:              run,
}

// run is the main entry point for the interactive CLI.
func run(cmd *cobra.Command, args []string) error {
	myFigure := figure.NewFigure("OGC RESERVE", "larry3d", true)
	fmt.Println(titleStyle.Render(myFigure.String()))

	db, err := openWalletStorage()
	if err != nil {
		return fmt.Errorf("failed to open wallet storage: %w", err)
	}

	for {
		signer, profile, err := runProfileSelection(db)
		if errors.Is(err, errExit) || errors.Is(err, terminal.InterruptErr) {
			fmt.Println("Exiting OGC Reserve CLI.")
			return nil
		}
		if err != nil {
			return err
		}
		if err := runInteractive(cmd.Context(), signer, profile); err != nil {
			if errors.Is(err, terminal.InterruptErr) || errors.Is(err, context.Canceled) {
				fmt.Println("Exiting OGC Reserve CLI.")
				return nil
			}
			return err
		}
	}
}

// runProfileSelection handles the UI for choosing, creating or importing a wallet profile.
func runProfileSelection(db *storage.WalletStorage) (solana.PrivateKey, string, error) {
	for {
		profiles, err := db.GetAllWalletNames()
		if err != nil {
			return nil, "", fmt.Errorf("failed to get wallet profiles: %w", err)
		}
		if len(profiles) == 0 {
			fmt.Println(titleStyle.Render("🚀 Welcome to OGC Reserve! Let's get you set up."))
		}

		options := append(profiles, "Create New Profile", "Import Profile", "Exit")

		selection := ""
		prompt := &survey.Select{
			Message: promptStyle.Render("Choose a profile to continue:"),
			Options: options,
		}
		if err := survey.AskOne(prompt, &selection); err != nil {
			return nil, "", err
		}

		switch selection {
		case "Create New Profile":
			name, err := askProfileName()
			if err != nil {
				return nil, "", err
			}
			reportError(createProfile(db, name))
		case "Import Profile":
			reportError(handleImportProfile(db))
		case "Exit":
			return nil, "", errExit
		default:
			signer, err := db.GetWallet(selection)
			if err != nil {
				return nil, "", fmt.Errorf("failed to get wallet for profile '%s': %w", selection, err)
			}
			return signer, selection, nil
		}
	}
}

func askProfileName() (string, error) {
	name := ""
	prompt := &survey.Input{Message: "Enter a name for the profile:"}
	err := survey.AskOne(prompt, &name, survey.WithValidator(survey.Required))
	return name, err
}

func handleImportProfile(db *storage.WalletStorage) error {
	name, err := askProfileName()
	if err != nil {
		return err
	}
	source := ""
	sourcePrompt := &survey.Select{
		Message: "Import from:",
		Options: []string{"Base58 secret key", "solana-keygen file"},
	}
	if err := survey.AskOne(sourcePrompt, &source); err != nil {
		return err
	}

	if source == "solana-keygen file" {
		path := ""
		if err := survey.AskOne(&survey.Input{Message: "Path to the key file:"}, &path, survey.WithValidator(survey.Required)); err != nil {
			return err
		}
		return importProfile(db, name, path, "")
	}
	secret := ""
	if err := survey.AskOne(&survey.Password{Message: "Enter the base58 secret key:"}, &secret, survey.WithValidator(survey.Required)); err != nil {
		return err
	}
	return importProfile(db, name, "", secret)
}

func runInteractive(ctx context.Context, signer solana.PrivateKey, profile string) error {
	client, err := ogc_reserve.NewClient(cfg, ogc_reserve.NewKeypairWallet(signer))
	if err != nil {
		return fmt.Errorf("failed to create Solana client: %w", err)
	}

	fmt.Printf("\n---\n")
	fmt.Println(titleStyle.Render(fmt.Sprintf("Operating with profile: %s", profile)))
	fmt.Println(promptStyle.Render(fmt.Sprintf("Address: %s", signer.PublicKey())))
	fmt.Printf("---\n\n")

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		menu := &survey.Select{
			Message: promptStyle.Render("Choose an action:"),
			Options: []string{
				"View Status",
				"Lock OGG",
				"Unlock OGG",
				"Vote",
				"Claim Rewards",
				"View History",
				"Admin Actions",
				"Wallet Management",
				"Switch Profile",
			},
			Help: "Use the arrow keys to navigate, and press Enter to select.",
		}

		var choice string
		if err := survey.AskOne(menu, &choice); err != nil {
			return err
		}

		switch choice {
		case "View Status":
			if err := showGlobal(ctx, client); err != nil {
				reportError(err)
				break
			}
			reportError(showWallet(ctx, client, signer.PublicKey()))
		case "Lock OGG":
			handleLock(ctx, client)
		case "Unlock OGG":
			handleUnlock(ctx, client)
		case "Vote":
			handleVote(ctx, client)
		case "Claim Rewards":
			reportError(runClaim(ctx, client, nil))
		case "View History":
			reportError(showHistory(ctx, client, signer.PublicKey(), historyLimit))
		case "Admin Actions":
			handleAdmin(ctx, client)
		case "Wallet Management":
			handleWalletManagement(ctx, client, signer)
		case "Switch Profile":
			return nil
		}
		fmt.Println()
	}
}

// askUint prompts for an unsigned integer. An empty answer returns def.
func askUint(message, def string) (uint64, error) {
	answer := ""
	prompt := &survey.Input{Message: message, Default: def}
	if err := survey.AskOne(prompt, &answer, survey.WithValidator(survey.Required)); err != nil {
		return 0, err
	}
	v, err := strconv.ParseUint(answer, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", answer)
	}
	return v, nil
}

func handleLock(ctx context.Context, client *ogc_reserve.Client) {
	amountStr := ""
	amountPrompt := &survey.Input{Message: "Enter amount of OGG to lock:"}
	if err := survey.AskOne(amountPrompt, &amountStr, survey.WithValidator(survey.Required)); err != nil {
		return
	}
	reportError(runLock(ctx, client, nil, amountStr))
}

func handleUnlock(ctx context.Context, client *ogc_reserve.Client) {
	amountStr := ""
	amountPrompt := &survey.Input{
		Message: "Enter amount of OGG to unlock (empty for all unlockable):",
		Help:    "Expired lock accounts are released oldest first until the amount is covered.",
	}
	if err := survey.AskOne(amountPrompt, &amountStr); err != nil {
		return
	}
	reportError(runUnlock(ctx, client, nil, amountStr))
}

func handleVote(ctx context.Context, client *ogc_reserve.Client) {
	weights := ""
	prompt := &survey.Input{
		Message: "Enter your vote weights, comma separated:",
		Help:    "One weight per option, for example 10,0,5.",
	}
	if err := survey.AskOne(prompt, &weights, survey.WithValidator(survey.Required)); err != nil {
		return
	}
	votes, err := parseVotes([]string{weights})
	if err != nil {
		reportError(err)
		return
	}
	reportError(runVote(ctx, client, nil, votes))
}

func handleAdmin(ctx context.Context, client *ogc_reserve.Client) {
	fmt.Println()
	menu := &survey.Select{
		Message: promptStyle.Render("Admin Actions:"),
		Options: []string{"Initialize Program", "Start New Epoch", "Modify Global Data", "Deposit OGC", "Withdraw OGC", "Back to Main Menu"},
	}
	var choice string
	if err := survey.AskOne(menu, &choice); err != nil {
		return
	}

	switch choice {
	case "Initialize Program":
		reportError(runInitialize(ctx, client))
	case "Start New Epoch":
		reportError(runNewEpoch(ctx, client, nil))
	case "Modify Global Data":
		lockTime, err := askUint("Epochs a lock stays locked:", "")
		if err != nil {
			reportError(err)
			return
		}
		length, err := askUint("Epoch length in seconds:", "86400")
		if err != nil {
			reportError(err)
			return
		}
		reward, err := askUint("Reward percentage per epoch (0-100):", "")
		if err != nil {
			reportError(err)
			return
		}
		reportError(runModifyGlobal(ctx, client, lockTime, length, reward))
	case "Deposit OGC", "Withdraw OGC":
		amountStr := ""
		amountPrompt := &survey.Input{Message: "Enter amount of OGC:"}
		if err := survey.AskOne(amountPrompt, &amountStr, survey.WithValidator(survey.Required)); err != nil {
			return
		}
		if choice == "Deposit OGC" {
			reportError(runDeposit(ctx, client, amountStr))
		} else {
			reportError(runWithdraw(ctx, client, amountStr))
		}
	case "Back to Main Menu":
		return
	}
}

func handleWalletManagement(ctx context.Context, client *ogc_reserve.Client, signer solana.PrivateKey) {
	fmt.Println()
	menu := &survey.Select{
		Message: promptStyle.Render("Wallet Management:"),
		Options: []string{"View Address", "View Balance", "Export Wallet (UNSAFE)", "Back to Main Menu"},
	}
	var choice string
	if err := survey.AskOne(menu, &choice); err != nil {
		return
	}

	switch choice {
	case "View Address":
		fmt.Println(titleStyle.Render("\n🔑 Your Current Wallet Address:"))
		fmt.Println(signer.PublicKey().String())
	case "View Balance":
		viewBalance(ctx, client, signer.PublicKey())
	case "Export Wallet (UNSAFE)":
		exportProfile(signer)
	case "Back to Main Menu":
		return
	}
}

func viewBalance(ctx context.Context, client *ogc_reserve.Client, owner solana.PublicKey) {
	fmt.Println(promptStyle.Render("\nChecking balance... Please wait."))
	sol, err := client.GetBalance(ctx, owner)
	if err != nil {
		reportError(fmt.Errorf("failed to get balance: %w", err))
		return
	}
	ogc, err := client.GetTokenBalance(ctx, owner, client.OgcMint)
	if err != nil {
		reportError(fmt.Errorf("failed to get OGC balance: %w", err))
		return
	}
	ogg, err := client.GetTokenBalance(ctx, owner, client.OggMint)
	if err != nil {
		reportError(fmt.Errorf("failed to get OGG balance: %w", err))
		return
	}
	fmt.Println(titleStyle.Render("\n💰 Your Wallet Balance:"))
	fmt.Printf("   %s SOL\n", ogc_reserve.FormatAmount(sol, solDecimals))
	fmt.Printf("   %s OGC\n", ogc_reserve.FormatAmount(ogc, cfg.Decimals.Ogc))
	fmt.Printf("   %s OGG\n", ogc_reserve.FormatAmount(ogg, cfg.Decimals.Ogg))
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", config.DefaultConfigFile, "config file (YAML)")
	rootCmd.PersistentFlags().StringVar(&profileName, "profile", "", "wallet profile to use")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
}

// Execute runs the root command. SIGINT and SIGTERM cancel the command's
// context, which stops batched submissions before their next transaction.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Println(warningStyle.Render(fmt.Sprintf("❌ %v", err)))
		stop()
		os.Exit(1)
	}
}

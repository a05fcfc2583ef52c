package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"

	ogc_reserve "ogc-reserve-cli/solana"
)

const solDecimals = 9

func showGlobal(ctx context.Context, client *ogc_reserve.Client) error {
	global, err := client.FetchGlobalData(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch global data: %w", err)
	}
	balance, err := client.GetProgramBalance(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch program balance: %w", err)
	}

	fmt.Println(titleStyle.Render("📊 Reserve Program"))
	fmt.Println(field("Program", client.ProgramID))
	if global == nil {
		fmt.Println(warningStyle.Render("   Not initialized."))
		return nil
	}
	fmt.Println(field("Authority", ogc_reserve.ShortenAddress(global.Authority.String())))
	fmt.Println(field("Epoch", global.Epoch))
	fmt.Println(field("Epoch ends", time.Unix(global.EpochEndTime, 0).Local().Format(time.RFC1123)))
	fmt.Println(field("Epoch length", (time.Duration(global.EpochLength) * time.Second).String()))
	fmt.Println(field("Lock time", fmt.Sprintf("%d epoch(s)", global.EpochLockTime)))
	fmt.Println(field("Reward", fmt.Sprintf("%d%%", global.RewardPercent)))
	fmt.Println(field("Reserve", ogc_reserve.FormatAmount(balance, cfg.Decimals.Ogc)+" OGC"))
	return nil
}

func showWallet(ctx context.Context, client *ogc_reserve.Client, owner solana.PublicKey) error {
	epoch, err := currentEpoch(ctx, client)
	if err != nil {
		return err
	}

	sol, err := client.GetBalance(ctx, owner)
	if err != nil {
		return err
	}
	ogc, err := client.GetTokenBalance(ctx, owner, client.OgcMint)
	if err != nil {
		return err
	}
	ogg, err := client.GetTokenBalance(ctx, owner, client.OggMint)
	if err != nil {
		return err
	}
	locked, err := client.GetLockStatus(ctx, owner)
	if err != nil {
		return err
	}
	unlock, err := client.GetUnlockStatus(ctx, owner, epoch)
	if err != nil {
		return err
	}
	claimable, err := client.GetClaimable(ctx, owner, epoch)
	if err != nil {
		return err
	}
	vote, err := client.GetMyVote(ctx, owner, epoch)
	if err != nil {
		return err
	}

	fmt.Println(titleStyle.Render(fmt.Sprintf("💰 Wallet %s", ogc_reserve.ShortenAddress(owner.String()))))
	fmt.Println(field("SOL", ogc_reserve.FormatAmount(sol, solDecimals)))
	fmt.Println(field("OGC", ogc_reserve.FormatAmount(ogc, cfg.Decimals.Ogc)))
	fmt.Println(field("OGG", ogc_reserve.FormatAmount(ogg, cfg.Decimals.Ogg)))
	fmt.Println(field("Locked OGG", ogc_reserve.FormatAmount(locked, cfg.Decimals.Ogg)))
	fmt.Println(field("Unlockable OGG", fmt.Sprintf("%s (%d account(s))", ogc_reserve.FormatAmount(unlock.Amount, cfg.Decimals.Ogg), len(unlock.Accounts))))
	fmt.Println(field("Claimable OGC", fmt.Sprintf("%s (epochs %v)", ogc_reserve.FormatAmount(claimable.Amount, cfg.Decimals.Ogc), claimable.Epochs)))
	if vote != nil {
		fmt.Println(field(fmt.Sprintf("Vote epoch %d", epoch), vote.Fields))
	} else {
		fmt.Println(field(fmt.Sprintf("Vote epoch %d", epoch), "none"))
	}

	votes, err := client.GetEpochVotes(ctx, epoch)
	switch {
	case errors.Is(err, ogc_reserve.ErrAccountNotFound):
		fmt.Println(field("Epoch tally", "epoch account missing"))
	case err != nil:
		return err
	default:
		fmt.Println(field("Epoch tally", votes))
	}
	return nil
}

func showHistory(ctx context.Context, client *ogc_reserve.Client, owner solana.PublicKey, limit int) error {
	fmt.Println(promptStyle.Render(fmt.Sprintf("\nFetching program activity of %s...", owner)))
	history, err := client.GetHistory(ctx, owner, limit)
	if err != nil {
		return fmt.Errorf("failed to get history: %w", err)
	}
	if len(history.Events) == 0 {
		fmt.Println(promptStyle.Render("   No program activity found."))
		return nil
	}

	fmt.Println(titleStyle.Render("📜 History"))
	for _, ev := range history.Events {
		line := fmt.Sprintf("   %s  %-32s %s", ev.Timestamp.Local().Format("2006-01-02 15:04:05"), ev.Instruction, ogc_reserve.ShortenAddress(ev.Signature.String()))
		if len(ev.Args) > 0 {
			line += fmt.Sprintf("  %v", ev.Args)
		}
		if ev.Failed {
			fmt.Println(warningStyle.Render(line + "  (failed)"))
			continue
		}
		fmt.Println(infoStyle.Render(line))
	}
	return nil
}

var (
	statusAddress  string
	historyAddress string
	historyLimit   int
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the program state and a wallet's balances, locks, votes and rewards",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, owner, err := queryTarget(statusAddress)
		if err != nil {
			return err
		}
		if err := showGlobal(cmd.Context(), client); err != nil {
			return err
		}
		return showWallet(cmd.Context(), client, owner)
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List a wallet's recent reserve program instructions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, owner, err := queryTarget(historyAddress)
		if err != nil {
			return err
		}
		return showHistory(cmd.Context(), client, owner, historyLimit)
	},
}

func init() {
	statusCmd.Flags().StringVar(&statusAddress, "address", "", "wallet address to inspect instead of the profile")
	historyCmd.Flags().StringVar(&historyAddress, "address", "", "wallet address to inspect instead of the profile")
	historyCmd.Flags().IntVar(&historyLimit, "limit", 100, "number of recent transactions to scan")

	rootCmd.AddCommand(statusCmd, historyCmd)
}

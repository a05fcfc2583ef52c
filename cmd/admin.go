package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	ogc_reserve "ogc-reserve-cli/solana"
)

func runInitialize(ctx context.Context, client *ogc_reserve.Client) error {
	fmt.Println(promptStyle.Render("\n🚀 Initializing the reserve program... Please wait."))
	sigs, err := client.Initialize(ctx)
	return printBatchResult("Initialize", sigs, err)
}

// runNewEpoch opens epoch, or the epoch after the current one when epoch is nil.
func runNewEpoch(ctx context.Context, client *ogc_reserve.Client, epoch *uint64) error {
	var next uint64
	if epoch != nil {
		next = *epoch
	} else {
		current, err := currentEpoch(ctx, client)
		if err != nil {
			return err
		}
		next = current + 1
	}

	fmt.Println(promptStyle.Render(fmt.Sprintf("\nStarting epoch %d...", next)))
	sig, err := client.NewEpoch(ctx, next)
	if err != nil {
		return fmt.Errorf("new epoch failed: %w", err)
	}
	printSuccess(fmt.Sprintf("Epoch %d Start", next), sig)
	return nil
}

func runModifyGlobal(ctx context.Context, client *ogc_reserve.Client, epochLockTime, epochLength, rewardPercent uint64) error {
	fmt.Println(promptStyle.Render(fmt.Sprintf("\nSetting lock time %d, epoch length %d, reward %d%%...", epochLockTime, epochLength, rewardPercent)))
	sig, err := client.ModifyGlobalData(ctx, epochLockTime, epochLength, rewardPercent)
	if err != nil {
		return fmt.Errorf("modify global data failed: %w", err)
	}
	printSuccess("Global Data Update", sig)
	return nil
}

func runDeposit(ctx context.Context, client *ogc_reserve.Client, amountStr string) error {
	amount, err := ogc_reserve.ParseAmount(amountStr, cfg.Decimals.Ogc)
	if err != nil {
		return err
	}
	fmt.Println(promptStyle.Render(fmt.Sprintf("\nDepositing %s OGC into the reserve...", amountStr)))
	sig, err := client.Deposit(ctx, amount)
	if err != nil {
		return fmt.Errorf("deposit failed: %w", err)
	}
	printSuccess("Deposit", sig)
	return nil
}

func runWithdraw(ctx context.Context, client *ogc_reserve.Client, amountStr string) error {
	amount, err := ogc_reserve.ParseAmount(amountStr, cfg.Decimals.Ogc)
	if err != nil {
		return err
	}
	fmt.Println(promptStyle.Render(fmt.Sprintf("\nWithdrawing %s OGC from the reserve...", amountStr)))
	sig, err := client.Withdraw(ctx, amount)
	if err != nil {
		return fmt.Errorf("withdraw failed: %w", err)
	}
	printSuccess("Withdraw", sig)
	return nil
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the reserve program and its first epoch (admin)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := signingClient()
		if err != nil {
			return err
		}
		return runInitialize(cmd.Context(), client)
	},
}

var newEpochCmd = &cobra.Command{
	Use:   "new-epoch [epoch]",
	Short: "Close the current epoch and open the next one (admin)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var epoch *uint64
		if len(args) == 1 {
			e, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid epoch %q", args[0])
			}
			epoch = &e
		}
		client, err := signingClient()
		if err != nil {
			return err
		}
		return runNewEpoch(cmd.Context(), client, epoch)
	},
}

var (
	modifyLockTime uint64
	modifyLength   uint64
	modifyReward   uint64
)

var modifyGlobalCmd = &cobra.Command{
	Use:   "modify-global",
	Short: "Change epoch timing and reward percentage (admin)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := signingClient()
		if err != nil {
			return err
		}
		return runModifyGlobal(cmd.Context(), client, modifyLockTime, modifyLength, modifyReward)
	},
}

var depositCmd = &cobra.Command{
	Use:   "deposit <amount>",
	Short: "Deposit OGC into the reserve (admin)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := signingClient()
		if err != nil {
			return err
		}
		return runDeposit(cmd.Context(), client, args[0])
	},
}

var withdrawCmd = &cobra.Command{
	Use:   "withdraw <amount>",
	Short: "Withdraw OGC from the reserve (admin)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := signingClient()
		if err != nil {
			return err
		}
		return runWithdraw(cmd.Context(), client, args[0])
	},
}

func init() {
	modifyGlobalCmd.Flags().Uint64Var(&modifyLockTime, "lock-time", 0, "epochs a lock stays locked")
	modifyGlobalCmd.Flags().Uint64Var(&modifyLength, "length", 0, "epoch length in seconds")
	modifyGlobalCmd.Flags().Uint64Var(&modifyReward, "reward", 0, "reward percentage of the reserve per epoch (0-100)")
	for _, name := range []string{"lock-time", "length", "reward"} {
		_ = modifyGlobalCmd.MarkFlagRequired(name)
	}

	rootCmd.AddCommand(initCmd, newEpochCmd, modifyGlobalCmd, depositCmd, withdrawCmd)
}

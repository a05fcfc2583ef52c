package cmd

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	ogc_reserve "ogc-reserve-cli/solana"
)

// epochOrCurrent returns *epoch when set, else the program's current epoch.
func epochOrCurrent(ctx context.Context, client *ogc_reserve.Client, epoch *uint64) (uint64, error) {
	if epoch != nil {
		return *epoch, nil
	}
	return currentEpoch(ctx, client)
}

// parseVotes accepts weights as separate arguments or comma separated.
func parseVotes(args []string) ([]uint64, error) {
	var votes []uint64
	for _, arg := range args {
		for _, part := range strings.Split(arg, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			v, err := strconv.ParseUint(part, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid vote weight %q", part)
			}
			votes = append(votes, v)
		}
	}
	if len(votes) == 0 {
		return nil, fmt.Errorf("at least one vote weight is required")
	}
	return votes, nil
}

func runVote(ctx context.Context, client *ogc_reserve.Client, epoch *uint64, votes []uint64) error {
	e, err := epochOrCurrent(ctx, client, epoch)
	if err != nil {
		return err
	}
	fmt.Println(promptStyle.Render(fmt.Sprintf("\nVoting %v in epoch %d...", votes, e)))
	sig, err := client.Vote(ctx, e, votes)
	if err != nil {
		return fmt.Errorf("vote failed: %w", err)
	}
	printSuccess("Vote", sig)
	return nil
}

func runLock(ctx context.Context, client *ogc_reserve.Client, epoch *uint64, amountStr string) error {
	amount, err := ogc_reserve.ParseAmount(amountStr, cfg.Decimals.Ogg)
	if err != nil {
		return err
	}
	e, err := epochOrCurrent(ctx, client, epoch)
	if err != nil {
		return err
	}
	fmt.Println(promptStyle.Render(fmt.Sprintf("\nLocking %s OGG in epoch %d...", amountStr, e)))
	sig, err := client.Lock(ctx, e, amount)
	if err != nil {
		return fmt.Errorf("lock failed: %w", err)
	}
	printSuccess("Lock", sig)
	return nil
}

// runUnlock releases eligible lock accounts. An empty amount releases all.
func runUnlock(ctx context.Context, client *ogc_reserve.Client, epoch *uint64, amountStr string) error {
	var amount uint64
	if amountStr != "" {
		a, err := ogc_reserve.ParseAmount(amountStr, cfg.Decimals.Ogg)
		if err != nil {
			return err
		}
		amount = a
	}
	e, err := epochOrCurrent(ctx, client, epoch)
	if err != nil {
		return err
	}
	fmt.Println(promptStyle.Render(fmt.Sprintf("\nUnlocking at epoch %d, %d account(s) per transaction...", e, cfg.Batch.Unlock)))
	sigs, err := client.Unlock(ctx, e, amount)
	return printBatchResult("Unlock", sigs, err)
}

func runClaim(ctx context.Context, client *ogc_reserve.Client, epoch *uint64) error {
	e, err := epochOrCurrent(ctx, client, epoch)
	if err != nil {
		return err
	}
	fmt.Println(promptStyle.Render(fmt.Sprintf("\nClaiming rewards of epochs before %d, %d epoch(s) per transaction...", e, cfg.Batch.Claim)))
	sigs, err := client.Claim(ctx, e)
	return printBatchResult("Claim", sigs, err)
}

// epochFlag tracks whether --epoch was given so the current epoch can be
// used otherwise.
type epochFlag struct {
	value uint64
	set   bool
}

func (f *epochFlag) String() string {
	if !f.set {
		return "current"
	}
	return strconv.FormatUint(f.value, 10)
}

func (f *epochFlag) Set(s string) error {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid epoch %q", s)
	}
	f.value, f.set = v, true
	return nil
}

func (f *epochFlag) Type() string { return "epoch" }

func (f *epochFlag) get() *uint64 {
	if !f.set {
		return nil
	}
	v := f.value
	return &v
}

var (
	voteEpoch   epochFlag
	lockEpoch   epochFlag
	unlockEpoch epochFlag
	claimEpoch  epochFlag
)

var voteCmd = &cobra.Command{
	Use:   "vote <weight>...",
	Short: "Vote with per-option weights in the current epoch",
	Example: `  ogc-reserve vote 10 0 5
  ogc-reserve vote 10,0,5 --epoch 3`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		votes, err := parseVotes(args)
		if err != nil {
			return err
		}
		client, err := signingClient()
		if err != nil {
			return err
		}
		return runVote(cmd.Context(), client, voteEpoch.get(), votes)
	},
}

var lockCmd = &cobra.Command{
	Use:   "lock <amount>",
	Short: "Lock OGG in the current epoch",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := signingClient()
		if err != nil {
			return err
		}
		return runLock(cmd.Context(), client, lockEpoch.get(), args[0])
	},
}

var unlockCmd = &cobra.Command{
	Use:   "unlock [amount]",
	Short: "Unlock OGG whose lock period has ended (all when no amount is given)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		amount := ""
		if len(args) == 1 {
			amount = args[0]
		}
		client, err := signingClient()
		if err != nil {
			return err
		}
		return runUnlock(cmd.Context(), client, unlockEpoch.get(), amount)
	},
}

var claimCmd = &cobra.Command{
	Use:   "claim",
	Short: "Claim OGC rewards of every past epoch you voted in",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := signingClient()
		if err != nil {
			return err
		}
		return runClaim(cmd.Context(), client, claimEpoch.get())
	},
}

func init() {
	voteCmd.Flags().Var(&voteEpoch, "epoch", "epoch to vote in")
	lockCmd.Flags().Var(&lockEpoch, "epoch", "epoch to lock in")
	unlockCmd.Flags().Var(&unlockEpoch, "epoch", "epoch used to decide which locks have expired")
	claimCmd.Flags().Var(&claimEpoch, "epoch", "claim epochs strictly before this one")

	rootCmd.AddCommand(voteCmd, lockCmd, unlockCmd, claimCmd)
}

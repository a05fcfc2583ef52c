package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gagliardetto/solana-go"

	ogc_reserve "ogc-reserve-cli/solana"
)

func printSuccess(title string, sig solana.Signature) {
	fmt.Println(titleStyle.Render(fmt.Sprintf("\n✅ %s Successful!", title)))
	fmt.Printf("   Transaction Signature: %s\n", sig.String())
}

// printBatchResult reports every confirmed batch. On failure it names the
// batch that failed; later batches were never sent.
func printBatchResult(title string, sigs []solana.Signature, err error) error {
	for i, sig := range sigs {
		fmt.Printf("   Batch %d Signature: %s\n", i+1, sig.String())
	}

	if err != nil {
		var batchErr *ogc_reserve.BatchError
		if errors.As(err, &batchErr) {
			if len(sigs) > 0 {
				fmt.Println(promptStyle.Render(fmt.Sprintf("   %d of %d batches confirmed before the failure.", len(batchErr.Completed), batchErr.Total)))
			}
			return fmt.Errorf("%s failed at batch %d of %d: %w", title, batchErr.Batch, batchErr.Total, batchErr.Err)
		}
		return fmt.Errorf("%s failed: %w", title, err)
	}

	if len(sigs) == 0 {
		fmt.Println(promptStyle.Render(fmt.Sprintf("\nNothing to %s.", strings.ToLower(title))))
		return nil
	}
	fmt.Println(titleStyle.Render(fmt.Sprintf("\n✅ %s Successful! (%d transaction(s))", title, len(sigs))))
	return nil
}

// reportError prints a failed interactive action without leaving the menu.
func reportError(err error) {
	if err != nil {
		fmt.Println(warningStyle.Render(fmt.Sprintf("\n❌ %v", err)))
	}
}

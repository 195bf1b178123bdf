package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	mderrors "github.com/macrostudio/macrod/internal/errors"
	"github.com/macrostudio/macrod/internal/macro"
)

var validateCmd = &cobra.Command{
	Use:   "validate <macro.json>",
	Short: "Validate a macro file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := macro.Load(args[0]); err != nil {
			if !mderrors.IsType(err, mderrors.Validation) {
				return err
			}
			failValidation(err)
		}
		if jsonOutput {
			return printJSON(map[string]any{"valid": true})
		}
		fmt.Printf("✓ %s is valid\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

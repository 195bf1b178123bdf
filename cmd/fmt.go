package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/macrostudio/macrod/internal/macro"
)

var fmtCheck bool

var fmtCmd = &cobra.Command{
	Use:   "fmt <macro.json>",
	Short: "Rewrite a macro file in canonical form",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}

		if fmtCheck {
			ok, err := macro.IsCanonical(data)
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintf(os.Stderr, "%s is not canonical\n", args[0])
				os.Exit(1)
			}
			return nil
		}

		doc, err := macro.Parse(data)
		if err != nil {
			return err
		}
		return macro.Save(args[0], doc)
	},
}

func init() {
	fmtCmd.Flags().BoolVar(&fmtCheck, "check", false, "Exit nonzero when the file is not canonical")
	rootCmd.AddCommand(fmtCmd)
}

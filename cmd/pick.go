package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/macrostudio/macrod/internal/input"
)

var pickTimeout time.Duration

var pickCmd = &cobra.Command{
	Use:   "pick",
	Short: "Print the screen position of the next mouse click",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintln(os.Stderr, "Click anywhere on screen...")
		x, y, err := input.PickPoint(pickTimeout)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(map[string]int{"x": x, "y": y})
		}
		fmt.Printf("x=%d y=%d\n", x, y)
		return nil
	},
}

func init() {
	pickCmd.Flags().DurationVar(&pickTimeout, "timeout", 0, "Give up after this long (0 waits forever)")
	rootCmd.AddCommand(pickCmd)
}

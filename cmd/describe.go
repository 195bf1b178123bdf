package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"

	"github.com/macrostudio/macrod/internal/input"
	"github.com/macrostudio/macrod/internal/macro"
)

var describeCmd = &cobra.Command{
	Use:   "describe <macro.json>",
	Short: "Show what a macro would do without executing it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := macro.Load(args[0])
		if err != nil {
			return err
		}

		fmt.Printf("Macro: %s\n", doc.Name())
		if doc.Repeat() <= 0 {
			fmt.Println("Repeat: until stopped")
		} else {
			fmt.Printf("Repeat: %d\n", doc.Repeat())
		}
		fmt.Printf("Max steps: %d\n\n", doc.MaxSteps())

		actions, _ := doc.Actions()
		describeActions(os.Stdout, actions, "")
		return nil
	},
}

func describeActions(w io.Writer, actions []gjson.Result, indent string) {
	for _, action := range actions {
		describeAction(w, action, indent)
	}
}

func describeAction(w io.Writer, action gjson.Result, indent string) {
	switch action.Get("type").String() {
	case "wait_for_image":
		fmt.Fprintf(w, "%s- Would wait until %q is on screen%s\n",
			indent, action.Get("value").String(), timeoutSuffix(action))
	case "click_image":
		fmt.Fprintf(w, "%s- Would click the %s button on %q when it appears\n",
			indent, buttonOf(action), action.Get("value").String())
	case "if":
		fmt.Fprintf(w, "%s- If %q is on screen:\n", indent, action.Get("value").String())
		if onTrue := action.Get("on_true"); onTrue.IsArray() && len(onTrue.Array()) > 0 {
			fmt.Fprintf(w, "%s  then:\n", indent)
			describeActions(w, onTrue.Array(), indent+"    ")
		}
		if onFalse := action.Get("on_false"); onFalse.IsArray() && len(onFalse.Array()) > 0 {
			fmt.Fprintf(w, "%s  else:\n", indent)
			describeActions(w, onFalse.Array(), indent+"    ")
		}
	default:
		if text, ok := input.Describe(action); ok {
			fmt.Fprintf(w, "%s- %s\n", indent, text)
		} else {
			fmt.Fprintf(w, "%s- Unknown action %q\n", indent, action.Get("type").String())
		}
	}

	if post := action.Get("post_action"); post.Exists() && post.Type != gjson.Null {
		fmt.Fprintf(w, "%s  after:\n", indent)
		describeAction(w, post, indent+"    ")
	}
}

func timeoutSuffix(action gjson.Result) string {
	if t := action.Get("timeout_ms"); t.Type == gjson.Number && t.Int() > 0 {
		return fmt.Sprintf(" (up to %dms)", t.Int())
	}
	return ""
}

func buttonOf(action gjson.Result) string {
	if b := action.Get("button"); b.Type == gjson.String && b.Str != "" {
		return b.Str
	}
	return "left"
}

func init() {
	rootCmd.AddCommand(describeCmd)
}

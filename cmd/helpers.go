package cmd

import (
	"encoding/json"
	"fmt"
	"os"
)

// printJSON writes v to stdout as a single JSON document.
func printJSON(v any) error {
	return json.NewEncoder(os.Stdout).Encode(v)
}

// failValidation reports a validation failure and exits nonzero.
func failValidation(err error) {
	if jsonOutput {
		printJSON(map[string]any{"valid": false, "error": err.Error()})
	} else {
		fmt.Fprintf(os.Stderr, "Validation failed: %s\n", err)
	}
	os.Exit(1)
}

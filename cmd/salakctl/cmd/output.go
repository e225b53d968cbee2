package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/fatih/color"
)

// Success reports a completed action on stderr so stdout stays pipeable.
func Success(format string, a ...any) {
	color.New(color.FgGreen).Fprintf(os.Stderr, "✓ "+format+"\n", a...)
}

// PrintKeyValue writes one result field to stdout with the key in bold.
func PrintKeyValue(key, value string) {
	fmt.Printf("%s: %s\n", color.New(color.Bold).Sprint(key), value)
}

// writeJSON pretty-prints v to stdout for commands honoring --json.
func writeJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

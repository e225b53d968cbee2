package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/neuralarc-ai/salak/internal/vault"
)

var openSecret string

var openCmd = &cobra.Command{
	Use:   "open [file]",
	Short: "Unseal a sealed value",
	Long: `Decrypt a sealed encrypted_key/iv/auth_tag triple produced by seal (or
read from the api_keys table). Reads JSON from the given file, or stdin
when omitted. The plaintext is printed to stdout.

Examples:
  salakctl open sealed.json
  salakctl seal "value" | salakctl open`,
	Args: cobra.MaximumNArgs(1),
	RunE: runOpen,
}

func init() {
	openCmd.Flags().StringVar(&openSecret, "secret", "", "master secret (default $API_KEY_ENCRYPTION_SECRET)")
	rootCmd.AddCommand(openCmd)
}

func runOpen(_ *cobra.Command, args []string) error {
	var input io.Reader = os.Stdin
	if len(args) == 1 {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("failed to open input: %w", err)
		}
		defer f.Close()
		input = f
	}

	var sealed vault.SealedKey
	if err := json.NewDecoder(input).Decode(&sealed); err != nil {
		return fmt.Errorf("failed to parse sealed input: %w", err)
	}

	v := vault.New(resolveMasterSecret(openSecret))

	plaintext, err := v.Decrypt(&sealed)
	if err != nil {
		return fmt.Errorf("failed to unseal value: %w", err)
	}

	fmt.Print(plaintext)
	return nil
}

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/neuralarc-ai/salak/internal/vault"
)

var sealSecret string

var sealCmd = &cobra.Command{
	Use:   "seal <plaintext>",
	Short: "Seal a value under the master secret",
	Long: `Encrypt a value exactly the way the server stores api keys, producing
the encrypted_key/iv/auth_tag triple as JSON on stdout.

The master secret is taken from --secret, falling back to the
API_KEY_ENCRYPTION_SECRET environment variable.

Examples:
  salakctl seal "sk-live-..." --secret mysecret
  salakctl seal "sk-live-..." > sealed.json`,
	Args: cobra.ExactArgs(1),
	RunE: runSeal,
}

func init() {
	sealCmd.Flags().StringVar(&sealSecret, "secret", "", "master secret (default $API_KEY_ENCRYPTION_SECRET)")
	rootCmd.AddCommand(sealCmd)
}

func resolveMasterSecret(flag string) string {
	if flag != "" {
		return flag
	}
	return os.Getenv("API_KEY_ENCRYPTION_SECRET")
}

func runSeal(_ *cobra.Command, args []string) error {
	v := vault.New(resolveMasterSecret(sealSecret))

	sealed, err := v.Encrypt(args[0])
	if err != nil {
		return fmt.Errorf("failed to seal value: %w", err)
	}

	return writeJSON(sealed)
}

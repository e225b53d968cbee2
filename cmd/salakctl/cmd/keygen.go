package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/neuralarc-ai/salak/internal/crypto"
)

const masterSecretLength = 32

var keygenCmd = &cobra.Command{
	Use:   "keygen",
	Short: "Generate a master secret",
	Long: `Generate a random master secret suitable for API_KEY_ENCRYPTION_SECRET
or JWT_SECRET. The secret is printed to stdout; messages go to stderr,
making this command pipe-friendly.

Examples:
  salakctl keygen
  export API_KEY_ENCRYPTION_SECRET=$(salakctl keygen)`,
	Args: cobra.NoArgs,
	RunE: runKeygen,
}

func init() {
	rootCmd.AddCommand(keygenCmd)
}

func runKeygen(_ *cobra.Command, _ []string) error {
	secret, err := crypto.GenerateTokenString(masterSecretLength)
	if err != nil {
		return fmt.Errorf("failed to generate secret: %w", err)
	}

	if jsonOutput {
		return writeJSON(map[string]string{"secret": secret})
	}

	fmt.Println(secret)
	return nil
}

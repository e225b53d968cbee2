// Package cmd provides the CLI commands for salakctl.
package cmd

import (
	"github.com/spf13/cobra"
)

var jsonOutput bool

// rootCmd represents the base command.
var rootCmd = &cobra.Command{
	Use:   "salakctl",
	Short: "Salak operations CLI",
	Long: `salakctl provides operational tooling for a Salak deployment:
key generation, offline sealing and unsealing of api-key material, and
admin account provisioning.

Examples:
  salakctl keygen
  salakctl seal "sk-..." --secret $API_KEY_ENCRYPTION_SECRET
  salakctl open sealed.json --secret $API_KEY_ENCRYPTION_SECRET
  salakctl create-admin admin@example.com`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output in JSON format")
}

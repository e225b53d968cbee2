package cmd

import (
	"context"
	"fmt"
	"os"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/neuralarc-ai/salak/internal/config"
	"github.com/neuralarc-ai/salak/internal/database"
	"github.com/neuralarc-ai/salak/internal/identity"
	"github.com/neuralarc-ai/salak/internal/services"
	"github.com/neuralarc-ai/salak/internal/validation"
)

var adminName string

var createAdminCmd = &cobra.Command{
	Use:   "create-admin <email>",
	Short: "Provision an admin account",
	Long: `Create a local admin account directly in the database. The password is
read interactively, never from arguments. Database connection settings
come from the same environment variables the server uses.

Examples:
  salakctl create-admin admin@example.com
  salakctl create-admin admin@example.com --name "Site Admin"`,
	Args: cobra.ExactArgs(1),
	RunE: runCreateAdmin,
}

func init() {
	createAdminCmd.Flags().StringVar(&adminName, "name", "Admin", "display name for the account")
	rootCmd.AddCommand(createAdminCmd)
}

func readPassword(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	raw, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(raw), nil
}

func runCreateAdmin(cmd *cobra.Command, args []string) error {
	email := args[0]

	if err := validation.Email(email); err != nil {
		return err
	}
	if err := validation.Name(adminName); err != nil {
		return err
	}

	password, err := readPassword("Password: ")
	if err != nil {
		return err
	}
	if err := validation.Password(password); err != nil {
		return err
	}
	confirm, err := readPassword("Confirm password: ")
	if err != nil {
		return err
	}
	if password != confirm {
		return fmt.Errorf("passwords do not match")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	pool, err := database.Connect(ctx, &cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	userService := services.NewUserService(pool)

	user, err := userService.Register(ctx, services.RegisterParams{
		Email:    email,
		Name:     adminName,
		Password: password,
		Role:     identity.RoleAdmin,
	})
	if err != nil {
		return fmt.Errorf("failed to create admin: %w", err)
	}

	Success("admin account created")
	PrintKeyValue("id", user.ID)
	PrintKeyValue("email", user.Email)
	return nil
}

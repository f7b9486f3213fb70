// Package cli implements the userctl command.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/JonMunkholm/userdash/internal/columns"
	"github.com/JonMunkholm/userdash/internal/config"
	"github.com/JonMunkholm/userdash/internal/core"
	"github.com/JonMunkholm/userdash/internal/database"
	"github.com/JonMunkholm/userdash/internal/fieldrules"
	"github.com/JonMunkholm/userdash/internal/logging"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

const (
	FlagRules    = "rules"
	FlagEnvFile  = "env-file"
	FlagOutput   = "output"
	FlagLogLevel = "log-level"
)

// New returns the root userctl command.
func New() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "userctl",
		Short: "Inspect users and field rules of the user dashboard",
		Long: `userctl renders the users table in the terminal with the same column
resolution the dashboard uses, and checks field rules files before they are
deployed.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if path, _ := cmd.Flags().GetString(FlagEnvFile); path != "" {
				if err := godotenv.Load(path); err != nil {
					return fmt.Errorf("load env file: %w", err)
				}
			}
			level, _ := cmd.Flags().GetString(FlagLogLevel)
			slog.SetDefault(logging.New(cmd.ErrOrStderr(), level, "text"))
			return nil
		},
		DisableAutoGenTag: true,
	}

	cmd.PersistentFlags().String(FlagRules, os.Getenv("FIELD_RULES_FILE"), "field rules file (defaults to $FIELD_RULES_FILE)")
	cmd.PersistentFlags().String(FlagEnvFile, "", "load environment variables from this file")
	cmd.PersistentFlags().String(FlagLogLevel, "warn", "log level: debug, info, warn, error")

	cmd.AddCommand(
		newUsersCmd(),
		newColumnsCmd(),
		newValidateCmd(),
		newMigrateCmd(),
		newImportCmd(),
		newResetCmd(),
	)
	return cmd
}

// loadCustoms reads the --rules file. No file means no customizations.
func loadCustoms(cmd *cobra.Command) ([]columns.Customization, error) {
	path, _ := cmd.Flags().GetString(FlagRules)
	if path == "" {
		return nil, nil
	}
	return fieldrules.Load(path, fieldrules.NewRegistry())
}

// openDB loads the database settings from the environment and connects.
func openDB(ctx context.Context) (*pgxpool.Pool, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return database.Open(ctx, cfg.Database)
}

// Report prints err for the terminal. Errors with a known user message get
// it on a second line.
func Report(w io.Writer, err error) {
	fmt.Fprintf(w, "Error: %v\n", err)
	if core.IsUserFacing(err) {
		fmt.Fprintln(w, core.FormatUserError(err))
	}
}

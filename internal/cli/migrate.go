package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// MigrateResult reports the database state after migration.
type MigrateResult struct {
	Path          string `json:"path"`
	SchemaVersion int    `json:"schema_version"`
}

// NewMigrateCommand creates the migrate command.
func NewMigrateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or upgrade the database schema",
		Long: `Create the database file if needed, create missing tables and apply
pending migrations. Safe to run repeatedly.

Example:
  navegante migrate --db ./data/navegante.db`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate(rootOpts, cmd)
		},
	}
	return cmd
}

func runMigrate(opts *RootOptions, cmd *cobra.Command) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	logger := newLogger(cfg, cmd.ErrOrStderr())

	st, err := openStore(cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore(st, logger)

	version, err := st.SchemaVersion(cmd.Context())
	if err != nil {
		return WrapExitError(ExitFailure, "failed to read schema version", err)
	}

	result := MigrateResult{Path: cfg.Database.Path, SchemaVersion: version}
	text := fmt.Sprintf("Database %s is at schema version %d\n", result.Path, result.SchemaVersion)
	return newOutput(opts, cmd).Report(result, text)
}

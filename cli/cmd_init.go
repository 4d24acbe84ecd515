package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func (app *App) initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the session table if it does not exist",
		Long: `Create the session table for the configured driver.

This is idempotent: running it against a database that already has the
table is a no-op.

Examples:
  sessionctl init --driver postgres --dsn "$DATABASE_URL"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			h, err := app.setupHandler(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = h.Close(ctx) }()

			if err := h.CreateTable(ctx); err != nil {
				return fmt.Errorf("failed to create session table: %w", err)
			}

			fmt.Printf("✓ Session table %q is ready\n", app.config.Table)
			return nil
		},
	}
}

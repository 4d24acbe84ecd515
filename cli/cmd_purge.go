package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func (app *App) purgeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "purge",
		Short: "Delete every session row",
		Long: `Delete every row from the session table, expired or not.

⚠️  WARNING: This is a destructive operation. Every logged-in user will be
signed out.

Examples:
  sessionctl purge --driver postgres --dsn "$DATABASE_URL"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			operation := "PURGE ALL SESSIONS (⚠️  DESTRUCTIVE)"
			if err := app.checkConfirmation(operation); err != nil {
				return err
			}

			if !app.config.Yes {
				if !confirm("⚠️  This will delete every session row. Are you absolutely sure?") {
					return fmt.Errorf("operation cancelled")
				}
			}

			h, err := app.setupHandler(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = h.Close(ctx) }()

			if err := h.Purge(ctx); err != nil {
				return fmt.Errorf("failed to purge sessions: %w", err)
			}

			fmt.Println("✓ All sessions have been deleted")
			return nil
		},
	}
}

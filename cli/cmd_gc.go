package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func (app *App) gcCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "gc",
		Short: "Sweep expired sessions",
		Long: `Delete every session row whose expiry has passed.

The handler's GC call only marks the sweep as due; the actual deletion
runs when the handler closes, so this command opens a handler, calls GC,
and closes it in the same breath.

Examples:
  sessionctl gc --driver postgres --dsn "$DATABASE_URL"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			operation := "sweep expired sessions"
			if err := app.checkConfirmation(operation); err != nil {
				return err
			}

			h, err := app.setupHandler(ctx)
			if err != nil {
				return err
			}

			if _, err := h.GC(ctx, int(app.config.MaxLifetimeSeconds)); err != nil {
				_ = h.Close(ctx)
				return fmt.Errorf("failed to schedule gc: %w", err)
			}
			if err := h.Close(ctx); err != nil {
				return fmt.Errorf("failed to sweep expired sessions: %w", err)
			}

			fmt.Println("✓ Expired sessions swept")
			return nil
		},
	}
}

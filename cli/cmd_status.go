package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/honeynil/dbsession"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

func (app *App) statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show handler status",
		Long: `Show the state of a freshly opened handler against the
configured database: its driver, table, lock mode, and whether it currently
holds an open transaction.

Output format:
  - Table format (default): human-readable table
  - JSON format (--json): machine-readable JSON output

Examples:
  # Show status in table format
  sessionctl status

  # Show status in JSON format
  sessionctl status --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			h, err := app.setupHandler(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = h.Close(ctx) }()

			status := h.Status()

			if app.config.JSON {
				return app.outputStatusJSON(status)
			}
			return app.outputStatusTable(status)
		},
	}
}

func (app *App) outputStatusTable(status dbsession.HandlerStatus) error {
	table := tablewriter.NewWriter(os.Stdout)
	table.Header([]string{"Field", "Value"})

	rows := [][]string{
		{"driver", status.Driver},
		{"table", status.Table},
		{"state", status.State.String()},
		{"lock mode", status.LockMode.String()},
		{"in transaction", fmt.Sprintf("%t", status.InTransaction)},
		{"gc called", fmt.Sprintf("%t", status.GCCalled)},
		{"session expired", fmt.Sprintf("%t", status.SessionExpired)},
	}
	for _, row := range rows {
		if err := table.Append(row); err != nil {
			return err
		}
	}

	return table.Render()
}

func (app *App) outputStatusJSON(status dbsession.HandlerStatus) error {
	output := struct {
		Driver         string `json:"driver"`
		Table          string `json:"table"`
		State          string `json:"state"`
		LockMode       string `json:"lock_mode"`
		InTransaction  bool   `json:"in_transaction"`
		GCCalled       bool   `json:"gc_called"`
		SessionExpired bool   `json:"session_expired"`
	}{
		Driver:         status.Driver,
		Table:          status.Table,
		State:          status.State.String(),
		LockMode:       status.LockMode.String(),
		InTransaction:  status.InTransaction,
		GCCalled:       status.GCCalled,
		SessionExpired: status.SessionExpired,
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(output)
}

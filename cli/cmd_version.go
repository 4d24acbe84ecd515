package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/honeynil/dbsession/dialect"
	"github.com/spf13/cobra"
)

func (app *App) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show supported drivers",
		Long: `List the database drivers this build of sessionctl supports.

Examples:
  sessionctl version`,
		RunE: func(cmd *cobra.Command, args []string) error {
			drivers := dialect.Supported()
			sort.Strings(drivers)
			fmt.Printf("sessionctl: supported drivers: %s\n", strings.Join(drivers, ", "))
			return nil
		},
	}
}

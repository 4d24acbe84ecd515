// Package cli provides a command-line interface for operating a dbsession
// store outside of the request path: bootstrapping its table, sweeping
// expired rows, purging everything, and inspecting handler status.
//
// Operators build their own binary and call cli.Run():
//
//	// cmd/sessionctl/main.go
//	package main
//
//	import "github.com/honeynil/dbsession/cli"
//
//	func main() {
//	    cli.Run()
//	}
//
// The CLI supports configuration through flags, environment variables, and
// an optional .sessionctl.yaml config file.
package cli

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/honeynil/dbsession"
	"github.com/spf13/cobra"
)

// DBOpener is a function that opens a database connection. It receives the
// DSN (data source name) and returns a *sql.DB.
type DBOpener func(dsn string) (*sql.DB, error)

// App holds the CLI application state.
type App struct {
	dbOpener DBOpener
	config   *Config
	rootCmd  *cobra.Command
}

// Run starts the CLI using sql.Open with the driver name to connect.
// This is the main entry point for operators.
//
// Configuration priority:
//  1. Command-line flags (highest)
//  2. Environment variables
//  3. Config file .sessionctl.yaml (lowest, requires --use-config)
func Run() {
	RunWithDB(nil)
}

// RunWithDB starts the CLI with a custom database opener. If dbOpener is
// nil, uses sql.Open with the driver name.
func RunWithDB(dbOpener DBOpener) {
	app := &App{
		dbOpener: dbOpener,
		config:   &Config{},
	}

	app.rootCmd = &cobra.Command{
		Use:   "sessionctl",
		Short: "dbsession operator CLI",
		Long: `sessionctl - operator tooling for a database-backed session store.

Configuration priority:
  1. Command-line flags (highest)
  2. Environment variables (SESSIONCTL_DRIVER, SESSIONCTL_DSN, etc.)
  3. Config file .sessionctl.yaml (lowest, requires --use-config)

Examples:
  # Create the session table if it doesn't exist
  sessionctl init

  # Sweep expired sessions
  sessionctl gc

  # Delete every session row (destructive)
  sessionctl purge

  # Show handler status
  sessionctl status`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	app.addGlobalFlags()
	app.addCommands()

	if err := app.rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// addGlobalFlags adds flags that are available to all commands.
func (app *App) addGlobalFlags() {
	flags := app.rootCmd.PersistentFlags()

	flags.StringVar(&app.config.Driver, "driver", "", "Database driver (postgres, mysql, sqlite, mssql, oracle)")
	flags.StringVar(&app.config.DSN, "dsn", "", "Database connection string")
	flags.StringVar(&app.config.Table, "table", DefaultTableName, "Session table name")
	flags.StringVar(&app.config.LockMode, "lock-mode", "transactional", "Lock mode (none, advisory, transactional)")
	flags.StringVar(&app.config.ServerVersion, "server-version", "", "Database server version (empty assumes modern)")
	flags.Int64Var(&app.config.MaxLifetimeSeconds, "max-lifetime", 1440, "Session max lifetime in seconds")
	flags.BoolVar(&app.config.UseConfig, "use-config", false, "Enable config file (.sessionctl.yaml)")
	flags.StringVar(&app.config.Env, "env", "", "Environment from config file (development, staging, production)")
	flags.BoolVar(&app.config.UnlockProduction, "unlock-production", false, "Unlock production environment")
	flags.BoolVar(&app.config.Yes, "yes", false, "Automatic yes to prompts (for CI/CD)")
	flags.BoolVar(&app.config.JSON, "json", false, "Output in JSON format")
	flags.BoolVar(&app.config.Verbose, "verbose", false, "Verbose output")
}

// addCommands registers all CLI commands.
func (app *App) addCommands() {
	app.rootCmd.AddCommand(
		app.initCmd(),
		app.gcCmd(),
		app.purgeCmd(),
		app.statusCmd(),
		app.versionCmd(),
	)
}

// setupHandler creates a dbsession.Handler with the current configuration,
// opens it, and returns it ready for use. Callers must Close it.
func (app *App) setupHandler(ctx context.Context) (*dbsession.Handler, error) {
	if err := app.loadConfig(); err != nil {
		return nil, err
	}

	if app.config.Driver == "" {
		return nil, fmt.Errorf("driver is required (use --driver or SESSIONCTL_DRIVER)")
	}
	if app.config.DSN == "" {
		return nil, fmt.Errorf("dsn is required (use --dsn or SESSIONCTL_DSN)")
	}

	var db *sql.DB
	var err error

	if app.dbOpener != nil {
		db, err = app.dbOpener(app.config.DSN)
	} else {
		sqlDriverName := getSQLDriverName(app.config.Driver)
		db, err = sql.Open(sqlDriverName, app.config.DSN)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	opts, err := app.handlerOptions()
	if err != nil {
		db.Close()
		return nil, err
	}

	h, err := dbsession.New(normalizeDialectTag(app.config.Driver), db, opts...)
	if err != nil {
		db.Close()
		return nil, err
	}
	if err := h.Open(ctx, "", "sessionctl"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to open handler: %w", err)
	}

	return h, nil
}

func (app *App) handlerOptions() ([]dbsession.Option, error) {
	lockMode, err := parseLockMode(app.config.LockMode)
	if err != nil {
		return nil, err
	}

	opts := []dbsession.Option{
		dbsession.WithTable(app.config.Table),
		dbsession.WithLockMode(lockMode),
		dbsession.WithServerVersion(app.config.ServerVersion),
		dbsession.WithMaxLifetime(func() int64 { return app.config.MaxLifetimeSeconds }),
	}
	return opts, nil
}

func parseLockMode(s string) (dbsession.LockMode, error) {
	switch s {
	case "none":
		return dbsession.LockNone, nil
	case "advisory":
		return dbsession.LockAdvisory, nil
	case "transactional", "":
		return dbsession.LockTransactional, nil
	default:
		return 0, fmt.Errorf("unsupported lock mode: %s (supported: none, advisory, transactional)", s)
	}
}

// loadConfig loads configuration from all sources.
// Priority: flags > env > config file.
func (app *App) loadConfig() error {
	app.loadEnv()
	if app.config.UseConfig {
		if err := app.loadConfigFile(); err != nil {
			return err
		}
	}
	return nil
}

func (app *App) loadEnv() {
	if app.config.Driver == "" {
		if driver := os.Getenv("SESSIONCTL_DRIVER"); driver != "" {
			app.config.Driver = driver
		}
	}

	if app.config.DSN == "" {
		if dsn := os.Getenv("SESSIONCTL_DSN"); dsn != "" {
			app.config.DSN = dsn
		}
	}

	if app.config.Table == DefaultTableName {
		if table := os.Getenv("SESSIONCTL_TABLE"); table != "" {
			app.config.Table = table
		}
	}
}

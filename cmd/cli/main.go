package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/seatcall/seatcall/cmd/cli/commands"
	"github.com/seatcall/seatcall/internal/config"
	"github.com/seatcall/seatcall/pkg/postgres"
	"github.com/seatcall/seatcall/pkg/sqlite"
	"github.com/seatcall/seatcall/pkg/utils/logging"
)

var (
	env     string
	app     = &commands.AppContext{}
	closeDB func()
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "seatcall",
		Short: "Seatcall - allocate admission seats across quota categories",
		Long: `A CLI tool for loading ranked candidates, defining seats per quota, generating
successive calls and redistributing seats left by disqualified candidates.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initApp()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if closeDB != nil {
				closeDB()
			}
			if app.Logger != nil {
				app.Logger.Sync()
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&env, "env", "e", "", "Environment (required: test, prod, etc.)")
	rootCmd.MarkPersistentFlagRequired("env")

	rootCmd.AddCommand(commands.LoadCmd(app))
	rootCmd.AddCommand(commands.ImportCmd(app))
	rootCmd.AddCommand(commands.SeatsCmd(app))
	rootCmd.AddCommand(commands.LedgerCmd(app))
	rootCmd.AddCommand(commands.RoundCmd(app))
	rootCmd.AddCommand(commands.GenerateCmd(app))
	rootCmd.AddCommand(commands.DisqualifyCmd(app))
	rootCmd.AddCommand(commands.CallsCmd(app))
	rootCmd.AddCommand(commands.ExportCmd(app))
	rootCmd.AddCommand(commands.PublishCmd(app))
	rootCmd.AddCommand(commands.NotifyCmd(app))
	rootCmd.AddCommand(commands.ReportCmd(app))
	rootCmd.AddCommand(commands.ResetCmd(app))
	rootCmd.AddCommand(commands.ServeCmd(app))
	rootCmd.AddCommand(commands.InteractiveCmd(app))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// initApp sets up logger, config and the session store. Google clients are created on
// first use by the commands that need them.
func initApp() error {
	var err error
	app.Env = env
	app.Ctx = context.Background()

	// Initialize logger
	app.Logger, err = logging.InitLogger(env)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	app.Logger.Info("Starting application", zap.String("environment", env))

	// Load configuration
	app.Logger.Info("Loading configuration")
	app.Cfg, err = config.LoadWithEnv(env)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	app.Logger.Debug("Configuration loaded successfully")

	// Open the session store
	app.Logger.Info("Connecting to store", zap.String("driver", app.Cfg.Store.Driver))
	switch app.Cfg.Store.Driver {
	case "postgres":
		pg, err := postgres.NewDB(app.Ctx, app.Cfg.Store.DSN)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := pg.RunMigrations(app.Ctx); err != nil {
			pg.Close()
			return fmt.Errorf("failed to run migrations: %w", err)
		}
		app.Database = pg
		closeDB = pg.Close
	case "sqlite":
		lite, err := sqlite.NewDB(app.Ctx, app.Cfg.Store.Path)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		app.Database = lite
		closeDB = func() {
			if err := lite.Close(); err != nil {
				app.Logger.Warn("Failed to close database", zap.Error(err))
			}
		}
	default:
		return fmt.Errorf("unsupported store driver %q", app.Cfg.Store.Driver)
	}
	app.Logger.Info("Store initialized successfully")

	return nil
}

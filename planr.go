// Command planr is a local task planner with projects, categories, a
// calendar and iCalendar export.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mrusme/planr/access"
	"github.com/mrusme/planr/config"
	"github.com/mrusme/planr/state"
	"github.com/mrusme/planr/store"
)

var (
	cfgFile      string
	databasePath string
	verbose      bool
	outputJson   bool
)

var rootCmd = &cobra.Command{
	Use:   "planr",
	Short: "Local task planner with projects, categories and a calendar",
	Long: `planr keeps tasks, projects and categories in a local database,
filters and sorts them, places scheduled tasks on a calendar and exports
them as iCalendar.

Quick start:
  planr project add Work --color "#3366ff"
  planr task add "Write report" --project Work --urgency high --schedule tomorrow
  planr task list --urgency high --sort deadline
  planr calendar --view month
  planr export ics -o tasks.ics`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("Error: "+err.Error()))
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $XDG_CONFIG_HOME/planr/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&databasePath, "database", "", "local planner database (env PLANR_DATABASE)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVarP(&outputJson, "json", "j", false, "output JSON")

	rootCmd.AddCommand(newTaskCmd())
	rootCmd.AddCommand(newProjectCmd())
	rootCmd.AddCommand(newCategoryCmd())
	rootCmd.AddCommand(newCalendarCmd())
	rootCmd.AddCommand(newExportCmd())
	rootCmd.AddCommand(newPublishCmd())
	rootCmd.AddCommand(newStatusCmd())
}

// app bundles what every command needs: configuration, the open store and
// the loaded planner state.
type app struct {
	cfg    *config.Config
	db     *store.Store
	acc    *access.Access
	state  *state.State
	logger *slog.Logger
}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func loadConfig(logger *slog.Logger) (*config.Config, error) {
	v := viper.New()
	config.SetDefaults(v)
	if err := config.ReadFile(v, cfgFile); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if used := v.ConfigFileUsed(); used != "" {
		logger.Debug("using config file", "path", used)
	}
	if databasePath != "" {
		v.Set(config.KeyDatabase, databasePath)
	}
	return config.Load(v)
}

func openApp(ctx context.Context) (*app, error) {
	logger := newLogger()
	slog.SetDefault(logger)

	cfg, err := loadConfig(logger)
	if err != nil {
		return nil, err
	}

	db, err := store.Open(cfg.Database, store.WithSyncPolicy(cfg.Sync), store.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	acc := access.New(db, access.WithLogger(logger))
	st := state.New(acc, state.WithLogger(logger))
	if err := st.Load(ctx); err != nil {
		// Collections that failed to load stay empty; the command goes on.
		logger.Warn(st.Error(), "error", err)
	}

	return &app{cfg: cfg, db: db, acc: acc, state: st, logger: logger}, nil
}

func (a *app) Close() {
	if err := a.db.Close(); err != nil {
		a.logger.Warn("close database", "error", err)
	}
}

// run opens the app around a command body.
func run(fn func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()
		return fn(ctx, a, cmd, args)
	}
}

// failed turns a state error into the single user-facing message recorded
// by the state provider.
func (a *app) failed(err error) error {
	a.logger.Debug("operation failed", "error", err)
	msg := a.state.Error()
	if msg == "" {
		return err
	}
	cause := errors.Unwrap(err)
	if cause == nil {
		cause = err
	}
	return fmt.Errorf("%s: %w", msg, cause)
}

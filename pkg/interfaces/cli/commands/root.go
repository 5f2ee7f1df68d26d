package commands

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vsinha/bomcost/pkg/costing"
	"github.com/vsinha/bomcost/pkg/domain/entities"
	"github.com/vsinha/bomcost/pkg/infrastructure/config"
	"github.com/vsinha/bomcost/pkg/infrastructure/logging"
	"github.com/vsinha/bomcost/pkg/infrastructure/repositories/sqlite"
)

// app carries the state shared by every subcommand of one invocation
type app struct {
	configPath string
	dbPath     string
	logLevel   string

	cfg    *config.Config
	logger *zap.Logger
	repo   *sqlite.Repository
}

// NewRootCommand builds the bomcost command tree
func NewRootCommand() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "bomcost",
		Short:         "BOM cost calculation and rollup",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "Path to config file (default: bomcost.yaml in ./configs or .)")
	root.PersistentFlags().StringVar(&a.dbPath, "db", "", "Path to the SQLite database (overrides database.path)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level: debug, info, warn, error")

	root.AddCommand(
		newLoadCommand(a),
		newValidateCommand(a),
		newTreeCommand(a),
		newRecalcCommand(a),
		newReportCommand(a),
		newCalcCommand(a),
	)
	return root
}

// Execute runs the CLI and exits non-zero on failure
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := NewRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

// setup loads .env, configuration and the logger. Flags win over the
// config file and environment.
func (a *app) setup() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}

	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.dbPath != "" {
		cfg.Database.Path = a.dbPath
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.logger = logger
	return nil
}

// openEngine opens the database and wires the costing engine over it.
// Callers must call a.close when done.
func (a *app) openEngine() (*costing.Engine, error) {
	repo, err := sqlite.Open(a.cfg.Database.Path)
	if err != nil {
		return nil, err
	}
	a.repo = repo
	a.logger.Debug("database opened", zap.String("path", a.cfg.Database.Path))

	engine, err := costing.NewEngineWithConfig(repo, a.logger, costing.EngineConfig{
		RecalcConcurrency: a.cfg.Costing.RecalcConcurrency,
	})
	if err != nil {
		a.close()
		return nil, err
	}
	return engine, nil
}

func (a *app) close() {
	if a.repo != nil {
		if err := a.repo.Close(); err != nil {
			a.logger.Warn("failed to close database", zap.Error(err))
		}
		a.repo = nil
	}
	_ = a.logger.Sync()
}

// loadBOM returns the stored items of a BOM, failing when there are none
func (a *app) loadBOM(ctx context.Context, bomID entities.BOMID) ([]*entities.BomItem, error) {
	items, err := a.repo.GetItemsForBOM(ctx, bomID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("bom %s has no items", bomID)
	}
	return items, nil
}

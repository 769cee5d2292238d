// Package planner parses planner command flags and runs the selected
// operation against the configured store.
package planner

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/planwellhq/planwell/internal/planning/workflow"
	"github.com/planwellhq/planwell/internal/platform/config"
	platformotel "github.com/planwellhq/planwell/internal/platform/otel"
	"github.com/planwellhq/planwell/internal/storage/sqlite"
)

const serviceName = "planwell-planner"

// Config holds planner command configuration.
type Config struct {
	DBPath    string        `env:"PLANWELL_DB_PATH"`
	LogLevel  string        `env:"PLANWELL_LOG_LEVEL" envDefault:"info"`
	Timeout   time.Duration `env:"PLANWELL_TIMEOUT" envDefault:"5m"`
	Migrate   bool
	Reconcile bool
	Seed      bool
}

// ParseConfig parses environment and flags into Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := config.ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if cfg.DBPath == "" {
		cfg.DBPath = filepath.Join("data", "planwell.db")
	}

	fs.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "path to the sqlite database (default: PLANWELL_DB_PATH or data/planwell.db)")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "zerolog level (trace|debug|info|warn|error)")
	fs.BoolVar(&cfg.Migrate, "migrate", false, "apply migrations and exit")
	fs.BoolVar(&cfg.Reconcile, "reconcile", false, "finish interrupted conversions and print a JSON report")
	fs.BoolVar(&cfg.Seed, "seed", false, "populate a demo planner pipeline")
	fs.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "overall timeout")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	modes := 0
	for _, enabled := range []bool{cfg.Migrate, cfg.Reconcile, cfg.Seed} {
		if enabled {
			modes++
		}
	}
	if modes == 0 {
		return Config{}, errors.New("one of -migrate, -reconcile, or -seed is required")
	}
	if modes > 1 {
		return Config{}, errors.New("-migrate, -reconcile, and -seed are mutually exclusive")
	}
	return cfg, nil
}

// Run executes the planner command.
func Run(ctx context.Context, cfg Config, out io.Writer, errOut io.Writer) error {
	if out == nil {
		out = io.Discard
	}
	if errOut == nil {
		errOut = io.Discard
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("parse log level: %w", err)
	}
	logger := zerolog.New(errOut).Level(level).With().Timestamp().Str("service", serviceName).Logger()

	shutdown, err := platformotel.Setup(ctx, serviceName)
	if err != nil {
		return fmt.Errorf("setup telemetry: %w", err)
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			logger.Warn().Err(err).Msg("telemetry shutdown failed")
		}
	}()

	store, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Warn().Err(err).Msg("close store failed")
		}
	}()

	switch {
	case cfg.Migrate:
		// Open already applied the embedded migrations
		logger.Info().Str("db_path", cfg.DBPath).Msg("migrations applied")
		return nil

	case cfg.Reconcile:
		intakes := workflow.NewIntakeWorkflow(store, store, store, workflow.WithLogger(logger))
		repaired, err := intakes.ReconcileConversions(ctx)
		if err != nil {
			return fmt.Errorf("reconcile conversions: %w", err)
		}
		report := struct {
			Repaired []string `json:"repaired"`
			Count    int      `json:"count"`
		}{Repaired: repaired, Count: len(repaired)}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(report)

	case cfg.Seed:
		return seed(ctx, store, logger, out)
	}
	return nil
}

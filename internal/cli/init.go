// Package cli wires configuration, storage and the ledger into the fintrack
// command line and its interactive menu.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"fintrack/internal/config"
	"fintrack/internal/log"
)

// SetupLogger builds the application logger writing to w at level and sets
// it as the default logger.
func SetupLogger(level string, w io.Writer) (*log.Logger, error) {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	logger := log.New(log.Config{
		Level:     lvl,
		Component: log.ComponentCLI,
		Output:    w,
	})
	log.SetDefault(logger)
	return logger, nil
}

// LoadEnvFile loads the .env file for local development.
// A missing file is not an error.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// Overrides are command line values that take precedence over the environment.
type Overrides struct {
	User    *string
	DataDir *string
	Backend *string
}

// LoadAndValidateConfig loads configuration from the environment, applies
// overrides and validates the result.
func LoadAndValidateConfig(o Overrides) (*config.Config, error) {
	cfg := config.Load()
	if o.User != nil {
		cfg.User = *o.User
	}
	if o.DataDir != nil {
		cfg.DataDir = *o.DataDir
	}
	if o.Backend != nil {
		cfg.DataBackend = *o.Backend
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SignalContext returns a context cancelled on SIGINT or SIGTERM.
func SignalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// Execute runs the command line against the process streams and returns
// the exit code.
func Execute() int {
	LoadEnvFile()

	ctx, stop := SignalContext(context.Background())
	defer stop()

	if err := Run(ctx, os.Args[1:], Options{In: os.Stdin, Out: os.Stdout, Err: os.Stderr}); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", userMessage(err))
		return 1
	}
	return 0
}

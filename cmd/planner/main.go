// Package main provides the planner maintenance and seeding utility.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	plannercmd "github.com/planwellhq/planwell/internal/cmd/planner"
	"github.com/planwellhq/planwell/internal/platform/config"
)

func main() {
	cfg, err := plannercmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exitf("Error: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	if err := plannercmd.Run(ctx, cfg, os.Stdout, os.Stderr); err != nil {
		config.Exitf("Error: %v", err)
	}
}

package planner

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"path/filepath"
	"testing"
	"time"
)

func TestParseConfigRequiresOneMode(t *testing.T) {
	fs := flag.NewFlagSet("planner", flag.ContinueOnError)
	if _, err := ParseConfig(fs, nil); err == nil {
		t.Fatal("expected missing mode to be rejected")
	}
}

func TestParseConfigRejectsCombinedModes(t *testing.T) {
	fs := flag.NewFlagSet("planner", flag.ContinueOnError)
	if _, err := ParseConfig(fs, []string{"-migrate", "-seed"}); err == nil {
		t.Fatal("expected combined modes to be rejected")
	}
}

func TestParseConfigDefaults(t *testing.T) {
	fs := flag.NewFlagSet("planner", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, []string{"-migrate"})
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.DBPath == "" {
		t.Fatal("expected a default db path")
	}
	if cfg.Timeout != 5*time.Minute {
		t.Fatalf("expected default timeout, got %v", cfg.Timeout)
	}
	if cfg.LogLevel != "info" {
		t.Fatalf("expected default log level, got %q", cfg.LogLevel)
	}
}

func TestRunMigrateAndSeed(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "planwell.db")

	migrateCfg := Config{DBPath: dbPath, LogLevel: "warn", Migrate: true}
	if err := Run(context.Background(), migrateCfg, nil, nil); err != nil {
		t.Fatalf("migrate run: %v", err)
	}

	var out bytes.Buffer
	seedCfg := Config{DBPath: dbPath, LogLevel: "warn", Seed: true}
	if err := Run(context.Background(), seedCfg, &out, nil); err != nil {
		t.Fatalf("seed run: %v", err)
	}

	var report struct {
		EventID    string `json:"event_id"`
		ProposalID string `json:"proposal_id"`
	}
	if err := json.Unmarshal(out.Bytes(), &report); err != nil {
		t.Fatalf("decode seed report: %v", err)
	}
	if report.EventID == "" || report.ProposalID == "" {
		t.Fatalf("expected seeded ids in report, got %s", out.String())
	}

	// reconcile against the seeded store has nothing to repair
	out.Reset()
	reconcileCfg := Config{DBPath: dbPath, LogLevel: "warn", Reconcile: true}
	if err := Run(context.Background(), reconcileCfg, &out, nil); err != nil {
		t.Fatalf("reconcile run: %v", err)
	}
	var reconcile struct {
		Count int `json:"count"`
	}
	if err := json.Unmarshal(out.Bytes(), &reconcile); err != nil {
		t.Fatalf("decode reconcile report: %v", err)
	}
	if reconcile.Count != 0 {
		t.Fatalf("expected nothing to repair, got %d", reconcile.Count)
	}
}

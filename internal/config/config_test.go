package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultLifecycleValues(t *testing.T) {
	cfg := Default()

	if cfg.Lifecycle.QueueTargetDepth != 75 || cfg.Lifecycle.QueueMinDepth != 50 {
		t.Fatalf("unexpected queue floors: %+v", cfg.Lifecycle)
	}
	if cfg.Lifecycle.VotingDuration != 10*time.Minute {
		t.Fatalf("unexpected voting duration: %s", cfg.Lifecycle.VotingDuration)
	}
	if cfg.Lifecycle.ApprovalThreshold != 5 {
		t.Fatalf("unexpected approval threshold: %d", cfg.Lifecycle.ApprovalThreshold)
	}
	if cfg.Lifecycle.VotersPerProposal != 10 {
		t.Fatalf("unexpected voters per proposal: %d", cfg.Lifecycle.VotersPerProposal)
	}
}

func TestLoadMissingFileFallsBackToDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("load with missing file: %v", err)
	}
	if cfg.HTTP.Addr != ":8080" {
		t.Fatalf("unexpected addr: %s", cfg.HTTP.Addr)
	}
}

func TestLoadAppliesYAMLAndEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := `
env: prod
lifecycle:
  queue_min_depth: 20
  voting_duration: 30m
`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("APPROVAL_THRESHOLD", "7")
	t.Setenv("OG_ENDPOINT", "https://inference.example")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.Env != "prod" {
		t.Fatalf("unexpected env: %s", cfg.Env)
	}
	if cfg.Lifecycle.QueueMinDepth != 20 {
		t.Fatalf("yaml override ignored: %d", cfg.Lifecycle.QueueMinDepth)
	}
	if cfg.Lifecycle.VotingDuration != 30*time.Minute {
		t.Fatalf("unexpected voting duration: %s", cfg.Lifecycle.VotingDuration)
	}
	if cfg.Lifecycle.ApprovalThreshold != 7 {
		t.Fatalf("env override ignored: %d", cfg.Lifecycle.ApprovalThreshold)
	}
	if cfg.Inference.Endpoint != "https://inference.example" {
		t.Fatalf("unexpected inference endpoint: %s", cfg.Inference.Endpoint)
	}
}

func TestLoadRejectsBadEnvDuration(t *testing.T) {
	t.Setenv("VOTING_DURATION", "not-a-duration")

	if _, err := Load(""); err == nil {
		t.Fatalf("expected error for invalid duration override")
	}
}

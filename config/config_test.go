package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/cobra"
)

func newTestCmd(t *testing.T) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "test"}
	if err := RegisterFlags(cmd); err != nil {
		t.Fatalf("RegisterFlags() error = %v", err)
	}
	return cmd
}

func parseFlags(t *testing.T, cmd *cobra.Command, args ...string) {
	t.Helper()
	if err := cmd.Flags().Parse(args); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	cmd := newTestCmd(t)
	parseFlags(t, cmd, "--snapshot", "/tmp/snap.html")

	cfg, err := LoadConfig(cmd)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.SnapshotPath != "/tmp/snap.html" {
		t.Errorf("SnapshotPath = %q", cfg.SnapshotPath)
	}
	if cfg.OutDir != "." {
		t.Errorf("OutDir = %q, want \".\"", cfg.OutDir)
	}
	if cfg.Format != "json" {
		t.Errorf("Format = %q, want json", cfg.Format)
	}
	if cfg.Interval != 1500*time.Millisecond {
		t.Errorf("Interval = %v, want 1.5s", cfg.Interval)
	}
	if cfg.StallThreshold != 15 {
		t.Errorf("StallThreshold = %d, want 15", cfg.StallThreshold)
	}
	if !cfg.AutoScroll {
		t.Error("AutoScroll = false, want true")
	}
	if cfg.StopOnStall {
		t.Error("StopOnStall = true, want false")
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want info", cfg.LogLevel)
	}
}

func TestLoadConfig_SnapshotRequired(t *testing.T) {
	cmd := newTestCmd(t)
	parseFlags(t, cmd)

	if _, err := LoadConfig(cmd); err == nil {
		t.Error("LoadConfig() error = nil, want missing snapshot error")
	}
}

func TestLoadConfig_Validation(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{
			name:    "interval_too_small",
			args:    []string{"--snapshot", "s.html", "--interval", "50ms"},
			wantErr: "interval",
		},
		{
			name:    "threshold_too_small",
			args:    []string{"--snapshot", "s.html", "--stall-threshold", "0"},
			wantErr: "stall-threshold",
		},
		{
			name:    "bad_log_level",
			args:    []string{"--snapshot", "s.html", "--log-level", "verbose"},
			wantErr: "log-level",
		},
		{
			name: "include_exclude_conflict",
			args: []string{"--snapshot", "s.html",
				"--include-sender", "Alice", "--exclude-text", "spam"},
			wantErr: "mutually exclusive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := newTestCmd(t)
			parseFlags(t, cmd, tt.args...)
			_, err := LoadConfig(cmd)
			if err == nil {
				t.Fatal("LoadConfig() error = nil, want error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want mention of %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadConfig_WarningAlias(t *testing.T) {
	cmd := newTestCmd(t)
	parseFlags(t, cmd, "--snapshot", "s.html", "--log-level", "WARNING")

	cfg, err := LoadConfig(cmd)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("LogLevel = %q, want warn", cfg.LogLevel)
	}
}

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tune.toml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfig_FileMerge(t *testing.T) {
	path := writeConfigFile(t, `
[capture]
interval = "3s"
stall_threshold = 30
auto_scroll = false

[export]
format = "html"
out_dir = "/tmp/exports"

[filter]
exclude_sender = ["^Telegram$"]
`)

	cmd := newTestCmd(t)
	parseFlags(t, cmd, "--snapshot", "s.html", "--config", path)

	cfg, err := LoadConfig(cmd)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Interval != 3*time.Second {
		t.Errorf("Interval = %v, want 3s", cfg.Interval)
	}
	if cfg.StallThreshold != 30 {
		t.Errorf("StallThreshold = %d, want 30", cfg.StallThreshold)
	}
	if cfg.AutoScroll {
		t.Error("AutoScroll = true, want false from file")
	}
	if cfg.Format != "html" {
		t.Errorf("Format = %q, want html", cfg.Format)
	}
	if cfg.OutDir != "/tmp/exports" {
		t.Errorf("OutDir = %q", cfg.OutDir)
	}
	if diff := cmp.Diff([]string{"^Telegram$"}, cfg.ExcludeSender); diff != "" {
		t.Errorf("ExcludeSender mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadConfig_FlagsBeatFile(t *testing.T) {
	path := writeConfigFile(t, `
[capture]
interval = "3s"

[export]
format = "html"
`)

	cmd := newTestCmd(t)
	parseFlags(t, cmd, "--snapshot", "s.html", "--config", path,
		"--interval", "2s", "--format", "csv")

	cfg, err := LoadConfig(cmd)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Interval != 2*time.Second {
		t.Errorf("Interval = %v, explicit flag must win over file", cfg.Interval)
	}
	if cfg.Format != "csv" {
		t.Errorf("Format = %q, explicit flag must win over file", cfg.Format)
	}
}

func TestLoadConfig_BadFile(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"unparseable", "not [valid toml"},
		{"bad_interval", "[capture]\ninterval = \"soon\"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfigFile(t, tt.content)
			cmd := newTestCmd(t)
			parseFlags(t, cmd, "--snapshot", "s.html", "--config", path)
			if _, err := LoadConfig(cmd); err == nil {
				t.Error("LoadConfig() error = nil, want error")
			}
		})
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	cmd := newTestCmd(t)
	parseFlags(t, cmd, "--snapshot", "s.html", "--config", "/nonexistent/tune.toml")
	if _, err := LoadConfig(cmd); err == nil {
		t.Error("LoadConfig() error = nil, want read error")
	}
}

func TestLoadConfig_StateDirCleaned(t *testing.T) {
	cmd := newTestCmd(t)
	parseFlags(t, cmd, "--snapshot", "s.html", "--state-dir", "state//journal/")

	cfg, err := LoadConfig(cmd)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.StateDir != filepath.Clean("state//journal/") {
		t.Errorf("StateDir = %q, want cleaned path", cfg.StateDir)
	}
}

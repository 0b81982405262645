package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"
)

// Config captures all options required to run a capture session.
type Config struct {
	SnapshotPath   string
	OutboxPath     string
	OutDir         string
	Format         string
	Interval       time.Duration
	StallThreshold int
	AutoScroll     bool
	StopOnStall    bool
	StateDir       string
	LogLevel       string
	LogDir         string
	IncludeSender  []string
	IncludeText    []string
	ExcludeSender  []string
	ExcludeText    []string
}

// fileConfig is the optional TOML tuning file loaded via --config. Flags
// that were set explicitly win over file values.
type fileConfig struct {
	Capture struct {
		Interval       string `toml:"interval"`
		StallThreshold int    `toml:"stall_threshold"`
		AutoScroll     *bool  `toml:"auto_scroll"`
		StopOnStall    *bool  `toml:"stop_on_stall"`
	} `toml:"capture"`
	Export struct {
		Format string `toml:"format"`
		OutDir string `toml:"out_dir"`
	} `toml:"export"`
	Filter struct {
		IncludeSender []string `toml:"include_sender"`
		IncludeText   []string `toml:"include_text"`
		ExcludeSender []string `toml:"exclude_sender"`
		ExcludeText   []string `toml:"exclude_text"`
	} `toml:"filter"`
}

// RegisterFlags attaches all CLI flags to the provided command.
func RegisterFlags(cmd *cobra.Command) error {
	flags := cmd.Flags()
	flags.String("snapshot", "", "Path to the HTML snapshot the renderer harness keeps rewriting")
	flags.String("outbox", "", "Path to the JSONL outbox for scroll commands and notifications")
	flags.String("out", ".", "Directory the finished export is written to")
	flags.String("format", "json", "Export format: json, csv, html, txt")
	flags.Duration("interval", 1500*time.Millisecond, "Scan cycle interval")
	flags.Int("stall-threshold", 15, "Consecutive no-growth cycles before the start of history is assumed")
	flags.Bool("auto-scroll", true, "Scroll backward once per cycle to reveal older content")
	flags.Bool("stop-on-stall", false, "Stop automatically once the start of history is likely reached")
	flags.String("state-dir", "", "Directory for the session record journal (empty disables journaling)")
	flags.String("log-level", "info", "Logging level: debug, info, warn, error")
	flags.String("log-dir", "", "Directory for log files (empty logs to stdout only)")
	flags.String("config", "", "Path to an optional TOML tuning file")
	flags.StringArray("include-sender", nil, "Regex allow-list applied to record senders (mutually exclusive with exclude flags)")
	flags.StringArray("include-text", nil, "Regex allow-list applied to record bodies (mutually exclusive with exclude flags)")
	flags.StringArray("exclude-sender", nil, "Regex block-list applied to record senders (mutually exclusive with include flags)")
	flags.StringArray("exclude-text", nil, "Regex block-list applied to record bodies (mutually exclusive with include flags)")

	if err := cmd.MarkFlagRequired("snapshot"); err != nil {
		return err
	}

	return nil
}

// LoadConfig converts the parsed Cobra flags into a Config struct, merging
// in the optional TOML file and validating the result.
func LoadConfig(cmd *cobra.Command) (Config, error) {
	flags := cmd.Flags()

	snapshotPath, err := flags.GetString("snapshot")
	if err != nil {
		return Config{}, err
	}
	outboxPath, err := flags.GetString("outbox")
	if err != nil {
		return Config{}, err
	}
	outDir, err := flags.GetString("out")
	if err != nil {
		return Config{}, err
	}
	format, err := flags.GetString("format")
	if err != nil {
		return Config{}, err
	}
	interval, err := flags.GetDuration("interval")
	if err != nil {
		return Config{}, err
	}
	stallThreshold, err := flags.GetInt("stall-threshold")
	if err != nil {
		return Config{}, err
	}
	autoScroll, err := flags.GetBool("auto-scroll")
	if err != nil {
		return Config{}, err
	}
	stopOnStall, err := flags.GetBool("stop-on-stall")
	if err != nil {
		return Config{}, err
	}
	stateDir, err := flags.GetString("state-dir")
	if err != nil {
		return Config{}, err
	}
	logLevel, err := flags.GetString("log-level")
	if err != nil {
		return Config{}, err
	}
	logDir, err := flags.GetString("log-dir")
	if err != nil {
		return Config{}, err
	}
	configPath, err := flags.GetString("config")
	if err != nil {
		return Config{}, err
	}
	includeSender, err := flags.GetStringArray("include-sender")
	if err != nil {
		return Config{}, err
	}
	includeText, err := flags.GetStringArray("include-text")
	if err != nil {
		return Config{}, err
	}
	excludeSender, err := flags.GetStringArray("exclude-sender")
	if err != nil {
		return Config{}, err
	}
	excludeText, err := flags.GetStringArray("exclude-text")
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		SnapshotPath:   snapshotPath,
		OutboxPath:     outboxPath,
		OutDir:         outDir,
		Format:         format,
		Interval:       interval,
		StallThreshold: stallThreshold,
		AutoScroll:     autoScroll,
		StopOnStall:    stopOnStall,
		StateDir:       stateDir,
		LogLevel:       strings.ToLower(logLevel),
		LogDir:         logDir,
		IncludeSender:  includeSender,
		IncludeText:    includeText,
		ExcludeSender:  excludeSender,
		ExcludeText:    excludeText,
	}

	if configPath != "" {
		if err := applyFile(&cfg, configPath, flags.Changed); err != nil {
			return Config{}, err
		}
	}

	if cfg.LogLevel == "warning" {
		cfg.LogLevel = "warn"
	}
	if cfg.StateDir != "" {
		cfg.StateDir = filepath.Clean(cfg.StateDir)
	}

	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func applyFile(cfg *Config, path string, changed func(string) bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	var fc fileConfig
	if err := toml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}

	if fc.Capture.Interval != "" && !changed("interval") {
		d, err := time.ParseDuration(fc.Capture.Interval)
		if err != nil {
			return fmt.Errorf("config file interval: %w", err)
		}
		cfg.Interval = d
	}
	if fc.Capture.StallThreshold > 0 && !changed("stall-threshold") {
		cfg.StallThreshold = fc.Capture.StallThreshold
	}
	if fc.Capture.AutoScroll != nil && !changed("auto-scroll") {
		cfg.AutoScroll = *fc.Capture.AutoScroll
	}
	if fc.Capture.StopOnStall != nil && !changed("stop-on-stall") {
		cfg.StopOnStall = *fc.Capture.StopOnStall
	}
	if fc.Export.Format != "" && !changed("format") {
		cfg.Format = fc.Export.Format
	}
	if fc.Export.OutDir != "" && !changed("out") {
		cfg.OutDir = fc.Export.OutDir
	}
	if len(fc.Filter.IncludeSender) > 0 && !changed("include-sender") {
		cfg.IncludeSender = fc.Filter.IncludeSender
	}
	if len(fc.Filter.IncludeText) > 0 && !changed("include-text") {
		cfg.IncludeText = fc.Filter.IncludeText
	}
	if len(fc.Filter.ExcludeSender) > 0 && !changed("exclude-sender") {
		cfg.ExcludeSender = fc.Filter.ExcludeSender
	}
	if len(fc.Filter.ExcludeText) > 0 && !changed("exclude-text") {
		cfg.ExcludeText = fc.Filter.ExcludeText
	}

	return nil
}

func validateConfig(cfg Config) error {
	if cfg.SnapshotPath == "" {
		return fmt.Errorf("--snapshot is required")
	}
	if cfg.Interval < 100*time.Millisecond {
		return fmt.Errorf("--interval must be at least 100ms")
	}
	if cfg.StallThreshold < 1 {
		return fmt.Errorf("--stall-threshold must be at least 1")
	}
	includeActive := len(cfg.IncludeSender) > 0 || len(cfg.IncludeText) > 0
	excludeActive := len(cfg.ExcludeSender) > 0 || len(cfg.ExcludeText) > 0
	if includeActive && excludeActive {
		return fmt.Errorf("include and exclude flags are mutually exclusive")
	}

	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid --log-level: %s", cfg.LogLevel)
	}

	return nil
}

package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/usama-1998/telegram-group-chat-exporter/bridge"
	"github.com/usama-1998/telegram-group-chat-exporter/cmd"
	"github.com/usama-1998/telegram-group-chat-exporter/config"
	"github.com/usama-1998/telegram-group-chat-exporter/export"
	"github.com/usama-1998/telegram-group-chat-exporter/extract"
	"github.com/usama-1998/telegram-group-chat-exporter/filter"
	"github.com/usama-1998/telegram-group-chat-exporter/progress"
	"github.com/usama-1998/telegram-group-chat-exporter/session"
	"github.com/usama-1998/telegram-group-chat-exporter/stats"
	"github.com/usama-1998/telegram-group-chat-exporter/store"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "tgchat-export",
		Short: "Capture and export the chat history of a rendered Telegram Web view",
		RunE: func(c *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(c)
			if err != nil {
				return err
			}

			logger, cleanup, err := setupLogger(cfg)
			if err != nil {
				return err
			}
			defer func() {
				_ = cleanup()
			}()

			slog.SetDefault(logger)
			logger.Info("starting tgchat-export",
				"snapshot", cfg.SnapshotPath, "format", cfg.Format, "autoScroll", cfg.AutoScroll)

			return run(cfg, logger)
		},
	}

	if err := config.RegisterFlags(rootCmd); err != nil {
		fmt.Fprintf(os.Stderr, "failed to register CLI flags: %v\n", err)
		os.Exit(1)
	}

	rootCmd.AddCommand(cmd.NewExportStatsCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *slog.Logger) error {
	f, err := filter.New(filter.Options{
		IncludeSender: cfg.IncludeSender,
		IncludeText:   cfg.IncludeText,
		ExcludeSender: cfg.ExcludeSender,
		ExcludeText:   cfg.ExcludeText,
	})
	if err != nil {
		return fmt.Errorf("filter.New: %w", err)
	}

	br, err := bridge.NewFileBridge(cfg.SnapshotPath, cfg.OutboxPath, logger)
	if err != nil {
		return fmt.Errorf("bridge.NewFileBridge: %w", err)
	}
	defer func() {
		_ = br.Close()
	}()

	var recs store.Store
	if cfg.StateDir != "" {
		fs, err := store.NewFileStore(cfg.StateDir)
		if err != nil {
			return fmt.Errorf("store.NewFileStore: %w", err)
		}
		defer func() {
			_ = fs.Close()
		}()
		recs = fs
	} else {
		recs = store.NewMemoryStore()
	}

	asm := extract.NewAssembler(extract.Options{Filter: f, Logger: logger})

	sess, err := session.New(session.Options{
		Bridge:         br,
		Store:          recs,
		Assembler:      asm,
		Logger:         logger,
		Interval:       cfg.Interval,
		StallThreshold: cfg.StallThreshold,
		AutoScroll:     cfg.AutoScroll,
	})
	if err != nil {
		return fmt.Errorf("session.New: %w", err)
	}

	stats.NewReporter(sess, logger)
	live := progress.New(cfg.LogLevel)
	progress.NewReporter(sess, live, logger)

	sess.Start(export.ParseFormat(cfg.Format))

	waitForStop(cfg, sess, logger)

	payload, ok := sess.Stop()
	live.Stop()
	sess.Close()
	if !ok {
		return nil
	}

	if err := os.MkdirAll(cfg.OutDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	outPath := filepath.Join(cfg.OutDir, payload.Filename)
	if err := os.WriteFile(outPath, []byte(payload.Content), 0o644); err != nil {
		return fmt.Errorf("write export: %w", err)
	}

	logger.Info("export written", "path", outPath, "mime", payload.MIMEType)
	return nil
}

// waitForStop blocks until the operator interrupts, or until the
// likely-start-reached signal when --stop-on-stall is set. Ending the
// session is always an external decision; the pipeline itself only
// signals.
func waitForStop(cfg config.Config, sess *session.Session, logger *slog.Logger) {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sig)

	poll := time.NewTicker(500 * time.Millisecond)
	defer poll.Stop()

	for {
		select {
		case <-sig:
			logger.Info("interrupt received, stopping capture")
			return
		case <-poll.C:
			if cfg.StopOnStall && sess.Status().LikelyComplete {
				logger.Info("start of history likely reached, stopping capture")
				return
			}
		}
	}
}

func setupLogger(cfg config.Config) (*slog.Logger, func() error, error) {
	level := new(slog.LevelVar)
	level.Set(slog.LevelInfo)

	switch cfg.LogLevel {
	case "debug":
		level.Set(slog.LevelDebug)
	case "info":
		level.Set(slog.LevelInfo)
	case "warn":
		level.Set(slog.LevelWarn)
	case "error":
		level.Set(slog.LevelError)
	}

	opts := &slog.HandlerOptions{Level: level}
	cleanup := func() error { return nil }

	if cfg.LogDir != "" {
		if err := os.MkdirAll(cfg.LogDir, 0o755); err != nil {
			return nil, cleanup, err
		}

		logFilePath := filepath.Join(cfg.LogDir, fmt.Sprintf("tgchat-export-%s.log", time.Now().Format("20060102T150405")))
		file, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, cleanup, err
		}

		handler := slog.NewTextHandler(io.MultiWriter(os.Stdout, file), opts)
		cleanup = func() error {
			return file.Close()
		}
		return slog.New(handler), cleanup, nil
	}

	handler := slog.NewTextHandler(os.Stdout, opts)
	return slog.New(handler), cleanup, nil
}

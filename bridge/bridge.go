// Package bridge connects the capture pipeline to a host renderer through
// the filesystem: an HTML snapshot the renderer harness keeps rewriting,
// and a JSONL outbox carrying scroll commands and notifications back.
package bridge

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/usama-1998/telegram-group-chat-exporter/dom"
	"github.com/usama-1998/telegram-group-chat-exporter/extract"
	"github.com/usama-1998/telegram-group-chat-exporter/scroll"
	"github.com/usama-1998/telegram-group-chat-exporter/session"
)

// FileBridge implements session.Bridge over snapshot and outbox files.
type FileBridge struct {
	snapshotPath string
	logger       *slog.Logger

	mu     sync.Mutex
	outbox *os.File
}

// NewFileBridge opens the outbox for appending. outboxPath may be empty,
// in which case scroll commands and notifications are dropped.
func NewFileBridge(snapshotPath, outboxPath string, logger *slog.Logger) (*FileBridge, error) {
	if snapshotPath == "" {
		return nil, fmt.Errorf("snapshot path is empty")
	}
	if logger == nil {
		logger = slog.Default()
	}

	b := &FileBridge{snapshotPath: snapshotPath, logger: logger}

	if outboxPath != "" {
		f, err := os.OpenFile(outboxPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open outbox: %w", err)
		}
		b.outbox = f
	}

	return b, nil
}

// Snapshot re-reads and parses the current state of the snapshot file. The
// renderer harness rewrites it as content loads, so every cycle sees a
// fresh tree.
func (b *FileBridge) Snapshot() (*dom.Node, error) {
	f, err := os.Open(b.snapshotPath)
	if err != nil {
		return nil, fmt.Errorf("open snapshot: %w", err)
	}
	defer f.Close()

	return dom.Parse(f)
}

// Viewport locates the scrollable chat container in the snapshot and wraps
// it; nil means only page-level scrolling remains.
func (b *FileBridge) Viewport(doc *dom.Node) scroll.Viewport {
	container := scroll.FindContainer(doc, extract.ChatContainer())
	if container == nil {
		return nil
	}
	return scroll.NewAttrViewport(container, b.writeCommand)
}

// PageScroll emits a page-level scroll command.
func (b *FileBridge) PageScroll(delta float64) {
	b.writeCommand(scroll.Command{Op: "by", Selector: "window", Value: delta})
}

// Notify appends one notification line to the outbox. Errors surface to
// the caller, which treats delivery as best-effort.
func (b *FileBridge) Notify(n session.Notification) error {
	return b.writeLine(n)
}

func (b *FileBridge) writeCommand(cmd scroll.Command) {
	type commandLine struct {
		Type string `json:"type"`
		scroll.Command
	}
	if err := b.writeLine(commandLine{Type: "SCROLL", Command: cmd}); err != nil {
		b.logger.Debug("scroll command write failed", "err", err)
	}
}

func (b *FileBridge) writeLine(v any) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.outbox == nil {
		return nil
	}

	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode outbox line: %w", err)
	}
	if _, err := b.outbox.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("write outbox line: %w", err)
	}
	return nil
}

// Close closes the outbox file.
func (b *FileBridge) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.outbox == nil {
		return nil
	}
	err := b.outbox.Close()
	b.outbox = nil
	if err != nil {
		return fmt.Errorf("close outbox: %w", err)
	}
	return nil
}

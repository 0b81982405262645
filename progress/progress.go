package progress

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/pterm/pterm"

	"github.com/usama-1998/telegram-group-chat-exporter/stats"
)

// Live renders a spinner with the running capture count. There is no known
// total: the document reveals its history only as it is scrolled.
type Live struct {
	spinner *pterm.SpinnerPrinter
	stored  int
	mu      sync.Mutex
	enabled bool
}

// New creates the live view if logLevel is "info".
func New(logLevel string) *Live {
	enabled := logLevel == "info"

	live := &Live{enabled: enabled}

	if enabled {
		sp, _ := pterm.DefaultSpinner.Start("Waiting for first scan cycle...")
		live.spinner = sp
	}

	return live
}

// Update advances the live view based on the event type.
func (l *Live) Update(evt stats.Event) {
	if !l.enabled || l.spinner == nil {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	switch evt.Type {
	case stats.EventTypeStored:
		l.stored++
		l.spinner.UpdateText(fmt.Sprintf("Captured %d messages", l.stored))
	case stats.EventTypeStalled:
		pterm.Info.Println("No new content loading. Might be at the start.")
	case stats.EventTypeError:
		if evt.Err != nil {
			pterm.Error.Printf("Error: %v\n", evt.Err)
		}
	}
}

// Stop finalizes the live view.
func (l *Live) Stop() {
	if !l.enabled || l.spinner == nil {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	_ = l.spinner.Stop()
	pterm.Success.Printf("Capture complete: %d messages\n", l.stored)
}

// Subscriber creates a stats subscriber function that updates the live view.
func (l *Live) Subscriber(ctx context.Context, events <-chan stats.Event) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case evt, ok := <-events:
			if !ok {
				return nil
			}
			l.Update(evt)
		}
	}
}

// Reporter pairs the live view with a stats collector and prints the final
// summary section.
type Reporter struct {
	live      *Live
	collector *stats.Collector
	logger    *slog.Logger
	started   time.Time
}

// NewReporter subscribes the live view and a summary printer to the event
// stream.
func NewReporter(stream stats.EventStream, live *Live, logger *slog.Logger) *Reporter {
	reporter := &Reporter{
		live:      live,
		collector: stats.NewCollector(),
		logger:    logger,
		started:   time.Now(),
	}

	if live != nil && live.enabled {
		stream.SubscribeStats("progress-live", live.Subscriber)
		stream.SubscribeStats("progress-summary", reporter.collectStats)
	}

	return reporter
}

func (r *Reporter) collectStats(ctx context.Context, events <-chan stats.Event) error {
	r.collector.Run(ctx, events)

	summary := r.collector.Snapshot()
	duration := time.Since(r.started)

	pterm.Println()
	pterm.DefaultSection.Println("Capture Summary")
	pterm.Info.Printf("Duration: %v\n", duration)
	pterm.Info.Printf("Nodes scanned: %d\n", summary.Scanned)
	pterm.Info.Printf("Records stored: %d\n", summary.Stored)
	pterm.Info.Printf("Duplicates (skipped): %d\n", summary.Duplicates)
	pterm.Info.Printf("Empty bodies (dropped): %d\n", summary.Empty)
	pterm.Info.Printf("Filtered out: %d\n", summary.Skipped)
	pterm.Info.Printf("Errors: %d\n", summary.Errors)
	if summary.Stalled {
		pterm.Info.Println("Scroll reached the likely start of history")
	}
	if summary.LastError != nil {
		pterm.Error.Printf("Last error: %v\n", summary.LastError)
	}

	return nil
}

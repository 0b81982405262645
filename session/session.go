// Package session owns the capture lifecycle: the idle/scanning state
// machine, the scan-cycle timer, status queries and the export hand-off.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/usama-1998/telegram-group-chat-exporter/dom"
	"github.com/usama-1998/telegram-group-chat-exporter/export"
	"github.com/usama-1998/telegram-group-chat-exporter/extract"
	"github.com/usama-1998/telegram-group-chat-exporter/model"
	"github.com/usama-1998/telegram-group-chat-exporter/scroll"
	"github.com/usama-1998/telegram-group-chat-exporter/stats"
	"github.com/usama-1998/telegram-group-chat-exporter/store"
)

// DefaultInterval is the scan-cycle period.
const DefaultInterval = 1500 * time.Millisecond

// Notification types delivered to the control surface.
const (
	NotifyProgress = "PROGRESS"
	NotifyFinished = "FINISHED"
)

// Notification is one outbound message to the control surface. Delivery is
// best-effort; a failed notification never affects internal state.
type Notification struct {
	Type    string         `json:"type"`
	Count   int            `json:"count"`
	Payload *model.Payload `json:"payload,omitempty"`
}

// Bridge is the boundary to the host document and control surface: it
// yields a fresh snapshot per cycle, resolves the scrollable viewport,
// applies page-level scrolling when no container exists, and carries
// outbound notifications.
type Bridge interface {
	Snapshot() (*dom.Node, error)
	Viewport(doc *dom.Node) scroll.Viewport
	PageScroll(delta float64)
	Notify(n Notification) error
}

// Status answers a synchronous GET_STATUS query.
type Status struct {
	Running        bool
	RecordCount    int
	HasRecords     bool
	LikelyComplete bool
}

// Options configures a Session. NewTicker is injectable so tests can drive
// cycles deterministically; it returns the tick channel and a cancel func.
type Options struct {
	Bridge         Bridge
	Store          store.Store
	Assembler      *extract.Assembler
	Logger         *slog.Logger
	Interval       time.Duration
	StallThreshold int
	AutoScroll     bool
	NewTicker      func(time.Duration) (<-chan time.Time, func())
}

type Session struct {
	bridge     Bridge
	recs       store.Store
	asm        *extract.Assembler
	logger     *slog.Logger
	interval   time.Duration
	autoScroll bool
	stepper    *scroll.Stepper
	newTicker  func(time.Duration) (<-chan time.Time, func())

	ctx             context.Context
	cancel          context.CancelFunc
	events          chan stats.Event
	statsWG         sync.WaitGroup
	closeEventsOnce sync.Once

	mu             sync.Mutex
	running        bool
	likelyComplete bool
	format         export.Format
	stopCh         chan struct{}
	loopWG         sync.WaitGroup
}

func New(opts Options) (*Session, error) {
	if opts.Bridge == nil {
		return nil, fmt.Errorf("session: bridge is required")
	}
	if opts.Store == nil {
		return nil, fmt.Errorf("session: store is required")
	}
	if opts.Assembler == nil {
		return nil, fmt.Errorf("session: assembler is required")
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.NewTicker == nil {
		opts.NewTicker = func(d time.Duration) (<-chan time.Time, func()) {
			t := time.NewTicker(d)
			return t.C, t.Stop
		}
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Session{
		bridge:     opts.Bridge,
		recs:       opts.Store,
		asm:        opts.Assembler,
		logger:     opts.Logger,
		interval:   opts.Interval,
		autoScroll: opts.AutoScroll,
		stepper:    scroll.NewStepper(opts.StallThreshold, opts.Logger),
		newTicker:  opts.NewTicker,
		ctx:        ctx,
		cancel:     cancel,
		events:     make(chan stats.Event, 128),
	}, nil
}

// EmitEvent delivers a stats event to subscribers. Events are dropped when
// nobody drains the stream fast enough; progress reporting must never
// block a scan cycle.
func (s *Session) EmitEvent(evt stats.Event) {
	select {
	case <-s.ctx.Done():
	case s.events <- evt:
	default:
	}
}

// SubscribeStats attaches a consumer to the event stream, in the manner of
// a pipeline stage.
func (s *Session) SubscribeStats(name string, fn func(context.Context, <-chan stats.Event) error) {
	s.statsWG.Add(1)
	go func() {
		defer s.statsWG.Done()
		if err := fn(s.ctx, s.events); err != nil && !errors.Is(err, context.Canceled) {
			s.logger.Warn("stats subscriber failed", "name", name, "err", err)
		}
	}()
}

// Start transitions idle to scanning. All session state (records, date
// context, stall counters) is reset. No-op when already running.
func (s *Session) Start(format export.Format) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.likelyComplete = false
	s.format = format
	s.stopCh = make(chan struct{})
	stopCh := s.stopCh
	s.mu.Unlock()

	s.recs.Reset()
	s.asm.Reset()
	s.stepper.Reset()

	s.logger.Info("capture started", "format", string(format), "interval", s.interval)

	tick, cancelTick := s.newTicker(s.interval)
	s.loopWG.Add(1)
	go func() {
		defer s.loopWG.Done()
		defer cancelTick()
		for {
			select {
			case <-stopCh:
				return
			case <-tick:
				s.runCycle()
			}
		}
	}()
}

// Stop transitions scanning to idle, serializes the record store and hands
// the export off. Returns ok=false when the session was not running.
func (s *Session) Stop() (payload model.Payload, ok bool) {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return model.Payload{}, false
	}
	s.running = false
	close(s.stopCh)
	format := s.format
	s.mu.Unlock()

	// Cycles are synchronous and short; waiting here suppresses the next
	// scheduled one without interrupting anything in flight.
	s.loopWG.Wait()

	records := s.recs.Records()
	payload, err := export.Serialize(records, format)
	if err != nil {
		s.logger.Error("export serialization failed", "err", err)
	}

	count := len(records)
	if err := s.bridge.Notify(Notification{Type: NotifyFinished, Count: count, Payload: &payload}); err != nil {
		s.logger.Debug("finished notification failed", "err", err)
	}

	s.logger.Info("capture stopped", "records", count, "format", string(format))
	return payload, true
}

// Status answers a synchronous status query.
func (s *Session) Status() Status {
	s.mu.Lock()
	running := s.running
	likely := s.likelyComplete
	s.mu.Unlock()

	n := s.recs.Len()
	return Status{
		Running:        running,
		RecordCount:    n,
		HasRecords:     n > 0,
		LikelyComplete: likely,
	}
}

// Close tears the event stream down. The session must not be reused after
// Close.
func (s *Session) Close() {
	s.closeEventsOnce.Do(func() {
		close(s.events)
	})
	s.statsWG.Wait()
	s.cancel()
}

// runCycle is one complete scan cycle: snapshot, assemble, report, scroll.
// Cycles never overlap; the loop goroutine runs them strictly in sequence.
func (s *Session) runCycle() {
	doc, err := s.bridge.Snapshot()
	if err != nil {
		s.logger.Warn("snapshot failed", "err", err)
		s.EmitEvent(stats.Event{Stage: stats.StageScan, Type: stats.EventTypeError, Err: err})
		return
	}

	s.asm.Scan(doc, s.recs, s.EmitEvent)

	count := s.recs.Len()
	if err := s.bridge.Notify(Notification{Type: NotifyProgress, Count: count}); err != nil {
		s.logger.Debug("progress notification failed", "err", err)
	}

	if !s.autoScroll {
		return
	}
	s.scrollStep(doc)
}

func (s *Session) scrollStep(doc *dom.Node) {
	vp := s.bridge.Viewport(doc)
	if vp == nil {
		s.bridge.PageScroll(scroll.PageScrollStep)
		return
	}

	likely := s.stepper.Step(vp)

	s.mu.Lock()
	rising := likely && !s.likelyComplete
	s.likelyComplete = likely
	s.mu.Unlock()

	if rising {
		s.logger.Info("no new content loading, likely reached the beginning",
			"stalls", s.stepper.Stalls())
		s.EmitEvent(stats.Event{Stage: stats.StageScroll, Type: stats.EventTypeStalled, Count: s.recs.Len()})
	}
}

package extract

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/usama-1998/telegram-group-chat-exporter/dom"
	"github.com/usama-1998/telegram-group-chat-exporter/filter"
	"github.com/usama-1998/telegram-group-chat-exporter/model"
	"github.com/usama-1998/telegram-group-chat-exporter/stats"
	"github.com/usama-1998/telegram-group-chat-exporter/store"
)

// Options configures an Assembler. Now and NewID are injectable for tests
// and default to the wall clock and random UUIDs.
type Options struct {
	Filter *filter.Filter
	Logger *slog.Logger
	Now    func() time.Time
	NewID  func() string
}

// Assembler turns visible message nodes into normalized records. It owns
// the session's date context; Reset clears it at session start.
type Assembler struct {
	dates  *DateContext
	filter *filter.Filter
	logger *slog.Logger
	now    func() time.Time
	newID  func() string
}

func NewAssembler(opts Options) *Assembler {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	return &Assembler{
		dates:  NewDateContext(),
		filter: opts.Filter,
		logger: opts.Logger,
		now:    opts.Now,
		newID:  opts.NewID,
	}
}

// Reset clears the carried date context for a fresh session.
func (a *Assembler) Reset() {
	a.dates.Reset()
}

// DateContext exposes the tracker, mainly for tests.
func (a *Assembler) DateContext() *DateContext {
	return a.dates
}

// Scan walks every currently visible message node under doc and writes new
// records into recs. emit may be nil when no event stream is attached.
func (a *Assembler) Scan(doc *dom.Node, recs store.Store, emit func(stats.Event)) {
	if emit == nil {
		emit = func(stats.Event) {}
	}

	root := doc
	if container := doc.Find(dom.ByClass(containerClasses...)); container != nil {
		root = container
	}

	for _, node := range root.FindAll(dom.ByClass(messageClasses...)) {
		a.scanNode(node, recs, emit)
	}
}

func (a *Assembler) scanNode(node *dom.Node, recs store.Store, emit func(stats.Event)) {
	// One malformed node must not abort the cycle's processing of the
	// remaining nodes; its record is simply omitted.
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("node extraction: %v", r)
			a.logger.Error("node extraction failed", "err", err)
			emit(stats.Event{Stage: stats.StageScan, Type: stats.EventTypeError, Err: err})
		}
	}()

	if node.Closest(dom.ByClass(skipRegionClasses...)) != nil {
		return
	}

	id, unstable := a.nodeID(node)
	emit(stats.Event{Stage: stats.StageScan, Type: stats.EventTypeScanned, MessageID: id})

	if recs.Has(id) {
		emit(stats.Event{Stage: stats.StageScan, Type: stats.EventTypeDuplicate, MessageID: id})
		return
	}

	date := a.resolveDate(node)
	sender := strings.TrimSpace(Sender(node))
	text := Text(node)

	// Last-resort repair: a bare time glued to the end of the body stands
	// in for a missing date.
	if date == "" {
		if m := trailingTimeRe.FindString(text); m != "" {
			date = m
			text = strings.TrimSpace(strings.TrimSuffix(text, m))
		}
	}
	date = strings.TrimSpace(date)

	if a.filter != nil && !a.filter.Allows(sender, text) {
		emit(stats.Event{Stage: stats.StageScan, Type: stats.EventTypeSkipped, MessageID: id})
		return
	}

	// Media-only messages have no cleaned text and are not captured.
	if text == "" {
		emit(stats.Event{Stage: stats.StageScan, Type: stats.EventTypeEmpty, MessageID: id})
		return
	}

	msg := model.Message{
		ID:         id,
		Sender:     sender,
		Text:       text,
		Date:       date,
		Timestamp:  a.now().UTC().Format(time.RFC3339),
		UnstableID: unstable,
	}

	if err := recs.Add(msg); err != nil {
		// The in-memory record stands even when journaling fails.
		a.logger.Warn("record journal write failed", "id", id, "err", err)
	}
	emit(stats.Event{Stage: stats.StageScan, Type: stats.EventTypeStored, MessageID: id})
}

// nodeID derives the record key: an explicit message identifier, a generic
// element id, or a random token. Random tokens mean the node is treated as
// always new; acceptable degradation when the document assigns nothing.
func (a *Assembler) nodeID(node *dom.Node) (id string, unstable bool) {
	for _, attr := range idAttrs {
		if v := node.Attr(attr); v != "" {
			return v, false
		}
	}
	return a.newID(), true
}

// resolveDate assembles the human-readable date field from the time label,
// an epoch attribute, or the carried date context, in that order.
func (a *Assembler) resolveDate(node *dom.Node) string {
	var calendarDate, timeOfDay string

	if label := a.timeLabel(node); label != nil {
		raw := strings.TrimSpace(label.Text())
		if raw == "" {
			raw = strings.TrimSpace(label.Attr("title"))
		}
		calendarDate, timeOfDay = SplitTimeLabel(raw)
	}

	if calendarDate == "" {
		for _, attr := range epochAttrs {
			raw := node.Attr(attr)
			if raw == "" {
				continue
			}
			if d, t, ok := decodeEpoch(raw); ok {
				calendarDate = d
				if timeOfDay == "" {
					timeOfDay = t
				}
				break
			}
		}
	}

	if calendarDate == "" {
		calendarDate = a.dates.Resolve(node)
	} else {
		a.dates.Set(calendarDate)
	}

	switch {
	case calendarDate != "" && timeOfDay != "":
		return calendarDate + ", " + timeOfDay
	case calendarDate != "":
		return calendarDate
	default:
		return timeOfDay
	}
}

// timeLabel returns the first time label under node in priority order.
func (a *Assembler) timeLabel(node *dom.Node) *dom.Node {
	for _, class := range timeLabelClasses {
		if n := node.Find(dom.ByClass(class)); n != nil {
			return n
		}
	}
	return nil
}

// Package scroll drives the backward-scroll step that coaxes the renderer
// into loading older content, and detects when no further content exists.
package scroll

import (
	"log/slog"
)

// Scroll-step tuning. The wiggle off exactly zero forces the renderer to
// load more content above; the far-jump damping avoids skipping content
// freshly inserted at the top.
const (
	wiggleOffset   = 10
	farJumpLimit   = 3000
	farJumpTarget  = 500
	PageScrollStep = -1000

	// DefaultStallThreshold is the number of consecutive no-growth cycles
	// at the start boundary before the beginning is likely reached.
	DefaultStallThreshold = 15
)

// Viewport is the single mutable surface the pipeline touches on the live
// document: one scroll position plus read-only extent metrics.
type Viewport interface {
	ScrollTop() float64
	SetScrollTop(v float64)
	ScrollHeight() float64
	ClientHeight() float64
}

// Stepper performs one scroll step per scan cycle and counts stalls. It
// never terminates anything itself; crossing the threshold only raises the
// likely-start-reached signal, termination stays an external decision.
type Stepper struct {
	threshold  int
	lastHeight float64
	stalls     int
	logger     *slog.Logger
}

func NewStepper(threshold int, logger *slog.Logger) *Stepper {
	if threshold <= 0 {
		threshold = DefaultStallThreshold
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Stepper{threshold: threshold, logger: logger}
}

// Reset clears the stall counters for a fresh session.
func (s *Stepper) Reset() {
	s.lastHeight = 0
	s.stalls = 0
}

// Stalls returns the current consecutive no-growth count.
func (s *Stepper) Stalls() int {
	return s.stalls
}

// LikelyAtStart reports whether the stall counter has crossed the
// threshold.
func (s *Stepper) LikelyAtStart() bool {
	return s.stalls > s.threshold
}

// Step performs one scroll step against the viewport and returns the
// likely-at-start signal. At the start boundary an unchanged content
// extent counts as a stall; growth resets the counter and nudges the
// position off zero. Away from the boundary it jumps toward the start.
func (s *Stepper) Step(vp Viewport) bool {
	if vp == nil {
		return s.LikelyAtStart()
	}

	if vp.ScrollTop() == 0 {
		if vp.ScrollHeight() == s.lastHeight {
			s.stalls++
		} else {
			s.stalls = 0
			s.lastHeight = vp.ScrollHeight()
			vp.SetScrollTop(wiggleOffset)
		}
	} else {
		if vp.ScrollTop() > farJumpLimit {
			vp.SetScrollTop(farJumpTarget)
		} else {
			vp.SetScrollTop(0)
		}
		s.stalls = 0
	}

	if s.LikelyAtStart() {
		s.logger.Debug("no new content loading, might be at the start", "stalls", s.stalls)
		return true
	}
	return false
}

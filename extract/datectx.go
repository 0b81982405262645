package extract

import (
	"strings"
	"unicode/utf8"

	"github.com/usama-1998/telegram-group-chat-exporter/dom"
)

// Search bounds keep each cycle's separator cost linear in visible nodes
// rather than in total document depth.
const (
	maxGroupSearch    = 10
	maxSiblingSearch  = 50
	maxSeparatorChars = 50
)

// DateContext carries the most recently resolved calendar date forward for
// messages that expose only a time-of-day. Last date wins.
type DateContext struct {
	current string
}

func NewDateContext() *DateContext {
	return &DateContext{}
}

// Resolve looks for an explicit date separator associated with node. If one
// is found the held context is overwritten and returned; otherwise the
// previous context is returned unchanged (empty until any separator has
// been seen in the session).
func (d *DateContext) Resolve(node *dom.Node) string {
	if v := separatorDate(node); v != "" {
		d.current = v
	}
	return d.current
}

// Set overwrites the context with a calendar date derived directly from a
// message, so later context-dependent messages benefit.
func (d *DateContext) Set(date string) {
	if date != "" {
		d.current = date
	}
}

func (d *DateContext) Current() string {
	return d.current
}

func (d *DateContext) Reset() {
	d.current = ""
}

// separatorDate tries the three separator layouts in order: an enclosing
// date-group, date groups as preceding siblings of the group level, and
// plain separator bubbles among preceding siblings.
func separatorDate(node *dom.Node) string {
	if group := node.Closest(dom.ByClass(dateGroupClass)); group != nil {
		if v := stickyDateText(group); v != "" {
			return v
		}
	}

	prev := node.PrevElement()
	for i := 0; prev != nil && i < maxGroupSearch; i++ {
		if prev.HasClass(dateGroupClass) {
			if v := stickyDateText(prev); v != "" {
				return v
			}
		}
		if prev.HasClass(stickyDateClass) {
			if v := shortText(prev); v != "" {
				return v
			}
		}
		prev = prev.PrevElement()
	}

	prev = node.PrevElement()
	for i := 0; prev != nil && i < maxSiblingSearch; i++ {
		if isSeparator(prev) {
			if v := shortText(prev); v != "" && looksLikeDate(v) {
				return v
			}
		}
		prev = prev.PrevElement()
	}

	return ""
}

func isSeparator(n *dom.Node) bool {
	if n.HasAnyClass(separatorClasses...) {
		return true
	}
	if n.HasClass("bubble") && n.HasClass("is-date") {
		return true
	}
	return n.Find(dom.ByClass(separatorInnerClasses...)) != nil
}

// stickyDateText reads the sticky date label inside a date group.
func stickyDateText(group *dom.Node) string {
	sticky := group.Find(dom.ByClass(stickyDateClass))
	if sticky == nil {
		return ""
	}
	return shortText(sticky)
}

// shortText returns the node's label text, preferring an inner span, and
// rejects anything too long to be a date separator.
func shortText(n *dom.Node) string {
	var text string
	if span := n.Find(dom.ByTag("span")); span != nil {
		text = strings.TrimSpace(span.Text())
	}
	if text == "" {
		text = strings.TrimSpace(n.Text())
	}
	if text == "" || utf8.RuneCountInString(text) >= maxSeparatorChars {
		return ""
	}
	return text
}

// looksLikeDate validates free-standing separator text: month names,
// numeric date fragments, or relative day words. Any other short text near
// a message is not treated as a date.
func looksLikeDate(text string) bool {
	if monthRe.MatchString(text) {
		return true
	}
	if dayFirstRe.MatchString(text) || monthFirstRe.MatchString(text) {
		return true
	}
	return relativeDayRe.MatchString(text)
}

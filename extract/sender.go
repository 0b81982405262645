package extract

import (
	"strings"

	"github.com/usama-1998/telegram-group-chat-exporter/dom"
)

// Grouped runs of messages only label their first entry; how far back to
// look for that entry.
const maxSenderSiblingSearch = 20

// UnknownSender is the default when no sender can be resolved.
const UnknownSender = "Unknown"

// SelfSender is the sender of self-authored messages.
const SelfSender = "You"

// Sender resolves the sender of a message node: self-authored flag first,
// then a sender label that is not nested inside a quoted/forwarded
// sub-structure, then the same logic applied to preceding siblings of the
// same message-list grouping.
func Sender(node *dom.Node) string {
	if node.HasClass(ownClass) {
		return SelfSender
	}

	if v := senderLabel(node); v != "" {
		return v
	}

	prev := node.PrevElement()
	for i := 0; prev != nil && i < maxSenderSiblingSearch; i++ {
		if !prev.HasAnyClass(groupMemberClasses...) {
			break
		}
		if v := senderLabel(prev); v != "" {
			return v
		}
		if prev.HasClass(ownClass) {
			return SelfSender
		}
		prev = prev.PrevElement()
	}

	return UnknownSender
}

// senderLabel returns the first sender label under node that does not sit
// inside a quote container. Attributing text to a quoted author instead of
// the actual sender is the failure mode this guards against.
func senderLabel(node *dom.Node) string {
	for _, class := range senderLabelClasses {
		for _, n := range node.FindAll(dom.ByClass(class)) {
			if n.Closest(dom.ByClass(quoteContainerClasses...)) != nil {
				continue
			}
			if v := strings.TrimSpace(n.Text()); v != "" {
				return v
			}
		}
	}
	return ""
}

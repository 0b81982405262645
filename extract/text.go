package extract

import (
	"strings"

	"github.com/usama-1998/telegram-group-chat-exporter/dom"
)

// Text extracts the cleaned body of a message node. It works on a detached
// copy of the most specific content sub-node (or the whole message as a
// fallback), strips known non-content substructures, and reads the
// remaining rendered text with block-level line breaks preserved.
func Text(node *dom.Node) string {
	target := node.Find(dom.ByClass(contentClasses...))
	if target == nil {
		target = node
	}

	clone := target.Clone()
	junk := clone.FindAll(func(n *dom.Node) bool {
		if n.HasAnyClass(stripClasses...) {
			return true
		}
		for _, tag := range stripTags {
			if n.Tag() == tag {
				return true
			}
		}
		return false
	})
	for _, n := range junk {
		n.Detach()
	}

	return strings.TrimSpace(clone.Text())
}

package scroll

import (
	"strconv"
	"strings"

	"github.com/usama-1998/telegram-group-chat-exporter/dom"
)

// Command is one scroll-position write handed back to the host renderer.
type Command struct {
	Op       string  `json:"op"` // "set" (scrollTop = value) or "by" (scroll by delta)
	Selector string  `json:"selector"`
	Value    float64 `json:"value"`
}

// Overhead below which a scrollable element is not worth driving.
const minScrollableSlack = 100

// FindContainer locates the scrollable chat container: the primary
// recognized container if it actually scrolls, else the first
// overflow-scrollable element tall enough to matter. Returns nil when only
// page-level scrolling remains.
func FindContainer(doc *dom.Node, primary dom.Pred) *dom.Node {
	c := doc.Find(primary)
	if c != nil && attrFloat(c, "data-scroll-height") > attrFloat(c, "data-client-height") {
		return c
	}

	for _, div := range doc.FindAll(dom.ByTag("div")) {
		oy := div.Attr("data-overflow-y")
		if oy != "auto" && oy != "scroll" {
			continue
		}
		if attrFloat(div, "data-scroll-height") > attrFloat(div, "data-client-height")+minScrollableSlack {
			return div
		}
	}

	return nil
}

// AttrViewport reads scroll metrics from the snapshot attributes the
// renderer harness stamps on the container, and reports position writes
// through a command sink. The live document itself is never mutated here.
type AttrViewport struct {
	node *dom.Node
	top  float64
	sink func(Command)
}

func NewAttrViewport(node *dom.Node, sink func(Command)) *AttrViewport {
	return &AttrViewport{
		node: node,
		top:  attrFloat(node, "data-scroll-top"),
		sink: sink,
	}
}

func (v *AttrViewport) ScrollTop() float64 {
	return v.top
}

func (v *AttrViewport) SetScrollTop(top float64) {
	v.top = top
	if v.sink != nil {
		v.sink(Command{Op: "set", Selector: SelectorFor(v.node), Value: top})
	}
}

func (v *AttrViewport) ScrollHeight() float64 {
	return attrFloat(v.node, "data-scroll-height")
}

func (v *AttrViewport) ClientHeight() float64 {
	return attrFloat(v.node, "data-client-height")
}

// SelectorFor derives a selector the host side can resolve: element id
// first, then the first classification label, then the bare tag.
func SelectorFor(n *dom.Node) string {
	if id := n.Attr("id"); id != "" {
		return "#" + id
	}
	if classes := strings.Fields(n.Attr("class")); len(classes) > 0 {
		return "." + classes[0]
	}
	return n.Tag()
}

func attrFloat(n *dom.Node, name string) float64 {
	raw := strings.TrimSpace(n.Attr(name))
	if raw == "" {
		return 0
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0
	}
	return f
}

// Package dom wraps golang.org/x/net/html nodes with the small set of
// capabilities the extraction pipeline needs: classification labels,
// attributes, rendered text and sibling/ancestor/descendant navigation.
// The wrapper never mutates a live document; Clone produces a detached
// copy that callers may strip freely.
package dom

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
)

// Node is one element in the parsed document tree.
type Node struct {
	n *html.Node
}

// Pred is a predicate over nodes, used for matching and navigation.
type Pred func(*Node) bool

// Parse reads an HTML document and returns its root node.
func Parse(r io.Reader) (*Node, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	return &Node{n: root}, nil
}

// ParseString is a convenience wrapper for tests and small snapshots.
func ParseString(s string) (*Node, error) {
	return Parse(strings.NewReader(s))
}

func wrap(n *html.Node) *Node {
	if n == nil {
		return nil
	}
	return &Node{n: n}
}

// Tag returns the element's lowercase tag name, or "" for non-elements.
func (d *Node) Tag() string {
	if d == nil || d.n.Type != html.ElementNode {
		return ""
	}
	return d.n.Data
}

// Attr returns the value of the named attribute, or "" if absent.
func (d *Node) Attr(name string) string {
	if d == nil {
		return ""
	}
	for _, a := range d.n.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}

// HasClass reports whether the element carries the given classification label.
func (d *Node) HasClass(class string) bool {
	if d == nil {
		return false
	}
	for _, c := range strings.Fields(d.Attr("class")) {
		if c == class {
			return true
		}
	}
	return false
}

// HasAnyClass reports whether the element carries any of the given labels.
func (d *Node) HasAnyClass(classes ...string) bool {
	for _, c := range classes {
		if d.HasClass(c) {
			return true
		}
	}
	return false
}

// Parent returns the parent element, or nil at the document root.
func (d *Node) Parent() *Node {
	if d == nil || d.n.Parent == nil {
		return nil
	}
	return wrap(d.n.Parent)
}

// PrevElement returns the nearest preceding sibling that is an element,
// skipping text and comment nodes.
func (d *Node) PrevElement() *Node {
	if d == nil {
		return nil
	}
	for s := d.n.PrevSibling; s != nil; s = s.PrevSibling {
		if s.Type == html.ElementNode {
			return wrap(s)
		}
	}
	return nil
}

// Closest returns the nearest node matching pred, starting with the node
// itself and walking ancestors. Returns nil if no ancestor matches.
func (d *Node) Closest(pred Pred) *Node {
	for cur := d; cur != nil; cur = cur.Parent() {
		if cur.n.Type == html.ElementNode && pred(cur) {
			return cur
		}
	}
	return nil
}

// Find returns the first descendant element matching pred in document
// order, or nil. The node itself is not considered.
func (d *Node) Find(pred Pred) *Node {
	if d == nil {
		return nil
	}
	var found *html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil && found == nil; c = c.NextSibling {
			if c.Type == html.ElementNode && pred(wrap(c)) {
				found = c
				return
			}
			walk(c)
		}
	}
	walk(d.n)
	return wrap(found)
}

// FindAll returns all descendant elements matching pred in document order.
func (d *Node) FindAll(pred Pred) []*Node {
	if d == nil {
		return nil
	}
	var out []*Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && pred(wrap(c)) {
				out = append(out, wrap(c))
			}
			walk(c)
		}
	}
	walk(d.n)
	return out
}

// Clone returns a deep, detached copy of the node. Mutating the copy never
// touches the live document.
func (d *Node) Clone() *Node {
	if d == nil {
		return nil
	}
	return wrap(cloneTree(d.n))
}

func cloneTree(n *html.Node) *html.Node {
	cp := &html.Node{
		Type:      n.Type,
		DataAtom:  n.DataAtom,
		Data:      n.Data,
		Namespace: n.Namespace,
		Attr:      append([]html.Attribute(nil), n.Attr...),
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		cp.AppendChild(cloneTree(c))
	}
	return cp
}

// Detach removes the node from its parent. Intended for cloned subtrees.
func (d *Node) Detach() {
	if d == nil || d.n.Parent == nil {
		return
	}
	d.n.Parent.RemoveChild(d.n)
}

// ByClass matches elements carrying any of the given classification labels.
func ByClass(classes ...string) Pred {
	return func(n *Node) bool {
		return n.HasAnyClass(classes...)
	}
}

// ByTag matches elements with any of the given tag names.
func ByTag(tags ...string) Pred {
	return func(n *Node) bool {
		for _, t := range tags {
			if n.Tag() == t {
				return true
			}
		}
		return false
	}
}

package dom

import (
	"strings"

	"golang.org/x/net/html"
)

// Tags rendered as block-level boxes: a transition into or out of one of
// these produces a line break in the rendered text.
var blockTags = map[string]bool{
	"address": true, "article": true, "aside": true, "blockquote": true,
	"div": true, "dd": true, "dl": true, "dt": true, "fieldset": true,
	"figure": true, "footer": true, "form": true, "h1": true, "h2": true,
	"h3": true, "h4": true, "h5": true, "h6": true, "header": true,
	"hr": true, "li": true, "main": true, "nav": true, "ol": true,
	"p": true, "pre": true, "section": true, "table": true, "tr": true,
	"ul": true,
}

var skipTags = map[string]bool{
	"script": true, "style": true, "template": true, "noscript": true,
}

// Text returns the node's rendered text, approximating the behaviour of a
// browser's innerText: block-level boundaries and <br> become newlines,
// whitespace within a line collapses, script/style content is dropped.
func (d *Node) Text() string {
	if d == nil {
		return ""
	}
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			sb.WriteString(n.Data)
			return
		case html.ElementNode:
			if skipTags[n.Data] {
				return
			}
			if n.Data == "br" {
				sb.WriteString("\n")
				return
			}
			if blockTags[n.Data] {
				sb.WriteString("\n")
			}
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				walk(c)
			}
			if blockTags[n.Data] {
				sb.WriteString("\n")
			}
		default:
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				walk(c)
			}
		}
	}
	walk(d.n)
	return normalizeText(sb.String())
}

// normalizeText collapses intra-line whitespace, trims each line and folds
// block boundaries into single line breaks.
func normalizeText(raw string) string {
	lines := strings.Split(raw, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line == "" {
			continue
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}

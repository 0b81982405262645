package extract

import "github.com/usama-1998/telegram-group-chat-exporter/dom"

// Two renderings of the chat view are supported; they describe logically
// equivalent structures with different class vocabularies. Each list below
// is an ordered matcher chain: earlier entries win, and supporting a new
// rendering means appending labels here, not branching in the extractors.

// Scrollable chat containers holding the visible message list.
var containerClasses = []string{"bubbles", "MessageList", "history", "bubbles-group"}

// Message containers, the unit the assembler iterates over.
var messageClasses = []string{"message", "bubble", "Message"}

// Regions that render message-shaped nodes which are not chat content.
var skipRegionClasses = []string{"sidebar-header", "chat-list", "left-column"}

// Time labels inside a message, in priority order.
var timeLabelClasses = []string{
	"message-time", "time", "time-inner", "inner-time", "bubble-time", "time-part",
}

// Sender labels inside a message, in priority order.
var senderLabelClasses = []string{
	"sender-title", "name", "message-title", "peer-title", "message-title-name",
}

// Quoted-reply and forward sub-structures. A sender label nested inside one
// of these belongs to the quoted author, not the message's own sender.
var quoteContainerClasses = []string{
	"EmbeddedMessage", "message-subheader", "reply", "reply-wrapper", "forward-title-container",
}

// The most specific body/content sub-node of a message.
var contentClasses = []string{"text-content", "message-text", "content-inner", "bubble-content"}

// Siblings that still belong to the same logical message-list grouping, for
// recovering the sender of a consecutive run that only labels its first entry.
var groupMemberClasses = []string{"Message", "message-list-item"}

// Marks a self-authored message.
const ownClass = "own"

// Stable identifier attributes, in priority order.
var idAttrs = []string{"data-message-id", "data-mid", "id"}

// Numeric epoch attributes, in priority order.
var epochAttrs = []string{"data-timestamp", "data-time"}

// Non-content substructures stripped from a detached copy before the body
// text is read.
var stripClasses = []string{
	"message-time", "time", "inner-time",
	"sender-title", "name", "message-title", "peer-title",
	"reply", "reply-wrapper",
	"EmbeddedMessage", "embedded-text-wrapper", "embedded-sender",
	"message-subheader",
	"reply-markup",
	"avatar", "peer-avatar",
	"reactions", "reaction-list",
	"forwarded-message", "forward-title-container",
	"admin-badge", "badge",
}

var stripTags = []string{"svg", "img"}

// Date separator structures.
const (
	dateGroupClass  = "message-date-group"
	stickyDateClass = "sticky-date"
)

var separatorClasses = []string{
	"sticky-date", "service", "bubble-date", "bubble-date-group", "date-group", "is-date",
}

var separatorInnerClasses = []string{
	"service-msg", "bubble-service", "date-group-title", "sticky-date",
}

// ChatContainer matches the primary scrollable chat container under either
// vocabulary. Exposed for the scroll-container discovery in the pagination
// layer.
func ChatContainer() dom.Pred {
	return dom.ByClass(containerClasses...)
}

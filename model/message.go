package model

// Message is one normalized chat message captured during a session.
//
// Date is the human-readable composite of calendar date and time-of-day as
// shown by the chat view ("December 1, 2025, 07:30 AM"), assembled
// best-effort and possibly empty. Timestamp is the wall-clock instant at
// which the record was captured, not the message's own send time.
type Message struct {
	ID        string `json:"id"`
	Sender    string `json:"sender"`
	Text      string `json:"text"`
	Date      string `json:"date"`
	Timestamp string `json:"timestamp"`

	// UnstableID marks records whose ID was generated locally because the
	// document assigned none. Such records can never be recognized as
	// duplicates across scan cycles.
	UnstableID bool `json:"-"`
}

// Payload is a rendered export ready to be written to disk or handed to a
// control surface.
type Payload struct {
	Content  string `json:"content"`
	MIMEType string `json:"mimeType"`
	Filename string `json:"filename"`
}

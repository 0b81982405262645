// Package export renders a finished record set into one of the supported
// textual formats.
package export

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/usama-1998/telegram-group-chat-exporter/model"
)

type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatHTML Format = "html"
	FormatTXT  Format = "txt"
)

const baseFilename = "telegram_chat_export"

const txtDivider = "\n------------------------------------------------\n"

// ParseFormat maps a requested format name onto a supported Format,
// defaulting to json when omitted or unrecognized.
func ParseFormat(s string) Format {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatCSV:
		return FormatCSV
	case FormatHTML:
		return FormatHTML
	case FormatTXT:
		return FormatTXT
	default:
		return FormatJSON
	}
}

// Serialize renders the records into the requested format; anything not
// recognized renders as plain text. Records are sorted ascending by the
// numeric key derived from their id (oldest first); ids without digits
// collapse to key 0 and keep encounter order among themselves.
func Serialize(records []model.Message, format Format) (model.Payload, error) {
	msgs := sortByNumericID(records)

	switch format {
	case FormatJSON:
		return renderJSON(msgs)
	case FormatCSV:
		return renderCSV(msgs), nil
	case FormatHTML:
		return renderHTML(msgs), nil
	default:
		return renderTXT(msgs), nil
	}
}

var nonDigitRe = regexp.MustCompile(`\D`)

func numericID(id string) int64 {
	digits := nonDigitRe.ReplaceAllString(id, "")
	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

func sortByNumericID(records []model.Message) []model.Message {
	out := append([]model.Message(nil), records...)
	sort.SliceStable(out, func(i, j int) bool {
		return numericID(out[i].ID) < numericID(out[j].ID)
	})
	return out
}

func renderJSON(msgs []model.Message) (model.Payload, error) {
	if msgs == nil {
		msgs = []model.Message{}
	}
	data, err := json.MarshalIndent(msgs, "", "  ")
	if err != nil {
		return model.Payload{}, fmt.Errorf("encode json export: %w", err)
	}
	return model.Payload{
		Content:  string(data),
		MIMEType: "application/json",
		Filename: baseFilename + ".json",
	}, nil
}

// renderCSV emits the historical column layout: the "Timestamp" column
// carries the human-readable date field, not the capture-time timestamp.
// All values are double-quoted with embedded quotes doubled.
func renderCSV(msgs []model.Message) model.Payload {
	rows := make([]string, 0, len(msgs)+1)
	rows = append(rows, "ID,Timestamp,Sender,Message")

	for _, m := range msgs {
		row := []string{
			csvQuote(m.ID),
			csvQuote(m.Date),
			csvQuote(m.Sender),
			csvQuote(m.Text),
		}
		rows = append(rows, strings.Join(row, ","))
	}

	return model.Payload{
		Content:  strings.Join(rows, "\n"),
		MIMEType: "text/csv",
		Filename: baseFilename + ".csv",
	}
}

func csvQuote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

var htmlBodyEscaper = strings.NewReplacer("<", "&lt;", ">", "&gt;")

func renderHTML(msgs []model.Message) model.Payload {
	var sb strings.Builder
	sb.WriteString(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Telegram Chat History</title>
<style>
    body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, Helvetica, Arial, sans-serif; background: #eef1f5; padding: 20px; margin: 0; }
    .container { max-width: 700px; margin: 0 auto; background: white; padding: 20px; border-radius: 12px; box-shadow: 0 2px 5px rgba(0,0,0,0.05); }
    h1 { text-align: center; color: #333; font-size: 24px; margin-bottom: 20px; }
    .stat { text-align: center; color: #777; font-size: 14px; margin-bottom: 30px; }
    .msg { display: flex; flex-direction: column; margin-bottom: 15px; padding-bottom: 15px; border-bottom: 1px solid #f0f0f0; }
    .msg:last-child { border-bottom: none; }
    .header { display: flex; justify-content: space-between; margin-bottom: 6px; font-size: 13px; }
    .sender { font-weight: 700; color: #3390ec; }
    .time { color: #999; font-size: 12px; }
    .content { color: #111; line-height: 1.5; white-space: pre-wrap; word-wrap: break-word; }
</style>
</head>
<body>
<div class="container">
    <h1>Chat History</h1>
    <div class="stat">Exported `)
	sb.WriteString(strconv.Itoa(len(msgs)))
	sb.WriteString(` messages</div>
`)

	for _, m := range msgs {
		sb.WriteString(`
    <div class="msg">
        <div class="header">
            <span class="sender">`)
		sb.WriteString(m.Sender)
		sb.WriteString(`</span>
            <span class="time">`)
		sb.WriteString(m.Date)
		sb.WriteString(`</span>
        </div>
        <div class="content">`)
		sb.WriteString(htmlBodyEscaper.Replace(m.Text))
		sb.WriteString(`</div>
    </div>`)
	}

	sb.WriteString(`

</div>
</body>
</html>`)

	return model.Payload{
		Content:  sb.String(),
		MIMEType: "text/html",
		Filename: baseFilename + ".html",
	}
}

func renderTXT(msgs []model.Message) model.Payload {
	parts := make([]string, 0, len(msgs))
	for _, m := range msgs {
		dateStr := ""
		if m.Date != "" {
			dateStr = " [" + m.Date + "]"
		}
		parts = append(parts, fmt.Sprintf("%s%s\n\n%s\n", m.Sender, dateStr, m.Text))
	}

	return model.Payload{
		Content:  strings.Join(parts, txtDivider),
		MIMEType: "text/plain",
		Filename: baseFilename + ".txt",
	}
}

package extract

import (
	"strconv"
	"strings"
	"time"
)

// Epoch values below this are seconds; at or above, milliseconds.
const epochMillisCutoff = 10_000_000_000

// SplitTimeLabel parses the text of a time label into its calendar-date and
// time-of-day parts. Older messages show a full "Dec 1, 2025 at 07:30 AM"
// label; recent ones show a bare "07:30 AM" or "19:30". Anything else is
// carried through as the time part unchanged.
func SplitTimeLabel(raw string) (calendarDate, timeOfDay string) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ""
	}

	if m := fullDateTimeRe.FindStringSubmatch(raw); m != nil {
		return strings.TrimSpace(m[1]), strings.TrimSpace(m[2])
	}

	if timeOnlyRe.MatchString(raw) {
		return "", raw
	}

	// Opaque labels still count as the time part.
	return "", raw
}

// decodeEpoch turns a numeric timestamp attribute into a long-form calendar
// date and a time-of-day. Returns ok=false for unparsable values so the
// caller falls through to the next source.
func decodeEpoch(raw string) (calendarDate, timeOfDay string, ok bool) {
	ts, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return "", "", false
	}

	var t time.Time
	if ts < epochMillisCutoff {
		t = time.Unix(ts, 0)
	} else {
		t = time.UnixMilli(ts)
	}

	return t.Format("January 2, 2006"), t.Format("03:04 PM"), true
}

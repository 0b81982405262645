package extract

import "regexp"

var (
	// "Dec 1, 2025 at 07:30 AM" or "December 1, 2025 at 07:30 AM".
	fullDateTimeRe = regexp.MustCompile(`(?i)^(.+?)\s+at\s+(\d{1,2}:\d{2}\s*(?:AM|PM)?)`)

	// Bare "07:30 AM" or "19:30".
	timeOnlyRe = regexp.MustCompile(`(?i)^\d{1,2}:\d{2}\s*(?:AM|PM)?$`)

	// Trailing time left glued to a body when no time label exists.
	trailingTimeRe = regexp.MustCompile(`(?i)\d{2}:\d{2}\s?(?:AM|PM)?$`)

	// Month name or numeric day-month fragment.
	monthRe = regexp.MustCompile(`(?i)\b(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec|january|february|march|april|june|july|august|september|october|november|december|\d{1,2}[/\-.]\d{1,2})`)

	// "5 January" / "5 January 2025".
	dayFirstRe = regexp.MustCompile(`^\d{1,2}\s+\w+(\s+\d{4})?$`)

	// "January 5", "Jan 5, 2025".
	monthFirstRe = regexp.MustCompile(`^\w+\s+\d{1,2}`)

	// "Today", "Yesterday" and weekday names.
	relativeDayRe = regexp.MustCompile(`(?i)^(today|yesterday|monday|tuesday|wednesday|thursday|friday|saturday|sunday)`)
)

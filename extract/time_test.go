package extract

import (
	"testing"
	"time"
)

func TestSplitTimeLabel(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		wantDate string
		wantTime string
	}{
		{
			name:     "full datetime short month",
			raw:      "Dec 1, 2025 at 07:30 AM",
			wantDate: "Dec 1, 2025",
			wantTime: "07:30 AM",
		},
		{
			name:     "full datetime long month",
			raw:      "December 1, 2025 at 07:30 PM",
			wantDate: "December 1, 2025",
			wantTime: "07:30 PM",
		},
		{
			name:     "bare twelve hour time",
			raw:      "07:30 AM",
			wantDate: "",
			wantTime: "07:30 AM",
		},
		{
			name:     "bare twenty four hour time",
			raw:      "19:30",
			wantDate: "",
			wantTime: "19:30",
		},
		{
			name:     "opaque label carried as time",
			raw:      "edited",
			wantDate: "",
			wantTime: "edited",
		},
		{
			name:     "surrounding whitespace trimmed",
			raw:      "  03:01 PM  ",
			wantDate: "",
			wantTime: "03:01 PM",
		},
		{
			name:     "empty",
			raw:      "",
			wantDate: "",
			wantTime: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotDate, gotTime := SplitTimeLabel(tt.raw)
			if gotDate != tt.wantDate {
				t.Errorf("SplitTimeLabel() date = %q, want %q", gotDate, tt.wantDate)
			}
			if gotTime != tt.wantTime {
				t.Errorf("SplitTimeLabel() time = %q, want %q", gotTime, tt.wantTime)
			}
		})
	}
}

func TestDecodeEpoch(t *testing.T) {
	const secs = int64(1700000000)
	const millis = int64(1700000000123)

	wantSecDate := time.Unix(secs, 0).Format("January 2, 2006")
	wantSecTime := time.Unix(secs, 0).Format("03:04 PM")
	wantMilliDate := time.UnixMilli(millis).Format("January 2, 2006")

	gotDate, gotTime, ok := decodeEpoch("1700000000")
	if !ok {
		t.Fatal("decodeEpoch(seconds) ok = false, want true")
	}
	if gotDate != wantSecDate || gotTime != wantSecTime {
		t.Errorf("decodeEpoch(seconds) = (%q, %q), want (%q, %q)", gotDate, gotTime, wantSecDate, wantSecTime)
	}

	gotDate, _, ok = decodeEpoch("1700000000123")
	if !ok {
		t.Fatal("decodeEpoch(millis) ok = false, want true")
	}
	if gotDate != wantMilliDate {
		t.Errorf("decodeEpoch(millis) date = %q, want %q", gotDate, wantMilliDate)
	}

	if _, _, ok := decodeEpoch("not-a-number"); ok {
		t.Error("decodeEpoch(garbage) ok = true, want false")
	}
	if _, _, ok := decodeEpoch(""); ok {
		t.Error("decodeEpoch(empty) ok = true, want false")
	}
}

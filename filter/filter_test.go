package filter

import (
	"testing"
)

func TestFilter_Allows_IncludeMode(t *testing.T) {
	opts := Options{
		IncludeSender: []string{"^Alice$"},
	}
	f, err := New(opts)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if !f.Allows("Alice", "hello there") {
		t.Error("Expected record to be allowed (sender matches)")
	}
	if f.Allows("Bob", "hello there") {
		t.Error("Expected record to be filtered out (sender doesn't match)")
	}
}

func TestFilter_Allows_ExcludeMode(t *testing.T) {
	opts := Options{
		ExcludeText: []string{"(?i)spam"},
	}
	f, err := New(opts)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if !f.Allows("Alice", "a normal message") {
		t.Error("Expected record to be allowed (no spam)")
	}
	if f.Allows("Alice", "This is SPAM content") {
		t.Error("Expected record to be filtered out (contains spam)")
	}
}

func TestFilter_IncludeEitherFieldAllows(t *testing.T) {
	opts := Options{
		IncludeSender: []string{"^Alice$"},
		IncludeText:   []string{"urgent"},
	}
	f, err := New(opts)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if !f.Allows("Alice", "nothing special") {
		t.Error("Expected record allowed by sender match alone")
	}
	if !f.Allows("Bob", "urgent: call me") {
		t.Error("Expected record allowed by text match alone")
	}
	if f.Allows("Bob", "nothing special") {
		t.Error("Expected record filtered out when neither field matches")
	}
}

func TestFilter_ExcludeSender(t *testing.T) {
	opts := Options{
		ExcludeSender: []string{"^Telegram$", "Bot$"},
	}
	f, err := New(opts)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if f.Allows("Telegram", "login code") {
		t.Error("Expected service sender to be filtered out")
	}
	if f.Allows("WeatherBot", "rain tomorrow") {
		t.Error("Expected bot sender to be filtered out")
	}
	if !f.Allows("Alice", "real message") {
		t.Error("Expected regular sender to be allowed")
	}
}

func TestFilter_MutuallyExclusive(t *testing.T) {
	opts := Options{
		IncludeSender: []string{"Alice"},
		ExcludeText:   []string{"spam"},
	}
	_, err := New(opts)
	if err == nil {
		t.Error("Expected error when both include and exclude are specified")
	}
}

func TestFilter_NoFilters(t *testing.T) {
	f, err := New(Options{})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if !f.Allows("Anyone", "any content") {
		t.Error("Expected record to be allowed when no filters are active")
	}
}

func TestFilter_InvalidPattern(t *testing.T) {
	opts := Options{
		IncludeText: []string{"[unclosed"},
	}
	if _, err := New(opts); err == nil {
		t.Error("Expected error for invalid regex pattern")
	}
}

func TestFilter_BlankPatternsIgnored(t *testing.T) {
	opts := Options{
		IncludeSender: []string{"  ", ""},
	}
	f, err := New(opts)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	// Blank patterns compile to nothing, so no include mode activates.
	if !f.Allows("Anyone", "anything") {
		t.Error("Expected blank patterns to leave the filter inactive")
	}
}

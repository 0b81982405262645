package store

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/usama-1998/telegram-group-chat-exporter/model"
)

func TestMemoryStore_FirstWriteWins(t *testing.T) {
	s := NewMemoryStore()

	if err := s.Add(model.Message{ID: "1", Sender: "Alice", Text: "hello"}); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if err := s.Add(model.Message{ID: "1", Sender: "Mallory", Text: "overwritten"}); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	if s.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", s.Len())
	}
	got := s.Records()[0]
	if got.Sender != "Alice" || got.Text != "hello" {
		t.Errorf("Records()[0] = %+v, want original record", got)
	}
}

func TestMemoryStore_EncounterOrder(t *testing.T) {
	s := NewMemoryStore()
	want := []model.Message{
		{ID: "3", Text: "third id, first seen"},
		{ID: "1", Text: "second seen"},
		{ID: "2", Text: "last seen"},
	}
	for _, msg := range want {
		if err := s.Add(msg); err != nil {
			t.Fatalf("Add(%q) error = %v", msg.ID, err)
		}
	}

	if diff := cmp.Diff(want, s.Records()); diff != "" {
		t.Errorf("Records() mismatch (-want +got):\n%s", diff)
	}
}

func TestMemoryStore_EmptyIDIgnored(t *testing.T) {
	s := NewMemoryStore()
	if err := s.Add(model.Message{Text: "no id"}); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if s.Len() != 0 {
		t.Errorf("Len() = %d, want 0", s.Len())
	}
	if s.Has("") {
		t.Error("Has(\"\") = true, want false")
	}
}

func TestMemoryStore_RecordsIsACopy(t *testing.T) {
	s := NewMemoryStore()
	if err := s.Add(model.Message{ID: "1", Sender: "Alice"}); err != nil {
		t.Fatal(err)
	}

	recs := s.Records()
	recs[0].Sender = "mutated"

	if got := s.Records()[0].Sender; got != "Alice" {
		t.Errorf("stored sender = %q after mutating returned slice, want %q", got, "Alice")
	}
}

func TestMemoryStore_Reset(t *testing.T) {
	s := NewMemoryStore()
	if err := s.Add(model.Message{ID: "1"}); err != nil {
		t.Fatal(err)
	}

	s.Reset()

	if s.Len() != 0 {
		t.Errorf("Len() after Reset = %d, want 0", s.Len())
	}
	if s.Has("1") {
		t.Error("Has(\"1\") after Reset = true, want false")
	}
	if err := s.Add(model.Message{ID: "1", Text: "again"}); err != nil {
		t.Fatal(err)
	}
	if s.Len() != 1 {
		t.Errorf("Len() after re-add = %d, want 1", s.Len())
	}
}

func TestFileStore_JournalsEachRecord(t *testing.T) {
	tmpDir := t.TempDir()

	fs, err := NewFileStore(tmpDir)
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}

	want := []model.Message{
		{ID: "10", Sender: "Alice", Text: "first", Date: "January 5, 10:00 AM", Timestamp: "2026-08-30T12:00:00Z"},
		{ID: "11", Sender: "Bob", Text: "second"},
	}
	for _, msg := range want {
		if err := fs.Add(msg); err != nil {
			t.Fatalf("Add(%q) error = %v", msg.ID, err)
		}
	}
	// Duplicate must not reach the journal.
	if err := fs.Add(model.Message{ID: "10", Text: "dupe"}); err != nil {
		t.Fatalf("Add(dupe) error = %v", err)
	}

	if err := fs.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	file, err := os.Open(filepath.Join(tmpDir, "records.jsonl"))
	if err != nil {
		t.Fatalf("open journal: %v", err)
	}
	defer file.Close()

	var got []model.Message
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var msg model.Message
		if err := json.Unmarshal(scanner.Bytes(), &msg); err != nil {
			t.Fatalf("decode journal line: %v", err)
		}
		got = append(got, msg)
	}
	if err := scanner.Err(); err != nil {
		t.Fatalf("scan journal: %v", err)
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("journal mismatch (-want +got):\n%s", diff)
	}
}

func TestFileStore_AppendsAcrossSessions(t *testing.T) {
	tmpDir := t.TempDir()

	first, err := NewFileStore(tmpDir)
	if err != nil {
		t.Fatal(err)
	}
	if err := first.Add(model.Message{ID: "1", Text: "session one"}); err != nil {
		t.Fatal(err)
	}
	if err := first.Close(); err != nil {
		t.Fatal(err)
	}

	// Dedup is per session: the same id journals again in a fresh run.
	second, err := NewFileStore(tmpDir)
	if err != nil {
		t.Fatal(err)
	}
	if err := second.Add(model.Message{ID: "1", Text: "session two"}); err != nil {
		t.Fatal(err)
	}
	if err := second.Close(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(filepath.Join(tmpDir, "records.jsonl"))
	if err != nil {
		t.Fatal(err)
	}
	lines := 0
	for _, b := range data {
		if b == '\n' {
			lines++
		}
	}
	if lines != 2 {
		t.Errorf("journal has %d lines, want 2", lines)
	}
}

func TestNewFileStore_EmptyDir(t *testing.T) {
	if _, err := NewFileStore("  "); err == nil {
		t.Error("NewFileStore(blank) error = nil, want error")
	}
}

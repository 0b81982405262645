package store

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/usama-1998/telegram-group-chat-exporter/model"
)

// Store is the deduplicating record collection a capture session writes
// into. First write wins: a later observation of an already-stored id is
// discarded, never merged. Records preserves encounter order.
type Store interface {
	Has(id string) bool
	Add(msg model.Message) error
	Len() int
	Records() []model.Message
	Reset()
}

// MemoryStore keeps records for the lifetime of one session.
type MemoryStore struct {
	mu    sync.RWMutex
	index map[string]int
	order []model.Message
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{index: make(map[string]int)}
}

func (m *MemoryStore) Has(id string) bool {
	if id == "" {
		return false
	}

	m.mu.RLock()
	_, ok := m.index[id]
	m.mu.RUnlock()
	return ok
}

func (m *MemoryStore) Add(msg model.Message) error {
	if msg.ID == "" {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.index[msg.ID]; exists {
		return nil
	}
	m.index[msg.ID] = len(m.order)
	m.order = append(m.order, msg)
	return nil
}

func (m *MemoryStore) Len() int {
	m.mu.RLock()
	n := len(m.order)
	m.mu.RUnlock()
	return n
}

// Records returns the stored records in encounter order. The returned slice
// is a copy; callers may sort it freely.
func (m *MemoryStore) Records() []model.Message {
	m.mu.RLock()
	out := append([]model.Message(nil), m.order...)
	m.mu.RUnlock()
	return out
}

func (m *MemoryStore) Reset() {
	m.mu.Lock()
	m.index = make(map[string]int)
	m.order = nil
	m.mu.Unlock()
}

// FileStore journals every stored record as a JSON line so an interrupted
// session leaves an inspectable trail. The journal is write-only: dedup is
// in-memory per session and a new session never consults it.
type FileStore struct {
	*MemoryStore
	path    string
	writer  *bufio.Writer
	file    *os.File
	writeMu sync.Mutex
}

func NewFileStore(stateDir string) (*FileStore, error) {
	if strings.TrimSpace(stateDir) == "" {
		return nil, fmt.Errorf("state directory is empty")
	}

	if err := os.MkdirAll(stateDir, 0o755); err != nil {
		return nil, fmt.Errorf("create state directory: %w", err)
	}

	path := filepath.Join(stateDir, "records.jsonl")
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open journal for append: %w", err)
	}

	return &FileStore{
		MemoryStore: NewMemoryStore(),
		path:        path,
		file:        file,
		writer:      bufio.NewWriterSize(file, 64*1024),
	}, nil
}

func (f *FileStore) Add(msg model.Message) error {
	if msg.ID == "" {
		return nil
	}
	if f.Has(msg.ID) {
		return nil
	}
	if err := f.MemoryStore.Add(msg); err != nil {
		return err
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode journal record: %w", err)
	}

	f.writeMu.Lock()
	defer f.writeMu.Unlock()

	if _, err := f.writer.Write(data); err != nil {
		return fmt.Errorf("write journal record: %w", err)
	}
	if err := f.writer.WriteByte('\n'); err != nil {
		return fmt.Errorf("write newline: %w", err)
	}

	return nil
}

// Flush writes any buffered journal data to the underlying file.
func (f *FileStore) Flush() error {
	f.writeMu.Lock()
	defer f.writeMu.Unlock()

	if err := f.writer.Flush(); err != nil {
		return fmt.Errorf("flush journal: %w", err)
	}
	if err := f.file.Sync(); err != nil {
		return fmt.Errorf("sync journal: %w", err)
	}
	return nil
}

// Close flushes and closes the journal file.
func (f *FileStore) Close() error {
	f.writeMu.Lock()
	defer f.writeMu.Unlock()

	var firstErr error
	if err := f.writer.Flush(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("flush journal: %w", err)
	}
	if err := f.file.Sync(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("sync journal: %w", err)
	}
	if err := f.file.Close(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("close journal: %w", err)
	}

	return firstErr
}

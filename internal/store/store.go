package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/adanbank/signal-sentinel/internal/logger"
)

// Store is an append-only JSON array file. Every mutation rewrites the
// whole file through a temp file + rename, so a partial write is never
// visible. A single writer per file is assumed.
type Store struct {
	path   string
	logger *logger.Logger
}

// New creates a store for the given file path.
func New(path string, log *logger.Logger) *Store {
	return &Store{
		path:   path,
		logger: log.WithComponent("store").With(zap.String("file", path)),
	}
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// ReadRaw returns the stored records as raw JSON. A missing or corrupt
// file reads as empty; corruption is logged because the next write will
// replace whatever is there.
func (s *Store) ReadRaw() ([]json.RawMessage, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", s.path, err)
	}

	var records []json.RawMessage
	if err := json.Unmarshal(data, &records); err != nil {
		s.logger.Warn("store file is corrupt, treating as empty (existing content will be lost on next write)",
			zap.Error(err))
		return nil, nil
	}
	return records, nil
}

// Count returns the number of stored records.
func (s *Store) Count() (int, error) {
	records, err := s.ReadRaw()
	if err != nil {
		return 0, err
	}
	return len(records), nil
}

// Append marshals v (a slice) and appends its elements to the file.
// Returns the new total record count.
func (s *Store) Append(v any) (int, error) {
	incoming, err := toRaw(v)
	if err != nil {
		return 0, err
	}

	existing, err := s.ReadRaw()
	if err != nil {
		return 0, err
	}

	merged := append(existing, incoming...)
	if err := s.writeRaw(merged); err != nil {
		return 0, err
	}
	return len(merged), nil
}

// Replace overwrites the file with the elements of v (a slice).
func (s *Store) Replace(v any) error {
	records, err := toRaw(v)
	if err != nil {
		return err
	}
	return s.writeRaw(records)
}

// Wipe resets the file to an empty array.
func (s *Store) Wipe() error {
	return s.writeRaw(nil)
}

func toRaw(v any) ([]json.RawMessage, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal records: %w", err)
	}
	var records []json.RawMessage
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("records must be a slice: %w", err)
	}
	return records, nil
}

func (s *Store) writeRaw(records []json.RawMessage) error {
	if records == nil {
		records = []json.RawMessage{}
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal store: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create store directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace store file: %w", err)
	}
	return nil
}

// ReadAs reads and decodes all records into a typed slice.
func ReadAs[T any](s *Store) ([]T, error) {
	raw, err := s.ReadRaw()
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(raw))
	for i, r := range raw {
		var v T
		if err := json.Unmarshal(r, &v); err != nil {
			return nil, fmt.Errorf("failed to decode record %d: %w", i, err)
		}
		out = append(out, v)
	}
	return out, nil
}

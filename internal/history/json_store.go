package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

type jsonHistoryFile struct {
	History []Record `json:"history"`
}

// JSONStore keeps the whole history newest-first in a single JSON file
type JSONStore struct {
	filePath string
	mu       sync.Mutex
}

// NewJSONStore returns a store backed by the file at path. The file is created on first Append.
func NewJSONStore(path string) *JSONStore {
	return &JSONStore{filePath: path}
}

func (s *JSONStore) Append(ctx context.Context, record Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.load()
	if err != nil {
		return err
	}
	data.History = append([]Record{record}, data.History...)
	return s.save(data)
}

func (s *JSONStore) List(ctx context.Context) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.load()
	if err != nil {
		return nil, err
	}
	return data.History, nil
}

func (s *JSONStore) Close() error {
	return nil
}

// load reads the file; a missing file is an empty history
func (s *JSONStore) load() (jsonHistoryFile, error) {
	data := jsonHistoryFile{History: make([]Record, 0)}
	raw, err := os.ReadFile(s.filePath)
	if errors.Is(err, fs.ErrNotExist) {
		return data, nil
	}
	if err != nil {
		return data, fmt.Errorf("read history %s: %w", s.filePath, err)
	}
	if err := json.Unmarshal(raw, &data); err != nil {
		return data, fmt.Errorf("parse history %s: %w", s.filePath, err)
	}
	if data.History == nil {
		data.History = make([]Record, 0)
	}
	return data, nil
}

// save writes to a temporary file and renames it over the old one
func (s *JSONStore) save(data jsonHistoryFile) error {
	if err := os.MkdirAll(filepath.Dir(s.filePath), 0755); err != nil {
		return fmt.Errorf("create history dir: %w", err)
	}
	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal history: %w", err)
	}
	tmp := s.filePath + ".tmp"
	if err := os.WriteFile(tmp, raw, 0644); err != nil {
		return fmt.Errorf("write history %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, s.filePath); err != nil {
		return fmt.Errorf("replace history %s: %w", s.filePath, err)
	}
	return nil
}

package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileKV persists all keys as one JSON object on disk. Every Put rewrites the
// file through a temp file and rename, so a crash leaves either the old or the
// new document.
type FileKV struct {
	mu       sync.RWMutex
	filePath string
}

// NewFileKV creates the parent directory if needed. The file itself is created
// on the first Put.
func NewFileKV(path string) (*FileKV, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create state dir: %w", err)
	}
	return &FileKV{filePath: path}, nil
}

func (s *FileKV) Path() string { return s.filePath }

func (s *FileKV) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	values, err := s.load()
	if err != nil {
		return "", false, err
	}
	v, ok := values[key]
	return v, ok, nil
}

func (s *FileKV) Put(_ context.Context, set map[string]string, remove ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.load()
	if err != nil {
		return err
	}
	for k, v := range set {
		values[k] = v
	}
	for _, k := range remove {
		delete(values, k)
	}
	return s.save(values)
}

// load reads the document. A missing or empty file is an empty document.
func (s *FileKV) load() (map[string]string, error) {
	values := make(map[string]string)

	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return values, nil
		}
		return nil, fmt.Errorf("read state file: %w", err)
	}
	if len(data) == 0 {
		return values, nil
	}
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("decode state file %s: %w", s.filePath, err)
	}
	return values, nil
}

func (s *FileKV) save(values map[string]string) error {
	tempFile := s.filePath + ".tmp"
	file, err := os.OpenFile(tempFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("create temp state file: %w", err)
	}

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(values); err != nil {
		file.Close()
		os.Remove(tempFile)
		return fmt.Errorf("encode state: %w", err)
	}

	if err := file.Close(); err != nil {
		os.Remove(tempFile)
		return fmt.Errorf("close temp state file: %w", err)
	}

	if err := os.Rename(tempFile, s.filePath); err != nil {
		os.Remove(tempFile)
		return fmt.Errorf("replace state file: %w", err)
	}
	return nil
}

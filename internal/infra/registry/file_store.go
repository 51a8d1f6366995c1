package registry

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"police-security-bot/internal/domain/ports/repository"
)

var _ repository.AlertAdminRepository = (*FileStore)(nil)

// FileStore keeps alert-admin chat ids as a JSON array on disk. Every call
// re-reads the file, so edits made by hand between calls are honoured.
// The mutex only serialises callers inside this process.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore makes sure path holds a JSON array, creating "[]" if absent.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		return nil, errors.New("registry path is empty")
	}
	s := &FileStore{path: path}
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		if err := s.write([]int64{}); err != nil {
			return nil, fmt.Errorf("create registry: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("stat registry: %w", err)
	}
	return s, nil
}

func (s *FileStore) Load(ctx context.Context) ([]int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read()
}

func (s *FileStore) Update(ctx context.Context, fn func(ids []int64) ([]int64, error)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	ids, err := s.read()
	if err != nil {
		return err
	}
	next, err := fn(ids)
	if err != nil {
		return err
	}
	return s.write(next)
}

func (s *FileStore) read() ([]int64, error) {
	b, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []int64{}, nil
		}
		return nil, fmt.Errorf("read registry: %w", err)
	}
	if len(bytes.TrimSpace(b)) == 0 {
		return []int64{}, nil
	}
	var ids []int64
	if err := json.Unmarshal(b, &ids); err != nil {
		return nil, fmt.Errorf("decode registry %s: %w", s.path, err)
	}
	if ids == nil {
		ids = []int64{}
	}
	return ids, nil
}

// write replaces the file via temp file + rename so readers never see a
// partially written array.
func (s *FileStore) write(ids []int64) error {
	if ids == nil {
		ids = []int64{}
	}
	b, err := json.Marshal(ids)
	if err != nil {
		return err
	}
	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("registry temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return fmt.Errorf("registry write: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("registry sync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("registry rename: %w", err)
	}
	return nil
}

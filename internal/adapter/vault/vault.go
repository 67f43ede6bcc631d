// Package vault persists the single personal resume record as a flat JSON
// file. Last write wins; there is no versioning.
package vault

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"job-assistant/internal/domain"
)

type FileVault struct {
	mu   sync.Mutex
	path string
}

func New(path string) *FileVault {
	return &FileVault{path: path}
}

// Save writes the record atomically via a temp-file rename.
func (v *FileVault) Save(_ domain.Context, rec domain.Record) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: marshal personal resume: %v", domain.ErrInternal, err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(v.path), ".personal-resume-*")
	if err != nil {
		return fmt.Errorf("write personal resume: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write personal resume: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write personal resume: %w", err)
	}
	if err := os.Rename(tmp.Name(), v.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write personal resume: %w", err)
	}
	return nil
}

// Load reads the record back. A missing file maps to ErrNotFound.
func (v *FileVault) Load(_ domain.Context) (domain.Record, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	data, err := os.ReadFile(v.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: no personal resume saved", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("read personal resume: %w", err)
	}
	var rec domain.Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("%w: personal resume file corrupt: %v", domain.ErrInternal, err)
	}
	return rec, nil
}

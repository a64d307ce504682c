// Package persistence stores extension licenses.
package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/kolabsys/phlesk/internal/licensing/domain"
)

// KeyFileRepository implements domain.Repository on top of the panel's
// additional license keys file, a JSON object keyed by extension id.
type KeyFileRepository struct {
	filePath string
	moduleID string
	mu       sync.RWMutex
}

var _ domain.Repository = (*KeyFileRepository)(nil)

// NewKeyFileRepository creates a repository for the license of moduleID.
func NewKeyFileRepository(filePath, moduleID string) *KeyFileRepository {
	return &KeyFileRepository{
		filePath: filePath,
		moduleID: moduleID,
	}
}

// Load retrieves the license of the extension.
// Returns nil, nil if the file or the extension's key does not exist.
func (r *KeyFileRepository) Load(ctx context.Context) (*domain.License, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	keys, err := r.read()
	if err != nil {
		return nil, err
	}

	license, ok := keys[r.moduleID]
	if !ok || license.KeyBody == "" {
		return nil, nil
	}
	return &license, nil
}

// Save stores the license of the extension, keeping other extensions' keys.
func (r *KeyFileRepository) Save(ctx context.Context, license *domain.License) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	keys, err := r.read()
	if err != nil {
		return err
	}
	keys[r.moduleID] = *license
	return r.write(keys)
}

// Delete removes the license of the extension.
func (r *KeyFileRepository) Delete(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	keys, err := r.read()
	if err != nil {
		return err
	}
	if _, ok := keys[r.moduleID]; !ok {
		return nil
	}
	delete(keys, r.moduleID)
	return r.write(keys)
}

// Exists checks if the extension has a license.
func (r *KeyFileRepository) Exists(ctx context.Context) bool {
	license, err := r.Load(ctx)
	return err == nil && license != nil
}

// FilePath returns the path to the keys file.
func (r *KeyFileRepository) FilePath() string {
	return r.filePath
}

func (r *KeyFileRepository) read() (map[string]domain.License, error) {
	keys := make(map[string]domain.License)

	data, err := os.ReadFile(r.filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return keys, nil
		}
		return nil, fmt.Errorf("read license keys: %w", err)
	}

	if err := json.Unmarshal(data, &keys); err != nil {
		return nil, fmt.Errorf("decode license keys: %w", err)
	}
	return keys, nil
}

func (r *KeyFileRepository) write(keys map[string]domain.License) error {
	if err := os.MkdirAll(filepath.Dir(r.filePath), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(keys, "", "  ")
	if err != nil {
		return err
	}

	// Key material: owner read/write only.
	return os.WriteFile(r.filePath, data, 0600)
}

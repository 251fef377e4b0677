package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mailcast/mailcast/internal/model"
)

// File names inside the data directory.
const (
	KeysFileName    = "apikeys.json"
	TenantsFileName = "mailinglist.json"
)

// File stores both structures as JSON documents in a directory.
// Writes go through a temp file and rename so a crash never leaves a
// half-written document behind.
type File struct {
	dir string
}

type keysDocument struct {
	APIKeys []string `json:"api_keys"`
}

// NewFile creates a file backend rooted at dir, creating it if needed.
func NewFile(dir string) (*File, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return &File{dir: dir}, nil
}

// Dir returns the data directory.
func (f *File) Dir() string {
	return f.dir
}

// LoadKeys reads apikeys.json. A missing file is an empty registry.
func (f *File) LoadKeys(ctx context.Context) ([]model.APIKey, error) {
	var doc keysDocument
	found, err := f.readJSON(KeysFileName, &doc)
	if err != nil || !found {
		return []model.APIKey{}, err
	}

	keys := make([]model.APIKey, 0, len(doc.APIKeys))
	for _, k := range doc.APIKeys {
		keys = append(keys, model.APIKey(k))
	}
	return keys, nil
}

// SaveKeys replaces apikeys.json with the given registry.
func (f *File) SaveKeys(ctx context.Context, keys []model.APIKey) error {
	return f.writeJSON(KeysFileName, keysDocument{APIKeys: keyStrings(keys)})
}

// LoadTenants reads mailinglist.json. A missing file is an empty directory.
func (f *File) LoadTenants(ctx context.Context) ([]model.Tenant, error) {
	records := make(map[string]tenantRecord)
	found, err := f.readJSON(TenantsFileName, &records)
	if err != nil || !found {
		return []model.Tenant{}, err
	}
	return tenantsFromRecords(records), nil
}

// SaveTenants replaces mailinglist.json with the given directory.
func (f *File) SaveTenants(ctx context.Context, tenants []model.Tenant) error {
	records := make(map[string]tenantRecord, len(tenants))
	for _, t := range tenants {
		records[string(t.APIKey)] = toRecord(t)
	}
	return f.writeJSON(TenantsFileName, records)
}

// Ping checks that the data directory is still reachable.
func (f *File) Ping(ctx context.Context) error {
	info, err := os.Stat(f.dir)
	if err != nil {
		return fmt.Errorf("data directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("data directory %s is not a directory", f.dir)
	}
	return nil
}

// Close is a no-op for the file backend.
func (f *File) Close() error {
	return nil
}

func (f *File) readJSON(name string, v any) (bool, error) {
	data, err := os.ReadFile(filepath.Join(f.dir, name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read %s: %w", name, err)
	}
	if len(data) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("failed to decode %s: %w", name, err)
	}
	return true, nil
}

func (f *File) writeJSON(name string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", name, err)
	}

	tmp, err := os.CreateTemp(f.dir, name+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file for %s: %w", name, err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to sync %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close %s: %w", name, err)
	}

	if err := os.Rename(tmpPath, filepath.Join(f.dir, name)); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace %s: %w", name, err)
	}
	return nil
}

package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// fileDocument is the on-disk layout: profile -> key -> value.
type fileDocument struct {
	Profiles map[string]map[string]string `yaml:"profiles"`
}

// FileStore persists values in a YAML file readable only by the owner.
type FileStore struct {
	mu      sync.Mutex
	path    string
	profile string
}

// NewFileStore returns a store writing to path under profile.
func NewFileStore(path, profile string) *FileStore {
	return &FileStore{path: path, profile: profile}
}

// Path of the backing file.
func (f *FileStore) Path() string {
	return f.path
}

// Get implements Storage.
func (f *FileStore) Get(_ context.Context, key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	doc, err := f.load()
	if err != nil {
		return "", false, err
	}
	v, ok := doc.Profiles[f.profile][key]
	return v, ok, nil
}

// Set implements Storage.
func (f *FileStore) Set(_ context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	doc, err := f.load()
	if err != nil {
		return err
	}
	if doc.Profiles[f.profile] == nil {
		doc.Profiles[f.profile] = make(map[string]string)
	}
	doc.Profiles[f.profile][key] = value
	return f.save(doc)
}

// Remove implements Storage.
func (f *FileStore) Remove(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	doc, err := f.load()
	if err != nil {
		return err
	}
	values, ok := doc.Profiles[f.profile]
	if !ok {
		return nil
	}
	if _, ok := values[key]; !ok {
		return nil
	}
	delete(values, key)
	if len(values) == 0 {
		delete(doc.Profiles, f.profile)
	}
	return f.save(doc)
}

func (f *FileStore) load() (*fileDocument, error) {
	doc := &fileDocument{}
	data, err := os.ReadFile(f.path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("storage: read %s: %w", f.path, err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, doc); err != nil {
			return nil, fmt.Errorf("storage: decode %s: %w", f.path, err)
		}
	}
	if doc.Profiles == nil {
		doc.Profiles = make(map[string]map[string]string)
	}
	return doc, nil
}

// save writes to a temp file in the same directory and renames it over the target.
func (f *FileStore) save(doc *fileDocument) error {
	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("storage: encode: %w", err)
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("storage: create dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".session-*.yaml")
	if err != nil {
		return fmt.Errorf("storage: create temp: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("storage: chmod: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("storage: write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("storage: close: %w", err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		return fmt.Errorf("storage: replace %s: %w", f.path, err)
	}
	return nil
}

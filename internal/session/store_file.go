// Copyright (c) 2026 Edura. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package session

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

// FileStore implements [Store] on a single JSON document per profile.
//
// Every read goes to disk so that writes from another process are observed.
// Writes replace the document through a temp file and rename, so a reader never
// sees a half-written file.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore creates the directory if needed and returns a store for profile.
func NewFileStore(dir, profile string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("session_file_store_mkdir_failed: %w", err)
	}
	return &FileStore{path: filepath.Join(dir, profile+".session.json")}, nil
}

// Path returns the backing file location.
func (store *FileStore) Path() string { return store.path }

// Get implements [Store].
func (store *FileStore) Get(_ context.Context, key string) (string, bool, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	values, err := store.read()
	if err != nil {
		return "", false, err
	}

	value, ok := values[key]
	return value, ok, nil
}

// Set implements [Store].
func (store *FileStore) Set(_ context.Context, key, value string) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	values, err := store.read()
	if err != nil {
		return err
	}

	values[key] = value
	return store.write(values)
}

// SetMany implements [Store] as one document replacement.
func (store *FileStore) SetMany(_ context.Context, pairs map[string]string) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	values, err := store.read()
	if err != nil {
		return err
	}

	for key, value := range pairs {
		values[key] = value
	}
	return store.write(values)
}

// Delete implements [Store].
func (store *FileStore) Delete(_ context.Context, keys ...string) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	values, err := store.read()
	if err != nil {
		return err
	}

	for _, key := range keys {
		delete(values, key)
	}
	return store.write(values)
}

// read loads the document. A missing file is an empty store; an unreadable
// document is also treated as empty so a corrupt file cannot wedge the client.
func (store *FileStore) read() (map[string]string, error) {
	data, err := os.ReadFile(store.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return make(map[string]string), nil
		}
		return nil, fmt.Errorf("session_file_store_read_failed: %w", err)
	}

	values := make(map[string]string)
	if err := json.Unmarshal(data, &values); err != nil {
		return make(map[string]string), nil
	}
	return values, nil
}

// write atomically replaces the document.
func (store *FileStore) write(values map[string]string) error {
	data, err := json.Marshal(values)
	if err != nil {
		return fmt.Errorf("session_file_store_encode_failed: %w", err)
	}

	temp, err := os.CreateTemp(filepath.Dir(store.path), ".session-*")
	if err != nil {
		return fmt.Errorf("session_file_store_temp_failed: %w", err)
	}
	tempPath := temp.Name()

	if _, err := temp.Write(data); err != nil {
		temp.Close()
		os.Remove(tempPath)
		return fmt.Errorf("session_file_store_write_failed: %w", err)
	}
	if err := temp.Chmod(0o600); err != nil {
		temp.Close()
		os.Remove(tempPath)
		return fmt.Errorf("session_file_store_chmod_failed: %w", err)
	}
	if err := temp.Close(); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("session_file_store_close_failed: %w", err)
	}

	if err := os.Rename(tempPath, store.path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("session_file_store_rename_failed: %w", err)
	}
	return nil
}

// Package storage provides the local key-value backends the phonebook is
// persisted to, and the repository that encodes contacts under a fixed key.
package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
)

const (
	dirMode  = 0700
	fileMode = 0600
)

// Backend is a flat key-value store. Get reports found=false for an absent key.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, value []byte) error
	Close() error
}

var validKey = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

func checkKey(key string) error {
	if !validKey.MatchString(key) {
		return fmt.Errorf("invalid storage key %q", key)
	}
	return nil
}

// FileBackend keeps one JSON file per key inside a data directory.
type FileBackend struct {
	dataDir string
}

// NewFileBackend creates dataDir if needed.
func NewFileBackend(dataDir string) (*FileBackend, error) {
	if err := os.MkdirAll(dataDir, dirMode); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return &FileBackend{dataDir: dataDir}, nil
}

// Path is the file that holds key.
func (b *FileBackend) Path(key string) string {
	return filepath.Join(b.dataDir, key+".json")
}

func (b *FileBackend) DataDir() string {
	return b.dataDir
}

func (b *FileBackend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	if err := checkKey(key); err != nil {
		return nil, false, err
	}

	data, err := os.ReadFile(b.Path(key))
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return data, true, nil
}

// Put replaces the value atomically: readers see either the old or the new
// file, never a partial write.
func (b *FileBackend) Put(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := checkKey(key); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(b.dataDir, "."+key+"-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file for %s: %w", key, err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	if err := tmp.Chmod(fileMode); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to chmod %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", key, err)
	}

	if err := os.Rename(tmpPath, b.Path(key)); err != nil {
		return fmt.Errorf("failed to replace %s: %w", key, err)
	}
	return nil
}

func (b *FileBackend) Close() error {
	return nil
}

const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"

	sqliteFile = "phoneterm.db"
)

// Open builds the backend named by kind inside dataDir.
func Open(kind, dataDir string) (Backend, error) {
	switch kind {
	case BackendFile, "":
		return NewFileBackend(dataDir)
	case BackendSQLite:
		if err := os.MkdirAll(dataDir, dirMode); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
		return OpenSQLite(filepath.Join(dataDir, sqliteFile))
	default:
		return nil, fmt.Errorf("unknown storage backend: %s", kind)
	}
}

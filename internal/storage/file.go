package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// fileKV stores one YAML document per key inside dir.
type fileKV struct {
	dir string
}

func openFile(dir string) (*fileKV, error) {
	if dir == "" {
		return nil, errors.New("file store: directory is empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create state directory: %w", err)
	}
	return &fileKV{dir: dir}, nil
}

func (store *fileKV) path(key string) string {
	return filepath.Join(store.dir, key+".yaml")
}

func (store *fileKV) get(_ context.Context, key string) ([]byte, bool, error) {
	data, err := os.ReadFile(store.path(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("read %s: %w", key, err)
	}
	return data, true, nil
}

// put replaces the file atomically so readers never see a torn document.
func (store *fileKV) put(_ context.Context, key string, value []byte) error {
	tmp, err := os.CreateTemp(store.dir, key+"-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close %s: %w", key, err)
	}
	if err := os.Rename(tmpName, store.path(key)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename %s: %w", key, err)
	}
	return nil
}

func (store *fileKV) close() error {
	return nil
}

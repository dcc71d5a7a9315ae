package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/cockroachdb/pebble"
)

type pebbleKV struct {
	db *pebble.DB
}

func openPebble(dir string) (*pebbleKV, error) {
	if dir == "" {
		return nil, errors.New("pebble store: directory is empty")
	}
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("%s: could not open db, %w", dir, err)
	}
	return &pebbleKV{db: db}, nil
}

func (store *pebbleKV) get(_ context.Context, key string) ([]byte, bool, error) {
	value, closer, err := store.db.Get([]byte(key))
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	defer closer.Close()
	return append([]byte(nil), value...), true, nil
}

func (store *pebbleKV) put(_ context.Context, key string, value []byte) error {
	return store.db.Set([]byte(key), value, pebble.Sync)
}

func (store *pebbleKV) close() error {
	if err := store.db.Flush(); err != nil {
		store.db.Close()
		return fmt.Errorf("pebble flush: %w", err)
	}
	return store.db.Close()
}

package store

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/cockroachdb/pebble"

	"unlockdesk/pkg/logger"
)

// Store is the client's durable local state: the mirrored access token,
// the readiness checklist and cached appointment/timeline data for
// offline display. It is a thin wrapper over a Pebble database.
type Store struct {
	db *pebble.DB
}

// Open opens (or creates) the local state database at path.
func Open(path string) (*Store, error) {
	logger.Info("opening_local_store", "path", path)
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		logger.Error("local_store_open_failed", "path", path, "error", err)
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	logger.Info("local_store_closed")
	return err
}

// Set writes a key durably (synced).
func (s *Store) Set(key string, value []byte) error {
	if s.db == nil {
		return fmt.Errorf("store not opened")
	}
	return s.db.Set([]byte(key), value, pebble.Sync)
}

// Get returns the value for key, or ok=false when absent.
func (s *Store) Get(key string) ([]byte, bool, error) {
	if s.db == nil {
		return nil, false, fmt.Errorf("store not opened")
	}
	v, closer, err := s.db.Get([]byte(key))
	if err == pebble.ErrNotFound {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	out := append([]byte(nil), v...)
	_ = closer.Close()
	return out, true, nil
}

// Delete removes a key; deleting an absent key is not an error.
func (s *Store) Delete(key string) error {
	if s.db == nil {
		return fmt.Errorf("store not opened")
	}
	return s.db.Delete([]byte(key), pebble.Sync)
}

// SetJSON marshals v and writes it under key.
func (s *Store) SetJSON(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	return s.Set(key, data)
}

// GetJSON reads key into v. ok=false when the key is absent.
func (s *Store) GetJSON(key string, v any) (bool, error) {
	data, ok, err := s.Get(key)
	if err != nil || !ok {
		return ok, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return true, fmt.Errorf("unmarshal %s: %w", key, err)
	}
	return true, nil
}

// ListPrefix returns the values of all keys under prefix in key order.
func (s *Store) ListPrefix(prefix string) ([][]byte, error) {
	if s.db == nil {
		return nil, fmt.Errorf("store not opened")
	}
	p := []byte(prefix)
	iter, err := s.db.NewIter(&pebble.IterOptions{})
	if err != nil {
		return nil, err
	}
	defer iter.Close()
	var out [][]byte
	for iter.SeekGE(p); iter.Valid(); iter.Next() {
		if !bytes.HasPrefix(iter.Key(), p) {
			break
		}
		out = append(out, append([]byte(nil), iter.Value()...))
	}
	return out, nil
}

// DeletePrefix removes every key under prefix and returns the count.
func (s *Store) DeletePrefix(prefix string) (int, error) {
	if s.db == nil {
		return 0, fmt.Errorf("store not opened")
	}
	p := []byte(prefix)
	iter, err := s.db.NewIter(&pebble.IterOptions{})
	if err != nil {
		return 0, err
	}
	var keys [][]byte
	for iter.SeekGE(p); iter.Valid(); iter.Next() {
		if !bytes.HasPrefix(iter.Key(), p) {
			break
		}
		keys = append(keys, append([]byte(nil), iter.Key()...))
	}
	if err := iter.Close(); err != nil {
		return 0, err
	}
	for _, k := range keys {
		if err := s.db.Delete(k, pebble.Sync); err != nil {
			return 0, err
		}
	}
	return len(keys), nil
}

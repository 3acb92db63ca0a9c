// Package draft provides durable local persistence for in-progress documents.
// Autosave writes land here so an editing session survives process restarts
// independently of the backing store's availability.
package draft

import (
	"errors"
	"sync"

	"github.com/dgraph-io/badger/v4"
)

// ErrNotFound is returned when no draft exists under the requested key.
var ErrNotFound = errors.New("draft not found")

// Store is a durable key-value string store for serialized documents.
// Entries are explicitly removable; implementations must tolerate concurrent
// use from the autosave timer and the save path.
type Store interface {
	Get(key string) ([]byte, error)
	Put(key string, value []byte) error
	Remove(key string) error
	Close() error
}

// Key namespaces a draft entry per document identity. Unsaved documents share
// the "new" sentinel key, so an abandoned new post is picked up on the next
// create session.
func Key(docID string) string {
	if docID == "" {
		docID = "new"
	}
	return "draft:" + docID
}

// BadgerStore persists drafts in a local Badger database.
type BadgerStore struct {
	db *badger.DB
}

// OpenBadger opens (or creates) the draft database at path. An empty path
// opens an in-memory database, which tests use to stay off disk.
func OpenBadger(path string) (*BadgerStore, error) {
	var opts badger.Options
	if path == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		opts = badger.DefaultOptions(path)
	}
	opts.Logger = nil
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &BadgerStore{db: db}, nil
}

func (s *BadgerStore) Get(key string) ([]byte, error) {
	var value []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			value = append([]byte(nil), val...)
			return nil
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return value, nil
}

func (s *BadgerStore) Put(key string, value []byte) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), value)
	})
}

func (s *BadgerStore) Remove(key string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil
	}
	return err
}

func (s *BadgerStore) Close() error {
	return s.db.Close()
}

// MemoryStore is an in-memory Store for tests and fallback when no draft
// directory is configured.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string][]byte)}
}

func (s *MemoryStore) Get(key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.entries[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), value...), nil
}

func (s *MemoryStore) Put(key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = append([]byte(nil), value...)
	return nil
}

func (s *MemoryStore) Remove(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}

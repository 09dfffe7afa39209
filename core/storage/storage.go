package storage

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/syndtr/goleveldb/leveldb"
	memstorage "github.com/syndtr/goleveldb/leveldb/storage"
	"github.com/syndtr/goleveldb/leveldb/util"
)

// StateBackend abstracts the persistent key-value store for ledger state.
type StateBackend interface {
	Get(key string) ([]byte, error)
	Put(key string, value []byte) error
	// WriteBatch applies every write atomically. A nil value deletes the key.
	WriteBatch(writes map[string][]byte) error
	// Keys returns every key with the given prefix in ascending order.
	Keys(prefix string) ([]string, error)
	// Scan returns up to limit values whose keys carry prefix and sort at or
	// after start, in key order. A limit of zero or less returns them all.
	Scan(prefix, start string, limit int) ([][]byte, error)
	Close() error
}

const (
	EngineLevelDB = "leveldb"
	EnginePebble  = "pebble"
	EngineMemory  = "memory"
)

// Open opens the backend named by engine at path.
func Open(engine, path string) (StateBackend, error) {
	switch engine {
	case "", EngineLevelDB:
		return NewStorage(path)
	case EnginePebble:
		return NewPebbleStorage(path)
	case EngineMemory:
		return NewMemStorage()
	default:
		return nil, fmt.Errorf("unknown storage engine %q", engine)
	}
}

// Storage is the LevelDB backend.
type Storage struct {
	db     *leveldb.DB
	mu     sync.RWMutex
	closed bool
}

func NewStorage(path string) (*Storage, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, err
	}
	return &Storage{db: db}, nil
}

// NewMemStorage returns a LevelDB backend held entirely in memory.
func NewMemStorage() (*Storage, error) {
	db, err := leveldb.Open(memstorage.NewMemStorage(), nil)
	if err != nil {
		return nil, err
	}
	return &Storage{db: db}, nil
}

// Get retrieves a value by key from LevelDB.
func (s *Storage) Get(key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}

	val, err := s.db.Get([]byte(key), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, ErrNotFound
	}
	return val, err
}

// Put stores a key-value pair in LevelDB.
func (s *Storage) Put(key string, value []byte) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrClosed
	}
	return s.db.Put([]byte(key), value, nil)
}

func (s *Storage) WriteBatch(writes map[string][]byte) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrClosed
	}

	batch := new(leveldb.Batch)
	for _, k := range sortedKeys(writes) {
		if v := writes[k]; v == nil {
			batch.Delete([]byte(k))
		} else {
			batch.Put([]byte(k), v)
		}
	}
	return s.db.Write(batch, nil)
}

func (s *Storage) Keys(prefix string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}

	iter := s.db.NewIterator(util.BytesPrefix([]byte(prefix)), nil)
	defer iter.Release()

	var keys []string
	for iter.Next() {
		keys = append(keys, string(iter.Key()))
	}
	return keys, iter.Error()
}

func (s *Storage) Scan(prefix, start string, limit int) ([][]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}

	r := util.BytesPrefix([]byte(prefix))
	if start > prefix {
		r.Start = []byte(start)
	}
	iter := s.db.NewIterator(r, nil)
	defer iter.Release()

	var values [][]byte
	for iter.Next() {
		if limit > 0 && len(values) >= limit {
			break
		}
		values = append(values, append([]byte(nil), iter.Value()...))
	}
	return values, iter.Error()
}

func (s *Storage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

func sortedKeys(m map[string][]byte) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

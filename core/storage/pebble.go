package storage

import (
	"errors"
	"fmt"
	"sync"

	"github.com/cockroachdb/pebble"
)

// PebbleStorage is the Pebble backend, selected with storage.engine=pebble.
type PebbleStorage struct {
	db     *pebble.DB
	mu     sync.RWMutex
	closed bool
}

func NewPebbleStorage(path string) (*PebbleStorage, error) {
	opts := &pebble.Options{
		Cache:        pebble.NewCache(32 * 1024 * 1024),
		MemTableSize: 16 * 1024 * 1024,
	}
	db, err := pebble.Open(path, opts)
	if err != nil {
		return nil, err
	}
	return &PebbleStorage{db: db}, nil
}

func (p *PebbleStorage) Get(key string) ([]byte, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return nil, ErrClosed
	}

	value, closer, err := p.db.Get([]byte(key))
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	defer closer.Close()

	result := make([]byte, len(value))
	copy(result, value)
	return result, nil
}

func (p *PebbleStorage) Put(key string, value []byte) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrClosed
	}
	return p.db.Set([]byte(key), value, pebble.Sync)
}

func (p *PebbleStorage) WriteBatch(writes map[string][]byte) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrClosed
	}

	batch := p.db.NewBatch()
	defer batch.Close()
	for _, k := range sortedKeys(writes) {
		var err error
		if v := writes[k]; v == nil {
			err = batch.Delete([]byte(k), nil)
		} else {
			err = batch.Set([]byte(k), v, nil)
		}
		if err != nil {
			return fmt.Errorf("stage %q: %w", k, err)
		}
	}
	return batch.Commit(pebble.Sync)
}

func (p *PebbleStorage) Keys(prefix string) ([]string, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return nil, ErrClosed
	}

	iter, err := p.db.NewIter(&pebble.IterOptions{
		LowerBound: []byte(prefix),
		UpperBound: prefixUpperBound([]byte(prefix)),
	})
	if err != nil {
		return nil, fmt.Errorf("create iterator: %w", err)
	}
	defer iter.Close()

	var keys []string
	for iter.First(); iter.Valid(); iter.Next() {
		keys = append(keys, string(iter.Key()))
	}
	return keys, iter.Error()
}

func (p *PebbleStorage) Scan(prefix, start string, limit int) ([][]byte, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return nil, ErrClosed
	}

	lower := []byte(prefix)
	if start > prefix {
		lower = []byte(start)
	}
	iter, err := p.db.NewIter(&pebble.IterOptions{
		LowerBound: lower,
		UpperBound: prefixUpperBound([]byte(prefix)),
	})
	if err != nil {
		return nil, fmt.Errorf("create iterator: %w", err)
	}
	defer iter.Close()

	var values [][]byte
	for iter.First(); iter.Valid(); iter.Next() {
		if limit > 0 && len(values) >= limit {
			break
		}
		values = append(values, append([]byte(nil), iter.Value()...))
	}
	return values, iter.Error()
}

func (p *PebbleStorage) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	return p.db.Close()
}

// prefixUpperBound returns the smallest key greater than every key with the
// given prefix, or nil when no such key exists.
func prefixUpperBound(prefix []byte) []byte {
	end := make([]byte, len(prefix))
	copy(end, prefix)
	for i := len(end) - 1; i >= 0; i-- {
		end[i]++
		if end[i] != 0 {
			return end[:i+1]
		}
	}
	return nil
}

// Package memdb implements database.Database entirely in memory. It backs
// the temp level stores the pruning proof builder and validator open for
// the lifetime of a single build/validate call and then discard.
package memdb

import (
	"sort"
	"sync"

	"github.com/kaspanet/kaspad/domain/consensus/model"
	"github.com/pkg/errors"
)

// MemDB is a database.Database backed by a plain in-memory map. It has no
// file descriptors to bound and is torn down by simply dropping it.
type MemDB struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// New creates an empty MemDB.
func New() *MemDB {
	return &MemDB{data: make(map[string][]byte)}
}

// Close is a no-op; the backing map is garbage collected once dropped.
func (m *MemDB) Close() error {
	return nil
}

// Get returns the value stored under key.
func (m *MemDB) Get(key model.DBKey) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	value, ok := m.data[string(key.Bytes())]
	if !ok {
		return nil, errors.Errorf("key %x not found", key.Bytes())
	}
	return value, nil
}

// Has reports whether key exists.
func (m *MemDB) Has(key model.DBKey) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.data[string(key.Bytes())]
	return ok, nil
}

// Put stores value under key.
func (m *MemDB) Put(key model.DBKey, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	valueClone := append([]byte{}, value...)
	m.data[string(key.Bytes())] = valueClone
	return nil
}

// Delete removes key.
func (m *MemDB) Delete(key model.DBKey) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, string(key.Bytes()))
	return nil
}

// Cursor returns a cursor over every key directly under bucket.
func (m *MemDB) Cursor(bucket model.DBBucket) (model.DBCursor, error) {
	prefix := string(bucket.Key(nil).Bytes())

	m.mu.RLock()
	defer m.mu.RUnlock()

	var keys []string
	for k := range m.data {
		if len(k) >= len(prefix) && k[:len(prefix)] == prefix {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return &memCursor{db: m, keys: keys, index: -1}, nil
}

// Begin starts a new transaction. MemDB transactions buffer their writes
// and apply them to the backing map atomically on Commit.
func (m *MemDB) Begin() (model.DBTransaction, error) {
	return &memTransaction{db: m, puts: make(map[string][]byte), deletes: make(map[string]bool)}, nil
}

type memTransaction struct {
	db      *MemDB
	puts    map[string][]byte
	deletes map[string]bool
}

func (t *memTransaction) Get(key model.DBKey) ([]byte, error) {
	k := string(key.Bytes())
	if t.deletes[k] {
		return nil, errors.Errorf("key %x not found", key.Bytes())
	}
	if v, ok := t.puts[k]; ok {
		return v, nil
	}
	return t.db.Get(key)
}

func (t *memTransaction) Has(key model.DBKey) (bool, error) {
	k := string(key.Bytes())
	if t.deletes[k] {
		return false, nil
	}
	if _, ok := t.puts[k]; ok {
		return true, nil
	}
	return t.db.Has(key)
}

func (t *memTransaction) Put(key model.DBKey, value []byte) error {
	k := string(key.Bytes())
	delete(t.deletes, k)
	t.puts[k] = append([]byte{}, value...)
	return nil
}

func (t *memTransaction) Delete(key model.DBKey) error {
	k := string(key.Bytes())
	delete(t.puts, k)
	t.deletes[k] = true
	return nil
}

func (t *memTransaction) Cursor(bucket model.DBBucket) (model.DBCursor, error) {
	return t.db.Cursor(bucket)
}

func (t *memTransaction) Commit() error {
	t.db.mu.Lock()
	defer t.db.mu.Unlock()
	for k := range t.deletes {
		delete(t.db.data, k)
	}
	for k, v := range t.puts {
		t.db.data[k] = v
	}
	return nil
}

func (t *memTransaction) Rollback() error {
	t.puts = nil
	t.deletes = nil
	return nil
}

type memCursor struct {
	db    *MemDB
	keys  []string
	index int
}

func (c *memCursor) First() bool {
	if len(c.keys) == 0 {
		return false
	}
	c.index = 0
	return true
}

func (c *memCursor) Next() bool {
	c.index++
	return c.index < len(c.keys)
}

func (c *memCursor) Key() (model.DBKey, error) {
	return memKey(c.keys[c.index]), nil
}

func (c *memCursor) Value() ([]byte, error) {
	c.db.mu.RLock()
	defer c.db.mu.RUnlock()
	return c.db.data[c.keys[c.index]], nil
}

func (c *memCursor) Close() error {
	return nil
}

type memKey string

func (k memKey) Bytes() []byte {
	return []byte(k)
}

// Package ldb implements database.Database on top of goleveldb, the
// persistent backing for every permanent store.
package ldb

import (
	"github.com/kaspanet/kaspad/domain/consensus/model"
	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/iterator"
	"github.com/syndtr/goleveldb/leveldb/util"
)

// LevelDB is a database.Database backed by an on-disk goleveldb instance.
type LevelDB struct {
	db *leveldb.DB
}

// NewLevelDB opens (creating if absent) a LevelDB instance at path.
func NewLevelDB(path string) (*LevelDB, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open leveldb at %s", path)
	}
	return &LevelDB{db: db}, nil
}

// Close closes the underlying database.
func (l *LevelDB) Close() error {
	return l.db.Close()
}

// Get returns the value stored under key.
func (l *LevelDB) Get(key model.DBKey) ([]byte, error) {
	value, err := l.db.Get(key.Bytes(), nil)
	if err != nil {
		if err == leveldb.ErrNotFound {
			return nil, errors.Wrapf(err, "key %x not found", key.Bytes())
		}
		return nil, err
	}
	return value, nil
}

// Has reports whether key exists.
func (l *LevelDB) Has(key model.DBKey) (bool, error) {
	return l.db.Has(key.Bytes(), nil)
}

// Put stores value under key.
func (l *LevelDB) Put(key model.DBKey, value []byte) error {
	return l.db.Put(key.Bytes(), value, nil)
}

// Delete removes key.
func (l *LevelDB) Delete(key model.DBKey) error {
	return l.db.Delete(key.Bytes(), nil)
}

// Cursor returns a cursor iterating over every key directly under bucket.
func (l *LevelDB) Cursor(bucket model.DBBucket) (model.DBCursor, error) {
	prefix := append(append([]byte{}, dbkeysPath(bucket)...), '/')
	it := l.db.NewIterator(util.BytesPrefix(prefix), nil)
	return &levelDBCursor{iterator: it}, nil
}

// Begin starts a new transaction.
func (l *LevelDB) Begin() (model.DBTransaction, error) {
	tx, err := l.db.OpenTransaction()
	if err != nil {
		return nil, err
	}
	return &transaction{tx: tx}, nil
}

type transaction struct {
	tx *leveldb.Transaction
}

func (t *transaction) Get(key model.DBKey) ([]byte, error) {
	return t.tx.Get(key.Bytes(), nil)
}

func (t *transaction) Has(key model.DBKey) (bool, error) {
	return t.tx.Has(key.Bytes(), nil)
}

func (t *transaction) Put(key model.DBKey, value []byte) error {
	return t.tx.Put(key.Bytes(), value, nil)
}

func (t *transaction) Delete(key model.DBKey) error {
	return t.tx.Delete(key.Bytes(), nil)
}

func (t *transaction) Cursor(bucket model.DBBucket) (model.DBCursor, error) {
	prefix := append(append([]byte{}, dbkeysPath(bucket)...), '/')
	it := t.tx.NewIterator(util.BytesPrefix(prefix), nil)
	return &levelDBCursor{iterator: it}, nil
}

func (t *transaction) Commit() error {
	return t.tx.Commit()
}

func (t *transaction) Rollback() error {
	t.tx.Discard()
	return nil
}

type levelDBCursor struct {
	iterator iterator.Iterator
}

func (c *levelDBCursor) Next() bool {
	return c.iterator.Next()
}

func (c *levelDBCursor) First() bool {
	return c.iterator.First()
}

func (c *levelDBCursor) Key() (model.DBKey, error) {
	key := c.iterator.Key()
	keyClone := append([]byte{}, key...)
	return rawKey(keyClone), nil
}

func (c *levelDBCursor) Value() ([]byte, error) {
	value := c.iterator.Value()
	return append([]byte{}, value...), nil
}

func (c *levelDBCursor) Close() error {
	c.iterator.Release()
	return c.iterator.Error()
}

type rawKey []byte

func (k rawKey) Bytes() []byte {
	return k
}

// dbkeysPath extracts the bucket's path bytes without importing the dbkeys
// package (which itself imports model, not database), by relying on the
// DBBucket.Key contract: a bucket's own path is whatever Key("") prefixes.
func dbkeysPath(bucket model.DBBucket) []byte {
	probe := bucket.Key(nil)
	full := probe.Bytes()
	if len(full) > 0 {
		return full[:len(full)-1]
	}
	return full
}

// Package dbaccess wraps a database.Database with the conveniences the
// rest of the module expects: opening a permanent, on-disk context or a
// disposable, in-memory one for temp level stores.
package dbaccess

import (
	"github.com/kaspanet/kaspad/domain/consensus/model"
	"github.com/kaspanet/kaspad/infrastructure/db/database"
	"github.com/kaspanet/kaspad/infrastructure/db/database/ldb"
	"github.com/kaspanet/kaspad/infrastructure/db/database/memdb"
)

// DatabaseContext represents a context in which all database queries run.
// It satisfies model.DBReader and model.DBWriter directly for
// non-transactional access, and opens model.DBTransaction for atomic
// multi-store commits.
type DatabaseContext struct {
	db database.Database
}

// New creates a new DatabaseContext backed by an on-disk LevelDB database
// at the given path.
func New(path string) (*DatabaseContext, error) {
	db, err := ldb.NewLevelDB(path)
	if err != nil {
		return nil, err
	}
	return &DatabaseContext{db: db}, nil
}

// NewMemoryOnly creates a new DatabaseContext backed by an in-memory
// database. Used exclusively for the temp level stores opened during
// pruning proof building and validation.
func NewMemoryOnly() *DatabaseContext {
	return &DatabaseContext{db: memdb.New()}
}

// Close closes the DatabaseContext's connection, if it's open.
func (ctx *DatabaseContext) Close() error {
	return ctx.db.Close()
}

// Get implements model.DBReader.
func (ctx *DatabaseContext) Get(key model.DBKey) ([]byte, error) {
	return ctx.db.Get(key)
}

// Has implements model.DBReader.
func (ctx *DatabaseContext) Has(key model.DBKey) (bool, error) {
	return ctx.db.Has(key)
}

// Cursor implements model.DBReader.
func (ctx *DatabaseContext) Cursor(bucket model.DBBucket) (model.DBCursor, error) {
	return ctx.db.Cursor(bucket)
}

// Put implements model.DBWriter.
func (ctx *DatabaseContext) Put(key model.DBKey, value []byte) error {
	return ctx.db.Put(key, value)
}

// Delete implements model.DBWriter.
func (ctx *DatabaseContext) Delete(key model.DBKey) error {
	return ctx.db.Delete(key)
}

// Begin opens a new transaction against the underlying database.
func (ctx *DatabaseContext) Begin() (model.DBTransaction, error) {
	return ctx.db.Begin()
}

// RunInTransaction runs fn inside a fresh transaction, committing on
// success and rolling back on error.
func (ctx *DatabaseContext) RunInTransaction(fn func(dbTx model.DBTransaction) error) error {
	dbTx, err := ctx.Begin()
	if err != nil {
		return err
	}

	err = fn(dbTx)
	if err != nil {
		rollbackErr := dbTx.Rollback()
		if rollbackErr != nil {
			return rollbackErr
		}
		return err
	}

	return dbTx.Commit()
}

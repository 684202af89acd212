// Package database defines the storage-engine-agnostic interface every
// backing store (permanent, LevelDB-backed, or temporary, memory-backed)
// implements.
package database

import "github.com/kaspanet/kaspad/domain/consensus/model"

// Database is a handle to an underlying key-value engine, exposing direct
// reads/writes plus transactions.
type Database interface {
	model.DBManager
}

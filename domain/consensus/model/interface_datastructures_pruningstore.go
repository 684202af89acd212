package model

import "github.com/kaspanet/kaspad/domain/consensus/model/externalapi"

// PruningStore represents a store for the current pruning point state.
type PruningStore interface {
	Store
	StagePruningPoint(stagingArea *StagingArea, pruningPointBlockHash *externalapi.DomainHash,
		candidate *externalapi.DomainHash, index uint64)
	StageHistoryRoot(stagingArea *StagingArea, historyRoot *externalapi.DomainHash)
	PruningPoint(dbContext DBReader, stagingArea *StagingArea) (*externalapi.DomainHash, error)
	PruningPointInfo(dbContext DBReader, stagingArea *StagingArea) (*externalapi.PruningPointInfo, error)
	HasPruningPoint(dbContext DBReader, stagingArea *StagingArea) (bool, error)
	HistoryRoot(dbContext DBReader, stagingArea *StagingArea) (*externalapi.DomainHash, error)
}

// PastPruningPointsStore represents the append-only list of every pruning
// point this node has ever adopted, indexed by the order they were
// adopted in.
type PastPruningPointsStore interface {
	Store
	Stage(stagingArea *StagingArea, index uint64, pruningPointHash *externalapi.DomainHash)
	PruningPointByIndex(dbContext DBReader, stagingArea *StagingArea, index uint64) (*externalapi.DomainHash, error)
	Count(dbContext DBReader, stagingArea *StagingArea) (uint64, error)
}

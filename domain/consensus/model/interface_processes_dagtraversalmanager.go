package model

import "github.com/kaspanet/kaspad/domain/consensus/model/externalapi"

// SelectedParentIterator walks a block's selected-parent chain backwards.
type SelectedParentIterator interface {
	Next() bool
	Get() (*externalapi.DomainHash, error)
}

// DAGTraversalManager exposes methods for traversing blocks in a
// single-level sub-DAG.
type DAGTraversalManager interface {
	SelectedParentIterator(stagingArea *StagingArea, highHash *externalapi.DomainHash) SelectedParentIterator
	Anticone(stagingArea *StagingArea, blockHash *externalapi.DomainHash,
		tips []*externalapi.DomainHash, maxTraversalAllowed *uint64) ([]*externalapi.DomainHash, error)
}

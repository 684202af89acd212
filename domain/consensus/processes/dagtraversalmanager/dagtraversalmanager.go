// Package dagtraversalmanager implements traversal helpers over a
// single-level sub-DAG: selected parent chain iteration and anticone
// computation.
package dagtraversalmanager

import (
	"github.com/kaspanet/kaspad/domain/consensus/model"
	"github.com/kaspanet/kaspad/domain/consensus/model/externalapi"
)

// dagTraversalManager exposes methods for traversing blocks in the DAG.
type dagTraversalManager struct {
	databaseContext    model.DBReader
	dagTopologyManager model.DAGTopologyManager
	ghostdagDataStore  model.GHOSTDAGDataStore
}

// New instantiates a new DAGTraversalManager for a single level.
func New(
	databaseContext model.DBReader,
	dagTopologyManager model.DAGTopologyManager,
	ghostdagDataStore model.GHOSTDAGDataStore) model.DAGTraversalManager {
	return &dagTraversalManager{
		databaseContext:    databaseContext,
		dagTopologyManager: dagTopologyManager,
		ghostdagDataStore:  ghostdagDataStore,
	}
}

type selectedParentIterator struct {
	current           *externalapi.DomainHash
	databaseContext   model.DBReader
	stagingArea       *model.StagingArea
	ghostdagDataStore model.GHOSTDAGDataStore
	err               error
}

// Next reports whether there is a current block to read with Get. It
// never advances past a block it has already surfaced once.
func (it *selectedParentIterator) Next() bool {
	return it.err == nil && it.current != nil
}

// Get returns the iterator's current block and advances to its selected
// parent.
func (it *selectedParentIterator) Get() (*externalapi.DomainHash, error) {
	hash := it.current
	data, err := it.ghostdagDataStore.Get(it.databaseContext, it.stagingArea, hash)
	if err != nil {
		it.err = err
		return nil, err
	}
	it.current = data.SelectedParent
	return hash, nil
}

// SelectedParentIterator creates an iterator over the selected parent
// chain of highHash, starting at highHash itself.
func (dtm *dagTraversalManager) SelectedParentIterator(stagingArea *model.StagingArea, highHash *externalapi.DomainHash) model.SelectedParentIterator {
	return &selectedParentIterator{
		current:           highHash,
		databaseContext:   dtm.databaseContext,
		stagingArea:       stagingArea,
		ghostdagDataStore: dtm.ghostdagDataStore,
	}
}

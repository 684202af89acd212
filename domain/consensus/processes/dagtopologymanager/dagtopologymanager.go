// Package dagtopologymanager exposes parent/child/ancestry queries over a
// single DAG level, built on that level's relation store and reachability
// manager.
package dagtopologymanager

import (
	"github.com/kaspanet/kaspad/domain/consensus/model"
	"github.com/kaspanet/kaspad/domain/consensus/model/externalapi"
)

type dagTopologyManager struct {
	databaseContext      model.DBReader
	reachabilityManager  model.ReachabilityManager
	blockRelationStore   model.BlockRelationStore
	ghostdagDataStore    model.GHOSTDAGDataStore
}

// New instantiates a new DAGTopologyManager for a single level.
func New(
	databaseContext model.DBReader,
	reachabilityManager model.ReachabilityManager,
	blockRelationStore model.BlockRelationStore,
	ghostdagDataStore model.GHOSTDAGDataStore) model.DAGTopologyManager {

	return &dagTopologyManager{
		databaseContext:      databaseContext,
		reachabilityManager:  reachabilityManager,
		blockRelationStore:   blockRelationStore,
		ghostdagDataStore:    ghostdagDataStore,
	}
}

// Parents returns the DAG parents of blockHash at this level.
func (dtm *dagTopologyManager) Parents(stagingArea *model.StagingArea, blockHash *externalapi.DomainHash) ([]*externalapi.DomainHash, error) {
	return dtm.blockRelationStore.BlockParents(dtm.databaseContext, stagingArea, blockHash)
}

// Children returns the DAG children of blockHash at this level.
func (dtm *dagTopologyManager) Children(stagingArea *model.StagingArea, blockHash *externalapi.DomainHash) ([]*externalapi.DomainHash, error) {
	return dtm.blockRelationStore.BlockChildren(dtm.databaseContext, stagingArea, blockHash)
}

// IsParentOf reports whether blockHashA is a direct parent of blockHashB.
func (dtm *dagTopologyManager) IsParentOf(stagingArea *model.StagingArea, blockHashA, blockHashB *externalapi.DomainHash) (bool, error) {
	parents, err := dtm.Parents(stagingArea, blockHashB)
	if err != nil {
		return false, err
	}
	return isHashInSlice(blockHashA, parents), nil
}

// IsChildOf reports whether blockHashA is a direct child of blockHashB.
func (dtm *dagTopologyManager) IsChildOf(stagingArea *model.StagingArea, blockHashA, blockHashB *externalapi.DomainHash) (bool, error) {
	children, err := dtm.Children(stagingArea, blockHashB)
	if err != nil {
		return false, err
	}
	return isHashInSlice(blockHashA, children), nil
}

// IsAncestorOf reports whether blockHashA is a DAG ancestor of blockHashB.
func (dtm *dagTopologyManager) IsAncestorOf(stagingArea *model.StagingArea, blockHashA, blockHashB *externalapi.DomainHash) (bool, error) {
	return dtm.reachabilityManager.IsDAGAncestorOf(stagingArea, blockHashA, blockHashB)
}

// IsAncestorOfAny reports whether blockHash is an ancestor of at least one
// of potentialDescendants.
func (dtm *dagTopologyManager) IsAncestorOfAny(stagingArea *model.StagingArea, blockHash *externalapi.DomainHash,
	potentialDescendants []*externalapi.DomainHash) (bool, error) {
	return dtm.reachabilityManager.IsDAGAncestorOfAny(stagingArea, blockHash, potentialDescendants)
}

// IsInSelectedParentChainOf reports whether blockHashA lies on blockHashB's
// selected parent chain: an ancestor whose blue score can be reached by
// repeatedly following selected parent pointers from blockHashB.
func (dtm *dagTopologyManager) IsInSelectedParentChainOf(stagingArea *model.StagingArea, blockHashA, blockHashB *externalapi.DomainHash) (bool, error) {
	isAncestor, err := dtm.IsAncestorOf(stagingArea, blockHashA, blockHashB)
	if err != nil {
		return false, err
	}
	if !isAncestor {
		return false, nil
	}

	current := blockHashB
	for {
		if *current == *blockHashA {
			return true, nil
		}
		data, err := dtm.ghostdagDataStore.Get(dtm.databaseContext, stagingArea, current)
		if err != nil {
			return false, err
		}
		if data.SelectedParent == nil {
			return false, nil
		}
		current = data.SelectedParent
	}
}

func isHashInSlice(hash *externalapi.DomainHash, hashes []*externalapi.DomainHash) bool {
	for _, h := range hashes {
		if *h == *hash {
			return true
		}
	}
	return false
}

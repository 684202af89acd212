package model

import "github.com/kaspanet/kaspad/domain/consensus/model/externalapi"

// ReachabilityManager maintains a reachability index over a single-level
// sub-DAG and answers ancestry queries against the committed state plus
// any staged overlay.
type ReachabilityManager interface {
	Init(stagingArea *StagingArea) error
	AddBlock(stagingArea *StagingArea, blockHash *externalapi.DomainHash,
		selectedParent *externalapi.DomainHash, mergeSet []*externalapi.DomainHash) error
	IsDAGAncestorOf(stagingArea *StagingArea, blockHashA, blockHashB *externalapi.DomainHash) (bool, error)
	IsDAGAncestorOfAny(stagingArea *StagingArea, blockHash *externalapi.DomainHash, potentialDescendants []*externalapi.DomainHash) (bool, error)
	HintVirtualSelectedParent(stagingArea *StagingArea, blockHash *externalapi.DomainHash) error
}

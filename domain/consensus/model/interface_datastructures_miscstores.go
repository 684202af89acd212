package model

import "github.com/kaspanet/kaspad/domain/consensus/model/externalapi"

// VirtualStateStore holds the single current virtual-block state.
type VirtualStateStore interface {
	Store
	Stage(stagingArea *StagingArea, state *externalapi.VirtualState)
	State(dbContext DBReader, stagingArea *StagingArea) (*externalapi.VirtualState, error)
}

// BodyTipsStore holds the current set of body tips.
type BodyTipsStore interface {
	Store
	Stage(stagingArea *StagingArea, tips []*externalapi.DomainHash)
	Tips(dbContext DBReader, stagingArea *StagingArea) ([]*externalapi.DomainHash, error)
}

// HeadersSelectedTipStore holds the current headers-selected tip and its
// blue work, used to answer "is this the best known header chain".
type HeadersSelectedTipStore interface {
	Store
	Stage(stagingArea *StagingArea, selectedTip *externalapi.SortableBlock)
	SelectedTip(dbContext DBReader, stagingArea *StagingArea) (*externalapi.SortableBlock, error)
}

// SelectedChainStore holds the selected virtual chain as an ordered
// sequence of hashes anchored at a root.
type SelectedChainStore interface {
	Store
	StageAddedBlock(stagingArea *StagingArea, index uint64, blockHash *externalapi.DomainHash)
	InitWithPruningPoint(stagingArea *StagingArea, pruningPoint *externalapi.DomainHash)
	GetByIndex(dbContext DBReader, stagingArea *StagingArea, index uint64) (*externalapi.DomainHash, error)
}

// DepthStore holds, for each block, a pair of chain-block hashes (a
// blue-score marker and a finality point). The proof builder's depth
// walker does not read it.
type DepthStore interface {
	Store
	Stage(stagingArea *StagingArea, blockHash, blueScoreMarker, finalityPoint *externalapi.DomainHash)
	BlockDepthInfo(dbContext DBReader, stagingArea *StagingArea, blockHash *externalapi.DomainHash) (blueScoreMarker, finalityPoint *externalapi.DomainHash, err error)
}

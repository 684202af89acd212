package model

import "github.com/kaspanet/kaspad/domain/consensus/model/externalapi"

// GHOSTDAGManager computes and manages GHOSTDAG data for a single level.
type GHOSTDAGManager interface {
	GHOSTDAG(stagingArea *StagingArea, parents []*externalapi.DomainHash) (*externalapi.BlockGHOSTDAGData, error)
	ChooseSelectedParent(stagingArea *StagingArea, blockHashA, blockHashB *externalapi.DomainHash) (*externalapi.DomainHash, error)
	FindSelectedParent(stagingArea *StagingArea, blockHashes []*externalapi.DomainHash) (*externalapi.DomainHash, error)
	Less(blockHashA *externalapi.DomainHash, ghostdagDataA *externalapi.BlockGHOSTDAGData,
		blockHashB *externalapi.DomainHash, ghostdagDataB *externalapi.BlockGHOSTDAGData) bool
	SortBlocks(stagingArea *StagingArea, blockHashes []*externalapi.DomainHash) ([]*externalapi.DomainHash, error)
	OriginGHOSTDAGData() *externalapi.BlockGHOSTDAGData
	GenesisGHOSTDAGData() *externalapi.BlockGHOSTDAGData
	UnorderedMergeSetWithoutSelectedParent(stagingArea *StagingArea,
		selectedParent *externalapi.DomainHash, parents []*externalapi.DomainHash) ([]*externalapi.DomainHash, error)
}

package model

import "github.com/kaspanet/kaspad/domain/consensus/model/externalapi"

// BlockHeaderStore represents a store of block headers, indexed by hash
// and carrying the block level each header was computed at.
type BlockHeaderStore interface {
	Store
	Stage(stagingArea *StagingArea, blockHash *externalapi.DomainHash,
		blockHeader *externalapi.DomainBlockHeader, blockLevel externalapi.BlockLevel)
	BlockHeader(dbContext DBReader, stagingArea *StagingArea,
		blockHash *externalapi.DomainHash) (*externalapi.DomainBlockHeader, error)
	HeaderWithBlockLevel(dbContext DBReader, stagingArea *StagingArea,
		blockHash *externalapi.DomainHash) (*externalapi.HeaderWithBlockLevel, error)
	BlockLevel(dbContext DBReader, stagingArea *StagingArea,
		blockHash *externalapi.DomainHash) (externalapi.BlockLevel, error)
	HasBlockHeader(dbContext DBReader, stagingArea *StagingArea, blockHash *externalapi.DomainHash) (bool, error)
	BlueScore(dbContext DBReader, stagingArea *StagingArea, blockHash *externalapi.DomainHash) (uint64, error)
}

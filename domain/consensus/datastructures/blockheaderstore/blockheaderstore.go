// Package blockheaderstore stores immutable block headers together with
// the block level they were computed at.
package blockheaderstore

import (
	"github.com/kaspanet/kaspad/domain/consensus/database/serialization"
	"github.com/kaspanet/kaspad/domain/consensus/model"
	"github.com/kaspanet/kaspad/domain/consensus/model/externalapi"
	"github.com/kaspanet/kaspad/domain/consensus/utils/dbkeys"
	"github.com/kaspanet/kaspad/domain/consensus/utils/lrucache"
)

var headerBucket = dbkeys.MakeBucket([]byte("block-headers"))
var levelBucket = dbkeys.MakeBucket([]byte("block-header-levels"))

type headerEntry struct {
	header *externalapi.DomainBlockHeader
	level  externalapi.BlockLevel
}

// blockHeaderStore represents a store of block headers.
type blockHeaderStore struct {
	cache *lrucache.LRUCache
}

// New instantiates a new BlockHeaderStore.
func New(cacheSize int) model.BlockHeaderStore {
	return &blockHeaderStore{
		cache: lrucache.New(cacheSize),
	}
}

type stagingShard struct {
	store *blockHeaderStore
	toAdd map[externalapi.DomainHash]*headerEntry
}

func (bhs *blockHeaderStore) stagingShard(stagingArea *model.StagingArea) *stagingShard {
	return stagingArea.GetOrCreateShard(model.StagingShardIDBlockHeader, func() model.StagingShard {
		return &stagingShard{
			store: bhs,
			toAdd: make(map[externalapi.DomainHash]*headerEntry),
		}
	}).(*stagingShard)
}

// Stage stages the given header and its block level for blockHash.
func (bhs *blockHeaderStore) Stage(stagingArea *model.StagingArea, blockHash *externalapi.DomainHash,
	blockHeader *externalapi.DomainBlockHeader, blockLevel externalapi.BlockLevel) {
	shard := bhs.stagingShard(stagingArea)
	shard.toAdd[*blockHash] = &headerEntry{header: blockHeader.Clone(), level: blockLevel}
}

// IsStaged implements model.Store.
func (bhs *blockHeaderStore) IsStaged(stagingArea *model.StagingArea) bool {
	return len(bhs.stagingShard(stagingArea).toAdd) != 0
}

func (shard *stagingShard) Commit(dbTx model.DBTransaction) error {
	for hash, entry := range shard.toAdd {
		headerBytes, err := serialization.SerializeHeader(entry.header)
		if err != nil {
			return err
		}
		hashCopy := hash
		err = dbTx.Put(headerBucket.Key(hashCopy[:]), headerBytes)
		if err != nil {
			return err
		}
		err = dbTx.Put(levelBucket.Key(hashCopy[:]), []byte{byte(entry.level)})
		if err != nil {
			return err
		}
		shard.store.cache.Add(&hashCopy, entry)
	}
	return nil
}

// BlockHeader gets the block header associated with blockHash.
func (bhs *blockHeaderStore) BlockHeader(dbContext model.DBReader, stagingArea *model.StagingArea,
	blockHash *externalapi.DomainHash) (*externalapi.DomainBlockHeader, error) {
	entry, err := bhs.entry(dbContext, stagingArea, blockHash)
	if err != nil {
		return nil, err
	}
	return entry.header.Clone(), nil
}

// HeaderWithBlockLevel gets the header bundled with its block level.
func (bhs *blockHeaderStore) HeaderWithBlockLevel(dbContext model.DBReader, stagingArea *model.StagingArea,
	blockHash *externalapi.DomainHash) (*externalapi.HeaderWithBlockLevel, error) {
	entry, err := bhs.entry(dbContext, stagingArea, blockHash)
	if err != nil {
		return nil, err
	}
	return &externalapi.HeaderWithBlockLevel{Header: entry.header.Clone(), BlockLevel: entry.level}, nil
}

// BlockLevel gets the block level a header was indexed at.
func (bhs *blockHeaderStore) BlockLevel(dbContext model.DBReader, stagingArea *model.StagingArea,
	blockHash *externalapi.DomainHash) (externalapi.BlockLevel, error) {
	entry, err := bhs.entry(dbContext, stagingArea, blockHash)
	if err != nil {
		return 0, err
	}
	return entry.level, nil
}

// BlueScore gets the blue score of a header, for sort keys that don't need
// the full header.
func (bhs *blockHeaderStore) BlueScore(dbContext model.DBReader, stagingArea *model.StagingArea,
	blockHash *externalapi.DomainHash) (uint64, error) {
	entry, err := bhs.entry(dbContext, stagingArea, blockHash)
	if err != nil {
		return 0, err
	}
	return entry.header.BlueScore, nil
}

// HasBlockHeader returns whether a block header with a given hash exists
// in the store.
func (bhs *blockHeaderStore) HasBlockHeader(dbContext model.DBReader, stagingArea *model.StagingArea,
	blockHash *externalapi.DomainHash) (bool, error) {
	shard := bhs.stagingShard(stagingArea)
	if _, ok := shard.toAdd[*blockHash]; ok {
		return true, nil
	}
	if _, ok := bhs.cache.Get(blockHash); ok {
		return true, nil
	}
	return dbContext.Has(headerBucket.Key(blockHash[:]))
}

func (bhs *blockHeaderStore) entry(dbContext model.DBReader, stagingArea *model.StagingArea,
	blockHash *externalapi.DomainHash) (*headerEntry, error) {
	shard := bhs.stagingShard(stagingArea)
	if entry, ok := shard.toAdd[*blockHash]; ok {
		return entry, nil
	}

	if cached, ok := bhs.cache.Get(blockHash); ok {
		return cached.(*headerEntry), nil
	}

	headerBytes, err := dbContext.Get(headerBucket.Key(blockHash[:]))
	if err != nil {
		return nil, err
	}
	header, err := serialization.DeserializeHeader(headerBytes)
	if err != nil {
		return nil, err
	}

	levelBytes, err := dbContext.Get(levelBucket.Key(blockHash[:]))
	if err != nil {
		return nil, err
	}
	level := externalapi.BlockLevel(0)
	if len(levelBytes) > 0 {
		level = externalapi.BlockLevel(levelBytes[0])
	}

	entry := &headerEntry{header: header, level: level}
	bhs.cache.Add(blockHash, entry)
	return entry, nil
}

// Package ghostdagdatastore stores the GHOSTDAG tuple (selected parent,
// blue score, blue work, merge-set blues/reds, blues anticone sizes)
// computed for each block at a single DAG level.
package ghostdagdatastore

import (
	"fmt"

	"github.com/kaspanet/kaspad/domain/consensus/database/serialization"
	"github.com/kaspanet/kaspad/domain/consensus/model"
	"github.com/kaspanet/kaspad/domain/consensus/model/externalapi"
	"github.com/kaspanet/kaspad/domain/consensus/utils/dbkeys"
	"github.com/kaspanet/kaspad/domain/consensus/utils/lrucache"
)

type ghostdagDataStore struct {
	bucket  model.DBBucket
	shardID model.StagingShardID
	cache   *lrucache.LRUCache
}

// New instantiates a new GHOSTDAGDataStore for the given level.
func New(level externalapi.BlockLevel, cacheSize int) model.GHOSTDAGDataStore {
	return &ghostdagDataStore{
		bucket:  dbkeys.MakeBucket([]byte(fmt.Sprintf("block-ghostdag-data-%d", level))),
		shardID: model.StagingShardID(fmt.Sprintf("%s-%d", model.StagingShardIDGHOSTDAG, level)),
		cache:   lrucache.New(cacheSize),
	}
}

type stagingShard struct {
	store *ghostdagDataStore
	toAdd map[externalapi.DomainHash]*externalapi.BlockGHOSTDAGData
}

func (gds *ghostdagDataStore) stagingShard(stagingArea *model.StagingArea) *stagingShard {
	return stagingArea.GetOrCreateShard(gds.shardID, func() model.StagingShard {
		return &stagingShard{
			store: gds,
			toAdd: make(map[externalapi.DomainHash]*externalapi.BlockGHOSTDAGData),
		}
	}).(*stagingShard)
}

// Stage stages data for blockHash.
func (gds *ghostdagDataStore) Stage(stagingArea *model.StagingArea, blockHash *externalapi.DomainHash, data *externalapi.BlockGHOSTDAGData) {
	shard := gds.stagingShard(stagingArea)
	shard.toAdd[*blockHash] = data.Clone()
}

// IsStaged implements model.Store.
func (gds *ghostdagDataStore) IsStaged(stagingArea *model.StagingArea) bool {
	return len(gds.stagingShard(stagingArea).toAdd) != 0
}

func (shard *stagingShard) Commit(dbTx model.DBTransaction) error {
	for hash, data := range shard.toAdd {
		dataBytes, err := serialization.SerializeGHOSTDAGData(data)
		if err != nil {
			return err
		}
		hashCopy := hash
		err = dbTx.Put(shard.store.bucket.Key(hashCopy[:]), dataBytes)
		if err != nil {
			return err
		}
		shard.store.cache.Add(&hashCopy, data)
	}
	return nil
}

// Has reports whether blockHash has GHOSTDAG data at this level.
func (gds *ghostdagDataStore) Has(dbContext model.DBReader, stagingArea *model.StagingArea, blockHash *externalapi.DomainHash) (bool, error) {
	shard := gds.stagingShard(stagingArea)
	if _, ok := shard.toAdd[*blockHash]; ok {
		return true, nil
	}
	if _, ok := gds.cache.Get(blockHash); ok {
		return true, nil
	}
	return dbContext.Has(gds.bucket.Key(blockHash[:]))
}

// Get gets the GHOSTDAG data associated with blockHash.
func (gds *ghostdagDataStore) Get(dbContext model.DBReader, stagingArea *model.StagingArea, blockHash *externalapi.DomainHash) (*externalapi.BlockGHOSTDAGData, error) {
	shard := gds.stagingShard(stagingArea)
	if data, ok := shard.toAdd[*blockHash]; ok {
		return data.Clone(), nil
	}
	if data, ok := gds.cache.Get(blockHash); ok {
		return data.(*externalapi.BlockGHOSTDAGData).Clone(), nil
	}

	dataBytes, err := dbContext.Get(gds.bucket.Key(blockHash[:]))
	if err != nil {
		return nil, err
	}
	data, err := serialization.DeserializeGHOSTDAGData(dataBytes)
	if err != nil {
		return nil, err
	}
	gds.cache.Add(blockHash, data)
	return data.Clone(), nil
}

// GetCompact gets the compact form of blockHash's GHOSTDAG data.
func (gds *ghostdagDataStore) GetCompact(dbContext model.DBReader, stagingArea *model.StagingArea,
	blockHash *externalapi.DomainHash) (*externalapi.CompactGHOSTDAGData, error) {
	data, err := gds.Get(dbContext, stagingArea, blockHash)
	if err != nil {
		return nil, err
	}
	return data.ToCompact(), nil
}

// Package reachabilitydatastore stores the interval-tree state the
// reachability oracle keeps for each block at a single DAG level: its tree
// parent/children, allocated interval and future covering set.
package reachabilitydatastore

import (
	"fmt"

	"github.com/kaspanet/kaspad/domain/consensus/database/serialization"
	"github.com/kaspanet/kaspad/domain/consensus/model"
	"github.com/kaspanet/kaspad/domain/consensus/model/externalapi"
	"github.com/kaspanet/kaspad/domain/consensus/utils/dbkeys"
	"github.com/kaspanet/kaspad/domain/consensus/utils/lrucache"
)

var reindexRootKeyName = []byte("reindex-root")

type reachabilityDataStore struct {
	bucket          model.DBBucket
	reindexRootKey  model.DBKey
	dataShardID     model.StagingShardID
	reindexShardID  model.StagingShardID
	dataCache       *lrucache.LRUCache
	reindexRootInit bool
	reindexRoot     *externalapi.DomainHash
}

// New instantiates a new ReachabilityDataStore for the given level.
func New(level externalapi.BlockLevel, cacheSize int) model.ReachabilityDataStore {
	bucket := dbkeys.MakeBucket([]byte(fmt.Sprintf("reachability-data-%d", level)))
	return &reachabilityDataStore{
		bucket:         bucket,
		reindexRootKey: bucket.Key(reindexRootKeyName),
		dataShardID:    model.StagingShardID(fmt.Sprintf("%s-%d", model.StagingShardIDReachability, level)),
		reindexShardID: model.StagingShardID(fmt.Sprintf("reachability-reindex-root-%d", level)),
		dataCache:      lrucache.New(cacheSize),
	}
}

type dataStagingShard struct {
	store *reachabilityDataStore
	toAdd map[externalapi.DomainHash]*model.ReachabilityData
}

func (rds *reachabilityDataStore) stagingShard(stagingArea *model.StagingArea) *dataStagingShard {
	return stagingArea.GetOrCreateShard(rds.dataShardID, func() model.StagingShard {
		return &dataStagingShard{
			store: rds,
			toAdd: make(map[externalapi.DomainHash]*model.ReachabilityData),
		}
	}).(*dataStagingShard)
}

type reindexRootStagingShard struct {
	store      *reachabilityDataStore
	hasStaged  bool
	stagedRoot *externalapi.DomainHash
}

func (rds *reachabilityDataStore) reindexRootStagingShard(stagingArea *model.StagingArea) *reindexRootStagingShard {
	return stagingArea.GetOrCreateShard(rds.reindexShardID, func() model.StagingShard {
		return &reindexRootStagingShard{store: rds}
	}).(*reindexRootStagingShard)
}

// StageReachabilityData stages data for blockHash.
func (rds *reachabilityDataStore) StageReachabilityData(stagingArea *model.StagingArea, blockHash *externalapi.DomainHash, data *model.ReachabilityData) {
	shard := rds.stagingShard(stagingArea)
	shard.toAdd[*blockHash] = data.Clone()
}

// StageReachabilityReindexRoot stages a new reindex root.
func (rds *reachabilityDataStore) StageReachabilityReindexRoot(stagingArea *model.StagingArea, reindexRoot *externalapi.DomainHash) {
	shard := rds.reindexRootStagingShard(stagingArea)
	shard.hasStaged = true
	shard.stagedRoot = reindexRoot.Clone()
}

// IsStaged implements model.Store.
func (rds *reachabilityDataStore) IsStaged(stagingArea *model.StagingArea) bool {
	if len(rds.stagingShard(stagingArea).toAdd) != 0 {
		return true
	}
	return rds.reindexRootStagingShard(stagingArea).hasStaged
}

func (shard *dataStagingShard) Commit(dbTx model.DBTransaction) error {
	for hash, data := range shard.toAdd {
		dataBytes, err := serialization.SerializeReachabilityData(data)
		if err != nil {
			return err
		}
		hashCopy := hash
		err = dbTx.Put(shard.store.bucket.Key(hashCopy[:]), dataBytes)
		if err != nil {
			return err
		}
		shard.store.dataCache.Add(&hashCopy, data)
	}
	return nil
}

func (shard *reindexRootStagingShard) Commit(dbTx model.DBTransaction) error {
	if !shard.hasStaged {
		return nil
	}
	err := dbTx.Put(shard.store.reindexRootKey, shard.stagedRoot[:])
	if err != nil {
		return err
	}
	shard.store.reindexRootInit = true
	shard.store.reindexRoot = shard.stagedRoot
	return nil
}

// HasReachabilityData reports whether blockHash has reachability data at
// this level.
func (rds *reachabilityDataStore) HasReachabilityData(dbContext model.DBReader, stagingArea *model.StagingArea,
	blockHash *externalapi.DomainHash) (bool, error) {
	shard := rds.stagingShard(stagingArea)
	if _, ok := shard.toAdd[*blockHash]; ok {
		return true, nil
	}
	if _, ok := rds.dataCache.Get(blockHash); ok {
		return true, nil
	}
	return dbContext.Has(rds.bucket.Key(blockHash[:]))
}

// ReachabilityData gets the reachability data associated with blockHash.
func (rds *reachabilityDataStore) ReachabilityData(dbContext model.DBReader, stagingArea *model.StagingArea,
	blockHash *externalapi.DomainHash) (*model.ReachabilityData, error) {
	shard := rds.stagingShard(stagingArea)
	if data, ok := shard.toAdd[*blockHash]; ok {
		return data.Clone(), nil
	}
	if data, ok := rds.dataCache.Get(blockHash); ok {
		return data.(*model.ReachabilityData).Clone(), nil
	}

	dataBytes, err := dbContext.Get(rds.bucket.Key(blockHash[:]))
	if err != nil {
		return nil, err
	}
	data, err := serialization.DeserializeReachabilityData(dataBytes)
	if err != nil {
		return nil, err
	}
	rds.dataCache.Add(blockHash, data)
	return data.Clone(), nil
}

// ReachabilityReindexRoot gets the current reindex root.
func (rds *reachabilityDataStore) ReachabilityReindexRoot(dbContext model.DBReader, stagingArea *model.StagingArea) (*externalapi.DomainHash, error) {
	shard := rds.reindexRootStagingShard(stagingArea)
	if shard.hasStaged {
		return shard.stagedRoot.Clone(), nil
	}
	if rds.reindexRootInit {
		return rds.reindexRoot.Clone(), nil
	}

	rootBytes, err := dbContext.Get(rds.reindexRootKey)
	if err != nil {
		return nil, err
	}
	var root externalapi.DomainHash
	copy(root[:], rootBytes)
	rds.reindexRootInit = true
	rds.reindexRoot = &root
	return root.Clone(), nil
}

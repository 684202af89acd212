// Package pastpruningpointsstore keeps the append-only list of every
// pruning point this node has ever adopted, indexed by adoption order.
package pastpruningpointsstore

import (
	"encoding/binary"

	"github.com/kaspanet/kaspad/domain/consensus/model"
	"github.com/kaspanet/kaspad/domain/consensus/model/externalapi"
	"github.com/kaspanet/kaspad/domain/consensus/utils/dbkeys"
	"github.com/kaspanet/kaspad/domain/consensus/utils/lrucache"
)

var bucket = dbkeys.MakeBucket([]byte("past-pruning-points"))
var countKey = bucket.Key([]byte("count"))

type pastPruningPointsStore struct {
	cache *lrucache.LRUCache
}

// New instantiates a new PastPruningPointsStore.
func New(cacheSize int) model.PastPruningPointsStore {
	return &pastPruningPointsStore{cache: lrucache.New(cacheSize)}
}

func indexKey(index uint64) model.DBKey {
	indexBytes := make([]byte, 8)
	binary.BigEndian.PutUint64(indexBytes, index)
	return bucket.Key(indexBytes)
}

// indexCacheKey maps an index onto the DomainHash-shaped key the shared
// LRU cache implementation requires.
func indexCacheKey(index uint64) *externalapi.DomainHash {
	var key externalapi.DomainHash
	binary.BigEndian.PutUint64(key[:8], index)
	return &key
}

type stagingShard struct {
	store *pastPruningPointsStore
	toAdd map[uint64]*externalapi.DomainHash
}

func (ppps *pastPruningPointsStore) stagingShard(stagingArea *model.StagingArea) *stagingShard {
	return stagingArea.GetOrCreateShard(model.StagingShardIDPastPruningPoints, func() model.StagingShard {
		return &stagingShard{store: ppps, toAdd: make(map[uint64]*externalapi.DomainHash)}
	}).(*stagingShard)
}

// Stage stages pruningPointHash at index.
func (ppps *pastPruningPointsStore) Stage(stagingArea *model.StagingArea, index uint64, pruningPointHash *externalapi.DomainHash) {
	shard := ppps.stagingShard(stagingArea)
	shard.toAdd[index] = pruningPointHash.Clone()
}

// IsStaged implements model.Store.
func (ppps *pastPruningPointsStore) IsStaged(stagingArea *model.StagingArea) bool {
	return len(ppps.stagingShard(stagingArea).toAdd) != 0
}

func (shard *stagingShard) Commit(dbTx model.DBTransaction) error {
	maxIndex := uint64(0)
	hasIndex := false
	for index, hash := range shard.toAdd {
		err := dbTx.Put(indexKey(index), hash[:])
		if err != nil {
			return err
		}
		shard.store.cache.Add(indexCacheKey(index), hash)
		if !hasIndex || index > maxIndex {
			maxIndex = index
			hasIndex = true
		}
	}
	if hasIndex {
		countBytes := make([]byte, 8)
		binary.LittleEndian.PutUint64(countBytes, maxIndex+1)
		err := dbTx.Put(countKey, countBytes)
		if err != nil {
			return err
		}
	}
	return nil
}

// PruningPointByIndex gets the pruning point adopted at index.
func (ppps *pastPruningPointsStore) PruningPointByIndex(dbContext model.DBReader, stagingArea *model.StagingArea,
	index uint64) (*externalapi.DomainHash, error) {
	shard := ppps.stagingShard(stagingArea)
	if hash, ok := shard.toAdd[index]; ok {
		return hash.Clone(), nil
	}
	if cached, ok := ppps.cache.Get(indexCacheKey(index)); ok {
		return cached.(*externalapi.DomainHash).Clone(), nil
	}

	hashBytes, err := dbContext.Get(indexKey(index))
	if err != nil {
		return nil, err
	}
	var hash externalapi.DomainHash
	copy(hash[:], hashBytes)
	ppps.cache.Add(indexCacheKey(index), &hash)
	return hash.Clone(), nil
}

// Count returns the number of pruning points ever adopted.
func (ppps *pastPruningPointsStore) Count(dbContext model.DBReader, stagingArea *model.StagingArea) (uint64, error) {
	has, err := dbContext.Has(countKey)
	if err != nil {
		return 0, err
	}
	if !has {
		return 0, nil
	}
	countBytes, err := dbContext.Get(countKey)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(countBytes), nil
}

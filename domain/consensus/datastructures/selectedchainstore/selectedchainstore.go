// Package selectedchainstore holds the selected virtual chain as an
// ordered sequence of block hashes, indexed by distance from the pruning
// point anchor.
package selectedchainstore

import (
	"encoding/binary"

	"github.com/kaspanet/kaspad/domain/consensus/model"
	"github.com/kaspanet/kaspad/domain/consensus/model/externalapi"
	"github.com/kaspanet/kaspad/domain/consensus/utils/dbkeys"
	"github.com/kaspanet/kaspad/domain/consensus/utils/lrucache"
)

var bucket = dbkeys.MakeBucket([]byte("selected-chain"))

type selectedChainStore struct {
	cache *lrucache.LRUCache
}

// New instantiates a new SelectedChainStore.
func New(cacheSize int) model.SelectedChainStore {
	return &selectedChainStore{cache: lrucache.New(cacheSize)}
}

func indexKey(index uint64) model.DBKey {
	indexBytes := make([]byte, 8)
	binary.BigEndian.PutUint64(indexBytes, index)
	return bucket.Key(indexBytes)
}

func indexCacheKey(index uint64) *externalapi.DomainHash {
	var key externalapi.DomainHash
	binary.BigEndian.PutUint64(key[:8], index)
	return &key
}

type stagingShard struct {
	store        *selectedChainStore
	toAdd        map[uint64]*externalapi.DomainHash
	initialized  bool
	pruningPoint *externalapi.DomainHash
}

func (scs *selectedChainStore) stagingShard(stagingArea *model.StagingArea) *stagingShard {
	return stagingArea.GetOrCreateShard(model.StagingShardIDSelectedChain, func() model.StagingShard {
		return &stagingShard{store: scs, toAdd: make(map[uint64]*externalapi.DomainHash)}
	}).(*stagingShard)
}

// StageAddedBlock stages blockHash at index in the selected chain.
func (scs *selectedChainStore) StageAddedBlock(stagingArea *model.StagingArea, index uint64, blockHash *externalapi.DomainHash) {
	shard := scs.stagingShard(stagingArea)
	shard.toAdd[index] = blockHash.Clone()
}

// InitWithPruningPoint stages pruningPoint at index 0 of the selected
// chain. Entries at other indices, staged or already stored, are kept.
func (scs *selectedChainStore) InitWithPruningPoint(stagingArea *model.StagingArea, pruningPoint *externalapi.DomainHash) {
	shard := scs.stagingShard(stagingArea)
	shard.initialized = true
	shard.pruningPoint = pruningPoint.Clone()
	shard.toAdd[0] = pruningPoint.Clone()
}

// IsStaged implements model.Store.
func (scs *selectedChainStore) IsStaged(stagingArea *model.StagingArea) bool {
	shard := scs.stagingShard(stagingArea)
	return len(shard.toAdd) != 0 || shard.initialized
}

func (shard *stagingShard) Commit(dbTx model.DBTransaction) error {
	for index, hash := range shard.toAdd {
		err := dbTx.Put(indexKey(index), hash[:])
		if err != nil {
			return err
		}
		shard.store.cache.Add(indexCacheKey(index), hash)
	}
	return nil
}

// GetByIndex gets the block hash at index in the selected chain.
func (scs *selectedChainStore) GetByIndex(dbContext model.DBReader, stagingArea *model.StagingArea, index uint64) (*externalapi.DomainHash, error) {
	shard := scs.stagingShard(stagingArea)
	if hash, ok := shard.toAdd[index]; ok {
		return hash.Clone(), nil
	}
	if cached, ok := scs.cache.Get(indexCacheKey(index)); ok {
		return cached.(*externalapi.DomainHash).Clone(), nil
	}

	hashBytes, err := dbContext.Get(indexKey(index))
	if err != nil {
		return nil, err
	}
	var hash externalapi.DomainHash
	copy(hash[:], hashBytes)
	scs.cache.Add(indexCacheKey(index), &hash)
	return hash.Clone(), nil
}

// Package blockrelationstore stores, for a single DAG level, every block's
// known parent and child sets.
package blockrelationstore

import (
	"fmt"

	"github.com/kaspanet/kaspad/domain/consensus/database/serialization"
	"github.com/kaspanet/kaspad/domain/consensus/model"
	"github.com/kaspanet/kaspad/domain/consensus/model/externalapi"
	"github.com/kaspanet/kaspad/domain/consensus/utils/dbkeys"
	"github.com/kaspanet/kaspad/domain/consensus/utils/lrucache"
)

type blockRelationStore struct {
	bucket  model.DBBucket
	shardID model.StagingShardID
	cache   *lrucache.LRUCache
}

// New instantiates a new BlockRelationStore for the given level.
func New(level externalapi.BlockLevel, cacheSize int) model.BlockRelationStore {
	return &blockRelationStore{
		bucket:  dbkeys.MakeBucket([]byte(fmt.Sprintf("block-relations-%d", level))),
		shardID: model.StagingShardID(fmt.Sprintf("%s-%d", model.StagingShardIDBlockRelations, level)),
		cache:   lrucache.New(cacheSize),
	}
}

type stagingShard struct {
	store *blockRelationStore
	toAdd map[externalapi.DomainHash]*externalapi.BlockRelations
}

func (brs *blockRelationStore) stagingShard(stagingArea *model.StagingArea) *stagingShard {
	return stagingArea.GetOrCreateShard(brs.shardID, func() model.StagingShard {
		return &stagingShard{
			store: brs,
			toAdd: make(map[externalapi.DomainHash]*externalapi.BlockRelations),
		}
	}).(*stagingShard)
}

// existingOrNew returns the relations already staged or cached for hash, or
// a fresh empty BlockRelations if none are known yet. It never touches the
// database: callers stage parents before their children, so a parent's
// relations are always staged or cached by the time a child references it.
func (brs *blockRelationStore) existingOrNew(shard *stagingShard, hash *externalapi.DomainHash) *externalapi.BlockRelations {
	if relations, ok := shard.toAdd[*hash]; ok {
		return relations
	}
	if cached, ok := brs.cache.Get(hash); ok {
		clone := cached.(*externalapi.BlockRelations).Clone()
		shard.toAdd[*hash] = clone
		return clone
	}
	relations := &externalapi.BlockRelations{}
	shard.toAdd[*hash] = relations
	return relations
}

// Stage stages parents for blockHash, and registers blockHash as a child of
// each of them.
func (brs *blockRelationStore) Stage(stagingArea *model.StagingArea, blockHash *externalapi.DomainHash, parents []*externalapi.DomainHash) {
	shard := brs.stagingShard(stagingArea)
	relations := brs.existingOrNew(shard, blockHash)
	relations.Parents = externalapi.CloneHashes(parents)

	for _, parent := range parents {
		parentRelations := brs.existingOrNew(shard, parent)
		parentRelations.Children = append(parentRelations.Children, blockHash)
	}
}

// IsStaged implements model.Store.
func (brs *blockRelationStore) IsStaged(stagingArea *model.StagingArea) bool {
	return len(brs.stagingShard(stagingArea).toAdd) != 0
}

func (shard *stagingShard) Commit(dbTx model.DBTransaction) error {
	for hash, relations := range shard.toAdd {
		bytes, err := serialization.SerializeBlockRelations(relations)
		if err != nil {
			return err
		}
		hashCopy := hash
		err = dbTx.Put(shard.store.bucket.Key(hashCopy[:]), bytes)
		if err != nil {
			return err
		}
		shard.store.cache.Add(&hashCopy, relations)
	}
	return nil
}

// Has reports whether blockHash has known relations at this level.
func (brs *blockRelationStore) Has(dbContext model.DBReader, stagingArea *model.StagingArea, blockHash *externalapi.DomainHash) (bool, error) {
	shard := brs.stagingShard(stagingArea)
	if _, ok := shard.toAdd[*blockHash]; ok {
		return true, nil
	}
	if _, ok := brs.cache.Get(blockHash); ok {
		return true, nil
	}
	return dbContext.Has(brs.bucket.Key(blockHash[:]))
}

// BlockRelations returns the parent/child sets known for blockHash.
func (brs *blockRelationStore) BlockRelations(dbContext model.DBReader, stagingArea *model.StagingArea,
	blockHash *externalapi.DomainHash) (*externalapi.BlockRelations, error) {
	shard := brs.stagingShard(stagingArea)
	if relations, ok := shard.toAdd[*blockHash]; ok {
		return relations.Clone(), nil
	}
	if relations, ok := brs.cache.Get(blockHash); ok {
		return relations.(*externalapi.BlockRelations).Clone(), nil
	}

	relationsBytes, err := dbContext.Get(brs.bucket.Key(blockHash[:]))
	if err != nil {
		return nil, err
	}
	relations, err := serialization.DeserializeBlockRelations(relationsBytes)
	if err != nil {
		return nil, err
	}
	brs.cache.Add(blockHash, relations)
	return relations.Clone(), nil
}

// BlockParents returns blockHash's parents at this level.
func (brs *blockRelationStore) BlockParents(dbContext model.DBReader, stagingArea *model.StagingArea,
	blockHash *externalapi.DomainHash) ([]*externalapi.DomainHash, error) {
	relations, err := brs.BlockRelations(dbContext, stagingArea, blockHash)
	if err != nil {
		return nil, err
	}
	return relations.Parents, nil
}

// BlockChildren returns blockHash's children at this level.
func (brs *blockRelationStore) BlockChildren(dbContext model.DBReader, stagingArea *model.StagingArea,
	blockHash *externalapi.DomainHash) ([]*externalapi.DomainHash, error) {
	relations, err := brs.BlockRelations(dbContext, stagingArea, blockHash)
	if err != nil {
		return nil, err
	}
	return relations.Children, nil
}

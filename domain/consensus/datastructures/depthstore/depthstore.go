// Package depthstore holds, for each block, a pair of chain-block hashes:
// a blue-score marker and the finality point below it. The pruning proof's
// depth walker reads the ghostdag store, not this one.
package depthstore

import (
	"bytes"
	"encoding/gob"

	"github.com/kaspanet/kaspad/domain/consensus/model"
	"github.com/kaspanet/kaspad/domain/consensus/model/externalapi"
	"github.com/kaspanet/kaspad/domain/consensus/utils/dbkeys"
	"github.com/kaspanet/kaspad/domain/consensus/utils/lrucache"
)

var bucket = dbkeys.MakeBucket([]byte("depth"))

type depthInfo struct {
	BlueScoreMarker *externalapi.DomainHash
	FinalityPoint   *externalapi.DomainHash
}

type dbDepthInfo struct {
	BlueScoreMarker [externalapi.DomainHashSize]byte
	FinalityPoint   [externalapi.DomainHashSize]byte
}

type depthStore struct {
	cache *lrucache.LRUCache
}

// New instantiates a new DepthStore.
func New(cacheSize int) model.DepthStore {
	return &depthStore{cache: lrucache.New(cacheSize)}
}

type stagingShard struct {
	store *depthStore
	toAdd map[externalapi.DomainHash]*depthInfo
}

func (ds *depthStore) stagingShard(stagingArea *model.StagingArea) *stagingShard {
	return stagingArea.GetOrCreateShard(model.StagingShardIDDepth, func() model.StagingShard {
		return &stagingShard{store: ds, toAdd: make(map[externalapi.DomainHash]*depthInfo)}
	}).(*stagingShard)
}

// Stage stages the depth info for blockHash.
func (ds *depthStore) Stage(stagingArea *model.StagingArea, blockHash, blueScoreMarker, finalityPoint *externalapi.DomainHash) {
	shard := ds.stagingShard(stagingArea)
	shard.toAdd[*blockHash] = &depthInfo{
		BlueScoreMarker: blueScoreMarker.Clone(),
		FinalityPoint:   finalityPoint.Clone(),
	}
}

// IsStaged implements model.Store.
func (ds *depthStore) IsStaged(stagingArea *model.StagingArea) bool {
	return len(ds.stagingShard(stagingArea).toAdd) != 0
}

func serializeDepthInfo(info *depthInfo) ([]byte, error) {
	dbInfo := &dbDepthInfo{
		BlueScoreMarker: [externalapi.DomainHashSize]byte(*info.BlueScoreMarker),
		FinalityPoint:   [externalapi.DomainHashSize]byte(*info.FinalityPoint),
	}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(dbInfo); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func deserializeDepthInfo(data []byte) (*depthInfo, error) {
	var dbInfo dbDepthInfo
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&dbInfo); err != nil {
		return nil, err
	}
	blueScoreMarker := externalapi.DomainHash(dbInfo.BlueScoreMarker)
	finalityPoint := externalapi.DomainHash(dbInfo.FinalityPoint)
	return &depthInfo{BlueScoreMarker: &blueScoreMarker, FinalityPoint: &finalityPoint}, nil
}

func (shard *stagingShard) Commit(dbTx model.DBTransaction) error {
	for hash, info := range shard.toAdd {
		infoBytes, err := serializeDepthInfo(info)
		if err != nil {
			return err
		}
		hashCopy := hash
		err = dbTx.Put(bucket.Key(hashCopy[:]), infoBytes)
		if err != nil {
			return err
		}
		shard.store.cache.Add(&hashCopy, info)
	}
	return nil
}

// BlockDepthInfo gets the depth info associated with blockHash.
func (ds *depthStore) BlockDepthInfo(dbContext model.DBReader, stagingArea *model.StagingArea,
	blockHash *externalapi.DomainHash) (blueScoreMarker, finalityPoint *externalapi.DomainHash, err error) {
	shard := ds.stagingShard(stagingArea)
	if info, ok := shard.toAdd[*blockHash]; ok {
		return info.BlueScoreMarker.Clone(), info.FinalityPoint.Clone(), nil
	}
	if cached, ok := ds.cache.Get(blockHash); ok {
		info := cached.(*depthInfo)
		return info.BlueScoreMarker.Clone(), info.FinalityPoint.Clone(), nil
	}

	infoBytes, getErr := dbContext.Get(bucket.Key(blockHash[:]))
	if getErr != nil {
		return nil, nil, getErr
	}
	info, decodeErr := deserializeDepthInfo(infoBytes)
	if decodeErr != nil {
		return nil, nil, decodeErr
	}
	ds.cache.Add(blockHash, info)
	return info.BlueScoreMarker.Clone(), info.FinalityPoint.Clone(), nil
}

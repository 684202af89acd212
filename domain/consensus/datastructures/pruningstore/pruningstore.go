// Package pruningstore tracks the current pruning point, the candidate
// being staged to replace it, and the history root below which block
// bodies are no longer kept.
package pruningstore

import (
	"encoding/binary"

	"github.com/kaspanet/kaspad/domain/consensus/model"
	"github.com/kaspanet/kaspad/domain/consensus/model/externalapi"
	"github.com/kaspanet/kaspad/domain/consensus/utils/dbkeys"
)

var bucket = dbkeys.MakeBucket([]byte("pruning"))
var pruningPointKey = bucket.Key([]byte("point"))
var candidateKey = bucket.Key([]byte("candidate"))
var indexKey = bucket.Key([]byte("index"))
var historyRootKey = bucket.Key([]byte("history-root"))

type pruningStore struct {
	pruningPointCache   *externalapi.DomainHash
	candidateCache      *externalapi.DomainHash
	indexCache          *uint64
	indexCacheValid     bool
	historyRootCache    *externalapi.DomainHash
	historyRootCacheSet bool
}

// New instantiates a new PruningStore.
func New() model.PruningStore {
	return &pruningStore{}
}

type stagingShard struct {
	store *pruningStore

	pruningPoint   *externalapi.DomainHash
	candidate      *externalapi.DomainHash
	index          *uint64
	hasIndex       bool
	historyRoot    *externalapi.DomainHash
	hasHistoryRoot bool
}

func (ps *pruningStore) stagingShard(stagingArea *model.StagingArea) *stagingShard {
	return stagingArea.GetOrCreateShard(model.StagingShardIDPruning, func() model.StagingShard {
		return &stagingShard{store: ps}
	}).(*stagingShard)
}

// StagePruningPoint stages a new pruning point, its replacing candidate,
// and its index in the past-pruning-points list.
func (ps *pruningStore) StagePruningPoint(stagingArea *model.StagingArea, pruningPointBlockHash *externalapi.DomainHash,
	candidate *externalapi.DomainHash, index uint64) {
	shard := ps.stagingShard(stagingArea)
	shard.pruningPoint = pruningPointBlockHash.Clone()
	shard.candidate = candidate.Clone()
	shard.index = &index
	shard.hasIndex = true
}

// StageHistoryRoot stages a new history root.
func (ps *pruningStore) StageHistoryRoot(stagingArea *model.StagingArea, historyRoot *externalapi.DomainHash) {
	shard := ps.stagingShard(stagingArea)
	shard.historyRoot = historyRoot.Clone()
	shard.hasHistoryRoot = true
}

// IsStaged implements model.Store.
func (ps *pruningStore) IsStaged(stagingArea *model.StagingArea) bool {
	shard := ps.stagingShard(stagingArea)
	return shard.pruningPoint != nil || shard.hasHistoryRoot
}

func (shard *stagingShard) Commit(dbTx model.DBTransaction) error {
	if shard.pruningPoint != nil {
		err := dbTx.Put(pruningPointKey, shard.pruningPoint[:])
		if err != nil {
			return err
		}
		err = dbTx.Put(candidateKey, shard.candidate[:])
		if err != nil {
			return err
		}
		indexBytes := make([]byte, 8)
		binary.LittleEndian.PutUint64(indexBytes, *shard.index)
		err = dbTx.Put(indexKey, indexBytes)
		if err != nil {
			return err
		}
		shard.store.pruningPointCache = shard.pruningPoint
		shard.store.candidateCache = shard.candidate
		shard.store.indexCache = shard.index
		shard.store.indexCacheValid = true
	}

	if shard.hasHistoryRoot {
		err := dbTx.Put(historyRootKey, shard.historyRoot[:])
		if err != nil {
			return err
		}
		shard.store.historyRootCache = shard.historyRoot
		shard.store.historyRootCacheSet = true
	}

	return nil
}

// PruningPoint gets the current pruning point.
func (ps *pruningStore) PruningPoint(dbContext model.DBReader, stagingArea *model.StagingArea) (*externalapi.DomainHash, error) {
	shard := ps.stagingShard(stagingArea)
	if shard.pruningPoint != nil {
		return shard.pruningPoint.Clone(), nil
	}
	if ps.pruningPointCache != nil {
		return ps.pruningPointCache.Clone(), nil
	}

	pointBytes, err := dbContext.Get(pruningPointKey)
	if err != nil {
		return nil, err
	}
	var hash externalapi.DomainHash
	copy(hash[:], pointBytes)
	ps.pruningPointCache = &hash
	return hash.Clone(), nil
}

// PruningPointInfo gets the current pruning point bundled with its
// candidate and index.
func (ps *pruningStore) PruningPointInfo(dbContext model.DBReader, stagingArea *model.StagingArea) (*externalapi.PruningPointInfo, error) {
	point, err := ps.PruningPoint(dbContext, stagingArea)
	if err != nil {
		return nil, err
	}

	shard := ps.stagingShard(stagingArea)
	var candidate *externalapi.DomainHash
	var index uint64
	switch {
	case shard.candidate != nil:
		candidate = shard.candidate.Clone()
		index = *shard.index
	case ps.candidateCache != nil && ps.indexCacheValid:
		candidate = ps.candidateCache.Clone()
		index = *ps.indexCache
	default:
		candidateBytes, err := dbContext.Get(candidateKey)
		if err != nil {
			return nil, err
		}
		var candidateHash externalapi.DomainHash
		copy(candidateHash[:], candidateBytes)
		candidate = &candidateHash

		indexBytes, err := dbContext.Get(indexKey)
		if err != nil {
			return nil, err
		}
		index = binary.LittleEndian.Uint64(indexBytes)

		ps.candidateCache = candidate
		ps.indexCache = &index
		ps.indexCacheValid = true
	}

	return &externalapi.PruningPointInfo{
		PruningPoint:          point,
		CandidatePruningPoint: candidate,
		Index:                 index,
	}, nil
}

// HasPruningPoint reports whether a pruning point has been set yet.
func (ps *pruningStore) HasPruningPoint(dbContext model.DBReader, stagingArea *model.StagingArea) (bool, error) {
	shard := ps.stagingShard(stagingArea)
	if shard.pruningPoint != nil {
		return true, nil
	}
	if ps.pruningPointCache != nil {
		return true, nil
	}
	return dbContext.Has(pruningPointKey)
}

// HistoryRoot gets the current history root.
func (ps *pruningStore) HistoryRoot(dbContext model.DBReader, stagingArea *model.StagingArea) (*externalapi.DomainHash, error) {
	shard := ps.stagingShard(stagingArea)
	if shard.historyRoot != nil {
		return shard.historyRoot.Clone(), nil
	}
	if ps.historyRootCacheSet {
		return ps.historyRootCache.Clone(), nil
	}

	rootBytes, err := dbContext.Get(historyRootKey)
	if err != nil {
		return nil, err
	}
	var hash externalapi.DomainHash
	copy(hash[:], rootBytes)
	ps.historyRootCache = &hash
	ps.historyRootCacheSet = true
	return hash.Clone(), nil
}

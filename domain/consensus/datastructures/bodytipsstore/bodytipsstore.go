// Package bodytipsstore holds the current set of body tips: blocks with no
// known children whose bodies have been validated.
package bodytipsstore

import (
	"bytes"
	"encoding/gob"

	"github.com/kaspanet/kaspad/domain/consensus/model"
	"github.com/kaspanet/kaspad/domain/consensus/model/externalapi"
	"github.com/kaspanet/kaspad/domain/consensus/utils/dbkeys"
)

var key = dbkeys.MakeBucket([]byte("body-tips")).Key([]byte("tips"))

type bodyTipsStore struct {
	cache []*externalapi.DomainHash
}

// New instantiates a new BodyTipsStore.
func New() model.BodyTipsStore {
	return &bodyTipsStore{}
}

type stagingShard struct {
	store  *bodyTipsStore
	tips   []*externalapi.DomainHash
	staged bool
}

func (bts *bodyTipsStore) stagingShard(stagingArea *model.StagingArea) *stagingShard {
	return stagingArea.GetOrCreateShard(model.StagingShardIDBodyTips, func() model.StagingShard {
		return &stagingShard{store: bts}
	}).(*stagingShard)
}

// Stage stages a new set of tips.
func (bts *bodyTipsStore) Stage(stagingArea *model.StagingArea, tips []*externalapi.DomainHash) {
	shard := bts.stagingShard(stagingArea)
	shard.tips = externalapi.CloneHashes(tips)
	shard.staged = true
}

// IsStaged implements model.Store.
func (bts *bodyTipsStore) IsStaged(stagingArea *model.StagingArea) bool {
	return bts.stagingShard(stagingArea).staged
}

func serializeTips(tips []*externalapi.DomainHash) ([]byte, error) {
	arrays := make([][externalapi.DomainHashSize]byte, len(tips))
	for i, hash := range tips {
		arrays[i] = [externalapi.DomainHashSize]byte(*hash)
	}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(arrays); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func deserializeTips(data []byte) ([]*externalapi.DomainHash, error) {
	var arrays [][externalapi.DomainHashSize]byte
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&arrays); err != nil {
		return nil, err
	}
	tips := make([]*externalapi.DomainHash, len(arrays))
	for i, arr := range arrays {
		hash := externalapi.DomainHash(arr)
		tips[i] = &hash
	}
	return tips, nil
}

func (shard *stagingShard) Commit(dbTx model.DBTransaction) error {
	if !shard.staged {
		return nil
	}
	tipsBytes, err := serializeTips(shard.tips)
	if err != nil {
		return err
	}
	err = dbTx.Put(key, tipsBytes)
	if err != nil {
		return err
	}
	shard.store.cache = shard.tips
	return nil
}

// Tips gets the current set of body tips.
func (bts *bodyTipsStore) Tips(dbContext model.DBReader, stagingArea *model.StagingArea) ([]*externalapi.DomainHash, error) {
	shard := bts.stagingShard(stagingArea)
	if shard.staged {
		return shard.tips, nil
	}
	if bts.cache != nil {
		return bts.cache, nil
	}

	has, err := dbContext.Has(key)
	if err != nil {
		return nil, err
	}
	if !has {
		return nil, nil
	}

	tipsBytes, err := dbContext.Get(key)
	if err != nil {
		return nil, err
	}
	tips, err := deserializeTips(tipsBytes)
	if err != nil {
		return nil, err
	}
	bts.cache = tips
	return tips, nil
}

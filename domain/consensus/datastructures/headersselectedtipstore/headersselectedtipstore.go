// Package headersselectedtipstore holds the current headers-selected tip
// and its blue work, answering "is this the best known header chain"
// without loading full GHOSTDAG data.
package headersselectedtipstore

import (
	"github.com/kaspanet/kaspad/domain/consensus/database/serialization"
	"github.com/kaspanet/kaspad/domain/consensus/model"
	"github.com/kaspanet/kaspad/domain/consensus/model/externalapi"
	"github.com/kaspanet/kaspad/domain/consensus/utils/dbkeys"
)

var key = dbkeys.MakeBucket([]byte("headers-selected-tip")).Key([]byte("tip"))

type headersSelectedTipStore struct {
	cache *externalapi.SortableBlock
}

// New instantiates a new HeadersSelectedTipStore.
func New() model.HeadersSelectedTipStore {
	return &headersSelectedTipStore{}
}

type stagingShard struct {
	store       *headersSelectedTipStore
	selectedTip *externalapi.SortableBlock
}

func (hsts *headersSelectedTipStore) stagingShard(stagingArea *model.StagingArea) *stagingShard {
	return stagingArea.GetOrCreateShard(model.StagingShardIDHeadersSelTip, func() model.StagingShard {
		return &stagingShard{store: hsts}
	}).(*stagingShard)
}

// Stage stages a new selected tip.
func (hsts *headersSelectedTipStore) Stage(stagingArea *model.StagingArea, selectedTip *externalapi.SortableBlock) {
	hsts.stagingShard(stagingArea).selectedTip = selectedTip
}

// IsStaged implements model.Store.
func (hsts *headersSelectedTipStore) IsStaged(stagingArea *model.StagingArea) bool {
	return hsts.stagingShard(stagingArea).selectedTip != nil
}

func (shard *stagingShard) Commit(dbTx model.DBTransaction) error {
	if shard.selectedTip == nil {
		return nil
	}
	tipBytes, err := serialization.SerializeSortableBlock(shard.selectedTip)
	if err != nil {
		return err
	}
	err = dbTx.Put(key, tipBytes)
	if err != nil {
		return err
	}
	shard.store.cache = shard.selectedTip
	return nil
}

// SelectedTip gets the current headers-selected tip.
func (hsts *headersSelectedTipStore) SelectedTip(dbContext model.DBReader, stagingArea *model.StagingArea) (*externalapi.SortableBlock, error) {
	shard := hsts.stagingShard(stagingArea)
	if shard.selectedTip != nil {
		return shard.selectedTip, nil
	}
	if hsts.cache != nil {
		return hsts.cache, nil
	}

	tipBytes, err := dbContext.Get(key)
	if err != nil {
		return nil, err
	}
	tip, err := serialization.DeserializeSortableBlock(tipBytes)
	if err != nil {
		return nil, err
	}
	hsts.cache = tip
	return tip, nil
}

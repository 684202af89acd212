// Package virtualstatestore holds the single current virtual-block state:
// its parents and the GHOSTDAG data computed over them.
package virtualstatestore

import (
	"github.com/kaspanet/kaspad/domain/consensus/database/serialization"
	"github.com/kaspanet/kaspad/domain/consensus/model"
	"github.com/kaspanet/kaspad/domain/consensus/model/externalapi"
	"github.com/kaspanet/kaspad/domain/consensus/utils/dbkeys"
)

var key = dbkeys.MakeBucket([]byte("virtual-state")).Key([]byte("state"))

type virtualStateStore struct {
	cache *externalapi.VirtualState
}

// New instantiates a new VirtualStateStore.
func New() model.VirtualStateStore {
	return &virtualStateStore{}
}

type stagingShard struct {
	store *virtualStateStore
	state *externalapi.VirtualState
}

func (vss *virtualStateStore) stagingShard(stagingArea *model.StagingArea) *stagingShard {
	return stagingArea.GetOrCreateShard(model.StagingShardIDVirtualState, func() model.StagingShard {
		return &stagingShard{store: vss}
	}).(*stagingShard)
}

// Stage stages a new virtual state.
func (vss *virtualStateStore) Stage(stagingArea *model.StagingArea, state *externalapi.VirtualState) {
	vss.stagingShard(stagingArea).state = state
}

// IsStaged implements model.Store.
func (vss *virtualStateStore) IsStaged(stagingArea *model.StagingArea) bool {
	return vss.stagingShard(stagingArea).state != nil
}

func (shard *stagingShard) Commit(dbTx model.DBTransaction) error {
	if shard.state == nil {
		return nil
	}
	stateBytes, err := serialization.SerializeVirtualState(shard.state)
	if err != nil {
		return err
	}
	err = dbTx.Put(key, stateBytes)
	if err != nil {
		return err
	}
	shard.store.cache = shard.state
	return nil
}

// State gets the current virtual state.
func (vss *virtualStateStore) State(dbContext model.DBReader, stagingArea *model.StagingArea) (*externalapi.VirtualState, error) {
	shard := vss.stagingShard(stagingArea)
	if shard.state != nil {
		return shard.state, nil
	}
	if vss.cache != nil {
		return vss.cache, nil
	}

	stateBytes, err := dbContext.Get(key)
	if err != nil {
		return nil, err
	}
	state, err := serialization.DeserializeVirtualState(stateBytes)
	if err != nil {
		return nil, err
	}
	vss.cache = state
	return state, nil
}

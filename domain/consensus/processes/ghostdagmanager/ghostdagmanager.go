// Package ghostdagmanager implements the GHOSTDAG protocol for a single
// DAG level: choosing each block's selected parent, computing its ordered
// mergeset of blues and reds under the k-cluster anticone constraint, and
// deriving its blue score and blue work.
package ghostdagmanager

import (
	"math/big"

	"github.com/kaspanet/kaspad/domain/consensus/model"
	"github.com/kaspanet/kaspad/domain/consensus/model/externalapi"
)

type ghostdagManager struct {
	databaseContext    model.DBReader
	dagTopologyManager model.DAGTopologyManager
	ghostdagDataStore  model.GHOSTDAGDataStore
	k                  externalapi.KType
	genesisHash        *externalapi.DomainHash
}

// New instantiates a new GHOSTDAGManager for a single level.
func New(
	databaseContext model.DBReader,
	dagTopologyManager model.DAGTopologyManager,
	ghostdagDataStore model.GHOSTDAGDataStore,
	k externalapi.KType,
	genesisHash *externalapi.DomainHash) model.GHOSTDAGManager {

	return &ghostdagManager{
		databaseContext:    databaseContext,
		dagTopologyManager: dagTopologyManager,
		ghostdagDataStore:  ghostdagDataStore,
		k:                  k,
		genesisHash:        genesisHash,
	}
}

// OriginGHOSTDAGData is the sentinel tuple attached to the virtual
// genesis: no selected parent, zero blue score and blue work.
func (gm *ghostdagManager) OriginGHOSTDAGData() *externalapi.BlockGHOSTDAGData {
	return &externalapi.BlockGHOSTDAGData{
		BlueScore:          0,
		BlueWork:           big.NewInt(0),
		SelectedParent:     nil,
		MergeSetBlues:      nil,
		MergeSetReds:       nil,
		BluesAnticoneSizes: make(map[externalapi.DomainHash]externalapi.KType),
	}
}

// GenesisGHOSTDAGData is the GHOSTDAG tuple of the genesis block: its
// selected parent is the origin sentinel, and it is its own sole blue.
func (gm *ghostdagManager) GenesisGHOSTDAGData() *externalapi.BlockGHOSTDAGData {
	return &externalapi.BlockGHOSTDAGData{
		BlueScore:      1,
		BlueWork:       big.NewInt(0),
		SelectedParent: externalapi.OriginHash,
		MergeSetBlues:  []*externalapi.DomainHash{gm.genesisHash},
		MergeSetReds:   nil,
		BluesAnticoneSizes: map[externalapi.DomainHash]externalapi.KType{
			*gm.genesisHash: 0,
		},
	}
}

// GHOSTDAG runs the protocol for a new block with the given parents and
// returns its full GHOSTDAG tuple. See ghostdag.go for the core
// mergeset-coloring loop.
func (gm *ghostdagManager) GHOSTDAG(stagingArea *model.StagingArea, parents []*externalapi.DomainHash) (*externalapi.BlockGHOSTDAGData, error) {
	return gm.ghostdag(stagingArea, parents)
}

// Package windowmanager computes a block's difficulty-adjustment window:
// a fixed-size, GHOSTDAG-ordered slice of blue ancestors used to average
// past difficulty targets.
package windowmanager

import (
	"github.com/pkg/errors"

	"github.com/kaspanet/kaspad/domain/consensus/model"
	"github.com/kaspanet/kaspad/domain/consensus/model/externalapi"
)

type windowManager struct {
	databaseContext   model.DBReader
	ghostdagDataStore model.GHOSTDAGDataStore
	windowSize        uint64
	genesisHash       *externalapi.DomainHash
}

// New instantiates a WindowManager producing windows of windowSize
// blocks, padded with genesisHash once the chain runs out.
func New(databaseContext model.DBReader, ghostdagDataStore model.GHOSTDAGDataStore,
	windowSize uint64, genesisHash *externalapi.DomainHash) model.WindowManager {

	return &windowManager{
		databaseContext:   databaseContext,
		ghostdagDataStore: ghostdagDataStore,
		windowSize:        windowSize,
		genesisHash:       genesisHash,
	}
}

// BlockWindow returns the blues in ghostdagData's past, walking the
// selected-parent chain and taking each visited block's own merge-set
// blues in GHOSTDAG order, until windowSize hashes are collected. If the
// chain runs out first, the window is padded with the genesis hash.
func (wm *windowManager) BlockWindow(stagingArea *model.StagingArea, ghostdagData *externalapi.BlockGHOSTDAGData,
	windowType model.WindowType) ([]*externalapi.DomainHash, error) {

	if windowType != model.FullDifficultyWindow {
		return nil, errors.Errorf("windowmanager: unsupported window type %d", windowType)
	}

	window := make([]*externalapi.DomainHash, 0, wm.windowSize)
	current := ghostdagData
	for uint64(len(window)) < wm.windowSize && current.SelectedParent != nil {
		for _, blue := range current.MergeSetBlues {
			window = append(window, blue)
			if uint64(len(window)) == wm.windowSize {
				break
			}
		}
		if uint64(len(window)) == wm.windowSize {
			break
		}

		next, err := wm.ghostdagDataStore.Get(wm.databaseContext, stagingArea, current.SelectedParent)
		if err != nil {
			return nil, err
		}
		current = next
	}

	for uint64(len(window)) < wm.windowSize {
		window = append(window, wm.genesisHash)
	}

	return window, nil
}

package pruningproofmanager

import (
	"github.com/kaspanet/kaspad/domain/consensus/model"
	"github.com/kaspanet/kaspad/domain/consensus/model/externalapi"
	"github.com/kaspanet/kaspad/domain/consensus/ruleerrors"
)

// GetGHOSTDAGChainKDepth walks blockHash's selected-parent chain at level
// 0, collecting up to k+1 hashes, stopping early at genesis, ORIGIN, or
// wherever the level-0 ghostdag store runs out of data.
func (pm *pruningProofManager) GetGHOSTDAGChainKDepth(stagingArea *model.StagingArea,
	blockHash *externalapi.DomainHash) ([]*externalapi.DomainHash, error) {

	hashes := make([]*externalapi.DomainHash, 0, int(pm.k)+1)
	current := blockHash

	for i := 0; i <= int(pm.k); i++ {
		hashes = append(hashes, current)

		has, err := pm.ghostdagStores[0].Has(pm.databaseContext, stagingArea, current)
		if err != nil {
			return nil, err
		}
		if !has {
			break
		}
		compact, err := pm.ghostdagStores[0].GetCompact(pm.databaseContext, stagingArea, current)
		if err != nil {
			return nil, err
		}
		if compact.SelectedParent == nil {
			break
		}
		if compact.SelectedParent.Equal(pm.genesisHash) || compact.SelectedParent.IsOrigin() {
			break
		}
		current = compact.SelectedParent
	}

	return hashes, nil
}

// CalculatePruningPointAnticoneAndTrustedData implements §4.8: it builds
// the trusted sub-DAG that accompanies a pruning point when shipped to a
// syncing peer, so the peer can validate the claimed anticone without
// replaying the chain from genesis.
func (pm *pruningProofManager) CalculatePruningPointAnticoneAndTrustedData(stagingArea *model.StagingArea,
	pruningPointHash *externalapi.DomainHash, virtualParents []*externalapi.DomainHash) (*externalapi.PruningPointTrustedData, error) {

	rawAnticone, err := pm.dagTraversalManager.Anticone(stagingArea, pruningPointHash, virtualParents, nil)
	if err != nil {
		return nil, err
	}
	sortedAnticone, err := pm.ghostdagManager.SortBlocks(stagingArea, rawAnticone)
	if err != nil {
		return nil, err
	}
	anticone := append([]*externalapi.DomainHash{pruningPointHash}, sortedAnticone...)

	// Blocks already in the anticone are full blocks the node holds in its
	// own DAG view, not header-only padding, and - being the anticone - are
	// by definition not reachability ancestors of the pruning point. Any
	// daaWindowBlocks entry that coincides with one of them must carry
	// IsHeaderOnly: false so ApplyPruningPointProof doesn't reject them for
	// failing an ancestry check that was never meant to apply to them.
	isAnticoneMember := make(map[externalapi.DomainHash]struct{}, len(anticone))
	for _, block := range anticone {
		isAnticoneMember[*block] = struct{}{}
	}

	daaWindowBlocks := make(map[externalapi.DomainHash]*externalapi.TrustedHeader)
	ghostdagBlocks := make(map[externalapi.DomainHash]*externalapi.BlockGHOSTDAGData)

	for _, block := range anticone {
		ghostdagData, err := pm.ghostdagStores[0].Get(pm.databaseContext, stagingArea, block)
		if err != nil {
			return nil, err
		}

		window, err := pm.windowManager.BlockWindow(stagingArea, ghostdagData, model.FullDifficultyWindow)
		if err != nil {
			return nil, err
		}
		for _, windowHash := range window {
			if _, exists := daaWindowBlocks[*windowHash]; exists {
				continue
			}
			header, err := pm.headerStore.BlockHeader(pm.databaseContext, stagingArea, windowHash)
			if err != nil {
				return nil, err
			}
			windowGHOSTDAGData, err := pm.ghostdagStores[0].Get(pm.databaseContext, stagingArea, windowHash)
			if err != nil {
				return nil, err
			}
			_, isAnticone := isAnticoneMember[*windowHash]
			daaWindowBlocks[*windowHash] = &externalapi.TrustedHeader{
				Header:       header,
				GHOSTDAGData: windowGHOSTDAGData,
				IsHeaderOnly: !isAnticone,
			}
		}

		chain, err := pm.GetGHOSTDAGChainKDepth(stagingArea, block)
		if err != nil {
			return nil, err
		}
		for _, chainHash := range chain {
			if _, exists := ghostdagBlocks[*chainHash]; exists {
				continue
			}
			chainGHOSTDAGData, err := pm.ghostdagStores[0].Get(pm.databaseContext, stagingArea, chainHash)
			if err != nil {
				return nil, err
			}
			ghostdagBlocks[*chainHash] = chainGHOSTDAGData

			if _, exists := daaWindowBlocks[*chainHash]; !exists {
				header, err := pm.headerStore.BlockHeader(pm.databaseContext, stagingArea, chainHash)
				if err != nil {
					return nil, err
				}
				_, isAnticone := isAnticoneMember[*chainHash]
				daaWindowBlocks[*chainHash] = &externalapi.TrustedHeader{
					Header:       header,
					GHOSTDAGData: chainGHOSTDAGData,
					IsHeaderOnly: !isAnticone,
				}
			}
		}
	}

	if err := pm.fillAnticoneContiguityGap(stagingArea, anticone, daaWindowBlocks); err != nil {
		return nil, err
	}

	daaWindowBlocksSlice := make([]*externalapi.TrustedHeader, 0, len(daaWindowBlocks))
	for _, trusted := range daaWindowBlocks {
		daaWindowBlocksSlice = append(daaWindowBlocksSlice, trusted)
	}
	ghostdagBlocksSlice := make([]*externalapi.BlockGHOSTDAGDataHashPair, 0, len(ghostdagBlocks))
	for hash, data := range ghostdagBlocks {
		hashCopy := hash
		ghostdagBlocksSlice = append(ghostdagBlocksSlice, &externalapi.BlockGHOSTDAGDataHashPair{Hash: &hashCopy, GHOSTDAGData: data})
	}

	return &externalapi.PruningPointTrustedData{
		Anticone:        anticone,
		DAAWindowBlocks: daaWindowBlocksSlice,
		GHOSTDAGBlocks:  ghostdagBlocksSlice,
	}, nil
}

// fillAnticoneContiguityGap walks backward from the anticone over level-0
// relations so the shared sub-DAG between the pruning point and every DAA
// window frontier is contiguous, letting the receiver rebuild reachability
// locally. The walk halts along any branch once it drops below the
// minimum blue work already present in daaWindowBlocks.
func (pm *pruningProofManager) fillAnticoneContiguityGap(stagingArea *model.StagingArea, anticone []*externalapi.DomainHash,
	daaWindowBlocks map[externalapi.DomainHash]*externalapi.TrustedHeader) error {

	if len(daaWindowBlocks) == 0 {
		return nil
	}
	var minBlueWorkValue *externalapi.TrustedHeader
	for _, trusted := range daaWindowBlocks {
		if minBlueWorkValue == nil || trusted.Header.BlueWork.Cmp(minBlueWorkValue.Header.BlueWork) < 0 {
			minBlueWorkValue = trusted
		}
	}

	queue := make([]*externalapi.DomainHash, len(anticone))
	copy(queue, anticone)
	visited := make(map[externalapi.DomainHash]struct{}, len(anticone)+1)
	visited[*externalapi.OriginHash] = struct{}{}
	for _, block := range anticone {
		visited[*block] = struct{}{}
	}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		if _, exists := daaWindowBlocks[*current]; !exists {
			header, err := pm.headerStore.BlockHeader(pm.databaseContext, stagingArea, current)
			if err != nil {
				return err
			}
			if header.BlueWork.Cmp(minBlueWorkValue.Header.BlueWork) < 0 {
				continue
			}
			ghostdagData, err := pm.ghostdagStores[0].Get(pm.databaseContext, stagingArea, current)
			if err != nil {
				return err
			}
			// current is never an anticone member: visited is pre-seeded
			// with every anticone hash, so the walk never re-adds one.
			daaWindowBlocks[*current] = &externalapi.TrustedHeader{Header: header, GHOSTDAGData: ghostdagData, IsHeaderOnly: true}
		}

		parents, err := pm.relationStores[0].BlockParents(pm.databaseContext, stagingArea, current)
		if err != nil {
			return err
		}
		for _, parent := range parents {
			if _, exists := visited[*parent]; exists {
				continue
			}
			visited[*parent] = struct{}{}
			queue = append(queue, parent)
		}
	}

	return nil
}

// GetPruningPointAnticoneAndTrustedData returns the current pruning
// point's trusted anticone data, computing and caching it on first access
// and invalidating the cache whenever the pruning point has since moved.
func (pm *pruningProofManager) GetPruningPointAnticoneAndTrustedData(stagingArea *model.StagingArea) (*externalapi.PruningPointTrustedData, error) {
	pruningPoint, err := pm.pruningStore.PruningPoint(pm.databaseContext, stagingArea)
	if err != nil {
		return nil, err
	}

	pm.cacheMutex.Lock()
	if pm.cachedAnticone != nil && pm.cachedAnticone.pruningPointHash.Equal(pruningPoint) {
		data := pm.cachedAnticone.trustedData
		pm.cacheMutex.Unlock()
		return data, nil
	}
	pm.cacheMutex.Unlock()

	virtualState, err := pm.virtualStateStore.State(pm.databaseContext, stagingArea)
	if err != nil {
		return nil, err
	}
	pruningPointBlueScore, err := pm.headerStore.BlueScore(pm.databaseContext, stagingArea, pruningPoint)
	if err != nil {
		return nil, err
	}

	if virtualState.GHOSTDAGData.BlueScore < pruningPointBlueScore+pm.anticoneFinalizationDepth {
		return nil, ruleerrors.ErrPruningPointInsufficientDepth
	}

	trustedData, err := pm.CalculatePruningPointAnticoneAndTrustedData(stagingArea, pruningPoint, virtualState.Parents)
	if err != nil {
		return nil, err
	}

	pm.cacheMutex.Lock()
	pm.cachedAnticone = &cachedPruningPointData{pruningPointHash: pruningPoint, trustedData: trustedData}
	pm.cacheMutex.Unlock()

	return trustedData, nil
}

// GetPruningPointProof returns the proof for the current pruning point,
// building it on first access and caching it until the pruning point
// moves.
func (pm *pruningProofManager) GetPruningPointProof(stagingArea *model.StagingArea) (externalapi.PruningPointProof, error) {
	pruningPoint, err := pm.pruningStore.PruningPoint(pm.databaseContext, stagingArea)
	if err != nil {
		return nil, err
	}

	pm.cacheMutex.Lock()
	if pm.cachedProof != nil && pm.cachedProof.pruningPointHash.Equal(pruningPoint) {
		proof := pm.cachedProof.proof
		pm.cacheMutex.Unlock()
		return proof, nil
	}
	pm.cacheMutex.Unlock()

	proof, err := pm.BuildPruningPointProof(stagingArea, pruningPoint)
	if err != nil {
		return nil, err
	}

	pm.cacheMutex.Lock()
	pm.cachedProof = &cachedPruningPointData{pruningPointHash: pruningPoint, proof: proof}
	pm.cacheMutex.Unlock()

	return proof, nil
}

package pruningproofmanager

import (
	"math"
	"sort"

	"github.com/kaspanet/kaspad/domain/consensus/model"
	"github.com/kaspanet/kaspad/domain/consensus/model/externalapi"
	"github.com/kaspanet/kaspad/domain/consensus/ruleerrors"
	"github.com/kaspanet/kaspad/domain/consensus/utils/hashserialization"
	"github.com/pkg/errors"
)

// ImportPruningPoints records every header in points as a past pruning
// point by index, inserting any of them not yet known into the headers
// store, then stages the last one as the (candidate) pruning point.
func (pm *pruningProofManager) ImportPruningPoints(stagingArea *model.StagingArea, points []*externalapi.DomainBlockHeader) error {
	for i, header := range points {
		headerHash := hashserialization.HeaderHash(header)
		pm.pastPruningPointsStore.Stage(stagingArea, uint64(i), headerHash)

		has, err := pm.headerStore.HasBlockHeader(pm.databaseContext, stagingArea, headerHash)
		if err != nil {
			return err
		}
		if has {
			continue
		}

		blockLevel := pm.parentsManager.BlockLevel(header)
		pm.headerStore.Stage(stagingArea, headerHash, header, blockLevel)
	}

	newPruningPoint := hashserialization.HeaderHash(points[len(points)-1])
	pm.pruningStore.StagePruningPoint(stagingArea, newPruningPoint, newPruningPoint, uint64(len(points)-1))
	pm.pruningStore.StageHistoryRoot(stagingArea, newPruningPoint)
	return nil
}

// ApplyPruningPointProof implements §4.7: it ingests an already-validated
// proof plus its trusted anticone set into the permanent stores, then
// installs the resulting virtual state.
func (pm *pruningProofManager) ApplyPruningPointProof(stagingArea *model.StagingArea, proof externalapi.PruningPointProof,
	trustedSet []*externalapi.TrustedHeader) error {

	levelZero := make([]*externalapi.DomainBlockHeader, len(proof[0]))
	copy(levelZero, proof[0])

	proofZeroSet := make(map[externalapi.DomainHash]struct{}, len(levelZero))
	for _, header := range levelZero {
		proofZeroSet[*hashserialization.HeaderHash(header)] = struct{}{}
	}

	trustedGHOSTDAGData := make(map[externalapi.DomainHash]*externalapi.BlockGHOSTDAGData, len(trustedSet))
	for _, trusted := range trustedSet {
		trustedHash := hashserialization.HeaderHash(trusted.Header)
		trustedGHOSTDAGData[*trustedHash] = trusted.GHOSTDAGData
		if _, ok := proofZeroSet[*trustedHash]; ok {
			continue
		}
		levelZero = append(levelZero, trusted.Header)
	}

	sort.SliceStable(levelZero, func(i, j int) bool {
		return levelZero[i].BlueWork.Cmp(levelZero[j].BlueWork) < 0
	})

	proof = append(externalapi.PruningPointProof{levelZero}, proof[1:]...)

	pruningPointHeader := proof[0][len(proof[0])-1]
	pruningPoint := hashserialization.HeaderHash(pruningPointHeader)

	if err := pm.populateReachabilityAndHeaders(stagingArea, proof); err != nil {
		return err
	}

	for _, trusted := range trustedSet {
		// Only header-only trusted blocks - DAA-window and chain padding
		// pulled in solely for their header - are required to be
		// reachability ancestors of the pruning point. Full trusted
		// blocks are the pruning point's own anticone, which by
		// definition is not in its past.
		if !trusted.IsHeaderOnly {
			continue
		}
		trustedHash := hashserialization.HeaderHash(trusted.Header)
		isAncestor, err := pm.reachabilityManager.IsDAGAncestorOf(stagingArea, trustedHash, pruningPoint)
		if err != nil {
			return err
		}
		if !isAncestor {
			return errors.Wrapf(ruleerrors.ErrPruningPointPastMissingReachability,
				"trusted block %s is not in the pruning point's past", trustedHash)
		}
	}

	for level, headers := range proof {
		l := externalapi.BlockLevel(level)
		levelAncestors := map[externalapi.DomainHash]struct{}{*externalapi.OriginHash: {}}

		for _, header := range headers {
			headerHash := hashserialization.HeaderHash(header)

			parents := make([]*externalapi.DomainHash, 0, len(header.ParentsAtLevel(l)))
			for _, parent := range pm.parentsManager.ParentsAtLevel(header, l) {
				if _, ok := levelAncestors[*parent]; ok {
					parents = append(parents, parent)
				}
			}
			if len(parents) == 0 {
				parents = []*externalapi.DomainHash{externalapi.OriginHash}
			}

			pm.relationStores[level].Stage(stagingArea, headerHash, parents)

			if level == 0 {
				var ghostdagData *externalapi.BlockGHOSTDAGData
				if trustedData, ok := trustedGHOSTDAGData[*headerHash]; ok {
					ghostdagData = trustedData
				} else {
					computed, err := pm.ghostdagManager.GHOSTDAG(stagingArea, parents)
					if err != nil {
						return err
					}
					ghostdagData = &externalapi.BlockGHOSTDAGData{
						BlueScore:          header.BlueScore,
						BlueWork:           header.BlueWork,
						SelectedParent:     computed.SelectedParent,
						MergeSetBlues:      computed.MergeSetBlues,
						MergeSetReds:       computed.MergeSetReds,
						BluesAnticoneSizes: computed.BluesAnticoneSizes,
					}
				}
				pm.ghostdagStores[0].Stage(stagingArea, headerHash, ghostdagData)
			}

			levelAncestors[*headerHash] = struct{}{}
		}
	}

	virtualParents := []*externalapi.DomainHash{pruningPoint}
	virtualGHOSTDAGData, err := pm.ghostdagManager.GHOSTDAG(stagingArea, virtualParents)
	if err != nil {
		return err
	}
	pm.virtualStateStore.Stage(stagingArea, &externalapi.VirtualState{
		Parents:      virtualParents,
		GHOSTDAGData: virtualGHOSTDAGData,
	})

	pm.bodyTipsStore.Stage(stagingArea, virtualParents)
	pm.headersSelectedTipStore.Stage(stagingArea, &externalapi.SortableBlock{Hash: pruningPoint, BlueWork: pruningPointHeader.BlueWork})
	pm.selectedChainStore.InitWithPruningPoint(stagingArea, pruningPoint)
	pm.depthStore.Stage(stagingArea, pruningPoint, externalapi.OriginHash, externalapi.OriginHash)

	return nil
}

// dagEntry is the generalized, all-levels-parents view of a single header
// used while populating the unified reachability tree.
type dagEntry struct {
	header  *externalapi.DomainBlockHeader
	parents []*externalapi.DomainHash
}

// estimateProofUniqueSize bounds the number of distinct headers a proof is
// expected to carry, used only to presize the population maps; an
// inaccurate estimate costs a few extra allocations; it never affects
// correctness.
func (pm *pruningProofManager) estimateProofUniqueSize(proof externalapi.PruningPointProof) int {
	approxHistorySize := float64(proof[0][0].DAAScore)
	approxUniqueFullLevels := math.Log2(approxHistorySize / float64(pm.pruningProofM))
	if approxUniqueFullLevels < 0 {
		approxUniqueFullLevels = 0
	}
	total := 0
	for _, level := range proof {
		total += len(level)
	}
	capped := int(approxUniqueFullLevels+1) * int(pm.pruningProofM)
	if total < capped {
		return total
	}
	return capped
}

// populateReachabilityAndHeaders implements §4.7.1: it builds a single
// reachability oracle and header set over the union of every level's
// parents, processing headers in ascending blue-work order so that every
// ancestor is committed before any descendant that depends on it.
func (pm *pruningProofManager) populateReachabilityAndHeaders(stagingArea *model.StagingArea, proof externalapi.PruningPointProof) error {
	capacityEstimate := pm.estimateProofUniqueSize(proof)
	dag := make(map[externalapi.DomainHash]*dagEntry, capacityEstimate)
	order := make([]*externalapi.SortableBlock, 0, capacityEstimate)

	for _, levelHeaders := range proof {
		for _, header := range levelHeaders {
			headerHash := hashserialization.HeaderHash(header)
			if _, exists := dag[*headerHash]; exists {
				continue
			}

			blockLevel := pm.parentsManager.BlockLevel(header)
			has, err := pm.headerStore.HasBlockHeader(pm.databaseContext, stagingArea, headerHash)
			if err != nil {
				return err
			}
			if !has {
				pm.headerStore.Stage(stagingArea, headerHash, header, blockLevel)
			}

			parentSet := make(map[externalapi.DomainHash]*externalapi.DomainHash)
			for level := externalapi.BlockLevel(0); int(level) <= int(pm.maxBlockLevel); level++ {
				for _, parent := range pm.parentsManager.ParentsAtLevel(header, level) {
					parentSet[*parent] = parent
				}
			}
			parents := make([]*externalapi.DomainHash, 0, len(parentSet))
			for _, parent := range parentSet {
				parents = append(parents, parent)
			}

			dag[*headerHash] = &dagEntry{header: header, parents: parents}
			order = append(order, &externalapi.SortableBlock{Hash: headerHash, BlueWork: header.BlueWork})
		}
	}

	sort.Slice(order, func(i, j int) bool { return order[i].Less(order[j]) })

	for _, block := range order {
		hash := block.Hash
		entry := dag[*hash]

		parentsInDag := make([]*externalapi.SortableBlock, 0, len(entry.parents))
		for _, parent := range entry.parents {
			parentEntry, ok := dag[*parent]
			if !ok {
				continue
			}
			parentsInDag = append(parentsInDag, &externalapi.SortableBlock{Hash: parent, BlueWork: parentEntry.header.BlueWork})
		}
		sort.Slice(parentsInDag, func(i, j int) bool { return parentsInDag[j].Less(parentsInDag[i]) })

		reachabilityParents := make([]*externalapi.SortableBlock, 0, len(parentsInDag))
		for _, candidate := range parentsInDag {
			isAncestorOfExisting := false
			for _, existing := range reachabilityParents {
				isAncestor, err := pm.reachabilityManager.IsDAGAncestorOf(stagingArea, candidate.Hash, existing.Hash)
				if err != nil {
					return err
				}
				if isAncestor {
					isAncestorOfExisting = true
					break
				}
			}
			if !isAncestorOfExisting {
				reachabilityParents = append(reachabilityParents, candidate)
			}
		}

		reachabilityParentHashes := make([]*externalapi.DomainHash, len(reachabilityParents))
		for i, parent := range reachabilityParents {
			reachabilityParentHashes[i] = parent.Hash
		}
		if len(reachabilityParentHashes) == 0 {
			reachabilityParentHashes = []*externalapi.DomainHash{externalapi.OriginHash}
		}

		selectedParent := externalapi.OriginHash
		if len(reachabilityParents) > 0 {
			selectedParent = reachabilityParents[0].Hash
		}

		mergeSet, err := pm.reachabilityMergeSet(stagingArea, dag, selectedParent, reachabilityParentHashes)
		if err != nil {
			return err
		}
		if err := pm.reachabilityManager.AddBlock(stagingArea, hash, selectedParent, mergeSet); err != nil {
			return err
		}
	}

	return nil
}

// reachabilityMergeSet returns every dag-known, parent-reachable block in
// the anticone of selectedParent among parents, mirroring the GHOSTDAG
// manager's mergeset walk (mergeset.go) but over the generalized,
// all-levels dag view built for reachability population rather than a
// single level's store.
func (pm *pruningProofManager) reachabilityMergeSet(stagingArea *model.StagingArea, dag map[externalapi.DomainHash]*dagEntry,
	selectedParent *externalapi.DomainHash, parents []*externalapi.DomainHash) ([]*externalapi.DomainHash, error) {

	mergeSetMap := make(map[externalapi.DomainHash]struct{}, len(parents))
	mergeSetSlice := make([]*externalapi.DomainHash, 0, len(parents))
	selectedParentPast := make(map[externalapi.DomainHash]struct{})
	queue := make([]*externalapi.DomainHash, 0, len(parents))

	for _, parent := range parents {
		if parent.Equal(selectedParent) {
			continue
		}
		mergeSetMap[*parent] = struct{}{}
		mergeSetSlice = append(mergeSetSlice, parent)
		queue = append(queue, parent)
	}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		entry, ok := dag[*current]
		if !ok {
			continue
		}
		for _, parent := range entry.parents {
			if _, ok := mergeSetMap[*parent]; ok {
				continue
			}
			if _, ok := selectedParentPast[*parent]; ok {
				continue
			}
			if _, ok := dag[*parent]; !ok {
				continue
			}

			isAncestorOfSelectedParent, err := pm.reachabilityManager.IsDAGAncestorOf(stagingArea, parent, selectedParent)
			if err != nil {
				return nil, err
			}
			if isAncestorOfSelectedParent {
				selectedParentPast[*parent] = struct{}{}
				continue
			}

			mergeSetMap[*parent] = struct{}{}
			mergeSetSlice = append(mergeSetSlice, parent)
			queue = append(queue, parent)
		}
	}

	return mergeSetSlice, nil
}

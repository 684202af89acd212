package pruningproofmanager

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/kaspanet/kaspad/domain/consensus/model"
	"github.com/kaspanet/kaspad/domain/consensus/model/externalapi"
	"github.com/kaspanet/kaspad/domain/consensus/ruleerrors"
	"github.com/kaspanet/kaspad/domain/consensus/utils/hashserialization"
)

// ValidatePruningPointProof decides whether proof is well-formed and
// carries at least as much work as the local view. It never mutates
// permanent state: every store it writes lives in a disposable temp
// context, torn down when this function returns. The permanent stores are
// only read, for the work comparison.
func (pm *pruningProofManager) ValidatePruningPointProof(proof externalapi.PruningPointProof) error {
	numLevels := int(pm.maxBlockLevel) + 1
	if len(proof) != numLevels {
		return errors.Wrapf(ruleerrors.ErrProofNotEnoughLevels, "expected %d levels, got %d", numLevels, len(proof))
	}
	if len(proof[0]) == 0 {
		return ruleerrors.ErrProofLevelZeroEmpty
	}

	ppHeader := proof[0][len(proof[0])-1]
	ppHash := hashserialization.HeaderHash(ppHeader)
	ppLevel := pm.parentsManager.BlockLevel(ppHeader)

	tempCtx, err := newTempProofContext(pm.maxBlockLevel, pm.k, pm.genesisHash)
	if err != nil {
		return err
	}

	selectedTipByLevel := make([]*externalapi.DomainHash, numLevels)

	for level := int(pm.maxBlockLevel); level >= 0; level-- {
		if pm.consensusExiting() {
			return ruleerrors.ErrPruningValidationInterrupted
		}

		l := externalapi.BlockLevel(level)
		selectedTip, err := pm.ingestLevelProof(tempCtx, l, proof[level])
		if err != nil {
			return err
		}
		selectedTipByLevel[level] = selectedTip

		if level < int(pm.maxBlockLevel) {
			blockAtDepthMNextLevel, err := blockAtDepth(tempCtx.databaseContext, tempCtx.stagingArea,
				tempCtx.ghostdagStores[level+1], selectedTipByLevel[level+1], pm.pruningProofM)
			if err != nil {
				return err
			}
			has, err := tempCtx.relationStores[level].Has(tempCtx.databaseContext, tempCtx.stagingArea, blockAtDepthMNextLevel)
			if err != nil {
				return err
			}
			if !has {
				return errors.Wrapf(ruleerrors.ErrProofMissingBlockAtDepthMFromNext,
					"level %d is missing the block at depth M from level %d", level, level+1)
			}
		}

		if err := pm.validateProofSelectedTip(selectedTip, l, ppLevel, ppHash, ppHeader); err != nil {
			return err
		}
	}

	return pm.validateProofSufficientWork(tempCtx, selectedTipByLevel)
}

// validateProofSelectedTip checks invariant 5: a level's selected tip must
// be the pruning point itself at or below the pruning point's own level,
// or one of the pruning point's raw level-L parents above it.
func (pm *pruningProofManager) validateProofSelectedTip(selectedTip *externalapi.DomainHash, level, ppLevel externalapi.BlockLevel,
	ppHash *externalapi.DomainHash, ppHeader *externalapi.DomainBlockHeader) error {

	if level <= ppLevel {
		if !selectedTip.Equal(ppHash) {
			return errors.Wrapf(ruleerrors.ErrProofMissesBlocksBelowPruningPoint,
				"level %d selected tip %s is not the pruning point", level, selectedTip)
		}
		return nil
	}

	for _, parent := range pm.parentsManager.ParentsAtLevel(ppHeader, level) {
		if parent.Equal(selectedTip) {
			return nil
		}
	}
	return errors.Wrapf(ruleerrors.ErrProofMissesBlocksBelowPruningPoint,
		"level %d selected tip %s is not a parent of the pruning point", level, selectedTip)
}

// ingestLevelProof stages headers into level's temp relations, ghostdag and
// reachability stores in input order, folding the ghostdag selected-parent
// rule over each new header to track the level's selected tip.
func (pm *pruningProofManager) ingestLevelProof(tempCtx *tempProofContext, level externalapi.BlockLevel,
	headers []*externalapi.DomainBlockHeader) (*externalapi.DomainHash, error) {

	relationStore := tempCtx.relationStores[level]
	ghostdagStore := tempCtx.ghostdagStores[level]
	reachabilityManager := tempCtx.reachabilityManagers[level]
	ghostdagManager := tempCtx.ghostdagManagers[level]

	var selectedTip *externalapi.DomainHash

	for i, header := range headers {
		headerHash := hashserialization.HeaderHash(header)
		headerLevel := pm.parentsManager.BlockLevel(header)
		if headerLevel < level {
			return nil, errors.Wrapf(ruleerrors.ErrProofWrongBlockLevel,
				"header %s has block level %d, lower than proof level %d", headerHash, headerLevel, level)
		}

		knownParents := make([]*externalapi.DomainHash, 0, len(header.ParentsAtLevel(level)))
		for _, parent := range pm.parentsManager.ParentsAtLevel(header, level) {
			has, err := relationStore.Has(tempCtx.databaseContext, tempCtx.stagingArea, parent)
			if err != nil {
				return nil, err
			}
			if has {
				knownParents = append(knownParents, parent)
			}
		}
		if len(knownParents) == 0 && i != 0 {
			return nil, errors.Wrapf(ruleerrors.ErrProofHeaderWithNoKnownParents,
				"level %d: header %s has no known parents", level, headerHash)
		}
		if len(knownParents) == 0 {
			knownParents = []*externalapi.DomainHash{externalapi.OriginHash}
		}

		isDuplicate, err := relationStore.Has(tempCtx.databaseContext, tempCtx.stagingArea, headerHash)
		if err != nil {
			return nil, err
		}
		if isDuplicate {
			return nil, errors.Wrapf(ruleerrors.ErrProofDuplicateHeaderAtLevel, "level %d: duplicate header %s", level, headerHash)
		}

		relationStore.Stage(tempCtx.stagingArea, headerHash, knownParents)

		ghostdagData, err := ghostdagManager.GHOSTDAG(tempCtx.stagingArea, knownParents)
		if err != nil {
			return nil, err
		}
		ghostdagStore.Stage(tempCtx.stagingArea, headerHash, ghostdagData)

		if selectedTip == nil {
			selectedTip = headerHash
		} else {
			selectedTip, err = ghostdagManager.FindSelectedParent(tempCtx.stagingArea,
				[]*externalapi.DomainHash{selectedTip, headerHash})
			if err != nil {
				return nil, err
			}
		}

		mergeSet, err := ghostdagManager.UnorderedMergeSetWithoutSelectedParent(tempCtx.stagingArea, ghostdagData.SelectedParent, knownParents)
		if err != nil {
			return nil, err
		}
		reachableMergeSet := make([]*externalapi.DomainHash, 0, len(mergeSet))
		for _, merged := range mergeSet {
			has, err := relationStore.Has(tempCtx.databaseContext, tempCtx.stagingArea, merged)
			if err != nil {
				return nil, err
			}
			if has {
				reachableMergeSet = append(reachableMergeSet, merged)
			}
		}

		selectedParentForReachability := ghostdagData.SelectedParent
		if selectedParentForReachability == nil {
			selectedParentForReachability = externalapi.OriginHash
		}
		if err := reachabilityManager.AddBlock(tempCtx.stagingArea, headerHash, selectedParentForReachability, reachableMergeSet); err != nil {
			return nil, err
		}
		if selectedTip.Equal(headerHash) {
			if err := reachabilityManager.HintVirtualSelectedParent(tempCtx.stagingArea, headerHash); err != nil {
				return nil, err
			}
		}
	}

	return selectedTip, nil
}

// validateProofSufficientWork implements §4.6 step 4: the proof must carry
// at least as much work as the local view. Levels are tried ascending;
// the first level with a common ancestor decides the outcome immediately
// rather than searching every level for the most favorable one.
func (pm *pruningProofManager) validateProofSufficientWork(tempCtx *tempProofContext,
	selectedTipByLevel []*externalapi.DomainHash) error {

	permStaging := model.NewStagingArea()
	currentPruningPoint, err := pm.pruningStore.PruningPoint(pm.databaseContext, permStaging)
	if err != nil {
		return err
	}
	currentPPHeader, err := pm.headerStore.BlockHeader(pm.databaseContext, permStaging, currentPruningPoint)
	if err != nil {
		return err
	}

	for level := externalapi.BlockLevel(0); int(level) <= int(pm.maxBlockLevel); level++ {
		proofSelectedTip := selectedTipByLevel[level]
		proofTipGD, err := tempCtx.ghostdagStores[level].GetCompact(tempCtx.databaseContext, tempCtx.stagingArea, proofSelectedTip)
		if err != nil {
			return err
		}
		if proofTipGD.BlueScore < 2*pm.pruningProofM {
			continue
		}

		ancestorProofGD, ancestorLocalGD, found, err := pm.findCommonAncestorGhostdagData(tempCtx, level, proofSelectedTip, proofTipGD)
		if err != nil {
			return err
		}
		if !found {
			continue
		}

		selectedTipBlueWorkDiff := new(big.Int).Sub(ancestorProofGD.BlueWork, ancestorLocalGD.BlueWork)
		for _, parent := range pm.parentsManager.ParentsAtLevel(currentPPHeader, level) {
			parentGD, err := pm.ghostdagStores[level].GetCompact(pm.databaseContext, permStaging, parent)
			if err != nil {
				return err
			}
			parentBlueWorkDiff := new(big.Int).Sub(parentGD.BlueWork, ancestorLocalGD.BlueWork)
			if parentBlueWorkDiff.Cmp(selectedTipBlueWorkDiff) >= 0 {
				return ruleerrors.ErrProofInsufficientBlueWork
			}
		}
		return nil
	}

	if currentPruningPoint.Equal(pm.genesisHash) {
		return nil
	}

	for level := int(pm.maxBlockLevel); level >= 0; level-- {
		l := externalapi.BlockLevel(level)
		proofSelectedTip := selectedTipByLevel[level]
		proofTipGD, err := tempCtx.ghostdagStores[l].GetCompact(tempCtx.databaseContext, tempCtx.stagingArea, proofSelectedTip)
		if err != nil {
			return err
		}
		if proofTipGD.BlueScore < 2*pm.pruningProofM {
			continue
		}

		has, err := pm.relationStores[l].Has(pm.databaseContext, permStaging, currentPruningPoint)
		if err != nil {
			return err
		}
		if !has {
			return nil
		}

		parents, err := pm.relationStores[l].BlockParents(pm.databaseContext, permStaging, currentPruningPoint)
		if err != nil {
			return err
		}
		for _, parent := range parents {
			parentGD, err := pm.ghostdagStores[l].GetCompact(pm.databaseContext, permStaging, parent)
			if err != nil {
				return err
			}
			if parentGD.BlueScore < 2*pm.pruningProofM {
				return nil
			}
		}
	}

	return ruleerrors.ErrProofNotEnoughHeaders
}

// findCommonAncestorGhostdagData walks the proof's own selected-parent
// chain at level, starting from proofTip, until it reaches a hash also
// present in the permanent per-level ghostdag store. It returns the
// ghostdag data of both sides at that hash, or found=false if the walk
// reaches ORIGIN first.
func (pm *pruningProofManager) findCommonAncestorGhostdagData(tempCtx *tempProofContext, level externalapi.BlockLevel,
	proofTip *externalapi.DomainHash, proofTipGD *externalapi.CompactGHOSTDAGData) (
	proofGD, localGD *externalapi.CompactGHOSTDAGData, found bool, err error) {

	permStaging := model.NewStagingArea()
	current := proofTip
	currentGD := proofTipGD

	for {
		has, err := pm.ghostdagStores[level].Has(pm.databaseContext, permStaging, current)
		if err != nil {
			return nil, nil, false, err
		}
		if has {
			localData, err := pm.ghostdagStores[level].GetCompact(pm.databaseContext, permStaging, current)
			if err != nil {
				return nil, nil, false, err
			}
			return currentGD, localData, true, nil
		}

		if currentGD.SelectedParent == nil || currentGD.SelectedParent.IsOrigin() {
			return nil, nil, false, nil
		}

		next := currentGD.SelectedParent
		nextGD, err := tempCtx.ghostdagStores[level].GetCompact(tempCtx.databaseContext, tempCtx.stagingArea, next)
		if err != nil {
			return nil, nil, false, err
		}
		current = next
		currentGD = nextGD
	}
}

package pruningproofmanager

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/kaspanet/kaspad/domain/consensus/datastructures/ghostdagdatastore"
	"github.com/kaspanet/kaspad/domain/consensus/model"
	"github.com/kaspanet/kaspad/domain/consensus/model/externalapi"
	"github.com/kaspanet/kaspad/domain/consensus/processes/dagtopologymanager"
	"github.com/kaspanet/kaspad/domain/consensus/processes/ghostdagmanager"
	"github.com/kaspanet/kaspad/domain/consensus/ruleerrors"
	"github.com/kaspanet/kaspad/domain/consensus/utils/hashserialization"
	"github.com/kaspanet/kaspad/domain/consensus/utils/hashset"
)

// buildMaxRootRetries bounds how many times findSufficientRoot doubles its
// target depth before giving up and accepting whatever root it found. At
// depth doubling this comfortably covers any realistically prunable
// history without looping indefinitely against a store bug.
const buildMaxRootRetries = 8

// levelGhostdagContext pairs a level's ghostdag data (permanent at level
// 0, a throwaway recomputation at every other level) with the staging
// area that must be used to read it. Level 0 reads go through the
// caller's real staging area against the permanent store; every other
// level's store was never committed and exists only inside its own
// private staging area.
type levelGhostdagContext struct {
	store       model.GHOSTDAGDataStore
	stagingArea *model.StagingArea
}

// BuildPruningPointProof assembles a pruning point proof for
// pruningPointHash: one header sequence per level, each carrying at least
// 2M blue-score worth of history below that level's selected tip. A
// pruning point at genesis needs no proof; an empty one is returned.
func (pm *pruningProofManager) BuildPruningPointProof(stagingArea *model.StagingArea,
	pruningPointHash *externalapi.DomainHash) (externalapi.PruningPointProof, error) {

	if *pruningPointHash == *pm.genesisHash {
		return externalapi.PruningPointProof{}, nil
	}

	ppHeaderWithLevel, err := pm.headerStore.HeaderWithBlockLevel(pm.databaseContext, stagingArea, pruningPointHash)
	if err != nil {
		return nil, err
	}

	pm.logCurrentDAGLevel(ppHeaderWithLevel.Header)

	levelContexts, selectedTipByLevel, rootByLevel, err := pm.calcGdForAllLevels(stagingArea, ppHeaderWithLevel)
	if err != nil {
		return nil, err
	}

	proof := make(externalapi.PruningPointProof, int(pm.maxBlockLevel)+1)
	for level := int(pm.maxBlockLevel); level >= 0; level-- {
		headers, err := pm.assembleLevelProof(level, levelContexts, selectedTipByLevel, rootByLevel)
		if err != nil {
			return nil, err
		}
		proof[level] = headers
	}

	return proof, nil
}

func (pm *pruningProofManager) assembleLevelProof(level int, levelContexts []levelGhostdagContext,
	selectedTipByLevel, rootByLevel []*externalapi.DomainHash) ([]*externalapi.DomainBlockHeader, error) {

	ctx := levelContexts[level]
	selectedTip := selectedTipByLevel[level]
	root := rootByLevel[level]

	blockAtDepth2M, err := blockAtDepth(pm.databaseContext, ctx.stagingArea, ctx.store, selectedTip, 2*pm.pruningProofM)
	if err != nil {
		return nil, err
	}

	oldRoot := blockAtDepth2M
	if level != int(pm.maxBlockLevel) {
		nextCtx := levelContexts[level+1]
		blockAtDepthMNextLevel, err := blockAtDepth(pm.databaseContext, nextCtx.stagingArea, nextCtx.store,
			selectedTipByLevel[level+1], pm.pruningProofM)
		if err != nil {
			return nil, err
		}

		isAncestor, err := pm.reachabilityManager.IsDAGAncestorOf(ctx.stagingArea, blockAtDepthMNextLevel, blockAtDepth2M)
		if err != nil {
			return nil, err
		}
		if isAncestor {
			oldRoot = blockAtDepthMNextLevel
		} else {
			isAncestor, err = pm.reachabilityManager.IsDAGAncestorOf(ctx.stagingArea, blockAtDepth2M, blockAtDepthMNextLevel)
			if err != nil {
				return nil, err
			}
			if isAncestor {
				oldRoot = blockAtDepth2M
			} else {
				oldRoot, err = pm.findCommonAncestorInChainOfA(ctx, blockAtDepthMNextLevel, blockAtDepth2M)
				if err != nil {
					return nil, err
				}
			}
		}
	}

	rootIsAncestorOfOldRoot, err := pm.reachabilityManager.IsDAGAncestorOf(ctx.stagingArea, root, oldRoot)
	if err != nil {
		return nil, err
	}
	if !rootIsAncestorOfOldRoot {
		return nil, errors.Errorf("pruningproofmanager: level %d root is not an ancestor of the block at depth 2M", level)
	}

	headers, err := pm.collectLevelHeaders(level, ctx, root, selectedTip)
	if err != nil {
		return nil, err
	}

	if err := pm.assertFullChainContained(level, ctx, levelContexts, selectedTipByLevel, selectedTip, headers); err != nil {
		return nil, err
	}

	return headers, nil
}

// collectLevelHeaders walks forward from root in blue-work order,
// keeping every block still reachable as an ancestor of selectedTip.
func (pm *pruningProofManager) collectLevelHeaders(level int, ctx levelGhostdagContext,
	root, selectedTip *externalapi.DomainHash) ([]*externalapi.DomainBlockHeader, error) {

	rootHeader, err := pm.headerStore.BlockHeader(pm.databaseContext, ctx.stagingArea, root)
	if err != nil {
		return nil, err
	}

	queue := newDownHeap(pm.databaseContext, ctx.stagingArea, ctx.store)
	queue.slice = append(queue.slice, &externalapi.SortableBlock{Hash: root, BlueWork: rootHeader.BlueWork})

	visited := hashset.New()
	headers := make([]*externalapi.DomainBlockHeader, 0, 2*int(pm.pruningProofM))

	for len(queue.slice) > 0 {
		current := queue.pop()
		if visited.Contains(current) {
			continue
		}
		visited.Add(current)

		isAncestor, err := pm.reachabilityManager.IsDAGAncestorOf(ctx.stagingArea, current, selectedTip)
		if err != nil {
			return nil, err
		}
		if !isAncestor {
			continue
		}

		header, err := pm.headerStore.BlockHeader(pm.databaseContext, ctx.stagingArea, current)
		if err != nil {
			return nil, err
		}
		headers = append(headers, header)

		children, err := pm.relationStores[level].BlockChildren(pm.databaseContext, ctx.stagingArea, current)
		if err != nil {
			return nil, err
		}
		for _, child := range children {
			childHeader, err := pm.headerStore.BlockHeader(pm.databaseContext, ctx.stagingArea, child)
			if err != nil {
				return nil, err
			}
			queue.slice = append(queue.slice, &externalapi.SortableBlock{Hash: child, BlueWork: childHeader.BlueWork})
		}
		fixHeap(queue)
	}

	return headers, nil
}

// assertFullChainContained verifies that the entire 2M-deep selected
// chain under selectedTip is present among the assembled headers. This
// is kept as a permanent invariant check rather than a debug-only
// assertion: a violation means history was pruned out from under an
// in-progress proof, which corrupts every consumer of the proof.
func (pm *pruningProofManager) assertFullChainContained(level int, ctx levelGhostdagContext, levelContexts []levelGhostdagContext,
	selectedTipByLevel []*externalapi.DomainHash, selectedTip *externalapi.DomainHash,
	headers []*externalapi.DomainBlockHeader) error {

	present := hashset.New()
	for _, header := range headers {
		hash := hashserialization.HeaderHash(header)
		present.Add(hash)
	}

	chain2M, err := chainUpToDepth(pm.databaseContext, ctx.stagingArea, ctx.store, selectedTip, 2*pm.pruningProofM)
	if err != nil {
		return err
	}

	for _, chainHash := range chain2M {
		if !present.Contains(chainHash) {
			return errors.Wrapf(ruleerrors.ErrProofTwoMChainNotContained,
				"level %d: missing chain block %s", level, chainHash)
		}
	}

	return nil
}

func (pm *pruningProofManager) findCommonAncestorInChainOfA(ctx levelGhostdagContext,
	a, b *externalapi.DomainHash) (*externalapi.DomainHash, error) {

	currentData, err := ctx.store.Get(pm.databaseContext, ctx.stagingArea, a)
	if err != nil {
		return nil, err
	}

	for {
		current := currentData.SelectedParent
		if current == nil || current.IsOrigin() {
			return nil, errors.Wrapf(ruleerrors.ErrNoCommonAncestor, "a: %s, b: %s", a, b)
		}

		isAncestor, err := pm.reachabilityManager.IsDAGAncestorOf(ctx.stagingArea, current, b)
		if err != nil {
			return nil, err
		}
		if isAncestor {
			return current, nil
		}

		currentData, err = ctx.store.Get(pm.databaseContext, ctx.stagingArea, current)
		if err != nil {
			return nil, err
		}
	}
}

// calcGdForAllLevels finds, for every level from MAX_LEVEL down to 0, a
// sufficiently deep root together with the level's selected tip and the
// ghostdag data recomputed forward from that root.
func (pm *pruningProofManager) calcGdForAllLevels(stagingArea *model.StagingArea,
	ppHeaderWithLevel *externalapi.HeaderWithBlockLevel) ([]levelGhostdagContext, []*externalapi.DomainHash, []*externalapi.DomainHash, error) {

	numLevels := int(pm.maxBlockLevel) + 1
	levelContexts := make([]levelGhostdagContext, numLevels)
	selectedTipByLevel := make([]*externalapi.DomainHash, numLevels)
	rootByLevel := make([]*externalapi.DomainHash, numLevels)

	for level := int(pm.maxBlockLevel); level >= 0; level-- {
		var requiredBlock *externalapi.DomainHash
		if level != int(pm.maxBlockLevel) {
			nextCtx := levelContexts[level+1]
			blockAtDepthM, err := blockAtDepth(pm.databaseContext, nextCtx.stagingArea, nextCtx.store,
				selectedTipByLevel[level+1], pm.pruningProofM)
			if err != nil {
				return nil, nil, nil, err
			}
			requiredBlock = blockAtDepthM
		}

		ctx, selectedTip, root, err := pm.findSufficientRoot(stagingArea, ppHeaderWithLevel,
			externalapi.BlockLevel(level), requiredBlock)
		if err != nil {
			return nil, nil, nil, err
		}

		levelContexts[level] = ctx
		selectedTipByLevel[level] = selectedTip
		rootByLevel[level] = root
	}

	return levelContexts, selectedTipByLevel, rootByLevel, nil
}

// findSufficientRoot walks level-L selected parents back from the
// level's tip until it has both covered at least 2M blue score and
// intersected the chain of requiredBlock (nil means the tip's own
// chain), doubling the target depth on failure up to a fixed retry
// count. If history has been pruned past where it needs to reach, it
// settles for the deepest root it can still find and logs a warning:
// the proof is then best-effort within retained history.
func (pm *pruningProofManager) findSufficientRoot(stagingArea *model.StagingArea,
	ppHeaderWithLevel *externalapi.HeaderWithBlockLevel, level externalapi.BlockLevel,
	requiredBlock *externalapi.DomainHash) (levelGhostdagContext, *externalapi.DomainHash, *externalapi.DomainHash, error) {

	pp := hashserialization.HeaderHash(ppHeaderWithLevel.Header)

	var selectedTipHeader *externalapi.DomainBlockHeader
	if ppHeaderWithLevel.BlockLevel >= level {
		selectedTipHeader = ppHeaderWithLevel.Header
	} else {
		header, found, err := pm.findSelectedParentHeaderAtLevel(stagingArea, ppHeaderWithLevel.Header, level)
		if err != nil {
			return levelGhostdagContext{}, nil, nil, err
		}
		if !found {
			return levelGhostdagContext{}, nil, nil, errors.Errorf(
				"pruningproofmanager: no known header to select a level %d tip from the pruning point", level)
		}
		selectedTipHeader = header
	}
	selectedTip := hashserialization.HeaderHash(selectedTipHeader)

	requiredLevelDepth := 2 * pm.pruningProofM
	target := requiredBlock
	if target == nil {
		target = selectedTip
	}

	for tries := 0; ; tries++ {
		root, intersected, err := pm.walkToRoot(stagingArea, selectedTipHeader, ppHeaderWithLevel.Header, level, target, requiredLevelDepth)
		if err != nil {
			return levelGhostdagContext{}, nil, nil, err
		}

		if level == 0 {
			return levelGhostdagContext{store: pm.ghostdagStores[0], stagingArea: stagingArea}, selectedTip, root.hash, nil
		}

		ctx, hasRequiredBlock, err := pm.recomputeLevelGhostdag(level, tries, root.hash, pp, target)
		if err != nil {
			return levelGhostdagContext{}, nil, nil, err
		}

		if hasRequiredBlock && (*root.hash == *pm.genesisHash || mustExceedDepth(pm.databaseContext, ctx, selectedTip, requiredLevelDepth)) {
			return ctx, selectedTip, root.hash, nil
		}

		if root.finishedHeaders {
			log.Warn("failed to find a sufficient root for level %d after %d tries; history below the "+
				"current depth is already pruned, using the deepest root reached", level, tries+1)
			return ctx, selectedTip, root.hash, nil
		}

		if tries+1 >= buildMaxRootRetries {
			log.Warn("failed to find a sufficient root for level %d after %d tries, giving up and using "+
				"the deepest root reached", level, tries+1)
			return ctx, selectedTip, root.hash, nil
		}

		requiredLevelDepth <<= 1
		log.Warn("failed to find a sufficient root for level %d, retrying with depth %d", level, requiredLevelDepth)
		_ = intersected
	}
}

func mustExceedDepth(dbContext model.DBReader, ctx levelGhostdagContext, selectedTip *externalapi.DomainHash, requiredLevelDepth uint64) bool {
	data, err := ctx.store.Get(dbContext, ctx.stagingArea, selectedTip)
	if err != nil {
		return false
	}
	return data.BlueScore > requiredLevelDepth
}

type rootWalkResult struct {
	hash            *externalapi.DomainHash
	finishedHeaders bool
}

// walkToRoot performs the lock-step walk back from selectedTipHeader and
// from target's header, stopping once the walk has reached genesis, run
// out of known history, or gone far enough past required depth while
// having intersected the required block's own chain.
func (pm *pruningProofManager) walkToRoot(stagingArea *model.StagingArea, selectedTipHeader, ppHeader *externalapi.DomainBlockHeader,
	level externalapi.BlockLevel, target *externalapi.DomainHash, requiredLevelDepth uint64) (rootWalkResult, bool, error) {

	currentHeader := selectedTipHeader
	requiredChainHeader, err := pm.headerStore.BlockHeader(pm.databaseContext, stagingArea, target)
	if err != nil {
		return rootWalkResult{}, false, err
	}

	requiredBlockChain := hashset.New()
	selectedChain := hashset.New()
	intersected := false
	finishedRequiredChain := false

	for {
		if !intersected {
			requiredBlockChain.Add(hashserialization.HeaderHash(requiredChainHeader))
			selectedChain.Add(hashserialization.HeaderHash(currentHeader))
			if requiredBlockChain.Contains(hashserialization.HeaderHash(currentHeader)) ||
				selectedChain.Contains(hashserialization.HeaderHash(requiredChainHeader)) {
				intersected = true
			}
		}

		if len(currentHeader.DirectParents()) == 0 ||
			(ppHeader.BlueScore > currentHeader.BlueScore+requiredLevelDepth && intersected) {
			return rootWalkResult{hash: hashserialization.HeaderHash(currentHeader)}, intersected, nil
		}

		nextHeader, found, err := pm.findSelectedParentHeaderAtLevel(stagingArea, currentHeader, level)
		if err != nil {
			return rootWalkResult{}, false, err
		}
		if !found {
			if !intersected {
				log.Warn("it's unknown whether the selected root for level %d is in the chain of the required block", level)
			}
			return rootWalkResult{hash: hashserialization.HeaderHash(currentHeader), finishedHeaders: true}, intersected, nil
		}
		currentHeader = nextHeader

		if !finishedRequiredChain && !intersected {
			nextRequiredHeader, found, err := pm.findSelectedParentHeaderAtLevel(stagingArea, requiredChainHeader, level)
			if err != nil {
				return rootWalkResult{}, false, err
			}
			if found {
				requiredChainHeader = nextRequiredHeader
			} else {
				finishedRequiredChain = true
			}
		}
	}
}

// recomputeLevelGhostdag performs a forward BFS from root over level's
// relations, computing ghostdag data for every block still ancestral to
// pp, into a fresh temp store scoped to this attempt. It never touches
// the permanent per-level store.
func (pm *pruningProofManager) recomputeLevelGhostdag(level externalapi.BlockLevel, attempt int,
	root, pp, requiredBlock *externalapi.DomainHash) (levelGhostdagContext, bool, error) {

	attemptStagingArea := model.NewStagingArea()
	ghostdagStore := ghostdagdatastore.New(level, int(2*pm.pruningProofM))
	topologyManager := dagtopologymanager.New(pm.databaseContext, pm.reachabilityManager, pm.relationStores[level], ghostdagStore)
	ghostdagManager := ghostdagmanager.New(pm.databaseContext, topologyManager, ghostdagStore, pm.k, root)

	ghostdagStore.Stage(attemptStagingArea, externalapi.OriginHash, ghostdagManager.OriginGHOSTDAGData())
	ghostdagStore.Stage(attemptStagingArea, root, ghostdagManager.GenesisGHOSTDAGData())

	ctx := levelGhostdagContext{store: ghostdagStore, stagingArea: attemptStagingArea}

	queue := newDownHeap(pm.databaseContext, attemptStagingArea, ghostdagStore)
	rootChildren, err := pm.relationStores[level].BlockChildren(pm.databaseContext, attemptStagingArea, root)
	if err != nil {
		return ctx, false, err
	}
	for _, child := range rootChildren {
		childHeader, err := pm.headerStore.BlockHeader(pm.databaseContext, attemptStagingArea, child)
		if err != nil {
			return ctx, false, err
		}
		queue.slice = append(queue.slice, &externalapi.SortableBlock{Hash: child, BlueWork: childHeader.BlueWork})
	}
	fixHeap(queue)

	visited := hashset.New()
	hasRequiredBlock := *root == *requiredBlock

	for len(queue.slice) > 0 {
		current := queue.pop()
		if visited.Contains(current) {
			continue
		}
		visited.Add(current)

		isAncestorOfPP, err := pm.reachabilityManager.IsDAGAncestorOf(attemptStagingArea, current, pp)
		if err != nil {
			return ctx, false, err
		}
		if !isAncestorOfPP {
			continue
		}

		if !hasRequiredBlock && *current == *requiredBlock {
			hasRequiredBlock = true
		}

		parents, err := pm.relationStores[level].BlockParents(pm.databaseContext, attemptStagingArea, current)
		if err != nil {
			return ctx, false, err
		}
		relevantParents := make([]*externalapi.DomainHash, 0, len(parents))
		for _, parent := range parents {
			isRootAncestor, err := pm.reachabilityManager.IsDAGAncestorOf(attemptStagingArea, root, parent)
			if err != nil {
				return ctx, false, err
			}
			if isRootAncestor {
				relevantParents = append(relevantParents, parent)
			}
		}

		currentData, err := ghostdagManager.GHOSTDAG(attemptStagingArea, relevantParents)
		if err != nil {
			return ctx, false, err
		}
		ghostdagStore.Stage(attemptStagingArea, current, currentData)

		children, err := pm.relationStores[level].BlockChildren(pm.databaseContext, attemptStagingArea, current)
		if err != nil {
			return ctx, false, err
		}
		for _, child := range children {
			childHeader, err := pm.headerStore.BlockHeader(pm.databaseContext, attemptStagingArea, child)
			if err != nil {
				return ctx, false, err
			}
			queue.slice = append(queue.slice, &externalapi.SortableBlock{Hash: child, BlueWork: childHeader.BlueWork})
		}
		fixHeap(queue)
	}

	return ctx, hasRequiredBlock, nil
}

// findSelectedParentHeaderAtLevel returns the header, among header's
// known level-L parents, with the greatest blue work: the parent GHOSTDAG
// would select if header itself participated at this level. It reports
// found=false rather than an error when none of the candidates' headers
// are available, since that signals pruned history to the caller rather
// than store corruption.
func (pm *pruningProofManager) findSelectedParentHeaderAtLevel(stagingArea *model.StagingArea,
	header *externalapi.DomainBlockHeader, level externalapi.BlockLevel) (*externalapi.DomainBlockHeader, bool, error) {

	candidates, err := parentsAtLevel(pm.databaseContext, stagingArea, pm.relationStores[level], pm.parentsManager, header, level)
	if err != nil {
		return nil, false, err
	}

	var best *externalapi.DomainBlockHeader
	var bestBlueWork *big.Int
	for _, candidate := range candidates {
		if candidate.IsOrigin() {
			continue
		}
		has, err := pm.headerStore.HasBlockHeader(pm.databaseContext, stagingArea, candidate)
		if err != nil {
			return nil, false, err
		}
		if !has {
			continue
		}
		candidateHeader, err := pm.headerStore.BlockHeader(pm.databaseContext, stagingArea, candidate)
		if err != nil {
			return nil, false, err
		}
		if best == nil || candidateHeader.BlueWork.Cmp(bestBlueWork) > 0 {
			best = candidateHeader
			bestBlueWork = candidateHeader.BlueWork
		}
	}

	if best == nil {
		return nil, false, nil
	}
	return best, true, nil
}

// logCurrentDAGLevel logs the highest level at which the pruning point
// header's generalized parents diverge from its direct parents. The
// value is informational only: nothing downstream gates on it.
func (pm *pruningProofManager) logCurrentDAGLevel(header *externalapi.DomainBlockHeader) {
	direct := hashset.New(header.DirectParents()...)

	currentLevel := externalapi.BlockLevel(0)
	for level := externalapi.BlockLevel(1); level <= pm.maxBlockLevel; level++ {
		levelParents := header.ParentsAtLevel(level)
		if len(levelParents) != len(direct) {
			currentLevel = level
			continue
		}
		same := true
		for _, parent := range levelParents {
			if !direct.Contains(parent) {
				same = false
				break
			}
		}
		if !same {
			currentLevel = level
		}
	}

	log.Debug("pruning point header's current DAG level is %d", currentLevel)
}

// Package reachabilitymanager implements the reachability oracle: an
// interval-tree index over a single-level sub-DAG that answers
// is_dag_ancestor_of queries without walking the DAG.
//
// Every block is given a tree parent (its selected parent) and an interval
// that strictly contains the interval of every tree descendant. Tree
// ancestry is then a containment test on two integers. Ancestry that
// crosses tree branches - a block reached only through a merge, never
// through the selected-parent chain - is recorded in the ancestor's
// future covering set: the minimal set of futures whose tree subtree the
// queried block falls into.
package reachabilitymanager

import (
	"math"

	"github.com/pkg/errors"

	"github.com/kaspanet/kaspad/domain/consensus/model"
	"github.com/kaspanet/kaspad/domain/consensus/model/externalapi"
)

// childCapacityDivisor controls how much of a parent's remaining interval
// width is offered to a new child once the parent already has at least one
// tree child, i.e. at an actual branch point: width/childCapacityDivisor.
// It is never applied to a parent's first child, since that is the common
// case along a selected-parent chain - handing out only a fixed fraction
// there would compound generation over generation and exhaust the interval
// space long before any realistic chain depth.
const childCapacityDivisor = uint64(64)

type reachabilityManager struct {
	databaseContext model.DBReader
	store           model.ReachabilityDataStore
}

// New instantiates a ReachabilityManager for a single level, backed by
// store.
func New(databaseContext model.DBReader, store model.ReachabilityDataStore) model.ReachabilityManager {
	return &reachabilityManager{
		databaseContext: databaseContext,
		store:           store,
	}
}

// Init seeds the origin sentinel as the root of the reachability tree, if
// it isn't already staged or stored. It is idempotent so every level can
// call it unconditionally at startup.
func (rm *reachabilityManager) Init(stagingArea *model.StagingArea) error {
	hasOrigin, err := rm.store.HasReachabilityData(rm.databaseContext, stagingArea, externalapi.OriginHash)
	if err != nil {
		return err
	}
	if hasOrigin {
		return nil
	}

	rm.store.StageReachabilityData(stagingArea, externalapi.OriginHash, &model.ReachabilityData{
		Interval: &model.ReachabilityInterval{Start: 0, End: math.MaxUint64},
	})
	rm.store.StageReachabilityReindexRoot(stagingArea, externalapi.OriginHash)
	return nil
}

// AddBlock inserts blockHash into the reachability tree as a tree child of
// selectedParent, and records it in the future covering set of every
// mergeSet block not already dominated by the tree.
func (rm *reachabilityManager) AddBlock(stagingArea *model.StagingArea, blockHash *externalapi.DomainHash,
	selectedParent *externalapi.DomainHash, mergeSet []*externalapi.DomainHash) error {

	childInterval, err := rm.allocateChildInterval(stagingArea, selectedParent)
	if err != nil {
		return err
	}

	parentData, err := rm.store.ReachabilityData(rm.databaseContext, stagingArea, selectedParent)
	if err != nil {
		return err
	}
	parentData.TreeChildren = append(parentData.TreeChildren, blockHash)
	rm.store.StageReachabilityData(stagingArea, selectedParent, parentData)

	rm.store.StageReachabilityData(stagingArea, blockHash, &model.ReachabilityData{
		TreeParent: selectedParent,
		Interval:   childInterval,
	})

	for _, merged := range mergeSet {
		if merged.Equal(selectedParent) {
			continue
		}
		err := rm.insertIntoFutureCoveringSets(stagingArea, merged, blockHash, childInterval)
		if err != nil {
			return err
		}
	}

	return nil
}

// IsDAGAncestorOf returns whether blockHashA is a DAG ancestor of
// blockHashB (or equal to it). ORIGIN is an ancestor of everything.
func (rm *reachabilityManager) IsDAGAncestorOf(stagingArea *model.StagingArea, blockHashA, blockHashB *externalapi.DomainHash) (bool, error) {
	if blockHashA.Equal(blockHashB) {
		return true, nil
	}
	if blockHashA.IsOrigin() {
		return true, nil
	}

	dataA, err := rm.store.ReachabilityData(rm.databaseContext, stagingArea, blockHashA)
	if err != nil {
		return false, err
	}
	dataB, err := rm.store.ReachabilityData(rm.databaseContext, stagingArea, blockHashB)
	if err != nil {
		return false, err
	}

	if intervalContains(dataA.Interval, dataB.Interval) {
		return true, nil
	}

	for _, future := range dataA.FutureCoveringSet {
		futureData, err := rm.store.ReachabilityData(rm.databaseContext, stagingArea, future)
		if err != nil {
			return false, err
		}
		if intervalContains(futureData.Interval, dataB.Interval) {
			return true, nil
		}
	}

	return false, nil
}

// IsDAGAncestorOfAny returns whether blockHash is a DAG ancestor of any of
// potentialDescendants.
func (rm *reachabilityManager) IsDAGAncestorOfAny(stagingArea *model.StagingArea, blockHash *externalapi.DomainHash,
	potentialDescendants []*externalapi.DomainHash) (bool, error) {

	for _, descendant := range potentialDescendants {
		isAncestor, err := rm.IsDAGAncestorOf(stagingArea, blockHash, descendant)
		if err != nil {
			return false, err
		}
		if isAncestor {
			return true, nil
		}
	}
	return false, nil
}

// HintVirtualSelectedParent records blockHash as the current reindex root
// hint. Because this implementation reindexes the whole tree on exhaustion
// rather than rebalancing only the path below a reindex root, the hint is
// bookkeeping only; it costs nothing to keep it accurate for callers that
// read it back.
func (rm *reachabilityManager) HintVirtualSelectedParent(stagingArea *model.StagingArea, blockHash *externalapi.DomainHash) error {
	rm.store.StageReachabilityReindexRoot(stagingArea, blockHash)
	return nil
}

func intervalContains(outer, inner *model.ReachabilityInterval) bool {
	return outer.Start <= inner.Start && inner.End <= outer.End
}

// allocateChildInterval reserves a fresh sub-interval for a new tree child
// of parentHash, reindexing the whole tree first if parentHash's free
// capacity has run out.
func (rm *reachabilityManager) allocateChildInterval(stagingArea *model.StagingArea, parentHash *externalapi.DomainHash) (*model.ReachabilityInterval, error) {
	parentData, err := rm.store.ReachabilityData(rm.databaseContext, stagingArea, parentHash)
	if err != nil {
		return nil, err
	}

	childStart := parentData.Interval.Start + 1
	firstChild := len(parentData.TreeChildren) == 0
	if !firstChild {
		lastChild := parentData.TreeChildren[len(parentData.TreeChildren)-1]
		lastChildData, err := rm.store.ReachabilityData(rm.databaseContext, stagingArea, lastChild)
		if err != nil {
			return nil, err
		}
		childStart = lastChildData.Interval.End + 1
	}

	if childStart >= parentData.Interval.End {
		if err := rm.reindexTree(stagingArea); err != nil {
			return nil, err
		}
		return rm.allocateChildInterval(stagingArea, parentHash)
	}
	remaining := parentData.Interval.End - childStart

	var desiredCapacity uint64
	if firstChild {
		// The sole path forward so far - the common case along a
		// selected-parent chain - gets essentially the whole of what's
		// left in the parent's interval. Splitting capacity only happens
		// once an actual sibling arrives, and that split is driven by
		// reindexTree's subtree-size-proportional allocation rather than
		// by this constant-fraction rule.
		desiredCapacity = remaining
	} else {
		desiredCapacity = remaining / childCapacityDivisor
		if desiredCapacity == 0 {
			desiredCapacity = 1
		}
	}

	if remaining < desiredCapacity {
		if err := rm.reindexTree(stagingArea); err != nil {
			return nil, err
		}
		return rm.allocateChildInterval(stagingArea, parentHash)
	}

	childEnd := childStart + desiredCapacity
	if childEnd > parentData.Interval.End {
		childEnd = parentData.Interval.End
	}
	return &model.ReachabilityInterval{Start: childStart, End: childEnd}, nil
}

// reindexTree rebuilds every interval in the tree from the origin down.
// Each node's range is split among its children in proportion to the size
// of the subtree each child roots, not evenly: a selected-parent chain,
// where nearly every node has exactly one tree child, would otherwise
// surrender a constant fraction (here, half) of its remaining width every
// generation and exhaust a 64-bit interval space after only a few dozen
// blocks. Sizing by subtree weight instead gives a lone child nearly the
// whole of its parent's range, so a chain's capacity decays with the
// number of siblings actually branching off it rather than with depth.
// This is still a whole-tree reindex rather than the path-local
// rebalancing real reachability indexes use, traded for a much simpler,
// easier-to-verify implementation; see the package's DESIGN.md entry.
func (rm *reachabilityManager) reindexTree(stagingArea *model.StagingArea) error {
	sizes := make(map[externalapi.DomainHash]uint64)
	if _, err := rm.computeSubtreeSize(stagingArea, externalapi.OriginHash, sizes); err != nil {
		return err
	}
	return rm.reindexSubtree(stagingArea, externalapi.OriginHash, 0, math.MaxUint64, sizes)
}

// computeSubtreeSize returns the number of nodes (hash itself plus every
// tree descendant) rooted at hash, memoizing every node it visits into
// sizes so the whole tree is walked exactly once.
func (rm *reachabilityManager) computeSubtreeSize(stagingArea *model.StagingArea, hash *externalapi.DomainHash,
	sizes map[externalapi.DomainHash]uint64) (uint64, error) {

	data, err := rm.store.ReachabilityData(rm.databaseContext, stagingArea, hash)
	if err != nil {
		return 0, err
	}

	size := uint64(1)
	for _, child := range data.TreeChildren {
		childSize, err := rm.computeSubtreeSize(stagingArea, child, sizes)
		if err != nil {
			return 0, err
		}
		size += childSize
	}

	sizes[*hash] = size
	return size, nil
}

func (rm *reachabilityManager) reindexSubtree(stagingArea *model.StagingArea, hash *externalapi.DomainHash, start, end uint64,
	sizes map[externalapi.DomainHash]uint64) error {

	data, err := rm.store.ReachabilityData(rm.databaseContext, stagingArea, hash)
	if err != nil {
		return err
	}

	data.Interval = &model.ReachabilityInterval{Start: start, End: end}

	if len(data.TreeChildren) > 0 {
		childSpace := end - (start + 1)

		totalChildrenSize := uint64(0)
		for _, child := range data.TreeChildren {
			totalChildrenSize += sizes[*child]
		}
		if totalChildrenSize == 0 || childSpace < totalChildrenSize {
			return errors.New("reachability: exhausted interval space while reindexing")
		}

		// Each child gets a share of childSpace proportional to its own
		// subtree size; the last child absorbs any remainder left by
		// integer division, so the whole range is always spent exactly.
		childStart := start + 1
		for i, child := range data.TreeChildren {
			var childEnd uint64
			if i == len(data.TreeChildren)-1 {
				childEnd = end
			} else {
				share := (childSpace * sizes[*child]) / totalChildrenSize
				if share == 0 {
					share = 1
				}
				childEnd = childStart + share
				if childEnd > end {
					childEnd = end
				}
			}
			if err := rm.reindexSubtree(stagingArea, child, childStart, childEnd, sizes); err != nil {
				return err
			}
			childStart = childEnd
		}
	}

	rm.store.StageReachabilityData(stagingArea, hash, data)
	return nil
}

// insertIntoFutureCoveringSets walks from "from" up its tree-ancestor
// chain, recording "to" in each ancestor's future covering set until it
// reaches one whose interval already contains "to"'s interval - at that
// point tree containment alone proves ancestry for every node above it.
func (rm *reachabilityManager) insertIntoFutureCoveringSets(stagingArea *model.StagingArea, from, to *externalapi.DomainHash,
	toInterval *model.ReachabilityInterval) error {

	for current := from; current != nil; {
		data, err := rm.store.ReachabilityData(rm.databaseContext, stagingArea, current)
		if err != nil {
			return err
		}

		if intervalContains(data.Interval, toInterval) {
			return nil
		}

		alreadyPresent := false
		for _, existing := range data.FutureCoveringSet {
			if existing.Equal(to) {
				alreadyPresent = true
				break
			}
		}
		if !alreadyPresent {
			data.FutureCoveringSet = append(data.FutureCoveringSet, to)
			rm.store.StageReachabilityData(stagingArea, current, data)
		}

		current = data.TreeParent
	}
	return nil
}

package ghostdagmanager

import (
	"math/big"
	"sort"

	"github.com/pkg/errors"

	"github.com/kaspanet/kaspad/domain/consensus/model"
	"github.com/kaspanet/kaspad/domain/consensus/model/externalapi"
)

// ghostdag computes the GHOSTDAG tuple for a new block with the given
// parents: its selected parent, the k-cluster-colored mergeset (blues and
// reds), the per-blue anticone sizes, and the resulting blue score and
// blue work.
//
// The algorithm walks blueCandidate blocks in GHOSTDAG order along the
// unordered mergeset, testing each against every block already known blue
// along the selected-parent chain: a candidate stays blue only if adding
// it keeps every blue block's blue-anticone at or below k, and keeps the
// candidate's own blue anticone at or below k. See
// https://eprint.iacr.org/2018/104.pdf.
func (gm *ghostdagManager) ghostdag(stagingArea *model.StagingArea, parents []*externalapi.DomainHash) (*externalapi.BlockGHOSTDAGData, error) {
	selectedParent, err := gm.FindSelectedParent(stagingArea, parents)
	if err != nil {
		return nil, err
	}

	selectedParentData, err := gm.ghostdagDataStore.Get(gm.databaseContext, stagingArea, selectedParent)
	if err != nil {
		return nil, err
	}

	bluesAnticoneSizes := map[externalapi.DomainHash]externalapi.KType{*selectedParent: 0}
	blues := []*externalapi.DomainHash{selectedParent}

	mergeSetWithoutSelectedParent, err := gm.UnorderedMergeSetWithoutSelectedParent(stagingArea, selectedParent, parents)
	if err != nil {
		return nil, err
	}

	sortable := make([]*externalapi.SortableBlock, len(mergeSetWithoutSelectedParent))
	for i, hash := range mergeSetWithoutSelectedParent {
		data, err := gm.ghostdagDataStore.GetCompact(gm.databaseContext, stagingArea, hash)
		if err != nil {
			return nil, err
		}
		sortable[i] = &externalapi.SortableBlock{Hash: hash, BlueWork: data.BlueWork}
	}
	sort.Slice(sortable, func(i, j int) bool { return sortable[i].Less(sortable[j]) })

	for _, candidateBlock := range sortable {
		blueCandidate := candidateBlock.Hash
		isBlue, candidateAnticoneSize, candidateBluesAnticoneSizes, err := gm.checkBlueCandidate(
			stagingArea, selectedParent, blues, bluesAnticoneSizes, blueCandidate)
		if err != nil {
			return nil, err
		}

		if !isBlue {
			continue
		}

		blues = append(blues, blueCandidate)
		bluesAnticoneSizes[*blueCandidate] = candidateAnticoneSize
		for blue, anticoneSize := range candidateBluesAnticoneSizes {
			bluesAnticoneSizes[blue] = anticoneSize + 1
		}

		if externalapi.KType(len(blues)) == gm.k+1 {
			break
		}
	}

	blueSet := make(map[externalapi.DomainHash]struct{}, len(blues))
	for _, blue := range blues {
		blueSet[*blue] = struct{}{}
	}
	reds := make([]*externalapi.DomainHash, 0, len(mergeSetWithoutSelectedParent))
	for _, hash := range mergeSetWithoutSelectedParent {
		if _, ok := blueSet[*hash]; !ok {
			reds = append(reds, hash)
		}
	}

	blueScore := selectedParentData.BlueScore + uint64(len(blues))
	totalBlueWork := new(big.Int).Add(selectedParentData.BlueWork, big.NewInt(int64(len(blues))))

	return &externalapi.BlockGHOSTDAGData{
		BlueScore:          blueScore,
		BlueWork:           totalBlueWork,
		SelectedParent:     selectedParent,
		MergeSetBlues:      blues,
		MergeSetReds:       reds,
		BluesAnticoneSizes: bluesAnticoneSizes,
	}, nil
}

// checkBlueCandidate tests whether blueCandidate can be added to blues
// without violating the k-cluster anticone constraint, walking the
// selected-parent chain from the block under construction (represented by
// selectedParent plus blues) back towards the origin.
func (gm *ghostdagManager) checkBlueCandidate(stagingArea *model.StagingArea, selectedParent *externalapi.DomainHash,
	blues []*externalapi.DomainHash, bluesAnticoneSizes map[externalapi.DomainHash]externalapi.KType,
	blueCandidate *externalapi.DomainHash) (isBlue bool, candidateAnticoneSize externalapi.KType,
	candidateBluesAnticoneSizes map[externalapi.DomainHash]externalapi.KType, err error) {

	candidateBluesAnticoneSizes = make(map[externalapi.DomainHash]externalapi.KType)

	// The candidate comes from newNode's mergeset, so it is always in
	// newNode's past, and the chain
	// walk below starts at selectedParent: every block on the
	// selected-parent chain from selectedParent back to the origin, plus
	// the in-construction set `blues`, which plays the role of newNode's
	// own blue set for the duration of this check.
	chainBlock := selectedParent
	chainBlues := blues

	for {
		isAncestorOfCandidate, err := gm.dagTopologyManager.IsAncestorOf(stagingArea, chainBlock, blueCandidate)
		if err != nil {
			return false, 0, nil, err
		}
		if isAncestorOfCandidate {
			break
		}

		for _, blue := range chainBlues {
			isAncestorOfCandidate, err := gm.dagTopologyManager.IsAncestorOf(stagingArea, blue, blueCandidate)
			if err != nil {
				return false, 0, nil, err
			}
			if isAncestorOfCandidate {
				continue
			}

			blueAnticoneSize, err := gm.blueAnticoneSize(stagingArea, blue, bluesAnticoneSizes, selectedParent)
			if err != nil {
				return false, 0, nil, err
			}
			candidateBluesAnticoneSizes[*blue] = blueAnticoneSize
			candidateAnticoneSize++

			if candidateAnticoneSize > gm.k {
				return false, 0, nil, nil
			}
			if blueAnticoneSize == gm.k {
				return false, 0, nil, nil
			}
			if blueAnticoneSize > gm.k {
				return false, 0, nil, errors.New("found blue anticone size larger than k")
			}
		}

		chainData, err := gm.ghostdagDataStore.Get(gm.databaseContext, stagingArea, chainBlock)
		if err != nil {
			return false, 0, nil, err
		}
		if chainData.SelectedParent == nil {
			break
		}
		chainBlock = chainData.SelectedParent
		chainBlues = chainData.MergeSetBlues
	}

	return true, candidateAnticoneSize, candidateBluesAnticoneSizes, nil
}

// blueAnticoneSize returns the recorded blue anticone size of blue within
// the block under construction (represented by selectedParent plus the
// in-progress bluesAnticoneSizes map). blue may have joined the blue set
// several selected-parent-chain steps back, long before the current block,
// in which case its anticone size was frozen into that ancestor's own
// GHOSTDAG data and is recovered by walking the chain towards the origin.
func (gm *ghostdagManager) blueAnticoneSize(stagingArea *model.StagingArea, blue *externalapi.DomainHash,
	bluesAnticoneSizes map[externalapi.DomainHash]externalapi.KType, selectedParent *externalapi.DomainHash) (externalapi.KType, error) {

	if size, ok := bluesAnticoneSizes[*blue]; ok {
		return size, nil
	}

	for current := selectedParent; current != nil; {
		data, err := gm.ghostdagDataStore.Get(gm.databaseContext, stagingArea, current)
		if err != nil {
			return 0, err
		}
		if size, ok := data.BluesAnticoneSizes[*blue]; ok {
			return size, nil
		}
		current = data.SelectedParent
	}

	return 0, errors.Errorf("blue anticone size not found for block %s", blue)
}

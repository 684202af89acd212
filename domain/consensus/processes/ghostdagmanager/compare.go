package ghostdagmanager

import (
	"sort"

	"github.com/kaspanet/kaspad/domain/consensus/model"
	"github.com/kaspanet/kaspad/domain/consensus/model/externalapi"
)

// FindSelectedParent returns the bluest of blockHashes: the one with the
// highest blue work, tie-broken by hash.
func (gm *ghostdagManager) FindSelectedParent(stagingArea *model.StagingArea, blockHashes []*externalapi.DomainHash) (*externalapi.DomainHash, error) {
	selectedParent := blockHashes[0]
	selectedParentData, err := gm.ghostdagDataStore.GetCompact(gm.databaseContext, stagingArea, selectedParent)
	if err != nil {
		return nil, err
	}

	for _, blockHash := range blockHashes[1:] {
		blockData, err := gm.ghostdagDataStore.GetCompact(gm.databaseContext, stagingArea, blockHash)
		if err != nil {
			return nil, err
		}
		if less(selectedParent, selectedParentData, blockHash, blockData) {
			selectedParent = blockHash
			selectedParentData = blockData
		}
	}

	return selectedParent, nil
}

// ChooseSelectedParent returns the bluer of blockHashA and blockHashB.
func (gm *ghostdagManager) ChooseSelectedParent(stagingArea *model.StagingArea, blockHashA, blockHashB *externalapi.DomainHash) (*externalapi.DomainHash, error) {
	return gm.FindSelectedParent(stagingArea, []*externalapi.DomainHash{blockHashA, blockHashB})
}

// Less reports whether blockHashA sorts before blockHashB: lower blue work
// first, hash as the tie-break.
func (gm *ghostdagManager) Less(blockHashA *externalapi.DomainHash, ghostdagDataA *externalapi.BlockGHOSTDAGData,
	blockHashB *externalapi.DomainHash, ghostdagDataB *externalapi.BlockGHOSTDAGData) bool {
	sbA := &externalapi.SortableBlock{Hash: blockHashA, BlueWork: ghostdagDataA.BlueWork}
	sbB := &externalapi.SortableBlock{Hash: blockHashB, BlueWork: ghostdagDataB.BlueWork}
	return sbA.Less(sbB)
}

func less(blockHashA *externalapi.DomainHash, dataA *externalapi.CompactGHOSTDAGData,
	blockHashB *externalapi.DomainHash, dataB *externalapi.CompactGHOSTDAGData) bool {
	sbA := &externalapi.SortableBlock{Hash: blockHashA, BlueWork: dataA.BlueWork}
	sbB := &externalapi.SortableBlock{Hash: blockHashB, BlueWork: dataB.BlueWork}
	return sbA.Less(sbB)
}

// SortBlocks sorts blockHashes in GHOSTDAG order (ascending blue work,
// hash as the tie-break).
func (gm *ghostdagManager) SortBlocks(stagingArea *model.StagingArea, blockHashes []*externalapi.DomainHash) ([]*externalapi.DomainHash, error) {
	sortable := make([]*externalapi.SortableBlock, len(blockHashes))
	for i, hash := range blockHashes {
		data, err := gm.ghostdagDataStore.GetCompact(gm.databaseContext, stagingArea, hash)
		if err != nil {
			return nil, err
		}
		sortable[i] = &externalapi.SortableBlock{Hash: hash, BlueWork: data.BlueWork}
	}

	sort.Slice(sortable, func(i, j int) bool {
		return sortable[i].Less(sortable[j])
	})

	sorted := make([]*externalapi.DomainHash, len(sortable))
	for i, sb := range sortable {
		sorted[i] = sb.Hash
	}
	return sorted, nil
}

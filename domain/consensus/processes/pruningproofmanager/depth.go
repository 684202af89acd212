package pruningproofmanager

import (
	"github.com/kaspanet/kaspad/domain/consensus/model"
	"github.com/kaspanet/kaspad/domain/consensus/model/externalapi"
)

// chainUpToDepth walks the selected-parent chain from highHash backwards,
// collecting every visited hash, for as long as the next step's blue
// score stays within depth of highHash's. It stops before stepping onto
// ORIGIN, so the last entry is the deepest real block still in range.
// The returned slice always contains at least highHash itself.
func chainUpToDepth(dbContext model.DBReader, stagingArea *model.StagingArea,
	ghostdagDataStore model.GHOSTDAGDataStore, highHash *externalapi.DomainHash, depth uint64) (
	[]*externalapi.DomainHash, error) {

	highData, err := ghostdagDataStore.Get(dbContext, stagingArea, highHash)
	if err != nil {
		return nil, err
	}
	highBlueScore := highData.BlueScore

	chain := []*externalapi.DomainHash{highHash}
	current := highHash
	currentData := highData

	for {
		if current.IsOrigin() {
			break
		}
		next := currentData.SelectedParent
		if next == nil || next.IsOrigin() {
			break
		}
		nextData, err := ghostdagDataStore.Get(dbContext, stagingArea, next)
		if err != nil {
			return nil, err
		}
		if nextData.BlueScore+depth < highBlueScore {
			break
		}
		chain = append(chain, next)
		current = next
		currentData = nextData
	}

	return chain, nil
}

// blockAtDepth returns the deepest block on highHash's selected-parent
// chain whose blue score is still within depth of highHash's. A depth of
// zero returns highHash. If the chain reaches ORIGIN before depth is
// exhausted, the last real block before ORIGIN is returned.
func blockAtDepth(dbContext model.DBReader, stagingArea *model.StagingArea,
	ghostdagDataStore model.GHOSTDAGDataStore, highHash *externalapi.DomainHash, depth uint64) (
	*externalapi.DomainHash, error) {

	chain, err := chainUpToDepth(dbContext, stagingArea, ghostdagDataStore, highHash, depth)
	if err != nil {
		return nil, err
	}
	return chain[len(chain)-1], nil
}

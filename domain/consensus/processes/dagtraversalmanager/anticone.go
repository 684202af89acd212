package dagtraversalmanager

import (
	"github.com/pkg/errors"

	"github.com/kaspanet/kaspad/domain/consensus/model"
	"github.com/kaspanet/kaspad/domain/consensus/model/externalapi"
	"github.com/kaspanet/kaspad/domain/consensus/utils/hashset"
)

// errTraversalLimitExceeded is returned when a bounded Anticone call visits
// more blocks than its caller is willing to pay for.
var errTraversalLimitExceeded = errors.New("anticone traversal exceeded its allowed block count")

// Anticone returns every block reachable backwards from tips that is
// neither an ancestor nor a descendant of blockHash. If maxTraversalAllowed
// is non-nil, the search aborts once that many blocks have been visited.
func (dtm *dagTraversalManager) Anticone(stagingArea *model.StagingArea, blockHash *externalapi.DomainHash,
	tips []*externalapi.DomainHash, maxTraversalAllowed *uint64) ([]*externalapi.DomainHash, error) {

	anticone := []*externalapi.DomainHash{}
	queue := append([]*externalapi.DomainHash{}, tips...)
	visited := hashset.New()

	visitedCount := uint64(0)
	for len(queue) > 0 {
		var current *externalapi.DomainHash
		current, queue = queue[0], queue[1:]

		if visited.Contains(current) {
			continue
		}
		visited.Add(current)

		visitedCount++
		if maxTraversalAllowed != nil && visitedCount > *maxTraversalAllowed {
			return nil, errTraversalLimitExceeded
		}

		currentIsAncestorOfBlock, err := dtm.dagTopologyManager.IsAncestorOf(stagingArea, current, blockHash)
		if err != nil {
			return nil, err
		}
		if currentIsAncestorOfBlock {
			continue
		}

		blockIsAncestorOfCurrent, err := dtm.dagTopologyManager.IsAncestorOf(stagingArea, blockHash, current)
		if err != nil {
			return nil, err
		}
		if !blockIsAncestorOfCurrent {
			anticone = append(anticone, current)
		}

		currentParents, err := dtm.dagTopologyManager.Parents(stagingArea, current)
		if err != nil {
			return nil, err
		}
		queue = append(queue, currentParents...)
	}

	return anticone, nil
}

package pruningproofmanager

import (
	"container/heap"

	"github.com/kaspanet/kaspad/domain/consensus/model"
	"github.com/kaspanet/kaspad/domain/consensus/model/externalapi"
)

// blockHeap is a min-heap of blocks ordered by GHOSTDAG blue work, with
// hash comparison breaking ties. It backs the topological traversals the
// proof builder runs to visit blocks in an order consistent
// with the DAG's partial order.
type blockHeap struct {
	slice            []*externalapi.SortableBlock
	ghostdagDataStore model.GHOSTDAGDataStore
	dbContext        model.DBReader
	stagingArea      *model.StagingArea
}

func newDownHeap(dbContext model.DBReader, stagingArea *model.StagingArea,
	ghostdagDataStore model.GHOSTDAGDataStore) *blockHeap {

	return &blockHeap{
		slice:             make([]*externalapi.SortableBlock, 0),
		ghostdagDataStore: ghostdagDataStore,
		dbContext:         dbContext,
		stagingArea:       stagingArea,
	}
}

func (bh *blockHeap) Len() int { return len(bh.slice) }

func (bh *blockHeap) Less(i, j int) bool {
	return bh.slice[i].Less(bh.slice[j])
}

func (bh *blockHeap) Swap(i, j int) {
	bh.slice[i], bh.slice[j] = bh.slice[j], bh.slice[i]
}

func (bh *blockHeap) Push(x interface{}) {
	bh.slice = append(bh.slice, x.(*externalapi.SortableBlock))
}

func (bh *blockHeap) Pop() interface{} {
	oldSlice := bh.slice
	oldLength := len(oldSlice)
	popped := oldSlice[oldLength-1]
	bh.slice = oldSlice[:oldLength-1]
	return popped
}

// pushBlock looks up blockHash's blue work and pushes it onto the heap.
func (bh *blockHeap) pushBlock(blockHash *externalapi.DomainHash) error {
	ghostdagData, err := bh.ghostdagDataStore.Get(bh.dbContext, bh.stagingArea, blockHash)
	if err != nil {
		return err
	}
	heap.Push(bh, &externalapi.SortableBlock{Hash: blockHash, BlueWork: ghostdagData.BlueWork})
	return nil
}

func (bh *blockHeap) pop() *externalapi.DomainHash {
	return heap.Pop(bh).(*externalapi.SortableBlock).Hash
}

// fixHeap restores heap order after callers append directly to bh.slice
// to batch several pushes before paying the reheapify cost once.
func fixHeap(bh *blockHeap) {
	heap.Init(bh)
}

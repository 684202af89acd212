package pruningproofmanager

import (
	"container/heap"
	"math/big"
	"testing"

	"github.com/kaspanet/kaspad/domain/consensus/datastructures/ghostdagdatastore"
	"github.com/kaspanet/kaspad/domain/consensus/model"
	"github.com/kaspanet/kaspad/domain/consensus/model/externalapi"
	"github.com/kaspanet/kaspad/infrastructure/db/dbaccess"
)

func TestBlockHeapPopsInAscendingBlueWorkOrder(t *testing.T) {
	databaseContext := dbaccess.NewMemoryOnly()
	store := ghostdagdatastore.New(0, 10)
	stagingArea := model.NewStagingArea()

	hashes := make([]*externalapi.DomainHash, 5)
	blueWorks := []int64{5, 1, 4, 2, 3}
	for i, bw := range blueWorks {
		hashes[i] = &externalapi.DomainHash{byte(i + 1)}
		store.Stage(stagingArea, hashes[i], &externalapi.BlockGHOSTDAGData{
			BlueWork:           big.NewInt(bw),
			BluesAnticoneSizes: map[externalapi.DomainHash]externalapi.KType{},
		})
	}

	bh := newDownHeap(databaseContext, stagingArea, store)
	for _, hash := range hashes {
		if err := bh.pushBlock(hash); err != nil {
			t.Fatalf("pushBlock: %+v", err)
		}
	}

	var poppedBlueWorks []int64
	for bh.Len() > 0 {
		popped := bh.pop()
		data, err := store.Get(databaseContext, stagingArea, popped)
		if err != nil {
			t.Fatalf("Get: %+v", err)
		}
		poppedBlueWorks = append(poppedBlueWorks, data.BlueWork.Int64())
	}

	want := []int64{1, 2, 3, 4, 5}
	if len(poppedBlueWorks) != len(want) {
		t.Fatalf("popped %d blocks, want %d", len(poppedBlueWorks), len(want))
	}
	for i := range want {
		if poppedBlueWorks[i] != want[i] {
			t.Fatalf("pop order = %v, want ascending %v", poppedBlueWorks, want)
		}
	}
}

func TestFixHeapRestoresOrderAfterDirectAppend(t *testing.T) {
	bh := newDownHeap(nil, nil, nil)
	bh.slice = append(bh.slice,
		&externalapi.SortableBlock{Hash: &externalapi.DomainHash{3}, BlueWork: big.NewInt(3)},
		&externalapi.SortableBlock{Hash: &externalapi.DomainHash{1}, BlueWork: big.NewInt(1)},
		&externalapi.SortableBlock{Hash: &externalapi.DomainHash{2}, BlueWork: big.NewInt(2)},
	)
	fixHeap(bh)

	first := heap.Pop(bh).(*externalapi.SortableBlock)
	if first.BlueWork.Int64() != 1 {
		t.Fatalf("after fixHeap, first pop has blue work %d, want 1", first.BlueWork.Int64())
	}
}

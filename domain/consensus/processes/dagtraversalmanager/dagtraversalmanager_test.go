package dagtraversalmanager_test

import (
	"testing"

	"github.com/kaspanet/kaspad/domain/consensus/datastructures/blockrelationstore"
	"github.com/kaspanet/kaspad/domain/consensus/datastructures/ghostdagdatastore"
	"github.com/kaspanet/kaspad/domain/consensus/datastructures/reachabilitydatastore"
	"github.com/kaspanet/kaspad/domain/consensus/model"
	"github.com/kaspanet/kaspad/domain/consensus/model/externalapi"
	"github.com/kaspanet/kaspad/domain/consensus/processes/dagtopologymanager"
	"github.com/kaspanet/kaspad/domain/consensus/processes/dagtraversalmanager"
	"github.com/kaspanet/kaspad/domain/consensus/processes/ghostdagmanager"
	"github.com/kaspanet/kaspad/domain/consensus/processes/reachabilitymanager"
	"github.com/kaspanet/kaspad/infrastructure/db/dbaccess"
)

type harness struct {
	stagingArea         *model.StagingArea
	relationStore       model.BlockRelationStore
	ghostdagDataStore   model.GHOSTDAGDataStore
	reachabilityManager model.ReachabilityManager
	ghostdagManager      model.GHOSTDAGManager
	traversalManager     model.DAGTraversalManager
}

func newHarness(t *testing.T, genesisHash *externalapi.DomainHash) *harness {
	t.Helper()

	databaseContext := dbaccess.NewMemoryOnly()
	relationStore := blockrelationstore.New(0, 100)
	reachabilityDataStore := reachabilitydatastore.New(0, 100)
	ghostdagDataStore := ghostdagdatastore.New(0, 100)
	reachabilityManager := reachabilitymanager.New(databaseContext, reachabilityDataStore)
	dagTopologyManager := dagtopologymanager.New(databaseContext, reachabilityManager, relationStore, ghostdagDataStore)
	gm := ghostdagmanager.New(databaseContext, dagTopologyManager, ghostdagDataStore, 3, genesisHash)
	traversalManager := dagtraversalmanager.New(databaseContext, dagTopologyManager, ghostdagDataStore)

	stagingArea := model.NewStagingArea()
	if err := reachabilityManager.Init(stagingArea); err != nil {
		t.Fatalf("Init: %+v", err)
	}

	relationStore.Stage(stagingArea, externalapi.OriginHash, nil)
	ghostdagDataStore.Stage(stagingArea, externalapi.OriginHash, gm.OriginGHOSTDAGData())

	relationStore.Stage(stagingArea, genesisHash, []*externalapi.DomainHash{externalapi.OriginHash})
	if err := reachabilityManager.AddBlock(stagingArea, genesisHash, externalapi.OriginHash, nil); err != nil {
		t.Fatalf("AddBlock(genesis): %+v", err)
	}
	ghostdagDataStore.Stage(stagingArea, genesisHash, gm.GenesisGHOSTDAGData())

	return &harness{
		stagingArea:         stagingArea,
		relationStore:       relationStore,
		ghostdagDataStore:   ghostdagDataStore,
		reachabilityManager: reachabilityManager,
		ghostdagManager:     gm,
		traversalManager:    traversalManager,
	}
}

func (h *harness) addBlock(t *testing.T, hash *externalapi.DomainHash, parents []*externalapi.DomainHash) {
	t.Helper()

	data, err := h.ghostdagManager.GHOSTDAG(h.stagingArea, parents)
	if err != nil {
		t.Fatalf("GHOSTDAG(%s): %+v", hash, err)
	}
	h.relationStore.Stage(h.stagingArea, hash, parents)
	h.ghostdagDataStore.Stage(h.stagingArea, hash, data)

	mergeSet := append([]*externalapi.DomainHash{}, data.MergeSetBlues...)
	mergeSet = append(mergeSet, data.MergeSetReds...)
	if err := h.reachabilityManager.AddBlock(h.stagingArea, hash, data.SelectedParent, mergeSet); err != nil {
		t.Fatalf("AddBlock(%s): %+v", hash, err)
	}
}

func TestAnticoneExcludesAncestorsAndDescendants(t *testing.T) {
	genesis := &externalapi.DomainHash{0x01}
	h := newHarness(t, genesis)

	// genesis -> a -> b, genesis -> c (c is in a and b's anticone, and
	// vice versa).
	a := &externalapi.DomainHash{0x02}
	h.addBlock(t, a, []*externalapi.DomainHash{genesis})

	b := &externalapi.DomainHash{0x03}
	h.addBlock(t, b, []*externalapi.DomainHash{a})

	c := &externalapi.DomainHash{0x04}
	h.addBlock(t, c, []*externalapi.DomainHash{genesis})

	anticone, err := h.traversalManager.Anticone(h.stagingArea, a, []*externalapi.DomainHash{b, c}, nil)
	if err != nil {
		t.Fatalf("Anticone: %+v", err)
	}

	if len(anticone) != 1 || !anticone[0].Equal(c) {
		t.Fatalf("Anticone(a, tips=[b,c]) = %v, want [c] (b descends from a, c doesn't)", anticone)
	}
}

func TestAnticoneOfTipIsEmpty(t *testing.T) {
	genesis := &externalapi.DomainHash{0x10}
	h := newHarness(t, genesis)

	a := &externalapi.DomainHash{0x11}
	h.addBlock(t, a, []*externalapi.DomainHash{genesis})

	anticone, err := h.traversalManager.Anticone(h.stagingArea, a, []*externalapi.DomainHash{a}, nil)
	if err != nil {
		t.Fatalf("Anticone: %+v", err)
	}
	if len(anticone) != 0 {
		t.Fatalf("Anticone(a, tips=[a]) = %v, want empty (a is its own ancestor)", anticone)
	}
}

func TestSelectedParentIteratorWalksChainToGenesis(t *testing.T) {
	genesis := &externalapi.DomainHash{0x20}
	h := newHarness(t, genesis)

	a := &externalapi.DomainHash{0x21}
	h.addBlock(t, a, []*externalapi.DomainHash{genesis})

	b := &externalapi.DomainHash{0x22}
	h.addBlock(t, b, []*externalapi.DomainHash{a})

	it := h.traversalManager.SelectedParentIterator(h.stagingArea, b)

	var visited []*externalapi.DomainHash
	for it.Next() {
		hash, err := it.Get()
		if err != nil {
			t.Fatalf("Get: %+v", err)
		}
		visited = append(visited, hash)
	}

	want := []*externalapi.DomainHash{b, a, genesis, externalapi.OriginHash}
	if len(visited) != len(want) {
		t.Fatalf("visited %d blocks, want %d: %v", len(visited), len(want), visited)
	}
	for i, hash := range want {
		if !visited[i].Equal(hash) {
			t.Fatalf("visited[%d] = %s, want %s", i, visited[i], hash)
		}
	}
}

package ghostdagmanager_test

import (
	"testing"

	"github.com/kaspanet/kaspad/domain/consensus/datastructures/blockrelationstore"
	"github.com/kaspanet/kaspad/domain/consensus/datastructures/ghostdagdatastore"
	"github.com/kaspanet/kaspad/domain/consensus/datastructures/reachabilitydatastore"
	"github.com/kaspanet/kaspad/domain/consensus/model"
	"github.com/kaspanet/kaspad/domain/consensus/model/externalapi"
	"github.com/kaspanet/kaspad/domain/consensus/processes/dagtopologymanager"
	"github.com/kaspanet/kaspad/domain/consensus/processes/ghostdagmanager"
	"github.com/kaspanet/kaspad/domain/consensus/processes/reachabilitymanager"
	"github.com/kaspanet/kaspad/infrastructure/db/dbaccess"
)

// fixture wires one level's worth of real stores and managers over an
// in-memory database, enough to exercise GHOSTDAG in isolation.
type fixture struct {
	stagingArea         *model.StagingArea
	databaseContext     *dbaccess.DatabaseContext
	relationStore       model.BlockRelationStore
	ghostdagDataStore   model.GHOSTDAGDataStore
	reachabilityManager model.ReachabilityManager
	ghostdagManager     model.GHOSTDAGManager
	genesisHash         *externalapi.DomainHash
}

func newFixture(t *testing.T, k externalapi.KType, genesisHash *externalapi.DomainHash) *fixture {
	t.Helper()

	databaseContext := dbaccess.NewMemoryOnly()
	relationStore := blockrelationstore.New(0, 100)
	reachabilityDataStore := reachabilitydatastore.New(0, 100)
	ghostdagDataStore := ghostdagdatastore.New(0, 100)
	reachabilityManager := reachabilitymanager.New(databaseContext, reachabilityDataStore)
	dagTopologyManager := dagtopologymanager.New(databaseContext, reachabilityManager, relationStore, ghostdagDataStore)
	gm := ghostdagmanager.New(databaseContext, dagTopologyManager, ghostdagDataStore, k, genesisHash)

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

	return &fixture{
		stagingArea:         stagingArea,
		databaseContext:     databaseContext,
		relationStore:       relationStore,
		ghostdagDataStore:   ghostdagDataStore,
		reachabilityManager: reachabilityManager,
		ghostdagManager:     gm,
		genesisHash:         genesisHash,
	}
}

// addBlock runs GHOSTDAG for a new block over parents, then stages its
// relations, reachability and GHOSTDAG data, mirroring what a consensus
// insertion path would do one block at a time.
func (f *fixture) addBlock(t *testing.T, hash *externalapi.DomainHash, parents []*externalapi.DomainHash) *externalapi.BlockGHOSTDAGData {
	t.Helper()

	data, err := f.ghostdagManager.GHOSTDAG(f.stagingArea, parents)
	if err != nil {
		t.Fatalf("GHOSTDAG(%s): %+v", hash, err)
	}

	f.relationStore.Stage(f.stagingArea, hash, parents)
	f.ghostdagDataStore.Stage(f.stagingArea, hash, data)

	mergeSet := append([]*externalapi.DomainHash{}, data.MergeSetBlues...)
	mergeSet = append(mergeSet, data.MergeSetReds...)
	if err := f.reachabilityManager.AddBlock(f.stagingArea, hash, data.SelectedParent, mergeSet); err != nil {
		t.Fatalf("AddBlock(%s): %+v", hash, err)
	}

	return data
}

func TestGHOSTDAGChain(t *testing.T) {
	genesis := &externalapi.DomainHash{0x01}
	f := newFixture(t, 3, genesis)

	a := &externalapi.DomainHash{0x02}
	aData := f.addBlock(t, a, []*externalapi.DomainHash{genesis})
	if !aData.SelectedParent.Equal(genesis) {
		t.Fatalf("a's selected parent = %s, want genesis", aData.SelectedParent)
	}
	if aData.BlueScore != 2 {
		t.Fatalf("a's blue score = %d, want 2", aData.BlueScore)
	}

	b := &externalapi.DomainHash{0x03}
	bData := f.addBlock(t, b, []*externalapi.DomainHash{a})
	if !bData.SelectedParent.Equal(a) {
		t.Fatalf("b's selected parent = %s, want a", bData.SelectedParent)
	}
	if bData.BlueScore != 3 {
		t.Fatalf("b's blue score = %d, want 3", bData.BlueScore)
	}
}

func TestGHOSTDAGDiamondAllBlue(t *testing.T) {
	// genesis -> a, genesis -> b, {a,b} -> c. With k=3 both a and b fit
	// comfortably inside c's blue set.
	genesis := &externalapi.DomainHash{0x10}
	f := newFixture(t, 3, genesis)

	a := &externalapi.DomainHash{0x11}
	f.addBlock(t, a, []*externalapi.DomainHash{genesis})

	b := &externalapi.DomainHash{0x12}
	f.addBlock(t, b, []*externalapi.DomainHash{genesis})

	c := &externalapi.DomainHash{0x13}
	cData := f.addBlock(t, c, []*externalapi.DomainHash{a, b})

	if len(cData.MergeSetReds) != 0 {
		t.Fatalf("c has %d reds, want 0 (k=3 should absorb both sides of the diamond)", len(cData.MergeSetReds))
	}
	// selected parent is the bluer of a, b; both have identical blue work
	// (blue score 2, blue work 1) so the hash tie-break decides, and either
	// is a valid choice as long as it's one of the two.
	if !cData.SelectedParent.Equal(a) && !cData.SelectedParent.Equal(b) {
		t.Fatalf("c's selected parent = %s, want a or b", cData.SelectedParent)
	}
	// blue score = selected parent's blue score (2) + len(blues), and blues
	// contains the selected parent plus the other diamond arm: 2 blues.
	if cData.BlueScore != 4 {
		t.Fatalf("c's blue score = %d, want 4", cData.BlueScore)
	}
}

func TestFindSelectedParentPicksHigherBlueWork(t *testing.T) {
	genesis := &externalapi.DomainHash{0x20}
	f := newFixture(t, 3, genesis)

	a := &externalapi.DomainHash{0x21}
	f.addBlock(t, a, []*externalapi.DomainHash{genesis})

	b := &externalapi.DomainHash{0x22}
	f.addBlock(t, b, []*externalapi.DomainHash{a})

	selected, err := f.ghostdagManager.FindSelectedParent(f.stagingArea, []*externalapi.DomainHash{genesis, a, b})
	if err != nil {
		t.Fatalf("FindSelectedParent: %+v", err)
	}
	if !selected.Equal(b) {
		t.Fatalf("FindSelectedParent = %s, want b (the highest blue work of the three)", selected)
	}
}

package pruningproofmanager

import (
	"math/big"
	"testing"

	"github.com/kaspanet/kaspad/domain/consensus/datastructures/ghostdagdatastore"
	"github.com/kaspanet/kaspad/domain/consensus/model"
	"github.com/kaspanet/kaspad/domain/consensus/model/externalapi"
	"github.com/kaspanet/kaspad/infrastructure/db/dbaccess"
)

// stageChain builds a linear selected-parent chain rooted at ORIGIN with
// one block per blue score in blueScores (ascending), so depth.go's walk
// can be exercised without running real GHOSTDAG.
func stageChain(t *testing.T, store model.GHOSTDAGDataStore, stagingArea *model.StagingArea, blueScores []uint64) []*externalapi.DomainHash {
	t.Helper()

	store.Stage(stagingArea, externalapi.OriginHash, &externalapi.BlockGHOSTDAGData{
		BlueWork:           big.NewInt(0),
		BluesAnticoneSizes: map[externalapi.DomainHash]externalapi.KType{},
	})

	hashes := make([]*externalapi.DomainHash, len(blueScores))
	previous := externalapi.OriginHash
	for i, blueScore := range blueScores {
		hash := &externalapi.DomainHash{byte(i + 1)}
		store.Stage(stagingArea, hash, &externalapi.BlockGHOSTDAGData{
			BlueScore:          blueScore,
			BlueWork:           big.NewInt(int64(blueScore)),
			SelectedParent:     previous,
			BluesAnticoneSizes: map[externalapi.DomainHash]externalapi.KType{},
		})
		hashes[i] = hash
		previous = hash
	}
	return hashes
}

func TestBlockAtDepthZeroReturnsHighHash(t *testing.T) {
	databaseContext := dbaccess.NewMemoryOnly()
	store := ghostdagdatastore.New(0, 10)
	stagingArea := model.NewStagingArea()

	hashes := stageChain(t, store, stagingArea, []uint64{1, 2, 3})
	highHash := hashes[2]

	got, err := blockAtDepth(databaseContext, stagingArea, store, highHash, 0)
	if err != nil {
		t.Fatalf("blockAtDepth: %+v", err)
	}
	if !got.Equal(highHash) {
		t.Fatalf("blockAtDepth(depth=0) = %s, want highHash itself (%s)", got, highHash)
	}
}

func TestBlockAtDepthWalksBackByBlueScore(t *testing.T) {
	databaseContext := dbaccess.NewMemoryOnly()
	store := ghostdagdatastore.New(0, 10)
	stagingArea := model.NewStagingArea()

	hashes := stageChain(t, store, stagingArea, []uint64{1, 2, 3, 4, 5})
	highHash := hashes[4] // blue score 5

	// depth=2 should stop at the deepest block whose blue score is still
	// within 2 of 5, i.e. blue score 3 (hashes[2]).
	got, err := blockAtDepth(databaseContext, stagingArea, store, highHash, 2)
	if err != nil {
		t.Fatalf("blockAtDepth: %+v", err)
	}
	if !got.Equal(hashes[2]) {
		t.Fatalf("blockAtDepth(depth=2) = %s, want %s", got, hashes[2])
	}
}

func TestBlockAtDepthStopsBeforeOrigin(t *testing.T) {
	databaseContext := dbaccess.NewMemoryOnly()
	store := ghostdagdatastore.New(0, 10)
	stagingArea := model.NewStagingArea()

	hashes := stageChain(t, store, stagingArea, []uint64{1, 2})
	highHash := hashes[1]

	// A depth far larger than the whole chain's blue score span must stop
	// at the last real block before ORIGIN, never return ORIGIN itself.
	got, err := blockAtDepth(databaseContext, stagingArea, store, highHash, 1000)
	if err != nil {
		t.Fatalf("blockAtDepth: %+v", err)
	}
	if got.IsOrigin() {
		t.Fatal("blockAtDepth must never return ORIGIN")
	}
	if !got.Equal(hashes[0]) {
		t.Fatalf("blockAtDepth(depth=1000) = %s, want %s (the last real block)", got, hashes[0])
	}
}

func TestChainUpToDepthIncludesHighHash(t *testing.T) {
	databaseContext := dbaccess.NewMemoryOnly()
	store := ghostdagdatastore.New(0, 10)
	stagingArea := model.NewStagingArea()

	hashes := stageChain(t, store, stagingArea, []uint64{1, 2, 3})
	highHash := hashes[2]

	chain, err := chainUpToDepth(databaseContext, stagingArea, store, highHash, 1)
	if err != nil {
		t.Fatalf("chainUpToDepth: %+v", err)
	}
	if len(chain) == 0 || !chain[0].Equal(highHash) {
		t.Fatalf("chainUpToDepth must start with highHash, got %v", chain)
	}
}

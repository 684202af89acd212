package parentsmanager_test

import (
	"math/big"
	"testing"

	"github.com/kaspanet/kaspad/domain/consensus/model/externalapi"
	"github.com/kaspanet/kaspad/domain/consensus/processes/parentsmanager"
)

func sampleHeader(nonce uint64, levelZeroParents []*externalapi.DomainHash) *externalapi.DomainBlockHeader {
	return &externalapi.DomainBlockHeader{
		Version:              1,
		ParentsByLevel:       [][]*externalapi.DomainHash{levelZeroParents, nil, nil},
		HashMerkleRoot:       &externalapi.DomainHash{1},
		AcceptedIDMerkleRoot: &externalapi.DomainHash{2},
		UTXOCommitment:       &externalapi.DomainHash{3},
		TimeInMilliseconds:   1000,
		Bits:                 486604799,
		Nonce:                nonce,
		DAAScore:             1,
		BlueWork:             big.NewInt(1),
		PruningPoint:         &externalapi.DomainHash{4},
	}
}

func TestBlockLevelIsZeroWhenMaxLevelIsZero(t *testing.T) {
	pm := parentsmanager.New(0)
	header := sampleHeader(1, nil)

	for nonce := uint64(0); nonce < 32; nonce++ {
		header.Nonce = nonce
		if level := pm.BlockLevel(header); level != 0 {
			t.Fatalf("BlockLevel with maxBlockLevel=0 returned %d, want 0", level)
		}
	}
}

func TestBlockLevelIsBoundedByMax(t *testing.T) {
	const maxLevel = externalapi.BlockLevel(225)
	pm := parentsmanager.New(maxLevel)
	header := sampleHeader(1, nil)

	for nonce := uint64(0); nonce < 64; nonce++ {
		header.Nonce = nonce
		level := pm.BlockLevel(header)
		if level > maxLevel {
			t.Fatalf("BlockLevel returned %d, exceeds maxBlockLevel %d", level, maxLevel)
		}
	}
}

func TestBlockLevelIsDeterministic(t *testing.T) {
	pm := parentsmanager.New(225)
	header := sampleHeader(42, nil)

	first := pm.BlockLevel(header)
	second := pm.BlockLevel(header)
	if first != second {
		t.Fatalf("BlockLevel is not deterministic: got %d then %d", first, second)
	}
}

func TestParentsAtLevel(t *testing.T) {
	pm := parentsmanager.New(2)
	levelZero := []*externalapi.DomainHash{{0x01}, {0x02}}
	header := &externalapi.DomainBlockHeader{
		ParentsByLevel: [][]*externalapi.DomainHash{
			levelZero,
			{{0x03}},
		},
	}

	got := pm.ParentsAtLevel(header, 0)
	if !externalapi.HashesEqual(got, levelZero) {
		t.Fatalf("ParentsAtLevel(0) = %v, want %v", got, levelZero)
	}

	got = pm.ParentsAtLevel(header, 1)
	if len(got) != 1 || !got[0].Equal(&externalapi.DomainHash{0x03}) {
		t.Fatalf("ParentsAtLevel(1) = %v, want [{0x03}]", got)
	}

	got = pm.ParentsAtLevel(header, 5)
	if got != nil {
		t.Fatalf("ParentsAtLevel for an out-of-range level = %v, want nil", got)
	}
}

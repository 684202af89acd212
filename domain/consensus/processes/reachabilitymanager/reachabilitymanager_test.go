package reachabilitymanager_test

import (
	"testing"

	"github.com/kaspanet/kaspad/domain/consensus/datastructures/reachabilitydatastore"
	"github.com/kaspanet/kaspad/domain/consensus/model"
	"github.com/kaspanet/kaspad/domain/consensus/model/externalapi"
	"github.com/kaspanet/kaspad/domain/consensus/processes/reachabilitymanager"
	"github.com/kaspanet/kaspad/infrastructure/db/dbaccess"
)

func newManager(t *testing.T) (model.ReachabilityManager, *model.StagingArea) {
	t.Helper()

	databaseContext := dbaccess.NewMemoryOnly()
	store := reachabilitydatastore.New(0, 100)
	rm := reachabilitymanager.New(databaseContext, store)

	stagingArea := model.NewStagingArea()
	if err := rm.Init(stagingArea); err != nil {
		t.Fatalf("Init: %+v", err)
	}
	return rm, stagingArea
}

func TestOriginIsAncestorOfEverything(t *testing.T) {
	rm, stagingArea := newManager(t)

	a := &externalapi.DomainHash{0x01}
	if err := rm.AddBlock(stagingArea, a, externalapi.OriginHash, nil); err != nil {
		t.Fatalf("AddBlock: %+v", err)
	}

	isAncestor, err := rm.IsDAGAncestorOf(stagingArea, externalapi.OriginHash, a)
	if err != nil {
		t.Fatalf("IsDAGAncestorOf: %+v", err)
	}
	if !isAncestor {
		t.Fatal("origin should be an ancestor of every block")
	}
}

func TestTreeChainAncestry(t *testing.T) {
	rm, stagingArea := newManager(t)

	a := &externalapi.DomainHash{0x01}
	b := &externalapi.DomainHash{0x02}
	c := &externalapi.DomainHash{0x03}

	if err := rm.AddBlock(stagingArea, a, externalapi.OriginHash, nil); err != nil {
		t.Fatalf("AddBlock(a): %+v", err)
	}
	if err := rm.AddBlock(stagingArea, b, a, nil); err != nil {
		t.Fatalf("AddBlock(b): %+v", err)
	}
	if err := rm.AddBlock(stagingArea, c, b, nil); err != nil {
		t.Fatalf("AddBlock(c): %+v", err)
	}

	for _, tc := range []struct {
		ancestor, descendant *externalapi.DomainHash
		want                 bool
	}{
		{a, c, true},
		{b, c, true},
		{a, b, true},
		{c, a, false},
		{b, a, false},
	} {
		got, err := rm.IsDAGAncestorOf(stagingArea, tc.ancestor, tc.descendant)
		if err != nil {
			t.Fatalf("IsDAGAncestorOf(%s, %s): %+v", tc.ancestor, tc.descendant, err)
		}
		if got != tc.want {
			t.Fatalf("IsDAGAncestorOf(%s, %s) = %v, want %v", tc.ancestor, tc.descendant, got, tc.want)
		}
	}
}

func TestMergedBlockIsAncestorThroughFutureCoveringSet(t *testing.T) {
	rm, stagingArea := newManager(t)

	// genesis -> a, genesis -> b, {a,b} -> c (c's tree parent is a; b is
	// recorded via the merge set instead of tree containment).
	a := &externalapi.DomainHash{0x01}
	b := &externalapi.DomainHash{0x02}
	c := &externalapi.DomainHash{0x03}

	if err := rm.AddBlock(stagingArea, a, externalapi.OriginHash, nil); err != nil {
		t.Fatalf("AddBlock(a): %+v", err)
	}
	if err := rm.AddBlock(stagingArea, b, externalapi.OriginHash, nil); err != nil {
		t.Fatalf("AddBlock(b): %+v", err)
	}
	if err := rm.AddBlock(stagingArea, c, a, []*externalapi.DomainHash{b}); err != nil {
		t.Fatalf("AddBlock(c): %+v", err)
	}

	isAncestor, err := rm.IsDAGAncestorOf(stagingArea, b, c)
	if err != nil {
		t.Fatalf("IsDAGAncestorOf(b, c): %+v", err)
	}
	if !isAncestor {
		t.Fatal("b should be an ancestor of c through the merge set, despite not being c's tree parent")
	}

	isAncestor, err = rm.IsDAGAncestorOf(stagingArea, c, b)
	if err != nil {
		t.Fatalf("IsDAGAncestorOf(c, b): %+v", err)
	}
	if isAncestor {
		t.Fatal("c should not be an ancestor of b")
	}
}

func TestIsDAGAncestorOfAny(t *testing.T) {
	rm, stagingArea := newManager(t)

	a := &externalapi.DomainHash{0x01}
	b := &externalapi.DomainHash{0x02}
	unrelated := &externalapi.DomainHash{0x03}

	if err := rm.AddBlock(stagingArea, a, externalapi.OriginHash, nil); err != nil {
		t.Fatalf("AddBlock(a): %+v", err)
	}
	if err := rm.AddBlock(stagingArea, b, a, nil); err != nil {
		t.Fatalf("AddBlock(b): %+v", err)
	}
	if err := rm.AddBlock(stagingArea, unrelated, externalapi.OriginHash, nil); err != nil {
		t.Fatalf("AddBlock(unrelated): %+v", err)
	}

	isAncestor, err := rm.IsDAGAncestorOfAny(stagingArea, a, []*externalapi.DomainHash{unrelated, b})
	if err != nil {
		t.Fatalf("IsDAGAncestorOfAny: %+v", err)
	}
	if !isAncestor {
		t.Fatal("a should be an ancestor of at least one of [unrelated, b] (it is b's parent)")
	}

	isAncestor, err = rm.IsDAGAncestorOfAny(stagingArea, b, []*externalapi.DomainHash{unrelated})
	if err != nil {
		t.Fatalf("IsDAGAncestorOfAny: %+v", err)
	}
	if isAncestor {
		t.Fatal("b should not be an ancestor of unrelated")
	}
}

func TestReindexOnIntervalExhaustion(t *testing.T) {
	rm, stagingArea := newManager(t)

	// childCapacityDivisor is 64, so adding many children of the same
	// parent forces at least one reindexTree call; the oracle must still
	// answer correctly afterwards.
	parent := &externalapi.DomainHash{0x01}
	if err := rm.AddBlock(stagingArea, parent, externalapi.OriginHash, nil); err != nil {
		t.Fatalf("AddBlock(parent): %+v", err)
	}

	var children []*externalapi.DomainHash
	for i := byte(1); i <= 200; i++ {
		child := &externalapi.DomainHash{0x02, i}
		if err := rm.AddBlock(stagingArea, child, parent, nil); err != nil {
			t.Fatalf("AddBlock(child %d): %+v", i, err)
		}
		children = append(children, child)
	}

	for _, child := range children {
		isAncestor, err := rm.IsDAGAncestorOf(stagingArea, parent, child)
		if err != nil {
			t.Fatalf("IsDAGAncestorOf(parent, child) after reindex: %+v", err)
		}
		if !isAncestor {
			t.Fatalf("parent should remain an ancestor of every child after a reindex")
		}
	}

	isAncestor, err := rm.IsDAGAncestorOf(stagingArea, children[0], children[len(children)-1])
	if err != nil {
		t.Fatalf("IsDAGAncestorOf(sibling, sibling): %+v", err)
	}
	if isAncestor {
		t.Fatal("unrelated siblings must not be ancestors of one another")
	}
}

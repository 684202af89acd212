package ruleerrors_test

import (
	"testing"

	"github.com/pkg/errors"

	"github.com/kaspanet/kaspad/domain/consensus/ruleerrors"
)

func TestIsInterrupted(t *testing.T) {
	if !ruleerrors.IsInterrupted(ruleerrors.ErrPruningValidationInterrupted) {
		t.Fatal("IsInterrupted should recognize ErrPruningValidationInterrupted")
	}
	if !ruleerrors.IsInterrupted(errors.Wrap(ruleerrors.ErrPruningValidationInterrupted, "while validating level 3")) {
		t.Fatal("IsInterrupted should see through a wrapped error")
	}
	if ruleerrors.IsInterrupted(ruleerrors.ErrProofInsufficientBlueWork) {
		t.Fatal("IsInterrupted should not match an unrelated sentinel")
	}
}

func TestIsInsufficientWork(t *testing.T) {
	for _, sentinel := range []error{ruleerrors.ErrProofInsufficientBlueWork, ruleerrors.ErrProofNotEnoughHeaders} {
		if !ruleerrors.IsInsufficientWork(sentinel) {
			t.Fatalf("IsInsufficientWork should match %v", sentinel)
		}
	}
	if ruleerrors.IsInsufficientWork(ruleerrors.ErrProofNotEnoughLevels) {
		t.Fatal("IsInsufficientWork should not match a shape error")
	}
}

func TestIsStructural(t *testing.T) {
	structural := []error{
		ruleerrors.ErrProofNotEnoughLevels,
		ruleerrors.ErrProofLevelZeroEmpty,
		ruleerrors.ErrProofWrongBlockLevel,
		ruleerrors.ErrProofDuplicateHeaderAtLevel,
		ruleerrors.ErrProofHeaderWithNoKnownParents,
		ruleerrors.ErrProofMissesBlocksBelowPruningPoint,
		ruleerrors.ErrProofMissingBlockAtDepthMFromNext,
		ruleerrors.ErrPruningPointPastMissingReachability,
	}
	for _, err := range structural {
		if !ruleerrors.IsStructural(err) {
			t.Fatalf("IsStructural should match %v", err)
		}
	}

	nonStructural := []error{
		ruleerrors.ErrProofInsufficientBlueWork,
		ruleerrors.ErrProofNotEnoughHeaders,
		ruleerrors.ErrPruningPointInsufficientDepth,
		ruleerrors.ErrPruningValidationInterrupted,
	}
	for _, err := range nonStructural {
		if ruleerrors.IsStructural(err) {
			t.Fatalf("IsStructural should not match %v", err)
		}
	}
}

func TestSentinelsAreDistinct(t *testing.T) {
	all := []error{
		ruleerrors.ErrProofNotEnoughLevels,
		ruleerrors.ErrProofLevelZeroEmpty,
		ruleerrors.ErrProofWrongBlockLevel,
		ruleerrors.ErrProofDuplicateHeaderAtLevel,
		ruleerrors.ErrProofHeaderWithNoKnownParents,
		ruleerrors.ErrProofMissesBlocksBelowPruningPoint,
		ruleerrors.ErrProofMissingBlockAtDepthMFromNext,
		ruleerrors.ErrPruningPointPastMissingReachability,
		ruleerrors.ErrProofInsufficientBlueWork,
		ruleerrors.ErrProofNotEnoughHeaders,
		ruleerrors.ErrPruningPointInsufficientDepth,
		ruleerrors.ErrPruningValidationInterrupted,
		ruleerrors.ErrMissingGHOSTDAGDataForDepthWalk,
		ruleerrors.ErrNoCommonAncestor,
		ruleerrors.ErrProofTwoMChainNotContained,
	}
	for i, a := range all {
		for j, b := range all {
			if i == j {
				continue
			}
			if errors.Is(a, b) {
				t.Fatalf("sentinel %d (%v) should not equal sentinel %d (%v)", i, a, j, b)
			}
		}
	}
}

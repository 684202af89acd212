// Package ruleerrors defines the typed error taxonomy for pruning proof
// validation, application and building, grouped by kind so a caller can
// branch on what went wrong (disconnect a peer vs. retry a build) without
// string-matching error text.
package ruleerrors

import "github.com/pkg/errors"

// Shape errors: the proof's top-level structure is malformed.
var (
	ErrProofNotEnoughLevels = errors.New("proof does not have the expected number of levels")
	ErrProofLevelZeroEmpty  = errors.New("proof level 0 is empty")
)

// Structural errors: an individual header or relation violates an
// invariant the proof is supposed to uphold.
var (
	ErrProofWrongBlockLevel               = errors.New("header has a block level lower than the level it appears at")
	ErrProofDuplicateHeaderAtLevel        = errors.New("duplicate header at level")
	ErrProofHeaderWithNoKnownParents      = errors.New("header has no known parents at level")
	ErrProofMissesBlocksBelowPruningPoint = errors.New("selected tip at level is neither the pruning point nor one of its parents")
	ErrProofMissingBlockAtDepthMFromNext  = errors.New("block at depth M from the next level is missing from this level's relations")
	ErrPruningPointPastMissingReachability = errors.New("header-only trusted block is not a DAG ancestor of the pruning point")
)

// Work errors: the proof exists and is well-formed but doesn't carry
// enough accumulated work to supersede the local view.
var (
	ErrProofInsufficientBlueWork = errors.New("proof does not have enough blue work to supersede the current pruning point")
	ErrProofNotEnoughHeaders     = errors.New("no common ancestor between proof and local view, and local view is not inferior at any level")
)

// Availability errors: required history has already been pruned locally.
var (
	ErrPruningPointInsufficientDepth = errors.New("pruning point has insufficient depth from virtual for a final anticone")
)

// Interrupt: cooperative cancellation observed at a level boundary.
var (
	ErrPruningValidationInterrupted = errors.New("pruning point proof validation was interrupted")
)

// Internal errors: a required store entry was missing, indicating
// corruption rather than an invalid proof.
var (
	ErrMissingGHOSTDAGDataForDepthWalk = errors.New("missing ghostdag data while walking chain for depth")
	ErrNoCommonAncestor                = errors.New("could not find a common ancestor")
	ErrProofTwoMChainNotContained      = errors.New("the selected tip's 2M-deep selected chain is not fully contained in the assembled level proof")
)

// IsInterrupted reports whether err (or one of its causes) is the
// validation-interrupted sentinel.
func IsInterrupted(err error) bool {
	return errors.Is(err, ErrPruningValidationInterrupted)
}

// IsInsufficientWork reports whether err (or one of its causes) is one of
// the work-comparison rejection sentinels.
func IsInsufficientWork(err error) bool {
	return errors.Is(err, ErrProofInsufficientBlueWork) || errors.Is(err, ErrProofNotEnoughHeaders)
}

// IsStructural reports whether err (or one of its causes) represents a
// malformed proof, as opposed to a merely out-worked one.
func IsStructural(err error) bool {
	switch {
	case errors.Is(err, ErrProofNotEnoughLevels),
		errors.Is(err, ErrProofLevelZeroEmpty),
		errors.Is(err, ErrProofWrongBlockLevel),
		errors.Is(err, ErrProofDuplicateHeaderAtLevel),
		errors.Is(err, ErrProofHeaderWithNoKnownParents),
		errors.Is(err, ErrProofMissesBlocksBelowPruningPoint),
		errors.Is(err, ErrProofMissingBlockAtDepthMFromNext),
		errors.Is(err, ErrPruningPointPastMissingReachability):
		return true
	default:
		return false
	}
}

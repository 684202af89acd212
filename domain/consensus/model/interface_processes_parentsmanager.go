package model

import "github.com/kaspanet/kaspad/domain/consensus/model/externalapi"

// ParentsManager is the header level index: pure functions over a header's
// stored parents-by-level, with no store access of its own.
type ParentsManager interface {
	ParentsAtLevel(header *externalapi.DomainBlockHeader, level externalapi.BlockLevel) []*externalapi.DomainHash
	BlockLevel(header *externalapi.DomainBlockHeader) externalapi.BlockLevel
}

// WindowManager computes a block's difficulty-adjustment window.
type WindowManager interface {
	BlockWindow(stagingArea *StagingArea, ghostdagData *externalapi.BlockGHOSTDAGData, windowType WindowType) ([]*externalapi.DomainHash, error)
}

// WindowType enumerates the kinds of windows a WindowManager can compute.
// Only FullDifficultyWindow is needed by the pruning-proof trusted data
// builder; other window types (sampled DAA windows) are out of scope.
type WindowType int

// FullDifficultyWindow is the unsampled, full-size difficulty window used
// when shipping a pruning-point anticone's trusted data.
const FullDifficultyWindow WindowType = iota

// Package parentsmanager implements the header level index: pure
// functions over a header's per-level parent sets, with no store access
// of its own.
package parentsmanager

import (
	"math/bits"

	"github.com/kaspanet/kaspad/domain/consensus/model"
	"github.com/kaspanet/kaspad/domain/consensus/model/externalapi"
	"github.com/kaspanet/kaspad/domain/consensus/utils/hashserialization"
)

type parentsManager struct {
	maxBlockLevel externalapi.BlockLevel
}

// New instantiates a ParentsManager bounded by maxBlockLevel.
func New(maxBlockLevel externalapi.BlockLevel) model.ParentsManager {
	return &parentsManager{maxBlockLevel: maxBlockLevel}
}

// ParentsAtLevel returns the raw parent set header carries for level.
func (pm *parentsManager) ParentsAtLevel(header *externalapi.DomainBlockHeader, level externalapi.BlockLevel) []*externalapi.DomainHash {
	return header.ParentsAtLevel(level)
}

// BlockLevel derives header's PoW-based block level: MAX_LEVEL minus the
// header hash's leading zero bit count, capped to [0, maxBlockLevel]. This
// is the literal level formula external callers (the real PoW service,
// which this hash-based stand-in approximates) are expected to produce.
func (pm *parentsManager) BlockLevel(header *externalapi.DomainBlockHeader) externalapi.BlockLevel {
	hash := hashserialization.HeaderHash(header)

	leadingZeroBits := 0
	for _, b := range hash[:] {
		if b == 0 {
			leadingZeroBits += 8
			continue
		}
		leadingZeroBits += bits.LeadingZeros8(b)
		break
	}

	level := int(pm.maxBlockLevel) - leadingZeroBits
	if level < 0 {
		return 0
	}
	if level > int(pm.maxBlockLevel) {
		return pm.maxBlockLevel
	}
	return externalapi.BlockLevel(level)
}

package externalapi

import "math/big"

// DomainBlockHeader is the domain representation of a block header. Unlike
// the teacher's single-level ParentHashes, this carries a parent set per
// block level, since every header participates in every level up to its
// own block level.
type DomainBlockHeader struct {
	Version              uint16
	ParentsByLevel       [][]*DomainHash
	HashMerkleRoot       *DomainHash
	AcceptedIDMerkleRoot *DomainHash
	UTXOCommitment       *DomainHash
	TimeInMilliseconds   int64
	Bits                 uint32
	Nonce                uint64
	DAAScore             uint64
	BlueWork             *big.Int
	BlueScore            uint64
	PruningPoint         *DomainHash
}

// DirectParents returns the level-0 parents of the header, i.e. its actual
// DAG parents.
func (h *DomainBlockHeader) DirectParents() []*DomainHash {
	if len(h.ParentsByLevel) == 0 {
		return nil
	}
	return h.ParentsByLevel[0]
}

// ParentsAtLevel returns the raw parent set the header carries for the
// given level, or nil if the header doesn't reach that level.
func (h *DomainBlockHeader) ParentsAtLevel(level BlockLevel) []*DomainHash {
	if int(level) >= len(h.ParentsByLevel) {
		return nil
	}
	return h.ParentsByLevel[level]
}

// Clone returns a deep copy of the header.
func (h *DomainBlockHeader) Clone() *DomainBlockHeader {
	parentsByLevel := make([][]*DomainHash, len(h.ParentsByLevel))
	for i, parents := range h.ParentsByLevel {
		parentsByLevel[i] = CloneHashes(parents)
	}

	return &DomainBlockHeader{
		Version:              h.Version,
		ParentsByLevel:       parentsByLevel,
		HashMerkleRoot:       h.HashMerkleRoot.Clone(),
		AcceptedIDMerkleRoot: h.AcceptedIDMerkleRoot.Clone(),
		UTXOCommitment:       h.UTXOCommitment.Clone(),
		TimeInMilliseconds:   h.TimeInMilliseconds,
		Bits:                 h.Bits,
		Nonce:                h.Nonce,
		DAAScore:             h.DAAScore,
		BlueWork:             new(big.Int).Set(h.BlueWork),
		BlueScore:            h.BlueScore,
		PruningPoint:         h.PruningPoint.Clone(),
	}
}

// HeaderWithBlockLevel bundles a header together with its precomputed block
// level, avoiding a redundant PoW recomputation in hot paths that already
// know it (mirrors the original's HeaderWithBlockLevel).
type HeaderWithBlockLevel struct {
	Header     *DomainBlockHeader
	BlockLevel BlockLevel
}

package externalapi

import "math/big"

// BlockGHOSTDAGData is the full per-level GHOSTDAG tuple computed for a
// block: its selected parent, ordered mergeset blues and reds, blue score,
// blue work and per-blue anticone sizes.
type BlockGHOSTDAGData struct {
	BlueScore          uint64
	BlueWork           *big.Int
	SelectedParent     *DomainHash
	MergeSetBlues      []*DomainHash
	MergeSetReds       []*DomainHash
	BluesAnticoneSizes map[DomainHash]KType
}

// KType is the type of the GHOSTDAG K parameter and of per-blue anticone
// sizes bounded by it.
type KType uint8

// Clone returns a deep copy of the GHOSTDAG tuple.
func (ghd *BlockGHOSTDAGData) Clone() *BlockGHOSTDAGData {
	if ghd == nil {
		return nil
	}
	var blueWork *big.Int
	if ghd.BlueWork != nil {
		blueWork = new(big.Int).Set(ghd.BlueWork)
	}
	bluesAnticoneSizes := make(map[DomainHash]KType, len(ghd.BluesAnticoneSizes))
	for hash, size := range ghd.BluesAnticoneSizes {
		bluesAnticoneSizes[hash] = size
	}
	return &BlockGHOSTDAGData{
		BlueScore:          ghd.BlueScore,
		BlueWork:           blueWork,
		SelectedParent:     ghd.SelectedParent,
		MergeSetBlues:      CloneHashes(ghd.MergeSetBlues),
		MergeSetReds:       CloneHashes(ghd.MergeSetReds),
		BluesAnticoneSizes: bluesAnticoneSizes,
	}
}

// CompactGHOSTDAGData is a reduced view of BlockGHOSTDAGData carrying only
// the fields needed for depth walks and work comparisons. Stores derive it
// from the full stored record, so fetching it still loads the mergeset data.
type CompactGHOSTDAGData struct {
	BlueScore      uint64
	BlueWork       *big.Int
	SelectedParent *DomainHash
}

// ToCompact reduces a full GHOSTDAG tuple to its compact form.
func (ghd *BlockGHOSTDAGData) ToCompact() *CompactGHOSTDAGData {
	return &CompactGHOSTDAGData{
		BlueScore:      ghd.BlueScore,
		BlueWork:       ghd.BlueWork,
		SelectedParent: ghd.SelectedParent,
	}
}

// BlockGHOSTDAGDataHashPair associates a hash with its ghostdag data, used
// when shipping trusted ghostdag data alongside a pruning proof.
type BlockGHOSTDAGDataHashPair struct {
	Hash         *DomainHash
	GHOSTDAGData *BlockGHOSTDAGData
}

// TrustedHeader pairs a header with its externally supplied ghostdag data,
// as shipped in a pruning-point anticone's DAA window.
//
// IsHeaderOnly distinguishes the two kinds of block this type is used to
// carry: DAA-window and selected-chain padding pulled in purely for its
// header (IsHeaderOnly true), versus an actual pruning-point anticone
// block the receiving node already holds in full (IsHeaderOnly false).
// Only header-only entries are required to be reachability ancestors of
// the pruning point; anticone blocks are by definition not.
type TrustedHeader struct {
	Header       *DomainBlockHeader
	GHOSTDAGData *BlockGHOSTDAGData
	IsHeaderOnly bool
}

// SortableBlock is a (hash, blue work) pair ordered first by blue work and
// then by hash, the tie-break used throughout GHOSTDAG selection and BFS
// traversal ordering.
type SortableBlock struct {
	Hash     *DomainHash
	BlueWork *big.Int
}

// Less reports whether sb sorts before other: lower blue work first, hash
// as the tie-break.
func (sb *SortableBlock) Less(other *SortableBlock) bool {
	cmp := sb.BlueWork.Cmp(other.BlueWork)
	if cmp != 0 {
		return cmp < 0
	}
	return compareHashes(sb.Hash, other.Hash) < 0
}

func compareHashes(a, b *DomainHash) int {
	for i := range a {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	return 0
}

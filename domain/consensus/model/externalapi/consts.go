package externalapi

// BlockLevel is the type used to represent the level of a block in the
// leveled hierarchy used by the pruning proof.
type BlockLevel byte

// VirtualBlockHash is a sentinel hash representing the virtual block, the
// conceptual tip that always points at the current set of body tips.
var VirtualBlockHash = &DomainHash{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
	0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
	0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
	0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff}

// OriginHash is the synthetic sentinel that is the ancestor of every
// level-0 starting block and of every level's lowest block. It has no
// parents and is never written to a persistent header store.
var OriginHash = &DomainHash{0xfe, 0xfe, 0xfe, 0xfe, 0xfe, 0xfe, 0xfe, 0xfe,
	0xfe, 0xfe, 0xfe, 0xfe, 0xfe, 0xfe, 0xfe, 0xfe,
	0xfe, 0xfe, 0xfe, 0xfe, 0xfe, 0xfe, 0xfe, 0xfe,
	0xfe, 0xfe, 0xfe, 0xfe, 0xfe, 0xfe, 0xfe, 0xfe}

// IsOrigin returns whether this hash is the origin sentinel.
func (hash *DomainHash) IsOrigin() bool {
	return hash.Equal(OriginHash)
}

// IsVirtual returns whether this hash is the virtual block sentinel.
func (hash *DomainHash) IsVirtual() bool {
	return hash.Equal(VirtualBlockHash)
}

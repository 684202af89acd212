// Package hashset implements a small set of block hashes, used wherever
// the algorithms in this module need set membership/union over hashes
// (anticone computation, mergeset filtering, level-ancestor tracking).
package hashset

import "github.com/kaspanet/kaspad/domain/consensus/model/externalapi"

// HashSet is a set of *externalapi.DomainHash.
type HashSet map[externalapi.DomainHash]struct{}

// New creates a HashSet from the given hashes.
func New(hashes ...*externalapi.DomainHash) HashSet {
	s := make(HashSet, len(hashes))
	for _, h := range hashes {
		s.Add(h)
	}
	return s
}

// Add inserts hash into the set.
func (s HashSet) Add(hash *externalapi.DomainHash) {
	s[*hash] = struct{}{}
}

// Contains reports whether hash is in the set.
func (s HashSet) Contains(hash *externalapi.DomainHash) bool {
	_, ok := s[*hash]
	return ok
}

// Remove deletes hash from the set.
func (s HashSet) Remove(hash *externalapi.DomainHash) {
	delete(s, *hash)
}

// ToSlice returns the set's members as a slice, in unspecified order.
func (s HashSet) ToSlice() []*externalapi.DomainHash {
	out := make([]*externalapi.DomainHash, 0, len(s))
	for h := range s {
		hCopy := h
		out = append(out, &hCopy)
	}
	return out
}

// Package hashes provides the hash primitive used to derive a block's hash
// from its serialized header fields.
package hashes

import (
	"github.com/kaspanet/kaspad/domain/consensus/model/externalapi"
	"lukechampine.com/blake3"
)

// HashWriter incrementally hashes written bytes and finalizes to a
// DomainHash. Blocks are identified by a single blake3 pass over their
// serialized header, the same primitive the pack uses elsewhere for
// content-addressed hashing.
type HashWriter struct {
	hasher *blake3.Hasher
}

// NewHashWriter creates a HashWriter.
func NewHashWriter() *HashWriter {
	return &HashWriter{hasher: blake3.New(32, nil)}
}

// Write implements io.Writer.
func (h *HashWriter) Write(p []byte) (int, error) {
	return h.hasher.Write(p)
}

// Finalize returns the hash of everything written so far. It does not
// reset the writer.
func (h *HashWriter) Finalize() externalapi.DomainHash {
	var result externalapi.DomainHash
	sum := h.hasher.Sum(nil)
	copy(result[:], sum)
	return result
}

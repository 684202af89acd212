// Package hashserialization implements the canonical byte encoding of a
// block header used to derive its hash.
package hashserialization

import (
	"encoding/binary"
	"io"

	"github.com/kaspanet/kaspad/domain/consensus/model/externalapi"
	"github.com/kaspanet/kaspad/domain/consensus/utils/hashes"
	"github.com/pkg/errors"
)

func writeElements(w io.Writer, elements ...interface{}) error {
	for _, element := range elements {
		if err := writeElement(w, element); err != nil {
			return err
		}
	}
	return nil
}

func writeElement(w io.Writer, element interface{}) error {
	switch e := element.(type) {
	case uint16:
		return binary.Write(w, binary.LittleEndian, e)
	case uint32:
		return binary.Write(w, binary.LittleEndian, e)
	case uint64:
		return binary.Write(w, binary.LittleEndian, e)
	case int64:
		return binary.Write(w, binary.LittleEndian, e)
	case *externalapi.DomainHash:
		_, err := w.Write(e[:])
		return err
	default:
		return errors.Errorf("unsupported type %T in header serialization", element)
	}
}

// serializeHeader writes every field that determines a header's hash,
// including the parent sets of every level it participates in.
func serializeHeader(w io.Writer, header *externalapi.DomainBlockHeader) error {
	if err := writeElements(w, header.Version, uint64(len(header.ParentsByLevel))); err != nil {
		return err
	}

	for _, levelParents := range header.ParentsByLevel {
		if err := writeElement(w, uint64(len(levelParents))); err != nil {
			return err
		}
		for _, hash := range levelParents {
			if err := writeElement(w, hash); err != nil {
				return err
			}
		}
	}

	return writeElements(w,
		header.HashMerkleRoot,
		header.AcceptedIDMerkleRoot,
		header.UTXOCommitment,
		header.TimeInMilliseconds,
		header.Bits,
		header.Nonce,
		header.DAAScore,
		header.PruningPoint,
	)
}

// HeaderHash derives a header's hash from its serialized fields.
func HeaderHash(header *externalapi.DomainBlockHeader) *externalapi.DomainHash {
	writer := hashes.NewHashWriter()
	err := serializeHeader(writer, header)
	if err != nil {
		// serializeHeader only fails on a programming error (an unsupported
		// field type), never on a write failure, since HashWriter never errors.
		panic(errors.Wrap(err, "HeaderHash failed, this should never happen unless DomainBlockHeader was changed"))
	}

	res := writer.Finalize()
	return &res
}

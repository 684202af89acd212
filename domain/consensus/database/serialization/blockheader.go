// Package serialization implements the on-disk encodings for the types
// that cross a store boundary. Stores serialize via encoding/gob rather
// than protobuf: the teacher's generated .pb.go code requires running
// protoc, which this module's build process never does.
package serialization

import (
	"bytes"
	"encoding/gob"
	"math/big"

	"github.com/kaspanet/kaspad/domain/consensus/model/externalapi"
)

// dbBlockHeader is the gob-friendly shape of a DomainBlockHeader.
type dbBlockHeader struct {
	Version              uint16
	ParentsByLevel       [][][externalapi.DomainHashSize]byte
	HashMerkleRoot       [externalapi.DomainHashSize]byte
	AcceptedIDMerkleRoot [externalapi.DomainHashSize]byte
	UTXOCommitment       [externalapi.DomainHashSize]byte
	TimeInMilliseconds   int64
	Bits                 uint32
	Nonce                uint64
	DAAScore             uint64
	BlueWorkBytes        []byte
	BlueScore            uint64
	PruningPoint         [externalapi.DomainHashSize]byte
}

func domainHashToArray(hash *externalapi.DomainHash) [externalapi.DomainHashSize]byte {
	if hash == nil {
		return [externalapi.DomainHashSize]byte{}
	}
	return [externalapi.DomainHashSize]byte(*hash)
}

func arrayToDomainHash(arr [externalapi.DomainHashSize]byte) *externalapi.DomainHash {
	hash := externalapi.DomainHash(arr)
	return &hash
}

func domainHeaderToDBHeader(header *externalapi.DomainBlockHeader) *dbBlockHeader {
	parentsByLevel := make([][][externalapi.DomainHashSize]byte, len(header.ParentsByLevel))
	for i, levelParents := range header.ParentsByLevel {
		converted := make([][externalapi.DomainHashSize]byte, len(levelParents))
		for j, parent := range levelParents {
			converted[j] = domainHashToArray(parent)
		}
		parentsByLevel[i] = converted
	}

	blueWork := header.BlueWork
	if blueWork == nil {
		blueWork = big.NewInt(0)
	}

	return &dbBlockHeader{
		Version:              header.Version,
		ParentsByLevel:       parentsByLevel,
		HashMerkleRoot:       domainHashToArray(header.HashMerkleRoot),
		AcceptedIDMerkleRoot: domainHashToArray(header.AcceptedIDMerkleRoot),
		UTXOCommitment:       domainHashToArray(header.UTXOCommitment),
		TimeInMilliseconds:   header.TimeInMilliseconds,
		Bits:                 header.Bits,
		Nonce:                header.Nonce,
		DAAScore:             header.DAAScore,
		BlueWorkBytes:        blueWork.Bytes(),
		BlueScore:            header.BlueScore,
		PruningPoint:         domainHashToArray(header.PruningPoint),
	}
}

func dbHeaderToDomainHeader(dbHeader *dbBlockHeader) *externalapi.DomainBlockHeader {
	parentsByLevel := make([][]*externalapi.DomainHash, len(dbHeader.ParentsByLevel))
	for i, levelParents := range dbHeader.ParentsByLevel {
		converted := make([]*externalapi.DomainHash, len(levelParents))
		for j, parent := range levelParents {
			converted[j] = arrayToDomainHash(parent)
		}
		parentsByLevel[i] = converted
	}

	return &externalapi.DomainBlockHeader{
		Version:              dbHeader.Version,
		ParentsByLevel:       parentsByLevel,
		HashMerkleRoot:       arrayToDomainHash(dbHeader.HashMerkleRoot),
		AcceptedIDMerkleRoot: arrayToDomainHash(dbHeader.AcceptedIDMerkleRoot),
		UTXOCommitment:       arrayToDomainHash(dbHeader.UTXOCommitment),
		TimeInMilliseconds:   dbHeader.TimeInMilliseconds,
		Bits:                 dbHeader.Bits,
		Nonce:                dbHeader.Nonce,
		DAAScore:             dbHeader.DAAScore,
		BlueWork:             new(big.Int).SetBytes(dbHeader.BlueWorkBytes),
		BlueScore:            dbHeader.BlueScore,
		PruningPoint:         arrayToDomainHash(dbHeader.PruningPoint),
	}
}

// SerializeHeader encodes a header for storage.
func SerializeHeader(header *externalapi.DomainBlockHeader) ([]byte, error) {
	var buf bytes.Buffer
	err := gob.NewEncoder(&buf).Encode(domainHeaderToDBHeader(header))
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DeserializeHeader decodes a header previously written by SerializeHeader.
func DeserializeHeader(data []byte) (*externalapi.DomainBlockHeader, error) {
	var dbHeader dbBlockHeader
	err := gob.NewDecoder(bytes.NewReader(data)).Decode(&dbHeader)
	if err != nil {
		return nil, err
	}
	return dbHeaderToDomainHeader(&dbHeader), nil
}

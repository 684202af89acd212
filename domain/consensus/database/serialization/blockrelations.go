package serialization

import (
	"bytes"
	"encoding/gob"

	"github.com/kaspanet/kaspad/domain/consensus/model/externalapi"
)

type dbBlockRelations struct {
	Parents  [][externalapi.DomainHashSize]byte
	Children [][externalapi.DomainHashSize]byte
}

// SerializeBlockRelations encodes a BlockRelations for storage.
func SerializeBlockRelations(relations *externalapi.BlockRelations) ([]byte, error) {
	dbRelations := &dbBlockRelations{
		Parents:  hashesToArrays(relations.Parents),
		Children: hashesToArrays(relations.Children),
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(dbRelations); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DeserializeBlockRelations decodes data previously written by
// SerializeBlockRelations.
func DeserializeBlockRelations(data []byte) (*externalapi.BlockRelations, error) {
	var dbRelations dbBlockRelations
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&dbRelations); err != nil {
		return nil, err
	}

	return &externalapi.BlockRelations{
		Parents:  arraysToHashes(dbRelations.Parents),
		Children: arraysToHashes(dbRelations.Children),
	}, nil
}

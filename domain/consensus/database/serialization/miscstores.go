package serialization

import (
	"bytes"
	"encoding/gob"
	"math/big"

	"github.com/kaspanet/kaspad/domain/consensus/model/externalapi"
)

type dbVirtualState struct {
	Parents          [][externalapi.DomainHashSize]byte
	HasGHOSTDAGData  bool
	GHOSTDAGDataBytes []byte
}

// SerializeVirtualState encodes a VirtualState for storage.
func SerializeVirtualState(state *externalapi.VirtualState) ([]byte, error) {
	dbState := &dbVirtualState{
		Parents: hashesToArrays(state.Parents),
	}
	if state.GHOSTDAGData != nil {
		ghostdagBytes, err := SerializeGHOSTDAGData(state.GHOSTDAGData)
		if err != nil {
			return nil, err
		}
		dbState.HasGHOSTDAGData = true
		dbState.GHOSTDAGDataBytes = ghostdagBytes
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(dbState); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DeserializeVirtualState decodes data previously written by
// SerializeVirtualState.
func DeserializeVirtualState(data []byte) (*externalapi.VirtualState, error) {
	var dbState dbVirtualState
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&dbState); err != nil {
		return nil, err
	}

	state := &externalapi.VirtualState{
		Parents: arraysToHashes(dbState.Parents),
	}
	if dbState.HasGHOSTDAGData {
		ghostdagData, err := DeserializeGHOSTDAGData(dbState.GHOSTDAGDataBytes)
		if err != nil {
			return nil, err
		}
		state.GHOSTDAGData = ghostdagData
	}
	return state, nil
}

type dbSortableBlock struct {
	Hash          [externalapi.DomainHashSize]byte
	BlueWorkBytes []byte
}

// SerializeSortableBlock encodes a SortableBlock for storage.
func SerializeSortableBlock(block *externalapi.SortableBlock) ([]byte, error) {
	blueWork := block.BlueWork
	if blueWork == nil {
		blueWork = big.NewInt(0)
	}
	dbBlock := &dbSortableBlock{
		Hash:          domainHashToArray(block.Hash),
		BlueWorkBytes: blueWork.Bytes(),
	}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(dbBlock); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DeserializeSortableBlock decodes data previously written by
// SerializeSortableBlock.
func DeserializeSortableBlock(data []byte) (*externalapi.SortableBlock, error) {
	var dbBlock dbSortableBlock
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&dbBlock); err != nil {
		return nil, err
	}
	return &externalapi.SortableBlock{
		Hash:     arrayToDomainHash(dbBlock.Hash),
		BlueWork: new(big.Int).SetBytes(dbBlock.BlueWorkBytes),
	}, nil
}

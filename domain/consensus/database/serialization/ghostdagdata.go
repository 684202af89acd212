package serialization

import (
	"bytes"
	"encoding/gob"
	"math/big"

	"github.com/kaspanet/kaspad/domain/consensus/model/externalapi"
)

type dbBluesAnticoneSizeEntry struct {
	Blue [externalapi.DomainHashSize]byte
	Size externalapi.KType
}

type dbGHOSTDAGData struct {
	BlueScore          uint64
	BlueWorkBytes      []byte
	SelectedParent     [externalapi.DomainHashSize]byte
	HasSelectedParent  bool
	MergeSetBlues      [][externalapi.DomainHashSize]byte
	MergeSetReds       [][externalapi.DomainHashSize]byte
	BluesAnticoneSizes []dbBluesAnticoneSizeEntry
}

func hashesToArrays(hashes []*externalapi.DomainHash) [][externalapi.DomainHashSize]byte {
	out := make([][externalapi.DomainHashSize]byte, len(hashes))
	for i, h := range hashes {
		out[i] = domainHashToArray(h)
	}
	return out
}

func arraysToHashes(arrays [][externalapi.DomainHashSize]byte) []*externalapi.DomainHash {
	out := make([]*externalapi.DomainHash, len(arrays))
	for i, a := range arrays {
		out[i] = arrayToDomainHash(a)
	}
	return out
}

// SerializeGHOSTDAGData encodes a BlockGHOSTDAGData for storage.
func SerializeGHOSTDAGData(data *externalapi.BlockGHOSTDAGData) ([]byte, error) {
	blueWork := data.BlueWork
	if blueWork == nil {
		blueWork = big.NewInt(0)
	}

	dbData := &dbGHOSTDAGData{
		BlueScore:         data.BlueScore,
		BlueWorkBytes:     blueWork.Bytes(),
		HasSelectedParent: data.SelectedParent != nil,
		MergeSetBlues:     hashesToArrays(data.MergeSetBlues),
		MergeSetReds:      hashesToArrays(data.MergeSetReds),
	}
	if data.SelectedParent != nil {
		dbData.SelectedParent = domainHashToArray(data.SelectedParent)
	}
	for hash, size := range data.BluesAnticoneSizes {
		hashCopy := hash
		dbData.BluesAnticoneSizes = append(dbData.BluesAnticoneSizes, dbBluesAnticoneSizeEntry{
			Blue: domainHashToArray(&hashCopy),
			Size: size,
		})
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(dbData); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DeserializeGHOSTDAGData decodes ghostdag data previously written by
// SerializeGHOSTDAGData.
func DeserializeGHOSTDAGData(data []byte) (*externalapi.BlockGHOSTDAGData, error) {
	var dbData dbGHOSTDAGData
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&dbData); err != nil {
		return nil, err
	}

	var selectedParent *externalapi.DomainHash
	if dbData.HasSelectedParent {
		selectedParent = arrayToDomainHash(dbData.SelectedParent)
	}

	bluesAnticoneSizes := make(map[externalapi.DomainHash]externalapi.KType, len(dbData.BluesAnticoneSizes))
	for _, entry := range dbData.BluesAnticoneSizes {
		bluesAnticoneSizes[externalapi.DomainHash(entry.Blue)] = entry.Size
	}

	return &externalapi.BlockGHOSTDAGData{
		BlueScore:          dbData.BlueScore,
		BlueWork:           new(big.Int).SetBytes(dbData.BlueWorkBytes),
		SelectedParent:     selectedParent,
		MergeSetBlues:      arraysToHashes(dbData.MergeSetBlues),
		MergeSetReds:       arraysToHashes(dbData.MergeSetReds),
		BluesAnticoneSizes: bluesAnticoneSizes,
	}, nil
}

package serialization

import (
	"bytes"
	"encoding/gob"

	"github.com/kaspanet/kaspad/domain/consensus/model"
	"github.com/kaspanet/kaspad/domain/consensus/model/externalapi"
)

type dbReachabilityData struct {
	TreeParent        [externalapi.DomainHashSize]byte
	HasTreeParent     bool
	TreeChildren      [][externalapi.DomainHashSize]byte
	IntervalStart     uint64
	IntervalEnd       uint64
	FutureCoveringSet [][externalapi.DomainHashSize]byte
}

// SerializeReachabilityData encodes reachability data for storage.
func SerializeReachabilityData(data *model.ReachabilityData) ([]byte, error) {
	dbData := &dbReachabilityData{
		HasTreeParent:     data.TreeParent != nil,
		TreeChildren:      hashesToArrays(data.TreeChildren),
		FutureCoveringSet: hashesToArrays(data.FutureCoveringSet),
	}
	if data.TreeParent != nil {
		dbData.TreeParent = domainHashToArray(data.TreeParent)
	}
	if data.Interval != nil {
		dbData.IntervalStart = data.Interval.Start
		dbData.IntervalEnd = data.Interval.End
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(dbData); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DeserializeReachabilityData decodes data previously written by
// SerializeReachabilityData.
func DeserializeReachabilityData(data []byte) (*model.ReachabilityData, error) {
	var dbData dbReachabilityData
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&dbData); err != nil {
		return nil, err
	}

	var treeParent *externalapi.DomainHash
	if dbData.HasTreeParent {
		treeParent = arrayToDomainHash(dbData.TreeParent)
	}

	return &model.ReachabilityData{
		TreeParent:   treeParent,
		TreeChildren: arraysToHashes(dbData.TreeChildren),
		Interval: &model.ReachabilityInterval{
			Start: dbData.IntervalStart,
			End:   dbData.IntervalEnd,
		},
		FutureCoveringSet: arraysToHashes(dbData.FutureCoveringSet),
	}, nil
}

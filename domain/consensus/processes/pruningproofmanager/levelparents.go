package pruningproofmanager

import (
	"github.com/kaspanet/kaspad/domain/consensus/model"
	"github.com/kaspanet/kaspad/domain/consensus/model/externalapi"
)

// parentsAtLevel filters header's raw level-L parent set down to the
// parents a relations store actually knows about at that level. A header
// can name parents that never reached level L themselves (every header
// lists its direct parents' own level-L ancestry, which may be thinner
// than L); those are meaningless at this level and are dropped. If
// nothing survives the filter, ORIGIN is substituted so every header has
// at least one parent at every level it participates in.
func parentsAtLevel(dbContext model.DBReader, stagingArea *model.StagingArea, relationStore model.BlockRelationStore,
	parentsManager model.ParentsManager, header *externalapi.DomainBlockHeader, level externalapi.BlockLevel) (
	[]*externalapi.DomainHash, error) {

	candidates := parentsManager.ParentsAtLevel(header, level)

	known := make([]*externalapi.DomainHash, 0, len(candidates))
	for _, candidate := range candidates {
		has, err := relationStore.Has(dbContext, stagingArea, candidate)
		if err != nil {
			return nil, err
		}
		if has {
			known = append(known, candidate)
		}
	}

	if len(known) == 0 {
		return []*externalapi.DomainHash{externalapi.OriginHash}, nil
	}
	return known, nil
}

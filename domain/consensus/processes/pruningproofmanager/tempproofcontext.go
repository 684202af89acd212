package pruningproofmanager

import (
	"github.com/kaspanet/kaspad/domain/consensus/datastructures/blockrelationstore"
	"github.com/kaspanet/kaspad/domain/consensus/datastructures/ghostdagdatastore"
	"github.com/kaspanet/kaspad/domain/consensus/datastructures/reachabilitydatastore"
	"github.com/kaspanet/kaspad/domain/consensus/model"
	"github.com/kaspanet/kaspad/domain/consensus/model/externalapi"
	"github.com/kaspanet/kaspad/domain/consensus/processes/dagtopologymanager"
	"github.com/kaspanet/kaspad/domain/consensus/processes/ghostdagmanager"
	"github.com/kaspanet/kaspad/domain/consensus/processes/reachabilitymanager"
	"github.com/kaspanet/kaspad/infrastructure/db/dbaccess"
)

// tempStoreCacheSize bounds the LRU cache every temp-level store keeps.
// Temp contexts are short-lived and built over a bounded window of
// history (on the order of a few thousand headers per level), so a
// modest cache avoids most of the memdb round trips without holding
// onto memory past the proof's lifetime.
const tempStoreCacheSize = 10000

// tempProofContext is the ephemeral, in-memory environment a proof build
// or validation runs in: one headers-less set of per-level relation,
// ghostdag and reachability stores, backed by a single memdb instance and
// a single StagingArea. Nothing here ever touches permanent state; every
// store read resolves against the StagingArea's staged writes because
// the context's contents are never committed to the underlying memdb.
type tempProofContext struct {
	databaseContext *dbaccess.DatabaseContext
	stagingArea     *model.StagingArea

	relationStores       []model.BlockRelationStore
	ghostdagStores        []model.GHOSTDAGDataStore
	reachabilityStores    []model.ReachabilityDataStore
	reachabilityManagers  []model.ReachabilityManager
	dagTopologyManagers   []model.DAGTopologyManager
	ghostdagManagers      []model.GHOSTDAGManager
}

// newTempProofContext builds a fresh temp environment with one store set
// per level 0..=maxBlockLevel, each seeded with the ORIGIN sentinel: an
// empty relations entry, a reachability tree root, and the ORIGIN
// GHOSTDAG tuple.
func newTempProofContext(maxBlockLevel externalapi.BlockLevel, k externalapi.KType,
	genesisHash *externalapi.DomainHash) (*tempProofContext, error) {

	numLevels := int(maxBlockLevel) + 1
	databaseContext := dbaccess.NewMemoryOnly()
	stagingArea := model.NewStagingArea()

	ctx := &tempProofContext{
		databaseContext:      databaseContext,
		stagingArea:          stagingArea,
		relationStores:       make([]model.BlockRelationStore, numLevels),
		ghostdagStores:       make([]model.GHOSTDAGDataStore, numLevels),
		reachabilityStores:   make([]model.ReachabilityDataStore, numLevels),
		reachabilityManagers: make([]model.ReachabilityManager, numLevels),
		dagTopologyManagers:  make([]model.DAGTopologyManager, numLevels),
		ghostdagManagers:     make([]model.GHOSTDAGManager, numLevels),
	}

	for level := 0; level < numLevels; level++ {
		l := externalapi.BlockLevel(level)

		relationStore := blockrelationstore.New(l, tempStoreCacheSize)
		reachabilityStore := reachabilitydatastore.New(l, tempStoreCacheSize)
		ghostdagStore := ghostdagdatastore.New(l, tempStoreCacheSize)

		reachabilityManager := reachabilitymanager.New(databaseContext, reachabilityStore)
		if err := reachabilityManager.Init(stagingArea); err != nil {
			return nil, err
		}

		topologyManager := dagtopologymanager.New(databaseContext, reachabilityManager, relationStore, ghostdagStore)
		ghostdagManager := ghostdagmanager.New(databaseContext, topologyManager, ghostdagStore, k, genesisHash)

		relationStore.Stage(stagingArea, externalapi.OriginHash, nil)
		ghostdagStore.Stage(stagingArea, externalapi.OriginHash, ghostdagManager.OriginGHOSTDAGData())

		ctx.relationStores[level] = relationStore
		ctx.ghostdagStores[level] = ghostdagStore
		ctx.reachabilityStores[level] = reachabilityStore
		ctx.reachabilityManagers[level] = reachabilityManager
		ctx.dagTopologyManagers[level] = topologyManager
		ctx.ghostdagManagers[level] = ghostdagManager
	}

	return ctx, nil
}

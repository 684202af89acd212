// Package pruningproofmanager builds, validates and applies pruning-point
// proofs: the compact per-level header evidence a node uses to bootstrap
// from a recent pruning point instead of replaying the full chain from
// genesis.
package pruningproofmanager

import (
	"sync"
	"sync/atomic"

	"github.com/kaspanet/kaspad/domain/consensus/model"
	"github.com/kaspanet/kaspad/domain/consensus/model/externalapi"
	"github.com/kaspanet/kaspad/infrastructure/db/dbaccess"
)

// cachedPruningPointData pairs a computed value with the pruning point it
// was computed against, so a reader can tell in one comparison whether the
// cache is still valid.
type cachedPruningPointData struct {
	pruningPointHash *externalapi.DomainHash
	proof            externalapi.PruningPointProof
	trustedData      *externalapi.PruningPointTrustedData
}

// pruningProofManager builds, validates and applies pruning-point proofs
// against the permanent consensus stores, and produces the trusted
// sub-DAG that accompanies a proof in protocol exchange.
type pruningProofManager struct {
	databaseContext *dbaccess.DatabaseContext

	headerStore             model.BlockHeaderStore
	reachabilityManager      model.ReachabilityManager
	relationStores           []model.BlockRelationStore
	ghostdagStores           []model.GHOSTDAGDataStore
	pruningStore             model.PruningStore
	pastPruningPointsStore   model.PastPruningPointsStore
	virtualStateStore        model.VirtualStateStore
	bodyTipsStore            model.BodyTipsStore
	headersSelectedTipStore  model.HeadersSelectedTipStore
	selectedChainStore       model.SelectedChainStore
	depthStore               model.DepthStore

	ghostdagManager      model.GHOSTDAGManager
	dagTopologyManager   model.DAGTopologyManager
	dagTraversalManager  model.DAGTraversalManager
	windowManager        model.WindowManager
	parentsManager       model.ParentsManager

	k                         externalapi.KType
	genesisHash               *externalapi.DomainHash
	maxBlockLevel             externalapi.BlockLevel
	pruningProofM             uint64
	anticoneFinalizationDepth uint64

	isConsensusExiting *uint32

	cacheMutex     sync.Mutex
	cachedProof    *cachedPruningPointData
	cachedAnticone *cachedPruningPointData
}

// New instantiates a PruningProofManager over the node's permanent stores
// and level-0 managers. relationStores and ghostdagStores must carry one
// entry per level, indices 0..=maxBlockLevel.
func New(
	databaseContext *dbaccess.DatabaseContext,
	headerStore model.BlockHeaderStore,
	reachabilityManager model.ReachabilityManager,
	relationStores []model.BlockRelationStore,
	ghostdagStores []model.GHOSTDAGDataStore,
	pruningStore model.PruningStore,
	pastPruningPointsStore model.PastPruningPointsStore,
	virtualStateStore model.VirtualStateStore,
	bodyTipsStore model.BodyTipsStore,
	headersSelectedTipStore model.HeadersSelectedTipStore,
	selectedChainStore model.SelectedChainStore,
	depthStore model.DepthStore,
	ghostdagManager model.GHOSTDAGManager,
	dagTopologyManager model.DAGTopologyManager,
	dagTraversalManager model.DAGTraversalManager,
	windowManager model.WindowManager,
	parentsManager model.ParentsManager,
	k externalapi.KType,
	genesisHash *externalapi.DomainHash,
	maxBlockLevel externalapi.BlockLevel,
	pruningProofM uint64,
	anticoneFinalizationDepth uint64,
	isConsensusExiting *uint32,
) model.PruningProofManager {

	return &pruningProofManager{
		databaseContext: databaseContext,

		headerStore:             headerStore,
		reachabilityManager:     reachabilityManager,
		relationStores:          relationStores,
		ghostdagStores:          ghostdagStores,
		pruningStore:            pruningStore,
		pastPruningPointsStore:  pastPruningPointsStore,
		virtualStateStore:       virtualStateStore,
		bodyTipsStore:           bodyTipsStore,
		headersSelectedTipStore: headersSelectedTipStore,
		selectedChainStore:      selectedChainStore,
		depthStore:              depthStore,

		ghostdagManager:     ghostdagManager,
		dagTopologyManager:  dagTopologyManager,
		dagTraversalManager: dagTraversalManager,
		windowManager:       windowManager,
		parentsManager:      parentsManager,

		k:                         k,
		genesisHash:               genesisHash,
		maxBlockLevel:             maxBlockLevel,
		pruningProofM:             pruningProofM,
		anticoneFinalizationDepth: anticoneFinalizationDepth,

		isConsensusExiting: isConsensusExiting,
	}
}

// consensusExiting reports whether the shared shutdown flag has been set.
// Checked only at level boundaries during validation, per the cooperative
// cancellation model: the work between checks is bounded by one level.
func (pm *pruningProofManager) consensusExiting() bool {
	return atomic.LoadUint32(pm.isConsensusExiting) != 0
}

package model

// StagingShardID identifies a store's staging shard within a StagingArea.
// Every store that participates in staged mutation registers its own ID so
// GetOrCreateShard can multiplex many stores' uncommitted writes behind a
// single StagingArea instance.
type StagingShardID string

// Staging shard identifiers, one per store that stages mutations. Declared
// centrally so two stores never collide on the same ID.
const (
	StagingShardIDGHOSTDAG          StagingShardID = "ghostdag"
	StagingShardIDBlockRelations    StagingShardID = "block-relations"
	StagingShardIDBlockHeader       StagingShardID = "block-header"
	StagingShardIDReachability      StagingShardID = "reachability"
	StagingShardIDReachabilityRel   StagingShardID = "reachability-relations"
	StagingShardIDPruning           StagingShardID = "pruning"
	StagingShardIDPastPruningPoints StagingShardID = "past-pruning-points"
	StagingShardIDVirtualState      StagingShardID = "virtual-state"
	StagingShardIDBodyTips          StagingShardID = "body-tips"
	StagingShardIDHeadersSelTip     StagingShardID = "headers-selected-tip"
	StagingShardIDSelectedChain     StagingShardID = "selected-chain"
	StagingShardIDDepth             StagingShardID = "depth"
)

// StagingShard is a single store's view into a StagingArea: the commit
// method flushes that store's pending writes into a DB transaction.
type StagingShard interface {
	Commit(dbTx DBTransaction) error
}

// StagingArea batches the uncommitted mutations of every store touched
// during one logical operation, so they can be committed to the database
// atomically as a single transaction. Each store lazily creates its own
// shard the first time it's touched inside a given StagingArea.
type StagingArea struct {
	shards map[StagingShardID]StagingShard
}

// NewStagingArea creates an empty StagingArea.
func NewStagingArea() *StagingArea {
	return &StagingArea{
		shards: make(map[StagingShardID]StagingShard),
	}
}

// GetOrCreateShard returns the shard registered under id, creating it via
// createFunc on first use.
func (sa *StagingArea) GetOrCreateShard(id StagingShardID, createFunc func() StagingShard) StagingShard {
	if shard, ok := sa.shards[id]; ok {
		return shard
	}
	shard := createFunc()
	sa.shards[id] = shard
	return shard
}

// Commit flushes every shard's staged mutations into dbTx, in map order, so
// no cross-store write order is fixed. The proof applier only stages its
// writes; committing them is left to its caller.
func (sa *StagingArea) Commit(dbTx DBTransaction) error {
	for _, shard := range sa.shards {
		err := shard.Commit(dbTx)
		if err != nil {
			return err
		}
	}
	return nil
}

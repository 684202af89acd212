package model

import "github.com/kaspanet/kaspad/domain/consensus/model/externalapi"

// PruningProofManager builds, validates and applies pruning-point proofs,
// and produces the trusted sub-DAG that accompanies a proof in protocol
// exchange.
type PruningProofManager interface {
	BuildPruningPointProof(stagingArea *StagingArea, pruningPointHash *externalapi.DomainHash) (externalapi.PruningPointProof, error)
	GetPruningPointProof(stagingArea *StagingArea) (externalapi.PruningPointProof, error)
	ValidatePruningPointProof(proof externalapi.PruningPointProof) error
	ApplyPruningPointProof(stagingArea *StagingArea, proof externalapi.PruningPointProof,
		trustedSet []*externalapi.TrustedHeader) error
	ImportPruningPoints(stagingArea *StagingArea, headers []*externalapi.DomainBlockHeader) error
	GetPruningPointAnticoneAndTrustedData(stagingArea *StagingArea) (*externalapi.PruningPointTrustedData, error)
	CalculatePruningPointAnticoneAndTrustedData(stagingArea *StagingArea,
		pruningPointHash *externalapi.DomainHash, virtualParents []*externalapi.DomainHash) (*externalapi.PruningPointTrustedData, error)
	GetGHOSTDAGChainKDepth(stagingArea *StagingArea, blockHash *externalapi.DomainHash) ([]*externalapi.DomainHash, error)
}

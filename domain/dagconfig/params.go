// Copyright (c) 2014-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package dagconfig

import (
	"github.com/pkg/errors"

	"github.com/kaspanet/kaspad/domain/consensus/model/externalapi"
)

const (
	ghostdagK                      = 18
	difficultyAdjustmentWindowSize = 2640
	maxBlockLevel                  = externalapi.BlockLevel(225)
	pruningProofM                  = 1000
	anticoneFinalizationDepth      = difficultyAdjustmentWindowSize * 3
)

// Params defines the tunables of a Kaspa network that the pruning-proof
// subsystem reads: the GHOSTDAG K parameter, the proof-of-work level
// hierarchy depth, the pruning-proof depth, and the genesis of its DAG.
type Params struct {
	// Name is a human-readable identifier for the network.
	Name string

	// K defines the K parameter for the GHOSTDAG consensus algorithm.
	K externalapi.KType

	// GenesisHash is the hash of the network's first block.
	GenesisHash *externalapi.DomainHash

	// MaxBlockLevel is the highest level a block can reach in the
	// proof-of-work level hierarchy the pruning proof is built over.
	MaxBlockLevel externalapi.BlockLevel

	// PruningProofM is the pruning-proof depth parameter M: at every level
	// the proof keeps at least 2*M blue score of history below that level's
	// selected tip.
	PruningProofM uint64

	// AnticoneFinalizationDepth is the blue-score depth below which the
	// virtual must exceed the pruning point before its anticone's
	// trusted data is considered final.
	AnticoneFinalizationDepth uint64

	// DifficultyAdjustmentWindowSize is the size of the window the
	// window manager collects for difficulty and trusted-data purposes.
	DifficultyAdjustmentWindowSize uint64
}

// MainnetParams defines the network parameters for the main Kaspa network.
var MainnetParams = Params{
	Name:                           "kaspa-mainnet",
	K:                              ghostdagK,
	GenesisHash:                    &genesisHash,
	MaxBlockLevel:                  maxBlockLevel,
	PruningProofM:                  pruningProofM,
	AnticoneFinalizationDepth:      anticoneFinalizationDepth,
	DifficultyAdjustmentWindowSize: difficultyAdjustmentWindowSize,
}

// TestnetParams defines the network parameters for the test Kaspa network.
var TestnetParams = Params{
	Name:                           "kaspa-testnet",
	K:                              ghostdagK,
	GenesisHash:                    &testnetGenesisHash,
	MaxBlockLevel:                  maxBlockLevel,
	PruningProofM:                  pruningProofM,
	AnticoneFinalizationDepth:      anticoneFinalizationDepth,
	DifficultyAdjustmentWindowSize: difficultyAdjustmentWindowSize,
}

// SimnetParams defines the network parameters for the simulation test
// Kaspa network.
var SimnetParams = Params{
	Name:                           "kaspa-simnet",
	K:                              ghostdagK,
	GenesisHash:                    &simnetGenesisHash,
	MaxBlockLevel:                  maxBlockLevel,
	PruningProofM:                  pruningProofM,
	AnticoneFinalizationDepth:      anticoneFinalizationDepth,
	DifficultyAdjustmentWindowSize: difficultyAdjustmentWindowSize,
}

// DevnetParams defines the network parameters for the development Kaspa
// network.
var DevnetParams = Params{
	Name:                           "kaspa-devnet",
	K:                              ghostdagK,
	GenesisHash:                    &devnetGenesisHash,
	MaxBlockLevel:                  maxBlockLevel,
	PruningProofM:                  pruningProofM,
	AnticoneFinalizationDepth:      anticoneFinalizationDepth,
	DifficultyAdjustmentWindowSize: difficultyAdjustmentWindowSize,
}

// ErrDuplicateNet describes an error where the parameters for a Kaspa
// network could not be registered because the name is already taken.
var ErrDuplicateNet = errors.New("duplicate Kaspa network")

var registeredNets = make(map[string]struct{})

// Register registers params under its Name. It returns ErrDuplicateNet if
// that name is already registered, either by a previous Register call or
// by one of the default networks.
func Register(params *Params) error {
	if _, ok := registeredNets[params.Name]; ok {
		return ErrDuplicateNet
	}
	registeredNets[params.Name] = struct{}{}
	return nil
}

func mustRegister(params *Params) {
	if err := Register(params); err != nil {
		panic("failed to register network: " + err.Error())
	}
}

func init() {
	mustRegister(&MainnetParams)
	mustRegister(&TestnetParams)
	mustRegister(&SimnetParams)
	mustRegister(&DevnetParams)
}

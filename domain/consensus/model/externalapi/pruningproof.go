package externalapi

// PruningPointProof is an ordered list of per-level header sequences,
// indexed by level: proof[L] is the set of headers claimed to have
// existed at level L in the window ending at the pruning point, ordered
// by blue work ascending.
type PruningPointProof [][]*DomainBlockHeader

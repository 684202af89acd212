package pruningproofmanager

import "github.com/kaspanet/kaspad/infrastructure/logger"

// log is this package's subsystem logger. It is used sparingly: one debug
// line per proof build reporting the pruning point's current DAG level,
// and warnings when the builder has to settle for less history than it
// asked for.
var log = logger.RegisterSubSystem("PRUP")

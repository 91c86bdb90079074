package journal

import "errors"

// ErrCorrupt is wrapped into any error returned by Replay when a
// record's kind byte is unrecognized or its key or value cannot be
// decoded — a mid-file malformation, as opposed to a truncated
// trailing record, which is discarded silently.
var ErrCorrupt = errors.New("journal: record corrupt")

// ErrIO wraps any other error returned by Open, Append*, or Replay:
// a failure of the underlying file (create, write, sync, read), a
// codec encode failure, or an error returned by the Applier during
// Replay.
var ErrIO = errors.New("journal: I/O error")

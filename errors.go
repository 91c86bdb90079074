package sinecache

import "errors"

// Sentinel errors the engine reports to callers. Match with errors.Is;
// JournalIO and JournalCorrupt errors wrap the sentinel with %w and
// carry the underlying cause as text only.
var (
	// ErrConfigInvalid is returned by New when Options describe an
	// unusable configuration: non-positive MaxSize, a non-positive
	// AOF flush interval, or an AOF folder that can't be created/written.
	ErrConfigInvalid = errors.New("sinecache: invalid configuration")

	// ErrJournalIO wraps a disk read/write failure. In synchronous
	// flush mode it is returned from the failing Put/Remove call and
	// the in-memory mutation is rolled back; a failure to journal a
	// GET record is only logged, since Get has no error result and its
	// policy promotion is kept. In periodic flush
	// mode it never reaches a caller directly; it is surfaced via
	// AOFConfig.OnFlushError and a logged warning instead.
	ErrJournalIO = errors.New("sinecache: journal I/O error")

	// ErrJournalCorrupt is returned by New during replay when a
	// record's kind byte is unrecognized or its key or value cannot be
	// decoded by the codec. A length prefix that points past
	// end-of-file marks a truncated trailing record, which is not an
	// error — it is discarded silently and replay stops there.
	ErrJournalCorrupt = errors.New("sinecache: journal record corrupt")

	// ErrPolicyRefusedEviction is returned by Put when the store is
	// full, the key is new, and the active policy's Evict reported no
	// candidate. Store, policy, and journal are left untouched.
	ErrPolicyRefusedEviction = errors.New("sinecache: policy refused to name an eviction candidate")
)

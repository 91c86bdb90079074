// Package policy defines the eviction-policy capability set that the
// engine consults on every mutation, plus the three built-in variants
// (fifo, lru, lfu).
package policy

// Policy is the capability set every eviction-policy variant must
// provide. All methods are called by the engine while it holds
// exclusive access to the cache; implementations are not expected to
// do their own locking.
//
// OnGet and OnSet must be idempotent on repeated calls for the same
// resident key beyond the variant's own documented reordering — e.g.
// FIFO treats a repeat OnSet as a no-op, LRU promotes to most-recently
// used either way.
type Policy[K comparable] interface {
	// OnGet notifies the policy that k was just read. k is guaranteed
	// to be resident in the store at the time of the call.
	OnGet(k K)

	// OnSet notifies the policy that k was just inserted or
	// overwritten.
	OnSet(k K)

	// Evict names a victim using only prior observations. It is called
	// only when the store is full and a new key is about to be
	// inserted. ok is false when the policy has no candidate (e.g. a
	// custom policy that refuses to evict); the caller must not treat
	// a zero K as meaningful when ok is false.
	Evict() (victim K, ok bool)

	// Remove notifies the policy that k is no longer resident because
	// of an explicit removal. It is not called for a key returned by
	// Evict, which forgets its victim itself. A Remove for an unknown
	// key is a silent no-op.
	Remove(k K)
}

// ReplayPolicy is an optional capability a policy can expose to tell
// the engine whether GET events must be journaled for replay to
// reproduce its internal order, independent of the journal's
// persist-read-ops setting. Built-in FIFO implements it returning
// false (reads never affect its order, so GETs are never journaled);
// built-in LRU and LFU implement it returning true (their eviction
// order depends on reads, so GETs are always journaled). A custom
// policy that doesn't implement ReplayPolicy falls back to the
// journal's configured persist-read-ops flag.
type ReplayPolicy interface {
	ReplayNeedsGets() bool
}

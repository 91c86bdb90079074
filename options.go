package sinecache

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/sinecache/sinecache/journal"
	"github.com/sinecache/sinecache/policy"
)

// EvictReason explains why an entry left the store.
type EvictReason int

const (
	// EvictPolicy — the active policy named this key during a Put
	// that needed to make room (the only eviction path this engine has;
	// there is no TTL or cost-based eviction in this core).
	EvictPolicy EvictReason = iota
)

// String implements fmt.Stringer for readable log/metric labels.
func (r EvictReason) String() string {
	switch r {
	case EvictPolicy:
		return "policy"
	default:
		return "unknown"
	}
}

// Metrics exposes cache-level observability hooks. A NoopMetrics
// implementation is used by default; see metrics/prom for a
// Prometheus-backed adapter.
type Metrics interface {
	Hit()
	Miss()
	Evict(reason EvictReason)
	Size(entries int)
	JournalFlush(ok bool, records int)
}

// NoopMetrics discards every signal.
type NoopMetrics struct{}

func (NoopMetrics) Hit()                   {}
func (NoopMetrics) Miss()                  {}
func (NoopMetrics) Evict(EvictReason)      {}
func (NoopMetrics) Size(int)               {}
func (NoopMetrics) JournalFlush(bool, int) {}

// Clock abstracts a millisecond-resolution time source.
// NowUnixMilli() is the only primitive required. The engine stores
// the configured Clock but no code path reads it; the journal's
// periodic flusher runs on a time.Ticker.
type Clock interface {
	NowUnixMilli() int64
}

// systemClock is the default Clock, backed by time.Now.
type systemClock struct{}

func (systemClock) NowUnixMilli() int64 { return time.Now().UnixMilli() }

// AOFConfig configures the append-only journal. A nil *AOFConfig on
// Options disables journaling entirely.
type AOFConfig[K comparable, V any] struct {
	// Folder is the directory the journal file lives in.
	Folder string
	// CacheName is the file name within Folder; it uniquely identifies
	// one journal.
	CacheName string

	// FlushTime selects the flush discipline: nil means every mutation
	// is flushed and fsynced synchronously before the call returns;
	// a non-nil duration (which must be > 0) starts a background
	// goroutine that flushes the pending buffer on that cadence.
	FlushTime *time.Duration

	// PersistReadOps, if true, appends a GET record on every
	// successful Get for a policy that does not implement
	// policy.ReplayPolicy. Policies that do implement it decide for
	// themselves and this flag is ignored: built-in LRU/LFU always
	// journal GETs (replay re-derives frequency/recency from PUT/GET
	// order) and built-in FIFO never does.
	PersistReadOps bool

	// Codec serializes keys and values to the journal's byte-oriented
	// wire format. Defaults to journal.NewMsgpackCodec[K, V]() when nil.
	Codec journal.Codec[K, V]

	// OnFlushError is called, in addition to a logged warning, whenever
	// a periodic-mode flush fails. It is never called in synchronous
	// mode, where the error is returned directly to the caller instead.
	OnFlushError func(error)
}

// Options configures an Engine. Zero values are mostly safe; New
// applies defaults:
//   - nil Policy   => lru.New[K]()
//   - nil Metrics  => NoopMetrics
//   - nil Clock    => a time.Now-backed clock
//   - nil AOF      => no journal, no replay
type Options[K comparable, V any] struct {
	// Policy is the pluggable eviction policy. nil => LRU.
	Policy policy.Policy[K]

	// MaxSize is the store's maximum resident entry count. Must be > 0.
	MaxSize int

	// AOF enables durability via an append-only journal. nil disables
	// journaling and replay.
	AOF *AOFConfig[K, V]

	// Metrics receives Hit/Miss/Evict/Size/JournalFlush signals.
	Metrics Metrics

	// Logger receives structured diagnostics (replay progress, journal
	// I/O failures in periodic mode, failed GET-record appends). The zero
	// value is a disabled logger, matching zerolog's own safe default.
	Logger zerolog.Logger

	// Clock overrides the time source; nil uses time.Now.
	Clock Clock
}

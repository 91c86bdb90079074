// Package sinecache provides a bounded-capacity, in-process key-value
// cache engine with a pluggable eviction policy, an optional
// append-only journal for durability, and startup replay.
//
// Design
//
//   - Capacity: the engine is backed by a store.Store[K,V] of fixed
//     maximum cardinality. Overwriting a resident key never evicts;
//     inserting a fresh key into a full store always consults the
//     active policy first.
//
//   - Policy: eviction is pluggable via the policy package. Three
//     built-ins ship — policy/fifo, policy/lru, policy/lfu — and any
//     type implementing policy.Policy[K] can be supplied instead.
//
//   - Journal: when Options.AOF is set, every Put/Remove is appended
//     as a length-prefixed record to an append-only file, and so is
//     every successful Get when the policy needs reads for replay
//     (built-in LRU/LFU: always; FIFO: never; a custom policy without
//     policy.ReplayPolicy: when PersistReadOps is set). Flushing is
//     either synchronous (every call fsyncs before returning) or
//     periodic (a background goroutine flushes every AOF.FlushTime).
//
//   - Replay: constructing an engine over an existing journal file
//     replays its records through the same Put/Remove paths used at
//     runtime, so the policy's internal state ends up exactly as it
//     would have from the original operations.
//
//   - Concurrency: a bare Engine assumes a single caller at a time.
//     Wrap it with asyncengine.Wrap for a context-cancelable,
//     mutually-exclusive concurrent façade.
//
//   - Metrics/Logging: Options.Metrics (default NoopMetrics; see
//     metrics/prom for a Prometheus adapter) and Options.Logger (a
//     zerolog.Logger, default disabled) report hits/misses/evictions
//     and internal diagnostics without being required to use the
//     engine at all.
//
// Basic usage
//
//	e, err := sinecache.New[string, []byte](sinecache.Options[string, []byte]{
//	    MaxSize: 10_000,
//	})
//	if err != nil { ... }
//	defer e.Close()
//
//	if err := e.Put("a", []byte("1")); err != nil { ... }
//	if v, ok := e.Get("a"); ok { _ = v }
//
// With an append-only journal
//
//	flush := 50 * time.Millisecond
//	e, err := sinecache.New[string, string](sinecache.Options[string, string]{
//	    MaxSize: 1024,
//	    Policy:  lru.New[string](),
//	    AOF: &sinecache.AOFConfig[string, string]{
//	        Folder:    "/var/lib/sinecache",
//	        CacheName: "sessions",
//	        FlushTime: &flush, // nil would mean synchronous flush
//	    },
//	})
package sinecache

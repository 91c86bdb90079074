package sinecache

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/sinecache/sinecache/journal"
	"github.com/sinecache/sinecache/policy"
	"github.com/sinecache/sinecache/policy/lru"
	"github.com/sinecache/sinecache/store"
)

// Engine is a bounded-capacity key-value cache with pluggable eviction
// and optional durability. A bare Engine is not safe for concurrent
// use; wrap it with asyncengine for a context-cancelable, mutually
// exclusive façade.
type Engine[K comparable, V any] struct {
	st  *store.Store[K, V]
	pol policy.Policy[K]

	jrnl           *journal.Journal[K, V]
	persistReadOps bool // AOFConfig.PersistReadOps; consulted only when pol has no ReplayPolicy opinion

	metrics Metrics
	logger  zerolog.Logger
	clock   Clock
}

// New constructs an Engine from opt, applying defaults for any zero
// field, and — if opt.AOF is set — replays the existing journal (if
// any) before opening it for further appends.
func New[K comparable, V any](opt Options[K, V]) (*Engine[K, V], error) {
	if opt.MaxSize <= 0 {
		return nil, fmt.Errorf("%w: MaxSize must be > 0, got %d", ErrConfigInvalid, opt.MaxSize)
	}

	pol := opt.Policy
	if pol == nil {
		pol = lru.New[K]()
	}
	metrics := opt.Metrics
	if metrics == nil {
		metrics = NoopMetrics{}
	}
	clock := opt.Clock
	if clock == nil {
		clock = systemClock{}
	}

	e := &Engine[K, V]{
		st:      store.New[K, V](opt.MaxSize),
		pol:     pol,
		metrics: metrics,
		logger:  opt.Logger,
		clock:   clock,
	}

	if opt.AOF != nil {
		if err := e.openJournal(*opt.AOF); err != nil {
			return nil, err
		}
	}

	return e, nil
}

func (e *Engine[K, V]) openJournal(cfg AOFConfig[K, V]) error {
	if cfg.FlushTime != nil && *cfg.FlushTime <= 0 {
		return fmt.Errorf("%w: AOF.FlushTime must be > 0 when set, got %v", ErrConfigInvalid, *cfg.FlushTime)
	}
	codec := cfg.Codec
	if codec == nil {
		codec = journal.NewMsgpackCodec[K, V]()
	}

	path := journal.Path(cfg.Folder, cfg.CacheName)
	if err := journal.Replay[K, V](path, codec, e, e.logger); err != nil {
		if errors.Is(err, journal.ErrCorrupt) {
			return fmt.Errorf("%w: %v", ErrJournalCorrupt, err)
		}
		return fmt.Errorf("%w: %v", ErrJournalIO, err)
	}

	j, err := journal.Open[K, V](journal.Options[K, V]{
		Folder:       cfg.Folder,
		CacheName:    cfg.CacheName,
		FlushTime:    cfg.FlushTime,
		Codec:        codec,
		OnFlushError: cfg.OnFlushError,
		OnFlush:      func(ok bool, records int) { e.metrics.JournalFlush(ok, records) },
		Logger:       e.logger,
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrConfigInvalid, err)
	}
	e.jrnl = j
	e.persistReadOps = cfg.PersistReadOps
	return nil
}

// Get looks up k. A hit promotes k in the active policy and, if the
// policy depends on read signals for replay (or the journal's
// PersistReadOps is set for a custom policy that doesn't say), appends
// a GET record.
func (e *Engine[K, V]) Get(k K) (V, bool) {
	v, ok := e.st.Get(k)
	if !ok {
		e.metrics.Miss()
		var zero V
		return zero, false
	}
	e.metrics.Hit()
	e.pol.OnGet(k)

	if e.jrnl != nil && e.shouldJournalGet() {
		if err := e.jrnl.AppendGet(k); err != nil {
			e.logger.Warn().Err(err).Msg("sinecache: failed to journal GET record")
		}
	}
	return v, true
}

func (e *Engine[K, V]) shouldJournalGet() bool {
	if rp, ok := e.pol.(policy.ReplayPolicy); ok {
		return rp.ReplayNeedsGets()
	}
	return e.persistReadOps
}

// Contains reports whether k is resident, without affecting eviction
// order or touching the journal.
func (e *Engine[K, V]) Contains(k K) bool { return e.st.Contains(k) }

// Len reports the number of resident entries.
func (e *Engine[K, V]) Len() int { return e.st.Len() }

// Put inserts or overwrites k with v.
//
// Overwriting a resident key never evicts and journals a single PUT
// record (never a REMOVE for the stale value). Inserting a fresh key
// into a full store consults the active policy for a victim; if the
// policy reports no candidate, Put fails with ErrPolicyRefusedEviction
// and nothing changes. On a synchronous journal write failure, the
// in-memory mutation is rolled back and the error is returned.
func (e *Engine[K, V]) Put(k K, v V) error {
	if e.st.Contains(k) {
		old, _ := e.st.Get(k)
		e.applyPutUnchecked(k, v)
		if err := e.journalPut(k, v); err != nil {
			e.st.Insert(k, old)
			return err
		}
		return nil
	}

	if e.st.Len() < e.st.Capacity() {
		e.applyPutUnchecked(k, v)
		e.metrics.Size(e.st.Len())
		if err := e.journalPut(k, v); err != nil {
			e.pol.Remove(k)
			e.st.Delete(k)
			e.metrics.Size(e.st.Len())
			return err
		}
		return nil
	}

	victim, ok := e.pol.Evict()
	if !ok {
		return ErrPolicyRefusedEviction
	}
	victimVal, _ := e.st.Delete(victim)
	e.metrics.Evict(EvictPolicy)

	e.applyPutUnchecked(k, v)
	if err := e.journalPut(k, v); err != nil {
		// Best-effort rollback: restore key-set membership exactly
		// (fresh key forgotten, victim's value reinstated). The
		// victim's exact recency/frequency rank is not restored —
		// Policy's four-method contract has no "re-insert at prior
		// rank" primitive, only OnSet, which readmits it at the
		// most-recently-used/frequency-1 position.
		e.pol.Remove(k)
		e.st.Delete(k)
		e.st.Insert(victim, victimVal)
		e.pol.OnSet(victim)
		return err
	}
	return nil
}

func (e *Engine[K, V]) applyPutUnchecked(k K, v V) {
	e.st.Insert(k, v)
	e.pol.OnSet(k)
}

func (e *Engine[K, V]) journalPut(k K, v V) error {
	if e.jrnl == nil {
		return nil
	}
	if err := e.jrnl.AppendPut(k, v); err != nil {
		return fmt.Errorf("%w: %v", ErrJournalIO, err)
	}
	return nil
}

// Remove deletes k if present, returning its value and whether it was
// resident. A successful removal journals a REMOVE record; on a
// synchronous journal write failure the deletion is rolled back (the
// key and its value are reinstated, and the policy re-notified via
// OnSet — same recency/frequency-rank caveat as Put's eviction
// rollback, see DESIGN.md) and the error is returned.
func (e *Engine[K, V]) Remove(k K) (V, bool, error) {
	v, existed := e.st.Delete(k)
	if !existed {
		var zero V
		return zero, false, nil
	}
	e.pol.Remove(k)
	e.metrics.Size(e.st.Len())

	if e.jrnl != nil {
		if err := e.jrnl.AppendRemove(k); err != nil {
			e.st.Insert(k, v)
			e.pol.OnSet(k)
			e.metrics.Size(e.st.Len())
			var zero V
			return zero, false, fmt.Errorf("%w: %v", ErrJournalIO, err)
		}
	}
	return v, true, nil
}

// Close stops and flushes the journal, if one is open. Close must be
// called exactly once.
func (e *Engine[K, V]) Close() error {
	if e.jrnl == nil {
		return nil
	}
	return e.jrnl.Close()
}

// ApplyPut implements journal.Applier by driving a replayed PUT record
// through the same store/policy mutation Put uses, without touching
// the journal (replay is reconstructing it).
func (e *Engine[K, V]) ApplyPut(k K, v V) error {
	if e.st.Contains(k) {
		e.applyPutUnchecked(k, v)
		return nil
	}
	if e.st.Len() < e.st.Capacity() {
		e.applyPutUnchecked(k, v)
		return nil
	}
	victim, ok := e.pol.Evict()
	if !ok {
		return ErrPolicyRefusedEviction
	}
	e.st.Delete(victim)
	e.applyPutUnchecked(k, v)
	return nil
}

// ApplyRemove implements journal.Applier.
func (e *Engine[K, V]) ApplyRemove(k K) error {
	if _, existed := e.st.Delete(k); existed {
		e.pol.Remove(k)
	}
	return nil
}

// ApplyGetIfResident implements journal.Applier: a replayed GET only
// has an effect — promoting k in the policy — if k is still resident.
func (e *Engine[K, V]) ApplyGetIfResident(k K) {
	if e.st.Contains(k) {
		e.pol.OnGet(k)
	}
}

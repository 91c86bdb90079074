package sinecache

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/sinecache/sinecache/policy/fifo"
	"github.com/sinecache/sinecache/policy/lfu"
	"github.com/sinecache/sinecache/policy/lru"
)

func TestEngine_New_RejectsNonPositiveMaxSize(t *testing.T) {
	t.Parallel()

	_, err := New[string, int](Options[string, int]{MaxSize: 0})
	if !errors.Is(err, ErrConfigInvalid) {
		t.Fatalf("want ErrConfigInvalid, got %v", err)
	}
}

func TestEngine_OverwriteNeverEvicts(t *testing.T) {
	t.Parallel()

	e, err := New[string, int](Options[string, int]{MaxSize: 2, Policy: fifo.New[string]()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_ = e.Put("a", 1)
	_ = e.Put("b", 2)
	if err := e.Put("a", 100); err != nil {
		t.Fatalf("overwrite Put: %v", err)
	}
	if e.Len() != 2 {
		t.Fatalf("want len 2 after overwrite, got %d", e.Len())
	}
	v, ok := e.Get("a")
	if !ok || v != 100 {
		t.Fatalf("want a=100, got %v ok=%v", v, ok)
	}
	if !e.Contains("b") {
		t.Fatal("b must still be resident, overwrite must not evict")
	}
}

func TestEngine_FIFOEvictsEarliestInsert(t *testing.T) {
	t.Parallel()

	e, err := New[string, int](Options[string, int]{MaxSize: 2, Policy: fifo.New[string]()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_ = e.Put("a", 1)
	_ = e.Put("b", 2)
	_, _ = e.Get("a") // FIFO ignores reads entirely
	if err := e.Put("c", 3); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if e.Contains("a") {
		t.Fatal("a should have been evicted: FIFO order is insertion order regardless of reads")
	}
	if !e.Contains("b") || !e.Contains("c") {
		t.Fatal("b and c should be resident")
	}
}

func TestEngine_LRUEvictsLeastRecentlyTouched(t *testing.T) {
	t.Parallel()

	e, err := New[string, int](Options[string, int]{MaxSize: 3, Policy: lru.New[string]()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_ = e.Put("1", 1)
	_ = e.Put("2", 2)
	_ = e.Put("3", 3)
	_, _ = e.Get("1")
	if err := e.Put("4", 4); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if e.Contains("2") {
		t.Fatal("2 should have been evicted: it is the least recently touched after 1 was read")
	}
	if !e.Contains("1") || !e.Contains("3") || !e.Contains("4") {
		t.Fatal("1, 3, 4 should be resident")
	}
}

func TestEngine_LFUEvictsMinimumFrequency(t *testing.T) {
	t.Parallel()

	e, err := New[string, int](Options[string, int]{MaxSize: 3, Policy: lfu.New[string]()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_ = e.Put("a", 1)
	_ = e.Put("b", 2)
	_ = e.Put("c", 3)
	_, _ = e.Get("a")
	_, _ = e.Get("a")
	_, _ = e.Get("b")
	if err := e.Put("d", 4); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if e.Contains("c") {
		t.Fatal("c should have been evicted: it is the only key with the minimum frequency")
	}
}

// refusingPolicy never names an eviction candidate, exercising the
// ErrPolicyRefusedEviction path a custom policy can trigger.
type refusingPolicy[K comparable] struct{}

func (refusingPolicy[K]) OnGet(K)          {}
func (refusingPolicy[K]) OnSet(K)          {}
func (refusingPolicy[K]) Remove(K)         {}
func (refusingPolicy[K]) Evict() (K, bool) { var zero K; return zero, false }

func TestEngine_FullStoreWithRefusingPolicyReturnsError(t *testing.T) {
	t.Parallel()

	e, err := New[string, int](Options[string, int]{MaxSize: 1, Policy: refusingPolicy[string]{}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_ = e.Put("a", 1)
	if err := e.Put("b", 2); !errors.Is(err, ErrPolicyRefusedEviction) {
		t.Fatalf("want ErrPolicyRefusedEviction, got %v", err)
	}
	if e.Contains("b") {
		t.Fatal("b must not be inserted when eviction is refused")
	}
	if !e.Contains("a") {
		t.Fatal("a must remain resident when eviction is refused")
	}
}

func TestEngine_RemoveIsIdempotent(t *testing.T) {
	t.Parallel()

	e, err := New[string, int](Options[string, int]{MaxSize: 2, Policy: lru.New[string]()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_ = e.Put("a", 1)
	v, ok, err := e.Remove("a")
	if err != nil || !ok || v != 1 {
		t.Fatalf("Remove: v=%v ok=%v err=%v", v, ok, err)
	}
	_, ok, err = e.Remove("a")
	if err != nil || ok {
		t.Fatalf("second Remove should report absent, got ok=%v err=%v", ok, err)
	}
}

func TestEngine_JournalReplayReproducesState(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	newEngine := func() *Engine[string, int] {
		e, err := New[string, int](Options[string, int]{
			MaxSize: 3,
			Policy:  lru.New[string](),
			AOF: &AOFConfig[string, int]{
				Folder:    dir,
				CacheName: "replay.aof",
			},
		})
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		return e
	}

	e := newEngine()
	_ = e.Put("1", 1)
	_ = e.Put("2", 2)
	_ = e.Put("3", 3)
	_, _ = e.Get("1")
	_ = e.Put("4", 4) // evicts 2
	if err := e.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	e2 := newEngine()
	defer e2.Close()
	if e2.Contains("2") {
		t.Fatal("2 should remain evicted after replay")
	}
	for _, k := range []string{"1", "3", "4"} {
		if !e2.Contains(k) {
			t.Fatalf("want %s resident after replay", k)
		}
	}
}

func TestEngine_JournalReplaySkipsOnMissingFile(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "fresh")
	e, err := New[string, int](Options[string, int]{
		MaxSize: 2,
		AOF:     &AOFConfig[string, int]{Folder: dir, CacheName: "new.aof"},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer e.Close()
	if e.Len() != 0 {
		t.Fatalf("want empty engine on fresh journal, got len %d", e.Len())
	}
}

func TestEngine_PeriodicFlushDurability(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	flush := 5 * time.Millisecond
	e, err := New[string, int](Options[string, int]{
		MaxSize: 2,
		Policy:  lru.New[string](),
		AOF: &AOFConfig[string, int]{
			Folder:    dir,
			CacheName: "periodic.aof",
			FlushTime: &flush,
		},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_ = e.Put("a", 1)
	if err := e.Close(); err != nil { // Close flushes whatever's pending
		t.Fatalf("Close: %v", err)
	}

	e2, err := New[string, int](Options[string, int]{
		MaxSize: 2,
		Policy:  lru.New[string](),
		AOF:     &AOFConfig[string, int]{Folder: dir, CacheName: "periodic.aof"},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer e2.Close()
	if !e2.Contains("a") {
		t.Fatal("want a resident after reopening over a closed, flushed periodic journal")
	}
}

package asyncengine

import (
	"context"
	"errors"
	"math/rand"
	"runtime"
	"strconv"
	"testing"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/sinecache/sinecache"
	"github.com/sinecache/sinecache/policy/lru"
)

func TestAsyncEngine_PutThenGet(t *testing.T) {
	t.Parallel()

	a, err := New[string, int](sinecache.Options[string, int]{MaxSize: 4, Policy: lru.New[string]()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer a.Close(context.Background())

	ctx := context.Background()
	if err := a.Put(ctx, "a", 1); err != nil {
		t.Fatalf("Put: %v", err)
	}
	v, ok, err := a.Get(ctx, "a")
	if err != nil || !ok || v != 1 {
		t.Fatalf("Get: v=%v ok=%v err=%v", v, ok, err)
	}
}

func TestAsyncEngine_CanceledContextFailsAcquire(t *testing.T) {
	t.Parallel()

	a, err := New[string, int](sinecache.Options[string, int]{MaxSize: 4})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer a.Close(context.Background())

	// Hold the gate from another goroutine so the next acquire blocks.
	held := make(chan struct{})
	release := make(chan struct{})
	go func() {
		_ = a.sem.Acquire(context.Background(), 1)
		close(held)
		<-release
		a.sem.Release(1)
	}()
	<-held

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, _, err := a.Get(ctx, "holder"); err == nil {
		t.Fatal("want error from a canceled context while the gate is held")
	}
	close(release)
}

// A mixed workload of concurrent Put/Get/Remove on random keys under a
// shared AsyncEngine. Should pass under -race without detector reports.
func TestAsyncEngine_Race(t *testing.T) {
	a, err := New[string, []byte](sinecache.Options[string, []byte]{MaxSize: 8192, Policy: lru.New[string]()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = a.Close(context.Background()) })

	workers := 4 * runtime.GOMAXPROCS(0)
	keyspace := 5000
	deadline := time.Now().Add(300 * time.Millisecond)

	var g errgroup.Group
	for w := 0; w < workers; w++ {
		id := w
		g.Go(func() error {
			r := rand.New(rand.NewSource(time.Now().UnixNano() + int64(id)*9973))
			ctx := context.Background()
			for time.Now().Before(deadline) {
				k := "k:" + strconv.Itoa(r.Intn(keyspace))
				switch r.Intn(10) {
				case 0:
					if _, _, err := a.Remove(ctx, k); err != nil {
						return err
					}
				case 1, 2:
					if err := a.Put(ctx, k, []byte("x")); err != nil {
						return err
					}
				default:
					if _, _, err := a.Get(ctx, k); err != nil {
						return err
					}
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("worker error: %v", err)
	}
}

func TestAsyncEngine_PropagatesPolicyRefusal(t *testing.T) {
	t.Parallel()

	a, err := New[string, int](sinecache.Options[string, int]{MaxSize: 1, Policy: refusingPolicy{}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer a.Close(context.Background())

	ctx := context.Background()
	_ = a.Put(ctx, "a", 1)
	if err := a.Put(ctx, "b", 2); !errors.Is(err, sinecache.ErrPolicyRefusedEviction) {
		t.Fatalf("want ErrPolicyRefusedEviction, got %v", err)
	}
}

type refusingPolicy struct{}

func (refusingPolicy) OnGet(string)          {}
func (refusingPolicy) OnSet(string)          {}
func (refusingPolicy) Remove(string)         {}
func (refusingPolicy) Evict() (string, bool) { return "", false }

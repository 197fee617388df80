package cache

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"
)

func newTestLRU(t *testing.T, capacity int, p *fakeProducer) *LRU[string, string] {
	t.Helper()
	c, err := NewLRU(Options[string, string]{
		Name:     "test",
		Capacity: capacity,
		Produce:  p.produce,
		Dispose:  p.dispose,
	})
	if err != nil {
		t.Fatalf("NewLRU: %v", err)
	}
	return c
}

func TestNewLRUValidation(t *testing.T) {
	p := newFakeProducer()
	tests := []struct {
		name    string
		opts    Options[string, string]
		wantErr error
	}{
		{name: "zero capacity", opts: Options[string, string]{Capacity: 0, Produce: p.produce}, wantErr: ErrInvalidCapacity},
		{name: "negative capacity", opts: Options[string, string]{Capacity: -5, Produce: p.produce}, wantErr: ErrInvalidCapacity},
		{name: "missing producer", opts: Options[string, string]{Capacity: 1}, wantErr: ErrNoProducer},
		{name: "valid", opts: Options[string, string]{Capacity: 1, Produce: p.produce}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewLRU(tt.opts)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("NewLRU err = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr == nil && c.Capacity() != tt.opts.Capacity {
				t.Errorf("Capacity() = %d, want %d", c.Capacity(), tt.opts.Capacity)
			}
		})
	}
}

func TestEnsureReturnsCachedValue(t *testing.T) {
	p := newFakeProducer()
	c := newTestLRU(t, 4, p)
	ctx := context.Background()

	first, err := c.Ensure(ctx, "a")
	if err != nil {
		t.Fatalf("Ensure: %v", err)
	}
	second, err := c.Ensure(ctx, "a")
	if err != nil {
		t.Fatalf("Ensure: %v", err)
	}

	if first != second {
		t.Errorf("second Ensure = %q, want cached %q", second, first)
	}
	if n := p.callCount("a"); n != 1 {
		t.Errorf("producer calls = %d, want 1", n)
	}
}

func TestEnsureDeduplicatesConcurrentRequests(t *testing.T) {
	p := newFakeProducer()
	c := newTestLRU(t, 4, p)
	release := p.hold("a")
	defer release()

	const callers = 10
	results := make([]string, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, err := c.Ensure(context.Background(), "a")
			if err != nil {
				t.Errorf("Ensure: %v", err)
			}
			results[i] = v
		}(i)
	}

	waitFor(t, "production to start", func() bool { return c.Pending("a") })
	release()
	wg.Wait()

	if n := p.callCount("a"); n != 1 {
		t.Errorf("producer calls = %d, want 1", n)
	}
	for i, v := range results {
		if v != results[0] {
			t.Errorf("results[%d] = %q, want %q", i, v, results[0])
		}
	}
	if c.Pending("a") {
		t.Error("pending marker should be cleared after settlement")
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}
}

func TestEvictsLeastRecentlyUsed(t *testing.T) {
	p := newFakeProducer()
	obs := newCountingObserver()
	c, err := NewLRU(Options[string, string]{
		Name:     "test",
		Capacity: 3,
		Produce:  p.produce,
		Dispose:  p.dispose,
		Observer: obs,
	})
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	for _, k := range []string{"a", "b", "c"} {
		if _, err := c.Ensure(ctx, k); err != nil {
			t.Fatal(err)
		}
	}
	// Touch a so b becomes the least recently used.
	if _, err := c.Ensure(ctx, "a"); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Ensure(ctx, "d"); err != nil {
		t.Fatal(err)
	}

	if got := sortedKeys(c.Snapshot()); !reflect.DeepEqual(got, []string{"a", "c", "d"}) {
		t.Errorf("resident = %v, want [a c d]", got)
	}
	if got := p.disposedValues(); len(got) != 1 || got[0] != "b#2" {
		t.Errorf("disposed = %v, want [b#2]", got)
	}
	if obs.evictions[ReasonCapacity] != 1 {
		t.Errorf("capacity evictions = %d, want 1", obs.evictions[ReasonCapacity])
	}
	if obs.resident != 3 {
		t.Errorf("observed resident = %d, want 3", obs.resident)
	}
	if obs.hits != 1 || obs.misses != 4 {
		t.Errorf("hits/misses = %d/%d, want 1/4", obs.hits, obs.misses)
	}
}

func TestGetRefreshesRecency(t *testing.T) {
	p := newFakeProducer()
	c := newTestLRU(t, 2, p)
	ctx := context.Background()

	c.Ensure(ctx, "a")
	c.Ensure(ctx, "b")
	if _, ok := c.Get("a"); !ok {
		t.Fatal("Get(a) should hit")
	}
	c.Ensure(ctx, "c")

	if _, ok := c.Get("b"); ok {
		t.Error("b should have been evicted")
	}
	if _, ok := c.Get("a"); !ok {
		t.Error("a should still be resident")
	}
	if _, ok := c.Get("missing"); ok {
		t.Error("Get must not produce")
	}
	if p.callCount("missing") != 0 {
		t.Error("Get invoked the producer")
	}
}

func TestReleaseThenEnsureProducesAgain(t *testing.T) {
	p := newFakeProducer()
	c := newTestLRU(t, 4, p)
	ctx := context.Background()

	first, _ := c.Ensure(ctx, "a")
	if !c.Release("a") {
		t.Fatal("Release should report a resident entry")
	}
	if c.Release("a") {
		t.Error("second Release should be a no-op")
	}
	if c.Release("never") {
		t.Error("Release of an absent key should be a no-op")
	}

	second, err := c.Ensure(ctx, "a")
	if err != nil {
		t.Fatal(err)
	}
	if first == second {
		t.Errorf("expected a fresh value after release, got %q twice", first)
	}
	if n := p.callCount("a"); n != 2 {
		t.Errorf("producer calls = %d, want 2", n)
	}
	if got := p.disposedValues(); len(got) != 1 || got[0] != first {
		t.Errorf("disposed = %v, want [%s]", got, first)
	}
}

func TestFailedProductionLeavesNoResidue(t *testing.T) {
	p := newFakeProducer()
	c := newTestLRU(t, 4, p)
	ctx := context.Background()
	boom := errors.New("unreadable")

	p.failWith("a", boom)
	if _, err := c.Ensure(ctx, "a"); !errors.Is(err, boom) {
		t.Fatalf("Ensure err = %v, want %v", err, boom)
	}
	if c.Len() != 0 || c.Pending("a") {
		t.Fatalf("failure left residue: len=%d pending=%v", c.Len(), c.Pending("a"))
	}

	p.failWith("a", nil)
	if _, err := c.Ensure(ctx, "a"); err != nil {
		t.Fatalf("retry after failure: %v", err)
	}
	if n := p.callCount("a"); n != 2 {
		t.Errorf("producer calls = %d, want 2", n)
	}
}

func TestFailureIsSharedByAllAwaiters(t *testing.T) {
	p := newFakeProducer()
	c := newTestLRU(t, 4, p)
	boom := errors.New("decode failed")
	p.failWith("a", boom)
	release := p.hold("a")

	errs := make(chan error, 2)
	for i := 0; i < 2; i++ {
		go func() {
			_, err := c.Ensure(context.Background(), "a")
			errs <- err
		}()
	}
	waitFor(t, "production to start", func() bool { return c.Pending("a") })
	release()

	for i := 0; i < 2; i++ {
		if err := <-errs; !errors.Is(err, boom) {
			t.Errorf("awaiter err = %v, want %v", err, boom)
		}
	}
	if p.callCount("a") > 2 {
		t.Errorf("producer calls = %d", p.callCount("a"))
	}
}

func TestCanceledCallerDoesNotAbortProduction(t *testing.T) {
	p := newFakeProducer()
	c := newTestLRU(t, 4, p)
	release := p.hold("a")

	ctx, cancel := context.WithCancel(context.Background())
	errs := make(chan error, 1)
	go func() {
		_, err := c.Ensure(ctx, "a")
		errs <- err
	}()

	waitFor(t, "production to start", func() bool { return c.Pending("a") })
	cancel()
	if err := <-errs; !errors.Is(err, context.Canceled) {
		t.Fatalf("Ensure err = %v, want context.Canceled", err)
	}

	release()
	waitFor(t, "production to be stored", func() bool { return c.Len() == 1 })

	if _, err := c.Ensure(context.Background(), "a"); err != nil {
		t.Fatal(err)
	}
	if n := p.callCount("a"); n != 1 {
		t.Errorf("producer calls = %d, want 1", n)
	}
}

func TestEnsureWithCanceledContext(t *testing.T) {
	p := newFakeProducer()
	c := newTestLRU(t, 4, p)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := c.Ensure(ctx, "a"); !errors.Is(err, context.Canceled) {
		t.Errorf("Ensure err = %v, want context.Canceled", err)
	}
	if p.callCount("a") != 0 {
		t.Error("canceled Ensure should not start a production")
	}
}

func TestReleaseAll(t *testing.T) {
	p := newFakeProducer()
	c := newTestLRU(t, 4, p)
	ctx := context.Background()

	if n := c.ReleaseAll(); n != 0 {
		t.Errorf("ReleaseAll on empty cache = %d, want 0", n)
	}

	for _, k := range []string{"a", "b", "c"} {
		c.Ensure(ctx, k)
	}
	if n := c.ReleaseAll(); n != 3 {
		t.Errorf("ReleaseAll = %d, want 3", n)
	}
	if c.Len() != 0 {
		t.Errorf("Len() = %d, want 0", c.Len())
	}
	if got := p.disposedValues(); len(got) != 3 {
		t.Errorf("disposed = %v, want 3 values", got)
	}
	if n := c.ReleaseAll(); n != 0 {
		t.Errorf("second ReleaseAll = %d, want 0", n)
	}
}

func TestReleaseAllDiscardsPendingProduction(t *testing.T) {
	p := newFakeProducer()
	c := newTestLRU(t, 4, p)
	release := p.hold("a")

	errs := make(chan error, 1)
	go func() {
		_, err := c.Ensure(context.Background(), "a")
		errs <- err
	}()
	waitFor(t, "production to start", func() bool { return c.Pending("a") })

	c.ReleaseAll()
	release()

	if err := <-errs; !errors.Is(err, ErrDiscarded) {
		t.Fatalf("awaiter err = %v, want ErrDiscarded", err)
	}
	if c.Len() != 0 {
		t.Errorf("discarded value became resident")
	}
	if got := p.disposedValues(); len(got) != 1 || got[0] != "a#1" {
		t.Errorf("disposed = %v, want [a#1]", got)
	}

	// A later request produces a fresh value.
	v, err := c.Ensure(context.Background(), "a")
	if err != nil || v != "a#2" {
		t.Errorf("Ensure after discard = %q, %v; want a#2", v, err)
	}
}

func TestRequestAfterReleaseAllSkipsStaleProduction(t *testing.T) {
	p := newFakeProducer()
	c := newTestLRU(t, 4, p)
	release := p.hold("a")

	stale := make(chan error, 1)
	go func() {
		_, err := c.Ensure(context.Background(), "a")
		stale <- err
	}()
	waitFor(t, "production to start", func() bool { return c.Pending("a") })
	c.ReleaseAll()

	fresh := make(chan string, 1)
	go func() {
		v, err := c.Ensure(context.Background(), "a")
		if err != nil {
			t.Errorf("fresh Ensure: %v", err)
		}
		fresh <- v
	}()

	// Give the fresh request time to join the stale flight.
	time.Sleep(20 * time.Millisecond)
	release()

	if err := <-stale; !errors.Is(err, ErrDiscarded) {
		t.Errorf("stale awaiter err = %v, want ErrDiscarded", err)
	}
	select {
	case v := <-fresh:
		if v == "a#1" {
			t.Errorf("fresh request got the discarded value %q", v)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("fresh request never settled")
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}
}

func TestReleaseOfPendingKeyIsNoop(t *testing.T) {
	p := newFakeProducer()
	c := newTestLRU(t, 4, p)
	release := p.hold("a")

	done := make(chan struct{})
	go func() {
		defer close(done)
		c.Ensure(context.Background(), "a")
	}()
	waitFor(t, "production to start", func() bool { return c.Pending("a") })

	if c.Release("a") {
		t.Error("Release of a pending key should report nothing released")
	}
	release()
	<-done

	if _, ok := c.Get("a"); !ok {
		t.Error("production should still become resident")
	}
}

func TestTrim(t *testing.T) {
	p := newFakeProducer()
	c := newTestLRU(t, 10, p)
	ctx := context.Background()

	for _, k := range []string{"a", "b", "c", "d"} {
		c.Ensure(ctx, k)
	}
	c.Get("a")

	if n := c.Trim(2); n != 2 {
		t.Errorf("Trim(2) = %d, want 2", n)
	}
	if got := sortedKeys(c.Snapshot()); !reflect.DeepEqual(got, []string{"a", "d"}) {
		t.Errorf("resident = %v, want [a d]", got)
	}
	if n := c.Trim(5); n != 0 {
		t.Errorf("Trim above size = %d, want 0", n)
	}
	if n := c.Trim(-1); n != 2 {
		t.Errorf("Trim(-1) = %d, want 2", n)
	}
}

func TestDisposeCalledOncePerValue(t *testing.T) {
	p := newFakeProducer()
	c := newTestLRU(t, 2, p)
	ctx := context.Background()

	for _, k := range []string{"a", "b", "c", "d", "a", "b"} {
		c.Ensure(ctx, k)
	}
	c.Release("a")
	c.ReleaseAll()

	seen := make(map[string]int)
	for _, v := range p.disposedValues() {
		seen[v]++
	}
	for v, n := range seen {
		if n != 1 {
			t.Errorf("value %s disposed %d times", v, n)
		}
	}
	if len(seen) != 6 {
		t.Errorf("disposed %d distinct values, want 6", len(seen))
	}
}

func TestFlightKeyIsUsedForCoalescing(t *testing.T) {
	type key struct{ dir, name string }
	var mu sync.Mutex
	calls := 0
	c, err := NewLRU(Options[key, string]{
		Capacity: 4,
		Produce: func(_ context.Context, k key) (string, error) {
			mu.Lock()
			calls++
			mu.Unlock()
			return k.dir + "/" + k.name, nil
		},
		FlightKey: func(k key) string { return k.dir + "\x00" + k.name },
	})
	if err != nil {
		t.Fatal(err)
	}

	a, _ := c.Ensure(context.Background(), key{"x", "y"})
	b, _ := c.Ensure(context.Background(), key{"x", "z"})
	if a != "x/y" || b != "x/z" || calls != 2 {
		t.Errorf("got %q %q with %d calls", a, b, calls)
	}
}

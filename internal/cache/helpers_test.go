package cache

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"
)

// fakeProducer hands out unique values per production and records every
// call and disposal.
type fakeProducer struct {
	mu       sync.Mutex
	calls    map[string]int
	fail     map[string]error
	gates    map[string]chan struct{}
	disposed []string
	serial   int
}

func newFakeProducer() *fakeProducer {
	return &fakeProducer{
		calls: make(map[string]int),
		fail:  make(map[string]error),
		gates: make(map[string]chan struct{}),
	}
}

func (f *fakeProducer) produce(ctx context.Context, key string) (string, error) {
	f.mu.Lock()
	f.calls[key]++
	f.serial++
	n := f.serial
	err := f.fail[key]
	gate := f.gates[key]
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s#%d", key, n), nil
}

func (f *fakeProducer) dispose(key, value string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.disposed = append(f.disposed, value)
}

// hold makes productions of key block until the returned function is called.
func (f *fakeProducer) hold(key string) func() {
	gate := make(chan struct{})
	f.mu.Lock()
	f.gates[key] = gate
	f.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			f.mu.Lock()
			delete(f.gates, key)
			f.mu.Unlock()
			close(gate)
		})
	}
}

func (f *fakeProducer) failWith(key string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err == nil {
		delete(f.fail, key)
		return
	}
	f.fail[key] = err
}

func (f *fakeProducer) callCount(key string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[key]
}

func (f *fakeProducer) disposedValues() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := append([]string(nil), f.disposed...)
	sort.Strings(out)
	return out
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(time.Millisecond)
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// countingObserver tallies observer callbacks.
type countingObserver struct {
	mu          sync.Mutex
	hits        int
	misses      int
	evictions   map[string]int
	productions int
	failures    int
	resident    int
}

func newCountingObserver() *countingObserver {
	return &countingObserver{evictions: make(map[string]int)}
}

func (o *countingObserver) ObserveHit(string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.hits++
}

func (o *countingObserver) ObserveMiss(string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.misses++
}

func (o *countingObserver) ObserveEviction(_, reason string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.evictions[reason]++
}

func (o *countingObserver) ObserveProduction(_ string, _ float64, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.productions++
	if err != nil {
		o.failures++
	}
}

func (o *countingObserver) ObserveResident(_ string, count int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.resident = count
}

package commitlog_test

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/utkarsh5026/commitlog/commitlog"
)

// fakeLog records the order of appends and syncs the worker performs.
type fakeLog struct {
	mu     sync.Mutex
	events []string
	next   int64

	syncs    atomic.Int64
	syncErr  error
	syncGate chan struct{} // when non-nil, Sync blocks until it is closed
	inSync   chan struct{} // when non-nil, receives once per Sync call
}

func newFakeLog() *fakeLog {
	return &fakeLog{}
}

func (l *fakeLog) record(event string) {
	l.mu.Lock()
	l.events = append(l.events, event)
	l.mu.Unlock()
}

func (l *fakeLog) Events() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.events...)
}

// append returns a side effect that writes one record and returns its position.
func (l *fakeLog) append(name string) func() (int64, error) {
	return func() (int64, error) {
		l.mu.Lock()
		defer l.mu.Unlock()
		l.next++
		l.events = append(l.events, name)
		return l.next, nil
	}
}

func (l *fakeLog) Sync() error {
	if l.inSync != nil {
		l.inSync <- struct{}{}
	}
	if l.syncGate != nil {
		<-l.syncGate
	}
	l.syncs.Add(1)
	l.record("sync")
	return l.syncErr
}

// blockWorker submits a unit that holds the worker until release is called.
// It returns only once the worker is inside that unit, so everything submitted
// afterwards is guaranteed to be queued behind it.
func blockWorker(t *testing.T, exec *commitlog.Executor[int64]) (release func()) {
	t.Helper()

	started := make(chan struct{})
	gate := make(chan struct{})
	_, err := exec.Execute(func() (int64, error) {
		close(started)
		<-gate
		return 0, nil
	})
	if err != nil {
		t.Fatalf("failed to submit blocking task: %v", err)
	}

	select {
	case <-started:
	case <-time.After(time.Second):
		t.Fatal("worker never started the blocking task")
	}

	var once sync.Once
	return func() { once.Do(func() { close(gate) }) }
}

// waitFor polls cond until it holds or the timeout elapses.
func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met before timeout")
		}
		time.Sleep(time.Millisecond)
	}
}

func getWithin[R any](t *testing.T, f *commitlog.Future[R], timeout time.Duration) (R, error) {
	t.Helper()

	select {
	case <-f.Done():
	case <-time.After(timeout):
		t.Fatal("timed out waiting for future")
	}
	value, _, err := f.Get()
	return value, err
}

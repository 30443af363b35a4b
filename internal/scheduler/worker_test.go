package scheduler

import (
	"errors"
	"testing"
	"time"

	"github.com/utkarsh5026/commitlog/internal/types"
)

// TestNewWorker tests config validation.
func TestNewWorker(t *testing.T) {
	tests := []struct {
		name    string
		conf    Config
		wantErr error
	}{
		{
			name:    "unknown sync mode",
			conf:    Config{QueueCapacity: 1, SyncMode: SyncMode(7)},
			wantErr: ErrInvalidSyncMode,
		},
		{
			name:    "zero capacity",
			conf:    Config{QueueCapacity: 0},
			wantErr: ErrInvalidCapacity,
		},
		{
			name:    "negative window",
			conf:    Config{QueueCapacity: 1, BatchWindow: -time.Millisecond},
			wantErr: ErrInvalidWindow,
		},
		{
			name:    "batch without syncer",
			conf:    Config{QueueCapacity: 1, SyncMode: SyncBatch},
			wantErr: ErrNoSyncer,
		},
		{
			name: "per-operation without syncer",
			conf: Config{QueueCapacity: 1, CPUAffinity: -1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, err := NewWorker[int](&tt.conf)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if w.Capacity() != tt.conf.QueueCapacity {
				t.Errorf("expected capacity %d, got %d", tt.conf.QueueCapacity, w.Capacity())
			}
			if tt.conf.Logger == nil || tt.conf.Clock == nil {
				t.Error("Validate should fill in logger and clock")
			}
		})
	}
}

// TestWorker_Run tests counters and fatal exit.
func TestWorker_Run(t *testing.T) {
	cause := errors.New("fsync failed")
	fail := make(chan struct{})
	syncer := SyncFunc(func() error {
		select {
		case <-fail:
			return cause
		default:
			return nil
		}
	})

	w, err := NewWorker[int](&Config{
		SyncMode:      SyncBatch,
		QueueCapacity: 8,
		BatchWindow:   time.Hour,
		Syncer:        syncer,
		CPUAffinity:   -1,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	exited := make(chan error, 1)
	go func() { exited <- w.Run() }()

	ok := appendTask(1, 1)
	w.Submit(ok)
	<-ok.Future.Done()

	deadline := time.Now().Add(time.Second)
	for w.Completed() != 1 {
		if time.Now().After(deadline) {
			t.Fatal("completed counter never advanced")
		}
		time.Sleep(time.Millisecond)
	}
	if w.Syncs() != 1 {
		t.Errorf("expected 1 sync, got %d", w.Syncs())
	}

	close(fail)
	doomed := appendTask(2, 2)
	w.Submit(doomed)

	select {
	case err := <-exited:
		var fatal *FatalError
		if !errors.As(err, &fatal) || !errors.Is(err, cause) {
			t.Errorf("expected fatal sync error, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("worker did not exit on sync failure")
	}

	if doomed.Future.IsReady() {
		t.Error("doomed append must stay unresolved")
	}
	if w.Completed() != 1 || w.Syncs() != 1 {
		t.Errorf("counters moved after failure: completed=%d syncs=%d", w.Completed(), w.Syncs())
	}

	w.Submit(types.NewSubmittedTask[int](3, types.KindOther, func() (int, error) { return 0, nil }))
	if w.Pending() != 1 {
		t.Errorf("queued work after a fatal fault is never drained, pending=%d", w.Pending())
	}
}

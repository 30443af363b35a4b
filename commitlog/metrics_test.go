package commitlog_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/utkarsh5026/commitlog/commitlog"
)

func TestExecutor_Vars(t *testing.T) {
	exec, err := commitlog.NewExecutor[int64](nil, commitlog.WithQueueCapacity(4))
	if err != nil {
		t.Fatalf("failed to create executor: %v", err)
	}

	f, _ := exec.Execute(func() (int64, error) { return 1, nil })
	_, _ = getWithin(t, f, time.Second)
	waitFor(t, time.Second, func() bool { return exec.CompletedTasks() == 1 })

	var got map[string]int64
	if err := json.Unmarshal([]byte(exec.Vars().String()), &got); err != nil {
		t.Fatalf("vars are not valid JSON: %v", err)
	}

	want := map[string]int64{
		"active_count":    1,
		"pending_tasks":   0,
		"completed_tasks": 1,
		"sync_total":      0,
		"queue_capacity":  4,
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("%s: expected %d, got %d", k, v, got[k])
		}
	}
}

func TestExecutor_Publish(t *testing.T) {
	exec, err := commitlog.NewExecutor[int64](nil)
	if err != nil {
		t.Fatalf("failed to create executor: %v", err)
	}

	const name = "commitlog_test_executor"
	if err := exec.Publish(name); err != nil {
		t.Fatalf("first publish failed: %v", err)
	}
	if err := exec.Publish(name); err == nil {
		t.Error("publishing the same name twice should fail")
	}
}

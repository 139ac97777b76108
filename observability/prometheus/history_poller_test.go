package prometheus

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/openacq/go-acq-scheduler/core"
)

func TestHistoryPoller_PollOnce(t *testing.T) {
	reg := prom.NewRegistry()
	poller, err := NewHistoryPoller("acqsched", reg, time.Second)
	if err != nil {
		t.Fatalf("NewHistoryPoller failed: %v", err)
	}

	history := core.NewRunHistory(10)
	history.Add(core.RunRecord{
		ID:       uuid.New(),
		Outcome:  core.OutcomeCompleted,
		Duration: 500 * time.Millisecond,
		Streams:  2,
		Results:  3,
	})
	history.Add(core.RunRecord{
		ID:       uuid.New(),
		Outcome:  core.OutcomePartial,
		Duration: 2 * time.Second,
		Streams:  3,
		Results:  1,
	})
	poller.SetHistory(history)

	poller.PollOnce()

	if got := testutil.ToFloat64(poller.runsRetained); got != 2 {
		t.Fatalf("runs retained gauge = %v, want 2", got)
	}
	if got := testutil.ToFloat64(poller.lastRunDuration); got != 2 {
		t.Fatalf("last run duration gauge = %v, want 2", got)
	}
	if got := testutil.ToFloat64(poller.lastRunResults); got != 1 {
		t.Fatalf("last run results gauge = %v, want 1", got)
	}
}

func TestHistoryPoller_NoHistoryIsNoOp(t *testing.T) {
	reg := prom.NewRegistry()
	poller, err := NewHistoryPoller("acqsched", reg, time.Second)
	if err != nil {
		t.Fatalf("NewHistoryPoller failed: %v", err)
	}

	poller.PollOnce()

	if got := testutil.ToFloat64(poller.runsRetained); got != 0 {
		t.Fatalf("runs retained gauge = %v, want 0", got)
	}
}

func TestHistoryPoller_StartStop(t *testing.T) {
	reg := prom.NewRegistry()
	poller, err := NewHistoryPoller("acqsched", reg, 5*time.Millisecond)
	if err != nil {
		t.Fatalf("NewHistoryPoller failed: %v", err)
	}

	history := core.NewRunHistory(10)
	history.Add(core.RunRecord{ID: uuid.New(), Outcome: core.OutcomeCompleted, Results: 4})
	poller.SetHistory(history)

	ctx := context.Background()
	poller.Start(ctx)
	poller.Start(ctx) // repeated Start is a no-op

	deadline := time.After(time.Second)
	for testutil.ToFloat64(poller.lastRunResults) != 4 {
		select {
		case <-deadline:
			t.Fatal("poller never exported the history snapshot")
		case <-time.After(time.Millisecond):
		}
	}

	poller.Stop()
	poller.Stop() // repeated Stop is safe
}

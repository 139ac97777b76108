package core

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func record(outcome RunOutcome, results int) RunRecord {
	return RunRecord{
		ID:         uuid.New(),
		Outcome:    outcome,
		StartedAt:  time.Now(),
		FinishedAt: time.Now(),
		Results:    results,
	}
}

// TestRunHistory_RingEviction verifies bounded retention
// Given: A history of capacity 3 receiving 5 records
// When: Recent is queried
// Then: Only the 3 most recent records remain, oldest first
func TestRunHistory_RingEviction(t *testing.T) {
	// Arrange
	h := NewRunHistory(3)
	var ids []uuid.UUID
	for i := 0; i < 5; i++ {
		r := record(OutcomeCompleted, i)
		ids = append(ids, r.ID)
		h.Add(r)
	}

	// Act
	recent := h.Recent(0)

	// Assert
	if len(recent) != 3 {
		t.Fatalf("Recent() returned %d records, want 3", len(recent))
	}
	for i, want := range ids[2:] {
		if recent[i].ID != want {
			t.Fatalf("Recent()[%d].ID = %v, want %v", i, recent[i].ID, want)
		}
	}
}

// TestRunHistory_CancelledRunsExcluded verifies the history policy
// Given: A cancelled zero-data run and a partial run
// When: Both are added
// Then: Only the partial run appears in the history
func TestRunHistory_CancelledRunsExcluded(t *testing.T) {
	// Arrange
	h := NewRunHistory(10)

	// Act
	h.Add(record(OutcomeCancelled, 0))
	h.Add(record(OutcomePartial, 2))

	// Assert
	recent := h.Recent(0)
	if len(recent) != 1 {
		t.Fatalf("history holds %d records, want 1", len(recent))
	}
	if recent[0].Outcome != OutcomePartial {
		t.Fatalf("recorded outcome = %v, want %v", recent[0].Outcome, OutcomePartial)
	}
}

// TestRunHistory_RecentLimit verifies the limit parameter
func TestRunHistory_RecentLimit(t *testing.T) {
	h := NewRunHistory(10)
	for i := 0; i < 4; i++ {
		h.Add(record(OutcomeCompleted, i))
	}

	if got := len(h.Recent(2)); got != 2 {
		t.Fatalf("Recent(2) returned %d records, want 2", got)
	}
	if got := h.Len(); got != 4 {
		t.Fatalf("Len() = %d, want 4", got)
	}
}

// TestRunHistory_NilSafe verifies nil-receiver tolerance, matching the
// optional History field of AcquirerConfig
func TestRunHistory_NilSafe(t *testing.T) {
	var h *RunHistory
	h.Add(record(OutcomeCompleted, 1))
	if h.Recent(0) != nil {
		t.Fatal("nil history should return no records")
	}
	if h.Len() != 0 {
		t.Fatal("nil history should report length 0")
	}
}

// TestAcquire_RecordsHistory verifies end-to-end history wiring
// Given: A config with a history and two runs, one completed, one cancelled
//        before producing data
// When: Both runs conclude
// Then: Only the completed run is recorded, with its stream/result counts
func TestAcquire_RecordsHistory(t *testing.T) {
	// Arrange
	h := NewRunHistory(10)
	cfg := &AcquirerConfig{Logger: NewNoOpLogger(), History: h}

	// Act: a successful run.
	okFuture := Acquire([]Stream{
		&mockStream{name: "em", category: CategoryElectron},
	}, cfg)
	if _, err := okFuture.Result(); err != nil {
		t.Fatalf("Result() error = %v, want nil", err)
	}

	// Act: a run cancelled before any stream starts.
	cancelledFuture := NewProgressiveFuture()
	task := NewAcquisitionTask([]Stream{
		&mockStream{name: "fluo", category: CategoryFluorescence},
	}, cancelledFuture, cfg)
	cancelledFuture.bindCanceller(task.Cancel)
	cancelledFuture.Cancel()
	executeRun(task, cfg.withDefaults())

	// Assert
	recent := h.Recent(0)
	if len(recent) != 1 {
		t.Fatalf("history holds %d records, want 1", len(recent))
	}
	r := recent[0]
	if r.ID != okFuture.ID() {
		t.Fatalf("recorded run ID = %v, want %v", r.ID, okFuture.ID())
	}
	if r.Outcome != OutcomeCompleted || r.Streams != 1 || r.Results != 1 {
		t.Fatalf("record = %+v, want completed with 1 stream and 1 result", r)
	}
}

package core

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

const defaultRunHistoryCapacity = 100

// RunRecord captures one finished acquisition run.
type RunRecord struct {
	ID         uuid.UUID
	Outcome    RunOutcome
	StartedAt  time.Time
	FinishedAt time.Time
	Duration   time.Duration
	Streams    int
	Results    int
	Error      string
}

// RunHistory is a bounded, in-memory ring of finished runs, most recent
// last. Cancelled runs that produced no data are never recorded: they must
// not appear in the result history.
type RunHistory struct {
	mu    sync.Mutex
	items []RunRecord
	head  int
	count int
}

// NewRunHistory creates a history holding up to capacity records.
// A capacity below 1 falls back to the default of 100.
func NewRunHistory(capacity int) *RunHistory {
	if capacity < 1 {
		capacity = defaultRunHistoryCapacity
	}
	return &RunHistory{items: make([]RunRecord, capacity)}
}

// Add appends a record, evicting the oldest when full. Records with outcome
// OutcomeCancelled are dropped.
func (h *RunHistory) Add(record RunRecord) {
	if h == nil || record.Outcome == OutcomeCancelled {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.items[h.head] = record
	h.head = (h.head + 1) % len(h.items)
	if h.count < len(h.items) {
		h.count++
	}
}

// Recent returns up to limit records, oldest first. A limit of 0 or less
// returns everything retained.
func (h *RunHistory) Recent(limit int) []RunRecord {
	if h == nil {
		return nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.count == 0 {
		return nil
	}
	n := h.count
	if limit > 0 && limit < n {
		n = limit
	}

	out := make([]RunRecord, 0, n)
	start := (h.head - n + len(h.items)) % len(h.items)
	for i := 0; i < n; i++ {
		out = append(out, h.items[(start+i)%len(h.items)])
	}
	return out
}

// Len returns the number of retained records.
func (h *RunHistory) Len() int {
	if h == nil {
		return 0
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.count
}

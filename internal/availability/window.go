// Package availability implements the peer availability sensor: periodic
// sampling of known peers, a sliding window of round outcomes, and
// threshold-driven escalation, including total-isolation detection.
package availability

import "time"

// Record is one timestamped round outcome. Immutable once appended.
type Record struct {
	Time   time.Time
	Failed bool
}

// Window is a fixed-capacity, oldest-evicted ring of round outcomes.
// Its length never exceeds the configured retention.
type Window struct {
	retention int
	records   []Record
	head      int // index of the oldest record
	count     int
}

// NewWindow creates a window holding at most retention records.
func NewWindow(retention int) *Window {
	return &Window{
		retention: retention,
		records:   make([]Record, retention),
	}
}

// Append adds a record at the tail, overwriting the oldest once full. O(1).
func (w *Window) Append(r Record) {
	w.records[(w.head+w.count)%w.retention] = r
	if w.count < w.retention {
		w.count++
		return
	}
	w.head = (w.head + 1) % w.retention
}

// Len returns the number of records currently held.
func (w *Window) Len() int {
	return w.count
}

// FailedCount returns the number of retained records flagged as failed.
func (w *Window) FailedCount() int {
	n := 0
	for i := 0; i < w.count; i++ {
		if w.records[(w.head+i)%w.retention].Failed {
			n++
		}
	}
	return n
}

// Score returns FailedCount divided by the configured retention.
// The denominator is the capacity, not the occupancy, so the score
// under-reports failure density until the window fills.
func (w *Window) Score() float64 {
	return float64(w.FailedCount()) / float64(w.retention)
}

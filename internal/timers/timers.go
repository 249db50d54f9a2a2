// Package timers runs delayed callbacks on the caller's thread. The frame loop calls Run once per
// frame, so every callback executes between frames and never concurrently with input handling.
package timers

import (
	"sort"
	"time"
)

// ID identifies a scheduled callback.
type ID uint64

type entry struct {
	id  ID
	due time.Time
	fn  func()
}

// Queue is a single-threaded timer queue.
type Queue struct {
	now     func() time.Time
	next    ID
	pending []entry
}

// New returns a queue driven by clock; nil means time.Now.
func New(clock func() time.Time) *Queue {
	if clock == nil {
		clock = time.Now
	}
	return &Queue{now: clock}
}

// After schedules fn to run on the first Run at or after delay from now.
func (q *Queue) After(delay time.Duration, fn func()) ID {
	q.next++
	q.pending = append(q.pending, entry{id: q.next, due: q.now().Add(delay), fn: fn})
	return q.next
}

// Cancel removes a pending callback. Unknown IDs are ignored.
func (q *Queue) Cancel(id ID) {
	for i, e := range q.pending {
		if e.id == id {
			q.pending = append(q.pending[:i], q.pending[i+1:]...)
			return
		}
	}
}

// Len returns the number of pending callbacks.
func (q *Queue) Len() int { return len(q.pending) }

// Run executes every due callback in due order and returns how many ran. Callbacks scheduled by a
// running callback wait for a later Run, even with zero delay.
func (q *Queue) Run() int {
	now := q.now()
	var due, keep []entry
	for _, e := range q.pending {
		if !e.due.After(now) {
			due = append(due, e)
		} else {
			keep = append(keep, e)
		}
	}
	q.pending = keep
	sort.SliceStable(due, func(i, j int) bool { return due[i].due.Before(due[j].due) })
	for _, e := range due {
		e.fn()
	}
	return len(due)
}

// Clear drops every pending callback.
func (q *Queue) Clear() {
	q.pending = nil
}

// Retry is a bounded retry policy: at most MaxAttempts re-runs spaced Delay apart.
type Retry struct {
	MaxAttempts int
	Delay       time.Duration
}

// Schedule re-runs fn with attempt+1 if attempt is still below the ceiling. It reports whether a
// retry was scheduled; false means the caller has given up.
func (r Retry) Schedule(q *Queue, attempt int, fn func(attempt int)) bool {
	if attempt >= r.MaxAttempts {
		return false
	}
	next := attempt + 1
	q.After(r.Delay, func() { fn(next) })
	return true
}

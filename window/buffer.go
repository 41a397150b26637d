/*
Package window holds the bounded recent-history buffer.

PURPOSE:
  Every aggregate on the dashboard is computed over the most recent
  DefaultCapacity events only. The buffer is insertion-ordered, truncates
  from the head on overflow, and lives purely in process memory.

INVARIANTS:
  - Len() <= capacity at all times
  - Snapshot() is exactly the most recently appended events, oldest first
  - no deduplication here; duplicates are collapsed by the enrich stage

CONCURRENCY:
  Mutated only by the single pipeline goroutine. Not safe for concurrent
  use; callers introducing concurrency must serialize access themselves.
*/
package window

import "github.com/MohamedARoshdy/Skippy-A-Global-Fashion-Retail-Sales/stream"

// DefaultCapacity is the dashboard's recent-history bound.
const DefaultCapacity = 1000

// Buffer is a bounded, insertion-ordered event window.
type Buffer struct {
	capacity int
	events   []stream.RawEvent
}

// NewBuffer returns an empty buffer. A non-positive capacity falls back
// to DefaultCapacity.
func NewBuffer(capacity int) *Buffer {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Buffer{
		capacity: capacity,
		events:   make([]stream.RawEvent, 0, capacity),
	}
}

// Append adds one event at the tail, dropping from the head if the
// capacity is exceeded.
func (b *Buffer) Append(ev stream.RawEvent) {
	b.events = append(b.events, ev)
	if len(b.events) > b.capacity {
		overflow := len(b.events) - b.capacity
		b.events = append(b.events[:0], b.events[overflow:]...)
	}
}

// Len returns the current number of buffered events.
func (b *Buffer) Len() int {
	return len(b.events)
}

// Capacity returns the configured bound.
func (b *Buffer) Capacity() int {
	return b.capacity
}

// Snapshot returns a copy of the buffered events in arrival order.
// Downstream stages own the copy and may not see later appends.
func (b *Buffer) Snapshot() []stream.RawEvent {
	out := make([]stream.RawEvent, len(b.events))
	copy(out, b.events)
	return out
}

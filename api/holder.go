/*
holder.go - Latest-snapshot cell between the pipeline and HTTP

PURPOSE:
  The processing loop is the single writer; HTTP handlers and SSE
  subscribers are readers. The holder keeps the most recent snapshot and
  enriched window behind an RWMutex and fans each publish out to
  subscribers without ever blocking the pipeline (slow subscribers miss
  intermediate snapshots, never stall ingestion).

SEE ALSO:
  - pipeline/loop.go: calls Publish once per processed event
  - handlers.go: reads Latest and subscribes for SSE
*/
package api

import (
	"sync"

	"github.com/MohamedARoshdy/Skippy-A-Global-Fashion-Retail-Sales/aggregate"
	"github.com/MohamedARoshdy/Skippy-A-Global-Fashion-Retail-Sales/enrich"
)

// Holder is the pipeline.Sink the HTTP layer reads from.
type Holder struct {
	mu        sync.RWMutex
	snap      *aggregate.Snapshot
	records   []enrich.Record
	published uint64
	subs      map[chan *aggregate.Snapshot]struct{}
}

// NewHolder returns an empty holder; Latest reports no data until the
// first Publish.
func NewHolder() *Holder {
	return &Holder{subs: make(map[chan *aggregate.Snapshot]struct{})}
}

// Publish replaces the current snapshot wholesale and notifies
// subscribers. Non-blocking: a subscriber with a full channel is skipped.
func (h *Holder) Publish(snap *aggregate.Snapshot, records []enrich.Record) {
	h.mu.Lock()
	h.snap = snap
	h.records = records
	h.published++
	for ch := range h.subs {
		select {
		case ch <- snap:
		default:
		}
	}
	h.mu.Unlock()
}

// Latest returns the most recent snapshot and enriched window, and false
// before the first event has been processed.
func (h *Holder) Latest() (*aggregate.Snapshot, []enrich.Record, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.snap, h.records, h.snap != nil
}

// Published returns the number of snapshots published so far.
func (h *Holder) Published() uint64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.published
}

// Subscribe registers a snapshot channel for SSE fan-out. The returned
// cancel func must be called when the subscriber goes away.
func (h *Holder) Subscribe() (<-chan *aggregate.Snapshot, func()) {
	ch := make(chan *aggregate.Snapshot, 1)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		delete(h.subs, ch)
		h.mu.Unlock()
	}
	return ch, cancel
}

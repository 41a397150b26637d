/*
Package pipeline runs the per-event processing loop.

PURPOSE:
  The one control flow of the engine: block on the ingestor, append to the
  window, re-normalize and re-aggregate the whole window, publish the
  fresh snapshot to the sink. One goroutine, no suspension points other
  than the blocking receive.

FAILURE POLICY:
  - Stream disconnect: the loop returns stream.ErrStreamDisconnected;
    the caller decides (main treats it as fatal).
  - Malformed payload: configurable. PolicyFatal (default) returns
    stream.ErrMalformedPayload; PolicySkip logs, counts, and continues.

SEE ALSO:
  - stream/consumer.go: the ingestor
  - api/holder.go: the HTTP-facing sink
*/
package pipeline

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/MohamedARoshdy/Skippy-A-Global-Fashion-Retail-Sales/aggregate"
	"github.com/MohamedARoshdy/Skippy-A-Global-Fashion-Retail-Sales/enrich"
	"github.com/MohamedARoshdy/Skippy-A-Global-Fashion-Retail-Sales/refdata"
	"github.com/MohamedARoshdy/Skippy-A-Global-Fashion-Retail-Sales/stream"
	"github.com/MohamedARoshdy/Skippy-A-Global-Fashion-Retail-Sales/window"
)

// DecodePolicy selects the behavior on a malformed message payload.
type DecodePolicy int

const (
	// PolicyFatal stops the loop on the first malformed payload,
	// mirroring the reference behavior.
	PolicyFatal DecodePolicy = iota
	// PolicySkip drops malformed payloads and keeps consuming.
	PolicySkip
)

// Sink receives each freshly computed snapshot together with the full
// enriched window it was derived from.
type Sink interface {
	Publish(snap *aggregate.Snapshot, records []enrich.Record)
}

// Loop wires ingestor, window, enrichment, and aggregation together.
type Loop struct {
	ingestor stream.Ingestor
	buffer   *window.Buffer
	cache    *refdata.Cache
	sink     Sink
	policy   DecodePolicy
	logger   *zap.SugaredLogger

	processed uint64
	skipped   uint64
}

// NewLoop builds a loop over the given collaborators. The cache must be
// fully loaded; it is only ever read.
func NewLoop(ingestor stream.Ingestor, buffer *window.Buffer, cache *refdata.Cache, sink Sink, policy DecodePolicy, logger *zap.SugaredLogger) *Loop {
	return &Loop{
		ingestor: ingestor,
		buffer:   buffer,
		cache:    cache,
		sink:     sink,
		policy:   policy,
		logger:   logger,
	}
}

// Run blocks until the context is canceled or a non-recoverable stream
// error occurs. Returns nil on clean cancellation.
func (l *Loop) Run(ctx context.Context) error {
	for {
		ev, err := l.ingestor.Next(ctx)
		if err != nil {
			switch {
			case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
				return nil
			case errors.Is(err, stream.ErrMalformedPayload):
				if l.policy == PolicySkip {
					l.skipped++
					l.logger.Warnw("skipping malformed payload", zap.Error(err), "skipped", l.skipped)
					continue
				}
				return err
			default:
				return err
			}
		}

		l.buffer.Append(ev)
		records := enrich.Normalize(l.buffer.Snapshot(), l.cache)
		snap := aggregate.Compute(records, l.cache)
		l.sink.Publish(snap, records)

		l.processed++
		if l.processed%100 == 0 {
			l.logger.Infow("window processed",
				"events", l.processed,
				"skipped", l.skipped,
				"window", l.buffer.Len(),
				"deduped", len(records))
		}
	}
}

// Processed returns the number of events fully processed.
func (l *Loop) Processed() uint64 {
	return l.processed
}

// Skipped returns the number of malformed payloads dropped under PolicySkip.
func (l *Loop) Skipped() uint64 {
	return l.skipped
}

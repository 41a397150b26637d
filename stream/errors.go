/*
errors.go - Named error conditions for the event stream

PURPOSE:
  The two stream failure modes the reference behavior left undefined are
  surfaced here as sentinels so the operator-facing layer can choose a
  policy with errors.Is instead of string matching.

USAGE:
  if errors.Is(err, stream.ErrMalformedPayload) { ... }

SEE ALSO:
  - pipeline/loop.go: applies the decode-failure policy
  - cmd/dashboard/main.go: treats ErrStreamDisconnected as fatal
*/
package stream

import "errors"

var (
	// ErrStreamDisconnected is returned by Next when the consumer group
	// session terminates because the broker connection dropped.
	ErrStreamDisconnected = errors.New("stream disconnected")

	// ErrMalformedPayload is returned by Next when a message body is not
	// a valid JSON object. The message is consumed (and committed) either way.
	ErrMalformedPayload = errors.New("malformed event payload")
)

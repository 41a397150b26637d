package stream

import (
	"sync"

	"github.com/IBM/sarama"
)

// consumerHandler bridges sarama's consumer-group callbacks to a channel
// the blocking Next call reads from.
type consumerHandler struct {
	ready       chan struct{}
	readyCloser sync.Once
	messages    chan *sarama.ConsumerMessage
}

func newConsumerHandler(bufferSize int) *consumerHandler {
	return &consumerHandler{
		ready:    make(chan struct{}),
		messages: make(chan *sarama.ConsumerMessage, bufferSize),
	}
}

// Setup runs at the beginning of a new session, before ConsumeClaim.
func (h *consumerHandler) Setup(sarama.ConsumerGroupSession) error {
	h.readyCloser.Do(func() {
		close(h.ready)
	})
	return nil
}

// Cleanup runs at the end of a session, after all ConsumeClaim goroutines exit.
func (h *consumerHandler) Cleanup(sess sarama.ConsumerGroupSession) error {
	sess.Commit()
	return nil
}

// ConsumeClaim pumps one claim's messages into the shared channel.
// Offsets are marked immediately; auto-commit flushes them in the
// background, giving at-least-once delivery (duplicates are collapsed
// downstream by the dedup stage).
func (h *consumerHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case msg, ok := <-claim.Messages():
			if !ok {
				return nil
			}
			session.MarkMessage(msg, "")
			select {
			case h.messages <- msg:
			case <-session.Context().Done():
				return nil
			}
		case <-session.Context().Done():
			return nil
		}
	}
}

/*
consumer.go - Kafka event ingestor

PURPOSE:
  Subscribes to the transaction topic through a sarama consumer group and
  exposes a single blocking Next(ctx) call that yields one decoded RawEvent
  at a time, preserving broker delivery order per partition.

DELIVERY CONTRACT:
  - Offsets start at the newest message (no historical replay).
  - Auto-commit, at-least-once: duplicates are possible and tolerated.
  - Broker unreachable at construction: error returned, caller treats as fatal.
  - Session failure mid-run: Next returns ErrStreamDisconnected. No retry
    here; the reconnect policy belongs to the operator.

SEE ALSO:
  - handler.go: consumer-group callback plumbing
  - pipeline/loop.go: the single consumer of Next
*/
package stream

import (
	"context"
	"fmt"

	"github.com/IBM/sarama"
	"go.uber.org/zap"
)

// Ingestor is the single-message pull interface the pipeline consumes.
// Implemented by Consumer; tests substitute an in-memory feed.
type Ingestor interface {
	Next(ctx context.Context) (RawEvent, error)
}

// Consumer is a consumer-group Kafka ingestor for one topic.
type Consumer struct {
	group   sarama.ConsumerGroup
	topic   string
	handler *consumerHandler
	logger  *zap.SugaredLogger

	sessionErr chan error
	cancel     context.CancelFunc
}

// NewConsumer connects to the brokers and starts consuming topic within
// groupID. It blocks until the first session is established so a dead
// broker fails startup instead of the first Next call.
func NewConsumer(ctx context.Context, brokers []string, topic, groupID string, logger *zap.SugaredLogger) (*Consumer, error) {
	cfg := sarama.NewConfig()
	cfg.Consumer.Offsets.Initial = sarama.OffsetNewest
	cfg.Consumer.Offsets.AutoCommit.Enable = true

	group, err := sarama.NewConsumerGroup(brokers, groupID, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to kafka %v: %w", brokers, err)
	}

	sessionCtx, cancel := context.WithCancel(ctx)
	c := &Consumer{
		group:      group,
		topic:      topic,
		handler:    newConsumerHandler(64),
		logger:     logger,
		sessionErr: make(chan error, 1),
		cancel:     cancel,
	}

	go c.run(sessionCtx)

	select {
	case <-c.handler.ready:
		logger.Infow("consumer ready", "topic", topic, "group", groupID)
	case err := <-c.sessionErr:
		cancel()
		_ = group.Close()
		return nil, err
	case <-ctx.Done():
		cancel()
		_ = group.Close()
		return nil, ctx.Err()
	}
	return c, nil
}

// run drives the consumer-group session loop. Consume returns nil on a
// rebalance, in which case the session is simply re-entered.
func (c *Consumer) run(ctx context.Context) {
	for {
		if err := c.group.Consume(ctx, []string{c.topic}, c.handler); err != nil {
			c.logger.Errorw("consumer session failed", zap.Error(err))
			c.sessionErr <- fmt.Errorf("%w: %v", ErrStreamDisconnected, err)
			return
		}
		if ctx.Err() != nil {
			return
		}
		c.logger.Infow("consumer group rebalanced", "topic", c.topic)
	}
}

// Next blocks until the next message arrives, then decodes it.
// A malformed payload yields the event position wrapped in
// ErrMalformedPayload; the offset is already committed either way.
func (c *Consumer) Next(ctx context.Context) (RawEvent, error) {
	select {
	case msg := <-c.handler.messages:
		ev, err := DecodeEvent(msg.Value)
		if err != nil {
			return RawEvent{}, fmt.Errorf("%w at %s/%d@%d", ErrMalformedPayload, msg.Topic, msg.Partition, msg.Offset)
		}
		return ev, nil
	case err := <-c.sessionErr:
		return RawEvent{}, err
	case <-ctx.Done():
		return RawEvent{}, ctx.Err()
	}
}

// Close tears down the consumer group session.
func (c *Consumer) Close() error {
	c.cancel()
	return c.group.Close()
}

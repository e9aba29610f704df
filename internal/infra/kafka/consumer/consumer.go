package consumer

import (
	"context"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
	wbfkafka "github.com/wb-go/wbf/kafka"
	"github.com/wb-go/wbf/retry"
	"github.com/wb-go/wbf/zlog"

	"github.com/aliskhannn/watermarker/internal/config"
)

// requestHandler defines the interface for handling batch request messages.
type requestHandler interface {
	Handle(ctx context.Context, msg kafka.Message) error
}

// Consumer reads batch requests from Kafka and hands them to a handler.
type Consumer struct {
	Client         *wbfkafka.Consumer
	requestHandler requestHandler
	cfg            *config.Kafka
	strategy       retry.Strategy
}

// New creates a new Consumer subscribed to cfg.RequestsTopic.
func New(cfg *config.Kafka, s retry.Strategy, h requestHandler) *Consumer {
	consumer := wbfkafka.NewConsumer(cfg.Brokers, cfg.RequestsTopic, cfg.GroupID)

	return &Consumer{
		Client:         consumer,
		requestHandler: h,
		cfg:            cfg,
		strategy:       s,
	}
}

// Consume fetches messages, processes them with the handler and commits
// offsets. A message whose handler fails is logged and committed anyway so
// that a malformed request cannot block the partition. It returns when ctx
// is canceled.
func (c *Consumer) Consume(ctx context.Context, wg *sync.WaitGroup) {
	defer wg.Done()

	zlog.Logger.Info().
		Str("topic", c.cfg.RequestsTopic).
		Msg("starting consumer")

	for {
		if ctx.Err() != nil {
			zlog.Logger.Info().Msg("shutdown signal received, stopping consumer")
			return
		}

		// Fetch a message from Kafka with retries.
		var msg kafka.Message
		err := retry.Do(func() error {
			var fetchErr error
			msg, fetchErr = c.Client.Fetch(ctx)
			return fetchErr
		}, c.strategy)
		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			zlog.Logger.Err(err).Msg("failed to fetch message")
			time.Sleep(500 * time.Millisecond)
			continue
		}

		if err := c.requestHandler.Handle(ctx, msg); err != nil {
			zlog.Logger.Err(err).
				Str("message", string(msg.Value)).
				Msg("failed to process batch request")
		}

		err = retry.Do(func() error {
			return c.Client.Commit(ctx, msg)
		}, c.strategy)
		if err != nil {
			zlog.Logger.Err(err).Msg("failed to commit message after retries")
			continue
		}

		zlog.Logger.Info().
			Int64("offset", msg.Offset).
			Msg("message handled")
	}
}

// Close closes the underlying Kafka reader.
func (c *Consumer) Close() error {
	return c.Client.Close()
}

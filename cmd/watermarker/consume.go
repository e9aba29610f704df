package main

import (
	"errors"
	"sync"

	"github.com/spf13/cobra"
	"github.com/wb-go/wbf/zlog"

	"github.com/aliskhannn/watermarker/internal/infra/kafka/consumer"
	batchmsg "github.com/aliskhannn/watermarker/internal/kafka/handlers/batch"
)

func newConsumeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "consume",
		Short: "Process batch requests read from Kafka",
		Args:  cobra.NoArgs,
		RunE:  consume,
	}

	addBatchFlags(cmd.Flags())
	cmd.Flags().StringP("watermark", "w", "", "watermark image")

	return cmd
}

func consume(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if !cfg.KafkaEnabled() {
		return configurationFailure(errors.New("kafka.brokers must be set to consume batch requests"))
	}

	a, err := newApp(ctx, cfg, nil)
	if err != nil {
		return configurationFailure(err)
	}
	defer a.Close()

	// Kafka message handler and consumer for batch requests.
	requestHandler := batchmsg.NewRequestHandler(a.service)
	c := consumer.New(&cfg.Kafka, a.strategy, requestHandler)

	var wg sync.WaitGroup
	wg.Add(1)
	go c.Consume(ctx, &wg)

	// Block until context is canceled (SIGINT/SIGTERM) and the consumer stops.
	wg.Wait()

	if err := c.Close(); err != nil {
		zlog.Logger.Error().Err(err).Msg("failed to close kafka consumer client")
	}

	return nil
}

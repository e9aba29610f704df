package producer

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	wbfkafka "github.com/wb-go/wbf/kafka"
	"github.com/wb-go/wbf/retry"

	"github.com/aliskhannn/watermarker/internal/config"
	"github.com/aliskhannn/watermarker/internal/model"
)

// ResultEvent is the message published for every finished job.
type ResultEvent struct {
	BatchID    uuid.UUID      `json:"batch_id"`
	JobID      uuid.UUID      `json:"job_id"`
	SourcePath string         `json:"source_path"`
	State      model.JobState `json:"state"`
	OutputPath string         `json:"output_path,omitempty"`
	Format     model.Format   `json:"format"`
	Width      int            `json:"width,omitempty"`
	Height     int            `json:"height,omitempty"`
	Bytes      int64          `json:"bytes,omitempty"`
	Error      string         `json:"error,omitempty"`
	DurationMs int64          `json:"duration_ms"`
}

// NewResultEvent converts a job result into its event form.
func NewResultEvent(batchID uuid.UUID, res model.JobResult) ResultEvent {
	return ResultEvent{
		BatchID:    batchID,
		JobID:      res.JobID,
		SourcePath: res.SourcePath,
		State:      res.State,
		OutputPath: res.OutputPath,
		Format:     res.Format,
		Width:      res.Width,
		Height:     res.Height,
		Bytes:      res.Bytes,
		Error:      res.Error,
		DurationMs: res.Duration.Milliseconds(),
	}
}

// Encode returns the message key and value for an event.
// The job ID is used as the key.
func (e ResultEvent) Encode() (key, value []byte, err error) {
	value, err = json.Marshal(e)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal result event: %w", err)
	}

	return []byte(e.JobID.String()), value, nil
}

// Producer publishes job result events to Kafka.
type Producer struct {
	Client   *wbfkafka.Producer
	strategy retry.Strategy
	cfg      *config.Kafka
}

// New creates a new Producer writing to cfg.ResultsTopic.
func New(cfg *config.Kafka, s retry.Strategy) *Producer {
	producer := wbfkafka.NewProducer(cfg.Brokers, cfg.ResultsTopic)

	return &Producer{
		Client:   producer,
		cfg:      cfg,
		strategy: s,
	}
}

// Publish sends one event per job result of the batch.
func (p *Producer) Publish(ctx context.Context, batchID uuid.UUID, res model.JobResult) error {
	key, data, err := NewResultEvent(batchID, res).Encode()
	if err != nil {
		return err
	}

	sendCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err = p.Client.SendWithRetry(sendCtx, p.strategy, key, data); err != nil {
		return fmt.Errorf("failed to send result event: %w", err)
	}

	return nil
}

// Close closes the underlying Kafka writer.
func (p *Producer) Close() error {
	return p.Client.Close()
}

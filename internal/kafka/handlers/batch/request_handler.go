package batch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/segmentio/kafka-go"
	"github.com/wb-go/wbf/zlog"

	"github.com/aliskhannn/watermarker/internal/model"
)

// ErrEmptyRequest is returned for requests without inputs.
var ErrEmptyRequest = errors.New("batch request has no inputs")

// service defines the interface for running a batch.
type service interface {
	Run(ctx context.Context, req model.BatchRequest) (*model.Report, error)
}

// RequestHandler handles Kafka messages carrying batch requests.
type RequestHandler struct {
	service service
}

// NewRequestHandler creates a new handler with the given service.
func NewRequestHandler(s service) *RequestHandler {
	return &RequestHandler{service: s}
}

// Handle decodes the request, runs the batch and logs its summary.
// Per-job failures are part of the report and do not make Handle fail.
func (h *RequestHandler) Handle(ctx context.Context, msg kafka.Message) error {
	var req model.BatchRequest
	if err := json.Unmarshal(msg.Value, &req); err != nil {
		return fmt.Errorf("unmarshal request: %w", err)
	}
	if len(req.Inputs) == 0 {
		return ErrEmptyRequest
	}

	report, err := h.service.Run(ctx, req)
	if err != nil {
		return fmt.Errorf("run batch: %w", err)
	}

	zlog.Logger.Info().
		Str("batch_id", report.BatchID.String()).
		Int("succeeded", report.Succeeded()).
		Int("failed", report.Failed()).
		Msg("batch processed")

	return nil
}

package batch

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/wb-go/wbf/ginext"
	"github.com/wb-go/wbf/zlog"

	"github.com/aliskhannn/watermarker/internal/api/respond"
	"github.com/aliskhannn/watermarker/internal/model"
	"github.com/aliskhannn/watermarker/internal/repository/result"
)

// ErrJournalDisabled is returned by lookups when no journal is configured.
var ErrJournalDisabled = errors.New("journal is disabled")

// service defines the interface for running batches.
type service interface {
	Run(ctx context.Context, req model.BatchRequest) (*model.Report, error)
}

// journal defines the interface for reading finished batches.
type journal interface {
	GetBatch(ctx context.Context, id uuid.UUID) (model.BatchSummary, error)
	GetResult(ctx context.Context, jobID uuid.UUID) (model.JobResult, error)
}

// Handler provides HTTP handlers for batch endpoints.
type Handler struct {
	service service
	journal journal
}

// NewHandler creates a new Handler. j may be nil, in which case lookups
// respond with 501.
func NewHandler(s service, j journal) *Handler {
	return &Handler{service: s, journal: j}
}

// Create runs the batch described by the JSON body and responds with its
// report. Per-job failures are part of a 201 response; only invalid
// settings are rejected.
func (h *Handler) Create(c *ginext.Context) {
	var req model.BatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		zlog.Logger.Err(err).Msg("failed to bind batch request")
		respond.Fail(c, http.StatusBadRequest, fmt.Errorf("invalid request body: %v", err))
		return
	}

	report, err := h.service.Run(c.Request.Context(), req)
	if err != nil {
		var cfgErr *model.ConfigurationError
		if errors.As(err, &cfgErr) {
			zlog.Logger.Warn().Err(err).Msg("rejected batch request")
			respond.Fail(c, http.StatusBadRequest, err)
			return
		}

		zlog.Logger.Err(err).Msg("failed to run batch")
		respond.Fail(c, http.StatusInternalServerError, fmt.Errorf("failed to run batch: %v", err))
		return
	}

	respond.BatchCreated(c, report)
}

// Get returns the journaled summary of a batch.
func (h *Handler) Get(c *ginext.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	summary, err := h.journal.GetBatch(c.Request.Context(), id)
	if err != nil {
		h.lookupFailed(c, err, result.ErrBatchNotFound)
		return
	}

	respond.OK(c, summary)
}

// GetJob returns the journaled result of a single job.
func (h *Handler) GetJob(c *ginext.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	res, err := h.journal.GetResult(c.Request.Context(), id)
	if err != nil {
		h.lookupFailed(c, err, result.ErrResultNotFound)
		return
	}

	respond.OK(c, res)
}

// parseID reads the :id parameter and checks that lookups are possible.
func (h *Handler) parseID(c *ginext.Context) (uuid.UUID, bool) {
	if h.journal == nil {
		respond.Fail(c, http.StatusNotImplemented, ErrJournalDisabled)
		return uuid.Nil, false
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		zlog.Logger.Err(err).Msg("failed to parse id")
		respond.Fail(c, http.StatusBadRequest, fmt.Errorf("invalid id: %v", err))
		return uuid.Nil, false
	}

	return id, true
}

func (h *Handler) lookupFailed(c *ginext.Context, err, notFound error) {
	if errors.Is(err, notFound) {
		respond.Fail(c, http.StatusNotFound, notFound)
		return
	}

	zlog.Logger.Err(err).Msg("failed to read journal")
	respond.Fail(c, http.StatusInternalServerError, fmt.Errorf("failed to read journal: %v", err))
}

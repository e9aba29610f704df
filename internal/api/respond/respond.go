package respond

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/wb-go/wbf/ginext"

	"github.com/aliskhannn/watermarker/internal/model"
)

// Success represents a standard structure for successful responses.
type Success struct {
	Result interface{} `json:"result"`
}

// Error represents a standard structure for error responses.
type Error struct {
	Message string `json:"message"`
}

// Batch is the result of a finished batch as returned by the API.
type Batch struct {
	ID              uuid.UUID                `json:"id"`
	OK              bool                     `json:"ok"`
	Succeeded       int                      `json:"succeeded"`
	Failed          int                      `json:"failed"`
	Bytes           int64                    `json:"bytes"`
	StartedAt       time.Time                `json:"started_at"`
	FinishedAt      time.Time                `json:"finished_at"`
	Results         []model.JobResult        `json:"results"`
	DiscoveryErrors []model.DiscoveryFailure `json:"discovery_errors,omitempty"`
}

// NewBatch builds the response body for r.
func NewBatch(r *model.Report) Batch {
	results := r.Results
	if results == nil {
		results = []model.JobResult{}
	}

	return Batch{
		ID:              r.BatchID,
		OK:              r.OK(),
		Succeeded:       r.Succeeded(),
		Failed:          r.Failed(),
		Bytes:           r.TotalBytes(),
		StartedAt:       r.StartedAt,
		FinishedAt:      r.FinishedAt,
		Results:         results,
		DiscoveryErrors: r.DiscoveryErrors,
	}
}

// BatchCreated sends a 201 Created response for a finished batch. Failed
// jobs are part of the body, not of the status code.
func BatchCreated(c *ginext.Context, r *model.Report) {
	c.JSON(http.StatusCreated, Success{Result: NewBatch(r)})
}

// OK sends a 200 OK JSON response, wrapping the given result in a Success struct.
func OK(c *ginext.Context, result interface{}) {
	c.JSON(http.StatusOK, Success{Result: result})
}

// Fail sends an error JSON response with the specified HTTP status code.
func Fail(c *ginext.Context, status int, err error) {
	c.JSON(status, Error{Message: err.Error()})
}

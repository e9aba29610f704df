package model

import (
	"time"

	"github.com/google/uuid"
)

// BatchRequest describes one batch submitted from the CLI, Kafka or HTTP.
// Zero values fall back to the process configuration.
type BatchRequest struct {
	ID        uuid.UUID `json:"id,omitempty"`
	Inputs    []string  `json:"inputs"`
	Width     int       `json:"width,omitempty"`
	Height    int       `json:"height,omitempty"`
	Format    string    `json:"format,omitempty"`
	Recursive *bool     `json:"recursive,omitempty"`
}

// DiscoveryFailure is the serialisable form of a DiscoveryError.
type DiscoveryFailure struct {
	Path  string `json:"path" yaml:"path"`
	Error string `json:"error" yaml:"error"`
}

// Report aggregates every outcome of a batch.
type Report struct {
	BatchID         uuid.UUID          `json:"batch_id" yaml:"batch_id"`
	TargetDir       string             `json:"target_dir" yaml:"target_dir"`
	StartedAt       time.Time          `json:"started_at" yaml:"started_at"`
	FinishedAt      time.Time          `json:"finished_at" yaml:"finished_at"`
	Results         []JobResult        `json:"results" yaml:"results"`
	DiscoveryErrors []DiscoveryFailure `json:"discovery_errors,omitempty" yaml:"discovery_errors,omitempty"`
}

// Succeeded returns the number of successful jobs.
func (r *Report) Succeeded() int {
	n := 0
	for _, res := range r.Results {
		if res.Succeeded() {
			n++
		}
	}
	return n
}

// Failed returns the number of failed jobs plus discovery failures.
func (r *Report) Failed() int {
	return len(r.Results) - r.Succeeded() + len(r.DiscoveryErrors)
}

// TotalBytes sums the size of every written output.
func (r *Report) TotalBytes() int64 {
	var total int64
	for _, res := range r.Results {
		total += res.Bytes
	}
	return total
}

// OK reports whether the whole batch succeeded.
func (r *Report) OK() bool {
	return r.Failed() == 0
}

// BatchSummary is the journaled summary of a finished batch.
type BatchSummary struct {
	ID         uuid.UUID `json:"id"`
	TargetDir  string    `json:"target_dir"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Succeeded  int       `json:"succeeded"`
	Failed     int       `json:"failed"`
	Bytes      int64     `json:"bytes"`
}

// Summary returns the journal summary of r.
func (r *Report) Summary() BatchSummary {
	return BatchSummary{
		ID:         r.BatchID,
		TargetDir:  r.TargetDir,
		StartedAt:  r.StartedAt,
		FinishedAt: r.FinishedAt,
		Succeeded:  r.Succeeded(),
		Failed:     r.Failed(),
		Bytes:      r.TotalBytes(),
	}
}

package model

import (
	"time"

	"github.com/google/uuid"
)

// Job is one resolved source file -> output file unit of work.
// It is built once and never modified afterwards.
type Job struct {
	ID         uuid.UUID `json:"id"`
	SourcePath string    `json:"source_path"`
	OutputDir  string    `json:"output_dir,omitempty"` // relative to the target directory
	OutputName string    `json:"output_name"`
	OutputPath string    `json:"output_path"`
	Resize     Resize    `json:"resize"`
	Format     Format    `json:"format"`
}

// JobState is the lifecycle state of a job.
type JobState string

const (
	JobPending   JobState = "pending"
	JobRunning   JobState = "running"
	JobSucceeded JobState = "succeeded"
	JobFailed    JobState = "failed"
)

// JobResult is the outcome of exactly one job.
type JobResult struct {
	JobID      uuid.UUID     `json:"job_id" yaml:"job_id"`
	SourcePath string        `json:"source_path" yaml:"source_path"`
	State      JobState      `json:"state" yaml:"state"`
	OutputPath string        `json:"output_path,omitempty" yaml:"output_path,omitempty"`
	Format     Format        `json:"format" yaml:"format"`
	Width      int           `json:"width,omitempty" yaml:"width,omitempty"`
	Height     int           `json:"height,omitempty" yaml:"height,omitempty"`
	Bytes      int64         `json:"bytes,omitempty" yaml:"bytes,omitempty"`
	Error      string        `json:"error,omitempty" yaml:"error,omitempty"`
	Duration   time.Duration `json:"duration" yaml:"duration"`

	Err error `json:"-" yaml:"-"`
}

// Succeeded reports whether the job produced its output.
func (r JobResult) Succeeded() bool {
	return r.State == JobSucceeded
}

// Failure builds a failed result for job j.
func Failure(j Job, err error) JobResult {
	return JobResult{
		JobID:      j.ID,
		SourcePath: j.SourcePath,
		State:      JobFailed,
		Format:     j.Format,
		Error:      err.Error(),
		Err:        err,
	}
}

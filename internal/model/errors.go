package model

import "fmt"

// ConfigurationError aborts a batch before any job runs.
type ConfigurationError struct {
	Op  string
	Err error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration: %s: %v", e.Op, e.Err)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// DiscoveryError is reported for a single top-level input that could not be
// turned into jobs. Sibling inputs are unaffected.
type DiscoveryError struct {
	Path string
	Err  error
}

func (e *DiscoveryError) Error() string {
	return fmt.Sprintf("discover %s: %v", e.Path, e.Err)
}

func (e *DiscoveryError) Unwrap() error { return e.Err }

// Stage names the step of a job that failed.
type Stage string

const (
	StageBuild    Stage = "build"
	StageRead     Stage = "read"
	StageDecode   Stage = "decode"
	StageEncode   Stage = "encode"
	StageWrite    Stage = "write"
	StageUpload   Stage = "upload"
	StageCanceled Stage = "canceled"
	StagePanic    Stage = "panic"
)

// JobError is a per-job failure.
type JobError struct {
	Stage Stage
	Path  string
	Err   error
}

func (e *JobError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Stage, e.Path, e.Err)
}

func (e *JobError) Unwrap() error { return e.Err }

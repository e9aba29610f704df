// Package pipeline runs watermark jobs concurrently on a bounded worker pool.
//
// Every submitted job yields exactly one model.JobResult. A failure at any
// stage, including a panic, is confined to the job that caused it; sibling
// jobs keep running and Run always waits for all of them.
package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"os"
	"runtime"
	"time"

	"github.com/sourcegraph/conc/pool"
	"github.com/wb-go/wbf/retry"
	"github.com/wb-go/wbf/zlog"

	"github.com/aliskhannn/watermarker/internal/model"
	"github.com/aliskhannn/watermarker/internal/processor"
	"github.com/aliskhannn/watermarker/internal/watermark"
)

// imageProcessor transforms one source image into encoded output bytes.
type imageProcessor interface {
	Process(src io.Reader, wm image.Image, j model.Job) (processor.Output, error)
}

// fileStorage persists job outputs (local filesystem).
type fileStorage interface {
	Save(ctx context.Context, subdir, filename string, src io.Reader) (string, error)
}

// mirror receives a copy of every written output (e.g. S3, MinIO).
type mirror interface {
	Save(ctx context.Context, subdir, filename, contentType string, src io.Reader, size int64) (string, error)
}

// Executor dispatches jobs to a worker pool.
type Executor struct {
	processor   imageProcessor
	storage     fileStorage
	mirror      mirror
	concurrency int
	slots       chan struct{}
	strategy    retry.Strategy
	progress    func(model.JobResult)
}

// Option configures an Executor.
type Option func(*Executor)

// WithConcurrency caps the number of jobs in flight across all concurrent
// Run calls on the Executor. n < 1 means runtime.NumCPU().
func WithConcurrency(n int) Option {
	return func(e *Executor) {
		if n >= 1 {
			e.concurrency = n
		}
	}
}

// WithRetry sets the retry strategy for output writes and uploads.
func WithRetry(s retry.Strategy) Option {
	return func(e *Executor) {
		e.strategy = s
	}
}

// WithMirror uploads every written output to m as well.
func WithMirror(m mirror) Option {
	return func(e *Executor) {
		e.mirror = m
	}
}

// WithProgress registers a callback invoked as each job finishes. It is
// called from worker goroutines and must be safe for concurrent use.
func WithProgress(fn func(model.JobResult)) Option {
	return func(e *Executor) {
		e.progress = fn
	}
}

// New creates an Executor.
func New(p imageProcessor, s fileStorage, opts ...Option) *Executor {
	e := &Executor{
		processor:   p,
		storage:     s,
		concurrency: runtime.NumCPU(),
		strategy:    retry.Strategy{Attempts: 1, Backoff: 1},
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.strategy.Attempts < 1 {
		e.strategy.Attempts = 1
	}
	e.slots = make(chan struct{}, e.concurrency)

	return e
}

// Concurrency returns the worker cap.
func (e *Executor) Concurrency() int {
	return e.concurrency
}

// Run executes jobs and returns one result per job in completion order.
// When ctx is canceled, jobs that have not started fail with the context
// error; running jobs finish their current stage. Concurrent Run calls on
// the same Executor share its concurrency cap.
func (e *Executor) Run(ctx context.Context, jobs []model.Job, wm *watermark.Watermark) []model.JobResult {
	p := pool.NewWithResults[model.JobResult]().WithMaxGoroutines(e.concurrency)

	for _, j := range jobs {
		p.Go(func() model.JobResult {
			res := e.runJob(ctx, j, wm.Image())
			if e.progress != nil {
				e.progress(res)
			}
			return res
		})
	}

	return p.Wait()
}

// runJob moves a job from running to succeeded or failed.
func (e *Executor) runJob(ctx context.Context, j model.Job, wm image.Image) (res model.JobResult) {
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			res = model.Failure(j, &model.JobError{
				Stage: model.StagePanic,
				Path:  j.SourcePath,
				Err:   fmt.Errorf("%v", r),
			})
		}
		res.Duration = time.Since(start)
		logResult(res)
	}()

	if err := ctx.Err(); err != nil {
		return model.Failure(j, &model.JobError{Stage: model.StageCanceled, Path: j.SourcePath, Err: err})
	}

	// Slots are shared by every batch running on this executor.
	select {
	case e.slots <- struct{}{}:
		defer func() { <-e.slots }()
	case <-ctx.Done():
		return model.Failure(j, &model.JobError{Stage: model.StageCanceled, Path: j.SourcePath, Err: ctx.Err()})
	}

	zlog.Logger.Debug().
		Str("job_id", j.ID.String()).
		Str("source", j.SourcePath).
		Str("state", string(model.JobRunning)).
		Msg("job started")

	out, err := e.transform(j, wm)
	if err != nil {
		return model.Failure(j, err)
	}

	data := out.Data.Bytes()

	path, err := e.write(ctx, j, data)
	if err != nil {
		return model.Failure(j, err)
	}

	if e.mirror != nil {
		if err := e.upload(ctx, j, data); err != nil {
			return model.Failure(j, err)
		}
	}

	return model.JobResult{
		JobID:      j.ID,
		SourcePath: j.SourcePath,
		State:      model.JobSucceeded,
		OutputPath: path,
		Format:     j.Format,
		Width:      out.Width,
		Height:     out.Height,
		Bytes:      int64(len(data)),
	}
}

// transform reads the source file and runs the image processor on it.
func (e *Executor) transform(j model.Job, wm image.Image) (processor.Output, error) {
	src, err := os.Open(j.SourcePath)
	if err != nil {
		return processor.Output{}, &model.JobError{Stage: model.StageRead, Path: j.SourcePath, Err: err}
	}
	defer src.Close()

	return e.processor.Process(src, wm, j)
}

// write saves data to the job's output location, retrying per strategy.
func (e *Executor) write(ctx context.Context, j model.Job, data []byte) (string, error) {
	var path string

	err := retry.Do(func() error {
		var saveErr error
		path, saveErr = e.storage.Save(ctx, j.OutputDir, j.OutputName, bytes.NewReader(data))
		return saveErr
	}, e.strategy)
	if err != nil {
		return "", &model.JobError{Stage: model.StageWrite, Path: j.OutputPath, Err: err}
	}

	return path, nil
}

// upload mirrors data to object storage, retrying per strategy.
func (e *Executor) upload(ctx context.Context, j model.Job, data []byte) error {
	err := retry.Do(func() error {
		_, uploadErr := e.mirror.Save(ctx, j.OutputDir, j.OutputName, j.Format.MIMEType(), bytes.NewReader(data), int64(len(data)))
		return uploadErr
	}, e.strategy)
	if err != nil {
		return &model.JobError{Stage: model.StageUpload, Path: j.OutputPath, Err: err}
	}

	return nil
}

func logResult(res model.JobResult) {
	if res.Succeeded() {
		zlog.Logger.Info().
			Str("job_id", res.JobID.String()).
			Str("source", res.SourcePath).
			Str("output", res.OutputPath).
			Dur("duration", res.Duration).
			Msg("watermarked image saved")
		return
	}

	zlog.Logger.Error().
		Err(res.Err).
		Str("job_id", res.JobID.String()).
		Str("source", res.SourcePath).
		Msg("failed to process image")
}

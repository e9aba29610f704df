package batch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/wb-go/wbf/zlog"

	"github.com/aliskhannn/watermarker/internal/discovery"
	"github.com/aliskhannn/watermarker/internal/job"
	"github.com/aliskhannn/watermarker/internal/model"
	"github.com/aliskhannn/watermarker/internal/watermark"
)

// ErrNoInputs is returned for requests without input paths.
var ErrNoInputs = errors.New("no input paths")

// executor runs built jobs and returns one result per job.
type executor interface {
	Run(ctx context.Context, jobs []model.Job, wm *watermark.Watermark) []model.JobResult
}

// journal persists finished batches (e.g. SQLite, PostgreSQL).
type journal interface {
	SaveBatch(ctx context.Context, report *model.Report) error
}

// publisher emits result events to a message broker (e.g. Kafka).
type publisher interface {
	Publish(ctx context.Context, batchID uuid.UUID, res model.JobResult) error
}

// Defaults are the process-wide settings a request falls back to.
type Defaults struct {
	TargetDir string
	Resize    model.Resize
	Format    string
	Recursive bool
}

// Service runs batches: it resolves settings, discovers files, builds jobs,
// executes them and records the outcome.
type Service struct {
	executor  executor
	watermark *watermark.Watermark
	defaults  Defaults
	journal   journal
	publisher publisher
	collision func(output string, sources []string)
}

// Option configures a Service.
type Option func(*Service)

// WithJournal records every finished batch in j.
func WithJournal(j journal) Option {
	return func(s *Service) {
		s.journal = j
	}
}

// WithPublisher publishes every job result through p.
func WithPublisher(p publisher) Option {
	return func(s *Service) {
		s.publisher = p
	}
}

// WithCollisionHandler calls fn for every output path written by more than
// one input of a batch.
func WithCollisionHandler(fn func(output string, sources []string)) Option {
	return func(s *Service) {
		s.collision = fn
	}
}

// NewService creates a Service. The watermark is shared by every batch the
// service runs.
func NewService(e executor, wm *watermark.Watermark, d Defaults, opts ...Option) *Service {
	s := &Service{
		executor:  e,
		watermark: wm,
		defaults:  d,
	}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// settings are the resolved, immutable parameters of one batch.
type settings struct {
	resize    model.Resize
	format    *model.Format
	recursive bool
}

// Run processes one batch. Only invalid settings return an error; per-input
// and per-job failures are recorded in the report.
func (s *Service) Run(ctx context.Context, req model.BatchRequest) (*model.Report, error) {
	set, err := s.resolve(req)
	if err != nil {
		return nil, err
	}

	report := &model.Report{
		BatchID:   req.ID,
		TargetDir: s.defaults.TargetDir,
		StartedAt: time.Now(),
	}
	if report.BatchID == uuid.Nil {
		report.BatchID = uuid.New()
	}

	log := zlog.Logger.With().Str("batch_id", report.BatchID.String()).Logger()

	builder := job.NewBuilder(s.defaults.TargetDir, set.resize, set.format)

	var jobs []model.Job
	for _, input := range req.Inputs {
		entries, err := discovery.Resolve(input, set.recursive)
		var skipped *discovery.SkippedError
		switch {
		case errors.As(err, &skipped):
			for _, d := range skipped.Dirs {
				discoveryFailed(report, log, d.Path, d)
			}
		case err != nil:
			discoveryFailed(report, log, input, err)
			continue
		}

		log.Info().
			Str("input", input).
			Int("files", len(entries)).
			Msg("input discovered")

		for _, e := range entries {
			j, err := builder.Build(e)
			if err != nil {
				jerr := &model.JobError{Stage: model.StageBuild, Path: e.Path, Err: err}
				report.Results = append(report.Results, model.Failure(model.Job{ID: uuid.New(), SourcePath: e.Path}, jerr))
				continue
			}
			jobs = append(jobs, j)
		}
	}

	for out, sources := range job.Collisions(jobs) {
		log.Warn().
			Str("output", out).
			Strs("sources", sources).
			Msg("several inputs write the same output, last writer wins")
		if s.collision != nil {
			s.collision(out, sources)
		}
	}

	report.Results = append(report.Results, s.executor.Run(ctx, jobs, s.watermark)...)
	report.FinishedAt = time.Now()

	s.record(ctx, report)

	log.Info().
		Int("succeeded", report.Succeeded()).
		Int("failed", report.Failed()).
		Dur("elapsed", report.FinishedAt.Sub(report.StartedAt)).
		Msg("batch finished")

	return report, nil
}

func discoveryFailed(report *model.Report, log zerolog.Logger, path string, err error) {
	derr := &model.DiscoveryError{Path: path, Err: err}
	log.Error().Err(derr).Msg("failed to discover input")
	report.DiscoveryErrors = append(report.DiscoveryErrors, model.DiscoveryFailure{
		Path:  path,
		Error: derr.Error(),
	})
}

// resolve merges the request with the defaults and validates the result.
func (s *Service) resolve(req model.BatchRequest) (settings, error) {
	if len(req.Inputs) == 0 {
		return settings{}, &model.ConfigurationError{Op: "inputs", Err: ErrNoInputs}
	}

	set := settings{
		resize:    s.defaults.Resize,
		recursive: s.defaults.Recursive,
	}
	if req.Width != 0 || req.Height != 0 {
		set.resize = model.Resize{Width: req.Width, Height: req.Height}
	}
	if set.resize.Width < 0 || set.resize.Height < 0 {
		return settings{}, &model.ConfigurationError{
			Op:  "resize",
			Err: fmt.Errorf("negative dimensions %dx%d", set.resize.Width, set.resize.Height),
		}
	}
	if req.Recursive != nil {
		set.recursive = *req.Recursive
	}

	name := req.Format
	if strings.TrimSpace(name) == "" {
		name = s.defaults.Format
	}
	if strings.TrimSpace(name) != "" {
		f, err := model.ParseFormat(name)
		if err != nil {
			return settings{}, &model.ConfigurationError{Op: "format", Err: err}
		}
		set.format = &f
	}

	return set, nil
}

// record journals and publishes a finished batch. Failures are logged and do
// not affect the report.
func (s *Service) record(ctx context.Context, report *model.Report) {
	if s.journal != nil {
		if err := s.journal.SaveBatch(ctx, report); err != nil {
			zlog.Logger.Err(err).Str("batch_id", report.BatchID.String()).Msg("failed to journal batch")
		}
	}

	if s.publisher != nil {
		for _, res := range report.Results {
			if err := s.publisher.Publish(ctx, report.BatchID, res); err != nil {
				zlog.Logger.Err(err).Str("job_id", res.JobID.String()).Msg("failed to publish result")
			}
		}
	}
}

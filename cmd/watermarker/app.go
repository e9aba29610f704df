package main

import (
	"context"
	"errors"
	"strings"

	"github.com/wb-go/wbf/retry"
	"github.com/wb-go/wbf/zlog"

	"github.com/aliskhannn/watermarker/internal/config"
	"github.com/aliskhannn/watermarker/internal/infra/kafka/producer"
	"github.com/aliskhannn/watermarker/internal/model"
	"github.com/aliskhannn/watermarker/internal/pipeline"
	"github.com/aliskhannn/watermarker/internal/processor"
	"github.com/aliskhannn/watermarker/internal/report"
	"github.com/aliskhannn/watermarker/internal/repository/result"
	batchsvc "github.com/aliskhannn/watermarker/internal/service/batch"
	"github.com/aliskhannn/watermarker/internal/storage/file"
	"github.com/aliskhannn/watermarker/internal/storage/object"
	"github.com/aliskhannn/watermarker/internal/watermark"
)

// app holds the components shared by the run, consume and serve commands.
type app struct {
	service  *batchsvc.Service
	repo     *result.Repository
	strategy retry.Strategy
	closers  []func() error
}

// newApp wires the batch service from cfg. The watermark is decoded here,
// once per process. A non-nil printer receives every job result.
func newApp(ctx context.Context, cfg *config.Config, printer *report.Printer) (*app, error) {
	a := &app{
		strategy: retry.Strategy{
			Attempts: cfg.Retry.Attempts,
			Delay:    cfg.Retry.Delay,
			Backoff:  cfg.Retry.Backoff,
		},
	}

	if cfg.Watermark == "" {
		return nil, &model.ConfigurationError{Op: "watermark", Err: errors.New("watermark path is required")}
	}
	wm, err := watermark.Load(cfg.Watermark)
	if err != nil {
		return nil, &model.ConfigurationError{Op: "watermark", Err: err}
	}

	// Initialize local output storage.
	storage, err := file.NewStorage(cfg.Output.Dir)
	if err != nil {
		return nil, &model.ConfigurationError{Op: "output", Err: err}
	}

	opts := []pipeline.Option{
		pipeline.WithConcurrency(cfg.Pipeline.Concurrency),
		pipeline.WithRetry(a.strategy),
	}
	if printer != nil {
		opts = append(opts, pipeline.WithProgress(printer.Result))
	}

	// Initialize the object storage mirror (MinIO).
	if cfg.Storage.Endpoint != "" {
		mirror, err := object.NewStorage(ctx, cfg.Storage.Endpoint, cfg.Storage.AccessKey, cfg.Storage.SecretKey,
			cfg.Storage.BucketName, cfg.Storage.Prefix, cfg.Storage.UseSSL)
		if err != nil {
			return nil, &model.ConfigurationError{Op: "storage", Err: err}
		}
		opts = append(opts, pipeline.WithMirror(mirror))
	}

	exec := pipeline.New(processor.New(cfg.Output.JPEGQuality), storage, opts...)

	var svcOpts []batchsvc.Option

	if printer != nil {
		svcOpts = append(svcOpts, batchsvc.WithCollisionHandler(func(output string, sources []string) {
			printer.Warnf("%d inputs write %s, the last one written is kept: %s",
				len(sources), output, strings.Join(sources, ", "))
		}))
	}

	if cfg.Journal.Driver != "" {
		repo, closeFn, err := result.Open(ctx, cfg.Journal)
		if err != nil {
			a.Close()
			return nil, &model.ConfigurationError{Op: "journal", Err: err}
		}
		a.repo = repo
		a.closers = append(a.closers, closeFn)
		svcOpts = append(svcOpts, batchsvc.WithJournal(repo))
	}

	if cfg.KafkaEnabled() {
		p := producer.New(&cfg.Kafka, a.strategy)
		a.closers = append(a.closers, p.Close)
		svcOpts = append(svcOpts, batchsvc.WithPublisher(p))
	}

	a.service = batchsvc.NewService(exec, wm, batchsvc.Defaults{
		TargetDir: storage.BasePath(),
		Resize:    cfg.Resize(),
		Format:    cfg.Output.Format,
		Recursive: cfg.Output.Recursive,
	}, svcOpts...)

	zlog.Logger.Info().
		Str("watermark", wm.Path()).
		Str("target_dir", storage.BasePath()).
		Int("concurrency", exec.Concurrency()).
		Msg("watermarker ready")

	return a, nil
}

// Close releases the journal and Kafka clients.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			zlog.Logger.Error().Err(err).Msg("failed to close resource")
		}
	}
}

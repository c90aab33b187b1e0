package transcode

import (
	"context"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/samber/lo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/lk2023060901/gosave/pkg/log"
	"github.com/lk2023060901/gosave/pkg/metrics"
	"github.com/lk2023060901/gosave/pkg/util/typeutil"
)

var tracer = otel.Tracer("github.com/lk2023060901/gosave/pkg/serial/transcode")

// Job describes one unit of transcode work for BatchTranscode: Run performs
// the transcode (typically a FromBinary or FromJSON call closing over its
// own source and destination) and Name labels the job in traces and logs.
type Job struct {
	Name string
	Run  func(ctx context.Context) error
}

// BatchTranscode runs jobs concurrently over a bounded worker pool sized
// by concurrency (ants, per pkg/util/conc), tracing the batch and each job
// with OpenTelemetry spans. It returns the errors of jobs that failed, in
// no particular order; nil jobs and nil errors are dropped via samber/lo
// rather than surfacing as spurious failures. A zero or negative
// concurrency sizes the pool at one worker per job.
func BatchTranscode(ctx context.Context, jobs []Job, concurrency int) []error {
	batchStart := time.Now()
	ctx, span := tracer.Start(ctx, "transcode.BatchTranscode", trace.WithAttributes(
		attribute.Int("transcode.job_count", len(jobs)),
		attribute.Int("transcode.concurrency", concurrency),
	))
	defer func() {
		metrics.SerialTranscodeBatchDuration.Observe(float64(time.Since(batchStart).Milliseconds()))
		span.End()
	}()

	jobs = lo.Filter(jobs, func(j Job, _ int) bool { return j.Run != nil })
	if len(jobs) == 0 {
		return nil
	}
	warnDuplicateJobNames(ctx, jobs)

	size := concurrency
	if size <= 0 {
		size = len(jobs)
	}

	pool, err := ants.NewPool(size, ants.WithPreAlloc(false))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "pool init failed")
		return []error{err}
	}
	defer pool.Release()

	errs := make([]error, len(jobs))
	done := make(chan struct{}, len(jobs))

	for i, job := range jobs {
		i, job := i, job
		submitErr := pool.Submit(func() {
			defer func() { done <- struct{}{} }()
			errs[i] = runJob(ctx, job)
		})
		if submitErr != nil {
			errs[i] = submitErr
			done <- struct{}{}
		}
	}
	for range jobs {
		<-done
	}

	failed := lo.Compact(errs)
	if len(failed) > 0 {
		span.SetStatus(codes.Error, "one or more jobs failed")
	}
	return failed
}

// warnDuplicateJobNames logs once if two jobs in the same batch share a
// Name, since jobs are identified by Name in log lines and spans and a
// duplicate would make a failure ambiguous there; the returned errors
// carry no job name.
func warnDuplicateJobNames(ctx context.Context, jobs []Job) {
	seen := typeutil.NewSet[string]()
	for _, job := range jobs {
		if seen.Contain(job.Name) {
			log.Ctx(ctx).Warn("transcode batch has duplicate job names", zap.String("job", job.Name))
			continue
		}
		seen.Insert(job.Name)
	}
}

func runJob(ctx context.Context, job Job) error {
	start := time.Now()
	ctx, span := tracer.Start(ctx, "transcode.job", trace.WithAttributes(
		attribute.String("transcode.job_name", job.Name),
	))
	defer span.End()

	err := job.Run(ctx)
	elapsed := time.Since(start)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		log.Ctx(ctx).Warn("transcode job failed",
			zap.String("job", job.Name), zap.Duration("elapsed", elapsed), zap.Error(err))
		return err
	}
	log.Ctx(ctx).Debug("transcode job finished",
		zap.String("job", job.Name), zap.Duration("elapsed", elapsed))
	return nil
}

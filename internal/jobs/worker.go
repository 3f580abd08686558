package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/multierr"

	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/metrics"
	"github.com/angelmondragon/storefront-backend/pkg/redis"
)

const (
	defaultMaxAttempts  = 3
	defaultBackoffBase  = 5 * time.Second
	defaultPollTimeout  = 2 * time.Second
	defaultPromoteEvery = time.Second
)

var errRetryNotScheduled = errors.New("retry not scheduled")

// WorkerParams configure the job worker.
type WorkerParams struct {
	Logger       *logger.Logger
	Store        redis.JobStore
	Registry     *Registry
	Metrics      *metrics.JobMetrics
	Queue        string
	MaxAttempts  int
	BackoffBase  time.Duration
	PollTimeout  time.Duration
	PromoteEvery time.Duration
	Clock        func() time.Time
}

// Worker pops jobs, dispatches them and reschedules failures with
// exponential backoff. A popped job stays on the processing list until it is
// handled, and Run requeues leftovers on start, so a crash can replay a job but
// never drops one.
type Worker struct {
	logg         *logger.Logger
	store        redis.JobStore
	registry     *Registry
	metrics      *metrics.JobMetrics
	queue        string
	maxAttempts  int
	backoffBase  time.Duration
	pollTimeout  time.Duration
	promoteEvery time.Duration
	now          func() time.Time
}

func NewWorker(params WorkerParams) (*Worker, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Store == nil {
		return nil, fmt.Errorf("job store required")
	}
	if params.Queue == "" {
		return nil, fmt.Errorf("queue name required")
	}
	registry := params.Registry
	if registry == nil {
		registry = NewRegistry()
	}
	w := &Worker{
		logg:         params.Logger,
		store:        params.Store,
		registry:     registry,
		metrics:      params.Metrics,
		queue:        params.Queue,
		maxAttempts:  params.MaxAttempts,
		backoffBase:  params.BackoffBase,
		pollTimeout:  params.PollTimeout,
		promoteEvery: params.PromoteEvery,
		now:          params.Clock,
	}
	if w.maxAttempts <= 0 {
		w.maxAttempts = defaultMaxAttempts
	}
	if w.backoffBase <= 0 {
		w.backoffBase = defaultBackoffBase
	}
	if w.pollTimeout <= 0 {
		w.pollTimeout = defaultPollTimeout
	}
	if w.promoteEvery <= 0 {
		w.promoteEvery = defaultPromoteEvery
	}
	if w.now == nil {
		w.now = time.Now
	}
	return w, nil
}

// Backoff is the delay before retrying after the given failed attempt.
func Backoff(base time.Duration, attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	return base << (attempt - 1)
}

// Run processes jobs until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	ctx = w.logg.WithField(ctx, "queue", w.queue)
	w.logg.Info(ctx, "jobs.worker.start")
	if n, err := w.store.RequeueInFlight(ctx, w.queue); err != nil {
		w.logg.Error(ctx, "jobs.requeue_failed", err)
	} else if n > 0 {
		w.logg.Warn(w.logg.WithField(ctx, "requeued", n), "jobs.requeued_in_flight")
	}
	var lastPromote time.Time
	for {
		if err := ctx.Err(); err != nil {
			w.logg.Info(ctx, "jobs.worker.stop")
			return nil
		}

		if now := w.now(); now.Sub(lastPromote) >= w.promoteEvery {
			lastPromote = now
			if n, err := w.store.PromoteDueJobs(ctx, w.queue, now); err != nil {
				w.logg.Error(ctx, "jobs.promote_failed", err)
			} else if n > 0 {
				w.logg.Debug(w.logg.WithField(ctx, "promoted", n), "jobs.promoted")
			}
		}

		raw, ok, err := w.store.PopJob(ctx, w.queue, w.pollTimeout)
		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			w.logg.Error(ctx, "jobs.pop_failed", err)
			w.sleep(ctx, w.pollTimeout)
			continue
		}
		if !ok {
			continue
		}
		w.handle(ctx, raw)
	}
}

// handle processes raw and acks it, unless a failed job could not be parked
// for retry; that one stays on the processing list for the next start.
func (w *Worker) handle(ctx context.Context, raw string) {
	err := w.process(ctx, raw)
	if err != nil {
		w.logg.Error(ctx, "jobs.process_failed", err)
		if errors.Is(err, errRetryNotScheduled) {
			return
		}
	}
	if err := w.store.AckJob(context.WithoutCancel(ctx), w.queue, raw); err != nil {
		w.logg.Error(ctx, "jobs.ack_failed", err)
	}
}

// process runs one raw job. The returned error only reports problems the
// worker could not route back onto the queue.
func (w *Worker) process(ctx context.Context, raw string) error {
	env, err := decodeEnvelope(raw)
	if err != nil {
		w.metrics.IncFailure("invalid")
		return err
	}
	jobCtx := w.logg.WithFields(ctx, map[string]any{"job_id": env.ID, "job_type": env.Type})

	handler, ok := w.registry.Lookup(env.Type)
	if !ok {
		w.metrics.IncFailure(env.Type)
		return fmt.Errorf("no handler registered for job type %q", env.Type)
	}

	env.Attempt++
	jobCtx = w.logg.WithField(jobCtx, "attempt", env.Attempt)
	start := w.now()
	handleErr := handler.Handle(jobCtx, env)
	w.metrics.ObserveDuration(env.Type, w.now().Sub(start))
	if handleErr == nil {
		w.metrics.IncSuccess(env.Type)
		w.logg.Info(jobCtx, "jobs.completed")
		return nil
	}

	if env.Attempt >= w.maxAttempts {
		w.metrics.IncFailure(env.Type)
		w.logg.Error(jobCtx, "jobs.exhausted", handleErr)
		return nil
	}

	delay := Backoff(w.backoffBase, env.Attempt)
	w.logg.Warn(w.logg.WithFields(jobCtx, map[string]any{"retry_in_ms": delay.Milliseconds(), "error": handleErr.Error()}), "jobs.retry_scheduled")
	encoded, err := env.encode()
	if err == nil {
		err = w.store.ScheduleJob(ctx, w.queue, encoded, w.now().Add(delay))
	}
	if err != nil {
		w.metrics.IncFailure(env.Type)
		return multierr.Append(handleErr, fmt.Errorf("%w: %w", errRetryNotScheduled, err))
	}
	w.metrics.IncRetry(env.Type)
	return nil
}

func (w *Worker) sleep(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

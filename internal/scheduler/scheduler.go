package scheduler

import (
	"context"
	"sync"
	"time"

	ierr "github.com/NinnOgTonic/antaeus/internal/errors"
	"github.com/NinnOgTonic/antaeus/internal/logger"
	"github.com/NinnOgTonic/antaeus/internal/metrics"
	"github.com/NinnOgTonic/antaeus/internal/sentry"
	"github.com/NinnOgTonic/antaeus/internal/types"
	"github.com/robfig/cron/v3"
	"github.com/sourcegraph/conc/panics"
	"go.uber.org/fx"
)

// JobFunc is the body of a scheduled job. The returned value is the run's
// result and is handed back to manual triggers.
type JobFunc func(ctx context.Context) (any, error)

type job struct {
	name     string
	interval time.Duration
	run      JobFunc
	// slot holds a token while a run is in progress
	slot chan struct{}
}

// Scheduler runs each registered job on its own fixed interval. A run that
// is still in progress when the next tick fires makes that tick a no-op.
type Scheduler struct {
	cron    *cron.Cron
	logger  *logger.Logger
	metrics *metrics.Metrics
	sentry  *sentry.Service

	// mu also orders wg.Add against Stop
	mu      sync.Mutex
	jobs    map[string]*job
	started bool
	stopped bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func New(logger *logger.Logger, m *metrics.Metrics, sentry *sentry.Service) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron: cron.New(
			cron.WithLogger(logger.CronLogger()),
			cron.WithChain(cron.Recover(logger.CronLogger())),
		),
		logger:  logger,
		metrics: m,
		sentry:  sentry,
		jobs:    make(map[string]*job),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// RegisterHooks binds Start and Stop to the application lifecycle
func RegisterHooks(lc fx.Lifecycle, s *Scheduler) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			s.Start()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return s.Stop(ctx)
		},
	})
}

// Register adds a job. The first run happens one interval after Start.
func (s *Scheduler) Register(name string, interval time.Duration, run JobFunc) error {
	if name == "" || run == nil {
		return ierr.NewError("job name and body are required").
			Mark(ierr.ErrValidation)
	}
	if interval <= 0 {
		return ierr.NewError("job interval must be positive").
			WithHintf("Job %s needs an interval above zero", name).
			Mark(ierr.ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.jobs[name]; exists {
		return ierr.NewError("job already registered").
			WithHintf("Job %s is already registered", name).
			Mark(ierr.ErrAlreadyExists)
	}

	j := &job{
		name:     name,
		interval: interval,
		run:      run,
		slot:     make(chan struct{}, 1),
	}
	s.jobs[name] = j
	s.cron.Schedule(fixedInterval{interval: interval}, cron.FuncJob(func() {
		s.tick(j)
	}))

	s.logger.Infow("registered scheduled job",
		"job", name,
		"interval_ms", interval.Milliseconds(),
	)
	return nil
}

func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return
	}
	s.started = true
	s.cron.Start()
	s.logger.Infow("scheduler started", "jobs", len(s.jobs))
}

// Stop cancels the context handed to running jobs and waits for them to
// return, or for ctx to expire
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	s.stopped = true
	s.mu.Unlock()

	s.cancel()
	cronDone := s.cron.Stop()

	done := make(chan struct{})
	go func() {
		<-cronDone.Done()
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Infow("scheduler stopped")
		return nil
	case <-ctx.Done():
		s.logger.Errorw("scheduler stop timed out with jobs still running", "error", ctx.Err())
		return ierr.WithError(ctx.Err()).
			WithHint("Scheduled jobs did not finish before shutdown").
			Mark(ierr.ErrSystem)
	}
}

// TryRun runs a job immediately through the same guard as scheduled ticks.
// It fails with ErrInvalidOperation when the job is already running.
func (s *Scheduler) TryRun(ctx context.Context, name string) (any, error) {
	s.mu.Lock()
	j, ok := s.jobs[name]
	s.mu.Unlock()
	if !ok {
		return nil, ierr.NewError("job not found").
			WithHintf("No job named %s is registered", name).
			Mark(ierr.ErrNotFound)
	}

	acquired, stopped := s.acquire(j)
	if stopped {
		return nil, ierr.NewError("scheduler stopped").
			WithHint("The service is shutting down").
			Mark(ierr.ErrInvalidOperation)
	}
	if !acquired {
		return nil, ierr.NewError("job already running").
			WithHintf("Job %s is already running, try again later", name).
			WithReportableDetails(map[string]any{"job": name}).
			Mark(ierr.ErrInvalidOperation)
	}
	defer s.release(j)

	return s.execute(ctx, j, "manual")
}

// Jobs returns the registered job names
func (s *Scheduler) Jobs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.jobs))
	for name := range s.jobs {
		names = append(names, name)
	}
	return names
}

func (s *Scheduler) tick(j *job) {
	acquired, stopped := s.acquire(j)
	if stopped {
		return
	}
	if !acquired {
		s.metrics.RecordSkippedTick(j.name)
		s.logger.Infow("previous run still in progress, skipping tick", "job", j.name)
		return
	}
	defer s.release(j)

	_, _ = s.execute(s.ctx, j, "schedule")
}

// acquire takes the job's slot and counts the run in wg. Nothing is
// acquired once Stop has begun.
func (s *Scheduler) acquire(j *job) (acquired, stopped bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return false, true
	}

	select {
	case j.slot <- struct{}{}:
		s.wg.Add(1)
		return true, false
	default:
		return false, false
	}
}

func (s *Scheduler) release(j *job) {
	<-j.slot
	s.wg.Done()
}

func (s *Scheduler) execute(ctx context.Context, j *job, trigger string) (any, error) {
	runID := types.GenerateUUIDWithPrefix(types.UUID_PREFIX_RUN)
	ctx = types.WithJobRun(ctx, j.name, runID)

	span, ctx := s.sentry.StartJobSpan(ctx, j.name)
	log := s.logger.WithContext(ctx)
	log.Debugw("job run started", "trigger", trigger)

	var (
		result any
		err    error
		pc     panics.Catcher
	)
	start := time.Now()
	pc.Try(func() {
		result, err = j.run(ctx)
	})
	if r := pc.Recovered(); r != nil {
		err = ierr.WithError(r.AsError()).
			WithHintf("Job %s panicked", j.name).
			Mark(ierr.ErrSystem)
		result = nil
	}
	duration := time.Since(start)

	s.metrics.RecordTick(j.name, duration, err)
	if span != nil {
		span.SetData("trigger", trigger)
		span.Finish()
	}

	if err != nil {
		log.Errorw("job run failed",
			"trigger", trigger,
			"duration_ms", duration.Milliseconds(),
			"error", err,
		)
		s.sentry.CaptureAnomaly(ctx, err, map[string]string{"trigger": trigger})
		return result, err
	}

	log.Debugw("job run finished",
		"trigger", trigger,
		"duration_ms", duration.Milliseconds(),
	)
	return result, nil
}

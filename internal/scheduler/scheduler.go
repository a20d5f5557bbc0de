package scheduler

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	instance     *Scheduler
	instanceOnce sync.Once
	instanceErr  error
)

var (
	ErrNotInitialized = errors.New("scheduler not initialized")
	ErrEmptyJobName   = errors.New("job name is required")
	ErrEmptyCronExpr  = errors.New("cron expression is required")
	ErrDuplicateJob   = errors.New("job already registered")
	ErrUnknownJob     = errors.New("job not registered")
)

// Scheduler runs the background maintenance jobs of the match service.
type Scheduler struct {
	cron   gocron.Scheduler
	logger zerolog.Logger

	mu   sync.Mutex
	jobs map[string]gocron.Job

	stopOnce sync.Once
	stopErr  error
}

// Option adjusts the scheduler built by Init or New.
type Option func(*settings)

type settings struct {
	location *time.Location
}

// WithLocation evaluates cron expressions in loc instead of the local zone.
func WithLocation(loc *time.Location) Option {
	return func(s *settings) {
		if loc != nil {
			s.location = loc
		}
	}
}

// New builds a standalone scheduler. Most callers use the package-level
// singleton through Init.
func New(opts ...Option) (*Scheduler, error) {
	cfg := settings{location: time.Local}
	for _, opt := range opts {
		opt(&cfg)
	}

	logger := log.With().Str("component", "scheduler").Logger()
	cron, err := gocron.NewScheduler(
		gocron.WithLocation(cfg.location),
		gocron.WithGlobalJobOptions(
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
			gocron.WithEventListeners(
				gocron.AfterJobRunsWithError(func(jobID uuid.UUID, jobName string, err error) {
					logger.Error().Err(err).
						Str("job_id", jobID.String()).
						Str("job_name", jobName).
						Msg("Scheduler job failed")
				}),
				gocron.AfterJobRunsWithPanic(func(jobID uuid.UUID, jobName string, recoverData any) {
					logger.Error().
						Str("job_id", jobID.String()).
						Str("job_name", jobName).
						Interface("panic", recoverData).
						Msg("Scheduler job panicked")
				}),
			),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}
	return &Scheduler{cron: cron, logger: logger, jobs: make(map[string]gocron.Job)}, nil
}

// Init initializes the scheduler singleton. Options only apply on the first call.
func Init(opts ...Option) error {
	instanceOnce.Do(func() {
		instance, instanceErr = New(opts...)
		if instanceErr == nil {
			instance.logger.Info().Msg("Scheduler initialized")
		}
	})
	return instanceErr
}

// Instance returns the initialized scheduler singleton.
func Instance() (*Scheduler, error) {
	if instance == nil && instanceErr == nil {
		return nil, ErrNotInitialized
	}
	return instance, instanceErr
}

func Start() error {
	s, err := Instance()
	if err != nil {
		return err
	}
	s.Start()
	return nil
}

func Stop() error {
	s, err := Instance()
	if err != nil {
		return err
	}
	return s.Stop()
}

// AddJob registers a cron job on the singleton scheduler.
func AddJob(name, cronExpr string, task func()) (gocron.Job, error) {
	s, err := Instance()
	if err != nil {
		return nil, err
	}
	return s.AddJob(name, cronExpr, task)
}

func (s *Scheduler) Start() {
	if s == nil {
		log.Error().Msg("Scheduler start requested before initialization")
		return
	}
	s.logger.Info().Strs("jobs", s.JobNames()).Msg("Scheduler starting")
	s.cron.Start()
}

// Stop shuts the scheduler down. Later calls return the first result.
func (s *Scheduler) Stop() error {
	if s == nil {
		return ErrNotInitialized
	}
	s.stopOnce.Do(func() {
		s.logger.Info().Msg("Scheduler stopping")
		s.stopErr = s.cron.Shutdown()
	})
	return s.stopErr
}

// AddJob registers task under a unique name. A run that would overlap the
// previous one is skipped.
func (s *Scheduler) AddJob(name, cronExpr string, task func()) (gocron.Job, error) {
	if s == nil {
		return nil, ErrNotInitialized
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyJobName
	}
	if strings.TrimSpace(cronExpr) == "" {
		return nil, ErrEmptyCronExpr
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.jobs[name]; ok {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateJob, name)
	}

	jobLogger := s.logger.With().Str("job_name", name).Str("cron", cronExpr).Logger()
	job, err := s.cron.NewJob(
		gocron.CronJob(cronExpr, false),
		gocron.NewTask(func() {
			started := time.Now()
			jobLogger.Debug().Msg("Scheduler job started")
			task()
			jobLogger.Debug().Dur("took", time.Since(started)).Msg("Scheduler job completed")
		}),
		gocron.WithName(name),
	)
	if err != nil {
		jobLogger.Error().Err(err).Msg("Failed to register scheduler job")
		return nil, err
	}
	s.jobs[name] = job
	jobLogger.Info().Msg("Scheduler job registered")
	return job, nil
}

// RunNow triggers a registered job outside its schedule.
func (s *Scheduler) RunNow(name string) error {
	if s == nil {
		return ErrNotInitialized
	}
	s.mu.Lock()
	job, ok := s.jobs[name]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownJob, name)
	}
	return job.RunNow()
}

// JobNames lists the registered jobs in name order.
func (s *Scheduler) JobNames() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.jobs))
	for name := range s.jobs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

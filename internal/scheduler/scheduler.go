package scheduler

import (
	"context"
	"fmt"
	"reflect"
	"time"

	"bigleague/stats/internal/metrics"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Dispatch modes
const (
	ModeSerial   = "serial"
	ModeParallel = "parallel"
)

// Dispatch sources, used as metric labels
const (
	sourceTicker  = "ticker"
	sourceTrigger = "trigger"
	sourceInitial = "initial"
)

// Task is a periodic job
type Task struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context) error
}

// Options configures a Scheduler
type Options struct {
	// Mode is ModeSerial (default) or ModeParallel
	Mode string

	// TaskTimeout bounds a single run. Zero means no bound.
	TaskTimeout time.Duration

	// InitialOrder lists tasks to run once, in order, before the first tick.
	// Empty disables the initial sync.
	InitialOrder []string

	// Cron maps a task name to a cron spec that triggers it in addition
	// to its interval
	Cron map[string]string

	// Clock defaults to the real clock
	Clock clockwork.Clock
}

// Scheduler runs each task on its own interval.
//
// In serial mode one run executes at a time: the loop waits for the
// earliest due ticker, runs that task to completion, then waits again.
// Ticks missed while busy are collapsed into one and the finished task's
// ticker restarts from now. In parallel mode each task has its own loop
// under an errgroup.
type Scheduler struct {
	tasks    []Task
	opts     Options
	clock    clockwork.Clock
	triggers map[string]chan struct{}
}

// NewScheduler creates a new scheduler instance
func NewScheduler(tasks []Task, opts Options) (*Scheduler, error) {
	if opts.Mode == "" {
		opts.Mode = ModeSerial
	}
	if opts.Mode != ModeSerial && opts.Mode != ModeParallel {
		return nil, fmt.Errorf("unknown scheduler mode %q", opts.Mode)
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}

	triggers := make(map[string]chan struct{}, len(tasks))
	for _, t := range tasks {
		if t.Interval <= 0 {
			return nil, fmt.Errorf("task %s: interval must be positive, got %s", t.Name, t.Interval)
		}
		if t.Run == nil {
			return nil, fmt.Errorf("task %s: no run function", t.Name)
		}
		if _, dup := triggers[t.Name]; dup {
			return nil, fmt.Errorf("task %s registered twice", t.Name)
		}
		triggers[t.Name] = make(chan struct{}, 1)
	}
	for _, name := range opts.InitialOrder {
		if _, ok := triggers[name]; !ok {
			return nil, fmt.Errorf("initial sync names unknown task %s", name)
		}
	}
	for name := range opts.Cron {
		if _, ok := triggers[name]; !ok {
			return nil, fmt.Errorf("cron names unknown task %s", name)
		}
	}

	return &Scheduler{
		tasks:    tasks,
		opts:     opts,
		clock:    opts.Clock,
		triggers: triggers,
	}, nil
}

// Trigger asks for an out-of-band run of the named task. A trigger that
// arrives while one is already pending is dropped. Reports whether the
// task exists.
func (s *Scheduler) Trigger(name string) bool {
	ch, ok := s.triggers[name]
	if !ok {
		return false
	}
	select {
	case ch <- struct{}{}:
	default:
	}
	return true
}

// Run blocks until ctx is cancelled. Task failures are logged and never
// stop the scheduler.
func (s *Scheduler) Run(ctx context.Context) error {
	log.Info().
		Str("mode", s.opts.Mode).
		Int("tasks", len(s.tasks)).
		Msg("Scheduler starting...")

	c, err := s.startCron()
	if err != nil {
		return err
	}
	if c != nil {
		defer func() { <-c.Stop().Done() }()
	}

	s.initialSync(ctx)

	if s.opts.Mode == ModeParallel {
		err = s.runParallel(ctx)
	} else {
		s.runSerial(ctx)
	}

	log.Info().Msg("Scheduler stopped")
	return err
}

func (s *Scheduler) startCron() (*cron.Cron, error) {
	if len(s.opts.Cron) == 0 {
		return nil, nil
	}

	c := cron.New()
	for name, spec := range s.opts.Cron {
		if _, err := c.AddFunc(spec, func() { s.Trigger(name) }); err != nil {
			return nil, fmt.Errorf("failed to schedule %s with %q: %w", name, spec, err)
		}
		log.Info().
			Str("task", name).
			Str("schedule", spec).
			Msg("Cron trigger scheduled")
	}
	c.Start()
	return c, nil
}

func (s *Scheduler) initialSync(ctx context.Context) {
	if len(s.opts.InitialOrder) == 0 {
		return
	}

	start := s.clock.Now()
	log.Info().Strs("order", s.opts.InitialOrder).Msg("Running initial sync...")
	for _, name := range s.opts.InitialOrder {
		if ctx.Err() != nil {
			return
		}
		s.dispatch(ctx, s.task(name), sourceInitial)
	}
	log.Info().Dur("duration", s.clock.Since(start)).Msg("Initial sync complete")
}

func (s *Scheduler) task(name string) Task {
	for _, t := range s.tasks {
		if t.Name == name {
			return t
		}
	}
	return Task{}
}

// runSerial multiplexes every ticker and trigger onto one loop. The task
// set is only known at runtime, hence reflect.Select.
func (s *Scheduler) runSerial(ctx context.Context) {
	tickers := s.startTickers()
	defer stopTickers(tickers)

	// case 0 is ctx; task i owns cases 2i+1 (ticker) and 2i+2 (trigger)
	cases := make([]reflect.SelectCase, 0, 1+2*len(s.tasks))
	cases = append(cases, reflect.SelectCase{Dir: reflect.SelectRecv, Chan: reflect.ValueOf(ctx.Done())})
	for i, t := range s.tasks {
		cases = append(cases,
			reflect.SelectCase{Dir: reflect.SelectRecv, Chan: reflect.ValueOf(tickers[i].Chan())},
			reflect.SelectCase{Dir: reflect.SelectRecv, Chan: reflect.ValueOf(s.triggers[t.Name])},
		)
	}

	for {
		chosen, _, _ := reflect.Select(cases)
		if chosen == 0 {
			return
		}

		i := (chosen - 1) / 2
		source := sourceTicker
		if (chosen-1)%2 == 1 {
			source = sourceTrigger
		}

		s.dispatch(ctx, s.tasks[i], source)
		s.rearm(tickers[i], s.tasks[i].Interval)
	}
}

func (s *Scheduler) runParallel(ctx context.Context) error {
	tickers := s.startTickers()
	defer stopTickers(tickers)

	g, gctx := errgroup.WithContext(ctx)
	for i, t := range s.tasks {
		ticker := tickers[i]
		trigger := s.triggers[t.Name]
		g.Go(func() error {
			for {
				source := sourceTicker
				select {
				case <-gctx.Done():
					return nil
				case <-ticker.Chan():
				case <-trigger:
					source = sourceTrigger
				}

				s.dispatch(gctx, t, source)
				s.rearm(ticker, t.Interval)
			}
		})
	}
	return g.Wait()
}

func (s *Scheduler) startTickers() []clockwork.Ticker {
	tickers := make([]clockwork.Ticker, len(s.tasks))
	for i, t := range s.tasks {
		tickers[i] = s.clock.NewTicker(t.Interval)
		log.Info().
			Str("task", t.Name).
			Dur("interval", t.Interval).
			Msg("Task scheduled")
	}
	return tickers
}

func stopTickers(tickers []clockwork.Ticker) {
	for _, t := range tickers {
		t.Stop()
	}
}

// rearm drops a tick that queued up during the run and restarts the
// period from now
func (s *Scheduler) rearm(t clockwork.Ticker, interval time.Duration) {
	select {
	case <-t.Chan():
	default:
	}
	t.Reset(interval)
}

// dispatch runs one task with its own run id, timeout and panic guard
func (s *Scheduler) dispatch(ctx context.Context, t Task, source string) {
	if ctx.Err() != nil {
		return
	}

	runID := uuid.NewString()
	logger := log.With().
		Str("task", t.Name).
		Str("run_id", runID).
		Str("source", source).
		Logger()

	runCtx := ctx
	if s.opts.TaskTimeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, s.opts.TaskTimeout)
		defer cancel()
	}
	runCtx = logger.WithContext(runCtx)

	metrics.RecordSchedulerTick(t.Name, source)
	logger.Debug().Msg("Task started")

	start := s.clock.Now()
	err := safeRun(runCtx, t.Run)
	duration := s.clock.Since(start)

	status := "success"
	if err != nil {
		status = "error"
		metrics.RecordError("scheduler", t.Name)
		logger.Error().Err(err).Dur("duration", duration).Msg("Task failed")
	} else {
		logger.Info().Dur("duration", duration).Msg("Task complete")
	}
	metrics.RecordSync(t.Name, status, duration.Seconds())
}

func safeRun(ctx context.Context, fn func(context.Context) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
			zerolog.Ctx(ctx).Error().Interface("panic", r).Msg("Recovered from task panic")
		}
	}()
	return fn(ctx)
}

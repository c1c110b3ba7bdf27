package reminder

import (
	"context"
	"sync"
	"time"

	"docflow/pkg/logger"
)

// RunnerConfig controls how often the scan is attempted.
type RunnerConfig struct {
	// Interval between checks
	Interval time.Duration
	// RunAtHour is the local hour after which the daily scan may start
	RunAtHour int
	// Now overrides the wall clock in tests
	Now func() time.Time
}

// Runner triggers at most one scan per calendar day.
type Runner struct {
	scheduler *Scheduler
	interval  time.Duration
	runAtHour int
	now       func() time.Time

	mu      sync.Mutex
	lastDay string
	last    *Report
}

// NewRunner creates a runner for the scheduler.
func NewRunner(s *Scheduler, cfg RunnerConfig) *Runner {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Minute
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.RunAtHour < 0 || cfg.RunAtHour > 23 {
		cfg.RunAtHour = 9
	}
	return &Runner{
		scheduler: s,
		interval:  cfg.Interval,
		runAtHour: cfg.RunAtHour,
		now:       cfg.Now,
	}
}

// Start blocks, checking on every tick until ctx is cancelled.
func (r *Runner) Start(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	logger.Info(ctx, "reminder runner started",
		"interval", r.interval.String(),
		"run_at_hour", r.runAtHour,
		"location", r.scheduler.Location().String())

	r.Tick(ctx)
	for {
		select {
		case <-ctx.Done():
			logger.Info(ctx, "reminder runner stopped")
			return
		case <-ticker.C:
			r.Tick(ctx)
		}
	}
}

// Tick runs the scan when the configured hour has passed and today's
// scan has not run yet. It reports whether a scan ran.
func (r *Runner) Tick(ctx context.Context) bool {
	now := r.now()
	local := now.In(r.scheduler.Location())
	if local.Hour() < r.runAtHour {
		return false
	}

	day := local.Format(time.DateOnly)
	r.mu.Lock()
	if r.lastDay == day {
		r.mu.Unlock()
		return false
	}
	r.lastDay = day
	r.mu.Unlock()

	if _, err := r.run(ctx, now); err != nil {
		// Allow a retry on the next tick.
		r.mu.Lock()
		r.lastDay = ""
		r.mu.Unlock()
	}
	return true
}

// RunNow runs a scan immediately regardless of the daily schedule.
func (r *Runner) RunNow(ctx context.Context) (Report, error) {
	return r.run(ctx, r.now())
}

// RunAt runs a scan as if the clock read at. Operators use it to replay a
// missed day.
func (r *Runner) RunAt(ctx context.Context, at time.Time) (Report, error) {
	return r.run(ctx, at)
}

// LastReport returns the most recent scan result, if any.
func (r *Runner) LastReport() (Report, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.last == nil {
		return Report{}, false
	}
	return *r.last, true
}

func (r *Runner) run(ctx context.Context, now time.Time) (Report, error) {
	report, err := r.scheduler.RunOnce(ctx, now)
	if err != nil {
		logger.Error(ctx, "reminder scan failed", "error", err)
		return report, err
	}
	r.mu.Lock()
	r.last = &report
	r.mu.Unlock()
	return report, nil
}

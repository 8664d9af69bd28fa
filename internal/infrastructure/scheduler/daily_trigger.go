package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DailyTriggerConfig holds the wall-clock time of a once-a-day run
type DailyTriggerConfig struct {
	Hour   int
	Minute int
	// CheckInterval is how often the clock is compared against Hour:Minute
	CheckInterval time.Duration
	Location      *time.Location
}

// ParseClock parses "HH:MM" into hour and minute
func ParseClock(value string) (int, int, error) {
	t, err := time.Parse("15:04", value)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: clock %q must be HH:MM", ErrInvalidConfig, value)
	}
	return t.Hour(), t.Minute(), nil
}

// NewDailyTriggerConfig builds a trigger config from an "HH:MM" string
func NewDailyTriggerConfig(clock string) (DailyTriggerConfig, error) {
	hour, minute, err := ParseClock(clock)
	if err != nil {
		return DailyTriggerConfig{}, err
	}
	return DailyTriggerConfig{
		Hour:          hour,
		Minute:        minute,
		CheckInterval: time.Minute,
		Location:      time.Local,
	}, nil
}

// DailyTrigger submits a fixed set of jobs once per calendar day
type DailyTrigger struct {
	config    DailyTriggerConfig
	scheduler *Scheduler
	jobNames  []string
	logger    *zap.Logger
	now       func() time.Time

	cancel      context.CancelFunc
	wg          sync.WaitGroup
	mu          sync.Mutex
	isRunning   bool
	lastRunDate string
}

// NewDailyTrigger creates a trigger for the given job names
func NewDailyTrigger(config DailyTriggerConfig, scheduler *Scheduler, logger *zap.Logger, jobNames ...string) *DailyTrigger {
	if config.CheckInterval <= 0 {
		config.CheckInterval = time.Minute
	}
	if config.Location == nil {
		config.Location = time.Local
	}
	return &DailyTrigger{
		config:    config,
		scheduler: scheduler,
		jobNames:  jobNames,
		logger:    logger,
		now:       time.Now,
	}
}

// WithClock replaces the clock used to decide when to fire
func (d *DailyTrigger) WithClock(now func() time.Time) *DailyTrigger {
	d.now = now
	return d
}

// Start starts the polling loop
func (d *DailyTrigger) Start(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.isRunning {
		return nil
	}
	d.isRunning = true

	ctx, cancel := context.WithCancel(ctx)
	d.cancel = cancel

	d.wg.Add(1)
	go d.runLoop(ctx)

	d.logger.Info("Daily trigger started",
		zap.Strings("jobs", d.jobNames),
		zap.String("at", fmt.Sprintf("%02d:%02d", d.config.Hour, d.config.Minute)),
		zap.Duration("check_interval", d.config.CheckInterval),
	)
	return nil
}

// Stop stops the polling loop
func (d *DailyTrigger) Stop(ctx context.Context) error {
	d.mu.Lock()
	if !d.isRunning {
		d.mu.Unlock()
		return nil
	}
	d.isRunning = false
	d.mu.Unlock()

	if d.cancel != nil {
		d.cancel()
	}

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		d.logger.Info("Daily trigger stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *DailyTrigger) runLoop(ctx context.Context) {
	defer d.wg.Done()

	ticker := time.NewTicker(d.config.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.CheckAndTrigger()
		}
	}
}

// CheckAndTrigger submits the jobs when the clock has reached the configured
// time and they have not yet run today. It reports whether jobs were submitted.
func (d *DailyTrigger) CheckAndTrigger() bool {
	now := d.now().In(d.config.Location)
	currentDate := now.Format("2006-01-02")
	due := time.Date(now.Year(), now.Month(), now.Day(), d.config.Hour, d.config.Minute, 0, 0, d.config.Location)

	d.mu.Lock()
	if d.lastRunDate == currentDate || now.Before(due) {
		d.mu.Unlock()
		return false
	}
	d.lastRunDate = currentDate
	d.mu.Unlock()

	d.logger.Info("Triggering daily jobs", zap.String("date", currentDate))
	for _, name := range d.jobNames {
		if _, err := d.scheduler.Submit(name); err != nil {
			d.logger.Error("Failed to submit daily job",
				zap.String("job", name),
				zap.Error(err),
			)
		}
	}
	return true
}

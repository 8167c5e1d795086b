package orchestration

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
)

// DrainFunc runs one ExecutePendingBatches pass; callers wire it to an
// Orchestrator.ExecutePendingBatches plus whatever result handling they
// want (storing through a PolicyResultStore, logging, metrics).
type DrainFunc func(ctx context.Context) ([]AggregatedResult, error)

// IntervalDriver drains pending batches on a fixed ticker, the plain
// default when no cron expression is configured.
type IntervalDriver struct {
	interval time.Duration
	drain    DrainFunc
}

// NewIntervalDriver returns a driver that calls drain every interval.
func NewIntervalDriver(interval time.Duration, drain DrainFunc) *IntervalDriver {
	return &IntervalDriver{interval: interval, drain: drain}
}

// Run blocks, draining on every tick until ctx is cancelled.
func (d *IntervalDriver) Run(ctx context.Context) {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_, _ = d.drain(ctx)
		}
	}
}

// CronDriver drains pending batches on a cron schedule, letting an
// operator express "drain at the top of the minute" instead of a plain
// interval.
type CronDriver struct {
	cron  *cron.Cron
	drain DrainFunc
}

// NewCronDriver parses spec (standard five-field cron syntax) and wires it
// to drain. Returns an error if spec does not parse.
func NewCronDriver(spec string, drain DrainFunc) (*CronDriver, error) {
	c := cron.New()
	d := &CronDriver{cron: c, drain: drain}
	_, err := c.AddFunc(spec, func() {
		_, _ = drain(context.Background())
	})
	if err != nil {
		return nil, err
	}
	return d, nil
}

// Start begins the cron scheduler in its own goroutine.
func (d *CronDriver) Start() {
	d.cron.Start()
}

// Stop halts the cron scheduler, waiting for any running job to finish.
func (d *CronDriver) Stop() {
	<-d.cron.Stop().Done()
}

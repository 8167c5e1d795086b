// Package poller implements the cooperative SNMP polling scheduler: a
// single tick loop that executes due PollingTasks up to a concurrency
// cap, emits PollingResults, and accepts control-plane messages between
// ticks.
package poller

import (
	"context"
	"sort"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/opsnet/unet/pkg/logger"
	"github.com/opsnet/unet/pkg/models"
	"github.com/opsnet/unet/pkg/snmp"
)

// Outcome is the tagged result of one poll attempt.
type Outcome struct {
	Success             bool
	Values              map[string]snmp.SnmpValue
	Err                 error
	ConsecutiveFailures int
}

// PollingResult is emitted on the scheduler's results channel for every
// executed task.
type PollingResult struct {
	TaskID    string
	NodeID    string
	Timestamp time.Time
	Outcome   Outcome
}

// PollFunc performs one SNMP exchange for a task, returning the raw
// OID→value map. Production code backs this with snmp.Session.Get;
// tests inject a fake.
type PollFunc func(ctx context.Context, task models.PollingTask) (map[string]snmp.SnmpValue, error)

// taskState is a PollingTask plus the scheduler's runtime bookkeeping.
type taskState struct {
	task     models.PollingTask
	nextFire time.Time
}

// Scheduler owns a set of PollingTasks and runs the single cooperative
// tick loop described by the polling subsystem: wait for the earliest
// due task, execute due tasks up to the concurrency cap ordered by
// (priority desc, next_fire asc, id asc), update each task's bookkeeping,
// emit a PollingResult per execution, and drain control messages between
// ticks.
type Scheduler struct {
	poll        PollFunc
	concurrency int
	limiter     *rate.Limiter
	results     chan PollingResult
	commands    chan command
	minTick     time.Duration
	log         *logger.Logger

	mu    sync.Mutex
	tasks map[string]*taskState
}

// NewScheduler constructs a Scheduler. concurrency bounds how many tasks
// run per tick; minTick bounds how often the loop re-evaluates the
// earliest due time (it never busy-waits tighter than this).
func NewScheduler(poll PollFunc, concurrency int, minTick time.Duration) *Scheduler {
	if concurrency < 1 {
		concurrency = 1
	}
	if minTick <= 0 {
		minTick = 100 * time.Millisecond
	}
	return &Scheduler{
		poll:        poll,
		concurrency: concurrency,
		limiter:     rate.NewLimiter(rate.Limit(concurrency), concurrency),
		results:     make(chan PollingResult, 256),
		commands:    make(chan command),
		minTick:     minTick,
		tasks:       map[string]*taskState{},
	}
}

// Results returns the unbounded-in-practice (buffered) results channel;
// back-pressure beyond the buffer is the consumer's responsibility.
func (s *Scheduler) Results() <-chan PollingResult { return s.results }

// SetLogger attaches a logger the scheduler reports poll outcomes
// through; unset by default, in which case execute stays silent.
func (s *Scheduler) SetLogger(log *logger.Logger) {
	s.log = log
}

// Run drives the tick loop until ctx is cancelled or Shutdown is
// processed. It blocks; callers run it in its own goroutine.
func (s *Scheduler) Run(ctx context.Context) {
	defer close(s.results)
	var inFlight sync.WaitGroup

	ticker := time.NewTicker(s.minTick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			inFlight.Wait()
			return
		case cmd := <-s.commands:
			if s.handleCommand(cmd) {
				inFlight.Wait()
				return
			}
		case <-ticker.C:
			s.runDueTasks(ctx, &inFlight)
		}
	}
}

func (s *Scheduler) runDueTasks(ctx context.Context, inFlight *sync.WaitGroup) {
	now := time.Now()
	due := s.dueTasks(now)

	if len(due) > s.concurrency {
		due = due[:s.concurrency]
	}

	for _, id := range due {
		if err := s.limiter.Wait(ctx); err != nil {
			return
		}
		s.mu.Lock()
		st, ok := s.tasks[id]
		s.mu.Unlock()
		if !ok {
			continue
		}

		inFlight.Add(1)
		go func(st *taskState) {
			defer inFlight.Done()
			s.execute(ctx, st)
		}(st)
	}
}

// dueTasks returns task ids due at or before now, ordered by (priority
// desc, next_fire asc, id asc).
func (s *Scheduler) dueTasks(now time.Time) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var due []*taskState
	for _, st := range s.tasks {
		if !st.task.Enabled {
			continue
		}
		if !st.nextFire.After(now) {
			due = append(due, st)
		}
	}
	sort.Slice(due, func(i, j int) bool {
		a, b := due[i].task, due[j].task
		if a.Priority != b.Priority {
			return a.Priority > b.Priority
		}
		if !due[i].nextFire.Equal(due[j].nextFire) {
			return due[i].nextFire.Before(due[j].nextFire)
		}
		return a.ID < b.ID
	})

	ids := make([]string, len(due))
	for i, st := range due {
		ids[i] = st.task.ID
	}
	return ids
}

func (s *Scheduler) execute(ctx context.Context, st *taskState) {
	timeout := st.task.SessionConfig.Timeout
	pollCtx := ctx
	var cancel context.CancelFunc
	if timeout > 0 {
		pollCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	values, err := s.poll(pollCtx, st.task)
	now := time.Now()

	s.mu.Lock()
	// The task may have been removed/updated while polling; re-fetch.
	cur, ok := s.tasks[st.task.ID]
	if !ok {
		s.mu.Unlock()
		return
	}

	var outcome Outcome
	if err != nil {
		cur.task.ConsecutiveFailures++
		msg := err.Error()
		cur.task.LastError = &msg
		outcome = Outcome{Success: false, Err: err, ConsecutiveFailures: cur.task.ConsecutiveFailures}
		if s.log != nil {
			s.log.WithField("task_id", cur.task.ID).WithField("node_id", cur.task.NodeID).
				WithField("consecutive_failures", cur.task.ConsecutiveFailures).
				WithError(err).Warn("snmp poll failed")
		}
	} else {
		cur.task.ConsecutiveFailures = 0
		cur.task.LastSuccess = &now
		cur.task.LastError = nil
		outcome = Outcome{Success: true, Values: values}
		if s.log != nil {
			s.log.WithField("task_id", cur.task.ID).WithField("node_id", cur.task.NodeID).Debug("snmp poll succeeded")
		}
	}
	cur.nextFire = now.Add(cur.task.Interval)
	result := PollingResult{
		TaskID:    cur.task.ID,
		NodeID:    cur.task.NodeID,
		Timestamp: now,
		Outcome:   outcome,
	}
	s.mu.Unlock()

	s.results <- result
}

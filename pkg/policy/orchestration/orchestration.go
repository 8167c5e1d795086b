// Package orchestration batches policy rules per node, executes them in
// priority order against a single transaction, aggregates the results, and
// caches unchanged rule-sets so a fleet-wide drain does not re-evaluate work
// it already has an answer for.
package orchestration

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/opsnet/unet/pkg/logger"
	"github.com/opsnet/unet/pkg/models"
	"github.com/opsnet/unet/pkg/policy"
)

// Priority orders rules within a batch; higher values run first.
type Priority int

const (
	PriorityLow Priority = iota
	PriorityMedium
	PriorityHigh
	PriorityCritical
)

// OrchestrationRule wraps a PolicyRule with the priority and positional
// order the orchestrator schedules it by within a batch.
type OrchestrationRule struct {
	Rule     policy.PolicyRule
	Priority Priority
	Order    int
}

// Batch is one node's pending rule-set, replacing any previously pending
// batch for the same node when a new one is submitted.
type Batch struct {
	NodeID  string
	EvalCtx *models.EvaluationContext
	Rules   []OrchestrationRule
}

// sortedRules returns b.Rules ordered by priority descending, then by Order
// ascending, per spec: "sort rules by priority descending, then by order
// ascending, execute sequentially against a single transaction".
func (b Batch) sortedRules() []OrchestrationRule {
	out := make([]OrchestrationRule, len(b.Rules))
	copy(out, b.Rules)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority > out[j].Priority
		}
		return out[i].Order < out[j].Order
	})
	return out
}

// AggregatedResult summarizes one batch's execution across all its rules.
type AggregatedResult struct {
	NodeID             string
	BatchID            string
	TotalRules         int
	SatisfiedRules     int
	FailedRules        int
	ErrorRules         int
	ComplianceFailures int
	ExecutionDuration  time.Duration
	Results            []policy.PolicyExecutionResult
	Summary            string
}

// SuccessRate reports the share of rules that neither failed nor errored,
// as a percentage in [0, 100]. An empty batch is defined as fully compliant.
func (r AggregatedResult) SuccessRate() float64 {
	if r.TotalRules == 0 {
		return 100.0
	}
	return float64(r.TotalRules-r.FailedRules-r.ErrorRules) / float64(r.TotalRules) * 100.0
}

// Orchestrator owns the pending-batch map and, optionally, a ResultCache
// keyed on rule-set content so an unchanged rule-set for a node can skip
// re-execution entirely.
type Orchestrator struct {
	writer policy.NodeCustomDataWriter
	cache  ResultCache
	log    *logger.Logger

	mu      sync.Mutex
	pending map[string]Batch

	now func() time.Time
	id  func() string
}

// Option configures an Orchestrator at construction time.
type Option func(*Orchestrator)

// WithCache enables result caching against the given ResultCache.
func WithCache(c ResultCache) Option {
	return func(o *Orchestrator) { o.cache = c }
}

// WithClock overrides the orchestrator's time source, for deterministic
// tests.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

// WithIDGenerator overrides the orchestrator's batch-id source, for
// deterministic tests.
func WithIDGenerator(id func() string) Option {
	return func(o *Orchestrator) { o.id = id }
}

// WithLogger attaches a logger the orchestrator reports batch executions
// through; unset by default, in which case execute stays silent.
func WithLogger(log *logger.Logger) Option {
	return func(o *Orchestrator) { o.log = log }
}

// New constructs an Orchestrator that persists Set-action writes through
// writer.
func New(writer policy.NodeCustomDataWriter, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		writer:  writer,
		pending: make(map[string]Batch),
		now:     time.Now,
		id:      func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Submit replaces any previously pending batch for batch.NodeID.
func (o *Orchestrator) Submit(batch Batch) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.pending[batch.NodeID] = batch
}

// Pending reports the number of node batches awaiting a drain.
func (o *Orchestrator) Pending() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.pending)
}

// ExecutePendingBatches drains every pending batch, in an unspecified order
// across nodes, executing each (or serving it from cache) and returning the
// aggregated results in completion order.
func (o *Orchestrator) ExecutePendingBatches(ctx context.Context) ([]AggregatedResult, error) {
	o.mu.Lock()
	batches := make([]Batch, 0, len(o.pending))
	for _, b := range o.pending {
		batches = append(batches, b)
	}
	o.pending = make(map[string]Batch)
	o.mu.Unlock()

	results := make([]AggregatedResult, 0, len(batches))
	for _, b := range batches {
		result, err := o.executeOrFetch(ctx, b)
		if err != nil {
			return results, err
		}
		results = append(results, result)
	}
	return results, nil
}

// ExecuteBatch runs a single batch directly, bypassing the pending map.
// Exposed for tests that want the single-batch path without a Submit step.
func (o *Orchestrator) ExecuteBatch(ctx context.Context, batch Batch) (AggregatedResult, error) {
	return o.executeOrFetch(ctx, batch)
}

func (o *Orchestrator) executeOrFetch(ctx context.Context, batch Batch) (AggregatedResult, error) {
	var key string
	if o.cache != nil {
		key = contentHash(batch)
		if cached, ok, err := o.cache.Get(ctx, key); err != nil {
			return AggregatedResult{}, err
		} else if ok {
			return cached, nil
		}
	}

	result := o.execute(ctx, batch)

	if o.cache != nil {
		if err := o.cache.Set(ctx, key, result); err != nil {
			return result, err
		}
	}
	return result, nil
}

func (o *Orchestrator) execute(ctx context.Context, batch Batch) AggregatedResult {
	started := o.now()
	rules := batch.sortedRules()
	txn := policy.NewPolicyTransaction(o.id(), batch.NodeID, started)

	result := AggregatedResult{
		NodeID:     batch.NodeID,
		BatchID:    o.id(),
		TotalRules: len(rules),
		Results:    make([]policy.PolicyExecutionResult, 0, len(rules)),
	}

	for _, r := range rules {
		execResult := policy.ExecuteRule(ctx, r.Rule, batch.EvalCtx, txn, o.writer)
		result.Results = append(result.Results, execResult)
		tallyInto(&result, execResult)
	}

	result.ExecutionDuration = o.now().Sub(started)
	result.Summary = summarize(result)
	if o.log != nil {
		o.log.WithField("node_id", result.NodeID).WithField("batch_id", result.BatchID).
			WithField("compliance_failures", result.ComplianceFailures).
			WithField("error_rules", result.ErrorRules).
			Info(result.Summary)
	}
	return result
}

// tallyInto updates result's rule counters per spec's counting rules:
//   - Satisfied + Success -> satisfied only.
//   - Satisfied + ComplianceFailure -> failed and compliance_failures.
//   - Satisfied + Error -> error only.
//   - NotSatisfied -> total only ("not applicable").
//   - Error (evaluation) -> error only.
func tallyInto(result *AggregatedResult, r policy.PolicyExecutionResult) {
	switch r.Evaluation.Outcome {
	case policy.EvalError:
		result.ErrorRules++
		return
	case policy.EvalNotSatisfied:
		return
	}

	if r.Action == nil {
		return
	}
	switch r.Action.Result.Kind {
	case policy.ActionResultSuccess:
		result.SatisfiedRules++
	case policy.ActionResultComplianceFailure:
		result.FailedRules++
		result.ComplianceFailures++
	case policy.ActionResultError:
		result.ErrorRules++
	}
}

func summarize(r AggregatedResult) string {
	if r.TotalRules == 0 {
		return "empty batch"
	}
	return formatSummary(r)
}

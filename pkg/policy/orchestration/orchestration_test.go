package orchestration

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opsnet/unet/pkg/models"
	"github.com/opsnet/unet/pkg/policy"
	"github.com/opsnet/unet/pkg/value"
)

// fakeWriter is a minimal policy.NodeCustomDataWriter recording the last
// patch applied per node, without pulling in a full storage.Datastore.
type fakeWriter struct {
	patches map[string][]value.Value
}

func newFakeWriter() *fakeWriter { return &fakeWriter{patches: make(map[string][]value.Value)} }

func (w *fakeWriter) UpdateNodeCustomData(_ context.Context, nodeID string, patch value.Value) error {
	w.patches[nodeID] = append(w.patches[nodeID], patch)
	return nil
}

func rule(id string, cond policy.Condition, action policy.Action) policy.PolicyRule {
	return policy.PolicyRule{ID: id, Condition: cond, Action: action}
}

func evalCtxFor(custom map[string]value.Value) *models.EvaluationContext {
	return &models.EvaluationContext{NodeData: value.Map(map[string]value.Value{"custom_data": value.Map(custom)})}
}

func TestOrchestrator_SchedulesByPriorityDescThenOrderAsc(t *testing.T) {
	var executionOrder []string
	rules := []OrchestrationRule{
		{Rule: rule("low", policy.True(), policy.Set(value.ParseFieldRef("custom_data.a"), value.Int(1))), Priority: PriorityLow, Order: 0},
		{Rule: rule("crit-1", policy.True(), policy.Set(value.ParseFieldRef("custom_data.b"), value.Int(2))), Priority: PriorityCritical, Order: 1},
		{Rule: rule("crit-0", policy.True(), policy.Set(value.ParseFieldRef("custom_data.c"), value.Int(3))), Priority: PriorityCritical, Order: 0},
		{Rule: rule("med", policy.True(), policy.Set(value.ParseFieldRef("custom_data.d"), value.Int(4))), Priority: PriorityMedium, Order: 0},
	}
	batch := Batch{NodeID: "n1", EvalCtx: evalCtxFor(nil), Rules: rules}

	for _, r := range batch.sortedRules() {
		executionOrder = append(executionOrder, r.Rule.ID)
	}
	assert.Equal(t, []string{"crit-0", "crit-1", "med", "low"}, executionOrder)
}

func TestOrchestrator_ExecuteBatch_LaterRuleSeesEarlierSet(t *testing.T) {
	writer := newFakeWriter()
	o := New(writer)

	rules := []OrchestrationRule{
		{Rule: rule("set-vendor", policy.True(), policy.Set(value.ParseFieldRef("custom_data.vendor"), value.String("cisco"))), Priority: PriorityHigh, Order: 0},
		{
			Rule: rule("assert-vendor",
				policy.Comparison(value.ParseFieldRef("custom_data.vendor"), policy.OpEqual, value.String("cisco")),
				policy.Assert(value.ParseFieldRef("custom_data.vendor"), value.String("cisco")),
			),
			Priority: PriorityHigh, Order: 1,
		},
	}
	batch := Batch{NodeID: "n1", EvalCtx: evalCtxFor(nil), Rules: rules}

	result, err := o.ExecuteBatch(context.Background(), batch)
	require.NoError(t, err)
	assert.Equal(t, 2, result.TotalRules)
	assert.Equal(t, 2, result.SatisfiedRules)
	assert.Equal(t, 0, result.FailedRules)
	assert.Equal(t, 100.0, result.SuccessRate())
}

func TestOrchestrator_AggregatedResult_CountsComplianceFailuresAndErrors(t *testing.T) {
	writer := newFakeWriter()
	o := New(writer)

	rules := []OrchestrationRule{
		{Rule: rule("compliant", policy.True(), policy.Assert(value.ParseFieldRef("custom_data.vendor"), value.String("cisco"))), Priority: PriorityMedium, Order: 0},
		{Rule: rule("not-applicable", policy.False(), policy.Set(value.ParseFieldRef("custom_data.x"), value.Int(1))), Priority: PriorityMedium, Order: 1},
		{Rule: rule("missing-field", policy.True(), policy.Assert(value.ParseFieldRef("custom_data.missing"), value.String("x"))), Priority: PriorityMedium, Order: 2},
	}
	batch := Batch{NodeID: "n1", EvalCtx: evalCtxFor(map[string]value.Value{"vendor": value.String("juniper")}), Rules: rules}

	result, err := o.ExecuteBatch(context.Background(), batch)
	require.NoError(t, err)

	assert.Equal(t, 3, result.TotalRules)
	assert.Equal(t, 1, result.FailedRules)
	assert.Equal(t, 1, result.ComplianceFailures)
	assert.Equal(t, 1, result.ErrorRules)
	assert.Equal(t, 0, result.SatisfiedRules)
	assert.True(t, result.SuccessRate() < 100.0 && result.SuccessRate() > 0)
}

func TestOrchestrator_EmptyBatch_SuccessRateIsFullyCompliant(t *testing.T) {
	o := New(newFakeWriter())
	result, err := o.ExecuteBatch(context.Background(), Batch{NodeID: "n1", EvalCtx: evalCtxFor(nil)})
	require.NoError(t, err)
	assert.Equal(t, 100.0, result.SuccessRate())
}

func TestOrchestrator_Submit_ReplacesPendingBatchForSameNode(t *testing.T) {
	o := New(newFakeWriter())
	o.Submit(Batch{NodeID: "n1", EvalCtx: evalCtxFor(nil), Rules: []OrchestrationRule{
		{Rule: rule("first", policy.True(), policy.Set(value.ParseFieldRef("custom_data.a"), value.Int(1)))},
	}})
	o.Submit(Batch{NodeID: "n1", EvalCtx: evalCtxFor(nil), Rules: []OrchestrationRule{
		{Rule: rule("second", policy.True(), policy.Set(value.ParseFieldRef("custom_data.a"), value.Int(2)))},
	}})
	assert.Equal(t, 1, o.Pending())

	results, err := o.ExecutePendingBatches(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Len(t, results[0].Results, 1)
	assert.Equal(t, "second", results[0].Results[0].Rule.ID)
	assert.Equal(t, 0, o.Pending())
}

func TestOrchestrator_CacheHitSkipsExecution(t *testing.T) {
	writer := newFakeWriter()
	cache := NewMemoryCache(time.Minute)
	o := New(writer, WithCache(cache))

	makeBatch := func() Batch {
		return Batch{NodeID: "n1", EvalCtx: evalCtxFor(nil), Rules: []OrchestrationRule{
			{Rule: rule("set-a", policy.True(), policy.Set(value.ParseFieldRef("custom_data.a"), value.Int(1)))},
		}}
	}

	first, err := o.ExecuteBatch(context.Background(), makeBatch())
	require.NoError(t, err)
	assert.Len(t, writer.patches["n1"], 1)

	_, err = o.ExecuteBatch(context.Background(), makeBatch())
	require.NoError(t, err)
	// Cache hit: the writer must not see a second patch.
	assert.Len(t, writer.patches["n1"], 1)
	assert.Equal(t, 1, cache.Size())
	_ = first
}

func TestMemoryCache_EvictExpired(t *testing.T) {
	now := time.Now()
	cache := NewMemoryCache(time.Millisecond)
	cache.now = func() time.Time { return now }
	require.NoError(t, cache.Set(context.Background(), "k", AggregatedResult{NodeID: "n1"}))

	cache.now = func() time.Time { return now.Add(time.Second) }
	cache.EvictExpired()
	assert.Equal(t, 0, cache.Size())

	_, ok, err := cache.Get(context.Background(), "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestContentHash_SameRuleSetSameHashDifferentEvalCtx(t *testing.T) {
	rules := []OrchestrationRule{
		{Rule: rule("r1", policy.True(), policy.Set(value.ParseFieldRef("custom_data.a"), value.Int(1)))},
	}
	h1 := contentHash(Batch{NodeID: "n1", EvalCtx: evalCtxFor(map[string]value.Value{"x": value.Int(1)}), Rules: rules})
	h2 := contentHash(Batch{NodeID: "n1", EvalCtx: evalCtxFor(map[string]value.Value{"x": value.Int(999)}), Rules: rules})
	assert.Equal(t, h1, h2)
}

func TestContentHash_DifferentRuleSetDifferentHash(t *testing.T) {
	h1 := contentHash(Batch{NodeID: "n1", EvalCtx: evalCtxFor(nil), Rules: []OrchestrationRule{
		{Rule: rule("r1", policy.True(), policy.Set(value.ParseFieldRef("custom_data.a"), value.Int(1)))},
	}})
	h2 := contentHash(Batch{NodeID: "n1", EvalCtx: evalCtxFor(nil), Rules: []OrchestrationRule{
		{Rule: rule("r1", policy.True(), policy.Set(value.ParseFieldRef("custom_data.a"), value.Int(2)))},
	}})
	assert.NotEqual(t, h1, h2)
}

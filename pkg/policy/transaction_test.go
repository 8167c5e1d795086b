package policy

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opsnet/unet/pkg/models"
	"github.com/opsnet/unet/pkg/value"
)

func TestPolicyTransaction_RollbackCompletenessAfterBatchOfSets(t *testing.T) {
	evalCtx := &models.EvaluationContext{NodeData: value.Map(map[string]value.Value{
		"vendor":      value.String("cisco"),
		"custom_data": value.Map(map[string]value.Value{"existing": value.String("keep")}),
	})}
	preBatchCustomData := value.Clone(customDataOf(evalCtx.NodeData))

	txn := NewPolicyTransaction("txn-1", "node-1", time.Now())
	writer := &recordingWriter{}

	rules := []PolicyRule{
		{Condition: True(), Action: Set(value.ParseFieldRef("custom_data.tagged"), value.String("true"))},
		{Condition: True(), Action: Set(value.ParseFieldRef("custom_data.existing"), value.String("overwritten"))},
	}
	for _, rule := range rules {
		result := ExecuteRule(context.Background(), rule, evalCtx, txn, writer)
		require.Equal(t, ActionResultSuccess, result.Action.Result.Kind)
	}

	snapshot, taken := txn.Snapshot()
	require.True(t, taken)
	assert.True(t, value.Equal(preBatchCustomData, snapshot))

	outcome := txn.Rollback(context.Background(), evalCtx, writer)
	require.False(t, outcome.Failed())

	assert.True(t, value.Equal(preBatchCustomData, customDataOf(evalCtx.NodeData)))
}

func TestPolicyTransaction_RollbackAttemptsAllStepsOnFailure(t *testing.T) {
	evalCtx := &models.EvaluationContext{NodeData: value.Map(map[string]value.Value{
		"custom_data": value.NewMap(),
	})}
	txn := NewPolicyTransaction("txn-2", "node-1", time.Now())

	txn.Record(SetRollback{Field: value.ParseFieldRef("custom_data.a"), Existed: false})
	txn.Record(SetRollback{Field: value.ParseFieldRef("custom_data.b"), Existed: false})

	failingWriter := &recordingWriter{err: assertErr{"unreachable"}}
	outcome := txn.Rollback(context.Background(), evalCtx, failingWriter)

	assert.True(t, outcome.Failed())
	assert.Len(t, outcome.Steps, 2)
	assert.Error(t, outcome.Err())
	assert.Equal(t, 2, failingWriter.calls)
}

func TestPolicyTransaction_SnapshotOnlyTakenOnce(t *testing.T) {
	txn := NewPolicyTransaction("txn-3", "node-1", time.Now())
	first := value.Map(map[string]value.Value{"a": value.Int(1)})
	second := value.Map(map[string]value.Value{"a": value.Int(2)})

	txn.SnapshotCustomData(first)
	txn.SnapshotCustomData(second)

	snapshot, _ := txn.Snapshot()
	assert.True(t, value.Equal(first, snapshot))
}

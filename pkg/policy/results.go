package policy

import (
	"context"

	"github.com/opsnet/unet/pkg/models"
	"github.com/opsnet/unet/pkg/value"
)

const customDataKey = "custom_data"

func customDataOf(nodeData value.Value) value.Value {
	if nodeData.Kind() != value.KindMap {
		return value.NewMap()
	}
	if cd, ok := nodeData.Get(customDataKey); ok {
		return cd
	}
	return value.NewMap()
}

// PolicyExecutionResult is the per-rule outcome of one pass through the
// condition evaluator and, when satisfied, the action executor.
type PolicyExecutionResult struct {
	Rule       PolicyRule
	Evaluation EvaluationResult
	Action     *ActionExecutionResult
}

// ExecuteRule evaluates rule's condition against evalCtx and, if satisfied,
// executes its action against txn. A Set action snapshots the node's
// custom_data into txn the first time it runs in the transaction. Per-rule
// errors (evaluation or action) are surfaced in the returned result; they
// do not stop the caller from continuing with the rest of the batch.
func ExecuteRule(ctx context.Context, rule PolicyRule, evalCtx *models.EvaluationContext, txn *PolicyTransaction, writer NodeCustomDataWriter) PolicyExecutionResult {
	evaluation := Evaluate(rule.Condition, *evalCtx)
	result := PolicyExecutionResult{Rule: rule, Evaluation: evaluation}
	if evaluation.Outcome != EvalSatisfied {
		return result
	}

	if rule.Action.Kind == ActionSet {
		txn.SnapshotCustomData(customDataOf(evalCtx.NodeData))
	}

	actionResult := ExecuteAction(ctx, txn.NodeID, rule.Action, evalCtx, writer)
	result.Action = &actionResult
	if actionResult.Rollback != nil {
		txn.Record(actionResult.Rollback)
	}
	return result
}

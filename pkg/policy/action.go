package policy

import (
	"context"

	"github.com/opsnet/unet/pkg/models"
	"github.com/opsnet/unet/pkg/value"
)

// NodeCustomDataWriter is the slice of the datastore contract action
// execution needs: persisting a Set action's write. Defined narrowly here
// rather than importing the storage package, so storage.Datastore can
// satisfy it structurally.
type NodeCustomDataWriter interface {
	UpdateNodeCustomData(ctx context.Context, nodeID string, patch value.Value) error
}

// ActionResultKind discriminates the outcome of executing a single Action.
type ActionResultKind int

const (
	ActionResultSuccess ActionResultKind = iota
	ActionResultComplianceFailure
	ActionResultError
)

// ActionResult is the outcome of running one Action.
type ActionResult struct {
	Kind     ActionResultKind
	Message  string
	Field    FieldRef    // ComplianceFailure
	Expected value.Value // ComplianceFailure
	Actual   value.Value // ComplianceFailure
}

func actionSuccess(message string) ActionResult {
	return ActionResult{Kind: ActionResultSuccess, Message: message}
}

func actionComplianceFailure(field FieldRef, expected, actual value.Value) ActionResult {
	return ActionResult{Kind: ActionResultComplianceFailure, Field: field, Expected: expected, Actual: actual}
}

func actionError(message string) ActionResult {
	return ActionResult{Kind: ActionResultError, Message: message}
}

// RollbackRecord is a reverse operation captured during action execution,
// consumed in LIFO order by PolicyTransaction.Rollback.
type RollbackRecord interface {
	isRollbackRecord()
}

// SetRollback restores the value a field held before a Set action
// overwrote it.
type SetRollback struct {
	Field         FieldRef
	PreviousValue value.Value
	Existed       bool
}

func (SetRollback) isRollbackRecord() {}

// AssertRollback is a no-op rollback marker: Assert never mutates state.
type AssertRollback struct{}

func (AssertRollback) isRollbackRecord() {}

// ApplyRollback records the template path an ApplyTemplate action
// delegated to; the template engine itself owns any undo semantics.
type ApplyRollback struct {
	TemplatePath string
}

func (ApplyRollback) isRollbackRecord() {}

// ActionExecutionResult pairs an action's outcome with the rollback record
// it produced.
type ActionExecutionResult struct {
	Result ActionResult
	// Rollback is excluded from JSON encoding: it is only meaningful while
	// a batch's transaction is still live, and a concrete RollbackRecord
	// does not round-trip through an interface-typed JSON field anyway.
	Rollback RollbackRecord `json:"-"`
}

// ExecuteAction runs action against evalCtx's node data, persisting any
// write through writer and returning the rollback record needed to undo it.
func ExecuteAction(ctx context.Context, nodeID string, action Action, evalCtx *models.EvaluationContext, writer NodeCustomDataWriter) ActionExecutionResult {
	switch action.Kind {
	case ActionAssert:
		return executeAssert(action, evalCtx)
	case ActionSet:
		return executeSet(ctx, nodeID, action, evalCtx, writer)
	case ActionApplyTemplate:
		return ActionExecutionResult{
			Result:   actionSuccess("template " + action.TemplatePath + " applied"),
			Rollback: ApplyRollback{TemplatePath: action.TemplatePath},
		}
	default:
		return ActionExecutionResult{Result: actionError("unknown action kind")}
	}
}

func executeAssert(action Action, evalCtx *models.EvaluationContext) ActionExecutionResult {
	actual, ok := evalCtx.Resolve(action.Field.String())
	if !ok {
		return ActionExecutionResult{
			Result:   actionError((&FieldNotFoundError{Field: action.Field.String()}).Error()),
			Rollback: AssertRollback{},
		}
	}
	if !value.Equal(actual, action.Expected) {
		return ActionExecutionResult{
			Result:   actionComplianceFailure(action.Field, action.Expected, actual),
			Rollback: AssertRollback{},
		}
	}
	return ActionExecutionResult{
		Result:   actionSuccess("assertion held for " + action.Field.String()),
		Rollback: AssertRollback{},
	}
}

func executeSet(ctx context.Context, nodeID string, action Action, evalCtx *models.EvaluationContext, writer NodeCustomDataWriter) ActionExecutionResult {
	previous, existed := value.Resolve(evalCtx.NodeData, action.Field)

	if evalCtx.NodeData.Kind() != value.KindMap {
		evalCtx.NodeData = value.NewMap()
	}
	if !value.SetPath(&evalCtx.NodeData, action.Field, action.Value) {
		return ActionExecutionResult{Result: actionError("field " + action.Field.String() + " is not writable")}
	}

	if writer != nil {
		patch := value.BuildPath(action.Field, action.Value)
		if err := writer.UpdateNodeCustomData(ctx, nodeID, patch); err != nil {
			return ActionExecutionResult{Result: actionError(err.Error())}
		}
	}

	return ActionExecutionResult{
		Result: actionSuccess("set " + action.Field.String()),
		Rollback: SetRollback{
			Field:         action.Field,
			PreviousValue: previous,
			Existed:       existed,
		},
	}
}

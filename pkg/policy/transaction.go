package policy

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/opsnet/unet/pkg/models"
	"github.com/opsnet/unet/pkg/value"
)

// PolicyTransaction owns the rollback stack for one rule batch executed
// against a single node, from the first Set until the batch commits or the
// orchestrator decides to roll it back.
type PolicyTransaction struct {
	TransactionID string
	NodeID        string
	StartedAt     time.Time

	stack         []RollbackRecord
	snapshot      value.Value
	snapshotTaken bool
}

// NewPolicyTransaction starts a transaction for nodeID with an empty
// rollback stack.
func NewPolicyTransaction(transactionID, nodeID string, startedAt time.Time) *PolicyTransaction {
	return &PolicyTransaction{TransactionID: transactionID, NodeID: nodeID, StartedAt: startedAt}
}

// SnapshotCustomData records customData as the pre-batch state, the first
// time it is called. Later calls within the same transaction are no-ops.
func (t *PolicyTransaction) SnapshotCustomData(customData value.Value) {
	if t.snapshotTaken {
		return
	}
	t.snapshot = value.Clone(customData)
	t.snapshotTaken = true
}

// Snapshot returns the pre-batch custom_data tree and whether one was ever
// taken.
func (t *PolicyTransaction) Snapshot() (value.Value, bool) {
	return t.snapshot, t.snapshotTaken
}

// Record appends a rollback record to the top of the stack.
func (t *PolicyTransaction) Record(rb RollbackRecord) {
	t.stack = append(t.stack, rb)
}

// Stack returns the rollback records recorded so far, oldest first.
func (t *PolicyTransaction) Stack() []RollbackRecord {
	return t.stack
}

// RollbackStepOutcome is the result of undoing a single rollback record.
type RollbackStepOutcome struct {
	Record RollbackRecord
	Err    error
}

// RollbackOutcome is the join of every step's outcome: rollback always
// attempts every record in the stack even after a step fails.
type RollbackOutcome struct {
	Steps []RollbackStepOutcome
}

// Failed reports whether any step of the rollback failed.
func (o RollbackOutcome) Failed() bool {
	for _, s := range o.Steps {
		if s.Err != nil {
			return true
		}
	}
	return false
}

// Err joins every failed step's error, or nil if every step succeeded.
func (o RollbackOutcome) Err() error {
	var errs []error
	for _, s := range o.Steps {
		if s.Err != nil {
			errs = append(errs, s.Err)
		}
	}
	return errors.Join(errs...)
}

// Rollback replays the stack in LIFO order, restoring evalCtx.NodeData
// in-place and re-persisting each restored value through writer. A failed
// step does not stop the remaining rollbacks from being attempted.
func (t *PolicyTransaction) Rollback(ctx context.Context, evalCtx *models.EvaluationContext, writer NodeCustomDataWriter) RollbackOutcome {
	var outcome RollbackOutcome
	for i := len(t.stack) - 1; i >= 0; i-- {
		rec := t.stack[i]
		err := applyRollback(ctx, t.NodeID, rec, evalCtx, writer)
		outcome.Steps = append(outcome.Steps, RollbackStepOutcome{Record: rec, Err: err})
	}
	return outcome
}

func applyRollback(ctx context.Context, nodeID string, rec RollbackRecord, evalCtx *models.EvaluationContext, writer NodeCustomDataWriter) error {
	switch r := rec.(type) {
	case SetRollback:
		if evalCtx.NodeData.Kind() != value.KindMap {
			evalCtx.NodeData = value.NewMap()
		}
		if r.Existed {
			value.SetPath(&evalCtx.NodeData, r.Field, r.PreviousValue)
		} else {
			value.DeletePath(&evalCtx.NodeData, r.Field)
		}
		if writer == nil {
			return nil
		}
		restored := r.PreviousValue
		if !r.Existed {
			restored = value.Null()
		}
		return writer.UpdateNodeCustomData(ctx, nodeID, value.BuildPath(r.Field, restored))
	case AssertRollback:
		return nil
	case ApplyRollback:
		return nil
	default:
		return fmt.Errorf("unknown rollback record type %T", rec)
	}
}

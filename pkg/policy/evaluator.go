package policy

import (
	"strconv"
	"strings"

	"github.com/opsnet/unet/pkg/models"
	"github.com/opsnet/unet/pkg/value"
)

// EvalOutcome classifies the result of evaluating a Condition.
type EvalOutcome int

const (
	EvalSatisfied EvalOutcome = iota
	EvalNotSatisfied
	EvalError
)

// EvaluationResult is the outcome of evaluating a Condition against an
// EvaluationContext.
type EvaluationResult struct {
	Outcome EvalOutcome
	// Err is excluded from JSON encoding: the error interface does not
	// round-trip through an interface-typed JSON field.
	Err error `json:"-"`
}

func satisfied() EvaluationResult    { return EvaluationResult{Outcome: EvalSatisfied} }
func notSatisfied() EvaluationResult { return EvaluationResult{Outcome: EvalNotSatisfied} }
func evalErr(err error) EvaluationResult {
	return EvaluationResult{Outcome: EvalError, Err: err}
}

// Evaluate walks cond against ctx, implementing spec's short-circuit
// And/Or, error-propagating Not, and coercion rules for comparisons.
func Evaluate(cond Condition, ctx models.EvaluationContext) EvaluationResult {
	switch cond.Kind {
	case CondTrue:
		return satisfied()
	case CondFalse:
		return notSatisfied()
	case CondComparison:
		return evalComparison(cond, ctx)
	case CondExistence:
		return evalExistence(cond, ctx)
	case CondAnd:
		left := Evaluate(*cond.Left, ctx)
		if left.Outcome == EvalError {
			return left
		}
		if left.Outcome == EvalNotSatisfied {
			return notSatisfied()
		}
		return Evaluate(*cond.Right, ctx)
	case CondOr:
		left := Evaluate(*cond.Left, ctx)
		if left.Outcome == EvalError {
			return left
		}
		if left.Outcome == EvalSatisfied {
			return satisfied()
		}
		return Evaluate(*cond.Right, ctx)
	case CondNot:
		inner := Evaluate(*cond.Operand, ctx)
		if inner.Outcome == EvalError {
			return inner
		}
		if inner.Outcome == EvalSatisfied {
			return notSatisfied()
		}
		return satisfied()
	default:
		return evalErr(&EvaluationError{Message: "unknown condition kind"})
	}
}

func evalExistence(cond Condition, ctx models.EvaluationContext) EvaluationResult {
	resolved, ok := ctx.Resolve(cond.Field.String())
	absentOrNull := !ok || resolved.IsNull()
	if cond.IsNull == absentOrNull {
		return satisfied()
	}
	return notSatisfied()
}

func evalComparison(cond Condition, ctx models.EvaluationContext) EvaluationResult {
	resolved, ok := ctx.Resolve(cond.Field.String())
	if !ok {
		return evalErr(&FieldNotFoundError{Field: cond.Field.String()})
	}

	switch cond.Op {
	case OpEqual, OpNotEqual:
		// Against a number, the other side coerces under coerceNumeric's
		// rules; otherwise equality is type-aware.
		equal := value.Equal(resolved, cond.Value)
		lk, rk := resolved.Kind(), cond.Value.Kind()
		if lk == value.KindInt || lk == value.KindFloat || rk == value.KindInt || rk == value.KindFloat {
			lf, lok := coerceNumeric(resolved)
			rf, rok := coerceNumeric(cond.Value)
			if lok && rok {
				equal = lf == rf
			}
		}
		return boolResult(equal == (cond.Op == OpEqual))
	case OpLessThan, OpLessThanOrEqual, OpGreaterThan, OpGreaterThanOrEqual:
		return evalNumericComparison(cond.Op, resolved, cond.Value)
	case OpContains:
		return evalContains(resolved, cond.Value)
	case OpMatches:
		return evalMatches(resolved, cond.Value)
	default:
		return evalErr(&EvaluationError{Message: "unknown comparison operator"})
	}
}

func boolResult(b bool) EvaluationResult {
	if b {
		return satisfied()
	}
	return notSatisfied()
}

// coerceNumeric converts a Value to float64 under spec's comparison
// coercion rules: numeric-valued strings and booleans (false=0, true=1)
// coerce; anything else is not coercible.
func coerceNumeric(v value.Value) (float64, bool) {
	switch v.Kind() {
	case value.KindInt:
		i, _ := v.AsInt()
		return float64(i), true
	case value.KindFloat:
		f, _ := v.AsFloat()
		return f, true
	case value.KindBool:
		b, _ := v.AsBool()
		if b {
			return 1, true
		}
		return 0, true
	case value.KindString:
		s, _ := v.AsString()
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

func evalNumericComparison(op ComparisonOp, lhs, rhs value.Value) EvaluationResult {
	lf, lok := coerceNumeric(lhs)
	rf, rok := coerceNumeric(rhs)
	if !lok || !rok {
		return evalErr(&TypeMismatchError{Details: "both operands must be numeric-coercible for ordered comparison"})
	}
	switch op {
	case OpLessThan:
		return boolResult(lf < rf)
	case OpLessThanOrEqual:
		return boolResult(lf <= rf)
	case OpGreaterThan:
		return boolResult(lf > rf)
	case OpGreaterThanOrEqual:
		return boolResult(lf >= rf)
	default:
		return evalErr(&EvaluationError{Message: "not a numeric comparison operator"})
	}
}

func evalContains(lhs, rhs value.Value) EvaluationResult {
	switch lhs.Kind() {
	case value.KindSequence:
		items, _ := lhs.AsSequence()
		for _, item := range items {
			if value.Equal(item, rhs) {
				return satisfied()
			}
		}
		return notSatisfied()
	case value.KindString:
		haystack, _ := lhs.AsString()
		needle, ok := rhs.AsString()
		if !ok {
			return evalErr(&TypeMismatchError{Details: "CONTAINS on a string requires a string operand"})
		}
		return boolResult(strings.Contains(strings.ToLower(haystack), strings.ToLower(needle)))
	default:
		return evalErr(&TypeMismatchError{Details: "CONTAINS requires a sequence or string field"})
	}
}

func evalMatches(lhs, rhs value.Value) EvaluationResult {
	if rhs.Kind() != value.KindRegex {
		return evalErr(&TypeMismatchError{Details: "MATCHES requires a regex operand"})
	}
	haystack, ok := lhs.AsString()
	if !ok {
		return evalErr(&TypeMismatchError{Details: "MATCHES requires a string field"})
	}
	matched, err := rhs.Matches(haystack)
	if err != nil {
		var invalid value.InvalidRegexError
		if ok := asInvalidRegex(err, &invalid); ok {
			return evalErr(&InvalidRegexError{Pattern: invalid.Pattern})
		}
		return evalErr(&EvaluationError{Message: err.Error()})
	}
	return boolResult(matched)
}

func asInvalidRegex(err error, target *value.InvalidRegexError) bool {
	invalid, ok := err.(value.InvalidRegexError)
	if !ok {
		return false
	}
	*target = invalid
	return true
}

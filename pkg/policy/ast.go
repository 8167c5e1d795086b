// Package policy implements the condition/action rule DSL: its AST,
// parser, evaluator, and action executor with rollback.
package policy

import "github.com/opsnet/unet/pkg/value"

// ComparisonOp enumerates the comparison operators usable in a Comparison
// condition.
type ComparisonOp int

const (
	OpEqual ComparisonOp = iota
	OpNotEqual
	OpLessThan
	OpLessThanOrEqual
	OpGreaterThan
	OpGreaterThanOrEqual
	OpContains
	OpMatches
)

func (op ComparisonOp) String() string {
	switch op {
	case OpEqual:
		return "=="
	case OpNotEqual:
		return "!="
	case OpLessThan:
		return "<"
	case OpLessThanOrEqual:
		return "<="
	case OpGreaterThan:
		return ">"
	case OpGreaterThanOrEqual:
		return ">="
	case OpContains:
		return "CONTAINS"
	case OpMatches:
		return "MATCHES"
	default:
		return "?"
	}
}

// ConditionKind discriminates the Condition sum type.
type ConditionKind int

const (
	CondTrue ConditionKind = iota
	CondFalse
	CondComparison
	CondExistence
	CondAnd
	CondOr
	CondNot
)

// Condition is the recursive boolean expression tree evaluated against an
// EvaluationContext.
type Condition struct {
	Kind ConditionKind

	// Comparison
	Field FieldRef
	Op    ComparisonOp
	Value value.Value

	// Existence
	IsNull bool

	// And/Or
	Left, Right *Condition

	// Not
	Operand *Condition
}

// FieldRef is the dotted field path a condition or action refers to, kept
// as a type alias in this package so callers don't need to import
// pkg/value directly for simple construction.
type FieldRef = value.FieldRef

// ActionKind discriminates the Action sum type.
type ActionKind int

const (
	ActionAssert ActionKind = iota
	ActionSet
	ActionApplyTemplate
)

// Action is the side-effecting half of a rule, applied once its Condition
// is satisfied.
type Action struct {
	Kind ActionKind

	// Assert / Set
	Field    FieldRef
	Expected value.Value // Assert
	Value    value.Value // Set

	// ApplyTemplate
	TemplatePath string
}

// PolicyRule pairs a condition with the action to take when it holds.
type PolicyRule struct {
	ID        string
	Condition Condition
	Action    Action
}

// True constructs the constant-true condition.
func True() Condition { return Condition{Kind: CondTrue} }

// False constructs the constant-false condition.
func False() Condition { return Condition{Kind: CondFalse} }

// Comparison constructs a field/operator/value comparison condition.
func Comparison(field FieldRef, op ComparisonOp, val value.Value) Condition {
	return Condition{Kind: CondComparison, Field: field, Op: op, Value: val}
}

// Existence constructs an IS [NOT] NULL condition.
func Existence(field FieldRef, isNull bool) Condition {
	return Condition{Kind: CondExistence, Field: field, IsNull: isNull}
}

// And combines two conditions, short-circuiting left to right.
func And(left, right Condition) Condition {
	return Condition{Kind: CondAnd, Left: &left, Right: &right}
}

// Or combines two conditions, short-circuiting left to right.
func Or(left, right Condition) Condition {
	return Condition{Kind: CondOr, Left: &left, Right: &right}
}

// Not negates a condition. An evaluation error inside Not propagates
// unchanged rather than being inverted.
func Not(operand Condition) Condition {
	return Condition{Kind: CondNot, Operand: &operand}
}

// Assert constructs an action that compares a field to an expected value.
func Assert(field FieldRef, expected value.Value) Action {
	return Action{Kind: ActionAssert, Field: field, Expected: expected}
}

// Set constructs an action that writes a value to a field.
func Set(field FieldRef, val value.Value) Action {
	return Action{Kind: ActionSet, Field: field, Value: val}
}

// ApplyTemplate constructs an action delegating to the (external)
// template engine.
func ApplyTemplate(templatePath string) Action {
	return Action{Kind: ActionApplyTemplate, TemplatePath: templatePath}
}

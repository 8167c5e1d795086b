package policy

import "fmt"

// ParseError reports a malformed DSL construct at a byte offset in the
// source text.
type ParseError struct {
	Position int
	Reason   string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at position %d: %s", e.Position, e.Reason)
}

// FieldNotFoundError is returned when a Comparison or Assert condition
// resolves a field that is absent from the evaluation context.
type FieldNotFoundError struct {
	Field string
}

func (e *FieldNotFoundError) Error() string {
	return fmt.Sprintf("field not found: %s", e.Field)
}

// TypeMismatchError is returned when two operands cannot be compared
// under the coercion rules (e.g. a non-numeric string against a number).
type TypeMismatchError struct {
	Details string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("type mismatch: %s", e.Details)
}

// InvalidRegexError is returned when a Matches condition's pattern fails
// to compile.
type InvalidRegexError struct {
	Pattern string
}

func (e *InvalidRegexError) Error() string {
	return fmt.Sprintf("invalid regex pattern: %q", e.Pattern)
}

// EvaluationError wraps any other evaluator failure not covered by a more
// specific kind above.
type EvaluationError struct {
	Message string
}

func (e *EvaluationError) Error() string {
	return e.Message
}

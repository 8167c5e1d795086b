package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/opsnet/unet/pkg/models"
	"github.com/opsnet/unet/pkg/value"
)

func nodeCtx(pairs map[string]value.Value) models.EvaluationContext {
	return models.EvaluationContext{NodeData: value.Map(pairs)}
}

func TestEvaluate_ComparisonFieldNotFound(t *testing.T) {
	ctx := nodeCtx(map[string]value.Value{"vendor": value.String("cisco")})
	result := Evaluate(Comparison(value.ParseFieldRef("node.version"), OpEqual, value.String("15.1")), ctx)
	assert.Equal(t, EvalError, result.Outcome)
	var notFound *FieldNotFoundError
	assert.ErrorAs(t, result.Err, &notFound)
}

func TestEvaluate_NumericCoercion(t *testing.T) {
	ctx := nodeCtx(map[string]value.Value{"threshold": value.String("42")})
	result := Evaluate(Comparison(value.ParseFieldRef("threshold"), OpGreaterThan, value.Int(10)), ctx)
	assert.Equal(t, EvalSatisfied, result.Outcome)
}

func TestEvaluate_NumericCoercion_BoolAsZeroOrOne(t *testing.T) {
	ctx := nodeCtx(map[string]value.Value{"enabled": value.Bool(true)})
	result := Evaluate(Comparison(value.ParseFieldRef("enabled"), OpEqual, value.Int(1)), ctx)
	assert.Equal(t, EvalSatisfied, result.Outcome)
}

func TestEvaluate_NumericCoercion_NonCoercibleTypeMismatch(t *testing.T) {
	ctx := nodeCtx(map[string]value.Value{"vendor": value.String("cisco")})
	result := Evaluate(Comparison(value.ParseFieldRef("vendor"), OpGreaterThan, value.Int(1)), ctx)
	assert.Equal(t, EvalError, result.Outcome)
	var mismatch *TypeMismatchError
	assert.ErrorAs(t, result.Err, &mismatch)
}

func TestEvaluate_ContainsOnSequence(t *testing.T) {
	ctx := nodeCtx(map[string]value.Value{
		"tags": value.Sequence(value.String("edge"), value.String("core")),
	})
	result := Evaluate(Comparison(value.ParseFieldRef("tags"), OpContains, value.String("core")), ctx)
	assert.Equal(t, EvalSatisfied, result.Outcome)
}

func TestEvaluate_ContainsOnString_CaseInsensitive(t *testing.T) {
	ctx := nodeCtx(map[string]value.Value{"model": value.String("Catalyst2960")})
	result := Evaluate(Comparison(value.ParseFieldRef("model"), OpContains, value.String("CAT")), ctx)
	assert.Equal(t, EvalSatisfied, result.Outcome)
}

func TestEvaluate_Matches_InvalidRegex(t *testing.T) {
	ctx := nodeCtx(map[string]value.Value{"model": value.String("cat2960")})
	result := Evaluate(Comparison(value.ParseFieldRef("model"), OpMatches, value.Regex("(unterminated")), ctx)
	assert.Equal(t, EvalError, result.Outcome)
	var invalid *InvalidRegexError
	assert.ErrorAs(t, result.Err, &invalid)
}

func TestEvaluate_Existence(t *testing.T) {
	ctx := nodeCtx(map[string]value.Value{"location": value.Null(), "vendor": value.String("cisco")})

	isNull := Evaluate(Existence(value.ParseFieldRef("location"), true), ctx)
	assert.Equal(t, EvalSatisfied, isNull.Outcome)

	isNotNull := Evaluate(Existence(value.ParseFieldRef("vendor"), false), ctx)
	assert.Equal(t, EvalSatisfied, isNotNull.Outcome)

	missingIsNotNull := Evaluate(Existence(value.ParseFieldRef("missing"), false), ctx)
	assert.Equal(t, EvalNotSatisfied, missingIsNotNull.Outcome)
}

func TestEvaluate_AndOr_ShortCircuit(t *testing.T) {
	ctx := nodeCtx(map[string]value.Value{"vendor": value.String("cisco"), "model": value.String("2960")})

	and := Evaluate(And(
		Comparison(value.ParseFieldRef("vendor"), OpEqual, value.String("cisco")),
		Comparison(value.ParseFieldRef("model"), OpContains, value.String("29")),
	), ctx)
	assert.Equal(t, EvalSatisfied, and.Outcome)

	// Left side true short-circuits Or before the erroring right side is evaluated.
	or := Evaluate(Or(
		Comparison(value.ParseFieldRef("vendor"), OpEqual, value.String("cisco")),
		Comparison(value.ParseFieldRef("nonexistent"), OpEqual, value.String("x")),
	), ctx)
	assert.Equal(t, EvalSatisfied, or.Outcome)
}

func TestEvaluate_Not_PropagatesErrorUnchanged(t *testing.T) {
	ctx := nodeCtx(map[string]value.Value{"vendor": value.String("cisco")})
	result := Evaluate(Not(Comparison(value.ParseFieldRef("missing"), OpEqual, value.String("x"))), ctx)
	assert.Equal(t, EvalError, result.Outcome)
	var notFound *FieldNotFoundError
	assert.ErrorAs(t, result.Err, &notFound)
}

func TestEvaluate_Not_InvertsSatisfaction(t *testing.T) {
	ctx := nodeCtx(map[string]value.Value{"vendor": value.String("cisco")})
	result := Evaluate(Not(Comparison(value.ParseFieldRef("vendor"), OpEqual, value.String("juniper"))), ctx)
	assert.Equal(t, EvalSatisfied, result.Outcome)
}

func TestEvaluate_TrueFalseConstants(t *testing.T) {
	ctx := nodeCtx(nil)
	assert.Equal(t, EvalSatisfied, Evaluate(True(), ctx).Outcome)
	assert.Equal(t, EvalNotSatisfied, Evaluate(False(), ctx).Outcome)
}

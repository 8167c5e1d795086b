package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRules_EmptyInputYieldsNoRules(t *testing.T) {
	rules, err := ParseRules("")
	require.NoError(t, err)
	assert.Empty(t, rules)
}

func TestParseRules_MalformedLineReturnsParseError(t *testing.T) {
	_, err := ParseRules("INVALID SYNTAX")
	require.Error(t, err)
	var parseErr *ParseError
	assert.ErrorAs(t, err, &parseErr)
}

func TestParseRules_SimpleComparisonAndAssert(t *testing.T) {
	rules, err := ParseRules(`WHEN node.vendor == "cisco" THEN ASSERT node.version IS "15.1"`)
	require.NoError(t, err)
	require.Len(t, rules, 1)

	cond := rules[0].Condition
	assert.Equal(t, CondComparison, cond.Kind)
	assert.Equal(t, "node.vendor", cond.Field.String())
	assert.Equal(t, OpEqual, cond.Op)

	action := rules[0].Action
	assert.Equal(t, ActionAssert, action.Kind)
	assert.Equal(t, "node.version", action.Field.String())
}

func TestParseRules_BooleanAndPrecedence(t *testing.T) {
	rules, err := ParseRules(`WHEN node.vendor == "cisco" AND node.model CONTAINS "29" OR node.role == "core" THEN SET custom_data.tagged TO true`)
	require.NoError(t, err)
	require.Len(t, rules, 1)

	// OR binds loosest: top-level node is an Or whose left is the AND clause.
	top := rules[0].Condition
	require.Equal(t, CondOr, top.Kind)
	assert.Equal(t, CondAnd, top.Left.Kind)
	assert.Equal(t, CondComparison, top.Right.Kind)
}

func TestParseRules_NotBindsTighterThanAnd(t *testing.T) {
	rules, err := ParseRules(`WHEN NOT node.vendor == "cisco" AND node.model == "2960" THEN ASSERT node.vendor IS "cisco"`)
	require.NoError(t, err)
	top := rules[0].Condition
	require.Equal(t, CondAnd, top.Kind)
	assert.Equal(t, CondNot, top.Left.Kind)
}

func TestParseRules_ExistenceAndParens(t *testing.T) {
	rules, err := ParseRules(`WHEN (node.location IS NULL) THEN SET custom_data.tagged TO "true"`)
	require.NoError(t, err)
	cond := rules[0].Condition
	assert.Equal(t, CondExistence, cond.Kind)
	assert.True(t, cond.IsNull)
}

func TestParseRules_MatchesRegexLiteral(t *testing.T) {
	rules, err := ParseRules(`WHEN node.model MATCHES /^c\d+/ THEN APPLY "templates/cisco.tmpl"`)
	require.NoError(t, err)
	cond := rules[0].Condition
	assert.Equal(t, OpMatches, cond.Op)
	pattern, ok := cond.Value.AsRegexPattern()
	require.True(t, ok)
	assert.Equal(t, `^c\d+`, pattern)

	action := rules[0].Action
	assert.Equal(t, ActionApplyTemplate, action.Kind)
	assert.Equal(t, "templates/cisco.tmpl", action.TemplatePath)
}

func TestParseRules_CommentsAndBlankLinesIgnored(t *testing.T) {
	rules, err := ParseRules("// a top-level comment\n\nWHEN node.vendor == \"cisco\" THEN ASSERT node.vendor IS \"cisco\" // trailing comment\n")
	require.NoError(t, err)
	assert.Len(t, rules, 1)
}

func TestParseRules_MultipleLines(t *testing.T) {
	rules, err := ParseRules(
		"WHEN node.vendor == \"cisco\" THEN ASSERT node.vendor IS \"cisco\"\n" +
			"WHEN node.vendor == \"juniper\" THEN SET custom_data.tagged TO \"true\"\n")
	require.NoError(t, err)
	assert.Len(t, rules, 2)
}

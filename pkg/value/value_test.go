package value

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve_Total(t *testing.T) {
	tree := Map(map[string]Value{
		"node": Map(map[string]Value{
			"vendor": String("cisco"),
			"nested": Map(map[string]Value{
				"deep": Int(42),
			}),
		}),
	})

	v, ok := ResolvePath(tree, "node.vendor")
	require.True(t, ok)
	s, _ := v.AsString()
	assert.Equal(t, "cisco", s)

	v, ok = ResolvePath(tree, "node.nested.deep")
	require.True(t, ok)
	i, _ := v.AsInt()
	assert.Equal(t, int64(42), i)

	_, ok = ResolvePath(tree, "node.missing")
	assert.False(t, ok)

	_, ok = ResolvePath(tree, "node.vendor.sub")
	assert.False(t, ok, "stepping into a non-map must fail, not panic")

	_, ok = ResolvePath(tree, "")
	assert.True(t, ok, "empty path resolves to the root")
}

func TestResolve_NeverPanics(t *testing.T) {
	cases := []Value{
		Null(),
		Bool(true),
		Int(1),
		String("x"),
		Sequence(Int(1), Int(2)),
	}
	for _, c := range cases {
		assert.NotPanics(t, func() {
			_, ok := ResolvePath(c, "a.b.c")
			assert.False(t, ok)
		})
	}
}

func TestRegex_LazyCompileAndInvalid(t *testing.T) {
	good := Regex("^cisco-.*$")
	ok, err := good.Matches("cisco-2960")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = good.Matches("juniper")
	require.NoError(t, err)
	assert.False(t, ok)

	bad := Regex("(unterminated")
	_, err = bad.Matches("anything")
	require.Error(t, err)
	var invalid InvalidRegexError
	assert.ErrorAs(t, err, &invalid)
	assert.Equal(t, "(unterminated", invalid.Pattern)
}

func TestEqual_TypeAware(t *testing.T) {
	assert.True(t, Equal(Int(1), Int(1)))
	assert.False(t, Equal(Int(1), Float(1.0)), "int and float are never equal even with the same numeric value")
	assert.False(t, Equal(Bool(true), Int(1)))
	assert.True(t, Equal(Sequence(Int(1), String("a")), Sequence(Int(1), String("a"))))
	assert.False(t, Equal(Sequence(Int(1)), Sequence(Int(1), Int(2))))

	m1 := Map(map[string]Value{"a": Int(1)})
	m2 := Map(map[string]Value{"a": Int(1)})
	assert.True(t, Equal(m1, m2))
}

func TestClone_Independent(t *testing.T) {
	inner := NewMap()
	inner.Set("count", Int(1))
	outer := NewMap()
	outer.Set("inner", inner)

	cloned := Clone(outer)
	innerClone, ok := cloned.Get("inner")
	require.True(t, ok)
	innerClone.Set("count", Int(2))

	original, ok := outer.Get("inner")
	require.True(t, ok)
	count, _ := original.Get("count")
	i, _ := count.AsInt()
	assert.Equal(t, int64(1), i, "mutating a clone must not affect the original")
}

func TestJSONRoundTrip(t *testing.T) {
	tree := NewMap()
	tree.Set("tagged", Bool(true))
	tree.Set("interfaces", Sequence(String("eth0"), String("eth1")))
	tree.Set("empty_seq", Sequence())
	tree.Set("empty_map", NewMap())
	tree.Set("pattern", Regex("^up$"))

	data, err := json.Marshal(tree)
	require.NoError(t, err)

	var decoded Value
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.True(t, Equal(tree, decoded))
}

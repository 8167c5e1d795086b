// Package value implements the self-describing value tree shared by node
// custom data, derived state, and policy evaluation contexts.
package value

import (
	"fmt"
	"regexp"
	"sort"
	"sync"
)

// Kind identifies the concrete shape a Value holds.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindRegex
	KindSequence
	KindMap
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindRegex:
		return "regex"
	case KindSequence:
		return "sequence"
	case KindMap:
		return "map"
	default:
		return "unknown"
	}
}

// Value is one of: null, bool, int64, float64, string, a regex pattern, an
// ordered sequence of values, or a named map of string to value. Exactly one
// of the typed fields is meaningful, selected by Kind.
type Value struct {
	kind Kind

	b   bool
	i   int64
	f   float64
	s   string
	seq []Value
	m   map[string]Value

	// keys preserves map insertion order for deterministic iteration/round-trip.
	keys []string

	re *regexState
}

// regexState holds a regex pattern plus its lazily compiled form. Compilation
// is shared across copies of a Value via the pointer so Matches only pays the
// compile cost once regardless of how many times the Value is copied.
type regexState struct {
	pattern string
	once    sync.Once
	re      *regexp.Regexp
	err     error
}

// Null returns the null value.
func Null() Value { return Value{kind: KindNull} }

// Bool wraps a boolean.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Int wraps a signed integer.
func Int(i int64) Value { return Value{kind: KindInt, i: i} }

// Float wraps a floating point number.
func Float(f float64) Value { return Value{kind: KindFloat, f: f} }

// String wraps a string.
func String(s string) Value { return Value{kind: KindString, s: s} }

// Regex wraps a regex pattern. The pattern is not compiled until first use.
func Regex(pattern string) Value {
	return Value{kind: KindRegex, s: pattern, re: &regexState{pattern: pattern}}
}

// Sequence wraps an ordered list of values. The input slice is copied.
func Sequence(items ...Value) Value {
	cp := make([]Value, len(items))
	copy(cp, items)
	return Value{kind: KindSequence, seq: cp}
}

// Map wraps a named map of values, with its keys ordered alphabetically.
func Map(pairs map[string]Value) Value {
	keys := make([]string, 0, len(pairs))
	for k := range pairs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	m := make(map[string]Value, len(pairs))
	for k, v := range pairs {
		m[k] = v
	}
	return Value{kind: KindMap, m: m, keys: keys}
}

// NewMap starts an empty ordered map that can be built with Set.
func NewMap() Value {
	return Value{kind: KindMap, m: map[string]Value{}}
}

// Kind reports the value's shape.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is the null value.
func (v Value) IsNull() bool { return v.kind == KindNull }

// AsBool returns the boolean payload and whether v is a bool.
func (v Value) AsBool() (bool, bool) { return v.b, v.kind == KindBool }

// AsInt returns the integer payload and whether v is an int.
func (v Value) AsInt() (int64, bool) { return v.i, v.kind == KindInt }

// AsFloat returns the float payload and whether v is a float.
func (v Value) AsFloat() (float64, bool) { return v.f, v.kind == KindFloat }

// AsString returns the string payload and whether v is a string.
func (v Value) AsString() (string, bool) { return v.s, v.kind == KindString }

// AsRegexPattern returns the regex literal pattern and whether v is a regex.
func (v Value) AsRegexPattern() (string, bool) { return v.s, v.kind == KindRegex }

// AsSequence returns the sequence payload and whether v is a sequence.
func (v Value) AsSequence() ([]Value, bool) { return v.seq, v.kind == KindSequence }

// Keys returns the ordered key list for a map value, or nil otherwise.
func (v Value) Keys() []string {
	if v.kind != KindMap {
		return nil
	}
	return v.keys
}

// Get returns the field at key for a map value.
func (v Value) Get(key string) (Value, bool) {
	if v.kind != KindMap {
		return Value{}, false
	}
	val, ok := v.m[key]
	return val, ok
}

// Set inserts or overwrites a key on a map value, preserving first-seen
// order. Set is a no-op if v is not a map.
func (v *Value) Set(key string, val Value) {
	if v.kind != KindMap {
		return
	}
	if v.m == nil {
		v.m = map[string]Value{}
	}
	if _, exists := v.m[key]; !exists {
		v.keys = append(v.keys, key)
	}
	v.m[key] = val
}

// Delete removes key from a map value, preserving the order of remaining
// keys. Delete is a no-op if v is not a map or key is absent.
func (v *Value) Delete(key string) {
	if v.kind != KindMap {
		return
	}
	if _, ok := v.m[key]; !ok {
		return
	}
	delete(v.m, key)
	for i, k := range v.keys {
		if k == key {
			v.keys = append(v.keys[:i], v.keys[i+1:]...)
			break
		}
	}
}

// InvalidRegexError is returned when a regex Value's pattern fails to
// compile at the point it is actually needed (Matches), not at construction.
type InvalidRegexError struct {
	Pattern string
}

func (e InvalidRegexError) Error() string {
	return fmt.Sprintf("invalid regex pattern %q", e.Pattern)
}

// Matches reports whether s matches the regex value, compiling the pattern
// on first call. Returns InvalidRegexError if the pattern does not compile.
func (v Value) Matches(s string) (bool, error) {
	if v.kind != KindRegex || v.re == nil {
		return false, fmt.Errorf("value is not a regex")
	}
	v.re.once.Do(func() {
		v.re.re, v.re.err = regexp.Compile(v.re.pattern)
	})
	if v.re.err != nil {
		return false, InvalidRegexError{Pattern: v.re.pattern}
	}
	return v.re.re.MatchString(s), nil
}

// Equal performs deep, type-aware equality: values of different Kind are
// never equal, even when a loose comparison (e.g. int 1 vs float 1.0) would
// consider them alike.
func Equal(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindNull:
		return true
	case KindBool:
		return a.b == b.b
	case KindInt:
		return a.i == b.i
	case KindFloat:
		return a.f == b.f
	case KindString:
		return a.s == b.s
	case KindRegex:
		return a.s == b.s
	case KindSequence:
		if len(a.seq) != len(b.seq) {
			return false
		}
		for i := range a.seq {
			if !Equal(a.seq[i], b.seq[i]) {
				return false
			}
		}
		return true
	case KindMap:
		if len(a.m) != len(b.m) {
			return false
		}
		for k, av := range a.m {
			bv, ok := b.m[k]
			if !ok || !Equal(av, bv) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// Clone returns a deep copy of v, safe for independent mutation.
func Clone(v Value) Value {
	switch v.kind {
	case KindSequence:
		cp := make([]Value, len(v.seq))
		for i, item := range v.seq {
			cp[i] = Clone(item)
		}
		return Value{kind: KindSequence, seq: cp}
	case KindMap:
		cp := make(map[string]Value, len(v.m))
		for k, val := range v.m {
			cp[k] = Clone(val)
		}
		keys := make([]string, len(v.keys))
		copy(keys, v.keys)
		return Value{kind: KindMap, m: cp, keys: keys}
	case KindRegex:
		return Value{kind: KindRegex, s: v.s, re: v.re}
	default:
		return v
	}
}

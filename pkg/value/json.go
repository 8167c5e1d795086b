package value

import (
	"encoding/json"
	"fmt"
)

// jsonRegex is the wire shape used to distinguish a regex Value from a
// plain string when round-tripping through JSON (CSV custom_data columns,
// SQL JSONB columns).
type jsonRegex struct {
	Regex string `json:"$regex"`
}

// MarshalJSON encodes v preserving the Map/Sequence/scalar distinction that
// a naive map[string]any round-trip loses for empty collections.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNull:
		return []byte("null"), nil
	case KindBool:
		return json.Marshal(v.b)
	case KindInt:
		return json.Marshal(v.i)
	case KindFloat:
		return json.Marshal(v.f)
	case KindString:
		return json.Marshal(v.s)
	case KindRegex:
		return json.Marshal(jsonRegex{Regex: v.s})
	case KindSequence:
		if v.seq == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.seq)
	case KindMap:
		out := make(map[string]Value, len(v.m))
		for k, val := range v.m {
			out[k] = val
		}
		if out == nil {
			out = map[string]Value{}
		}
		return json.Marshal(out)
	default:
		return nil, fmt.Errorf("value: unknown kind %d", v.kind)
	}
}

// UnmarshalJSON decodes v from JSON. Objects become Map values, arrays
// become Sequence values, and an object containing exactly one "$regex"
// string key decodes back to a Regex value.
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*v = fromAny(raw)
	return nil
}

func fromAny(raw any) Value {
	switch t := raw.(type) {
	case nil:
		return Null()
	case bool:
		return Bool(t)
	case float64:
		if t == float64(int64(t)) {
			return Int(int64(t))
		}
		return Float(t)
	case string:
		return String(t)
	case []any:
		items := make([]Value, len(t))
		for i, item := range t {
			items[i] = fromAny(item)
		}
		return Sequence(items...)
	case map[string]any:
		if pattern, ok := regexPattern(t); ok {
			return Regex(pattern)
		}
		pairs := make(map[string]Value, len(t))
		for k, item := range t {
			pairs[k] = fromAny(item)
		}
		return Map(pairs)
	default:
		return Null()
	}
}

func regexPattern(m map[string]any) (string, bool) {
	if len(m) != 1 {
		return "", false
	}
	raw, ok := m["$regex"]
	if !ok {
		return "", false
	}
	pattern, ok := raw.(string)
	return pattern, ok
}

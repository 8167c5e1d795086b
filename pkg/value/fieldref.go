package value

import "strings"

// FieldRef is an ordered list of path segments naming a location in a
// Value tree, e.g. "node.vendor" becomes []string{"node", "vendor"}.
type FieldRef []string

// ParseFieldRef splits a dot-separated path into a FieldRef. An empty
// string yields an empty FieldRef.
func ParseFieldRef(path string) FieldRef {
	if path == "" {
		return FieldRef{}
	}
	return FieldRef(strings.Split(path, "."))
}

// String renders the field reference back to dotted form.
func (f FieldRef) String() string {
	return strings.Join([]string(f), ".")
}

// Resolve walks root following each segment of f. Resolution is read-only
// and total: at every step the current value must be a Map, and the next
// segment must be a key in it; any non-Map step or missing key yields
// (Value{}, false), never an error or panic. Resolving an empty FieldRef
// returns root itself.
func Resolve(root Value, f FieldRef) (Value, bool) {
	cur := root
	for _, segment := range f {
		if cur.Kind() != KindMap {
			return Value{}, false
		}
		next, ok := cur.Get(segment)
		if !ok {
			return Value{}, false
		}
		cur = next
	}
	return cur, true
}

// ResolvePath is a convenience wrapper over Resolve taking a dotted path
// string directly.
func ResolvePath(root Value, path string) (Value, bool) {
	return Resolve(root, ParseFieldRef(path))
}

// SetPath writes val at the location described by f within *root, creating
// intermediate maps as needed. root must already be a Map; SetPath reports
// false (and leaves root untouched) if f is empty or root is not a Map.
func SetPath(root *Value, f FieldRef, val Value) bool {
	if root.Kind() != KindMap || len(f) == 0 {
		return false
	}
	if len(f) == 1 {
		root.Set(f[0], val)
		return true
	}
	child, ok := root.Get(f[0])
	if !ok || child.Kind() != KindMap {
		child = NewMap()
	}
	if !SetPath(&child, f[1:], val) {
		return false
	}
	root.Set(f[0], child)
	return true
}

// DeletePath removes the value at the location described by f within
// *root, pruning only the leaf key (intermediate maps are left in place
// even if they become empty). Reports false if the path does not exist.
func DeletePath(root *Value, f FieldRef) bool {
	if root.Kind() != KindMap || len(f) == 0 {
		return false
	}
	if len(f) == 1 {
		if _, ok := root.Get(f[0]); !ok {
			return false
		}
		root.Delete(f[0])
		return true
	}
	child, ok := root.Get(f[0])
	if !ok || child.Kind() != KindMap {
		return false
	}
	if !DeletePath(&child, f[1:]) {
		return false
	}
	root.Set(f[0], child)
	return true
}

// BuildPath constructs a fresh nested map holding val at the location
// described by f, e.g. BuildPath(["a","b"], x) yields {"a": {"b": x}}. An
// empty f returns val itself.
func BuildPath(f FieldRef, val Value) Value {
	if len(f) == 0 {
		return val
	}
	m := NewMap()
	m.Set(f[0], BuildPath(f[1:], val))
	return m
}

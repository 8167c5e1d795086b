package models

import "github.com/opsnet/unet/pkg/value"

// EvaluationContext is the data a policy rule evaluates against: the
// node's own data tree, plus an optional derived-state tree sourced from
// the SNMP polling subsystem. A field path beginning with "derived."
// resolves against DerivedData instead of NodeData.
type EvaluationContext struct {
	NodeData    value.Value
	DerivedData value.Value
}

const derivedPrefix = "derived"

// Resolve looks up a dotted field path against the context, routing
// "derived.*" paths to DerivedData and everything else to NodeData.
func (c EvaluationContext) Resolve(path string) (value.Value, bool) {
	ref := value.ParseFieldRef(path)
	if len(ref) > 0 && ref[0] == derivedPrefix {
		if c.DerivedData.Kind() != value.KindMap && c.DerivedData.Kind() != value.KindNull {
			return value.Value{}, false
		}
		return value.Resolve(c.DerivedData, ref[1:])
	}
	return value.Resolve(c.NodeData, ref)
}

package models

import "strings"

// ValidationError aggregates every violated validation rule for a single
// entity, one message per rule, so callers can report all problems at once
// instead of stopping at the first.
type ValidationError struct {
	Entity string
	Rules  []string
}

func (e *ValidationError) Error() string {
	if e == nil || len(e.Rules) == 0 {
		return ""
	}
	return e.Entity + ": " + strings.Join(e.Rules, "; ")
}

// HasErrors reports whether any rule was violated.
func (e *ValidationError) HasErrors() bool {
	return e != nil && len(e.Rules) > 0
}

// add records a violated rule. No-op if cond is true (the rule held).
func (e *ValidationError) add(cond bool, rule string) {
	if cond {
		return
	}
	e.Rules = append(e.Rules, rule)
}

// orNil returns nil if no rules were violated, or e otherwise, so callers
// can `return v.validate()` directly as an `error`.
func (e *ValidationError) orNil() error {
	if !e.HasErrors() {
		return nil
	}
	return e
}

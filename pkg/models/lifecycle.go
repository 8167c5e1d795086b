package models

// Lifecycle is the declarative status tag on a node.
type Lifecycle string

const (
	LifecyclePlanned       Lifecycle = "planned"
	LifecycleLive          Lifecycle = "live"
	LifecycleDecommission  Lifecycle = "decommissioned"
)

// Valid reports whether l is one of the known lifecycle states.
func (l Lifecycle) Valid() bool {
	switch l {
	case LifecyclePlanned, LifecycleLive, LifecycleDecommission:
		return true
	default:
		return false
	}
}

// ParticipatesInPolicyEvaluation reports whether nodes in this lifecycle
// state are eligible for policy evaluation (spec: only Live nodes
// participate in fleet-wide evaluation).
func (l Lifecycle) ParticipatesInPolicyEvaluation() bool {
	return l == LifecycleLive
}

package models

import "time"

// SessionConfig parameterizes an SNMP session: version, credentials
// reference, retries and timeout. The concrete credential type lives in
// package snmp to avoid a models->snmp import cycle; PollingTask only
// needs an opaque handle here.
type SessionConfig struct {
	Version    string // "1", "2c", "3"
	Community  string
	Username   string
	Retries    int
	Timeout    time.Duration
	BackoffMax time.Duration // 0 disables back-off; interval never changes
}

// PollingTask is one independently-scheduled SNMP polling job against a
// single node, owned by the polling subsystem and referencing its Node
// by id.
type PollingTask struct {
	ID                  string
	NodeID              string
	TargetAddress       string
	OIDs                []string
	Interval            time.Duration
	SessionConfig       SessionConfig
	Priority            uint8
	Enabled             bool
	CreatedAt           time.Time
	LastSuccess         *time.Time
	LastError           *string
	ConsecutiveFailures int
}

// Validate enforces minimal structural requirements for a task to be
// schedulable.
func (t PollingTask) Validate() error {
	verr := &ValidationError{Entity: "PollingTask"}
	verr.add(t.NodeID != "", "node_id must be non-empty")
	verr.add(t.TargetAddress != "", "target_address must be non-empty")
	verr.add(len(t.OIDs) > 0, "at least one OID must be configured")
	verr.add(t.Interval > 0, "interval must be positive")
	return verr.orNil()
}

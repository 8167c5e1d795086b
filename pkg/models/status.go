package models

import "time"

// AdminOperStatus is the enumeration used for both admin and oper status
// on an interface, mapped from the SNMP ifAdminStatus/ifOperStatus
// integer codes.
type AdminOperStatus int

const (
	StatusUp AdminOperStatus = iota + 1
	StatusDown
	StatusTesting
	_ // 4 is unused in the MIB
	StatusDormant
	StatusNotPresent
	StatusLowerLayerDown
	StatusUnknown
)

// FromSNMPCode maps a raw ifAdminStatus/ifOperStatus integer to the
// enumeration, per spec: {1:Up, 2:Down, 3:Testing, 5:Dormant,
// 6:NotPresent, 7:LowerLayerDown, other:Unknown}.
func FromSNMPCode(code int64) AdminOperStatus {
	switch code {
	case 1:
		return StatusUp
	case 2:
		return StatusDown
	case 3:
		return StatusTesting
	case 5:
		return StatusDormant
	case 6:
		return StatusNotPresent
	case 7:
		return StatusLowerLayerDown
	default:
		return StatusUnknown
	}
}

func (s AdminOperStatus) String() string {
	switch s {
	case StatusUp:
		return "up"
	case StatusDown:
		return "down"
	case StatusTesting:
		return "testing"
	case StatusDormant:
		return "dormant"
	case StatusNotPresent:
		return "not_present"
	case StatusLowerLayerDown:
		return "lower_layer_down"
	default:
		return "unknown"
	}
}

// CounterGroup groups the four SNMP interface counters polled for one
// direction (input or output).
type CounterGroup struct {
	Octets   uint64
	Packets  uint64
	Errors   uint64
	Discards uint64
}

// InterfaceStatus is one row of the ifTable, owned by its enclosing
// NodeStatus and rebuilt (not patched) on each successful poll.
type InterfaceStatus struct {
	Index           int
	Name            string
	InterfaceType   string
	MTU             *int64
	Speed           *uint64
	PhysicalAddress *string
	AdminStatus     AdminOperStatus
	OperStatus      AdminOperStatus
	LastChange      time.Duration
	Input           CounterGroup
	Output          CounterGroup
}

// SystemInfo is the SNMP system group (1.3.6.1.2.1.1.*).
type SystemInfo struct {
	Description string
	ObjectID    string
	UpTime      time.Duration
	Contact     string
	Name        string
	Location    string
	Services    int64
}

// PerformanceMetrics holds vendor-derived performance gauges. Populated
// from a back-end-defined vendor OID map (spec §4.4 leaves exact OIDs
// back-end-defined).
type PerformanceMetrics struct {
	CPUUtilizationPercent *float64
	MemoryUsedBytes       *uint64
	MemoryTotalBytes      *uint64
	UpTime                *time.Duration
}

// EnvironmentalMetrics holds vendor-derived environmental readings.
type EnvironmentalMetrics struct {
	TemperatureCelsius *float64
	FanStatusOK        *bool
	PowerSupplyOK      *bool
}

// NodeStatus is the derived state observed about a node via SNMP, owned
// 1:1 by its Node and keyed by node_id.
type NodeStatus struct {
	NodeID              string
	LastUpdated         time.Time
	Reachable           bool
	SystemInfo          *SystemInfo
	Interfaces          []InterfaceStatus
	Performance         *PerformanceMetrics
	Environmental       *EnvironmentalMetrics
	VendorMetrics       map[string]string
	RawOIDs             map[string]string
	LastSNMPSuccess     *time.Time
	LastError           *string
	ConsecutiveFailures int
}

// failureThreshold is the number of consecutive poll failures after which
// a node flips to unreachable (spec §3/§8: "exactly 3").
const failureThreshold = 3

// ApplySuccess records a successful poll: last_updated and
// last_snmp_success are set to now, reachable becomes true, failures
// reset, and every projected section is replaced (not merged).
func (s *NodeStatus) ApplySuccess(now time.Time, sysInfo *SystemInfo, ifaces []InterfaceStatus, perf *PerformanceMetrics, env *EnvironmentalMetrics, vendorMetrics, rawOIDs map[string]string) {
	s.LastUpdated = now
	s.LastSNMPSuccess = &now
	s.Reachable = true
	s.ConsecutiveFailures = 0
	s.LastError = nil
	s.SystemInfo = sysInfo
	s.Interfaces = ifaces
	s.Performance = perf
	s.Environmental = env
	s.VendorMetrics = vendorMetrics
	s.RawOIDs = rawOIDs
}

// ApplyFailure records a failed poll: consecutive_failures increments,
// last_error is set, last_updated advances, and reachable flips to false
// once the threshold is reached.
func (s *NodeStatus) ApplyFailure(now time.Time, errMsg string) {
	s.LastUpdated = now
	s.ConsecutiveFailures++
	s.LastError = &errMsg
	if s.ConsecutiveFailures >= failureThreshold {
		s.Reachable = false
	}
}

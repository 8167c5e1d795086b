// Package derived projects a raw SNMP OID→value snapshot into the typed
// NodeStatus sections a poll result updates: SystemInfo, the interface
// table, and the vendor-metrics passthrough.
package derived

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/opsnet/unet/pkg/models"
	"github.com/opsnet/unet/pkg/snmp"
)

const (
	oidSysDescr    = "1.3.6.1.2.1.1.1.0"
	oidSysObjectID = "1.3.6.1.2.1.1.2.0"
	oidSysUpTime   = "1.3.6.1.2.1.1.3.0"
	oidSysContact  = "1.3.6.1.2.1.1.4.0"
	oidSysName     = "1.3.6.1.2.1.1.5.0"
	oidSysLocation = "1.3.6.1.2.1.1.6.0"
	oidSysServices = "1.3.6.1.2.1.1.7.0"

	ifTablePrefix = "1.3.6.1.2.1.2.2.1."
	vendorPrefix  = "1.3.6.1.4.1"
)

// The ifTable columns this projection reads, given as the column number
// after ifTablePrefix.
const (
	colIfIndex       = 1
	colIfDescr       = 2
	colIfType        = 3
	colIfMTU         = 4
	colIfSpeed       = 5
	colIfAdminStatus = 7
	colIfOperStatus  = 8
	colInOctets      = 10
	colInDiscards    = 11
	colInErrors      = 14
	colOutOctets     = 16
	colOutDiscards   = 17
	colOutErrors     = 20
)

// Snapshot is the result of projecting one successful poll's raw OID map.
type Snapshot struct {
	SystemInfo    *models.SystemInfo
	Interfaces    []models.InterfaceStatus
	VendorMetrics map[string]string
	RawOIDs       map[string]string
}

// Project builds a Snapshot from a raw OID→value map, per the system
// group, interface table, and vendor-OID projection rules: system group
// fields come from the fixed 1.3.6.1.2.1.1.{1..7}.0 OIDs, interface rows
// are gathered by enumerating the ifIndex column and reading the
// remaining columns per index, and any OID under 1.3.6.1.4.1 is retained
// verbatim as a vendor metric.
func Project(raw map[string]snmp.SnmpValue) Snapshot {
	snap := Snapshot{
		VendorMetrics: map[string]string{},
		RawOIDs:       map[string]string{},
	}

	for oid, v := range raw {
		snap.RawOIDs[oid] = renderValue(v)
		if strings.HasPrefix(oid, vendorPrefix) {
			snap.VendorMetrics[oid] = renderValue(v)
		}
	}

	snap.SystemInfo = projectSystemInfo(raw)
	snap.Interfaces = projectInterfaces(raw)
	return snap
}

func projectSystemInfo(raw map[string]snmp.SnmpValue) *models.SystemInfo {
	_, any := raw[oidSysDescr]
	if !any {
		return nil
	}
	info := &models.SystemInfo{}
	if v, ok := raw[oidSysDescr]; ok {
		info.Description, _ = v.AsString()
	}
	if v, ok := raw[oidSysObjectID]; ok {
		info.ObjectID, _ = v.AsString()
	}
	if v, ok := raw[oidSysUpTime]; ok {
		ticks, _ := v.AsInt()
		info.UpTime = time.Duration(ticks) * 10 * time.Millisecond
	}
	if v, ok := raw[oidSysContact]; ok {
		info.Contact, _ = v.AsString()
	}
	if v, ok := raw[oidSysName]; ok {
		info.Name, _ = v.AsString()
	}
	if v, ok := raw[oidSysLocation]; ok {
		info.Location, _ = v.AsString()
	}
	if v, ok := raw[oidSysServices]; ok {
		info.Services, _ = v.AsInt()
	}
	return info
}

func projectInterfaces(raw map[string]snmp.SnmpValue) []models.InterfaceStatus {
	indices := map[int]bool{}
	for oid := range raw {
		col, idx, ok := parseIfOID(oid)
		if ok && col == colIfIndex {
			indices[idx] = true
		}
	}
	if len(indices) == 0 {
		return nil
	}

	sorted := make([]int, 0, len(indices))
	for idx := range indices {
		sorted = append(sorted, idx)
	}
	sort.Ints(sorted)

	out := make([]models.InterfaceStatus, 0, len(sorted))
	for _, idx := range sorted {
		out = append(out, buildInterface(raw, idx))
	}
	return out
}

func buildInterface(raw map[string]snmp.SnmpValue, idx int) models.InterfaceStatus {
	iface := models.InterfaceStatus{Index: idx}

	if v, ok := ifColumnValue(raw, colIfDescr, idx); ok {
		iface.Name, _ = v.AsString()
	}
	if v, ok := ifColumnValue(raw, colIfType, idx); ok {
		if s, isStr := v.AsString(); isStr {
			iface.InterfaceType = s
		} else if n, isInt := v.AsInt(); isInt {
			iface.InterfaceType = strconv.FormatInt(n, 10)
		}
	}
	if v, ok := ifColumnValue(raw, colIfMTU, idx); ok {
		if n, isInt := v.AsInt(); isInt {
			iface.MTU = &n
		}
	}
	if v, ok := ifColumnValue(raw, colIfSpeed, idx); ok {
		if n, isInt := v.AsInt(); isInt {
			speed := uint64(n)
			iface.Speed = &speed
		}
	}
	if v, ok := ifColumnValue(raw, colIfAdminStatus, idx); ok {
		if n, isInt := v.AsInt(); isInt {
			iface.AdminStatus = models.FromSNMPCode(n)
		}
	} else {
		iface.AdminStatus = models.StatusUnknown
	}
	if v, ok := ifColumnValue(raw, colIfOperStatus, idx); ok {
		if n, isInt := v.AsInt(); isInt {
			iface.OperStatus = models.FromSNMPCode(n)
		}
	} else {
		iface.OperStatus = models.StatusUnknown
	}

	iface.Input = counterGroup(raw, idx, colInOctets, colInErrors, colInDiscards)
	iface.Output = counterGroup(raw, idx, colOutOctets, colOutErrors, colOutDiscards)
	return iface
}

func counterGroup(raw map[string]snmp.SnmpValue, idx, octetsCol, errorsCol, discardsCol int) models.CounterGroup {
	var g models.CounterGroup
	if v, ok := ifColumnValue(raw, octetsCol, idx); ok {
		if n, isInt := v.AsInt(); isInt {
			g.Octets = uint64(n)
		}
	}
	if v, ok := ifColumnValue(raw, errorsCol, idx); ok {
		if n, isInt := v.AsInt(); isInt {
			g.Errors = uint64(n)
		}
	}
	if v, ok := ifColumnValue(raw, discardsCol, idx); ok {
		if n, isInt := v.AsInt(); isInt {
			g.Discards = uint64(n)
		}
	}
	return g
}

func ifColumnValue(raw map[string]snmp.SnmpValue, col, idx int) (snmp.SnmpValue, bool) {
	oid := ifTablePrefix + strconv.Itoa(col) + "." + strconv.Itoa(idx)
	v, ok := raw[oid]
	return v, ok
}

// parseIfOID splits an ifTable OID of the form
// "1.3.6.1.2.1.2.2.1.<column>.<index>" into its column and index.
func parseIfOID(oid string) (col, idx int, ok bool) {
	if !strings.HasPrefix(oid, ifTablePrefix) {
		return 0, 0, false
	}
	rest := strings.TrimPrefix(oid, ifTablePrefix)
	parts := strings.SplitN(rest, ".", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	col, err1 := strconv.Atoi(parts[0])
	idx, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil {
		return 0, 0, false
	}
	return col, idx, true
}

func renderValue(v snmp.SnmpValue) string {
	if s, ok := v.AsString(); ok {
		return s
	}
	if n, ok := v.AsInt(); ok {
		return strconv.FormatInt(n, 10)
	}
	return ""
}

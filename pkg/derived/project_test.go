package derived_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opsnet/unet/pkg/derived"
	"github.com/opsnet/unet/pkg/models"
	"github.com/opsnet/unet/pkg/snmp"
)

func TestProject_SystemInfo(t *testing.T) {
	raw := map[string]snmp.SnmpValue{
		"1.3.6.1.2.1.1.1.0": snmp.String("Cisco IOS"),
		"1.3.6.1.2.1.1.3.0": snmp.TimeTicks(12345),
		"1.3.6.1.2.1.1.5.0": snmp.String("core-rtr-1"),
	}
	snap := derived.Project(raw)
	require.NotNil(t, snap.SystemInfo)
	assert.Equal(t, "Cisco IOS", snap.SystemInfo.Description)
	assert.Equal(t, "core-rtr-1", snap.SystemInfo.Name)
}

func TestProject_InterfaceTable(t *testing.T) {
	raw := map[string]snmp.SnmpValue{
		"1.3.6.1.2.1.2.2.1.1.1":  snmp.Integer(1),
		"1.3.6.1.2.1.2.2.1.2.1":  snmp.String("Gi0/0"),
		"1.3.6.1.2.1.2.2.1.7.1":  snmp.Integer(1),
		"1.3.6.1.2.1.2.2.1.8.1":  snmp.Integer(2),
		"1.3.6.1.2.1.2.2.1.10.1": snmp.Counter32(1000),
		"1.3.6.1.2.1.2.2.1.16.1": snmp.Counter32(2000),
	}
	snap := derived.Project(raw)
	require.Len(t, snap.Interfaces, 1)
	iface := snap.Interfaces[0]
	assert.Equal(t, 1, iface.Index)
	assert.Equal(t, "Gi0/0", iface.Name)
	assert.Equal(t, models.StatusUp, iface.AdminStatus)
	assert.Equal(t, models.StatusDown, iface.OperStatus)
	assert.Equal(t, uint64(1000), iface.Input.Octets)
	assert.Equal(t, uint64(2000), iface.Output.Octets)
}

func TestProject_MultipleInterfacesSortedByIndex(t *testing.T) {
	raw := map[string]snmp.SnmpValue{
		"1.3.6.1.2.1.2.2.1.1.2": snmp.Integer(2),
		"1.3.6.1.2.1.2.2.1.1.1": snmp.Integer(1),
	}
	snap := derived.Project(raw)
	require.Len(t, snap.Interfaces, 2)
	assert.Equal(t, 1, snap.Interfaces[0].Index)
	assert.Equal(t, 2, snap.Interfaces[1].Index)
}

func TestProject_VendorMetricsRetainedVerbatim(t *testing.T) {
	raw := map[string]snmp.SnmpValue{
		"1.3.6.1.4.1.9.9.109.1.1.1.1.5.1": snmp.Integer(42),
	}
	snap := derived.Project(raw)
	assert.Equal(t, "42", snap.VendorMetrics["1.3.6.1.4.1.9.9.109.1.1.1.1.5.1"])
	assert.Nil(t, snap.SystemInfo)
}

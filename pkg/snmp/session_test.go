package snmp_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opsnet/unet/pkg/snmp"
	"github.com/opsnet/unet/pkg/snmp/snmptest"
)

func TestSession_Get_FillsNoSuchObjectForMissingOID(t *testing.T) {
	fake := snmptest.New(map[string]snmp.SnmpValue{
		"1.3.6.1.2.1.1.1.0": snmp.String("router"),
	})
	s := snmp.NewSession("10.0.0.1", snmp.CommunityCredentials("public"), 1, time.Second, fake.Factory())

	result, err := s.Get(context.Background(), []string{"1.3.6.1.2.1.1.1.0", "1.3.6.1.2.1.1.99.0"})
	require.NoError(t, err)
	desc, ok := result["1.3.6.1.2.1.1.1.0"].AsString()
	require.True(t, ok)
	assert.Equal(t, "router", desc)
	assert.True(t, result["1.3.6.1.2.1.1.99.0"].IsError())
}

func TestSession_Get_AdvancesLastSuccessOnAnyNonErrorValue(t *testing.T) {
	fake := snmptest.New(map[string]snmp.SnmpValue{"1.0": snmp.Integer(1)})
	s := snmp.NewSession("10.0.0.1", snmp.CommunityCredentials("public"), 1, time.Second, fake.Factory())

	assert.False(t, s.IsHealthy(time.Minute))
	_, err := s.Get(context.Background(), []string{"1.0"})
	require.NoError(t, err)
	assert.True(t, s.IsHealthy(time.Minute))
}

func TestSession_Get_NetworkErrorAfterRetriesExhausted(t *testing.T) {
	fake := snmptest.New(nil)
	fake.FailNext = assert.AnError
	s := snmp.NewSession("10.0.0.1", snmp.CommunityCredentials("public"), 1, time.Millisecond, fake.Factory())

	_, err := s.Get(context.Background(), []string{"1.0"})
	require.Error(t, err)
	var netErr *snmp.NetworkError
	assert.ErrorAs(t, err, &netErr)
}

func TestSession_UserBased_ReturnsProtocolError(t *testing.T) {
	fake := snmptest.New(nil)
	s := snmp.NewSession("10.0.0.1", snmp.UserBasedCredentials("admin", "", ""), 1, time.Second, fake.Factory())

	_, err := s.Get(context.Background(), []string{"1.0"})
	require.Error(t, err)
	var protoErr *snmp.ProtocolError
	assert.ErrorAs(t, err, &protoErr)
}

func TestSession_ConnectionAttemptsIncrementsPerTransportCall(t *testing.T) {
	fake := snmptest.New(map[string]snmp.SnmpValue{"1.0": snmp.Integer(1)})
	s := snmp.NewSession("10.0.0.1", snmp.CommunityCredentials("public"), 1, time.Second, fake.Factory())

	_, err := s.Get(context.Background(), []string{"1.0"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), s.ConnectionAttempts())
}

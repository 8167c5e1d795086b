package snmp

import (
	"context"
	"fmt"
	"time"

	wapsnmp "github.com/cdevr/WapSNMP"
)

// wapTransport is the production Transport, wrapping a WapSNMP community
// session for v1/v2c targets.
type wapTransport struct {
	conn *wapsnmp.WapSNMP
}

// NewCommunityTransportFactory returns a TransportFactory dialing a
// WapSNMP community session, the default production transport for
// Community credentials.
func NewCommunityTransportFactory(version wapsnmp.SNMPVersion) TransportFactory {
	return func(target string, creds Credentials, timeout time.Duration) (Transport, error) {
		if creds.Kind != CredentialCommunity {
			return nil, &ProtocolError{Message: "community transport requires Community credentials"}
		}
		conn, err := wapsnmp.NewWapSNMP(target, creds.Community, version, timeout, 0)
		if err != nil {
			return nil, fmt.Errorf("dial %s: %w", target, err)
		}
		return &wapTransport{conn: conn}, nil
	}
}

func (t *wapTransport) Get(ctx context.Context, oids []string) (map[string]SnmpValue, error) {
	out := make(map[string]SnmpValue, len(oids))
	for _, oid := range oids {
		raw, err := t.conn.Get(oid)
		if err != nil {
			out[oid] = NoSuchObject()
			continue
		}
		out[oid] = fromWire(raw)
	}
	return out, nil
}

func (t *wapTransport) GetNext(ctx context.Context, startOID string) (map[string]SnmpValue, error) {
	oid, raw, err := t.conn.GetNext(startOID)
	if err != nil {
		return map[string]SnmpValue{startOID: EndOfMibView()}, nil
	}
	return map[string]SnmpValue{oid: fromWire(raw)}, nil
}

func (t *wapTransport) Close() error {
	return nil
}

// fromWire converts a WapSNMP decoded value into the SnmpValue tagged
// union, preserving its wire type.
func fromWire(raw interface{}) SnmpValue {
	switch v := raw.(type) {
	case int:
		return Integer(int64(v))
	case int64:
		return Integer(v)
	case string:
		return String(v)
	case []byte:
		return String(string(v))
	case uint:
		return Gauge32(uint64(v))
	case uint32:
		return Gauge32(uint64(v))
	case uint64:
		return Counter64(v)
	case wapsnmp.Oid:
		return ObjectIdentifier(v.String())
	default:
		return String(fmt.Sprintf("%v", v))
	}
}

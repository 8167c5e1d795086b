// Package snmptest provides a fake snmp.Transport for tests that need a
// Session without a real network target, the same role a hand-written
// fake behind a narrow interface plays for any mocked collaborator test.
package snmptest

import (
	"context"
	"sync"
	"time"

	"github.com/opsnet/unet/pkg/snmp"
)

// Transport is a fake snmp.Transport backed by a fixed OID table plus
// optional scripted failures.
type Transport struct {
	mu sync.Mutex

	Table map[string]snmp.SnmpValue

	// FailNext, if set, makes the next Get/GetNext call return this error
	// instead of consulting Table; it is cleared after firing once.
	FailNext error

	GetCalls     int
	GetNextCalls int
	Closed       bool
}

func New(table map[string]snmp.SnmpValue) *Transport {
	return &Transport{Table: table}
}

func (t *Transport) Get(ctx context.Context, oids []string) (map[string]snmp.SnmpValue, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.GetCalls++
	if t.FailNext != nil {
		err := t.FailNext
		t.FailNext = nil
		return nil, err
	}
	out := make(map[string]snmp.SnmpValue, len(oids))
	for _, oid := range oids {
		if v, ok := t.Table[oid]; ok {
			out[oid] = v
		} else {
			out[oid] = snmp.NoSuchObject()
		}
	}
	return out, nil
}

func (t *Transport) GetNext(ctx context.Context, startOID string) (map[string]snmp.SnmpValue, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.GetNextCalls++
	if t.FailNext != nil {
		err := t.FailNext
		t.FailNext = nil
		return nil, err
	}
	best := ""
	for oid := range t.Table {
		if oid > startOID && (best == "" || oid < best) {
			best = oid
		}
	}
	if best == "" {
		return map[string]snmp.SnmpValue{startOID: snmp.EndOfMibView()}, nil
	}
	return map[string]snmp.SnmpValue{best: t.Table[best]}, nil
}

func (t *Transport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Closed = true
	return nil
}

// Factory returns a snmp.TransportFactory that always hands back this
// Transport, for wiring into snmp.NewSession in tests.
func (t *Transport) Factory() snmp.TransportFactory {
	return func(target string, creds snmp.Credentials, timeout time.Duration) (snmp.Transport, error) {
		return t, nil
	}
}

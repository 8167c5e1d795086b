// Package snmp provides an SNMP session abstraction: a narrow Transport
// capability interface plus the typed SnmpValue wire representation, so
// higher layers (the poller, derived-state projection) never depend on a
// concrete SNMP client library.
package snmp

// ValueKind discriminates the variants of SnmpValue.
type ValueKind int

const (
	KindInteger ValueKind = iota
	KindString
	KindObjectIdentifier
	KindIPAddress
	KindCounter32
	KindCounter64
	KindGauge32
	KindTimeTicks
	KindNull
	KindNoSuchObject
	KindNoSuchInstance
	KindEndOfMibView
)

// SnmpValue is the tagged union returned for a single OID, preserving its
// wire type from transport through projection to the datastore.
type SnmpValue struct {
	Kind ValueKind

	Int    int64
	Str    string
	Uint   uint64
	Ticks  uint32
}

func Integer(v int64) SnmpValue         { return SnmpValue{Kind: KindInteger, Int: v} }
func String(v string) SnmpValue         { return SnmpValue{Kind: KindString, Str: v} }
func ObjectIdentifier(v string) SnmpValue { return SnmpValue{Kind: KindObjectIdentifier, Str: v} }
func IPAddress(v string) SnmpValue      { return SnmpValue{Kind: KindIPAddress, Str: v} }
func Counter32(v uint64) SnmpValue      { return SnmpValue{Kind: KindCounter32, Uint: v} }
func Counter64(v uint64) SnmpValue      { return SnmpValue{Kind: KindCounter64, Uint: v} }
func Gauge32(v uint64) SnmpValue        { return SnmpValue{Kind: KindGauge32, Uint: v} }
func TimeTicks(v uint32) SnmpValue      { return SnmpValue{Kind: KindTimeTicks, Ticks: v} }
func Null() SnmpValue                   { return SnmpValue{Kind: KindNull} }
func NoSuchObject() SnmpValue           { return SnmpValue{Kind: KindNoSuchObject} }
func NoSuchInstance() SnmpValue         { return SnmpValue{Kind: KindNoSuchInstance} }
func EndOfMibView() SnmpValue           { return SnmpValue{Kind: KindEndOfMibView} }

// IsError reports whether the value represents a per-OID failure rather
// than real data.
func (v SnmpValue) IsError() bool {
	switch v.Kind {
	case KindNoSuchObject, KindNoSuchInstance, KindEndOfMibView:
		return true
	default:
		return false
	}
}

// AsInt returns the value's integer-ish payload (Integer, Counter32/64,
// Gauge32, TimeTicks) and whether the kind supports it.
func (v SnmpValue) AsInt() (int64, bool) {
	switch v.Kind {
	case KindInteger:
		return v.Int, true
	case KindCounter32, KindCounter64, KindGauge32:
		return int64(v.Uint), true
	case KindTimeTicks:
		return int64(v.Ticks), true
	default:
		return 0, false
	}
}

// AsString returns the value's string-ish payload (String, ObjectIdentifier,
// IPAddress) and whether the kind supports it.
func (v SnmpValue) AsString() (string, bool) {
	switch v.Kind {
	case KindString, KindObjectIdentifier, KindIPAddress:
		return v.Str, true
	default:
		return "", false
	}
}

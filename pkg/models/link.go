package models

import "github.com/opsnet/unet/pkg/value"

// Link is a physical or logical interconnection between two nodes, or a
// node and the internet when the Z-side is unset.
type Link struct {
	ID                string
	Name              string
	NodeAID           string
	InterfaceA        string
	NodeZID           *string
	InterfaceZ        *string
	BandwidthBPS      *int64
	IsInternetCircuit bool
	CustomData        value.Value
}

// Validate enforces: a link with no Z-side is an internet circuit;
// otherwise both sides of the Z-pair (node and interface) must be set.
func (l Link) Validate() error {
	verr := &ValidationError{Entity: "Link"}
	verr.add(l.Name != "", "name must be non-empty")
	verr.add(l.NodeAID != "", "node_a_id must be non-empty")
	verr.add(l.InterfaceA != "", "interface_a must be non-empty")

	zSet := l.NodeZID != nil && *l.NodeZID != "" && l.InterfaceZ != nil && *l.InterfaceZ != ""
	zAbsent := l.NodeZID == nil && l.InterfaceZ == nil
	verr.add(zSet || zAbsent, "a link must either fully specify the Z-side (node and interface) or have neither (internet circuit)")
	if zAbsent {
		verr.add(l.IsInternetCircuit, "a link with no Z-side must be marked is_internet_circuit")
	} else {
		verr.add(!l.IsInternetCircuit, "a link with a Z-side must not be marked is_internet_circuit")
	}
	return verr.orNil()
}

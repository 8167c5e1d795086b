package models

import (
	"regexp"
	"strings"

	"github.com/opsnet/unet/pkg/value"
)

var nameRe = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
var dnsLabelRe = regexp.MustCompile(`^[A-Za-z0-9]([A-Za-z0-9-]*[A-Za-z0-9])?$`)

// Node is a managed network device: its declared identity, vendor/model,
// and an open custom_data tree the node exclusively owns.
type Node struct {
	ID             string
	Name           string
	Domain         string
	Vendor         string
	Model          string
	Role           string
	Lifecycle      Lifecycle
	ManagementIP   *string
	LocationID     *string
	CustomData     value.Value
}

// FQDN derives the fully-qualified domain name from Name and Domain: when
// Domain is empty, FQDN equals Name; otherwise it is Name + "." + Domain.
func (n Node) FQDN() string {
	if n.Domain == "" {
		return n.Name
	}
	return n.Name + "." + n.Domain
}

// Validate checks every invariant from the data model and returns a single
// aggregated ValidationError, or nil if n is valid.
func (n Node) Validate() error {
	verr := &ValidationError{Entity: "Node"}
	verr.add(n.Name != "" && nameRe.MatchString(n.Name), "name must be non-empty and restricted to alphanumerics, '-', '_'")
	verr.add(validDomain(n.Domain), "domain must be empty or a valid DNS-style label sequence")
	verr.add(n.Model != "", "model must be non-empty")
	verr.add(n.CustomData.IsNull() || n.CustomData.Kind() == value.KindMap, "custom_data must be a map when present")
	return verr.orNil()
}

func validDomain(domain string) bool {
	if domain == "" {
		return true
	}
	labels := strings.Split(domain, ".")
	for _, label := range labels {
		if !dnsLabelRe.MatchString(label) {
			return false
		}
	}
	return true
}

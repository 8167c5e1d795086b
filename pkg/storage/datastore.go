package storage

import (
	"context"

	"github.com/opsnet/unet/pkg/models"
	"github.com/opsnet/unet/pkg/policy"
	"github.com/opsnet/unet/pkg/value"
)

// BatchFailurePolicy declares how a batch operation handles a partial
// failure.
type BatchFailurePolicy int

const (
	// BatchStrict rolls the whole batch back if any item fails.
	BatchStrict BatchFailurePolicy = iota
	// BatchBestEffort keeps every successful item and collects failures.
	BatchBestEffort
)

// BatchResult reports the outcome of a batch create/update/delete.
type BatchResult struct {
	SuccessCount int
	ErrorCount   int
	Errors       []error
}

// Transaction is a unit-of-work boundary a back-end opens for a sequence of
// writes. Commit or Rollback must always be called exactly once.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// Datastore is the single capability contract every persistence back-end
// (in-memory, CSV, SQL) implements. The rest of the system depends only on
// this interface, never on a concrete back-end.
type Datastore interface {
	Name() string
	HealthCheck(ctx context.Context) error
	BeginTransaction(ctx context.Context) (Transaction, error)

	NodeStore
	LinkStore
	LocationStore
	VendorStore
	DerivedStateStore
	PolicyResultStore
	FleetStore

	// UpdateNodeCustomData merges patch into the node's custom_data tree,
	// last-write-wins per leaf path.
	UpdateNodeCustomData(ctx context.Context, nodeID string, patch value.Value) error
}

// NodeStore is the Nodes section of the Datastore contract.
type NodeStore interface {
	CreateNode(ctx context.Context, node models.Node) (models.Node, error)
	GetNode(ctx context.Context, id string) (models.Node, bool, error)
	RequireNode(ctx context.Context, id string) (models.Node, error)
	ListNodes(ctx context.Context, opts QueryOptions) (Page[models.Node], error)
	UpdateNode(ctx context.Context, node models.Node) (models.Node, error)
	DeleteNode(ctx context.Context, id string) error
	SearchNodesByName(ctx context.Context, substring string) ([]models.Node, error)
	NodesByLocation(ctx context.Context, locationID string) ([]models.Node, error)
	LinksForNode(ctx context.Context, nodeID string) ([]models.Link, error)
	LinksBetweenNodes(ctx context.Context, aID, zID string) ([]models.Link, error)

	BatchCreateNodes(ctx context.Context, nodes []models.Node, failurePolicy BatchFailurePolicy) (BatchResult, error)
	BatchUpdateNodes(ctx context.Context, nodes []models.Node, failurePolicy BatchFailurePolicy) (BatchResult, error)
	BatchDeleteNodes(ctx context.Context, ids []string, failurePolicy BatchFailurePolicy) (BatchResult, error)
}

// LinkStore is the Links section of the Datastore contract.
type LinkStore interface {
	CreateLink(ctx context.Context, link models.Link) (models.Link, error)
	GetLink(ctx context.Context, id string) (models.Link, bool, error)
	RequireLink(ctx context.Context, id string) (models.Link, error)
	ListLinks(ctx context.Context, opts QueryOptions) (Page[models.Link], error)
	UpdateLink(ctx context.Context, link models.Link) (models.Link, error)
	DeleteLink(ctx context.Context, id string) error
}

// LocationStore is the Locations section of the Datastore contract.
type LocationStore interface {
	CreateLocation(ctx context.Context, location models.Location) (models.Location, error)
	GetLocation(ctx context.Context, id string) (models.Location, bool, error)
	RequireLocation(ctx context.Context, id string) (models.Location, error)
	ListLocations(ctx context.Context, opts QueryOptions) (Page[models.Location], error)
	UpdateLocation(ctx context.Context, location models.Location) (models.Location, error)
	DeleteLocation(ctx context.Context, id string) error
}

// VendorStore manages a flat namespace of vendor-name strings.
type VendorStore interface {
	CreateVendor(ctx context.Context, name string) error
	ListVendors(ctx context.Context) ([]string, error)
	DeleteVendor(ctx context.Context, name string) error
}

// DerivedStateStore exposes the SNMP polling subsystem's per-node outputs.
type DerivedStateStore interface {
	GetNodeStatus(ctx context.Context, nodeID string) (models.NodeStatus, bool, error)
	GetNodeInterfaces(ctx context.Context, nodeID string) ([]models.InterfaceStatus, bool, error)
	GetNodeMetrics(ctx context.Context, nodeID string) (*models.PerformanceMetrics, bool, error)
	PutNodeStatus(ctx context.Context, status models.NodeStatus) error
}

// PolicyResultStore persists and retrieves policy rule execution outcomes.
type PolicyResultStore interface {
	StorePolicyResult(ctx context.Context, nodeID, ruleID string, result policy.PolicyExecutionResult) error
	ListPolicyResultsForNode(ctx context.Context, nodeID string) ([]policy.PolicyExecutionResult, error)
	LatestPolicyResultsForNode(ctx context.Context, nodeID string) (map[string]policy.PolicyExecutionResult, error)
	ListPolicyResultsForRule(ctx context.Context, ruleID string) ([]policy.PolicyExecutionResult, error)
}

// FleetStore exposes fleet-wide helpers used by the orchestrator and
// operational tooling.
type FleetStore interface {
	NodesForPolicyEvaluation(ctx context.Context) ([]models.Node, error)
	EntityCounts(ctx context.Context) (map[string]int64, error)
	Statistics(ctx context.Context) (value.Value, error)
}

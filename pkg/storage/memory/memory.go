// Package memory implements the storage.Datastore contract entirely
// in-process, guarded by a single mutex. It is the reference back-end used
// by tests and by small/ephemeral deployments.
package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/opsnet/unet/pkg/models"
	"github.com/opsnet/unet/pkg/policy"
	"github.com/opsnet/unet/pkg/storage"
)

// Store is an in-memory storage.Datastore. The zero value is not usable;
// construct one with New.
type Store struct {
	mu sync.Mutex

	nodes     map[string]models.Node
	links     map[string]models.Link
	locations map[string]models.Location
	vendors   map[string]struct{}

	statuses map[string]models.NodeStatus

	policyResults map[string][]storedPolicyResult
}

type storedPolicyResult struct {
	ruleID string
	result policy.PolicyExecutionResult
}

// New constructs an empty in-memory store.
func New() *Store {
	return &Store{
		nodes:         map[string]models.Node{},
		links:         map[string]models.Link{},
		locations:     map[string]models.Location{},
		vendors:       map[string]struct{}{},
		statuses:      map[string]models.NodeStatus{},
		policyResults: map[string][]storedPolicyResult{},
	}
}

func (s *Store) Name() string { return "memory" }

func (s *Store) HealthCheck(ctx context.Context) error { return nil }

// memTransaction is a no-op transaction: the store's mutex already
// serializes every write, so there is nothing additional to stage.
type memTransaction struct{}

func (memTransaction) Commit(ctx context.Context) error   { return nil }
func (memTransaction) Rollback(ctx context.Context) error { return nil }

func (s *Store) BeginTransaction(ctx context.Context) (storage.Transaction, error) {
	return memTransaction{}, nil
}

func newID() string { return uuid.NewString() }

var _ storage.Datastore = (*Store)(nil)

package memory

import (
	"context"

	"github.com/opsnet/unet/pkg/models"
)

func (s *Store) GetNodeStatus(ctx context.Context, nodeID string) (models.NodeStatus, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.statuses[nodeID]
	return st, ok, nil
}

func (s *Store) GetNodeInterfaces(ctx context.Context, nodeID string) ([]models.InterfaceStatus, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.statuses[nodeID]
	if !ok {
		return nil, false, nil
	}
	return st.Interfaces, true, nil
}

func (s *Store) GetNodeMetrics(ctx context.Context, nodeID string) (*models.PerformanceMetrics, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.statuses[nodeID]
	if !ok || st.Performance == nil {
		return nil, false, nil
	}
	return st.Performance, true, nil
}

func (s *Store) PutNodeStatus(ctx context.Context, status models.NodeStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statuses[status.NodeID] = status
	return nil
}

package memory

import (
	"context"

	"github.com/opsnet/unet/pkg/models"
	"github.com/opsnet/unet/pkg/value"
)

func (s *Store) NodesForPolicyEvaluation(ctx context.Context) ([]models.Node, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Node
	for _, n := range s.nodes {
		if n.Lifecycle.ParticipatesInPolicyEvaluation() {
			out = append(out, cloneNode(n))
		}
	}
	return out, nil
}

func (s *Store) EntityCounts(ctx context.Context) (map[string]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return map[string]int64{
		"nodes":     int64(len(s.nodes)),
		"links":     int64(len(s.links)),
		"locations": int64(len(s.locations)),
		"vendors":   int64(len(s.vendors)),
	}, nil
}

func (s *Store) Statistics(ctx context.Context) (value.Value, error) {
	s.mu.Lock()
	reachable := 0
	for _, st := range s.statuses {
		if st.Reachable {
			reachable++
		}
	}
	counts := map[string]value.Value{
		"node_count":      value.Int(int64(len(s.nodes))),
		"link_count":      value.Int(int64(len(s.links))),
		"location_count":  value.Int(int64(len(s.locations))),
		"reachable_nodes": value.Int(int64(reachable)),
	}
	s.mu.Unlock()
	return value.Map(counts), nil
}

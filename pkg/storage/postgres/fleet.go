package postgres

import (
	"context"
	"fmt"

	"github.com/opsnet/unet/pkg/models"
	"github.com/opsnet/unet/pkg/value"
)

func (s *Store) NodesForPolicyEvaluation(ctx context.Context) ([]models.Node, error) {
	nodes, err := s.allNodes(ctx)
	if err != nil {
		return nil, err
	}
	var out []models.Node
	for _, n := range nodes {
		if n.Lifecycle.ParticipatesInPolicyEvaluation() {
			out = append(out, n)
		}
	}
	return out, nil
}

func (s *Store) EntityCounts(ctx context.Context) (map[string]int64, error) {
	counts := map[string]int64{}
	for table, key := range map[string]string{"nodes": "nodes", "links": "links", "locations": "locations", "vendors": "vendors"} {
		var n int64
		if err := s.querierFrom(ctx).GetContext(ctx, &n, fmt.Sprintf("SELECT COUNT(*) FROM %s", table)); err != nil {
			return nil, fmt.Errorf("count %s: %w", table, err)
		}
		counts[key] = n
	}
	return counts, nil
}

func (s *Store) Statistics(ctx context.Context) (value.Value, error) {
	counts, err := s.EntityCounts(ctx)
	if err != nil {
		return value.Value{}, err
	}
	var reachable int64
	if err := s.querierFrom(ctx).GetContext(ctx, &reachable, `SELECT COUNT(*) FROM node_status WHERE reachable`); err != nil {
		return value.Value{}, fmt.Errorf("count reachable nodes: %w", err)
	}
	return value.Map(map[string]value.Value{
		"node_count":      value.Int(counts["nodes"]),
		"link_count":      value.Int(counts["links"]),
		"location_count":  value.Int(counts["locations"]),
		"reachable_nodes": value.Int(reachable),
	}), nil
}

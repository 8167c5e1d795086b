package csv

import (
	"context"

	"github.com/opsnet/unet/pkg/models"
	"github.com/opsnet/unet/pkg/storage"
	"github.com/opsnet/unet/pkg/value"
)

var nodeHeader = []string{"id", "name", "domain", "vendor", "model", "role", "lifecycle", "management_ip", "location_id", "custom_data"}

func readNodes(path string) ([]models.Node, error) {
	_, rows, err := readRows(path)
	if err != nil || rows == nil {
		return nil, err
	}
	out := make([]models.Node, 0, len(rows))
	for _, row := range rows {
		if len(row) < len(nodeHeader) {
			continue
		}
		customData, err := decodeCustomData(row[9])
		if err != nil {
			return nil, err
		}
		out = append(out, models.Node{
			ID:           row[0],
			Name:         row[1],
			Domain:       row[2],
			Vendor:       row[3],
			Model:        row[4],
			Role:         row[5],
			Lifecycle:    models.Lifecycle(row[6]),
			ManagementIP: strPtr(row[7]),
			LocationID:   strPtr(row[8]),
			CustomData:   customData,
		})
	}
	return out, nil
}

func writeNodes(path string, nodes []models.Node) error {
	rows := make([][]string, 0, len(nodes))
	for _, n := range nodes {
		customData, err := encodeCustomData(n.CustomData)
		if err != nil {
			return err
		}
		rows = append(rows, []string{
			n.ID, n.Name, n.Domain, n.Vendor, n.Model, n.Role, string(n.Lifecycle),
			ptrOr(n.ManagementIP), ptrOr(n.LocationID), customData,
		})
	}
	return writeRows(path, nodeHeader, rows)
}

func (s *Store) CreateNode(ctx context.Context, node models.Node) (models.Node, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	created, err := s.Store.CreateNode(ctx, node)
	if err != nil {
		return models.Node{}, err
	}
	if err := s.rewriteNodes(ctx); err != nil {
		return models.Node{}, err
	}
	return created, nil
}

func (s *Store) UpdateNode(ctx context.Context, node models.Node) (models.Node, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	updated, err := s.Store.UpdateNode(ctx, node)
	if err != nil {
		return models.Node{}, err
	}
	if err := s.rewriteNodes(ctx); err != nil {
		return models.Node{}, err
	}
	return updated, nil
}

func (s *Store) DeleteNode(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.Store.DeleteNode(ctx, id); err != nil {
		return err
	}
	return s.rewriteNodes(ctx)
}

func (s *Store) UpdateNodeCustomData(ctx context.Context, nodeID string, patch value.Value) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.Store.UpdateNodeCustomData(ctx, nodeID, patch); err != nil {
		return err
	}
	return s.rewriteNodes(ctx)
}

func (s *Store) BatchCreateNodes(ctx context.Context, nodes []models.Node, failurePolicy storage.BatchFailurePolicy) (storage.BatchResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	result, err := s.Store.BatchCreateNodes(ctx, nodes, failurePolicy)
	if err != nil {
		return storage.BatchResult{}, err
	}
	if err := s.rewriteNodes(ctx); err != nil {
		return storage.BatchResult{}, err
	}
	return result, nil
}

func (s *Store) BatchUpdateNodes(ctx context.Context, nodes []models.Node, failurePolicy storage.BatchFailurePolicy) (storage.BatchResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	result, err := s.Store.BatchUpdateNodes(ctx, nodes, failurePolicy)
	if err != nil {
		return storage.BatchResult{}, err
	}
	if err := s.rewriteNodes(ctx); err != nil {
		return storage.BatchResult{}, err
	}
	return result, nil
}

func (s *Store) BatchDeleteNodes(ctx context.Context, ids []string, failurePolicy storage.BatchFailurePolicy) (storage.BatchResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	result, err := s.Store.BatchDeleteNodes(ctx, ids, failurePolicy)
	if err != nil {
		return storage.BatchResult{}, err
	}
	if err := s.rewriteNodes(ctx); err != nil {
		return storage.BatchResult{}, err
	}
	return result, nil
}

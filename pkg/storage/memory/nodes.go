package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/opsnet/unet/pkg/models"
	"github.com/opsnet/unet/pkg/storage"
	"github.com/opsnet/unet/pkg/value"
)

func nodeField(n models.Node, field string) (storage.FilterValue, bool) {
	switch field {
	case "id":
		return storage.UUIDValue(n.ID), true
	case "name":
		return storage.StringValue(n.Name), true
	case "domain":
		return storage.StringValue(n.Domain), true
	case "fqdn":
		return storage.StringValue(n.FQDN()), true
	case "vendor":
		return storage.StringValue(n.Vendor), true
	case "model":
		return storage.StringValue(n.Model), true
	case "role":
		return storage.StringValue(n.Role), true
	case "lifecycle":
		return storage.StringValue(string(n.Lifecycle)), true
	case "management_ip":
		if n.ManagementIP == nil {
			return storage.NullValue(storage.FilterValueString), true
		}
		return storage.StringValue(*n.ManagementIP), true
	case "location_id":
		if n.LocationID == nil {
			return storage.NullValue(storage.FilterValueUUID), true
		}
		return storage.UUIDValue(*n.LocationID), true
	default:
		return storage.FilterValue{}, false
	}
}

func (s *Store) CreateNode(ctx context.Context, node models.Node) (models.Node, error) {
	if err := node.Validate(); err != nil {
		return models.Node{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if node.ID == "" {
		node.ID = newID()
	}
	node.CustomData = value.Clone(node.CustomData)
	s.nodes[node.ID] = node
	return cloneNode(node), nil
}

func (s *Store) GetNode(ctx context.Context, id string) (models.Node, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.nodes[id]
	if !ok {
		return models.Node{}, false, nil
	}
	return cloneNode(n), true, nil
}

func (s *Store) RequireNode(ctx context.Context, id string) (models.Node, error) {
	n, ok, err := s.GetNode(ctx, id)
	if err != nil {
		return models.Node{}, err
	}
	if !ok {
		return models.Node{}, &storage.NotFoundError{EntityType: "Node", ID: id}
	}
	return n, nil
}

func (s *Store) ListNodes(ctx context.Context, opts storage.QueryOptions) (storage.Page[models.Node], error) {
	s.mu.Lock()
	items := make([]models.Node, 0, len(s.nodes))
	for _, n := range s.nodes {
		items = append(items, cloneNode(n))
	}
	s.mu.Unlock()

	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return storage.ApplyQuery(items, opts, nodeField)
}

func (s *Store) UpdateNode(ctx context.Context, node models.Node) (models.Node, error) {
	if err := node.Validate(); err != nil {
		return models.Node{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.nodes[node.ID]; !ok {
		return models.Node{}, &storage.NotFoundError{EntityType: "Node", ID: node.ID}
	}
	node.CustomData = value.Clone(node.CustomData)
	s.nodes[node.ID] = node
	return cloneNode(node), nil
}

func (s *Store) DeleteNode(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.nodes[id]; !ok {
		return &storage.NotFoundError{EntityType: "Node", ID: id}
	}
	delete(s.nodes, id)
	delete(s.statuses, id)
	return nil
}

func (s *Store) SearchNodesByName(ctx context.Context, substring string) ([]models.Node, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	needle := strings.ToLower(substring)
	var out []models.Node
	for _, n := range s.nodes {
		if strings.Contains(strings.ToLower(n.Name), needle) {
			out = append(out, cloneNode(n))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) NodesByLocation(ctx context.Context, locationID string) ([]models.Node, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Node
	for _, n := range s.nodes {
		if n.LocationID != nil && *n.LocationID == locationID {
			out = append(out, cloneNode(n))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) LinksForNode(ctx context.Context, nodeID string) ([]models.Link, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Link
	for _, l := range s.links {
		if l.NodeAID == nodeID || (l.NodeZID != nil && *l.NodeZID == nodeID) {
			out = append(out, cloneLink(l))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) LinksBetweenNodes(ctx context.Context, aID, zID string) ([]models.Link, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Link
	for _, l := range s.links {
		if matchesPair(l, aID, zID) {
			out = append(out, cloneLink(l))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func matchesPair(l models.Link, aID, zID string) bool {
	zMatch := l.NodeZID != nil && *l.NodeZID == zID
	reverseZMatch := l.NodeZID != nil && *l.NodeZID == aID
	return (l.NodeAID == aID && zMatch) || (l.NodeAID == zID && reverseZMatch)
}

func (s *Store) BatchCreateNodes(ctx context.Context, nodes []models.Node, failurePolicy storage.BatchFailurePolicy) (storage.BatchResult, error) {
	return s.batchNodes(nodes, failurePolicy, func(n models.Node) (models.Node, error) {
		return s.CreateNode(ctx, n)
	})
}

func (s *Store) BatchUpdateNodes(ctx context.Context, nodes []models.Node, failurePolicy storage.BatchFailurePolicy) (storage.BatchResult, error) {
	return s.batchNodes(nodes, failurePolicy, func(n models.Node) (models.Node, error) {
		return s.UpdateNode(ctx, n)
	})
}

func (s *Store) batchNodes(nodes []models.Node, failurePolicy storage.BatchFailurePolicy, op func(models.Node) (models.Node, error)) (storage.BatchResult, error) {
	result := storage.BatchResult{}
	var applied []models.Node
	prior := map[string]*models.Node{}
	for _, n := range nodes {
		s.mu.Lock()
		if _, seen := prior[n.ID]; !seen {
			if old, ok := s.nodes[n.ID]; ok {
				prior[n.ID] = &old
			} else {
				prior[n.ID] = nil
			}
		}
		s.mu.Unlock()
		out, err := op(n)
		if err != nil {
			result.ErrorCount++
			result.Errors = append(result.Errors, err)
			if failurePolicy == storage.BatchStrict {
				s.mu.Lock()
				for _, a := range applied {
					if old := prior[a.ID]; old != nil {
						s.nodes[a.ID] = *old
					} else {
						delete(s.nodes, a.ID)
					}
				}
				s.mu.Unlock()
				return storage.BatchResult{ErrorCount: 1, Errors: []error{err}}, nil
			}
			continue
		}
		result.SuccessCount++
		applied = append(applied, out)
	}
	return result, nil
}

func (s *Store) BatchDeleteNodes(ctx context.Context, ids []string, failurePolicy storage.BatchFailurePolicy) (storage.BatchResult, error) {
	result := storage.BatchResult{}
	var removed []models.Node
	removedStatus := map[string]models.NodeStatus{}
	for _, id := range ids {
		s.mu.Lock()
		prev := s.nodes[id]
		st, hadStatus := s.statuses[id]
		s.mu.Unlock()
		if err := s.DeleteNode(ctx, id); err != nil {
			result.ErrorCount++
			result.Errors = append(result.Errors, err)
			if failurePolicy == storage.BatchStrict {
				s.mu.Lock()
				for _, n := range removed {
					s.nodes[n.ID] = n
					if st, ok := removedStatus[n.ID]; ok {
						s.statuses[n.ID] = st
					}
				}
				s.mu.Unlock()
				return storage.BatchResult{ErrorCount: 1, Errors: []error{err}}, nil
			}
			continue
		}
		removed = append(removed, prev)
		if hadStatus {
			removedStatus[id] = st
		}
		result.SuccessCount++
	}
	return result, nil
}

func (s *Store) UpdateNodeCustomData(ctx context.Context, nodeID string, patch value.Value) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.nodes[nodeID]
	if !ok {
		return &storage.NotFoundError{EntityType: "Node", ID: nodeID}
	}
	if n.CustomData.Kind() != value.KindMap {
		n.CustomData = value.NewMap()
	}
	mergeInto(&n.CustomData, patch)
	s.nodes[nodeID] = n
	return nil
}

// mergeInto merges patch into *dst, last-write-wins per leaf path: maps
// merge key by key recursively, any non-map patch value overwrites dst's
// leaf outright.
func mergeInto(dst *value.Value, patch value.Value) {
	if patch.Kind() != value.KindMap {
		*dst = patch
		return
	}
	if dst.Kind() != value.KindMap {
		*dst = value.NewMap()
	}
	for _, key := range patch.Keys() {
		patchChild, _ := patch.Get(key)
		existingChild, existed := dst.Get(key)
		if patchChild.Kind() == value.KindMap && existed && existingChild.Kind() == value.KindMap {
			mergeInto(&existingChild, patchChild)
			dst.Set(key, existingChild)
		} else {
			dst.Set(key, patchChild)
		}
	}
}

func cloneNode(n models.Node) models.Node {
	n.CustomData = value.Clone(n.CustomData)
	return n
}

func cloneLink(l models.Link) models.Link {
	l.CustomData = value.Clone(l.CustomData)
	return l
}

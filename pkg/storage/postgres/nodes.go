package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/opsnet/unet/pkg/models"
	"github.com/opsnet/unet/pkg/storage"
	"github.com/opsnet/unet/pkg/value"
)

type nodeRow struct {
	ID           string         `db:"id"`
	Name         string         `db:"name"`
	Domain       string         `db:"domain"`
	Vendor       string         `db:"vendor"`
	Model        string         `db:"model"`
	Role         string         `db:"role"`
	Lifecycle    string         `db:"lifecycle"`
	ManagementIP sql.NullString `db:"management_ip"`
	LocationID   sql.NullString `db:"location_id"`
	CustomData   []byte         `db:"custom_data"`
}

func (r nodeRow) toModel() (models.Node, error) {
	cd, err := decodeCustomData(r.CustomData)
	if err != nil {
		return models.Node{}, err
	}
	return models.Node{
		ID:           r.ID,
		Name:         r.Name,
		Domain:       r.Domain,
		Vendor:       r.Vendor,
		Model:        r.Model,
		Role:         r.Role,
		Lifecycle:    models.Lifecycle(r.Lifecycle),
		ManagementIP: nullStringToPtr(r.ManagementIP),
		LocationID:   nullStringToPtr(r.LocationID),
		CustomData:   cd,
	}, nil
}

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
	if node.ID == "" {
		node.ID = newID()
	}
	cd, err := encodeCustomData(node.CustomData)
	if err != nil {
		return models.Node{}, err
	}
	_, err = s.querierFrom(ctx).ExecContext(ctx, `
		INSERT INTO nodes (id, name, domain, vendor, model, role, lifecycle, management_ip, location_id, custom_data)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, node.ID, node.Name, node.Domain, node.Vendor, node.Model, node.Role, string(node.Lifecycle),
		ptrToNullString(node.ManagementIP), ptrToNullString(node.LocationID), cd)
	if err != nil {
		return models.Node{}, fmt.Errorf("insert node: %w", err)
	}
	return node, nil
}

func (s *Store) GetNode(ctx context.Context, id string) (models.Node, bool, error) {
	var row nodeRow
	err := s.querierFrom(ctx).GetContext(ctx, &row, `
		SELECT id, name, domain, vendor, model, role, lifecycle, management_ip, location_id, custom_data
		FROM nodes WHERE id = $1
	`, id)
	if err == sql.ErrNoRows {
		return models.Node{}, false, nil
	}
	if err != nil {
		return models.Node{}, false, fmt.Errorf("get node: %w", err)
	}
	n, err := row.toModel()
	return n, err == nil, err
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

func (s *Store) allNodes(ctx context.Context) ([]models.Node, error) {
	var rows []nodeRow
	if err := s.querierFrom(ctx).SelectContext(ctx, &rows, `
		SELECT id, name, domain, vendor, model, role, lifecycle, management_ip, location_id, custom_data
		FROM nodes ORDER BY id
	`); err != nil {
		return nil, fmt.Errorf("list nodes: %w", err)
	}
	out := make([]models.Node, 0, len(rows))
	for _, r := range rows {
		n, err := r.toModel()
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

func (s *Store) ListNodes(ctx context.Context, opts storage.QueryOptions) (storage.Page[models.Node], error) {
	items, err := s.allNodes(ctx)
	if err != nil {
		return storage.Page[models.Node]{}, err
	}
	return storage.ApplyQuery(items, opts, nodeField)
}

func (s *Store) UpdateNode(ctx context.Context, node models.Node) (models.Node, error) {
	if err := node.Validate(); err != nil {
		return models.Node{}, err
	}
	cd, err := encodeCustomData(node.CustomData)
	if err != nil {
		return models.Node{}, err
	}
	res, err := s.querierFrom(ctx).ExecContext(ctx, `
		UPDATE nodes SET name=$2, domain=$3, vendor=$4, model=$5, role=$6, lifecycle=$7,
			management_ip=$8, location_id=$9, custom_data=$10
		WHERE id=$1
	`, node.ID, node.Name, node.Domain, node.Vendor, node.Model, node.Role, string(node.Lifecycle),
		ptrToNullString(node.ManagementIP), ptrToNullString(node.LocationID), cd)
	if err != nil {
		return models.Node{}, fmt.Errorf("update node: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.Node{}, &storage.NotFoundError{EntityType: "Node", ID: node.ID}
	}
	return node, nil
}

func (s *Store) DeleteNode(ctx context.Context, id string) error {
	res, err := s.querierFrom(ctx).ExecContext(ctx, `DELETE FROM nodes WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("delete node: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &storage.NotFoundError{EntityType: "Node", ID: id}
	}
	_, err = s.querierFrom(ctx).ExecContext(ctx, `DELETE FROM node_status WHERE node_id=$1`, id)
	if err != nil {
		return fmt.Errorf("delete node status: %w", err)
	}
	return nil
}

func (s *Store) SearchNodesByName(ctx context.Context, substring string) ([]models.Node, error) {
	page, err := s.ListNodes(ctx, storage.QueryOptions{
		Filters: []storage.Filter{{Field: "name", Operation: storage.OpContains, Value: storage.StringValue(substring)}},
		Sorts:   []storage.Sort{{Field: "name"}},
	})
	if err != nil {
		return nil, err
	}
	return page.Items, nil
}

func (s *Store) NodesByLocation(ctx context.Context, locationID string) ([]models.Node, error) {
	page, err := s.ListNodes(ctx, storage.QueryOptions{
		Filters: []storage.Filter{{Field: "location_id", Operation: storage.OpEquals, Value: storage.UUIDValue(locationID)}},
	})
	if err != nil {
		return nil, err
	}
	return page.Items, nil
}

func (s *Store) LinksForNode(ctx context.Context, nodeID string) ([]models.Link, error) {
	links, err := s.allLinks(ctx)
	if err != nil {
		return nil, err
	}
	var out []models.Link
	for _, l := range links {
		if l.NodeAID == nodeID || (l.NodeZID != nil && *l.NodeZID == nodeID) {
			out = append(out, l)
		}
	}
	return out, nil
}

func (s *Store) LinksBetweenNodes(ctx context.Context, aID, zID string) ([]models.Link, error) {
	links, err := s.allLinks(ctx)
	if err != nil {
		return nil, err
	}
	var out []models.Link
	for _, l := range links {
		if matchesPair(l, aID, zID) {
			out = append(out, l)
		}
	}
	return out, nil
}

func matchesPair(l models.Link, aID, zID string) bool {
	zMatch := l.NodeZID != nil && *l.NodeZID == zID
	reverseZMatch := l.NodeZID != nil && *l.NodeZID == aID
	return (l.NodeAID == aID && zMatch) || (l.NodeAID == zID && reverseZMatch)
}

func (s *Store) UpdateNodeCustomData(ctx context.Context, nodeID string, patch value.Value) error {
	n, err := s.RequireNode(ctx, nodeID)
	if err != nil {
		return err
	}
	if n.CustomData.Kind() != value.KindMap {
		n.CustomData = value.NewMap()
	}
	mergeInto(&n.CustomData, patch)
	_, err = s.UpdateNode(ctx, n)
	return err
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

func (s *Store) BatchCreateNodes(ctx context.Context, nodes []models.Node, failurePolicy storage.BatchFailurePolicy) (storage.BatchResult, error) {
	return batchOp(ctx, s, nodes, failurePolicy, func(ctx context.Context, n models.Node) (models.Node, error) {
		return s.CreateNode(ctx, n)
	}, func(ctx context.Context, n models.Node) error { return s.DeleteNode(ctx, n.ID) })
}

func (s *Store) BatchUpdateNodes(ctx context.Context, nodes []models.Node, failurePolicy storage.BatchFailurePolicy) (storage.BatchResult, error) {
	previous := map[string]models.Node{}
	return batchOp(ctx, s, nodes, failurePolicy, func(ctx context.Context, n models.Node) (models.Node, error) {
		if _, seen := previous[n.ID]; !seen {
			if old, ok, err := s.GetNode(ctx, n.ID); err == nil && ok {
				previous[n.ID] = old
			}
		}
		return s.UpdateNode(ctx, n)
	}, func(ctx context.Context, n models.Node) error {
		if old, ok := previous[n.ID]; ok {
			_, err := s.UpdateNode(ctx, old)
			return err
		}
		return nil
	})
}

func (s *Store) BatchDeleteNodes(ctx context.Context, ids []string, failurePolicy storage.BatchFailurePolicy) (storage.BatchResult, error) {
	result := storage.BatchResult{}
	var removed []models.Node
	var removedStatus []models.NodeStatus
	for _, id := range ids {
		prev, _, _ := s.GetNode(ctx, id)
		st, hadStatus, _ := s.GetNodeStatus(ctx, id)
		if err := s.DeleteNode(ctx, id); err != nil {
			result.ErrorCount++
			result.Errors = append(result.Errors, err)
			if failurePolicy == storage.BatchStrict {
				for _, n := range removed {
					_, _ = s.CreateNode(ctx, n)
				}
				for _, st := range removedStatus {
					_ = s.PutNodeStatus(ctx, st)
				}
				return storage.BatchResult{ErrorCount: 1, Errors: []error{err}}, nil
			}
			continue
		}
		removed = append(removed, prev)
		if hadStatus {
			removedStatus = append(removedStatus, st)
		}
		result.SuccessCount++
	}
	return result, nil
}

// batchOp applies op to each item, honoring failurePolicy. Under
// BatchStrict a failure undoes every item already applied via undo (when
// non-nil) and returns a single-error result.
func batchOp[T any](ctx context.Context, s *Store, items []T, failurePolicy storage.BatchFailurePolicy,
	op func(context.Context, T) (T, error), undo func(context.Context, T) error) (storage.BatchResult, error) {
	result := storage.BatchResult{}
	var applied []T
	for _, item := range items {
		out, err := op(ctx, item)
		if err != nil {
			result.ErrorCount++
			result.Errors = append(result.Errors, err)
			if failurePolicy == storage.BatchStrict {
				if undo != nil {
					for _, a := range applied {
						_ = undo(ctx, a)
					}
				}
				return storage.BatchResult{ErrorCount: 1, Errors: []error{err}}, nil
			}
			continue
		}
		result.SuccessCount++
		applied = append(applied, out)
	}
	return result, nil
}

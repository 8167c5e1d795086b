package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/opsnet/unet/pkg/models"
	"github.com/opsnet/unet/pkg/storage"
)

type locationRow struct {
	ID           string         `db:"id"`
	Name         string         `db:"name"`
	LocationType string         `db:"location_type"`
	ParentID     sql.NullString `db:"parent_id"`
	Path         string         `db:"path"`
	CustomData   []byte         `db:"custom_data"`
}

func (r locationRow) toModel() (models.Location, error) {
	cd, err := decodeCustomData(r.CustomData)
	if err != nil {
		return models.Location{}, err
	}
	return models.Location{
		ID:           r.ID,
		Name:         r.Name,
		LocationType: r.LocationType,
		ParentID:     nullStringToPtr(r.ParentID),
		Path:         r.Path,
		CustomData:   cd,
	}, nil
}

func locationField(l models.Location, field string) (storage.FilterValue, bool) {
	switch field {
	case "id":
		return storage.UUIDValue(l.ID), true
	case "name":
		return storage.StringValue(l.Name), true
	case "location_type":
		return storage.StringValue(l.LocationType), true
	case "parent_id":
		if l.ParentID == nil {
			return storage.NullValue(storage.FilterValueUUID), true
		}
		return storage.UUIDValue(*l.ParentID), true
	case "path":
		return storage.StringValue(l.Path), true
	default:
		return storage.FilterValue{}, false
	}
}

// wouldCycle walks the ancestor chain of parentID as currently persisted,
// reporting whether attaching id under it would create a cycle.
func (s *Store) wouldCycle(ctx context.Context, id, parentID string) (bool, error) {
	seen := map[string]bool{id: true}
	cur := parentID
	for cur != "" {
		if seen[cur] {
			return true, nil
		}
		seen[cur] = true
		var row struct {
			ParentID sql.NullString `db:"parent_id"`
		}
		err := s.querierFrom(ctx).GetContext(ctx, &row, `SELECT parent_id FROM locations WHERE id = $1`, cur)
		if err == sql.ErrNoRows {
			return false, nil
		}
		if err != nil {
			return false, fmt.Errorf("walk location ancestry: %w", err)
		}
		if !row.ParentID.Valid {
			return false, nil
		}
		cur = row.ParentID.String
	}
	return false, nil
}

func (s *Store) CreateLocation(ctx context.Context, location models.Location) (models.Location, error) {
	if err := location.Validate(); err != nil {
		return models.Location{}, err
	}
	if location.ID == "" {
		location.ID = newID()
	}
	if location.ParentID != nil {
		cycle, err := s.wouldCycle(ctx, location.ID, *location.ParentID)
		if err != nil {
			return models.Location{}, err
		}
		if cycle {
			return models.Location{}, &storage.ValidationError{Message: "location hierarchy cycle detected"}
		}
	}
	cd, err := encodeCustomData(location.CustomData)
	if err != nil {
		return models.Location{}, err
	}
	_, err = s.querierFrom(ctx).ExecContext(ctx, `
		INSERT INTO locations (id, name, location_type, parent_id, path, custom_data)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, location.ID, location.Name, location.LocationType, ptrToNullString(location.ParentID), location.Path, cd)
	if err != nil {
		return models.Location{}, fmt.Errorf("insert location: %w", err)
	}
	return location, nil
}

func (s *Store) GetLocation(ctx context.Context, id string) (models.Location, bool, error) {
	var row locationRow
	err := s.querierFrom(ctx).GetContext(ctx, &row, `
		SELECT id, name, location_type, parent_id, path, custom_data FROM locations WHERE id = $1
	`, id)
	if err == sql.ErrNoRows {
		return models.Location{}, false, nil
	}
	if err != nil {
		return models.Location{}, false, fmt.Errorf("get location: %w", err)
	}
	l, err := row.toModel()
	return l, err == nil, err
}

func (s *Store) RequireLocation(ctx context.Context, id string) (models.Location, error) {
	l, ok, err := s.GetLocation(ctx, id)
	if err != nil {
		return models.Location{}, err
	}
	if !ok {
		return models.Location{}, &storage.NotFoundError{EntityType: "Location", ID: id}
	}
	return l, nil
}

func (s *Store) allLocations(ctx context.Context) ([]models.Location, error) {
	var rows []locationRow
	if err := s.querierFrom(ctx).SelectContext(ctx, &rows, `
		SELECT id, name, location_type, parent_id, path, custom_data FROM locations ORDER BY id
	`); err != nil {
		return nil, fmt.Errorf("list locations: %w", err)
	}
	out := make([]models.Location, 0, len(rows))
	for _, r := range rows {
		l, err := r.toModel()
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, nil
}

func (s *Store) ListLocations(ctx context.Context, opts storage.QueryOptions) (storage.Page[models.Location], error) {
	items, err := s.allLocations(ctx)
	if err != nil {
		return storage.Page[models.Location]{}, err
	}
	return storage.ApplyQuery(items, opts, locationField)
}

func (s *Store) UpdateLocation(ctx context.Context, location models.Location) (models.Location, error) {
	if err := location.Validate(); err != nil {
		return models.Location{}, err
	}
	if location.ParentID != nil {
		cycle, err := s.wouldCycle(ctx, location.ID, *location.ParentID)
		if err != nil {
			return models.Location{}, err
		}
		if cycle {
			return models.Location{}, &storage.ValidationError{Message: "location hierarchy cycle detected"}
		}
	}
	cd, err := encodeCustomData(location.CustomData)
	if err != nil {
		return models.Location{}, err
	}
	res, err := s.querierFrom(ctx).ExecContext(ctx, `
		UPDATE locations SET name=$2, location_type=$3, parent_id=$4, path=$5, custom_data=$6
		WHERE id=$1
	`, location.ID, location.Name, location.LocationType, ptrToNullString(location.ParentID), location.Path, cd)
	if err != nil {
		return models.Location{}, fmt.Errorf("update location: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.Location{}, &storage.NotFoundError{EntityType: "Location", ID: location.ID}
	}
	return location, nil
}

func (s *Store) DeleteLocation(ctx context.Context, id string) error {
	res, err := s.querierFrom(ctx).ExecContext(ctx, `DELETE FROM locations WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("delete location: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &storage.NotFoundError{EntityType: "Location", ID: id}
	}
	return nil
}

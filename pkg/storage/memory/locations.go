package memory

import (
	"context"
	"sort"

	"github.com/opsnet/unet/pkg/models"
	"github.com/opsnet/unet/pkg/storage"
	"github.com/opsnet/unet/pkg/value"
)

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

func cloneLocation(l models.Location) models.Location {
	l.CustomData = value.Clone(l.CustomData)
	return l
}

// wouldCycle reports whether assigning parentID as id's parent would
// create a cycle, walking the parent chain currently on record.
func (s *Store) wouldCycle(id, parentID string) bool {
	seen := map[string]bool{id: true}
	cur := parentID
	for cur != "" {
		if seen[cur] {
			return true
		}
		seen[cur] = true
		parent, ok := s.locations[cur]
		if !ok || parent.ParentID == nil {
			return false
		}
		cur = *parent.ParentID
	}
	return false
}

func (s *Store) CreateLocation(ctx context.Context, location models.Location) (models.Location, error) {
	if err := location.Validate(); err != nil {
		return models.Location{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if location.ID == "" {
		location.ID = newID()
	}
	if location.ParentID != nil && s.wouldCycle(location.ID, *location.ParentID) {
		return models.Location{}, &storage.ValidationError{Message: "location hierarchy cycle detected"}
	}
	s.locations[location.ID] = cloneLocation(location)
	return cloneLocation(location), nil
}

func (s *Store) GetLocation(ctx context.Context, id string) (models.Location, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locations[id]
	if !ok {
		return models.Location{}, false, nil
	}
	return cloneLocation(l), true, nil
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

func (s *Store) ListLocations(ctx context.Context, opts storage.QueryOptions) (storage.Page[models.Location], error) {
	s.mu.Lock()
	items := make([]models.Location, 0, len(s.locations))
	for _, l := range s.locations {
		items = append(items, cloneLocation(l))
	}
	s.mu.Unlock()

	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return storage.ApplyQuery(items, opts, locationField)
}

func (s *Store) UpdateLocation(ctx context.Context, location models.Location) (models.Location, error) {
	if err := location.Validate(); err != nil {
		return models.Location{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.locations[location.ID]; !ok {
		return models.Location{}, &storage.NotFoundError{EntityType: "Location", ID: location.ID}
	}
	if location.ParentID != nil && s.wouldCycle(location.ID, *location.ParentID) {
		return models.Location{}, &storage.ValidationError{Message: "location hierarchy cycle detected"}
	}
	s.locations[location.ID] = cloneLocation(location)
	return cloneLocation(location), nil
}

func (s *Store) DeleteLocation(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.locations[id]; !ok {
		return &storage.NotFoundError{EntityType: "Location", ID: id}
	}
	delete(s.locations, id)
	return nil
}

package csv

import (
	"context"

	"github.com/opsnet/unet/pkg/models"
)

var locationHeader = []string{"id", "name", "location_type", "parent_id", "path", "custom_data"}

func readLocations(path string) ([]models.Location, error) {
	_, rows, err := readRows(path)
	if err != nil || rows == nil {
		return nil, err
	}
	out := make([]models.Location, 0, len(rows))
	for _, row := range rows {
		if len(row) < len(locationHeader) {
			continue
		}
		customData, err := decodeCustomData(row[5])
		if err != nil {
			return nil, err
		}
		out = append(out, models.Location{
			ID:           row[0],
			Name:         row[1],
			LocationType: row[2],
			ParentID:     strPtr(row[3]),
			Path:         row[4],
			CustomData:   customData,
		})
	}
	return out, nil
}

func writeLocations(path string, locations []models.Location) error {
	rows := make([][]string, 0, len(locations))
	for _, l := range locations {
		customData, err := encodeCustomData(l.CustomData)
		if err != nil {
			return err
		}
		rows = append(rows, []string{l.ID, l.Name, l.LocationType, ptrOr(l.ParentID), l.Path, customData})
	}
	return writeRows(path, locationHeader, rows)
}

func (s *Store) CreateLocation(ctx context.Context, location models.Location) (models.Location, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	created, err := s.Store.CreateLocation(ctx, location)
	if err != nil {
		return models.Location{}, err
	}
	if err := s.rewriteLocations(ctx); err != nil {
		return models.Location{}, err
	}
	return created, nil
}

func (s *Store) UpdateLocation(ctx context.Context, location models.Location) (models.Location, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	updated, err := s.Store.UpdateLocation(ctx, location)
	if err != nil {
		return models.Location{}, err
	}
	if err := s.rewriteLocations(ctx); err != nil {
		return models.Location{}, err
	}
	return updated, nil
}

func (s *Store) DeleteLocation(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.Store.DeleteLocation(ctx, id); err != nil {
		return err
	}
	return s.rewriteLocations(ctx)
}

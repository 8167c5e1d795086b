package csv

import (
	"context"
	"strconv"

	"github.com/opsnet/unet/pkg/models"
)

var linkHeader = []string{"id", "name", "node_a_id", "interface_a", "node_z_id", "interface_z", "bandwidth_bps", "is_internet_circuit", "custom_data"}

func readLinks(path string) ([]models.Link, error) {
	_, rows, err := readRows(path)
	if err != nil || rows == nil {
		return nil, err
	}
	out := make([]models.Link, 0, len(rows))
	for _, row := range rows {
		if len(row) < len(linkHeader) {
			continue
		}
		customData, err := decodeCustomData(row[8])
		if err != nil {
			return nil, err
		}
		var bandwidth *int64
		if row[6] != "" {
			v, err := strconv.ParseInt(row[6], 10, 64)
			if err != nil {
				return nil, err
			}
			bandwidth = &v
		}
		out = append(out, models.Link{
			ID:                row[0],
			Name:              row[1],
			NodeAID:           row[2],
			InterfaceA:        row[3],
			NodeZID:           strPtr(row[4]),
			InterfaceZ:        strPtr(row[5]),
			BandwidthBPS:      bandwidth,
			IsInternetCircuit: row[7] == "true",
			CustomData:        customData,
		})
	}
	return out, nil
}

func writeLinks(path string, links []models.Link) error {
	rows := make([][]string, 0, len(links))
	for _, l := range links {
		customData, err := encodeCustomData(l.CustomData)
		if err != nil {
			return err
		}
		bandwidth := ""
		if l.BandwidthBPS != nil {
			bandwidth = strconv.FormatInt(*l.BandwidthBPS, 10)
		}
		rows = append(rows, []string{
			l.ID, l.Name, l.NodeAID, l.InterfaceA, ptrOr(l.NodeZID), ptrOr(l.InterfaceZ),
			bandwidth, boolCol(l.IsInternetCircuit), customData,
		})
	}
	return writeRows(path, linkHeader, rows)
}

func (s *Store) CreateLink(ctx context.Context, link models.Link) (models.Link, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	created, err := s.Store.CreateLink(ctx, link)
	if err != nil {
		return models.Link{}, err
	}
	if err := s.rewriteLinks(ctx); err != nil {
		return models.Link{}, err
	}
	return created, nil
}

func (s *Store) UpdateLink(ctx context.Context, link models.Link) (models.Link, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	updated, err := s.Store.UpdateLink(ctx, link)
	if err != nil {
		return models.Link{}, err
	}
	if err := s.rewriteLinks(ctx); err != nil {
		return models.Link{}, err
	}
	return updated, nil
}

func (s *Store) DeleteLink(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.Store.DeleteLink(ctx, id); err != nil {
		return err
	}
	return s.rewriteLinks(ctx)
}

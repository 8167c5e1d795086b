package memory

import (
	"context"
	"sort"

	"github.com/opsnet/unet/pkg/models"
	"github.com/opsnet/unet/pkg/storage"
)

func linkField(l models.Link, field string) (storage.FilterValue, bool) {
	switch field {
	case "id":
		return storage.UUIDValue(l.ID), true
	case "name":
		return storage.StringValue(l.Name), true
	case "node_a_id":
		return storage.UUIDValue(l.NodeAID), true
	case "interface_a":
		return storage.StringValue(l.InterfaceA), true
	case "node_z_id":
		if l.NodeZID == nil {
			return storage.NullValue(storage.FilterValueUUID), true
		}
		return storage.UUIDValue(*l.NodeZID), true
	case "is_internet_circuit":
		return storage.BooleanValue(l.IsInternetCircuit), true
	case "bandwidth_bps":
		if l.BandwidthBPS == nil {
			return storage.NullValue(storage.FilterValueInteger), true
		}
		return storage.IntegerValue(*l.BandwidthBPS), true
	default:
		return storage.FilterValue{}, false
	}
}

func (s *Store) CreateLink(ctx context.Context, link models.Link) (models.Link, error) {
	if err := link.Validate(); err != nil {
		return models.Link{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if link.ID == "" {
		link.ID = newID()
	}
	s.links[link.ID] = cloneLink(link)
	return cloneLink(link), nil
}

func (s *Store) GetLink(ctx context.Context, id string) (models.Link, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.links[id]
	if !ok {
		return models.Link{}, false, nil
	}
	return cloneLink(l), true, nil
}

func (s *Store) RequireLink(ctx context.Context, id string) (models.Link, error) {
	l, ok, err := s.GetLink(ctx, id)
	if err != nil {
		return models.Link{}, err
	}
	if !ok {
		return models.Link{}, &storage.NotFoundError{EntityType: "Link", ID: id}
	}
	return l, nil
}

func (s *Store) ListLinks(ctx context.Context, opts storage.QueryOptions) (storage.Page[models.Link], error) {
	s.mu.Lock()
	items := make([]models.Link, 0, len(s.links))
	for _, l := range s.links {
		items = append(items, cloneLink(l))
	}
	s.mu.Unlock()

	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return storage.ApplyQuery(items, opts, linkField)
}

func (s *Store) UpdateLink(ctx context.Context, link models.Link) (models.Link, error) {
	if err := link.Validate(); err != nil {
		return models.Link{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.links[link.ID]; !ok {
		return models.Link{}, &storage.NotFoundError{EntityType: "Link", ID: link.ID}
	}
	s.links[link.ID] = cloneLink(link)
	return cloneLink(link), nil
}

func (s *Store) DeleteLink(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.links[id]; !ok {
		return &storage.NotFoundError{EntityType: "Link", ID: id}
	}
	delete(s.links, id)
	return nil
}

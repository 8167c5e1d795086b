package memory

import (
	"context"
	"sort"
)

func (s *Store) CreateVendor(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vendors[name] = struct{}{}
	return nil
}

func (s *Store) ListVendors(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.vendors))
	for v := range s.vendors {
		out = append(out, v)
	}
	sort.Strings(out)
	return out, nil
}

func (s *Store) DeleteVendor(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.vendors, name)
	return nil
}

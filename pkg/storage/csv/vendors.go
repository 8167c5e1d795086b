package csv

import "context"

var vendorHeader = []string{"name"}

func readVendors(path string) ([]string, error) {
	_, rows, err := readRows(path)
	if err != nil || rows == nil {
		return nil, err
	}
	out := make([]string, 0, len(rows))
	for _, row := range rows {
		if len(row) < 1 {
			continue
		}
		out = append(out, row[0])
	}
	return out, nil
}

func writeVendors(path string, vendors []string) error {
	rows := make([][]string, 0, len(vendors))
	for _, v := range vendors {
		rows = append(rows, []string{v})
	}
	return writeRows(path, vendorHeader, rows)
}

func (s *Store) CreateVendor(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.Store.CreateVendor(ctx, name); err != nil {
		return err
	}
	return s.rewriteVendors(ctx)
}

func (s *Store) DeleteVendor(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.Store.DeleteVendor(ctx, name); err != nil {
		return err
	}
	return s.rewriteVendors(ctx)
}

package postgres

import (
	"context"
	"fmt"
)

func (s *Store) CreateVendor(ctx context.Context, name string) error {
	_, err := s.querierFrom(ctx).ExecContext(ctx, `
		INSERT INTO vendors (name) VALUES ($1) ON CONFLICT (name) DO NOTHING
	`, name)
	if err != nil {
		return fmt.Errorf("insert vendor: %w", err)
	}
	return nil
}

func (s *Store) ListVendors(ctx context.Context) ([]string, error) {
	var names []string
	if err := s.querierFrom(ctx).SelectContext(ctx, &names, `SELECT name FROM vendors ORDER BY name`); err != nil {
		return nil, fmt.Errorf("list vendors: %w", err)
	}
	return names, nil
}

func (s *Store) DeleteVendor(ctx context.Context, name string) error {
	_, err := s.querierFrom(ctx).ExecContext(ctx, `DELETE FROM vendors WHERE name=$1`, name)
	if err != nil {
		return fmt.Errorf("delete vendor: %w", err)
	}
	return nil
}

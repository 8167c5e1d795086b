// Package csv implements storage.Datastore over a directory of CSV files,
// one per tabular entity (nodes, links, locations, vendors), with an
// embedded in-memory store holding the non-tabular runtime state (derived
// state, policy results) the way the source project keeps its CSV
// back-end scoped to the fleet's declared topology rather than its live
// polling output. Every mutating call rewrites its file in full: last
// write wins, matching the merge semantics
// `original_source/crates/unet-core/src/datastore/csv/utils.rs` documents
// for this back-end's filtering, generalized here through the shared
// storage.ApplyQuery engine instead of a bespoke matcher.
package csv

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/opsnet/unet/pkg/models"
	"github.com/opsnet/unet/pkg/storage"
	"github.com/opsnet/unet/pkg/storage/memory"
)

// Store is a CSV-backed storage.Datastore. The zero value is not usable;
// construct one with Open.
type Store struct {
	*memory.Store

	dir string
	mu  sync.Mutex // serializes the read-modify-rewrite cycle per file
}

// Open loads nodes.csv, links.csv, locations.csv, and vendors.csv from dir
// (creating dir if absent; a missing individual file is treated as empty)
// into a backing memory.Store, ready for querying and further mutation.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("csv: create directory: %w", err)
	}
	s := &Store{Store: memory.New(), dir: dir}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) Name() string { return "csv" }

func (s *Store) path(file string) string { return filepath.Join(s.dir, file) }

func (s *Store) load() error {
	ctx := context.Background()
	nodes, err := readNodes(s.path(nodesFile))
	if err != nil {
		return err
	}
	for _, n := range nodes {
		if _, err := s.Store.CreateNode(ctx, n); err != nil {
			return fmt.Errorf("csv: load nodes.csv: %w", err)
		}
	}

	links, err := readLinks(s.path(linksFile))
	if err != nil {
		return err
	}
	for _, l := range links {
		if _, err := s.Store.CreateLink(ctx, l); err != nil {
			return fmt.Errorf("csv: load links.csv: %w", err)
		}
	}

	locations, err := readLocations(s.path(locationsFile))
	if err != nil {
		return err
	}
	for _, l := range locations {
		if _, err := s.Store.CreateLocation(ctx, l); err != nil {
			return fmt.Errorf("csv: load locations.csv: %w", err)
		}
	}

	vendors, err := readVendors(s.path(vendorsFile))
	if err != nil {
		return err
	}
	for _, v := range vendors {
		if err := s.Store.CreateVendor(ctx, v); err != nil {
			return fmt.Errorf("csv: load vendors.csv: %w", err)
		}
	}
	return nil
}

// allNodes returns every node currently held, unpaginated, for a full
// file rewrite.
func (s *Store) allNodes(ctx context.Context) ([]models.Node, error) {
	page, err := s.Store.ListNodes(ctx, storage.QueryOptions{})
	if err != nil {
		return nil, err
	}
	return page.Items, nil
}

func (s *Store) allLinks(ctx context.Context) ([]models.Link, error) {
	page, err := s.Store.ListLinks(ctx, storage.QueryOptions{})
	if err != nil {
		return nil, err
	}
	return page.Items, nil
}

func (s *Store) allLocations(ctx context.Context) ([]models.Location, error) {
	page, err := s.Store.ListLocations(ctx, storage.QueryOptions{})
	if err != nil {
		return nil, err
	}
	return page.Items, nil
}

func (s *Store) rewriteNodes(ctx context.Context) error {
	nodes, err := s.allNodes(ctx)
	if err != nil {
		return err
	}
	return writeNodes(s.path(nodesFile), nodes)
}

func (s *Store) rewriteLinks(ctx context.Context) error {
	links, err := s.allLinks(ctx)
	if err != nil {
		return err
	}
	return writeLinks(s.path(linksFile), links)
}

func (s *Store) rewriteLocations(ctx context.Context) error {
	locations, err := s.allLocations(ctx)
	if err != nil {
		return err
	}
	return writeLocations(s.path(locationsFile), locations)
}

func (s *Store) rewriteVendors(ctx context.Context) error {
	vendors, err := s.Store.ListVendors(ctx)
	if err != nil {
		return err
	}
	return writeVendors(s.path(vendorsFile), vendors)
}

var _ storage.Datastore = (*Store)(nil)

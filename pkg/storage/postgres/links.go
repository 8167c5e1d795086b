package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/opsnet/unet/pkg/models"
	"github.com/opsnet/unet/pkg/storage"
)

type linkRow struct {
	ID                string         `db:"id"`
	Name              string         `db:"name"`
	NodeAID           string         `db:"node_a_id"`
	InterfaceA        string         `db:"interface_a"`
	NodeZID           sql.NullString `db:"node_z_id"`
	InterfaceZ        sql.NullString `db:"interface_z"`
	BandwidthBPS      sql.NullInt64  `db:"bandwidth_bps"`
	IsInternetCircuit bool           `db:"is_internet_circuit"`
	CustomData        []byte         `db:"custom_data"`
}

func (r linkRow) toModel() (models.Link, error) {
	cd, err := decodeCustomData(r.CustomData)
	if err != nil {
		return models.Link{}, err
	}
	return models.Link{
		ID:                r.ID,
		Name:              r.Name,
		NodeAID:           r.NodeAID,
		InterfaceA:        r.InterfaceA,
		NodeZID:           nullStringToPtr(r.NodeZID),
		InterfaceZ:        nullStringToPtr(r.InterfaceZ),
		BandwidthBPS:      nullInt64ToPtr(r.BandwidthBPS),
		IsInternetCircuit: r.IsInternetCircuit,
		CustomData:        cd,
	}, nil
}

func linkField(l models.Link, field string) (storage.FilterValue, bool) {
	switch field {
	case "id":
		return storage.UUIDValue(l.ID), true
	case "name":
		return storage.StringValue(l.Name), true
	case "node_a_id":
		return storage.UUIDValue(l.NodeAID), true
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
	if link.ID == "" {
		link.ID = newID()
	}
	cd, err := encodeCustomData(link.CustomData)
	if err != nil {
		return models.Link{}, err
	}
	_, err = s.querierFrom(ctx).ExecContext(ctx, `
		INSERT INTO links (id, name, node_a_id, interface_a, node_z_id, interface_z, bandwidth_bps, is_internet_circuit, custom_data)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, link.ID, link.Name, link.NodeAID, link.InterfaceA, ptrToNullString(link.NodeZID), ptrToNullString(link.InterfaceZ),
		ptrToNullInt64(link.BandwidthBPS), link.IsInternetCircuit, cd)
	if err != nil {
		return models.Link{}, fmt.Errorf("insert link: %w", err)
	}
	return link, nil
}

func (s *Store) GetLink(ctx context.Context, id string) (models.Link, bool, error) {
	var row linkRow
	err := s.querierFrom(ctx).GetContext(ctx, &row, `
		SELECT id, name, node_a_id, interface_a, node_z_id, interface_z, bandwidth_bps, is_internet_circuit, custom_data
		FROM links WHERE id = $1
	`, id)
	if err == sql.ErrNoRows {
		return models.Link{}, false, nil
	}
	if err != nil {
		return models.Link{}, false, fmt.Errorf("get link: %w", err)
	}
	l, err := row.toModel()
	return l, err == nil, err
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

func (s *Store) allLinks(ctx context.Context) ([]models.Link, error) {
	var rows []linkRow
	if err := s.querierFrom(ctx).SelectContext(ctx, &rows, `
		SELECT id, name, node_a_id, interface_a, node_z_id, interface_z, bandwidth_bps, is_internet_circuit, custom_data
		FROM links ORDER BY id
	`); err != nil {
		return nil, fmt.Errorf("list links: %w", err)
	}
	out := make([]models.Link, 0, len(rows))
	for _, r := range rows {
		l, err := r.toModel()
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, nil
}

func (s *Store) ListLinks(ctx context.Context, opts storage.QueryOptions) (storage.Page[models.Link], error) {
	items, err := s.allLinks(ctx)
	if err != nil {
		return storage.Page[models.Link]{}, err
	}
	return storage.ApplyQuery(items, opts, linkField)
}

func (s *Store) UpdateLink(ctx context.Context, link models.Link) (models.Link, error) {
	if err := link.Validate(); err != nil {
		return models.Link{}, err
	}
	cd, err := encodeCustomData(link.CustomData)
	if err != nil {
		return models.Link{}, err
	}
	res, err := s.querierFrom(ctx).ExecContext(ctx, `
		UPDATE links SET name=$2, node_a_id=$3, interface_a=$4, node_z_id=$5, interface_z=$6,
			bandwidth_bps=$7, is_internet_circuit=$8, custom_data=$9
		WHERE id=$1
	`, link.ID, link.Name, link.NodeAID, link.InterfaceA, ptrToNullString(link.NodeZID), ptrToNullString(link.InterfaceZ),
		ptrToNullInt64(link.BandwidthBPS), link.IsInternetCircuit, cd)
	if err != nil {
		return models.Link{}, fmt.Errorf("update link: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.Link{}, &storage.NotFoundError{EntityType: "Link", ID: link.ID}
	}
	return link, nil
}

func (s *Store) DeleteLink(ctx context.Context, id string) error {
	res, err := s.querierFrom(ctx).ExecContext(ctx, `DELETE FROM links WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("delete link: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &storage.NotFoundError{EntityType: "Link", ID: id}
	}
	return nil
}

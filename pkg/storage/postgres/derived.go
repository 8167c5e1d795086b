package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/opsnet/unet/pkg/models"
)

type nodeStatusRow struct {
	NodeID              string       `db:"node_id"`
	LastUpdated         time.Time    `db:"last_updated"`
	Reachable           bool         `db:"reachable"`
	Status              []byte       `db:"status"`
	LastSNMPSuccess     sql.NullTime `db:"last_snmp_success"`
	LastError           sql.NullString `db:"last_error"`
	ConsecutiveFailures int          `db:"consecutive_failures"`
}

func (r nodeStatusRow) toModel() (models.NodeStatus, error) {
	var st models.NodeStatus
	if len(r.Status) > 0 {
		if err := json.Unmarshal(r.Status, &st); err != nil {
			return models.NodeStatus{}, fmt.Errorf("decode node status: %w", err)
		}
	}
	st.NodeID = r.NodeID
	st.LastUpdated = r.LastUpdated
	st.Reachable = r.Reachable
	st.LastSNMPSuccess = nullTimeToPtr(r.LastSNMPSuccess)
	st.LastError = nullStringToPtr(r.LastError)
	st.ConsecutiveFailures = r.ConsecutiveFailures
	return st, nil
}

func nullTimeToPtr(nt sql.NullTime) *time.Time {
	if nt.Valid {
		return &nt.Time
	}
	return nil
}

func ptrToNullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func (s *Store) GetNodeStatus(ctx context.Context, nodeID string) (models.NodeStatus, bool, error) {
	var row nodeStatusRow
	err := s.querierFrom(ctx).GetContext(ctx, &row, `
		SELECT node_id, last_updated, reachable, status, last_snmp_success, last_error, consecutive_failures
		FROM node_status WHERE node_id = $1
	`, nodeID)
	if err == sql.ErrNoRows {
		return models.NodeStatus{}, false, nil
	}
	if err != nil {
		return models.NodeStatus{}, false, fmt.Errorf("get node status: %w", err)
	}
	st, err := row.toModel()
	return st, err == nil, err
}

func (s *Store) GetNodeInterfaces(ctx context.Context, nodeID string) ([]models.InterfaceStatus, bool, error) {
	st, ok, err := s.GetNodeStatus(ctx, nodeID)
	if err != nil || !ok {
		return nil, ok, err
	}
	return st.Interfaces, true, nil
}

func (s *Store) GetNodeMetrics(ctx context.Context, nodeID string) (*models.PerformanceMetrics, bool, error) {
	st, ok, err := s.GetNodeStatus(ctx, nodeID)
	if err != nil || !ok || st.Performance == nil {
		return nil, false, err
	}
	return st.Performance, true, nil
}

func (s *Store) PutNodeStatus(ctx context.Context, status models.NodeStatus) error {
	blob, err := json.Marshal(status)
	if err != nil {
		return fmt.Errorf("encode node status: %w", err)
	}
	_, err = s.querierFrom(ctx).ExecContext(ctx, `
		INSERT INTO node_status (node_id, last_updated, reachable, status, last_snmp_success, last_error, consecutive_failures)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (node_id) DO UPDATE SET
			last_updated = EXCLUDED.last_updated,
			reachable = EXCLUDED.reachable,
			status = EXCLUDED.status,
			last_snmp_success = EXCLUDED.last_snmp_success,
			last_error = EXCLUDED.last_error,
			consecutive_failures = EXCLUDED.consecutive_failures
	`, status.NodeID, status.LastUpdated, status.Reachable, blob,
		ptrToNullTime(status.LastSNMPSuccess), ptrToNullString(status.LastError), status.ConsecutiveFailures)
	if err != nil {
		return fmt.Errorf("upsert node status: %w", err)
	}
	return nil
}

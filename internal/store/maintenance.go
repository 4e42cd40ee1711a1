package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/assetpro/internal/db"
	"github.com/erazemk/assetpro/internal/model"
)

// InsertMaintenance appends a maintenance record. Records are never updated
// or deleted.
func InsertMaintenance(ctx context.Context, q db.DBTX, assetID int64, m model.NewMaintenance, recordedBy string) (*model.MaintenanceRecord, error) {
	result, err := q.ExecContext(ctx,
		`INSERT INTO maintenance_records (asset_id, performed_on, description, cost, recorded_by)
		 VALUES (?, ?, ?, ?, ?)`,
		assetID, m.PerformedOn, m.Description, m.Cost, recordedBy,
	)
	if err != nil {
		return nil, fmt.Errorf("recording maintenance: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting maintenance id: %w", err)
	}

	r := &model.MaintenanceRecord{}
	err = q.QueryRowContext(ctx,
		`SELECT m.id, m.asset_id, m.performed_on, m.description, m.cost, m.recorded_by, m.recorded_at, a.code
		 FROM maintenance_records m
		 JOIN assets a ON a.id = m.asset_id
		 WHERE m.id = ?`, id,
	).Scan(&r.ID, &r.AssetID, &r.PerformedOn, &r.Description, &r.Cost, &r.RecordedBy, &r.RecordedAt, &r.AssetCode)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting maintenance record: %w", err)
	}
	return r, nil
}

// ListMaintenance returns an asset's maintenance records, newest first.
func ListMaintenance(ctx context.Context, q db.DBTX, assetID int64) ([]model.MaintenanceRecord, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT m.id, m.asset_id, m.performed_on, m.description, m.cost, m.recorded_by, m.recorded_at, a.code
		 FROM maintenance_records m
		 JOIN assets a ON a.id = m.asset_id
		 WHERE m.asset_id = ?
		 ORDER BY m.performed_on DESC, m.id DESC`, assetID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing maintenance: %w", err)
	}
	defer rows.Close()

	var records []model.MaintenanceRecord
	for rows.Next() {
		var r model.MaintenanceRecord
		if err := rows.Scan(&r.ID, &r.AssetID, &r.PerformedOn, &r.Description, &r.Cost, &r.RecordedBy, &r.RecordedAt, &r.AssetCode); err != nil {
			return nil, fmt.Errorf("scanning maintenance record: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/assetpro/internal/db"
	"github.com/erazemk/assetpro/internal/model"
)

const custodySelect = `SELECT c.id, c.asset_id, c.from_username, c.from_name, c.to_username, c.to_name,
        c.note, c.transferred_by, c.transferred_at, a.code, a.name
 FROM custody_transfers c
 JOIN assets a ON a.id = c.asset_id`

// InsertCustodyTransfer appends a custody transfer record. It does not touch
// the asset; callers update the custodian in the same transaction.
func InsertCustodyTransfer(ctx context.Context, q db.DBTX, t model.CustodyTransfer) (*model.CustodyTransfer, error) {
	result, err := q.ExecContext(ctx,
		`INSERT INTO custody_transfers (asset_id, from_username, from_name, to_username, to_name, note, transferred_by)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.AssetID, t.FromUsername, t.FromName, t.ToUsername, t.ToName, t.Note, t.TransferredBy,
	)
	if err != nil {
		return nil, fmt.Errorf("recording custody transfer: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting custody transfer id: %w", err)
	}

	return GetCustodyTransfer(ctx, q, id)
}

// GetCustodyTransfer returns a custody transfer by ID.
func GetCustodyTransfer(ctx context.Context, q db.DBTX, id int64) (*model.CustodyTransfer, error) {
	rows, err := q.QueryContext(ctx, custodySelect+` WHERE c.id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("getting custody transfer: %w", err)
	}
	defer rows.Close()

	transfers, err := scanCustodyTransfers(rows)
	if err != nil {
		return nil, err
	}
	if len(transfers) == 0 {
		return nil, nil
	}
	return &transfers[0], nil
}

// ListCustodyTransfers returns the custody history of an asset, newest first.
func ListCustodyTransfers(ctx context.Context, q db.DBTX, assetID int64) ([]model.CustodyTransfer, error) {
	rows, err := q.QueryContext(ctx,
		custodySelect+` WHERE c.asset_id = ? ORDER BY c.transferred_at DESC, c.id DESC`, assetID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing custody transfers: %w", err)
	}
	defer rows.Close()

	return scanCustodyTransfers(rows)
}

func scanCustodyTransfers(rows *sql.Rows) ([]model.CustodyTransfer, error) {
	var transfers []model.CustodyTransfer
	for rows.Next() {
		var t model.CustodyTransfer
		if err := rows.Scan(&t.ID, &t.AssetID, &t.FromUsername, &t.FromName, &t.ToUsername, &t.ToName,
			&t.Note, &t.TransferredBy, &t.TransferredAt, &t.AssetCode, &t.AssetName); err != nil {
			return nil, fmt.Errorf("scanning custody transfer: %w", err)
		}
		transfers = append(transfers, t)
	}
	return transfers, rows.Err()
}

package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/assetpro/internal/db"
	"github.com/erazemk/assetpro/internal/model"
)

// CreateAssetType creates a new asset type.
func CreateAssetType(ctx context.Context, q db.DBTX, code, label string) (*model.AssetType, error) {
	_, err := q.ExecContext(ctx,
		`INSERT INTO asset_types (code, label) VALUES (?, ?)`,
		code, label,
	)
	if err != nil {
		return nil, fmt.Errorf("creating asset type: %w", err)
	}
	return GetAssetType(ctx, q, code)
}

// GetAssetType returns an asset type by code.
func GetAssetType(ctx context.Context, q db.DBTX, code string) (*model.AssetType, error) {
	t := &model.AssetType{}
	err := q.QueryRowContext(ctx,
		`SELECT code, label, created_at FROM asset_types WHERE code = ?`, code,
	).Scan(&t.Code, &t.Label, &t.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting asset type: %w", err)
	}
	return t, nil
}

// ListAssetTypes returns all asset types ordered by label.
func ListAssetTypes(ctx context.Context, q db.DBTX) ([]model.AssetType, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT code, label, created_at FROM asset_types ORDER BY label, code`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing asset types: %w", err)
	}
	defer rows.Close()

	var types []model.AssetType
	for rows.Next() {
		var t model.AssetType
		if err := rows.Scan(&t.Code, &t.Label, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning asset type: %w", err)
		}
		types = append(types, t)
	}
	return types, rows.Err()
}

// CountAssetsOfType returns how many assets reference the type.
func CountAssetsOfType(ctx context.Context, q db.DBTX, code string) (int, error) {
	var n int
	err := q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM assets WHERE type_code = ?`, code,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting assets of type: %w", err)
	}
	return n, nil
}

// DeleteAssetType removes an asset type. Callers check references first; the
// foreign key rejects the delete otherwise.
func DeleteAssetType(ctx context.Context, q db.DBTX, code string) error {
	_, err := q.ExecContext(ctx, `DELETE FROM asset_types WHERE code = ?`, code)
	if err != nil {
		return fmt.Errorf("deleting asset type: %w", err)
	}
	return nil
}

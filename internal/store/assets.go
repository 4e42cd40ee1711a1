package store

import (
	"context"
	"database/sql"
	"fmt"
	"iter"

	"github.com/erazemk/assetpro/internal/db"
	"github.com/erazemk/assetpro/internal/model"
)

const assetSelect = `SELECT a.id, a.code, a.name, a.type_code, a.acquired_on, a.location, a.condition, a.value,
        a.photo_mime, a.custodian_id, a.created_at, a.updated_at,
        COALESCE(t.label, ''), COALESCE(u.username, ''), COALESCE(u.display_name, '')
 FROM assets a
 LEFT JOIN asset_types t ON t.code = a.type_code
 LEFT JOIN users u ON u.id = a.custodian_id`

// Codes sort by length first so TV1000 follows TV999.
const assetOrder = ` ORDER BY length(a.code), a.code`

func scanAsset(s rowScanner) (*model.Asset, error) {
	a := &model.Asset{}
	var photoMime sql.NullString
	err := s.Scan(&a.ID, &a.Code, &a.Name, &a.TypeCode, &a.AcquiredOn, &a.Location, &a.Condition, &a.Value,
		&photoMime, &a.CustodianID, &a.CreatedAt, &a.UpdatedAt,
		&a.TypeLabel, &a.CustodianUsername, &a.CustodianName)
	if err != nil {
		return nil, err
	}
	a.PhotoMime = photoMime.String
	return a, nil
}

// InsertAsset inserts an asset under an already allocated code.
func InsertAsset(ctx context.Context, q db.DBTX, code string, na model.NewAsset, custodianID *int64) (*model.Asset, error) {
	result, err := q.ExecContext(ctx,
		`INSERT INTO assets (code, name, type_code, acquired_on, location, custodian_id, condition, value)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		code, na.Name, na.TypeCode, na.AcquiredOn, na.Location, custodianID, na.Condition, na.Value,
	)
	if err != nil {
		return nil, fmt.Errorf("creating asset: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting asset id: %w", err)
	}

	return GetAsset(ctx, q, id)
}

// GetAsset returns an asset by ID.
func GetAsset(ctx context.Context, q db.DBTX, id int64) (*model.Asset, error) {
	a, err := scanAsset(q.QueryRowContext(ctx, assetSelect+` WHERE a.id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting asset: %w", err)
	}
	return a, nil
}

// GetAssetByCode returns an asset by its code.
func GetAssetByCode(ctx context.Context, q db.DBTX, code string) (*model.Asset, error) {
	a, err := scanAsset(q.QueryRowContext(ctx, assetSelect+` WHERE a.code = ?`, code))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting asset by code: %w", err)
	}
	return a, nil
}

// ListAssets returns assets matching the filter, ordered by code. Rows are
// read as the sequence is consumed.
func ListAssets(ctx context.Context, q db.DBTX, f model.AssetFilter) iter.Seq2[model.Asset, error] {
	return func(yield func(model.Asset, error) bool) {
		query := assetSelect + ` WHERE 1=1`
		var args []any

		if f.TypeCode != "" {
			query += ` AND a.type_code = ?`
			args = append(args, f.TypeCode)
		}
		if f.CustodianUsername != "" {
			query += ` AND u.username = ? AND u.deleted_at IS NULL`
			args = append(args, f.CustodianUsername)
		}
		if f.CustodianID != 0 {
			query += ` AND a.custodian_id = ?`
			args = append(args, f.CustodianID)
		}
		if f.Condition != "" {
			query += ` AND a.condition = ?`
			args = append(args, f.Condition)
		}
		if f.Location != "" {
			query += ` AND a.location LIKE '%' || ? || '%'`
			args = append(args, f.Location)
		}
		if f.After != "" {
			query += ` AND (length(a.code) > length(?) OR (length(a.code) = length(?) AND a.code > ?))`
			args = append(args, f.After, f.After, f.After)
		}

		query += assetOrder

		if f.Limit > 0 {
			query += ` LIMIT ?`
			args = append(args, f.Limit)
		}

		rows, err := q.QueryContext(ctx, query, args...)
		if err != nil {
			yield(model.Asset{}, fmt.Errorf("listing assets: %w", err))
			return
		}
		defer rows.Close()

		for rows.Next() {
			a, err := scanAsset(rows)
			if err != nil {
				yield(model.Asset{}, fmt.Errorf("scanning asset: %w", err))
				return
			}
			if !yield(*a, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(model.Asset{}, fmt.Errorf("listing assets: %w", err))
		}
	}
}

// UpdateAssetDetails updates an asset's descriptive fields.
func UpdateAssetDetails(ctx context.Context, q db.DBTX, id int64, upd model.AssetUpdate) error {
	_, err := q.ExecContext(ctx,
		`UPDATE assets SET name = ?, type_code = ?, acquired_on = ?, location = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		upd.Name, upd.TypeCode, upd.AcquiredOn, upd.Location, id,
	)
	if err != nil {
		return fmt.Errorf("updating asset: %w", err)
	}
	return nil
}

// SetAssetCondition sets an asset's condition.
func SetAssetCondition(ctx context.Context, q db.DBTX, id int64, condition string) error {
	_, err := q.ExecContext(ctx,
		`UPDATE assets SET condition = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		condition, id,
	)
	if err != nil {
		return fmt.Errorf("setting asset condition: %w", err)
	}
	return nil
}

// SetAssetValue sets an asset's value in minor currency units.
func SetAssetValue(ctx context.Context, q db.DBTX, id int64, value int64) error {
	_, err := q.ExecContext(ctx,
		`UPDATE assets SET value = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		value, id,
	)
	if err != nil {
		return fmt.Errorf("setting asset value: %w", err)
	}
	return nil
}

// SetAssetCustodian points an asset at a new custodian.
func SetAssetCustodian(ctx context.Context, q db.DBTX, id, custodianID int64) error {
	_, err := q.ExecContext(ctx,
		`UPDATE assets SET custodian_id = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		custodianID, id,
	)
	if err != nil {
		return fmt.Errorf("setting asset custodian: %w", err)
	}
	return nil
}

// SetAssetPhoto sets an asset's photo data.
func SetAssetPhoto(ctx context.Context, q db.DBTX, id int64, photo []byte, mime string) error {
	_, err := q.ExecContext(ctx,
		`UPDATE assets SET photo = ?, photo_mime = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		photo, mime, id,
	)
	if err != nil {
		return fmt.Errorf("setting asset photo: %w", err)
	}
	return nil
}

// GetAssetPhoto returns an asset's photo data and MIME type.
func GetAssetPhoto(ctx context.Context, q db.DBTX, id int64) ([]byte, string, error) {
	var photo []byte
	var mime sql.NullString
	err := q.QueryRowContext(ctx,
		`SELECT photo, photo_mime FROM assets WHERE id = ?`, id,
	).Scan(&photo, &mime)
	if err == sql.ErrNoRows {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("getting asset photo: %w", err)
	}
	return photo, mime.String, nil
}

// AssetSummary aggregates the catalog.
type AssetSummary struct {
	Total       int
	TotalValue  int64
	ByCondition map[string]int
}

// SummarizeAssets counts assets per condition and sums their value.
func SummarizeAssets(ctx context.Context, q db.DBTX) (*AssetSummary, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT condition, COUNT(*), COALESCE(SUM(value), 0) FROM assets GROUP BY condition`,
	)
	if err != nil {
		return nil, fmt.Errorf("summarizing assets: %w", err)
	}
	defer rows.Close()

	s := &AssetSummary{ByCondition: make(map[string]int)}
	for rows.Next() {
		var condition string
		var count int
		var value int64
		if err := rows.Scan(&condition, &count, &value); err != nil {
			return nil, fmt.Errorf("scanning asset summary: %w", err)
		}
		s.ByCondition[condition] = count
		s.Total += count
		s.TotalValue += value
	}
	return s, rows.Err()
}

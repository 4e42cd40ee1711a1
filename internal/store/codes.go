package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/assetpro/internal/codes"
	"github.com/erazemk/assetpro/internal/db"
)

// AllocateCode reserves the next asset code of the scheme. It must run inside
// the transaction that inserts the asset: the counter and the existing codes
// are read and the counter is advanced under the same write lock.
func AllocateCode(ctx context.Context, q db.DBTX, scheme codes.Scheme) (string, error) {
	var last int64
	err := q.QueryRowContext(ctx,
		`SELECT last_value FROM code_sequences WHERE prefix = ?`, scheme.Prefix,
	).Scan(&last)
	if err != nil && err != sql.ErrNoRows {
		return "", fmt.Errorf("reading code sequence: %w", err)
	}

	// Codes written before the counter existed still count.
	rows, err := q.QueryContext(ctx,
		`SELECT code FROM assets WHERE substr(code, 1, length(?)) = ?`,
		scheme.Prefix, scheme.Prefix,
	)
	if err != nil {
		return "", fmt.Errorf("reading asset codes: %w", err)
	}
	defer rows.Close()

	var existing []string
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return "", fmt.Errorf("scanning asset code: %w", err)
		}
		existing = append(existing, code)
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("reading asset codes: %w", err)
	}

	code, n := scheme.Next(existing, last)

	_, err = q.ExecContext(ctx,
		`INSERT INTO code_sequences (prefix, last_value) VALUES (?, ?)
		 ON CONFLICT (prefix) DO UPDATE SET last_value = excluded.last_value`,
		scheme.Prefix, n,
	)
	if err != nil {
		return "", fmt.Errorf("advancing code sequence: %w", err)
	}

	return code, nil
}

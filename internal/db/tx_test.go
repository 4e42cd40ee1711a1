package db

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/erazemk/assetpro/internal/model"
)

// openPair opens two handles on the same file: holder with the default busy
// timeout and waiter with a short one.
func openPair(t *testing.T, wait time.Duration) (holder, waiter *sql.DB) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "locks.sqlite3")

	holder, err := Open(path, DefaultBusyTimeout)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { holder.Close() })
	if err := Migrate(holder); err != nil {
		t.Fatal(err)
	}

	waiter, err = Open(path, wait)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { waiter.Close() })

	return holder, waiter
}

func TestRunInTxReportsBusy(t *testing.T) {
	holder, waiter := openPair(t, 100*time.Millisecond)
	ctx := context.Background()

	// BEGIN IMMEDIATE takes the write lock and keeps it until rollback.
	tx, err := holder.BeginTx(ctx, nil)
	if err != nil {
		t.Fatal(err)
	}

	_, err = waiter.Exec(`INSERT INTO settings (key, value) VALUES ('a', '1')`)
	if !IsBusy(err) {
		t.Errorf("expected busy error from driver, got %v", err)
	}

	start := time.Now()
	err = RunInTx(ctx, waiter, func(ctx context.Context, q DBTX) error {
		_, err := q.ExecContext(ctx, `INSERT INTO settings (key, value) VALUES ('b', '2')`)
		return err
	})
	if !errors.Is(err, model.ErrBusy) {
		t.Fatalf("expected ErrBusy, got %v", err)
	}
	if elapsed := time.Since(start); elapsed < 100*time.Millisecond {
		t.Errorf("expected to wait for the busy timeout, returned after %v", elapsed)
	}

	if err := tx.Rollback(); err != nil {
		t.Fatal(err)
	}

	// Once the lock is released the same write goes through.
	err = RunInTx(ctx, waiter, func(ctx context.Context, q DBTX) error {
		_, err := q.ExecContext(ctx, `INSERT INTO settings (key, value) VALUES ('b', '2')`)
		return err
	})
	if err != nil {
		t.Errorf("RunInTx after release: %v", err)
	}
}

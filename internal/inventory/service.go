// Package inventory implements the asset register: users, assets and their
// types, code allocation, custody and maintenance history. Every operation
// takes the acting identity explicitly and checks it against the access
// table before touching the store.
package inventory

import (
	"context"
	"database/sql"
	"fmt"
	"iter"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/erazemk/assetpro/internal/codes"
	"github.com/erazemk/assetpro/internal/db"
	"github.com/erazemk/assetpro/internal/model"
	"github.com/erazemk/assetpro/internal/notify"
)

// Config holds service settings.
type Config struct {
	// Codes is the scheme new asset codes are allocated in.
	Codes codes.Scheme
	// BaseURL, when set, makes labels encode a lookup URL instead of a
	// text block.
	BaseURL string
	// PasswordCost is the bcrypt cost; zero means bcrypt.DefaultCost.
	PasswordCost int
}

// Service is the inventory core. It is safe for concurrent use.
type Service struct {
	db       *sql.DB
	notifier notify.Notifier
	cfg      Config

	// dummyHash is compared against when a login names an unknown user.
	dummyHash []byte
}

// New returns a Service backed by database. A nil notifier discards
// custody-change notices.
func New(database *sql.DB, notifier notify.Notifier, cfg Config) (*Service, error) {
	if cfg.Codes.Prefix == "" {
		cfg.Codes = codes.Default()
	}
	if cfg.PasswordCost == 0 {
		cfg.PasswordCost = bcrypt.DefaultCost
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if notifier == nil {
		notifier = notify.Noop{}
	}

	dummy, err := bcrypt.GenerateFromPassword([]byte("not a real password"), cfg.PasswordCost)
	if err != nil {
		return nil, fmt.Errorf("preparing password check: %w", err)
	}

	return &Service{
		db:        database,
		notifier:  notifier,
		cfg:       cfg,
		dummyHash: dummy,
	}, nil
}

func (s *Service) hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cfg.PasswordCost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(hash), nil
}

// tx runs fn in a write transaction.
func (s *Service) tx(ctx context.Context, fn func(ctx context.Context, tx db.DBTX) error) error {
	return db.RunInTx(ctx, s.db, fn)
}

// failed returns a sequence that yields err once.
func failed[T any](err error) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		var zero T
		yield(zero, err)
	}
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", model.ErrInvalidInput, fmt.Sprintf(format, args...))
}

func notFound(format string, args ...any) error {
	return fmt.Errorf("%w: %s", model.ErrNotFound, fmt.Sprintf(format, args...))
}

func logMutation(msg string, actor model.Identity, args ...any) {
	slog.Info(msg, append([]any{"user", actor.Username}, args...)...)
}

package inventory

import (
	"context"
	"fmt"
	"strings"

	"github.com/erazemk/assetpro/internal/access"
	"github.com/erazemk/assetpro/internal/db"
	"github.com/erazemk/assetpro/internal/model"
	"github.com/erazemk/assetpro/internal/store"
)

// CreateAssetType adds an asset type.
func (s *Service) CreateAssetType(ctx context.Context, actor model.Identity, code, label string) (*model.AssetType, error) {
	if err := access.Check(actor, access.CreateAssetType); err != nil {
		return nil, err
	}

	code = strings.TrimSpace(code)
	label = strings.TrimSpace(label)
	if code == "" || label == "" {
		return nil, invalid("type code and label are required")
	}

	var t *model.AssetType
	err := s.tx(ctx, func(ctx context.Context, tx db.DBTX) error {
		existing, err := store.GetAssetType(ctx, tx, code)
		if err != nil {
			return err
		}
		if existing != nil {
			return fmt.Errorf("%w: asset type %s", model.ErrDuplicateKey, code)
		}
		t, err = store.CreateAssetType(ctx, tx, code, label)
		if db.IsUniqueViolation(err) {
			return fmt.Errorf("%w: asset type %s", model.ErrDuplicateKey, code)
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	logMutation("asset type created", actor, "code", code, "label", label)
	return t, nil
}

// DeleteAssetType removes an asset type no asset refers to.
func (s *Service) DeleteAssetType(ctx context.Context, actor model.Identity, code string) error {
	if err := access.Check(actor, access.DeleteAssetType); err != nil {
		return err
	}

	err := s.tx(ctx, func(ctx context.Context, tx db.DBTX) error {
		t, err := store.GetAssetType(ctx, tx, code)
		if err != nil {
			return err
		}
		if t == nil {
			return notFound("asset type %s", code)
		}
		n, err := store.CountAssetsOfType(ctx, tx, code)
		if err != nil {
			return err
		}
		if n > 0 {
			return fmt.Errorf("%w: asset type %s is used by %d assets", model.ErrInUse, code, n)
		}
		return store.DeleteAssetType(ctx, tx, code)
	})
	if err != nil {
		return err
	}

	logMutation("asset type deleted", actor, "code", code)
	return nil
}

// ListAssetTypes returns all asset types ordered by label.
func (s *Service) ListAssetTypes(ctx context.Context, actor model.Identity) ([]model.AssetType, error) {
	if err := access.Check(actor, access.ListAssetTypes); err != nil {
		return nil, err
	}
	types, err := store.ListAssetTypes(ctx, s.db)
	if err != nil {
		return nil, db.Classify(err)
	}
	return types, nil
}

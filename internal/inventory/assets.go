package inventory

import (
	"context"
	"fmt"
	"io"
	"iter"
	"strings"

	"github.com/erazemk/assetpro/internal/access"
	"github.com/erazemk/assetpro/internal/db"
	"github.com/erazemk/assetpro/internal/imaging"
	"github.com/erazemk/assetpro/internal/model"
	"github.com/erazemk/assetpro/internal/store"
)

// CreateAsset registers a new asset under the next free code. An empty
// condition means model.ConditionNew.
func (s *Service) CreateAsset(ctx context.Context, actor model.Identity, na model.NewAsset) (*model.Asset, error) {
	if err := access.Check(actor, access.CreateAsset); err != nil {
		return nil, err
	}

	na.Name = strings.TrimSpace(na.Name)
	na.Location = strings.TrimSpace(na.Location)
	na.CustodianUsername = strings.TrimSpace(na.CustodianUsername)
	if na.Condition == "" {
		na.Condition = model.ConditionNew
	}
	switch {
	case na.Name == "":
		return nil, invalid("name is required")
	case na.Location == "":
		return nil, invalid("location is required")
	case !model.ValidDate(na.AcquiredOn):
		return nil, invalid("acquisition date %q is not YYYY-MM-DD", na.AcquiredOn)
	case na.Value < 0:
		return nil, invalid("value must not be negative")
	case !model.ValidCondition(na.Condition):
		return nil, invalid("unknown condition %q", na.Condition)
	}

	var asset *model.Asset
	err := s.tx(ctx, func(ctx context.Context, tx db.DBTX) error {
		t, err := store.GetAssetType(ctx, tx, na.TypeCode)
		if err != nil {
			return err
		}
		if t == nil {
			return fmt.Errorf("%w: asset type %q", model.ErrInvalidReference, na.TypeCode)
		}

		var custodianID *int64
		if na.CustodianUsername != "" {
			u, err := store.GetUserByUsername(ctx, tx, na.CustodianUsername)
			if err != nil {
				return err
			}
			if u == nil {
				return fmt.Errorf("%w: custodian %q", model.ErrInvalidReference, na.CustodianUsername)
			}
			custodianID = &u.ID
		}

		code, err := store.AllocateCode(ctx, tx, s.cfg.Codes)
		if err != nil {
			return err
		}
		asset, err = store.InsertAsset(ctx, tx, code, na, custodianID)
		if db.IsUniqueViolation(err) {
			return fmt.Errorf("%w: asset code %s", model.ErrDuplicateKey, code)
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	logMutation("asset created", actor, "code", asset.Code, "name", asset.Name)
	return asset, nil
}

// GetAsset returns an asset by code.
func (s *Service) GetAsset(ctx context.Context, actor model.Identity, code string) (*model.Asset, error) {
	if err := access.Check(actor, access.ViewAsset); err != nil {
		return nil, err
	}
	return s.assetByCode(ctx, code)
}

func (s *Service) assetByCode(ctx context.Context, code string) (*model.Asset, error) {
	asset, err := store.GetAssetByCode(ctx, s.db, code)
	if err != nil {
		return nil, db.Classify(err)
	}
	if asset == nil {
		return nil, notFound("asset %s", code)
	}
	return asset, nil
}

// ListAssets streams assets matching the filter in code order.
func (s *Service) ListAssets(ctx context.Context, actor model.Identity, f model.AssetFilter) iter.Seq2[model.Asset, error] {
	if err := access.Check(actor, access.ListAssets); err != nil {
		return failed[model.Asset](err)
	}
	if f.Condition != "" && !model.ValidCondition(f.Condition) {
		return failed[model.Asset](invalid("unknown condition %q", f.Condition))
	}
	if f.Limit < 0 {
		return failed[model.Asset](invalid("limit must not be negative"))
	}

	return func(yield func(model.Asset, error) bool) {
		for a, err := range store.ListAssets(ctx, s.db, f) {
			if !yield(a, db.Classify(err)) {
				return
			}
		}
	}
}

// UpdateAsset changes an asset's descriptive fields. The code never changes.
func (s *Service) UpdateAsset(ctx context.Context, actor model.Identity, code string, upd model.AssetUpdate) (*model.Asset, error) {
	if err := access.Check(actor, access.UpdateAsset); err != nil {
		return nil, err
	}

	upd.Name = strings.TrimSpace(upd.Name)
	upd.Location = strings.TrimSpace(upd.Location)
	switch {
	case upd.Name == "":
		return nil, invalid("name is required")
	case upd.Location == "":
		return nil, invalid("location is required")
	case !model.ValidDate(upd.AcquiredOn):
		return nil, invalid("acquisition date %q is not YYYY-MM-DD", upd.AcquiredOn)
	}

	asset, err := s.mutateAsset(ctx, code, func(ctx context.Context, tx db.DBTX, a *model.Asset) error {
		t, err := store.GetAssetType(ctx, tx, upd.TypeCode)
		if err != nil {
			return err
		}
		if t == nil {
			return fmt.Errorf("%w: asset type %q", model.ErrInvalidReference, upd.TypeCode)
		}
		return store.UpdateAssetDetails(ctx, tx, a.ID, upd)
	})
	if err != nil {
		return nil, err
	}

	logMutation("asset updated", actor, "code", code)
	return asset, nil
}

// UpdateCondition sets an asset's condition. A retired asset stays retired.
func (s *Service) UpdateCondition(ctx context.Context, actor model.Identity, code, condition string) (*model.Asset, error) {
	if err := access.Check(actor, access.UpdateAsset); err != nil {
		return nil, err
	}
	if !model.ValidCondition(condition) {
		return nil, invalid("unknown condition %q", condition)
	}

	asset, err := s.mutateAsset(ctx, code, func(ctx context.Context, tx db.DBTX, a *model.Asset) error {
		if err := checkConditionChange(a, condition); err != nil {
			return err
		}
		return store.SetAssetCondition(ctx, tx, a.ID, condition)
	})
	if err != nil {
		return nil, err
	}

	logMutation("asset condition changed", actor, "code", code, "condition", condition)
	return asset, nil
}

func checkConditionChange(a *model.Asset, condition string) error {
	if a.Condition == model.ConditionRetired && condition != model.ConditionRetired {
		return invalid("asset %s is retired", a.Code)
	}
	return nil
}

// RecordValue sets an asset's value in minor currency units.
func (s *Service) RecordValue(ctx context.Context, actor model.Identity, code string, amount int64) (*model.Asset, error) {
	if err := access.Check(actor, access.UpdateAsset); err != nil {
		return nil, err
	}
	if amount < 0 {
		return nil, invalid("value must not be negative")
	}

	asset, err := s.mutateAsset(ctx, code, func(ctx context.Context, tx db.DBTX, a *model.Asset) error {
		return store.SetAssetValue(ctx, tx, a.ID, amount)
	})
	if err != nil {
		return nil, err
	}

	logMutation("asset value recorded", actor, "code", code, "value", model.FormatMoney(amount))
	return asset, nil
}

// SetAssetPhoto replaces an asset's photo. The image is normalized to JPEG
// before the transaction starts.
func (s *Service) SetAssetPhoto(ctx context.Context, actor model.Identity, code string, r io.Reader) error {
	if err := access.Check(actor, access.UpdateAsset); err != nil {
		return err
	}

	photo, err := imaging.ProcessPhoto(r)
	if err != nil {
		return err
	}

	_, err = s.mutateAsset(ctx, code, func(ctx context.Context, tx db.DBTX, a *model.Asset) error {
		return store.SetAssetPhoto(ctx, tx, a.ID, photo.Data, photo.MIME)
	})
	if err != nil {
		return err
	}

	logMutation("asset photo uploaded", actor, "code", code, "bytes", len(photo.Data))
	return nil
}

// AssetPhoto returns an asset's photo and its MIME type.
func (s *Service) AssetPhoto(ctx context.Context, actor model.Identity, code string) ([]byte, string, error) {
	if err := access.Check(actor, access.ViewAsset); err != nil {
		return nil, "", err
	}
	asset, err := s.assetByCode(ctx, code)
	if err != nil {
		return nil, "", err
	}

	data, mime, err := store.GetAssetPhoto(ctx, s.db, asset.ID)
	if err != nil {
		return nil, "", db.Classify(err)
	}
	if len(data) == 0 {
		return nil, "", notFound("asset %s has no photo", code)
	}
	return data, mime, nil
}

// mutateAsset loads the asset by code inside a transaction, runs fn and
// returns the asset as stored afterwards.
func (s *Service) mutateAsset(ctx context.Context, code string, fn func(ctx context.Context, tx db.DBTX, a *model.Asset) error) (*model.Asset, error) {
	var asset *model.Asset
	err := s.tx(ctx, func(ctx context.Context, tx db.DBTX) error {
		a, err := store.GetAssetByCode(ctx, tx, code)
		if err != nil {
			return err
		}
		if a == nil {
			return notFound("asset %s", code)
		}
		if err := fn(ctx, tx, a); err != nil {
			return err
		}
		asset, err = store.GetAsset(ctx, tx, a.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return asset, nil
}

// Dashboard summarizes the catalog and lists the actor's own assets.
func (s *Service) Dashboard(ctx context.Context, actor model.Identity) (*model.Dashboard, error) {
	if err := access.Check(actor, access.ViewDashboard); err != nil {
		return nil, err
	}

	summary, err := store.SummarizeAssets(ctx, s.db)
	if err != nil {
		return nil, db.Classify(err)
	}

	d := &model.Dashboard{
		TotalAssets: summary.Total,
		TotalValue:  summary.TotalValue,
		ByCondition: make(map[string]int, len(model.Conditions)),
		InCustody:   []model.Asset{},
	}
	for _, c := range model.Conditions {
		d.ByCondition[c] = summary.ByCondition[c]
	}

	for a, err := range store.ListAssets(ctx, s.db, model.AssetFilter{CustodianID: actor.UserID}) {
		if err != nil {
			return nil, db.Classify(err)
		}
		d.InCustody = append(d.InCustody, a)
	}
	return d, nil
}

package inventory

import (
	"context"
	"log/slog"
	"strings"

	"github.com/erazemk/assetpro/internal/access"
	"github.com/erazemk/assetpro/internal/db"
	"github.com/erazemk/assetpro/internal/model"
	"github.com/erazemk/assetpro/internal/notify"
	"github.com/erazemk/assetpro/internal/store"
)

// TransferCustody hands an asset to another user and appends the transfer
// to its history. The notifier runs after commit; its failure is logged and
// does not affect the result.
func (s *Service) TransferCustody(ctx context.Context, actor model.Identity, code, username, note string) (*model.CustodyTransfer, error) {
	if err := access.Check(actor, access.TransferCustody); err != nil {
		return nil, err
	}
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, invalid("new custodian is required")
	}

	var (
		transfer *model.CustodyTransfer
		change   notify.CustodyChange
	)
	err := s.tx(ctx, func(ctx context.Context, tx db.DBTX) error {
		asset, err := store.GetAssetByCode(ctx, tx, code)
		if err != nil {
			return err
		}
		if asset == nil {
			return notFound("asset %s", code)
		}

		to, err := store.GetUserByUsername(ctx, tx, username)
		if err != nil {
			return err
		}
		if to == nil {
			return notFound("user %s", username)
		}
		if asset.CustodianID != nil && *asset.CustodianID == to.ID {
			return invalid("%s already holds %s", username, code)
		}

		if err := store.SetAssetCustodian(ctx, tx, asset.ID, to.ID); err != nil {
			return err
		}
		transfer, err = store.InsertCustodyTransfer(ctx, tx, model.CustodyTransfer{
			AssetID:       asset.ID,
			FromUsername:  asset.CustodianUsername,
			FromName:      asset.CustodianName,
			ToUsername:    to.Username,
			ToName:        to.DisplayName,
			Note:          strings.TrimSpace(note),
			TransferredBy: actor.Username,
		})
		if err != nil {
			return err
		}

		change = notify.CustodyChange{
			AssetCode: asset.Code,
			AssetName: asset.Name,
			Value:     asset.Value,
			FromName:  asset.CustodianName,
			ToName:    to.DisplayName,
			ToEmail:   to.Email,
			Note:      transfer.Note,
			By:        actor.Username,
			At:        transfer.TransferredAt,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logMutation("custody transferred", actor, "code", code, "from", transfer.FromUsername, "to", transfer.ToUsername)

	if err := s.notifier.NotifyCustodyChange(ctx, change); err != nil {
		slog.Error("custody notification failed", "code", code, "error", err)
	}
	return transfer, nil
}

// RecordMaintenance appends a maintenance record to an asset and, when the
// record carries a condition, applies it in the same transaction.
func (s *Service) RecordMaintenance(ctx context.Context, actor model.Identity, code string, m model.NewMaintenance) (*model.MaintenanceRecord, error) {
	if err := access.Check(actor, access.RecordMaintenance); err != nil {
		return nil, err
	}

	m.Description = strings.TrimSpace(m.Description)
	switch {
	case m.PerformedOn == "" || !model.ValidDate(m.PerformedOn):
		return nil, invalid("maintenance date %q is not YYYY-MM-DD", m.PerformedOn)
	case m.Description == "":
		return nil, invalid("description is required")
	case m.Cost < 0:
		return nil, invalid("cost must not be negative")
	case m.Condition != "" && !model.ValidCondition(m.Condition):
		return nil, invalid("unknown condition %q", m.Condition)
	}

	var record *model.MaintenanceRecord
	_, err := s.mutateAsset(ctx, code, func(ctx context.Context, tx db.DBTX, a *model.Asset) error {
		if m.Condition != "" {
			if err := checkConditionChange(a, m.Condition); err != nil {
				return err
			}
			if err := store.SetAssetCondition(ctx, tx, a.ID, m.Condition); err != nil {
				return err
			}
		}
		var err error
		record, err = store.InsertMaintenance(ctx, tx, a.ID, m, actor.Username)
		return err
	})
	if err != nil {
		return nil, err
	}

	logMutation("maintenance recorded", actor, "code", code, "cost", model.FormatMoney(m.Cost))
	return record, nil
}

// CustodyHistory returns an asset's custody transfers, newest first.
func (s *Service) CustodyHistory(ctx context.Context, actor model.Identity, code string) ([]model.CustodyTransfer, error) {
	if err := access.Check(actor, access.ViewHistory); err != nil {
		return nil, err
	}
	asset, err := s.assetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	history, err := store.ListCustodyTransfers(ctx, s.db, asset.ID)
	if err != nil {
		return nil, db.Classify(err)
	}
	return history, nil
}

// MaintenanceHistory returns an asset's maintenance records, newest first.
func (s *Service) MaintenanceHistory(ctx context.Context, actor model.Identity, code string) ([]model.MaintenanceRecord, error) {
	if err := access.Check(actor, access.ViewHistory); err != nil {
		return nil, err
	}
	asset, err := s.assetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	records, err := store.ListMaintenance(ctx, s.db, asset.ID)
	if err != nil {
		return nil, db.Classify(err)
	}
	return records, nil
}

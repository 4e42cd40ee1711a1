package store

import (
	"context"
	"testing"

	"github.com/erazemk/assetpro/internal/db"
	"github.com/erazemk/assetpro/internal/model"
)

func TestCustodyTransferHistory(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	CreateAssetType(ctx, database, "EL", "Electronics")
	alice, _ := CreateUser(ctx, database, model.NewUser{Username: "alice", DisplayName: "Alice", Role: model.RoleUser}, "hash")
	bob, _ := CreateUser(ctx, database, model.NewUser{Username: "bob", DisplayName: "Bob", Role: model.RoleUser}, "hash")
	asset := insertAsset(t, database, model.NewAsset{Name: "Projector", TypeCode: "EL", Location: "Room 101"}, &alice.ID)

	first, err := InsertCustodyTransfer(ctx, database, model.CustodyTransfer{
		AssetID:       asset.ID,
		FromUsername:  "alice",
		FromName:      "Alice",
		ToUsername:    "bob",
		ToName:        "Bob",
		Note:          "handover",
		TransferredBy: "admin",
	})
	if err != nil {
		t.Fatalf("InsertCustodyTransfer: %v", err)
	}
	if first.AssetCode != asset.Code || first.AssetName != "Projector" {
		t.Errorf("expected joined asset fields, got %+v", first)
	}
	SetAssetCustodian(ctx, database, asset.ID, bob.ID)

	InsertCustodyTransfer(ctx, database, model.CustodyTransfer{
		AssetID:       asset.ID,
		FromUsername:  "bob",
		FromName:      "Bob",
		ToUsername:    "alice",
		ToName:        "Alice",
		TransferredBy: "admin",
	})

	history, err := ListCustodyTransfers(ctx, database, asset.ID)
	if err != nil {
		t.Fatalf("ListCustodyTransfers: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected 2 transfers, got %d", len(history))
	}
	if history[0].ToUsername != "alice" || history[1].ToUsername != "bob" {
		t.Errorf("expected newest first, got %s then %s", history[0].ToUsername, history[1].ToUsername)
	}

	got, _ := GetAsset(ctx, database, asset.ID)
	if got.CustodianUsername != "bob" {
		t.Errorf("expected custodian bob, got %q", got.CustodianUsername)
	}
}

func TestCustodyNamesSurviveUserDeletion(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	CreateAssetType(ctx, database, "EL", "Electronics")
	carol, _ := CreateUser(ctx, database, model.NewUser{Username: "carol", DisplayName: "Carol", Role: model.RoleUser}, "hash")
	asset := insertAsset(t, database, model.NewAsset{Name: "Laptop", TypeCode: "EL", Location: "Office"}, nil)

	InsertCustodyTransfer(ctx, database, model.CustodyTransfer{
		AssetID:       asset.ID,
		ToUsername:    "carol",
		ToName:        "Carol",
		TransferredBy: "admin",
	})
	DeleteUser(ctx, database, carol.ID)

	history, _ := ListCustodyTransfers(ctx, database, asset.ID)
	if len(history) != 1 || history[0].ToName != "Carol" {
		t.Errorf("expected snapshot name Carol, got %+v", history)
	}
}

func TestMaintenanceRecords(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	CreateAssetType(ctx, database, "EL", "Electronics")
	asset := insertAsset(t, database, model.NewAsset{Name: "Printer", TypeCode: "EL", Location: "Office"}, nil)

	r, err := InsertMaintenance(ctx, database, asset.ID, model.NewMaintenance{
		PerformedOn: "2024-03-01",
		Description: "Replaced drum",
		Cost:        8900,
	}, "admin")
	if err != nil {
		t.Fatalf("InsertMaintenance: %v", err)
	}
	if r.AssetCode != asset.Code || r.RecordedBy != "admin" {
		t.Errorf("unexpected record: %+v", r)
	}

	InsertMaintenance(ctx, database, asset.ID, model.NewMaintenance{PerformedOn: "2024-05-10", Description: "Cleaning"}, "admin")
	InsertMaintenance(ctx, database, asset.ID, model.NewMaintenance{PerformedOn: "2023-12-24", Description: "Inspection"}, "admin")

	records, err := ListMaintenance(ctx, database, asset.ID)
	if err != nil {
		t.Fatalf("ListMaintenance: %v", err)
	}
	want := []string{"2024-05-10", "2024-03-01", "2023-12-24"}
	if len(records) != len(want) {
		t.Fatalf("expected %d records, got %d", len(want), len(records))
	}
	for i := range want {
		if records[i].PerformedOn != want[i] {
			t.Errorf("record %d performed on %q, want %q", i, records[i].PerformedOn, want[i])
		}
	}
}

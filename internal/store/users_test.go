package store

import (
	"context"
	"testing"

	"github.com/erazemk/assetpro/internal/db"
	"github.com/erazemk/assetpro/internal/model"
)

func newUser(username, role string) model.NewUser {
	return model.NewUser{Username: username, DisplayName: username, Role: role}
}

func TestCreateAndGetUser(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	user, err := CreateUser(ctx, database, model.NewUser{
		Username:    "alice",
		DisplayName: "Alice",
		Role:        model.RoleUser,
		Email:       "alice@example.com",
		OrgUnit:     "IT",
		Building:    "A",
		Room:        "101",
	}, "hash123")
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if user.Username != "alice" || user.DisplayName != "Alice" {
		t.Errorf("unexpected user: %+v", user)
	}
	if user.Room != "101" || user.OrgUnit != "IT" {
		t.Errorf("org fields not stored: %+v", user)
	}

	got, err := GetUser(ctx, database, user.ID)
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if got.PasswordHash != "hash123" {
		t.Errorf("expected hash 'hash123', got %q", got.PasswordHash)
	}
}

func TestGetUserByUsername(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	CreateUser(ctx, database, newUser("alice", model.RoleAdmin), "hash")

	user, err := GetUserByUsername(ctx, database, "alice")
	if err != nil {
		t.Fatalf("GetUserByUsername: %v", err)
	}
	if user == nil {
		t.Fatal("expected user, got nil")
	}

	missing, err := GetUserByUsername(ctx, database, "bob")
	if err != nil {
		t.Fatalf("GetUserByUsername: %v", err)
	}
	if missing != nil {
		t.Error("expected nil for missing user")
	}
}

func TestDeleteUserFreesUsername(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	user, _ := CreateUser(ctx, database, newUser("bob", model.RoleUser), "hash")
	if err := DeleteUser(ctx, database, user.ID); err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}

	users, _ := ListUsers(ctx, database)
	if len(users) != 0 {
		t.Errorf("expected 0 users after delete, got %d", len(users))
	}

	// Soft-deleted row is kept for history.
	got, _ := GetUser(ctx, database, user.ID)
	if got == nil || got.DeletedAt == nil {
		t.Fatal("expected soft-deleted user to remain with deleted_at set")
	}

	if _, err := CreateUser(ctx, database, newUser("bob", model.RoleUser), "hash"); err != nil {
		t.Errorf("expected username to be reusable after delete: %v", err)
	}

	n, _ := CountUsers(ctx, database)
	if n != 2 {
		t.Errorf("expected 2 rows counted, got %d", n)
	}
}

func TestDuplicateActiveUsernameRejected(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	CreateUser(ctx, database, newUser("carol", model.RoleUser), "hash")
	_, err := CreateUser(ctx, database, newUser("carol", model.RoleUser), "hash")
	if !db.IsUniqueViolation(err) {
		t.Errorf("expected unique violation, got %v", err)
	}
}

func TestUpdateUserAndPassword(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	user, _ := CreateUser(ctx, database, newUser("dave", model.RoleUser), "oldhash")

	err := UpdateUser(ctx, database, user.ID, model.UserUpdate{
		DisplayName: "Dave D.",
		Role:        model.RoleAdmin,
		Email:       "dave@example.com",
	})
	if err != nil {
		t.Fatalf("UpdateUser: %v", err)
	}
	UpdateUserPassword(ctx, database, user.ID, "newhash")

	got, _ := GetUser(ctx, database, user.ID)
	if got.DisplayName != "Dave D." || got.Role != model.RoleAdmin || got.Email != "dave@example.com" {
		t.Errorf("update not applied: %+v", got)
	}
	if got.PasswordHash != "newhash" {
		t.Errorf("expected password hash 'newhash', got %q", got.PasswordHash)
	}
}

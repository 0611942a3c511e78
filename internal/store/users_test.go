package store

import (
	"context"
	"errors"
	"testing"

	"github.com/divegear/gearbase/internal/db"
	"github.com/divegear/gearbase/internal/model"
)

func TestCreateUserDuplicate(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	if _, err := CreateUser(ctx, database, "alice", "hash", model.RoleAdmin); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	if _, err := CreateUser(ctx, database, "alice", "hash", model.RoleUser); err == nil {
		t.Error("expected error creating duplicate username")
	}
}

func TestDeleteUserFreesUsername(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	user, _ := CreateUser(ctx, database, "bob", "hash", model.RoleLender)
	if err := DeleteUser(ctx, database, user.ID); err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}

	// Soft-deleted users do not block the name.
	if _, err := CreateUser(ctx, database, "bob", "hash", model.RoleLender); err != nil {
		t.Errorf("expected username reusable after delete, got %v", err)
	}

	// And they can no longer log in.
	got, _ := GetUserByUsername(ctx, database, "bob")
	if got == nil {
		t.Fatal("new bob should be found")
	}
	if got.ID == user.ID {
		t.Error("lookup should return the new user, not the deleted one")
	}
}

func TestUpdateUserRole(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	user, _ := CreateUser(ctx, database, "carol", "hash", model.RoleUser)

	if err := UpdateUserRole(ctx, database, user.ID, model.RoleLender); err != nil {
		t.Fatalf("UpdateUserRole: %v", err)
	}

	got, _ := GetUser(ctx, database, user.ID)
	if got.Role != model.RoleLender {
		t.Errorf("expected role lender, got %s", got.Role)
	}

	if err := UpdateUserRole(ctx, database, 999, model.RoleAdmin); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

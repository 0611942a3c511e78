package store

import (
	"context"
	"testing"

	"github.com/divegear/gearbase/internal/db"
)

func TestGetJWTSecretStable(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	first, err := GetJWTSecret(ctx, database)
	if err != nil {
		t.Fatalf("GetJWTSecret: %v", err)
	}
	if first == "" {
		t.Fatal("secret should not be empty")
	}

	second, err := GetJWTSecret(ctx, database)
	if err != nil {
		t.Fatalf("GetJWTSecret again: %v", err)
	}
	if second != first {
		t.Error("secret should be stable across calls")
	}
}

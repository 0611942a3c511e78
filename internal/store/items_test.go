package store

import (
	"context"
	"errors"
	"testing"

	"github.com/divegear/gearbase/internal/db"
	"github.com/divegear/gearbase/internal/model"
)

func TestRegisterItemDuplicateReference(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	if _, err := RegisterItem(ctx, database, &model.Item{Type: model.TypeMask, Reference: 1}); err != nil {
		t.Fatalf("RegisterItem: %v", err)
	}

	_, err := RegisterItem(ctx, database, &model.Item{Type: model.TypeMask, Reference: 1})
	if !errors.Is(err, ErrDuplicateReference) {
		t.Errorf("expected ErrDuplicateReference, got %v", err)
	}

	// Same reference on another type is fine.
	if _, err := RegisterItem(ctx, database, &model.Item{Type: model.TypeFin, Reference: 1}); err != nil {
		t.Errorf("RegisterItem other type: %v", err)
	}
}

func TestRegisterItemDuplicateSerial(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	first, err := RegisterItem(ctx, database, &model.Item{Type: model.TypeTank, Reference: 1, SerialNb: "FB-2041"})
	if err != nil {
		t.Fatalf("RegisterItem: %v", err)
	}
	if err := TrashItem(ctx, database, first.ID); err != nil {
		t.Fatalf("TrashItem: %v", err)
	}

	// Trashing frees the reference, but the same physical tank cannot be
	// registered twice: the serial guard covers trashed items too.
	_, err = RegisterItem(ctx, database, &model.Item{Type: model.TypeTank, Reference: 1, SerialNb: "FB-2041"})
	if !errors.Is(err, ErrDuplicateSerial) {
		t.Errorf("expected ErrDuplicateSerial, got %v", err)
	}

	// A different tank may take over the reference.
	if _, err := RegisterItem(ctx, database, &model.Item{Type: model.TypeTank, Reference: 1, SerialNb: "FB-3117"}); err != nil {
		t.Errorf("RegisterItem with new serial: %v", err)
	}
}

func TestUpdateItemSerialConflict(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	old, _ := RegisterItem(ctx, database, &model.Item{Type: model.TypeTank, Reference: 4, SerialNb: "FB-0001"})
	TrashItem(ctx, database, old.ID)
	item, _ := RegisterItem(ctx, database, &model.Item{Type: model.TypeTank, Reference: 4, SerialNb: "FB-0002"})

	item.SerialNb = "FB-0001"
	if err := UpdateItem(ctx, database, item); !errors.Is(err, ErrDuplicateSerial) {
		t.Errorf("expected ErrDuplicateSerial, got %v", err)
	}
}

func TestRegisterItemUnknownType(t *testing.T) {
	database := db.NewTestDB(t)

	_, err := RegisterItem(context.Background(), database, &model.Item{Type: "submarine", Reference: 1})
	if err == nil {
		t.Error("expected error for unknown item type")
	}
}

func TestTrashFreesReference(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	first, _ := RegisterItem(ctx, database, &model.Item{Type: model.TypeTank, Reference: 3})
	if err := TrashItem(ctx, database, first.ID); err != nil {
		t.Fatalf("TrashItem: %v", err)
	}

	// The reference is reusable once the holder is trashed.
	second, err := RegisterItem(ctx, database, &model.Item{Type: model.TypeTank, Reference: 3})
	if err != nil {
		t.Fatalf("RegisterItem after trash: %v", err)
	}

	// Reviving the old item must now fail: the reference is taken.
	err = UntrashItem(ctx, database, first.ID)
	if !errors.Is(err, ErrReferenceConflict) {
		t.Errorf("expected ErrReferenceConflict, got %v", err)
	}

	item, _ := GetItem(ctx, database, second.ID, false)
	if item == nil || item.IsTrashed {
		t.Error("second item should remain live")
	}
}

func TestUntrashRestoresItem(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	item, _ := RegisterItem(ctx, database, &model.Item{Type: model.TypeBCD, Reference: 7})
	TrashItem(ctx, database, item.ID)

	if err := UntrashItem(ctx, database, item.ID); err != nil {
		t.Fatalf("UntrashItem: %v", err)
	}

	restored, _ := GetItem(ctx, database, item.ID, false)
	if restored == nil {
		t.Fatal("item should be visible again")
	}
	if restored.IsTrashed {
		t.Error("item should not be trashed")
	}
}

func TestUpdateItemReferenceImmutable(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	item, _ := RegisterItem(ctx, database, &model.Item{Type: model.TypeSuit, Reference: 2})

	item.Reference = 5
	if err := UpdateItem(ctx, database, item); err == nil {
		t.Error("expected error changing reference")
	}
}

func TestUpdateItemAttributes(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	item, _ := RegisterItem(ctx, database, &model.Item{Type: model.TypeSuit, Reference: 2})

	thickness := 5.5
	item.Brand = "Beuchat"
	item.Gender = model.GenderFemale
	item.Thickness = &thickness
	if err := UpdateItem(ctx, database, item); err != nil {
		t.Fatalf("UpdateItem: %v", err)
	}

	got, _ := GetItem(ctx, database, item.ID, false)
	if got.Brand != "Beuchat" || got.Gender != model.GenderFemale {
		t.Errorf("attributes not updated: %+v", got)
	}
	if got.Thickness == nil || *got.Thickness != 5.5 {
		t.Errorf("expected thickness 5.5, got %v", got.Thickness)
	}
}

func TestListItemsDefaultsToPresentUsable(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	RegisterItem(ctx, database, &model.Item{Type: model.TypeFin, Reference: 1})

	items, err := ListItems(ctx, database, model.TypeFin, false)
	if err != nil {
		t.Fatalf("ListItems: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	if items[0].IsPresent == nil || !*items[0].IsPresent {
		t.Error("unobserved item should default to present")
	}
	if items[0].IsUsable == nil || !*items[0].IsUsable {
		t.Error("unobserved item should default to usable")
	}
}

func TestItemIDByReference(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	item, _ := RegisterItem(ctx, database, &model.Item{Type: model.TypeLamp, Reference: 9})

	id, err := ItemIDByReference(ctx, database, model.TypeLamp, 9)
	if err != nil {
		t.Fatalf("ItemIDByReference: %v", err)
	}
	if id != item.ID {
		t.Errorf("expected id %d, got %d", item.ID, id)
	}

	_, err = ItemIDByReference(ctx, database, model.TypeLamp, 99)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

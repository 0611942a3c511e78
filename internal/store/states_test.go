package store

import (
	"context"
	"errors"
	"testing"

	"github.com/divegear/gearbase/internal/db"
	"github.com/divegear/gearbase/internal/model"
)

func TestRecordStateOnePerDay(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	item, _ := RegisterItem(ctx, database, &model.Item{Type: model.TypeMask, Reference: 1})

	if _, err := RecordState(ctx, database, &model.ItemState{
		ItemID: item.ID, Date: "2026-04-01", IsPresent: true, IsUsable: true,
	}); err != nil {
		t.Fatalf("RecordState: %v", err)
	}

	_, err := RecordState(ctx, database, &model.ItemState{
		ItemID: item.ID, Date: "2026-04-01", IsPresent: false, IsUsable: false,
	})
	if !errors.Is(err, ErrDuplicateState) {
		t.Errorf("expected ErrDuplicateState, got %v", err)
	}
}

func TestRecordStateUnknownItem(t *testing.T) {
	database := db.NewTestDB(t)

	_, err := RecordState(context.Background(), database, &model.ItemState{
		ItemID: 42, Date: "2026-04-01", IsPresent: true, IsUsable: true,
	})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestRecordStateInvalidDate(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	item, _ := RegisterItem(ctx, database, &model.Item{Type: model.TypeMask, Reference: 1})

	_, err := RecordState(ctx, database, &model.ItemState{
		ItemID: item.ID, Date: "01/04/2026", IsPresent: true, IsUsable: true,
	})
	if err == nil {
		t.Error("expected error for malformed date")
	}
}

func TestCurrentStatusUsesNewestObservation(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	item, _ := RegisterItem(ctx, database, &model.Item{Type: model.TypeComputer, Reference: 1})

	// Observations inserted out of chronological order: the status must
	// follow the newest date, not the newest row.
	RecordState(ctx, database, &model.ItemState{ItemID: item.ID, Date: "2026-05-01", IsPresent: true, IsUsable: false})
	RecordState(ctx, database, &model.ItemState{ItemID: item.ID, Date: "2026-03-01", IsPresent: true, IsUsable: true})

	status, err := CurrentStatus(ctx, database, item.ID)
	if err != nil {
		t.Fatalf("CurrentStatus: %v", err)
	}
	if status.IsUsable {
		t.Error("status should come from the 2026-05-01 observation")
	}
}

func TestCurrentStatusDefault(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	item, _ := RegisterItem(ctx, database, &model.Item{Type: model.TypeComputer, Reference: 1})

	status, err := CurrentStatus(ctx, database, item.ID)
	if err != nil {
		t.Fatalf("CurrentStatus: %v", err)
	}
	if !status.IsPresent || !status.IsUsable {
		t.Error("unobserved item should default to present and usable")
	}
}

func TestLastStatesPerType(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	a, _ := RegisterItem(ctx, database, &model.Item{Type: model.TypeFin, Reference: 1})
	b, _ := RegisterItem(ctx, database, &model.Item{Type: model.TypeFin, Reference: 2})

	RecordState(ctx, database, &model.ItemState{ItemID: a.ID, Date: "2026-01-01", IsPresent: false, IsUsable: true})
	RecordState(ctx, database, &model.ItemState{ItemID: a.ID, Date: "2026-02-01", IsPresent: true, IsUsable: true})

	statuses, err := LastStates(ctx, database, model.TypeFin)
	if err != nil {
		t.Fatalf("LastStates: %v", err)
	}
	if !statuses[a.ID].IsPresent {
		t.Error("newest observation should win")
	}
	if _, observed := statuses[b.ID]; observed {
		t.Error("unobserved item should be absent from the map")
	}
}

func TestUpdateAndDeleteState(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	item, _ := RegisterItem(ctx, database, &model.Item{Type: model.TypeFin, Reference: 1})
	state, _ := RecordState(ctx, database, &model.ItemState{
		ItemID: item.ID, Date: "2026-01-01", IsPresent: true, IsUsable: true,
	})

	state.IsUsable = false
	if err := UpdateState(ctx, database, state); err != nil {
		t.Fatalf("UpdateState: %v", err)
	}

	status, _ := CurrentStatus(ctx, database, item.ID)
	if status.IsUsable {
		t.Error("update should be visible")
	}

	if err := DeleteState(ctx, database, state.ID); err != nil {
		t.Fatalf("DeleteState: %v", err)
	}
	if err := DeleteState(ctx, database, state.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

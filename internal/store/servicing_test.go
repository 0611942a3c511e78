package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/divegear/gearbase/internal/db"
	"github.com/divegear/gearbase/internal/model"
)

func TestSendToServicingAllOrNothing(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	item, _ := RegisterItem(ctx, database, &model.Item{Type: model.TypeFirstStage, Reference: 1})

	err := SendToServicing(ctx, database, []int64{item.ID, 999})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	// The existing item must not have been flagged.
	got, _ := GetItem(ctx, database, item.ID, false)
	if got.IsServicing {
		t.Error("batch with a missing id should change nothing")
	}
}

func TestServicingRoundTripResetsUsage(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	item, _ := RegisterItem(ctx, database, &model.Item{Type: model.TypeFirstStage, Reference: 1})
	database.ExecContext(ctx, `UPDATE items SET usage_counter = 500 WHERE id = ?`, item.ID)

	if err := SendToServicing(ctx, database, []int64{item.ID}); err != nil {
		t.Fatalf("SendToServicing: %v", err)
	}

	inShop, _ := ItemsInServicing(ctx, database)
	if len(inShop) != 1 || inShop[0].ID != item.ID {
		t.Fatalf("expected the item in servicing, got %+v", inShop)
	}

	servicing, err := ReturnFromServicing(ctx, database, item.ID, "2026-08-01", "report.jpg")
	if err != nil {
		t.Fatalf("ReturnFromServicing: %v", err)
	}
	if servicing.Date != "2026-08-01" || servicing.ReportFile != "report.jpg" {
		t.Errorf("unexpected servicing record: %+v", servicing)
	}

	got, _ := GetItem(ctx, database, item.ID, false)
	if got.IsServicing {
		t.Error("servicing flag should be cleared")
	}
	if got.UsageCounter != 0 {
		t.Errorf("usage counter should reset, got %d", got.UsageCounter)
	}

	history, _ := ListServicings(ctx, database, item.ID)
	if len(history) != 1 {
		t.Errorf("expected the return to append one record, got %d", len(history))
	}
}

func TestReturnFromServicingUnknownItem(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	_, err := ReturnFromServicing(ctx, database, 999, "2026-08-01", "")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	// The failed return must not leave a stray maintenance record behind.
	var count int
	database.QueryRowContext(ctx, `SELECT COUNT(*) FROM servicings`).Scan(&count)
	if count != 0 {
		t.Errorf("expected no servicing records, got %d", count)
	}
}

func TestItemsNeedingService(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	worn, _ := RegisterItem(ctx, database, &model.Item{Type: model.TypeFirstStage, Reference: 1})
	boundary, _ := RegisterItem(ctx, database, &model.Item{Type: model.TypeFirstStage, Reference: 2})
	fresh, _ := RegisterItem(ctx, database, &model.Item{Type: model.TypeFirstStage, Reference: 3})

	// UsageMax is 99999, so the cutoff sits at 79999.2: an item at exactly
	// 80000 is due, one at 79999 is not.
	database.ExecContext(ctx, `UPDATE items SET usage_counter = 99994 WHERE id = ?`, worn.ID)
	database.ExecContext(ctx, `UPDATE items SET usage_counter = 80000 WHERE id = ?`, boundary.ID)
	database.ExecContext(ctx, `UPDATE items SET usage_counter = 79999 WHERE id = ?`, fresh.ID)

	due, err := ItemsNeedingService(ctx, database, model.UsageMax)
	if err != nil {
		t.Fatalf("ItemsNeedingService: %v", err)
	}
	if len(due) != 2 {
		t.Fatalf("expected 2 items due, got %d: %+v", len(due), due)
	}
	if due[0].ItemID != worn.ID {
		t.Errorf("expected the worn item first, got %+v", due[0])
	}
	if due[0].Remaining != 5 {
		t.Errorf("expected 5 dives remaining, got %d", due[0].Remaining)
	}
	if due[1].ItemID != boundary.ID {
		t.Errorf("item at exactly four fifths of the limit should be due, got %+v", due[1])
	}
	if due[1].Remaining != 19999 {
		t.Errorf("expected 19999 dives remaining, got %d", due[1].Remaining)
	}
}

func TestItemsNeedingServiceSkipsItemsInShop(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	item, _ := RegisterItem(ctx, database, &model.Item{Type: model.TypeFirstStage, Reference: 1})
	database.ExecContext(ctx, `UPDATE items SET usage_counter = 99000 WHERE id = ?`, item.ID)
	SendToServicing(ctx, database, []int64{item.ID})

	due, _ := ItemsNeedingService(ctx, database, model.UsageMax)
	if len(due) != 0 {
		t.Errorf("item already in servicing should not be listed, got %+v", due)
	}
}

func TestServicingCompliance(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	recent, _ := RegisterItem(ctx, database, &model.Item{Type: model.TypeFirstStage, Reference: 1})
	stale, _ := RegisterItem(ctx, database, &model.Item{Type: model.TypeFirstStage, Reference: 2})
	never, _ := RegisterItem(ctx, database, &model.Item{Type: model.TypeFirstStage, Reference: 3})

	recentDate := time.Now().AddDate(0, -1, 0).Format(model.DateLayout)
	staleDate := time.Now().AddDate(-2, 0, 0).Format(model.DateLayout)
	AddServicing(ctx, database, recent.ID, recentDate, "")
	AddServicing(ctx, database, stale.ID, staleDate, "")

	compliant, err := CompliantItems(ctx, database, model.TypeFirstStage)
	if err != nil {
		t.Fatalf("CompliantItems: %v", err)
	}
	if !compliant[recent.ID] {
		t.Error("recently serviced item should be compliant")
	}
	if compliant[stale.ID] {
		t.Error("item serviced two years ago should not be compliant")
	}
	if compliant[never.ID] {
		t.Error("never-serviced item should not be compliant")
	}

	ok, _ := IsCompliant(ctx, database, recent.ID)
	if !ok {
		t.Error("IsCompliant should agree with CompliantItems")
	}
}

func TestListServicings(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	item, _ := RegisterItem(ctx, database, &model.Item{Type: model.TypeFirstStage, Reference: 1})
	AddServicing(ctx, database, item.ID, "2025-06-01", "report-a.jpg")
	AddServicing(ctx, database, item.ID, "2026-06-01", "report-b.jpg")

	servicings, err := ListServicings(ctx, database, item.ID)
	if err != nil {
		t.Fatalf("ListServicings: %v", err)
	}
	if len(servicings) != 2 {
		t.Fatalf("expected 2 servicings, got %d", len(servicings))
	}
	if servicings[0].Date != "2025-06-01" || servicings[1].Date != "2026-06-01" {
		t.Errorf("servicings should be oldest first, got %+v", servicings)
	}
}

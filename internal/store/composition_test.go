package store

import (
	"context"
	"testing"

	"github.com/divegear/gearbase/internal/db"
	"github.com/divegear/gearbase/internal/model"
)

func TestAttachPartSelfOwnership(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	item, _ := RegisterItem(ctx, database, &model.Item{Type: model.TypeFirstStage, Reference: 1})

	if _, err := AttachPart(ctx, database, item.ID, item.ID, "2026-01-10"); err == nil {
		t.Error("expected error attaching item to itself")
	}
}

func TestResolveCompositesLastClaimWins(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	rootA, _ := RegisterItem(ctx, database, &model.Item{Type: model.TypeFirstStage, Reference: 1})
	rootB, _ := RegisterItem(ctx, database, &model.Item{Type: model.TypeFirstStage, Reference: 2})
	second, _ := RegisterItem(ctx, database, &model.Item{Type: model.TypeSecondStage, Reference: 1})
	octopus, _ := RegisterItem(ctx, database, &model.Item{Type: model.TypeOctopus, Reference: 1})

	// Both parts start on rootA; the second stage later moves to rootB.
	AttachPart(ctx, database, rootA.ID, second.ID, "2026-01-10")
	AttachPart(ctx, database, rootA.ID, octopus.ID, "2026-01-10")
	AttachPart(ctx, database, rootB.ID, second.ID, "2026-03-01")

	composites, orphans, err := ResolveComposites(ctx, database, model.TypeFirstStage)
	if err != nil {
		t.Fatalf("ResolveComposites: %v", err)
	}
	if len(composites) != 2 {
		t.Fatalf("expected 2 composites, got %d", len(composites))
	}

	byRoot := make(map[int64][]model.Item)
	for _, c := range composites {
		byRoot[c.Root.ID] = c.Children
	}

	if len(byRoot[rootA.ID]) != 1 || byRoot[rootA.ID][0].ID != octopus.ID {
		t.Errorf("rootA should own only the octopus, got %+v", byRoot[rootA.ID])
	}
	if len(byRoot[rootB.ID]) != 1 || byRoot[rootB.ID][0].ID != second.ID {
		t.Errorf("rootB should own the second stage, got %+v", byRoot[rootB.ID])
	}
	if len(orphans) != 0 {
		t.Errorf("expected no orphans, got %d", len(orphans))
	}
}

func TestResolveCompositesOrphans(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	RegisterItem(ctx, database, &model.Item{Type: model.TypeFirstStage, Reference: 1})
	manometer, _ := RegisterItem(ctx, database, &model.Item{Type: model.TypeManometer, Reference: 4})

	_, orphans, err := ResolveComposites(ctx, database, model.TypeFirstStage)
	if err != nil {
		t.Fatalf("ResolveComposites: %v", err)
	}
	if len(orphans) != 1 || orphans[0].ID != manometer.ID {
		t.Errorf("expected the unclaimed manometer as orphan, got %+v", orphans)
	}
}

func TestResolveCompositesSameDayTieBreak(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	rootA, _ := RegisterItem(ctx, database, &model.Item{Type: model.TypeFirstStage, Reference: 1})
	rootB, _ := RegisterItem(ctx, database, &model.Item{Type: model.TypeFirstStage, Reference: 2})
	second, _ := RegisterItem(ctx, database, &model.Item{Type: model.TypeSecondStage, Reference: 1})

	// Two claims on the same date: the later insertion wins.
	AttachPart(ctx, database, rootA.ID, second.ID, "2026-02-01")
	AttachPart(ctx, database, rootB.ID, second.ID, "2026-02-01")

	composites, _, err := ResolveComposites(ctx, database, model.TypeFirstStage)
	if err != nil {
		t.Fatalf("ResolveComposites: %v", err)
	}
	for _, c := range composites {
		switch c.Root.ID {
		case rootA.ID:
			if len(c.Children) != 0 {
				t.Errorf("rootA should have lost the part, got %+v", c.Children)
			}
		case rootB.ID:
			if len(c.Children) != 1 || c.Children[0].ID != second.ID {
				t.Errorf("rootB should own the part, got %+v", c.Children)
			}
		}
	}
}

func TestClaimedChildIDs(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	root, _ := RegisterItem(ctx, database, &model.Item{Type: model.TypeFirstStage, Reference: 1})
	second, _ := RegisterItem(ctx, database, &model.Item{Type: model.TypeSecondStage, Reference: 1})
	free, _ := RegisterItem(ctx, database, &model.Item{Type: model.TypeOctopus, Reference: 1})

	AttachPart(ctx, database, root.ID, second.ID, "2026-01-10")

	claimed, err := ClaimedChildIDs(ctx, database)
	if err != nil {
		t.Fatalf("ClaimedChildIDs: %v", err)
	}
	if !claimed[second.ID] {
		t.Error("attached part should be claimed")
	}
	if claimed[free.ID] {
		t.Error("unattached part should not be claimed")
	}
}

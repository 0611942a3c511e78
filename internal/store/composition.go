package store

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"

	"github.com/divegear/gearbase/internal/model"
)

// AttachPart appends a composition edge claiming child for parent as of the
// given date. Edges are never updated or deleted; a later edge naming the
// same child moves it to its new parent.
func AttachPart(ctx context.Context, db *sql.DB, parentID, childID int64, date string) (*model.CompositionEdge, error) {
	if parentID == childID {
		return nil, fmt.Errorf("an item cannot own itself")
	}
	for _, id := range []int64{parentID, childID} {
		item, err := GetItem(ctx, db, id, true)
		if err != nil {
			return nil, err
		}
		if item == nil {
			return nil, ErrNotFound
		}
	}

	result, err := db.ExecContext(ctx,
		`INSERT INTO composition_edges (parent_id, child_id, at_date) VALUES (?, ?, ?)`,
		parentID, childID, date,
	)
	if err != nil {
		return nil, fmt.Errorf("attaching part: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting edge id: %w", err)
	}
	return &model.CompositionEdge{ID: id, ParentID: parentID, ChildID: childID, AtDate: date}, nil
}

// currentOwners replays the full edge log in effective-date order (edge id
// breaks same-day ties) and returns each child's current parent. The last
// edge to claim a child wins, whoever issued it.
func currentOwners(ctx context.Context, db *sql.DB) (map[int64]int64, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT parent_id, child_id FROM composition_edges ORDER BY at_date, id`,
	)
	if err != nil {
		return nil, fmt.Errorf("reading composition edges: %w", err)
	}
	defer rows.Close()

	owners := make(map[int64]int64)
	for rows.Next() {
		var parentID, childID int64
		if err := rows.Scan(&parentID, &childID); err != nil {
			return nil, fmt.Errorf("scanning composition edge: %w", err)
		}
		owners[childID] = parentID
	}
	return owners, rows.Err()
}

// ResolveComposites reconstructs the current composition of every non-trashed
// root of rootType, plus the global orphan list: sub-part items that no edge
// has ever claimed, across all roots.
func ResolveComposites(ctx context.Context, db *sql.DB, rootType string) ([]model.Composite, []model.Item, error) {
	roots, err := ListItems(ctx, db, rootType, false)
	if err != nil {
		return nil, nil, err
	}

	owners, err := currentOwners(ctx, db)
	if err != nil {
		return nil, nil, err
	}

	childrenByRoot := make(map[int64][]int64)
	for childID, parentID := range owners {
		childrenByRoot[parentID] = append(childrenByRoot[parentID], childID)
	}

	composites := make([]model.Composite, 0, len(roots))
	for _, root := range roots {
		children := make([]model.Item, 0, len(childrenByRoot[root.ID]))
		for _, childID := range childrenByRoot[root.ID] {
			child, err := GetItem(ctx, db, childID, true)
			if err != nil {
				return nil, nil, err
			}
			if child != nil {
				children = append(children, *child)
			}
		}
		sort.Slice(children, func(i, j int) bool {
			return children[i].Reference < children[j].Reference
		})
		composites = append(composites, model.Composite{Root: root, Children: children})
	}

	orphans, err := orphanParts(ctx, db)
	if err != nil {
		return nil, nil, err
	}
	return composites, orphans, nil
}

// orphanParts returns non-trashed sub-part items that never appear as the
// child of any composition edge.
func orphanParts(ctx context.Context, db *sql.DB) ([]model.Item, error) {
	types := model.SubPartTypes()
	placeholders := strings.Repeat("?,", len(types))
	placeholders = placeholders[:len(placeholders)-1]

	args := make([]any, len(types))
	for i, t := range types {
		args[i] = t
	}

	rows, err := db.QueryContext(ctx,
		`SELECT `+itemColumns+` FROM items
		 WHERE type IN (`+placeholders+`)
		   AND is_trashed = 0
		   AND NOT EXISTS (SELECT 1 FROM composition_edges e WHERE e.child_id = items.id)
		 ORDER BY type, reference`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("listing orphan parts: %w", err)
	}
	defer rows.Close()

	var orphans []model.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning orphan part: %w", err)
		}
		orphans = append(orphans, *item)
	}
	return orphans, rows.Err()
}

// ClaimedChildIDs returns the set of items currently owned by some root.
// Claimed sub-parts are excluded from independent lending.
func ClaimedChildIDs(ctx context.Context, db *sql.DB) (map[int64]bool, error) {
	owners, err := currentOwners(ctx, db)
	if err != nil {
		return nil, err
	}
	claimed := make(map[int64]bool, len(owners))
	for childID := range owners {
		claimed[childID] = true
	}
	return claimed, nil
}

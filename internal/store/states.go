package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/divegear/gearbase/internal/model"
)

// RecordState stores a point-in-time observation of an item. At most one
// state may exist per item per calendar day; a second write for the same day
// fails with ErrDuplicateState. This is also the only guard needed between
// concurrent inventory operators counting the same item.
func RecordState(ctx context.Context, db *sql.DB, state *model.ItemState) (*model.ItemState, error) {
	item, err := GetItem(ctx, db, state.ItemID, true)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, ErrNotFound
	}
	if !model.ValidDate(state.Date) {
		return nil, fmt.Errorf("invalid state date %q", state.Date)
	}

	result, err := db.ExecContext(ctx,
		`INSERT INTO item_states (item_id, date, is_present, is_usable, price, comment)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		state.ItemID, state.Date, state.IsPresent, state.IsUsable, state.Price, nullStr(state.Comment),
	)
	if isUniqueViolation(err) {
		return nil, ErrDuplicateState
	}
	if err != nil {
		return nil, fmt.Errorf("recording state: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting state id: %w", err)
	}
	state.ID = id
	return state, nil
}

// UpdateState modifies an existing state observation.
func UpdateState(ctx context.Context, db *sql.DB, state *model.ItemState) error {
	result, err := db.ExecContext(ctx,
		`UPDATE item_states SET is_present = ?, is_usable = ?, price = ?, comment = ?
		 WHERE id = ?`,
		state.IsPresent, state.IsUsable, state.Price, nullStr(state.Comment), state.ID,
	)
	if err != nil {
		return fmt.Errorf("updating state: %w", err)
	}
	if n, _ := result.RowsAffected(); n != 1 {
		return ErrNotFound
	}
	return nil
}

// DeleteState removes a state observation.
func DeleteState(ctx context.Context, db *sql.DB, id int64) error {
	result, err := db.ExecContext(ctx, `DELETE FROM item_states WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting state: %w", err)
	}
	if n, _ := result.RowsAffected(); n != 1 {
		return ErrNotFound
	}
	return nil
}

// ListStates returns all observations for an item, oldest first.
func ListStates(ctx context.Context, db *sql.DB, itemID int64) ([]model.ItemState, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, item_id, date, is_present, is_usable, price, comment
		 FROM item_states WHERE item_id = ? ORDER BY date, id`, itemID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing states: %w", err)
	}
	defer rows.Close()
	return scanStates(rows)
}

func scanStates(rows *sql.Rows) ([]model.ItemState, error) {
	var states []model.ItemState
	for rows.Next() {
		var s model.ItemState
		var price sql.NullFloat64
		var comment sql.NullString
		if err := rows.Scan(&s.ID, &s.ItemID, &s.Date, &s.IsPresent, &s.IsUsable, &price, &comment); err != nil {
			return nil, fmt.Errorf("scanning state: %w", err)
		}
		if price.Valid {
			s.Price = &price.Float64
		}
		s.Comment = comment.String
		states = append(states, s)
	}
	return states, rows.Err()
}

// LastStates returns, for every item of a type, the status from its most
// recent observation: maximum date, with same-day ties broken by the later
// insertion. Items with no observations are absent from the map and default
// to present and usable.
func LastStates(ctx context.Context, db *sql.DB, itemType string) (map[int64]model.Status, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT s.item_id, s.is_present, s.is_usable
		 FROM item_states s
		 JOIN items i ON i.id = s.item_id
		 WHERE i.type = ?
		 ORDER BY s.date, s.id`, itemType,
	)
	if err != nil {
		return nil, fmt.Errorf("reading last states: %w", err)
	}
	defer rows.Close()

	statuses := make(map[int64]model.Status)
	for rows.Next() {
		var itemID int64
		var status model.Status
		if err := rows.Scan(&itemID, &status.IsPresent, &status.IsUsable); err != nil {
			return nil, fmt.Errorf("scanning last state: %w", err)
		}
		statuses[itemID] = status
	}
	return statuses, rows.Err()
}

// CurrentStatus returns an item's derived status, defaulting to present and
// usable when it has never been observed.
func CurrentStatus(ctx context.Context, db *sql.DB, itemID int64) (model.Status, error) {
	status := model.Status{IsPresent: true, IsUsable: true}
	err := db.QueryRowContext(ctx,
		`SELECT is_present, is_usable FROM item_states
		 WHERE item_id = ? ORDER BY date DESC, id DESC LIMIT 1`, itemID,
	).Scan(&status.IsPresent, &status.IsUsable)
	if err == sql.ErrNoRows {
		return status, nil
	}
	if err != nil {
		return status, fmt.Errorf("reading current status: %w", err)
	}
	return status, nil
}

package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/divegear/gearbase/internal/model"
)

// BorrowItem opens a loan and adds usageIncrement to the item's cumulative
// usage counter, in one transaction. An item with an open loan cannot be
// borrowed again: the pre-check returns ErrAlreadyBorrowed, and the partial
// unique index on open loans catches any concurrent writer that slips past
// it.
func BorrowItem(ctx context.Context, db *sql.DB, itemID, userID, memberID int64, at time.Time, usageIncrement int64) (*model.Loan, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var trashed bool
	err = tx.QueryRowContext(ctx, `SELECT is_trashed FROM items WHERE id = ?`, itemID).Scan(&trashed)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("checking item: %w", err)
	}
	if trashed {
		return nil, ErrNotFound
	}

	var openLoanID int64
	err = tx.QueryRowContext(ctx,
		`SELECT id FROM loans WHERE item_id = ? AND to_datetime IS NULL`, itemID,
	).Scan(&openLoanID)
	if err == nil {
		return nil, ErrAlreadyBorrowed
	}
	if err != sql.ErrNoRows {
		return nil, fmt.Errorf("checking open loan: %w", err)
	}

	result, err := tx.ExecContext(ctx,
		`INSERT INTO loans (item_id, user_id, member_id, from_datetime, usage_counter)
		 VALUES (?, ?, ?, ?, ?)`,
		itemID, userID, memberID, at, usageIncrement,
	)
	if isUniqueViolation(err) {
		return nil, ErrAlreadyBorrowed
	}
	if err != nil {
		return nil, fmt.Errorf("opening loan: %w", err)
	}

	if err := AddItemUsage(ctx, tx, itemID, usageIncrement); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing loan: %w", err)
	}

	loanID, _ := result.LastInsertId()
	return &model.Loan{
		ID:           loanID,
		ItemID:       itemID,
		UserID:       &userID,
		MemberID:     &memberID,
		FromDatetime: at,
		UsageCounter: usageIncrement,
	}, nil
}

// GiveBackItem closes an item's open loan: the return time is recorded and
// the staff/member links are cleared. A non-nil usageCorrection overwrites
// the loan's recorded usage increment, for when the actual dive count
// differed from the plan. Returns ErrNotBorrowed if no loan is open.
func GiveBackItem(ctx context.Context, db *sql.DB, itemID int64, at time.Time, usageCorrection *int64) error {
	query := `UPDATE loans SET user_id = NULL, member_id = NULL, to_datetime = ?`
	args := []any{at}
	if usageCorrection != nil {
		query += `, usage_counter = ?`
		args = append(args, *usageCorrection)
	}
	query += ` WHERE item_id = ? AND to_datetime IS NULL`
	args = append(args, itemID)

	result, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("closing loan: %w", err)
	}
	if n, _ := result.RowsAffected(); n != 1 {
		return ErrNotBorrowed
	}
	return nil
}

// IsItemBorrowed reports whether an item has an open loan.
func IsItemBorrowed(ctx context.Context, db *sql.DB, itemID int64) (bool, error) {
	var count int
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM loans WHERE item_id = ? AND to_datetime IS NULL`, itemID,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("checking open loan: %w", err)
	}
	return count > 0, nil
}

// BorrowedItems returns the items currently on loan with their display
// labels, ordered by type.
func BorrowedItems(ctx context.Context, db *sql.DB) ([]model.Loan, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT l.id, l.item_id, i.type, i.reference, l.usage_counter
		 FROM loans l
		 JOIN items i ON i.id = l.item_id
		 WHERE l.to_datetime IS NULL
		 ORDER BY i.type, i.reference`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing borrowed items: %w", err)
	}
	defer rows.Close()

	var loans []model.Loan
	for rows.Next() {
		var l model.Loan
		if err := rows.Scan(&l.ID, &l.ItemID, &l.ItemType, &l.ItemReference, &l.UsageCounter); err != nil {
			return nil, fmt.Errorf("scanning borrowed item: %w", err)
		}
		loans = append(loans, l)
	}
	return loans, rows.Err()
}

// ListLoans returns the open loans with staff and member names, ordered by
// member last name for the loan desk.
func ListLoans(ctx context.Context, db *sql.DB) ([]model.Loan, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT l.id, l.item_id, l.user_id, l.member_id, l.from_datetime, l.usage_counter,
		        i.type, i.reference, u.username, m.last_name || ' ' || m.first_name
		 FROM loans l
		 JOIN items i ON i.id = l.item_id
		 JOIN users u ON u.id = l.user_id
		 JOIN members m ON m.id = l.member_id
		 WHERE l.to_datetime IS NULL
		 ORDER BY m.last_name, m.first_name`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing loans: %w", err)
	}
	defer rows.Close()

	var loans []model.Loan
	for rows.Next() {
		var l model.Loan
		if err := rows.Scan(&l.ID, &l.ItemID, &l.UserID, &l.MemberID, &l.FromDatetime, &l.UsageCounter,
			&l.ItemType, &l.ItemReference, &l.UserName, &l.MemberName); err != nil {
			return nil, fmt.Errorf("scanning loan: %w", err)
		}
		loans = append(loans, l)
	}
	return loans, rows.Err()
}

// LoanHistory returns the closed loans, ordered for display by item then
// start time. Read-only reporting; no invariants beyond the model.
func LoanHistory(ctx context.Context, db *sql.DB) ([]model.Loan, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT l.id, l.item_id, l.from_datetime, l.to_datetime, l.usage_counter,
		        i.type, i.reference
		 FROM loans l
		 JOIN items i ON i.id = l.item_id
		 WHERE l.to_datetime IS NOT NULL
		 ORDER BY i.type, i.reference, l.from_datetime`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing loan history: %w", err)
	}
	defer rows.Close()

	var loans []model.Loan
	for rows.Next() {
		var l model.Loan
		if err := rows.Scan(&l.ID, &l.ItemID, &l.FromDatetime, &l.ToDatetime, &l.UsageCounter,
			&l.ItemType, &l.ItemReference); err != nil {
			return nil, fmt.Errorf("scanning loan history: %w", err)
		}
		loans = append(loans, l)
	}
	return loans, rows.Err()
}

// AvailableReferences returns (id, reference) pairs for a type, ordered by
// reference. With availableOnly set, it keeps only items that can actually
// go out the door: not trashed, not in servicing, not worn past UsageMax,
// not on loan, last observed present and usable, and not currently claimed
// as the sub-part of a composite root.
func AvailableReferences(ctx context.Context, db *sql.DB, itemType string, availableOnly bool) ([]model.Item, error) {
	if !availableOnly {
		return ItemReferences(ctx, db, itemType)
	}

	rows, err := db.QueryContext(ctx,
		`SELECT id, reference FROM items
		 WHERE type = ?
		   AND is_trashed = 0
		   AND is_servicing = 0
		   AND usage_counter < ?
		   AND NOT EXISTS (SELECT 1 FROM loans l WHERE l.item_id = items.id AND l.to_datetime IS NULL)
		 ORDER BY reference`,
		itemType, model.UsageMax,
	)
	if err != nil {
		return nil, fmt.Errorf("listing available references: %w", err)
	}
	defer rows.Close()

	var candidates []model.Item
	for rows.Next() {
		item := model.Item{Type: itemType}
		if err := rows.Scan(&item.ID, &item.Reference); err != nil {
			return nil, fmt.Errorf("scanning available reference: %w", err)
		}
		candidates = append(candidates, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	statuses, err := LastStates(ctx, db, itemType)
	if err != nil {
		return nil, err
	}
	claimed, err := ClaimedChildIDs(ctx, db)
	if err != nil {
		return nil, err
	}

	var items []model.Item
	for _, item := range candidates {
		if claimed[item.ID] {
			continue
		}
		if status, observed := statuses[item.ID]; observed && !status.OK() {
			continue
		}
		items = append(items, item)
	}
	return items, nil
}

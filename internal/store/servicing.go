package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/divegear/gearbase/internal/model"
)

// SendToServicing flags a batch of items as being under maintenance. The
// batch is all-or-nothing: if any id does not exist, nothing is updated and
// the error names the missing ids.
func SendToServicing(ctx context.Context, db *sql.DB, itemIDs []int64) error {
	if len(itemIDs) == 0 {
		return nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var missing []int64
	for _, id := range itemIDs {
		var exists int
		err := tx.QueryRowContext(ctx, `SELECT 1 FROM items WHERE id = ?`, id).Scan(&exists)
		if err == sql.ErrNoRows {
			missing = append(missing, id)
			continue
		}
		if err != nil {
			return fmt.Errorf("checking item %d: %w", id, err)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: items %v", ErrNotFound, missing)
	}

	for _, id := range itemIDs {
		if _, err := tx.ExecContext(ctx,
			`UPDATE items SET is_servicing = 1, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, id,
		); err != nil {
			return fmt.Errorf("sending item %d to servicing: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing servicing batch: %w", err)
	}
	return nil
}

// ReturnFromServicing clears an item's servicing flag, resets its usage
// counter and appends the maintenance record, all in one transaction:
// maintenance resets wear accounting, and the record must not land without
// the reset nor the other way around.
func ReturnFromServicing(ctx context.Context, db *sql.DB, itemID int64, date, reportFile string) (*model.Servicing, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`UPDATE items SET is_servicing = 0, usage_counter = 0, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`, itemID,
	)
	if err != nil {
		return nil, fmt.Errorf("returning item from servicing: %w", err)
	}
	if n, _ := result.RowsAffected(); n != 1 {
		return nil, ErrNotFound
	}

	insert, err := tx.ExecContext(ctx,
		`INSERT INTO servicings (item_id, date, report_file) VALUES (?, ?, ?)`,
		itemID, date, reportFile,
	)
	if err != nil {
		return nil, fmt.Errorf("adding servicing record: %w", err)
	}
	id, err := insert.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting servicing id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing servicing return: %w", err)
	}
	return &model.Servicing{ID: id, ItemID: itemID, Date: date, ReportFile: reportFile}, nil
}

// ItemsNeedingService returns items within the top fifth of their allowed
// usage that are not already under maintenance, with the usage budget they
// have left.
func ItemsNeedingService(ctx context.Context, db *sql.DB, threshold int64) ([]model.ServiceDue, error) {
	// The cutoff is four fifths of the threshold, which is fractional
	// when the threshold is not divisible by 5 (79999.2 for the default).
	rows, err := db.QueryContext(ctx,
		`SELECT id, type, reference, usage_counter FROM items
		 WHERE 5 * usage_counter > 4 * ? AND is_servicing = 0
		 ORDER BY id`,
		threshold,
	)
	if err != nil {
		return nil, fmt.Errorf("listing items needing service: %w", err)
	}
	defer rows.Close()

	var due []model.ServiceDue
	for rows.Next() {
		var item model.Item
		if err := rows.Scan(&item.ID, &item.Type, &item.Reference, &item.UsageCounter); err != nil {
			return nil, fmt.Errorf("scanning item needing service: %w", err)
		}
		due = append(due, model.ServiceDue{
			ItemID:    item.ID,
			Label:     item.Label(),
			Remaining: threshold - item.UsageCounter,
		})
	}
	return due, rows.Err()
}

// ItemsInServicing returns the items currently under maintenance.
func ItemsInServicing(ctx context.Context, db *sql.DB) ([]model.Item, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, type, reference FROM items WHERE is_servicing = 1 ORDER BY type, reference`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing items in servicing: %w", err)
	}
	defer rows.Close()

	var items []model.Item
	for rows.Next() {
		var item model.Item
		if err := rows.Scan(&item.ID, &item.Type, &item.Reference); err != nil {
			return nil, fmt.Errorf("scanning item in servicing: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// AddServicing appends a maintenance record with its report document.
func AddServicing(ctx context.Context, db *sql.DB, itemID int64, date, reportFile string) (*model.Servicing, error) {
	item, err := GetItem(ctx, db, itemID, true)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, ErrNotFound
	}

	result, err := db.ExecContext(ctx,
		`INSERT INTO servicings (item_id, date, report_file) VALUES (?, ?, ?)`,
		itemID, date, reportFile,
	)
	if err != nil {
		return nil, fmt.Errorf("adding servicing record: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting servicing id: %w", err)
	}
	return &model.Servicing{ID: id, ItemID: itemID, Date: date, ReportFile: reportFile}, nil
}

// ListServicings returns an item's maintenance history, oldest first.
func ListServicings(ctx context.Context, db *sql.DB, itemID int64) ([]model.Servicing, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, item_id, date, report_file FROM servicings
		 WHERE item_id = ? ORDER BY date, id`, itemID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing servicings: %w", err)
	}
	defer rows.Close()

	var servicings []model.Servicing
	for rows.Next() {
		var s model.Servicing
		if err := rows.Scan(&s.ID, &s.ItemID, &s.Date, &s.ReportFile); err != nil {
			return nil, fmt.Errorf("scanning servicing: %w", err)
		}
		servicings = append(servicings, s)
	}
	return servicings, rows.Err()
}

// CompliantItems returns, for a type, the items whose most recent servicing
// is within the servicing periodicity. Compliance flags listings; it does
// not gate lendability.
func CompliantItems(ctx context.Context, db *sql.DB, itemType string) (map[int64]bool, error) {
	cutoff := time.Now().Add(-model.ServicingPeriodicity).Format(model.DateLayout)
	rows, err := db.QueryContext(ctx,
		`SELECT DISTINCT s.item_id
		 FROM servicings s
		 JOIN items i ON i.id = s.item_id
		 WHERE i.type = ? AND s.date > ?`, itemType, cutoff,
	)
	if err != nil {
		return nil, fmt.Errorf("listing compliant items: %w", err)
	}
	defer rows.Close()

	compliant := make(map[int64]bool)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning compliant item: %w", err)
		}
		compliant[id] = true
	}
	return compliant, rows.Err()
}

// IsCompliant reports whether an item has been serviced within the servicing
// periodicity.
func IsCompliant(ctx context.Context, db *sql.DB, itemID int64) (bool, error) {
	cutoff := time.Now().Add(-model.ServicingPeriodicity).Format(model.DateLayout)
	var count int
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM servicings WHERE item_id = ? AND date > ?`, itemID, cutoff,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("checking servicing compliance: %w", err)
	}
	return count > 0, nil
}

package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/divegear/gearbase/internal/model"
)

// RunningCampaign returns the campaign currently in progress, or nil.
func RunningCampaign(ctx context.Context, db *sql.DB) (*model.Campaign, error) {
	c := &model.Campaign{}
	err := db.QueryRowContext(ctx,
		`SELECT id, date, in_progress FROM inventories WHERE in_progress = 1`,
	).Scan(&c.ID, &c.Date, &c.InProgress)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading running campaign: %w", err)
	}
	return c, nil
}

// StartCampaign begins an inventory campaign for the given date. Only one
// campaign may run at a time, system-wide: the partial unique index on
// in_progress backs the pre-check. If a stopped campaign already exists for
// the date, it is reopened instead of inserting a duplicate row, honoring
// the one-campaign-per-date invariant.
func StartCampaign(ctx context.Context, db *sql.DB, date string) (*model.Campaign, error) {
	if !model.ValidDate(date) {
		return nil, fmt.Errorf("invalid campaign date %q", date)
	}

	running, err := RunningCampaign(ctx, db)
	if err != nil {
		return nil, err
	}
	if running != nil {
		return nil, ErrCampaignRunning
	}

	var existingID int64
	err = db.QueryRowContext(ctx,
		`SELECT id FROM inventories WHERE date = ?`, date,
	).Scan(&existingID)
	if err == nil {
		if err := RestartCampaign(ctx, db, existingID); err != nil {
			return nil, err
		}
		return &model.Campaign{ID: existingID, Date: date, InProgress: true}, nil
	}
	if err != sql.ErrNoRows {
		return nil, fmt.Errorf("checking existing campaign: %w", err)
	}

	result, err := db.ExecContext(ctx,
		`INSERT INTO inventories (date, in_progress) VALUES (?, 1)`, date,
	)
	if isUniqueViolation(err) {
		return nil, ErrCampaignRunning
	}
	if err != nil {
		return nil, fmt.Errorf("starting campaign: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting campaign id: %w", err)
	}
	return &model.Campaign{ID: id, Date: date, InProgress: true}, nil
}

// StopCampaign ends the running campaign.
func StopCampaign(ctx context.Context, db *sql.DB) error {
	result, err := db.ExecContext(ctx,
		`UPDATE inventories SET in_progress = 0 WHERE in_progress = 1`,
	)
	if err != nil {
		return fmt.Errorf("stopping campaign: %w", err)
	}
	if n, _ := result.RowsAffected(); n != 1 {
		return ErrNoCampaignRunning
	}
	return nil
}

// RestartCampaign forces a specific, possibly past, campaign back to
// running, for corrections. Fails with ErrCampaignRunning if a different
// campaign is live.
func RestartCampaign(ctx context.Context, db *sql.DB, id int64) error {
	running, err := RunningCampaign(ctx, db)
	if err != nil {
		return err
	}
	if running != nil && running.ID != id {
		return ErrCampaignRunning
	}

	result, err := db.ExecContext(ctx,
		`UPDATE inventories SET in_progress = 1 WHERE id = ?`, id,
	)
	if isUniqueViolation(err) {
		return ErrCampaignRunning
	}
	if err != nil {
		return fmt.Errorf("restarting campaign: %w", err)
	}
	if n, _ := result.RowsAffected(); n != 1 {
		return ErrNotFound
	}
	return nil
}

// ListCampaigns returns all campaigns, newest first.
func ListCampaigns(ctx context.Context, db *sql.DB) ([]model.Campaign, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, date, in_progress FROM inventories ORDER BY date DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing campaigns: %w", err)
	}
	defer rows.Close()

	var campaigns []model.Campaign
	for rows.Next() {
		var c model.Campaign
		if err := rows.Scan(&c.ID, &c.Date, &c.InProgress); err != nil {
			return nil, fmt.Errorf("scanning campaign: %w", err)
		}
		campaigns = append(campaigns, c)
	}
	return campaigns, rows.Err()
}

// RemainingItems returns the non-trashed items of a type that have no state
// recorded on the running campaign's date yet, ordered by reference. These
// queries always hit the shared store live, so one operator immediately sees
// what another has just counted.
func RemainingItems(ctx context.Context, db *sql.DB, itemType string) ([]model.Item, error) {
	running, err := RunningCampaign(ctx, db)
	if err != nil {
		return nil, err
	}
	if running == nil {
		return nil, ErrNoCampaignRunning
	}

	rows, err := db.QueryContext(ctx,
		`SELECT id, reference FROM items
		 WHERE type = ?
		   AND is_trashed = 0
		   AND NOT EXISTS (SELECT 1 FROM item_states s WHERE s.item_id = items.id AND s.date = ?)
		 ORDER BY reference`,
		itemType, running.Date,
	)
	if err != nil {
		return nil, fmt.Errorf("listing remaining items: %w", err)
	}
	defer rows.Close()

	var items []model.Item
	for rows.Next() {
		item := model.Item{Type: itemType}
		if err := rows.Scan(&item.ID, &item.Reference); err != nil {
			return nil, fmt.Errorf("scanning remaining item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// SelectList returns, for a campaign date, each item type with its count of
// still-uncounted items, excluding sub-part types (they inherit their
// parent's count). preferredType, when non-empty, is pinned to the front;
// the rest sort by type name.
func SelectList(ctx context.Context, db *sql.DB, date, preferredType string) ([]model.TypeRemaining, error) {
	subParts := model.SubPartTypes()
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(subParts)), ",")
	args := []any{date}
	for _, t := range subParts {
		args = append(args, t)
	}
	args = append(args, preferredType)

	rows, err := db.QueryContext(ctx,
		`SELECT type, COUNT(*) FROM items
		 WHERE is_trashed = 0
		   AND NOT EXISTS (SELECT 1 FROM item_states s WHERE s.item_id = items.id AND s.date = ?)
		   AND type NOT IN (`+placeholders+`)
		 GROUP BY type
		 ORDER BY CASE WHEN type = ? THEN '' ELSE type END`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("building select list: %w", err)
	}
	defer rows.Close()

	var list []model.TypeRemaining
	for rows.Next() {
		var tr model.TypeRemaining
		if err := rows.Scan(&tr.Type, &tr.Remaining); err != nil {
			return nil, fmt.Errorf("scanning select list: %w", err)
		}
		list = append(list, tr)
	}
	return list, rows.Err()
}

// MissingItems returns the labels of items observed absent on a campaign
// date.
func MissingItems(ctx context.Context, db *sql.DB, date string) ([]string, error) {
	return itemLabelsByState(ctx, db, date, `s.is_present = 0`)
}

// UnusableItems returns the labels of items observed unusable on a campaign
// date.
func UnusableItems(ctx context.Context, db *sql.DB, date string) ([]string, error) {
	return itemLabelsByState(ctx, db, date, `s.is_usable = 0`)
}

func itemLabelsByState(ctx context.Context, db *sql.DB, date, predicate string) ([]string, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT i.type, i.reference
		 FROM items i
		 JOIN item_states s ON s.item_id = i.id
		 WHERE s.date = ? AND `+predicate+`
		 ORDER BY i.type, i.reference`, date,
	)
	if err != nil {
		return nil, fmt.Errorf("listing items by state: %w", err)
	}
	defer rows.Close()

	return scanItemLabels(rows)
}

// UninventoriedItems returns the labels of items, of any type, with no state
// on a campaign date.
func UninventoriedItems(ctx context.Context, db *sql.DB, date string) ([]string, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT type, reference FROM items
		 WHERE is_trashed = 0
		   AND NOT EXISTS (SELECT 1 FROM item_states s WHERE s.item_id = items.id AND s.date = ?)
		 ORDER BY type, reference`, date,
	)
	if err != nil {
		return nil, fmt.Errorf("listing uninventoried items: %w", err)
	}
	defer rows.Close()

	return scanItemLabels(rows)
}

func scanItemLabels(rows *sql.Rows) ([]string, error) {
	var labels []string
	for rows.Next() {
		var item model.Item
		if err := rows.Scan(&item.Type, &item.Reference); err != nil {
			return nil, fmt.Errorf("scanning item label: %w", err)
		}
		labels = append(labels, item.Label())
	}
	return labels, rows.Err()
}

// EstimationsTotal sums the prices recorded on a campaign date.
func EstimationsTotal(ctx context.Context, db *sql.DB, date string) (float64, error) {
	var total sql.NullFloat64
	err := db.QueryRowContext(ctx,
		`SELECT SUM(price) FROM item_states WHERE date = ?`, date,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("summing estimations: %w", err)
	}
	return total.Float64, nil
}

// EstimationsByType sums the prices recorded on a campaign date, per item
// type.
func EstimationsByType(ctx context.Context, db *sql.DB, date string) ([]model.TypeAmount, error) {
	return typeAmounts(ctx, db,
		`SELECT i.type, SUM(s.price)
		 FROM item_states s
		 JOIN items i ON i.id = s.item_id
		 WHERE s.date = ?
		 GROUP BY i.type
		 ORDER BY i.type`, date)
}

// CountByType counts the items observed present on a campaign date, per item
// type.
func CountByType(ctx context.Context, db *sql.DB, date string) ([]model.TypeAmount, error) {
	return typeAmounts(ctx, db,
		`SELECT i.type, COUNT(*)
		 FROM item_states s
		 JOIN items i ON i.id = s.item_id
		 WHERE s.date = ? AND s.is_present = 1
		 GROUP BY i.type
		 ORDER BY i.type`, date)
}

func typeAmounts(ctx context.Context, db *sql.DB, query, date string) ([]model.TypeAmount, error) {
	rows, err := db.QueryContext(ctx, query, date)
	if err != nil {
		return nil, fmt.Errorf("aggregating by type: %w", err)
	}
	defer rows.Close()

	var amounts []model.TypeAmount
	for rows.Next() {
		var ta model.TypeAmount
		var amount sql.NullFloat64
		if err := rows.Scan(&ta.Type, &amount); err != nil {
			return nil, fmt.Errorf("scanning type amount: %w", err)
		}
		ta.Amount = amount.Float64
		amounts = append(amounts, ta)
	}
	return amounts, rows.Err()
}

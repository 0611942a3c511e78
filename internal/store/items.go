package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/divegear/gearbase/internal/model"
)

// itemColumns is the scan order used by scanItem.
const itemColumns = `id, type, reference, owner_club, entry_date, brand, model, serial_nb,
	gender, size_min, size_max, size_age, is_cold_water, is_nitrox, fastening,
	material, thickness, pressure, usage_counter, is_servicing, is_trashed,
	created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (*model.Item, error) {
	item := &model.Item{}
	var (
		ownerClub, entryDate, brand, mdl, serialNb sql.NullString
		gender, sizeAge, fastening, material       sql.NullString
		sizeMin, sizeMax, pressure                 sql.NullInt64
		isColdWater, isNitrox                      sql.NullBool
		thickness                                  sql.NullFloat64
	)
	err := row.Scan(
		&item.ID, &item.Type, &item.Reference, &ownerClub, &entryDate, &brand, &mdl, &serialNb,
		&gender, &sizeMin, &sizeMax, &sizeAge, &isColdWater, &isNitrox, &fastening,
		&material, &thickness, &pressure, &item.UsageCounter, &item.IsServicing, &item.IsTrashed,
		&item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	item.OwnerClub = ownerClub.String
	item.EntryDate = entryDate.String
	item.Brand = brand.String
	item.Model = mdl.String
	item.SerialNb = serialNb.String
	item.Gender = gender.String
	item.SizeAge = sizeAge.String
	item.Fastening = fastening.String
	item.Material = material.String
	if sizeMin.Valid {
		item.SizeMin = &sizeMin.Int64
	}
	if sizeMax.Valid {
		item.SizeMax = &sizeMax.Int64
	}
	if pressure.Valid {
		item.Pressure = &pressure.Int64
	}
	if isColdWater.Valid {
		item.IsColdWater = &isColdWater.Bool
	}
	if isNitrox.Valid {
		item.IsNitrox = &isNitrox.Bool
	}
	if thickness.Valid {
		item.Thickness = &thickness.Float64
	}
	return item, nil
}

// attrArgs returns the attribute column values in insert/update order.
func attrArgs(item *model.Item) []any {
	return []any{
		item.OwnerClub, nullStr(item.EntryDate), nullStr(item.Brand), nullStr(item.Model),
		nullStr(item.SerialNb), nullStr(item.Gender), item.SizeMin, item.SizeMax,
		nullStr(item.SizeAge), item.IsColdWater, item.IsNitrox, nullStr(item.Fastening),
		nullStr(item.Material), item.Thickness, item.Pressure,
	}
}

func nullStr(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// RegisterItem creates an item. The (type, reference) pair must be unique
// among non-trashed items; a trashed item with the same reference does not
// block registration, but re-registering its exact (type, reference,
// serial_nb) triple does. Returns ErrDuplicateReference or
// ErrDuplicateSerial on collision.
func RegisterItem(ctx context.Context, db *sql.DB, item *model.Item) (*model.Item, error) {
	if _, ok := model.GearByType(item.Type); !ok {
		return nil, fmt.Errorf("unknown item type %q", item.Type)
	}

	args := append([]any{item.Type, item.Reference}, attrArgs(item)...)
	result, err := db.ExecContext(ctx,
		`INSERT INTO items (type, reference, owner_club, entry_date, brand, model, serial_nb,
		                    gender, size_min, size_max, size_age, is_cold_water, is_nitrox,
		                    fastening, material, thickness, pressure)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		args...,
	)
	if isSerialViolation(err) {
		return nil, ErrDuplicateSerial
	}
	if isUniqueViolation(err) {
		return nil, ErrDuplicateReference
	}
	if err != nil {
		return nil, fmt.Errorf("registering item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting item id: %w", err)
	}

	return GetItem(ctx, db, id, true)
}

// GetItem returns an item by ID. Trashed items are invisible unless
// includeTrashed is set.
func GetItem(ctx context.Context, db *sql.DB, id int64, includeTrashed bool) (*model.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE id = ?`
	if !includeTrashed {
		query += ` AND is_trashed = 0`
	}
	item, err := scanItem(db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting item: %w", err)
	}
	return item, nil
}

// ListItems returns items of a type ordered by reference, with current
// status and servicing compliance populated. With trashedOnly set, only
// trashed items are returned (for the untrash view).
func ListItems(ctx context.Context, db *sql.DB, itemType string, trashedOnly bool) ([]model.Item, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+itemColumns+` FROM items WHERE type = ? AND is_trashed = ? ORDER BY reference`,
		itemType, trashedOnly,
	)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	defer rows.Close()

	var items []model.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	statuses, err := LastStates(ctx, db, itemType)
	if err != nil {
		return nil, err
	}
	serviced, err := CompliantItems(ctx, db, itemType)
	if err != nil {
		return nil, err
	}
	for i := range items {
		status, observed := statuses[items[i].ID]
		if !observed {
			status = model.Status{IsPresent: true, IsUsable: true}
		}
		present, usable := status.IsPresent, status.IsUsable
		isServiced := serviced[items[i].ID]
		items[i].IsPresent = &present
		items[i].IsUsable = &usable
		items[i].IsServiced = &isServiced
	}
	return items, nil
}

// ItemReferences returns (id, reference) pairs for all items of a type,
// ordered by reference. Availability filtering lives in AvailableReferences.
func ItemReferences(ctx context.Context, db *sql.DB, itemType string) ([]model.Item, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, reference FROM items WHERE type = ? ORDER BY reference`, itemType,
	)
	if err != nil {
		return nil, fmt.Errorf("listing item references: %w", err)
	}
	defer rows.Close()

	var items []model.Item
	for rows.Next() {
		item := model.Item{Type: itemType}
		if err := rows.Scan(&item.ID, &item.Reference); err != nil {
			return nil, fmt.Errorf("scanning item reference: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// ItemIDByReference resolves a non-trashed item by (type, reference).
// Returns ErrNotFound if no such item exists.
func ItemIDByReference(ctx context.Context, db *sql.DB, itemType string, reference int64) (int64, error) {
	var id int64
	err := db.QueryRowContext(ctx,
		`SELECT id FROM items WHERE type = ? AND reference = ? AND is_trashed = 0`,
		itemType, reference,
	).Scan(&id)
	if err == sql.ErrNoRows {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("resolving item reference: %w", err)
	}
	return id, nil
}

// UpdateItem updates an item's attributes. The reference is immutable after
// creation and must match the stored value.
func UpdateItem(ctx context.Context, db *sql.DB, item *model.Item) error {
	existing, err := GetItem(ctx, db, item.ID, false)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrNotFound
	}
	if item.Reference != existing.Reference {
		return fmt.Errorf("item reference is immutable")
	}

	args := append(attrArgs(item), item.ID)
	_, err = db.ExecContext(ctx,
		`UPDATE items SET owner_club = ?, entry_date = ?, brand = ?, model = ?, serial_nb = ?,
		        gender = ?, size_min = ?, size_max = ?, size_age = ?, is_cold_water = ?,
		        is_nitrox = ?, fastening = ?, material = ?, thickness = ?, pressure = ?,
		        updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND is_trashed = 0`,
		args...,
	)
	if isSerialViolation(err) {
		// Type and reference never change here, so the only guard an
		// update can trip is the serial-number triple.
		return ErrDuplicateSerial
	}
	if err != nil {
		return fmt.Errorf("updating item: %w", err)
	}
	return nil
}

// TrashItem soft-deletes an item. Trashed items keep their history but
// disappear from listings, and their reference becomes reusable.
func TrashItem(ctx context.Context, db *sql.DB, id int64) error {
	result, err := db.ExecContext(ctx,
		`UPDATE items SET is_trashed = 1, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND is_trashed = 0`, id,
	)
	if err != nil {
		return fmt.Errorf("trashing item: %w", err)
	}
	if n, _ := result.RowsAffected(); n != 1 {
		return ErrNotFound
	}
	return nil
}

// UntrashItem revives a trashed item. If a newer non-trashed item reused the
// same (type, reference) in the meantime, the revival fails with
// ErrReferenceConflict and the item stays trashed.
func UntrashItem(ctx context.Context, db *sql.DB, id int64) error {
	item, err := GetItem(ctx, db, id, true)
	if err != nil {
		return err
	}
	if item == nil || !item.IsTrashed {
		return ErrNotFound
	}

	if _, err := ItemIDByReference(ctx, db, item.Type, item.Reference); err == nil {
		return ErrReferenceConflict
	} else if !errors.Is(err, ErrNotFound) {
		return err
	}

	_, err = db.ExecContext(ctx,
		`UPDATE items SET is_trashed = 0, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, id,
	)
	if isUniqueViolation(err) {
		// Lost a race against a concurrent registration of the same reference.
		return ErrReferenceConflict
	}
	if err != nil {
		return fmt.Errorf("untrashing item: %w", err)
	}
	return nil
}

// AddItemUsage adds to an item's cumulative usage counter.
func AddItemUsage(ctx context.Context, tx *sql.Tx, id, delta int64) error {
	result, err := tx.ExecContext(ctx,
		`UPDATE items SET usage_counter = usage_counter + ? WHERE id = ?`, delta, id,
	)
	if err != nil {
		return fmt.Errorf("updating usage counter: %w", err)
	}
	if n, _ := result.RowsAffected(); n != 1 {
		return ErrNotFound
	}
	return nil
}

package store

import (
	"context"
	"database/sql"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/divegear/gearbase/internal/model"
)

// CreateMember creates a club member. (last name, first name) must be
// unique.
func CreateMember(ctx context.Context, db *sql.DB, member *model.Member) (*model.Member, error) {
	result, err := db.ExecContext(ctx,
		`INSERT INTO members (last_name, first_name, license_nb, has_guarantee, guarantee_end_date)
		 VALUES (?, ?, ?, ?, ?)`,
		member.LastName, member.FirstName, nullStr(member.LicenseNb),
		member.HasGuarantee, nullStr(member.GuaranteeEndDate),
	)
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("member %s %s already exists", member.LastName, member.FirstName)
	}
	if err != nil {
		return nil, fmt.Errorf("creating member: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting member id: %w", err)
	}
	return GetMember(ctx, db, id)
}

// GetMember returns a member by ID.
func GetMember(ctx context.Context, db *sql.DB, id int64) (*model.Member, error) {
	m := &model.Member{}
	var licenseNb, guaranteeEnd sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT id, last_name, first_name, license_nb, has_guarantee, guarantee_end_date
		 FROM members WHERE id = ?`, id,
	).Scan(&m.ID, &m.LastName, &m.FirstName, &licenseNb, &m.HasGuarantee, &guaranteeEnd)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting member: %w", err)
	}
	m.LicenseNb = licenseNb.String
	m.GuaranteeEndDate = guaranteeEnd.String
	return m, nil
}

// MemberIDByLicense resolves a member by license number (scanned from a
// license QR code). Returns ErrNotFound when unknown.
func MemberIDByLicense(ctx context.Context, db *sql.DB, licenseNb string) (int64, error) {
	var id int64
	err := db.QueryRowContext(ctx,
		`SELECT id FROM members WHERE license_nb = ?`, licenseNb,
	).Scan(&id)
	if err == sql.ErrNoRows {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("resolving member license: %w", err)
	}
	return id, nil
}

// ListMembers returns members ordered by last name. With guaranteeOnly set,
// only members who deposited a guarantee (and may borrow) are returned.
func ListMembers(ctx context.Context, db *sql.DB, guaranteeOnly bool) ([]model.Member, error) {
	query := `SELECT id, last_name, first_name, license_nb, has_guarantee, guarantee_end_date
	          FROM members`
	if guaranteeOnly {
		query += ` WHERE has_guarantee = 1`
	}
	query += ` ORDER BY last_name, first_name`

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing members: %w", err)
	}
	defer rows.Close()

	var members []model.Member
	for rows.Next() {
		var m model.Member
		var licenseNb, guaranteeEnd sql.NullString
		if err := rows.Scan(&m.ID, &m.LastName, &m.FirstName, &licenseNb, &m.HasGuarantee, &guaranteeEnd); err != nil {
			return nil, fmt.Errorf("scanning member: %w", err)
		}
		m.LicenseNb = licenseNb.String
		m.GuaranteeEndDate = guaranteeEnd.String
		members = append(members, m)
	}
	return members, rows.Err()
}

// DeleteAllMembers flushes the members table, typically before a fresh CSV
// import at the start of a season.
func DeleteAllMembers(ctx context.Context, db *sql.DB) (int64, error) {
	result, err := db.ExecContext(ctx, `DELETE FROM members`)
	if err != nil {
		return 0, fmt.Errorf("deleting members: %w", err)
	}
	n, _ := result.RowsAffected()
	return n, nil
}

// ImportMembersCSV loads members from a federation CSV export with columns
// last_name, first_name, license_nb. Existing (last, first) pairs are
// skipped; returns the number of members imported.
func ImportMembersCSV(ctx context.Context, db *sql.DB, r io.Reader) (int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	imported := 0
	for line := 0; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return imported, fmt.Errorf("reading members CSV line %d: %w", line+1, err)
		}
		if len(record) < 2 {
			return imported, fmt.Errorf("members CSV line %d: expected at least 2 columns", line+1)
		}

		lastName := strings.TrimSpace(record[0])
		firstName := strings.TrimSpace(record[1])
		if line == 0 && strings.EqualFold(lastName, "last_name") {
			continue // header row
		}
		if lastName == "" || firstName == "" {
			continue
		}
		licenseNb := ""
		if len(record) > 2 {
			licenseNb = strings.TrimSpace(record[2])
		}

		result, err := db.ExecContext(ctx,
			`INSERT OR IGNORE INTO members (last_name, first_name, license_nb) VALUES (?, ?, ?)`,
			lastName, firstName, nullStr(licenseNb),
		)
		if err != nil {
			return imported, fmt.Errorf("importing member %s %s: %w", lastName, firstName, err)
		}
		if n, _ := result.RowsAffected(); n > 0 {
			imported++
		}
	}
	return imported, nil
}

// SetMemberGuarantee records whether a member deposited a guarantee and
// until when it is valid.
func SetMemberGuarantee(ctx context.Context, db *sql.DB, id int64, hasGuarantee bool, endDate string) error {
	result, err := db.ExecContext(ctx,
		`UPDATE members SET has_guarantee = ?, guarantee_end_date = ? WHERE id = ?`,
		hasGuarantee, nullStr(endDate), id,
	)
	if err != nil {
		return fmt.Errorf("setting member guarantee: %w", err)
	}
	if n, _ := result.RowsAffected(); n != 1 {
		return ErrNotFound
	}
	return nil
}

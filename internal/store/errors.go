package store

import (
	"errors"
	"strings"
)

// Typed domain failures. API handlers map these to HTTP statuses with
// errors.Is; the store never swallows or retries them.
var (
	// ErrNotFound is returned when the referenced record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateReference is returned when registering an item whose
	// (type, reference) collides with a non-trashed item.
	ErrDuplicateReference = errors.New("an item with this reference already exists")

	// ErrDuplicateSerial is returned when an item's (type, reference,
	// serial_nb) triple collides with any other item, trashed included.
	ErrDuplicateSerial = errors.New("an item with this serial number already exists")

	// ErrReferenceConflict is returned when untrashing an item whose
	// (type, reference) was reused by a newer item.
	ErrReferenceConflict = errors.New("reference reused by another item")

	// ErrDuplicateState is returned when an item already has a state
	// observation for the given date.
	ErrDuplicateState = errors.New("a state already exists for this item and date")

	// ErrAlreadyBorrowed is returned when an item has an open loan.
	ErrAlreadyBorrowed = errors.New("item already borrowed")

	// ErrNotBorrowed is returned when giving back an item with no open loan.
	ErrNotBorrowed = errors.New("item not borrowed")

	// ErrCampaignRunning is returned when starting or restarting a campaign
	// while another one is in progress.
	ErrCampaignRunning = errors.New("an inventory campaign is already running")

	// ErrNoCampaignRunning is returned when stopping without a running
	// campaign.
	ErrNoCampaignRunning = errors.New("no inventory campaign is running")
)

// isUniqueViolation reports whether err is a SQLite unique-constraint
// failure. The schema's partial unique indexes are the authoritative guard
// for the check-then-act invariants; when a concurrent writer loses the
// race, the constraint error is translated back to the matching domain
// sentinel by the caller.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// isSerialViolation tells the serial-number guard apart from the reference
// index: only the former names the serial_nb column.
func isSerialViolation(err error) bool {
	return isUniqueViolation(err) && strings.Contains(err.Error(), "serial_nb")
}

package model

import "time"

// DateLayout is the storage format for calendar dates. ISO dates compare
// correctly as strings, which the state ledger and campaign queries rely on.
const DateLayout = "2006-01-02"

// Today returns the current calendar date in storage format.
func Today() string {
	return time.Now().Format(DateLayout)
}

// ValidDate reports whether s is a well-formed storage date.
func ValidDate(s string) bool {
	_, err := time.Parse(DateLayout, s)
	return err == nil
}

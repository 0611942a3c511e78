package model

// Campaign is a full-stock inventory count. At most one campaign is in
// progress system-wide; a stopped campaign can be reopened without creating a
// new row, preserving the one-campaign-per-date invariant.
type Campaign struct {
	ID         int64  `json:"id"`
	Date       string `json:"date"`
	InProgress bool   `json:"in_progress"`
}

// TypeRemaining is one row of the inventory type selector: an item type and
// how many of its items still lack a state record for the campaign date.
type TypeRemaining struct {
	Type      string `json:"type"`
	Remaining int64  `json:"remaining"`
}

// TypeAmount is a per-type aggregation row (counts or price estimations).
type TypeAmount struct {
	Type   string  `json:"type"`
	Amount float64 `json:"amount"`
}

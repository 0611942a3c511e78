package model

import "time"

// Loan records an item being lent to a member by a staff user. A loan with no
// ToDatetime is open; at most one open loan may exist per item.
type Loan struct {
	ID           int64      `json:"id"`
	ItemID       int64      `json:"item_id"`
	UserID       *int64     `json:"user_id,omitempty"`
	MemberID     *int64     `json:"member_id,omitempty"`
	FromDatetime time.Time  `json:"from_datetime"`
	ToDatetime   *time.Time `json:"to_datetime,omitempty"`
	UsageCounter int64      `json:"usage_counter"`

	// Joined fields (not always populated).
	ItemType      string `json:"item_type,omitempty"`
	ItemReference int64  `json:"item_reference,omitempty"`
	UserName      string `json:"user_name,omitempty"`
	MemberName    string `json:"member_name,omitempty"`
}

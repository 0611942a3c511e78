package model

// ItemState is a point-in-time observation of an item, recorded during an
// inventory count or after an incident. At most one per item per calendar day.
type ItemState struct {
	ID        int64    `json:"id"`
	ItemID    int64    `json:"item_id"`
	Date      string   `json:"date"`
	IsPresent bool     `json:"is_present"`
	IsUsable  bool     `json:"is_usable"`
	Price     *float64 `json:"price,omitempty"`
	Comment   string   `json:"comment,omitempty"`
}

// Status is an item's derived presence/usability, taken from its most recent
// state observation. Items with no observations default to present and usable.
type Status struct {
	IsPresent bool `json:"is_present"`
	IsUsable  bool `json:"is_usable"`
}

// OK reports whether the item is both present and usable.
func (s Status) OK() bool {
	return s.IsPresent && s.IsUsable
}

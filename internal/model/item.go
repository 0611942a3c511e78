package model

import (
	"strconv"
	"time"
)

// UsageMax is the cumulative usage count at which an item stops being
// lendable and must go through servicing.
const UsageMax = 99999

// Item represents a single piece of club equipment, individually tracked
// by (type, reference). Attribute columns are type-dependent and free-form;
// unused ones stay nil.
type Item struct {
	ID        int64  `json:"id"`
	Type      string `json:"type"`
	Reference int64  `json:"reference"`
	OwnerClub string `json:"owner_club,omitempty"`
	EntryDate string `json:"entry_date,omitempty"`

	Brand    string `json:"brand,omitempty"`
	Model    string `json:"model,omitempty"`
	SerialNb string `json:"serial_nb,omitempty"`

	Gender      string   `json:"gender,omitempty"`
	SizeMin     *int64   `json:"size_min,omitempty"`
	SizeMax     *int64   `json:"size_max,omitempty"`
	SizeAge     string   `json:"size_age,omitempty"`
	IsColdWater *bool    `json:"is_cold_water,omitempty"`
	IsNitrox    *bool    `json:"is_nitrox,omitempty"`
	Fastening   string   `json:"fastening,omitempty"`
	Material    string   `json:"material,omitempty"`
	Thickness   *float64 `json:"thickness,omitempty"`
	Pressure    *int64   `json:"pressure,omitempty"`

	UsageCounter int64 `json:"usage_counter"`
	IsServicing  bool  `json:"is_servicing"`
	IsTrashed    bool  `json:"is_trashed"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Derived fields (not always populated).
	IsPresent  *bool `json:"is_present,omitempty"`
	IsUsable   *bool `json:"is_usable,omitempty"`
	IsServiced *bool `json:"is_serviced,omitempty"`
}

// Label returns the human-readable "type reference" form used in listings.
func (i *Item) Label() string {
	g, ok := GearByType(i.Type)
	if !ok {
		return i.Type
	}
	return g.Name + " " + strconv.FormatInt(i.Reference, 10)
}

// Item fastenings.
const (
	FasteningYoke = "yoke"
	FasteningDIN  = "din"
)

// Item genders.
const (
	GenderMale   = "m"
	GenderFemale = "f"
)

// Item size ages.
const (
	SizeAgeAdult = "adult"
	SizeAgeChild = "child"
)

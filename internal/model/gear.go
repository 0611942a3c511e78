package model

// Item types. Sub-parts (second stage, octopus, manometer) are always owned
// by a composite root and are never borrowed or inventoried on their own.
const (
	TypeFirstStage          = "first_stage"
	TypeFirstStageAuxiliary = "first_stage_auxiliary"
	TypeSecondStage         = "second_stage"
	TypeOctopus             = "octopus"
	TypeManometer           = "manometer"
	TypeTank                = "tank"
	TypeBCD                 = "bcd"
	TypeBackpack            = "backpack"
	TypeSuit                = "suit"
	TypeHood                = "hood"
	TypeBoot                = "boot"
	TypeSock                = "sock"
	TypeGlove               = "glove"
	TypeFin                 = "fin"
	TypeMonofin             = "monofin"
	TypeMask                = "mask"
	TypeSnorkle             = "snorkle"
	TypeComputer            = "computer"
	TypeLamp                = "lamp"
	TypeWeight              = "weight"
	TypeSucker              = "sucker"
	TypeRing                = "ring"
	TypeFrisbee             = "frisbee"
	TypeOxymeter            = "oxymeter"
	TypePremisesKey         = "premises_key"
)

// GearItem describes one equipment type in the catalog.
type GearItem struct {
	Type       string `json:"type"`
	Name       string `json:"name"`
	Prefix     string `json:"prefix"` // QR label reference prefix
	Composite  bool   `json:"composite"`
	SubPart    bool   `json:"sub_part"`
	Borrowable bool   `json:"borrowable"`
}

// GearGroup is a display grouping of equipment types.
type GearGroup struct {
	Name  string     `json:"name"`
	Items []GearItem `json:"items"`
}

// Gear is the equipment catalog. Group and item order is the display and
// inventory priority order.
var Gear = []GearGroup{
	{"regulator", []GearItem{
		{TypeFirstStage, "Main regulator", "REG", true, false, true},
		{TypeFirstStageAuxiliary, "Auxiliary regulator", "RGA", true, false, true},
		{TypeSecondStage, "Second stage", "SST", false, true, false},
		{TypeOctopus, "Octopus", "OCT", false, true, false},
		{TypeManometer, "Manometer", "MAN", false, true, false},
	}},
	{"air_source", []GearItem{
		{TypeTank, "Tank", "TNK", false, false, true},
	}},
	{"stabilization", []GearItem{
		{TypeBCD, "BCD", "BCD", false, false, true},
		{TypeBackpack, "Backpack", "BPK", false, false, true},
	}},
	{"wear", []GearItem{
		{TypeSuit, "Suit", "SUI", false, false, true},
		{TypeHood, "Hood", "HOO", false, false, true},
		{TypeGlove, "Glove", "GLV", false, false, true},
		{TypeBoot, "Boot", "BOO", false, false, true},
		{TypeSock, "Sock", "SCK", false, false, true},
	}},
	{"snorkeling", []GearItem{
		{TypeFin, "Fin", "FIN", false, false, true},
		{TypeMonofin, "Monofin", "MFN", false, false, true},
		{TypeMask, "Mask", "MSK", false, false, true},
		{TypeSnorkle, "Snorkle", "SNK", false, false, true},
	}},
	{"measure", []GearItem{
		{TypeComputer, "Computer", "CMP", false, false, true},
		{TypeOxymeter, "Oxymeter", "OXY", false, false, true},
	}},
	{"accessory", []GearItem{
		{TypeLamp, "Lamp", "LMP", false, false, true},
		{TypeWeight, "Weight", "WGT", false, false, true},
		{TypeSucker, "Sucker", "SUC", false, false, true},
		{TypeRing, "Ring", "RNG", false, false, true},
		{TypeFrisbee, "Frisbee", "FRB", false, false, true},
		{TypePremisesKey, "Premises key", "KEY", false, false, true},
	}},
}

// GearByType looks up a catalog entry by item type.
func GearByType(itemType string) (GearItem, bool) {
	for _, group := range Gear {
		for _, item := range group.Items {
			if item.Type == itemType {
				return item, true
			}
		}
	}
	return GearItem{}, false
}

// GearByPrefix looks up a catalog entry by QR label prefix.
func GearByPrefix(prefix string) (GearItem, bool) {
	for _, group := range Gear {
		for _, item := range group.Items {
			if item.Prefix == prefix {
				return item, true
			}
		}
	}
	return GearItem{}, false
}

// IsSubPart reports whether the type is a composite sub-part.
func IsSubPart(itemType string) bool {
	g, ok := GearByType(itemType)
	return ok && g.SubPart
}

// IsBorrowable reports whether items of the type may be lent on their own.
func IsBorrowable(itemType string) bool {
	g, ok := GearByType(itemType)
	return ok && g.Borrowable
}

// SubPartTypes returns the types that are always owned by a composite root.
func SubPartTypes() []string {
	var types []string
	for _, group := range Gear {
		for _, item := range group.Items {
			if item.SubPart {
				types = append(types, item.Type)
			}
		}
	}
	return types
}

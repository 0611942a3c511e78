package model

// Member is a club member who can borrow equipment.
type Member struct {
	ID               int64  `json:"id"`
	LastName         string `json:"last_name"`
	FirstName        string `json:"first_name"`
	LicenseNb        string `json:"license_nb,omitempty"`
	HasGuarantee     bool   `json:"has_guarantee"`
	GuaranteeEndDate string `json:"guarantee_end_date,omitempty"`
}

// FullName returns "Last First", the display form used in loan listings.
func (m *Member) FullName() string {
	return m.LastName + " " + m.FirstName
}

package model

import "time"

// ServicingPeriodicity is how often an item must be serviced to stay
// compliant.
const ServicingPeriodicity = 365 * 24 * time.Hour

// Servicing is an append-only maintenance record with its report document.
type Servicing struct {
	ID         int64  `json:"id"`
	ItemID     int64  `json:"item_id"`
	Date       string `json:"date"`
	ReportFile string `json:"report_file"`
}

// ServiceDue describes an item approaching its usage limit.
type ServiceDue struct {
	ItemID    int64  `json:"item_id"`
	Label     string `json:"label"`
	Remaining int64  `json:"remaining"`
}

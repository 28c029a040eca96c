package models

import "time"

// Establishment is a business entity independent of any single physical
// location, keyed by "{domain}#web".
type Establishment struct {
	Establishment     string     `json:"establishment"`
	EstablishmentName string     `json:"establishment_name"`
	BusinessType      string     `json:"business_type"`
	IsActive          bool       `json:"is_active"`
	CreateDatetime    time.Time  `json:"create_datetime"`
	CreatedBy         string     `json:"created_by"`
	ModifiedDatetime  *time.Time `json:"modified_datetime,omitempty"`
	ModifiedBy        *string    `json:"modified_by,omitempty"`
}

package domain

import (
	"errors"
	"time"
)

// Org represents an educational institution (school, college, training
// center). Slug is the tenant partition identifier carried on requests.
type Org struct {
	ID        string
	Slug      string
	Name      string
	Status    OrgStatus
	CreatedAt time.Time
}

type OrgStatus string

const (
	OrgStatusActive    OrgStatus = "active"
	OrgStatusSuspended OrgStatus = "suspended"
)

// Validate validates the organization for persistence. Returns an error describing the first validation failure.
func (o *Org) Validate() error {
	if o.Slug == "" {
		return errors.New("slug is required")
	}
	if o.Name == "" {
		return errors.New("name is required")
	}
	if o.Status == "" {
		o.Status = OrgStatusActive
	}
	return nil
}

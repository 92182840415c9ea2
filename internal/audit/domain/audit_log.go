package domain

import "time"

// AuditLog represents an audit event. Tenant is the institution partition the
// event belongs to; Username may be empty for events before authentication.
type AuditLog struct {
	ID        string
	Tenant    string
	Username  string
	Action    string
	Resource  string
	Metadata  string
	CreatedAt time.Time
}

// Package audit records security-relevant auth events (logins, logouts,
// refreshes, password resets) per tenant.
package audit

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"campus-control-plane/backend/internal/audit/domain"
	auditrepo "campus-control-plane/backend/internal/audit/repository"
	"campus-control-plane/backend/internal/tenant"
)

// Logger writes a single audit event with explicit action/resource. Used by
// the auth code paths. LogEvent is best-effort: failures are logged and do not
// affect the caller.
type Logger interface {
	LogEvent(ctx context.Context, username, action, resource, metadata string)
}

// RepoLogger implements Logger using the audit repository. The tenant is read
// from the request context.
type RepoLogger struct {
	repo auditrepo.Repository
}

// NewLogger returns a Logger that persists to repo.
func NewLogger(repo auditrepo.Repository) *RepoLogger {
	return &RepoLogger{repo: repo}
}

// LogEvent writes one audit log entry. Best-effort: errors are logged and not returned.
func (l *RepoLogger) LogEvent(ctx context.Context, username, action, resource, metadata string) {
	if l.repo == nil {
		return
	}
	entry := &domain.AuditLog{
		ID:        uuid.New().String(),
		Tenant:    tenant.FromContext(ctx),
		Username:  username,
		Action:    action,
		Resource:  resource,
		Metadata:  metadata,
		CreatedAt: time.Now().UTC(),
	}
	if err := l.repo.Create(ctx, entry); err != nil {
		log.Printf("audit: failed to log event %s/%s: %v", action, resource, err)
	}
}

// Nop is a Logger that discards events. Used when auditing is not configured.
type Nop struct{}

// LogEvent discards the event.
func (Nop) LogEvent(ctx context.Context, username, action, resource, metadata string) {}

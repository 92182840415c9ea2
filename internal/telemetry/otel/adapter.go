package otel

import (
	"context"
	"time"

	otellog "go.opentelemetry.io/otel/log"
	sdklog "go.opentelemetry.io/otel/sdk/log"

	"campus-control-plane/backend/internal/audit"
	"campus-control-plane/backend/internal/tenant"
)

// NewAuditEmitter returns an audit.Logger that emits audit events as OTel log
// records via the given LoggerProvider, so the audit trail also reaches the
// OTLP pipeline. If provider is nil, returns a no-op logger.
func NewAuditEmitter(provider *sdklog.LoggerProvider) audit.Logger {
	if provider == nil {
		return audit.Nop{}
	}
	return &auditEmitter{logger: provider.Logger("campus.audit")}
}

type auditEmitter struct {
	logger otellog.Logger
}

// LogEvent emits one audit event as a log record. Best-effort.
func (e *auditEmitter) LogEvent(ctx context.Context, username, action, resource, metadata string) {
	rec := otellog.Record{}
	rec.SetTimestamp(time.Now().UTC())
	rec.SetBody(otellog.StringValue(action + " " + resource))
	rec.AddAttributes(
		otellog.String("tenant", tenant.FromContext(ctx)),
		otellog.String("action", action),
		otellog.String("resource", resource),
	)
	if username != "" {
		rec.AddAttributes(otellog.String("username", username))
	}
	if metadata != "" {
		rec.AddAttributes(otellog.String("metadata", metadata))
	}
	e.logger.Emit(ctx, rec)
}

// MultiLogger fans an audit event out to several loggers (e.g. the Postgres
// repo logger plus the OTel emitter).
type MultiLogger []audit.Logger

// LogEvent forwards the event to every non-nil logger.
func (m MultiLogger) LogEvent(ctx context.Context, username, action, resource, metadata string) {
	for _, l := range m {
		if l != nil {
			l.LogEvent(ctx, username, action, resource, metadata)
		}
	}
}

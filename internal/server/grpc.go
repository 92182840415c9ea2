// Package server assembles the gRPC server: interceptor chain, telemetry
// stats handler, and health service registration.
package server

import (
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"campus-control-plane/backend/internal/audit"
	"campus-control-plane/backend/internal/security"
	"campus-control-plane/backend/internal/server/interceptors"
)

// Deps holds the dependencies for the gRPC server.
type Deps struct {
	// Tokens validates Bearer access tokens. Required.
	Tokens *security.TokenProvider
	// TenantMetadataKey is the inbound metadata key carrying the tenant slug
	// (e.g. x-tenant-id). Empty uses the default key.
	TenantMetadataKey string
	// Audit records per-RPC audit events. If nil, no RPCs are audited.
	Audit audit.Logger
	// PublicMethods is the set of full method names that do not require a
	// Bearer token. The health check methods are always public.
	PublicMethods map[string]bool
}

var healthMethods = map[string]bool{
	"/grpc.health.v1.Health/Check": true,
	"/grpc.health.v1.Health/Watch": true,
}

// New builds a *grpc.Server with the tenant, auth, and audit interceptors
// chained in that order, plus the otelgrpc stats handler, and registers the
// standard health service. Callers register their own services on the
// returned server before Serve.
func New(deps Deps) (*grpc.Server, *health.Server) {
	public := make(map[string]bool, len(deps.PublicMethods)+len(healthMethods))
	for m := range healthMethods {
		public[m] = true
	}
	for m, ok := range deps.PublicMethods {
		if ok {
			public[m] = true
		}
	}

	skipAudit := make(map[string]bool, len(healthMethods))
	for m := range healthMethods {
		skipAudit[m] = true
	}

	srv := grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(
			interceptors.TenantUnary(deps.TenantMetadataKey),
			interceptors.AuthUnary(deps.Tokens, public),
			interceptors.AuditUnary(deps.Audit, skipAudit),
		),
	)

	healthSrv := health.NewServer()
	healthpb.RegisterHealthServer(srv, healthSrv)
	return srv, healthSrv
}

package interceptors

import (
	"context"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"

	"campus-control-plane/backend/internal/tenant"
)

// TenantUnary returns a unary server interceptor that resolves the tenant
// slug from the configured metadata key and binds it to the request context.
// The binding lives and dies with the request context, so concurrent requests
// never observe each other's tenant. Absent or blank metadata leaves the
// context unbound and reads fall back to tenant.DefaultSlug.
func TenantUnary(metadataKey string) grpc.UnaryServerInterceptor {
	key := strings.ToLower(strings.TrimSpace(metadataKey))
	if key == "" {
		key = "x-tenant-id"
	}
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			if vals := md.Get(key); len(vals) > 0 {
				ctx = tenant.WithTenant(ctx, vals[0])
			}
		}
		return handler(ctx, req)
	}
}

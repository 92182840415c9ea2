package interceptors

import (
	"context"
	"errors"
	"net"
	"sync"
	"testing"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/peer"

	"campus-control-plane/backend/internal/tenant"
)

type capturedEvent struct {
	tenant   string
	username string
	action   string
	resource string
	metadata string
}

// captureLogger implements audit.Logger for interceptor tests.
type captureLogger struct {
	mu     sync.Mutex
	events []capturedEvent
}

func (l *captureLogger) LogEvent(ctx context.Context, username, action, resource, md string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, capturedEvent{
		tenant:   tenant.FromContext(ctx),
		username: username,
		action:   action,
		resource: resource,
		metadata: md,
	})
}

func TestAuditUnary_SkipMethod(t *testing.T) {
	logger := &captureLogger{}
	skipMethods := map[string]bool{
		"/test.Service/HealthCheck": true,
	}
	interceptor := AuditUnary(logger, skipMethods)

	ctx := WithIdentity(context.Background(), "alice", 1)
	resp, err := interceptor(ctx, "request", &grpc.UnaryServerInfo{
		FullMethod: "/test.Service/HealthCheck",
	}, okHandler)
	if err != nil {
		t.Fatalf("interceptor: %v", err)
	}
	if resp != "success" {
		t.Errorf("response = %v, want %q", resp, "success")
	}
	if len(logger.events) != 0 {
		t.Errorf("audit events = %d, want 0", len(logger.events))
	}
}

func TestAuditUnary_AuthenticatedRequest(t *testing.T) {
	logger := &captureLogger{}
	interceptor := AuditUnary(logger, nil)

	ctx := WithIdentity(tenant.WithTenant(context.Background(), "greenfield-high"), "alice", 1)
	resp, err := interceptor(ctx, "request", &grpc.UnaryServerInfo{
		FullMethod: "/campus.auth.v1.AuthService/Login",
	}, okHandler)
	if err != nil {
		t.Fatalf("interceptor: %v", err)
	}
	if resp != "success" {
		t.Errorf("response = %v, want %q", resp, "success")
	}
	if len(logger.events) != 1 {
		t.Fatalf("audit events = %d, want 1", len(logger.events))
	}
	e := logger.events[0]
	if e.username != "alice" {
		t.Errorf("username = %q, want alice", e.username)
	}
	if e.tenant != "greenfield-high" {
		t.Errorf("tenant = %q, want greenfield-high", e.tenant)
	}
	if e.action != "login" || e.resource != "auth" {
		t.Errorf("action/resource = %q/%q, want login/auth", e.action, e.resource)
	}
}

func TestAuditUnary_UnauthenticatedRequest(t *testing.T) {
	logger := &captureLogger{}
	interceptor := AuditUnary(logger, nil)

	resp, err := interceptor(context.Background(), "request", &grpc.UnaryServerInfo{
		FullMethod: "/test.Service/SomeMethod",
	}, okHandler)
	if err != nil {
		t.Fatalf("interceptor: %v", err)
	}
	if resp != "success" {
		t.Errorf("response = %v, want %q", resp, "success")
	}
	if len(logger.events) != 0 {
		t.Errorf("audit events = %d, want 0", len(logger.events))
	}
}

func TestAuditUnary_HandlerError(t *testing.T) {
	logger := &captureLogger{}
	interceptor := AuditUnary(logger, nil)

	ctx := WithIdentity(context.Background(), "alice", 1)
	_, err := interceptor(ctx, "request", &grpc.UnaryServerInfo{
		FullMethod: "/test.Service/SomeMethod",
	}, func(ctx context.Context, req interface{}) (interface{}, error) {
		return nil, errors.New("handler error")
	})
	if err == nil {
		t.Fatal("expected error from handler")
	}
	// Failed RPCs are audited too.
	if len(logger.events) != 1 {
		t.Errorf("audit events = %d, want 1", len(logger.events))
	}
}

func TestClientIP_XForwardedFor(t *testing.T) {
	ctx := metadata.NewIncomingContext(context.Background(), metadata.New(map[string]string{
		"x-forwarded-for": "192.168.1.1",
	}))
	if ip := ClientIP(ctx); ip != "192.168.1.1" {
		t.Errorf("ip = %q, want %q", ip, "192.168.1.1")
	}
}

func TestClientIP_XForwardedFor_WithComma(t *testing.T) {
	ctx := metadata.NewIncomingContext(context.Background(), metadata.New(map[string]string{
		"x-forwarded-for": "192.168.1.1, 10.0.0.1",
	}))
	if ip := ClientIP(ctx); ip != "192.168.1.1" {
		t.Errorf("ip = %q, want %q", ip, "192.168.1.1")
	}
}

func TestClientIP_XRealIP(t *testing.T) {
	ctx := metadata.NewIncomingContext(context.Background(), metadata.New(map[string]string{
		"x-real-ip": "192.168.1.2",
	}))
	if ip := ClientIP(ctx); ip != "192.168.1.2" {
		t.Errorf("ip = %q, want %q", ip, "192.168.1.2")
	}
}

func TestClientIP_XForwardedFor_Precedence(t *testing.T) {
	ctx := metadata.NewIncomingContext(context.Background(), metadata.New(map[string]string{
		"x-forwarded-for": "192.168.1.1",
		"x-real-ip":       "192.168.1.2",
	}))
	if ip := ClientIP(ctx); ip != "192.168.1.1" {
		t.Errorf("ip = %q, want %q", ip, "192.168.1.1")
	}
}

func TestClientIP_PeerAddress(t *testing.T) {
	addr := &net.TCPAddr{
		IP:   net.ParseIP("192.168.1.3"),
		Port: 12345,
	}
	ctx := peer.NewContext(context.Background(), &peer.Peer{Addr: addr})
	if ip := ClientIP(ctx); ip != "192.168.1.3" {
		t.Errorf("ip = %q, want %q", ip, "192.168.1.3")
	}
}

func TestClientIP_Unknown(t *testing.T) {
	if ip := ClientIP(context.Background()); ip != "unknown" {
		t.Errorf("ip = %q, want %q", ip, "unknown")
	}
}

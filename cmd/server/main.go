package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"campus-control-plane/backend/internal/audit"
	auditrepo "campus-control-plane/backend/internal/audit/repository"
	"campus-control-plane/backend/internal/auth"
	authhandler "campus-control-plane/backend/internal/auth/handler"
	"campus-control-plane/backend/internal/config"
	"campus-control-plane/backend/internal/db"
	"campus-control-plane/backend/internal/devotp"
	"campus-control-plane/backend/internal/loginattempt"
	"campus-control-plane/backend/internal/notify"
	orgrepo "campus-control-plane/backend/internal/organization/repository"
	orgservice "campus-control-plane/backend/internal/organization/service"
	"campus-control-plane/backend/internal/passwordreset"
	resetrepo "campus-control-plane/backend/internal/passwordreset/repository"
	"campus-control-plane/backend/internal/refreshtoken"
	tokenrepo "campus-control-plane/backend/internal/refreshtoken/repository"
	"campus-control-plane/backend/internal/security"
	"campus-control-plane/backend/internal/server"
	"campus-control-plane/backend/internal/telemetry/otel"
	userrepo "campus-control-plane/backend/internal/user/repository"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is not set; create a .env from .env.example or set DATABASE_URL")
	}

	ctx := context.Background()

	providers, err := otel.NewProviders(ctx, cfg.OTLPEndpoint, "campus-control-plane", cfg.OTLPInsecure)
	if err != nil {
		log.Fatalf("telemetry: %v", err)
	}
	providers.SetGlobal()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = providers.Shutdown(shutdownCtx)
	}()

	conn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer conn.Close()

	privateKey, err := security.ParsePrivateKey(cfg.JWTPrivateKey)
	if err != nil {
		log.Fatalf("JWT_PRIVATE_KEY: %v", err)
	}
	publicKey, err := security.ParsePublicKey(cfg.JWTPublicKey)
	if err != nil {
		log.Fatalf("JWT_PUBLIC_KEY: %v", err)
	}
	tokens := security.NewTokenProvider(privateKey, publicKey, cfg.JWTIssuer, cfg.JWTAudience, cfg.AccessTTL())
	hasher := security.NewHasher(cfg.BcryptCost)

	users := userrepo.NewPostgresRepository(conn)
	refreshTokens := refreshtoken.NewService(tokenrepo.NewPostgresRepository(conn), users, cfg.RefreshTTL())

	var guard loginattempt.Guard
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Fatalf("redis: %v", err)
		}
		defer rdb.Close()
		guard = loginattempt.NewRedisGuard(rdb, cfg.LockoutMaxAttempts, cfg.LockoutCooldown())
		log.Printf("lockout guard: redis (%s)", cfg.RedisAddr)
	} else {
		guard = loginattempt.NewMemoryGuard(cfg.LockoutMaxAttempts, cfg.LockoutCooldown())
		log.Print("lockout guard: in-process")
	}

	var sender notify.Sender
	switch {
	case cfg.SMTPHost != "":
		sender = notify.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom)
	case cfg.SMSLocalAPIKey != "":
		sender = notify.NewSMSLocalSender(cfg.SMSLocalAPIKey, cfg.SMSLocalBaseURL, cfg.SMSLocalSender)
	default:
		log.Print("notify: no OTP channel configured; reset codes will not be dispatched")
		sender = notify.Noop{}
	}

	var devStore devotp.Store
	if cfg.OTPReturnToClient {
		devStore = devotp.NewMemoryStore()
		log.Print("dev OTP mode enabled; reset codes retrievable via /v1/dev/otp")
	}
	resets := passwordreset.NewService(resetrepo.NewPostgresRepository(conn), sender, devStore, cfg.OTPTTL())

	auditLogger := otel.MultiLogger{
		audit.NewLogger(auditrepo.NewPostgresRepository(conn)),
		otel.NewAuditEmitter(providers.LoggerProvider),
	}

	authSvc := auth.NewService(users, hasher, tokens, refreshTokens, resets, guard, auditLogger, cfg.RefreshRotate)
	registrar := orgservice.NewRegistrar(orgrepo.NewPostgresRepository(conn), users, hasher)

	grpcSrv, healthSrv := server.New(server.Deps{
		Tokens:            tokens,
		TenantMetadataKey: cfg.TenantMetadataKey,
		Audit:             auditLogger,
	})

	router := chi.NewRouter()
	apiHandler := &authhandler.Handler{
		Auth:         authSvc,
		Registrar:    registrar,
		Tokens:       tokens,
		TenantHeader: cfg.TenantMetadataKey,
		DevOTP:       devStore,
	}
	apiHandler.Register(router)
	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		log.Fatalf("listen: %v", err)
	}
	defer lis.Close()

	healthSrv.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	go func() {
		log.Printf("gRPC server listening on %s", cfg.GRPCAddr)
		if err := grpcSrv.Serve(lis); err != nil {
			log.Fatalf("grpc serve: %v", err)
		}
	}()
	go func() {
		log.Printf("HTTP API listening on %s", cfg.HTTPAddr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("http serve: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("shutting down...")
	healthSrv.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = httpSrv.Shutdown(shutdownCtx)
	grpcSrv.GracefulStop()
	log.Println("stopped")
}

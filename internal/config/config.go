// Package config loads and validates app config from env and an optional .env file using Viper.
package config

import (
	"errors"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	// GRPCAddr is the address the gRPC server listens on (e.g. :8080).
	GRPCAddr string `mapstructure:"GRPC_ADDR"`
	// HTTPAddr is the address the JSON HTTP API listens on (e.g. :8081).
	HTTPAddr string `mapstructure:"HTTP_ADDR"`
	// DatabaseURL is the Postgres DSN.
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	// TenantMetadataKey is the inbound metadata key carrying the tenant slug (default x-tenant-id).
	TenantMetadataKey string `mapstructure:"TENANT_METADATA_KEY"`
	// JWTPrivateKey is the PEM-encoded private key (RSA or ECDSA) or path to file; used with JWT_PUBLIC_KEY for RS256/ES256.
	JWTPrivateKey string `mapstructure:"JWT_PRIVATE_KEY"`
	// JWTPublicKey is the PEM-encoded public key or path to file; used with JWT_PRIVATE_KEY.
	JWTPublicKey string `mapstructure:"JWT_PUBLIC_KEY"`
	// JWTIssuer is the iss claim (e.g. "campus-auth").
	JWTIssuer string `mapstructure:"JWT_ISSUER"`
	// JWTAudience is the aud claim (e.g. "campus-api").
	JWTAudience string `mapstructure:"JWT_AUDIENCE"`
	// JWTAccessTTL is the access token lifetime (e.g. "15m").
	JWTAccessTTL string `mapstructure:"JWT_ACCESS_TTL"`
	// RefreshTTL is the refresh token lifetime (e.g. "168h").
	RefreshTTLRaw string `mapstructure:"REFRESH_TTL"`
	// RefreshRotate enables rotating the refresh token on every refresh call.
	// Off by default: refresh issues only a new access token.
	RefreshRotate bool `mapstructure:"REFRESH_ROTATE"`
	// BcryptCost is the bcrypt cost factor (4–31); default 12.
	BcryptCost int `mapstructure:"BCRYPT_COST"`
	// OTPTTL is the password-reset OTP lifetime (e.g. "10m").
	OTPTTLRaw string `mapstructure:"OTP_TTL"`
	// LockoutMaxAttempts is the number of consecutive failed logins before lockout (default 5).
	LockoutMaxAttempts int `mapstructure:"LOCKOUT_MAX_ATTEMPTS"`
	// LockoutCooldown is how long a locked account stays blocked (e.g. "15m").
	LockoutCooldownRaw string `mapstructure:"LOCKOUT_COOLDOWN"`
	// RedisAddr enables the Redis-backed lockout guard when set (host:port). Empty uses in-process counters.
	RedisAddr string `mapstructure:"REDIS_ADDR"`

	// SMTPHost, SMTPPort, SMTPUser, SMTPPass, SMTPFrom configure OTP email dispatch. Empty host disables email.
	SMTPHost string `mapstructure:"SMTP_HOST"`
	SMTPPort int    `mapstructure:"SMTP_PORT"`
	SMTPUser string `mapstructure:"SMTP_USER"`
	SMTPPass string `mapstructure:"SMTP_PASS"`
	SMTPFrom string `mapstructure:"SMTP_FROM"`

	// SMSLocalAPIKey is the API key for SMS Local OTP dispatch. Empty disables SMS.
	SMSLocalAPIKey string `mapstructure:"SMS_LOCAL_API_KEY"`
	// SMSLocalSender is the optional sender ID for SMS Local.
	SMSLocalSender string `mapstructure:"SMS_LOCAL_SENDER"`
	// SMSLocalBaseURL is the SMS Local API base URL.
	SMSLocalBaseURL string `mapstructure:"SMS_LOCAL_BASE_URL"`

	// OTPReturnToClient when true enables dev OTP mode: the last OTP per user is kept in memory for
	// test retrieval instead of being dispatched. Must not be true when Env is production.
	OTPReturnToClient bool `mapstructure:"OTP_RETURN_TO_CLIENT"`
	// Env is the application environment (e.g. "development", "production").
	Env string `mapstructure:"APP_ENV"`

	// OTLPEndpoint is the OTLP gRPC collector endpoint for telemetry (e.g. http://localhost:4317). Empty disables export.
	OTLPEndpoint string `mapstructure:"OTLP_ENDPOINT"`
	// OTLPInsecure forces plaintext OTLP export even for https endpoints.
	OTLPInsecure bool `mapstructure:"OTLP_INSECURE"`
}

// Load reads .env (if present), then builds and validates Config from the environment via Viper.
// Missing .env is ignored (e.g. in CI). Env vars override .env. Returns an error if required fields are invalid.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // ignore ErrConfigFileNotFound

	v.AutomaticEnv()

	v.SetDefault("GRPC_ADDR", ":8080")
	v.SetDefault("HTTP_ADDR", ":8081")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("TENANT_METADATA_KEY", "x-tenant-id")
	v.SetDefault("JWT_ISSUER", "campus-auth")
	v.SetDefault("JWT_AUDIENCE", "campus-api")
	v.SetDefault("JWT_ACCESS_TTL", "15m")
	v.SetDefault("REFRESH_TTL", "168h") // 7d
	v.SetDefault("REFRESH_ROTATE", false)
	v.SetDefault("BCRYPT_COST", 12)
	v.SetDefault("OTP_TTL", "10m")
	v.SetDefault("LOCKOUT_MAX_ATTEMPTS", 5)
	v.SetDefault("LOCKOUT_COOLDOWN", "15m")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("SMTP_HOST", "")
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("SMTP_FROM", "")
	v.SetDefault("SMS_LOCAL_BASE_URL", "https://app.smslocal.in/api/smsapi")
	v.SetDefault("OTP_RETURN_TO_CLIENT", false)
	v.SetDefault("APP_ENV", "")
	v.SetDefault("OTLP_ENDPOINT", "")
	v.SetDefault("OTLP_INSECURE", false)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.GRPCAddr == "" {
		return nil, errors.New("config: GRPC_ADDR must be set")
	}
	if cfg.TenantMetadataKey == "" {
		return nil, errors.New("config: TENANT_METADATA_KEY must be set")
	}

	if cfg.OTPReturnToClient && cfg.Env == "production" {
		return nil, errors.New("config: OTP_RETURN_TO_CLIENT must not be true when APP_ENV=production")
	}

	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = 12
	}
	if cfg.BcryptCost < 4 || cfg.BcryptCost > 31 {
		return nil, errors.New("config: BCRYPT_COST must be between 4 and 31")
	}

	if cfg.LockoutMaxAttempts <= 0 {
		cfg.LockoutMaxAttempts = 5
	}

	return &cfg, nil
}

// AccessTTL parses JWTAccessTTL as a time.Duration. Returns 15m if unset or invalid.
func (c *Config) AccessTTL() time.Duration {
	d, err := time.ParseDuration(c.JWTAccessTTL)
	if err != nil || d <= 0 {
		return 15 * time.Minute
	}
	return d
}

// RefreshTTL parses RefreshTTLRaw as a time.Duration. Returns 168h if unset or invalid.
func (c *Config) RefreshTTL() time.Duration {
	d, err := time.ParseDuration(c.RefreshTTLRaw)
	if err != nil || d <= 0 {
		return 168 * time.Hour
	}
	return d
}

// OTPTTL parses OTPTTLRaw as a time.Duration. Returns 10m if unset or invalid.
func (c *Config) OTPTTL() time.Duration {
	d, err := time.ParseDuration(c.OTPTTLRaw)
	if err != nil || d <= 0 {
		return 10 * time.Minute
	}
	return d
}

// LockoutCooldown parses LockoutCooldownRaw as a time.Duration. Returns 15m if unset or invalid.
func (c *Config) LockoutCooldown() time.Duration {
	d, err := time.ParseDuration(c.LockoutCooldownRaw)
	if err != nil || d <= 0 {
		return 15 * time.Minute
	}
	return d
}

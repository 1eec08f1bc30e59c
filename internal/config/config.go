// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package config

import (
	"fmt"
	"strings"
	"time"

	altsrc "github.com/urfave/cli-altsrc/v3"
	"github.com/urfave/cli-altsrc/v3/toml"
	"github.com/urfave/cli/v3"
)

var configFile = altsrc.StringSourcer("config.toml")

type Config struct { //nolint:govet // fieldalignment not critical for config structs
	Server   ServerConfig
	Log      LogConfig
	Database DatabaseConfig
	Session  SessionConfig
	Auth     AuthConfig
	SMTP     SMTPConfig
	Contact  ContactConfig
	OTP      OTPConfig
	Media    MediaConfig
}

type ServerConfig struct { //nolint:govet // fieldalignment not critical for config structs
	Host        string
	Port        int
	BaseURL     string
	MaxBodySize int // in MB
}

type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // text, json
}

type DatabaseConfig struct {
	DSN string
}

type SessionConfig struct { //nolint:govet // fieldalignment not critical
	CookieName string // Session cookie name
	MaxAge     int    // Session max age in seconds
	HashKey    string // 32-byte hex string for HMAC signing
	BlockKey   string // 32-byte hex string for AES encryption (optional)
}

type AuthConfig struct {
	TokenSecret   string // HMAC secret for verification tickets
	AdminEmail    string
	AdminPassword string
}

type SMTPConfig struct { //nolint:govet // fieldalignment not critical for config structs
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
	TLS      bool
	Timeout  time.Duration
}

type ContactConfig struct {
	OperatorEmail string
}

type OTPConfig struct { //nolint:govet // fieldalignment not critical for config structs
	Store         string // memory, redis, sql
	RedisURL      string
	TTL           time.Duration
	Cooldown      time.Duration // client-side resend countdown
	SweepSchedule string        // cron spec, empty disables the sweeper
}

type MediaConfig struct { //nolint:govet // fieldalignment not critical for config structs
	Bucket        string
	Region        string
	Endpoint      string // S3-compatible endpoint, empty for AWS
	AccessKey     string
	SecretKey     string
	PublicBaseURL string
	Prefix        string
	Timeout       time.Duration
}

// Enabled reports whether an upload target is configured.
func (m MediaConfig) Enabled() bool {
	return m.Bucket != ""
}

func NewFromCLI(cmd *cli.Command) *Config {
	cfg := &Config{
		Server: ServerConfig{
			Host:        cmd.String("host"),
			Port:        int(cmd.Int("port")),
			BaseURL:     cmd.String("base-url"),
			MaxBodySize: int(cmd.Int("max-body-size")),
		},
		Log: LogConfig{
			Level:  cmd.String("log-level"),
			Format: cmd.String("log-format"),
		},
		Database: DatabaseConfig{
			DSN: cmd.String("database-dsn"),
		},
		Session: SessionConfig{
			CookieName: cmd.String("session-cookie-name"),
			MaxAge:     int(cmd.Int("session-max-age")),
			HashKey:    cmd.String("session-hash-key"),
			BlockKey:   cmd.String("session-block-key"),
		},
		Auth: AuthConfig{
			TokenSecret:   cmd.String("auth-token-secret"),
			AdminEmail:    cmd.String("admin-email"),
			AdminPassword: cmd.String("admin-password"),
		},
		SMTP: SMTPConfig{
			Host:     cmd.String("smtp-host"),
			Port:     int(cmd.Int("smtp-port")),
			Username: cmd.String("smtp-username"),
			Password: cmd.String("smtp-password"),
			From:     cmd.String("smtp-from"),
			FromName: cmd.String("smtp-from-name"),
			TLS:      cmd.Bool("smtp-tls"),
			Timeout:  cmd.Duration("smtp-timeout"),
		},
		Contact: ContactConfig{
			OperatorEmail: cmd.String("contact-operator-email"),
		},
		OTP: OTPConfig{
			Store:         cmd.String("otp-store"),
			RedisURL:      cmd.String("otp-redis-url"),
			TTL:           cmd.Duration("otp-ttl"),
			Cooldown:      cmd.Duration("otp-cooldown"),
			SweepSchedule: cmd.String("otp-sweep-schedule"),
		},
		Media: MediaConfig{
			Bucket:        cmd.String("media-bucket"),
			Region:        cmd.String("media-region"),
			Endpoint:      cmd.String("media-endpoint"),
			AccessKey:     cmd.String("media-access-key"),
			SecretKey:     cmd.String("media-secret-key"),
			PublicBaseURL: cmd.String("media-public-base-url"),
			Prefix:        cmd.String("media-prefix"),
			Timeout:       cmd.Duration("media-timeout"),
		},
	}

	if cfg.Server.BaseURL == "" {
		cfg.Server.BaseURL = buildBaseURL(cfg)
	}
	applyDefaults(cfg)

	return cfg
}

// applyDefaults fills values derived from other settings.
func applyDefaults(cfg *Config) {
	if cfg.Contact.OperatorEmail == "" {
		cfg.Contact.OperatorEmail = cfg.SMTP.From
	}
	if cfg.Media.PublicBaseURL == "" && cfg.Media.Bucket != "" {
		if cfg.Media.Endpoint != "" {
			cfg.Media.PublicBaseURL = strings.TrimSuffix(cfg.Media.Endpoint, "/") + "/" + cfg.Media.Bucket
		} else {
			cfg.Media.PublicBaseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Media.Bucket, cfg.Media.Region)
		}
	}
}

func buildBaseURL(cfg *Config) string {
	host := cfg.Server.Host
	port := cfg.Server.Port

	scheme := "https"
	if IsLocalhost(host) {
		scheme = "http"
	}

	// Hide default ports in URL
	if (scheme == "http" && port == 80) || (scheme == "https" && port == 443) {
		return fmt.Sprintf("%s://%s", scheme, host)
	}
	return fmt.Sprintf("%s://%s:%d", scheme, host, port)
}

// IsLocalhost checks if the host is a localhost address.
func IsLocalhost(host string) bool {
	switch host {
	case "", "localhost", "127.0.0.1", "::1":
		return true
	}
	// Check for *.localhost subdomains (e.g., app.localhost)
	return strings.HasSuffix(host, ".localhost")
}

func Flags() []cli.Flag {
	flags := []cli.Flag{
		&cli.StringFlag{
			Name:    "host",
			Value:   "localhost",
			Usage:   "Host to bind to",
			Sources: cli.NewValueSourceChain(cli.EnvVar("HOST"), toml.TOML("server.host", configFile)),
		},
		&cli.IntFlag{
			Name:    "port",
			Value:   8080,
			Usage:   "Port to listen on",
			Sources: cli.NewValueSourceChain(cli.EnvVar("PORT"), toml.TOML("server.port", configFile)),
		},
		&cli.StringFlag{
			Name:    "base-url",
			Usage:   "Public base URL used in outbound email links",
			Sources: cli.NewValueSourceChain(cli.EnvVar("BASE_URL"), toml.TOML("server.base_url", configFile)),
		},
		&cli.IntFlag{
			Name:    "max-body-size",
			Value:   12,
			Usage:   "Maximum request body size in MB",
			Sources: cli.NewValueSourceChain(cli.EnvVar("MAX_BODY_SIZE"), toml.TOML("server.max_body_size", configFile)),
		},
		&cli.StringFlag{
			Name:    "log-level",
			Value:   "info",
			Usage:   "Log level (debug, info, warn, error)",
			Sources: cli.NewValueSourceChain(cli.EnvVar("LOG_LEVEL"), toml.TOML("log.level", configFile)),
		},
		&cli.StringFlag{
			Name:    "log-format",
			Value:   "text",
			Usage:   "Log format (text, json)",
			Sources: cli.NewValueSourceChain(cli.EnvVar("LOG_FORMAT"), toml.TOML("log.format", configFile)),
		},
	}
	flags = append(flags, DatabaseFlags()...)
	flags = append(flags, sessionFlags()...)
	flags = append(flags, AdminFlags()...)
	flags = append(flags, smtpFlags()...)
	flags = append(flags, OTPFlags()...)
	flags = append(flags, mediaFlags()...)
	return flags
}

// DatabaseFlags returns the flags needed to open the database.
func DatabaseFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "database-dsn",
			Value:   "./data/app.db",
			Usage:   "Database DSN",
			Sources: cli.NewValueSourceChain(cli.EnvVar("DATABASE_DSN"), toml.TOML("database.dsn", configFile)),
		},
	}
}

// AdminFlags returns the flags for the bootstrap administrator.
func AdminFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "admin-email",
			Usage:   "Email of the bootstrap administrator",
			Sources: cli.NewValueSourceChain(cli.EnvVar("ADMIN_EMAIL"), toml.TOML("auth.admin_email", configFile)),
		},
		&cli.StringFlag{
			Name:    "admin-password",
			Usage:   "Password of the bootstrap administrator",
			Sources: cli.NewValueSourceChain(cli.EnvVar("ADMIN_PASSWORD"), toml.TOML("auth.admin_password", configFile)),
		},
	}
}

func sessionFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "session-cookie-name",
			Value:   "_session",
			Usage:   "Session cookie name",
			Sources: cli.NewValueSourceChain(cli.EnvVar("SESSION_COOKIE_NAME"), toml.TOML("session.cookie_name", configFile)),
		},
		&cli.IntFlag{
			Name:    "session-max-age",
			Value:   604800, // 7 days in seconds
			Usage:   "Session max age in seconds",
			Sources: cli.NewValueSourceChain(cli.EnvVar("SESSION_MAX_AGE"), toml.TOML("session.max_age", configFile)),
		},
		&cli.StringFlag{
			Name:    "session-hash-key",
			Usage:   "Session hash key (32-byte hex, auto-generated if empty in dev)",
			Sources: cli.NewValueSourceChain(cli.EnvVar("SESSION_HASH_KEY"), toml.TOML("session.hash_key", configFile)),
		},
		&cli.StringFlag{
			Name:    "session-block-key",
			Usage:   "Session block key for encryption (32-byte hex, optional)",
			Sources: cli.NewValueSourceChain(cli.EnvVar("SESSION_BLOCK_KEY"), toml.TOML("session.block_key", configFile)),
		},
		&cli.StringFlag{
			Name:    "auth-token-secret",
			Usage:   "Secret for signing verification tickets (random per process if empty)",
			Sources: cli.NewValueSourceChain(cli.EnvVar("AUTH_TOKEN_SECRET"), toml.TOML("auth.token_secret", configFile)),
		},
	}
}

func smtpFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "smtp-host",
			Value:   "localhost",
			Usage:   "SMTP server host",
			Sources: cli.NewValueSourceChain(cli.EnvVar("SMTP_HOST"), toml.TOML("smtp.host", configFile)),
		},
		&cli.IntFlag{
			Name:    "smtp-port",
			Value:   587,
			Usage:   "SMTP server port",
			Sources: cli.NewValueSourceChain(cli.EnvVar("SMTP_PORT"), toml.TOML("smtp.port", configFile)),
		},
		&cli.StringFlag{
			Name:    "smtp-username",
			Usage:   "SMTP username",
			Sources: cli.NewValueSourceChain(cli.EnvVar("SMTP_USERNAME"), toml.TOML("smtp.username", configFile)),
		},
		&cli.StringFlag{
			Name:    "smtp-password",
			Usage:   "SMTP password",
			Sources: cli.NewValueSourceChain(cli.EnvVar("SMTP_PASSWORD"), toml.TOML("smtp.password", configFile)),
		},
		&cli.StringFlag{
			Name:    "smtp-from",
			Value:   "noreply@localhost",
			Usage:   "Sender address",
			Sources: cli.NewValueSourceChain(cli.EnvVar("SMTP_FROM"), toml.TOML("smtp.from", configFile)),
		},
		&cli.StringFlag{
			Name:    "smtp-from-name",
			Value:   "Greengrocer",
			Usage:   "Sender display name",
			Sources: cli.NewValueSourceChain(cli.EnvVar("SMTP_FROM_NAME"), toml.TOML("smtp.from_name", configFile)),
		},
		&cli.BoolFlag{
			Name:    "smtp-tls",
			Value:   true,
			Usage:   "Require TLS for SMTP (implicit TLS on port 465, STARTTLS otherwise)",
			Sources: cli.NewValueSourceChain(cli.EnvVar("SMTP_TLS"), toml.TOML("smtp.tls", configFile)),
		},
		&cli.DurationFlag{
			Name:    "smtp-timeout",
			Value:   10 * time.Second,
			Usage:   "Timeout per mail delivery attempt",
			Sources: cli.NewValueSourceChain(cli.EnvVar("SMTP_TIMEOUT"), toml.TOML("smtp.timeout", configFile)),
		},
		&cli.StringFlag{
			Name:    "contact-operator-email",
			Usage:   "Recipient of contact form notifications (defaults to smtp-from)",
			Sources: cli.NewValueSourceChain(cli.EnvVar("CONTACT_EMAIL"), toml.TOML("contact.operator_email", configFile)),
		},
	}
}

// OTPFlags returns the flags for the verification code store.
func OTPFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "otp-store",
			Value:   "sql",
			Usage:   "Verification code store (memory, redis, sql)",
			Sources: cli.NewValueSourceChain(cli.EnvVar("OTP_STORE"), toml.TOML("otp.store", configFile)),
		},
		&cli.StringFlag{
			Name:    "otp-redis-url",
			Value:   "redis://localhost:6379/0",
			Usage:   "Redis URL for the redis code store",
			Sources: cli.NewValueSourceChain(cli.EnvVar("OTP_REDIS_URL"), toml.TOML("otp.redis_url", configFile)),
		},
		&cli.DurationFlag{
			Name:    "otp-ttl",
			Value:   10 * time.Minute,
			Usage:   "Lifetime of a verification code",
			Sources: cli.NewValueSourceChain(cli.EnvVar("OTP_TTL"), toml.TOML("otp.ttl", configFile)),
		},
		&cli.DurationFlag{
			Name:    "otp-cooldown",
			Value:   60 * time.Second,
			Usage:   "Countdown before the resend button is enabled again",
			Sources: cli.NewValueSourceChain(cli.EnvVar("OTP_COOLDOWN"), toml.TOML("otp.cooldown", configFile)),
		},
		&cli.StringFlag{
			Name:    "otp-sweep-schedule",
			Value:   "*/15 * * * *",
			Usage:   "Cron schedule for purging expired codes (empty disables)",
			Sources: cli.NewValueSourceChain(cli.EnvVar("OTP_SWEEP_SCHEDULE"), toml.TOML("otp.sweep_schedule", configFile)),
		},
	}
}

func mediaFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "media-bucket",
			Usage:   "Bucket for catalog images (uploads disabled if empty)",
			Sources: cli.NewValueSourceChain(cli.EnvVar("MEDIA_BUCKET"), toml.TOML("media.bucket", configFile)),
		},
		&cli.StringFlag{
			Name:    "media-region",
			Value:   "us-east-1",
			Usage:   "Bucket region",
			Sources: cli.NewValueSourceChain(cli.EnvVar("MEDIA_REGION"), toml.TOML("media.region", configFile)),
		},
		&cli.StringFlag{
			Name:    "media-endpoint",
			Usage:   "S3-compatible endpoint URL",
			Sources: cli.NewValueSourceChain(cli.EnvVar("MEDIA_ENDPOINT"), toml.TOML("media.endpoint", configFile)),
		},
		&cli.StringFlag{
			Name:    "media-access-key",
			Usage:   "Access key ID",
			Sources: cli.NewValueSourceChain(cli.EnvVar("MEDIA_ACCESS_KEY"), toml.TOML("media.access_key", configFile)),
		},
		&cli.StringFlag{
			Name:    "media-secret-key",
			Usage:   "Secret access key",
			Sources: cli.NewValueSourceChain(cli.EnvVar("MEDIA_SECRET_KEY"), toml.TOML("media.secret_key", configFile)),
		},
		&cli.StringFlag{
			Name:    "media-public-base-url",
			Usage:   "Public URL prefix for uploaded images (derived from endpoint and bucket if empty)",
			Sources: cli.NewValueSourceChain(cli.EnvVar("MEDIA_PUBLIC_BASE_URL"), toml.TOML("media.public_base_url", configFile)),
		},
		&cli.StringFlag{
			Name:    "media-prefix",
			Value:   "fruit-images",
			Usage:   "Key prefix for uploaded images",
			Sources: cli.NewValueSourceChain(cli.EnvVar("MEDIA_PREFIX"), toml.TOML("media.prefix", configFile)),
		},
		&cli.DurationFlag{
			Name:    "media-timeout",
			Value:   10 * time.Second,
			Usage:   "Timeout per upload attempt",
			Sources: cli.NewValueSourceChain(cli.EnvVar("MEDIA_TIMEOUT"), toml.TOML("media.timeout", configFile)),
		},
	}
}

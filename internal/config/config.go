package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Identity provider mode constants
const (
	IdentityModeHTTPAPI = "http_api"
	IdentityModeJWT     = "jwt"
)

// Cache backend constants shared by the identity and metrics caches
const (
	CacheTypeMemory = "memory"
	CacheTypeRedis  = "redis"
)

// Rate limit store constants
const (
	RateLimitStoreMemory = "memory"
	RateLimitStoreRedis  = "redis"
)

const defaultSTUNServer = "stun:stun.l.google.com:19302"

// ICEServer mirrors the RTCIceServer dictionary handed to WebRTC peers.
type ICEServer struct {
	URLs       any    `json:"urls"`
	Username   string `json:"username,omitempty"`
	Credential string `json:"credential,omitempty"`
}

type Config struct {
	// Server settings
	ServerAddr   string
	BaseURL      string
	Environment  string
	IsProduction bool

	// Database
	DatabaseDriver string // "sqlite" or "postgres"
	DatabaseDSN    string
	DBInitTimeout  time.Duration

	// Device pairing
	DeviceCodeExpiration    time.Duration // default expires_in
	DeviceCodeMaxExpiration time.Duration // upper clamp for requested expires_in
	PollingInterval         int           // seconds
	DeviceSingleUse         bool          // approved codes are consumed by the first successful poll
	VerificationPath        string

	// Remote sessions
	SessionTTL time.Duration

	// Application tokens
	AppTokenSecret     string
	AppTokenExpiration time.Duration
	AppTokenIssuer     string

	// Identity provider
	IdentityMode                  string
	IdentityAPIURL                string
	IdentityAPIKey                string
	IdentityAPITimeout            time.Duration
	IdentityAPIInsecureSkipVerify bool
	IdentityAPIMaxRetries         int
	IdentityAPIRetryDelay         time.Duration
	IdentityAPIMaxRetryDelay      time.Duration
	IdentityJWTSecret             string
	IdentityJWTAudience           string
	IdentityCacheTTL              time.Duration // 0 disables caching
	IdentityCacheType             string

	// Realtime hand-off
	RealtimeEndpoint string // external realtime service; empty means the built-in relay
	RealtimeAPIKey   string
	ICEServersJSON   string
	SignalingEnabled bool

	// Preview compiler
	PreviewEnabled  bool
	PreviewCDNBase  string
	PreviewMaxFiles int
	PreviewMaxBytes int

	// Rate limiting
	EnableRateLimit          bool
	RateLimitStore           string
	RateLimitCleanupInterval time.Duration
	DeviceStartRateLimit     int // requests per minute per IP
	DevicePollRateLimit      int
	DeviceApproveRateLimit   int
	SessionJoinRateLimit     int
	PreviewRateLimit         int

	// Redis (rate limiting and caches)
	RedisAddr        string
	RedisPassword    string
	RedisDB          int
	RedisConnTimeout time.Duration
	CacheInitTimeout time.Duration

	// Metrics
	MetricsEnabled             bool
	MetricsToken               string
	MetricsGaugeUpdateEnabled  bool
	MetricsGaugeUpdateInterval time.Duration
	MetricsCacheType           string

	// Audit
	EnableAuditLogging bool
	AuditLogRetention  time.Duration
	AuditLogBufferSize int

	// Expired row cleanup
	CleanupInterval  time.Duration
	CleanupRetention time.Duration // how long expired or closed rows are kept
}

func Load() *Config {
	// Load .env file if exists (ignore error if not found)
	_ = godotenv.Load()

	driver := getEnv("DATABASE_DRIVER", "sqlite")
	dsn := getEnv("DATABASE_DSN", "")
	if driver == "sqlite" && dsn == "" {
		dsn = getEnv("DATABASE_PATH", "pairgate.db")
	}

	env := strings.ToLower(getEnv("ENVIRONMENT", "development"))
	baseURL := strings.TrimRight(getEnv("BASE_URL", "http://localhost:8080"), "/")

	return &Config{
		ServerAddr:   getEnv("SERVER_ADDR", ":8080"),
		BaseURL:      baseURL,
		Environment:  env,
		IsProduction: env == "production",

		DatabaseDriver: driver,
		DatabaseDSN:    dsn,
		DBInitTimeout:  getEnvDuration("DB_INIT_TIMEOUT", 30*time.Second),

		DeviceCodeExpiration:    getEnvDuration("DEVICE_CODE_EXPIRATION", 10*time.Minute),
		DeviceCodeMaxExpiration: getEnvDuration("DEVICE_CODE_MAX_EXPIRATION", time.Hour),
		PollingInterval:         getEnvInt("DEVICE_POLLING_INTERVAL", 5),
		DeviceSingleUse:         getEnvBool("DEVICE_SINGLE_USE", false),
		VerificationPath:        getEnv("DEVICE_VERIFICATION_PATH", "/device"),

		SessionTTL: getEnvDuration("SESSION_TTL", 5*time.Minute),

		AppTokenSecret:     getEnv("APP_TOKEN_SECRET", ""),
		AppTokenExpiration: getEnvDuration("APP_TOKEN_EXPIRATION", time.Hour),
		AppTokenIssuer:     getEnv("APP_TOKEN_ISSUER", baseURL),

		IdentityMode:                  getEnv("IDENTITY_MODE", IdentityModeHTTPAPI),
		IdentityAPIURL:                strings.TrimRight(getEnv("IDENTITY_API_URL", ""), "/"),
		IdentityAPIKey:                getEnv("IDENTITY_API_KEY", ""),
		IdentityAPITimeout:            getEnvDuration("IDENTITY_API_TIMEOUT", 10*time.Second),
		IdentityAPIInsecureSkipVerify: getEnvBool("IDENTITY_API_INSECURE_SKIP_VERIFY", false),
		IdentityAPIMaxRetries:         getEnvInt("IDENTITY_API_MAX_RETRIES", 2),
		IdentityAPIRetryDelay:         getEnvDuration("IDENTITY_API_RETRY_DELAY", 500*time.Millisecond),
		IdentityAPIMaxRetryDelay:      getEnvDuration("IDENTITY_API_MAX_RETRY_DELAY", 5*time.Second),
		IdentityJWTSecret:             getEnv("IDENTITY_JWT_SECRET", ""),
		IdentityJWTAudience:           getEnv("IDENTITY_JWT_AUDIENCE", ""),
		IdentityCacheTTL:              getEnvDuration("IDENTITY_CACHE_TTL", 30*time.Second),
		IdentityCacheType:             getEnv("IDENTITY_CACHE_TYPE", CacheTypeMemory),

		RealtimeEndpoint: getEnv("REALTIME_ENDPOINT", ""),
		RealtimeAPIKey:   getEnv("REALTIME_API_KEY", ""),
		ICEServersJSON:   getEnv("ICE_SERVERS", ""),
		SignalingEnabled: getEnvBool("SIGNALING_ENABLED", true),

		PreviewEnabled:  getEnvBool("PREVIEW_ENABLED", true),
		PreviewCDNBase:  strings.TrimRight(getEnv("PREVIEW_CDN_BASE", "https://esm.sh"), "/"),
		PreviewMaxFiles: getEnvInt("PREVIEW_MAX_FILES", 64),
		PreviewMaxBytes: getEnvInt("PREVIEW_MAX_BYTES", 512*1024),

		EnableRateLimit:          getEnvBool("ENABLE_RATE_LIMIT", true),
		RateLimitStore:           getEnv("RATE_LIMIT_STORE", RateLimitStoreMemory),
		RateLimitCleanupInterval: getEnvDuration("RATE_LIMIT_CLEANUP_INTERVAL", 5*time.Minute),
		DeviceStartRateLimit:     getEnvInt("DEVICE_START_RATE_LIMIT", 10),
		DevicePollRateLimit:      getEnvInt("DEVICE_POLL_RATE_LIMIT", 60),
		DeviceApproveRateLimit:   getEnvInt("DEVICE_APPROVE_RATE_LIMIT", 10),
		SessionJoinRateLimit:     getEnvInt("SESSION_JOIN_RATE_LIMIT", 20),
		PreviewRateLimit:         getEnvInt("PREVIEW_RATE_LIMIT", 30),

		RedisAddr:        getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:    getEnv("REDIS_PASSWORD", ""),
		RedisDB:          getEnvInt("REDIS_DB", 0),
		RedisConnTimeout: getEnvDuration("REDIS_CONN_TIMEOUT", 5*time.Second),
		CacheInitTimeout: getEnvDuration("CACHE_INIT_TIMEOUT", 5*time.Second),

		MetricsEnabled:             getEnvBool("METRICS_ENABLED", false),
		MetricsToken:               getEnv("METRICS_TOKEN", ""),
		MetricsGaugeUpdateEnabled:  getEnvBool("METRICS_GAUGE_UPDATE_ENABLED", true),
		MetricsGaugeUpdateInterval: getEnvDuration("METRICS_GAUGE_UPDATE_INTERVAL", 30*time.Second),
		MetricsCacheType:           getEnv("METRICS_CACHE_TYPE", CacheTypeMemory),

		EnableAuditLogging: getEnvBool("ENABLE_AUDIT_LOGGING", true),
		AuditLogRetention:  getEnvDuration("AUDIT_LOG_RETENTION", 90*24*time.Hour),
		AuditLogBufferSize: getEnvInt("AUDIT_LOG_BUFFER_SIZE", 1000),

		CleanupInterval:  getEnvDuration("CLEANUP_INTERVAL", time.Hour),
		CleanupRetention: getEnvDuration("CLEANUP_RETENTION", 24*time.Hour),
	}
}

// Validate checks the configuration for values that would make the server
// misbehave at runtime.
func (c *Config) Validate() error {
	switch c.DatabaseDriver {
	case "sqlite":
	case "postgres":
		if c.DatabaseDSN == "" {
			return errors.New("DATABASE_DSN is required when DATABASE_DRIVER=postgres")
		}
	default:
		return fmt.Errorf(
			"invalid DATABASE_DRIVER: %s (must be: sqlite, postgres)",
			c.DatabaseDriver,
		)
	}

	if c.PollingInterval < 1 {
		return fmt.Errorf("DEVICE_POLLING_INTERVAL must be at least 1, got %d", c.PollingInterval)
	}
	if c.DeviceCodeMaxExpiration < time.Minute {
		return errors.New("DEVICE_CODE_MAX_EXPIRATION must be at least 1m")
	}
	if c.SessionTTL <= 0 {
		return errors.New("SESSION_TTL must be positive")
	}
	if c.AppTokenExpiration <= 0 {
		return errors.New("APP_TOKEN_EXPIRATION must be positive")
	}

	if err := c.validateAppTokenSecret(); err != nil {
		return err
	}
	if err := c.validateIdentity(); err != nil {
		return err
	}

	if c.RateLimitStore != RateLimitStoreMemory && c.RateLimitStore != RateLimitStoreRedis {
		return fmt.Errorf(
			"invalid RATE_LIMIT_STORE: %s (must be: memory, redis)",
			c.RateLimitStore,
		)
	}
	for name, value := range map[string]string{
		"IDENTITY_CACHE_TYPE": c.IdentityCacheType,
		"METRICS_CACHE_TYPE":  c.MetricsCacheType,
	} {
		if value != CacheTypeMemory && value != CacheTypeRedis {
			return fmt.Errorf("invalid %s: %s (must be: memory, redis)", name, value)
		}
	}

	if c.MetricsEnabled && c.MetricsGaugeUpdateEnabled && c.MetricsGaugeUpdateInterval <= 0 {
		return errors.New("METRICS_GAUGE_UPDATE_INTERVAL must be positive")
	}

	if c.PreviewMaxFiles < 1 || c.PreviewMaxBytes < 1 {
		return errors.New("PREVIEW_MAX_FILES and PREVIEW_MAX_BYTES must be positive")
	}

	if _, err := c.ICEServers(); err != nil {
		return err
	}

	return nil
}

func (c *Config) validateAppTokenSecret() error {
	if c.AppTokenSecret == "" {
		if c.IsProduction {
			return errors.New("APP_TOKEN_SECRET is required in production")
		}
		// Non-production: an ephemeral secret is generated at startup.
		return nil
	}
	if c.IsProduction && len(c.AppTokenSecret) < 32 {
		return errors.New("APP_TOKEN_SECRET must be at least 32 characters in production")
	}
	if c.IdentityJWTSecret != "" && c.AppTokenSecret == c.IdentityJWTSecret {
		return errors.New("APP_TOKEN_SECRET must differ from IDENTITY_JWT_SECRET")
	}
	return nil
}

func (c *Config) validateIdentity() error {
	switch c.IdentityMode {
	case IdentityModeHTTPAPI:
		if c.IdentityAPIURL == "" {
			return errors.New("IDENTITY_API_URL is required when IDENTITY_MODE=http_api")
		}
		if c.IdentityAPIMaxRetries < 0 {
			return errors.New("IDENTITY_API_MAX_RETRIES cannot be negative")
		}
	case IdentityModeJWT:
		if c.IdentityJWTSecret == "" {
			return errors.New("IDENTITY_JWT_SECRET is required when IDENTITY_MODE=jwt")
		}
	default:
		return fmt.Errorf(
			"invalid IDENTITY_MODE: %s (must be: http_api, jwt)",
			c.IdentityMode,
		)
	}
	return nil
}

// ICEServers parses ICE_SERVERS, falling back to a public STUN server.
func (c *Config) ICEServers() ([]ICEServer, error) {
	if strings.TrimSpace(c.ICEServersJSON) == "" {
		return []ICEServer{{URLs: defaultSTUNServer}}, nil
	}
	var servers []ICEServer
	if err := json.Unmarshal([]byte(c.ICEServersJSON), &servers); err != nil {
		return nil, fmt.Errorf("invalid ICE_SERVERS: %w", err)
	}
	if len(servers) == 0 {
		return []ICEServer{{URLs: defaultSTUNServer}}, nil
	}
	return servers, nil
}

// VerificationURI is the page where a human enters the user code.
func (c *Config) VerificationURI() string {
	return c.BaseURL + c.VerificationPath
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1"
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

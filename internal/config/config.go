package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Server   ServerConfig
	Realtime RealtimeConfig
	Invite   InviteConfig
	DevMode  bool
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string //nolint:gosec // G117: DB connection config
	DBName   string
	SSLMode  string
	MaxConns int
	Migrate  bool
}

// RedisConfig holds Redis connection settings. Redis only mirrors presence;
// with Enabled false presence is answered from process memory.
type RedisConfig struct {
	Enabled  bool
	Addr     string
	Password string //nolint:gosec // G117: Redis connection config
	DB       int
}

// JWTConfig holds JWT authentication settings.
type JWTConfig struct {
	Secret     string //nolint:gosec // G117: JWT signing secret config
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr           string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	CORSOrigins    []string
	RateLimitRPS   float64
	RateLimitBurst int
	StaticDir      string // built web client; empty disables static serving
}

// RealtimeConfig holds live-channel settings.
type RealtimeConfig struct {
	QueueSize    int
	EventRate    float64
	EventBurst   int
	MaxFrameSize int64
	PresenceTTL  time.Duration
	ChatHistory  int
}

// InviteConfig holds board invitation settings.
type InviteConfig struct {
	TTL           time.Duration
	PublicBaseURL string
	WebhookURL    string // invite delivery relay; empty logs invite links instead
}

// Load reads configuration from environment variables.
// Defaults are safe for local development only. In production,
// sensitive values (JWT secret, DB password) must be set explicitly.
func Load() (*Config, error) {
	dbPort, err := getEnvInt("COLLAB_DB_PORT", 5432)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	dbMaxConns, err := getEnvInt("COLLAB_DB_MAX_CONNS", 25)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	dbMigrate, err := getEnvBool("COLLAB_DB_MIGRATE", true)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	redisEnabled, err := getEnvBool("COLLAB_REDIS_ENABLED", true)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	redisDB, err := getEnvInt("COLLAB_REDIS_DB", 0)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	accessTTL, err := getEnvDuration("COLLAB_JWT_ACCESS_TTL", 15*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	refreshTTL, err := getEnvDuration("COLLAB_JWT_REFRESH_TTL", 7*24*time.Hour)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	readTimeout, err := getEnvDuration("COLLAB_SERVER_READ_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	writeTimeout, err := getEnvDuration("COLLAB_SERVER_WRITE_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	rateRPS, err := getEnvFloat("COLLAB_RATE_LIMIT_RPS", 20)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	rateBurst, err := getEnvInt("COLLAB_RATE_LIMIT_BURST", 40)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	queueSize, err := getEnvInt("COLLAB_WS_QUEUE_SIZE", 256)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	eventRate, err := getEnvFloat("COLLAB_WS_EVENT_RATE", 30)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	eventBurst, err := getEnvInt("COLLAB_WS_EVENT_BURST", 60)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	maxFrame, err := getEnvInt("COLLAB_WS_MAX_FRAME_BYTES", 1<<20)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	presenceTTL, err := getEnvDuration("COLLAB_PRESENCE_TTL", 2*time.Hour)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	chatHistory, err := getEnvInt("COLLAB_CHAT_HISTORY", 100)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	inviteTTL, err := getEnvDuration("COLLAB_INVITE_TTL", time.Hour)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	devMode, err := getEnvBool("COLLAB_DEV", false)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	corsOrigins := getEnvList("COLLAB_CORS_ORIGINS", []string{"http://localhost:3000"})

	cfg := &Config{
		Database: DatabaseConfig{
			Host:     getEnv("COLLAB_DB_HOST", "localhost"),
			Port:     dbPort,
			User:     getEnv("COLLAB_DB_USER", "collabboard"),
			Password: getEnv("COLLAB_DB_PASSWORD", ""),
			DBName:   getEnv("COLLAB_DB_NAME", "collabboard_dev"),
			SSLMode:  getEnv("COLLAB_DB_SSLMODE", "disable"),
			MaxConns: dbMaxConns,
			Migrate:  dbMigrate,
		},
		Redis: RedisConfig{
			Enabled:  redisEnabled,
			Addr:     getEnv("COLLAB_REDIS_ADDR", "localhost:6379"),
			Password: getEnv("COLLAB_REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		JWT: JWTConfig{
			Secret:     getEnv("COLLAB_JWT_SECRET", ""),
			AccessTTL:  accessTTL,
			RefreshTTL: refreshTTL,
		},
		Server: ServerConfig{
			Addr:           getEnv("COLLAB_SERVER_ADDR", ":8080"),
			ReadTimeout:    readTimeout,
			WriteTimeout:   writeTimeout,
			CORSOrigins:    corsOrigins,
			RateLimitRPS:   rateRPS,
			RateLimitBurst: rateBurst,
			StaticDir:      getEnv("COLLAB_STATIC_DIR", ""),
		},
		Realtime: RealtimeConfig{
			QueueSize:    queueSize,
			EventRate:    eventRate,
			EventBurst:   eventBurst,
			MaxFrameSize: int64(maxFrame),
			PresenceTTL:  presenceTTL,
			ChatHistory:  chatHistory,
		},
		Invite: InviteConfig{
			TTL:           inviteTTL,
			PublicBaseURL: strings.TrimRight(getEnv("COLLAB_PUBLIC_BASE_URL", "http://localhost:3000"), "/"),
			WebhookURL:    getEnv("COLLAB_INVITE_WEBHOOK_URL", ""),
		},
		DevMode: devMode,
	}

	err = cfg.validate()
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	return cfg, nil
}

// validate checks required fields and value bounds.
func (c *Config) validate() error {
	// JWT secret is required (no insecure default).
	if c.JWT.Secret == "" {
		return errors.New("COLLAB_JWT_SECRET is required")
	}
	if len(c.JWT.Secret) < 32 {
		return errors.New("COLLAB_JWT_SECRET must be at least 32 characters")
	}

	if c.Database.SSLMode == "disable" && !c.DevMode {
		log.Warn().Msg("COLLAB_DB_SSLMODE=disable is insecure for production; set to 'require' or 'verify-full'")
	}

	// Bounds checks.
	if c.Database.Port < 1 || c.Database.Port > 65535 {
		return fmt.Errorf("COLLAB_DB_PORT must be 1-65535, got %d", c.Database.Port)
	}
	if c.Database.MaxConns < 1 {
		return fmt.Errorf("COLLAB_DB_MAX_CONNS must be >= 1, got %d", c.Database.MaxConns)
	}
	if c.JWT.AccessTTL <= 0 {
		return fmt.Errorf("COLLAB_JWT_ACCESS_TTL must be positive, got %s", c.JWT.AccessTTL)
	}
	if c.JWT.RefreshTTL <= 0 {
		return fmt.Errorf("COLLAB_JWT_REFRESH_TTL must be positive, got %s", c.JWT.RefreshTTL)
	}
	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("COLLAB_SERVER_READ_TIMEOUT must be positive, got %s", c.Server.ReadTimeout)
	}
	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("COLLAB_SERVER_WRITE_TIMEOUT must be positive, got %s", c.Server.WriteTimeout)
	}
	if c.Server.RateLimitRPS <= 0 {
		return fmt.Errorf("COLLAB_RATE_LIMIT_RPS must be positive, got %g", c.Server.RateLimitRPS)
	}
	if c.Server.RateLimitBurst < 1 {
		return fmt.Errorf("COLLAB_RATE_LIMIT_BURST must be >= 1, got %d", c.Server.RateLimitBurst)
	}
	if c.Realtime.QueueSize < 1 {
		return fmt.Errorf("COLLAB_WS_QUEUE_SIZE must be >= 1, got %d", c.Realtime.QueueSize)
	}
	if c.Realtime.EventRate <= 0 {
		return fmt.Errorf("COLLAB_WS_EVENT_RATE must be positive, got %g", c.Realtime.EventRate)
	}
	if c.Realtime.EventBurst < 1 {
		return fmt.Errorf("COLLAB_WS_EVENT_BURST must be >= 1, got %d", c.Realtime.EventBurst)
	}
	if c.Realtime.MaxFrameSize < 1024 {
		return fmt.Errorf("COLLAB_WS_MAX_FRAME_BYTES must be >= 1024, got %d", c.Realtime.MaxFrameSize)
	}
	if c.Realtime.PresenceTTL <= 0 {
		return fmt.Errorf("COLLAB_PRESENCE_TTL must be positive, got %s", c.Realtime.PresenceTTL)
	}
	if c.Realtime.ChatHistory < 0 {
		return fmt.Errorf("COLLAB_CHAT_HISTORY must be >= 0, got %d", c.Realtime.ChatHistory)
	}
	if c.Invite.TTL <= 0 {
		return fmt.Errorf("COLLAB_INVITE_TTL must be positive, got %s", c.Invite.TTL)
	}

	return nil
}

// DSN returns the PostgreSQL connection string.
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("parsing %s=%q as int: %w", key, v, err)
	}
	return n, nil
}

func getEnvFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing %s=%q as float: %w", key, v, err)
	}
	return f, nil
}

func getEnvBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("parsing %s=%q as bool: %w", key, v, err)
	}
	return b, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("parsing %s=%q as duration: %w", key, v, err)
	}
	return d, nil
}

func getEnvList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parts := strings.Split(v, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------------------------------------------------------------------------
// Helper function tests
// ---------------------------------------------------------------------------

func TestGetEnv(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		setVal   *string // nil = don't set; pointer to distinguish "" from unset
		fallback string
		want     string
	}{
		{name: "returns fallback when unset", key: "COLLAB_TEST_GETENV_UNSET", setVal: nil, fallback: "default", want: "default"},
		{name: "returns env value when set", key: "COLLAB_TEST_GETENV_SET", setVal: strPtr("custom"), fallback: "default", want: "custom"},
		{name: "returns fallback when empty string", key: "COLLAB_TEST_GETENV_EMPTY", setVal: strPtr(""), fallback: "default", want: "default"},
		{name: "preserves whitespace", key: "COLLAB_TEST_GETENV_WS", setVal: strPtr("  spaced  "), fallback: "x", want: "  spaced  "},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.setVal != nil {
				t.Setenv(tc.key, *tc.setVal)
			}

			got := getEnv(tc.key, tc.fallback)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestGetEnvInt(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		setVal   *string
		fallback int
		want     int
		wantErr  bool
	}{
		{name: "returns fallback when unset", key: "COLLAB_TEST_INT_UNSET", setVal: nil, fallback: 42, want: 42},
		{name: "parses valid int", key: "COLLAB_TEST_INT_VALID", setVal: strPtr("8080"), fallback: 0, want: 8080},
		{name: "parses negative int", key: "COLLAB_TEST_INT_NEG", setVal: strPtr("-1"), fallback: 0, want: -1},
		{name: "parses zero", key: "COLLAB_TEST_INT_ZERO", setVal: strPtr("0"), fallback: 99, want: 0},
		{name: "returns fallback for empty string", key: "COLLAB_TEST_INT_EMPTY", setVal: strPtr(""), fallback: 25, want: 25},
		{name: "errors on non-numeric", key: "COLLAB_TEST_INT_NAN", setVal: strPtr("abc"), fallback: 0, wantErr: true},
		{name: "errors on float", key: "COLLAB_TEST_INT_FLOAT", setVal: strPtr("3.14"), fallback: 0, wantErr: true},
		{name: "errors on hex", key: "COLLAB_TEST_INT_HEX", setVal: strPtr("0xFF"), fallback: 0, wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.setVal != nil {
				t.Setenv(tc.key, *tc.setVal)
			}

			got, err := getEnvInt(tc.key, tc.fallback)
			if tc.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.key)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestGetEnvBool(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		setVal   *string
		fallback bool
		want     bool
		wantErr  bool
	}{
		{name: "returns fallback when unset", key: "COLLAB_TEST_BOOL_UNSET", setVal: nil, fallback: false, want: false},
		{name: "fallback true when unset", key: "COLLAB_TEST_BOOL_UNSETTRUE", setVal: nil, fallback: true, want: true},
		{name: "parses true", key: "COLLAB_TEST_BOOL_TRUE", setVal: strPtr("true"), fallback: false, want: true},
		{name: "parses false", key: "COLLAB_TEST_BOOL_FALSE", setVal: strPtr("false"), fallback: true, want: false},
		{name: "parses 1", key: "COLLAB_TEST_BOOL_ONE", setVal: strPtr("1"), fallback: false, want: true},
		{name: "parses 0", key: "COLLAB_TEST_BOOL_ZERO", setVal: strPtr("0"), fallback: true, want: false},
		{name: "parses TRUE uppercase", key: "COLLAB_TEST_BOOL_UPPER", setVal: strPtr("TRUE"), fallback: false, want: true},
		{name: "parses t", key: "COLLAB_TEST_BOOL_T", setVal: strPtr("t"), fallback: false, want: true},
		{name: "errors on invalid", key: "COLLAB_TEST_BOOL_INV", setVal: strPtr("yes"), fallback: false, wantErr: true},
		{name: "errors on numeric non-bool", key: "COLLAB_TEST_BOOL_NUM", setVal: strPtr("2"), fallback: false, wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.setVal != nil {
				t.Setenv(tc.key, *tc.setVal)
			}

			got, err := getEnvBool(tc.key, tc.fallback)
			if tc.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.key)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestGetEnvDuration(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		setVal   *string
		fallback time.Duration
		want     time.Duration
		wantErr  bool
	}{
		{name: "returns fallback when unset", key: "COLLAB_TEST_DUR_UNSET", setVal: nil, fallback: 5 * time.Second, want: 5 * time.Second},
		{name: "parses seconds", key: "COLLAB_TEST_DUR_SEC", setVal: strPtr("30s"), fallback: 0, want: 30 * time.Second},
		{name: "parses minutes", key: "COLLAB_TEST_DUR_MIN", setVal: strPtr("15m"), fallback: 0, want: 15 * time.Minute},
		{name: "parses hours", key: "COLLAB_TEST_DUR_HR", setVal: strPtr("2h"), fallback: 0, want: 2 * time.Hour},
		{name: "parses composite", key: "COLLAB_TEST_DUR_COMP", setVal: strPtr("1h30m"), fallback: 0, want: 90 * time.Minute},
		{name: "parses nanosecond", key: "COLLAB_TEST_DUR_NS", setVal: strPtr("1ns"), fallback: 0, want: time.Nanosecond},
		{name: "parses zero", key: "COLLAB_TEST_DUR_ZERO", setVal: strPtr("0s"), fallback: 5 * time.Second, want: 0},
		{name: "errors on invalid", key: "COLLAB_TEST_DUR_INV", setVal: strPtr("notaduration"), fallback: 0, wantErr: true},
		{name: "errors on bare number", key: "COLLAB_TEST_DUR_BARE", setVal: strPtr("30"), fallback: 0, wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.setVal != nil {
				t.Setenv(tc.key, *tc.setVal)
			}

			got, err := getEnvDuration(tc.key, tc.fallback)
			if tc.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.key)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

// ---------------------------------------------------------------------------
// Load() error cases
// ---------------------------------------------------------------------------

func TestLoad_MissingJWTSecret(t *testing.T) {
	// All defaults apply; JWT secret is empty => must fail.
	cfg, err := Load()
	require.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "COLLAB_JWT_SECRET")
}

func TestLoad_InvalidEnvVars(t *testing.T) {
	tests := []struct {
		name   string
		envKey string
		envVal string
		errMsg string
	}{
		// DB_PORT parse errors
		{name: "DB_PORT not a number", envKey: "COLLAB_DB_PORT", envVal: "abc", errMsg: "COLLAB_DB_PORT"},
		{name: "DB_PORT float", envKey: "COLLAB_DB_PORT", envVal: "3.14", errMsg: "COLLAB_DB_PORT"},

		// DB_PORT validation errors (parses fine, fails bounds)
		{name: "DB_PORT zero", envKey: "COLLAB_DB_PORT", envVal: "0", errMsg: "COLLAB_DB_PORT"},
		{name: "DB_PORT negative", envKey: "COLLAB_DB_PORT", envVal: "-1", errMsg: "COLLAB_DB_PORT"},
		{name: "DB_PORT too high", envKey: "COLLAB_DB_PORT", envVal: "65536", errMsg: "COLLAB_DB_PORT"},

		// DB_MAX_CONNS
		{name: "DB_MAX_CONNS zero", envKey: "COLLAB_DB_MAX_CONNS", envVal: "0", errMsg: "COLLAB_DB_MAX_CONNS"},
		{name: "DB_MAX_CONNS negative", envKey: "COLLAB_DB_MAX_CONNS", envVal: "-5", errMsg: "COLLAB_DB_MAX_CONNS"},
		{name: "DB_MAX_CONNS not a number", envKey: "COLLAB_DB_MAX_CONNS", envVal: "many", errMsg: "COLLAB_DB_MAX_CONNS"},

		// JWT durations
		{name: "JWT_ACCESS_TTL invalid", envKey: "COLLAB_JWT_ACCESS_TTL", envVal: "badval", errMsg: "COLLAB_JWT_ACCESS_TTL"},
		{name: "JWT_REFRESH_TTL invalid", envKey: "COLLAB_JWT_REFRESH_TTL", envVal: "badval", errMsg: "COLLAB_JWT_REFRESH_TTL"},
		{name: "JWT_ACCESS_TTL zero", envKey: "COLLAB_JWT_ACCESS_TTL", envVal: "0s", errMsg: "COLLAB_JWT_ACCESS_TTL"},
		{name: "JWT_REFRESH_TTL zero", envKey: "COLLAB_JWT_REFRESH_TTL", envVal: "0s", errMsg: "COLLAB_JWT_REFRESH_TTL"},
		{name: "JWT_ACCESS_TTL negative", envKey: "COLLAB_JWT_ACCESS_TTL", envVal: "-5m", errMsg: "COLLAB_JWT_ACCESS_TTL"},
		{name: "JWT_REFRESH_TTL negative", envKey: "COLLAB_JWT_REFRESH_TTL", envVal: "-1h", errMsg: "COLLAB_JWT_REFRESH_TTL"},

		// Server timeouts
		{name: "SERVER_READ_TIMEOUT invalid", envKey: "COLLAB_SERVER_READ_TIMEOUT", envVal: "notduration", errMsg: "COLLAB_SERVER_READ_TIMEOUT"},
		{name: "SERVER_WRITE_TIMEOUT invalid", envKey: "COLLAB_SERVER_WRITE_TIMEOUT", envVal: "notduration", errMsg: "COLLAB_SERVER_WRITE_TIMEOUT"},
		{name: "SERVER_READ_TIMEOUT zero", envKey: "COLLAB_SERVER_READ_TIMEOUT", envVal: "0s", errMsg: "COLLAB_SERVER_READ_TIMEOUT"},
		{name: "SERVER_WRITE_TIMEOUT zero", envKey: "COLLAB_SERVER_WRITE_TIMEOUT", envVal: "0s", errMsg: "COLLAB_SERVER_WRITE_TIMEOUT"},

		// Redis DB
		{name: "REDIS_DB not a number", envKey: "COLLAB_REDIS_DB", envVal: "abc", errMsg: "COLLAB_REDIS_DB"},

		// Self-hosted
		{name: "REDIS_ENABLED not a bool", envKey: "COLLAB_REDIS_ENABLED", envVal: "yes", errMsg: "COLLAB_REDIS_ENABLED"},

		// Rate limits
		{name: "RATE_LIMIT_RPS not a number", envKey: "COLLAB_RATE_LIMIT_RPS", envVal: "fast", errMsg: "COLLAB_RATE_LIMIT_RPS"},
		{name: "RATE_LIMIT_RPS zero", envKey: "COLLAB_RATE_LIMIT_RPS", envVal: "0", errMsg: "COLLAB_RATE_LIMIT_RPS"},
		{name: "RATE_LIMIT_BURST zero", envKey: "COLLAB_RATE_LIMIT_BURST", envVal: "0", errMsg: "COLLAB_RATE_LIMIT_BURST"},

		// Realtime
		{name: "WS_QUEUE_SIZE zero", envKey: "COLLAB_WS_QUEUE_SIZE", envVal: "0", errMsg: "COLLAB_WS_QUEUE_SIZE"},
		{name: "WS_EVENT_RATE negative", envKey: "COLLAB_WS_EVENT_RATE", envVal: "-1", errMsg: "COLLAB_WS_EVENT_RATE"},
		{name: "WS_EVENT_BURST zero", envKey: "COLLAB_WS_EVENT_BURST", envVal: "0", errMsg: "COLLAB_WS_EVENT_BURST"},
		{name: "WS_MAX_FRAME_BYTES too small", envKey: "COLLAB_WS_MAX_FRAME_BYTES", envVal: "100", errMsg: "COLLAB_WS_MAX_FRAME_BYTES"},
		{name: "PRESENCE_TTL zero", envKey: "COLLAB_PRESENCE_TTL", envVal: "0s", errMsg: "COLLAB_PRESENCE_TTL"},
		{name: "CHAT_HISTORY negative", envKey: "COLLAB_CHAT_HISTORY", envVal: "-1", errMsg: "COLLAB_CHAT_HISTORY"},

		// Invites
		{name: "INVITE_TTL invalid", envKey: "COLLAB_INVITE_TTL", envVal: "soon", errMsg: "COLLAB_INVITE_TTL"},
		{name: "INVITE_TTL zero", envKey: "COLLAB_INVITE_TTL", envVal: "0s", errMsg: "COLLAB_INVITE_TTL"},

		// Dev mode
		{name: "DEV not a bool", envKey: "COLLAB_DEV", envVal: "yes", errMsg: "COLLAB_DEV"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			// Always set JWT secret so failures are from the var under test.
			t.Setenv("COLLAB_JWT_SECRET", "test-secret-for-error-cases-32ch!")
			t.Setenv(tc.envKey, tc.envVal)

			cfg, err := Load()
			require.Error(t, err, "expected error for %s=%q", tc.envKey, tc.envVal)
			assert.Nil(t, cfg)
			assert.Contains(t, err.Error(), tc.errMsg)
		})
	}
}

// ---------------------------------------------------------------------------
// Load() edge cases -- boundary values
// ---------------------------------------------------------------------------

func TestLoad_BoundaryValues(t *testing.T) {
	tests := []struct {
		name     string
		envs     map[string]string
		assertFn func(t *testing.T, cfg *Config)
	}{
		{
			name: "port min boundary 1",
			envs: map[string]string{
				"COLLAB_JWT_SECRET": "test-secret-that-is-at-least-32ch",
				"COLLAB_DB_PORT":    "1",
			},
			assertFn: func(t *testing.T, cfg *Config) {
				t.Helper()
				assert.Equal(t, 1, cfg.Database.Port)
			},
		},
		{
			name: "port max boundary 65535",
			envs: map[string]string{
				"COLLAB_JWT_SECRET": "test-secret-that-is-at-least-32ch",
				"COLLAB_DB_PORT":    "65535",
			},
			assertFn: func(t *testing.T, cfg *Config) {
				t.Helper()
				assert.Equal(t, 65535, cfg.Database.Port)
			},
		},
		{
			name: "MaxConns min boundary 1",
			envs: map[string]string{
				"COLLAB_JWT_SECRET":   "test-secret-that-is-at-least-32ch",
				"COLLAB_DB_MAX_CONNS": "1",
			},
			assertFn: func(t *testing.T, cfg *Config) {
				t.Helper()
				assert.Equal(t, 1, cfg.Database.MaxConns)
			},
		},
		{
			name: "duration 1ns is valid",
			envs: map[string]string{
				"COLLAB_JWT_SECRET":           "test-secret-that-is-at-least-32ch",
				"COLLAB_JWT_ACCESS_TTL":       "1ns",
				"COLLAB_JWT_REFRESH_TTL":      "1ns",
				"COLLAB_SERVER_READ_TIMEOUT":  "1ns",
				"COLLAB_SERVER_WRITE_TIMEOUT": "1ns",
			},
			assertFn: func(t *testing.T, cfg *Config) {
				t.Helper()
				assert.Equal(t, time.Nanosecond, cfg.JWT.AccessTTL)
				assert.Equal(t, time.Nanosecond, cfg.JWT.RefreshTTL)
				assert.Equal(t, time.Nanosecond, cfg.Server.ReadTimeout)
				assert.Equal(t, time.Nanosecond, cfg.Server.WriteTimeout)
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			for k, v := range tc.envs {
				t.Setenv(k, v)
			}

			cfg, err := Load()
			require.NoError(t, err)
			require.NotNil(t, cfg)
			tc.assertFn(t, cfg)
		})
	}
}

// ---------------------------------------------------------------------------
// Load() happy paths
// ---------------------------------------------------------------------------

func TestLoad_Defaults(t *testing.T) {
	// Only the required JWT secret is set; everything else uses defaults.
	t.Setenv("COLLAB_JWT_SECRET", "my-dev-secret-at-least-32-chars!!")

	cfg, err := Load()
	require.NoError(t, err)
	require.NotNil(t, cfg)

	// Database defaults.
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "collabboard", cfg.Database.User)
	assert.Empty(t, cfg.Database.Password)
	assert.Equal(t, "collabboard_dev", cfg.Database.DBName)
	assert.Equal(t, "disable", cfg.Database.SSLMode)
	assert.Equal(t, 25, cfg.Database.MaxConns)
	assert.True(t, cfg.Database.Migrate)

	// Redis defaults.
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Empty(t, cfg.Redis.Password)
	assert.Equal(t, 0, cfg.Redis.DB)

	// JWT defaults.
	assert.Equal(t, "my-dev-secret-at-least-32-chars!!", cfg.JWT.Secret)
	assert.Equal(t, 15*time.Minute, cfg.JWT.AccessTTL)
	assert.Equal(t, 7*24*time.Hour, cfg.JWT.RefreshTTL)

	// Server defaults.
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 10*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 30*time.Second, cfg.Server.WriteTimeout)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.Server.CORSOrigins)
	assert.InDelta(t, 20.0, cfg.Server.RateLimitRPS, 0)
	assert.Equal(t, 40, cfg.Server.RateLimitBurst)
	assert.Empty(t, cfg.Server.StaticDir)

	// Realtime defaults.
	assert.Equal(t, 256, cfg.Realtime.QueueSize)
	assert.InDelta(t, 30.0, cfg.Realtime.EventRate, 0)
	assert.Equal(t, 60, cfg.Realtime.EventBurst)
	assert.Equal(t, int64(1<<20), cfg.Realtime.MaxFrameSize)
	assert.Equal(t, 2*time.Hour, cfg.Realtime.PresenceTTL)
	assert.Equal(t, 100, cfg.Realtime.ChatHistory)

	// Invite defaults.
	assert.Equal(t, time.Hour, cfg.Invite.TTL)
	assert.Equal(t, "http://localhost:3000", cfg.Invite.PublicBaseURL)
	assert.Empty(t, cfg.Invite.WebhookURL)

	assert.False(t, cfg.DevMode)
}

func TestLoad_AllCustomValues(t *testing.T) {
	envs := map[string]string{
		// Database
		"COLLAB_DB_HOST":      "db.prod.internal",
		"COLLAB_DB_PORT":      "5433",
		"COLLAB_DB_USER":      "prod_user",
		"COLLAB_DB_PASSWORD":  "s3cret!",
		"COLLAB_DB_NAME":      "collab_prod",
		"COLLAB_DB_SSLMODE":   "require",
		"COLLAB_DB_MAX_CONNS": "50",
		"COLLAB_DB_MIGRATE":   "false",
		// Redis
		"COLLAB_REDIS_ENABLED":  "false",
		"COLLAB_REDIS_ADDR":     "redis.prod:6380",
		"COLLAB_REDIS_PASSWORD": "redis-pass",
		"COLLAB_REDIS_DB":       "3",
		// JWT
		"COLLAB_JWT_SECRET":      "prod-jwt-secret-256-bits-long!!!",
		"COLLAB_JWT_ACCESS_TTL":  "30m",
		"COLLAB_JWT_REFRESH_TTL": "72h",
		// Server
		"COLLAB_SERVER_ADDR":          ":9090",
		"COLLAB_SERVER_READ_TIMEOUT":  "5s",
		"COLLAB_SERVER_WRITE_TIMEOUT": "15s",
		"COLLAB_CORS_ORIGINS":         "https://a.example, https://b.example",
		"COLLAB_RATE_LIMIT_RPS":       "2.5",
		"COLLAB_RATE_LIMIT_BURST":     "5",
		"COLLAB_STATIC_DIR":           "/srv/client",
		// Realtime
		"COLLAB_WS_QUEUE_SIZE":      "64",
		"COLLAB_WS_EVENT_RATE":      "10",
		"COLLAB_WS_EVENT_BURST":     "20",
		"COLLAB_WS_MAX_FRAME_BYTES": "65536",
		"COLLAB_PRESENCE_TTL":       "30m",
		"COLLAB_CHAT_HISTORY":       "0",
		// Invites
		"COLLAB_INVITE_TTL":         "24h",
		"COLLAB_PUBLIC_BASE_URL":    "https://boards.example/",
		"COLLAB_INVITE_WEBHOOK_URL": "https://relay.example/invites",
		"COLLAB_DEV":                "true",
	}

	for k, v := range envs {
		t.Setenv(k, v)
	}

	cfg, err := Load()
	require.NoError(t, err)
	require.NotNil(t, cfg)

	// Database
	assert.Equal(t, "db.prod.internal", cfg.Database.Host)
	assert.Equal(t, 5433, cfg.Database.Port)
	assert.Equal(t, "prod_user", cfg.Database.User)
	assert.Equal(t, "s3cret!", cfg.Database.Password)
	assert.Equal(t, "collab_prod", cfg.Database.DBName)
	assert.Equal(t, "require", cfg.Database.SSLMode)
	assert.Equal(t, 50, cfg.Database.MaxConns)
	assert.False(t, cfg.Database.Migrate)

	// Redis
	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, "redis.prod:6380", cfg.Redis.Addr)
	assert.Equal(t, "redis-pass", cfg.Redis.Password)
	assert.Equal(t, 3, cfg.Redis.DB)

	// JWT
	assert.Equal(t, "prod-jwt-secret-256-bits-long!!!", cfg.JWT.Secret)
	assert.Equal(t, 30*time.Minute, cfg.JWT.AccessTTL)
	assert.Equal(t, 72*time.Hour, cfg.JWT.RefreshTTL)

	// Server
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 15*time.Second, cfg.Server.WriteTimeout)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.CORSOrigins)
	assert.InDelta(t, 2.5, cfg.Server.RateLimitRPS, 0)
	assert.Equal(t, 5, cfg.Server.RateLimitBurst)
	assert.Equal(t, "/srv/client", cfg.Server.StaticDir)

	// Realtime
	assert.Equal(t, 64, cfg.Realtime.QueueSize)
	assert.InDelta(t, 10.0, cfg.Realtime.EventRate, 0)
	assert.Equal(t, 20, cfg.Realtime.EventBurst)
	assert.Equal(t, int64(65536), cfg.Realtime.MaxFrameSize)
	assert.Equal(t, 30*time.Minute, cfg.Realtime.PresenceTTL)
	assert.Equal(t, 0, cfg.Realtime.ChatHistory)

	// Invites
	assert.Equal(t, 24*time.Hour, cfg.Invite.TTL)
	assert.Equal(t, "https://boards.example", cfg.Invite.PublicBaseURL, "trailing slash is trimmed")
	assert.Equal(t, "https://relay.example/invites", cfg.Invite.WebhookURL)
	assert.True(t, cfg.DevMode)
}

// ---------------------------------------------------------------------------
// DSN() output format
// ---------------------------------------------------------------------------

func TestDatabaseConfig_DSN(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cfg  DatabaseConfig
		want string
	}{
		{
			name: "default dev values",
			cfg: DatabaseConfig{
				Host: "localhost", Port: 5432, User: "collabboard",
				Password: "", DBName: "collabboard_dev", SSLMode: "disable",
			},
			want: "host=localhost port=5432 user=collabboard password= dbname=collabboard_dev sslmode=disable",
		},
		{
			name: "production values",
			cfg: DatabaseConfig{
				Host: "db.prod", Port: 5433, User: "admin",
				Password: "p@ss!", DBName: "collab_prod", SSLMode: "require",
			},
			want: "host=db.prod port=5433 user=admin password=p@ss! dbname=collab_prod sslmode=require",
		},
		{
			name: "special characters in password",
			cfg: DatabaseConfig{
				Host: "h", Port: 1, User: "u",
				Password: "p=a&b c", DBName: "d", SSLMode: "s",
			},
			want: "host=h port=1 user=u password=p=a&b c dbname=d sslmode=s",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, tc.cfg.DSN())
		})
	}
}

// ---------------------------------------------------------------------------
// DSN() integration with Load()
// ---------------------------------------------------------------------------

func TestLoad_DSN_Integration(t *testing.T) {
	t.Setenv("COLLAB_JWT_SECRET", "test-secret-that-is-at-least-32ch")
	t.Setenv("COLLAB_DB_HOST", "myhost")
	t.Setenv("COLLAB_DB_PORT", "5433")
	t.Setenv("COLLAB_DB_USER", "myuser")
	t.Setenv("COLLAB_DB_PASSWORD", "mypass")
	t.Setenv("COLLAB_DB_NAME", "mydb")
	t.Setenv("COLLAB_DB_SSLMODE", "verify-full")

	cfg, err := Load()
	require.NoError(t, err)

	want := "host=myhost port=5433 user=myuser password=mypass dbname=mydb sslmode=verify-full"
	assert.Equal(t, want, cfg.Database.DSN())
}

// ---------------------------------------------------------------------------
// validate() direct tests
// ---------------------------------------------------------------------------

func TestValidate(t *testing.T) {
	t.Parallel()

	// validBase returns a Config that passes validation.
	validBase := func() *Config {
		return &Config{
			Database: DatabaseConfig{Port: 5432, MaxConns: 25},
			JWT: JWTConfig{
				Secret:     "test-secret-that-is-at-least-32ch",
				AccessTTL:  15 * time.Minute,
				RefreshTTL: 7 * 24 * time.Hour,
			},
			Server: ServerConfig{
				ReadTimeout:    10 * time.Second,
				WriteTimeout:   30 * time.Second,
				RateLimitRPS:   20,
				RateLimitBurst: 40,
			},
			Realtime: RealtimeConfig{
				QueueSize:    256,
				EventRate:    30,
				EventBurst:   60,
				MaxFrameSize: 1 << 20,
				PresenceTTL:  time.Hour,
				ChatHistory:  100,
			},
			Invite: InviteConfig{TTL: time.Hour},
		}
	}

	t.Run("valid config passes", func(t *testing.T) {
		t.Parallel()
		assert.NoError(t, validBase().validate())
	})

	t.Run("empty JWT secret fails", func(t *testing.T) {
		t.Parallel()
		c := validBase()
		c.JWT.Secret = ""
		assert.ErrorContains(t, c.validate(), "COLLAB_JWT_SECRET")
	})

	t.Run("JWT secret too short fails", func(t *testing.T) {
		t.Parallel()
		c := validBase()
		c.JWT.Secret = "only-31-characters-long-secret!"
		assert.ErrorContains(t, c.validate(), "COLLAB_JWT_SECRET")
	})

	t.Run("JWT secret exactly 32 chars passes", func(t *testing.T) {
		t.Parallel()
		c := validBase()
		c.JWT.Secret = "exactly-32-characters-long-sec!!"
		assert.NoError(t, c.validate())
	})

	t.Run("port 0 fails", func(t *testing.T) {
		t.Parallel()
		c := validBase()
		c.Database.Port = 0
		assert.ErrorContains(t, c.validate(), "COLLAB_DB_PORT")
	})

	t.Run("port 65536 fails", func(t *testing.T) {
		t.Parallel()
		c := validBase()
		c.Database.Port = 65536
		assert.ErrorContains(t, c.validate(), "COLLAB_DB_PORT")
	})

	t.Run("port 1 passes", func(t *testing.T) {
		t.Parallel()
		c := validBase()
		c.Database.Port = 1
		assert.NoError(t, c.validate())
	})

	t.Run("port 65535 passes", func(t *testing.T) {
		t.Parallel()
		c := validBase()
		c.Database.Port = 65535
		assert.NoError(t, c.validate())
	})

	t.Run("MaxConns 0 fails", func(t *testing.T) {
		t.Parallel()
		c := validBase()
		c.Database.MaxConns = 0
		assert.ErrorContains(t, c.validate(), "COLLAB_DB_MAX_CONNS")
	})

	t.Run("MaxConns negative fails", func(t *testing.T) {
		t.Parallel()
		c := validBase()
		c.Database.MaxConns = -10
		assert.ErrorContains(t, c.validate(), "COLLAB_DB_MAX_CONNS")
	})

	t.Run("MaxConns 1 passes", func(t *testing.T) {
		t.Parallel()
		c := validBase()
		c.Database.MaxConns = 1
		assert.NoError(t, c.validate())
	})

	t.Run("AccessTTL 0 fails", func(t *testing.T) {
		t.Parallel()
		c := validBase()
		c.JWT.AccessTTL = 0
		assert.ErrorContains(t, c.validate(), "COLLAB_JWT_ACCESS_TTL")
	})

	t.Run("AccessTTL negative fails", func(t *testing.T) {
		t.Parallel()
		c := validBase()
		c.JWT.AccessTTL = -time.Minute
		assert.ErrorContains(t, c.validate(), "COLLAB_JWT_ACCESS_TTL")
	})

	t.Run("AccessTTL 1ns passes", func(t *testing.T) {
		t.Parallel()
		c := validBase()
		c.JWT.AccessTTL = time.Nanosecond
		assert.NoError(t, c.validate())
	})

	t.Run("RefreshTTL negative fails", func(t *testing.T) {
		t.Parallel()
		c := validBase()
		c.JWT.RefreshTTL = -time.Minute
		assert.ErrorContains(t, c.validate(), "COLLAB_JWT_REFRESH_TTL")
	})

	t.Run("ReadTimeout 0 fails", func(t *testing.T) {
		t.Parallel()
		c := validBase()
		c.Server.ReadTimeout = 0
		assert.ErrorContains(t, c.validate(), "COLLAB_SERVER_READ_TIMEOUT")
	})

	t.Run("ReadTimeout negative fails", func(t *testing.T) {
		t.Parallel()
		c := validBase()
		c.Server.ReadTimeout = -time.Second
		assert.ErrorContains(t, c.validate(), "COLLAB_SERVER_READ_TIMEOUT")
	})

	t.Run("WriteTimeout 0 fails", func(t *testing.T) {
		t.Parallel()
		c := validBase()
		c.Server.WriteTimeout = 0
		assert.ErrorContains(t, c.validate(), "COLLAB_SERVER_WRITE_TIMEOUT")
	})

	t.Run("WriteTimeout negative fails", func(t *testing.T) {
		t.Parallel()
		c := validBase()
		c.Server.WriteTimeout = -time.Second
		assert.ErrorContains(t, c.validate(), "COLLAB_SERVER_WRITE_TIMEOUT")
	})

	t.Run("QueueSize 1 passes", func(t *testing.T) {
		t.Parallel()
		c := validBase()
		c.Realtime.QueueSize = 1
		assert.NoError(t, c.validate())
	})

	t.Run("ChatHistory 0 passes", func(t *testing.T) {
		t.Parallel()
		c := validBase()
		c.Realtime.ChatHistory = 0
		assert.NoError(t, c.validate())
	})

	t.Run("MaxFrameSize below 1KiB fails", func(t *testing.T) {
		t.Parallel()
		c := validBase()
		c.Realtime.MaxFrameSize = 1023
		assert.ErrorContains(t, c.validate(), "COLLAB_WS_MAX_FRAME_BYTES")
	})

	t.Run("InviteTTL 0 fails", func(t *testing.T) {
		t.Parallel()
		c := validBase()
		c.Invite.TTL = 0
		assert.ErrorContains(t, c.validate(), "COLLAB_INVITE_TTL")
	})
}

func TestGetEnvFloat(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		setVal   *string
		fallback float64
		want     float64
		wantErr  bool
	}{
		{name: "returns fallback when unset", key: "COLLAB_TEST_FLOAT_UNSET", setVal: nil, fallback: 1.5, want: 1.5},
		{name: "parses integer", key: "COLLAB_TEST_FLOAT_INT", setVal: strPtr("20"), fallback: 0, want: 20},
		{name: "parses fraction", key: "COLLAB_TEST_FLOAT_FRAC", setVal: strPtr("0.25"), fallback: 0, want: 0.25},
		{name: "errors on text", key: "COLLAB_TEST_FLOAT_TXT", setVal: strPtr("lots"), fallback: 0, wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.setVal != nil {
				t.Setenv(tc.key, *tc.setVal)
			}

			got, err := getEnvFloat(tc.key, tc.fallback)
			if tc.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.key)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tc.want, got, 1e-9)
		})
	}
}

// ---------------------------------------------------------------------------
// Test helper
// ---------------------------------------------------------------------------

func strPtr(s string) *string {
	return &s
}

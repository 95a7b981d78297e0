package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// 認可モード・ストア種別・一覧モードの許容値
const (
	AuthModeToken = "token"
	AuthModePath  = "path"

	StoreDriverFile     = "file"
	StoreDriverPostgres = "postgres"

	DirectoryModePreview = "preview"
	DirectoryModeIndex   = "index"
)

// DefaultTokenSecret はTOKEN_SECRET未設定時の署名鍵。
// この値は /api/client-config でクライアントにも配布される（演習上の漏えい箇所）。
const DefaultTokenSecret = "idorlab-training-secret"

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Server
	ServerPort string
	BaseURL    string
	StaticDir  string

	// Auth
	AuthMode         string
	TokenSecret      string
	TokenTTL         time.Duration
	DemoUserID       int64
	PrivilegedUserID int64

	// Directory
	DirectoryMode    string
	BioPreviewLength int

	// Store
	StoreDriver       string
	UsersFile         string
	DatabaseURL       string
	DBConnectAttempts int

	// Debug
	DebugDumpEnabled bool
	DebugDumpPath    string

	// Rate Limit（req/min/IP）
	RateLimitGeneral int

	// CORS
	CORSAllowedOrigin string

	// Logging
	LogLevel slog.Level
}

// Load は環境変数からConfigを読み込む。
// 値の組み合わせが不正な場合はエラーを返す。
func Load() (*Config, error) {
	cfg := &Config{}

	cfg.ServerPort = getEnvString("SERVER_PORT", "8080")
	cfg.BaseURL = getEnvString("BASE_URL", "http://localhost:"+cfg.ServerPort)
	cfg.StaticDir = getEnvString("STATIC_DIR", "")

	cfg.AuthMode = strings.ToLower(getEnvString("AUTH_MODE", AuthModeToken))
	cfg.TokenSecret = getEnvString("TOKEN_SECRET", DefaultTokenSecret)
	cfg.TokenTTL = getEnvDuration("TOKEN_TTL", time.Hour)
	cfg.DemoUserID = getEnvInt64("DEMO_USER_ID", 2)
	cfg.PrivilegedUserID = getEnvInt64("PRIVILEGED_USER_ID", 1)

	defaultDirMode := DirectoryModePreview
	if cfg.AuthMode == AuthModePath {
		defaultDirMode = DirectoryModeIndex
	}
	cfg.DirectoryMode = strings.ToLower(getEnvString("DIRECTORY_MODE", defaultDirMode))
	cfg.BioPreviewLength = getEnvInt("BIO_PREVIEW_LENGTH", 40)

	cfg.StoreDriver = strings.ToLower(getEnvString("STORE_DRIVER", StoreDriverFile))
	cfg.UsersFile = getEnvString("USERS_FILE", "")
	cfg.DatabaseURL = getEnvString("DATABASE_URL", "")
	cfg.DBConnectAttempts = getEnvInt("DB_CONNECT_ATTEMPTS", 5)

	cfg.DebugDumpEnabled = getEnvBool("DEBUG_DUMP_ENABLED", false)
	cfg.DebugDumpPath = getEnvString("DEBUG_DUMP_PATH", "/_ops/dump")

	cfg.RateLimitGeneral = getEnvInt("RATE_LIMIT_GENERAL", 120)
	cfg.CORSAllowedOrigin = getEnvString("CORS_ALLOWED_ORIGIN", "http://localhost:3000")
	cfg.LogLevel = getEnvLogLevel("LOG_LEVEL", slog.LevelInfo)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validate は値の組み合わせを検証する。
func (c *Config) validate() error {
	var problems []string

	switch c.AuthMode {
	case AuthModeToken, AuthModePath:
	default:
		problems = append(problems, fmt.Sprintf("AUTH_MODE must be %q or %q, got %q", AuthModeToken, AuthModePath, c.AuthMode))
	}

	switch c.DirectoryMode {
	case DirectoryModePreview, DirectoryModeIndex:
	default:
		problems = append(problems, fmt.Sprintf("DIRECTORY_MODE must be %q or %q, got %q", DirectoryModePreview, DirectoryModeIndex, c.DirectoryMode))
	}

	switch c.StoreDriver {
	case StoreDriverFile:
	case StoreDriverPostgres:
		if c.DatabaseURL == "" {
			problems = append(problems, "DATABASE_URL is required when STORE_DRIVER=postgres")
		}
	default:
		problems = append(problems, fmt.Sprintf("STORE_DRIVER must be %q or %q, got %q", StoreDriverFile, StoreDriverPostgres, c.StoreDriver))
	}

	if c.DemoUserID <= 0 {
		problems = append(problems, "DEMO_USER_ID must be positive")
	}
	if c.PrivilegedUserID <= 0 {
		problems = append(problems, "PRIVILEGED_USER_ID must be positive")
	}
	if c.DBConnectAttempts < 1 {
		problems = append(problems, "DB_CONNECT_ATTEMPTS must be at least 1")
	}
	if c.TokenSecret == "" {
		problems = append(problems, "TOKEN_SECRET must not be empty")
	}
	if c.RateLimitGeneral <= 0 {
		problems = append(problems, "RATE_LIMIT_GENERAL must be positive")
	}
	if !strings.HasPrefix(c.DebugDumpPath, "/") {
		problems = append(problems, "DEBUG_DUMP_PATH must start with /")
	} else if reservedRoute(c.DebugDumpPath) {
		problems = append(problems, fmt.Sprintf("DEBUG_DUMP_PATH must not overlap public routes (/, /api, /health, /metrics), got %q", c.DebugDumpPath))
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %v", problems)
	}
	return nil
}

// reservedPrefixes はダンプエンドポイントと共有できない公開ルート。
var reservedPrefixes = []string{"/api", "/health", "/metrics"}

// reservedRoute はpathがルートまたは公開ルート配下かどうかを返す。
func reservedRoute(path string) bool {
	p := "/" + strings.Trim(strings.ToLower(path), "/")
	if p == "/" {
		return true
	}
	for _, prefix := range reservedPrefixes {
		if p == prefix || strings.HasPrefix(p, prefix+"/") {
			return true
		}
	}
	return false
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvInt64(key string, defaultVal int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}

func getEnvBool(key string, defaultVal bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return defaultVal
	}
	return b
}

// getEnvLogLevel は "debug", "info", "warn", "error" をslog.Levelに変換する。
func getEnvLogLevel(key string, defaultVal slog.Level) slog.Level {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(v)); err != nil {
		return defaultVal
	}
	return level
}

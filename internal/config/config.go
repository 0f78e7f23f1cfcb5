package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// DefaultJWTSecret signs tokens when JWT_SECRET is unset. Fine for development only.
const DefaultJWTSecret = "your-secret-key-change-in-production"

var ErrDefaultSecret = errors.New("JWT_SECRET must be set in production")

type Config struct {
	AppEnv string
	Port   string

	DatabaseURL string
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string
	DBSSLMode   string

	JWTSecret           string
	AccessTokenTTLMin   int
	RefreshTokenTTLDays int

	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string
	FrontendURL        string

	StaticDir string

	StorageDriver    string // local, drive
	StorageDir       string
	StorageBucket    string
	PublicBaseURL    string
	DriveCredentials string
	DriveFolderID    string
	MaxUploadKB      int

	ChromePath string

	ResendAPIKey     string
	EmailFromAddress string

	DevAdminLogin bool
}

// Load reads the configuration from the environment
func Load() Config {
	return Config{
		AppEnv: get("APP_ENV", "development"),
		Port:   strings.TrimPrefix(get("PORT", "10000"), ":"),

		DatabaseURL: get("DATABASE_URL", ""),
		DBHost:      get("DB_HOST", "localhost"),
		DBPort:      get("DB_PORT", "5432"),
		DBUser:      get("DB_USER", "postgres"),
		DBPassword:  get("DB_PASSWORD", ""),
		DBName:      get("DB_NAME", "atelie"),
		DBSSLMode:   get("DB_SSLMODE", "disable"),

		JWTSecret:           get("JWT_SECRET", DefaultJWTSecret),
		AccessTokenTTLMin:   getInt("ACCESS_TOKEN_TTL_MIN", 15),
		RefreshTokenTTLDays: getInt("REFRESH_TOKEN_TTL_DAYS", 7),

		GoogleClientID:     get("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: get("GOOGLE_CLIENT_SECRET", ""),
		GoogleRedirectURL:  get("GOOGLE_REDIRECT_URL", ""),
		FrontendURL:        get("FRONTEND_URL", "http://localhost:10000"),

		StaticDir: get("STATIC_DIR", "dist"),

		StorageDriver:    get("STORAGE_DRIVER", "local"),
		StorageDir:       get("STORAGE_DIR", "uploads"),
		StorageBucket:    get("STORAGE_BUCKET", "laceira-imagens"),
		PublicBaseURL:    strings.TrimSuffix(get("PUBLIC_BASE_URL", ""), "/"),
		DriveCredentials: get("GOOGLE_APPLICATION_CREDENTIALS", ""),
		DriveFolderID:    get("DRIVE_FOLDER_ID", ""),
		MaxUploadKB:      getInt("MAX_UPLOAD_KB", 2048),

		ChromePath: get("CHROME_PATH", ""),

		ResendAPIKey:     get("RESEND_API_KEY", ""),
		EmailFromAddress: get("EMAIL_FROM_ADDRESS", ""),

		DevAdminLogin: getBool("DEV_ADMIN_LOGIN", false),
	}
}

func (c Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// Check refuses settings the server must not start with
func (c Config) Check() error {
	if c.IsProduction() && c.JWTSecret == DefaultJWTSecret {
		return ErrDefaultSecret
	}
	return nil
}

// DevAdminEnabled reports whether the default admin shortcut may be exposed.
// It is never enabled in production, whatever DEV_ADMIN_LOGIN says.
func (c Config) DevAdminEnabled() bool {
	return c.DevAdminLogin && !c.IsProduction()
}

// DSN returns DATABASE_URL or a DSN built from the DB_* variables
func (c Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode)
}

func (c Config) Addr() string {
	return "0.0.0.0:" + c.Port
}

func (c Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadKB) * 1024
}

func get(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getInt(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getBool(k string, def bool) bool {
	if v := os.Getenv(k); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

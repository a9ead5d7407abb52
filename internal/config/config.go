package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// TestJWTSecret is only accepted by tests. Validate rejects it.
const TestJWTSecret = "test_secret_key_minimum_32_characters_long_for_testing_only"

type Config struct {
	ServerAddr  string
	Environment string
	LogLevel    string
	CORSOrigins string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	MigrationsDir string

	JWTSecret       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	AccessIssuer    string
	RefreshIssuer   string
	BcryptCost      int

	AzurePredictionKey string
	AzureEndpoint      string
	AzureProjectID     string
	AzurePublishedName string
	UpstreamTimeout    time.Duration

	NewsAPIKey     string
	NewsAPIBaseURL string
	NewsCacheTTL   time.Duration

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	UploadDir     string
	MaxUploadSize int64
	UseS3         bool
	S3Bucket      string
	S3Region      string
	CloudFrontURL string

	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string

	AdminName     string
	AdminEmail    string
	AdminPassword string

	// 0 disables the limiter.
	AuthRateLimit  int
	LoginRateLimit int
}

func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		ServerAddr:  getEnv("SERVER_ADDR", ":5000"),
		Environment: getEnv("APP_ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		CORSOrigins: getEnv("CORS_ORIGINS", "*"),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "sahabat_tani"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		MigrationsDir: getEnv("MIGRATIONS_DIR", "./migrations"),

		JWTSecret:       os.Getenv("JWT_SECRET"),
		AccessTokenTTL:  getDuration("JWT_EXPIRES_IN", 7*24*time.Hour),
		RefreshTokenTTL: getDuration("JWT_REFRESH_EXPIRES_IN", 30*24*time.Hour),
		AccessIssuer:    getEnv("JWT_ISSUER", "plant-disease-detection-api"),
		RefreshIssuer:   getEnv("JWT_REFRESH_ISSUER", "sahabat-tani-api"),
		BcryptCost:      getInt("BCRYPT_COST", 12),

		AzurePredictionKey: os.Getenv("AZURE_PREDICTION_KEY"),
		AzureEndpoint:      strings.TrimRight(os.Getenv("AZURE_ENDPOINT"), "/"),
		AzureProjectID:     os.Getenv("AZURE_PROJECT_ID"),
		AzurePublishedName: os.Getenv("AZURE_PUBLISHED_NAME"),
		UpstreamTimeout:    getDuration("UPSTREAM_TIMEOUT", 30*time.Second),

		NewsAPIKey:     os.Getenv("NEWS_API_KEY"),
		NewsAPIBaseURL: strings.TrimRight(getEnv("NEWS_API_BASE_URL", "https://newsapi.org/v2"), "/"),
		NewsCacheTTL:   getDuration("NEWS_CACHE_TTL", 10*time.Minute),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getInt("REDIS_DB", 0),

		UploadDir:     getEnv("UPLOAD_DIR", "./uploads"),
		MaxUploadSize: int64(getInt("MAX_UPLOAD_SIZE", 4*1024*1024)),
		UseS3:         getEnv("USE_S3", "false") == "true",
		S3Bucket:      os.Getenv("S3_BUCKET"),
		S3Region:      os.Getenv("S3_REGION"),
		CloudFrontURL: strings.TrimRight(os.Getenv("CLOUDFRONT_URL"), "/"),

		GoogleClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		GoogleRedirectURL:  getEnv("GOOGLE_REDIRECT_URL", "http://localhost:5000/api/auth/google/callback"),

		AdminName:     getEnv("ADMIN_NAME", "Administrator"),
		AdminEmail:    os.Getenv("ADMIN_EMAIL"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),

		AuthRateLimit:  getInt("AUTH_RATE_LIMIT", 5),
		LoginRateLimit: getInt("LOGIN_RATE_LIMIT", 3),
	}
}

// Validate checks the settings the server cannot start without.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET environment variable is required")
	}
	if len(c.JWTSecret) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 characters long (current: %d)", len(c.JWTSecret))
	}
	if c.JWTSecret == TestJWTSecret {
		return fmt.Errorf("cannot use default test secret in production")
	}

	required := map[string]string{
		"DB_HOST":     c.DBHost,
		"DB_NAME":     c.DBName,
		"DB_USER":     c.DBUser,
		"DB_PASSWORD": c.DBPassword,
	}
	for key, value := range required {
		if value == "" {
			return fmt.Errorf("required environment variable %s is not set", key)
		}
	}

	if c.AccessTokenTTL <= 0 || c.RefreshTokenTTL <= 0 {
		return fmt.Errorf("token lifetimes must be positive")
	}
	if c.BcryptCost < 4 || c.BcryptCost > 31 {
		return fmt.Errorf("BCRYPT_COST must be between 4 and 31 (current: %d)", c.BcryptCost)
	}
	return nil
}

func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort, c.DBSSLMode,
	)
}

func (c *Config) ClassifierConfigured() bool {
	return c.AzureEndpoint != "" && c.AzurePredictionKey != "" &&
		c.AzureProjectID != "" && c.AzurePublishedName != ""
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

// ParseDuration accepts Go durations plus a day suffix ("7d").
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if strings.HasSuffix(s, "d") {
		days, err := strconv.Atoi(strings.TrimSuffix(s, "d"))
		if err != nil {
			return 0, fmt.Errorf("invalid duration %q", s)
		}
		return time.Duration(days) * 24 * time.Hour, nil
	}
	return time.ParseDuration(s)
}

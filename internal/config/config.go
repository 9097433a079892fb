package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds every environment-driven setting the server needs. It is
// built once in main and passed down explicitly, no package globals.
type Config struct {
	Env  string
	Port string

	MongoURI string
	MongoDB  string

	JWTSecret       string
	JWTExpire       time.Duration
	CookieExpire    time.Duration
	MaxFileUpload   int64
	MinioEndpoint   string
	MinioAccessKey  string
	MinioSecretKey  string
	MinioBucket     string
	MinioUseSSL     bool
	GeocoderKey     string
	GeocoderBaseURL string

	SMTPHost     string
	SMTPPort     int
	SMTPEmail    string
	SMTPPassword string
	FromEmail    string
	FromName     string
}

// Load reads configuration from the environment, applying the same
// defaults the compose setup uses.
func Load() Config {
	cfg := Config{
		Env:             getEnv("NODE_ENV", "development"),
		Port:            getEnv("PORT", "5000"),
		MongoURI:        getEnv("MONGO_URI", "mongodb://localhost:27017/devcamper"),
		MongoDB:         getEnv("MONGO_DB", "devcamper"),
		JWTSecret:       getEnv("JWT_SECRET", ""),
		JWTExpire:       getDuration("JWT_EXPIRE", 30*24*time.Hour),
		CookieExpire:    getDuration("JWT_COOKIE_EXPIRE", 30*24*time.Hour),
		MaxFileUpload:   getInt64("MAX_FILE_UPLOAD", 1000000),
		MinioEndpoint:   getEnv("MINIO_ENDPOINT", "localhost:9000"),
		MinioAccessKey:  getEnv("MINIO_ACCESS_KEY", "minioadmin"),
		MinioSecretKey:  getEnv("MINIO_SECRET_KEY", "minioadmin"),
		MinioBucket:     getEnv("MINIO_BUCKET", "bootcamp-photos"),
		MinioUseSSL:     getBool("MINIO_USE_SSL", false),
		GeocoderKey:     getEnv("GEOCODER_API_KEY", ""),
		GeocoderBaseURL: getEnv("GEOCODER_URL", "https://www.mapquestapi.com/geocoding/v1/address"),
		SMTPHost:        getEnv("SMTP_HOST", "localhost"),
		SMTPPort:        int(getInt64("SMTP_PORT", 587)),
		SMTPEmail:       getEnv("SMTP_EMAIL", ""),
		SMTPPassword:    getEnv("SMTP_PASSWORD", ""),
		FromEmail:       getEnv("FROM_EMAIL", "noreply@devcamper.io"),
		FromName:        getEnv("FROM_NAME", "DevCamper"),
	}
	return cfg
}

// IsProduction reports whether stack traces and raw error messages
// should be hidden from responses.
func (c Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt64(key string, fallback int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fallback
	}
	return n
}

func getBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

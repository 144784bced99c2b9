package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	HTTPTimeout time.Duration
	LogLevel    slog.Level

	StoreDriver   string
	DatabaseURL   string
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	ShopifyAPIVersion string

	FacebookAppToken   string
	FacebookAPIVersion string
	FacebookBaseURL    string

	GoogleAds GoogleAds

	VendorMaxRetries    int
	VendorRetryBase     time.Duration
	VendorRatePerSecond float64
}

type GoogleAds struct {
	DeveloperToken    string
	ClientID          string
	ClientSecret      string
	RefreshToken      string
	ManagerCustomerID string
	APIVersion        string
	BaseURL           string
	TokenURL          string
}

// FromEnv reads the process environment. A .env file in the working
// directory is loaded first when present; real variables win over it.
func FromEnv() Config {
	_ = godotenv.Load()

	to := 15 * time.Second
	if v := os.Getenv("HTTP_TIMEOUT_SECONDS"); v != "" {
		if d, err := time.ParseDuration(v + "s"); err == nil {
			to = d
		}
	}
	lvl := slog.LevelInfo
	if strings.EqualFold(os.Getenv("LOG_LEVEL"), "debug") {
		lvl = slog.LevelDebug
	}
	return Config{
		Port:        envOr("PORT", "8080"),
		HTTPTimeout: to,
		LogLevel:    lvl,

		StoreDriver:   strings.ToLower(envOr("STORE_DRIVER", "memory")),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		RedisAddr:     envOr("REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       envInt("REDIS_DB", 0),

		ShopifyAPIVersion: os.Getenv("SHOPIFY_API_VERSION"),

		FacebookAppToken:   os.Getenv("FACEBOOK_APP_TOKEN"),
		FacebookAPIVersion: os.Getenv("FACEBOOK_API_VERSION"),
		FacebookBaseURL:    os.Getenv("FACEBOOK_BASE_URL"),

		GoogleAds: GoogleAds{
			DeveloperToken:    os.Getenv("GOOGLE_ADS_DEVELOPER_TOKEN"),
			ClientID:          os.Getenv("GOOGLE_ADS_CLIENT_ID"),
			ClientSecret:      os.Getenv("GOOGLE_ADS_CLIENT_SECRET"),
			RefreshToken:      os.Getenv("GOOGLE_ADS_REFRESH_TOKEN"),
			ManagerCustomerID: os.Getenv("GOOGLE_ADS_MANAGER_CUSTOMER_ID"),
			APIVersion:        os.Getenv("GOOGLE_ADS_API_VERSION"),
			BaseURL:           os.Getenv("GOOGLE_ADS_BASE_URL"),
			TokenURL:          os.Getenv("GOOGLE_OAUTH_TOKEN_URL"),
		},

		VendorMaxRetries:    envInt("VENDOR_MAX_RETRIES", 2),
		VendorRetryBase:     time.Duration(envInt("VENDOR_RETRY_BASE_MS", 200)) * time.Millisecond,
		VendorRatePerSecond: envFloat("VENDOR_RATE_PER_SECOND", 5),
	}
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func envInt(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envFloat(k string, def float64) float64 {
	if v := os.Getenv(k); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents application configuration loaded from environment variables.
// It is built once at startup and passed by pointer; nothing mutates it later.
type Config struct {
	AppEnv   string
	Port     string
	LogLevel string

	OpenAIAPIKey     string
	OpenAIBaseURL    string
	OpenAIImageModel string
	GeminiAPIKey     string
	GeminiBaseURL    string
	GeminiImageModel string

	TemplateDir string
	FontDir     string
	DatabaseURL string

	CORSAllowedOrigins []string

	VendorTimeout    time.Duration
	AssetTimeout     time.Duration
	MaxUploadBytes   int64
	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
// Vendor credentials are optional: an adapter without them answers requests
// with a not-configured error instead of failing startup.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:   getEnv("APP_ENV", "development"),
		Port:     getEnv("PORT", "8000"),
		LogLevel: strings.ToLower(os.Getenv("LOG_LEVEL")),

		OpenAIAPIKey:     strings.TrimSpace(os.Getenv("OPENAI_API_KEY")),
		OpenAIBaseURL:    getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		OpenAIImageModel: strings.TrimSpace(os.Getenv("OPENAI_IMAGE_MODEL")),
		GeminiAPIKey:     strings.TrimSpace(os.Getenv("GEMINI_API_KEY")),
		GeminiBaseURL:    strings.TrimSpace(os.Getenv("GEMINI_BASE_URL")),
		GeminiImageModel: strings.TrimSpace(os.Getenv("GEMINI_IMAGE_MODEL")),

		TemplateDir: getEnv("TEMPLATE_DIR", "templates"),
		FontDir:     getEnv("FONT_DIR", "fonts"),
		DatabaseURL: strings.TrimSpace(os.Getenv("DATABASE_URL")),

		CORSAllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "*")),

		VendorTimeout:    time.Second * time.Duration(getEnvInt("VENDOR_TIMEOUT_SECONDS", 90)),
		AssetTimeout:     time.Second * time.Duration(getEnvInt("ASSET_TIMEOUT_SECONDS", 20)),
		MaxUploadBytes:   int64(getEnvInt("MAX_UPLOAD_MB", 20)) << 20,
		HTTPReadTimeout:  time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 30)),
		HTTPWriteTimeout: time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 120)),
		HTTPIdleTimeout:  time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
	}

	if cfg.VendorTimeout <= 0 || cfg.AssetTimeout <= 0 {
		return nil, fmt.Errorf("VENDOR_TIMEOUT_SECONDS and ASSET_TIMEOUT_SECONDS must be positive")
	}
	if cfg.MaxUploadBytes <= 0 {
		return nil, fmt.Errorf("MAX_UPLOAD_MB must be positive")
	}
	if cfg.HTTPWriteTimeout > 0 && cfg.HTTPWriteTimeout <= cfg.VendorTimeout {
		return nil, fmt.Errorf("HTTP_WRITE_TIMEOUT_SECONDS (%s) must exceed VENDOR_TIMEOUT_SECONDS (%s)", cfg.HTTPWriteTimeout, cfg.VendorTimeout)
	}

	return cfg, nil
}

// CatalogEnabled reports whether the metadata catalog routes should be mounted.
func (c *Config) CatalogEnabled() bool {
	return c.DatabaseURL != ""
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return i
		}
	}
	return fallback
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

package infra

import (
	"testing"
	"time"
)

func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"APP_ENV", "PORT", "LOG_LEVEL", "OPENAI_API_KEY", "OPENAI_BASE_URL", "OPENAI_IMAGE_MODEL",
		"GEMINI_API_KEY", "GEMINI_BASE_URL", "GEMINI_IMAGE_MODEL", "TEMPLATE_DIR", "FONT_DIR",
		"DATABASE_URL", "CORS_ALLOWED_ORIGINS", "VENDOR_TIMEOUT_SECONDS", "ASSET_TIMEOUT_SECONDS",
		"MAX_UPLOAD_MB", "HTTP_READ_TIMEOUT_SECONDS", "HTTP_WRITE_TIMEOUT_SECONDS", "HTTP_IDLE_TIMEOUT_SECONDS",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	clearConfigEnv(t)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.OpenAIBaseURL != "https://api.openai.com/v1" {
		t.Fatalf("OpenAIBaseURL = %q", cfg.OpenAIBaseURL)
	}
	if cfg.TemplateDir != "templates" || cfg.FontDir != "fonts" {
		t.Fatalf("TemplateDir = %q, FontDir = %q", cfg.TemplateDir, cfg.FontDir)
	}
	if cfg.VendorTimeout != 90*time.Second || cfg.AssetTimeout != 20*time.Second {
		t.Fatalf("timeouts = %s / %s", cfg.VendorTimeout, cfg.AssetTimeout)
	}
	if cfg.MaxUploadBytes != 20<<20 {
		t.Fatalf("MaxUploadBytes = %d", cfg.MaxUploadBytes)
	}
	if cfg.CatalogEnabled() {
		t.Fatalf("catalog should be disabled without DATABASE_URL")
	}
	if len(cfg.CORSAllowedOrigins) != 1 || cfg.CORSAllowedOrigins[0] != "*" {
		t.Fatalf("CORSAllowedOrigins = %#v", cfg.CORSAllowedOrigins)
	}
}

func TestLoadConfigDoesNotRequireVendorKeys(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("OPENAI_IMAGE_MODEL", "gpt-image-1")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.OpenAIAPIKey != "" || cfg.OpenAIImageModel != "gpt-image-1" {
		t.Fatalf("unexpected vendor settings %+v", cfg)
	}
}

func TestLoadConfigParsesOrigins(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.example.com, ,https://b.example.com ")
	t.Setenv("DATABASE_URL", "postgres://example")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	expected := []string{"https://a.example.com", "https://b.example.com"}
	if len(cfg.CORSAllowedOrigins) != len(expected) {
		t.Fatalf("CORSAllowedOrigins = %#v", cfg.CORSAllowedOrigins)
	}
	for i, origin := range expected {
		if cfg.CORSAllowedOrigins[i] != origin {
			t.Fatalf("CORSAllowedOrigins[%d] = %q, want %q", i, cfg.CORSAllowedOrigins[i], origin)
		}
	}
	if !cfg.CatalogEnabled() {
		t.Fatalf("catalog should be enabled with DATABASE_URL")
	}
}

func TestLoadConfigRejectsWriteTimeoutShorterThanVendorCall(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("HTTP_WRITE_TIMEOUT_SECONDS", "30")

	if _, err := LoadConfig(); err == nil {
		t.Fatalf("expected error when write timeout does not cover vendor timeout")
	}
}

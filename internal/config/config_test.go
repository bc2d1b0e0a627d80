package config

import (
	"testing"
	"time"
)

func TestLoad_AppEnvValidation(t *testing.T) {
	t.Setenv("APP_ENV", "invalid")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid APP_ENV")
	}
}

func TestLoad_StorageDriverValidation(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("APP_STORAGE_DRIVER", "cassandra")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid APP_STORAGE_DRIVER")
	}
}

func TestLoad_UptraceRequiresDSNWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when UPTRACE_ENABLED=true without UPTRACE_DSN")
	}
}

func TestLoad_WebhookRequiresURLWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("ACTIVITY_WEBHOOK_ENABLED", "true")
	t.Setenv("ACTIVITY_WEBHOOK_URL", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when ACTIVITY_WEBHOOK_ENABLED=true without ACTIVITY_WEBHOOK_URL")
	}
}

func TestLoad_LogoStoreRequiresBucketWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("LOGO_S3_ENABLED", "true")
	t.Setenv("LOGO_S3_BUCKET", "")
	t.Setenv("LOGO_S3_REGION", "ap-south-1")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when LOGO_S3_ENABLED=true without LOGO_S3_BUCKET")
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Fatalf("unexpected HTTPAddr: %q", cfg.HTTPAddr)
	}
	if cfg.StorageDriver != StoragePostgres {
		t.Fatalf("unexpected StorageDriver: %q", cfg.StorageDriver)
	}
	if cfg.CacheTTL != 5*time.Second {
		t.Fatalf("unexpected CacheTTL: %s", cfg.CacheTTL)
	}
	if len(cfg.CORSAllowedOrigins) != 1 || cfg.CORSAllowedOrigins[0] != "*" {
		t.Fatalf("unexpected CORSAllowedOrigins: %v", cfg.CORSAllowedOrigins)
	}
	if !cfg.DBDisablePreparedBinary {
		t.Fatalf("expected DBDisablePreparedBinary=true by default")
	}
}

func TestLoad_WebhookConfigParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("ACTIVITY_WEBHOOK_ENABLED", "true")
	t.Setenv("ACTIVITY_WEBHOOK_URL", "https://hooks.example.com/activity")
	t.Setenv("ACTIVITY_WEBHOOK_TOKEN", "token-123")
	t.Setenv("ACTIVITY_WEBHOOK_BATCH_SIZE", "64")
	t.Setenv("ACTIVITY_WEBHOOK_FLUSH_INTERVAL", "500ms")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if !cfg.ActivityWebhookEnabled {
		t.Fatalf("expected ActivityWebhookEnabled=true")
	}
	if cfg.ActivityWebhookURL != "https://hooks.example.com/activity" {
		t.Fatalf("unexpected ActivityWebhookURL: %q", cfg.ActivityWebhookURL)
	}
	if cfg.ActivityWebhookToken != "token-123" {
		t.Fatalf("unexpected ActivityWebhookToken")
	}
	if cfg.ActivityWebhookBatchSize != 64 {
		t.Fatalf("unexpected ActivityWebhookBatchSize: %d", cfg.ActivityWebhookBatchSize)
	}
	if cfg.ActivityWebhookFlushInterval != 500*time.Millisecond {
		t.Fatalf("unexpected ActivityWebhookFlushInterval: %s", cfg.ActivityWebhookFlushInterval)
	}
}

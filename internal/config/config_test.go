package config

import (
	"testing"
	"time"

	"github.com/pitchrank/pitchrank/internal/platform/logging"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load with defaults: %v", err)
	}

	if cfg.AppEnv != EnvDev {
		t.Fatalf("expected AppEnv=dev, got %q", cfg.AppEnv)
	}
	if cfg.ServiceName != "pitchrank-pipeline" {
		t.Fatalf("unexpected ServiceName %q", cfg.ServiceName)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Fatalf("unexpected HTTPAddr %q", cfg.HTTPAddr)
	}
	if cfg.PromoteBatchSize != 500 {
		t.Fatalf("unexpected PromoteBatchSize %d", cfg.PromoteBatchSize)
	}
	if cfg.PromoteMaxWorkers != 8 {
		t.Fatalf("unexpected PromoteMaxWorkers %d", cfg.PromoteMaxWorkers)
	}
	if cfg.SimilarityThreshold != 0.75 {
		t.Fatalf("unexpected SimilarityThreshold %v", cfg.SimilarityThreshold)
	}
	if cfg.CacheTTL != 60*time.Second {
		t.Fatalf("unexpected CacheTTL %v", cfg.CacheTTL)
	}
	if cfg.UptraceEnabled {
		t.Fatalf("expected uptrace disabled by default")
	}
}

func TestLoad_AppEnvValidation(t *testing.T) {
	t.Setenv("APP_ENV", "invalid")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid APP_ENV")
	}
}

func TestLoad_UptraceRequiresDSNWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")
	t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when UPTRACE_ENABLED=true without UPTRACE_DSN")
	}
}

func TestLoad_UptraceDSNFromOTLPHeaders(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")
	t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", `uptrace-dsn="https://token@api.uptrace.dev/123"`)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.UptraceDSN != "https://token@api.uptrace.dev/123" {
		t.Fatalf("unexpected UptraceDSN %q", cfg.UptraceDSN)
	}
}

func TestLoad_SimilarityThresholdBounds(t *testing.T) {
	t.Setenv("MATCHING_SIMILARITY_THRESHOLD", "1.5")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for threshold above 1")
	}
}

func TestLoad_ProdRequiresJobToken(t *testing.T) {
	t.Setenv("APP_ENV", EnvProd)
	t.Setenv("INTERNAL_JOB_TOKEN", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when prod has no job token")
	}
}

func TestLoad_PyroscopeAppNameDefaultsToServiceName(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("APP_SERVICE_NAME", "pitchrank-pipeline-test")
	t.Setenv("PYROSCOPE_ENABLED", "true")
	t.Setenv("PYROSCOPE_SERVER_ADDRESS", "http://localhost:4040")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.PyroscopeAppName != "pitchrank-pipeline-test" {
		t.Fatalf("unexpected PyroscopeAppName %q", cfg.PyroscopeAppName)
	}
}

func TestLoad_PromoteBatchSizeMustBePositive(t *testing.T) {
	t.Setenv("PROMOTE_BATCH_SIZE", "0")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for zero batch size")
	}
}

func TestLoad_LogLevelParsing(t *testing.T) {
	t.Setenv("APP_LOG_LEVEL", "warn")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LogLevel != logging.LevelWarn {
		t.Fatalf("unexpected LogLevel %v", cfg.LogLevel)
	}
}

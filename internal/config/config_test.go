package config

import "testing"

func TestLoadDoesNotInjectWeakAuthDefaults(t *testing.T) {
	t.Setenv("AUTH_SECRET", "")

	cfg := Load()
	if cfg.AuthSecret != "" {
		t.Fatalf("expected empty AUTH_SECRET when unset, got %q", cfg.AuthSecret)
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("REPORT_CACHE_TTL_SECONDS", "")
	t.Setenv("LOW_STOCK_THRESHOLD", "")
	t.Setenv("ACCESS_TOKEN_TTL_MINUTES", "")

	cfg := Load()
	if cfg.Port != "8080" {
		t.Fatalf("port = %q, want 8080", cfg.Port)
	}
	if cfg.ReportCacheTTLSeconds != 300 {
		t.Fatalf("report ttl = %d, want 300", cfg.ReportCacheTTLSeconds)
	}
	if cfg.LowStockThreshold != 5 {
		t.Fatalf("low stock threshold = %d, want 5", cfg.LowStockThreshold)
	}
	if cfg.AccessTokenTTLMinutes != 480 {
		t.Fatalf("token ttl = %d, want 480", cfg.AccessTokenTTLMinutes)
	}
	if cfg.Address() != ":8080" {
		t.Fatalf("address = %q", cfg.Address())
	}
}

func TestLoadRejectsGarbageNumbers(t *testing.T) {
	t.Setenv("REPORT_CACHE_TTL_SECONDS", "not-a-number")
	t.Setenv("LOW_STOCK_THRESHOLD", "-4")

	cfg := Load()
	if cfg.ReportCacheTTLSeconds != 300 {
		t.Fatalf("report ttl = %d, want fallback 300", cfg.ReportCacheTTLSeconds)
	}
	if cfg.LowStockThreshold != 5 {
		t.Fatalf("low stock threshold = %d, want fallback 5", cfg.LowStockThreshold)
	}
}

package config

import (
	"os"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://app:pw@localhost:5432/inventory")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.ServerPort != "8080" {
		t.Errorf("Expected default port 8080, got %s", cfg.ServerPort)
	}
	if cfg.NotificationTopic != "inventory.notifications" {
		t.Errorf("Unexpected default topic: %s", cfg.NotificationTopic)
	}
	if cfg.StockMonitorInterval != 10*time.Minute {
		t.Errorf("Expected default monitor interval 10m, got %s", cfg.StockMonitorInterval)
	}
	if len(cfg.AllowedOrigins) != 0 {
		t.Errorf("Expected no default origins, got %v", cfg.AllowedOrigins)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://app:pw@localhost:5432/inventory")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("STOCK_MONITOR_INTERVAL", "30s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.ServerPort != "9090" {
		t.Errorf("Expected port 9090, got %s", cfg.ServerPort)
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[1] != "https://b.example" {
		t.Errorf("Unexpected origins: %v", cfg.AllowedOrigins)
	}
	if cfg.StockMonitorInterval != 30*time.Second {
		t.Errorf("Expected 30s interval, got %s", cfg.StockMonitorInterval)
	}
}

func TestLoadRequiresDatabaseURL(t *testing.T) {
	// t.Setenv registers the restore; unset to exercise the required check.
	t.Setenv("DATABASE_URL", "placeholder")
	os.Unsetenv("DATABASE_URL")

	if _, err := Load(); err == nil {
		t.Fatal("Expected error when DATABASE_URL is unset")
	}
}

package app

import (
	"testing"

	"github.com/O-G-W-A-L/alx-backend-graphql-crm/internal/heartbeat"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.HTTPAddr != ":8000" {
		t.Errorf("expected HTTPAddr :8000, got %s", cfg.HTTPAddr)
	}

	if cfg.MetricsAddr != ":9090" {
		t.Errorf("expected MetricsAddr :9090, got %s", cfg.MetricsAddr)
	}

	if cfg.PostgresDSN != "" {
		t.Errorf("expected empty PostgresDSN, got %s", cfg.PostgresDSN)
	}

	if cfg.HeartbeatEnabled {
		t.Error("expected heartbeat disabled by default")
	}

	if cfg.HeartbeatInterval != heartbeat.DefaultInterval {
		t.Errorf("unexpected heartbeat interval: %s", cfg.HeartbeatInterval)
	}

	if cfg.HeartbeatLogFile != heartbeat.DefaultLogFile {
		t.Errorf("unexpected heartbeat log file: %s", cfg.HeartbeatLogFile)
	}
}

func TestConfig(t *testing.T) {
	cfg := Config{
		HTTPAddr:    ":8080",
		MetricsAddr: ":9091",
	}

	if cfg.HTTPAddr != ":8080" {
		t.Errorf("expected HTTPAddr :8080, got %s", cfg.HTTPAddr)
	}

	if cfg.MetricsAddr != ":9091" {
		t.Errorf("expected MetricsAddr :9091, got %s", cfg.MetricsAddr)
	}
}

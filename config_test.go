package goClient

import (
	"context"
	"testing"
	"time"
)

func TestConfigValidate(t *testing.T) {
	valid := defaultConfig()
	valid.BaseURL = "https://api.example.com"
	if err := valid.Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing base URL", func(c *Config) { c.BaseURL = "" }},
		{"relative base URL", func(c *Config) { c.BaseURL = "/api" }},
		{"zero request timeout", func(c *Config) { c.HTTP.RequestTimeout = 0 }},
		{"zero refresh timeout", func(c *Config) { c.HTTP.RefreshTimeout = 0 }},
		{"zero waiter timeout", func(c *Config) { c.Refresh.WaiterTimeout = 0 }},
		{"negative retries", func(c *Config) { c.Refresh.MaxRetries = -1 }},
		{"unbounded retries", func(c *Config) { c.Refresh.MaxRetries = 2 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := defaultConfig()
			cfg.BaseURL = "https://api.example.com"
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation to fail")
			}
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.HTTP.RequestTimeout != 30*time.Second {
		t.Errorf("unexpected request timeout: %v", cfg.HTTP.RequestTimeout)
	}
	if cfg.Refresh.MaxRetries != 1 {
		t.Errorf("unexpected retry budget: %d", cfg.Refresh.MaxRetries)
	}
	if cfg.Session.StorageKey != "goclient:session" {
		t.Errorf("unexpected storage key: %q", cfg.Session.StorageKey)
	}
}

func TestBuilderRejectsInvalidConfig(t *testing.T) {
	_, err := New().Build(context.Background())
	if err == nil {
		t.Fatal("expected Build to fail without a base URL")
	}
}

func TestBuilderSingleUse(t *testing.T) {
	b := New().WithBaseURL("https://api.example.com")

	first, err := b.Build(context.Background())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	defer first.Close()

	if _, err := b.Build(context.Background()); err == nil {
		t.Fatal("expected the second Build to fail")
	}
}

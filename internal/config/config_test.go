package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config file: %v", err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.HTTP.Addr != ":8080" {
		t.Errorf("unexpected http addr %q", cfg.HTTP.Addr)
	}
	if cfg.Poller.Interval != 60*time.Second {
		t.Errorf("unexpected poll interval %v", cfg.Poller.Interval)
	}
	if cfg.Cache.LiveTTL != 30*time.Second || cfg.Cache.ScheduleTTL != 90*time.Second {
		t.Errorf("unexpected cache TTLs %v/%v", cfg.Cache.LiveTTL, cfg.Cache.ScheduleTTL)
	}
	if cfg.Cache.RateLimitCooldown != 120*time.Second {
		t.Errorf("unexpected cooldown %v", cfg.Cache.RateLimitCooldown)
	}
	if len(cfg.Providers.Order) != 2 || cfg.Providers.Order[0] != "football-data" {
		t.Errorf("unexpected provider order %v", cfg.Providers.Order)
	}
}

func TestLoad_YAMLFile(t *testing.T) {
	path := writeConfigFile(t, `
http:
  addr: ":9090"
poller:
  interval: 45s
providers:
  order: [flashscore, football-data]
  football_data:
    api_keys: [file-key]
cache:
  live_ttl: 20s
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.HTTP.Addr != ":9090" {
		t.Errorf("unexpected addr %q", cfg.HTTP.Addr)
	}
	if cfg.Poller.Interval != 45*time.Second {
		t.Errorf("unexpected interval %v", cfg.Poller.Interval)
	}
	if cfg.Providers.Order[0] != "flashscore" {
		t.Errorf("unexpected order %v", cfg.Providers.Order)
	}
	if len(cfg.Providers.FootballData.APIKeys) != 1 || cfg.Providers.FootballData.APIKeys[0] != "file-key" {
		t.Errorf("unexpected keys %v", cfg.Providers.FootballData.APIKeys)
	}
	if cfg.Cache.LiveTTL != 20*time.Second {
		t.Errorf("unexpected live ttl %v", cfg.Cache.LiveTTL)
	}
	// Unset values still take defaults.
	if cfg.Cache.ScheduleTTL != 90*time.Second {
		t.Errorf("unexpected schedule ttl %v", cfg.Cache.ScheduleTTL)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfigFile(t, `
http:
  addr: ":9090"
providers:
  football_data:
    api_keys: [file-key]
`)

	t.Setenv("HTTP_ADDR", ":7070")
	t.Setenv("FOOTBALL_DATA_API_KEY", "env-key")
	t.Setenv("POLL_INTERVAL", "15s")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.HTTP.Addr != ":7070" {
		t.Errorf("expected env override, got %q", cfg.HTTP.Addr)
	}
	if len(cfg.Providers.FootballData.APIKeys) != 1 || cfg.Providers.FootballData.APIKeys[0] != "env-key" {
		t.Errorf("expected env key to replace file keys, got %v", cfg.Providers.FootballData.APIKeys)
	}
	if cfg.Poller.Interval != 15*time.Second {
		t.Errorf("unexpected interval %v", cfg.Poller.Interval)
	}
}

func TestLoad_RotatedKeys(t *testing.T) {
	t.Setenv("APIFY_API_KEY_1", "key-one")
	t.Setenv("APIFY_API_KEY_2", "")
	t.Setenv("APIFY_API_KEY_3", "key-three")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	keys := cfg.Providers.Flashscore.APIKeys
	// Gaps in the numbering are skipped, not terminal.
	if len(keys) != 2 || keys[0] != "key-one" || keys[1] != "key-three" {
		t.Errorf("unexpected rotated keys %v", keys)
	}
}

func TestLoad_RotatedKeysFallback(t *testing.T) {
	t.Setenv("APIFY_API_KEY", "bare-key")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	keys := cfg.Providers.Flashscore.APIKeys
	if len(keys) != 1 || keys[0] != "bare-key" {
		t.Errorf("expected bare key fallback, got %v", keys)
	}
}

func TestLoad_MissingFileIgnored(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err != nil {
		t.Fatalf("expected missing file to be skipped, got %v", err)
	}
}

func TestLoad_MalformedFile(t *testing.T) {
	path := writeConfigFile(t, "{not yaml")
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error for malformed file")
	}
}

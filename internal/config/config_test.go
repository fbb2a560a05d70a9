package config

import (
	"strings"
	"testing"
)

func validConfig() Config {
	cfg := Config{
		HTTP:         HTTPConfig{Port: 8080},
		Observations: ObservationsConfig{BaseURL: "http://localhost:5000/api"},
	}
	cfg.ApplyDefaults()
	return cfg
}

func TestValidate_Valid(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_InvalidPort(t *testing.T) {
	cfg := validConfig()
	cfg.HTTP.Port = 0

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for invalid port")
	}
}

func TestValidate_MissingObservationsURL(t *testing.T) {
	cfg := validConfig()
	cfg.Observations.BaseURL = ""

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for missing observations url")
	}
}

func TestValidate_RelativeURLs(t *testing.T) {
	cfg := validConfig()
	cfg.RAG.BaseURL = "rag.local/api"

	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "rag.base_url") {
		t.Fatalf("expected rag.base_url error, got %v", err)
	}
}

func TestValidate_CacheDriver(t *testing.T) {
	tests := []struct {
		driver  string
		addrs   []string
		wantErr string
	}{
		{driver: CacheDriverNone},
		{driver: CacheDriverMemory},
		{driver: CacheDriverRedis, addrs: []string{"localhost:6379"}},
		{driver: CacheDriverRedis, wantErr: "cache.addrs is required"},
		{driver: "valkey", wantErr: `cache.driver must be "none", "memory" or "redis", got "valkey"`},
	}

	for _, tc := range tests {
		t.Run("driver="+tc.driver, func(t *testing.T) {
			cfg := validConfig()
			cfg.Cache.Driver = tc.driver
			cfg.Cache.Addrs = tc.addrs

			err := cfg.Validate()
			if tc.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("expected %q, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestValidate_Padding(t *testing.T) {
	cfg := validConfig()
	cfg.Map.Padding = 1.5

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for padding > 1")
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 10 {
		t.Errorf("expected ReadTimeoutSec=10, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.WriteTimeoutSec != 60 {
		t.Errorf("expected WriteTimeoutSec=60, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.HTTP.ShutdownSec != 10 {
		t.Errorf("expected ShutdownSec=10, got %d", cfg.HTTP.ShutdownSec)
	}
	if cfg.Observations.TimeoutSec != 10 {
		t.Errorf("expected Observations.TimeoutSec=10, got %d", cfg.Observations.TimeoutSec)
	}
	if cfg.RAG.TimeoutSec != 30 {
		t.Errorf("expected RAG.TimeoutSec=30, got %d", cfg.RAG.TimeoutSec)
	}
	if cfg.Fallback.MaxTokens != 500 {
		t.Errorf("expected Fallback.MaxTokens=500, got %d", cfg.Fallback.MaxTokens)
	}
	if cfg.Cache.Driver != CacheDriverMemory {
		t.Errorf("expected Cache.Driver=memory, got %q", cfg.Cache.Driver)
	}
	if cfg.Cache.TTLSec != 60 {
		t.Errorf("expected Cache.TTLSec=60, got %d", cfg.Cache.TTLSec)
	}
	if cfg.Sessions.IdleTTLSec != 1800 {
		t.Errorf("expected IdleTTLSec=1800, got %d", cfg.Sessions.IdleTTLSec)
	}
	if cfg.Map.Padding != 0.1 {
		t.Errorf("expected Padding=0.1, got %g", cfg.Map.Padding)
	}
	if cfg.Map.FlashDurationMs != 1500 {
		t.Errorf("expected FlashDurationMs=1500, got %d", cfg.Map.FlashDurationMs)
	}
	if cfg.RAGEnabled() || cfg.FallbackEnabled() {
		t.Error("collaborators are disabled by default")
	}
}

func TestApplyDefaults_NoOverride(t *testing.T) {
	cfg := Config{
		HTTP:     HTTPConfig{ReadTimeoutSec: 30, WriteTimeoutSec: 20, ShutdownSec: 5},
		Cache:    CacheConfig{Driver: CacheDriverNone, TTLSec: 300},
		Sessions: SessionsConfig{IdleTTLSec: -1},
		Map:      MapConfig{Padding: 0.25, FlashDurationMs: 800},
	}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 30 {
		t.Errorf("expected ReadTimeoutSec=30, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.WriteTimeoutSec != 20 {
		t.Errorf("expected WriteTimeoutSec=20, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.Cache.Driver != CacheDriverNone || cfg.Cache.TTLSec != 300 {
		t.Errorf("cache overridden: %+v", cfg.Cache)
	}
	if cfg.Sessions.IdleTTLSec != -1 {
		t.Errorf("negative idle ttl disables eviction, got %d", cfg.Sessions.IdleTTLSec)
	}
	if cfg.Map.Padding != 0.25 || cfg.Map.FlashDurationMs != 800 {
		t.Errorf("map overridden: %+v", cfg.Map)
	}
}

func TestParse_ExpandsEnvVars(t *testing.T) {
	t.Setenv("BIOSCOUT_TEST_OBS_URL", "http://observations:5000/api")
	t.Setenv("BIOSCOUT_TEST_KEY", "")

	cfg, err := Parse([]byte(`
http:
  port: 8080
observations:
  base_url: ${BIOSCOUT_TEST_OBS_URL}
rag:
  base_url: ${BIOSCOUT_TEST_RAG_URL:-http://rag:8000/api}
fallback:
  api_key: ${BIOSCOUT_TEST_KEY}
`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Observations.BaseURL != "http://observations:5000/api" {
		t.Errorf("observations url = %q", cfg.Observations.BaseURL)
	}
	if cfg.RAG.BaseURL != "http://rag:8000/api" {
		t.Errorf("rag url default not applied: %q", cfg.RAG.BaseURL)
	}
	if cfg.FallbackEnabled() {
		t.Error("empty api key must disable the fallback")
	}
}

func TestParse_Invalid(t *testing.T) {
	if _, err := Parse([]byte("http: [")); err == nil {
		t.Error("expected YAML error")
	}
	if _, err := Parse([]byte("http:\n  port: 8080\n")); err == nil {
		t.Error("expected validation error")
	}
}

func TestLoad_ShippedConfigs(t *testing.T) {
	for _, env := range []string{"local", "prod"} {
		t.Run(env, func(t *testing.T) {
			if _, err := Load(env); err != nil {
				t.Fatalf("Load(%s): %v", env, err)
			}
		})
	}
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults invalid: %v", err)
	}
	if cfg.Fetch.DefaultLimit != 3 {
		t.Errorf("DefaultLimit = %d", cfg.Fetch.DefaultLimit)
	}
	if cfg.SuggestDelay() != 100*time.Millisecond || cfg.PollInterval() != 50*time.Millisecond || cfg.PollCeiling() != 500*time.Millisecond {
		t.Errorf("timings = %v %v %v", cfg.SuggestDelay(), cfg.PollInterval(), cfg.PollCeiling())
	}
	if cfg.NoticeTTL() != 10*time.Second {
		t.Errorf("NoticeTTL() = %v", cfg.NoticeTTL())
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "nope.json"))
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.API.URL != DefaultConfig().API.URL {
		t.Errorf("URL = %q", cfg.API.URL)
	}
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.json")

	cfg := DefaultConfig()
	cfg.API.URL = "http://backend:9000/graphql"
	cfg.Fetch.DefaultLimit = 5
	cfg.UI.ShowDebug = true
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("permissions = %o, want 600", perm)
	}

	got, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if got.API.URL != cfg.API.URL || got.Fetch.DefaultLimit != 5 || !got.UI.ShowDebug {
		t.Errorf("round trip mismatch: %+v", got)
	}
}

func TestPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"fetch":{"default_limit":2}}`), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.Fetch.DefaultLimit != 2 {
		t.Errorf("DefaultLimit = %d", cfg.Fetch.DefaultLimit)
	}
	if cfg.UI.Currency != "€" || cfg.API.URL == "" {
		t.Errorf("defaults lost: %+v", cfg)
	}
}

func TestMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{not json`), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFrom(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("BESTCOMBO_API_URL", "http://example.test:8001/")
	t.Setenv("BESTCOMBO_LIMIT", "4")
	t.Setenv("BESTCOMBO_RPS", "2.5")
	t.Setenv("BESTCOMBO_HISTORY_DB", "/tmp/h.db")

	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "missing.json"))
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.API.URL != "http://example.test:8001/" {
		t.Errorf("URL = %q", cfg.API.URL)
	}
	if cfg.Fetch.DefaultLimit != 4 {
		t.Errorf("DefaultLimit = %d", cfg.Fetch.DefaultLimit)
	}
	if cfg.API.RequestsPerSecond != 2.5 {
		t.Errorf("RPS = %v", cfg.API.RequestsPerSecond)
	}
	if cfg.HistoryPath() != "/tmp/h.db" {
		t.Errorf("HistoryPath() = %q", cfg.HistoryPath())
	}
}

func TestInvalidValuesRejected(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"limit too high", map[string]string{"BESTCOMBO_LIMIT": "9"}},
		{"limit not a number", map[string]string{"BESTCOMBO_LIMIT": "three"}},
		{"bad url", map[string]string{"BESTCOMBO_API_URL": "not a url"}},
		{"negative rps", map[string]string{"BESTCOMBO_RPS": "-1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := LoadFrom(filepath.Join(t.TempDir(), "missing.json")); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestHistoryPathDefault(t *testing.T) {
	cfg := DefaultConfig()
	if filepath.Base(cfg.HistoryPath()) != "history.db" {
		t.Errorf("HistoryPath() = %q", cfg.HistoryPath())
	}
}

package config

import (
	"strings"
	"testing"
)

// mapBackend is an in-memory ConfigBackend test double.
type mapBackend struct {
	data map[string]any
}

func (m *mapBackend) GetString(key string) (string, bool, error) {
	v, ok := m.data[key]
	if !ok {
		return "", false, nil
	}
	s, isStr := v.(string)
	if !isStr {
		return "", false, nil
	}
	return s, true, nil
}

func (m *mapBackend) GetInt(key string) (int, bool, error) {
	v, ok := m.data[key]
	if !ok {
		return 0, false, nil
	}
	i, isInt := v.(int)
	if !isInt {
		return 0, false, nil
	}
	return i, true, nil
}

func (m *mapBackend) SetString(key, val string) error { m.data[key] = val; return nil }
func (m *mapBackend) SetInt(key string, val int) error {
	m.data[key] = val
	return nil
}
func (m *mapBackend) Delete(key string) error { delete(m.data, key); return nil }

// mockKeychain is a test double for the secret store.
type mockKeychain struct {
	value string
	err   error
}

func (m mockKeychain) Get(service, account string) (string, error) {
	return m.value, m.err
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, s := range specs {
		t.Setenv(s.env, "")
	}
	t.Setenv("OPENAI_API_KEY", "")
}

// TestDefaults verifies all default values survive an empty backend.
func TestDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := loadWith(&mapBackend{data: map[string]any{}}, mockKeychain{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != 5000 {
		t.Errorf("Server.Port = %d, want 5000", cfg.Server.Port)
	}
	if cfg.OpenAI.Model != "gpt-3.5-turbo" {
		t.Errorf("OpenAI.Model = %q, want %q", cfg.OpenAI.Model, "gpt-3.5-turbo")
	}
	if cfg.OpenAI.BaseURL != "https://api.openai.com/v1" {
		t.Errorf("OpenAI.BaseURL = %q", cfg.OpenAI.BaseURL)
	}
	if cfg.RateLimit.Requests != 100 {
		t.Errorf("RateLimit.Requests = %d, want 100", cfg.RateLimit.Requests)
	}
	if cfg.RateLimit.WindowMinutes != 15 {
		t.Errorf("RateLimit.WindowMinutes = %d, want 15", cfg.RateLimit.WindowMinutes)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("Log.Level = %q, want %q", cfg.Log.Level, "info")
	}
	if cfg.Storage.DataDir == "" {
		t.Error("Storage.DataDir is empty")
	}
}

// TestMissingAPIKeyIsNotAnError verifies the server can start without an
// OpenAI key (canned responses only).
func TestMissingAPIKeyIsNotAnError(t *testing.T) {
	clearEnv(t)

	cfg, err := loadWith(&mapBackend{data: map[string]any{}}, mockKeychain{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.OpenAI.APIKey != "" {
		t.Errorf("APIKey = %q, want empty", cfg.OpenAI.APIKey)
	}
}

// TestBackendValues verifies values stored in the backend are applied.
func TestBackendValues(t *testing.T) {
	clearEnv(t)

	b := &mapBackend{data: map[string]any{
		"server.port":      8080,
		"openai.model":     "gpt-4o",
		"storage.data_dir": "/tmp/kbw-test",
		"redis.addr":       "localhost:6379",
		"log.level":        "debug",
	}}

	cfg, err := loadWith(b, mockKeychain{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.OpenAI.Model != "gpt-4o" {
		t.Errorf("OpenAI.Model = %q", cfg.OpenAI.Model)
	}
	if cfg.Storage.DataDir != "/tmp/kbw-test" {
		t.Errorf("Storage.DataDir = %q", cfg.Storage.DataDir)
	}
	if cfg.Redis.Addr != "localhost:6379" {
		t.Errorf("Redis.Addr = %q", cfg.Redis.Addr)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q", cfg.Log.Level)
	}
}

// TestEnvOverride verifies that environment variables override backend values.
func TestEnvOverride(t *testing.T) {
	clearEnv(t)
	t.Setenv("KBW_SERVER_PORT", "9999")
	t.Setenv("KBW_OPENAI_API_KEY", "env-key")

	b := &mapBackend{data: map[string]any{"server.port": 8080}}
	cfg, err := loadWith(b, mockKeychain{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != 9999 {
		t.Errorf("Server.Port = %d, want 9999 (env should win)", cfg.Server.Port)
	}
	if cfg.OpenAI.APIKey != "env-key" {
		t.Errorf("APIKey = %q, want %q", cfg.OpenAI.APIKey, "env-key")
	}
}

// TestPlainOpenAIEnvVar verifies the conventional OPENAI_API_KEY variable is honored.
func TestPlainOpenAIEnvVar(t *testing.T) {
	clearEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-plain")

	cfg, err := loadWith(&mapBackend{data: map[string]any{}}, mockKeychain{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.OpenAI.APIKey != "sk-plain" {
		t.Errorf("APIKey = %q, want %q", cfg.OpenAI.APIKey, "sk-plain")
	}
}

// TestKeychainFallback verifies the secret store is consulted when no API key
// is in backend or env.
func TestKeychainFallback(t *testing.T) {
	clearEnv(t)

	kc := mockKeychain{value: "keychain-secret"}
	cfg, err := loadWith(&mapBackend{data: map[string]any{}}, kc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.OpenAI.APIKey != "keychain-secret" {
		t.Errorf("APIKey = %q, want %q", cfg.OpenAI.APIKey, "keychain-secret")
	}
}

func TestSetKeyRejectsSecrets(t *testing.T) {
	err := SetKey("openai.api_key", "sk-123")
	if err == nil {
		t.Fatal("expected error when setting a secret key")
	}
	if !strings.Contains(err.Error(), "KBW_OPENAI_API_KEY") {
		t.Errorf("error should mention the env var: %v", err)
	}
}

func TestValidKeysExcludeSecrets(t *testing.T) {
	for _, k := range ValidKeys() {
		if k == "openai.api_key" {
			t.Error("ValidKeys includes a secret key")
		}
	}
	if len(ValidKeys()) == 0 {
		t.Error("ValidKeys is empty")
	}
}

func TestShowAllOmitsSecrets(t *testing.T) {
	clearEnv(t)
	cfg, err := loadWith(&mapBackend{data: map[string]any{}}, mockKeychain{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, info := range ShowAll(cfg) {
		if info.Key == "openai.api_key" {
			t.Error("ShowAll includes the API key")
		}
	}
}

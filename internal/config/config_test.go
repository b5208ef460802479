package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// clearEnv unsets every variable Config reads so host settings do not leak
// into a test. t.Setenv restores the previous values afterwards.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "DEBUG", "SESSION_SECRET", "SESSION_LIFETIME",
		"STORE_BACKEND", "DATABASE_URL", "IDENTITY_PROVIDER",
		"FIREBASE_PROJECT_ID", "FIREBASE_PRIVATE_KEY_ID", "FIREBASE_PRIVATE_KEY",
		"FIREBASE_CLIENT_EMAIL", "FIREBASE_CLIENT_ID", "FIREBASE_CLIENT_X509_CERT_URL",
		"FIREBASE_CREDENTIALS_FILE", "FIREBASE_API_KEY",
		"LLM_PROVIDER", "LLM_MODEL", "LLM_MAX_TOKENS",
		"GEMINI_API_KEY", "OPENAI_API_KEY", "OPENAI_BASE_URL", "ANTHROPIC_API_KEY",
	} {
		t.Setenv(key, "")
		_ = os.Unsetenv(key)
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("Expected Port '8080', got '%s'", cfg.Port)
	}
	if cfg.Debug {
		t.Error("Debug should default to false")
	}
	if cfg.SessionSecret != "dev-secret-key" {
		t.Errorf("Expected default session secret, got '%s'", cfg.SessionSecret)
	}
	if cfg.SessionLifetime != 720*time.Hour {
		t.Errorf("Expected SessionLifetime 720h, got %s", cfg.SessionLifetime)
	}
	if cfg.StoreBackend != StoreFirestore {
		t.Errorf("Expected StoreBackend %q, got %q", StoreFirestore, cfg.StoreBackend)
	}
	if cfg.IdentityProvider != IdentityFirebase {
		t.Errorf("Expected IdentityProvider %q, got %q", IdentityFirebase, cfg.IdentityProvider)
	}
	if cfg.LLM.Provider != LLMGemini {
		t.Errorf("Expected LLM provider %q, got %q", LLMGemini, cfg.LLM.Provider)
	}
	if cfg.LLM.MaxTokens != 1024 {
		t.Errorf("Expected MaxTokens 1024, got %d", cfg.LLM.MaxTokens)
	}
	if cfg.Firebase.CredentialsFile != "serviceAccountKey.json" {
		t.Errorf("Expected default credentials file, got '%s'", cfg.Firebase.CredentialsFile)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoadFromEnv(t *testing.T) {
	clearEnv(t)

	t.Setenv("PORT", "9090")
	t.Setenv("DEBUG", "true")
	t.Setenv("STORE_BACKEND", "postgres")
	t.Setenv("DATABASE_URL", "postgres://localhost/coach")
	t.Setenv("LLM_PROVIDER", "openai")
	t.Setenv("LLM_MAX_TOKENS", "256")
	t.Setenv("FIREBASE_PRIVATE_KEY", "key")
	t.Setenv("FIREBASE_CLIENT_EMAIL", "svc@example.iam.gserviceaccount.com")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Port != "9090" {
		t.Errorf("Expected Port '9090', got '%s'", cfg.Port)
	}
	if !cfg.Debug {
		t.Error("Debug should be true")
	}
	if cfg.StoreBackend != StorePostgres || cfg.DatabaseURL == "" {
		t.Errorf("unexpected store config: %q %q", cfg.StoreBackend, cfg.DatabaseURL)
	}
	if cfg.LLM.Provider != LLMOpenAI || cfg.LLM.MaxTokens != 256 {
		t.Errorf("unexpected llm config: %+v", cfg.LLM)
	}
	if !cfg.Firebase.HasServiceAccount() {
		t.Error("Should have inline service account")
	}
}

func TestLoadDotenvFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("PORT=7070\nSTORE_BACKEND=memory\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	// godotenv sets process variables directly; clean them up afterwards
	t.Setenv("PORT", "")
	t.Setenv("STORE_BACKEND", "")
	_ = os.Unsetenv("PORT")
	_ = os.Unsetenv("STORE_BACKEND")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Port != "7070" {
		t.Errorf("Expected Port '7070', got '%s'", cfg.Port)
	}
	if cfg.StoreBackend != StoreMemory {
		t.Errorf("Expected StoreBackend %q, got %q", StoreMemory, cfg.StoreBackend)
	}
}

func TestLoadInvalidValue(t *testing.T) {
	clearEnv(t)
	t.Setenv("SESSION_LIFETIME", "forever")

	if _, err := Load(filepath.Join(t.TempDir(), "missing.env")); err == nil {
		t.Error("Expected error for invalid SESSION_LIFETIME")
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			SessionLifetime:  time.Hour,
			StoreBackend:     StoreMemory,
			IdentityProvider: IdentityLocal,
			LLM:              LLMConfig{Provider: LLMMock, MaxTokens: 100},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(*Config) {}, false},
		{"unknown store", func(c *Config) { c.StoreBackend = "mongo" }, true},
		{"postgres without url", func(c *Config) { c.StoreBackend = StorePostgres }, true},
		{"postgres with url", func(c *Config) {
			c.StoreBackend = StorePostgres
			c.DatabaseURL = "postgres://x"
		}, false},
		{"store none", func(c *Config) { c.StoreBackend = StoreNone }, false},
		{"unknown identity", func(c *Config) { c.IdentityProvider = "ldap" }, true},
		{"unknown llm", func(c *Config) { c.LLM.Provider = "llama" }, true},
		{"llm none", func(c *Config) { c.LLM.Provider = LLMNone }, false},
		{"zero max tokens", func(c *Config) { c.LLM.MaxTokens = 0 }, true},
		{"zero lifetime", func(c *Config) { c.SessionLifetime = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNeedsFirebase(t *testing.T) {
	cfg := &Config{StoreBackend: StoreMemory, IdentityProvider: IdentityLocal}
	if cfg.NeedsFirebase() {
		t.Error("memory + local should not need Firebase")
	}
	cfg.IdentityProvider = IdentityFirebase
	if !cfg.NeedsFirebase() {
		t.Error("firebase identity needs Firebase")
	}
	cfg = &Config{StoreBackend: StoreFirestore, IdentityProvider: IdentityLocal}
	if !cfg.NeedsFirebase() {
		t.Error("firestore backend needs Firebase")
	}
}

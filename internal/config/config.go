// Package config handles application configuration from environment variables
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"slices"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Store backends
const (
	StoreFirestore = "firestore"
	StorePostgres  = "postgres"
	StoreMemory    = "memory"
	StoreNone      = "none"
)

// Identity providers
const (
	IdentityFirebase = "firebase"
	IdentityLocal    = "local"
)

// Generative text providers
const (
	LLMGemini    = "gemini"
	LLMOpenAI    = "openai"
	LLMAnthropic = "anthropic"
	LLMMock      = "mock"
	LLMNone      = "none"
)

// Config holds all application configuration
type Config struct {
	Port  string `env:"PORT" envDefault:"8080"`
	Debug bool   `env:"DEBUG" envDefault:"false"`

	SessionSecret   string        `env:"SESSION_SECRET" envDefault:"dev-secret-key"`
	SessionLifetime time.Duration `env:"SESSION_LIFETIME" envDefault:"720h"`

	StoreBackend string `env:"STORE_BACKEND" envDefault:"firestore"`
	DatabaseURL  string `env:"DATABASE_URL"`

	IdentityProvider string `env:"IDENTITY_PROVIDER" envDefault:"firebase"`

	Firebase FirebaseConfig
	LLM      LLMConfig
}

// FirebaseConfig holds the service-account fields. When PrivateKey is empty
// the credentials file is used instead.
type FirebaseConfig struct {
	ProjectID         string `env:"FIREBASE_PROJECT_ID"`
	PrivateKeyID      string `env:"FIREBASE_PRIVATE_KEY_ID"`
	PrivateKey        string `env:"FIREBASE_PRIVATE_KEY"`
	ClientEmail       string `env:"FIREBASE_CLIENT_EMAIL"`
	ClientID          string `env:"FIREBASE_CLIENT_ID"`
	ClientX509CertURL string `env:"FIREBASE_CLIENT_X509_CERT_URL"`
	CredentialsFile   string `env:"FIREBASE_CREDENTIALS_FILE" envDefault:"serviceAccountKey.json"`

	// APIKey is the web API key used for password sign-in.
	APIKey string `env:"FIREBASE_API_KEY"`
}

// HasServiceAccount reports whether inline service-account fields are set.
func (f FirebaseConfig) HasServiceAccount() bool {
	return f.PrivateKey != "" && f.ClientEmail != ""
}

// LLMConfig selects and configures the generative text backend.
type LLMConfig struct {
	Provider  string `env:"LLM_PROVIDER" envDefault:"gemini"`
	Model     string `env:"LLM_MODEL"`
	MaxTokens int    `env:"LLM_MAX_TOKENS" envDefault:"1024"`

	GeminiAPIKey    string `env:"GEMINI_API_KEY"`
	OpenAIAPIKey    string `env:"OPENAI_API_KEY"`
	OpenAIBaseURL   string `env:"OPENAI_BASE_URL"`
	AnthropicAPIKey string `env:"ANTHROPIC_API_KEY"`
}

// Load reads configuration from environment variables. Files named in
// dotenv are loaded first; a missing file is not an error.
func Load(dotenv ...string) (*Config, error) {
	if len(dotenv) == 0 {
		dotenv = []string{".env"}
	}
	for _, f := range dotenv {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// Validate rejects unknown backend names and incomplete combinations.
func (c *Config) Validate() error {
	if !slices.Contains([]string{StoreFirestore, StorePostgres, StoreMemory, StoreNone}, c.StoreBackend) {
		return fmt.Errorf("unknown STORE_BACKEND %q", c.StoreBackend)
	}
	if c.StoreBackend == StorePostgres && c.DatabaseURL == "" {
		return errors.New("STORE_BACKEND=postgres requires DATABASE_URL")
	}
	if !slices.Contains([]string{IdentityFirebase, IdentityLocal}, c.IdentityProvider) {
		return fmt.Errorf("unknown IDENTITY_PROVIDER %q", c.IdentityProvider)
	}
	if !slices.Contains([]string{LLMGemini, LLMOpenAI, LLMAnthropic, LLMMock, LLMNone}, c.LLM.Provider) {
		return fmt.Errorf("unknown LLM_PROVIDER %q", c.LLM.Provider)
	}
	if c.LLM.MaxTokens <= 0 {
		return fmt.Errorf("LLM_MAX_TOKENS must be positive, got %d", c.LLM.MaxTokens)
	}
	if c.SessionLifetime <= 0 {
		return fmt.Errorf("SESSION_LIFETIME must be positive, got %s", c.SessionLifetime)
	}
	return nil
}

// NeedsFirebase reports whether any component talks to Firebase.
func (c *Config) NeedsFirebase() bool {
	return c.StoreBackend == StoreFirestore || c.IdentityProvider == IdentityFirebase
}

package session

import (
	"context"

	"github.com/sethvargo/go-envconfig"
)

// Config carries client settings read from the environment.
type Config struct {
	// APIBaseURL is the AssetVerse backend root.
	APIBaseURL string `env:"ASSETVERSE_API_URL, default=http://localhost:5000"`

	// CredentialsDB is the SQLite file backing the durable credential store.
	CredentialsDB string `env:"ASSETVERSE_CREDENTIALS_DB, default=assetverse.db"`

	LogLevel  string `env:"ASSETVERSE_LOG_LEVEL, default=info"`
	LogPretty bool   `env:"ASSETVERSE_LOG_PRETTY, default=false"`

	Firebase FirebaseConfig
}

// FirebaseConfig configures the federated identity provider mirror. Leave
// APIKey empty to run without a provider.
type FirebaseConfig struct {
	APIKey             string `env:"ASSETVERSE_FIREBASE_API_KEY"`
	ProjectID          string `env:"ASSETVERSE_FIREBASE_PROJECT_ID"`
	GoogleClientID     string `env:"ASSETVERSE_GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `env:"ASSETVERSE_GOOGLE_CLIENT_SECRET"`

	// CallbackAddr is where the interactive sign-in flow listens for the
	// OAuth redirect.
	CallbackAddr string `env:"ASSETVERSE_OAUTH_CALLBACK_ADDR, default=127.0.0.1:53682"`
}

// Enabled reports whether a provider mirror should be constructed.
func (c FirebaseConfig) Enabled() bool {
	return c.APIKey != ""
}

// LoadConfig reads configuration from environment variables.
func LoadConfig(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

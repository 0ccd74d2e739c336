package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App     AppConfig
	GCP     GCPConfig
	Auth    AuthConfig
	Catalog CatalogConfig
	PubSub  PubSubConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"SHOPCORE_APP_ENV" required:"true"`
	LogLevel     string `envconfig:"SHOPCORE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"SHOPCORE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type GCPConfig struct {
	ProjectID       string `envconfig:"SHOPCORE_GCP_PROJECT_ID" required:"true"`
	CredentialsFile string `envconfig:"SHOPCORE_GOOGLE_APPLICATION_CREDENTIALS"`
}

// AuthConfig carries the Firebase Auth settings. The web API key is the
// browser key the Identity Toolkit REST endpoints require for password
// sign-in; the admin SDK does not use it.
type AuthConfig struct {
	WebAPIKey string        `envconfig:"SHOPCORE_FIREBASE_WEB_API_KEY" required:"true"`
	BaseURL   string        `envconfig:"SHOPCORE_IDENTITY_TOOLKIT_URL" default:"https://identitytoolkit.googleapis.com/v1"`
	Timeout   time.Duration `envconfig:"SHOPCORE_AUTH_TIMEOUT" default:"10s"`
}

type CatalogConfig struct {
	BaseURL string        `envconfig:"SHOPCORE_CATALOG_BASE_URL" default:"https://fakestoreapi.com"`
	Timeout time.Duration `envconfig:"SHOPCORE_CATALOG_TIMEOUT" default:"10s"`
}

type PubSubConfig struct {
	TelemetryTopic string `envconfig:"SHOPCORE_PUBSUB_TELEMETRY_TOPIC"`
}

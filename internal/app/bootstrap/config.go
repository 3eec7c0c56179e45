package bootstrap

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

const (
	StoreDynamoDB = "dynamodb"
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// Config is the resolved runtime configuration for the account service.
type Config struct {
	ServiceID string `env:"SERVICE_ID"`

	HTTPPort int `env:"HTTP_PORT"`
	GRPCPort int `env:"GRPC_PORT"`

	StoreDriver    string `env:"STORE_DRIVER"`
	TablePrefix    string `env:"TABLE_PREFIX"`
	DynamoRegion   string `env:"AWS_REGION"`
	DynamoEndpoint string `env:"DYNAMODB_ENDPOINT"`
	DatabaseURL    string `env:"DB_URL"`
	MaxDBConns     int32  `env:"DB_MAX_CONNS"`
	RedisURL       string `env:"REDIS_URL"`

	AuthSecret        string        `env:"AUTH_SECRET"`
	SessionTTL        time.Duration `env:"SESSION_TTL"`
	CookieSecure      bool          `env:"COOKIE_SECURE"`
	SessionRevocation bool          `env:"SESSION_REVOCATION"`

	BcryptCost      int `env:"BCRYPT_ROUNDS"`
	HashConcurrency int `env:"HASH_CONCURRENCY"`

	IDStrategy string `env:"ID_STRATEGY"`
	IDNode     int64  `env:"ID_NODE"`

	KafkaBrokers    []string `env:"KAFKA_BROKERS" envSeparator:","`
	InvitationTopic string   `env:"INVITATION_TOPIC"`

	CheckoutBaseURL     string `env:"CHECKOUT_BASE_URL"`
	BillingWebhookToken string `env:"BILLING_WEBHOOK_TOKEN"`
}

// configFile mirrors the YAML schema used by configs/default.yaml.
type configFile struct {
	Service struct {
		ID       string `yaml:"id"`
		HTTPPort int    `yaml:"http_port"`
		GRPCPort int    `yaml:"grpc_port"`
	} `yaml:"service"`
	Store struct {
		Driver         string `yaml:"driver"`
		TablePrefix    string `yaml:"table_prefix"`
		DynamoRegion   string `yaml:"dynamodb_region"`
		DynamoEndpoint string `yaml:"dynamodb_endpoint"`
	} `yaml:"store"`
	Dependencies struct {
		PostgresURL  string   `yaml:"postgres_url"`
		RedisURL     string   `yaml:"redis_url"`
		KafkaBrokers []string `yaml:"kafka_brokers"`
	} `yaml:"dependencies"`
	Session struct {
		TTL          string `yaml:"ttl"`
		CookieSecure *bool  `yaml:"cookie_secure"`
		Revocation   *bool  `yaml:"revocation"`
	} `yaml:"session"`
	Billing struct {
		CheckoutBaseURL string `yaml:"checkout_base_url"`
	} `yaml:"billing"`
}

// LoadConfig resolves configuration in priority order: defaults -> file -> env.
// A missing file is not an error.
func LoadConfig(path string) (Config, error) {
	cfg := Config{
		ServiceID:       "M98-Account-Service",
		HTTPPort:        8080,
		GRPCPort:        9090,
		StoreDriver:     StoreDynamoDB,
		DynamoRegion:    "us-east-1",
		MaxDBConns:      20,
		SessionTTL:      24 * time.Hour,
		CookieSecure:    true,
		BcryptCost:      10,
		IDStrategy:      "snowflake",
		IDNode:          1,
		InvitationTopic: "team.invitation.created",
	}

	raw, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := applyFile(&cfg, raw); err != nil {
			return Config{}, err
		}
	case !errors.Is(err, os.ErrNotExist):
		return Config{}, fmt.Errorf("read config file: %w", err)
	}

	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.StoreDriver = strings.ToLower(strings.TrimSpace(cfg.StoreDriver))
	cfg.KafkaBrokers = compactCSV(cfg.KafkaBrokers)

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyFile(cfg *Config, raw []byte) error {
	var f configFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	if f.Service.ID != "" {
		cfg.ServiceID = f.Service.ID
	}
	if f.Service.HTTPPort > 0 {
		cfg.HTTPPort = f.Service.HTTPPort
	}
	if f.Service.GRPCPort > 0 {
		cfg.GRPCPort = f.Service.GRPCPort
	}
	if f.Store.Driver != "" {
		cfg.StoreDriver = f.Store.Driver
	}
	if f.Store.TablePrefix != "" {
		cfg.TablePrefix = f.Store.TablePrefix
	}
	if f.Store.DynamoRegion != "" {
		cfg.DynamoRegion = f.Store.DynamoRegion
	}
	if f.Store.DynamoEndpoint != "" {
		cfg.DynamoEndpoint = f.Store.DynamoEndpoint
	}
	if f.Dependencies.PostgresURL != "" {
		cfg.DatabaseURL = f.Dependencies.PostgresURL
	}
	if f.Dependencies.RedisURL != "" {
		cfg.RedisURL = f.Dependencies.RedisURL
	}
	if len(f.Dependencies.KafkaBrokers) > 0 {
		cfg.KafkaBrokers = f.Dependencies.KafkaBrokers
	}
	if f.Session.TTL != "" {
		ttl, err := time.ParseDuration(f.Session.TTL)
		if err != nil {
			return fmt.Errorf("parse session ttl: %w", err)
		}
		cfg.SessionTTL = ttl
	}
	if f.Session.CookieSecure != nil {
		cfg.CookieSecure = *f.Session.CookieSecure
	}
	if f.Session.Revocation != nil {
		cfg.SessionRevocation = *f.Session.Revocation
	}
	if f.Billing.CheckoutBaseURL != "" {
		cfg.CheckoutBaseURL = f.Billing.CheckoutBaseURL
	}
	return nil
}

func (c Config) validate() error {
	if c.AuthSecret == "" {
		return fmt.Errorf("missing AUTH_SECRET")
	}
	switch c.StoreDriver {
	case StoreDynamoDB, StoreMemory:
	case StorePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("missing DB_URL for postgres store")
		}
	default:
		return fmt.Errorf("unknown store driver %q", c.StoreDriver)
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("session ttl must be positive")
	}
	return nil
}

// compactCSV trims list entries and removes empty segments.
func compactCSV(parts []string) []string {
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

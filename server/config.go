package server

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Hardcoded protocol and session defaults
const (
	DefaultSessionTTL = 12 * time.Hour
	DefaultClientID   = "demo-rp"
)

// Config captures the full application configuration loaded from YAML with
// environment overrides applied on top.
type Config struct {
	Server         ServerConfig         `yaml:"server"`
	IdP            IdPConfig            `yaml:"idp"`
	RelyingParties []RelyingPartyConfig `yaml:"relying_parties" env:"-"`
}

// ServerConfig controls listener, TLS, and HTTP concerns.
type ServerConfig struct {
	PublicHost      string    `yaml:"public_host" env:"FEDCMD_PUBLIC_HOST"`
	DevListenAddr   string    `yaml:"dev_listen_addr" env:"FEDCMD_DEV_LISTEN_ADDR"`
	HTTPListenAddr  string    `yaml:"http_listen_addr" env:"FEDCMD_HTTP_LISTEN_ADDR"`
	HTTPSListenAddr string    `yaml:"https_listen_addr" env:"FEDCMD_HTTPS_LISTEN_ADDR"`
	DevMode         bool      `yaml:"dev_mode" env:"FEDCMD_DEV_MODE"`
	TLS             TLSConfig `yaml:"tls"`
}

// TLSConfig defines autocert behaviour for production serving.
type TLSConfig struct {
	Domains  []string `yaml:"domains" env:"FEDCMD_TLS_DOMAINS"`
	Email    string   `yaml:"email" env:"FEDCMD_TLS_EMAIL"`
	CacheDir string   `yaml:"cache_dir" env:"FEDCMD_TLS_CACHE_DIR"`
}

// IdPConfig controls the mock identity provider behaviour.
type IdPConfig struct {
	// BypassSecFetchCheck disables the fetch-metadata origin guard so the
	// endpoints can be poked with curl. Never meaningful outside local work.
	BypassSecFetchCheck bool `yaml:"bypass_sec_fetch_check" env:"FEDCMD_BYPASS_SEC_FETCH_CHECK"`

	DefaultClientID string          `yaml:"default_client_id" env:"FEDCMD_DEFAULT_CLIENT_ID"`
	SessionTTL      string          `yaml:"session_ttl" env:"FEDCMD_SESSION_TTL"`
	Accounts        []AccountConfig `yaml:"accounts" env:"-"`
}

// AccountConfig describes one mock account served by the directory.
type AccountConfig struct {
	ID              string   `yaml:"id"`
	Name            string   `yaml:"name"`
	GivenName       string   `yaml:"given_name"`
	Email           string   `yaml:"email"`
	Picture         string   `yaml:"picture"`
	ApprovedClients []string `yaml:"approved_clients"`
}

// RelyingPartyConfig describes a known relying party and its metadata links.
type RelyingPartyConfig struct {
	ClientID          string `yaml:"client_id"`
	PrivacyPolicyURL  string `yaml:"privacy_policy_url"`
	TermsOfServiceURL string `yaml:"terms_of_service_url"`
}

// LoadConfig reads the YAML config file and applies environment overrides.
// An empty path loads pure defaults plus environment.
func LoadConfig(path string) (Config, error) {
	cfg := defaultConfig()

	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}

		// Use strict unmarshaling to detect unknown fields
		decoder := yaml.NewDecoder(bytes.NewReader(b))
		decoder.KnownFields(true)

		if err := decoder.Decode(&cfg); err != nil {
			if strings.Contains(err.Error(), "field") && strings.Contains(err.Error(), "not found") {
				slog.Error("Configuration contains unknown keys", "error", err, "file", path)
				return Config{}, fmt.Errorf("invalid config: %w (check for typos or deprecated fields)", err)
			}
			slog.Error("Failed to parse configuration", "error", err, "file", path)
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("apply env overrides: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		slog.Error("Configuration validation failed", "error", err)
		return Config{}, err
	}

	return cfg, nil
}

func defaultConfig() Config {
	return Config{
		Server: ServerConfig{
			DevListenAddr:   "127.0.0.1:8080",
			HTTPListenAddr:  ":80",
			HTTPSListenAddr: ":443",
			DevMode:         true,
			TLS: TLSConfig{
				Domains:  []string{"localhost"},
				CacheDir: ".autocert",
			},
		},
		IdP: IdPConfig{
			DefaultClientID: DefaultClientID,
		},
	}
}

// DefaultConfig returns the default configuration template.
func DefaultConfig() Config {
	return defaultConfig()
}

// Validate performs sanity checks on the config.
func (c Config) Validate() error {
	if strings.Contains(c.Server.PublicHost, "://") {
		slog.Error("Invalid configuration value", "field", "server.public_host", "value", c.Server.PublicHost, "reason", "must be a bare host, no scheme")
		return fmt.Errorf("server.public_host must be a bare host name, got: %s", c.Server.PublicHost)
	}

	if !c.Server.DevMode {
		if c.Server.PublicHost == "" {
			slog.Error("Missing required configuration for production mode", "field", "server.public_host")
			return errors.New("server.public_host is required in production mode")
		}
		if len(c.Server.TLS.Domains) == 0 {
			slog.Error("Missing required configuration for production mode", "field", "server.tls.domains")
			return errors.New("server.tls.domains must be provided in production")
		}
	}

	if c.IdP.SessionTTL != "" {
		if _, err := time.ParseDuration(c.IdP.SessionTTL); err != nil {
			slog.Error("Invalid session TTL", "field", "idp.session_ttl", "value", c.IdP.SessionTTL, "error", err)
			return fmt.Errorf("idp.session_ttl is not a valid duration: %w", err)
		}
	}

	seen := make(map[string]bool, len(c.IdP.Accounts))
	for i, acct := range c.IdP.Accounts {
		if acct.ID == "" {
			slog.Error("Account missing id", "index", i)
			return fmt.Errorf("idp.accounts[%d]: id is required", i)
		}
		if seen[acct.ID] {
			slog.Error("Duplicate account id", "id", acct.ID, "index", i)
			return fmt.Errorf("idp.accounts[%d]: duplicate id %q", i, acct.ID)
		}
		seen[acct.ID] = true
		if acct.Email == "" {
			slog.Error("Account missing email", "id", acct.ID, "index", i)
			return fmt.Errorf("idp.accounts[%d] (%s): email is required", i, acct.ID)
		}
	}

	for i, rp := range c.RelyingParties {
		if rp.ClientID == "" {
			slog.Error("Relying party missing client_id", "index", i)
			return fmt.Errorf("relying_parties[%d]: client_id is required", i)
		}
	}

	return nil
}

// BaseOrigin returns the externally visible origin for document URLs, or ""
// when no public host is configured. Plain HTTP is only ever served in dev
// mode, so the scheme follows the serving mode.
func (c Config) BaseOrigin() string {
	if c.Server.PublicHost == "" {
		return ""
	}
	return c.scheme() + "://" + c.Server.PublicHost
}

func (c Config) scheme() string {
	if c.Server.DevMode {
		return "http"
	}
	return "https"
}

// SessionTTLOrDefault parses the configured session lifetime, falling back
// to the default when unset or unparseable.
func (c IdPConfig) SessionTTLOrDefault() time.Duration {
	if c.SessionTTL == "" {
		return DefaultSessionTTL
	}
	return parseDuration(c.SessionTTL, DefaultSessionTTL)
}

func parseDuration(val string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(val)
	if err != nil {
		return fallback
	}
	return d
}

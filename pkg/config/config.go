// Package config loads Chronicle's configuration (spec §6.4): a YAML
// file read with gopkg.in/yaml.v3 (the teacher's own choice for
// cmd/warren's resource manifests), then overridden field-by-field from
// environment variables so a container deployment never needs a
// checked-in file to change one value.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// MongoDB holds the ledger store's connection settings.
type MongoDB struct {
	ConnStr      string `yaml:"conn_str"`
	DatabaseName string `yaml:"database_name"`
}

// SyncKindName selects the gap filler's historical-start policy string
// form as read from YAML/env, before it's resolved to gapfiller.ModeKind.
type SyncKindName string

// INX holds the upstream node feed and gap-filler policy settings.
type INX struct {
	ConnectURL          string
	SyncKind            SyncKindName // "from(i)" or "max(n)"
	MaxParallelRequests int
	RetryDelay          time.Duration
}

// API holds the outward HTTP API's settings.
type API struct {
	Enabled         bool
	Port            int
	AllowOrigins    []string
	PublicRoutes    []string
	MaxPageSize     uint32
	JWTPassword     string
	JWTSalt         string
	JWTExpiration   time.Duration
	JWTIdentityFile string
}

// inxYAML and apiYAML mirror INX and API with plain-string durations:
// yaml.v3 has no built-in time.Duration support (it would try to parse
// "5s" as an integer and fail), so decoding goes through these shapes
// and time.ParseDuration rather than relying on it.
type inxYAML struct {
	ConnectURL          string       `yaml:"connect_url"`
	SyncKind            SyncKindName `yaml:"sync_kind"`
	MaxParallelRequests int          `yaml:"max_parallel_requests"`
	RetryDelay          string       `yaml:"retry_delay"`
}

type apiYAML struct {
	Enabled         bool     `yaml:"enabled"`
	Port            int      `yaml:"port"`
	AllowOrigins    []string `yaml:"allow_origins"`
	PublicRoutes    []string `yaml:"public_routes"`
	MaxPageSize     uint32   `yaml:"max_page_size"`
	JWTPassword     string   `yaml:"jwt_password"`
	JWTSalt         string   `yaml:"jwt_salt"`
	JWTExpiration   string   `yaml:"jwt_expiration"`
	JWTIdentityFile string   `yaml:"jwt_identity_file"`
}

// UnmarshalYAML decodes via inxYAML, preserving any RetryDelay already
// set (e.g. by Default()) when the document omits the key.
func (i *INX) UnmarshalYAML(unmarshal func(interface{}) error) error {
	raw := inxYAML{ConnectURL: i.ConnectURL, SyncKind: i.SyncKind, MaxParallelRequests: i.MaxParallelRequests}
	if err := unmarshal(&raw); err != nil {
		return err
	}
	i.ConnectURL, i.SyncKind, i.MaxParallelRequests = raw.ConnectURL, raw.SyncKind, raw.MaxParallelRequests
	if raw.RetryDelay != "" {
		d, err := time.ParseDuration(raw.RetryDelay)
		if err != nil {
			return fmt.Errorf("inx.retry_delay: %w", err)
		}
		i.RetryDelay = d
	}
	return nil
}

// UnmarshalYAML decodes via apiYAML, preserving any JWTExpiration
// already set when the document omits the key.
func (a *API) UnmarshalYAML(unmarshal func(interface{}) error) error {
	raw := apiYAML{
		Enabled: a.Enabled, Port: a.Port, AllowOrigins: a.AllowOrigins, PublicRoutes: a.PublicRoutes,
		MaxPageSize: a.MaxPageSize, JWTPassword: a.JWTPassword, JWTSalt: a.JWTSalt, JWTIdentityFile: a.JWTIdentityFile,
	}
	if err := unmarshal(&raw); err != nil {
		return err
	}
	a.Enabled, a.Port, a.AllowOrigins, a.PublicRoutes = raw.Enabled, raw.Port, raw.AllowOrigins, raw.PublicRoutes
	a.MaxPageSize, a.JWTPassword, a.JWTSalt, a.JWTIdentityFile = raw.MaxPageSize, raw.JWTPassword, raw.JWTSalt, raw.JWTIdentityFile
	if raw.JWTExpiration != "" {
		d, err := time.ParseDuration(raw.JWTExpiration)
		if err != nil {
			return fmt.Errorf("api.jwt_expiration: %w", err)
		}
		a.JWTExpiration = d
	}
	return nil
}

// Config is Chronicle's full configuration tree (spec §6.4).
type Config struct {
	MongoDB MongoDB `yaml:"mongodb"`
	INX     INX     `yaml:"inx"`
	API     API     `yaml:"api"`
}

// Default returns a Config with the values Chronicle falls back to when
// neither a file nor an environment variable sets them.
func Default() Config {
	return Config{
		MongoDB: MongoDB{DatabaseName: "chronicle"},
		INX: INX{
			SyncKind:            "max(50000)",
			MaxParallelRequests: 10,
			RetryDelay:          5 * time.Second,
		},
		API: API{
			Enabled:     true,
			Port:        8080,
			MaxPageSize: 1000,
		},
	}
}

// Load reads path (if non-empty) as YAML into Default(), then applies
// environment variable overrides, and returns the result.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: reading %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parsing %s: %w", path, err)
		}
	}

	applyEnvOverrides(&cfg)
	return cfg, nil
}

// applyEnvOverrides applies CHRONICLE_-prefixed environment variables
// over whatever Load already parsed from YAML, the same override-after-
// file order a 12-factor deployment expects.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("CHRONICLE_MONGODB_CONN_STR"); v != "" {
		cfg.MongoDB.ConnStr = v
	}
	if v := os.Getenv("CHRONICLE_MONGODB_DATABASE_NAME"); v != "" {
		cfg.MongoDB.DatabaseName = v
	}
	if v := os.Getenv("CHRONICLE_INX_CONNECT_URL"); v != "" {
		cfg.INX.ConnectURL = v
	}
	if v := os.Getenv("CHRONICLE_INX_SYNC_KIND"); v != "" {
		cfg.INX.SyncKind = SyncKindName(v)
	}
	if v := os.Getenv("CHRONICLE_INX_MAX_PARALLEL_REQUESTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.INX.MaxParallelRequests = n
		}
	}
	if v := os.Getenv("CHRONICLE_INX_RETRY_DELAY"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.INX.RetryDelay = d
		}
	}
	if v := os.Getenv("CHRONICLE_API_ENABLED"); v != "" {
		cfg.API.Enabled = v == "true" || v == "1"
	}
	if v := os.Getenv("CHRONICLE_API_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.API.Port = n
		}
	}
	if v := os.Getenv("CHRONICLE_API_ALLOW_ORIGINS"); v != "" {
		cfg.API.AllowOrigins = strings.Split(v, ",")
	}
	if v := os.Getenv("CHRONICLE_API_PUBLIC_ROUTES"); v != "" {
		cfg.API.PublicRoutes = strings.Split(v, ",")
	}
	if v := os.Getenv("CHRONICLE_API_JWT_PASSWORD"); v != "" {
		cfg.API.JWTPassword = v
	}
	if v := os.Getenv("CHRONICLE_API_JWT_SALT"); v != "" {
		cfg.API.JWTSalt = v
	}
	if v := os.Getenv("CHRONICLE_API_JWT_EXPIRATION"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.API.JWTExpiration = d
		}
	}
	if v := os.Getenv("CHRONICLE_API_JWT_IDENTITY_FILE"); v != "" {
		cfg.API.JWTIdentityFile = v
	}
}

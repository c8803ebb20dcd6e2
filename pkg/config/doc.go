/*
Package config loads Chronicle's configuration tree (spec §6.4): a YAML
file merged onto hardcoded defaults, then overridden field-by-field from
CHRONICLE_-prefixed environment variables, the same override order the
teacher's own deployment configuration expects (file for the common case,
environment for the one value a container orchestrator needs to flip).

# Core Components

Config:
  - MongoDB: store connection string and database name.
  - INX: upstream node endpoint, historical-sync policy string
    ("from(i)"/"max(n)"), gap-filler concurrency and retry delay.
  - API: HTTP façade settings (port, CORS origins, public routes, page
    size cap) and JWT auth settings.

Default:
  - The fallback values used when neither a file nor an environment
    variable sets a key.

Load:
  - Reads an optional YAML file over Default(), then applies environment
    overrides, returning the fully resolved Config.

GapFillerConfig:
  - Resolves INX.SyncKind's string syntax into a gapfiller.Config, the
    boundary between this package's string-based surface and the gap
    filler's typed policy.

# Usage

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal(err.Error())
	}
	gfc, err := cfg.GapFillerConfig()

# Design Patterns

Custom YAML unmarshaling for time.Duration:
  - gopkg.in/yaml.v3 has no built-in time.Duration support, so INX and API
    implement UnmarshalYAML through intermediate string-typed shapes and
    time.ParseDuration, rather than asking every deployment to write
    nanosecond integers into a config file.
*/
package config

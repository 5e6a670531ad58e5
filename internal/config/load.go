package config

import (
	"bytes"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	derrors "git.home.luguber.info/inful/puggle/internal/foundation/errors"
)

// Load reads, defaults and validates the configuration at path.
// ${VAR} references are expanded after .env files are loaded.
func Load(path string) (*Config, error) {
	if err := loadEnvFiles(); err != nil {
		slog.Warn("Failed to load environment file", slog.String("error", err.Error()))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, derrors.ConfigError("configuration file not found").
				WithCause(err).
				WithContext("path", path).
				Build()
		}
		return nil, derrors.IOError(err, "failed to read config file").WithContext("path", path).Build()
	}

	cfg, err := Parse([]byte(os.ExpandEnv(string(data))))
	if err != nil {
		if ce, ok := derrors.AsClassified(err); ok {
			return nil, ce.WithContext("path", path)
		}
		return nil, err
	}
	return cfg, nil
}

// Parse decodes YAML configuration data, applies defaults and validates it.
func Parse(data []byte) (*Config, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var cfg Config
	if err := dec.Decode(&cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, derrors.ConfigError("configuration file is empty").Build()
		}
		return nil, derrors.ConfigError("failed to parse configuration").WithCause(err).Build()
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Preview.Host == "" {
		c.Preview.Host = defaultPreviewHost
	}
	if c.Preview.Port == 0 {
		c.Preview.Port = defaultPreviewPort
	}
}

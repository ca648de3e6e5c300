package config

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
	"github.com/pseudomuto/chm/pkg/clickhouse"
	"github.com/pseudomuto/chm/pkg/consts"
	"github.com/pseudomuto/chm/pkg/migrator"
	"gopkg.in/yaml.v3"
)

type (
	// Config holds the settings required to connect to ClickHouse.
	//
	// The same structure is populated from command line flags, environment
	// variables and the config file persisted by `chm setup` (chm.toml).
	Config struct {
		// URL is the ClickHouse address. Accepts host:port, clickhouse://,
		// tcp://, http:// and https:// forms.
		URL string `toml:"url" yaml:"url"`

		// User is the ClickHouse user name
		User string `toml:"user,omitempty" yaml:"user,omitempty"`

		// Password is the ClickHouse password
		Password string `toml:"password,omitempty" yaml:"password,omitempty"`

		// Database is the default database for the session
		Database string `toml:"database,omitempty" yaml:"database,omitempty"`

		// CAFile, CertFile and KeyFile enable mTLS when all three are set
		CAFile   string `toml:"ca_file,omitempty" yaml:"ca_file,omitempty"`
		CertFile string `toml:"cert_file,omitempty" yaml:"cert_file,omitempty"`
		KeyFile  string `toml:"key_file,omitempty" yaml:"key_file,omitempty"`
	}

	// Format identifies the encoding of a config file.
	Format string
)

const (
	// FormatTOML is the default encoding, used for chm.toml.
	FormatTOML Format = "toml"

	// FormatYAML is used for chm.yaml and chm.yml.
	FormatYAML Format = "yaml"
)

// FormatOf returns the config format implied by the file extension of path.
// Anything other than .yaml/.yml is treated as TOML.
func FormatOf(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatTOML
	}
}

// LoadConfig decodes a Config from r using the given format.
//
// Example:
//
//	cfg, err := config.LoadConfig(strings.NewReader(`url = "localhost:9000"`), config.FormatTOML)
//	if err != nil {
//		log.Fatal(err)
//	}
func LoadConfig(r io.Reader, format Format) (*Config, error) {
	var cfg Config

	switch format {
	case FormatYAML:
		if err := yaml.NewDecoder(r).Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, errors.Wrap(err, "failed to unmarshal yaml config")
		}
	case FormatTOML:
		if _, err := toml.NewDecoder(r).Decode(&cfg); err != nil {
			return nil, errors.Wrap(err, "failed to unmarshal toml config")
		}
	default:
		return nil, errors.Errorf("unsupported config format: %s", format)
	}

	return &cfg, nil
}

// LoadConfigFile loads a Config from the file at path, picking the decoder
// from the file extension.
func LoadConfigFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open file: %s", path)
	}
	defer func() { _ = f.Close() }()

	return LoadConfig(f, FormatOf(path))
}

// Save writes the config to path, encoding it according to the extension.
func (c *Config) Save(path string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, consts.ModeSecret)
	if err != nil {
		return errors.Wrapf(err, "failed to create config file: %s", path)
	}
	defer func() { _ = f.Close() }()

	if FormatOf(path) == FormatYAML {
		enc := yaml.NewEncoder(f)
		if err := enc.Encode(c); err != nil {
			return errors.Wrap(err, "failed to write yaml config")
		}
		return errors.Wrap(enc.Close(), "failed to close yaml encoder")
	}

	if err := toml.NewEncoder(f).Encode(c); err != nil {
		return errors.Wrap(err, "failed to write toml config")
	}

	return nil
}

// Merge fills every empty field of c with the corresponding value from
// fallback. Values already set on c win.
func (c *Config) Merge(fallback *Config) {
	if fallback == nil {
		return
	}

	fill := func(dst *string, src string) {
		if *dst == "" {
			*dst = src
		}
	}

	fill(&c.URL, fallback.URL)
	fill(&c.User, fallback.User)
	fill(&c.Password, fallback.Password)
	fill(&c.Database, fallback.Database)
	fill(&c.CAFile, fallback.CAFile)
	fill(&c.CertFile, fallback.CertFile)
	fill(&c.KeyFile, fallback.KeyFile)
}

// Validate ensures the required connection settings are present.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.URL) == "" {
		return errors.Wrapf(migrator.ErrBadInput, "missing ClickHouse URL (use --url, %s or %s)", consts.EnvURL, consts.ConfigFile)
	}

	tls := []string{c.CAFile, c.CertFile, c.KeyFile}
	set := 0
	for _, v := range tls {
		if v != "" {
			set++
		}
	}
	if set != 0 && set != len(tls) {
		return errors.Wrap(migrator.ErrBadInput, "ca_file, cert_file and key_file must be provided together")
	}

	return nil
}

// ClientOptions returns the connection overrides and mTLS files in the form
// the ClickHouse client expects.
func (c *Config) ClientOptions() clickhouse.ClientOptions {
	return clickhouse.ClientOptions{
		User:     c.User,
		Password: c.Password,
		Database: c.Database,
		TLSSettings: clickhouse.TLSSettings{
			CAFile:   c.CAFile,
			CertFile: c.CertFile,
			KeyFile:  c.KeyFile,
		},
	}
}

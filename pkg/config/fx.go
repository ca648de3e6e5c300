package config

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/pseudomuto/chm/pkg/consts"
	"go.uber.org/fx"
)

var Module = fx.Module("config",
	fx.Provide(NewLoader),
	// .env must be loaded before the CLI reads flag sources from the environment.
	fx.Invoke(LoadDotEnv),
)

// Loader resolves the effective connection config for a migrations root.
type Loader struct {
	// Files are the config file names looked up in the migrations root, in order.
	Files []string
}

// NewLoader returns a Loader that recognizes the default config file names.
func NewLoader() *Loader {
	return &Loader{Files: consts.ConfigFiles}
}

// Find returns the path of the first config file present in root.
func (l *Loader) Find(root string) (string, bool) {
	for _, name := range l.Files {
		path := filepath.Join(root, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, true
		}
	}

	return "", false
}

// Load merges overrides (flags and environment) on top of the config file
// found in root, if any, and validates the result.
//
// Example:
//
//	cfg, err := config.NewLoader().Load("ch_migrations", config.Config{URL: "localhost:9000"})
//	if err != nil {
//		log.Fatal(err)
//	}
func (l *Loader) Load(root string, overrides Config) (*Config, error) {
	cfg := overrides

	if path, ok := l.Find(root); ok {
		fileCfg, err := LoadConfigFile(path)
		if err != nil {
			return nil, err
		}
		cfg.Merge(fileCfg)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadDotEnv loads a .env file from the working directory when present.
func LoadDotEnv() error {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "failed to load .env")
	}

	return nil
}

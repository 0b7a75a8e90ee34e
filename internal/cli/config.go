package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/larder/internal/paths"
	"github.com/mesh-intelligence/larder/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	configFileExt  = "config.yaml"

	defaultAdapterName = "local"
)

// configHeader prefixes the config.yaml written by init.
const configHeader = `# larder configuration
#
# format: msgpack or cbor
# adapters: kinds memory, disk, sqlite, bundle, objstore. Lower priority
# values come first. Relative paths resolve against this directory.

`

// envOverrides holds settings that the environment may override.
type envOverrides struct {
	Format types.Format `env:"LARDER_FORMAT"`
}

var errNotInitialized = errors.New("larder is not initialized; run `larder init`")

// configDir resolves the configuration directory from flag, env or default.
func (a *app) configDir() (string, error) {
	return paths.ResolveConfigDir(a.flags.configDir)
}

// loadConfig reads config.yaml from configDir with viper and applies
// environment overrides. A missing file means init has not run.
func loadConfig(configDir string) (types.Config, error) {
	v := viper.New()
	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return types.Config{}, errNotInitialized
		}
		return types.Config{}, fmt.Errorf("%w: read config: %v", types.ErrConfiguration, err)
	}

	var cfg types.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return types.Config{}, fmt.Errorf("%w: decode config: %v", types.ErrConfiguration, err)
	}

	var overrides envOverrides
	if err := env.Parse(&overrides); err != nil {
		return types.Config{}, fmt.Errorf("%w: parse env: %v", types.ErrConfiguration, err)
	}
	if overrides.Format != "" {
		cfg.Format = overrides.Format
	}
	return cfg, cfg.Validate()
}

// defaultConfig is the configuration written by init: a single disk
// adapter rooted at dataDir.
func defaultConfig(dataDir string) types.Config {
	return types.Config{
		Format: types.DefaultFormat,
		Adapters: []types.AdapterConfig{
			{Name: defaultAdapterName, Kind: types.KindDisk, Priority: 0, Path: dataDir},
		},
	}
}

// writeConfigIfMissing creates config.yaml with default values if the file
// does not exist. It reports whether the file was written.
func writeConfigIfMissing(configDir, dataDir string) (bool, error) {
	path := filepath.Join(configDir, configFileExt)
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return false, fmt.Errorf("stat config file: %w", err)
	}

	data, err := yaml.Marshal(defaultConfig(dataDir))
	if err != nil {
		return false, fmt.Errorf("marshal config: %w", err)
	}
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return false, fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(path, append([]byte(configHeader), data...), 0o644); err != nil {
		return false, err
	}
	return true, nil
}

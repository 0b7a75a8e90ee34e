package types

import "fmt"

// Adapter kinds understood by the configuration layer.
const (
	KindMemory   = "memory"
	KindDisk     = "disk"
	KindSQLite   = "sqlite"
	KindBundle   = "bundle"
	KindObjStore = "objstore"
)

// Config describes a persistence system: the serialization format and the
// adapters to register.
type Config struct {
	Format   Format          `json:"format" yaml:"format" mapstructure:"format"`
	Adapters []AdapterConfig `json:"adapters" yaml:"adapters" mapstructure:"adapters"`
}

// AdapterConfig describes one adapter. Path is the root directory for disk
// and bundle adapters and the database file for sqlite. URL and Bucket
// select a NATS object store.
type AdapterConfig struct {
	Name     string `json:"name" yaml:"name" mapstructure:"name"`
	Kind     string `json:"kind" yaml:"kind" mapstructure:"kind"`
	Priority int    `json:"priority" yaml:"priority" mapstructure:"priority"`
	Enabled  *bool  `json:"enabled,omitempty" yaml:"enabled,omitempty" mapstructure:"enabled"`
	Path     string `json:"path,omitempty" yaml:"path,omitempty" mapstructure:"path"`
	URL      string `json:"url,omitempty" yaml:"url,omitempty" mapstructure:"url"`
	Bucket   string `json:"bucket,omitempty" yaml:"bucket,omitempty" mapstructure:"bucket"`
}

// Config validation errors. Each matches ErrConfiguration.
var (
	ErrFormatUnknown      = fmt.Errorf("%w: unknown format", ErrConfiguration)
	ErrAdapterNameEmpty   = fmt.Errorf("%w: adapter name must not be empty", ErrConfiguration)
	ErrAdapterKindUnknown = fmt.Errorf("%w: unknown adapter kind", ErrConfiguration)
	ErrAdapterPathEmpty   = fmt.Errorf("%w: adapter path must not be empty", ErrConfiguration)
	ErrAdapterURLEmpty    = fmt.Errorf("%w: adapter url and bucket must not be empty", ErrConfiguration)
)

// knownKinds lists the adapter kinds that Validate accepts.
var knownKinds = map[string]bool{
	KindMemory:   true,
	KindDisk:     true,
	KindSQLite:   true,
	KindBundle:   true,
	KindObjStore: true,
}

// IsEnabled reports whether the adapter is enabled. Adapters are enabled
// unless explicitly disabled.
func (a AdapterConfig) IsEnabled() bool {
	return a.Enabled == nil || *a.Enabled
}

// Validate checks that the adapter description is well-formed.
func (a AdapterConfig) Validate() error {
	if a.Name == "" {
		return ErrAdapterNameEmpty
	}
	if !knownKinds[a.Kind] {
		return ErrAdapterKindUnknown
	}
	switch a.Kind {
	case KindDisk, KindSQLite, KindBundle:
		if a.Path == "" {
			return ErrAdapterPathEmpty
		}
	case KindObjStore:
		if a.URL == "" || a.Bucket == "" {
			return ErrAdapterURLEmpty
		}
	}
	return nil
}

// EffectiveFormat returns the configured format or DefaultFormat.
func (c Config) EffectiveFormat() Format {
	if c.Format == "" {
		return DefaultFormat
	}
	return c.Format
}

// Validate checks that the Config is well-formed. Returned errors match
// ErrConfiguration.
func (c Config) Validate() error {
	if !knownFormats[c.EffectiveFormat()] {
		return ErrFormatUnknown
	}
	for _, a := range c.Adapters {
		if err := a.Validate(); err != nil {
			return fmt.Errorf("adapter %q: %w", a.Name, err)
		}
	}
	return nil
}

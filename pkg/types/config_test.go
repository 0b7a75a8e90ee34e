package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func boolPtr(b bool) *bool { return &b }

func TestAdapterConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  AdapterConfig
		wantErr error
	}{
		{
			name:    "empty name",
			config:  AdapterConfig{Kind: KindMemory},
			wantErr: ErrAdapterNameEmpty,
		},
		{
			name:    "unknown kind",
			config:  AdapterConfig{Name: "a", Kind: "s3"},
			wantErr: ErrAdapterKindUnknown,
		},
		{
			name:   "memory needs nothing else",
			config: AdapterConfig{Name: "a", Kind: KindMemory},
		},
		{
			name:    "disk without path",
			config:  AdapterConfig{Name: "a", Kind: KindDisk},
			wantErr: ErrAdapterPathEmpty,
		},
		{
			name:   "disk with path",
			config: AdapterConfig{Name: "a", Kind: KindDisk, Path: "/tmp/saves"},
		},
		{
			name:    "sqlite without path",
			config:  AdapterConfig{Name: "a", Kind: KindSQLite},
			wantErr: ErrAdapterPathEmpty,
		},
		{
			name:    "bundle without path",
			config:  AdapterConfig{Name: "a", Kind: KindBundle},
			wantErr: ErrAdapterPathEmpty,
		},
		{
			name:    "objstore without bucket",
			config:  AdapterConfig{Name: "a", Kind: KindObjStore, URL: "nats://localhost:4222"},
			wantErr: ErrAdapterURLEmpty,
		},
		{
			name:   "objstore complete",
			config: AdapterConfig{Name: "a", Kind: KindObjStore, URL: "nats://localhost:4222", Bucket: "saves"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
			assert.ErrorIs(t, err, ErrConfiguration)
		})
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr error
	}{
		{
			name:   "empty config uses default format",
			config: Config{},
		},
		{
			name:   "cbor",
			config: Config{Format: FormatCBOR},
		},
		{
			name:    "unknown format",
			config:  Config{Format: "xml"},
			wantErr: ErrFormatUnknown,
		},
		{
			name: "invalid adapter",
			config: Config{Adapters: []AdapterConfig{
				{Name: "ok", Kind: KindMemory},
				{Name: "broken", Kind: KindDisk},
			}},
			wantErr: ErrAdapterPathEmpty,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
			assert.ErrorIs(t, err, ErrConfiguration)
		})
	}
}

func TestConfigValidate_NamesFailingAdapter(t *testing.T) {
	cfg := Config{Adapters: []AdapterConfig{{Name: "saves", Kind: KindDisk}}}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `adapter "saves"`)
}

func TestAdapterConfig_IsEnabled(t *testing.T) {
	assert.True(t, AdapterConfig{}.IsEnabled())
	assert.True(t, AdapterConfig{Enabled: boolPtr(true)}.IsEnabled())
	assert.False(t, AdapterConfig{Enabled: boolPtr(false)}.IsEnabled())
}

func TestConfig_EffectiveFormat(t *testing.T) {
	assert.Equal(t, DefaultFormat, Config{}.EffectiveFormat())
	assert.Equal(t, FormatCBOR, Config{Format: FormatCBOR}.EffectiveFormat())
}

func TestConfig_YAML(t *testing.T) {
	doc := `
format: cbor
adapters:
  - name: local
    kind: disk
    path: /var/lib/larder
  - name: archive
    kind: sqlite
    priority: 10
    enabled: false
    path: /var/lib/larder/archive.db
`
	var cfg Config
	require.NoError(t, yaml.Unmarshal([]byte(doc), &cfg))
	require.NoError(t, cfg.Validate())

	assert.Equal(t, FormatCBOR, cfg.Format)
	require.Len(t, cfg.Adapters, 2)
	assert.True(t, cfg.Adapters[0].IsEnabled())
	assert.Equal(t, 10, cfg.Adapters[1].Priority)
	assert.False(t, cfg.Adapters[1].IsEnabled())
}

package paths

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakePlatform replaces the platform lookups for the duration of a test.
func fakePlatform(t *testing.T, goos string, env map[string]string) {
	t.Helper()
	saved := platformDir
	t.Cleanup(func() { platformDir = saved })

	platformDir.goos = goos
	platformDir.getenv = func(k string) string { return env[k] }
	platformDir.homeDir = func() (string, error) { return "/home/ada", nil }
	platformDir.userConfigDir = func() (string, error) { return "/Users/ada/Library/Application Support", nil }
}

func TestDefaultDirs(t *testing.T) {
	tests := []struct {
		name       string
		goos       string
		env        map[string]string
		wantConfig string
		wantData   string
	}{
		{
			name:       "linux XDG variables",
			goos:       "linux",
			env:        map[string]string{"XDG_CONFIG_HOME": "/xdg/config", "XDG_DATA_HOME": "/xdg/data"},
			wantConfig: "/xdg/config/larder",
			wantData:   "/xdg/data/larder",
		},
		{
			name:       "linux home fallback",
			goos:       "linux",
			wantConfig: "/home/ada/.config/larder",
			wantData:   "/home/ada/.local/share/larder",
		},
		{
			name:       "darwin",
			goos:       "darwin",
			env:        map[string]string{"XDG_CONFIG_HOME": "/ignored"},
			wantConfig: "/Users/ada/Library/Application Support/larder",
			wantData:   "/Users/ada/Library/Application Support/larder",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fakePlatform(t, tt.goos, tt.env)

			got, err := DefaultConfigDir()
			require.NoError(t, err)
			assert.Equal(t, filepath.FromSlash(tt.wantConfig), got)

			got, err = DefaultDataDir()
			require.NoError(t, err)
			assert.Equal(t, filepath.FromSlash(tt.wantData), got)
		})
	}
}

func TestDefaultDirs_HomeError(t *testing.T) {
	fakePlatform(t, "linux", nil)
	platformDir.homeDir = func() (string, error) { return "", errors.New("no home") }

	_, err := DefaultConfigDir()
	assert.Error(t, err)
	_, err = DefaultDataDir()
	assert.Error(t, err)
}

func TestResolveConfigDir(t *testing.T) {
	tests := []struct {
		name string
		flag string
		env  string
		want string
	}{
		{name: "flag wins over env", flag: "/explicit/config", env: "/env/config", want: "/explicit/config"},
		{name: "env wins when flag empty", env: "/env/config", want: "/env/config"},
		{name: "platform default when both empty", want: "/xdg/config/larder"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fakePlatform(t, "linux", map[string]string{
				EnvConfigDir:      tt.env,
				"XDG_CONFIG_HOME": "/xdg/config",
			})
			got, err := ResolveConfigDir(tt.flag)
			require.NoError(t, err)
			assert.Equal(t, filepath.FromSlash(tt.want), got)
		})
	}
}

func TestResolveDataDir(t *testing.T) {
	tests := []struct {
		name        string
		flag        string
		configValue string
		env         string
		want        string
	}{
		{name: "flag wins over all", flag: "/flag/data", configValue: "/config/data", env: "/env/data", want: "/flag/data"},
		{name: "config.yaml wins over env", configValue: "/config/data", env: "/env/data", want: "/config/data"},
		{name: "env wins when flag and config empty", env: "/env/data", want: "/env/data"},
		{name: "platform default when all empty", want: "/xdg/data/larder"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fakePlatform(t, "linux", map[string]string{
				EnvDataDir:      tt.env,
				"XDG_DATA_HOME": "/xdg/data",
			})
			got, err := ResolveDataDir(tt.flag, tt.configValue)
			require.NoError(t, err)
			assert.Equal(t, filepath.FromSlash(tt.want), got)
		})
	}
}

func TestResolve_RelativeBecomesAbsolute(t *testing.T) {
	fakePlatform(t, "linux", map[string]string{EnvConfigDir: "relative/env"})

	got, err := ResolveConfigDir("")
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(got), "expected absolute path, got %s", got)

	got, err = ResolveDataDir("", "relative/config")
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(got), "expected absolute path, got %s", got)
}

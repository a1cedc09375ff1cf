package hue

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "hue.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, DefaultSettingsFile, cfg.Settings.Path)
	assert.Equal(t, DefaultAppName, cfg.Pairing.AppName)
	assert.Equal(t, 20, cfg.Pairing.Attempts)
	assert.Equal(t, time.Second, cfg.Pairing.Interval)
	assert.Equal(t, 3*time.Second, cfg.Discovery.Timeout)
	assert.Equal(t, BridgeProduct, cfg.Discovery.Product)
	assert.Equal(t, "messages", cfg.Logging.Verbosity)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig(t *testing.T) {
	t.Run("no file uses defaults", func(t *testing.T) {
		cfg, err := LoadConfig("")
		require.NoError(t, err)
		assert.Equal(t, DefaultConfig(), cfg)
	})

	t.Run("file overrides defaults", func(t *testing.T) {
		path := writeConfig(t, `
settings:
  path: /var/lib/hue/bridge.yaml
pairing:
  app_name: TapLight
  device_name: kitchen
  attempts: 30
  interval: 2s
discovery:
  timeout: 5s
  mdns: true
logging:
  verbosity: debug
http:
  timeout: 4s
`)
		cfg, err := LoadConfig(path)
		require.NoError(t, err)
		assert.Equal(t, "/var/lib/hue/bridge.yaml", cfg.Settings.Path)
		assert.Equal(t, "TapLight", cfg.Pairing.AppName)
		assert.Equal(t, "kitchen", cfg.Pairing.DeviceName)
		assert.Equal(t, 30, cfg.Pairing.Attempts)
		assert.Equal(t, 2*time.Second, cfg.Pairing.Interval)
		assert.Equal(t, 5*time.Second, cfg.Discovery.Timeout)
		assert.True(t, cfg.Discovery.MDNS)
		assert.Equal(t, BridgeProduct, cfg.Discovery.Product, "unset keys keep defaults")
		assert.Equal(t, "debug", cfg.Logging.Verbosity)
		assert.Equal(t, 4*time.Second, cfg.HTTP.Timeout)
	})

	t.Run("environment overrides file", func(t *testing.T) {
		path := writeConfig(t, "logging:\n  verbosity: debug\n")
		t.Setenv("HUE_BRIDGE_ADDRESS", "192.168.1.20")
		t.Setenv("HUE_BRIDGE_CREDENTIAL", "abc")
		t.Setenv("HUE_SETTINGS_PATH", "/tmp/bridge.json")
		t.Setenv("HUE_VERBOSITY", "silent")

		cfg, err := LoadConfig(path)
		require.NoError(t, err)
		assert.Equal(t, "192.168.1.20", cfg.Bridge.Address)
		assert.Equal(t, "abc", cfg.Bridge.Credential)
		assert.Equal(t, "/tmp/bridge.json", cfg.Settings.Path)
		assert.Equal(t, "silent", cfg.Logging.Verbosity)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
		assert.Error(t, err)
	})

	t.Run("malformed YAML", func(t *testing.T) {
		_, err := LoadConfig(writeConfig(t, "pairing: [not a map"))
		assert.Error(t, err)
	})

	t.Run("invalid values", func(t *testing.T) {
		_, err := LoadConfig(writeConfig(t, "logging:\n  verbosity: loud\n"))
		assert.ErrorIs(t, err, ErrInvalidConfig)
	})
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"negative attempts", func(c *Config) { c.Pairing.Attempts = -1 }},
		{"negative interval", func(c *Config) { c.Pairing.Interval = -time.Second }},
		{"negative discovery timeout", func(c *Config) { c.Discovery.Timeout = -time.Second }},
		{"address without credential", func(c *Config) { c.Bridge.Address = "192.168.1.20" }},
		{"credential without address", func(c *Config) { c.Bridge.Credential = "abc" }},
		{"unknown verbosity", func(c *Config) { c.Logging.Verbosity = "chatty" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}
}

func TestConfig_Options(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Settings.Path = filepath.Join(t.TempDir(), "bridge.json")

		client := NewClient(cfg.Options()...)
		assert.Equal(t, VerbosityMessages, client.Verbosity())
		assert.False(t, client.Connected())

		store, ok := client.store.(*FileSettingsStore)
		require.True(t, ok)
		assert.Equal(t, cfg.Settings.Path, store.Path())

		ssdp, ok := client.discoverer.(*SSDPDiscovery)
		require.True(t, ok)
		assert.Equal(t, BridgeProduct, ssdp.Product)
		assert.Equal(t, 3*time.Second, ssdp.Timeout)
	})

	t.Run("pinned bridge and mdns", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Bridge = BridgeConfig{Address: "192.168.1.20", Credential: "abc"}
		cfg.Discovery.MDNS = true
		cfg.Pairing.AppName = "TapLight"
		cfg.Pairing.DeviceName = "kitchen"
		cfg.Logging.Verbosity = "silent"
		cfg.HTTP.Timeout = 2 * time.Second

		client := NewClient(cfg.Options()...)
		assert.True(t, client.Connected())
		assert.Equal(t, VerbositySilent, client.Verbosity())
		assert.Equal(t, "TapLight#kitchen", client.pairer.DeviceType.String())
		assert.Equal(t, 2*time.Second, client.httpClient.Timeout)

		multi, ok := client.discoverer.(MultiDiscoverer)
		require.True(t, ok)
		require.Len(t, multi, 2)
		assert.IsType(t, &SSDPDiscovery{}, multi[0])
		assert.IsType(t, &MDNSDiscovery{}, multi[1])
	})
}

package hue

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the file form of the client options.
// It is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Bridge    BridgeConfig    `yaml:"bridge"`
	Settings  SettingsConfig  `yaml:"settings"`
	Pairing   PairingConfig   `yaml:"pairing"`
	Discovery DiscoveryConfig `yaml:"discovery"`
	Logging   LoggingConfig   `yaml:"logging"`
	HTTP      HTTPConfig      `yaml:"http"`
}

// BridgeConfig pins the bridge instead of discovering and pairing with it.
type BridgeConfig struct {
	Address    string `yaml:"address"`
	Credential string `yaml:"credential"`
}

// SettingsConfig selects where the session is persisted.
type SettingsConfig struct {
	Path string `yaml:"path"`
}

// PairingConfig contains the application identity and polling policy.
type PairingConfig struct {
	AppName    string        `yaml:"app_name"`
	DeviceName string        `yaml:"device_name"`
	Attempts   int           `yaml:"attempts"`
	Interval   time.Duration `yaml:"interval"`
}

// DiscoveryConfig contains SSDP and mDNS settings.
type DiscoveryConfig struct {
	Timeout time.Duration `yaml:"timeout"`
	Product string        `yaml:"product"`
	// MDNS adds an mDNS lookup after SSDP finds nothing.
	MDNS bool `yaml:"mdns"`
}

// LoggingConfig contains the diagnostic output level.
type LoggingConfig struct {
	Verbosity string `yaml:"verbosity"`
}

// HTTPConfig contains the resource request timeout.
type HTTPConfig struct {
	Timeout time.Duration `yaml:"timeout"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		Settings: SettingsConfig{
			Path: DefaultSettingsFile,
		},
		Pairing: PairingConfig{
			AppName:  DefaultAppName,
			Attempts: DefaultPairingAttempts,
			Interval: DefaultPairingInterval,
		},
		Discovery: DiscoveryConfig{
			Timeout: DefaultDiscoveryTimeout,
			Product: BridgeProduct,
		},
		Logging: LoggingConfig{
			Verbosity: VerbosityMessages.String(),
		},
		HTTP: HTTPConfig{
			Timeout: DefaultTimeout,
		},
	}
}

// LoadConfig reads a YAML file over the defaults, then applies environment
// overrides. An empty path skips the file.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("HUE_BRIDGE_ADDRESS"); v != "" {
		cfg.Bridge.Address = v
	}
	if v := os.Getenv("HUE_BRIDGE_CREDENTIAL"); v != "" {
		cfg.Bridge.Credential = v
	}
	if v := os.Getenv("HUE_SETTINGS_PATH"); v != "" {
		cfg.Settings.Path = v
	}
	if v := os.Getenv("HUE_VERBOSITY"); v != "" {
		cfg.Logging.Verbosity = v
	}
}

// Validate checks the configuration for values the client cannot use.
func (c *Config) Validate() error {
	if _, err := ParseVerbosity(c.Logging.Verbosity); err != nil {
		return err
	}
	if c.Pairing.Attempts < 0 {
		return fmt.Errorf("%w: pairing.attempts must not be negative", ErrInvalidConfig)
	}
	if c.Pairing.Interval < 0 {
		return fmt.Errorf("%w: pairing.interval must not be negative", ErrInvalidConfig)
	}
	if c.Discovery.Timeout < 0 {
		return fmt.Errorf("%w: discovery.timeout must not be negative", ErrInvalidConfig)
	}
	if (c.Bridge.Address == "") != (c.Bridge.Credential == "") {
		return fmt.Errorf("%w: bridge.address and bridge.credential must be set together", ErrInvalidConfig)
	}
	return nil
}

// Options converts the configuration to client options.
func (c *Config) Options() []Option {
	verbosity, err := ParseVerbosity(c.Logging.Verbosity)
	if err != nil {
		verbosity = VerbosityMessages
	}

	ssdp := NewSSDPDiscovery(c.Discovery.Timeout)
	ssdp.Product = c.Discovery.Product
	var discoverer Discoverer = ssdp
	if c.Discovery.MDNS {
		discoverer = MultiDiscoverer{ssdp, NewMDNSDiscovery(c.Discovery.Timeout)}
	}

	opts := []Option{
		WithVerbosity(verbosity),
		WithSettingsStore(NewFileSettingsStore(c.Settings.Path)),
		WithDiscoverer(discoverer),
		WithDeviceType(c.Pairing.AppName, c.Pairing.DeviceName),
		WithPairingPolicy(c.Pairing.Attempts, c.Pairing.Interval),
	}
	if c.HTTP.Timeout > 0 {
		opts = append(opts, WithTimeout(c.HTTP.Timeout))
	}
	if c.Bridge.Address != "" {
		opts = append(opts, WithAddress(c.Bridge.Address), WithCredential(c.Bridge.Credential))
	}
	return opts
}

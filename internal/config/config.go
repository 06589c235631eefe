// Package config loads the smbcore client configuration.
//
// Configuration sources, in order of precedence:
//  1. Environment variables (SMBCORE_*)
//  2. Configuration file (YAML)
//  3. Default values
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"

	"github.com/marmos91/smbcore/internal/bytesize"
)

// Config is the static configuration for the SMB client.
type Config struct {
	// Logging controls log output behavior
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`

	// Metrics configures the Prometheus metrics endpoint
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`

	// Client holds connection and protocol settings
	Client ClientConfig `mapstructure:"client" yaml:"client"`

	// Kerberos configures session authentication
	Kerberos KerberosConfig `mapstructure:"kerberos" yaml:"kerberos"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	// Level is the minimum log level to output.
	// Valid values: DEBUG, INFO, WARN, ERROR (case-insensitive)
	Level string `mapstructure:"level" validate:"required,oneof=DEBUG INFO WARN ERROR debug info warn error" yaml:"level"`

	// Format specifies the log output format: text or json
	Format string `mapstructure:"format" validate:"required,oneof=text json" yaml:"format"`

	// Output specifies where logs are written: stdout, stderr, or a file path
	Output string `mapstructure:"output" validate:"required" yaml:"output"`
}

// MetricsConfig configures the Prometheus metrics HTTP endpoint.
// When Enabled is false, no metrics are collected (zero overhead).
type MetricsConfig struct {
	// Enabled controls whether metrics collection is active
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Port is the HTTP port for the metrics endpoint.
	// Default: 9090
	Port int `mapstructure:"port" validate:"omitempty,min=1,max=65535" yaml:"port"`
}

// ClientConfig holds connection and protocol settings.
type ClientConfig struct {
	// Server is the target host or host:port; port 445 is implied
	Server string `mapstructure:"server" yaml:"server"`

	// Share is the default share to connect, as a plain name or UNC path
	Share string `mapstructure:"share" yaml:"share,omitempty"`

	// DialTimeout bounds the TCP connect.
	// Default: 10s
	DialTimeout time.Duration `mapstructure:"dial_timeout" validate:"omitempty,gt=0" yaml:"dial_timeout"`

	// CallTimeout is the per-call deadline applied to every request.
	// Default: 30s; zero disables call timeouts.
	CallTimeout time.Duration `mapstructure:"call_timeout" yaml:"call_timeout"`

	// RequireSigning advertises mandatory message signing during negotiation
	RequireSigning bool `mapstructure:"require_signing" yaml:"require_signing"`

	// TransferChunk is the READ/WRITE granularity for file transfers,
	// e.g. "64Ki" or "1Mi". Default: 64Ki.
	TransferChunk bytesize.ByteSize `mapstructure:"transfer_chunk" yaml:"transfer_chunk"`
}

// KerberosConfig configures Kerberos session authentication.
type KerberosConfig struct {
	// Realm is the Kerberos realm, e.g. EXAMPLE.COM
	Realm string `mapstructure:"realm" yaml:"realm"`

	// Username is the client principal name without the realm
	Username string `mapstructure:"username" yaml:"username"`

	// KeytabPath authenticates from a keytab instead of a password prompt
	KeytabPath string `mapstructure:"keytab_path" yaml:"keytab_path,omitempty"`

	// Krb5Conf is the path to the Kerberos configuration file.
	// Default: /etc/krb5.conf
	Krb5Conf string `mapstructure:"krb5_conf" yaml:"krb5_conf"`

	// SPN is the target service principal; empty derives cifs/<server>
	SPN string `mapstructure:"spn" yaml:"spn,omitempty"`
}

// Load loads configuration from file, environment, and defaults.
// An empty configPath uses the default location and falls back to defaults
// when no file exists there.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setupViper(v, configPath)

	found, err := readConfigFile(v)
	if err != nil {
		return nil, err
	}
	if !found {
		cfg := Default()
		return cfg, nil
	}

	var cfg Config
	hooks := mapstructure.ComposeDecodeHookFunc(
		durationDecodeHook(),
		mapstructure.TextUnmarshallerHookFunc(),
	)
	if err := v.Unmarshal(&cfg, viper.DecodeHook(hooks)); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

// Default returns the configuration used when no file is present
func Default() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills in zero-valued fields with their defaults
func ApplyDefaults(cfg *Config) {
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "INFO"
	}
	cfg.Logging.Level = strings.ToUpper(cfg.Logging.Level)
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "text"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stderr"
	}

	if cfg.Metrics.Port == 0 {
		cfg.Metrics.Port = 9090
	}

	if cfg.Client.DialTimeout == 0 {
		cfg.Client.DialTimeout = 10 * time.Second
	}
	if cfg.Client.CallTimeout == 0 {
		cfg.Client.CallTimeout = 30 * time.Second
	}
	if cfg.Client.TransferChunk == 0 {
		cfg.Client.TransferChunk = 64 * bytesize.KiB
	}

	if cfg.Kerberos.Krb5Conf == "" {
		cfg.Kerberos.Krb5Conf = "/etc/krb5.conf"
	}
}

// Validate checks the configuration against its struct tags
func Validate(cfg *Config) error {
	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return err
	}
	return nil
}

func setupViper(v *viper.Viper, configPath string) {
	// SMBCORE_LOGGING_LEVEL=DEBUG overrides logging.level and so on
	v.SetEnvPrefix("SMBCORE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(getConfigDir())
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
}

// readConfigFile reads the config file if one exists; a missing file is not
// an error
func readConfigFile(v *viper.Viper) (bool, error) {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return false, nil
		}
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read config file: %w", err)
	}
	return true, nil
}

// durationDecodeHook converts config strings like "30s" into time.Duration
func durationDecodeHook() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != reflect.TypeOf(time.Duration(0)) {
			return data, nil
		}

		switch v := data.(type) {
		case string:
			return time.ParseDuration(v)
		case int:
			return time.Duration(v), nil
		case int64:
			return time.Duration(v), nil
		case float64:
			return time.Duration(v), nil
		default:
			return data, nil
		}
	}
}

// getConfigDir returns $XDG_CONFIG_HOME/smbcore or ~/.config/smbcore
func getConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "smbcore")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "smbcore")
}

// GetDefaultConfigPath returns the default configuration file path
func GetDefaultConfigPath() string {
	return filepath.Join(getConfigDir(), "config.yaml")
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Logging.Level != "INFO" {
		t.Errorf("Logging.Level = %q, want INFO", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "text" {
		t.Errorf("Logging.Format = %q, want text", cfg.Logging.Format)
	}
	if cfg.Client.DialTimeout != 10*time.Second {
		t.Errorf("Client.DialTimeout = %v, want 10s", cfg.Client.DialTimeout)
	}
	if cfg.Metrics.Port != 9090 {
		t.Errorf("Metrics.Port = %d, want 9090", cfg.Metrics.Port)
	}
}

func TestLoad_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
logging:
  level: debug
  format: json
client:
  server: fileserver.example.com
  share: projects
  dial_timeout: 5s
  require_signing: true
kerberos:
  realm: EXAMPLE.COM
  username: alice
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Logging.Level != "DEBUG" {
		t.Errorf("Logging.Level = %q, want DEBUG (normalized)", cfg.Logging.Level)
	}
	if cfg.Client.Server != "fileserver.example.com" {
		t.Errorf("Client.Server = %q", cfg.Client.Server)
	}
	if cfg.Client.DialTimeout != 5*time.Second {
		t.Errorf("Client.DialTimeout = %v, want 5s", cfg.Client.DialTimeout)
	}
	if !cfg.Client.RequireSigning {
		t.Error("Client.RequireSigning = false, want true")
	}
	if cfg.Kerberos.Realm != "EXAMPLE.COM" {
		t.Errorf("Kerberos.Realm = %q", cfg.Kerberos.Realm)
	}
	if cfg.Kerberos.Krb5Conf != "/etc/krb5.conf" {
		t.Errorf("Kerberos.Krb5Conf = %q, default not applied", cfg.Kerberos.Krb5Conf)
	}
}

func TestLoad_InvalidLogLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("logging:\n  level: chatty\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Fatal("Load() accepted an invalid log level")
	}
}

func TestValidate_DefaultConfig(t *testing.T) {
	if err := Validate(Default()); err != nil {
		t.Errorf("default config must validate, got: %v", err)
	}
}

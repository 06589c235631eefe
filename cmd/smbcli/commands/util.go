package commands

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/marmos91/smbcore/internal/cli/prompt"
	"github.com/marmos91/smbcore/internal/config"
	"github.com/marmos91/smbcore/internal/logger"
	"github.com/marmos91/smbcore/internal/metrics"
	"github.com/marmos91/smbcore/internal/smbclient"
	"github.com/marmos91/smbcore/internal/smbclient/auth"
)

// session bundles a live connection with the resolved configuration for the
// duration of one command.
type session struct {
	client *smbclient.Client
	cfg    *config.Config
}

// loadConfig merges the config file with command line flag overrides
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}

	if server != "" {
		cfg.Client.Server = server
	}
	if share != "" {
		cfg.Client.Share = share
	}
	if username != "" {
		cfg.Kerberos.Username = username
	}
	if realm != "" {
		cfg.Kerberos.Realm = realm
	}
	if keytab != "" {
		cfg.Kerberos.KeytabPath = keytab
	}
	if spn != "" {
		cfg.Kerberos.SPN = spn
	}
	if debug {
		cfg.Logging.Level = "DEBUG"
	}

	if cfg.Client.Server == "" {
		return nil, errors.New("no server configured: pass --server or set client.server in the config file")
	}
	if cfg.Kerberos.Username == "" || cfg.Kerberos.Realm == "" {
		return nil, errors.New("kerberos credentials incomplete: --username and --realm are required")
	}

	return cfg, nil
}

// serviceSPN derives the target service principal from the server address
// when none is configured
func serviceSPN(cfg *config.Config) string {
	if cfg.Kerberos.SPN != "" {
		return cfg.Kerberos.SPN
	}
	host := cfg.Client.Server
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	return "cifs/" + host
}

// newInitiator builds the Kerberos initiator, prompting for a password when
// no keytab is configured
func newInitiator(cfg *config.Config) (auth.Initiator, error) {
	krb := cfg.Kerberos
	target := serviceSPN(cfg)

	if krb.KeytabPath != "" {
		return auth.NewKerberosWithKeytab(krb.Username, krb.Realm, krb.KeytabPath, target, krb.Krb5Conf)
	}

	password, err := prompt.Password(fmt.Sprintf("Password for %s@%s", krb.Username, krb.Realm))
	if err != nil {
		return nil, err
	}
	return auth.NewKerberosWithPassword(krb.Username, krb.Realm, password, target, krb.Krb5Conf)
}

// sharePath normalizes the configured share into a UNC path
func sharePath(cfg *config.Config) string {
	s := cfg.Client.Share
	if strings.HasPrefix(s, `\\`) {
		return s
	}
	host := cfg.Client.Server
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	return `\\` + host + `\` + s
}

// connect dials the server, authenticates, and optionally binds the share.
// Every command starts here.
func connect(needShare bool) (*session, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if needShare && cfg.Client.Share == "" {
		return nil, errors.New("no share configured: pass --share or set client.share in the config file")
	}

	if err := logger.Init(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	}); err != nil {
		return nil, err
	}
	if cfg.Metrics.Enabled {
		metrics.InitRegistry()
		go serveMetrics(cfg.Metrics.Port)
	}

	initiator, err := newInitiator(cfg)
	if err != nil {
		return nil, err
	}

	client, err := smbclient.Dial(cfg.Client.Server, cfg.Client.DialTimeout)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", cfg.Client.Server, err)
	}

	s := &session{client: client, cfg: cfg}

	fut, err := client.Conn().EstablishSession(smbclient.SessionConfig{
		Initiator:      initiator,
		RequireSigning: cfg.Client.RequireSigning,
		Deadline:       s.deadline(),
	})
	if err != nil {
		client.Close()
		return nil, err
	}
	if _, err := s.await(fut); err != nil {
		client.Close()
		return nil, fmt.Errorf("session setup: %w", err)
	}

	if needShare {
		fut, err := client.Conn().ConnectShare(sharePath(cfg), s.deadline())
		if err != nil {
			client.Close()
			return nil, err
		}
		if _, err := s.await(fut); err != nil {
			client.Close()
			return nil, fmt.Errorf("tree connect %s: %w", sharePath(cfg), err)
		}
	}

	return s, nil
}

// deadline returns the per-call deadline from the configured timeout
func (s *session) deadline() time.Time {
	if s.cfg.Client.CallTimeout <= 0 {
		return time.Time{}
	}
	return time.Now().Add(s.cfg.Client.CallTimeout)
}

// serveMetrics exposes /metrics for the lifetime of the command
func serveMetrics(port int) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	if err := http.ListenAndServe(fmt.Sprintf(":%d", port), mux); err != nil {
		logger.Warn("metrics endpoint failed", "port", port, "error", err)
	}
}

// chunkSize returns the configured READ/WRITE transfer granularity
func (s *session) chunkSize() uint32 {
	return uint32(s.cfg.Client.TransferChunk.Uint64())
}

// await drives the connection until the future resolves
func (s *session) await(fut *smbclient.Future) (*smbclient.Response, error) {
	return s.client.Await(fut, s.cfg.Client.CallTimeout)
}

// close logs off and tears down the connection. Errors are ignored; the
// server reclaims the session on disconnect anyway.
func (s *session) close() {
	if fut, err := s.client.Conn().EndSession(s.deadline()); err == nil {
		_, _ = s.await(fut)
	}
	_ = s.client.Close()
}

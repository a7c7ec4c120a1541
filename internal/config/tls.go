package config

import "fmt"

// TLSConfig holds TLS/mTLS configuration for the HTTP server.
type TLSConfig struct {
	Mode             string `mapstructure:"mode"`     // disabled, server, mutual
	CertFile         string `mapstructure:"certFile"` // PEM
	KeyFile          string `mapstructure:"keyFile"`  // PEM
	CAFile           string `mapstructure:"caFile"`   // PEM, required for mutual
	MinVersion       string `mapstructure:"minVersion"`
	ClientAuthPolicy string `mapstructure:"clientAuthPolicy"` // require, request, verify
}

// ValidateTLSConfig checks mode-specific file requirements and the version.
func (c *Config) ValidateTLSConfig() error {
	tls := c.Server.TLS

	switch tls.Mode {
	case "disabled", "":
		return nil
	case "server":
		if err := requireCertAndKey(tls, "server mode"); err != nil {
			return err
		}
	case "mutual":
		if err := requireCertAndKey(tls, "mutual mode"); err != nil {
			return err
		}
		if tls.CAFile == "" {
			return fmt.Errorf("CA certificate is required for mutual TLS mode")
		}
		switch tls.ClientAuthPolicy {
		case "require", "request", "verify", "":
		default:
			return fmt.Errorf("invalid clientAuthPolicy: %s (must be 'require', 'request', or 'verify')", tls.ClientAuthPolicy)
		}
	default:
		return fmt.Errorf("invalid TLS mode: %s (must be 'disabled', 'server', or 'mutual')", tls.Mode)
	}

	switch tls.MinVersion {
	case "", "1.2", "1.3":
		return nil
	default:
		return fmt.Errorf("invalid TLS minVersion: %s (must be '1.2' or '1.3')", tls.MinVersion)
	}
}

func requireCertAndKey(tls TLSConfig, mode string) error {
	if tls.CertFile == "" || tls.KeyFile == "" {
		return fmt.Errorf("TLS certificate and key files are required for %s", mode)
	}
	return nil
}

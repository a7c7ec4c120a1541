package server

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"

	"hirescope/internal/config"
)

// buildTLSConfig loads the server key pair and, in mutual mode, the client
// CA pool. It returns nil for disabled mode.
func buildTLSConfig(cfg config.TLSConfig) (*tls.Config, error) {
	switch cfg.Mode {
	case "", "disabled":
		return nil, nil
	case "server", "mutual":
	default:
		return nil, fmt.Errorf("invalid TLS mode: %s (must be 'disabled', 'server', or 'mutual')", cfg.Mode)
	}

	cert, err := tls.LoadX509KeyPair(cfg.CertFile, cfg.KeyFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load server cert/key: %w", err)
	}

	tlsConfig := &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   minTLSVersion(cfg.MinVersion),
		ClientAuth:   tls.NoClientCert,
	}
	if cfg.Mode != "mutual" {
		return tlsConfig, nil
	}

	pool, err := loadCAPool(cfg.CAFile)
	if err != nil {
		return nil, err
	}
	tlsConfig.ClientCAs = pool
	tlsConfig.ClientAuth = clientAuthPolicy(cfg.ClientAuthPolicy)
	return tlsConfig, nil
}

func loadCAPool(path string) (*x509.CertPool, error) {
	if path == "" {
		return nil, fmt.Errorf("CA certificate is required for mutual TLS mode")
	}
	pem, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read CA file: %w", err)
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(pem) {
		return nil, fmt.Errorf("no certificates found in CA file %s", path)
	}
	return pool, nil
}

func minTLSVersion(v string) uint16 {
	if v == "1.3" {
		return tls.VersionTLS13
	}
	return tls.VersionTLS12
}

func clientAuthPolicy(policy string) tls.ClientAuthType {
	switch policy {
	case "request":
		return tls.RequestClientCert
	case "verify":
		return tls.VerifyClientCertIfGiven
	default:
		return tls.RequireAndVerifyClientCert
	}
}

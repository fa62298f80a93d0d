package counter

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
)

// TLSConfig holds certificate paths for mutual TLS to a remote counter store.
type TLSConfig struct {
	// Enabled determines whether TLS is active.
	// If false, all other fields are ignored.
	Enabled bool `yaml:"enabled" json:"enabled"`

	// CertFile is the path to the client certificate file (PEM format)
	CertFile string `yaml:"certFile" json:"cert_file"`

	// KeyFile is the path to the client private key file (PEM format)
	KeyFile string `yaml:"keyFile" json:"key_file"`

	// CAFile is the path to the certificate authority file (PEM format)
	// used to verify the server certificate
	CAFile string `yaml:"caFile" json:"ca_file"`
}

// Validate checks that all certificate paths are present when TLS is enabled.
func (c *TLSConfig) Validate() error {
	if c == nil || !c.Enabled {
		return nil
	}

	if c.CertFile == "" {
		return fmt.Errorf("TLS cert file is required when TLS is enabled")
	}
	if c.KeyFile == "" {
		return fmt.Errorf("TLS key file is required when TLS is enabled")
	}
	if c.CAFile == "" {
		return fmt.Errorf("TLS CA file is required when TLS is enabled")
	}
	return nil
}

// ClientConfig loads the certificates into a tls.Config. It returns nil when
// TLS is disabled.
func (c *TLSConfig) ClientConfig() (*tls.Config, error) {
	if c == nil || !c.Enabled {
		return nil, nil
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}

	cert, err := tls.LoadX509KeyPair(c.CertFile, c.KeyFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load client certificate: %w", err)
	}

	caData, err := os.ReadFile(c.CAFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read CA certificate: %w", err)
	}

	caPool := x509.NewCertPool()
	if !caPool.AppendCertsFromPEM(caData) {
		return nil, fmt.Errorf("failed to parse CA certificate")
	}

	return &tls.Config{
		Certificates: []tls.Certificate{cert},
		RootCAs:      caPool,
		MinVersion:   tls.VersionTLS12,
	}, nil
}

package clickhouse

import (
	"crypto/tls"
	"crypto/x509"
	"os"

	"github.com/pkg/errors"
)

// HasTLS reports whether every mTLS file is configured.
func (s TLSSettings) HasTLS() bool {
	return s.CAFile != "" && s.CertFile != "" && s.KeyFile != ""
}

// TLSConfig loads the client certificate and CA bundle used for mTLS.
//
// It returns a nil config when no files are configured, leaving any TLS
// settings implied by the DSN (e.g. https:// or secure=true) untouched. A
// partial set of files is an error.
func (s TLSSettings) TLSConfig() (*tls.Config, error) {
	if s == (TLSSettings{}) {
		return nil, nil
	}

	if !s.HasTLS() {
		return nil, errors.New("ca, cert and key files must be provided together for mTLS")
	}

	cert, err := tls.LoadX509KeyPair(s.CertFile, s.KeyFile)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to load client certificate %s", s.CertFile)
	}

	bundle, err := os.ReadFile(s.CAFile)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to read CA file %s", s.CAFile)
	}

	roots := x509.NewCertPool()
	if !roots.AppendCertsFromPEM(bundle) {
		return nil, errors.Errorf("no certificates found in %s", s.CAFile)
	}

	return &tls.Config{
		Certificates: []tls.Certificate{cert},
		RootCAs:      roots,
		MinVersion:   tls.VersionTLS12,
	}, nil
}

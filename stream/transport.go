package stream

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"
)

// Method selects the transport a Stream connects or listens over.
type Method int

const (
	MethodTCP Method = iota
	MethodTLS
	MethodUnix
)

func (m Method) String() string {
	switch m {
	case MethodTCP:
		return "tcp"
	case MethodTLS:
		return "tls"
	case MethodUnix:
		return "unix"
	default:
		return fmt.Sprintf("Method(%d)", int(m))
	}
}

// udsPathRootEnv and its default mirror kdb+'s own convention for
// abstract-namespace-free Unix socket placement: ${root}/kx.${port}.
const udsPathRootEnv = "UDS_PATH_ROOT"
const defaultUDSPathRoot = "/tmp"

// unixSocketPath returns the well-known per-port Unix socket path derived
// from UDS_PATH_ROOT (default /tmp).
func unixSocketPath(port int) string {
	root := os.Getenv(udsPathRootEnv)
	if root == "" {
		root = defaultUDSPathRoot
	}

	return fmt.Sprintf("%s/kx.%d", root, port)
}

// dial opens a client connection to host:port using method, aborting if it
// doesn't complete within timeout (no deadline when timeout is 0). TLS
// material is loaded from TLS_KEY_FILE/TLS_KEY_FILE_SECRET when method is
// MethodTLS.
func dial(method Method, host string, port int, timeout time.Duration) (net.Conn, error) {
	dialer := &net.Dialer{Timeout: timeout}

	switch method {
	case MethodTCP:
		return dialer.Dial("tcp", net.JoinHostPort(host, strconv.Itoa(port)))
	case MethodTLS:
		cfg, err := clientTLSConfig()
		if err != nil {
			return nil, err
		}
		return tls.DialWithDialer(dialer, "tcp", net.JoinHostPort(host, strconv.Itoa(port)), cfg)
	case MethodUnix:
		return dialer.Dial("unix", unixSocketPath(port))
	default:
		return nil, fmt.Errorf("stream: unknown transport method %v", method)
	}
}

// listen opens a listener for method on host:port, for the passive
// (Accept) side of a connection.
func listen(method Method, host string, port int) (net.Listener, error) {
	switch method {
	case MethodTCP:
		return net.Listen("tcp", net.JoinHostPort(host, strconv.Itoa(port)))
	case MethodTLS:
		cfg, err := serverTLSConfig()
		if err != nil {
			return nil, err
		}
		return tls.Listen("tcp", net.JoinHostPort(host, strconv.Itoa(port)), cfg)
	case MethodUnix:
		return net.Listen("unix", unixSocketPath(port))
	default:
		return nil, fmt.Errorf("stream: unknown transport method %v", method)
	}
}

// clientTLSConfig builds a tls.Config for outbound connections. Server
// verification uses the host's root CA pool; a client certificate is
// supplied whenever TLS_KEY_FILE is set (TLS_KEY_FILE_SECRET is read only to
// decrypt an encrypted key block).
func clientTLSConfig() (*tls.Config, error) {
	cfg := &tls.Config{MinVersion: tls.VersionTLS12}

	cert, ok, err := loadKeyPairFromEnv()
	if err != nil {
		return nil, err
	}
	if ok {
		cfg.Certificates = []tls.Certificate{cert}
	}

	return cfg, nil
}

// serverTLSConfig builds a tls.Config for an acceptor. TLS_KEY_FILE must
// name a PEM certificate+key bundle (see loadKeyPairFromEnv); PKCS#12 files
// are not parsed.
func serverTLSConfig() (*tls.Config, error) {
	cert, ok, err := loadKeyPairFromEnv()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("stream: %s not set, required for a TLS acceptor", tlsKeyFileEnv)
	}

	return &tls.Config{
		MinVersion:   tls.VersionTLS12,
		Certificates: []tls.Certificate{cert},
	}, nil
}

const (
	tlsKeyFileEnv       = "TLS_KEY_FILE"
	tlsKeyFileSecretEnv = "TLS_KEY_FILE_SECRET" //nolint:gosec // env var name, not a credential
)

// loadKeyPairFromEnv loads a PEM certificate+key bundle from TLS_KEY_FILE,
// decrypting the key block with TLS_KEY_FILE_SECRET when the PEM key block
// is encrypted. Returns ok=false when TLS_KEY_FILE is unset, which is valid
// for a client that only verifies the server and presents no certificate.
func loadKeyPairFromEnv() (tls.Certificate, bool, error) {
	path := os.Getenv(tlsKeyFileEnv)
	if path == "" {
		return tls.Certificate{}, false, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return tls.Certificate{}, false, fmt.Errorf("stream: reading %s: %w", tlsKeyFileEnv, err)
	}

	certPEM, keyPEM, err := splitCertAndKey(raw, os.Getenv(tlsKeyFileSecretEnv))
	if err != nil {
		return tls.Certificate{}, false, fmt.Errorf("stream: parsing %s: %w", tlsKeyFileEnv, err)
	}

	cert, err := tls.X509KeyPair(certPEM, keyPEM)
	if err != nil {
		return tls.Certificate{}, false, fmt.Errorf("stream: loading %s: %w", tlsKeyFileEnv, err)
	}

	return cert, true, nil
}

// splitCertAndKey walks the PEM blocks in raw, decrypting an encrypted
// private key block with secret if one is found, and returns the
// certificate and key re-encoded as separate PEM byte slices suitable for
// tls.X509KeyPair.
func splitCertAndKey(raw []byte, secret string) (certPEM, keyPEM []byte, err error) {
	rest := raw
	for {
		var block *pem.Block
		block, rest = pem.Decode(rest)
		if block == nil {
			break
		}

		switch {
		case block.Type == "CERTIFICATE":
			certPEM = append(certPEM, pem.EncodeToMemory(block)...)
		case strings.HasSuffix(block.Type, "PRIVATE KEY"):
			if x509.IsEncryptedPEMBlock(block) { //nolint:staticcheck // kdb+ key files use this legacy PEM encryption form
				if secret == "" {
					return nil, nil, fmt.Errorf("%s required to decrypt private key", tlsKeyFileSecretEnv)
				}
				der, decErr := x509.DecryptPEMBlock(block, []byte(secret)) //nolint:staticcheck
				if decErr != nil {
					return nil, nil, fmt.Errorf("decrypting private key: %w", decErr)
				}
				keyPEM = pem.EncodeToMemory(&pem.Block{Type: block.Type, Bytes: der})
			} else {
				keyPEM = append(keyPEM, pem.EncodeToMemory(block)...)
			}
		}
	}

	if len(certPEM) == 0 || len(keyPEM) == 0 {
		return nil, nil, fmt.Errorf("expected both a CERTIFICATE and a PRIVATE KEY block")
	}

	return certPEM, keyPEM, nil
}

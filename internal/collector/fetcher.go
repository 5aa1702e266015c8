package collector

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

const (
	defaultRequestTimeout = 30 * time.Second
	maxBodyBytes          = 32 << 20
	errorSnippetBytes     = 512
)

// Credentials is the HTTP basic auth login for an instance
type Credentials struct {
	Username string
	Password string
}

// Fetcher performs an authenticated GET and returns the raw response body.
// Any transport failure or non-2xx status is returned as an error.
type Fetcher interface {
	FetchJSON(ctx context.Context, url string, headers http.Header, creds Credentials, timeout time.Duration) ([]byte, error)
}

// TLSConfig holds TLS configuration
type TLSConfig struct {
	InsecureSkipVerify bool
	CAFile             string
}

// HTTPFetcher is the net/http implementation of Fetcher
type HTTPFetcher struct {
	client *http.Client
}

// NewHTTPFetcher creates a fetcher. A nil tlsCfg uses the system defaults.
func NewHTTPFetcher(tlsCfg *TLSConfig) (*HTTPFetcher, error) {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if tlsCfg != nil {
		clientTLS, err := buildTLSConfig(tlsCfg)
		if err != nil {
			return nil, err
		}
		transport.TLSClientConfig = clientTLS
	}
	return &HTTPFetcher{client: &http.Client{Transport: transport}}, nil
}

// NewHTTPFetcherWithClient wraps an existing client, mostly for tests
func NewHTTPFetcherWithClient(client *http.Client) *HTTPFetcher {
	return &HTTPFetcher{client: client}
}

// FetchJSON implements Fetcher
func (f *HTTPFetcher) FetchJSON(ctx context.Context, url string, headers http.Header, creds Credentials, timeout time.Duration) ([]byte, error) {
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	for k, vs := range headers {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if creds.Username != "" || creds.Password != "" {
		req.SetBasicAuth(creds.Username, creds.Password)
	}

	res, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(res.Body, errorSnippetBytes))
		return nil, fmt.Errorf("unexpected status %s: %s", res.Status, strings.TrimSpace(string(body)))
	}

	body, err := io.ReadAll(io.LimitReader(res.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}

func buildTLSConfig(cfg *TLSConfig) (*tls.Config, error) {
	out := &tls.Config{
		MinVersion:         tls.VersionTLS12,
		InsecureSkipVerify: cfg.InsecureSkipVerify, //nolint:gosec // opt-in for self-signed monitoring hosts
	}
	if cfg.CAFile != "" {
		pool, err := loadCertPool(cfg.CAFile)
		if err != nil {
			return nil, err
		}
		out.RootCAs = pool
	}
	return out, nil
}

// loadCertPool loads CA certificates on top of the system pool
func loadCertPool(caFile string) (*x509.CertPool, error) {
	data, err := os.ReadFile(caFile)
	if err != nil {
		return nil, fmt.Errorf("read ca file: %w", err)
	}
	pool, err := x509.SystemCertPool()
	if err != nil || pool == nil {
		pool = x509.NewCertPool()
	}
	if !pool.AppendCertsFromPEM(data) {
		return nil, fmt.Errorf("invalid ca certs in %s", caFile)
	}
	return pool, nil
}

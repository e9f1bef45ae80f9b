// Package uploader moves finished files to the remote file server. The core
// treats the transfer as an opaque success/failure outcome.
package uploader

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

// Transport delivers a local file to a path on the remote destination.
type Transport interface {
	Upload(ctx context.Context, localPath, remotePath string) error
}

// Option configures the HTTP transport.
type Option func(*HTTPTransport)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(t *HTTPTransport) {
		if client != nil {
			t.client = client
		}
	}
}

// HTTPTransport uploads via PUT against a WebDAV-style file server.
type HTTPTransport struct {
	baseURL string
	client  *http.Client
}

var _ Transport = (*HTTPTransport)(nil)

// NewHTTP constructs a transport for the given base URL.
func NewHTTP(baseURL string, timeoutSeconds int, opts ...Option) (*HTTPTransport, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("upload base url required")
	}
	timeout := time.Duration(timeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Minute
	}
	t := &HTTPTransport{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// Upload PUTs the file to baseURL/remotePath.
func (t *HTTPTransport) Upload(ctx context.Context, localPath, remotePath string) error {
	file, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("open local file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return fmt.Errorf("stat local file: %w", err)
	}

	endpoint := t.baseURL + "/" + escapePath(remotePath)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, endpoint, file)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.ContentLength = info.Size()
	req.Header.Set("Content-Type", "application/octet-stream")

	requestStart := time.Now()
	resp, err := t.client.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return fmt.Errorf("execute upload (latency=%v): %w", latency, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("upload returned %d (latency=%v)", resp.StatusCode, latency)
	}
	return nil
}

func escapePath(remotePath string) string {
	segments := strings.Split(strings.TrimLeft(remotePath, "/"), "/")
	for i, segment := range segments {
		segments[i] = url.PathEscape(segment)
	}
	return strings.Join(segments, "/")
}

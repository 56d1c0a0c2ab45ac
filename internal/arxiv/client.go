package arxiv

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"arxiv2epub/internal/config"
	"arxiv2epub/internal/ident"
	"arxiv2epub/internal/services"
)

// Client downloads e-print archives and queries paper metadata.
type Client struct {
	httpClient *http.Client
	eprintBase string
	apiBase    string
	userAgent  string
}

// Option configures the client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithEPrintBaseURL overrides the e-print endpoint.
func WithEPrintBaseURL(base string) Option {
	return func(c *Client) {
		if base != "" {
			c.eprintBase = base
		}
	}
}

// WithAPIBaseURL overrides the export API endpoint.
func WithAPIBaseURL(base string) Option {
	return func(c *Client) {
		if base != "" {
			c.apiBase = base
		}
	}
}

// NewClient constructs a client from configuration.
func NewClient(cfg config.Arxiv, opts ...Option) *Client {
	client := &Client{
		httpClient: &http.Client{Timeout: time.Duration(cfg.RequestTimeout) * time.Second},
		eprintBase: cfg.EPrintBaseURL,
		apiBase:    cfg.APIBaseURL,
		userAgent:  cfg.UserAgent,
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// EPrintURL returns the source download URL for an identifier. Version
// suffixes are dropped; the endpoint serves the latest source either way.
func (c *Client) EPrintURL(id ident.ID) string {
	return c.eprintBase + "/" + id.SourceID()
}

// DownloadSource performs a single GET against the e-print endpoint and
// writes the response body to destPath. One attempt, no retries; any failure
// terminates the run.
func (c *Client) DownloadSource(ctx context.Context, id ident.ID, destPath string) (int64, error) {
	sourceURL := c.EPrintURL(id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return 0, services.Wrap(services.ErrNetwork, "fetch", "build request", sourceURL, err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, services.Wrap(services.ErrNetwork, "fetch", "download source", sourceURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, services.Wrap(services.ErrFetch, "fetch", "download source",
			fmt.Sprintf("%s returned HTTP %d", sourceURL, resp.StatusCode), nil)
	}

	out, err := os.OpenFile(destPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return 0, services.Wrap(services.ErrFetch, "fetch", "persist download", destPath, err)
	}
	defer out.Close()

	written, err := io.Copy(out, resp.Body)
	if err != nil {
		return written, services.Wrap(services.ErrNetwork, "fetch", "read response body", sourceURL, err)
	}
	if err := out.Close(); err != nil {
		return written, services.Wrap(services.ErrFetch, "fetch", "persist download", destPath, err)
	}
	return written, nil
}

func (c *Client) apiQueryURL(id ident.ID) string {
	return c.apiBase + "?id_list=" + url.QueryEscape(id.SourceID()) + "&max_results=1"
}

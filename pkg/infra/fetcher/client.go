package fetcher

import (
	"context"
	"io"
	"net/http"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/m-mizutani/fixtureprov/pkg/domain/interfaces"
	"github.com/m-mizutani/fixtureprov/pkg/domain/types"
)

// DefaultMaxBytes is the default upper bound of a downloaded archive (1 GiB)
const DefaultMaxBytes int64 = 1 << 30

// config holds internal fetcher configuration
type config struct {
	httpClient *http.Client
	maxBytes   int64
	userAgent  string
}

// Option is a functional option for the fetcher
type Option func(*config)

// WithHTTPClient replaces the HTTP client used for requests
func WithHTTPClient(c *http.Client) Option {
	return func(cfg *config) {
		cfg.httpClient = c
	}
}

// WithMaxBytes sets the maximum accepted response body size
func WithMaxBytes(n int64) Option {
	return func(cfg *config) {
		cfg.maxBytes = n
	}
}

// WithUserAgent sets the User-Agent header
func WithUserAgent(ua string) Option {
	return func(cfg *config) {
		cfg.userAgent = ua
	}
}

type client struct {
	cfg config
}

// New creates an HTTP archive fetcher
func New(opts ...Option) interfaces.ArchiveFetcher {
	cfg := config{
		httpClient: http.DefaultClient,
		maxBytes:   DefaultMaxBytes,
		userAgent:  "fixtureprov/" + types.Version,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &client{cfg: cfg}
}

// Fetch downloads url with a single GET request and returns the whole body
func (c *client) Fetch(ctx context.Context, url string, token types.GitHubToken) ([]byte, error) {
	logger := ctxlog.From(ctx)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create download request",
			goerr.V("url", url), goerr.T(types.ErrTagNetwork))
	}

	req.Header.Set("User-Agent", c.cfg.userAgent)
	if !token.IsEmpty() {
		req.Header.Set("Authorization", token.BearerHeader())
	}

	logger.Debug("Sending download request",
		"url", url,
		"authenticated", !token.IsEmpty(),
	)

	resp, err := c.cfg.httpClient.Do(req)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to download archive",
			goerr.V("url", url), goerr.T(types.ErrTagNetwork))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, goerr.New("unexpected status code",
			goerr.V("url", url),
			goerr.V("status", resp.StatusCode),
			goerr.T(types.ErrTagNetwork))
	}

	// Read one extra byte to detect bodies over the limit
	data, err := io.ReadAll(io.LimitReader(resp.Body, c.cfg.maxBytes+1))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read response body",
			goerr.V("url", url), goerr.T(types.ErrTagNetwork))
	}
	if int64(len(data)) > c.cfg.maxBytes {
		return nil, goerr.New("archive exceeds size limit",
			goerr.V("url", url),
			goerr.V("max_bytes", c.cfg.maxBytes),
			goerr.T(types.ErrTagNetwork))
	}

	logger.Debug("Received archive",
		"url", resp.Request.URL.String(),
		"status", resp.StatusCode,
		"size_bytes", len(data),
	)

	return data, nil
}

// Package attackforge provides a Go client for the AttackForge Self-Service API.
//
// Basic usage:
//
//	client, err := attackforge.NewClient(
//	    attackforge.WithBaseURL("https://tenant.attackforge.com/api/ss"),
//	    attackforge.WithAPIKey(apiKey),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	assetID, err := client.Assets.Resolve(ctx, "scanner-host-42")
//	if errors.Is(err, attackforge.ErrUnresolved) {
//	    // not imported yet, or imported twice
//	}
package attackforge

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/tphakala/go-attackforge/internal/api"
	"github.com/tphakala/go-attackforge/internal/auth"
	"github.com/tphakala/go-attackforge/internal/logging"
	"github.com/tphakala/go-attackforge/internal/metrics"
)

// Default configuration values.
const defaultTimeout = 30 * time.Second

// Client is the AttackForge API client.
type Client struct {
	// Assets provides asset lookups and listings.
	Assets AssetService

	// Writeups provides writeup library lookups.
	Writeups WriteupService

	// Vulnerabilities provides project vulnerability lookups and evidence upload.
	Vulnerabilities VulnerabilityService

	// Projects provides project statistics and exports.
	Projects ProjectService

	transport *api.Transport
	logger    *slog.Logger
	req       *requester
}

// NewClient creates a new AttackForge client with the given options.
func NewClient(opts ...ClientOption) (*Client, error) {
	cfg := &clientConfig{
		timeout: defaultTimeout,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.baseURL == "" {
		return nil, ErrNoBaseURL
	}

	creds := &auth.Credentials{APIKey: cfg.apiKey}
	if !creds.Valid() {
		return nil, ErrNoCredentials
	}

	httpClient := cfg.httpClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: cfg.timeout,
		}
	}

	if cfg.tracing {
		base := httpClient.Transport
		if base == nil {
			base = http.DefaultTransport
		}
		traced := *httpClient
		traced.Transport = otelhttp.NewTransport(base)
		httpClient = &traced
	}

	transport, err := api.NewTransport(cfg.baseURL, creds, httpClient)
	if err != nil {
		return nil, err
	}

	if cfg.userAgent != "" {
		transport.UserAgent = cfg.userAgent
	}

	if cfg.registerer != nil {
		rec, err := metrics.New(cfg.registerer)
		if err != nil {
			return nil, err
		}
		transport.Metrics = rec
	}

	logger := cfg.logger
	if logger == nil {
		logger = logging.Discard()
	}

	r := &requester{transport: transport, logger: logger}
	client := &Client{
		transport: transport,
		logger:    logger,
		req:       r,
	}

	// Initialize services
	client.Assets = newAssetService(r)
	client.Writeups = newWriteupService(r)
	client.Vulnerabilities = newVulnerabilityService(r)
	client.Projects = newProjectService(r)

	return client, nil
}

// BaseURL returns the configured API base URL.
func (c *Client) BaseURL() string {
	return c.transport.BaseURL.String()
}

// VerifyAccess reports whether the API accepts the configured key. Any
// failure, whatever its kind, yields false.
func (c *Client) VerifyAccess(ctx context.Context, opts ...RequestOption) bool {
	if _, err := c.Get(ctx, "users", opts...); err != nil {
		c.logger.WarnContext(ctx, "AttackForge access check failed", slog.Any("error", err))
		return false
	}
	return true
}

// VerifyEntity fetches rawURL and resolves it to exactly one entity of the
// given kind. A count other than one yields a *ResolutionError matching
// ErrUnresolved.
func (c *Client) VerifyEntity(ctx context.Context, rawURL string, kind EntityKind, opts ...RequestOption) (*Entity, error) {
	return c.req.verifyEntity(ctx, rawURL, kind, opts)
}

package noaa

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/kokorev/ghcndaily/internal/domain"
	"github.com/kokorev/ghcndaily/internal/observability"
)

// Client fetches GHCN-Daily files over HTTP. It implements download.Fetcher.
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
	metrics    *observability.Metrics
	clock      clockwork.Clock
}

// NewClient creates a fetch client whose requests are bounded by timeout.
func NewClient(timeout time.Duration, logger *slog.Logger, metrics *observability.Metrics) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
		metrics:    metrics,
		clock:      clockwork.NewRealClock(),
	}
}

// Fetch issues a GET for rawURL and returns the response body. The caller
// must close it. Transport failures and non-200 responses are returned as
// *domain.TransferError.
func (c *Client) Fetch(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	kind := fileKind(rawURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &domain.TransferError{URL: rawURL, Err: fmt.Errorf("create request: %w", err)}
	}

	start := c.clock.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.FetchDuration.WithLabelValues(kind).Observe(c.clock.Since(start).Seconds())
	if err != nil {
		c.metrics.FetchRequests.WithLabelValues(kind, "error").Inc()
		return nil, &domain.TransferError{URL: rawURL, Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.metrics.FetchRequests.WithLabelValues(kind, "error").Inc()
		return nil, &domain.TransferError{
			URL:        rawURL,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected response: %s", strings.TrimSpace(string(body))),
		}
	}

	c.metrics.FetchRequests.WithLabelValues(kind, "success").Inc()
	c.logger.Debug("fetch started", "url", rawURL, "kind", kind, "content_length", resp.ContentLength)
	return resp.Body, nil
}

// fileKind labels a URL for metrics.
func fileKind(rawURL string) string {
	switch {
	case strings.HasSuffix(rawURL, ".dly"):
		return "station"
	case strings.HasSuffix(rawURL, domain.InventoryFile):
		return "inventory"
	case strings.HasSuffix(rawURL, domain.StationsFile):
		return "stations"
	default:
		return "other"
	}
}

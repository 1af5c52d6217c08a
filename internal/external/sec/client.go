package sec

import (
	"fmt"

	"golang.org/x/time/rate"

	"github.com/bondquant/ftdfeed/pkg/config"
	"github.com/bondquant/ftdfeed/pkg/httputil"
	"github.com/bondquant/ftdfeed/pkg/logger"
)

// Client talks to catalog.data.gov and sec.gov to discover and download
// the half-month fails-to-deliver archives.
type Client struct {
	httpClient    *httputil.Client
	catalogClient *httputil.Client
	logger        *logger.Logger
	catalogURL    string
	limiter       *rate.Limiter
	userAgent     string
	from          string
}

// NewClient creates a new SEC download client. The contact e-mail goes
// into the User-Agent per the SEC fair-access policy; requests are
// throttled by a local token bucket.
func NewClient(cfg *config.Config, httpClient *httputil.Client, log *logger.Logger) *Client {
	burst := int(cfg.SEC.RatePerSec)
	if burst < 1 {
		burst = 1
	}

	return &Client{
		httpClient:    httpClient,
		catalogClient: httpClient,
		logger:        log.WithField("module", "sec"),
		catalogURL:    cfg.SEC.CatalogURL,
		limiter:       rate.NewLimiter(rate.Limit(cfg.SEC.RatePerSec), burst),
		userAgent:     fmt.Sprintf("Mozilla/5.0 (compatible; FTDFeedBot/1.0; +%s)", cfg.SEC.ContactEmail),
		from:          cfg.SEC.ContactEmail,
	}
}

// WithCatalogClient sets a separate HTTP client for catalog.data.gov
// requests so the two hosts can be throttled independently.
func (c *Client) WithCatalogClient(client *httputil.Client) *Client {
	c.catalogClient = client
	return c
}

// headers returns the polite default headers for one request.
func (c *Client) headers() map[string]string {
	return map[string]string{
		"User-Agent": c.userAgent,
		"From":       c.from,
		"Accept":     "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
		"Referer":    c.catalogURL,
		"Connection": "keep-alive",
	}
}

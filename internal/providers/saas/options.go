package saas

import (
	"net/http"

	"go.uber.org/zap"
)

// Options configures a SaaS collector. Zero values select the defaults.
type Options struct {
	// BaseURL overrides the provider's public API root (used in tests and
	// for self-hosted installs).
	BaseURL string

	HTTPClient *http.Client
	Logger     *zap.Logger

	// RateLimit is requests per second; Burst the bucket size.
	RateLimit float64
	Burst     int
}

// Log returns the configured logger, or a no-op logger, named name.
func (o Options) Log(name string) *zap.Logger {
	if o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger.Named(name)
}

// NewClient builds a Client for token against o.BaseURL, falling back to
// defaultBase.
func (o Options) NewClient(defaultBase, token string, extra ...ClientOption) (*Client, error) {
	base := o.BaseURL
	if base == "" {
		base = defaultBase
	}
	opts := make([]ClientOption, 0, len(extra)+2)
	if o.HTTPClient != nil {
		opts = append(opts, WithHTTPClient(o.HTTPClient))
	}
	if o.RateLimit > 0 {
		burst := o.Burst
		if burst <= 0 {
			burst = DefaultBurst
		}
		opts = append(opts, WithRateLimit(o.RateLimit, burst))
	}
	opts = append(opts, extra...)
	return NewClient(base, token, opts...)
}

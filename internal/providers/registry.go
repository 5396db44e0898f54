package providers

import (
	"context"
	"fmt"

	"github.com/pankaj-dahiya-devops/spendscan/internal/models"
)

// Registry maps provider tags to collectors. It is built once at startup
// and read-only afterwards.
type Registry struct {
	collectors map[models.Provider]Collector
}

// NewRegistry returns a registry holding cs. Panics on duplicate providers.
func NewRegistry(cs ...Collector) *Registry {
	r := &Registry{collectors: make(map[models.Provider]Collector, len(cs))}
	for _, c := range cs {
		if _, exists := r.collectors[c.Provider()]; exists {
			panic(fmt.Sprintf("duplicate collector for provider %q", c.Provider()))
		}
		r.collectors[c.Provider()] = c
	}
	return r
}

// Get returns the collector registered for p.
func (r *Registry) Get(p models.Provider) (Collector, bool) {
	c, ok := r.collectors[p]
	return c, ok
}

// Collect dispatches to the collector for conn.Provider.
//
// Any error is returned as *ConnectionError; an unknown provider is a
// connection-level failure. A nil result is replaced by empty data tagged
// with the provider.
func (r *Registry) Collect(ctx context.Context, conn models.Connection, creds Credentials, tier models.Tier) (*models.ProviderData, error) {
	c, ok := r.collectors[conn.Provider]
	if !ok {
		return nil, NewConnectionError(conn.Provider, "unsupported provider", nil)
	}

	data, err := c.Collect(ctx, conn, creds, tier)
	if err != nil {
		if ce, ok := AsConnectionError(err); ok {
			return nil, ce
		}
		return nil, NewConnectionError(conn.Provider, "collection failed", err)
	}
	if data == nil {
		data = &models.ProviderData{Provider: conn.Provider}
	}
	return data, nil
}

// Package providers defines the collector contract shared by every provider
// integration and the static registry that dispatches on provider tag.
package providers

import (
	"context"
	"errors"
	"fmt"

	"github.com/pankaj-dahiya-devops/spendscan/internal/models"
)

// Collector turns one connection's credentials into normalised ProviderData.
//
// A sub-call failure never aborts collection: the affected field is left
// empty and a warning is recorded on the returned data. The only error a
// Collector returns is *ConnectionError, used when the provider cannot be
// reached or authenticated at all.
type Collector interface {
	// Provider returns the tag this collector serves.
	Provider() models.Provider

	// Collect fetches and normalises the account's data. tier gates
	// collection depth at fetch time.
	Collect(ctx context.Context, conn models.Connection, creds Credentials, tier models.Tier) (*models.ProviderData, error)
}

// ConnectionError reports that a connection could not be collected at all,
// as opposed to a partial failure inside an otherwise successful collection.
type ConnectionError struct {
	Provider models.Provider
	Reason   string
	Err      error
}

// NewConnectionError returns a ConnectionError wrapping err.
func NewConnectionError(p models.Provider, reason string, err error) *ConnectionError {
	return &ConnectionError{Provider: p, Reason: reason, Err: err}
}

func (e *ConnectionError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Provider, e.Reason)
	}
	return fmt.Sprintf("%s: %s: %v", e.Provider, e.Reason, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// AsConnectionError returns the ConnectionError in err's chain, if any.
func AsConnectionError(err error) (*ConnectionError, bool) {
	var ce *ConnectionError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}

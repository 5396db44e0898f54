package models

import "time"

// Provider is the tag identifying an external account provider.
type Provider string

const (
	ProviderAWS    Provider = "aws"
	ProviderGitHub Provider = "github"
	ProviderVercel Provider = "vercel"
	ProviderSentry Provider = "sentry"
)

// ConnectionStatus is the health state of a Connection.
type ConnectionStatus string

const (
	ConnectionActive       ConnectionStatus = "active"
	ConnectionError        ConnectionStatus = "error"
	ConnectionDisconnected ConnectionStatus = "disconnected"
)

// Tier is the user's subscription level. It gates collection depth.
type Tier string

const (
	TierFree Tier = "free"
	TierPro  Tier = "pro"
)

// Restricted reports whether the tier limits collection breadth.
// Unknown tiers are treated as restricted.
func (t Tier) Restricted() bool {
	return t != TierPro
}

// Connection identifies one credentialed account at one provider.
//
// LastScannedAt and Status are written only by the scan orchestrator.
// EncryptedCredentials is opaque to this module; it is turned into plaintext
// by an external credential resolver at scan time.
type Connection struct {
	ID                   string            `json:"id"`
	UserID               string            `json:"user_id"`
	Provider             Provider          `json:"provider"`
	EncryptedCredentials []byte            `json:"-"`
	Metadata             map[string]string `json:"metadata,omitempty"`
	LastScannedAt        *time.Time        `json:"last_scanned_at,omitempty"`
	Status               ConnectionStatus  `json:"status"`
	ErrorMessage         string            `json:"error_message,omitempty"`
	AccountLabel         string            `json:"account_label,omitempty"`
	Environment          string            `json:"environment,omitempty"`
	CreatedAt            time.Time         `json:"created_at"`
}

// MetadataValue returns Metadata[key] or "" when the map is nil.
func (c Connection) MetadataValue(key string) string {
	if c.Metadata == nil {
		return ""
	}
	return c.Metadata[key]
}

package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/pankaj-dahiya-devops/spendscan/internal/models"
)

// Credentials are the plaintext secrets of one connection, keyed by field
// name (e.g. "token", "access_key_id").
type Credentials map[string]string

// Get returns the trimmed value of key.
func (c Credentials) Get(key string) string {
	return strings.TrimSpace(c[key])
}

// Require returns an error naming every key that is missing or blank.
func (c Credentials) Require(keys ...string) error {
	var missing []string
	for _, k := range keys {
		if c.Get(k) == "" {
			missing = append(missing, k)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	sort.Strings(missing)
	return fmt.Errorf("missing credential fields: %s", strings.Join(missing, ", "))
}

// CredentialResolver turns a connection's stored credential blob into
// plaintext at call time. Decryption lives behind this interface.
type CredentialResolver interface {
	Resolve(ctx context.Context, conn models.Connection) (Credentials, error)
}

// PlaintextResolver reads EncryptedCredentials as an unencrypted JSON object.
// It exists for local use; production deployments supply their own resolver.
type PlaintextResolver struct{}

func (PlaintextResolver) Resolve(_ context.Context, conn models.Connection) (Credentials, error) {
	if len(conn.EncryptedCredentials) == 0 {
		return Credentials{}, nil
	}
	var creds Credentials
	if err := json.Unmarshal(conn.EncryptedCredentials, &creds); err != nil {
		return nil, fmt.Errorf("decode credentials for connection %s: %w", conn.ID, err)
	}
	return creds, nil
}

package providers

import (
	"context"
	"errors"
	"testing"

	"github.com/pankaj-dahiya-devops/spendscan/internal/models"
)

type stubCollector struct {
	provider models.Provider
	data     *models.ProviderData
	err      error
}

func (s stubCollector) Provider() models.Provider { return s.provider }
func (s stubCollector) Collect(_ context.Context, _ models.Connection, _ Credentials, _ models.Tier) (*models.ProviderData, error) {
	return s.data, s.err
}

func TestRegistry_Collect(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown provider is a connection error", func(t *testing.T) {
		_, err := NewRegistry().Collect(ctx, models.Connection{Provider: "gitlab"}, nil, models.TierPro)
		ce, ok := AsConnectionError(err)
		if !ok {
			t.Fatalf("want ConnectionError, got %v", err)
		}
		if ce.Reason != "unsupported provider" {
			t.Errorf("Reason = %q", ce.Reason)
		}
	})

	t.Run("plain errors are wrapped", func(t *testing.T) {
		boom := errors.New("boom")
		r := NewRegistry(stubCollector{provider: models.ProviderGitHub, err: boom})
		_, err := r.Collect(ctx, models.Connection{Provider: models.ProviderGitHub}, nil, models.TierPro)
		if _, ok := AsConnectionError(err); !ok {
			t.Fatalf("want ConnectionError, got %v", err)
		}
		if !errors.Is(err, boom) {
			t.Error("wrapped error must unwrap to the original")
		}
	})

	t.Run("nil data becomes empty tagged data", func(t *testing.T) {
		r := NewRegistry(stubCollector{provider: models.ProviderSentry})
		data, err := r.Collect(ctx, models.Connection{Provider: models.ProviderSentry}, nil, models.TierPro)
		if err != nil {
			t.Fatal(err)
		}
		if data.Provider != models.ProviderSentry {
			t.Errorf("Provider = %q; want sentry", data.Provider)
		}
	})
}

func TestNewRegistry_DuplicatePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	NewRegistry(stubCollector{provider: models.ProviderAWS}, stubCollector{provider: models.ProviderAWS})
}

func TestCredentials_Require(t *testing.T) {
	c := Credentials{"token": "x", "org_slug": "  "}
	if err := c.Require("token"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	err := c.Require("token", "org_slug", "api_key")
	if err == nil || err.Error() != "missing credential fields: api_key, org_slug" {
		t.Errorf("got %v", err)
	}
}

func TestPlaintextResolver(t *testing.T) {
	conn := models.Connection{ID: "c1", EncryptedCredentials: []byte(`{"token":"abc"}`)}
	creds, err := PlaintextResolver{}.Resolve(context.Background(), conn)
	if err != nil {
		t.Fatal(err)
	}
	if creds.Get("token") != "abc" {
		t.Errorf("token = %q", creds.Get("token"))
	}

	conn.EncryptedCredentials = []byte("not json")
	if _, err := (PlaintextResolver{}).Resolve(context.Background(), conn); err == nil {
		t.Error("expected decode error")
	}
}

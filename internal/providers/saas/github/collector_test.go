package github

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/pankaj-dahiya-devops/spendscan/internal/models"
	"github.com/pankaj-dahiya-devops/spendscan/internal/providers"
	"github.com/pankaj-dahiya-devops/spendscan/internal/providers/saas"
)

// recorder captures a query value seen by the test server.
type recorder struct {
	mu    sync.Mutex
	value string
}

func (r *recorder) set(v string) {
	r.mu.Lock()
	r.value = v
	r.mu.Unlock()
}

func (r *recorder) get() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.value
}

func newServer(t *testing.T, userStatus int, reposBody string, visibility *recorder) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/user":
			if userStatus != http.StatusOK {
				w.WriteHeader(userStatus)
				return
			}
			_, _ = w.Write([]byte(`{
				"login": "octo",
				"updated_at": "2026-01-01T00:00:00Z",
				"public_repos": 3,
				"total_private_repos": 2,
				"plan": {"name": "pro"}
			}`))
		case "/user/repos":
			if visibility != nil {
				visibility.set(r.URL.Query().Get("visibility"))
			}
			if reposBody == "" {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			_, _ = w.Write([]byte(reposBody))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func collect(t *testing.T, srv *httptest.Server, tier models.Tier) (*models.ProviderData, error) {
	t.Helper()
	c := NewCollector(saas.Options{BaseURL: srv.URL, RateLimit: 1000})
	return c.Collect(context.Background(), models.Connection{ID: "c1"}, providers.Credentials{"token": "t"}, tier)
}

func TestCollector_Pro(t *testing.T) {
	visibility := &recorder{}
	srv := newServer(t, http.StatusOK, `[
		{"private": true, "pushed_at": "2026-02-10T00:00:00Z"},
		{"private": false, "pushed_at": "2026-02-20T00:00:00Z"},
		{"private": false, "pushed_at": null}
	]`, visibility)

	data, err := collect(t, srv, models.TierPro)
	if err != nil {
		t.Fatal(err)
	}
	gh := data.GitHub
	if gh.Login != "octo" || gh.Plan != "pro" || gh.Seats != 1 {
		t.Errorf("unexpected identity: %+v", gh)
	}
	if gh.RepoCount != 5 || gh.PrivateRepos != 2 {
		t.Errorf("RepoCount=%d PrivateRepos=%d; want 5/2", gh.RepoCount, gh.PrivateRepos)
	}
	if want := time.Date(2026, 2, 20, 0, 0, 0, 0, time.UTC); !gh.LastActivity.Equal(want) {
		t.Errorf("LastActivity = %v; want %v", gh.LastActivity, want)
	}
	if visibility.get() != "all" {
		t.Errorf("visibility = %q; want all", visibility.get())
	}
	if data.Degraded {
		t.Errorf("unexpected warnings %v", data.Warnings)
	}
}

func TestCollector_FreeTierSeesPublicOnly(t *testing.T) {
	visibility := &recorder{}
	srv := newServer(t, http.StatusOK, `[]`, visibility)

	data, err := collect(t, srv, models.TierFree)
	if err != nil {
		t.Fatal(err)
	}
	if visibility.get() != "public" {
		t.Errorf("visibility = %q; want public", visibility.get())
	}
	if data.GitHub.PrivateRepos != 0 || data.GitHub.RepoCount != 3 {
		t.Errorf("free tier leaked private repos: %+v", data.GitHub)
	}
}

func TestCollector_ReposFailureDegrades(t *testing.T) {
	srv := newServer(t, http.StatusOK, "", nil)
	data, err := collect(t, srv, models.TierPro)
	if err != nil {
		t.Fatal(err)
	}
	if !data.Degraded || len(data.Warnings) != 1 {
		t.Errorf("want one warning, got %v", data.Warnings)
	}
	if !data.GitHub.LastActivity.IsZero() {
		t.Errorf("LastActivity must stay unknown when repos fail, got %v", data.GitHub.LastActivity)
	}
}

func TestCollector_NoPushesFallsBackToProfileUpdate(t *testing.T) {
	srv := newServer(t, http.StatusOK, `[{"private": false, "pushed_at": null}]`, nil)
	data, err := collect(t, srv, models.TierPro)
	if err != nil {
		t.Fatal(err)
	}
	if want := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC); !data.GitHub.LastActivity.Equal(want) {
		t.Errorf("LastActivity = %v; want profile update %v", data.GitHub.LastActivity, want)
	}
}

func TestCollector_UnauthorizedIsConnectionError(t *testing.T) {
	srv := newServer(t, http.StatusUnauthorized, "[]", nil)
	_, err := collect(t, srv, models.TierPro)
	if _, ok := providers.AsConnectionError(err); !ok {
		t.Fatalf("want ConnectionError, got %v", err)
	}
}

func TestCollector_MissingToken(t *testing.T) {
	_, err := NewCollector(saas.Options{}).Collect(context.Background(), models.Connection{}, providers.Credentials{}, models.TierPro)
	if _, ok := providers.AsConnectionError(err); !ok {
		t.Fatalf("want ConnectionError, got %v", err)
	}
}

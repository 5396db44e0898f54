// Package github collects plan and activity data for a GitHub account.
package github

import (
	"context"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/pankaj-dahiya-devops/spendscan/internal/models"
	"github.com/pankaj-dahiya-devops/spendscan/internal/providers"
	"github.com/pankaj-dahiya-devops/spendscan/internal/providers/saas"
)

// DefaultBaseURL is the public GitHub REST API.
const DefaultBaseURL = "https://api.github.com"

type userResponse struct {
	Login             string    `json:"login"`
	UpdatedAt         time.Time `json:"updated_at"`
	PublicRepos       int       `json:"public_repos"`
	TotalPrivateRepos int       `json:"total_private_repos"`
	Plan              *struct {
		Name  string `json:"name"`
		Seats int    `json:"seats"`
	} `json:"plan"`
}

type repoResponse struct {
	Private  bool       `json:"private"`
	PushedAt *time.Time `json:"pushed_at"`
}

// Collector is the providers.Collector for GitHub connections.
// Credentials: token.
type Collector struct {
	opts saas.Options
	log  *zap.Logger
}

// NewCollector returns a GitHub collector.
func NewCollector(opts saas.Options) *Collector {
	return &Collector{opts: opts, log: opts.Log("collector.github")}
}

func (c *Collector) Provider() models.Provider { return models.ProviderGitHub }

// Collect reads the authenticated user and the most recently pushed
// repositories. Restricted tiers only see public repositories.
func (c *Collector) Collect(
	ctx context.Context,
	conn models.Connection,
	creds providers.Credentials,
	tier models.Tier,
) (*models.ProviderData, error) {
	if err := creds.Require("token"); err != nil {
		return nil, providers.NewConnectionError(models.ProviderGitHub, "invalid credentials", err)
	}
	client, err := c.opts.NewClient(DefaultBaseURL, creds.Get("token"),
		saas.WithHeader("Accept", "application/vnd.github+json"),
		saas.WithHeader("X-GitHub-Api-Version", "2022-11-28"),
	)
	if err != nil {
		return nil, providers.NewConnectionError(models.ProviderGitHub, "invalid configuration", err)
	}

	var user userResponse
	if err := client.GetJSON(ctx, "/user", nil, &user); err != nil {
		return nil, providers.NewConnectionError(models.ProviderGitHub, "identity check failed", err)
	}

	gh := &models.GitHubData{
		Login:     user.Login,
		Plan:      conn.MetadataValue("plan"),
		Seats:     1,
		RepoCount: user.PublicRepos,
	}
	if user.Plan != nil && user.Plan.Name != "" {
		gh.Plan = user.Plan.Name
	}
	if gh.Plan == "" {
		gh.Plan = "free"
	}
	if user.Plan != nil && user.Plan.Seats > 0 {
		gh.Seats = user.Plan.Seats
	} else if n, err := strconv.Atoi(conn.MetadataValue("seats")); err == nil && n > 0 {
		gh.Seats = n
	}

	visibility := "all"
	if tier.Restricted() {
		visibility = "public"
	} else {
		gh.RepoCount += user.TotalPrivateRepos
		gh.PrivateRepos = user.TotalPrivateRepos
	}

	data := &models.ProviderData{Provider: models.ProviderGitHub, GitHub: gh}

	var repos []repoResponse
	err = client.GetJSON(ctx, "/user/repos", url.Values{
		"sort":       {"pushed"},
		"direction":  {"desc"},
		"per_page":   {"100"},
		"visibility": {visibility},
	}, &repos)
	if err != nil {
		data.Warn("repos: " + err.Error())
		c.log.Warn("github repos call failed", zap.String("connection_id", conn.ID), zap.Error(err))
		return data, nil
	}

	var lastPush time.Time
	for _, r := range repos {
		if r.PushedAt != nil && r.PushedAt.After(lastPush) {
			lastPush = r.PushedAt.UTC()
		}
	}
	gh.LastActivity = lastPush
	if lastPush.IsZero() && !user.UpdatedAt.IsZero() {
		gh.LastActivity = user.UpdatedAt.UTC()
	}

	c.log.Debug("github collection finished",
		zap.String("connection_id", conn.ID),
		zap.String("plan", gh.Plan),
		zap.Int("repos", len(repos)),
	)
	return data, nil
}

var _ providers.Collector = (*Collector)(nil)

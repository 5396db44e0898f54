// Package vercel collects plan, deployment and bandwidth data for a Vercel
// account or team.
package vercel

import (
	"context"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/pankaj-dahiya-devops/spendscan/internal/models"
	"github.com/pankaj-dahiya-devops/spendscan/internal/providers"
	"github.com/pankaj-dahiya-devops/spendscan/internal/providers/saas"
)

// DefaultBaseURL is the public Vercel REST API.
const DefaultBaseURL = "https://api.vercel.com"

type billing struct {
	Plan string `json:"plan"`
}

type userResponse struct {
	User struct {
		ID       string   `json:"id"`
		Username string   `json:"username"`
		Billing  *billing `json:"billing"`
	} `json:"user"`
}

type teamResponse struct {
	ID      string   `json:"id"`
	Slug    string   `json:"slug"`
	Billing *billing `json:"billing"`
}

type deploymentsResponse struct {
	Deployments []struct {
		// Created is milliseconds since the epoch.
		Created int64 `json:"created"`
	} `json:"deployments"`
}

type usageResponse struct {
	Bandwidth struct {
		Used     int64 `json:"used"`
		Included int64 `json:"included"`
	} `json:"bandwidth"`
}

// Collector is the providers.Collector for Vercel connections.
// Credentials: token, optional team_id (also read from metadata).
type Collector struct {
	opts saas.Options
	log  *zap.Logger
}

// NewCollector returns a Vercel collector.
func NewCollector(opts saas.Options) *Collector {
	return &Collector{opts: opts, log: opts.Log("collector.vercel")}
}

func (c *Collector) Provider() models.Provider { return models.ProviderVercel }

// Collect reads the user (and team, when scoped to one), the latest
// deployment and the bandwidth usage. Restricted tiers skip the deployment
// lookup, leaving last activity unknown.
func (c *Collector) Collect(
	ctx context.Context,
	conn models.Connection,
	creds providers.Credentials,
	tier models.Tier,
) (*models.ProviderData, error) {
	if err := creds.Require("token"); err != nil {
		return nil, providers.NewConnectionError(models.ProviderVercel, "invalid credentials", err)
	}
	client, err := c.opts.NewClient(DefaultBaseURL, creds.Get("token"))
	if err != nil {
		return nil, providers.NewConnectionError(models.ProviderVercel, "invalid configuration", err)
	}

	teamID := creds.Get("team_id")
	if teamID == "" {
		teamID = conn.MetadataValue("team_id")
	}
	var scope url.Values
	if teamID != "" {
		scope = url.Values{"teamId": {teamID}}
	}

	var user userResponse
	if err := client.GetJSON(ctx, "/v2/user", nil, &user); err != nil {
		return nil, providers.NewConnectionError(models.ProviderVercel, "identity check failed", err)
	}

	v := &models.VercelData{
		Username: user.User.Username,
		TeamID:   teamID,
		Plan:     conn.MetadataValue("plan"),
	}
	if b := user.User.Billing; b != nil && b.Plan != "" {
		v.Plan = b.Plan
	}
	if teamID != "" {
		var team teamResponse
		if err := client.GetJSON(ctx, "/v2/teams/"+url.PathEscape(teamID), nil, &team); err != nil {
			return nil, providers.NewConnectionError(models.ProviderVercel, "team lookup failed", err)
		}
		if team.Billing != nil && team.Billing.Plan != "" {
			v.Plan = team.Billing.Plan
		}
	}
	if v.Plan == "" {
		v.Plan = "hobby"
	}

	data := &models.ProviderData{Provider: models.ProviderVercel, Vercel: v}
	warn := func(call string, err error) {
		data.Warn(call + ": " + err.Error())
		c.log.Warn("vercel call failed", zap.String("connection_id", conn.ID), zap.String("call", call), zap.Error(err))
	}

	if !tier.Restricted() {
		q := url.Values{"limit": {"1"}}
		for k, vals := range scope {
			q[k] = vals
		}
		var deps deploymentsResponse
		if err := client.GetJSON(ctx, "/v6/deployments", q, &deps); err != nil {
			warn("deployments", err)
		} else if len(deps.Deployments) > 0 && deps.Deployments[0].Created > 0 {
			v.LastDeployment = time.UnixMilli(deps.Deployments[0].Created).UTC()
		}
	}

	var usage usageResponse
	if err := client.GetJSON(ctx, "/v1/usage", scope, &usage); err != nil {
		warn("usage", err)
	} else {
		v.BandwidthUsedBytes = usage.Bandwidth.Used
		v.BandwidthIncludedBytes = usage.Bandwidth.Included
	}

	return data, nil
}

var _ providers.Collector = (*Collector)(nil)

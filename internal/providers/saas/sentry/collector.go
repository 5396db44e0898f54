// Package sentry collects plan, project and event-volume data for a Sentry
// organization.
package sentry

import (
	"context"
	"math"
	"net/url"

	"go.uber.org/zap"

	"github.com/pankaj-dahiya-devops/spendscan/internal/models"
	"github.com/pankaj-dahiya-devops/spendscan/internal/providers"
	"github.com/pankaj-dahiya-devops/spendscan/internal/providers/saas"
)

// DefaultBaseURL is the hosted Sentry API root.
const DefaultBaseURL = "https://sentry.io"

const statsField = "sum(quantity)"

type orgResponse struct {
	Slug string `json:"slug"`
	Name string `json:"name"`
}

type statsResponse struct {
	Groups []struct {
		Totals map[string]float64 `json:"totals"`
	} `json:"groups"`
}

// Collector is the providers.Collector for Sentry connections.
// Credentials: token and org_slug (org_slug may also come from metadata).
// Sentry does not expose the plan through the API; it is read from the
// connection's "plan" metadata and defaults to free.
type Collector struct {
	opts saas.Options
	log  *zap.Logger
}

// NewCollector returns a Sentry collector.
func NewCollector(opts saas.Options) *Collector {
	return &Collector{opts: opts, log: opts.Log("collector.sentry")}
}

func (c *Collector) Provider() models.Provider { return models.ProviderSentry }

// Collect reads the organization, its projects and the error count of the
// last 30 days. Restricted tiers skip the project listing.
func (c *Collector) Collect(
	ctx context.Context,
	conn models.Connection,
	creds providers.Credentials,
	tier models.Tier,
) (*models.ProviderData, error) {
	org := creds.Get("org_slug")
	if org == "" {
		org = conn.MetadataValue("org_slug")
		creds = mergeOrg(creds, org)
	}
	if err := creds.Require("token", "org_slug"); err != nil {
		return nil, providers.NewConnectionError(models.ProviderSentry, "invalid credentials", err)
	}
	client, err := c.opts.NewClient(DefaultBaseURL, creds.Get("token"))
	if err != nil {
		return nil, providers.NewConnectionError(models.ProviderSentry, "invalid configuration", err)
	}

	base := "/api/0/organizations/" + url.PathEscape(org) + "/"

	var o orgResponse
	if err := client.GetJSON(ctx, base, nil, &o); err != nil {
		return nil, providers.NewConnectionError(models.ProviderSentry, "identity check failed", err)
	}

	s := &models.SentryData{
		OrgSlug:      o.Slug,
		OrgName:      o.Name,
		Plan:         conn.MetadataValue("plan"),
		RecentEvents: -1,
	}
	if s.OrgSlug == "" {
		s.OrgSlug = org
	}
	if s.Plan == "" {
		s.Plan = "free"
	}

	data := &models.ProviderData{Provider: models.ProviderSentry, Sentry: s}
	warn := func(call string, err error) {
		data.Warn(call + ": " + err.Error())
		c.log.Warn("sentry call failed", zap.String("connection_id", conn.ID), zap.String("call", call), zap.Error(err))
	}

	if !tier.Restricted() {
		var projects []struct {
			Slug string `json:"slug"`
		}
		if err := client.GetJSON(ctx, base+"projects/", nil, &projects); err != nil {
			warn("projects", err)
		} else {
			s.ProjectCount = len(projects)
		}
	}

	var stats statsResponse
	err = client.GetJSON(ctx, base+"stats_v2/", url.Values{
		"field":       {statsField},
		"statsPeriod": {"30d"},
		"category":    {"error"},
	}, &stats)
	if err != nil {
		warn("stats", err)
		return data, nil
	}
	var total float64
	for _, g := range stats.Groups {
		total += g.Totals[statsField]
	}
	s.RecentEvents = int64(math.Round(total))

	return data, nil
}

func mergeOrg(creds providers.Credentials, org string) providers.Credentials {
	out := make(providers.Credentials, len(creds)+1)
	for k, v := range creds {
		out[k] = v
	}
	out["org_slug"] = org
	return out
}

var _ providers.Collector = (*Collector)(nil)

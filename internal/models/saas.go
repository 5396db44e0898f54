package models

import "time"

// GitHubData is the normalised output of the GitHub collector.
// LastActivity is the most recent push across visible repositories, falling
// back to the profile update time when no repository has a push. It is zero
// when the repository listing failed.
type GitHubData struct {
	Login        string    `json:"login"`
	Plan         string    `json:"plan"`
	Seats        int       `json:"seats"`
	RepoCount    int       `json:"repo_count"`
	PrivateRepos int       `json:"private_repos"`
	LastActivity time.Time `json:"last_activity"`
}

// VercelData is the normalised output of the Vercel collector.
// BandwidthIncludedBytes == 0 means the quota is unknown.
type VercelData struct {
	Username               string    `json:"username"`
	TeamID                 string    `json:"team_id,omitempty"`
	Plan                   string    `json:"plan"`
	LastDeployment         time.Time `json:"last_deployment"`
	BandwidthUsedBytes     int64     `json:"bandwidth_used_bytes"`
	BandwidthIncludedBytes int64     `json:"bandwidth_included_bytes"`
}

// UsageRatio returns used/included bandwidth, and false when the quota is unknown.
func (d *VercelData) UsageRatio() (float64, bool) {
	if d == nil || d.BandwidthIncludedBytes <= 0 {
		return 0, false
	}
	return float64(d.BandwidthUsedBytes) / float64(d.BandwidthIncludedBytes), true
}

// SentryData is the normalised output of the Sentry collector.
// RecentEvents is -1 when the stats call failed.
type SentryData struct {
	OrgSlug      string `json:"org_slug"`
	OrgName      string `json:"org_name"`
	Plan         string `json:"plan"`
	ProjectCount int    `json:"project_count"`
	RecentEvents int64  `json:"recent_events"`
}

package models

import "sort"

// ProviderData is the tagged union produced by a collector. Exactly one of the
// payload pointers matching Provider is set by a successful collection.
//
// Degraded is true when at least one sub-call failed; the failed categories
// are listed in Warnings, sorted so that the value is deterministic.
type ProviderData struct {
	Provider Provider    `json:"provider"`
	AWS      *AWSData    `json:"aws,omitempty"`
	GitHub   *GitHubData `json:"github,omitempty"`
	Vercel   *VercelData `json:"vercel,omitempty"`
	Sentry   *SentryData `json:"sentry,omitempty"`
	Degraded bool        `json:"degraded"`
	Warnings []string    `json:"warnings,omitempty"`
}

// Warn records a failed sub-call and marks the data as degraded.
func (d *ProviderData) Warn(msg string) {
	d.Degraded = true
	d.Warnings = append(d.Warnings, msg)
	sort.Strings(d.Warnings)
}

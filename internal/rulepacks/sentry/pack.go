// Package sentry provides the Sentry plan rule pack.
package sentry

import "github.com/pankaj-dahiya-devops/spendscan/internal/rules"

// New returns the Sentry rules.
func New() []rules.Rule {
	return []rules.Rule{
		rules.SentryPlanRule{},
	}
}

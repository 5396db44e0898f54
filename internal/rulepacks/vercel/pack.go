// Package vercel provides the Vercel plan rule pack.
package vercel

import "github.com/pankaj-dahiya-devops/spendscan/internal/rules"

// New returns the Vercel rules.
func New() []rules.Rule {
	return []rules.Rule{
		rules.VercelPlanRule{},
	}
}

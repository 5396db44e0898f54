// Package github provides the GitHub plan rule pack.
package github

import "github.com/pankaj-dahiya-devops/spendscan/internal/rules"

// New returns the GitHub rules.
func New() []rules.Rule {
	return []rules.Rule{
		rules.GitHubPlanRule{},
	}
}

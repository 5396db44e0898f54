// Package rulepacks maps each provider to its rule pack.
package rulepacks

import (
	"github.com/pankaj-dahiya-devops/spendscan/internal/models"
	"github.com/pankaj-dahiya-devops/spendscan/internal/rulepacks/aws"
	"github.com/pankaj-dahiya-devops/spendscan/internal/rulepacks/github"
	"github.com/pankaj-dahiya-devops/spendscan/internal/rulepacks/sentry"
	"github.com/pankaj-dahiya-devops/spendscan/internal/rulepacks/vercel"
	"github.com/pankaj-dahiya-devops/spendscan/internal/rules"
)

// ForProvider returns the rules evaluated for provider, or nil when the
// provider has no pack.
func ForProvider(p models.Provider) []rules.Rule {
	switch p {
	case models.ProviderAWS:
		return aws.New()
	case models.ProviderGitHub:
		return github.New()
	case models.ProviderVercel:
		return vercel.New()
	case models.ProviderSentry:
		return sentry.New()
	default:
		return nil
	}
}

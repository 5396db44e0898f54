// Package classifier turns normalised provider data into findings.
//
// Classification is pure and total: it performs no I/O, reads no clock and
// never fails. Given identical input it returns an identical finding list.
package classifier

import (
	"time"

	"github.com/pankaj-dahiya-devops/spendscan/internal/models"
	"github.com/pankaj-dahiya-devops/spendscan/internal/policy"
	"github.com/pankaj-dahiya-devops/spendscan/internal/pricing"
	"github.com/pankaj-dahiya-devops/spendscan/internal/rulepacks"
	"github.com/pankaj-dahiya-devops/spendscan/internal/rules"
)

// BaselineRuleID marks the account finding emitted when no rule produced one.
const BaselineRuleID = "BASELINE"

// Input is everything one classification depends on.
type Input struct {
	Provider  models.Provider
	Data      *models.ProviderData
	Tier      models.Tier
	Now       time.Time
	Policy    *policy.PolicyConfig
	Converter pricing.Converter
}

// Classifier dispatches to the rule registry of each provider.
type Classifier struct {
	registries map[models.Provider]rules.RuleRegistry
}

// New returns a Classifier loaded with the built-in rule packs.
func New() *Classifier {
	return NewWithPacks(rulepacks.ForProvider)
}

// NewWithPacks returns a Classifier whose rules come from packs.
func NewWithPacks(packs func(models.Provider) []rules.Rule) *Classifier {
	c := &Classifier{registries: make(map[models.Provider]rules.RuleRegistry)}
	for _, p := range []models.Provider{
		models.ProviderAWS, models.ProviderGitHub, models.ProviderVercel, models.ProviderSentry,
	} {
		c.registries[p] = rules.NewRegistryFrom(packs(p))
	}
	return c
}

// Classify evaluates the provider's rules against in.Data.
//
// The result always holds at least one finding, and every finding satisfies
// status != active ⇒ savings > 0 and status == active ⇒ savings == 0.
func (c *Classifier) Classify(in Input) []models.Finding {
	ctx := rules.RuleContext{
		Provider:  in.Provider,
		Data:      in.Data,
		Tier:      in.Tier,
		Now:       in.Now,
		Policy:    in.Policy,
		Converter: in.Converter,
	}

	var findings []models.Finding
	if reg, ok := c.registries[in.Provider]; ok {
		findings = reg.EvaluateAll(ctx)
	}
	for i := range findings {
		normalize(&findings[i])
	}
	if len(findings) == 0 {
		findings = []models.Finding{baseline(in)}
	}
	return findings
}

func normalize(f *models.Finding) {
	if f.Status.IsWaste() && f.PotentialSavings <= 0 {
		f.Status = models.StatusActive
	}
	if f.Status == models.StatusActive {
		f.PotentialSavings = 0
	}
}

func baseline(in Input) models.Finding {
	f := models.Finding{
		Provider:     in.Provider,
		RuleID:       BaselineRuleID,
		ResourceName: accountName(in),
		ResourceType: accountType(in.Provider),
		Status:       models.StatusActive,
		Reason:       "No billable resources found.",
		DetectedAt:   in.Now,
	}
	if in.Data != nil && in.Data.Degraded {
		f.Reason = "No billable resources found; some data could not be collected."
		f.RawData = map[string]any{"warnings": append([]string(nil), in.Data.Warnings...)}
	}
	return f
}

func accountName(in Input) string {
	id := ""
	if d := in.Data; d != nil {
		switch {
		case d.AWS != nil:
			id = d.AWS.AccountID
		case d.GitHub != nil:
			id = d.GitHub.Login
		case d.Vercel != nil:
			id = d.Vercel.Username
		case d.Sentry != nil:
			id = d.Sentry.OrgSlug
		}
	}
	if id == "" {
		id = "account"
	}
	return string(in.Provider) + "/" + id
}

func accountType(p models.Provider) models.ResourceType {
	switch p {
	case models.ProviderGitHub:
		return models.ResourceGitHubPlan
	case models.ProviderVercel:
		return models.ResourceVercelPlan
	case models.ProviderSentry:
		return models.ResourceSentryPlan
	default:
		return models.ResourceAWSAccount
	}
}

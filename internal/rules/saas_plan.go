package rules

import (
	"fmt"

	"github.com/pankaj-dahiya-devops/spendscan/internal/models"
	"github.com/pankaj-dahiya-devops/spendscan/internal/policy"
	"github.com/pankaj-dahiya-devops/spendscan/internal/pricing"
)

const (
	githubPlanRuleID = "GITHUB_PLAN"
	vercelPlanRuleID = "VERCEL_PLAN"
	sentryPlanRuleID = "SENTRY_PLAN"

	defaultInactiveDays = 60.0
	defaultUsageRatio   = 0.20
)

// GitHubPlanRule reports the account plan. A paid plan with no push activity
// for longer than inactive_days is a zombie subscription.
type GitHubPlanRule struct{}

func (r GitHubPlanRule) ID() string   { return githubPlanRuleID }
func (r GitHubPlanRule) Name() string { return "GitHub Plan" }

func (r GitHubPlanRule) Evaluate(ctx RuleContext) []models.Finding {
	data := ctx.GitHub()
	if data == nil {
		return nil
	}

	age := ageDays(ctx.Now, data.LastActivity)
	res := resource{
		name: "github/" + data.Login,
		kind: models.ResourceGitHubPlan,
		raw: map[string]any{
			"plan":          data.Plan,
			"seats":         data.Seats,
			"repo_count":    data.RepoCount,
			"private_repos": data.PrivateRepos,
			"inactive_days": age,
		},
	}

	price := pricing.PlanPriceUSD(string(models.ProviderGitHub), data.Plan, data.Seats)
	if price > 0 && inactiveFor(ctx, age) {
		return []models.Finding{waste(ctx, CheckPlanInactive, res, models.StatusZombie,
			ctx.Converter.Convert(price),
			fmt.Sprintf("Paid %s plan with no repository activity in %d days.", data.Plan, age))}
	}
	return []models.Finding{active(ctx, githubPlanRuleID, res, planReason(data.Plan, price))}
}

// VercelPlanRule reports the account plan. A paid plan with no deployment
// for longer than inactive_days is a zombie; one using less than usage_ratio
// of its included bandwidth can be downgraded.
type VercelPlanRule struct{}

func (r VercelPlanRule) ID() string   { return vercelPlanRuleID }
func (r VercelPlanRule) Name() string { return "Vercel Plan" }

func (r VercelPlanRule) Evaluate(ctx RuleContext) []models.Finding {
	data := ctx.Vercel()
	if data == nil {
		return nil
	}

	name := data.Username
	if data.TeamID != "" {
		name = data.TeamID
	}
	age := ageDays(ctx.Now, data.LastDeployment)
	res := resource{
		name: "vercel/" + name,
		kind: models.ResourceVercelPlan,
		raw: map[string]any{
			"plan":                     data.Plan,
			"inactive_days":            age,
			"bandwidth_used_bytes":     data.BandwidthUsedBytes,
			"bandwidth_included_bytes": data.BandwidthIncludedBytes,
		},
	}

	price := pricing.PlanPriceUSD(string(models.ProviderVercel), data.Plan, 1)
	if price > 0 {
		if inactiveFor(ctx, age) {
			return []models.Finding{waste(ctx, CheckPlanInactive, res, models.StatusZombie,
				ctx.Converter.Convert(price),
				fmt.Sprintf("Paid %s plan with no deployments in %d days.", data.Plan, age))}
		}
		limit := policy.GetThreshold(CheckPlanUnderused, "usage_ratio", defaultUsageRatio, ctx.Policy)
		if ratio, ok := data.UsageRatio(); ok && ratio < limit && policy.IsEnabled(CheckPlanUnderused, ctx.Policy) {
			return []models.Finding{waste(ctx, CheckPlanUnderused, res, models.StatusDowngradePossible,
				ctx.Converter.Convert(price),
				fmt.Sprintf("Only %.0f%% of included bandwidth used; the free tier may suffice.", ratio*100))}
		}
	}
	return []models.Finding{active(ctx, vercelPlanRuleID, res, planReason(data.Plan, price))}
}

// SentryPlanRule reports the organization plan. A paid plan that received no
// events in the last 30 days is a zombie subscription.
type SentryPlanRule struct{}

func (r SentryPlanRule) ID() string   { return sentryPlanRuleID }
func (r SentryPlanRule) Name() string { return "Sentry Plan" }

func (r SentryPlanRule) Evaluate(ctx RuleContext) []models.Finding {
	data := ctx.Sentry()
	if data == nil {
		return nil
	}

	res := resource{
		name: "sentry/" + data.OrgSlug,
		kind: models.ResourceSentryPlan,
		raw: map[string]any{
			"plan":          data.Plan,
			"project_count": data.ProjectCount,
			"recent_events": data.RecentEvents,
		},
	}

	price := pricing.PlanPriceUSD(string(models.ProviderSentry), data.Plan, 1)
	if price > 0 && data.RecentEvents == 0 && policy.IsEnabled(CheckPlanNoEvents, ctx.Policy) {
		return []models.Finding{waste(ctx, CheckPlanNoEvents, res, models.StatusZombie,
			ctx.Converter.Convert(price),
			fmt.Sprintf("Paid %s plan received no events in the last 30 days.", data.Plan))}
	}
	return []models.Finding{active(ctx, sentryPlanRuleID, res, planReason(data.Plan, price))}
}

// inactiveFor reports whether a known activity age exceeds inactive_days.
func inactiveFor(ctx RuleContext, age int) bool {
	if age < 0 || !policy.IsEnabled(CheckPlanInactive, ctx.Policy) {
		return false
	}
	return float64(age) > policy.GetThreshold(CheckPlanInactive, "inactive_days", defaultInactiveDays, ctx.Policy)
}

func planReason(plan string, priceUSD float64) string {
	if plan == "" {
		plan = "unknown"
	}
	if priceUSD <= 0 {
		return fmt.Sprintf("Plan %q carries no list price.", plan)
	}
	return fmt.Sprintf("Plan %q is in use.", plan)
}

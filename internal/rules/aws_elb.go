package rules

import (
	"github.com/pankaj-dahiya-devops/spendscan/internal/models"
	"github.com/pankaj-dahiya-devops/spendscan/internal/policy"
	"github.com/pankaj-dahiya-devops/spendscan/internal/pricing"
)

const elbRuleID = "AWS_ELB"

// AWSELBIdleRule flags active load balancers that served no requests during
// the 7-day lookback window.
//
// RequestCount == -1 means the CloudWatch metric could not be read; such
// load balancers are reported active rather than guessed idle.
type AWSELBIdleRule struct{}

func (r AWSELBIdleRule) ID() string   { return elbRuleID }
func (r AWSELBIdleRule) Name() string { return "Load Balancers" }

func (r AWSELBIdleRule) Evaluate(ctx RuleContext) []models.Finding {
	data := ctx.AWS()
	if data == nil {
		return nil
	}

	var findings []models.Finding
	for _, rd := range data.Regions {
		for _, lb := range rd.LoadBalancers {
			res := resource{
				name:   regional(lb.Region, lb.LoadBalancerName),
				kind:   models.ResourceAWSLoadBalancer,
				region: lb.Region,
				raw: map[string]any{
					"arn":           lb.LoadBalancerARN,
					"type":          lb.Type,
					"state":         lb.State,
					"request_count": lb.RequestCount,
				},
			}
			if lb.State == "active" && lb.RequestCount == 0 && policy.IsEnabled(CheckELBIdle, ctx.Policy) {
				findings = append(findings, waste(ctx, CheckELBIdle, res, models.StatusZombie,
					ctx.Converter.Convert(pricing.LoadBalancerIdleUSD),
					"Load balancer received zero requests in the last 7 days."))
				continue
			}
			reason := "Load balancer is serving traffic."
			if lb.RequestCount < 0 {
				reason = "Request metrics unavailable."
			}
			findings = append(findings, active(ctx, elbRuleID, res, reason))
		}
	}
	return findings
}

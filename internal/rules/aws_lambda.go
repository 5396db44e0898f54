package rules

import (
	"fmt"

	"github.com/pankaj-dahiya-devops/spendscan/internal/models"
	"github.com/pankaj-dahiya-devops/spendscan/internal/policy"
	"github.com/pankaj-dahiya-devops/spendscan/internal/pricing"
)

const (
	lambdaRuleID = "AWS_LAMBDA"

	// defaultLambdaStaleDays is roughly six months.
	defaultLambdaStaleDays = 180.0
)

// AWSLambdaRule flags functions whose code and configuration have not been
// modified for longer than stale_days.
type AWSLambdaRule struct{}

func (r AWSLambdaRule) ID() string   { return lambdaRuleID }
func (r AWSLambdaRule) Name() string { return "Lambda Functions" }

func (r AWSLambdaRule) Evaluate(ctx RuleContext) []models.Finding {
	data := ctx.AWS()
	if data == nil {
		return nil
	}

	staleDays := policy.GetThreshold(CheckLambdaStale, "stale_days", defaultLambdaStaleDays, ctx.Policy)

	var findings []models.Finding
	for _, rd := range data.Regions {
		for _, fn := range rd.LambdaFunctions {
			age := ageDays(ctx.Now, fn.LastModified)
			res := resource{
				name:   regional(fn.Region, fn.FunctionName),
				kind:   models.ResourceAWSLambda,
				region: fn.Region,
				raw: map[string]any{
					"runtime":   fn.Runtime,
					"memory_mb": fn.MemoryMB,
					"age_days":  age,
				},
			}
			if age >= 0 && float64(age) > staleDays && policy.IsEnabled(CheckLambdaStale, ctx.Policy) {
				findings = append(findings, waste(ctx, CheckLambdaStale, res, models.StatusZombie,
					ctx.Converter.Convert(pricing.LambdaStaleUSD),
					fmt.Sprintf("Function has not been modified in %d days.", age)))
				continue
			}
			findings = append(findings, active(ctx, lambdaRuleID, res, "Function was modified recently."))
		}
	}
	return findings
}

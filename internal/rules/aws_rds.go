package rules

import (
	"fmt"

	"github.com/pankaj-dahiya-devops/spendscan/internal/models"
	"github.com/pankaj-dahiya-devops/spendscan/internal/policy"
	"github.com/pankaj-dahiya-devops/spendscan/internal/pricing"
)

const rdsRuleID = "AWS_RDS"

// AWSRDSRule classifies RDS instances. Stopped instances keep billing for
// storage; available Multi-AZ instances pay for a standby replica.
type AWSRDSRule struct{}

func (r AWSRDSRule) ID() string   { return rdsRuleID }
func (r AWSRDSRule) Name() string { return "RDS Instances" }

func (r AWSRDSRule) Evaluate(ctx RuleContext) []models.Finding {
	data := ctx.AWS()
	if data == nil {
		return nil
	}

	var findings []models.Finding
	for _, rd := range data.Regions {
		for _, db := range rd.RDSInstances {
			res := resource{
				name:   regional(db.Region, db.DBInstanceID),
				kind:   models.ResourceAWSRDS,
				region: db.Region,
				raw: map[string]any{
					"instance_class": db.DBInstanceClass,
					"engine":         db.Engine,
					"multi_az":       db.MultiAZ,
					"status":         db.Status,
				},
			}
			switch {
			case db.Status == "stopped" && policy.IsEnabled(CheckRDSStopped, ctx.Policy):
				findings = append(findings, waste(ctx, CheckRDSStopped, res, models.StatusZombie,
					ctx.Converter.Convert(pricing.RDSStoppedUSD),
					"Database is stopped; storage is still billed."))
			case db.MultiAZ && db.Status == "available" && policy.IsEnabled(CheckRDSMultiAZ, ctx.Policy):
				findings = append(findings, waste(ctx, CheckRDSMultiAZ, res, models.StatusDowngradePossible,
					ctx.Converter.Convert(pricing.RDSMultiAZPremiumUSD),
					fmt.Sprintf("Multi-AZ %s instance; single-AZ is sufficient outside production.", db.DBInstanceClass)))
			default:
				findings = append(findings, active(ctx, rdsRuleID, res,
					fmt.Sprintf("Database is %s.", db.Status)))
			}
		}
	}
	return findings
}

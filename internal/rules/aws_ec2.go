package rules

import (
	"fmt"
	"strings"

	"github.com/pankaj-dahiya-devops/spendscan/internal/models"
	"github.com/pankaj-dahiya-devops/spendscan/internal/policy"
	"github.com/pankaj-dahiya-devops/spendscan/internal/pricing"
)

const ec2RuleID = "AWS_EC2"

// AWSEC2Rule classifies EC2 instances. Stopped instances still carry their
// attached storage and are reported as zombies; running instances of a large
// or xlarge size are candidates for a one-step downsize.
type AWSEC2Rule struct{}

func (r AWSEC2Rule) ID() string   { return ec2RuleID }
func (r AWSEC2Rule) Name() string { return "EC2 Instances" }

func (r AWSEC2Rule) Evaluate(ctx RuleContext) []models.Finding {
	data := ctx.AWS()
	if data == nil {
		return nil
	}

	var findings []models.Finding
	for _, rd := range data.Regions {
		for _, inst := range rd.EC2Instances {
			res := resource{
				name:   inst.InstanceID,
				kind:   models.ResourceAWSEC2,
				region: inst.Region,
				raw: map[string]any{
					"instance_type": inst.InstanceType,
					"state":         inst.State,
				},
			}
			if name := inst.Tags["Name"]; name != "" {
				res.raw["name"] = name
			}

			switch {
			case inst.State == "stopped" && policy.IsEnabled(CheckEC2Stopped, ctx.Policy):
				findings = append(findings, waste(ctx, CheckEC2Stopped, res, models.StatusZombie,
					ctx.Converter.Convert(pricing.EC2StoppedCarryUSD),
					"Instance is stopped but its attached volumes are still billed."))
			case inst.State == "running" && isOversized(inst.InstanceType) && policy.IsEnabled(CheckEC2Oversized, ctx.Policy):
				findings = append(findings, waste(ctx, CheckEC2Oversized, res, models.StatusDowngradePossible,
					ctx.Converter.Convert(pricing.EC2OversizedUSD),
					fmt.Sprintf("Running %s instance; a smaller size is likely sufficient.", inst.InstanceType)))
			default:
				findings = append(findings, active(ctx, ec2RuleID, res,
					fmt.Sprintf("Instance is %s.", inst.State)))
			}
		}
	}
	return findings
}

// isOversized reports whether the size suffix of an instance type
// (e.g. "m5.2xlarge") is large or any xlarge variant.
func isOversized(instanceType string) bool {
	i := strings.LastIndex(instanceType, ".")
	if i < 0 {
		return false
	}
	size := instanceType[i+1:]
	return size == "large" || strings.HasSuffix(size, "xlarge")
}

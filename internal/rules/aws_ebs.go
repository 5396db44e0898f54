package rules

import (
	"fmt"

	"github.com/pankaj-dahiya-devops/spendscan/internal/models"
	"github.com/pankaj-dahiya-devops/spendscan/internal/policy"
	"github.com/pankaj-dahiya-devops/spendscan/internal/pricing"
)

const ebsRuleID = "AWS_EBS"

// AWSEBSRule flags EBS volumes that are not attached to any instance.
// An unattached volume in the "available" state incurs storage charges with
// no workload benefit.
type AWSEBSRule struct{}

func (r AWSEBSRule) ID() string   { return ebsRuleID }
func (r AWSEBSRule) Name() string { return "EBS Volumes" }

func (r AWSEBSRule) Evaluate(ctx RuleContext) []models.Finding {
	data := ctx.AWS()
	if data == nil {
		return nil
	}

	var findings []models.Finding
	for _, rd := range data.Regions {
		for _, vol := range rd.EBSVolumes {
			res := resource{
				name:   vol.VolumeID,
				kind:   models.ResourceAWSEBS,
				region: vol.Region,
				raw: map[string]any{
					"volume_type": vol.VolumeType,
					"size_gb":     vol.SizeGB,
					"state":       vol.State,
				},
			}
			if !vol.Attached && vol.State == "available" && policy.IsEnabled(CheckEBSUnattached, ctx.Policy) {
				perGB := policy.GetThreshold(CheckEBSUnattached, "price_per_gb", pricing.EBSPerGBUSD, ctx.Policy)
				findings = append(findings, waste(ctx, CheckEBSUnattached, res, models.StatusZombie,
					ctx.Converter.ConvertMul(int(vol.SizeGB), perGB),
					fmt.Sprintf("%d GB %s volume is unattached.", vol.SizeGB, vol.VolumeType)))
				continue
			}
			if vol.InstanceID != "" {
				res.raw["instance_id"] = vol.InstanceID
			}
			findings = append(findings, active(ctx, ebsRuleID, res, "Volume is attached."))
		}
	}
	return findings
}

package rules

import (
	"fmt"

	"github.com/pankaj-dahiya-devops/spendscan/internal/models"
	"github.com/pankaj-dahiya-devops/spendscan/internal/policy"
	"github.com/pankaj-dahiya-devops/spendscan/internal/pricing"
)

const (
	s3RuleID = "AWS_S3"

	defaultS3InactiveDays = 30.0
)

// AWSS3Rule flags buckets that are empty or have received no writes within
// inactive_days. Buckets whose activity could not be read are left active.
type AWSS3Rule struct{}

func (r AWSS3Rule) ID() string   { return s3RuleID }
func (r AWSS3Rule) Name() string { return "S3 Buckets" }

func (r AWSS3Rule) Evaluate(ctx RuleContext) []models.Finding {
	data := ctx.AWS()
	if data == nil {
		return nil
	}

	inactiveDays := policy.GetThreshold(CheckS3Inactive, "inactive_days", defaultS3InactiveDays, ctx.Policy)
	enabled := policy.IsEnabled(CheckS3Inactive, ctx.Policy)

	var findings []models.Finding
	for _, b := range data.Buckets {
		res := resource{
			name:   b.Name,
			kind:   models.ResourceAWSS3Bucket,
			region: b.Region,
			raw: map[string]any{
				"object_count":   b.ObjectCount,
				"activity_known": b.ActivityKnown,
			},
		}
		if !b.LastWrite.IsZero() {
			res.raw["last_write"] = b.LastWrite
		}

		if b.ActivityKnown && enabled {
			if b.ObjectCount == 0 {
				findings = append(findings, waste(ctx, CheckS3Inactive, res, models.StatusZombie,
					ctx.Converter.Convert(pricing.S3InactiveBucketUSD), "Bucket is empty."))
				continue
			}
			if age := ageDays(ctx.Now, b.LastWrite); age >= 0 && float64(age) > inactiveDays {
				findings = append(findings, waste(ctx, CheckS3Inactive, res, models.StatusZombie,
					ctx.Converter.Convert(pricing.S3InactiveBucketUSD),
					fmt.Sprintf("No writes in %d days.", age)))
				continue
			}
		}
		reason := "Bucket has recent activity."
		if !b.ActivityKnown {
			reason = "Activity unknown."
		}
		findings = append(findings, active(ctx, s3RuleID, res, reason))
	}
	return findings
}

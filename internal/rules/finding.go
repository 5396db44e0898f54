package rules

import (
	"math"
	"time"

	"github.com/pankaj-dahiya-devops/spendscan/internal/models"
)

// Check IDs. A category rule reports the check that matched in
// Finding.RuleID, or its own ID for active findings. Policy overrides are
// keyed by check ID.
const (
	CheckPlanInactive         = "SAAS_PLAN_INACTIVE"
	CheckPlanUnderused        = "SAAS_PLAN_UNDERUSED"
	CheckPlanNoEvents         = "SAAS_PLAN_NO_EVENTS"
	CheckEC2Stopped           = "EC2_STOPPED"
	CheckEC2Oversized         = "EC2_OVERSIZED"
	CheckEIPUnattached        = "EIP_UNATTACHED"
	CheckEBSUnattached        = "EBS_UNATTACHED"
	CheckLambdaStale          = "LAMBDA_STALE"
	CheckDynamoOverprovisoned = "DYNAMODB_OVERPROVISIONED"
	CheckRDSStopped           = "RDS_STOPPED"
	CheckRDSMultiAZ           = "RDS_MULTI_AZ"
	CheckS3Inactive           = "S3_INACTIVE"
	CheckELBIdle              = "ELB_IDLE"
)

// AllCheckIDs lists every check ID accepted in a policy file.
func AllCheckIDs() []string {
	return []string{
		CheckPlanInactive, CheckPlanUnderused, CheckPlanNoEvents,
		CheckEC2Stopped, CheckEC2Oversized, CheckEIPUnattached,
		CheckEBSUnattached, CheckLambdaStale, CheckDynamoOverprovisoned,
		CheckRDSStopped, CheckRDSMultiAZ, CheckS3Inactive, CheckELBIdle,
	}
}

// resource describes the subject of a finding.
type resource struct {
	name   string
	kind   models.ResourceType
	region string
	raw    map[string]any
}

func waste(ctx RuleContext, checkID string, res resource, status models.FindingStatus, savings float64, reason string) models.Finding {
	return models.Finding{
		Provider:         ctx.Provider,
		RuleID:           checkID,
		ResourceName:     res.name,
		ResourceType:     res.kind,
		Region:           res.region,
		Status:           status,
		PotentialSavings: savings,
		Reason:           reason,
		RawData:          res.raw,
		DetectedAt:       ctx.Now,
	}
}

func active(ctx RuleContext, ruleID string, res resource, reason string) models.Finding {
	return models.Finding{
		Provider:     ctx.Provider,
		RuleID:       ruleID,
		ResourceName: res.name,
		ResourceType: res.kind,
		Region:       res.region,
		Status:       models.StatusActive,
		Reason:       reason,
		RawData:      res.raw,
		DetectedAt:   ctx.Now,
	}
}

// ageDays returns the whole number of days between t and now.
// A zero t yields -1 (unknown).
func ageDays(now, t time.Time) int {
	if t.IsZero() {
		return -1
	}
	return int(math.Floor(now.Sub(t).Hours() / 24))
}

// regional qualifies names that are only unique within a region.
func regional(region, name string) string {
	return region + "/" + name
}

package llm

import (
	"fmt"

	"github.com/pankaj-dahiya-devops/spendscan/internal/models"
)

var templates = map[string]string{
	"SAAS_PLAN_INACTIVE":       "Cancel or downgrade the %s subscription; it has seen no activity recently.",
	"SAAS_PLAN_UNDERUSED":      "Move %s to a smaller plan; usage is far below the included quota.",
	"SAAS_PLAN_NO_EVENTS":      "Downgrade %s to the free plan; no events were received in the last 30 days.",
	"EC2_STOPPED":              "Snapshot and terminate %s, or delete its volumes if the data is not needed.",
	"EC2_OVERSIZED":            "Check utilisation of %s and move it to the next smaller instance size.",
	"EIP_UNATTACHED":           "Release the unattached addresses in %s.",
	"EBS_UNATTACHED":           "Snapshot %s if needed, then delete the volume.",
	"LAMBDA_STALE":             "Delete %s if nothing still invokes it.",
	"DYNAMODB_OVERPROVISIONED": "Switch %s to on-demand capacity.",
	"RDS_STOPPED":              "Take a final snapshot of %s and delete the instance.",
	"RDS_MULTI_AZ":             "Disable Multi-AZ on %s unless it serves production traffic.",
	"S3_INACTIVE":              "Empty and delete %s, or move it to an archive storage class.",
	"ELB_IDLE":                 "Delete %s; it served no requests during the last week.",
}

// Template returns the deterministic recommendation for f.
func Template(f models.Finding) string {
	if f.Status == models.StatusActive {
		return "No action needed."
	}
	if t, ok := templates[f.RuleID]; ok {
		return fmt.Sprintf(t, f.ResourceName)
	}
	return fmt.Sprintf("Review %s for potential savings.", f.ResourceName)
}

package models

import "time"

// FindingStatus is the classification outcome for one resource.
type FindingStatus string

const (
	StatusActive            FindingStatus = "active"
	StatusZombie            FindingStatus = "zombie"
	StatusUnused            FindingStatus = "unused"
	StatusDowngradePossible FindingStatus = "downgrade_possible"
)

// IsWaste reports whether the status carries potential savings.
func (s FindingStatus) IsWaste() bool {
	return s != StatusActive
}

// ResourceType identifies the kind of resource a finding refers to.
type ResourceType string

const (
	// AWS resource types
	ResourceAWSAccount      ResourceType = "AWS_ACCOUNT"
	ResourceAWSEC2          ResourceType = "EC2_INSTANCE"
	ResourceAWSElasticIP    ResourceType = "ELASTIC_IP"
	ResourceAWSEBS          ResourceType = "EBS_VOLUME"
	ResourceAWSLambda       ResourceType = "LAMBDA_FUNCTION"
	ResourceAWSDynamoDB     ResourceType = "DYNAMODB_TABLE"
	ResourceAWSRDS          ResourceType = "RDS_INSTANCE"
	ResourceAWSS3Bucket     ResourceType = "S3_BUCKET"
	ResourceAWSLoadBalancer ResourceType = "LOAD_BALANCER"

	// SaaS resource types
	ResourceGitHubPlan ResourceType = "GITHUB_PLAN"
	ResourceVercelPlan ResourceType = "VERCEL_PLAN"
	ResourceSentryPlan ResourceType = "SENTRY_PLAN"
)

// Finding is one classified outcome for one resource or account facet within
// a connection's scan. It is the stable contract consumed by reporting.
//
// The classifier fills every structural field except ID, UserID and
// ConnectionID, which the orchestrator stamps before persistence.
// Recommendation is cosmetic and not part of the classification contract.
type Finding struct {
	ID               string         `json:"id"`
	UserID           string         `json:"user_id"`
	ConnectionID     string         `json:"connection_id"`
	Provider         Provider       `json:"provider"`
	RuleID           string         `json:"rule_id"`
	ResourceName     string         `json:"resource_name"`
	ResourceType     ResourceType   `json:"resource_type"`
	Region           string         `json:"region,omitempty"`
	Status           FindingStatus  `json:"status"`
	PotentialSavings float64        `json:"potential_savings"`
	Reason           string         `json:"reason"`
	RawData          map[string]any `json:"raw_data,omitempty"`
	Recommendation   string         `json:"recommendation,omitempty"`
	DetectedAt       time.Time      `json:"detected_at"`
}

// FindingKey is the persistence uniqueness key of a Finding.
type FindingKey struct {
	UserID       string
	ConnectionID string
	ResourceName string
	Status       FindingStatus
}

// Key returns the uniqueness key of f.
func (f Finding) Key() FindingKey {
	return FindingKey{
		UserID:       f.UserID,
		ConnectionID: f.ConnectionID,
		ResourceName: f.ResourceName,
		Status:       f.Status,
	}
}

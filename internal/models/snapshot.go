package models

import "time"

// DayLayout is the calendar-day format used for snapshot keys.
const DayLayout = "2006-01-02"

// SavingsHistorySnapshot is a day-bucketed aggregate of one user's findings.
// ConnectionID == "" marks the whole-user aggregate row.
type SavingsHistorySnapshot struct {
	UserID           string             `json:"user_id"`
	ConnectionID     string             `json:"connection_id,omitempty"`
	Day              string             `json:"day"`
	TotalSavings     float64            `json:"total_savings"`
	ZombieCount      int                `json:"zombie_count"`
	ActiveCount      int                `json:"active_count"`
	ServiceBreakdown map[string]float64 `json:"service_breakdown"`
	CreatedAt        time.Time          `json:"created_at"`
	UpdatedAt        time.Time          `json:"updated_at"`
}

// IsAggregate reports whether s is the whole-user row.
func (s SavingsHistorySnapshot) IsAggregate() bool {
	return s.ConnectionID == ""
}

// ResourceTypeSavings is one entry of the community top-resource ranking.
type ResourceTypeSavings struct {
	ResourceType string  `json:"resource_type"`
	Savings      float64 `json:"savings"`
}

// CommunityStatsSnapshot is the cross-user rollup for one calendar day.
type CommunityStatsSnapshot struct {
	Day                string                `json:"day"`
	TotalSavings       float64               `json:"total_savings"`
	TotalUsers         int                   `json:"total_users"`
	TotalZombiesKilled int                   `json:"total_zombies_killed"`
	TotalScans         int                   `json:"total_scans"`
	TopResourceTypes   []ResourceTypeSavings `json:"top_resource_types"`
	UpdatedAt          time.Time             `json:"updated_at"`
}

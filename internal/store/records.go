package store

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"

	"github.com/pankaj-dahiya-devops/spendscan/internal/models"
)

type connectionRecord struct {
	ID                   string `gorm:"primaryKey"`
	UserID               string `gorm:"not null;index"`
	Provider             string `gorm:"not null"`
	EncryptedCredentials []byte `gorm:"not null"`
	Metadata             datatypes.JSONMap
	LastScannedAt        *time.Time `gorm:"index"`
	Status               string     `gorm:"not null;default:active"`
	ErrorMessage         string
	AccountLabel         string
	Environment          string
	CreatedAt            time.Time `gorm:"not null"`
}

func (connectionRecord) TableName() string { return "connections" }

type findingRecord struct {
	ID               string `gorm:"primaryKey"`
	UserID           string `gorm:"not null;uniqueIndex:idx_findings_key,priority:1"`
	ConnectionID     string `gorm:"not null;uniqueIndex:idx_findings_key,priority:2"`
	ResourceName     string `gorm:"not null;uniqueIndex:idx_findings_key,priority:3"`
	Status           string `gorm:"not null;uniqueIndex:idx_findings_key,priority:4"`
	Provider         string `gorm:"not null"`
	RuleID           string `gorm:"not null"`
	ResourceType     string `gorm:"not null"`
	Region           string
	PotentialSavings float64 `gorm:"not null"`
	Reason           string
	RawData          datatypes.JSONMap
	Recommendation   string
	DetectedAt       time.Time `gorm:"not null"`
	Position         int       `gorm:"not null"`
}

func (findingRecord) TableName() string { return "findings" }

type savingsSnapshotRecord struct {
	ID               uint   `gorm:"primaryKey"`
	UserID           string `gorm:"not null;uniqueIndex:idx_savings_key,priority:1"`
	ConnectionID     string `gorm:"not null;uniqueIndex:idx_savings_key,priority:2"`
	Day              string `gorm:"not null;uniqueIndex:idx_savings_key,priority:3;index"`
	TotalSavings     float64
	ZombieCount      int
	ActiveCount      int
	ServiceBreakdown datatypes.JSONMap
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (savingsSnapshotRecord) TableName() string { return "savings_history_snapshots" }

type communityStatsRecord struct {
	Day                string `gorm:"primaryKey"`
	TotalSavings       float64
	TotalUsers         int
	TotalZombiesKilled int
	TotalScans         int
	TopResourceTypes   datatypes.JSON
	UpdatedAt          time.Time
}

func (communityStatsRecord) TableName() string { return "community_stats_snapshots" }

func toConnectionRecord(c models.Connection) connectionRecord {
	var meta datatypes.JSONMap
	if len(c.Metadata) > 0 {
		meta = make(datatypes.JSONMap, len(c.Metadata))
		for k, v := range c.Metadata {
			meta[k] = v
		}
	}
	status := c.Status
	if status == "" {
		status = models.ConnectionActive
	}
	return connectionRecord{
		ID:                   c.ID,
		UserID:               c.UserID,
		Provider:             string(c.Provider),
		EncryptedCredentials: c.EncryptedCredentials,
		Metadata:             meta,
		LastScannedAt:        c.LastScannedAt,
		Status:               string(status),
		ErrorMessage:         c.ErrorMessage,
		AccountLabel:         c.AccountLabel,
		Environment:          c.Environment,
		CreatedAt:            c.CreatedAt,
	}
}

func (r connectionRecord) model() models.Connection {
	var meta map[string]string
	if len(r.Metadata) > 0 {
		meta = make(map[string]string, len(r.Metadata))
		for k, v := range r.Metadata {
			if s, ok := v.(string); ok {
				meta[k] = s
			}
		}
	}
	return models.Connection{
		ID:                   r.ID,
		UserID:               r.UserID,
		Provider:             models.Provider(r.Provider),
		EncryptedCredentials: r.EncryptedCredentials,
		Metadata:             meta,
		LastScannedAt:        r.LastScannedAt,
		Status:               models.ConnectionStatus(r.Status),
		ErrorMessage:         r.ErrorMessage,
		AccountLabel:         r.AccountLabel,
		Environment:          r.Environment,
		CreatedAt:            r.CreatedAt,
	}
}

func toFindingRecord(f models.Finding, pos int) findingRecord {
	var raw datatypes.JSONMap
	if len(f.RawData) > 0 {
		raw = datatypes.JSONMap(f.RawData)
	}
	return findingRecord{
		ID:               f.ID,
		UserID:           f.UserID,
		ConnectionID:     f.ConnectionID,
		ResourceName:     f.ResourceName,
		Status:           string(f.Status),
		Provider:         string(f.Provider),
		RuleID:           f.RuleID,
		ResourceType:     string(f.ResourceType),
		Region:           f.Region,
		PotentialSavings: f.PotentialSavings,
		Reason:           f.Reason,
		RawData:          raw,
		Recommendation:   f.Recommendation,
		DetectedAt:       f.DetectedAt,
		Position:         pos,
	}
}

func (r findingRecord) model() models.Finding {
	var raw map[string]any
	if len(r.RawData) > 0 {
		raw = map[string]any(r.RawData)
	}
	return models.Finding{
		ID:               r.ID,
		UserID:           r.UserID,
		ConnectionID:     r.ConnectionID,
		Provider:         models.Provider(r.Provider),
		RuleID:           r.RuleID,
		ResourceName:     r.ResourceName,
		ResourceType:     models.ResourceType(r.ResourceType),
		Region:           r.Region,
		Status:           models.FindingStatus(r.Status),
		PotentialSavings: r.PotentialSavings,
		Reason:           r.Reason,
		RawData:          raw,
		Recommendation:   r.Recommendation,
		DetectedAt:       r.DetectedAt,
	}
}

func toSavingsRecord(s models.SavingsHistorySnapshot) savingsSnapshotRecord {
	breakdown := make(datatypes.JSONMap, len(s.ServiceBreakdown))
	for k, v := range s.ServiceBreakdown {
		breakdown[k] = v
	}
	return savingsSnapshotRecord{
		UserID:           s.UserID,
		ConnectionID:     s.ConnectionID,
		Day:              s.Day,
		TotalSavings:     s.TotalSavings,
		ZombieCount:      s.ZombieCount,
		ActiveCount:      s.ActiveCount,
		ServiceBreakdown: breakdown,
		CreatedAt:        s.CreatedAt,
		UpdatedAt:        s.UpdatedAt,
	}
}

func (r savingsSnapshotRecord) model() models.SavingsHistorySnapshot {
	breakdown := make(map[string]float64, len(r.ServiceBreakdown))
	for k, v := range r.ServiceBreakdown {
		if f, ok := v.(float64); ok {
			breakdown[k] = f
		}
	}
	return models.SavingsHistorySnapshot{
		UserID:           r.UserID,
		ConnectionID:     r.ConnectionID,
		Day:              r.Day,
		TotalSavings:     r.TotalSavings,
		ZombieCount:      r.ZombieCount,
		ActiveCount:      r.ActiveCount,
		ServiceBreakdown: breakdown,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
	}
}

func toCommunityRecord(s models.CommunityStatsSnapshot) (communityStatsRecord, error) {
	top := s.TopResourceTypes
	if top == nil {
		top = []models.ResourceTypeSavings{}
	}
	raw, err := json.Marshal(top)
	if err != nil {
		return communityStatsRecord{}, err
	}
	return communityStatsRecord{
		Day:                s.Day,
		TotalSavings:       s.TotalSavings,
		TotalUsers:         s.TotalUsers,
		TotalZombiesKilled: s.TotalZombiesKilled,
		TotalScans:         s.TotalScans,
		TopResourceTypes:   datatypes.JSON(raw),
		UpdatedAt:          s.UpdatedAt,
	}, nil
}

func (r communityStatsRecord) model() (models.CommunityStatsSnapshot, error) {
	var top []models.ResourceTypeSavings
	if len(r.TopResourceTypes) > 0 {
		if err := json.Unmarshal(r.TopResourceTypes, &top); err != nil {
			return models.CommunityStatsSnapshot{}, err
		}
	}
	return models.CommunityStatsSnapshot{
		Day:                r.Day,
		TotalSavings:       r.TotalSavings,
		TotalUsers:         r.TotalUsers,
		TotalZombiesKilled: r.TotalZombiesKilled,
		TotalScans:         r.TotalScans,
		TopResourceTypes:   top,
		UpdatedAt:          r.UpdatedAt,
	}, nil
}

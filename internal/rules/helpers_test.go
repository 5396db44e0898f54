package rules

import (
	"testing"
	"time"

	"github.com/pankaj-dahiya-devops/spendscan/internal/models"
	"github.com/pankaj-dahiya-devops/spendscan/internal/policy"
	"github.com/pankaj-dahiya-devops/spendscan/internal/pricing"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func awsCtx(data *models.AWSData) RuleContext {
	return RuleContext{
		Provider:  models.ProviderAWS,
		Data:      &models.ProviderData{Provider: models.ProviderAWS, AWS: data},
		Tier:      models.TierPro,
		Now:       testNow,
		Converter: pricing.Converter{Rate: 0.92},
	}
}

func oneRegion(rd models.AWSRegionData) *models.AWSData {
	return &models.AWSData{AccountID: "111122223333", HomeRegion: rd.Region, Regions: []models.AWSRegionData{rd}}
}

func daysAgo(n int) time.Time {
	return testNow.Add(-time.Duration(n) * 24 * time.Hour)
}

func disabled(checkID string) *policy.PolicyConfig {
	off := false
	return &policy.PolicyConfig{Version: 1, Rules: map[string]policy.RuleConfig{checkID: {Enabled: &off}}}
}

func requireOne(t *testing.T, got []models.Finding) models.Finding {
	t.Helper()
	if len(got) != 1 {
		t.Fatalf("want 1 finding, got %d", len(got))
	}
	return got[0]
}

func assertWaste(t *testing.T, f models.Finding, ruleID string, status models.FindingStatus, savings float64) {
	t.Helper()
	if f.RuleID != ruleID {
		t.Errorf("RuleID = %q; want %q", f.RuleID, ruleID)
	}
	if f.Status != status {
		t.Errorf("Status = %q; want %q", f.Status, status)
	}
	if f.PotentialSavings != savings {
		t.Errorf("PotentialSavings = %v; want %v", f.PotentialSavings, savings)
	}
	if !f.DetectedAt.Equal(testNow) {
		t.Errorf("DetectedAt = %v; want %v", f.DetectedAt, testNow)
	}
}

func assertActive(t *testing.T, f models.Finding) {
	t.Helper()
	if f.Status != models.StatusActive {
		t.Errorf("Status = %q; want active", f.Status)
	}
	if f.PotentialSavings != 0 {
		t.Errorf("PotentialSavings = %v; want 0 for active finding", f.PotentialSavings)
	}
}

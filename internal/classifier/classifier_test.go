package classifier

import (
	"reflect"
	"testing"
	"time"

	"github.com/pankaj-dahiya-devops/spendscan/internal/models"
	"github.com/pankaj-dahiya-devops/spendscan/internal/pricing"
	"github.com/pankaj-dahiya-devops/spendscan/internal/rules"
)

var now = time.Date(2026, 5, 10, 8, 0, 0, 0, time.UTC)

func sampleAWS() *models.ProviderData {
	return &models.ProviderData{
		Provider: models.ProviderAWS,
		AWS: &models.AWSData{
			AccountID:  "111122223333",
			HomeRegion: "eu-west-1",
			Regions: []models.AWSRegionData{
				{
					Region: "eu-west-1",
					EC2Instances: []models.AWSEC2Instance{
						{InstanceID: "i-1", Region: "eu-west-1", InstanceType: "t3.micro", State: "stopped"},
						{InstanceID: "i-2", Region: "eu-west-1", InstanceType: "t3.micro", State: "running"},
					},
					ElasticIPs: []models.AWSElasticIP{
						{PublicIP: "1.1.1.1", Region: "eu-west-1"},
						{PublicIP: "2.2.2.2", Region: "eu-west-1"},
						{PublicIP: "3.3.3.3", Region: "eu-west-1"},
					},
					EBSVolumes: []models.AWSEBSVolume{
						{VolumeID: "vol-0", Region: "eu-west-1", SizeGB: 0, State: "available"},
					},
				},
			},
			Buckets: []models.AWSS3Bucket{{Name: "b", ActivityKnown: true, ObjectCount: 1, LastWrite: now.Add(-time.Hour)}},
		},
	}
}

func input(p models.Provider, d *models.ProviderData) Input {
	return Input{Provider: p, Data: d, Tier: models.TierPro, Now: now, Converter: pricing.Converter{Rate: 0.92}}
}

func TestClassify_Deterministic(t *testing.T) {
	c := New()
	a := c.Classify(input(models.ProviderAWS, sampleAWS()))
	b := c.Classify(input(models.ProviderAWS, sampleAWS()))
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("classification is not deterministic:\n%+v\n%+v", a, b)
	}
}

func TestClassify_SavingsInvariant(t *testing.T) {
	got := New().Classify(input(models.ProviderAWS, sampleAWS()))
	if len(got) == 0 {
		t.Fatal("expected findings")
	}
	for _, f := range got {
		if f.Status.IsWaste() && f.PotentialSavings <= 0 {
			t.Errorf("%s: waste status %q with savings %v", f.ResourceName, f.Status, f.PotentialSavings)
		}
		if f.Status == models.StatusActive && f.PotentialSavings != 0 {
			t.Errorf("%s: active with savings %v", f.ResourceName, f.PotentialSavings)
		}
	}
}

func TestClassify_ZeroSizedVolumeDropsToActive(t *testing.T) {
	for _, f := range New().Classify(input(models.ProviderAWS, sampleAWS())) {
		if f.ResourceName == "vol-0" && f.Status != models.StatusActive {
			t.Errorf("vol-0 status = %q; want active", f.Status)
		}
	}
}

func TestClassify_ThreeUnattachedIPs(t *testing.T) {
	var eip []models.Finding
	for _, f := range New().Classify(input(models.ProviderAWS, sampleAWS())) {
		if f.ResourceType == models.ResourceAWSElasticIP {
			eip = append(eip, f)
		}
	}
	if len(eip) != 1 {
		t.Fatalf("want 1 elastic ip finding, got %d", len(eip))
	}
	if eip[0].Status != models.StatusZombie || eip[0].PotentialSavings != 3*3.6*0.92 {
		t.Errorf("got status=%q savings=%v; want zombie 9.936", eip[0].Status, eip[0].PotentialSavings)
	}
}

func TestClassify_GitHubInactivePlan(t *testing.T) {
	data := &models.ProviderData{Provider: models.ProviderGitHub, GitHub: &models.GitHubData{
		Login: "octo", Plan: "pro", Seats: 1, LastActivity: now.Add(-70 * 24 * time.Hour),
	}}
	got := New().Classify(input(models.ProviderGitHub, data))
	if len(got) != 1 {
		t.Fatalf("want 1 finding, got %d", len(got))
	}
	if got[0].Status != models.StatusZombie || got[0].PotentialSavings != 3.68 {
		t.Errorf("got status=%q savings=%v; want zombie 3.68", got[0].Status, got[0].PotentialSavings)
	}
}

func TestClassify_GitHubUnknownActivityStaysActive(t *testing.T) {
	data := &models.ProviderData{Provider: models.ProviderGitHub, GitHub: &models.GitHubData{
		Login: "octo", Plan: "pro", Seats: 1,
	}}
	data.Warn("repos: GET /user/repos: status 500")
	got := New().Classify(input(models.ProviderGitHub, data))
	if len(got) != 1 || got[0].Status != models.StatusActive || got[0].PotentialSavings != 0 {
		t.Errorf("want one active finding, got %+v", got)
	}
}

func TestClassify_Baseline(t *testing.T) {
	t.Run("empty aws account", func(t *testing.T) {
		data := &models.ProviderData{Provider: models.ProviderAWS, AWS: &models.AWSData{AccountID: "999"}}
		got := New().Classify(input(models.ProviderAWS, data))
		if len(got) != 1 {
			t.Fatalf("want 1 baseline finding, got %d", len(got))
		}
		f := got[0]
		if f.RuleID != BaselineRuleID || f.Status != models.StatusActive || f.PotentialSavings != 0 {
			t.Errorf("unexpected baseline: %+v", f)
		}
		if f.ResourceName != "aws/999" || f.ResourceType != models.ResourceAWSAccount {
			t.Errorf("unexpected baseline resource: %q %q", f.ResourceName, f.ResourceType)
		}
	})

	t.Run("degraded data records warnings", func(t *testing.T) {
		data := &models.ProviderData{Provider: models.ProviderAWS, AWS: &models.AWSData{}}
		data.Warn("ec2: us-east-1: throttled")
		f := New().Classify(input(models.ProviderAWS, data))[0]
		if _, ok := f.RawData["warnings"]; !ok {
			t.Error("expected warnings in baseline raw data")
		}
		if f.ResourceName != "aws/account" {
			t.Errorf("ResourceName = %q; want aws/account", f.ResourceName)
		}
	})

	t.Run("nil data", func(t *testing.T) {
		got := New().Classify(input(models.ProviderSentry, nil))
		if len(got) != 1 || got[0].ResourceType != models.ResourceSentryPlan {
			t.Errorf("unexpected result: %+v", got)
		}
	})

	t.Run("unknown provider", func(t *testing.T) {
		if got := New().Classify(input("gitlab", nil)); len(got) != 1 {
			t.Errorf("want 1 baseline finding, got %d", len(got))
		}
	})
}

type fixedRule struct{ f models.Finding }

func (r fixedRule) ID() string                                    { return "FIXED" }
func (r fixedRule) Name() string                                  { return "fixed" }
func (r fixedRule) Evaluate(_ rules.RuleContext) []models.Finding { return []models.Finding{r.f} }

func TestClassify_NormalizesActiveSavings(t *testing.T) {
	c := NewWithPacks(func(p models.Provider) []rules.Rule {
		return []rules.Rule{fixedRule{f: models.Finding{ResourceName: "x", Status: models.StatusActive, PotentialSavings: 5}}}
	})
	f := c.Classify(input(models.ProviderAWS, nil))[0]
	if f.PotentialSavings != 0 {
		t.Errorf("PotentialSavings = %v; want 0", f.PotentialSavings)
	}
}

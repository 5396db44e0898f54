package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/pankaj-dahiya-devops/spendscan/internal/models"
)

func newTestStore(t *testing.T) *GormStore {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatal(err)
	}
	sqlDB.SetMaxOpenConns(1)
	s, err := New(db, nil)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

var day0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func finding(user, conn, name string, status models.FindingStatus, savings float64) models.Finding {
	return models.Finding{
		ID:               user + "/" + conn + "/" + name + "/" + string(status),
		UserID:           user,
		ConnectionID:     conn,
		Provider:         models.ProviderAWS,
		RuleID:           "EC2_STOPPED",
		ResourceName:     name,
		ResourceType:     models.ResourceAWSEC2,
		Region:           "us-east-1",
		Status:           status,
		PotentialSavings: savings,
		Reason:           "r",
		RawData:          map[string]any{"instance_id": name},
		DetectedAt:       day0,
	}
}

func TestConnections(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	for i, id := range []string{"c2", "c1"} {
		err := s.SaveConnection(ctx, models.Connection{
			ID:        id,
			UserID:    "u1",
			Provider:  models.ProviderGitHub,
			Metadata:  map[string]string{"plan": "pro"},
			CreatedAt: day0.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatal(err)
		}
	}
	if err := s.SaveConnection(ctx, models.Connection{ID: "c3", UserID: "u2", Provider: models.ProviderAWS}); err != nil {
		t.Fatal(err)
	}

	t.Run("list in creation order", func(t *testing.T) {
		conns, err := s.ListConnections(ctx, "u1")
		if err != nil {
			t.Fatal(err)
		}
		if len(conns) != 2 || conns[0].ID != "c2" || conns[1].ID != "c1" {
			t.Fatalf("unexpected connections: %+v", conns)
		}
		if conns[0].Status != models.ConnectionActive || conns[0].MetadataValue("plan") != "pro" {
			t.Errorf("unexpected fields: %+v", conns[0])
		}
	})

	t.Run("update scan status", func(t *testing.T) {
		at := day0.Add(time.Hour)
		if err := s.UpdateScanStatus(ctx, "c1", models.ConnectionError, "bad token", nil); err != nil {
			t.Fatal(err)
		}
		c, err := s.GetConnection(ctx, "c1")
		if err != nil {
			t.Fatal(err)
		}
		if c.Status != models.ConnectionError || c.ErrorMessage != "bad token" || c.LastScannedAt != nil {
			t.Fatalf("unexpected connection: %+v", c)
		}

		if err := s.UpdateScanStatus(ctx, "c1", models.ConnectionActive, "", &at); err != nil {
			t.Fatal(err)
		}
		c, _ = s.GetConnection(ctx, "c1")
		if c.LastScannedAt == nil || !c.LastScannedAt.Equal(at) || c.ErrorMessage != "" {
			t.Fatalf("unexpected connection: %+v", c)
		}

		n, err := s.CountScansBetween(ctx, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC))
		if err != nil || n != 1 {
			t.Fatalf("CountScansBetween = %d, %v; want 1", n, err)
		}
	})

	t.Run("unknown id", func(t *testing.T) {
		if _, err := s.GetConnection(ctx, "nope"); !errors.Is(err, ErrNotFound) {
			t.Errorf("GetConnection: want ErrNotFound, got %v", err)
		}
		if err := s.UpdateScanStatus(ctx, "nope", models.ConnectionActive, "", nil); !errors.Is(err, ErrNotFound) {
			t.Errorf("UpdateScanStatus: want ErrNotFound, got %v", err)
		}
	})
}

func TestReplaceFindings_ScopedToConnection(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	must := func(err error) {
		t.Helper()
		if err != nil {
			t.Fatal(err)
		}
	}
	must(s.ReplaceFindings(ctx, "u1", "c1", []models.Finding{
		finding("u1", "c1", "i-1", models.StatusZombie, 7.36),
		finding("u1", "c1", "i-2", models.StatusActive, 0),
	}))
	must(s.ReplaceFindings(ctx, "u1", "c2", []models.Finding{
		finding("u1", "c2", "i-9", models.StatusZombie, 7.36),
	}))
	before, err := s.ListFindings(ctx, "u1")
	must(err)

	must(s.ReplaceFindings(ctx, "u1", "c1", []models.Finding{
		finding("u1", "c1", "i-3", models.StatusActive, 0),
	}))

	after, err := s.ListFindings(ctx, "u1")
	must(err)
	if len(after) != 2 {
		t.Fatalf("got %d findings; want 2", len(after))
	}
	if after[0].ResourceName != "i-3" {
		t.Errorf("c1 not replaced: %+v", after[0])
	}
	if fmt.Sprint(after[1]) != fmt.Sprint(before[2]) {
		t.Errorf("c2 changed:\nbefore %+v\nafter  %+v", before[2], after[1])
	}
	if after[1].RawData["instance_id"] != "i-9" {
		t.Errorf("raw data lost: %+v", after[1].RawData)
	}
}

func TestReplaceFindings_RejectsForeignFinding(t *testing.T) {
	s := newTestStore(t)
	err := s.ReplaceFindings(context.Background(), "u1", "c1", []models.Finding{
		finding("u1", "c2", "i-1", models.StatusZombie, 1),
	})
	if err == nil {
		t.Fatal("expected error for a finding of another connection")
	}
}

func TestReplaceFindings_KeepsOrder(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	names := []string{"z", "a", "m"}
	var in []models.Finding
	for _, n := range names {
		in = append(in, finding("u1", "c1", n, models.StatusActive, 0))
	}
	if err := s.ReplaceFindings(ctx, "u1", "c1", in); err != nil {
		t.Fatal(err)
	}
	got, _ := s.ListFindings(ctx, "u1")
	for i, n := range names {
		if got[i].ResourceName != n {
			t.Fatalf("position %d = %q; want %q", i, got[i].ResourceName, n)
		}
	}
}

func TestSavingsSnapshot_UpsertOverwrites(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	first := models.SavingsHistorySnapshot{
		UserID: "u1", Day: "2026-03-01", TotalSavings: 10, ZombieCount: 2, ActiveCount: 1,
		ServiceBreakdown: map[string]float64{"EC2_INSTANCE": 10},
		CreatedAt:        day0, UpdatedAt: day0,
	}
	second := first
	second.TotalSavings = 4
	second.ZombieCount = 1
	second.ServiceBreakdown = map[string]float64{"ELASTIC_IP": 4}
	second.CreatedAt = day0.Add(time.Hour)
	second.UpdatedAt = day0.Add(time.Hour)

	if err := s.UpsertSavingsSnapshot(ctx, first); err != nil {
		t.Fatal(err)
	}
	if err := s.UpsertSavingsSnapshot(ctx, second); err != nil {
		t.Fatal(err)
	}

	rows, err := s.ListAggregatesOn(ctx, "2026-03-01")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 {
		t.Fatalf("got %d rows; want 1", len(rows))
	}
	got := rows[0]
	if got.TotalSavings != 4 || got.ZombieCount != 1 || got.ServiceBreakdown["ELASTIC_IP"] != 4 || len(got.ServiceBreakdown) != 1 {
		t.Errorf("second values not applied: %+v", got)
	}
	if !got.CreatedAt.Equal(day0) {
		t.Errorf("CreatedAt = %v; want first write %v", got.CreatedAt, day0)
	}
}

func TestLatestAggregateBefore(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	for _, snap := range []models.SavingsHistorySnapshot{
		{UserID: "u1", Day: "2026-02-20", ZombieCount: 5},
		{UserID: "u1", Day: "2026-02-27", ZombieCount: 3},
		{UserID: "u1", ConnectionID: "c1", Day: "2026-02-28", ZombieCount: 9},
		{UserID: "u1", Day: "2026-03-01", ZombieCount: 1},
	} {
		if err := s.UpsertSavingsSnapshot(ctx, snap); err != nil {
			t.Fatal(err)
		}
	}

	got, err := s.LatestAggregateBefore(ctx, "u1", "2026-03-01")
	if err != nil {
		t.Fatal(err)
	}
	if got.Day != "2026-02-27" || got.ZombieCount != 3 {
		t.Errorf("got %+v; want the 2026-02-27 aggregate", got)
	}
	if _, err := s.LatestAggregateBefore(ctx, "u1", "2026-02-20"); !errors.Is(err, ErrNotFound) {
		t.Errorf("want ErrNotFound, got %v", err)
	}

	hist, err := s.ListSavingsHistory(ctx, "u1", 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(hist) != 2 || hist[0].Day != "2026-03-01" {
		t.Errorf("unexpected history: %+v", hist)
	}
}

func TestCommunityStats(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	if _, err := s.GetCommunityStats(ctx, "2026-03-01"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
	in := models.CommunityStatsSnapshot{
		Day: "2026-03-01", TotalSavings: 12.5, TotalUsers: 2, TotalZombiesKilled: 1, TotalScans: 3,
		TopResourceTypes: []models.ResourceTypeSavings{{ResourceType: "EC2_INSTANCE", Savings: 12.5}},
		UpdatedAt:        day0,
	}
	if err := s.UpsertCommunityStats(ctx, in); err != nil {
		t.Fatal(err)
	}
	in.TotalUsers = 3
	if err := s.UpsertCommunityStats(ctx, in); err != nil {
		t.Fatal(err)
	}
	got, err := s.GetCommunityStats(ctx, "2026-03-01")
	if err != nil {
		t.Fatal(err)
	}
	if got.TotalUsers != 3 || len(got.TopResourceTypes) != 1 || got.TopResourceTypes[0].Savings != 12.5 {
		t.Errorf("unexpected stats: %+v", got)
	}
}

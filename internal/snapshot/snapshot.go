// Package snapshot rolls persisted findings into day-bucketed history rows
// and the cross-user community rollup.
package snapshot

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/pankaj-dahiya-devops/spendscan/internal/models"
	"github.com/pankaj-dahiya-devops/spendscan/internal/store"
)

// TopResourceTypes is the length of the community ranking.
const TopResourceTypes = 5

// Store is the persistence the service needs.
type Store interface {
	store.FindingStore
	store.SnapshotStore
	CountScansBetween(ctx context.Context, from, to time.Time) (int, error)
}

// Service computes and upserts snapshots. It does not schedule itself.
type Service struct {
	store Store
	now   func() time.Time
	log   *zap.Logger
}

// NewService returns a Service. A nil clock uses time.Now.
func NewService(st Store, now func() time.Time, log *zap.Logger) *Service {
	if now == nil {
		now = time.Now
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{store: st, now: now, log: log.Named("snapshot")}
}

// Day returns the UTC calendar day of t.
func Day(t time.Time) string {
	return t.UTC().Format(models.DayLayout)
}

// Snapshot writes one row per connection and one whole-user row for today
// from the user's current findings. Repeating it on the same day
// overwrites the rows.
func (s *Service) Snapshot(ctx context.Context, userID string) error {
	findings, err := s.store.ListFindings(ctx, userID)
	if err != nil {
		return fmt.Errorf("snapshot %s: %w", userID, err)
	}
	now := s.now().UTC()
	day := Day(now)

	var order []string
	perConn := make(map[string][]models.Finding)
	for _, f := range findings {
		if _, ok := perConn[f.ConnectionID]; !ok {
			order = append(order, f.ConnectionID)
		}
		perConn[f.ConnectionID] = append(perConn[f.ConnectionID], f)
	}

	rows := make([]models.SavingsHistorySnapshot, 0, len(order)+1)
	for _, connID := range order {
		rows = append(rows, aggregate(userID, connID, day, now, perConn[connID]))
	}
	rows = append(rows, aggregate(userID, "", day, now, findings))

	for _, r := range rows {
		if err := s.store.UpsertSavingsSnapshot(ctx, r); err != nil {
			return fmt.Errorf("snapshot %s: %w", userID, err)
		}
	}
	s.log.Info("savings snapshot written",
		zap.String("user_id", userID),
		zap.String("day", day),
		zap.Int("connections", len(order)),
		zap.Int("findings", len(findings)))
	return nil
}

// UpdateCommunityStats rolls today's whole-user rows of every user into the
// community row for today.
func (s *Service) UpdateCommunityStats(ctx context.Context) error {
	now := s.now().UTC()
	day := Day(now)

	aggs, err := s.store.ListAggregatesOn(ctx, day)
	if err != nil {
		return fmt.Errorf("community stats: %w", err)
	}

	total := decimal.Zero
	byType := make(map[string]decimal.Decimal)
	killed := 0
	for _, a := range aggs {
		total = total.Add(decimal.NewFromFloat(a.TotalSavings))
		for rt, v := range a.ServiceBreakdown {
			byType[rt] = byType[rt].Add(decimal.NewFromFloat(v))
		}
		prev, err := s.store.LatestAggregateBefore(ctx, a.UserID, day)
		switch {
		case errors.Is(err, store.ErrNotFound):
		case err != nil:
			return fmt.Errorf("community stats: %w", err)
		default:
			if d := prev.ZombieCount - a.ZombieCount; d > 0 {
				killed += d
			}
		}
	}

	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	scans, err := s.store.CountScansBetween(ctx, start, start.AddDate(0, 0, 1))
	if err != nil {
		return fmt.Errorf("community stats: %w", err)
	}

	stats := models.CommunityStatsSnapshot{
		Day:                day,
		TotalSavings:       round2(total),
		TotalUsers:         len(aggs),
		TotalZombiesKilled: killed,
		TotalScans:         scans,
		TopResourceTypes:   topTypes(byType, TopResourceTypes),
		UpdatedAt:          now,
	}
	if err := s.store.UpsertCommunityStats(ctx, stats); err != nil {
		return fmt.Errorf("community stats: %w", err)
	}
	s.log.Info("community stats written",
		zap.String("day", day),
		zap.Int("users", stats.TotalUsers),
		zap.Int("zombies_killed", killed))
	return nil
}

func aggregate(userID, connID, day string, now time.Time, findings []models.Finding) models.SavingsHistorySnapshot {
	total := decimal.Zero
	byType := make(map[string]decimal.Decimal)
	snap := models.SavingsHistorySnapshot{
		UserID:       userID,
		ConnectionID: connID,
		Day:          day,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	for _, f := range findings {
		switch f.Status {
		case models.StatusActive:
			snap.ActiveCount++
		case models.StatusZombie, models.StatusUnused:
			snap.ZombieCount++
		}
		if f.PotentialSavings > 0 {
			v := decimal.NewFromFloat(f.PotentialSavings)
			total = total.Add(v)
			byType[string(f.ResourceType)] = byType[string(f.ResourceType)].Add(v)
		}
	}
	snap.TotalSavings = round2(total)
	snap.ServiceBreakdown = make(map[string]float64, len(byType))
	for rt, v := range byType {
		snap.ServiceBreakdown[rt] = round2(v)
	}
	return snap
}

func topTypes(byType map[string]decimal.Decimal, n int) []models.ResourceTypeSavings {
	out := make([]models.ResourceTypeSavings, 0, len(byType))
	for rt, v := range byType {
		out = append(out, models.ResourceTypeSavings{ResourceType: rt, Savings: round2(v)})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Savings != out[j].Savings {
			return out[i].Savings > out[j].Savings
		}
		return out[i].ResourceType < out[j].ResourceType
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

func round2(d decimal.Decimal) float64 {
	f, _ := d.Round(2).Float64()
	return f
}

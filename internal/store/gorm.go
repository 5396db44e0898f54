package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/pankaj-dahiya-devops/spendscan/internal/models"
)

// DefaultDSN is the sqlite database used when none is configured.
const DefaultDSN = "spendscan.db?_busy_timeout=5000"

// GormStore is the gorm-backed Store.
type GormStore struct {
	db  *gorm.DB
	log *zap.Logger
}

// OpenSQLite opens (creating if needed) the sqlite database at dsn and
// migrates the schema.
func OpenSQLite(dsn string, log *zap.Logger) (*GormStore, error) {
	if dsn == "" {
		dsn = DefaultDSN
	}
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// sqlite allows a single writer.
	sqlDB.SetMaxOpenConns(1)
	return New(db, log)
}

// New wraps an existing gorm handle and migrates the schema.
func New(db *gorm.DB, log *zap.Logger) (*GormStore, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if err := db.AutoMigrate(
		&connectionRecord{},
		&findingRecord{},
		&savingsSnapshotRecord{},
		&communityStatsRecord{},
	); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &GormStore{db: db, log: log.Named("store")}, nil
}

// Close releases the underlying connection pool.
func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *GormStore) ListConnections(ctx context.Context, userID string) ([]models.Connection, error) {
	var rows []connectionRecord
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at, id").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list connections: %w", err)
	}
	out := make([]models.Connection, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.model())
	}
	return out, nil
}

func (s *GormStore) GetConnection(ctx context.Context, id string) (models.Connection, error) {
	var row connectionRecord
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Connection{}, ErrNotFound
	}
	if err != nil {
		return models.Connection{}, fmt.Errorf("get connection: %w", err)
	}
	return row.model(), nil
}

// SaveConnection inserts conn or overwrites the row with the same ID.
func (s *GormStore) SaveConnection(ctx context.Context, conn models.Connection) error {
	if conn.ID == "" || conn.UserID == "" {
		return errors.New("save connection: id and user id are required")
	}
	if conn.CreatedAt.IsZero() {
		conn.CreatedAt = time.Now().UTC()
	}
	row := toConnectionRecord(conn)
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		Create(&row).Error
	if err != nil {
		return fmt.Errorf("save connection: %w", err)
	}
	return nil
}

func (s *GormStore) UpdateScanStatus(
	ctx context.Context,
	id string,
	status models.ConnectionStatus,
	message string,
	scannedAt *time.Time,
) error {
	updates := map[string]any{
		"status":        string(status),
		"error_message": message,
	}
	if scannedAt != nil {
		updates["last_scanned_at"] = *scannedAt
	}
	res := s.db.WithContext(ctx).
		Model(&connectionRecord{}).
		Where("id = ?", id).
		Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("update scan status: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) CountScansBetween(ctx context.Context, from, to time.Time) (int, error) {
	var n int64
	err := s.db.WithContext(ctx).
		Model(&connectionRecord{}).
		Where("last_scanned_at >= ? AND last_scanned_at < ?", from, to).
		Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("count scans: %w", err)
	}
	return int(n), nil
}

func (s *GormStore) ListFindings(ctx context.Context, userID string) ([]models.Finding, error) {
	var rows []findingRecord
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("connection_id, position").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list findings: %w", err)
	}
	out := make([]models.Finding, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.model())
	}
	return out, nil
}

// ReplaceFindings deletes the connection's findings and inserts the new set
// in one transaction. Findings are upserted on their uniqueness key so a
// duplicate in the batch keeps the last value.
func (s *GormStore) ReplaceFindings(ctx context.Context, userID, connectionID string, findings []models.Finding) error {
	rows := make([]findingRecord, 0, len(findings))
	for i, f := range findings {
		if f.UserID != userID || f.ConnectionID != connectionID {
			return fmt.Errorf("replace findings: finding %q belongs to %s/%s", f.ResourceName, f.UserID, f.ConnectionID)
		}
		rows = append(rows, toFindingRecord(f, i))
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Where("user_id = ? AND connection_id = ?", userID, connectionID).
			Delete(&findingRecord{}).Error; err != nil {
			return err
		}
		for i := range rows {
			if err := tx.
				Clauses(clause.OnConflict{
					Columns: []clause.Column{
						{Name: "user_id"}, {Name: "connection_id"}, {Name: "resource_name"}, {Name: "status"},
					},
					UpdateAll: true,
				}).
				Create(&rows[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("replace findings: %w", err)
	}
	s.log.Debug("findings replaced",
		zap.String("user_id", userID),
		zap.String("connection_id", connectionID),
		zap.Int("count", len(rows)))
	return nil
}

// UpsertSavingsSnapshot writes the row for (user, connection, day),
// overwriting the values of an existing row but keeping its CreatedAt.
func (s *GormStore) UpsertSavingsSnapshot(ctx context.Context, snap models.SavingsHistorySnapshot) error {
	row := toSavingsRecord(snap)
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "connection_id"}, {Name: "day"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"total_savings", "zombie_count", "active_count", "service_breakdown", "updated_at",
			}),
		}).
		Create(&row).Error
	if err != nil {
		return fmt.Errorf("upsert savings snapshot: %w", err)
	}
	return nil
}

func (s *GormStore) ListAggregatesOn(ctx context.Context, day string) ([]models.SavingsHistorySnapshot, error) {
	var rows []savingsSnapshotRecord
	err := s.db.WithContext(ctx).
		Where("day = ? AND connection_id = ''", day).
		Order("user_id").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list aggregates: %w", err)
	}
	out := make([]models.SavingsHistorySnapshot, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.model())
	}
	return out, nil
}

func (s *GormStore) LatestAggregateBefore(ctx context.Context, userID, day string) (models.SavingsHistorySnapshot, error) {
	var row savingsSnapshotRecord
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND connection_id = '' AND day < ?", userID, day).
		Order("day DESC").
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.SavingsHistorySnapshot{}, ErrNotFound
	}
	if err != nil {
		return models.SavingsHistorySnapshot{}, fmt.Errorf("latest aggregate: %w", err)
	}
	return row.model(), nil
}

func (s *GormStore) ListSavingsHistory(ctx context.Context, userID string, limit int) ([]models.SavingsHistorySnapshot, error) {
	q := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("day DESC, connection_id")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var rows []savingsSnapshotRecord
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list savings history: %w", err)
	}
	out := make([]models.SavingsHistorySnapshot, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.model())
	}
	return out, nil
}

func (s *GormStore) UpsertCommunityStats(ctx context.Context, snap models.CommunityStatsSnapshot) error {
	row, err := toCommunityRecord(snap)
	if err != nil {
		return fmt.Errorf("upsert community stats: %w", err)
	}
	err = s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "day"}},
			UpdateAll: true,
		}).
		Create(&row).Error
	if err != nil {
		return fmt.Errorf("upsert community stats: %w", err)
	}
	return nil
}

func (s *GormStore) GetCommunityStats(ctx context.Context, day string) (models.CommunityStatsSnapshot, error) {
	var row communityStatsRecord
	err := s.db.WithContext(ctx).Where("day = ?", day).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.CommunityStatsSnapshot{}, ErrNotFound
	}
	if err != nil {
		return models.CommunityStatsSnapshot{}, fmt.Errorf("get community stats: %w", err)
	}
	return row.model()
}

var _ Store = (*GormStore)(nil)

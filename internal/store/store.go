// Package store persists connections, findings and snapshots.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/pankaj-dahiya-devops/spendscan/internal/models"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("store: not found")

// ConnectionStore reads and updates provider connections.
type ConnectionStore interface {
	// ListConnections returns the user's connections in creation order.
	ListConnections(ctx context.Context, userID string) ([]models.Connection, error)
	GetConnection(ctx context.Context, id string) (models.Connection, error)
	SaveConnection(ctx context.Context, conn models.Connection) error
	// UpdateScanStatus sets status and message; scannedAt is written only
	// when non-nil.
	UpdateScanStatus(ctx context.Context, id string, status models.ConnectionStatus, message string, scannedAt *time.Time) error
	// CountScansBetween counts connections whose last scan falls in [from, to).
	CountScansBetween(ctx context.Context, from, to time.Time) (int, error)
}

// FindingStore reads and replaces findings.
type FindingStore interface {
	// ListFindings returns every finding of the user ordered by connection
	// and then by the order they were written in.
	ListFindings(ctx context.Context, userID string) ([]models.Finding, error)
	// ReplaceFindings atomically swaps the findings of one connection.
	ReplaceFindings(ctx context.Context, userID, connectionID string, findings []models.Finding) error
}

// SnapshotStore persists day-bucketed aggregates.
type SnapshotStore interface {
	UpsertSavingsSnapshot(ctx context.Context, s models.SavingsHistorySnapshot) error
	// ListAggregatesOn returns the whole-user rows of every user for day.
	ListAggregatesOn(ctx context.Context, day string) ([]models.SavingsHistorySnapshot, error)
	// LatestAggregateBefore returns the user's most recent whole-user row
	// strictly before day, or ErrNotFound.
	LatestAggregateBefore(ctx context.Context, userID, day string) (models.SavingsHistorySnapshot, error)
	// ListSavingsHistory returns the user's rows, newest day first.
	ListSavingsHistory(ctx context.Context, userID string, limit int) ([]models.SavingsHistorySnapshot, error)
	UpsertCommunityStats(ctx context.Context, s models.CommunityStatsSnapshot) error
	GetCommunityStats(ctx context.Context, day string) (models.CommunityStatsSnapshot, error)
}

// Store is the full persistence surface.
type Store interface {
	ConnectionStore
	FindingStore
	SnapshotStore
}

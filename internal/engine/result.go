package engine

import (
	"strings"

	"github.com/google/uuid"

	"github.com/pankaj-dahiya-devops/spendscan/internal/models"
)

// ConnectionState is the per-connection scan state within one trigger.
type ConnectionState string

const (
	StateNeedsScan ConnectionState = "needs_scan"
	StateScanning  ConnectionState = "scanning"
	StateScanned   ConnectionState = "scanned"
	StateSkipped   ConnectionState = "skipped"
	StateFailed    ConnectionState = "failed"
)

// ConnectionOutcome reports what one trigger did with one connection.
// FindingCount is the number of findings the connection contributes to
// the result, fresh or persisted.
type ConnectionOutcome struct {
	ConnectionID string          `json:"connection_id"`
	Provider     models.Provider `json:"provider"`
	State        ConnectionState `json:"state"`
	Reason       string          `json:"reason,omitempty"`
	Error        string          `json:"error,omitempty"`
	FindingCount int             `json:"finding_count"`
	Degraded     bool            `json:"degraded,omitempty"`
	Warnings     []string        `json:"warnings,omitempty"`
}

// TriggerResult is the response of Orchestrator.Trigger.
//
// Cached is true only when no connection needed scanning.
// ScannedConnections counts connections whose findings were replaced.
type TriggerResult struct {
	Findings           []models.Finding    `json:"findings"`
	Cached             bool                `json:"cached"`
	ScannedConnections int                 `json:"scanned_connections"`
	TotalConnections   int                 `json:"total_connections"`
	Connections        []ConnectionOutcome `json:"connections"`
}

var findingNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://spendscan.dev/finding"))

// FindingID derives the stable ID of a finding from its uniqueness key.
func FindingID(k models.FindingKey) string {
	name := strings.Join([]string{k.UserID, k.ConnectionID, k.ResourceName, string(k.Status)}, "\x00")
	return uuid.NewSHA1(findingNamespace, []byte(name)).String()
}

package entities

import "time"

// Audit actions recorded for correction changes.
const (
	AuditAdd    = "add"
	AuditRemove = "remove"
	AuditPrune  = "prune"
	AuditImport = "import"
)

// AuditEntry represents a logged change to the stored corrections.
type AuditEntry struct {
	ID           int64          `json:"id"`
	Action       string         `json:"action"`
	CorrectionID string         `json:"correction_id,omitempty"`
	Details      map[string]any `json:"details,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
}

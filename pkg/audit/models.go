// Package audit records every mutating API call as an owner-scoped audit
// event and serves the caller's trail back.
package audit

import (
	"time"

	"github.com/greenstamp/greenstamp-api/pkg/carbon"
)

// Outcomes recorded on an Event.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeDenied  = "denied"
)

// Event is one audited request.
type Event struct {
	ID            string         `gorm:"primaryKey;column:id;type:varchar(36)"`
	Actor         string         `gorm:"column:actor;index:idx_audit_actor_time,priority:1;not null"`
	CorrelationID string         `gorm:"column:correlation_id;index"`
	RequestID     string         `gorm:"column:request_id;index"`
	ResourceType  string         `gorm:"column:resource_type"`
	ResourceID    string         `gorm:"column:resource_id"`
	Action        string         `gorm:"column:action"`
	Outcome       string         `gorm:"column:outcome;not null"`
	StatusCode    int            `gorm:"column:status_code"`
	Metadata      carbon.JSONMap `gorm:"column:metadata;type:text"`
	CreatedAt     time.Time      `gorm:"column:created_at;index:idx_audit_actor_time,priority:2;index:idx_audit_time"`
}

// TableName returns the GORM table name.
func (Event) TableName() string { return "audit_events" }

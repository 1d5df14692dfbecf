package models

import (
	"encoding/json"
	"time"
)

// AuditLog is a durable, human-readable record of a mutating action,
// attributed to an actor and linked to an entity type/id.
type AuditLog struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	UserID       *uint           `gorm:"index:idx_audit_user_id" json:"user_id,omitempty"`
	User         *User           `gorm:"foreignKey:UserID;references:ID" json:"user,omitempty"`
	ActorName    string          `gorm:"size:255;not null" json:"actor_name"`
	Action       string          `gorm:"size:60;not null;index:idx_audit_action" json:"action"`
	Description  *string         `gorm:"type:text" json:"description,omitempty"`
	EntityType   *string         `gorm:"size:60;index:idx_audit_entity" json:"entity_type,omitempty"`
	EntityID     *uint           `gorm:"index:idx_audit_entity" json:"entity_id,omitempty"`
	IPAddress    *string         `gorm:"type:inet" json:"ip_address,omitempty"`
	RequestID    *string         `gorm:"size:255;index:idx_audit_request_id" json:"request_id,omitempty"`
	Metadata     json.RawMessage `gorm:"type:jsonb" json:"metadata,omitempty"`
	Success      *bool           `gorm:"default:true;index:idx_audit_success" json:"success"`
	ErrorMessage *string         `gorm:"type:text" json:"error_message,omitempty"`
	CreatedAt    time.Time       `gorm:"default:CURRENT_TIMESTAMP;index:idx_audit_created_at" json:"created_at"`
}

func (AuditLog) TableName() string {
	return "audit_log"
}

// Audit action constants
const (
	AuditActionPayoutCreated = "commission_payout_created"
	AuditActionPayoutUpdated = "commission_payout_updated"
	AuditActionPayoutDeleted = "commission_payout_deleted"
)

// Entity types referenced by audit entries
const (
	AuditEntityCommissionPayout = "commission_payout"
)

// AuditLogFilter represents filter criteria for audit log queries
type AuditLogFilter struct {
	ID            *uint
	UserID        *uint
	Action        *string
	EntityType    *string
	EntityID      *uint
	Success       *bool
	RequestID     *string
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}

func (a *AuditLog) IsFailed() bool {
	return a.Success != nil && !*a.Success
}

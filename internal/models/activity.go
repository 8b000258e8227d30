package models

import (
	"time"

	"gorm.io/datatypes"
)

// Audit action types.
const (
	ActionTypeCreate = "CREATE"
	ActionTypeUpdate = "UPDATE"
	ActionTypeDelete = "DELETE"
)

// Audit actor types.
const (
	ActorTypeMember = "member"
	ActorTypeSystem = "system"
)

// ContentActivity is an append-only audit record for content mutations.
// ContentID is deliberately not a foreign key: history must stay resolvable
// after the content row it describes has been deleted. OrganizationID is
// denormalized onto every row for the same reason — tenant scoping must hold
// even when the content row no longer exists to join against.
type ContentActivity struct {
	ID             string            `gorm:"type:uuid;primaryKey" json:"id"`
	ContentID      string            `gorm:"type:uuid;not null;index" json:"content_id"`
	OrganizationID string            `gorm:"type:uuid;not null;index" json:"organization_id"`
	ActionType     string            `gorm:"size:16;not null" json:"action_type"`
	ActorID        string            `gorm:"type:uuid;not null" json:"actor_id"`
	ActorType      string            `gorm:"size:16;not null" json:"actor_type"`
	Metadata       datatypes.JSONMap `gorm:"type:json" json:"metadata"`
	OccurredAt     time.Time         `gorm:"index" json:"occurred_at"`
}

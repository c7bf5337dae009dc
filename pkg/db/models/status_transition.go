package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/bingbai-ux/baoflow-backend/pkg/enums"
)

// StatusTransition is the append-only audit record of a deal status change.
// Rows are written in the same transaction as the Deal update and are never
// updated or deleted afterwards.
type StatusTransition struct {
	ID         uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	DealID     uuid.UUID        `gorm:"column:deal_id;type:uuid;not null;index"`
	FromStatus enums.DealStatus `gorm:"column:from_status;type:text;not null"`
	ToStatus   enums.DealStatus `gorm:"column:to_status;type:text;not null"`
	ActorID    uuid.UUID        `gorm:"column:actor_id;type:uuid;not null"`
	Note       *string          `gorm:"column:note"`
	CreatedAt  time.Time        `gorm:"column:created_at;autoCreateTime"`
}

package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/bingbai-ux/baoflow-backend/pkg/enums"
)

// FactoryAssignment links a deal to one invited factory during competitive
// quoting. At most one assignment per deal may be selected; once one is,
// every sibling must be rejected.
type FactoryAssignment struct {
	ID          uuid.UUID              `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	DealID      uuid.UUID              `gorm:"column:deal_id;type:uuid;not null;index"`
	FactoryID   uuid.UUID              `gorm:"column:factory_id;type:uuid;not null"`
	Status      enums.AssignmentStatus `gorm:"column:status;type:text;not null;default:'requesting'"`
	Competitive bool                   `gorm:"column:competitive;not null;default:false"`
	RespondedAt *time.Time             `gorm:"column:responded_at"`
	DecidedAt   *time.Time             `gorm:"column:decided_at"`
	CreatedAt   time.Time              `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time              `gorm:"column:updated_at;autoUpdateTime"`
}

package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/bingbai-ux/baoflow-backend/pkg/enums"
)

// Deal is a single client purchase request tracked through the full
// fulfillment lifecycle. Status only moves forward through the ordered
// M01..M25 codes; every change appends a StatusTransition row.
type Deal struct {
	ID          uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Code        string              `gorm:"column:code;not null;uniqueIndex"`
	Status      enums.DealStatus    `gorm:"column:status;type:text;not null;default:'M01'"`
	ClientID    uuid.UUID           `gorm:"column:client_id;type:uuid;not null"`
	FactoryID   *uuid.UUID          `gorm:"column:factory_id;type:uuid"`
	SalesRepID  uuid.UUID           `gorm:"column:sales_rep_id;type:uuid;not null"`
	Transitions []StatusTransition  `gorm:"foreignKey:DealID;constraint:OnDelete:CASCADE"`
	Assignments []FactoryAssignment `gorm:"foreignKey:DealID;constraint:OnDelete:CASCADE"`
	Quotes      []Quote             `gorm:"foreignKey:DealID;constraint:OnDelete:CASCADE"`
	Payments    []Payment           `gorm:"foreignKey:DealID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

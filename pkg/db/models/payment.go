package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bingbai-ux/baoflow-backend/pkg/enums"
)

// Payment is a financial obligation on a deal, either owed by the client or
// owed to the selected factory. PaidAt is set exactly when the status is
// completed.
type Payment struct {
	ID            uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	DealID        uuid.UUID           `gorm:"column:deal_id;type:uuid;not null;index"`
	FactoryID     *uuid.UUID          `gorm:"column:factory_id;type:uuid"`
	Type          enums.PaymentType   `gorm:"column:type;type:text;not null"`
	Method        enums.PaymentMethod `gorm:"column:method;type:text;not null"`
	AmountSource  decimal.Decimal     `gorm:"column:amount_source;type:numeric(16,4);not null"`
	AmountTarget  decimal.Decimal     `gorm:"column:amount_target;type:numeric(18,0);not null"`
	Status        enums.PaymentStatus `gorm:"column:status;type:text;not null;default:'pending'"`
	DueAt         *time.Time          `gorm:"column:due_at"`
	PaidAt        *time.Time          `gorm:"column:paid_at"`
	FailureReason *string             `gorm:"column:failure_reason"`
	CreatedAt     time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

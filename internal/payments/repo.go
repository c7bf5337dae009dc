package payments

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/bingbai-ux/baoflow-backend/pkg/db/models"
	"github.com/bingbai-ux/baoflow-backend/pkg/enums"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) CreatePayment(tx *gorm.DB, row *models.Payment) error {
	if tx == nil {
		return errors.New("transaction required")
	}
	return tx.Create(row).Error
}

func (r *Repository) GetPaymentForUpdate(tx *gorm.DB, id uuid.UUID) (*models.Payment, error) {
	if tx == nil {
		return nil, errors.New("transaction required")
	}
	var row models.Payment
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// UpdateStatus moves the payment between settlement statuses, guarded by the
// expected current status. PaidAt is written exactly when the new status is
// completed, keeping the paid_at check constraint satisfied.
func (r *Repository) UpdateStatus(tx *gorm.DB, id uuid.UUID, from, to enums.PaymentStatus, paidAt *time.Time, failureReason *string) error {
	if tx == nil {
		return errors.New("transaction required")
	}
	updates := map[string]any{
		"status":         to,
		"paid_at":        paidAt,
		"failure_reason": failureReason,
	}
	result := tx.Model(&models.Payment{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListByDeal returns the deal's payments oldest first.
func (r *Repository) ListByDeal(ctx context.Context, dealID uuid.UUID) ([]models.Payment, error) {
	var rows []models.Payment
	err := r.db.WithContext(ctx).
		Where("deal_id = ?", dealID).
		Order("created_at ASC").
		Find(&rows).Error
	return rows, err
}

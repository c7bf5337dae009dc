package lifecycle

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/bingbai-ux/baoflow-backend/pkg/db/models"
	"github.com/bingbai-ux/baoflow-backend/pkg/enums"
	"github.com/bingbai-ux/baoflow-backend/pkg/pagination"
)

// Repository persists deals and their transition log. Write methods take the
// caller's transaction so a status update and its audit row commit together.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) CreateDeal(tx *gorm.DB, deal *models.Deal) error {
	if tx == nil {
		return errors.New("transaction required")
	}
	return tx.Create(deal).Error
}

// GetDealForUpdate loads the deal row under a row lock so concurrent status
// changes serialize on the same deal.
func (r *Repository) GetDealForUpdate(tx *gorm.DB, id uuid.UUID) (*models.Deal, error) {
	if tx == nil {
		return nil, errors.New("transaction required")
	}
	var deal models.Deal
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&deal).Error
	if err != nil {
		return nil, err
	}
	return &deal, nil
}

func (r *Repository) GetDeal(ctx context.Context, id uuid.UUID) (*models.Deal, error) {
	var deal models.Deal
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&deal).Error
	if err != nil {
		return nil, err
	}
	return &deal, nil
}

// UpdateStatus moves the deal from one status to another, guarded by the
// expected current status. Returns gorm.ErrRecordNotFound when the guard
// misses, meaning another writer got there first.
func (r *Repository) UpdateStatus(tx *gorm.DB, dealID uuid.UUID, from, to enums.DealStatus) error {
	if tx == nil {
		return errors.New("transaction required")
	}
	result := tx.Model(&models.Deal{}).
		Where("id = ? AND status = ?", dealID, from).
		Update("status", to)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *Repository) InsertTransition(tx *gorm.DB, row *models.StatusTransition) error {
	if tx == nil {
		return errors.New("transaction required")
	}
	return tx.Create(row).Error
}

// ListTransitions pages through a deal's transition log oldest first.
func (r *Repository) ListTransitions(ctx context.Context, dealID uuid.UUID, params pagination.Params) ([]models.StatusTransition, string, error) {
	limit := pagination.NormalizeLimit(params.Limit)

	query := r.db.WithContext(ctx).
		Where("deal_id = ?", dealID).
		Order("created_at ASC").
		Order("id ASC").
		Limit(limit + 1)

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, "", err
	}
	if cursor != nil {
		query = query.Where(
			"(created_at > ?) OR (created_at = ? AND id > ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	var rows []models.StatusTransition
	if err := query.Find(&rows).Error; err != nil {
		return nil, "", err
	}

	nextCursor := ""
	if len(rows) > limit {
		rows = rows[:limit]
		last := rows[len(rows)-1]
		nextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}
	return rows, nextCursor, nil
}

package quoting

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

// Repository persists factory assignments and quote versions. Rejected
// assignments stay as history; "live" below means any status but rejected.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) CreateAssignment(tx *gorm.DB, row *models.FactoryAssignment) error {
	if tx == nil {
		return errors.New("transaction required")
	}
	return tx.Create(row).Error
}

// ListLiveAssignments returns the deal's non-rejected assignments under a row
// lock so selection and invitation serialize per deal.
func (r *Repository) ListLiveAssignments(tx *gorm.DB, dealID uuid.UUID) ([]models.FactoryAssignment, error) {
	if tx == nil {
		return nil, errors.New("transaction required")
	}
	var rows []models.FactoryAssignment
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("deal_id = ? AND status <> ?", dealID, enums.AssignmentStatusRejected).
		Order("created_at ASC").
		Find(&rows).Error
	return rows, err
}

func (r *Repository) GetLiveAssignment(tx *gorm.DB, dealID, factoryID uuid.UUID) (*models.FactoryAssignment, error) {
	if tx == nil {
		return nil, errors.New("transaction required")
	}
	var row models.FactoryAssignment
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("deal_id = ? AND factory_id = ? AND status <> ?", dealID, factoryID, enums.AssignmentStatusRejected).
		First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *Repository) MarkResponded(tx *gorm.DB, id uuid.UUID, at time.Time) error {
	if tx == nil {
		return errors.New("transaction required")
	}
	return tx.Model(&models.FactoryAssignment{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":       enums.AssignmentStatusResponded,
			"responded_at": at,
		}).Error
}

// MarkSelected flips the assignment to selected, guarded by the responded
// status. The partial unique index on (deal_id) WHERE status = 'selected'
// backstops the at-most-one-winner invariant at the database level.
func (r *Repository) MarkSelected(tx *gorm.DB, id uuid.UUID, at time.Time) error {
	if tx == nil {
		return errors.New("transaction required")
	}
	result := tx.Model(&models.FactoryAssignment{}).
		Where("id = ? AND status = ?", id, enums.AssignmentStatusResponded).
		Updates(map[string]any{
			"status":     enums.AssignmentStatusSelected,
			"decided_at": at,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// RejectSiblings closes out every other live assignment once a winner exists.
func (r *Repository) RejectSiblings(tx *gorm.DB, dealID, winnerID uuid.UUID, at time.Time) error {
	if tx == nil {
		return errors.New("transaction required")
	}
	return tx.Model(&models.FactoryAssignment{}).
		Where("deal_id = ? AND id <> ? AND status IN ?", dealID, winnerID,
			[]enums.AssignmentStatus{enums.AssignmentStatusRequesting, enums.AssignmentStatusResponded}).
		Updates(map[string]any{
			"status":     enums.AssignmentStatusRejected,
			"decided_at": at,
		}).Error
}

func (r *Repository) SetDealFactory(tx *gorm.DB, dealID, factoryID uuid.UUID) error {
	if tx == nil {
		return errors.New("transaction required")
	}
	return tx.Model(&models.Deal{}).
		Where("id = ?", dealID).
		Update("factory_id", factoryID).Error
}

// MaxQuoteVersion returns the highest version recorded for the deal, zero
// when none exist. Runs inside the caller's transaction so version
// allocation is race-free alongside the unique (deal_id, version) index.
func (r *Repository) MaxQuoteVersion(tx *gorm.DB, dealID uuid.UUID) (int, error) {
	if tx == nil {
		return 0, errors.New("transaction required")
	}
	var version *int
	err := tx.Model(&models.Quote{}).
		Where("deal_id = ?", dealID).
		Select("MAX(version)").
		Scan(&version).Error
	if err != nil {
		return 0, err
	}
	if version == nil {
		return 0, nil
	}
	return *version, nil
}

func (r *Repository) CreateQuote(tx *gorm.DB, row *models.Quote) error {
	if tx == nil {
		return errors.New("transaction required")
	}
	return tx.Create(row).Error
}

func (r *Repository) GetQuoteForUpdate(tx *gorm.DB, id uuid.UUID) (*models.Quote, error) {
	if tx == nil {
		return nil, errors.New("transaction required")
	}
	var row models.Quote
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *Repository) MarkQuoteApproved(tx *gorm.DB, id uuid.UUID, at time.Time) error {
	if tx == nil {
		return errors.New("transaction required")
	}
	result := tx.Model(&models.Quote{}).
		Where("id = ? AND status = ?", id, enums.QuoteStatusSubmitted).
		Updates(map[string]any{
			"status":      enums.QuoteStatusApproved,
			"approved_at": at,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListAssignments returns every assignment for the deal, rejected included,
// without locking. Read paths only.
func (r *Repository) ListAssignments(ctx context.Context, dealID uuid.UUID) ([]models.FactoryAssignment, error) {
	var rows []models.FactoryAssignment
	err := r.db.WithContext(ctx).
		Where("deal_id = ?", dealID).
		Order("created_at ASC").
		Find(&rows).Error
	return rows, err
}

// ListQuotes returns every quote for the deal, newest version first.
func (r *Repository) ListQuotes(ctx context.Context, dealID uuid.UUID) ([]models.Quote, error) {
	var rows []models.Quote
	err := r.db.WithContext(ctx).
		Where("deal_id = ?", dealID).
		Order("version DESC").
		Find(&rows).Error
	return rows, err
}

package payments

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/bingbai-ux/baoflow-backend/pkg/db/models"
	"github.com/bingbai-ux/baoflow-backend/pkg/enums"
)

func setupPaymentsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS payments (
  id TEXT PRIMARY KEY,
  deal_id TEXT NOT NULL,
  factory_id TEXT,
  type TEXT NOT NULL,
  method TEXT NOT NULL,
  amount_source NUMERIC NOT NULL,
  amount_target NUMERIC NOT NULL,
  status TEXT NOT NULL DEFAULT 'pending',
  due_at DATETIME,
  paid_at DATETIME,
  failure_reason TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(schema).Error)
	return db
}

func newPayment(t *testing.T, db *gorm.DB, repo *Repository, dealID uuid.UUID, createdAt time.Time) *models.Payment {
	t.Helper()

	row := &models.Payment{
		ID:           uuid.New(),
		DealID:       dealID,
		Type:         enums.PaymentTypeDeposit,
		Method:       enums.PaymentMethodWire,
		AmountSource: decimal.NewFromInt(1000),
		AmountTarget: decimal.NewFromInt(155000),
		Status:       enums.PaymentStatusPending,
		CreatedAt:    createdAt,
	}
	require.NoError(t, repo.CreatePayment(db, row))
	return row
}

func TestRepositoryUpdateStatusGuard(t *testing.T) {
	db := setupPaymentsTestDB(t)
	repo := NewRepository(db)

	dealID := uuid.New()
	row := newPayment(t, db, repo, dealID, time.Now().UTC())

	err := repo.UpdateStatus(db, row.ID, enums.PaymentStatusPending, enums.PaymentStatusProcessing, nil, nil)
	require.NoError(t, err)

	// Stale guard: the row is no longer pending.
	err = repo.UpdateStatus(db, row.ID, enums.PaymentStatusPending, enums.PaymentStatusCompleted, nil, nil)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	var reloaded models.Payment
	require.NoError(t, db.Where("id = ?", row.ID).First(&reloaded).Error)
	assert.Equal(t, enums.PaymentStatusProcessing, reloaded.Status)
	assert.Nil(t, reloaded.PaidAt)
}

func TestRepositoryUpdateStatusWritesSettlementFields(t *testing.T) {
	db := setupPaymentsTestDB(t)
	repo := NewRepository(db)

	completed := newPayment(t, db, repo, uuid.New(), time.Now().UTC())
	paidAt := time.Now().UTC()
	require.NoError(t, repo.UpdateStatus(db, completed.ID, enums.PaymentStatusPending, enums.PaymentStatusCompleted, &paidAt, nil))

	var reloaded models.Payment
	require.NoError(t, db.Where("id = ?", completed.ID).First(&reloaded).Error)
	assert.Equal(t, enums.PaymentStatusCompleted, reloaded.Status)
	require.NotNil(t, reloaded.PaidAt)

	failed := newPayment(t, db, repo, uuid.New(), time.Now().UTC())
	reason := "insufficient funds"
	require.NoError(t, repo.UpdateStatus(db, failed.ID, enums.PaymentStatusPending, enums.PaymentStatusFailed, nil, &reason))

	reloaded = models.Payment{}
	require.NoError(t, db.Where("id = ?", failed.ID).First(&reloaded).Error)
	assert.Equal(t, enums.PaymentStatusFailed, reloaded.Status)
	require.NotNil(t, reloaded.FailureReason)
	assert.Equal(t, reason, *reloaded.FailureReason)
	assert.Nil(t, reloaded.PaidAt)
}

func TestRepositoryListByDealOrdersOldestFirst(t *testing.T) {
	db := setupPaymentsTestDB(t)
	repo := NewRepository(db)

	dealID := uuid.New()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	second := newPayment(t, db, repo, dealID, base.Add(time.Hour))
	first := newPayment(t, db, repo, dealID, base)
	newPayment(t, db, repo, uuid.New(), base) // other deal

	rows, err := repo.ListByDeal(context.Background(), dealID)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, first.ID, rows[0].ID)
	assert.Equal(t, second.ID, rows[1].ID)
}

package lifecycle

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/bingbai-ux/baoflow-backend/pkg/db/models"
	"github.com/bingbai-ux/baoflow-backend/pkg/enums"
	"github.com/bingbai-ux/baoflow-backend/pkg/pagination"
)

// sqlite stands in for postgres here, so the schema is declared by hand with
// TEXT ids and explicit values instead of the server-side uuid defaults.
func newRepoTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	schema := []string{
		`CREATE TABLE deals (
			id TEXT PRIMARY KEY,
			code TEXT NOT NULL UNIQUE,
			status TEXT NOT NULL DEFAULT 'M01',
			client_id TEXT NOT NULL,
			factory_id TEXT,
			sales_rep_id TEXT NOT NULL,
			created_at DATETIME,
			updated_at DATETIME
		)`,
		`CREATE TABLE status_transitions (
			id TEXT PRIMARY KEY,
			deal_id TEXT NOT NULL,
			from_status TEXT NOT NULL,
			to_status TEXT NOT NULL,
			actor_id TEXT NOT NULL,
			note TEXT,
			created_at DATETIME
		)`,
	}
	for _, stmt := range schema {
		if err := conn.Exec(stmt).Error; err != nil {
			t.Fatalf("create schema: %v", err)
		}
	}
	return conn
}

func insertDeal(t *testing.T, conn *gorm.DB, status enums.DealStatus) *models.Deal {
	t.Helper()
	deal := &models.Deal{
		ID:         uuid.New(),
		Code:       "BF-" + uuid.NewString()[:8],
		Status:     status,
		ClientID:   uuid.New(),
		SalesRepID: uuid.New(),
	}
	if err := conn.Create(deal).Error; err != nil {
		t.Fatalf("insert deal: %v", err)
	}
	return deal
}

func TestRepositoryUpdateStatusGuard(t *testing.T) {
	conn := newRepoTestDB(t)
	repo := NewRepository(conn)
	deal := insertDeal(t, conn, enums.DealStatusInquiryReceived)

	if err := repo.UpdateStatus(conn, deal.ID, enums.DealStatusInquiryReceived, enums.DealStatusQuoteRequested); err != nil {
		t.Fatalf("guarded update: %v", err)
	}

	var current models.Deal
	if err := conn.Where("id = ?", deal.ID).First(&current).Error; err != nil {
		t.Fatalf("reload deal: %v", err)
	}
	if current.Status != enums.DealStatusQuoteRequested {
		t.Fatalf("status = %s, want M02", current.Status)
	}

	// stale expected status misses the guard
	err := repo.UpdateStatus(conn, deal.ID, enums.DealStatusInquiryReceived, enums.DealStatusAwaitingQuotes)
	if err != gorm.ErrRecordNotFound {
		t.Fatalf("expected ErrRecordNotFound on stale guard, got %v", err)
	}
}

func TestRepositoryTransitionLogPagination(t *testing.T) {
	conn := newRepoTestDB(t)
	repo := NewRepository(conn)
	deal := insertDeal(t, conn, enums.DealStatusInquiryReceived)
	actor := uuid.New()

	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	steps := []enums.DealStatus{
		enums.DealStatusQuoteRequested,
		enums.DealStatusAwaitingQuotes,
		enums.DealStatusQuotesReceived,
		enums.DealStatusQuotePresented,
		enums.DealStatusQuoteApproved,
	}
	from := enums.DealStatusInquiryReceived
	for i, to := range steps {
		row := &models.StatusTransition{
			ID:         uuid.New(),
			DealID:     deal.ID,
			FromStatus: from,
			ToStatus:   to,
			ActorID:    actor,
			CreatedAt:  base.Add(time.Duration(i) * time.Minute),
		}
		if err := repo.InsertTransition(conn, row); err != nil {
			t.Fatalf("insert transition: %v", err)
		}
		from = to
	}

	ctx := context.Background()
	var seen []enums.DealStatus
	cursor := ""
	pages := 0
	for {
		rows, next, err := repo.ListTransitions(ctx, deal.ID, pagination.Params{Limit: 2, Cursor: cursor})
		if err != nil {
			t.Fatalf("list transitions: %v", err)
		}
		for _, row := range rows {
			seen = append(seen, row.ToStatus)
		}
		pages++
		if next == "" {
			break
		}
		cursor = next
	}

	if pages != 3 {
		t.Fatalf("expected 3 pages, got %d", pages)
	}
	if len(seen) != len(steps) {
		t.Fatalf("expected %d rows across pages, got %d", len(steps), len(seen))
	}
	for i, to := range steps {
		if seen[i] != to {
			t.Fatalf("row %d = %s, want %s", i, seen[i], to)
		}
	}
}

func TestRepositoryListTransitionsScopedToDeal(t *testing.T) {
	conn := newRepoTestDB(t)
	repo := NewRepository(conn)
	dealA := insertDeal(t, conn, enums.DealStatusInquiryReceived)
	dealB := insertDeal(t, conn, enums.DealStatusInquiryReceived)
	actor := uuid.New()

	for _, dealID := range []uuid.UUID{dealA.ID, dealB.ID} {
		row := &models.StatusTransition{
			ID:         uuid.New(),
			DealID:     dealID,
			FromStatus: enums.DealStatusInquiryReceived,
			ToStatus:   enums.DealStatusQuoteRequested,
			ActorID:    actor,
		}
		if err := repo.InsertTransition(conn, row); err != nil {
			t.Fatalf("insert transition: %v", err)
		}
	}

	rows, _, err := repo.ListTransitions(context.Background(), dealA.ID, pagination.Params{})
	if err != nil {
		t.Fatalf("list transitions: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row for deal A, got %d", len(rows))
	}
	if rows[0].DealID != dealA.ID {
		t.Fatalf("row belongs to %s, want %s", rows[0].DealID, dealA.ID)
	}
}

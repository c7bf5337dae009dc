package lifecycle

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bingbai-ux/baoflow-backend/pkg/db/models"
	"github.com/bingbai-ux/baoflow-backend/pkg/enums"
	apperrors "github.com/bingbai-ux/baoflow-backend/pkg/errors"
	"github.com/bingbai-ux/baoflow-backend/pkg/logger"
	"github.com/bingbai-ux/baoflow-backend/pkg/outbox"
	"github.com/bingbai-ux/baoflow-backend/pkg/pagination"
)

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type stubRepo struct {
	deals       map[uuid.UUID]*models.Deal
	transitions []models.StatusTransition
	updateErr   error
}

func newStubRepo() *stubRepo {
	return &stubRepo{deals: map[uuid.UUID]*models.Deal{}}
}

func (r *stubRepo) CreateDeal(tx *gorm.DB, deal *models.Deal) error {
	r.deals[deal.ID] = deal
	return nil
}

func (r *stubRepo) GetDealForUpdate(tx *gorm.DB, id uuid.UUID) (*models.Deal, error) {
	deal, ok := r.deals[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *deal
	return &copied, nil
}

func (r *stubRepo) GetDeal(ctx context.Context, id uuid.UUID) (*models.Deal, error) {
	return r.GetDealForUpdate(nil, id)
}

func (r *stubRepo) UpdateStatus(tx *gorm.DB, dealID uuid.UUID, from, to enums.DealStatus) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	deal, ok := r.deals[dealID]
	if !ok || deal.Status != from {
		return gorm.ErrRecordNotFound
	}
	deal.Status = to
	return nil
}

func (r *stubRepo) InsertTransition(tx *gorm.DB, row *models.StatusTransition) error {
	r.transitions = append(r.transitions, *row)
	return nil
}

func (r *stubRepo) ListTransitions(ctx context.Context, dealID uuid.UUID, params pagination.Params) ([]models.StatusTransition, string, error) {
	var rows []models.StatusTransition
	for _, transition := range r.transitions {
		if transition.DealID == dealID {
			rows = append(rows, transition)
		}
	}
	return rows, "", nil
}

type stubEmitter struct {
	events []outbox.DomainEvent
}

func (e *stubEmitter) Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	e.events = append(e.events, event)
	return nil
}

func newTestService(t *testing.T, repo *stubRepo) (*Service, *stubEmitter) {
	t.Helper()
	emitter := &stubEmitter{}
	logg := logger.New(logger.Options{ServiceName: "test"})
	svc, err := NewService(stubTxRunner{}, repo, emitter, logg, nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, emitter
}

func seedDeal(repo *stubRepo, status enums.DealStatus) *models.Deal {
	deal := &models.Deal{
		ID:         uuid.New(),
		Code:       "BF-1001",
		Status:     status,
		ClientID:   uuid.New(),
		SalesRepID: uuid.New(),
	}
	repo.deals[deal.ID] = deal
	return deal
}

func TestCreateDealStartsAtFirstStatus(t *testing.T) {
	repo := newStubRepo()
	svc, _ := newTestService(t, repo)

	deal, err := svc.CreateDeal(context.Background(), CreateDealInput{
		Code:       "BF-2001",
		ClientID:   uuid.New(),
		SalesRepID: uuid.New(),
	})
	if err != nil {
		t.Fatalf("create deal: %v", err)
	}
	if deal.Status != enums.DealStatusInquiryReceived {
		t.Fatalf("new deal status = %s, want M01", deal.Status)
	}
	if _, ok := repo.deals[deal.ID]; !ok {
		t.Fatal("deal not persisted")
	}
}

func TestCreateDealValidation(t *testing.T) {
	repo := newStubRepo()
	svc, _ := newTestService(t, repo)

	_, err := svc.CreateDeal(context.Background(), CreateDealInput{Code: "  "})
	typed := apperrors.As(err)
	if typed == nil || typed.Code() != apperrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestAdvanceHappyPath(t *testing.T) {
	repo := newStubRepo()
	svc, emitter := newTestService(t, repo)
	deal := seedDeal(repo, enums.DealStatusInquiryReceived)
	actor := uuid.New()

	updated, err := svc.Advance(context.Background(), AdvanceInput{
		DealID:  deal.ID,
		Target:  enums.DealStatusQuoteRequested,
		ActorID: actor,
	})
	if err != nil {
		t.Fatalf("advance: %v", err)
	}
	if updated.Status != enums.DealStatusQuoteRequested {
		t.Fatalf("status = %s, want M02", updated.Status)
	}
	if repo.deals[deal.ID].Status != enums.DealStatusQuoteRequested {
		t.Fatalf("persisted status = %s, want M02", repo.deals[deal.ID].Status)
	}

	if len(repo.transitions) != 1 {
		t.Fatalf("expected 1 transition row, got %d", len(repo.transitions))
	}
	row := repo.transitions[0]
	if row.FromStatus != enums.DealStatusInquiryReceived || row.ToStatus != enums.DealStatusQuoteRequested {
		t.Fatalf("transition recorded %s -> %s", row.FromStatus, row.ToStatus)
	}
	if row.ActorID != actor {
		t.Fatalf("transition actor = %s, want %s", row.ActorID, actor)
	}

	if len(emitter.events) != 1 {
		t.Fatalf("expected 1 outbox event, got %d", len(emitter.events))
	}
	event := emitter.events[0]
	if event.EventType != enums.EventDealStatusChanged {
		t.Fatalf("event type = %s", event.EventType)
	}
	if event.AggregateID != deal.ID {
		t.Fatalf("aggregate id = %s, want %s", event.AggregateID, deal.ID)
	}
}

func TestAdvanceRejectsBackwardMove(t *testing.T) {
	repo := newStubRepo()
	svc, emitter := newTestService(t, repo)
	deal := seedDeal(repo, enums.DealStatusOrderConfirmed)

	_, err := svc.Advance(context.Background(), AdvanceInput{
		DealID:  deal.ID,
		Target:  enums.DealStatusQuotingClosed,
		ActorID: uuid.New(),
	})
	typed := apperrors.As(err)
	if typed == nil || typed.Code() != apperrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
	if repo.deals[deal.ID].Status != enums.DealStatusOrderConfirmed {
		t.Fatal("status changed despite rejection")
	}
	if len(repo.transitions) != 0 || len(emitter.events) != 0 {
		t.Fatal("rejected move must not write audit rows or events")
	}
}

func TestAdvanceAllowsRefinement(t *testing.T) {
	repo := newStubRepo()
	svc, _ := newTestService(t, repo)
	deal := seedDeal(repo, enums.DealStatusQuoteUnderRevision)

	updated, err := svc.Advance(context.Background(), AdvanceInput{
		DealID:  deal.ID,
		Target:  enums.DealStatusQuotePresented,
		ActorID: uuid.New(),
	})
	if err != nil {
		t.Fatalf("refinement advance: %v", err)
	}
	if updated.Status != enums.DealStatusQuotePresented {
		t.Fatalf("status = %s, want M05", updated.Status)
	}
}

func TestAdvanceTerminalDeal(t *testing.T) {
	repo := newStubRepo()
	svc, _ := newTestService(t, repo)
	deal := seedDeal(repo, enums.DealStatusDelivered)

	_, err := svc.Advance(context.Background(), AdvanceInput{
		DealID:  deal.ID,
		Target:  enums.DealStatusInquiryReceived,
		ActorID: uuid.New(),
	})
	typed := apperrors.As(err)
	if typed == nil || typed.Code() != apperrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestAdvanceUnknownDeal(t *testing.T) {
	repo := newStubRepo()
	svc, _ := newTestService(t, repo)

	_, err := svc.Advance(context.Background(), AdvanceInput{
		DealID:  uuid.New(),
		Target:  enums.DealStatusQuoteRequested,
		ActorID: uuid.New(),
	})
	typed := apperrors.As(err)
	if typed == nil || typed.Code() != apperrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestAdvanceConcurrentGuard(t *testing.T) {
	repo := newStubRepo()
	svc, _ := newTestService(t, repo)
	deal := seedDeal(repo, enums.DealStatusInquiryReceived)
	repo.updateErr = gorm.ErrRecordNotFound

	_, err := svc.Advance(context.Background(), AdvanceInput{
		DealID:  deal.ID,
		Target:  enums.DealStatusQuoteRequested,
		ActorID: uuid.New(),
	})
	typed := apperrors.As(err)
	if typed == nil || typed.Code() != apperrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestHistoryReturnsDealTransitions(t *testing.T) {
	repo := newStubRepo()
	svc, _ := newTestService(t, repo)
	deal := seedDeal(repo, enums.DealStatusInquiryReceived)
	actor := uuid.New()

	for _, target := range []enums.DealStatus{
		enums.DealStatusQuoteRequested,
		enums.DealStatusAwaitingQuotes,
		enums.DealStatusQuotesReceived,
	} {
		if _, err := svc.Advance(context.Background(), AdvanceInput{
			DealID:  deal.ID,
			Target:  target,
			ActorID: actor,
		}); err != nil {
			t.Fatalf("advance to %s: %v", target, err)
		}
	}

	rows, _, err := svc.History(context.Background(), deal.ID, pagination.Params{})
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 transitions, got %d", len(rows))
	}
	if rows[0].ToStatus != enums.DealStatusQuoteRequested || rows[2].ToStatus != enums.DealStatusQuotesReceived {
		t.Fatalf("history out of order: %s .. %s", rows[0].ToStatus, rows[2].ToStatus)
	}
}

func TestHistoryUnknownDeal(t *testing.T) {
	repo := newStubRepo()
	svc, _ := newTestService(t, repo)

	_, _, err := svc.History(context.Background(), uuid.New(), pagination.Params{})
	typed := apperrors.As(err)
	if typed == nil || typed.Code() != apperrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

// Package lifecycle moves deals through the ordered M01..M25 status codes.
// Every committed change appends an immutable StatusTransition row and emits
// a deal.status_changed outbox event in the same transaction.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bingbai-ux/baoflow-backend/pkg/db/models"
	"github.com/bingbai-ux/baoflow-backend/pkg/enums"
	apperrors "github.com/bingbai-ux/baoflow-backend/pkg/errors"
	"github.com/bingbai-ux/baoflow-backend/pkg/logger"
	"github.com/bingbai-ux/baoflow-backend/pkg/metrics"
	"github.com/bingbai-ux/baoflow-backend/pkg/outbox"
	"github.com/bingbai-ux/baoflow-backend/pkg/pagination"
)

// TxRunner is the transactional boundary the service runs its writes in.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// DealRepository is the persistence surface the service depends on.
type DealRepository interface {
	CreateDeal(tx *gorm.DB, deal *models.Deal) error
	GetDealForUpdate(tx *gorm.DB, id uuid.UUID) (*models.Deal, error)
	GetDeal(ctx context.Context, id uuid.UUID) (*models.Deal, error)
	UpdateStatus(tx *gorm.DB, dealID uuid.UUID, from, to enums.DealStatus) error
	InsertTransition(tx *gorm.DB, row *models.StatusTransition) error
	ListTransitions(ctx context.Context, dealID uuid.UUID, params pagination.Params) ([]models.StatusTransition, string, error)
}

// Emitter appends outbox events inside the caller's transaction.
type Emitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type Service struct {
	tx      TxRunner
	repo    DealRepository
	events  Emitter
	logg    *logger.Logger
	metrics *metrics.LifecycleMetrics
}

func NewService(tx TxRunner, repo DealRepository, events Emitter, logg *logger.Logger, m *metrics.LifecycleMetrics) (*Service, error) {
	if tx == nil {
		return nil, errors.New("tx runner is required")
	}
	if repo == nil {
		return nil, errors.New("deal repository is required")
	}
	if events == nil {
		return nil, errors.New("outbox emitter is required")
	}
	if logg == nil {
		return nil, errors.New("logger is required")
	}
	return &Service{tx: tx, repo: repo, events: events, logg: logg, metrics: m}, nil
}

type CreateDealInput struct {
	Code       string
	ClientID   uuid.UUID
	SalesRepID uuid.UUID
}

func (in CreateDealInput) validate() error {
	if strings.TrimSpace(in.Code) == "" {
		return apperrors.New(apperrors.CodeValidation, "deal code is required")
	}
	if in.ClientID == uuid.Nil {
		return apperrors.New(apperrors.CodeValidation, "client id is required")
	}
	if in.SalesRepID == uuid.Nil {
		return apperrors.New(apperrors.CodeValidation, "sales rep id is required")
	}
	return nil
}

// CreateDeal opens a new deal at the first lifecycle status.
func (s *Service) CreateDeal(ctx context.Context, in CreateDealInput) (*models.Deal, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	deal := &models.Deal{
		ID:         uuid.New(),
		Code:       strings.TrimSpace(in.Code),
		Status:     enums.DealStatusInquiryReceived,
		ClientID:   in.ClientID,
		SalesRepID: in.SalesRepID,
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return s.repo.CreateDeal(tx, deal)
	})
	if err != nil {
		return nil, err
	}

	logCtx := s.logg.WithDealID(ctx, deal.ID.String())
	s.logg.Info(logCtx, "deal created")
	return deal, nil
}

type AdvanceInput struct {
	DealID  uuid.UUID
	Target  enums.DealStatus
	ActorID uuid.UUID
	Note    *string
}

func (in AdvanceInput) validate() error {
	if in.DealID == uuid.Nil {
		return apperrors.New(apperrors.CodeValidation, "deal id is required")
	}
	if !in.Target.IsValid() {
		return apperrors.New(apperrors.CodeValidation,
			fmt.Sprintf("unknown target status %q", in.Target))
	}
	if in.ActorID == uuid.Nil {
		return apperrors.New(apperrors.CodeValidation, "actor id is required")
	}
	return nil
}

type statusChangedPayload struct {
	DealCode   string           `json:"deal_code"`
	FromStatus enums.DealStatus `json:"from_status"`
	ToStatus   enums.DealStatus `json:"to_status"`
	Phase      enums.DealPhase  `json:"phase"`
	Note       *string          `json:"note,omitempty"`
}

// Advance moves the deal to the target status. The status update, the audit
// row and the outbox event commit atomically; a rejected move leaves all
// three untouched.
func (s *Service) Advance(ctx context.Context, in AdvanceInput) (*models.Deal, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	var (
		updated    *models.Deal
		fromStatus enums.DealStatus
	)
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		deal, err := s.repo.GetDealForUpdate(tx, in.DealID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.New(apperrors.CodeNotFound, "deal not found")
			}
			return apperrors.Wrap(apperrors.CodeInternal, err, "loading deal")
		}

		if err := CheckTransition(deal.Status, in.Target); err != nil {
			s.metrics.IncRejected(string(deal.Status.Phase()))
			return err
		}

		from := deal.Status
		fromStatus = from
		if err := s.repo.UpdateStatus(tx, deal.ID, from, in.Target); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.New(apperrors.CodeConflict, "deal status changed concurrently")
			}
			return apperrors.Wrap(apperrors.CodeInternal, err, "updating deal status")
		}

		transition := &models.StatusTransition{
			ID:         uuid.New(),
			DealID:     deal.ID,
			FromStatus: from,
			ToStatus:   in.Target,
			ActorID:    in.ActorID,
			Note:       in.Note,
		}
		if err := s.repo.InsertTransition(tx, transition); err != nil {
			return apperrors.Wrap(apperrors.CodeInternal, err, "recording status transition")
		}

		event := outbox.DomainEvent{
			EventType:     enums.EventDealStatusChanged,
			AggregateType: enums.AggregateDeal,
			AggregateID:   deal.ID,
			Actor:         &outbox.ActorRef{ActorID: in.ActorID},
			Data: statusChangedPayload{
				DealCode:   deal.Code,
				FromStatus: from,
				ToStatus:   in.Target,
				Phase:      in.Target.Phase(),
				Note:       in.Note,
			},
			Version: 1,
		}
		if err := s.events.Emit(ctx, tx, event); err != nil {
			return apperrors.Wrap(apperrors.CodeInternal, err, "queueing status change event")
		}

		deal.Status = in.Target
		updated = deal
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncTransition(string(in.Target.Phase()))

	logCtx := s.logg.WithFields(ctx, map[string]any{
		"deal_id":     updated.ID.String(),
		"from_status": string(fromStatus),
		"to_status":   string(in.Target),
	})
	s.logg.Info(logCtx, "deal status advanced")
	return updated, nil
}

// GetDeal returns the deal by id.
func (s *Service) GetDeal(ctx context.Context, dealID uuid.UUID) (*models.Deal, error) {
	if dealID == uuid.Nil {
		return nil, apperrors.New(apperrors.CodeValidation, "deal id is required")
	}
	deal, err := s.repo.GetDeal(ctx, dealID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.CodeNotFound, "deal not found")
		}
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "loading deal")
	}
	return deal, nil
}

// History returns the deal's transition log oldest first, cursor paginated.
func (s *Service) History(ctx context.Context, dealID uuid.UUID, params pagination.Params) ([]models.StatusTransition, string, error) {
	if dealID == uuid.Nil {
		return nil, "", apperrors.New(apperrors.CodeValidation, "deal id is required")
	}
	if _, err := s.repo.GetDeal(ctx, dealID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", apperrors.New(apperrors.CodeNotFound, "deal not found")
		}
		return nil, "", apperrors.Wrap(apperrors.CodeInternal, err, "loading deal")
	}
	rows, next, err := s.repo.ListTransitions(ctx, dealID, params)
	if err != nil {
		return nil, "", apperrors.Wrap(apperrors.CodeInternal, err, "listing transitions")
	}
	return rows, next, nil
}

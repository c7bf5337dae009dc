// Package payments tracks the money obligations on a deal: deposits,
// balances and full payments, owed by the client or to the selected factory.
package payments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/bingbai-ux/baoflow-backend/internal/lifecycle"
	"github.com/bingbai-ux/baoflow-backend/internal/paymentfees"
	"github.com/bingbai-ux/baoflow-backend/pkg/config"
	"github.com/bingbai-ux/baoflow-backend/pkg/db/models"
	"github.com/bingbai-ux/baoflow-backend/pkg/enums"
	apperrors "github.com/bingbai-ux/baoflow-backend/pkg/errors"
	"github.com/bingbai-ux/baoflow-backend/pkg/logger"
	"github.com/bingbai-ux/baoflow-backend/pkg/outbox"
)

// TxRunner is the transactional boundary payment writes run in.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// DealStore is the slice of deal persistence needed to reflect payment
// milestones on the deal status.
type DealStore interface {
	GetDealForUpdate(tx *gorm.DB, id uuid.UUID) (*models.Deal, error)
	UpdateStatus(tx *gorm.DB, dealID uuid.UUID, from, to enums.DealStatus) error
	InsertTransition(tx *gorm.DB, row *models.StatusTransition) error
}

// PaymentStore is the persistence surface for payment rows.
type PaymentStore interface {
	CreatePayment(tx *gorm.DB, row *models.Payment) error
	GetPaymentForUpdate(tx *gorm.DB, id uuid.UUID) (*models.Payment, error)
	UpdateStatus(tx *gorm.DB, id uuid.UUID, from, to enums.PaymentStatus, paidAt *time.Time, failureReason *string) error
	ListByDeal(ctx context.Context, dealID uuid.UUID) ([]models.Payment, error)
}

// Emitter appends outbox events inside the caller's transaction.
type Emitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// RateSource resolves the exchange rate for target-currency amounts.
type RateSource interface {
	Rate(ctx context.Context) decimal.Decimal
}

// statusRank orders settlement statuses; payments only move to a strictly
// higher rank, and completed/failed admit no exit.
var statusRank = map[enums.PaymentStatus]int{
	enums.PaymentStatusPending:    1,
	enums.PaymentStatusProcessing: 2,
	enums.PaymentStatusCompleted:  3,
	enums.PaymentStatusFailed:     3,
}

type Service struct {
	tx     TxRunner
	deals  DealStore
	repo   PaymentStore
	events Emitter
	rates  RateSource
	fees   config.FeeConfig
	logg   *logger.Logger
	now    func() time.Time
}

func NewService(tx TxRunner, deals DealStore, repo PaymentStore, events Emitter, rates RateSource, fees config.FeeConfig, logg *logger.Logger) (*Service, error) {
	if tx == nil {
		return nil, errors.New("tx runner is required")
	}
	if deals == nil {
		return nil, errors.New("deal store is required")
	}
	if repo == nil {
		return nil, errors.New("payment store is required")
	}
	if events == nil {
		return nil, errors.New("outbox emitter is required")
	}
	if rates == nil {
		return nil, errors.New("rate source is required")
	}
	if logg == nil {
		return nil, errors.New("logger is required")
	}
	return &Service{
		tx:     tx,
		deals:  deals,
		repo:   repo,
		events: events,
		rates:  rates,
		fees:   fees,
		logg:   logg,
		now:    time.Now,
	}, nil
}

type statusChangedPayload struct {
	DealID        uuid.UUID           `json:"deal_id"`
	PaymentType   enums.PaymentType   `json:"payment_type"`
	FromStatus    enums.PaymentStatus `json:"from_status,omitempty"`
	ToStatus      enums.PaymentStatus `json:"to_status"`
	FailureReason *string             `json:"failure_reason,omitempty"`
}

func (s *Service) moveDeal(ctx context.Context, tx *gorm.DB, deal *models.Deal, target enums.DealStatus, actorID uuid.UUID) error {
	if err := lifecycle.CheckTransition(deal.Status, target); err != nil {
		return err
	}
	if err := s.deals.UpdateStatus(tx, deal.ID, deal.Status, target); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.New(apperrors.CodeConflict, "deal status changed concurrently")
		}
		return apperrors.Wrap(apperrors.CodeInternal, err, "updating deal status")
	}
	transition := &models.StatusTransition{
		ID:         uuid.New(),
		DealID:     deal.ID,
		FromStatus: deal.Status,
		ToStatus:   target,
		ActorID:    actorID,
	}
	if err := s.deals.InsertTransition(tx, transition); err != nil {
		return apperrors.Wrap(apperrors.CodeInternal, err, "recording status transition")
	}
	deal.Status = target
	return nil
}

type ScheduleInput struct {
	DealID       uuid.UUID
	FactoryID    *uuid.UUID
	Type         enums.PaymentType
	Method       enums.PaymentMethod
	AmountSource decimal.Decimal
	DueAt        *time.Time
	ActorID      uuid.UUID
}

func (in ScheduleInput) validate() error {
	if in.DealID == uuid.Nil {
		return apperrors.New(apperrors.CodeValidation, "deal id is required")
	}
	if in.ActorID == uuid.Nil {
		return apperrors.New(apperrors.CodeValidation, "actor id is required")
	}
	if !in.Type.IsValid() {
		return apperrors.New(apperrors.CodeValidation, fmt.Sprintf("unknown payment type %q", in.Type))
	}
	if !in.Method.IsValid() {
		return apperrors.New(apperrors.CodeValidation, fmt.Sprintf("unknown payment method %q", in.Method))
	}
	if !in.AmountSource.IsPositive() {
		return apperrors.New(apperrors.CodeValidation, "amount must be positive")
	}
	return nil
}

// Schedule creates a pending payment on the deal. The target-currency amount
// is converted at the current rate and rounded up. Scheduling a deposit on a
// freshly confirmed order moves the deal to deposit invoiced.
func (s *Service) Schedule(ctx context.Context, in ScheduleInput) (*models.Payment, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	rate := s.rates.Rate(ctx)
	var payment *models.Payment

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		deal, err := s.deals.GetDealForUpdate(tx, in.DealID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.New(apperrors.CodeNotFound, "deal not found")
			}
			return apperrors.Wrap(apperrors.CodeInternal, err, "loading deal")
		}
		if deal.Status.Before(enums.DealStatusOrderConfirmed) {
			return apperrors.New(apperrors.CodeStateConflict,
				fmt.Sprintf("payments require a confirmed order, deal is %s", deal.Status))
		}

		payment = &models.Payment{
			ID:           uuid.New(),
			DealID:       deal.ID,
			FactoryID:    in.FactoryID,
			Type:         in.Type,
			Method:       in.Method,
			AmountSource: in.AmountSource,
			AmountTarget: in.AmountSource.Mul(rate).Ceil(),
			Status:       enums.PaymentStatusPending,
			DueAt:        in.DueAt,
		}
		if err := s.repo.CreatePayment(tx, payment); err != nil {
			return apperrors.Wrap(apperrors.CodeInternal, err, "storing payment")
		}

		if in.Type == enums.PaymentTypeDeposit && deal.Status == enums.DealStatusOrderConfirmed {
			if err := s.moveDeal(ctx, tx, deal, enums.DealStatusDepositInvoiced, in.ActorID); err != nil {
				return err
			}
		}
		if in.Type == enums.PaymentTypeBalance && deal.Status == enums.DealStatusFactoryOrderPlaced {
			if err := s.moveDeal(ctx, tx, deal, enums.DealStatusBalanceScheduled, in.ActorID); err != nil {
				return err
			}
		}

		event := outbox.DomainEvent{
			EventType:     enums.EventPaymentStatusChanged,
			AggregateType: enums.AggregatePayment,
			AggregateID:   payment.ID,
			Actor:         &outbox.ActorRef{ActorID: in.ActorID},
			Data: statusChangedPayload{
				DealID:      deal.ID,
				PaymentType: in.Type,
				ToStatus:    enums.PaymentStatusPending,
			},
			Version: 1,
		}
		if err := s.events.Emit(ctx, tx, event); err != nil {
			return apperrors.Wrap(apperrors.CodeInternal, err, "queueing payment event")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logCtx := s.logg.WithFields(ctx, map[string]any{
		"deal_id":      in.DealID.String(),
		"payment_id":   payment.ID.String(),
		"payment_type": string(in.Type),
	})
	s.logg.Info(logCtx, "payment scheduled")
	return payment, nil
}

type MarkStatusInput struct {
	PaymentID     uuid.UUID
	Status        enums.PaymentStatus
	FailureReason *string
	ActorID       uuid.UUID
}

func (in MarkStatusInput) validate() error {
	if in.PaymentID == uuid.Nil {
		return apperrors.New(apperrors.CodeValidation, "payment id is required")
	}
	if in.ActorID == uuid.Nil {
		return apperrors.New(apperrors.CodeValidation, "actor id is required")
	}
	if !in.Status.IsValid() {
		return apperrors.New(apperrors.CodeValidation, fmt.Sprintf("unknown payment status %q", in.Status))
	}
	if in.Status == enums.PaymentStatusFailed && (in.FailureReason == nil || *in.FailureReason == "") {
		return apperrors.New(apperrors.CodeValidation, "failure reason is required for failed payments")
	}
	return nil
}

// MarkStatus moves a payment forward through the settlement statuses.
// Completed and failed are terminal; PaidAt is stamped exactly on completion.
// A deposit completing on an invoiced deal moves the deal to deposit paid.
func (s *Service) MarkStatus(ctx context.Context, in MarkStatusInput) (*models.Payment, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	var updated *models.Payment
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		payment, err := s.repo.GetPaymentForUpdate(tx, in.PaymentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.New(apperrors.CodeNotFound, "payment not found")
			}
			return apperrors.Wrap(apperrors.CodeInternal, err, "loading payment")
		}

		if statusRank[in.Status] <= statusRank[payment.Status] {
			return apperrors.New(apperrors.CodeStateConflict,
				fmt.Sprintf("payment cannot move from %s to %s", payment.Status, in.Status))
		}

		var paidAt *time.Time
		if in.Status == enums.PaymentStatusCompleted {
			at := s.now()
			paidAt = &at
		}
		var failureReason *string
		if in.Status == enums.PaymentStatusFailed {
			failureReason = in.FailureReason
		}

		from := payment.Status
		if err := s.repo.UpdateStatus(tx, payment.ID, from, in.Status, paidAt, failureReason); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.New(apperrors.CodeConflict, "payment status changed concurrently")
			}
			return apperrors.Wrap(apperrors.CodeInternal, err, "updating payment status")
		}
		payment.Status = in.Status
		payment.PaidAt = paidAt
		payment.FailureReason = failureReason

		if in.Status == enums.PaymentStatusCompleted && payment.Type == enums.PaymentTypeDeposit {
			deal, err := s.deals.GetDealForUpdate(tx, payment.DealID)
			if err != nil {
				return apperrors.Wrap(apperrors.CodeInternal, err, "loading deal")
			}
			if deal.Status == enums.DealStatusDepositInvoiced {
				if err := s.moveDeal(ctx, tx, deal, enums.DealStatusDepositPaid, in.ActorID); err != nil {
					return err
				}
			}
		}

		event := outbox.DomainEvent{
			EventType:     enums.EventPaymentStatusChanged,
			AggregateType: enums.AggregatePayment,
			AggregateID:   payment.ID,
			Actor:         &outbox.ActorRef{ActorID: in.ActorID},
			Data: statusChangedPayload{
				DealID:        payment.DealID,
				PaymentType:   payment.Type,
				FromStatus:    from,
				ToStatus:      in.Status,
				FailureReason: failureReason,
			},
			Version: 1,
		}
		if err := s.events.Emit(ctx, tx, event); err != nil {
			return apperrors.Wrap(apperrors.CodeInternal, err, "queueing payment event")
		}

		updated = payment
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// ListByDeal returns the deal's payments oldest first.
func (s *Service) ListByDeal(ctx context.Context, dealID uuid.UUID) ([]models.Payment, error) {
	if dealID == uuid.Nil {
		return nil, apperrors.New(apperrors.CodeValidation, "deal id is required")
	}
	rows, err := s.repo.ListByDeal(ctx, dealID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "listing payments")
	}
	return rows, nil
}

// CompareFees ranks the supported payment methods for the amount using the
// configured fee parameters.
func (s *Service) CompareFees(ctx context.Context, amount decimal.Decimal) (paymentfees.Comparison, error) {
	if !amount.IsPositive() {
		return paymentfees.Comparison{}, apperrors.New(apperrors.CodeValidation, "amount must be positive")
	}
	comparison, err := paymentfees.CompareMethods(amount, s.fees)
	if err != nil {
		return paymentfees.Comparison{}, apperrors.Wrap(apperrors.CodeValidation, err, "comparing payment fees")
	}
	return comparison, nil
}

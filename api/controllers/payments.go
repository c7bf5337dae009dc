package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bingbai-ux/baoflow-backend/api/responses"
	"github.com/bingbai-ux/baoflow-backend/api/validators"
	"github.com/bingbai-ux/baoflow-backend/internal/payments"
	"github.com/bingbai-ux/baoflow-backend/pkg/enums"
	pkgerrors "github.com/bingbai-ux/baoflow-backend/pkg/errors"
	"github.com/bingbai-ux/baoflow-backend/pkg/logger"
)

type schedulePaymentRequest struct {
	FactoryID    *uuid.UUID      `json:"factory_id,omitempty"`
	Type         string          `json:"type" validate:"required"`
	Method       string          `json:"method" validate:"required"`
	AmountSource decimal.Decimal `json:"amount_source" validate:"required"`
	DueAt        *time.Time      `json:"due_at,omitempty"`
	ActorID      uuid.UUID       `json:"actor_id" validate:"required"`
}

func PaymentSchedule(svc *payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dealID, err := parseUUIDParam(r, "dealId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req schedulePaymentRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		paymentType, err := enums.ParsePaymentType(req.Type)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment type"))
			return
		}
		method, err := enums.ParsePaymentMethod(req.Method)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment method"))
			return
		}

		payment, err := svc.Schedule(r.Context(), payments.ScheduleInput{
			DealID:       dealID,
			FactoryID:    req.FactoryID,
			Type:         paymentType,
			Method:       method,
			AmountSource: req.AmountSource,
			DueAt:        req.DueAt,
			ActorID:      req.ActorID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, payment)
	}
}

type markPaymentStatusRequest struct {
	Status        string    `json:"status" validate:"required"`
	FailureReason *string   `json:"failure_reason,omitempty"`
	ActorID       uuid.UUID `json:"actor_id" validate:"required"`
}

func PaymentMarkStatus(svc *payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		paymentID, err := parseUUIDParam(r, "paymentId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req markPaymentStatusRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		status, err := enums.ParsePaymentStatus(req.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment status"))
			return
		}

		payment, err := svc.MarkStatus(r.Context(), payments.MarkStatusInput{
			PaymentID:     paymentID,
			Status:        status,
			FailureReason: req.FailureReason,
			ActorID:       req.ActorID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, payment)
	}
}

func PaymentList(svc *payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dealID, err := parseUUIDParam(r, "dealId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		rows, err := svc.ListByDeal(r.Context(), dealID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

type compareFeesRequest struct {
	Amount decimal.Decimal `json:"amount" validate:"required"`
}

func PaymentCompareFees(svc *payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req compareFeesRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		comparison, err := svc.CompareFees(r.Context(), req.Amount)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, comparison)
	}
}

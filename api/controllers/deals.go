package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/bingbai-ux/baoflow-backend/api/responses"
	"github.com/bingbai-ux/baoflow-backend/api/validators"
	"github.com/bingbai-ux/baoflow-backend/internal/lifecycle"
	"github.com/bingbai-ux/baoflow-backend/pkg/enums"
	pkgerrors "github.com/bingbai-ux/baoflow-backend/pkg/errors"
	"github.com/bingbai-ux/baoflow-backend/pkg/logger"
	"github.com/bingbai-ux/baoflow-backend/pkg/pagination"
)

type createDealRequest struct {
	Code       string    `json:"code" validate:"required"`
	ClientID   uuid.UUID `json:"client_id" validate:"required"`
	SalesRepID uuid.UUID `json:"sales_rep_id" validate:"required"`
}

func DealCreate(svc *lifecycle.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createDealRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		deal, err := svc.CreateDeal(r.Context(), lifecycle.CreateDealInput{
			Code:       req.Code,
			ClientID:   req.ClientID,
			SalesRepID: req.SalesRepID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, deal)
	}
}

func DealDetail(svc *lifecycle.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dealID, err := parseUUIDParam(r, "dealId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		deal, err := svc.GetDeal(r.Context(), dealID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, deal)
	}
}

type advanceDealRequest struct {
	Target  string    `json:"target" validate:"required"`
	ActorID uuid.UUID `json:"actor_id" validate:"required"`
	Note    *string   `json:"note,omitempty"`
}

func DealAdvance(svc *lifecycle.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dealID, err := parseUUIDParam(r, "dealId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req advanceDealRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		target, err := enums.ParseDealStatus(req.Target)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid target status"))
			return
		}

		deal, err := svc.Advance(r.Context(), lifecycle.AdvanceInput{
			DealID:  dealID,
			Target:  target,
			ActorID: req.ActorID,
			Note:    req.Note,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, deal)
	}
}

type transitionListResponse struct {
	Transitions any    `json:"transitions"`
	NextCursor  string `json:"next_cursor,omitempty"`
}

func DealTransitions(svc *lifecycle.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dealID, err := parseUUIDParam(r, "dealId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		cursor := strings.TrimSpace(r.URL.Query().Get("cursor"))

		rows, next, err := svc.History(r.Context(), dealID, pagination.Params{Limit: limit, Cursor: cursor})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, transitionListResponse{Transitions: rows, NextCursor: next})
	}
}

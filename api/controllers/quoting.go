package controllers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bingbai-ux/baoflow-backend/api/responses"
	"github.com/bingbai-ux/baoflow-backend/api/validators"
	"github.com/bingbai-ux/baoflow-backend/internal/quoting"
	"github.com/bingbai-ux/baoflow-backend/pkg/logger"
)

type inviteFactoriesRequest struct {
	FactoryIDs []uuid.UUID `json:"factory_ids" validate:"required,min=1"`
	ActorID    uuid.UUID   `json:"actor_id" validate:"required"`
}

func QuotingInvite(coord *quoting.Coordinator, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dealID, err := parseUUIDParam(r, "dealId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req inviteFactoriesRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		assignments, err := coord.InviteFactories(r.Context(), quoting.InviteFactoriesInput{
			DealID:     dealID,
			FactoryIDs: req.FactoryIDs,
			ActorID:    req.ActorID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, assignments)
	}
}

type actorRequest struct {
	ActorID uuid.UUID `json:"actor_id" validate:"required"`
}

func QuotingRecordResponse(coord *quoting.Coordinator, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dealID, err := parseUUIDParam(r, "dealId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		factoryID, err := parseUUIDParam(r, "factoryId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req actorRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		assignment, err := coord.RecordFactoryResponse(r.Context(), quoting.RecordResponseInput{
			DealID:    dealID,
			FactoryID: factoryID,
			ActorID:   req.ActorID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, assignment)
	}
}

func QuotingSelectWinner(coord *quoting.Coordinator, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dealID, err := parseUUIDParam(r, "dealId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		factoryID, err := parseUUIDParam(r, "factoryId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req actorRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		winner, err := coord.SelectWinner(r.Context(), quoting.SelectWinnerInput{
			DealID:    dealID,
			FactoryID: factoryID,
			ActorID:   req.ActorID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, winner)
	}
}

func QuotingCandidates(coord *quoting.Coordinator, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dealID, err := parseUUIDParam(r, "dealId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		candidates, err := coord.RankCandidates(r.Context(), dealID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, candidates)
	}
}

type submitQuoteRequest struct {
	FactoryID   uuid.UUID       `json:"factory_id" validate:"required"`
	ActorID     uuid.UUID       `json:"actor_id" validate:"required"`
	Quantity    int64           `json:"quantity" validate:"required,gt=0"`
	UnitPrice   decimal.Decimal `json:"unit_price" validate:"required"`
	ToolingFee  decimal.Decimal `json:"tooling_fee"`
	ShippingFee decimal.Decimal `json:"shipping_fee"`
	OtherFees   decimal.Decimal `json:"other_fees"`
	CostRatio   decimal.Decimal `json:"cost_ratio"`
}

func QuotingSubmitQuote(coord *quoting.Coordinator, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dealID, err := parseUUIDParam(r, "dealId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req submitQuoteRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		quote, err := coord.SubmitQuote(r.Context(), quoting.SubmitQuoteInput{
			DealID:      dealID,
			FactoryID:   req.FactoryID,
			ActorID:     req.ActorID,
			Quantity:    req.Quantity,
			UnitPrice:   req.UnitPrice,
			ToolingFee:  req.ToolingFee,
			ShippingFee: req.ShippingFee,
			OtherFees:   req.OtherFees,
			CostRatio:   req.CostRatio,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, quote)
	}
}

func QuotingApproveQuote(coord *quoting.Coordinator, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		quoteID, err := parseUUIDParam(r, "quoteId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req actorRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		quote, err := coord.ApproveQuote(r.Context(), quoting.ApproveQuoteInput{
			QuoteID: quoteID,
			ActorID: req.ActorID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, quote)
	}
}

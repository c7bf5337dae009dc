package controllers

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/bingbai-ux/baoflow-backend/api/responses"
	"github.com/bingbai-ux/baoflow-backend/api/validators"
	"github.com/bingbai-ux/baoflow-backend/internal/pricing"
	"github.com/bingbai-ux/baoflow-backend/pkg/config"
	pkgerrors "github.com/bingbai-ux/baoflow-backend/pkg/errors"
	"github.com/bingbai-ux/baoflow-backend/pkg/logger"
	"github.com/bingbai-ux/baoflow-backend/pkg/rates"
)

type pricingRequest struct {
	Quantity    int64           `json:"quantity" validate:"required,gt=0"`
	UnitPrice   decimal.Decimal `json:"unit_price" validate:"required"`
	ToolingFee  decimal.Decimal `json:"tooling_fee"`
	ShippingFee decimal.Decimal `json:"shipping_fee"`
	OtherFees   decimal.Decimal `json:"other_fees"`
	// Optional overrides; configured defaults apply when omitted.
	CostRatio      decimal.Decimal `json:"cost_ratio"`
	ExchangeRate   decimal.Decimal `json:"exchange_rate"`
	TaxRatePercent decimal.Decimal `json:"tax_rate_percent"`
}

func (req pricingRequest) inputs(r *http.Request, provider *rates.Provider, billing config.BillingConfig) pricing.Inputs {
	ratio := req.CostRatio
	if ratio.IsZero() {
		ratio = billing.DefaultCostRatio
	}
	rate := req.ExchangeRate
	if rate.IsZero() {
		rate = provider.Rate(r.Context())
	}
	tax := req.TaxRatePercent
	if tax.IsZero() {
		tax = billing.TaxRatePercent
	}
	return pricing.Inputs{
		Quantity:       req.Quantity,
		UnitPrice:      req.UnitPrice,
		ToolingFee:     req.ToolingFee,
		ShippingFee:    req.ShippingFee,
		OtherFees:      req.OtherFees,
		CostRatio:      ratio,
		ExchangeRate:   rate,
		TaxRatePercent: tax,
	}
}

// PricingCalculate runs the billing formula chain without touching any deal.
func PricingCalculate(provider *rates.Provider, billing config.BillingConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req pricingRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := pricing.Calculate(req.inputs(r, provider, billing))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "pricing calculation failed"))
			return
		}
		responses.WriteSuccess(w, result)
	}
}

type quantitiesRequest struct {
	pricingRequest
	Quantities []int64 `json:"quantities" validate:"required,min=1"`
}

// PricingQuantities evaluates the formula chain for several candidate
// quantities so volume tiers can be compared side by side.
func PricingQuantities(provider *rates.Provider, billing config.BillingConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req quantitiesRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		evaluations, err := pricing.EvaluateQuantities(req.inputs(r, provider, billing), req.Quantities)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "quantity evaluation failed"))
			return
		}
		responses.WriteSuccess(w, evaluations)
	}
}

type shippingOptionRequest struct {
	Code        string          `json:"code" validate:"required"`
	Label       string          `json:"label"`
	Fee         decimal.Decimal `json:"fee"`
	TransitDays int             `json:"transit_days" validate:"required,gt=0"`
}

type shippingCompareRequest struct {
	pricingRequest
	Options []shippingOptionRequest `json:"options" validate:"required,min=1,dive"`
}

// PricingShippingOptions compares shipping arrangements by landed cost and
// transit time.
func PricingShippingOptions(provider *rates.Provider, billing config.BillingConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req shippingCompareRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		options := make([]pricing.ShippingOption, 0, len(req.Options))
		for _, option := range req.Options {
			options = append(options, pricing.ShippingOption{
				Code:        option.Code,
				Label:       option.Label,
				Fee:         option.Fee,
				TransitDays: option.TransitDays,
			})
		}

		comparison, err := pricing.CompareShippingOptions(req.inputs(r, provider, billing), options)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "shipping comparison failed"))
			return
		}
		responses.WriteSuccess(w, comparison)
	}
}

// Package pricing converts supplier pricing into client billing and margin
// figures. Every function here is pure: no I/O, no stored state, identical
// outputs for identical inputs. Monetary amounts are decimals end to end.
package pricing

import (
	"errors"

	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
)

var (
	// ErrDivisionByZero is returned when the quantity is zero or negative.
	ErrDivisionByZero = errors.New("quantity must be positive")
	// ErrInvalidRatio is returned when the cost ratio falls outside (0, 1].
	ErrInvalidRatio = errors.New("cost ratio must be in (0, 1]")
	// ErrNegativeAmount is returned when a price or fee is negative.
	ErrNegativeAmount = errors.New("amounts must not be negative")
)

var (
	one     = decimal.NewFromInt(1)
	hundred = decimal.NewFromInt(100)
)

// Inputs carries everything a billing calculation needs. Exchange rate and
// tax rate arrive from configuration or the rate provider; the engine never
// fetches them itself.
type Inputs struct {
	Quantity       int64
	UnitPrice      decimal.Decimal
	ToolingFee     decimal.Decimal
	ShippingFee    decimal.Decimal
	OtherFees      decimal.Decimal
	CostRatio      decimal.Decimal
	ExchangeRate   decimal.Decimal
	TaxRatePercent decimal.Decimal
}

// Result holds the full formula chain output. Source amounts are in the
// supplier currency, target amounts in the billing currency.
type Result struct {
	ProductCost        decimal.Decimal
	TotalCost          decimal.Decimal
	UnitCost           decimal.Decimal
	SellingPriceSource decimal.Decimal
	SellingPriceTarget decimal.Decimal
	BillingPreTax      decimal.Decimal
	BillingWithTax     decimal.Decimal
	GrossProfitSource  decimal.Decimal
	GrossProfitMargin  decimal.Decimal
}

func validate(in Inputs) error {
	var err error
	if in.Quantity <= 0 {
		err = multierr.Append(err, ErrDivisionByZero)
	}
	if !in.CostRatio.IsPositive() || in.CostRatio.GreaterThan(one) {
		err = multierr.Append(err, ErrInvalidRatio)
	}
	for _, amount := range []decimal.Decimal{in.UnitPrice, in.ToolingFee, in.ShippingFee, in.OtherFees} {
		if amount.IsNegative() {
			err = multierr.Append(err, ErrNegativeAmount)
			break
		}
	}
	return err
}

// Calculate runs the billing formula chain. Target-currency conversion and
// tax both round with ceiling so the seller never under-recovers cost.
func Calculate(in Inputs) (Result, error) {
	if err := validate(in); err != nil {
		return Result{}, err
	}

	qty := decimal.NewFromInt(in.Quantity)

	productCost := in.UnitPrice.Mul(qty)
	totalCost := productCost.Add(in.ShippingFee).Add(in.ToolingFee).Add(in.OtherFees)
	unitCost := totalCost.Div(qty)
	sellingPriceSource := unitCost.Div(in.CostRatio)
	sellingPriceTarget := sellingPriceSource.Mul(in.ExchangeRate).Ceil()
	billingPreTax := sellingPriceTarget.Mul(qty)
	taxMultiplier := one.Add(in.TaxRatePercent.Div(hundred))
	billingWithTax := billingPreTax.Mul(taxMultiplier).Ceil()

	billingSource := billingPreTax.Div(in.ExchangeRate)
	grossProfitSource := billingSource.Sub(totalCost)
	grossProfitMargin := decimal.Zero
	if !billingSource.IsZero() {
		grossProfitMargin = grossProfitSource.Div(billingSource).Mul(hundred)
	}

	return Result{
		ProductCost:        productCost,
		TotalCost:          totalCost,
		UnitCost:           unitCost,
		SellingPriceSource: sellingPriceSource,
		SellingPriceTarget: sellingPriceTarget,
		BillingPreTax:      billingPreTax,
		BillingWithTax:     billingWithTax,
		GrossProfitSource:  grossProfitSource,
		GrossProfitMargin:  grossProfitMargin,
	}, nil
}

// QuantityEvaluation pairs a candidate quantity with its calculation result.
type QuantityEvaluation struct {
	Quantity int64
	Result   Result
}

// EvaluateQuantities re-runs the formula chain for each candidate quantity,
// preserving input order.
func EvaluateQuantities(base Inputs, quantities []int64) ([]QuantityEvaluation, error) {
	evaluations := make([]QuantityEvaluation, 0, len(quantities))
	for _, qty := range quantities {
		in := base
		in.Quantity = qty
		result, err := Calculate(in)
		if err != nil {
			return nil, err
		}
		evaluations = append(evaluations, QuantityEvaluation{Quantity: qty, Result: result})
	}
	return evaluations, nil
}

// ShippingOption describes one candidate shipping arrangement.
type ShippingOption struct {
	Code        string
	Label       string
	Fee         decimal.Decimal
	TransitDays int
}

// ShippingEvaluation pairs an option with the billing result it produces.
type ShippingEvaluation struct {
	Option ShippingOption
	Result Result
}

// ShippingComparison reports the per-option results along with which option
// is cheapest (by total cost) and which is fastest (by transit days).
type ShippingComparison struct {
	Evaluations []ShippingEvaluation
	Cheapest    ShippingOption
	Fastest     ShippingOption
}

// CompareShippingOptions evaluates each option against the base inputs and
// identifies the cheapest and fastest. Ties keep the earlier option.
func CompareShippingOptions(base Inputs, options []ShippingOption) (ShippingComparison, error) {
	if len(options) == 0 {
		return ShippingComparison{}, errors.New("at least one shipping option required")
	}

	comparison := ShippingComparison{
		Evaluations: make([]ShippingEvaluation, 0, len(options)),
	}
	cheapestIdx, fastestIdx := 0, 0
	for i, option := range options {
		in := base
		in.ShippingFee = option.Fee
		result, err := Calculate(in)
		if err != nil {
			return ShippingComparison{}, err
		}
		comparison.Evaluations = append(comparison.Evaluations, ShippingEvaluation{Option: option, Result: result})

		if result.TotalCost.LessThan(comparison.Evaluations[cheapestIdx].Result.TotalCost) {
			cheapestIdx = i
		}
		if option.TransitDays < options[fastestIdx].TransitDays {
			fastestIdx = i
		}
	}
	comparison.Cheapest = options[cheapestIdx]
	comparison.Fastest = options[fastestIdx]
	return comparison, nil
}

package pricing

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func baseInputs() Inputs {
	return Inputs{
		Quantity:       1000,
		UnitPrice:      decimal.RequireFromString("2.00"),
		ShippingFee:    decimal.RequireFromString("150"),
		ToolingFee:     decimal.Zero,
		OtherFees:      decimal.Zero,
		CostRatio:      decimal.RequireFromString("0.55"),
		ExchangeRate:   decimal.NewFromInt(155),
		TaxRatePercent: decimal.NewFromInt(10),
	}
}

func TestCalculateReferenceScenario(t *testing.T) {
	result, err := Calculate(baseInputs())
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}

	if !result.TotalCost.Equal(decimal.RequireFromString("2150")) {
		t.Fatalf("total cost = %s, want 2150", result.TotalCost)
	}
	if !result.UnitCost.Equal(decimal.RequireFromString("2.15")) {
		t.Fatalf("unit cost = %s, want 2.15", result.UnitCost)
	}
	if !result.SellingPriceTarget.Equal(decimal.NewFromInt(606)) {
		t.Fatalf("selling price target = %s, want 606", result.SellingPriceTarget)
	}
	if !result.BillingPreTax.Equal(decimal.NewFromInt(606000)) {
		t.Fatalf("billing pre tax = %s, want 606000", result.BillingPreTax)
	}
	if !result.BillingWithTax.Equal(decimal.NewFromInt(666600)) {
		t.Fatalf("billing with tax = %s, want 666600", result.BillingWithTax)
	}
	if result.GrossProfitSource.IsNegative() {
		t.Fatalf("gross profit should be positive, got %s", result.GrossProfitSource)
	}
}

func TestCalculateIsDeterministic(t *testing.T) {
	first, err := Calculate(baseInputs())
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}
	second, err := Calculate(baseInputs())
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}
	if !first.SellingPriceTarget.Equal(second.SellingPriceTarget) || !first.BillingWithTax.Equal(second.BillingWithTax) {
		t.Fatalf("results diverged: %+v vs %+v", first, second)
	}
}

func TestSellingPriceSourceIsUnitCostOverRatio(t *testing.T) {
	in := baseInputs()
	result, err := Calculate(in)
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}
	want := result.UnitCost.Div(in.CostRatio)
	if !result.SellingPriceSource.Equal(want) {
		t.Fatalf("selling price source = %s, want %s", result.SellingPriceSource, want)
	}
}

func TestCalculateZeroQuantity(t *testing.T) {
	in := baseInputs()
	in.Quantity = 0
	_, err := Calculate(in)
	if !errors.Is(err, ErrDivisionByZero) {
		t.Fatalf("expected ErrDivisionByZero, got %v", err)
	}
}

func TestCalculateInvalidRatio(t *testing.T) {
	for _, ratio := range []string{"0", "-0.5", "1.01"} {
		in := baseInputs()
		in.CostRatio = decimal.RequireFromString(ratio)
		_, err := Calculate(in)
		if !errors.Is(err, ErrInvalidRatio) {
			t.Fatalf("ratio %s: expected ErrInvalidRatio, got %v", ratio, err)
		}
	}

	in := baseInputs()
	in.CostRatio = decimal.NewFromInt(1)
	if _, err := Calculate(in); err != nil {
		t.Fatalf("ratio 1 should be valid: %v", err)
	}
}

func TestCalculateAggregatesErrors(t *testing.T) {
	in := baseInputs()
	in.Quantity = -1
	in.CostRatio = decimal.NewFromInt(2)
	_, err := Calculate(in)
	if !errors.Is(err, ErrDivisionByZero) || !errors.Is(err, ErrInvalidRatio) {
		t.Fatalf("expected both guard errors, got %v", err)
	}
}

func TestCalculateNegativeAmount(t *testing.T) {
	in := baseInputs()
	in.ShippingFee = decimal.RequireFromString("-1")
	_, err := Calculate(in)
	if !errors.Is(err, ErrNegativeAmount) {
		t.Fatalf("expected ErrNegativeAmount, got %v", err)
	}
}

func TestCeilingNeverUnderRecovers(t *testing.T) {
	in := baseInputs()
	result, err := Calculate(in)
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}
	raw := result.SellingPriceSource.Mul(in.ExchangeRate)
	if result.SellingPriceTarget.LessThan(raw) {
		t.Fatalf("target price %s below unrounded %s", result.SellingPriceTarget, raw)
	}
}

func TestEvaluateQuantitiesPreservesOrder(t *testing.T) {
	quantities := []int64{500, 3000, 1000}
	evaluations, err := EvaluateQuantities(baseInputs(), quantities)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if len(evaluations) != 3 {
		t.Fatalf("expected 3 evaluations, got %d", len(evaluations))
	}
	for i, qty := range quantities {
		if evaluations[i].Quantity != qty {
			t.Fatalf("order not preserved at %d: got %d want %d", i, evaluations[i].Quantity, qty)
		}
	}
	// fixed fees amortize with quantity, so unit cost must fall
	if !evaluations[1].Result.UnitCost.LessThan(evaluations[0].Result.UnitCost) {
		t.Fatalf("unit cost should drop with volume: %s vs %s",
			evaluations[1].Result.UnitCost, evaluations[0].Result.UnitCost)
	}
}

func TestEvaluateQuantitiesFailsFast(t *testing.T) {
	if _, err := EvaluateQuantities(baseInputs(), []int64{100, 0}); !errors.Is(err, ErrDivisionByZero) {
		t.Fatalf("expected ErrDivisionByZero, got %v", err)
	}
}

func TestCompareShippingOptions(t *testing.T) {
	options := []ShippingOption{
		{Code: "sea", Label: "sea freight", Fee: decimal.NewFromInt(150), TransitDays: 30},
		{Code: "air", Label: "air freight", Fee: decimal.NewFromInt(600), TransitDays: 5},
		{Code: "rail", Label: "rail freight", Fee: decimal.NewFromInt(300), TransitDays: 18},
	}

	comparison, err := CompareShippingOptions(baseInputs(), options)
	if err != nil {
		t.Fatalf("compare: %v", err)
	}
	if comparison.Cheapest.Code != "sea" {
		t.Fatalf("cheapest = %s, want sea", comparison.Cheapest.Code)
	}
	if comparison.Fastest.Code != "air" {
		t.Fatalf("fastest = %s, want air", comparison.Fastest.Code)
	}
	if len(comparison.Evaluations) != 3 {
		t.Fatalf("expected 3 evaluations, got %d", len(comparison.Evaluations))
	}
}

func TestCompareShippingOptionsEmpty(t *testing.T) {
	if _, err := CompareShippingOptions(baseInputs(), nil); err == nil {
		t.Fatal("expected error for empty options")
	}
}

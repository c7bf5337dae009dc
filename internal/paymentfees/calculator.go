// Package paymentfees estimates transfer and processing fees per payment
// method. All functions are pure; fee parameters come from configuration.
package paymentfees

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/bingbai-ux/baoflow-backend/pkg/config"
	"github.com/bingbai-ux/baoflow-backend/pkg/enums"
)

// Fee returns the estimated fee for paying the given amount with the method.
func Fee(amount decimal.Decimal, method enums.PaymentMethod, cfg config.FeeConfig) (decimal.Decimal, error) {
	if amount.IsNegative() {
		return decimal.Zero, fmt.Errorf("amount must not be negative")
	}
	switch method {
	case enums.PaymentMethodWire:
		return amount.Mul(cfg.WireFeeRate).Add(cfg.WireFixedFee), nil
	case enums.PaymentMethodCard:
		return amount.Mul(cfg.CardFeeRate), nil
	case enums.PaymentMethodBankTransfer:
		return cfg.BankTransferFee, nil
	default:
		return decimal.Zero, fmt.Errorf("unsupported payment method %q", method)
	}
}

// MethodFee pairs a method with its estimated fee.
type MethodFee struct {
	Method enums.PaymentMethod `json:"method"`
	Fee    decimal.Decimal     `json:"fee"`
}

// Comparison ranks every supported method by fee.
type Comparison struct {
	Amount      decimal.Decimal     `json:"amount"`
	Ranked      []MethodFee         `json:"ranked"`
	Recommended enums.PaymentMethod `json:"recommended"`
	// Spread is the absolute USD difference between the cheapest and the
	// most expensive method.
	Spread decimal.Decimal `json:"spread"`
}

// CompareMethods evaluates all three methods for the amount and ranks them
// ascending by fee. Ties keep the enum's comparison order.
func CompareMethods(amount decimal.Decimal, cfg config.FeeConfig) (Comparison, error) {
	methods := enums.AllPaymentMethods()
	ranked := make([]MethodFee, 0, len(methods))
	for _, method := range methods {
		fee, err := Fee(amount, method, cfg)
		if err != nil {
			return Comparison{}, err
		}
		ranked = append(ranked, MethodFee{Method: method, Fee: fee})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Fee.LessThan(ranked[j].Fee)
	})

	return Comparison{
		Amount:      amount,
		Ranked:      ranked,
		Recommended: ranked[0].Method,
		Spread:      ranked[len(ranked)-1].Fee.Sub(ranked[0].Fee).Abs(),
	}, nil
}

package enums

import "fmt"

// PaymentType distinguishes which slice of a deal's total a payment covers.
type PaymentType string

const (
	PaymentTypeDeposit PaymentType = "deposit"
	PaymentTypeBalance PaymentType = "balance"
	PaymentTypeFull    PaymentType = "full"
)

var validPaymentTypes = []PaymentType{
	PaymentTypeDeposit,
	PaymentTypeBalance,
	PaymentTypeFull,
}

// String implements fmt.Stringer.
func (p PaymentType) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PaymentType.
func (p PaymentType) IsValid() bool {
	for _, candidate := range validPaymentTypes {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePaymentType converts raw input into a PaymentType.
func ParsePaymentType(value string) (PaymentType, error) {
	for _, candidate := range validPaymentTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment type %q", value)
}

package enums

import "fmt"

// PaymentMethod identifies how a payment is executed.
type PaymentMethod string

const (
	PaymentMethodWire         PaymentMethod = "wire"
	PaymentMethodCard         PaymentMethod = "card"
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
)

var validPaymentMethods = []PaymentMethod{
	PaymentMethodWire,
	PaymentMethodCard,
	PaymentMethodBankTransfer,
}

// AllPaymentMethods returns the supported methods in comparison order.
func AllPaymentMethods() []PaymentMethod {
	out := make([]PaymentMethod, len(validPaymentMethods))
	copy(out, validPaymentMethods)
	return out
}

// String implements fmt.Stringer.
func (p PaymentMethod) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PaymentMethod.
func (p PaymentMethod) IsValid() bool {
	for _, candidate := range validPaymentMethods {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePaymentMethod converts raw input into a PaymentMethod.
func ParsePaymentMethod(value string) (PaymentMethod, error) {
	for _, candidate := range validPaymentMethods {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment method %q", value)
}

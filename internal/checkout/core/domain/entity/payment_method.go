package entity

// PaymentMethod is the tagged variant selecting a gateway family. It is
// parsed exactly once at the checkout entry point; downstream code switches
// on the typed constant, never on the raw request string.
type PaymentMethod string

const (
	MethodCard         PaymentMethod = "card"
	MethodMobileMoney  PaymentMethod = "mobile_money"
	MethodBankTransfer PaymentMethod = "bank_transfer"
	MethodCash         PaymentMethod = "cash"
)

// ParsePaymentMethod validates a raw method string. Unknown methods are a
// ValidationError so they are rejected before any persistence occurs.
func ParsePaymentMethod(raw string) (PaymentMethod, error) {
	switch PaymentMethod(raw) {
	case MethodCard, MethodMobileMoney, MethodBankTransfer, MethodCash:
		return PaymentMethod(raw), nil
	default:
		return "", &ValidationError{Reason: "unknown payment method: " + raw}
	}
}

// RefPrefix returns the transaction reference prefix used for this method.
func (m PaymentMethod) RefPrefix() string {
	if m == MethodCash {
		return "CASH"
	}
	return "TX"
}

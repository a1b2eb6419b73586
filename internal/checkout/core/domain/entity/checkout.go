package entity

// CheckoutRequest is the explicit request-scoped context for one checkout
// attempt: authenticated identity plus the submitted form fields. It is
// passed by parameter into the orchestrator; nothing is read from ambient
// session state.
type CheckoutRequest struct {
	UserID          string
	Email           string
	PaymentMethod   PaymentMethod
	ShippingAddress string
}

// CheckoutResult is the user-facing outcome of a committed checkout: a
// redirect to an external payment page, or an immediate confirmation for
// cash on delivery.
type CheckoutResult struct {
	OrderID     string
	OrderNumber string
	RedirectURL string
	Confirmed   bool
}

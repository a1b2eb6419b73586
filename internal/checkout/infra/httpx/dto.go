package httpx

import "encoding/json"

type CheckoutRequestDTO struct {
	PaymentMethod   string `json:"payment_method"`
	ShippingAddress string `json:"shipping_address"`
}

type CheckoutResponse struct {
	OrderID     string `json:"order_id"`
	OrderNumber string `json:"order_number"`
	RedirectURL string `json:"redirect_url,omitempty"`
	Confirmed   bool   `json:"confirmed"`
}

// CallbackRequest is the normalized shape the payment-callback endpoint
// accepts from gateway webhooks (after any gateway-specific unwrapping done
// upstream). Payload is stored verbatim in the ledger's payment_details.
type CallbackRequest struct {
	TransactionRef string          `json:"transaction_ref"`
	Status         string          `json:"status"`
	Payload        json.RawMessage `json:"payload,omitempty"`
}

type CallbackResponse struct {
	TransactionRef string `json:"transaction_ref"`
	PaymentStatus  string `json:"payment_status"`
}

type OrderResponse struct {
	ID              string              `json:"id"`
	OrderNumber     string              `json:"order_number"`
	UserID          string              `json:"user_id"`
	TotalAmount     string              `json:"total_amount"`
	PaymentMethod   string              `json:"payment_method"`
	ShippingAddress string              `json:"shipping_address"`
	Status          string              `json:"status"`
	Items           []OrderItemResponse `json:"items"`
	CreatedAt       string              `json:"created_at"`
}

type OrderItemResponse struct {
	ProductID  string `json:"product_id"`
	Quantity   int    `json:"quantity"`
	UnitPrice  string `json:"unit_price"`
	TotalPrice string `json:"total_price"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/jcmexdev/storefront-checkout/internal/checkout/core/domain/entity"
	"github.com/jcmexdev/storefront-checkout/internal/checkout/core/ports"
)

// Flutterwave handles card payments via the Flutterwave v3 hosted-payment
// API: a single POST /payments returning a redirect link.
type Flutterwave struct {
	cfg      Config
	currency string
}

var _ ports.PaymentGateway = (*Flutterwave)(nil)

func NewFlutterwave(cfg Config, currency string) *Flutterwave {
	return &Flutterwave{cfg: cfg, currency: currency}
}

func (f *Flutterwave) Name() string { return "flutterwave" }

type flwPaymentRequest struct {
	TxRef       string         `json:"tx_ref"`
	Amount      string         `json:"amount"`
	Currency    string         `json:"currency"`
	RedirectURL string         `json:"redirect_url"`
	Customer    flwCustomer    `json:"customer"`
	Meta        map[string]any `json:"meta,omitempty"`
}

type flwCustomer struct {
	Email string `json:"email"`
}

type flwPaymentResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    struct {
		Link string `json:"link"`
	} `json:"data"`
}

func (f *Flutterwave) Initialize(ctx context.Context, req ports.InitializeRequest) (*ports.Initialization, error) {
	payload := flwPaymentRequest{
		TxRef:       req.TransactionRef,
		Amount:      req.Amount.String(),
		Currency:    f.currency,
		RedirectURL: req.CallbackURL,
		Customer:    flwCustomer{Email: req.PayerEmail},
		Meta:        req.Metadata,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("flutterwave: marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, f.cfg.BaseURL+"/payments", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("flutterwave: build request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+f.cfg.SecretKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := f.cfg.httpClient().Do(httpReq)
	if err != nil {
		return nil, &entity.GatewayError{Gateway: f.Name(), Reason: err.Error()}
	}
	defer resp.Body.Close()

	var out flwPaymentResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, &entity.GatewayError{Gateway: f.Name(), Reason: "malformed response: " + err.Error()}
	}

	if resp.StatusCode != http.StatusOK || out.Status != "success" {
		reason := out.Message
		if reason == "" {
			reason = fmt.Sprintf("unexpected status %d", resp.StatusCode)
		}
		return nil, &entity.GatewayError{Gateway: f.Name(), Reason: reason}
	}

	if out.Data.Link == "" {
		return nil, &entity.GatewayError{Gateway: f.Name(), Reason: "response carried no payment link"}
	}

	return &ports.Initialization{RedirectURL: out.Data.Link}, nil
}

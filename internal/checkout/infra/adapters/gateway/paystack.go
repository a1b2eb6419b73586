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

// Paystack handles mobile money and bank transfers via POST
// /transaction/initialize. One instance is bound to one channel, so the
// selector holds a separate Paystack per payment method.
type Paystack struct {
	cfg     Config
	channel string
}

var _ ports.PaymentGateway = (*Paystack)(nil)

// NewPaystack builds an adapter restricted to the given Paystack channel
// ("mobile_money" or "bank_transfer").
func NewPaystack(cfg Config, channel string) *Paystack {
	return &Paystack{cfg: cfg, channel: channel}
}

func (p *Paystack) Name() string { return "paystack" }

// paystackInitRequest carries Amount in the currency's subunit
// (kobo/pesewas), per Paystack's API.
type paystackInitRequest struct {
	Email       string         `json:"email"`
	Amount      int64          `json:"amount"`
	Reference   string         `json:"reference"`
	CallbackURL string         `json:"callback_url"`
	Channels    []string       `json:"channels,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

type paystackInitResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		AuthorizationURL string `json:"authorization_url"`
	} `json:"data"`
}

func (p *Paystack) Initialize(ctx context.Context, req ports.InitializeRequest) (*ports.Initialization, error) {
	payload := paystackInitRequest{
		Email:       req.PayerEmail,
		Amount:      req.Amount.Shift(2).IntPart(),
		Reference:   req.TransactionRef,
		CallbackURL: req.CallbackURL,
		Channels:    []string{p.channel},
		Metadata:    req.Metadata,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("paystack: marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.BaseURL+"/transaction/initialize", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("paystack: build request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+p.cfg.SecretKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.cfg.httpClient().Do(httpReq)
	if err != nil {
		return nil, &entity.GatewayError{Gateway: p.Name(), Reason: err.Error()}
	}
	defer resp.Body.Close()

	var out paystackInitResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, &entity.GatewayError{Gateway: p.Name(), Reason: "malformed response: " + err.Error()}
	}

	if resp.StatusCode != http.StatusOK || !out.Status {
		reason := out.Message
		if reason == "" {
			reason = fmt.Sprintf("unexpected status %d", resp.StatusCode)
		}
		return nil, &entity.GatewayError{Gateway: p.Name(), Reason: reason}
	}

	if out.Data.AuthorizationURL == "" {
		return nil, &entity.GatewayError{Gateway: p.Name(), Reason: "response carried no authorization url"}
	}

	return &ports.Initialization{RedirectURL: out.Data.AuthorizationURL}, nil
}

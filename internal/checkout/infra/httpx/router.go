package httpx

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/jcmexdev/storefront-checkout/internal/checkout/infra/httpx/middlewares"
)

func NewRouter(handler *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middlewares.AttachSessionIdentity)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Post("/checkout", handler.Checkout)
	r.Post("/payments/callback", handler.PaymentCallback)
	r.Get("/orders/{number}", handler.GetOrderByNumber)
	return r
}

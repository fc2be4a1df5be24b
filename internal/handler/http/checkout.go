package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/macdee501/web-grocery-delivery-version-1/internal/domain"
	"github.com/macdee501/web-grocery-delivery-version-1/internal/service"
	apperrors "github.com/macdee501/web-grocery-delivery-version-1/pkg/errors"
	"github.com/macdee501/web-grocery-delivery-version-1/pkg/httputil"
	"github.com/macdee501/web-grocery-delivery-version-1/pkg/validator"
)

// CheckoutHandler serves the checkout endpoints.
type CheckoutHandler struct {
	service *service.CheckoutService
	logger  *slog.Logger
}

// NewCheckoutHandler creates a checkout handler.
func NewCheckoutHandler(service *service.CheckoutService, logger *slog.Logger) *CheckoutHandler {
	return &CheckoutHandler{service: service, logger: logger}
}

// RegisterRoutes mounts the checkout routes on the router.
func (h *CheckoutHandler) RegisterRoutes(r chi.Router) {
	r.Route("/checkout", func(r chi.Router) {
		r.Post("/", h.initialize)
		r.Get("/{sessionID}", h.get)
		r.Post("/{sessionID}/submit", h.submit)
	})
}

type submitPaymentRequest struct {
	PaymentMethodID string `json:"payment_method_id" validate:"required"`
}

type checkoutSessionResponse struct {
	ID             string                `json:"id"`
	Status         string                `json:"status"`
	Items          []domain.CheckoutItem `json:"items"`
	SubtotalAmount int64                 `json:"subtotal_amount"`
	DeliveryFee    int64                 `json:"delivery_fee"`
	DiscountAmount int64                 `json:"discount_amount"`
	TotalAmount    int64                 `json:"total_amount"`
	Currency       string                `json:"currency"`
	ClientSecret   string                `json:"client_secret,omitempty"`
	OrderID        string                `json:"order_id,omitempty"`
	FailureReason  string                `json:"failure_reason,omitempty"`
	Abandoned      bool                  `json:"abandoned"`
}

func toCheckoutResponse(session *domain.CheckoutSession, abandoned bool) checkoutSessionResponse {
	return checkoutSessionResponse{
		ID:             session.ID,
		Status:         session.Status,
		Items:          session.Items,
		SubtotalAmount: session.SubtotalAmount,
		DeliveryFee:    session.DeliveryFee,
		DiscountAmount: session.DiscountAmount,
		TotalAmount:    session.TotalAmount,
		Currency:       session.Currency,
		ClientSecret:   session.ClientSecret,
		OrderID:        session.OrderID,
		FailureReason:  session.FailureReason,
		Abandoned:      abandoned,
	}
}

func (h *CheckoutHandler) initialize(w http.ResponseWriter, r *http.Request) {
	session, err := h.service.Initialize(r.Context(), UserID(r))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: toCheckoutResponse(session, false)})
}

func (h *CheckoutHandler) get(w http.ResponseWriter, r *http.Request) {
	session, err := h.service.Get(r.Context(), UserID(r), chi.URLParam(r, "sessionID"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	abandoned := h.service.Abandoned(r.Context(), session)
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: toCheckoutResponse(session, abandoned)})
}

func (h *CheckoutHandler) submit(w http.ResponseWriter, r *http.Request) {
	var req submitPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, r, apperrors.InvalidInput("invalid request body"), h.logger)
		return
	}
	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	session, err := h.service.SubmitPayment(r.Context(), UserID(r), chi.URLParam(r, "sessionID"), req.PaymentMethodID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: toCheckoutResponse(session, false)})
}

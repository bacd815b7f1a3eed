package http

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/ha3uno/omiseyasan/internal/checkout"
	"github.com/ha3uno/omiseyasan/internal/domain"
	"github.com/ha3uno/omiseyasan/pkg/logger"
	"go.uber.org/zap"
)

// CheckoutHandler holds the checkout visit in progress. Starting a new
// checkout replaces it unless a submission is in flight.
type CheckoutHandler struct {
	mu       sync.Mutex
	pipeline *checkout.Pipeline

	cart    checkout.Cart
	orders  checkout.OrderSubmitter
	timeout time.Duration
	log     *zap.Logger
}

func NewCheckoutHandler(c checkout.Cart, orders checkout.OrderSubmitter, timeout time.Duration, log *zap.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		cart:    c,
		orders:  orders,
		timeout: timeout,
		log:     logger.OrNop(log),
	}
}

type CheckoutStateDTO struct {
	Status string        `json:"status"`
	Error  string        `json:"error,omitempty"`
	Order  *domain.Order `json:"order,omitempty"`
}

func stateOf(p *checkout.Pipeline) CheckoutStateDTO {
	dto := CheckoutStateDTO{
		Status: p.Status().String(),
		Order:  p.Order(),
	}
	if err := p.Err(); err != nil {
		dto.Error = err.Error()
	}
	return dto
}

func (h *CheckoutHandler) current() *checkout.Pipeline {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.pipeline
}

// POST /api/v1/checkout
func (h *CheckoutHandler) StartCheckout(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.pipeline != nil && h.pipeline.Status() == domain.CheckoutStatusSubmitting {
		respondError(w, http.StatusConflict, "submission_in_progress", checkout.ErrSubmissionInProgress.Error())
		return
	}

	p, err := checkout.Start(h.cart, h.orders, h.log)
	if errors.Is(err, checkout.ErrEmptyCart) {
		respondJSON(w, http.StatusConflict, ErrorResponse{
			Error:    err.Error(),
			Code:     "empty_cart",
			Redirect: "/",
		})
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "could not start checkout")
		return
	}

	h.pipeline = p
	respondJSON(w, http.StatusCreated, stateOf(p))
}

// POST /api/v1/checkout/submit
func (h *CheckoutHandler) SubmitOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	p := h.current()
	if p == nil {
		respondError(w, http.StatusConflict, "checkout_not_started", "start checkout before submitting")
		return
	}

	var info domain.ShippingInfo
	if !decodeBody(w, r, 1<<20, &info) {
		return
	}

	order, err := p.Submit(ctx, info)
	if err != nil {
		h.handleSubmitError(ctx, w, err)
		return
	}

	respondJSON(w, http.StatusCreated, order)
}

func (h *CheckoutHandler) handleSubmitError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, checkout.ErrEmptyCart):
		respondJSON(w, http.StatusConflict, ErrorResponse{Error: err.Error(), Code: "empty_cart", Redirect: "/"})
	case domain.IsValidation(err):
		var ve *domain.ValidationError
		errors.As(err, &ve)
		respondJSON(w, http.StatusBadRequest, ErrorResponse{Error: ve.Message, Code: "invalid_shipping_info", Details: ve.Field})
	case errors.Is(err, checkout.ErrSubmissionInProgress):
		respondError(w, http.StatusConflict, "submission_in_progress", err.Error())
	case errors.Is(err, checkout.ErrAlreadyCompleted):
		respondError(w, http.StatusConflict, "checkout_completed", err.Error())
	case domain.IsTransport(err):
		respondError(w, http.StatusBadGateway, "order_failed", err.Error())
	default:
		logger.WithTrace(ctx, h.log).Error("checkout submit failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

// GET /api/v1/checkout
func (h *CheckoutHandler) GetCheckout(w http.ResponseWriter, r *http.Request) {
	p := h.current()
	if p == nil {
		respondError(w, http.StatusNotFound, "checkout_not_started", "no checkout in progress")
		return
	}
	respondJSON(w, http.StatusOK, stateOf(p))
}

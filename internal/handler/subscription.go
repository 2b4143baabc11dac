package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/pricewell/pricewell/internal/auth"
	"github.com/pricewell/pricewell/internal/handler/dto"
	"github.com/pricewell/pricewell/internal/model"
	"github.com/pricewell/pricewell/internal/service"
)

// SubscriptionManager defines the interface for subscription operations.
type SubscriptionManager interface {
	Subscribe(ctx context.Context, userID, productID, planID string) (*model.Subscription, error)
	GetSubscription(ctx context.Context, slug, userID string) (*model.Product, *model.Subscription, error)
}

// SubscriptionHandler handles HTTP requests for subscription operations.
type SubscriptionHandler struct {
	svc      SubscriptionManager
	validate *validator.Validate
	logger   *slog.Logger
}

// NewSubscriptionHandler creates a new SubscriptionHandler.
func NewSubscriptionHandler(svc SubscriptionManager, logger *slog.Logger) *SubscriptionHandler {
	return &SubscriptionHandler{
		svc:      svc,
		validate: validator.New(),
		logger:   logger,
	}
}

// Subscribe handles POST /public/subscribe.
// The subscribing user is taken from the verified identity, never from
// the request body.
func (h *SubscriptionHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	identity := auth.IdentityFromContext(r.Context())
	if identity == nil {
		h.writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	var req dto.SubscribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		h.writeError(w, http.StatusBadRequest, "VALIDATION_FAILED", "product_id and plan_id are required")
		return
	}

	sub, err := h.svc.Subscribe(r.Context(), identity.UserID, req.ProductID, req.PlanID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("subscription_replaced",
		"subscription_id", sub.ID,
		"user_id", sub.UserID,
		"product_id", sub.ProductID,
		"plan_id", sub.PlanID,
	)

	response := dto.ToSubscriptionResponse(sub)
	writeJSON(w, http.StatusCreated, response)
}

// GetSubscription handles GET /public/subscription/{slug}.
// Returns the caller's current subscription for the product, with a null
// subscription when none exists.
func (h *SubscriptionHandler) GetSubscription(w http.ResponseWriter, r *http.Request) {
	identity := auth.IdentityFromContext(r.Context())
	if identity == nil {
		h.writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	slug := chi.URLParam(r, "slug")
	if slug == "" {
		h.writeError(w, http.StatusBadRequest, "MISSING_SLUG", "Product slug is required")
		return
	}

	product, sub, err := h.svc.GetSubscription(r.Context(), slug, identity.UserID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	response := dto.SubscriptionStatusResponse{
		Product: dto.ToProductResponse(product),
	}
	if sub != nil {
		subResp := dto.ToSubscriptionResponse(sub)
		response.Subscription = &subResp
	}

	writeJSON(w, http.StatusOK, response)
}

// handleServiceError maps service errors to HTTP responses.
func (h *SubscriptionHandler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrProductNotFound):
		h.writeError(w, http.StatusNotFound, "PRODUCT_NOT_FOUND", "Product not found")
	case errors.Is(err, service.ErrPlanNotFound):
		h.writeError(w, http.StatusNotFound, "PLAN_NOT_FOUND", "Plan not found for this product")
	case errors.Is(err, service.ErrPlanInactive):
		h.writeError(w, http.StatusUnprocessableEntity, "PLAN_INACTIVE", "Plan is not available for subscription")
	case errors.Is(err, service.ErrMissingUser):
		h.writeError(w, http.StatusBadRequest, "MISSING_USER", "User ID is required")
	default:
		h.logger.Error("internal_error", "error", err)
		h.writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
	}
}

// writeError writes an error response.
func (h *SubscriptionHandler) writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, dto.ErrorResponse{
		Error: message,
		Code:  code,
	})
}

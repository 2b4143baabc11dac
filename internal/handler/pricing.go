package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pricewell/pricewell/internal/auth"
	"github.com/pricewell/pricewell/internal/handler/dto"
	"github.com/pricewell/pricewell/internal/model"
	"github.com/pricewell/pricewell/internal/service"
)

// PricingResolver defines the interface for pricing resolution.
type PricingResolver interface {
	GetPricing(ctx context.Context, slug string, userID *string) (*model.PricingView, error)
}

// PricingHandler handles HTTP requests for public pricing reads.
type PricingHandler struct {
	svc    PricingResolver
	logger *slog.Logger
}

// NewPricingHandler creates a new PricingHandler.
func NewPricingHandler(svc PricingResolver, logger *slog.Logger) *PricingHandler {
	return &PricingHandler{
		svc:    svc,
		logger: logger,
	}
}

// GetPricing handles GET /public/pricing/{slug}.
// A verified identity personalizes the response; anonymous callers may
// pass ?user_id= instead. The verified identity always wins over the
// query parameter.
func (h *PricingHandler) GetPricing(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	if slug == "" {
		h.writeError(w, http.StatusBadRequest, "MISSING_SLUG", "Product slug is required")
		return
	}

	var userID *string
	if identity := auth.IdentityFromContext(r.Context()); identity != nil {
		userID = &identity.UserID
	} else if q := r.URL.Query().Get("user_id"); q != "" {
		userID = &q
	}

	view, err := h.svc.GetPricing(r.Context(), slug, userID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	response := dto.ToPricingResponse(view)
	writeJSON(w, http.StatusOK, response)
}

// handleServiceError maps service errors to HTTP responses.
func (h *PricingHandler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrProductNotFound):
		h.writeError(w, http.StatusNotFound, "PRODUCT_NOT_FOUND", "Product not found")
	default:
		h.logger.Error("internal_error", "error", err)
		h.writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
	}
}

// writeError writes an error response.
func (h *PricingHandler) writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, dto.ErrorResponse{
		Error: message,
		Code:  code,
	})
}

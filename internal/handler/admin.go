package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/pricewell/pricewell/internal/handler/dto"
	"github.com/pricewell/pricewell/internal/model"
	"github.com/pricewell/pricewell/internal/service"
)

// CatalogManager defines the interface for catalog write operations.
type CatalogManager interface {
	CreateProduct(ctx context.Context, input service.CreateProductInput) (*model.Product, error)
	CreatePlan(ctx context.Context, input service.CreatePlanInput) (*model.Plan, error)
	CreateOverride(ctx context.Context, input service.CreateOverrideInput) (*model.CustomerOverride, error)
}

// AdminHandler provides admin-only catalog endpoints.
type AdminHandler struct {
	svc      CatalogManager
	validate *validator.Validate
	logger   *slog.Logger
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(svc CatalogManager, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{
		svc:      svc,
		validate: validator.New(),
		logger:   logger,
	}
}

// CreateProduct handles POST /admin/products.
func (h *AdminHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		h.writeError(w, http.StatusBadRequest, "VALIDATION_FAILED", "slug and name are required")
		return
	}

	product, err := h.svc.CreateProduct(r.Context(), service.CreateProductInput{
		Slug:        req.Slug,
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("product_created",
		"product_id", product.ID,
		"slug", product.Slug,
	)

	writeJSON(w, http.StatusCreated, dto.ToProductResponse(product))
}

// CreatePlan handles POST /admin/plans.
func (h *AdminHandler) CreatePlan(w http.ResponseWriter, r *http.Request) {
	var req dto.CreatePlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		h.writeError(w, http.StatusBadRequest, "VALIDATION_FAILED", "product_id, name, and a valid billing_period are required")
		return
	}

	plan, err := h.svc.CreatePlan(r.Context(), service.CreatePlanInput{
		ProductID:     req.ProductID,
		Name:          req.Name,
		PriceCents:    req.PriceCents,
		Currency:      req.Currency,
		BillingPeriod: req.BillingPeriod,
		Features:      req.Features,
		IsActive:      req.IsActive,
	})
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("plan_created",
		"plan_id", plan.ID,
		"product_id", plan.ProductID,
		"price_cents", plan.PriceCents,
	)

	writeJSON(w, http.StatusCreated, dto.ToPlanResponse(plan))
}

// CreateOverride handles POST /admin/overrides.
func (h *AdminHandler) CreateOverride(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateOverrideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		h.writeError(w, http.StatusBadRequest, "VALIDATION_FAILED", "product_id is required and override_price_cents must not be negative")
		return
	}

	override, err := h.svc.CreateOverride(r.Context(), service.CreateOverrideInput{
		UserID:             req.UserID,
		ProductID:          req.ProductID,
		PlanID:             req.PlanID,
		OverridePriceCents: req.OverridePriceCents,
		Currency:           req.Currency,
		Reason:             req.Reason,
		StartsAt:           req.StartsAt,
		EndsAt:             req.EndsAt,
	})
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("override_created",
		"override_id", override.ID,
		"product_id", override.ProductID,
		"plan_specific", override.IsPlanSpecific(),
		"global", override.UserID == nil,
	)

	writeJSON(w, http.StatusCreated, dto.ToOverrideResponse(override))
}

// handleServiceError maps service errors to HTTP responses.
func (h *AdminHandler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrProductNotFound):
		h.writeError(w, http.StatusNotFound, "PRODUCT_NOT_FOUND", "Product not found")
	case errors.Is(err, service.ErrPlanNotFound):
		h.writeError(w, http.StatusNotFound, "PLAN_NOT_FOUND", "Plan not found for this product")
	case errors.Is(err, service.ErrSlugExists):
		h.writeError(w, http.StatusConflict, "SLUG_TAKEN", "Slug already exists")
	case errors.Is(err, service.ErrInvalidSlug):
		h.writeError(w, http.StatusBadRequest, "INVALID_SLUG", "Invalid slug format")
	case errors.Is(err, service.ErrMissingName):
		h.writeError(w, http.StatusBadRequest, "MISSING_NAME", "Name is required")
	case errors.Is(err, service.ErrNegativePrice):
		h.writeError(w, http.StatusBadRequest, "NEGATIVE_PRICE", "Price must not be negative")
	case errors.Is(err, service.ErrInvalidBillingPeriod):
		h.writeError(w, http.StatusBadRequest, "INVALID_BILLING_PERIOD", "Billing period must be monthly or yearly")
	case errors.Is(err, service.ErrInvalidCurrency):
		h.writeError(w, http.StatusBadRequest, "INVALID_CURRENCY", "Currency must be a 3-letter code")
	case errors.Is(err, service.ErrInvalidWindow):
		h.writeError(w, http.StatusUnprocessableEntity, "INVALID_WINDOW", "ends_at cannot be earlier than starts_at")
	default:
		h.logger.Error("internal_error", "error", err)
		h.writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
	}
}

// writeError writes an error response.
func (h *AdminHandler) writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, dto.ErrorResponse{
		Error: message,
		Code:  code,
	})
}

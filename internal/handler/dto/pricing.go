// Package dto provides Data Transfer Objects for API requests and responses.
package dto

import (
	"time"

	"github.com/pricewell/pricewell/internal/model"
)

// CreateProductRequest represents the request body for creating a product.
type CreateProductRequest struct {
	Slug        string `json:"slug" validate:"required,max=64"`
	Name        string `json:"name" validate:"required,max=255"`
	Description string `json:"description,omitempty" validate:"max=2048"`
}

// CreatePlanRequest represents the request body for creating a plan.
type CreatePlanRequest struct {
	ProductID     string   `json:"product_id" validate:"required"`
	Name          string   `json:"name" validate:"required,max=255"`
	PriceCents    int64    `json:"price_cents" validate:"gte=0"`
	Currency      string   `json:"currency,omitempty" validate:"omitempty,len=3"`
	BillingPeriod string   `json:"billing_period" validate:"required,oneof=monthly yearly"`
	Features      []string `json:"features,omitempty"`
	IsActive      *bool    `json:"is_active,omitempty"`
}

// CreateOverrideRequest represents the request body for creating a customer override.
// A nil UserID creates a global override; a nil PlanID creates a blanket override.
type CreateOverrideRequest struct {
	UserID             *string    `json:"user_id,omitempty"`
	ProductID          string     `json:"product_id" validate:"required"`
	PlanID             *string    `json:"plan_id,omitempty"`
	OverridePriceCents int64      `json:"override_price_cents" validate:"gte=0"`
	Currency           string     `json:"currency,omitempty" validate:"omitempty,len=3"`
	Reason             string     `json:"reason,omitempty" validate:"max=1024"`
	StartsAt           *time.Time `json:"starts_at,omitempty"`
	EndsAt             *time.Time `json:"ends_at,omitempty"`
}

// SubscribeRequest represents the request body for subscribing to a plan.
type SubscribeRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	PlanID    string `json:"plan_id" validate:"required"`
}

// ProductResponse represents a product in API responses.
type ProductResponse struct {
	ID          string    `json:"id"`
	Slug        string    `json:"slug"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// PlanResponse represents a plan in API responses.
type PlanResponse struct {
	ID            string    `json:"id"`
	ProductID     string    `json:"product_id"`
	Name          string    `json:"name"`
	PriceCents    int64     `json:"price_cents"`
	Currency      string    `json:"currency"`
	BillingPeriod string    `json:"billing_period"`
	Features      []string  `json:"features"`
	IsActive      bool      `json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
}

// OverrideResponse represents a customer override in API responses.
type OverrideResponse struct {
	ID                 string     `json:"id"`
	UserID             *string    `json:"user_id,omitempty"`
	ProductID          string     `json:"product_id"`
	PlanID             *string    `json:"plan_id,omitempty"`
	OverridePriceCents int64      `json:"override_price_cents"`
	Currency           string     `json:"currency"`
	Reason             string     `json:"reason,omitempty"`
	StartsAt           *time.Time `json:"starts_at,omitempty"`
	EndsAt             *time.Time `json:"ends_at,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
}

// EffectivePlanResponse represents a plan with its resolved price.
type EffectivePlanResponse struct {
	PlanID              string   `json:"plan_id"`
	Name                string   `json:"name"`
	BillingPeriod       string   `json:"billing_period"`
	ListPriceCents      int64    `json:"list_price_cents"`
	EffectivePriceCents int64    `json:"effective_price_cents"`
	Currency            string   `json:"currency"`
	Features            []string `json:"features"`
	IsActive            bool     `json:"is_active"`
}

// PricingResponse represents resolved pricing for one product and caller.
type PricingResponse struct {
	Product ProductResponse         `json:"product"`
	Plans   []EffectivePlanResponse `json:"plans"`
	UserID  *string                 `json:"user_id,omitempty"`
}

// SubscriptionResponse represents a subscription in API responses.
type SubscriptionResponse struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	ProductID string    `json:"product_id"`
	PlanID    string    `json:"plan_id"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// SubscriptionStatusResponse represents the current subscription for a
// product. Subscription is null when the user has none.
type SubscriptionStatusResponse struct {
	Product      ProductResponse       `json:"product"`
	Subscription *SubscriptionResponse `json:"subscription"`
}

// ErrorResponse represents an API error.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// ToProductResponse converts a Product model to ProductResponse DTO.
func ToProductResponse(p *model.Product) ProductResponse {
	return ProductResponse{
		ID:          p.ID,
		Slug:        p.Slug,
		Name:        p.Name,
		Description: p.Description,
		CreatedAt:   p.CreatedAt,
	}
}

// ToPlanResponse converts a Plan model to PlanResponse DTO.
func ToPlanResponse(p *model.Plan) PlanResponse {
	return PlanResponse{
		ID:            p.ID,
		ProductID:     p.ProductID,
		Name:          p.Name,
		PriceCents:    p.PriceCents,
		Currency:      p.Currency,
		BillingPeriod: string(p.BillingPeriod),
		Features:      p.Features,
		IsActive:      p.IsActive,
		CreatedAt:     p.CreatedAt,
	}
}

// ToOverrideResponse converts a CustomerOverride model to OverrideResponse DTO.
func ToOverrideResponse(o *model.CustomerOverride) OverrideResponse {
	return OverrideResponse{
		ID:                 o.ID,
		UserID:             o.UserID,
		ProductID:          o.ProductID,
		PlanID:             o.PlanID,
		OverridePriceCents: o.OverridePriceCents,
		Currency:           o.Currency,
		Reason:             o.Reason,
		StartsAt:           o.StartsAt,
		EndsAt:             o.EndsAt,
		CreatedAt:          o.CreatedAt,
	}
}

// ToPricingResponse converts a PricingView model to PricingResponse DTO.
func ToPricingResponse(view *model.PricingView) PricingResponse {
	plans := make([]EffectivePlanResponse, len(view.Plans))
	for i, p := range view.Plans {
		plans[i] = EffectivePlanResponse{
			PlanID:              p.PlanID,
			Name:                p.Name,
			BillingPeriod:       string(p.BillingPeriod),
			ListPriceCents:      p.ListPriceCents,
			EffectivePriceCents: p.EffectivePriceCents,
			Currency:            p.Currency,
			Features:            p.Features,
			IsActive:            p.IsActive,
		}
	}
	return PricingResponse{
		Product: ToProductResponse(view.Product),
		Plans:   plans,
		UserID:  view.UserID,
	}
}

// ToSubscriptionResponse converts a Subscription model to SubscriptionResponse DTO.
func ToSubscriptionResponse(s *model.Subscription) SubscriptionResponse {
	return SubscriptionResponse{
		ID:        s.ID,
		UserID:    s.UserID,
		ProductID: s.ProductID,
		PlanID:    s.PlanID,
		Status:    string(s.Status),
		CreatedAt: s.CreatedAt,
	}
}

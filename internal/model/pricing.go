// Package model defines domain entities for the application.
package model

// EffectivePlan is a plan with its resolved price for a specific caller.
// ListPriceCents is the plan's own price; EffectivePriceCents and Currency
// reflect the winning override, if any.
type EffectivePlan struct {
	PlanID              string        `json:"plan_id"`
	Name                string        `json:"name"`
	BillingPeriod       BillingPeriod `json:"billing_period"`
	ListPriceCents      int64         `json:"list_price_cents"`
	EffectivePriceCents int64         `json:"effective_price_cents"`
	Currency            string        `json:"currency"`
	Features            []string      `json:"features"`
	IsActive            bool          `json:"is_active"`
}

// PricingView is the fully resolved pricing for one product and caller.
// UserID is nil for anonymous callers.
type PricingView struct {
	Product *Product        `json:"product"`
	Plans   []EffectivePlan `json:"plans"`
	UserID  *string         `json:"user_id,omitempty"`
}

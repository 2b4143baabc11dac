// Package model defines domain entities for the application.
package model

import "time"

// CustomerOverride represents a price override for a product.
//
// Scope is derived from the optional fields: a nil UserID applies to every
// user of the product, a nil PlanID applies to every plan of the product
// (a "blanket" override). StartsAt/EndsAt bound when the override applies;
// a missing bound is unconstrained.
type CustomerOverride struct {
	ID                 string     `json:"id"`
	UserID             *string    `json:"user_id,omitempty"`
	ProductID          string     `json:"product_id"`
	PlanID             *string    `json:"plan_id,omitempty"`
	OverridePriceCents int64      `json:"override_price_cents"`
	Currency           string     `json:"currency"`
	Reason             string     `json:"reason"`
	StartsAt           *time.Time `json:"starts_at,omitempty"`
	EndsAt             *time.Time `json:"ends_at,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
}

// IsPlanSpecific returns true if the override targets exactly one plan.
func (o *CustomerOverride) IsPlanSpecific() bool {
	return o.PlanID != nil
}

// AppliesAt reports whether the validity window includes the given instant.
func (o *CustomerOverride) AppliesAt(now time.Time) bool {
	if o.StartsAt != nil && o.StartsAt.After(now) {
		return false
	}
	if o.EndsAt != nil && o.EndsAt.Before(now) {
		return false
	}
	return true
}

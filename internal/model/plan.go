// Package model defines domain entities for the application.
package model

import "time"

// BillingPeriod represents how often a plan bills.
type BillingPeriod string

const (
	BillingMonthly BillingPeriod = "monthly"
	BillingYearly  BillingPeriod = "yearly"
)

// IsValid checks if the billing period is a known value.
func (b BillingPeriod) IsValid() bool {
	return b == BillingMonthly || b == BillingYearly
}

// Plan represents a subscription plan belonging to a product.
// PriceCents is the list price in minor currency units and is never negative.
type Plan struct {
	ID            string        `json:"id"`
	ProductID     string        `json:"product_id"`
	Name          string        `json:"name"`
	PriceCents    int64         `json:"price_cents"`
	Currency      string        `json:"currency"`
	BillingPeriod BillingPeriod `json:"billing_period"`
	Features      []string      `json:"features"`
	IsActive      bool          `json:"is_active"`
	CreatedAt     time.Time     `json:"created_at"`
}

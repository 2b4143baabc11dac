// Package model defines domain entities for the application.
package model

import "time"

// SubscriptionStatus represents the lifecycle state of a subscription.
type SubscriptionStatus string

const (
	SubscriptionActive SubscriptionStatus = "active"
)

// Subscription represents a user's subscription to one plan of a product.
// At most one subscription exists per (user_id, product_id).
type Subscription struct {
	ID        string             `json:"id"`
	UserID    string             `json:"user_id"`
	ProductID string             `json:"product_id"`
	PlanID    string             `json:"plan_id"`
	Status    SubscriptionStatus `json:"status"`
	CreatedAt time.Time          `json:"created_at"`
}

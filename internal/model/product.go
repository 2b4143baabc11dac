// Package model defines domain entities for the application.
package model

import "time"

// Product represents a sellable product with one or more subscription plans.
type Product struct {
	ID          string    `json:"id"`
	Slug        string    `json:"slug"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

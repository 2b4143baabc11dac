package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/pricewell/pricewell/internal/metrics"
	"github.com/pricewell/pricewell/internal/model"
	"github.com/pricewell/pricewell/internal/repository"
)

// Subscription service errors.
var (
	ErrMissingUser  = errors.New("user id is required")
	ErrPlanInactive = errors.New("plan is not active")
)

// SubscriptionStore defines the store operations the subscription service
// depends on.
type SubscriptionStore interface {
	GetProductByID(ctx context.Context, id string) (*model.Product, error)
	GetProductBySlug(ctx context.Context, slug string) (*model.Product, error)
	GetPlanByID(ctx context.Context, id string) (*model.Plan, error)
	ReplaceSubscription(ctx context.Context, sub *model.Subscription) error
	GetSubscription(ctx context.Context, userID, productID string) (*model.Subscription, error)
}

// SubscriptionService enforces the at-most-one-subscription-per-
// (user, product) rule.
type SubscriptionService struct {
	store   SubscriptionStore
	metrics metrics.Recorder
}

// NewSubscriptionService creates a new SubscriptionService.
func NewSubscriptionService(store SubscriptionStore, recorder metrics.Recorder) *SubscriptionService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &SubscriptionService{
		store:   store,
		metrics: recorder,
	}
}

// Subscribe creates or replaces the user's subscription for a product.
// Any prior subscription for the (user, product) pair is replaced
// atomically at the store boundary.
func (s *SubscriptionService) Subscribe(ctx context.Context, userID, productID, planID string) (*model.Subscription, error) {
	if userID == "" {
		return nil, ErrMissingUser
	}

	// Validate downstream references before mutating anything.
	if _, err := s.store.GetProductByID(ctx, productID); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to look up product: %w", err)
	}

	plan, err := s.store.GetPlanByID(ctx, planID)
	if err != nil {
		if errors.Is(err, repository.ErrPlanNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, fmt.Errorf("failed to look up plan: %w", err)
	}

	// A plan from a different product is not a valid reference for this
	// subscribe call.
	if plan.ProductID != productID {
		return nil, ErrPlanNotFound
	}

	if !plan.IsActive {
		return nil, ErrPlanInactive
	}

	sub := &model.Subscription{
		ID:        ulid.Make().String(),
		UserID:    userID,
		ProductID: productID,
		PlanID:    planID,
		Status:    model.SubscriptionActive,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.store.ReplaceSubscription(ctx, sub); err != nil {
		if errors.Is(err, repository.ErrPlanNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, fmt.Errorf("failed to replace subscription: %w", err)
	}

	s.metrics.IncSubscriptionReplaced()

	return sub, nil
}

// GetSubscription returns the product identified by slug together with the
// user's subscription to it, or a nil subscription if none exists. Absence
// of a subscription is not an error.
func (s *SubscriptionService) GetSubscription(ctx context.Context, slug, userID string) (*model.Product, *model.Subscription, error) {
	if userID == "" {
		return nil, nil, ErrMissingUser
	}

	product, err := s.store.GetProductBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, nil, ErrProductNotFound
		}
		return nil, nil, fmt.Errorf("failed to look up product: %w", err)
	}

	sub, err := s.store.GetSubscription(ctx, userID, product.ID)
	if err != nil {
		if errors.Is(err, repository.ErrSubscriptionNotFound) {
			return product, nil, nil
		}
		return nil, nil, fmt.Errorf("failed to get subscription: %w", err)
	}

	return product, sub, nil
}

package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pricewell/pricewell/internal/cache"
	"github.com/pricewell/pricewell/internal/metrics"
	"github.com/pricewell/pricewell/internal/model"
	"github.com/pricewell/pricewell/internal/repository"
)

// Service errors.
var (
	ErrProductNotFound = errors.New("product not found")
	ErrPlanNotFound    = errors.New("plan not found")
)

// PricingStore defines the store lookups the pricing service depends on.
// *repository.Repository satisfies it; tests supply doubles.
type PricingStore interface {
	GetProductBySlug(ctx context.Context, slug string) (*model.Product, error)
	ListActivePlans(ctx context.Context, productID string) ([]*model.Plan, error)
	ListOverrides(ctx context.Context, userID *string, productID string) ([]*model.CustomerOverride, error)
}

// PricingService computes effective pricing views.
type PricingService struct {
	store   PricingStore
	cache   *cache.Cache
	metrics metrics.Recorder
}

// NewPricingService creates a new PricingService.
// A nil cache disables caching entirely.
func NewPricingService(store PricingStore, cacheClient *cache.Cache, recorder metrics.Recorder) *PricingService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &PricingService{
		store:   store,
		cache:   cacheClient,
		metrics: recorder,
	}
}

// GetPricing returns the effective pricing view for a product slug,
// optionally scoped to a user. Anonymous callers (nil userID) always see
// list prices.
func (s *PricingService) GetPricing(ctx context.Context, slug string, userID *string) (*model.PricingView, error) {
	// Step 1: Try cache
	if s.cache != nil {
		isNegative, _ := s.cache.IsUnknownSlug(ctx, slug)
		if isNegative {
			return nil, ErrProductNotFound
		}

		view, err := s.cache.GetPricingView(ctx, slug, userID)
		if err == nil {
			s.metrics.IncPricingCacheHit()
			return view, nil
		}
		s.metrics.IncPricingCacheMiss()
	}

	// Step 2: Store lookups
	product, err := s.store.GetProductBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			if s.cache != nil {
				_ = s.cache.MarkUnknownSlug(ctx, slug)
			}
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to look up product: %w", err)
	}

	plans, err := s.store.ListActivePlans(ctx, product.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list plans: %w", err)
	}

	overrides, err := s.store.ListOverrides(ctx, userID, product.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list overrides: %w", err)
	}

	// Step 3: Resolve
	start := time.Now()
	effective := ResolveEffectivePlans(plans, overrides, time.Now().UTC())
	s.metrics.ObserveResolveDuration(time.Since(start))

	view := &model.PricingView{
		Product: product,
		Plans:   effective,
		UserID:  userID,
	}

	// Step 4: Backfill cache; a write failure never fails the request
	if s.cache != nil {
		_ = s.cache.SetPricingView(ctx, slug, userID, view)
	}

	return view, nil
}

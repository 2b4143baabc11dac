package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/pricewell/pricewell/internal/cache"
	"github.com/pricewell/pricewell/internal/metrics"
	"github.com/pricewell/pricewell/internal/model"
	"github.com/pricewell/pricewell/internal/repository"
)

// Catalog service errors.
var (
	ErrInvalidSlug          = errors.New("invalid slug format")
	ErrSlugExists           = errors.New("slug already exists")
	ErrMissingName          = errors.New("name is required")
	ErrNegativePrice        = errors.New("price must not be negative")
	ErrInvalidBillingPeriod = errors.New("billing period must be monthly or yearly")
	ErrInvalidCurrency      = errors.New("invalid currency code")
	ErrInvalidWindow        = errors.New("ends_at cannot be earlier than starts_at")
)

// Slug validation: 2-64 chars, lowercase alphanumeric + hyphen,
// no leading or trailing hyphen.
var slugRegex = regexp.MustCompile(`^[a-z0-9](?:[a-z0-9-]{0,62}[a-z0-9])?$`)

// Currency codes are ISO 4217 alpha codes.
var currencyRegex = regexp.MustCompile(`^[A-Z]{3}$`)

// CatalogStore defines the store operations the catalog service depends on.
type CatalogStore interface {
	CreateProduct(ctx context.Context, product *model.Product) error
	CreatePlan(ctx context.Context, plan *model.Plan) error
	CreateOverride(ctx context.Context, override *model.CustomerOverride) error
	GetProductByID(ctx context.Context, id string) (*model.Product, error)
	GetPlanByID(ctx context.Context, id string) (*model.Plan, error)
}

// CatalogService handles administrative creation of products, plans and
// customer overrides. All invariants are checked before any store mutation.
type CatalogService struct {
	store   CatalogStore
	cache   *cache.Cache
	metrics metrics.Recorder
}

// NewCatalogService creates a new CatalogService.
// A nil cache disables pricing cache invalidation.
func NewCatalogService(store CatalogStore, cacheClient *cache.Cache, recorder metrics.Recorder) *CatalogService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &CatalogService{
		store:   store,
		cache:   cacheClient,
		metrics: recorder,
	}
}

// CreateProductInput defines input for creating a product.
type CreateProductInput struct {
	Slug        string
	Name        string
	Description string
}

// CreateProduct creates a new product.
func (s *CatalogService) CreateProduct(ctx context.Context, input CreateProductInput) (*model.Product, error) {
	if !slugRegex.MatchString(input.Slug) {
		return nil, ErrInvalidSlug
	}
	if input.Name == "" {
		return nil, ErrMissingName
	}

	product := &model.Product{
		ID:          ulid.Make().String(),
		Slug:        input.Slug,
		Name:        input.Name,
		Description: input.Description,
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.store.CreateProduct(ctx, product); err != nil {
		if errors.Is(err, repository.ErrSlugExists) {
			return nil, ErrSlugExists
		}
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.metrics.IncProductCreated()

	// A previous 404 for this slug may be negatively cached.
	if s.cache != nil {
		_ = s.cache.ClearUnknownSlug(ctx, product.Slug)
	}

	return product, nil
}

// CreatePlanInput defines input for creating a plan.
type CreatePlanInput struct {
	ProductID     string
	Name          string
	PriceCents    int64
	Currency      string
	BillingPeriod string
	Features      []string
	IsActive      *bool
}

// CreatePlan creates a new plan for a product.
func (s *CatalogService) CreatePlan(ctx context.Context, input CreatePlanInput) (*model.Plan, error) {
	if input.Name == "" {
		return nil, ErrMissingName
	}
	if input.PriceCents < 0 {
		return nil, ErrNegativePrice
	}

	period := model.BillingPeriod(input.BillingPeriod)
	if !period.IsValid() {
		return nil, ErrInvalidBillingPeriod
	}

	currency := input.Currency
	if currency == "" {
		currency = "USD"
	}
	if !currencyRegex.MatchString(currency) {
		return nil, ErrInvalidCurrency
	}

	product, err := s.store.GetProductByID(ctx, input.ProductID)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to look up product: %w", err)
	}

	isActive := true
	if input.IsActive != nil {
		isActive = *input.IsActive
	}

	features := input.Features
	if features == nil {
		features = []string{}
	}

	plan := &model.Plan{
		ID:            ulid.Make().String(),
		ProductID:     product.ID,
		Name:          input.Name,
		PriceCents:    input.PriceCents,
		Currency:      currency,
		BillingPeriod: period,
		Features:      features,
		IsActive:      isActive,
		CreatedAt:     time.Now().UTC(),
	}

	if err := s.store.CreatePlan(ctx, plan); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to create plan: %w", err)
	}

	s.metrics.IncPlanCreated()
	s.invalidatePricing(ctx, product.Slug)

	return plan, nil
}

// CreateOverrideInput defines input for creating a customer override.
type CreateOverrideInput struct {
	UserID             *string
	ProductID          string
	PlanID             *string
	OverridePriceCents int64
	Currency           string
	Reason             string
	StartsAt           *time.Time
	EndsAt             *time.Time
}

// CreateOverride creates a new customer override. An override whose window
// has ends_at earlier than starts_at is rejected before being persisted.
func (s *CatalogService) CreateOverride(ctx context.Context, input CreateOverrideInput) (*model.CustomerOverride, error) {
	if input.OverridePriceCents < 0 {
		return nil, ErrNegativePrice
	}
	if input.StartsAt != nil && input.EndsAt != nil && input.EndsAt.Before(*input.StartsAt) {
		return nil, ErrInvalidWindow
	}

	currency := input.Currency
	if currency == "" {
		currency = "USD"
	}
	if !currencyRegex.MatchString(currency) {
		return nil, ErrInvalidCurrency
	}

	product, err := s.store.GetProductByID(ctx, input.ProductID)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to look up product: %w", err)
	}

	// A plan-specific override must target a plan of the same product.
	if input.PlanID != nil {
		plan, err := s.store.GetPlanByID(ctx, *input.PlanID)
		if err != nil {
			if errors.Is(err, repository.ErrPlanNotFound) {
				return nil, ErrPlanNotFound
			}
			return nil, fmt.Errorf("failed to look up plan: %w", err)
		}
		if plan.ProductID != product.ID {
			return nil, ErrPlanNotFound
		}
	}

	override := &model.CustomerOverride{
		ID:                 ulid.Make().String(),
		UserID:             input.UserID,
		ProductID:          product.ID,
		PlanID:             input.PlanID,
		OverridePriceCents: input.OverridePriceCents,
		Currency:           currency,
		Reason:             input.Reason,
		StartsAt:           input.StartsAt,
		EndsAt:             input.EndsAt,
		CreatedAt:          time.Now().UTC(),
	}

	if err := s.store.CreateOverride(ctx, override); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to create override: %w", err)
	}

	s.metrics.IncOverrideCreated()
	s.invalidatePricing(ctx, product.Slug)

	return override, nil
}

// invalidatePricing drops cached pricing views for a product after a
// catalog mutation. Best effort - a stale entry expires via TTL anyway.
func (s *CatalogService) invalidatePricing(ctx context.Context, slug string) {
	if s.cache == nil {
		return
	}
	_ = s.cache.BumpPricingVersion(ctx, slug)
}

package service

import (
	"testing"
	"time"

	"github.com/pricewell/pricewell/internal/model"
)

var resolveNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func plan(id string, priceCents int64) *model.Plan {
	return &model.Plan{
		ID:            id,
		ProductID:     "prod-1",
		Name:          "Plan " + id,
		PriceCents:    priceCents,
		Currency:      "USD",
		BillingPeriod: model.BillingMonthly,
		Features:      []string{"feature-a"},
		IsActive:      true,
	}
}

func planOverride(planID string, priceCents int64) *model.CustomerOverride {
	userID := "user-1"
	return &model.CustomerOverride{
		ID:                 "ov-" + planID,
		UserID:             &userID,
		ProductID:          "prod-1",
		PlanID:             &planID,
		OverridePriceCents: priceCents,
		Currency:           "USD",
	}
}

func blanketOverride(priceCents int64) *model.CustomerOverride {
	userID := "user-1"
	return &model.CustomerOverride{
		ID:                 "ov-blanket",
		UserID:             &userID,
		ProductID:          "prod-1",
		OverridePriceCents: priceCents,
		Currency:           "USD",
	}
}

func TestResolveEffectivePlans_NoOverrides(t *testing.T) {
	t.Parallel()

	plans := []*model.Plan{plan("a", 1000), plan("b", 2000)}

	result := ResolveEffectivePlans(plans, nil, resolveNow)

	if len(result) != 2 {
		t.Fatalf("expected 2 plans, got %d", len(result))
	}
	for i, ep := range result {
		if ep.EffectivePriceCents != plans[i].PriceCents {
			t.Errorf("plan %s: effective = %d, want list price %d", ep.PlanID, ep.EffectivePriceCents, plans[i].PriceCents)
		}
		if ep.Currency != plans[i].Currency {
			t.Errorf("plan %s: currency = %s, want %s", ep.PlanID, ep.Currency, plans[i].Currency)
		}
	}
}

func TestResolveEffectivePlans_PlanSpecificBeatsBlanket(t *testing.T) {
	t.Parallel()

	// The blanket override is cheaper, but the plan-specific one still
	// wins for plan a. Plan b falls back to the blanket price.
	plans := []*model.Plan{plan("a", 1000), plan("b", 2000)}
	overrides := []*model.CustomerOverride{
		planOverride("a", 800),
		blanketOverride(500),
	}

	result := ResolveEffectivePlans(plans, overrides, resolveNow)

	if result[0].EffectivePriceCents != 800 {
		t.Errorf("plan a effective = %d, want 800", result[0].EffectivePriceCents)
	}
	if result[1].EffectivePriceCents != 500 {
		t.Errorf("plan b effective = %d, want 500", result[1].EffectivePriceCents)
	}
	if result[0].ListPriceCents != 1000 || result[1].ListPriceCents != 2000 {
		t.Error("list prices must be carried through unchanged")
	}
}

func TestResolveEffectivePlans_MinimumPriceWinsPerScope(t *testing.T) {
	t.Parallel()

	plans := []*model.Plan{plan("a", 1000)}
	overrides := []*model.CustomerOverride{
		planOverride("a", 900),
		planOverride("a", 700),
		planOverride("a", 850),
	}

	result := ResolveEffectivePlans(plans, overrides, resolveNow)

	if result[0].EffectivePriceCents != 700 {
		t.Errorf("effective = %d, want minimum 700", result[0].EffectivePriceCents)
	}
}

func TestResolveEffectivePlans_MinimumBlanket(t *testing.T) {
	t.Parallel()

	plans := []*model.Plan{plan("a", 1000), plan("b", 2000)}
	overrides := []*model.CustomerOverride{
		blanketOverride(600),
		blanketOverride(400),
		blanketOverride(900),
	}

	result := ResolveEffectivePlans(plans, overrides, resolveNow)

	for _, ep := range result {
		if ep.EffectivePriceCents != 400 {
			t.Errorf("plan %s effective = %d, want 400", ep.PlanID, ep.EffectivePriceCents)
		}
	}
}

func TestResolveEffectivePlans_TiedMinimumReportsSamePrice(t *testing.T) {
	t.Parallel()

	plans := []*model.Plan{plan("a", 1000)}
	first := planOverride("a", 750)
	second := planOverride("a", 750)
	second.ID = "ov-a-2"

	result := ResolveEffectivePlans(plans, []*model.CustomerOverride{first, second}, resolveNow)

	if result[0].EffectivePriceCents != 750 {
		t.Errorf("effective = %d, want 750 regardless of which tied record wins", result[0].EffectivePriceCents)
	}
}

func TestResolveEffectivePlans_WindowValidity(t *testing.T) {
	t.Parallel()

	past := resolveNow.Add(-48 * time.Hour)
	future := resolveNow.Add(48 * time.Hour)

	tests := []struct {
		name     string
		startsAt *time.Time
		endsAt   *time.Time
		want     int64 // effective price for plan a (list 1000)
	}{
		{"starts_in_future_ignored", &future, nil, 1000},
		{"ended_in_past_ignored", nil, &past, 1000},
		{"open_window_applies", nil, nil, 600},
		{"active_window_applies", &past, &future, 600},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			ov := planOverride("a", 600)
			ov.StartsAt = test.startsAt
			ov.EndsAt = test.endsAt

			result := ResolveEffectivePlans([]*model.Plan{plan("a", 1000)}, []*model.CustomerOverride{ov}, resolveNow)

			if result[0].EffectivePriceCents != test.want {
				t.Errorf("effective = %d, want %d", result[0].EffectivePriceCents, test.want)
			}
		})
	}
}

func TestResolveEffectivePlans_ExpiredSpecificFallsBackToBlanket(t *testing.T) {
	t.Parallel()

	past := resolveNow.Add(-time.Hour)
	specific := planOverride("a", 100)
	specific.EndsAt = &past

	overrides := []*model.CustomerOverride{specific, blanketOverride(500)}

	result := ResolveEffectivePlans([]*model.Plan{plan("a", 1000)}, overrides, resolveNow)

	if result[0].EffectivePriceCents != 500 {
		t.Errorf("effective = %d, want blanket 500 once the specific override expired", result[0].EffectivePriceCents)
	}
}

func TestResolveEffectivePlans_PreservesPlanOrder(t *testing.T) {
	t.Parallel()

	plans := []*model.Plan{plan("a", 500), plan("b", 1500), plan("c", 3000)}
	overrides := []*model.CustomerOverride{
		planOverride("c", 100), // cheap override on the most expensive plan
		blanketOverride(50),
	}

	result := ResolveEffectivePlans(plans, overrides, resolveNow)

	wantOrder := []string{"a", "b", "c"}
	for i, ep := range result {
		if ep.PlanID != wantOrder[i] {
			t.Errorf("position %d: plan %s, want %s", i, ep.PlanID, wantOrder[i])
		}
	}
}

func TestResolveEffectivePlans_EmptyPlans(t *testing.T) {
	t.Parallel()

	result := ResolveEffectivePlans(nil, []*model.CustomerOverride{blanketOverride(100)}, resolveNow)

	if result == nil {
		t.Fatal("expected empty slice, got nil")
	}
	if len(result) != 0 {
		t.Fatalf("expected 0 plans, got %d", len(result))
	}
}

func TestResolveEffectivePlans_OverrideCurrencyCarried(t *testing.T) {
	t.Parallel()

	ov := planOverride("a", 900)
	ov.Currency = "EUR"

	result := ResolveEffectivePlans([]*model.Plan{plan("a", 1000)}, []*model.CustomerOverride{ov}, resolveNow)

	if result[0].Currency != "EUR" {
		t.Errorf("currency = %s, want EUR from the override", result[0].Currency)
	}
}

func TestResolveEffectivePlans_ZeroPriceOverride(t *testing.T) {
	t.Parallel()

	// Free access via override is legal - price zero is not "no override".
	result := ResolveEffectivePlans([]*model.Plan{plan("a", 1000)}, []*model.CustomerOverride{planOverride("a", 0)}, resolveNow)

	if result[0].EffectivePriceCents != 0 {
		t.Errorf("effective = %d, want 0", result[0].EffectivePriceCents)
	}
}

package model

import (
	"testing"
	"time"
)

func TestCustomerOverride_AppliesAt(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	past := now.Add(-24 * time.Hour)
	future := now.Add(24 * time.Hour)

	tests := []struct {
		name     string
		startsAt *time.Time
		endsAt   *time.Time
		want     bool
	}{
		{"no_bounds", nil, nil, true},
		{"open_start_future_end", nil, &future, true},
		{"past_start_open_end", &past, nil, true},
		{"inside_window", &past, &future, true},
		{"starts_in_future", &future, nil, false},
		{"ended_in_past", nil, &past, false},
		{"starts_exactly_now", &now, nil, true},
		{"ends_exactly_now", nil, &now, true},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			ov := &CustomerOverride{StartsAt: test.startsAt, EndsAt: test.endsAt}
			if got := ov.AppliesAt(now); got != test.want {
				t.Errorf("AppliesAt = %v, want %v", got, test.want)
			}
		})
	}
}

func TestCustomerOverride_IsPlanSpecific(t *testing.T) {
	t.Parallel()

	planID := "plan-1"

	blanket := &CustomerOverride{}
	if blanket.IsPlanSpecific() {
		t.Error("override without plan_id should not be plan-specific")
	}

	specific := &CustomerOverride{PlanID: &planID}
	if !specific.IsPlanSpecific() {
		t.Error("override with plan_id should be plan-specific")
	}
}

func TestBillingPeriod_IsValid(t *testing.T) {
	t.Parallel()

	if !BillingMonthly.IsValid() {
		t.Error("monthly should be valid")
	}
	if !BillingYearly.IsValid() {
		t.Error("yearly should be valid")
	}
	if BillingPeriod("weekly").IsValid() {
		t.Error("weekly should not be valid")
	}
}

func TestIdentity_HasScope(t *testing.T) {
	t.Parallel()

	admin := &Identity{Scopes: []string{ScopeAdmin}}
	if !admin.HasScope(ScopeSubscribe) {
		t.Error("admin scope should imply subscribe")
	}

	subscriber := &Identity{Scopes: []string{ScopeSubscribe}}
	if subscriber.HasScope(ScopeAdmin) {
		t.Error("subscribe scope should not imply admin")
	}
	if !subscriber.HasScope(ScopeSubscribe) {
		t.Error("subscribe scope should match itself")
	}
}

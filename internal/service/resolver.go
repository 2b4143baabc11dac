// Package service provides business logic for the application.
package service

import (
	"time"

	"github.com/pricewell/pricewell/internal/model"
)

// ResolveEffectivePlans merges a product's active plans with the override
// records that can apply to the caller, producing one EffectivePlan per
// input plan in input order.
//
// Resolution rules:
//   - Overrides whose validity window excludes now are ignored. A missing
//     bound is unconstrained.
//   - A plan-specific override always outranks a blanket override for its
//     plan, regardless of price.
//   - When several overrides survive for the same scope, the minimum price
//     wins. Ties keep the first candidate seen; the reported price is the
//     same either way.
//   - Plans with no applicable override keep their own list price and
//     currency.
//
// The caller guarantees all overrides belong to the same product as the
// plans and are scoped to the requesting user (or to all users). With no
// overrides every plan resolves to its list price.
func ResolveEffectivePlans(plans []*model.Plan, overrides []*model.CustomerOverride, now time.Time) []model.EffectivePlan {
	planSpecific := make(map[string]*model.CustomerOverride)
	var global *model.CustomerOverride

	for _, ov := range overrides {
		if !ov.AppliesAt(now) {
			continue
		}

		if !ov.IsPlanSpecific() {
			if global == nil || ov.OverridePriceCents < global.OverridePriceCents {
				global = ov
			}
			continue
		}

		current, ok := planSpecific[*ov.PlanID]
		if !ok || ov.OverridePriceCents < current.OverridePriceCents {
			planSpecific[*ov.PlanID] = ov
		}
	}

	result := make([]model.EffectivePlan, 0, len(plans))
	for _, plan := range plans {
		effective := model.EffectivePlan{
			PlanID:              plan.ID,
			Name:                plan.Name,
			BillingPeriod:       plan.BillingPeriod,
			ListPriceCents:      plan.PriceCents,
			EffectivePriceCents: plan.PriceCents,
			Currency:            plan.Currency,
			Features:            plan.Features,
			IsActive:            plan.IsActive,
		}

		if ov, ok := planSpecific[plan.ID]; ok {
			effective.EffectivePriceCents = ov.OverridePriceCents
			effective.Currency = ov.Currency
		} else if global != nil {
			effective.EffectivePriceCents = global.OverridePriceCents
			effective.Currency = global.Currency
		}

		result = append(result, effective)
	}

	return result
}

// Package billing implements the subscription and entitlement engine:
// plan catalog, lifecycle transitions, usage metering and payment
// reconciliation. It is constructed as a service object and injected into
// handlers; nothing in this package touches global state.
package billing

import (
	"github.com/vinimatheus/avocado-saas-starter-sub001/models"
)

// Plan describes a billing plan and its limits. The catalog is compiled in
// and immutable at runtime.
type Plan struct {
	Code                      models.PlanCode `json:"code"`
	Name                      string          `json:"name"`
	MonthlyPriceCents         int             `json:"monthlyPriceCents"`
	OrganizationsLimit        int             `json:"organizationsLimit"`
	UsersLimit                int             `json:"usersLimit"`
	ProductMutationsPerPeriod int64           `json:"productMutationsPerPeriod"`
	FeatureFlags              []string        `json:"featureFlags,omitempty"`
}

var (
	PlanFree = Plan{
		Code:                      models.PlanFree,
		Name:                      "Free",
		MonthlyPriceCents:         0,
		OrganizationsLimit:        1,
		UsersLimit:                1,
		ProductMutationsPerPeriod: 50,
	}

	PlanStarter50 = Plan{
		Code:                      models.PlanStarter50,
		Name:                      "Starter",
		MonthlyPriceCents:         5000, // R$50
		OrganizationsLimit:        3,
		UsersLimit:                5,
		ProductMutationsPerPeriod: 500,
		FeatureFlags:              []string{"custom-domain"},
	}

	PlanPro100 = Plan{
		Code:                      models.PlanPro100,
		Name:                      "Pro",
		MonthlyPriceCents:         10000, // R$100
		OrganizationsLimit:        10,
		UsersLimit:                20,
		ProductMutationsPerPeriod: 2000,
		FeatureFlags:              []string{"custom-domain", "api-access", "advanced-reports"},
	}

	PlanScale400 = Plan{
		Code:                      models.PlanScale400,
		Name:                      "Scale",
		MonthlyPriceCents:         40000, // R$400
		OrganizationsLimit:        50,
		UsersLimit:                100,
		ProductMutationsPerPeriod: 10000,
		FeatureFlags:              []string{"custom-domain", "api-access", "advanced-reports", "priority-support", "audit-log"},
	}

	// AllPlans is the ordered list of available plans.
	AllPlans = []Plan{PlanFree, PlanStarter50, PlanPro100, PlanScale400}
)

// PlanByCode looks up a plan by its code. Returns nil if not found.
func PlanByCode(code models.PlanCode) *Plan {
	for i := range AllPlans {
		if AllPlans[i].Code == code {
			p := AllPlans[i]
			return &p
		}
	}
	return nil
}

// PriceCents returns the charge for one period of the given cycle.
// Annual billing is ten monthly payments, two months free.
func (p Plan) PriceCents(cycle models.BillingCycle) int {
	if cycle == models.CycleAnnual {
		return p.MonthlyPriceCents * 10
	}
	return p.MonthlyPriceCents
}

// HasFeature reports whether the plan grants a feature flag. Unknown flags
// are disabled.
func (p Plan) HasFeature(flag string) bool {
	for _, f := range p.FeatureFlags {
		if f == flag {
			return true
		}
	}
	return false
}

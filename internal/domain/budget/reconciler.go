package budget

import (
	"sort"

	"github.com/google/uuid"
	"github.com/kontor/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// MonthVariance breaks a reconciliation down to one calendar month
type MonthVariance struct {
	Month      valueobject.YearMonth `json:"month"`
	Planned    decimal.Decimal       `json:"planned"`
	Actual     decimal.Decimal       `json:"actual"`
	Variance   decimal.Decimal       `json:"variance"`
	HasPlanned bool                  `json:"has_planned"`
}

// Reconciliation is the planned-versus-actual view of a single order.
// Variance is planned minus actual: positive means under budget.
type Reconciliation struct {
	OrderID      uuid.UUID       `json:"order_id"`
	PlanVersion  int             `json:"plan_version"`
	PlannedTotal decimal.Decimal `json:"planned_total"`
	ActualTotal  decimal.Decimal `json:"actual_total"`
	Variance     decimal.Decimal `json:"variance"`
	Months       []MonthVariance `json:"months,omitempty"`
}

// Reconcile compares the latest plan version against recorded actual costs.
// A nil plan means no budget was ever submitted: planned figures are zero
// and the whole actual total shows up as negative variance. Costs in months
// the plan does not cover are still counted.
func Reconcile(orderID uuid.UUID, plan *BudgetPlan, costs []ActualCost, withMonths bool) *Reconciliation {
	rec := &Reconciliation{
		OrderID:      orderID,
		PlannedTotal: decimal.Zero,
		ActualTotal:  decimal.Zero,
	}

	planned := make(map[valueobject.YearMonth]decimal.Decimal)
	if plan != nil {
		rec.PlanVersion = plan.Version
		for idx := range plan.Months {
			m := &plan.Months[idx]
			planned[m.Month] = m.PlannedCost()
			rec.PlannedTotal = rec.PlannedTotal.Add(m.PlannedCost())
		}
	}

	actual := make(map[valueobject.YearMonth]decimal.Decimal)
	for idx := range costs {
		c := &costs[idx]
		actual[c.Month] = actual[c.Month].Add(c.Amount)
		rec.ActualTotal = rec.ActualTotal.Add(c.Amount)
	}

	rec.Variance = rec.PlannedTotal.Sub(rec.ActualTotal)

	if withMonths {
		rec.Months = monthBreakdown(planned, actual)
	}

	return rec
}

func monthBreakdown(planned, actual map[valueobject.YearMonth]decimal.Decimal) []MonthVariance {
	seen := make(map[valueobject.YearMonth]struct{}, len(planned)+len(actual))
	months := make([]valueobject.YearMonth, 0, len(planned)+len(actual))
	for m := range planned {
		if _, ok := seen[m]; !ok {
			seen[m] = struct{}{}
			months = append(months, m)
		}
	}
	for m := range actual {
		if _, ok := seen[m]; !ok {
			seen[m] = struct{}{}
			months = append(months, m)
		}
	}
	sort.Slice(months, func(i, j int) bool { return months[i].Before(months[j]) })

	result := make([]MonthVariance, 0, len(months))
	for _, m := range months {
		p, hasPlan := planned[m]
		a := actual[m]
		result = append(result, MonthVariance{
			Month:      m,
			Planned:    p,
			Actual:     a,
			Variance:   p.Sub(a),
			HasPlanned: hasPlan,
		})
	}
	return result
}

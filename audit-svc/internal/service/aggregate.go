package service

import (
	"nutriaudit/audit-svc/internal/domain"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// ComputeContribution derives one ingredient's share of each tracked
// nutrient from the food's per-100-unit reference values. Reference
// values the table does not define contribute exactly zero. Carbs
// prefer the "available" figure and fall back to "total" only when
// the available one is missing.
func ComputeContribution(quantity decimal.Decimal, food *domain.FoodItem) (domain.Nutrients, error) {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return domain.Nutrients{}, domain.ErrInvalidQuantity
	}

	factor := quantity.Div(hundred)

	contribution := domain.Nutrients{
		EnergyKcal: scale(factor, food.EnergyKcal),
		ProteinG:   scale(factor, food.ProteinG),
		FatG:       scale(factor, food.FatG),
		FiberG:     scale(factor, food.FiberG),
		SodiumMg:   scale(factor, food.SodiumMg),
	}

	if food.CarbsAvailG.Valid {
		contribution.CarbsG = factor.Mul(food.CarbsAvailG.Decimal)
	} else {
		contribution.CarbsG = scale(factor, food.CarbsTotalG)
	}

	return contribution, nil
}

// SumContributions recomputes owner totals from the full current
// ingredient list. It never reads previously stored totals, so a
// repeated call over the same list always yields the same result.
func SumContributions(ingredients []domain.Ingredient) domain.Nutrients {
	var totals domain.Nutrients
	totals.EnergyKcal = decimal.Zero
	totals.ProteinG = decimal.Zero
	totals.FatG = decimal.Zero
	totals.CarbsG = decimal.Zero
	totals.FiberG = decimal.Zero
	totals.SodiumMg = decimal.Zero

	for _, ing := range ingredients {
		totals = totals.Add(ing.Contribution)
	}
	return totals
}

func scale(factor decimal.Decimal, value decimal.NullDecimal) decimal.Decimal {
	if !value.Valid {
		return decimal.Zero
	}
	return factor.Mul(value.Decimal)
}

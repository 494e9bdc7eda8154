package tests

import (
	"testing"

	"nutriaudit/audit-svc/internal/domain"
	"nutriaudit/audit-svc/internal/service"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(value string) decimal.Decimal {
	d, _ := decimal.NewFromString(value)
	return d
}

func present(value string) decimal.NullDecimal {
	return decimal.NewNullDecimal(dec(value))
}

func absent() decimal.NullDecimal {
	return decimal.NullDecimal{}
}

func TestComputeContribution_ScalesPer100(t *testing.T) {
	food := &domain.FoodItem{
		ID:         1,
		Name:       "Arroz blanco",
		EnergyKcal: present("200"),
		ProteinG:   present("7.5"),
		FatG:       present("0.6"),
		FiberG:     present("1.2"),
		SodiumMg:   present("5"),
	}

	contribution, err := service.ComputeContribution(dec("150"), food)
	assert.NoError(t, err)
	assert.True(t, dec("300").Equal(contribution.EnergyKcal), "got %s", contribution.EnergyKcal)
	assert.True(t, dec("11.25").Equal(contribution.ProteinG))
	assert.True(t, dec("0.9").Equal(contribution.FatG))
	assert.True(t, dec("1.8").Equal(contribution.FiberG))
	assert.True(t, dec("7.5").Equal(contribution.SodiumMg))
}

func TestComputeContribution_AbsentValuesContributeZero(t *testing.T) {
	food := &domain.FoodItem{
		ID:         2,
		Name:       "Agua",
		EnergyKcal: absent(),
		ProteinG:   absent(),
		FatG:       absent(),
		FiberG:     absent(),
		SodiumMg:   absent(),
	}

	contribution, err := service.ComputeContribution(dec("250"), food)
	assert.NoError(t, err)
	assert.True(t, contribution.EnergyKcal.IsZero())
	assert.True(t, contribution.ProteinG.IsZero())
	assert.True(t, contribution.FatG.IsZero())
	assert.True(t, contribution.CarbsG.IsZero())
	assert.True(t, contribution.FiberG.IsZero())
	assert.True(t, contribution.SodiumMg.IsZero())
}

func TestComputeContribution_CarbSubstitution(t *testing.T) {
	tests := []struct {
		name      string
		total     decimal.NullDecimal
		available decimal.NullDecimal
		expected  string
	}{
		{
			// available wins even when total is larger
			name:      "available_preferred_over_total",
			total:     present("80"),
			available: present("60"),
			expected:  "60",
		},
		{
			name:      "available_preferred_even_when_smaller_than_total",
			total:     present("10"),
			available: present("55"),
			expected:  "55",
		},
		{
			name:      "fallback_to_total_when_available_absent",
			total:     present("40"),
			available: absent(),
			expected:  "40",
		},
		{
			name:      "zero_when_both_absent",
			total:     absent(),
			available: absent(),
			expected:  "0",
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			food := &domain.FoodItem{
				CarbsTotalG: testCase.total,
				CarbsAvailG: testCase.available,
			}
			contribution, err := service.ComputeContribution(dec("100"), food)
			assert.NoError(t, err)
			assert.True(t, dec(testCase.expected).Equal(contribution.CarbsG),
				"expected %s, got %s", testCase.expected, contribution.CarbsG)
		})
	}
}

func TestComputeContribution_InvalidQuantity(t *testing.T) {
	food := &domain.FoodItem{EnergyKcal: present("100")}

	for _, quantity := range []string{"0", "-10"} {
		_, err := service.ComputeContribution(dec(quantity), food)
		assert.ErrorIs(t, err, domain.ErrInvalidQuantity, "quantity %s", quantity)
	}
}

func TestSumContributions_EmptyListYieldsZeroTotals(t *testing.T) {
	totals := service.SumContributions(nil)
	assert.True(t, totals.EnergyKcal.IsZero())
	assert.True(t, totals.ProteinG.IsZero())
	assert.True(t, totals.CarbsG.IsZero())
}

func TestSumContributions_PointwiseSum(t *testing.T) {
	ingredients := []domain.Ingredient{
		{Contribution: domain.Nutrients{EnergyKcal: dec("300"), ProteinG: dec("11.25")}},
		{Contribution: domain.Nutrients{EnergyKcal: dec("300"), ProteinG: dec("11.25")}},
	}

	totals := service.SumContributions(ingredients)
	assert.True(t, dec("600").Equal(totals.EnergyKcal))
	assert.True(t, dec("22.5").Equal(totals.ProteinG))

	// removing one ingredient and recomputing halves the total
	totals = service.SumContributions(ingredients[:1])
	assert.True(t, dec("300").Equal(totals.EnergyKcal))
}

func TestSumContributions_Idempotent(t *testing.T) {
	ingredients := []domain.Ingredient{
		{Contribution: domain.Nutrients{EnergyKcal: dec("123.45"), SodiumMg: dec("0.005")}},
		{Contribution: domain.Nutrients{EnergyKcal: dec("0.55"), SodiumMg: dec("9.995")}},
	}

	first := service.SumContributions(ingredients)
	second := service.SumContributions(ingredients)
	assert.True(t, first.EnergyKcal.Equal(second.EnergyKcal))
	assert.True(t, first.SodiumMg.Equal(second.SodiumMg))
	assert.True(t, dec("124").Equal(first.EnergyKcal))
	assert.True(t, dec("10").Equal(first.SodiumMg))
}

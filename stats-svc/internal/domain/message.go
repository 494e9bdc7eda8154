package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const TypeTotalsRecalculated = "dish_totals_recalculated"

// TotalsEvent mirrors the message audit-svc publishes after a cascade
// commit.
type TotalsEvent struct {
	Type       string          `json:"type"`
	DishID     int             `json:"dish_id"`
	VisitID    int             `json:"visit_id"`
	EnergyKcal decimal.Decimal `json:"energy_kcal"`
	Timestamp  time.Time       `json:"timestamp"`
}

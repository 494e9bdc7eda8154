package domain

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound        = errors.New("record not found")
	ErrValidation      = errors.New("invalid payload")
	ErrInvalidQuantity = errors.New("quantity must be a positive number")
	ErrConflictRetry   = errors.New("write conflict on dish, retry exhausted")
)

type Institution struct {
	ID        int       `json:"id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	Kind      string    `json:"kind"`
	Address   string    `json:"address"`
	District  string    `json:"district"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

type Visit struct {
	ID            int             `json:"id"`
	InstitutionID int             `json:"institution_id"`
	Date          string          `json:"date"`
	MealType      string          `json:"meal_type"`
	Notes         string          `json:"notes"`
	FormCompleted bool            `json:"form_completed"`
	FormAnswers   json.RawMessage `json:"form_answers,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	Dishes        []Dish          `json:"dishes,omitempty"`
}

// Dish doubles as a reusable template when VisitID is nil.
type Dish struct {
	ID          int          `json:"id"`
	VisitID     *int         `json:"visit_id,omitempty"`
	Name        string       `json:"name"`
	Kind        string       `json:"kind"`
	Servings    int          `json:"servings,omitempty"`
	Notes       string       `json:"notes,omitempty"`
	Active      bool         `json:"active"`
	Totals      Nutrients    `json:"totals"`
	CreatedAt   time.Time    `json:"created_at"`
	Ingredients []Ingredient `json:"ingredients,omitempty"`
}

func (d *Dish) IsTemplate() bool {
	return d.VisitID == nil
}

type Ingredient struct {
	ID           int             `json:"id"`
	DishID       int             `json:"dish_id"`
	FoodID       int             `json:"food_id"`
	FoodName     string          `json:"food_name,omitempty"`
	Quantity     decimal.Decimal `json:"quantity"`
	Unit         string          `json:"unit"`
	Position     int             `json:"position"`
	Contribution Nutrients       `json:"contribution"`
}

// FoodItem carries reference values per 100 units of the base unit.
// A NullDecimal with Valid=false means the source table has no figure
// for that nutrient, which is different from a measured zero.
type FoodItem struct {
	ID          int                 `json:"id"`
	Code        string              `json:"code"`
	Name        string              `json:"name"`
	Category    string              `json:"category"`
	EnergyKcal  decimal.NullDecimal `json:"energy_kcal"`
	ProteinG    decimal.NullDecimal `json:"protein_g"`
	FatG        decimal.NullDecimal `json:"fat_g"`
	CarbsTotalG decimal.NullDecimal `json:"carbs_total_g"`
	CarbsAvailG decimal.NullDecimal `json:"carbs_available_g"`
	FiberG      decimal.NullDecimal `json:"fiber_g"`
	SodiumMg    decimal.NullDecimal `json:"sodium_mg"`
}

type Nutrients struct {
	EnergyKcal decimal.Decimal `json:"energy_kcal"`
	ProteinG   decimal.Decimal `json:"protein_g"`
	FatG       decimal.Decimal `json:"fat_g"`
	CarbsG     decimal.Decimal `json:"carbs_g"`
	FiberG     decimal.Decimal `json:"fiber_g"`
	SodiumMg   decimal.Decimal `json:"sodium_mg"`
}

func (n Nutrients) Add(other Nutrients) Nutrients {
	return Nutrients{
		EnergyKcal: n.EnergyKcal.Add(other.EnergyKcal),
		ProteinG:   n.ProteinG.Add(other.ProteinG),
		FatG:       n.FatG.Add(other.FatG),
		CarbsG:     n.CarbsG.Add(other.CarbsG),
		FiberG:     n.FiberG.Add(other.FiberG),
		SodiumMg:   n.SodiumMg.Add(other.SodiumMg),
	}
}

type TotalsEvent struct {
	Type       string          `json:"type"`
	DishID     int             `json:"dish_id"`
	VisitID    int             `json:"visit_id,omitempty"`
	EnergyKcal decimal.Decimal `json:"energy_kcal"`
	Timestamp  time.Time       `json:"timestamp"`
}

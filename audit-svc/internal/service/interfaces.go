package service

import (
	"context"

	"nutriaudit/audit-svc/internal/domain"
)

type CascadeRepository interface {
	Begin() (CascadeTx, error)
}

// CascadeTx is one transaction over a dish and its ingredients. LockDish
// must take a row lock on the owner so concurrent cascades on the same
// dish serialize instead of interleaving.
type CascadeTx interface {
	LockDish(dishID int) (*domain.Dish, error)
	GetIngredient(dishID, ingredientID int) (*domain.Ingredient, error)
	InsertIngredient(ing *domain.Ingredient) error
	UpdateIngredient(ing *domain.Ingredient) error
	DeleteIngredient(dishID, ingredientID int) (int64, error)
	ListIngredients(dishID int) ([]domain.Ingredient, error)
	SaveTotals(dishID int, totals domain.Nutrients) error
	GetVisit(visitID int) (*domain.Visit, error)
	InsertDish(dish *domain.Dish) error
	Commit() error
	Rollback() error
}

type FoodRepository interface {
	GetFood(id int) (*domain.FoodItem, error)
	SearchFoods(query string) ([]domain.FoodItem, error)
}

type InstitutionRepository interface {
	CreateInstitution(inst *domain.Institution) error
	ListInstitutions() ([]domain.Institution, error)
	GetInstitution(id int) (*domain.Institution, error)
}

type VisitRepository interface {
	CreateVisit(visit *domain.Visit) error
	ListVisits(institutionID int) ([]domain.Visit, error)
	GetVisit(id int) (*domain.Visit, error)
}

type DishRepository interface {
	CreateDish(dish *domain.Dish) error
	GetDish(id int) (*domain.Dish, error)
	ListDishes(visitID int) ([]domain.Dish, error)
	ListTemplates() ([]domain.Dish, error)
}

type StatsCache interface {
	Invalidate(ctx context.Context, key string) error
}

type TotalsPublisher interface {
	PublishTotals(ctx context.Context, event domain.TotalsEvent) error
}

type InstitutionServiceInterface interface {
	Create(inst *domain.Institution) error
	List() ([]domain.Institution, error)
	Get(id int) (*domain.Institution, error)
}

type VisitServiceInterface interface {
	Create(visit *domain.Visit) error
	List(institutionID int) ([]domain.Visit, error)
	Get(id int) (*domain.Visit, error)
}

type DishServiceInterface interface {
	Create(dish *domain.Dish) error
	Get(id int) (*domain.Dish, error)
	List(visitID int) ([]domain.Dish, error)
	ListTemplates() ([]domain.Dish, error)
}

type FoodServiceInterface interface {
	Get(id int) (*domain.FoodItem, error)
	Search(query string) ([]domain.FoodItem, error)
}

type CascadeServiceInterface interface {
	AddIngredient(ctx context.Context, dishID int, ing *domain.Ingredient) (domain.Nutrients, error)
	UpdateIngredient(ctx context.Context, dishID, ingredientID int, ing *domain.Ingredient) (domain.Nutrients, error)
	RemoveIngredient(ctx context.Context, dishID, ingredientID int) (domain.Nutrients, error)
	CloneTemplate(ctx context.Context, templateID, visitID int) (*domain.Dish, error)
	Recalculate(ctx context.Context, dishID int) (domain.Nutrients, error)
}

var (
	_ CascadeServiceInterface     = (*CascadeService)(nil)
	_ InstitutionServiceInterface = (*InstitutionService)(nil)
	_ VisitServiceInterface       = (*VisitService)(nil)
	_ DishServiceInterface        = (*DishService)(nil)
	_ FoodServiceInterface        = (*FoodService)(nil)
)

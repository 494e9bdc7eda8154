package mocks

import (
	"context"

	"nutriaudit/audit-svc/internal/domain"
	"nutriaudit/audit-svc/internal/service"

	"github.com/stretchr/testify/mock"
)

type testingT interface {
	mock.TestingT
	Cleanup(func())
}

// CascadeRepository mocks service.CascadeRepository.
type CascadeRepository struct {
	mock.Mock
}

func NewCascadeRepository(t testingT) *CascadeRepository {
	m := &CascadeRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *CascadeRepository) Begin() (service.CascadeTx, error) {
	ret := m.Called()
	var tx service.CascadeTx
	if ret.Get(0) != nil {
		tx = ret.Get(0).(service.CascadeTx)
	}
	return tx, ret.Error(1)
}

// CascadeTx mocks service.CascadeTx.
type CascadeTx struct {
	mock.Mock
}

func NewCascadeTx(t testingT) *CascadeTx {
	m := &CascadeTx{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *CascadeTx) LockDish(dishID int) (*domain.Dish, error) {
	ret := m.Called(dishID)
	var dish *domain.Dish
	if ret.Get(0) != nil {
		dish = ret.Get(0).(*domain.Dish)
	}
	return dish, ret.Error(1)
}

func (m *CascadeTx) GetIngredient(dishID, ingredientID int) (*domain.Ingredient, error) {
	ret := m.Called(dishID, ingredientID)
	var ing *domain.Ingredient
	if ret.Get(0) != nil {
		ing = ret.Get(0).(*domain.Ingredient)
	}
	return ing, ret.Error(1)
}

func (m *CascadeTx) InsertIngredient(ing *domain.Ingredient) error {
	return m.Called(ing).Error(0)
}

func (m *CascadeTx) UpdateIngredient(ing *domain.Ingredient) error {
	return m.Called(ing).Error(0)
}

func (m *CascadeTx) DeleteIngredient(dishID, ingredientID int) (int64, error) {
	ret := m.Called(dishID, ingredientID)
	return ret.Get(0).(int64), ret.Error(1)
}

func (m *CascadeTx) ListIngredients(dishID int) ([]domain.Ingredient, error) {
	ret := m.Called(dishID)
	var ingredients []domain.Ingredient
	if ret.Get(0) != nil {
		ingredients = ret.Get(0).([]domain.Ingredient)
	}
	return ingredients, ret.Error(1)
}

func (m *CascadeTx) SaveTotals(dishID int, totals domain.Nutrients) error {
	return m.Called(dishID, totals).Error(0)
}

func (m *CascadeTx) GetVisit(visitID int) (*domain.Visit, error) {
	ret := m.Called(visitID)
	var visit *domain.Visit
	if ret.Get(0) != nil {
		visit = ret.Get(0).(*domain.Visit)
	}
	return visit, ret.Error(1)
}

func (m *CascadeTx) InsertDish(dish *domain.Dish) error {
	return m.Called(dish).Error(0)
}

func (m *CascadeTx) Commit() error {
	return m.Called().Error(0)
}

func (m *CascadeTx) Rollback() error {
	return m.Called().Error(0)
}

// FoodRepository mocks service.FoodRepository.
type FoodRepository struct {
	mock.Mock
}

func NewFoodRepository(t testingT) *FoodRepository {
	m := &FoodRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *FoodRepository) GetFood(id int) (*domain.FoodItem, error) {
	ret := m.Called(id)
	var food *domain.FoodItem
	if ret.Get(0) != nil {
		food = ret.Get(0).(*domain.FoodItem)
	}
	return food, ret.Error(1)
}

func (m *FoodRepository) SearchFoods(query string) ([]domain.FoodItem, error) {
	ret := m.Called(query)
	var foods []domain.FoodItem
	if ret.Get(0) != nil {
		foods = ret.Get(0).([]domain.FoodItem)
	}
	return foods, ret.Error(1)
}

// StatsCache mocks service.StatsCache.
type StatsCache struct {
	mock.Mock
}

func NewStatsCache(t testingT) *StatsCache {
	m := &StatsCache{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *StatsCache) Invalidate(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

// TotalsPublisher mocks service.TotalsPublisher.
type TotalsPublisher struct {
	mock.Mock
}

func NewTotalsPublisher(t testingT) *TotalsPublisher {
	m := &TotalsPublisher{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *TotalsPublisher) PublishTotals(ctx context.Context, event domain.TotalsEvent) error {
	return m.Called(ctx, event).Error(0)
}

// CascadeService mocks service.CascadeServiceInterface for handler tests.
type CascadeService struct {
	mock.Mock
}

func NewCascadeService(t testingT) *CascadeService {
	m := &CascadeService{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *CascadeService) AddIngredient(ctx context.Context, dishID int, ing *domain.Ingredient) (domain.Nutrients, error) {
	ret := m.Called(ctx, dishID, ing)
	return ret.Get(0).(domain.Nutrients), ret.Error(1)
}

func (m *CascadeService) UpdateIngredient(ctx context.Context, dishID, ingredientID int, ing *domain.Ingredient) (domain.Nutrients, error) {
	ret := m.Called(ctx, dishID, ingredientID, ing)
	return ret.Get(0).(domain.Nutrients), ret.Error(1)
}

func (m *CascadeService) RemoveIngredient(ctx context.Context, dishID, ingredientID int) (domain.Nutrients, error) {
	ret := m.Called(ctx, dishID, ingredientID)
	return ret.Get(0).(domain.Nutrients), ret.Error(1)
}

func (m *CascadeService) CloneTemplate(ctx context.Context, templateID, visitID int) (*domain.Dish, error) {
	ret := m.Called(ctx, templateID, visitID)
	var dish *domain.Dish
	if ret.Get(0) != nil {
		dish = ret.Get(0).(*domain.Dish)
	}
	return dish, ret.Error(1)
}

func (m *CascadeService) Recalculate(ctx context.Context, dishID int) (domain.Nutrients, error) {
	ret := m.Called(ctx, dishID)
	return ret.Get(0).(domain.Nutrients), ret.Error(1)
}

// InstitutionRepository mocks service.InstitutionRepository.
type InstitutionRepository struct {
	mock.Mock
}

func NewInstitutionRepository(t testingT) *InstitutionRepository {
	m := &InstitutionRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *InstitutionRepository) CreateInstitution(inst *domain.Institution) error {
	return m.Called(inst).Error(0)
}

func (m *InstitutionRepository) ListInstitutions() ([]domain.Institution, error) {
	ret := m.Called()
	var institutions []domain.Institution
	if ret.Get(0) != nil {
		institutions = ret.Get(0).([]domain.Institution)
	}
	return institutions, ret.Error(1)
}

func (m *InstitutionRepository) GetInstitution(id int) (*domain.Institution, error) {
	ret := m.Called(id)
	var inst *domain.Institution
	if ret.Get(0) != nil {
		inst = ret.Get(0).(*domain.Institution)
	}
	return inst, ret.Error(1)
}

// DishRepository mocks service.DishRepository.
type DishRepository struct {
	mock.Mock
}

func NewDishRepository(t testingT) *DishRepository {
	m := &DishRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *DishRepository) CreateDish(dish *domain.Dish) error {
	return m.Called(dish).Error(0)
}

func (m *DishRepository) GetDish(id int) (*domain.Dish, error) {
	ret := m.Called(id)
	var dish *domain.Dish
	if ret.Get(0) != nil {
		dish = ret.Get(0).(*domain.Dish)
	}
	return dish, ret.Error(1)
}

func (m *DishRepository) ListDishes(visitID int) ([]domain.Dish, error) {
	ret := m.Called(visitID)
	var dishes []domain.Dish
	if ret.Get(0) != nil {
		dishes = ret.Get(0).([]domain.Dish)
	}
	return dishes, ret.Error(1)
}

func (m *DishRepository) ListTemplates() ([]domain.Dish, error) {
	ret := m.Called()
	var dishes []domain.Dish
	if ret.Get(0) != nil {
		dishes = ret.Get(0).([]domain.Dish)
	}
	return dishes, ret.Error(1)
}

// VisitRepository mocks service.VisitRepository.
type VisitRepository struct {
	mock.Mock
}

func NewVisitRepository(t testingT) *VisitRepository {
	m := &VisitRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *VisitRepository) CreateVisit(visit *domain.Visit) error {
	return m.Called(visit).Error(0)
}

func (m *VisitRepository) ListVisits(institutionID int) ([]domain.Visit, error) {
	ret := m.Called(institutionID)
	var visits []domain.Visit
	if ret.Get(0) != nil {
		visits = ret.Get(0).([]domain.Visit)
	}
	return visits, ret.Error(1)
}

func (m *VisitRepository) GetVisit(id int) (*domain.Visit, error) {
	ret := m.Called(id)
	var visit *domain.Visit
	if ret.Get(0) != nil {
		visit = ret.Get(0).(*domain.Visit)
	}
	return visit, ret.Error(1)
}

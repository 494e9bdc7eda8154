package service

import (
	"fmt"

	"nutriaudit/audit-svc/internal/domain"
)

type InstitutionService struct {
	repo InstitutionRepository
}

func NewInstitutionService(repo InstitutionRepository) *InstitutionService {
	return &InstitutionService{repo: repo}
}

func (s *InstitutionService) Create(inst *domain.Institution) error {
	if inst.Code == "" || inst.Name == "" {
		return fmt.Errorf("%w: code and name are required", domain.ErrValidation)
	}
	return s.repo.CreateInstitution(inst)
}

func (s *InstitutionService) List() ([]domain.Institution, error) {
	return s.repo.ListInstitutions()
}

func (s *InstitutionService) Get(id int) (*domain.Institution, error) {
	return s.repo.GetInstitution(id)
}

type VisitService struct {
	repo   VisitRepository
	dishes DishRepository
}

func NewVisitService(repo VisitRepository, dishes DishRepository) *VisitService {
	return &VisitService{repo: repo, dishes: dishes}
}

func (s *VisitService) Create(visit *domain.Visit) error {
	if visit.InstitutionID <= 0 || visit.Date == "" {
		return fmt.Errorf("%w: institution_id and date are required", domain.ErrValidation)
	}
	return s.repo.CreateVisit(visit)
}

func (s *VisitService) List(institutionID int) ([]domain.Visit, error) {
	return s.repo.ListVisits(institutionID)
}

func (s *VisitService) Get(id int) (*domain.Visit, error) {
	visit, err := s.repo.GetVisit(id)
	if err != nil {
		return nil, err
	}
	dishes, err := s.dishes.ListDishes(visit.ID)
	if err != nil {
		return nil, err
	}
	visit.Dishes = dishes
	return visit, nil
}

type DishService struct {
	repo DishRepository
}

func NewDishService(repo DishRepository) *DishService {
	return &DishService{repo: repo}
}

func (s *DishService) Create(dish *domain.Dish) error {
	if dish.Name == "" {
		return fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	return s.repo.CreateDish(dish)
}

func (s *DishService) Get(id int) (*domain.Dish, error) {
	return s.repo.GetDish(id)
}

func (s *DishService) List(visitID int) ([]domain.Dish, error) {
	return s.repo.ListDishes(visitID)
}

func (s *DishService) ListTemplates() ([]domain.Dish, error) {
	return s.repo.ListTemplates()
}

type FoodService struct {
	repo FoodRepository
}

func NewFoodService(repo FoodRepository) *FoodService {
	return &FoodService{repo: repo}
}

func (s *FoodService) Get(id int) (*domain.FoodItem, error) {
	return s.repo.GetFood(id)
}

func (s *FoodService) Search(query string) ([]domain.FoodItem, error) {
	return s.repo.SearchFoods(query)
}

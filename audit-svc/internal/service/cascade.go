package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"nutriaudit/audit-svc/internal/domain"
)

const (
	maxCascadeAttempts = 3

	DashboardStatsKey      = "dashboard_stats"
	EventTotalsRecalculate = "dish_totals_recalculated"
)

// CascadeService applies ingredient mutations and propagates the
// recomputation up to the owning dish or template inside one
// transaction, then signals downstream read caches.
type CascadeService struct {
	repo      CascadeRepository
	foods     FoodRepository
	cache     StatsCache
	publisher TotalsPublisher
}

func NewCascadeService(repo CascadeRepository, foods FoodRepository, cache StatsCache, publisher TotalsPublisher) *CascadeService {
	return &CascadeService{
		repo:      repo,
		foods:     foods,
		cache:     cache,
		publisher: publisher,
	}
}

func (s *CascadeService) AddIngredient(ctx context.Context, dishID int, ing *domain.Ingredient) (domain.Nutrients, error) {
	if ing.FoodID <= 0 {
		return domain.Nutrients{}, fmt.Errorf("%w: food_id is required", domain.ErrValidation)
	}
	if ing.Unit == "" {
		ing.Unit = "g"
	}

	food, err := s.foods.GetFood(ing.FoodID)
	if err != nil {
		return domain.Nutrients{}, err
	}
	contribution, err := ComputeContribution(ing.Quantity, food)
	if err != nil {
		return domain.Nutrients{}, err
	}
	ing.Contribution = contribution
	ing.FoodName = food.Name

	var dish *domain.Dish
	totals, err := s.runCascade(dishID, func(tx CascadeTx, locked *domain.Dish) error {
		dish = locked
		ing.DishID = dishID
		return tx.InsertIngredient(ing)
	})
	if err != nil {
		return domain.Nutrients{}, err
	}

	s.afterCommit(ctx, dish, totals)
	return totals, nil
}

func (s *CascadeService) UpdateIngredient(ctx context.Context, dishID, ingredientID int, ing *domain.Ingredient) (domain.Nutrients, error) {
	if ing.FoodID <= 0 {
		return domain.Nutrients{}, fmt.Errorf("%w: food_id is required", domain.ErrValidation)
	}
	if ing.Unit == "" {
		ing.Unit = "g"
	}

	food, err := s.foods.GetFood(ing.FoodID)
	if err != nil {
		return domain.Nutrients{}, err
	}
	contribution, err := ComputeContribution(ing.Quantity, food)
	if err != nil {
		return domain.Nutrients{}, err
	}
	ing.Contribution = contribution
	ing.FoodName = food.Name

	var dish *domain.Dish
	totals, err := s.runCascade(dishID, func(tx CascadeTx, locked *domain.Dish) error {
		dish = locked
		existing, err := tx.GetIngredient(dishID, ingredientID)
		if err != nil {
			return err
		}
		ing.ID = existing.ID
		ing.DishID = dishID
		if ing.Position == 0 {
			ing.Position = existing.Position
		}
		return tx.UpdateIngredient(ing)
	})
	if err != nil {
		return domain.Nutrients{}, err
	}

	s.afterCommit(ctx, dish, totals)
	return totals, nil
}

func (s *CascadeService) RemoveIngredient(ctx context.Context, dishID, ingredientID int) (domain.Nutrients, error) {
	var dish *domain.Dish
	totals, err := s.runCascade(dishID, func(tx CascadeTx, locked *domain.Dish) error {
		dish = locked
		rows, err := tx.DeleteIngredient(dishID, ingredientID)
		if err != nil {
			return err
		}
		if rows == 0 {
			return domain.ErrNotFound
		}
		return nil
	})
	if err != nil {
		return domain.Nutrients{}, err
	}

	s.afterCommit(ctx, dish, totals)
	return totals, nil
}

// Recalculate rebuilds every ingredient contribution from the reference
// table and re-derives the dish totals. Used to repair drift without
// requiring an ingredient edit.
func (s *CascadeService) Recalculate(ctx context.Context, dishID int) (domain.Nutrients, error) {
	var dish *domain.Dish
	totals, err := s.runCascadeFull(dishID, func(tx CascadeTx, locked *domain.Dish) (domain.Nutrients, error) {
		dish = locked
		ingredients, err := tx.ListIngredients(dishID)
		if err != nil {
			return domain.Nutrients{}, err
		}
		ingredients, err = s.recomputeAll(tx, ingredients)
		if err != nil {
			return domain.Nutrients{}, err
		}
		return SumContributions(ingredients), nil
	})
	if err != nil {
		return domain.Nutrients{}, err
	}

	s.afterCommit(ctx, dish, totals)
	return totals, nil
}

// CloneTemplate materializes a new dish under the visit from a template.
// The template's cached totals seed the new row so a reader between the
// insert and the recompute never sees zeros, but the seed is always
// overwritten by a from-scratch recomputation before commit.
func (s *CascadeService) CloneTemplate(ctx context.Context, templateID, visitID int) (*domain.Dish, error) {
	var dish *domain.Dish

	for attempt := 1; attempt <= maxCascadeAttempts; attempt++ {
		tx, err := s.repo.Begin()
		if err != nil {
			return nil, fmt.Errorf("begin clone: %w", err)
		}

		dish, err = s.cloneInTx(tx, templateID, visitID)
		if err != nil {
			tx.Rollback()
			if errors.Is(err, domain.ErrConflictRetry) && attempt < maxCascadeAttempts {
				continue
			}
			return nil, err
		}

		if err := tx.Commit(); err != nil {
			if isRetryAttempt(err, attempt) {
				continue
			}
			return nil, fmt.Errorf("commit clone: %w", err)
		}
		break
	}

	s.afterCommit(ctx, dish, dish.Totals)
	return dish, nil
}

func (s *CascadeService) cloneInTx(tx CascadeTx, templateID, visitID int) (*domain.Dish, error) {
	template, err := tx.LockDish(templateID)
	if err != nil {
		return nil, err
	}
	if !template.IsTemplate() {
		return nil, fmt.Errorf("%w: dish %d is not a template", domain.ErrNotFound, templateID)
	}
	visit, err := tx.GetVisit(visitID)
	if err != nil {
		return nil, err
	}

	dish := &domain.Dish{
		VisitID: &visit.ID,
		Name:    template.Name,
		Kind:    template.Kind,
		Active:  true,
		Totals:  template.Totals,
	}
	if err := tx.InsertDish(dish); err != nil {
		return nil, err
	}

	source, err := tx.ListIngredients(templateID)
	if err != nil {
		return nil, err
	}
	copied := make([]domain.Ingredient, 0, len(source))
	for _, ing := range source {
		clone := domain.Ingredient{
			DishID:   dish.ID,
			FoodID:   ing.FoodID,
			FoodName: ing.FoodName,
			Quantity: ing.Quantity,
			Unit:     ing.Unit,
			Position: ing.Position,
		}
		if err := tx.InsertIngredient(&clone); err != nil {
			return nil, err
		}
		copied = append(copied, clone)
	}

	copied, err = s.recomputeAll(tx, copied)
	if err != nil {
		return nil, err
	}
	dish.Totals = SumContributions(copied)
	if err := tx.SaveTotals(dish.ID, dish.Totals); err != nil {
		return nil, err
	}

	dish.Ingredients = copied
	return dish, nil
}

// runCascade executes mutate under the owner lock, then recomputes the
// owner totals from the complete post-mutation ingredient list. Either
// everything persists or nothing does.
func (s *CascadeService) runCascade(dishID int, mutate func(tx CascadeTx, dish *domain.Dish) error) (domain.Nutrients, error) {
	return s.runCascadeFull(dishID, func(tx CascadeTx, dish *domain.Dish) (domain.Nutrients, error) {
		if err := mutate(tx, dish); err != nil {
			return domain.Nutrients{}, err
		}
		ingredients, err := tx.ListIngredients(dishID)
		if err != nil {
			return domain.Nutrients{}, err
		}
		return SumContributions(ingredients), nil
	})
}

func (s *CascadeService) runCascadeFull(dishID int, body func(tx CascadeTx, dish *domain.Dish) (domain.Nutrients, error)) (domain.Nutrients, error) {
	var totals domain.Nutrients

	for attempt := 1; attempt <= maxCascadeAttempts; attempt++ {
		tx, err := s.repo.Begin()
		if err != nil {
			return domain.Nutrients{}, fmt.Errorf("begin cascade: %w", err)
		}

		dish, err := tx.LockDish(dishID)
		if err != nil {
			tx.Rollback()
			if errors.Is(err, domain.ErrConflictRetry) && attempt < maxCascadeAttempts {
				continue
			}
			return domain.Nutrients{}, err
		}

		totals, err = body(tx, dish)
		if err != nil {
			tx.Rollback()
			if errors.Is(err, domain.ErrConflictRetry) && attempt < maxCascadeAttempts {
				continue
			}
			return domain.Nutrients{}, err
		}

		if err := tx.SaveTotals(dishID, totals); err != nil {
			tx.Rollback()
			if errors.Is(err, domain.ErrConflictRetry) && attempt < maxCascadeAttempts {
				continue
			}
			return domain.Nutrients{}, err
		}

		if err := tx.Commit(); err != nil {
			if isRetryAttempt(err, attempt) {
				continue
			}
			return domain.Nutrients{}, fmt.Errorf("commit cascade: %w", err)
		}
		return totals, nil
	}

	return domain.Nutrients{}, domain.ErrConflictRetry
}

func isRetryAttempt(err error, attempt int) bool {
	return errors.Is(err, domain.ErrConflictRetry) && attempt < maxCascadeAttempts
}

// recomputeAll refreshes every ingredient contribution from the current
// reference values and persists the refreshed rows.
func (s *CascadeService) recomputeAll(tx CascadeTx, ingredients []domain.Ingredient) ([]domain.Ingredient, error) {
	foods := make(map[int]*domain.FoodItem)
	for i := range ingredients {
		food, ok := foods[ingredients[i].FoodID]
		if !ok {
			var err error
			food, err = s.foods.GetFood(ingredients[i].FoodID)
			if err != nil {
				return nil, err
			}
			foods[ingredients[i].FoodID] = food
		}

		contribution, err := ComputeContribution(ingredients[i].Quantity, food)
		if err != nil {
			return nil, err
		}
		ingredients[i].Contribution = contribution
		if err := tx.UpdateIngredient(&ingredients[i]); err != nil {
			return nil, err
		}
	}
	return ingredients, nil
}

// afterCommit signals downstream readers. Both calls are fire-and-forget:
// a stale dashboard is tolerable and bounded by the cache TTL.
func (s *CascadeService) afterCommit(ctx context.Context, dish *domain.Dish, totals domain.Nutrients) {
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, DashboardStatsKey); err != nil {
			log.Printf("[audit-svc] cache invalidation failed: %v", err)
		}
	}

	if s.publisher != nil && dish != nil {
		event := domain.TotalsEvent{
			Type:       EventTotalsRecalculate,
			DishID:     dish.ID,
			EnergyKcal: totals.EnergyKcal,
			Timestamp:  time.Now(),
		}
		if dish.VisitID != nil {
			event.VisitID = *dish.VisitID
		}
		if err := s.publisher.PublishTotals(ctx, event); err != nil {
			log.Printf("[audit-svc] totals event publish failed: %v", err)
		}
	}
}

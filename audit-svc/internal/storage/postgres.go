package storage

import (
	"database/sql"
	"errors"
	"fmt"

	"nutriaudit/audit-svc/internal/domain"
	"nutriaudit/audit-svc/internal/service"

	"github.com/lib/pq"
)

type PostgresRepository struct {
	DB *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{DB: db}
}

// mapError folds driver errors into the domain taxonomy: missing rows
// become ErrNotFound, serialization failures and deadlocks become the
// retryable conflict sentinel the cascade retries on.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "40001", "40P01":
			return fmt.Errorf("%w: %v", domain.ErrConflictRetry, err)
		}
	}
	return err
}

func (r *PostgresRepository) CreateInstitution(inst *domain.Institution) error {
	err := r.DB.QueryRow(`
		INSERT INTO institutions (code, name, kind, address, district, active)
		VALUES ($1, $2, $3, $4, $5, TRUE)
		RETURNING id, active, created_at`,
		inst.Code, inst.Name, inst.Kind, inst.Address, inst.District).
		Scan(&inst.ID, &inst.Active, &inst.CreatedAt)
	return mapError(err)
}

func (r *PostgresRepository) ListInstitutions() ([]domain.Institution, error) {
	rows, err := r.DB.Query(`
		SELECT id, code, name, kind, COALESCE(address, ''), COALESCE(district, ''), active, created_at
		FROM institutions
		ORDER BY name`)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var institutions []domain.Institution
	for rows.Next() {
		var inst domain.Institution
		if err := rows.Scan(&inst.ID, &inst.Code, &inst.Name, &inst.Kind, &inst.Address, &inst.District, &inst.Active, &inst.CreatedAt); err != nil {
			continue
		}
		institutions = append(institutions, inst)
	}
	return institutions, nil
}

func (r *PostgresRepository) GetInstitution(id int) (*domain.Institution, error) {
	var inst domain.Institution
	err := r.DB.QueryRow(`
		SELECT id, code, name, kind, COALESCE(address, ''), COALESCE(district, ''), active, created_at
		FROM institutions
		WHERE id = $1`, id).
		Scan(&inst.ID, &inst.Code, &inst.Name, &inst.Kind, &inst.Address, &inst.District, &inst.Active, &inst.CreatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	return &inst, nil
}

func (r *PostgresRepository) CreateVisit(visit *domain.Visit) error {
	var answers interface{}
	if len(visit.FormAnswers) > 0 {
		answers = []byte(visit.FormAnswers)
	}
	err := r.DB.QueryRow(`
		INSERT INTO visits (institution_id, date, meal_type, notes, form_completed, form_answers)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`,
		visit.InstitutionID, visit.Date, visit.MealType, visit.Notes, visit.FormCompleted, answers).
		Scan(&visit.ID, &visit.CreatedAt)
	return mapError(err)
}

func (r *PostgresRepository) ListVisits(institutionID int) ([]domain.Visit, error) {
	rows, err := r.DB.Query(`
		SELECT id, institution_id, date, meal_type, COALESCE(notes, ''), form_completed, COALESCE(form_answers, 'null'), created_at
		FROM visits
		WHERE institution_id = $1
		ORDER BY date DESC, id DESC`, institutionID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var visits []domain.Visit
	for rows.Next() {
		var visit domain.Visit
		if err := rows.Scan(&visit.ID, &visit.InstitutionID, &visit.Date, &visit.MealType, &visit.Notes, &visit.FormCompleted, &visit.FormAnswers, &visit.CreatedAt); err != nil {
			continue
		}
		visits = append(visits, visit)
	}
	return visits, nil
}

func (r *PostgresRepository) GetVisit(id int) (*domain.Visit, error) {
	return scanVisit(r.DB.QueryRow(`
		SELECT id, institution_id, date, meal_type, COALESCE(notes, ''), form_completed, COALESCE(form_answers, 'null'), created_at
		FROM visits
		WHERE id = $1`, id))
}

func (r *PostgresRepository) CreateDish(dish *domain.Dish) error {
	err := r.DB.QueryRow(`
		INSERT INTO dishes (visit_id, name, kind, servings, notes, active)
		VALUES ($1, $2, $3, $4, $5, TRUE)
		RETURNING id, active, created_at`,
		dish.VisitID, dish.Name, dish.Kind, dish.Servings, dish.Notes).
		Scan(&dish.ID, &dish.Active, &dish.CreatedAt)
	return mapError(err)
}

func (r *PostgresRepository) GetDish(id int) (*domain.Dish, error) {
	dish, err := scanDish(r.DB.QueryRow(dishSelect+" WHERE id = $1", id))
	if err != nil {
		return nil, err
	}
	ingredients, err := listIngredients(r.DB, dish.ID)
	if err != nil {
		return nil, err
	}
	dish.Ingredients = ingredients
	return dish, nil
}

func (r *PostgresRepository) ListDishes(visitID int) ([]domain.Dish, error) {
	rows, err := r.DB.Query(dishSelect+" WHERE visit_id = $1 ORDER BY id", visitID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()
	return collectDishes(rows)
}

func (r *PostgresRepository) ListTemplates() ([]domain.Dish, error) {
	rows, err := r.DB.Query(dishSelect + " WHERE visit_id IS NULL AND active ORDER BY name")
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()
	return collectDishes(rows)
}

const foodSelect = `
	SELECT id, code, name, COALESCE(category, ''),
	       energy_kcal, protein_g, fat_g, carbs_total_g, carbs_available_g, fiber_g, sodium_mg
	FROM foods`

func (r *PostgresRepository) GetFood(id int) (*domain.FoodItem, error) {
	var food domain.FoodItem
	err := r.DB.QueryRow(foodSelect+" WHERE id = $1", id).
		Scan(&food.ID, &food.Code, &food.Name, &food.Category,
			&food.EnergyKcal, &food.ProteinG, &food.FatG,
			&food.CarbsTotalG, &food.CarbsAvailG, &food.FiberG, &food.SodiumMg)
	if err != nil {
		return nil, mapError(err)
	}
	return &food, nil
}

func (r *PostgresRepository) SearchFoods(query string) ([]domain.FoodItem, error) {
	rows, err := r.DB.Query(foodSelect+` WHERE name ILIKE '%' || $1 || '%' OR code ILIKE '%' || $1 || '%' ORDER BY name LIMIT 50`, query)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var foods []domain.FoodItem
	for rows.Next() {
		var food domain.FoodItem
		if err := rows.Scan(&food.ID, &food.Code, &food.Name, &food.Category,
			&food.EnergyKcal, &food.ProteinG, &food.FatG,
			&food.CarbsTotalG, &food.CarbsAvailG, &food.FiberG, &food.SodiumMg); err != nil {
			continue
		}
		foods = append(foods, food)
	}
	return foods, nil
}

func (r *PostgresRepository) Begin() (service.CascadeTx, error) {
	tx, err := r.DB.Begin()
	if err != nil {
		return nil, mapError(err)
	}
	return &cascadeTx{tx: tx}, nil
}

type cascadeTx struct {
	tx *sql.Tx
}

const dishSelect = `
	SELECT id, visit_id, name, COALESCE(kind, ''), COALESCE(servings, 0), COALESCE(notes, ''), active,
	       energy_kcal_total, protein_g_total, fat_g_total, carbs_g_total, fiber_g_total, sodium_mg_total,
	       created_at
	FROM dishes`

// LockDish takes a row lock on the owner for the rest of the
// transaction so concurrent cascades on the same dish serialize.
func (t *cascadeTx) LockDish(dishID int) (*domain.Dish, error) {
	return scanDish(t.tx.QueryRow(dishSelect+" WHERE id = $1 FOR UPDATE", dishID))
}

func (t *cascadeTx) GetIngredient(dishID, ingredientID int) (*domain.Ingredient, error) {
	var ing domain.Ingredient
	err := t.tx.QueryRow(`
		SELECT i.id, i.dish_id, i.food_id, f.name, i.quantity, i.unit, COALESCE(i.position, 0),
		       i.energy_kcal, i.protein_g, i.fat_g, i.carbs_g, i.fiber_g, i.sodium_mg
		FROM ingredients i
		JOIN foods f ON f.id = i.food_id
		WHERE i.id = $1 AND i.dish_id = $2`, ingredientID, dishID).
		Scan(&ing.ID, &ing.DishID, &ing.FoodID, &ing.FoodName, &ing.Quantity, &ing.Unit, &ing.Position,
			&ing.Contribution.EnergyKcal, &ing.Contribution.ProteinG, &ing.Contribution.FatG,
			&ing.Contribution.CarbsG, &ing.Contribution.FiberG, &ing.Contribution.SodiumMg)
	if err != nil {
		return nil, mapError(err)
	}
	return &ing, nil
}

func (t *cascadeTx) InsertIngredient(ing *domain.Ingredient) error {
	err := t.tx.QueryRow(`
		INSERT INTO ingredients (dish_id, food_id, quantity, unit, position,
		                         energy_kcal, protein_g, fat_g, carbs_g, fiber_g, sodium_mg)
		VALUES ($1, $2, $3, $4,
		        CASE WHEN $5 > 0 THEN $5
		             ELSE COALESCE((SELECT MAX(position) FROM ingredients WHERE dish_id = $1), 0) + 1 END,
		        $6, $7, $8, $9, $10, $11)
		RETURNING id, position`,
		ing.DishID, ing.FoodID, ing.Quantity, ing.Unit, ing.Position,
		ing.Contribution.EnergyKcal, ing.Contribution.ProteinG, ing.Contribution.FatG,
		ing.Contribution.CarbsG, ing.Contribution.FiberG, ing.Contribution.SodiumMg).
		Scan(&ing.ID, &ing.Position)
	return mapError(err)
}

func (t *cascadeTx) UpdateIngredient(ing *domain.Ingredient) error {
	_, err := t.tx.Exec(`
		UPDATE ingredients
		SET food_id = $1, quantity = $2, unit = $3, position = $4,
		    energy_kcal = $5, protein_g = $6, fat_g = $7, carbs_g = $8, fiber_g = $9, sodium_mg = $10
		WHERE id = $11 AND dish_id = $12`,
		ing.FoodID, ing.Quantity, ing.Unit, ing.Position,
		ing.Contribution.EnergyKcal, ing.Contribution.ProteinG, ing.Contribution.FatG,
		ing.Contribution.CarbsG, ing.Contribution.FiberG, ing.Contribution.SodiumMg,
		ing.ID, ing.DishID)
	return mapError(err)
}

func (t *cascadeTx) DeleteIngredient(dishID, ingredientID int) (int64, error) {
	result, err := t.tx.Exec("DELETE FROM ingredients WHERE id = $1 AND dish_id = $2", ingredientID, dishID)
	if err != nil {
		return 0, mapError(err)
	}
	return result.RowsAffected()
}

func (t *cascadeTx) ListIngredients(dishID int) ([]domain.Ingredient, error) {
	return listIngredients(t.tx, dishID)
}

func (t *cascadeTx) SaveTotals(dishID int, totals domain.Nutrients) error {
	_, err := t.tx.Exec(`
		UPDATE dishes
		SET energy_kcal_total = $1, protein_g_total = $2, fat_g_total = $3,
		    carbs_g_total = $4, fiber_g_total = $5, sodium_mg_total = $6
		WHERE id = $7`,
		totals.EnergyKcal, totals.ProteinG, totals.FatG,
		totals.CarbsG, totals.FiberG, totals.SodiumMg, dishID)
	return mapError(err)
}

func (t *cascadeTx) GetVisit(visitID int) (*domain.Visit, error) {
	return scanVisit(t.tx.QueryRow(`
		SELECT id, institution_id, date, meal_type, COALESCE(notes, ''), form_completed, COALESCE(form_answers, 'null'), created_at
		FROM visits
		WHERE id = $1`, visitID))
}

func (t *cascadeTx) InsertDish(dish *domain.Dish) error {
	err := t.tx.QueryRow(`
		INSERT INTO dishes (visit_id, name, kind, servings, notes, active,
		                    energy_kcal_total, protein_g_total, fat_g_total, carbs_g_total, fiber_g_total, sodium_mg_total)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, created_at`,
		dish.VisitID, dish.Name, dish.Kind, dish.Servings, dish.Notes, dish.Active,
		dish.Totals.EnergyKcal, dish.Totals.ProteinG, dish.Totals.FatG,
		dish.Totals.CarbsG, dish.Totals.FiberG, dish.Totals.SodiumMg).
		Scan(&dish.ID, &dish.CreatedAt)
	return mapError(err)
}

func (t *cascadeTx) Commit() error {
	return mapError(t.tx.Commit())
}

func (t *cascadeTx) Rollback() error {
	return t.tx.Rollback()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

type querier interface {
	Query(query string, args ...interface{}) (*sql.Rows, error)
}

func scanDish(row rowScanner) (*domain.Dish, error) {
	var dish domain.Dish
	var visitID sql.NullInt64
	err := row.Scan(&dish.ID, &visitID, &dish.Name, &dish.Kind, &dish.Servings, &dish.Notes, &dish.Active,
		&dish.Totals.EnergyKcal, &dish.Totals.ProteinG, &dish.Totals.FatG,
		&dish.Totals.CarbsG, &dish.Totals.FiberG, &dish.Totals.SodiumMg,
		&dish.CreatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	if visitID.Valid {
		id := int(visitID.Int64)
		dish.VisitID = &id
	}
	return &dish, nil
}

func scanVisit(row rowScanner) (*domain.Visit, error) {
	var visit domain.Visit
	err := row.Scan(&visit.ID, &visit.InstitutionID, &visit.Date, &visit.MealType,
		&visit.Notes, &visit.FormCompleted, &visit.FormAnswers, &visit.CreatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	return &visit, nil
}

func collectDishes(rows *sql.Rows) ([]domain.Dish, error) {
	var dishes []domain.Dish
	for rows.Next() {
		dish, err := scanDish(rows)
		if err != nil {
			continue
		}
		dishes = append(dishes, *dish)
	}
	return dishes, nil
}

func listIngredients(q querier, dishID int) ([]domain.Ingredient, error) {
	rows, err := q.Query(`
		SELECT i.id, i.dish_id, i.food_id, f.name, i.quantity, i.unit, COALESCE(i.position, 0),
		       i.energy_kcal, i.protein_g, i.fat_g, i.carbs_g, i.fiber_g, i.sodium_mg
		FROM ingredients i
		JOIN foods f ON f.id = i.food_id
		WHERE i.dish_id = $1
		ORDER BY i.position, i.id`, dishID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var ingredients []domain.Ingredient
	for rows.Next() {
		var ing domain.Ingredient
		if err := rows.Scan(&ing.ID, &ing.DishID, &ing.FoodID, &ing.FoodName, &ing.Quantity, &ing.Unit, &ing.Position,
			&ing.Contribution.EnergyKcal, &ing.Contribution.ProteinG, &ing.Contribution.FatG,
			&ing.Contribution.CarbsG, &ing.Contribution.FiberG, &ing.Contribution.SodiumMg); err != nil {
			continue
		}
		ingredients = append(ingredients, ing)
	}
	return ingredients, nil
}

func (r *PostgresRepository) EnsureSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS institutions (
			id SERIAL PRIMARY KEY,
			code TEXT NOT NULL UNIQUE,
			name TEXT NOT NULL,
			kind TEXT NOT NULL DEFAULT 'otro',
			address TEXT,
			district TEXT,
			active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS visits (
			id SERIAL PRIMARY KEY,
			institution_id INTEGER NOT NULL REFERENCES institutions(id),
			date TEXT NOT NULL,
			meal_type TEXT NOT NULL DEFAULT 'almuerzo',
			notes TEXT,
			form_completed BOOLEAN NOT NULL DEFAULT FALSE,
			form_answers JSONB,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS foods (
			id SERIAL PRIMARY KEY,
			code TEXT NOT NULL UNIQUE,
			name TEXT NOT NULL,
			category TEXT,
			energy_kcal NUMERIC(10,2),
			protein_g NUMERIC(10,3),
			fat_g NUMERIC(10,3),
			carbs_total_g NUMERIC(10,3),
			carbs_available_g NUMERIC(10,3),
			fiber_g NUMERIC(10,3),
			sodium_mg NUMERIC(10,3)
		)`,
		`CREATE TABLE IF NOT EXISTS dishes (
			id SERIAL PRIMARY KEY,
			visit_id INTEGER REFERENCES visits(id) ON DELETE CASCADE,
			name TEXT NOT NULL,
			kind TEXT,
			servings INTEGER,
			notes TEXT,
			active BOOLEAN NOT NULL DEFAULT TRUE,
			energy_kcal_total NUMERIC(12,2) NOT NULL DEFAULT 0,
			protein_g_total NUMERIC(12,3) NOT NULL DEFAULT 0,
			fat_g_total NUMERIC(12,3) NOT NULL DEFAULT 0,
			carbs_g_total NUMERIC(12,3) NOT NULL DEFAULT 0,
			fiber_g_total NUMERIC(12,3) NOT NULL DEFAULT 0,
			sodium_mg_total NUMERIC(12,3) NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS ingredients (
			id SERIAL PRIMARY KEY,
			dish_id INTEGER NOT NULL REFERENCES dishes(id) ON DELETE CASCADE,
			food_id INTEGER NOT NULL REFERENCES foods(id),
			quantity NUMERIC(10,3) NOT NULL,
			unit TEXT NOT NULL DEFAULT 'g',
			position INTEGER,
			energy_kcal NUMERIC(12,3) NOT NULL DEFAULT 0,
			protein_g NUMERIC(12,5) NOT NULL DEFAULT 0,
			fat_g NUMERIC(12,5) NOT NULL DEFAULT 0,
			carbs_g NUMERIC(12,5) NOT NULL DEFAULT 0,
			fiber_g NUMERIC(12,5) NOT NULL DEFAULT 0,
			sodium_mg NUMERIC(12,5) NOT NULL DEFAULT 0
		)`,
		`CREATE INDEX IF NOT EXISTS idx_visits_institution ON visits (institution_id, date DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_dishes_visit ON dishes (visit_id)`,
		`CREATE INDEX IF NOT EXISTS idx_ingredients_dish ON ingredients (dish_id, position)`,
	}
	for _, stmt := range statements {
		if _, err := r.DB.Exec(stmt); err != nil {
			return fmt.Errorf("ensure schema `%s`: %w", stmt[:40], err)
		}
	}
	return nil
}

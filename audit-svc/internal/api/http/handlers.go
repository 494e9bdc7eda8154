package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"nutriaudit/audit-svc/internal/domain"
	"nutriaudit/audit-svc/internal/service"

	"github.com/gorilla/mux"
)

type Handler struct {
	Institutions service.InstitutionServiceInterface
	Visits       service.VisitServiceInterface
	Dishes       service.DishServiceInterface
	Foods        service.FoodServiceInterface
	Cascade      service.CascadeServiceInterface
	QR           service.QRGenerator
}

func NewHandler(instSvc service.InstitutionServiceInterface, visitSvc service.VisitServiceInterface,
	dishSvc service.DishServiceInterface, foodSvc service.FoodServiceInterface,
	cascadeSvc service.CascadeServiceInterface, qr service.QRGenerator) *Handler {
	return &Handler{
		Institutions: instSvc,
		Visits:       visitSvc,
		Dishes:       dishSvc,
		Foods:        foodSvc,
		Cascade:      cascadeSvc,
		QR:           qr,
	}
}

func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/health", h.healthCheck).Methods("GET")

	r.HandleFunc("/api/institutions", h.createInstitution).Methods("POST")
	r.HandleFunc("/api/institutions", h.getInstitutions).Methods("GET")
	r.HandleFunc("/api/institutions/{id}", h.getInstitution).Methods("GET")
	r.HandleFunc("/api/institutions/{id}/visits", h.createVisit).Methods("POST")
	r.HandleFunc("/api/institutions/{id}/visits", h.getInstitutionVisits).Methods("GET")

	r.HandleFunc("/api/visits/{id}", h.getVisit).Methods("GET")
	r.HandleFunc("/api/visits/{id}/qrcode", h.getVisitQRCode).Methods("GET")
	r.HandleFunc("/api/visits/{visitId}/dishes", h.createDish).Methods("POST")
	r.HandleFunc("/api/visits/{visitId}/dishes", h.getVisitDishes).Methods("GET")

	r.HandleFunc("/api/dishes/{dishId}", h.getDish).Methods("GET")
	r.HandleFunc("/api/dishes/{dishId}/ingredients", h.addIngredient).Methods("POST")
	r.HandleFunc("/api/dishes/{dishId}/ingredients/{ingredientId}", h.updateIngredient).Methods("PUT")
	r.HandleFunc("/api/dishes/{dishId}/ingredients/{ingredientId}", h.removeIngredient).Methods("DELETE")
	r.HandleFunc("/api/dishes/{dishId}/recalculate", h.recalculateDish).Methods("POST")

	r.HandleFunc("/api/templates", h.createTemplate).Methods("POST")
	r.HandleFunc("/api/templates", h.getTemplates).Methods("GET")
	r.HandleFunc("/api/templates/{id}/clone", h.cloneTemplate).Methods("POST")

	r.HandleFunc("/api/foods", h.getFoods).Methods("GET")
	r.HandleFunc("/api/foods/{id}", h.getFood).Methods("GET")
}

func (h *Handler) healthCheck(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":    "healthy",
		"service":   "audit-svc",
		"timestamp": time.Now().Format(time.RFC3339),
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// writeError maps the domain error taxonomy onto HTTP status codes.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrInvalidQuantity):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, domain.ErrConflictRetry):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func (h *Handler) createInstitution(w http.ResponseWriter, r *http.Request) {
	var inst domain.Institution
	if err := json.NewDecoder(r.Body).Decode(&inst); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.Institutions.Create(&inst); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, inst)
}

func (h *Handler) getInstitutions(w http.ResponseWriter, r *http.Request) {
	institutions, err := h.Institutions.List()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, institutions)
}

func (h *Handler) getInstitution(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])
	inst, err := h.Institutions.Get(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, inst)
}

func (h *Handler) createVisit(w http.ResponseWriter, r *http.Request) {
	institutionID, _ := strconv.Atoi(mux.Vars(r)["id"])
	var visit domain.Visit
	if err := json.NewDecoder(r.Body).Decode(&visit); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	visit.InstitutionID = institutionID
	if err := h.Visits.Create(&visit); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, visit)
}

func (h *Handler) getInstitutionVisits(w http.ResponseWriter, r *http.Request) {
	institutionID, _ := strconv.Atoi(mux.Vars(r)["id"])
	visits, err := h.Visits.List(institutionID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, visits)
}

func (h *Handler) getVisit(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])
	visit, err := h.Visits.Get(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, visit)
}

func (h *Handler) getVisitQRCode(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])
	if _, err := h.Visits.Get(id); err != nil {
		writeError(w, err)
		return
	}
	qr, err := h.QR.Generate(id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.WriteHeader(http.StatusOK)
	w.Write(qr)
}

func (h *Handler) createDish(w http.ResponseWriter, r *http.Request) {
	visitID, _ := strconv.Atoi(mux.Vars(r)["visitId"])
	var dish domain.Dish
	if err := json.NewDecoder(r.Body).Decode(&dish); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	dish.VisitID = &visitID
	if err := h.Dishes.Create(&dish); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, dish)
}

func (h *Handler) getVisitDishes(w http.ResponseWriter, r *http.Request) {
	visitID, _ := strconv.Atoi(mux.Vars(r)["visitId"])
	dishes, err := h.Dishes.List(visitID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dishes)
}

func (h *Handler) getDish(w http.ResponseWriter, r *http.Request) {
	dishID, _ := strconv.Atoi(mux.Vars(r)["dishId"])
	dish, err := h.Dishes.Get(dishID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dish)
}

func (h *Handler) addIngredient(w http.ResponseWriter, r *http.Request) {
	dishID, _ := strconv.Atoi(mux.Vars(r)["dishId"])
	var ing domain.Ingredient
	if err := json.NewDecoder(r.Body).Decode(&ing); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	totals, err := h.Cascade.AddIngredient(r.Context(), dishID, &ing)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"ingredient": ing,
		"totals":     totals,
	})
}

func (h *Handler) updateIngredient(w http.ResponseWriter, r *http.Request) {
	dishID, _ := strconv.Atoi(mux.Vars(r)["dishId"])
	ingredientID, _ := strconv.Atoi(mux.Vars(r)["ingredientId"])
	var ing domain.Ingredient
	if err := json.NewDecoder(r.Body).Decode(&ing); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	totals, err := h.Cascade.UpdateIngredient(r.Context(), dishID, ingredientID, &ing)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"ingredient": ing,
		"totals":     totals,
	})
}

func (h *Handler) removeIngredient(w http.ResponseWriter, r *http.Request) {
	dishID, _ := strconv.Atoi(mux.Vars(r)["dishId"])
	ingredientID, _ := strconv.Atoi(mux.Vars(r)["ingredientId"])
	totals, err := h.Cascade.RemoveIngredient(r.Context(), dishID, ingredientID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"totals": totals})
}

func (h *Handler) recalculateDish(w http.ResponseWriter, r *http.Request) {
	dishID, _ := strconv.Atoi(mux.Vars(r)["dishId"])
	totals, err := h.Cascade.Recalculate(r.Context(), dishID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"totals": totals})
}

func (h *Handler) createTemplate(w http.ResponseWriter, r *http.Request) {
	var dish domain.Dish
	if err := json.NewDecoder(r.Body).Decode(&dish); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	dish.VisitID = nil
	if err := h.Dishes.Create(&dish); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, dish)
}

func (h *Handler) getTemplates(w http.ResponseWriter, r *http.Request) {
	templates, err := h.Dishes.ListTemplates()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, templates)
}

func (h *Handler) cloneTemplate(w http.ResponseWriter, r *http.Request) {
	templateID, _ := strconv.Atoi(mux.Vars(r)["id"])
	var req struct {
		VisitID int `json:"visit_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	dish, err := h.Cascade.CloneTemplate(r.Context(), templateID, req.VisitID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, dish)
}

func (h *Handler) getFoods(w http.ResponseWriter, r *http.Request) {
	foods, err := h.Foods.Search(r.URL.Query().Get("q"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, foods)
}

func (h *Handler) getFood(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])
	food, err := h.Foods.Get(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, food)
}

package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"nutriaudit/sync-svc/internal/domain"
	"nutriaudit/sync-svc/internal/service"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type Handler struct {
	Reconciler service.ReconcilerInterface
	Audits     service.AuditServiceInterface
}

func NewHandler(reconciler service.ReconcilerInterface, audits service.AuditServiceInterface) *Handler {
	return &Handler{Reconciler: reconciler, Audits: audits}
}

func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/health", h.healthCheck).Methods("GET")

	r.HandleFunc("/api/sync/push", h.push).Methods("POST")
	r.HandleFunc("/api/sync/pull", h.pull).Methods("GET")

	r.HandleFunc("/api/audits", h.createAudit).Methods("POST")
	r.HandleFunc("/api/audits", h.listAudits).Methods("GET")
	r.HandleFunc("/api/audits/{id}", h.getAudit).Methods("GET")
}

func (h *Handler) healthCheck(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":    "healthy",
		"service":   "sync-svc",
		"timestamp": time.Now().Format(time.RFC3339),
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, domain.ErrValidation):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func (h *Handler) push(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Audits []domain.AuditPayload `json:"audits"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	result := h.Reconciler.Push(r.Context(), req.Audits)
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) pull(w http.ResponseWriter, r *http.Request) {
	var since *time.Time
	if raw := r.URL.Query().Get("last_sync_timestamp"); raw != "" {
		ts, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			http.Error(w, "invalid last_sync_timestamp, expected RFC3339", http.StatusBadRequest)
			return
		}
		since = &ts
	}
	audits, err := h.Reconciler.Pull(r.Context(), since)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"audits": audits})
}

func (h *Handler) createAudit(w http.ResponseWriter, r *http.Request) {
	var audit domain.Audit
	if err := json.NewDecoder(r.Body).Decode(&audit); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.Audits.Create(r.Context(), &audit); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, audit)
}

func (h *Handler) listAudits(w http.ResponseWriter, r *http.Request) {
	audits, err := h.Audits.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, audits)
}

func (h *Handler) getAudit(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid audit id", http.StatusBadRequest)
		return
	}
	audit, err := h.Audits.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, audit)
}

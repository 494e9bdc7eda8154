package main

import (
	"log"
	"os"

	"nutriaudit/config"
	"nutriaudit/sync-svc/internal/api/http"
	"nutriaudit/sync-svc/internal/service"
	"nutriaudit/sync-svc/internal/storage"
)

func main() {
	db := config.MustInitPostgres()
	defer db.Close()

	repo := storage.NewPostgresRepository(db)
	if err := repo.EnsureSchema(); err != nil {
		log.Fatal("Failed to ensure schema:", err)
	}

	reconciler := service.NewReconciler(repo)
	audits := service.NewAuditService(repo)

	handler := httpapi.NewHandler(reconciler, audits)
	httpapi.StartServer(":"+getEnv("PORT", "8082"), httpapi.NewRouter(handler))
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

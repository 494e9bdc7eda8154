package main

import (
	"log"
	"os"

	"nutriaudit/audit-svc/internal/api/http"
	"nutriaudit/audit-svc/internal/service"
	"nutriaudit/audit-svc/internal/storage"
	"nutriaudit/config"
)

func main() {
	db := config.MustInitPostgres()
	defer db.Close()

	repo := storage.NewPostgresRepository(db)
	if err := repo.EnsureSchema(); err != nil {
		log.Fatal("Failed to ensure schema:", err)
	}

	rdb := config.MustInitRedis()
	defer rdb.Close()
	cache := storage.NewStatsCache(rdb)

	writer := config.NewKafkaWriter("nutrition-events")
	defer writer.Close()
	publisher := storage.NewKafkaPublisher(writer)

	instSvc := service.NewInstitutionService(repo)
	visitSvc := service.NewVisitService(repo, repo)
	dishSvc := service.NewDishService(repo)
	foodSvc := service.NewFoodService(repo)
	cascadeSvc := service.NewCascadeService(repo, repo, cache, publisher)
	qr := service.DefaultQRGenerator{BaseURL: getEnv("PUBLIC_BASE_URL", "http://localhost:8080")}

	handler := httpapi.NewHandler(instSvc, visitSvc, dishSvc, foodSvc, cascadeSvc, qr)
	httpapi.StartServer(":"+getEnv("PORT", "8081"), httpapi.NewRouter(handler))
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

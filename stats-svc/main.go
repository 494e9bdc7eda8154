package main

import (
	"context"
	"os"

	"nutriaudit/config"
	"nutriaudit/stats-svc/internal/service"
	"nutriaudit/stats-svc/internal/storage"
)

func main() {
	rdb := config.MustInitRedis()
	defer rdb.Close()

	reader := config.NewKafkaReader("nutrition-events", getEnv("KAFKA_GROUP_ID", "stats-svc"))
	defer reader.Close()

	store := storage.NewStore(rdb)
	consumer := service.NewConsumer(reader, store)
	consumer.Start(context.Background())
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

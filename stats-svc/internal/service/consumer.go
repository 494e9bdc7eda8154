package service

import (
	"context"
	"encoding/json"
	"log"

	"nutriaudit/stats-svc/internal/domain"

	"github.com/segmentio/kafka-go"
)

type Consumer struct {
	Reader *kafka.Reader
	Store  StoreInterface
}

func NewConsumer(reader *kafka.Reader, store StoreInterface) *Consumer {
	return &Consumer{
		Reader: reader,
		Store:  store,
	}
}

func (c *Consumer) Start(ctx context.Context) {
	log.Println("Starting Stats Service consumer...")
	for {
		message, err := c.Reader.ReadMessage(ctx)
		if err != nil {
			log.Printf("Error reading message: %v", err)
			continue
		}

		var event domain.TotalsEvent
		if err := json.Unmarshal(message.Value, &event); err != nil {
			log.Printf("Error unmarshaling message: %v", err)
			continue
		}

		if event.Type == domain.TypeTotalsRecalculated {
			c.ProcessTotals(event)
		}
	}
}

func (c *Consumer) ProcessTotals(event domain.TotalsEvent) {
	if event.Type != domain.TypeTotalsRecalculated {
		return
	}
	log.Printf("Processing totals recompute: DishID=%d, VisitID=%d, EnergyKcal=%s",
		event.DishID, event.VisitID, event.EnergyKcal)

	if err := c.Store.RefreshDishTotals(event); err != nil {
		log.Printf("Error refreshing dish totals: %v", err)
		return
	}

	if err := c.Store.BumpDailyRecomputes(event); err != nil {
		log.Printf("Error updating daily recompute stats: %v", err)
		return
	}

	log.Printf("Successfully processed totals for dish %d", event.DishID)
}

package service

import (
	"context"

	"nutriaudit/stats-svc/internal/domain"
	"nutriaudit/stats-svc/internal/storage"
)

type StoreInterface interface {
	RefreshDishTotals(event domain.TotalsEvent) error
	BumpDailyRecomputes(event domain.TotalsEvent) error
}

type ConsumerInterface interface {
	Start(ctx context.Context)
	ProcessTotals(event domain.TotalsEvent)
}

var _ StoreInterface = (*storage.Store)(nil)
var _ ConsumerInterface = (*Consumer)(nil)

package tests

import (
	"errors"
	"testing"

	"nutriaudit/stats-svc/internal/domain"
	"nutriaudit/stats-svc/internal/mocks"
	"nutriaudit/stats-svc/internal/service"

	"github.com/shopspring/decimal"
)

func totalsEvent() domain.TotalsEvent {
	return domain.TotalsEvent{
		Type:       domain.TypeTotalsRecalculated,
		DishID:     1,
		VisitID:    7,
		EnergyKcal: decimal.RequireFromString("450"),
	}
}

func TestConsumer_ProcessTotals(t *testing.T) {
	tests := []struct {
		name           string
		setupMockStore func(*mocks.StoreInterface)
	}{
		{
			name: "success",
			setupMockStore: func(mockStore *mocks.StoreInterface) {
				mockStore.On("RefreshDishTotals", totalsEvent()).Return(nil)
				mockStore.On("BumpDailyRecomputes", totalsEvent()).Return(nil)
			},
		},
		{
			name: "RefreshDishTotals error stops processing",
			setupMockStore: func(mockStore *mocks.StoreInterface) {
				mockStore.On("RefreshDishTotals", totalsEvent()).Return(errors.New("redis connection failed"))
			},
		},
		{
			name: "BumpDailyRecomputes error",
			setupMockStore: func(mockStore *mocks.StoreInterface) {
				mockStore.On("RefreshDishTotals", totalsEvent()).Return(nil)
				mockStore.On("BumpDailyRecomputes", totalsEvent()).Return(errors.New("redis error"))
			},
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			mockStore := mocks.NewStoreInterface(t)
			testCase.setupMockStore(mockStore)

			consumer := &service.Consumer{
				Store: mockStore,
			}

			consumer.ProcessTotals(totalsEvent())
			mockStore.AssertExpectations(t)
		})
	}
}

func TestConsumer_IgnoresUnknownMessageType(t *testing.T) {
	mockStore := mocks.NewStoreInterface(t)
	consumer := &service.Consumer{
		Store: mockStore,
	}

	event := totalsEvent()
	event.Type = "unknown_type"

	consumer.ProcessTotals(event)
	mockStore.AssertNotCalled(t, "RefreshDishTotals")
	mockStore.AssertNotCalled(t, "BumpDailyRecomputes")
}

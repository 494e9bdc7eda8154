package mocks

import (
	"nutriaudit/stats-svc/internal/domain"

	"github.com/stretchr/testify/mock"
)

type testingT interface {
	mock.TestingT
	Cleanup(func())
}

// StoreInterface mocks service.StoreInterface.
type StoreInterface struct {
	mock.Mock
}

func NewStoreInterface(t testingT) *StoreInterface {
	m := &StoreInterface{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *StoreInterface) RefreshDishTotals(event domain.TotalsEvent) error {
	return m.Called(event).Error(0)
}

func (m *StoreInterface) BumpDailyRecomputes(event domain.TotalsEvent) error {
	return m.Called(event).Error(0)
}

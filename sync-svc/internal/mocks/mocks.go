package mocks

import (
	"context"
	"time"

	"nutriaudit/sync-svc/internal/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type testingT interface {
	mock.TestingT
	Cleanup(func())
}

// AuditRepository mocks service.AuditRepository.
type AuditRepository struct {
	mock.Mock
}

func NewAuditRepository(t testingT) *AuditRepository {
	m := &AuditRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *AuditRepository) GetTimestamp(ctx context.Context, id uuid.UUID) (time.Time, error) {
	ret := m.Called(ctx, id)
	return ret.Get(0).(time.Time), ret.Error(1)
}

func (m *AuditRepository) Create(ctx context.Context, audit *domain.Audit) error {
	return m.Called(ctx, audit).Error(0)
}

func (m *AuditRepository) UpdateIfNewer(ctx context.Context, payload domain.AuditPayload) (bool, error) {
	ret := m.Called(ctx, payload)
	return ret.Bool(0), ret.Error(1)
}

func (m *AuditRepository) Get(ctx context.Context, id uuid.UUID) (*domain.Audit, error) {
	ret := m.Called(ctx, id)
	var audit *domain.Audit
	if ret.Get(0) != nil {
		audit = ret.Get(0).(*domain.Audit)
	}
	return audit, ret.Error(1)
}

func (m *AuditRepository) List(ctx context.Context, since *time.Time) ([]domain.Audit, error) {
	ret := m.Called(ctx, since)
	var audits []domain.Audit
	if ret.Get(0) != nil {
		audits = ret.Get(0).([]domain.Audit)
	}
	return audits, ret.Error(1)
}

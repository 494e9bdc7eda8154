package service

import (
	"context"
	"time"

	"nutriaudit/sync-svc/internal/domain"

	"github.com/google/uuid"
)

// AuditRepository is the persistence contract for the reconciler and
// the direct CRUD paths. Create and UpdateIfNewer each run in their
// own transaction so one record's failure never rolls back another.
type AuditRepository interface {
	// GetTimestamp returns the server's updated_at for the record, or
	// ErrNotFound when the identity is absent.
	GetTimestamp(ctx context.Context, id uuid.UUID) (time.Time, error)
	// Create inserts the record with its client identity verbatim.
	// A unique-key race surfaces as ErrDuplicate.
	Create(ctx context.Context, audit *domain.Audit) error
	// UpdateIfNewer applies the payload's provided fields and replaces
	// the item list, guarded by updated_at < payload.UpdatedAt. It
	// reports whether the write landed; a raced-away guard is not an
	// error.
	UpdateIfNewer(ctx context.Context, payload domain.AuditPayload) (bool, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.Audit, error)
	List(ctx context.Context, since *time.Time) ([]domain.Audit, error)
}

type ReconcilerInterface interface {
	Push(ctx context.Context, payloads []domain.AuditPayload) domain.SyncResult
	Pull(ctx context.Context, since *time.Time) ([]domain.Audit, error)
}

type AuditServiceInterface interface {
	Create(ctx context.Context, audit *domain.Audit) error
	Get(ctx context.Context, id uuid.UUID) (*domain.Audit, error)
	List(ctx context.Context) ([]domain.Audit, error)
}

var (
	_ ReconcilerInterface   = (*Reconciler)(nil)
	_ AuditServiceInterface = (*AuditService)(nil)
)

package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"nutriaudit/sync-svc/internal/domain"

	"github.com/google/uuid"
)

// Reconciler resolves client-pushed audit records against server state
// with per-record last-write-wins on updated_at. Ties go to the server:
// the client's edit is discarded but the identity is still reported
// synchronized so the client stops resending it.
type Reconciler struct {
	repo AuditRepository
}

func NewReconciler(repo AuditRepository) *Reconciler {
	return &Reconciler{repo: repo}
}

// Push processes each record independently. A record that fails
// validation or persistence lands in Errors; every other record in the
// batch still reconciles.
func (s *Reconciler) Push(ctx context.Context, payloads []domain.AuditPayload) domain.SyncResult {
	result := domain.SyncResult{
		SyncedIDs: make([]uuid.UUID, 0, len(payloads)),
		Errors:    []domain.RecordError{},
	}

	for _, payload := range payloads {
		if err := validatePayload(payload); err != nil {
			result.Errors = append(result.Errors, domain.RecordError{ID: payload.ID, Error: err.Error()})
			continue
		}
		if err := s.reconcile(ctx, payload); err != nil {
			result.Errors = append(result.Errors, domain.RecordError{ID: payload.ID, Error: err.Error()})
			continue
		}
		result.SyncedIDs = append(result.SyncedIDs, payload.ID)
	}

	return result
}

func (s *Reconciler) reconcile(ctx context.Context, payload domain.AuditPayload) error {
	serverTS, err := s.repo.GetTimestamp(ctx, payload.ID)
	if errors.Is(err, domain.ErrNotFound) {
		if err := s.repo.Create(ctx, payload.ToAudit()); err != nil {
			if errors.Is(err, domain.ErrDuplicate) {
				// lost the insert race: the record exists now, which
				// is all the client needs to know
				log.Printf("[sync-svc] create race on %s, treating as synced", payload.ID)
				return nil
			}
			return err
		}
		return nil
	}
	if err != nil {
		return err
	}

	if payload.UpdatedAt.After(serverTS) {
		// applied=false means another push won the CAS in between;
		// either way the server now holds a record at least as new
		if _, err := s.repo.UpdateIfNewer(ctx, payload); err != nil {
			return err
		}
	}
	return nil
}

// Pull returns records changed strictly after since, or everything on
// a first sync.
func (s *Reconciler) Pull(ctx context.Context, since *time.Time) ([]domain.Audit, error) {
	return s.repo.List(ctx, since)
}

func validatePayload(payload domain.AuditPayload) error {
	if payload.ID == uuid.Nil {
		return fmt.Errorf("%w: id is required", domain.ErrValidation)
	}
	if payload.UpdatedAt.IsZero() {
		return fmt.Errorf("%w: updated_at is required", domain.ErrValidation)
	}
	if payload.Status != nil && !domain.ValidStatus(*payload.Status) {
		return fmt.Errorf("%w: unknown status %q", domain.ErrValidation, *payload.Status)
	}
	for _, item := range payload.Items {
		if item.QuestionKey == "" {
			return fmt.Errorf("%w: item question_key is required", domain.ErrValidation)
		}
	}
	return nil
}

// AuditService is the direct server-side CRUD path, for callers that
// are not offline clients.
type AuditService struct {
	repo AuditRepository
}

func NewAuditService(repo AuditRepository) *AuditService {
	return &AuditService{repo: repo}
}

func (s *AuditService) Create(ctx context.Context, audit *domain.Audit) error {
	if audit.InstitutionCode == "" {
		return fmt.Errorf("%w: institution_code is required", domain.ErrValidation)
	}
	if audit.ID == uuid.Nil {
		audit.ID = uuid.New()
	}
	if audit.Status == "" {
		audit.Status = domain.StatusDraft
	}
	if !domain.ValidStatus(audit.Status) {
		return fmt.Errorf("%w: unknown status %q", domain.ErrValidation, audit.Status)
	}
	audit.UpdatedAt = time.Now().UTC()
	for i := range audit.Items {
		if audit.Items[i].ID == uuid.Nil {
			audit.Items[i].ID = uuid.New()
		}
		audit.Items[i].AuditID = audit.ID
		if audit.Items[i].UpdatedAt.IsZero() {
			audit.Items[i].UpdatedAt = audit.UpdatedAt
		}
	}
	return s.repo.Create(ctx, audit)
}

func (s *AuditService) Get(ctx context.Context, id uuid.UUID) (*domain.Audit, error) {
	return s.repo.Get(ctx, id)
}

func (s *AuditService) List(ctx context.Context) ([]domain.Audit, error) {
	return s.repo.List(ctx, nil)
}

package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation failed")
	// ErrDuplicate signals a unique-key race on create: another writer
	// inserted the same identity first. The reconciler treats the
	// record as server-present rather than failed.
	ErrDuplicate = errors.New("duplicate record")
)

// Audit statuses, in lifecycle order.
const (
	StatusDraft     = "DRAFT"
	StatusCompleted = "COMPLETED"
	StatusValidated = "VALIDATED"
)

func ValidStatus(status string) bool {
	switch status {
	case StatusDraft, StatusCompleted, StatusValidated:
		return true
	}
	return false
}

// Audit is the offline sync unit. Identity is assigned by the client
// at creation time and never reassigned by the server; updated_at is
// the last-write-wins clock and advances on every accepted mutation.
type Audit struct {
	ID              uuid.UUID   `json:"id"`
	InstitutionCode string      `json:"institution_code"`
	Date            time.Time   `json:"date"`
	Status          string      `json:"status"`
	Score           int         `json:"score"`
	Observations    string      `json:"observations,omitempty"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
	Items           []AuditItem `json:"items"`
}

type AuditItem struct {
	ID          uuid.UUID `json:"id"`
	AuditID     uuid.UUID `json:"audit_id"`
	QuestionKey string    `json:"question_key"`
	Compliant   bool      `json:"compliant"`
	Value       string    `json:"value,omitempty"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// AuditPayload is one record of a push batch. Optional header fields
// are pointers so a partial client edit only touches what it carries;
// items always travel as the complete list and replace wholesale when
// the header is accepted.
type AuditPayload struct {
	ID              uuid.UUID     `json:"id"`
	InstitutionCode *string       `json:"institution_code,omitempty"`
	Date            *time.Time    `json:"date,omitempty"`
	Status          *string       `json:"status,omitempty"`
	Score           *int          `json:"score,omitempty"`
	Observations    *string       `json:"observations,omitempty"`
	UpdatedAt       time.Time     `json:"updated_at"`
	Items           []ItemPayload `json:"items"`
}

type ItemPayload struct {
	ID          uuid.UUID `json:"id"`
	QuestionKey string    `json:"question_key"`
	Compliant   bool      `json:"compliant"`
	Value       string    `json:"value,omitempty"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ToAudit materializes a full record from the payload for the
// absent-on-server case.
func (p AuditPayload) ToAudit() *Audit {
	audit := &Audit{
		ID:        p.ID,
		Status:    StatusDraft,
		UpdatedAt: p.UpdatedAt,
	}
	if p.InstitutionCode != nil {
		audit.InstitutionCode = *p.InstitutionCode
	}
	if p.Date != nil {
		audit.Date = *p.Date
	}
	if p.Status != nil {
		audit.Status = *p.Status
	}
	if p.Score != nil {
		audit.Score = *p.Score
	}
	if p.Observations != nil {
		audit.Observations = *p.Observations
	}
	audit.Items = make([]AuditItem, 0, len(p.Items))
	for _, item := range p.Items {
		id := item.ID
		if id == uuid.Nil {
			id = uuid.New()
		}
		audit.Items = append(audit.Items, AuditItem{
			ID:          id,
			AuditID:     audit.ID,
			QuestionKey: item.QuestionKey,
			Compliant:   item.Compliant,
			Value:       item.Value,
			UpdatedAt:   item.UpdatedAt,
		})
	}
	return audit
}

// RecordError ties a reconciliation failure to the record it affects
// so a client can tell a rejected record from a failed call.
type RecordError struct {
	ID    uuid.UUID `json:"id"`
	Error string    `json:"error"`
}

// SyncResult is the push response: identities the client may stop
// resending, plus per-record failures.
type SyncResult struct {
	SyncedIDs []uuid.UUID   `json:"synced_ids"`
	Errors    []RecordError `json:"errors"`
}

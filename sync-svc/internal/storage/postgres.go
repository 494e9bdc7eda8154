package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"nutriaudit/sync-svc/internal/domain"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type PostgresRepository struct {
	DB *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{DB: db}
}

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return fmt.Errorf("%w: %v", domain.ErrDuplicate, err)
	}
	return err
}

func (r *PostgresRepository) GetTimestamp(ctx context.Context, id uuid.UUID) (time.Time, error) {
	var ts time.Time
	err := r.DB.QueryRowContext(ctx,
		"SELECT updated_at FROM audits WHERE id = $1", id).Scan(&ts)
	if err != nil {
		return time.Time{}, mapError(err)
	}
	return ts, nil
}

// Create inserts the header and items in one transaction, storing the
// client's identity and updated_at verbatim.
func (r *PostgresRepository) Create(ctx context.Context, audit *domain.Audit) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return mapError(err)
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx, `
		INSERT INTO audits (id, institution_code, date, status, score, observations, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at`,
		audit.ID, audit.InstitutionCode, audit.Date, audit.Status,
		audit.Score, audit.Observations, audit.UpdatedAt).
		Scan(&audit.CreatedAt)
	if err != nil {
		return mapError(err)
	}

	if err := insertItems(ctx, tx, audit.ID, audit.Items); err != nil {
		return err
	}
	return mapError(tx.Commit())
}

// UpdateIfNewer is the guarded write behind last-write-wins: the header
// update only lands when the stored updated_at is strictly older than
// the payload's, and the item list is replaced wholesale only when the
// header was accepted.
func (r *PostgresRepository) UpdateIfNewer(ctx context.Context, payload domain.AuditPayload) (bool, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return false, mapError(err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		UPDATE audits
		SET institution_code = COALESCE($2, institution_code),
		    date = COALESCE($3, date),
		    status = COALESCE($4, status),
		    score = COALESCE($5, score),
		    observations = COALESCE($6, observations),
		    updated_at = $7
		WHERE id = $1 AND updated_at < $7`,
		payload.ID, payload.InstitutionCode, payload.Date, payload.Status,
		payload.Score, payload.Observations, payload.UpdatedAt)
	if err != nil {
		return false, mapError(err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, mapError(err)
	}
	if rows == 0 {
		return false, nil
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM audit_items WHERE audit_id = $1", payload.ID); err != nil {
		return false, mapError(err)
	}
	items := make([]domain.AuditItem, 0, len(payload.Items))
	for _, item := range payload.Items {
		id := item.ID
		if id == uuid.Nil {
			id = uuid.New()
		}
		items = append(items, domain.AuditItem{
			ID:          id,
			AuditID:     payload.ID,
			QuestionKey: item.QuestionKey,
			Compliant:   item.Compliant,
			Value:       item.Value,
			UpdatedAt:   item.UpdatedAt,
		})
	}
	if err := insertItems(ctx, tx, payload.ID, items); err != nil {
		return false, err
	}
	if err := tx.Commit(); err != nil {
		return false, mapError(err)
	}
	return true, nil
}

func insertItems(ctx context.Context, tx *sql.Tx, auditID uuid.UUID, items []domain.AuditItem) error {
	for i := range items {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO audit_items (id, audit_id, question_key, compliant, value, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			items[i].ID, auditID, items[i].QuestionKey, items[i].Compliant,
			items[i].Value, items[i].UpdatedAt)
		if err != nil {
			return mapError(err)
		}
	}
	return nil
}

const auditSelect = `
	SELECT id, institution_code, date, status, score, COALESCE(observations, ''), created_at, updated_at
	FROM audits`

func (r *PostgresRepository) Get(ctx context.Context, id uuid.UUID) (*domain.Audit, error) {
	var audit domain.Audit
	err := r.DB.QueryRowContext(ctx, auditSelect+" WHERE id = $1", id).
		Scan(&audit.ID, &audit.InstitutionCode, &audit.Date, &audit.Status,
			&audit.Score, &audit.Observations, &audit.CreatedAt, &audit.UpdatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	items, err := r.listItems(ctx, audit.ID)
	if err != nil {
		return nil, err
	}
	audit.Items = items
	return &audit, nil
}

// List returns audits changed strictly after since, newest first, with
// items embedded. A nil since returns the full set.
func (r *PostgresRepository) List(ctx context.Context, since *time.Time) ([]domain.Audit, error) {
	query := auditSelect
	args := []interface{}{}
	if since != nil {
		query += " WHERE updated_at > $1"
		args = append(args, *since)
	}
	query += " ORDER BY updated_at DESC, id"

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	audits := []domain.Audit{}
	for rows.Next() {
		var audit domain.Audit
		if err := rows.Scan(&audit.ID, &audit.InstitutionCode, &audit.Date, &audit.Status,
			&audit.Score, &audit.Observations, &audit.CreatedAt, &audit.UpdatedAt); err != nil {
			continue
		}
		audits = append(audits, audit)
	}

	for i := range audits {
		items, err := r.listItems(ctx, audits[i].ID)
		if err != nil {
			return nil, err
		}
		audits[i].Items = items
	}
	return audits, nil
}

func (r *PostgresRepository) listItems(ctx context.Context, auditID uuid.UUID) ([]domain.AuditItem, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, audit_id, question_key, compliant, COALESCE(value, ''), updated_at
		FROM audit_items
		WHERE audit_id = $1
		ORDER BY question_key`, auditID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	items := []domain.AuditItem{}
	for rows.Next() {
		var item domain.AuditItem
		if err := rows.Scan(&item.ID, &item.AuditID, &item.QuestionKey,
			&item.Compliant, &item.Value, &item.UpdatedAt); err != nil {
			continue
		}
		items = append(items, item)
	}
	return items, nil
}

func (r *PostgresRepository) EnsureSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS audits (
			id UUID PRIMARY KEY,
			institution_code TEXT NOT NULL DEFAULT '',
			date TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			status TEXT NOT NULL DEFAULT 'DRAFT',
			score INTEGER NOT NULL DEFAULT 0,
			observations TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS audit_items (
			id UUID PRIMARY KEY,
			audit_id UUID NOT NULL REFERENCES audits(id) ON DELETE CASCADE,
			question_key TEXT NOT NULL,
			compliant BOOLEAN NOT NULL DEFAULT FALSE,
			value TEXT,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_audits_updated ON audits (updated_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_audit_items_audit ON audit_items (audit_id)`,
	}
	for _, stmt := range statements {
		if _, err := r.DB.Exec(stmt); err != nil {
			return fmt.Errorf("ensure schema `%s`: %w", stmt[:40], err)
		}
	}
	return nil
}

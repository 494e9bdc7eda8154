package tests

import (
	"context"
	"regexp"
	"testing"
	"time"

	"nutriaudit/sync-svc/internal/domain"
	"nutriaudit/sync-svc/internal/storage"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSyncStorage(t *testing.T) (*storage.PostgresRepository, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	return storage.NewPostgresRepository(db), mock
}

func TestGetTimestamp_AbsentRecord(t *testing.T) {
	repo, mock := newSyncStorage(t)

	id := uuid.New()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT updated_at FROM audits")).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"updated_at"}))

	_, err := repo.GetTimestamp(context.Background(), id)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCreate_DuplicateIdentityMapsToSentinel(t *testing.T) {
	repo, mock := newSyncStorage(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO audits")).
		WillReturnError(&pq.Error{Code: "23505"})
	mock.ExpectRollback()

	err := repo.Create(context.Background(), &domain.Audit{
		ID:        uuid.New(),
		Status:    domain.StatusDraft,
		UpdatedAt: time.Now().UTC(),
	})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestUpdateIfNewer_AppliedReplacesItems(t *testing.T) {
	repo, mock := newSyncStorage(t)

	id := uuid.New()
	now := time.Now().UTC()
	payload := domain.AuditPayload{
		ID:        id,
		UpdatedAt: now,
		Items: []domain.ItemPayload{
			{ID: uuid.New(), QuestionKey: "menu_posted", Compliant: true, UpdatedAt: now},
			{ID: uuid.New(), QuestionKey: "kitchen_clean", Compliant: false, UpdatedAt: now},
		},
	}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE audits")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM audit_items")).
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO audit_items")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO audit_items")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	applied, err := repo.UpdateIfNewer(context.Background(), payload)
	require.NoError(t, err)
	assert.True(t, applied)
}

func TestUpdateIfNewer_RacedAwayGuardLeavesItemsAlone(t *testing.T) {
	repo, mock := newSyncStorage(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE audits")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	applied, err := repo.UpdateIfNewer(context.Background(), domain.AuditPayload{
		ID:        uuid.New(),
		UpdatedAt: time.Now().UTC(),
		Items:     []domain.ItemPayload{{QuestionKey: "menu_posted"}},
	})
	require.NoError(t, err)
	assert.False(t, applied)
}

func TestList_EmptyResultIsEmptyNotNull(t *testing.T) {
	repo, mock := newSyncStorage(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM audits")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "institution_code", "date", "status", "score", "observations", "created_at", "updated_at"}))

	audits, err := repo.List(context.Background(), nil)
	require.NoError(t, err)
	assert.NotNil(t, audits, "an empty pull must serialize as [] rather than null")
	assert.Empty(t, audits)
}

func TestList_SinceFilterEmbedsItems(t *testing.T) {
	repo, mock := newSyncStorage(t)

	id := uuid.New()
	itemID := uuid.New()
	now := time.Now().UTC()
	since := now.Add(-time.Hour)

	mock.ExpectQuery("updated_at > ").
		WithArgs(since).
		WillReturnRows(sqlmock.NewRows([]string{"id", "institution_code", "date", "status", "score", "observations", "created_at", "updated_at"}).
			AddRow(id.String(), "ESC-042", now, "COMPLETED", 87, "", now, now))
	mock.ExpectQuery(regexp.QuoteMeta("FROM audit_items")).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"id", "audit_id", "question_key", "compliant", "value", "updated_at"}).
			AddRow(itemID.String(), id.String(), "menu_posted", true, "", now))

	audits, err := repo.List(context.Background(), &since)
	require.NoError(t, err)
	require.Len(t, audits, 1)
	assert.Equal(t, id, audits[0].ID)
	require.Len(t, audits[0].Items, 1)
	assert.Equal(t, "menu_posted", audits[0].Items[0].QuestionKey)
}

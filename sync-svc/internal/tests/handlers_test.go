package tests

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"nutriaudit/sync-svc/internal/api/http"
	"nutriaudit/sync-svc/internal/domain"
	"nutriaudit/sync-svc/internal/mocks"
	"nutriaudit/sync-svc/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newSyncServer(t *testing.T) (*mocks.AuditRepository, http.Handler) {
	repo := mocks.NewAuditRepository(t)
	handler := httpapi.NewHandler(service.NewReconciler(repo), service.NewAuditService(repo))
	return repo, httpapi.NewRouter(handler)
}

func doJSON(server http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)
	return rec
}

func TestPushEndpoint_MixedBatch(t *testing.T) {
	repo, server := newSyncServer(t)

	id := uuid.New()
	now := time.Now().UTC()

	repo.On("GetTimestamp", mock.Anything, id).Return(time.Time{}, domain.ErrNotFound).Once()
	repo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Audit")).Return(nil).Once()

	rec := doJSON(server, "POST", "/api/sync/push", map[string]interface{}{
		"audits": []map[string]interface{}{
			{
				"id":               id.String(),
				"institution_code": "ESC-042",
				"status":           domain.StatusCompleted,
				"updated_at":       now.Format(time.RFC3339Nano),
				"items": []map[string]interface{}{
					{"question_key": "menu_posted", "compliant": true, "updated_at": now.Format(time.RFC3339Nano)},
				},
			},
			{
				// missing id: rejected per-record, not batch-fatal
				"updated_at": now.Format(time.RFC3339Nano),
			},
		},
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	var result domain.SyncResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, []uuid.UUID{id}, result.SyncedIDs)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0].Error, "id is required")
}

func TestPullEndpoint_ParsesTimestamp(t *testing.T) {
	repo, server := newSyncServer(t)

	since, _ := time.Parse(time.RFC3339, "2026-08-30T12:00:00Z")
	repo.On("List", mock.Anything, mock.MatchedBy(func(ts *time.Time) bool {
		return ts != nil && ts.Equal(since)
	})).Return([]domain.Audit{{ID: uuid.New(), Status: domain.StatusDraft}}, nil).Once()

	rec := doJSON(server, "GET", "/api/sync/pull?last_sync_timestamp=2026-08-30T12:00:00Z", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Audits []domain.Audit `json:"audits"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Audits, 1)
}

func TestPullEndpoint_FullSetWhenNoTimestamp(t *testing.T) {
	repo, server := newSyncServer(t)

	repo.On("List", mock.Anything, (*time.Time)(nil)).Return([]domain.Audit{}, nil).Once()

	rec := doJSON(server, "GET", "/api/sync/pull", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestPullEndpoint_RejectsBadTimestamp(t *testing.T) {
	repo, server := newSyncServer(t)

	rec := doJSON(server, "GET", "/api/sync/pull?last_sync_timestamp=yesterday", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	repo.AssertNotCalled(t, "List")
}

func TestCreateAuditEndpoint(t *testing.T) {
	repo, server := newSyncServer(t)

	repo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Audit")).Return(nil).Once()

	rec := doJSON(server, "POST", "/api/audits", map[string]interface{}{
		"institution_code": "ESC-042",
	})

	assert.Equal(t, http.StatusCreated, rec.Code)
	var audit domain.Audit
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &audit))
	assert.NotEqual(t, uuid.Nil, audit.ID)
	assert.Equal(t, domain.StatusDraft, audit.Status)
}

func TestGetAuditEndpoint_InvalidID(t *testing.T) {
	_, server := newSyncServer(t)

	rec := doJSON(server, "GET", "/api/audits/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetAuditEndpoint_NotFound(t *testing.T) {
	repo, server := newSyncServer(t)

	id := uuid.New()
	repo.On("Get", mock.Anything, id).Return(nil, domain.ErrNotFound).Once()

	rec := doJSON(server, "GET", "/api/audits/"+id.String(), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

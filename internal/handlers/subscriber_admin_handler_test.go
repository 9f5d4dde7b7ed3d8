package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"toursite/internal/models"
	"toursite/internal/pdf"
	"toursite/internal/services"
)

type memAdminStore struct {
	subs []*models.Subscriber
}

func (m *memAdminStore) List(limit, offset int) ([]*models.Subscriber, error) {
	if offset >= len(m.subs) {
		return nil, nil
	}
	end := offset + limit
	if end > len(m.subs) {
		end = len(m.subs)
	}
	return m.subs[offset:end], nil
}

func (m *memAdminStore) ListAll() ([]*models.Subscriber, error) {
	return m.subs, nil
}

func (m *memAdminStore) Count() (int, error) {
	return len(m.subs), nil
}

func (m *memAdminStore) Delete(id int64) (bool, error) {
	for i, s := range m.subs {
		if s.ID == id {
			m.subs = append(m.subs[:i], m.subs[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func newAdminRouter(store *memAdminStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewSubscriberAdminHandler(services.NewSubscriberService(store), pdf.NewSubscriberExporter())

	r := gin.New()
	r.GET("/admin/subscribers", h.List)
	r.DELETE("/admin/subscribers/:id", h.Delete)
	r.GET("/admin/subscribers/export", h.Export)
	return r
}

func seededStore() *memAdminStore {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return &memAdminStore{subs: []*models.Subscriber{
		{ID: 1, Email: "one@example.com", SubscribedAt: at},
		{ID: 2, Email: "two@example.com", SubscribedAt: at.Add(time.Hour)},
		{ID: 3, Email: "three@example.com", SubscribedAt: at.Add(2 * time.Hour)},
	}}
}

func TestAdminList(t *testing.T) {
	r := newAdminRouter(seededStore())

	req := httptest.NewRequest(http.MethodGet, "/admin/subscribers?limit=2&offset=0", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"total":3`)
	assert.Contains(t, rr.Body.String(), "one@example.com")
	assert.Contains(t, rr.Body.String(), "two@example.com")
	assert.NotContains(t, rr.Body.String(), "three@example.com")
}

func TestAdminDelete(t *testing.T) {
	store := seededStore()
	r := newAdminRouter(store)

	req := httptest.NewRequest(http.MethodDelete, "/admin/subscribers/2", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, store.subs, 2)

	// повторное удаление того же ID
	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodDelete, "/admin/subscribers/2", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestAdminDelete_BadID(t *testing.T) {
	r := newAdminRouter(seededStore())

	req := httptest.NewRequest(http.MethodDelete, "/admin/subscribers/abc", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestAdminExport_CSV(t *testing.T) {
	r := newAdminRouter(seededStore())

	req := httptest.NewRequest(http.MethodGet, "/admin/subscribers/export", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Disposition"), "subscribers.csv")

	lines := strings.Split(strings.TrimSpace(rr.Body.String()), "\n")
	require.Len(t, lines, 4, "header plus three rows")
	assert.Equal(t, "id,email,subscribed_at", lines[0])
	assert.Contains(t, lines[1], "one@example.com")
}

func TestAdminExport_PDF(t *testing.T) {
	r := newAdminRouter(seededStore())

	req := httptest.NewRequest(http.MethodGet, "/admin/subscribers/export?format=pdf", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/pdf", rr.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(rr.Body.String(), "%PDF"))
}

func TestAdminExport_UnknownFormat(t *testing.T) {
	r := newAdminRouter(seededStore())

	req := httptest.NewRequest(http.MethodGet, "/admin/subscribers/export?format=xml", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"toursite/internal/models"
	"toursite/internal/services"
)

// --- in-memory stores ---

type memPendingStore struct {
	mu      sync.Mutex
	entries map[string]*models.PendingSubscription
}

func newMemPendingStore() *memPendingStore {
	return &memPendingStore{entries: make(map[string]*models.PendingSubscription)}
}

func (m *memPendingStore) Upsert(p *models.PendingSubscription) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	cp.Attempts = 0
	m.entries[p.Email] = &cp
	return nil
}

func (m *memPendingStore) GetByEmail(email string) (*models.PendingSubscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.entries[email]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (m *memPendingStore) IncrementAttempts(email string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.entries[email]
	if !ok {
		return 0, errors.New("no entry")
	}
	p.Attempts++
	return p.Attempts, nil
}

func (m *memPendingStore) Delete(email string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, email)
	return nil
}

func (m *memPendingStore) DeleteMatching(email, codeHash string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.entries[email]
	if !ok || p.CodeHash != codeHash {
		return false, nil
	}
	delete(m.entries, email)
	return true, nil
}

func (m *memPendingStore) DeleteExpired(before time.Time) (int64, error) {
	return 0, nil
}

type memSubscriberStore struct {
	mu   sync.Mutex
	subs map[string]*models.Subscriber
}

func newMemSubscriberStore() *memSubscriberStore {
	return &memSubscriberStore{subs: make(map[string]*models.Subscriber)}
}

func (m *memSubscriberStore) Create(s *models.Subscriber) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.subs[s.Email]; ok {
		return false, nil
	}
	s.ID = int64(len(m.subs) + 1)
	cp := *s
	m.subs[s.Email] = &cp
	return true, nil
}

func (m *memSubscriberStore) ExistsByEmail(email string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.subs[email]
	return ok, nil
}

type memMailer struct {
	mu    sync.Mutex
	codes map[string]string
}

func newMemMailer() *memMailer {
	return &memMailer{codes: make(map[string]string)}
}

func (m *memMailer) SendSubscriptionCode(email, code string, expiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.codes[email] = code
	return nil
}

func (m *memMailer) code(email string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.codes[email]
}

// --- router ---

func newSubscriptionRouter() (*gin.Engine, *memSubscriberStore, *memMailer) {
	gin.SetMode(gin.TestMode)

	pending := newMemPendingStore()
	subs := newMemSubscriberStore()
	mailer := newMemMailer()
	svc := services.NewSubscriptionService(pending, subs, mailer, nil)
	h := NewSubscriptionHandler(svc)

	r := gin.New()
	r.POST("/subscribers/otp", h.RequestOTP)
	r.POST("/subscribers/verify", h.VerifyOTP)
	return r, subs, mailer
}

func postJSON(t *testing.T, r *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

// --- /subscribers/otp ---

func TestRequestOTPEndpoint_Success(t *testing.T) {
	r, _, mailer := newSubscriptionRouter()

	rr := postJSON(t, r, "/subscribers/otp", gin.H{"email": "traveler@example.com"})
	require.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		Message   string    `json:"message"`
		ExpiresAt time.Time `json:"expires_at"`
		ExpiresIn int       `json:"expires_in"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "verification code sent", resp.Message)
	assert.Equal(t, 300, resp.ExpiresIn)
	assert.WithinDuration(t, time.Now().Add(models.OTPTTL), resp.ExpiresAt, 5*time.Second)

	assert.Regexp(t, `^[0-9]{6}$`, mailer.code("traveler@example.com"))
}

func TestRequestOTPEndpoint_MissingEmail(t *testing.T) {
	r, _, _ := newSubscriptionRouter()

	rr := postJSON(t, r, "/subscribers/otp", gin.H{})
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Contains(t, rr.Body.String(), "email")
}

func TestRequestOTPEndpoint_InvalidEmail(t *testing.T) {
	r, _, _ := newSubscriptionRouter()

	rr := postJSON(t, r, "/subscribers/otp", gin.H{"email": "not-an-email"})
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Contains(t, rr.Body.String(), "valid email")
}

func TestRequestOTPEndpoint_AlreadySubscribed(t *testing.T) {
	r, subs, _ := newSubscriptionRouter()
	_, err := subs.Create(&models.Subscriber{Email: "taken@example.com", SubscribedAt: time.Now()})
	require.NoError(t, err)

	rr := postJSON(t, r, "/subscribers/otp", gin.H{"email": "taken@example.com"})
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Contains(t, rr.Body.String(), "already subscribed")
}

// --- /subscribers/verify ---

func TestVerifyEndpoint_RoundTrip(t *testing.T) {
	r, subs, mailer := newSubscriptionRouter()

	rr := postJSON(t, r, "/subscribers/otp", gin.H{"email": "a@b.com"})
	require.Equal(t, http.StatusOK, rr.Code)
	code := mailer.code("a@b.com")

	rr = postJSON(t, r, "/subscribers/verify", gin.H{"email": "a@b.com", "otp": code})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "subscription confirmed")

	exists, err := subs.ExistsByEmail("a@b.com")
	require.NoError(t, err)
	assert.True(t, exists)

	// повторный verify: записи уже нет
	rr = postJSON(t, r, "/subscribers/verify", gin.H{"email": "a@b.com", "otp": code})
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestVerifyEndpoint_MalformedCode(t *testing.T) {
	r, _, _ := newSubscriptionRouter()

	for _, otp := range []string{"", "12345", "1234567", "abcdef"} {
		rr := postJSON(t, r, "/subscribers/verify", gin.H{"email": "a@b.com", "otp": otp})
		assert.Equal(t, http.StatusUnprocessableEntity, rr.Code, "otp %q", otp)
	}
}

func TestVerifyEndpoint_WrongCode(t *testing.T) {
	r, _, mailer := newSubscriptionRouter()

	rr := postJSON(t, r, "/subscribers/otp", gin.H{"email": "a@b.com"})
	require.Equal(t, http.StatusOK, rr.Code)

	wrong := "000000"
	if wrong == mailer.code("a@b.com") {
		wrong = "000001"
	}
	rr = postJSON(t, r, "/subscribers/verify", gin.H{"email": "a@b.com", "otp": wrong})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "invalid code")
}

func TestVerifyEndpoint_NoPendingRequest(t *testing.T) {
	r, _, _ := newSubscriptionRouter()

	rr := postJSON(t, r, "/subscribers/verify", gin.H{"email": "nobody@example.com", "otp": "123456"})
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Body.String(), "request a new code")
}

func TestVerifyEndpoint_ResendInvalidatesOldCode(t *testing.T) {
	r, _, mailer := newSubscriptionRouter()

	rr := postJSON(t, r, "/subscribers/otp", gin.H{"email": "a@b.com"})
	require.Equal(t, http.StatusOK, rr.Code)
	first := mailer.code("a@b.com")

	rr = postJSON(t, r, "/subscribers/otp", gin.H{"email": "a@b.com"})
	require.Equal(t, http.StatusOK, rr.Code)
	second := mailer.code("a@b.com")

	if first != second {
		rr = postJSON(t, r, "/subscribers/verify", gin.H{"email": "a@b.com", "otp": first})
		assert.Equal(t, http.StatusBadRequest, rr.Code, "old code must be rejected")
	}
	rr = postJSON(t, r, "/subscribers/verify", gin.H{"email": "a@b.com", "otp": second})
	assert.Equal(t, http.StatusOK, rr.Code)
}

package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-secret")

func init() {
	gin.SetMode(gin.TestMode)
}

func signToken(t *testing.T, method jwt.SigningMethod, key any, claims Claims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return s
}

func validClaims() Claims {
	return Claims{
		Email: "a@example.com",
		Name:  "Ada",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "sub_123",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
}

func newAuthRouter() *gin.Engine {
	r := gin.New()
	r.GET("/me", AuthRequired(testSecret), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"subject": Subject(c),
			"email":   c.GetString(ContextEmail),
			"name":    c.GetString(ContextName),
		})
	})
	return r
}

func doGet(r http.Handler, auth string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthRequired_ValidToken(t *testing.T) {
	token := signToken(t, jwt.SigningMethodHS256, testSecret, validClaims())

	w := doGet(newAuthRouter(), "Bearer "+token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"subject":"sub_123","email":"a@example.com","name":"Ada"}`, w.Body.String())
}

func TestAuthRequired_Rejections(t *testing.T) {
	expired := validClaims()
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
	noSubject := validClaims()
	noSubject.Subject = ""
	noExpiry := validClaims()
	noExpiry.ExpiresAt = nil

	cases := map[string]string{
		"missing header": "",
		"wrong scheme":   "Token " + signToken(t, jwt.SigningMethodHS256, testSecret, validClaims()),
		"bad signature":  "Bearer " + signToken(t, jwt.SigningMethodHS256, []byte("other"), validClaims()),
		"wrong alg":      "Bearer " + signToken(t, jwt.SigningMethodHS512, testSecret, validClaims()),
		"expired":        "Bearer " + signToken(t, jwt.SigningMethodHS256, testSecret, expired),
		"no subject":     "Bearer " + signToken(t, jwt.SigningMethodHS256, testSecret, noSubject),
		"no expiry":      "Bearer " + signToken(t, jwt.SigningMethodHS256, testSecret, noExpiry),
		"garbage":        "Bearer not.a.jwt",
	}
	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			w := doGet(newAuthRouter(), header)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

type memCounter struct {
	mu     sync.Mutex
	counts map[string]int64
	err    error
}

func (m *memCounter) IncrementRateLimit(_ context.Context, key string, _ time.Duration) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return 0, m.err
	}
	if m.counts == nil {
		m.counts = map[string]int64{}
	}
	m.counts[key]++
	return m.counts[key], nil
}

func TestRateLimit(t *testing.T) {
	counter := &memCounter{}
	r := gin.New()
	r.GET("/me", RateLimit(counter, "test", 2, time.Minute), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	assert.Equal(t, http.StatusOK, doGet(r, "").Code)
	w := doGet(r, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
	assert.Equal(t, http.StatusTooManyRequests, doGet(r, "").Code)
}

func TestRateLimit_FailsOpen(t *testing.T) {
	counter := &memCounter{err: errors.New("redis down")}
	r := gin.New()
	r.GET("/me", RateLimit(counter, "test", 1, time.Minute), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	for range 3 {
		assert.Equal(t, http.StatusOK, doGet(r, "").Code)
	}
}

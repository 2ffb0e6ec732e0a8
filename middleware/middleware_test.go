package middleware

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/visheshsingal/hitech/config"
	"github.com/visheshsingal/hitech/models"
	"github.com/visheshsingal/hitech/utils"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func protectedServer(issuer *utils.TokenIssuer) *echo.Echo {
	e := echo.New()
	e.GET("/admin", func(c echo.Context) error {
		return c.String(http.StatusOK, c.Get(ContextAdminID).(primitive.ObjectID).Hex())
	}, JWTMiddleware(issuer))
	return e
}

func TestJWTMiddleware(t *testing.T) {
	issuer := utils.NewTokenIssuer(config.AuthConfig{JWTSecret: "secret"})
	admin := &models.Admin{ID: primitive.NewObjectID(), Email: "a@b.co", Role: RoleAdmin}
	adminToken, err := issuer.GenerateJWT(admin)
	require.NoError(t, err)
	userToken, err := issuer.GenerateJWT(&models.Admin{ID: primitive.NewObjectID(), Role: "viewer"})
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized},
		{"garbage token", "Bearer abc", http.StatusUnauthorized},
		{"non-admin role", "Bearer " + userToken, http.StatusForbidden},
		{"admin", "Bearer " + adminToken, http.StatusOK},
	}
	e := protectedServer(issuer)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)
			assert.Equal(t, tt.status, rec.Code)
			if tt.status == http.StatusOK {
				assert.Equal(t, admin.ID.Hex(), rec.Body.String())
			}
		})
	}
}

type memCounter struct {
	counts map[string]int64
	err    error
}

func (m *memCounter) Incr(_ context.Context, key string, _ time.Duration) (int64, error) {
	if m.err != nil {
		return 0, m.err
	}
	m.counts[key]++
	return m.counts[key], nil
}

func limitedServer(counter Counter) *echo.Echo {
	e := echo.New()
	e.POST("/api/chatbot/message", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}, RateLimit(counter, 2, time.Minute, discard))
	return e
}

func TestRateLimit(t *testing.T) {
	e := limitedServer(&memCounter{counts: map[string]int64{}})

	var codes []int
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/chatbot/message", nil))
		codes = append(codes, rec.Code)
		if rec.Code == http.StatusTooManyRequests {
			assert.Equal(t, "60", rec.Header().Get("Retry-After"))
		}
	}
	assert.Equal(t, []int{200, 200, 429}, codes)
}

func TestRateLimitFailsOpen(t *testing.T) {
	e := limitedServer(&memCounter{err: errors.New("connection refused")})
	for i := 0; i < 5; i++ {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/chatbot/message", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestRequestIDIsSet(t *testing.T) {
	e := echo.New()
	e.Use(RequestID(), RequestLogger(discard))
	e.GET("/", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) })

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Len(t, rec.Header().Get(echo.HeaderXRequestID), 36)
}

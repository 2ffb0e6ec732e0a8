package utils

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/visheshsingal/hitech/apperr"
	"github.com/visheshsingal/hitech/config"
	"github.com/visheshsingal/hitech/models"
)

func TestJWTRoundTrip(t *testing.T) {
	issuer := NewTokenIssuer(config.AuthConfig{JWTSecret: "s3cret", ExpiryHours: 2})
	admin := &models.Admin{ID: primitive.NewObjectID(), Email: "admin@hitechhomes.com", Role: "admin"}

	token, err := issuer.GenerateJWT(admin)
	require.NoError(t, err)

	claims, err := issuer.ValidateJWT(token)
	require.NoError(t, err)
	assert.Equal(t, admin.ID, claims.AdminID)
	assert.Equal(t, "admin", claims.Role)
	assert.Equal(t, admin.ID.Hex(), claims.Subject)
}

func TestJWTRejectsExpiredAndForeignTokens(t *testing.T) {
	issuer := NewTokenIssuer(config.AuthConfig{JWTSecret: "s3cret", ExpiryHours: 1})
	admin := &models.Admin{ID: primitive.NewObjectID(), Role: "admin"}

	issuer.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expired, err := issuer.GenerateJWT(admin)
	require.NoError(t, err)
	issuer.now = time.Now
	_, err = issuer.ValidateJWT(expired)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)

	other := NewTokenIssuer(config.AuthConfig{JWTSecret: "another"})
	foreign, err := other.GenerateJWT(admin)
	require.NoError(t, err)
	_, err = issuer.ValidateJWT(foreign)
	assert.Error(t, err)
}

func TestJWTRequiresSecret(t *testing.T) {
	_, err := NewTokenIssuer(config.AuthConfig{}).GenerateJWT(&models.Admin{})
	assert.Error(t, err)
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("hunter22")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter22", hash)
	assert.True(t, CheckPassword(hash, "hunter22"))
	assert.False(t, CheckPassword(hash, "hunter23"))
}

func TestIsValidEmail(t *testing.T) {
	tests := map[string]bool{
		"asha@example.com":      true,
		"asha.k-r@mail.co.in":   true,
		"asha@example":          false,
		"asha example@mail.com": false,
		"":                      false,
	}
	for email, want := range tests {
		assert.Equal(t, want, IsValidEmail(email), email)
	}
}

func TestIsValidPhone(t *testing.T) {
	assert.True(t, IsValidPhone("9876543210"))
	assert.False(t, IsValidPhone("98765 43210"))
	assert.False(t, IsValidPhone("+919876543210"))
	assert.False(t, IsValidPhone("987654321"))
}

func TestParseObjectID(t *testing.T) {
	id := primitive.NewObjectID()
	got, err := ParseObjectID(" "+id.Hex()+" ", "property")
	require.NoError(t, err)
	assert.Equal(t, id, got)

	_, err = ParseObjectID("abc", "property")
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	assert.Equal(t, "Invalid property ID", apperr.MessageOf(err))
}

func TestRequestValidator(t *testing.T) {
	v := NewRequestValidator()

	err := v.Validate(&models.EnquiryStatusRequest{Status: "archived"})
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	assert.Equal(t, "status must be one of: pending, handled", apperr.MessageOf(err))

	err = v.Validate(&models.LoginRequest{Password: "x"})
	assert.Equal(t, "email is required", apperr.MessageOf(err))

	err = v.Validate(&models.EnquiryRequest{Name: strings.Repeat("a", 51), Email: "a@b.co", Phone: "1", Message: "hi"})
	assert.Equal(t, "name cannot be more than 50 characters", apperr.MessageOf(err))

	assert.NoError(t, v.Validate(&models.EnquiryStatusRequest{Status: "handled"}))
}

func TestGenerateQueryCacheKey(t *testing.T) {
	a := GenerateQueryCacheKey("catalog:collection", map[string]string{"key": "luxury", "page": "1"})
	b := GenerateQueryCacheKey("catalog:collection", map[string]string{"page": "1", "key": "luxury"})
	c := GenerateQueryCacheKey("catalog:collection", map[string]string{"page": "2", "key": "luxury"})

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.True(t, strings.HasPrefix(a, "catalog:collection:"))
}

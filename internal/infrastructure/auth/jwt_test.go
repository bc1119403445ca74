package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openhelpdesk/helpdesk/internal/domain/user"
	"github.com/openhelpdesk/helpdesk/internal/shared/authorization"
)

func sessionTestUser(t *testing.T) *user.User {
	t.Helper()
	u, err := user.ReconstructUser(user.UserData{
		ID:           42,
		Username:     "agent",
		Email:        "agent@example.com",
		PasswordHash: "x",
		IsStaff:      true,
		IsActive:     true,
	})
	require.NoError(t, err)
	return u
}

func TestJWTService_IssueAndVerify(t *testing.T) {
	svc := NewJWTService("test-secret", 2)
	u := sessionTestUser(t)

	token, exp, err := svc.Issue(u)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(2*time.Hour), exp, time.Minute)

	claims, err := svc.Verify(token)
	require.NoError(t, err)
	id, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, uint(42), id)
	assert.Equal(t, "agent@example.com", claims.Email)
	assert.Equal(t, authorization.RoleStaff, claims.Role)
	assert.Equal(t, 7200, svc.MaxAgeSeconds())
}

func TestJWTService_VerifyRejects(t *testing.T) {
	svc := NewJWTService("test-secret", 1)
	u := sessionTestUser(t)

	other := NewJWTService("other-secret", 1)
	foreign, _, err := other.Issue(u)
	require.NoError(t, err)

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    sessionIssuer,
			Subject:   "42",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	})
	expiredToken, err := expired.SignedString([]byte("test-secret"))
	require.NoError(t, err)

	wrongIssuer := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "someone-else",
			Subject:   "42",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	wrongIssuerToken, err := wrongIssuer.SignedString([]byte("test-secret"))
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "not.a.token"},
		{"other secret", foreign},
		{"expired", expiredToken},
		{"wrong issuer", wrongIssuerToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Verify(tt.token)
			assert.Error(t, err)
		})
	}
}

func TestClaims_UserID_InvalidSubject(t *testing.T) {
	for _, sub := range []string{"", "0", "abc", "-1"} {
		c := &Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: sub}}
		_, err := c.UserID()
		assert.Error(t, err, sub)
	}
}

package service

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/northwind/salesportal/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const adminPassword = "correct horse battery staple"

func TestLogin_IssuesRoleScopedToken(t *testing.T) {
	s := newTestAuthService(t)
	ctx := context.Background()
	require.NoError(t, s.SetPassword(ctx, model.RoleAdmin, adminPassword))
	require.NoError(t, s.SetPassword(ctx, model.RoleContractor, "field team keys 4 u"))

	tests := []struct {
		role     model.Role
		password string
		lifetime time.Duration
	}{
		{model.RoleAdmin, adminPassword, 2 * time.Hour},
		{model.RoleContractor, "field team keys 4 u", 8 * time.Hour},
	}
	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			before := time.Now()
			session, err := s.Login(ctx, tt.password, string(tt.role))
			require.NoError(t, err)
			assert.WithinDuration(t, before.Add(tt.lifetime), session.ExpiresAt, 2*time.Second)

			principal, err := s.VerifyToken(ctx, session.Token)
			require.NoError(t, err)
			assert.Equal(t, tt.role, principal.Role)
			assert.NotEmpty(t, principal.TokenID)
		})
	}
}

func TestLogin_FailuresAreIndistinguishable(t *testing.T) {
	s := newTestAuthService(t)
	ctx := context.Background()
	require.NoError(t, s.SetPassword(ctx, model.RoleAdmin, adminPassword))

	_, wrongPassword := s.Login(ctx, "not the password at all", "admin")
	_, unprovisioned := s.Login(ctx, adminPassword, "contractor")

	assert.ErrorIs(t, wrongPassword, ErrInvalidCredentials)
	assert.ErrorIs(t, unprovisioned, ErrInvalidCredentials)
	assert.Equal(t, wrongPassword.Error(), unprovisioned.Error())
}

func TestLogin_InvalidInput(t *testing.T) {
	s := newTestAuthService(t)
	ctx := context.Background()

	_, err := s.Login(ctx, adminPassword, "superuser")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = s.Login(ctx, "", "admin")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestVerifyToken_Expired(t *testing.T) {
	s := newTestAuthService(t)
	s.now = func() time.Time { return time.Now().Add(-2*time.Hour - time.Second) }
	session, err := s.IssueSession(model.RoleAdmin)
	require.NoError(t, err)

	s.now = time.Now
	_, err = s.VerifyToken(context.Background(), session.Token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestVerifyToken_Rejects(t *testing.T) {
	s := newTestAuthService(t)
	ctx := context.Background()

	_, err := s.VerifyToken(ctx, "")
	assert.ErrorIs(t, err, ErrMissingToken)

	_, err = s.VerifyToken(ctx, "not.a.jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)

	forged := jwt.NewWithClaims(jwt.SigningMethodHS256, model.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        "x",
			Issuer:    "salesportal",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Role: model.RoleAdmin,
	})
	tok, err := forged.SignedString([]byte("some-other-secret"))
	require.NoError(t, err)
	_, err = s.VerifyToken(ctx, tok)
	assert.ErrorIs(t, err, ErrInvalidToken)

	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, model.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        "x",
			Issuer:    "salesportal",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Role: model.RoleAdmin,
	})
	tok, err = unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = s.VerifyToken(ctx, tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRevoke(t *testing.T) {
	s := newTestAuthService(t)
	ctx := context.Background()

	session, err := s.IssueSession(model.RoleContractor)
	require.NoError(t, err)
	principal, err := s.VerifyToken(ctx, session.Token)
	require.NoError(t, err)

	require.NoError(t, s.Revoke(ctx, principal))

	_, err = s.VerifyToken(ctx, session.Token)
	assert.ErrorIs(t, err, ErrTokenRevoked)

	other, err := s.IssueSession(model.RoleContractor)
	require.NoError(t, err)
	_, err = s.VerifyToken(ctx, other.Token)
	assert.NoError(t, err)
}

func TestSetPassword_RejectsWeak(t *testing.T) {
	s := newTestAuthService(t)
	err := s.SetPassword(context.Background(), model.RoleAdmin, "short")
	assert.ErrorIs(t, err, ErrInvalidInput)

	err = s.SetPassword(context.Background(), model.Role("root"), adminPassword)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

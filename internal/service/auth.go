package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/northwind/salesportal/internal/model"
	"github.com/northwind/salesportal/internal/repository"
	"github.com/northwind/salesportal/internal/validation"
	"golang.org/x/crypto/bcrypt"
)

type AuthService struct {
	credentialRepository repository.CredentialRepository
	revocationRepository repository.RevocationRepository
	jwtSecret            []byte
	issuer               string
	expiry               map[model.Role]time.Duration
	bcryptCost           int
	now                  func() time.Time

	dummyOnce sync.Once
	dummyHash []byte
}

func NewAuthService(
	credentialRepository repository.CredentialRepository,
	revocationRepository repository.RevocationRepository,
	jwtSecret string,
	issuer string,
	adminExpiry time.Duration,
	contractorExpiry time.Duration,
) *AuthService {
	return &AuthService{
		credentialRepository: credentialRepository,
		revocationRepository: revocationRepository,
		jwtSecret:            []byte(jwtSecret),
		issuer:               issuer,
		expiry: map[model.Role]time.Duration{
			model.RoleAdmin:      adminExpiry,
			model.RoleContractor: contractorExpiry,
		},
		bcryptCost: bcrypt.DefaultCost,
		now:        time.Now,
	}
}

// Login verifies password against the stored hash for role and issues a
// session token. A role with no provisioned hash fails exactly like a wrong
// password, including the time spent comparing.
func (s *AuthService) Login(ctx context.Context, password, role string) (*model.Session, error) {
	r, ok := model.ParseRole(role)
	if !ok {
		return nil, invalid("role must be contractor or admin")
	}
	if password == "" {
		return nil, invalid("password is required")
	}

	cred, err := s.credentialRepository.ByKey(ctx, r.CredentialKey())
	if errors.Is(err, repository.ErrCredentialNotFound) {
		_ = bcrypt.CompareHashAndPassword(s.dummy(), []byte(password))
		slog.Warn("login attempted for unprovisioned role", "role", r)
		return nil, fmt.Errorf("invalid credentials: %w", ErrInvalidCredentials)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load credential: %w", err)
	}

	err = bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return nil, fmt.Errorf("invalid credentials: %w", ErrInvalidCredentials)
	}
	if err != nil {
		return nil, fmt.Errorf("stored hash for %s is unusable: %w", r, err)
	}

	return s.IssueSession(r)
}

// IssueSession signs a token for role with the role's lifetime.
func (s *AuthService) IssueSession(role model.Role) (*model.Session, error) {
	expiry, ok := s.expiry[role]
	if !ok {
		return nil, fmt.Errorf("no session lifetime for role %q", role)
	}

	now := s.now()
	expiresAt := now.Add(expiry)
	claims := model.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    s.issuer,
			Subject:   role.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Role: role,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	// NumericDate truncates to seconds; report what the token actually says.
	return &model.Session{Token: tokenString, ExpiresAt: claims.ExpiresAt.Time.UTC()}, nil
}

// VerifyToken checks signature, issuer, expiry, role and the revocation list.
func (s *AuthService) VerifyToken(ctx context.Context, tokenString string) (*model.Principal, error) {
	if tokenString == "" {
		return nil, ErrMissingToken
	}

	claims := &model.Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		return s.jwtSecret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if errors.Is(err, jwt.ErrTokenExpired) {
		return nil, ErrTokenExpired
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if !claims.Role.IsValid() || claims.ID == "" {
		return nil, ErrInvalidToken
	}

	revoked, err := s.revocationRepository.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check revocation: %w", err)
	}
	if revoked {
		return nil, ErrTokenRevoked
	}

	return &model.Principal{
		Role:      claims.Role,
		TokenID:   claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// Revoke denylists the principal's token until it would have expired anyway.
func (s *AuthService) Revoke(ctx context.Context, principal *model.Principal) error {
	err := s.revocationRepository.Revoke(ctx, principal.TokenID, principal.ExpiresAt)
	if err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	slog.Info("session revoked", "role", principal.Role, "token_id", principal.TokenID)
	return nil
}

// SetPassword provisions the password hash for role.
func (s *AuthService) SetPassword(ctx context.Context, role model.Role, password string) error {
	if !role.IsValid() {
		return invalid("role must be contractor or admin")
	}

	err := validation.ValidatePassword(password)
	if err != nil {
		return invalid(err.Error())
	}

	hash, err := s.HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	return s.credentialRepository.Put(ctx, &model.Credential{
		Key:          role.CredentialKey(),
		PasswordHash: hash,
		UpdatedAt:    s.now().UTC(),
	})
}

// PurgeRevocations drops denylist rows for tokens that have expired anyway.
func (s *AuthService) PurgeRevocations(ctx context.Context) (int64, error) {
	return s.revocationRepository.PurgeExpired(ctx)
}

func (s *AuthService) HashPassword(password string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hashedBytes), nil
}

func (s *AuthService) dummy() []byte {
	s.dummyOnce.Do(func() {
		h, err := bcrypt.GenerateFromPassword([]byte(uuid.NewString()), s.bcryptCost)
		if err != nil {
			slog.Error("failed to generate dummy hash", "error", err)
			return
		}
		s.dummyHash = h
	})
	return s.dummyHash
}

package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/docsift/docsift-api/internal/config"
	"github.com/docsift/docsift-api/internal/platform/logger"
)

// apiKey is one configured key hash with the owner it authenticates.
type apiKey struct {
	ownerID uuid.UUID
	hash    []byte
}

// Authenticator verifies request credentials against the configured schemes:
// HMAC-signed JWTs carrying the owner id, and API keys checked against
// bcrypt hashes. Either scheme may be left unconfigured.
type Authenticator struct {
	signingKey []byte
	apiKeys    []apiKey
	timeFunc   func() time.Time // Injectable for testing
	clockSkew  time.Duration
}

// ownerClaims defines the structure of JWT claims we use.
type ownerClaims struct {
	OwnerID uuid.UUID `json:"uid"`
	jwt.RegisteredClaims
}

// New creates an Authenticator from the auth configuration. Owner ids in the
// API key table must be valid UUIDs; config validation guarantees the shape,
// this re-parses them into their typed form.
func New(cfg config.AuthConfig) (*Authenticator, error) {
	if cfg.JWTSecret != "" && len(cfg.JWTSecret) < 32 {
		return nil, fmt.Errorf("jwt secret must be at least 32 characters")
	}

	keys := make([]apiKey, 0, len(cfg.APIKeys))
	for _, k := range cfg.APIKeys {
		ownerID, err := uuid.Parse(k.OwnerID)
		if err != nil {
			return nil, fmt.Errorf("invalid api key owner id %q: %w", k.OwnerID, err)
		}
		keys = append(keys, apiKey{ownerID: ownerID, hash: []byte(k.KeyHash)})
	}

	return &Authenticator{
		signingKey: []byte(cfg.JWTSecret),
		apiKeys:    keys,
		timeFunc:   time.Now,
		clockSkew:  2 * time.Minute,
	}, nil
}

// ResolveOwner authenticates the value of an Authorization header's bearer
// credential. A credential with the three-part JWT shape is validated as a
// token; anything else is checked as an API key.
func (a *Authenticator) ResolveOwner(ctx context.Context, credential string) (uuid.UUID, error) {
	credential = strings.TrimSpace(credential)
	if credential == "" {
		return uuid.Nil, ErrNoCredentials
	}

	if strings.Count(credential, ".") == 2 {
		return a.ValidateToken(ctx, credential)
	}
	return a.VerifyAPIKey(ctx, credential)
}

// ValidateToken validates an HMAC-signed JWT and returns the owner id it
// carries. Returns ErrExpiredToken for expired tokens and ErrInvalidToken
// for any other validation failure.
func (a *Authenticator) ValidateToken(ctx context.Context, tokenString string) (uuid.UUID, error) {
	log := logger.FromContext(ctx)

	if len(a.signingKey) == 0 {
		return uuid.Nil, ErrInvalidToken
	}

	claims := &ownerClaims{}
	token, err := jwt.ParseWithClaims(
		tokenString,
		claims,
		func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return a.signingKey, nil
		},
		jwt.WithTimeFunc(a.timeFunc),
		jwt.WithLeeway(a.clockSkew),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return uuid.Nil, ErrExpiredToken
		}
		log.Debug("token validation failed", "error", err)
		return uuid.Nil, ErrInvalidToken
	}

	if !token.Valid || claims.OwnerID == uuid.Nil {
		return uuid.Nil, ErrInvalidToken
	}

	return claims.OwnerID, nil
}

// VerifyAPIKey checks a presented key against the configured bcrypt hashes
// and returns the owner the matching key authenticates. The comparison walks
// the full configured key list, which is expected to stay small.
func (a *Authenticator) VerifyAPIKey(ctx context.Context, key string) (uuid.UUID, error) {
	log := logger.FromContext(ctx)

	for _, k := range a.apiKeys {
		if bcrypt.CompareHashAndPassword(k.hash, []byte(key)) == nil {
			return k.ownerID, nil
		}
	}

	log.Debug("api key matched no configured hash")
	return uuid.Nil, ErrInvalidAPIKey
}

// GenerateToken creates a signed JWT for the given owner, valid for the
// given lifetime. Used by operational tooling to mint caller tokens.
func (a *Authenticator) GenerateToken(ownerID uuid.UUID, lifetime time.Duration) (string, error) {
	if len(a.signingKey) == 0 {
		return "", fmt.Errorf("jwt signing is not configured")
	}

	now := a.timeFunc()
	claims := ownerClaims{
		OwnerID: ownerID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   ownerID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(lifetime)),
			ID:        uuid.New().String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(a.signingKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, nil
}

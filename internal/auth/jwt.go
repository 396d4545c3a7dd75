// Package auth holds the credential manager (password credentials and
// bearer tokens) and the HTTP access guard built on top of it.
//
// TOKEN SHAPE:
//
//	{"user_id": 7, "email": "a@x.com", "exp": ..., "iat": ..., "iss": ..., "jti": ...}
//
// Tokens are HS256-signed with the server secret and expire after the
// configured TTL (30 minutes by default). The jti is a fresh xid, so two
// tokens issued in the same second for the same user still differ.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/xid"
)

// ErrInvalidToken is the only error Verify returns. Expired, tampered,
// wrongly signed and incomplete tokens all collapse into it.
var ErrInvalidToken = errors.New("auth: invalid token")

// DefaultTokenTTL is used when NewTokenService receives a zero TTL.
const DefaultTokenTTL = 30 * time.Minute

const minSecretLength = 16

// Claims is the token payload.
type Claims struct {
	UserID int64  `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// Validate is called by the jwt parser after the registered-claim checks.
// A token without an identity is useless to the access guard.
func (c Claims) Validate() error {
	if c.UserID <= 0 {
		return errors.New("missing user_id claim")
	}
	if c.Email == "" {
		return errors.New("missing email claim")
	}
	return nil
}

// TokenService issues and verifies bearer tokens.
// It is read-only after construction and safe for concurrent use.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	issuer string
}

// NewTokenService creates a TokenService. The secret should be at least 32
// random bytes in production (openssl rand -hex 32).
func NewTokenService(secret string, ttl time.Duration, issuer string) (*TokenService, error) {
	if len(secret) < minSecretLength {
		return nil, fmt.Errorf("auth: token secret must be at least %d characters", minSecretLength)
	}
	if ttl == 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenService{secret: []byte(secret), ttl: ttl, issuer: issuer}, nil
}

// TTL reports the lifetime given to tokens by Issue.
func (s *TokenService) TTL() time.Duration {
	return s.ttl
}

// Issue signs a token for the user with the service's default TTL.
func (s *TokenService) Issue(userID int64, email string) (string, error) {
	return s.IssueWithTTL(userID, email, s.ttl)
}

// IssueWithTTL signs a token expiring ttl from now. A negative ttl yields
// an already-expired token, which tests use.
func (s *TokenService) IssueWithTTL(userID int64, email string, ttl time.Duration) (string, error) {
	now := time.Now()

	c := Claims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        xid.New().String(),
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}
	return signed, nil
}

// Verify checks signature, algorithm, issuer, expiry and the identity
// claims. On any failure it returns ErrInvalidToken.
func (s *TokenService) Verify(tokenStr string) (*Claims, error) {
	if tokenStr == "" {
		return nil, ErrInvalidToken
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}

	c := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, c, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	}, opts...)
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	return c, nil
}

// Package auth resolves who is calling Agora.
//
// A TokenCodec signs and verifies bearer tokens, a Resolver turns request
// headers into an Identity (or Anonymous), and Middleware packages the result
// into the per-request context consumed by operation handlers.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/prn-tf/agora/internal/domain"
)

// DefaultTokenTTL is how long an issued token stays valid.
const DefaultTokenTTL = time.Hour

// Claims is the payload of an Agora bearer token.
type Claims struct {
	// UserID is the identity the token was issued to.
	UserID string `json:"id"`
	jwt.RegisteredClaims
}

// TokenCodec issues and verifies HMAC-SHA256 signed bearer tokens.
// It holds no mutable state and is safe for concurrent use.
type TokenCodec struct {
	secret []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

// CodecOption configures a TokenCodec.
type CodecOption func(*TokenCodec)

// WithTTL overrides DefaultTokenTTL.
func WithTTL(ttl time.Duration) CodecOption {
	return func(c *TokenCodec) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithIssuer sets the iss claim on issued tokens and requires it on verification.
func WithIssuer(issuer string) CodecOption {
	return func(c *TokenCodec) { c.issuer = issuer }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) CodecOption {
	return func(c *TokenCodec) { c.now = now }
}

// NewTokenCodec creates a codec signing with secret.
func NewTokenCodec(secret []byte, opts ...CodecOption) (*TokenCodec, error) {
	if len(secret) == 0 {
		return nil, errors.New("token signing secret must not be empty")
	}

	c := &TokenCodec{
		secret: secret,
		ttl:    DefaultTokenTTL,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// TTL returns the lifetime given to issued tokens.
func (c *TokenCodec) TTL() time.Duration {
	return c.ttl
}

// Issue signs a token for identityID that expires TTL after now.
// iat and exp are whole seconds, so tokens issued for the same identity
// within one second are identical.
func (c *TokenCodec) Issue(identityID string) (string, error) {
	now := c.now()
	claims := Claims{
		UserID: identityID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    c.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify checks the signature and expiry of token and returns its claims.
// It fails with domain.ErrExpiredToken when now is at or past expiry and with
// domain.ErrInvalidToken for every other defect. The signature is checked
// before expiry, so a tampered expired token is invalid, not expired.
func (c *TokenCodec) Verify(token string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	}
	if c.issuer != "" {
		opts = append(opts, jwt.WithIssuer(c.issuer))
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return c.secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: %v", domain.ErrExpiredToken, err)
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidToken, err)
	}

	if !parsed.Valid || claims.UserID == "" {
		return nil, fmt.Errorf("%w: missing identity claim", domain.ErrInvalidToken)
	}

	return claims, nil
}

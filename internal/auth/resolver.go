package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/prn-tf/agora/internal/domain"
)

// Resolution outcomes, reported to a ResolutionRecorder.
const (
	OutcomeAnonymous    = "anonymous"
	OutcomeResolved     = "resolved"
	OutcomeInvalidToken = "invalid_token"
	OutcomeExpiredToken = "expired_token"
	OutcomeUnknownUser  = "unknown_user"
	OutcomeLookupError  = "lookup_error"
)

// UserFinder looks up users by identifier.
type UserFinder interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
}

// ResolutionRecorder observes the outcome of every resolution.
type ResolutionRecorder interface {
	RecordIdentityResolution(outcome string)
}

// Resolver turns an Authorization header into an Identity.
// It never fails: every problem degrades to Anonymous.
type Resolver struct {
	codec    *TokenCodec
	users    UserFinder
	recorder ResolutionRecorder
	logger   zerolog.Logger
}

// NewResolver creates a resolver. recorder may be nil.
func NewResolver(codec *TokenCodec, users UserFinder, recorder ResolutionRecorder, logger zerolog.Logger) *Resolver {
	return &Resolver{
		codec:    codec,
		users:    users,
		recorder: recorder,
		logger:   logger.With().Str("component", "identity_resolver").Logger(),
	}
}

// Resolve returns the identity carried by the Authorization header, or Anonymous.
func (r *Resolver) Resolve(ctx context.Context, header http.Header) Identity {
	identity, outcome := r.resolve(ctx, header)
	if r.recorder != nil {
		r.recorder.RecordIdentityResolution(outcome)
	}
	return identity
}

func (r *Resolver) resolve(ctx context.Context, header http.Header) (Identity, string) {
	token, ok := BearerToken(header)
	if !ok {
		return Anonymous(), OutcomeAnonymous
	}

	claims, err := r.codec.Verify(token)
	if err != nil {
		outcome := OutcomeInvalidToken
		if errors.Is(err, domain.ErrExpiredToken) {
			outcome = OutcomeExpiredToken
		}
		r.logger.Debug().Err(err).Str("outcome", outcome).Msg("bearer token rejected")
		return Anonymous(), outcome
	}

	user, err := r.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			r.logger.Debug().Str("user_id", claims.UserID).Msg("token refers to unknown user")
			return Anonymous(), OutcomeUnknownUser
		}
		r.logger.Warn().Err(err).Str("user_id", claims.UserID).Msg("user lookup failed during identity resolution")
		return Anonymous(), OutcomeLookupError
	}

	var issuedAt time.Time
	if claims.IssuedAt != nil {
		issuedAt = claims.IssuedAt.Time
	}
	return Resolved(user, issuedAt), OutcomeResolved
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header.
// The scheme is matched case-insensitively.
func BearerToken(header http.Header) (string, bool) {
	value := strings.TrimSpace(header.Get("Authorization"))
	if value == "" {
		return "", false
	}

	scheme, token, found := strings.Cut(value, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}

	token = strings.TrimSpace(token)
	if token == "" {
		return "", false
	}
	return token, true
}

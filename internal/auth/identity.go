package auth

import (
	"time"

	"github.com/prn-tf/agora/internal/domain"
)

// Identity is the caller of a request: either resolved to a user or anonymous.
// The zero value is anonymous. An Identity is never partially populated.
type Identity struct {
	user     *domain.User
	issuedAt time.Time
}

// Anonymous returns the identity of a caller without a usable token.
func Anonymous() Identity {
	return Identity{}
}

// Resolved returns the identity of user, authenticated by a token issued at issuedAt.
// A nil user yields Anonymous.
func Resolved(user *domain.User, issuedAt time.Time) Identity {
	if user == nil {
		return Anonymous()
	}
	return Identity{user: user, issuedAt: issuedAt}
}

// IsAnonymous reports whether no user was resolved.
func (i Identity) IsAnonymous() bool {
	return i.user == nil
}

// User returns the resolved user and true, or nil and false when anonymous.
func (i Identity) User() (*domain.User, bool) {
	return i.user, i.user != nil
}

// UserID returns the resolved user's identifier, or "" when anonymous.
func (i Identity) UserID() string {
	if i.user == nil {
		return ""
	}
	return i.user.ID
}

// IssuedAt returns the issue time of the token that produced this identity.
func (i Identity) IssuedAt() time.Time {
	return i.issuedAt
}

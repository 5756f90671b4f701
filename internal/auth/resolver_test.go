package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prn-tf/agora/internal/domain"
)

type mockUserFinder struct {
	users map[string]*domain.User
	err   error
}

func (m *mockUserFinder) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, domain.ErrUserNotFound
}

type recordingRecorder struct {
	mu       sync.Mutex
	outcomes []string
}

func (r *recordingRecorder) RecordIdentityResolution(outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes = append(r.outcomes, outcome)
}

func headerWith(value string) http.Header {
	h := http.Header{}
	if value != "" {
		h.Set("Authorization", value)
	}
	return h
}

func TestResolver_Resolve(t *testing.T) {
	kay := &domain.User{ID: "user-1", Username: "kay", Email: "kay@x.com", Role: domain.RoleUser}
	codec, clock := newTestCodec(t)
	issuedAt := clock.now

	valid, err := codec.Issue("user-1")
	require.NoError(t, err)
	ghost, err := codec.Issue("deleted-user")
	require.NoError(t, err)

	expiredCodec, expiredClock := newTestCodec(t)
	expiredClock.now = expiredClock.now.Add(-2 * time.Hour)
	expired, err := expiredCodec.Issue("user-1")
	require.NoError(t, err)

	tests := []struct {
		name        string
		header      string
		finderErr   error
		wantUser    string
		wantOutcome string
	}{
		{name: "no header", header: "", wantOutcome: OutcomeAnonymous},
		{name: "basic scheme", header: "Basic dXNlcjpwYXNz", wantOutcome: OutcomeAnonymous},
		{name: "bearer without token", header: "Bearer ", wantOutcome: OutcomeAnonymous},
		{name: "bare token", header: valid, wantOutcome: OutcomeAnonymous},
		{name: "malformed token", header: "Bearer not.a.token", wantOutcome: OutcomeInvalidToken},
		{name: "expired token", header: "Bearer " + expired, wantOutcome: OutcomeExpiredToken},
		{name: "unknown user", header: "Bearer " + ghost, wantOutcome: OutcomeUnknownUser},
		{name: "store failure", header: "Bearer " + valid, finderErr: errors.New("db down"), wantOutcome: OutcomeLookupError},
		{name: "valid token", header: "Bearer " + valid, wantUser: "user-1", wantOutcome: OutcomeResolved},
		{name: "lowercase scheme", header: "bearer " + valid, wantUser: "user-1", wantOutcome: OutcomeResolved},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			finder := &mockUserFinder{users: map[string]*domain.User{"user-1": kay}, err: tt.finderErr}
			recorder := &recordingRecorder{}
			resolver := NewResolver(codec, finder, recorder, zerolog.Nop())

			var identity Identity
			require.NotPanics(t, func() {
				identity = resolver.Resolve(context.Background(), headerWith(tt.header))
			})

			assert.Equal(t, []string{tt.wantOutcome}, recorder.outcomes)
			if tt.wantUser == "" {
				assert.True(t, identity.IsAnonymous())
				assert.Empty(t, identity.UserID())
				assert.True(t, identity.IssuedAt().IsZero())
				return
			}

			user, ok := identity.User()
			require.True(t, ok)
			assert.Equal(t, tt.wantUser, user.ID)
			assert.True(t, identity.IssuedAt().Equal(issuedAt))
		})
	}
}

func TestResolver_NilRecorder(t *testing.T) {
	codec, _ := newTestCodec(t)
	resolver := NewResolver(codec, &mockUserFinder{}, nil, zerolog.Nop())

	identity := resolver.Resolve(context.Background(), headerWith("Bearer junk"))
	assert.True(t, identity.IsAnonymous())
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
		ok     bool
	}{
		{header: "", ok: false},
		{header: "Bearer abc", want: "abc", ok: true},
		{header: "BEARER abc", want: "abc", ok: true},
		{header: "  Bearer   abc  ", want: "abc", ok: true},
		{header: "Bearer", ok: false},
		{header: "Token abc", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			got, ok := BearerToken(headerWith(tt.header))
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIdentity(t *testing.T) {
	assert.True(t, Anonymous().IsAnonymous())
	assert.True(t, Identity{}.IsAnonymous())
	assert.True(t, Resolved(nil, time.Now()).IsAnonymous())

	user := &domain.User{ID: "u"}
	id := Resolved(user, time.Unix(100, 0))
	assert.False(t, id.IsAnonymous())
	assert.Equal(t, "u", id.UserID())
}

func TestMiddleware(t *testing.T) {
	kay := &domain.User{ID: "user-1", Username: "kay"}
	codec, _ := newTestCodec(t)
	token, err := codec.Issue("user-1")
	require.NoError(t, err)

	resolver := NewResolver(codec, &mockUserFinder{users: map[string]*domain.User{"user-1": kay}}, nil, zerolog.Nop())

	var seen []*RequestContext
	handler := middleware.RequestID(Middleware(resolver)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, FromContext(r.Context()))
		w.WriteHeader(http.StatusNoContent)
	})))

	for _, header := range []string{"Bearer " + token, "", "Bearer broken"} {
		req := httptest.NewRequest(http.MethodPost, "/query", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNoContent, rec.Code, "resolution must never fail the request")
	}

	require.Len(t, seen, 3)
	assert.Equal(t, "user-1", seen[0].Identity.UserID())
	assert.True(t, seen[1].Identity.IsAnonymous())
	assert.True(t, seen[2].Identity.IsAnonymous())

	assert.NotSame(t, seen[0], seen[1])
	for _, rc := range seen {
		assert.NotEmpty(t, rc.RequestID)
	}
}

func TestFromContext_Missing(t *testing.T) {
	rc := FromContext(context.Background())
	require.NotNil(t, rc)
	assert.True(t, rc.Identity.IsAnonymous())
}

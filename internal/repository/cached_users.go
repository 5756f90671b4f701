package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/prn-tf/agora/internal/domain"
)

// cachedUser is the cached form of a user. The password hash is never cached.
type cachedUser struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// cachedUserRepository decorates a UserRepository with a read-through cache
// for GetByID. Users are never updated, so entries only leave by TTL.
type cachedUserRepository struct {
	UserRepository
	cache  Cache
	ttl    time.Duration
	keys   CacheKey
	logger zerolog.Logger
}

// NewCachedUserRepository wraps users so that GetByID consults cache first.
// Cache failures fall through to the underlying repository.
func NewCachedUserRepository(users UserRepository, cache Cache, ttl time.Duration, logger zerolog.Logger) UserRepository {
	return &cachedUserRepository{
		UserRepository: users,
		cache:          cache,
		ttl:            ttl,
		logger:         logger.With().Str("component", "user_cache").Logger(),
	}
}

// GetByID returns the user from cache when present, otherwise loads and caches it.
// Users returned from this method carry no password hash.
func (r *cachedUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	key := r.keys.UserByID(id)

	data, err := r.cache.Get(ctx, key)
	if err == nil {
		var cu cachedUser
		if err := json.Unmarshal(data, &cu); err == nil {
			return &domain.User{
				ID:        cu.ID,
				Username:  cu.Username,
				Email:     cu.Email,
				Role:      cu.Role,
				CreatedAt: cu.CreatedAt,
			}, nil
		}
		r.logger.Warn().Str("key", key).Msg("discarding undecodable cache entry")
	} else if !errors.Is(err, ErrCacheMiss) {
		r.logger.Warn().Err(err).Str("key", key).Msg("cache read failed")
	}

	user, err := r.UserRepository.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	data, err = json.Marshal(cachedUser{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		Role:      user.Role,
		CreatedAt: user.CreatedAt,
	})
	if err == nil {
		if err := r.cache.Set(ctx, key, data, r.ttl); err != nil {
			r.logger.Warn().Err(err).Str("key", key).Msg("cache write failed")
		}
	}

	public := *user
	public.PasswordHash = ""
	return &public, nil
}

var _ UserRepository = (*cachedUserRepository)(nil)

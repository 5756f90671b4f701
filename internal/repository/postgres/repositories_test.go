package postgres

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prn-tf/agora/internal/config"
	"github.com/prn-tf/agora/internal/domain"
)

// These tests need a disposable database: AGORA_TEST_POSTGRES_URL=postgres://...
func newTestDB(t *testing.T) *DB {
	t.Helper()
	url := os.Getenv("AGORA_TEST_POSTGRES_URL")
	if url == "" {
		t.Skip("AGORA_TEST_POSTGRES_URL not set")
	}

	ctx := context.Background()
	db, err := NewDB(ctx, config.DatabaseConfig{
		Driver:       "postgres",
		URL:          url,
		MaxOpenConns: 4,
		MaxIdleConns: 1,
	}, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, db.Migrate(ctx))
	return db
}

func TestRepositories_RoundTrip(t *testing.T) {
	ctx := context.Background()
	repos := NewRepositories(newTestDB(t))

	suffix := uuid.NewString()[:8]
	user := domain.NewUser(uuid.NewString(), "kay-"+suffix, "kay-"+suffix+"@x.com", "digest")
	require.NoError(t, repos.User.Create(ctx, user))

	got, err := repos.User.GetByEmail(ctx, user.Email)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	dup := domain.NewUser(uuid.NewString(), "other-"+suffix, user.Email, "digest")
	assert.True(t, errors.Is(repos.User.Create(ctx, dup), domain.ErrUserAlreadyExists))

	topic := domain.NewTopic(uuid.NewString(), "Music", "desc", user.ID)
	require.NoError(t, repos.Topic.Create(ctx, topic))

	err = repos.Post.Create(ctx, domain.NewPost(uuid.NewString(), "t", "c", uuid.NewString(), user.ID))
	assert.True(t, errors.Is(err, domain.ErrReferenceNotFound))

	post := domain.NewPost(uuid.NewString(), "t", "c", topic.ID, user.ID)
	require.NoError(t, repos.Post.Create(ctx, post))

	posts, err := repos.Post.ListByTopic(ctx, topic.ID)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, post.ID, posts[0].ID)

	require.NoError(t, repos.Comment.Create(ctx, domain.NewComment(uuid.NewString(), "hi", post.ID, user.ID)))
	comments, err := repos.Comment.ListByPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Len(t, comments, 1)
}

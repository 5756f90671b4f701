package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/prn-tf/agora/internal/domain"
	"github.com/prn-tf/agora/internal/repository"
)

// postRepository implements repository.PostRepository for PostgreSQL.
type postRepository struct {
	db *DB
}

// NewPostRepository creates a new PostgreSQL post repository.
func NewPostRepository(db *DB) repository.PostRepository {
	return &postRepository{db: db}
}

// Create creates a new post.
func (r *postRepository) Create(ctx context.Context, post *domain.Post) error {
	query := `
		INSERT INTO posts (id, title, content, created_by, topic_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.Pool.Exec(ctx, query,
		post.ID,
		post.Title,
		post.Content,
		post.CreatedBy,
		post.TopicID,
		post.CreatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: topic %s or creator %s", domain.ErrReferenceNotFound, post.TopicID, post.CreatedBy)
		}
		return fmt.Errorf("failed to create post: %w", err)
	}

	return nil
}

// ListByTopic returns the posts of a topic.
func (r *postRepository) ListByTopic(ctx context.Context, topicID string) ([]*domain.Post, error) {
	// Column order matches the field order of domain.Post.
	query := `
		SELECT id, title, content, created_by, topic_id, created_at
		FROM posts
		WHERE topic_id = $1
		ORDER BY created_at, id
	`

	rows, err := r.db.Pool.Query(ctx, query, topicID)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}

	posts, err := pgx.CollectRows(rows, pgx.RowToAddrOfStructByPos[domain.Post])
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	for _, p := range posts {
		p.CreatedAt = p.CreatedAt.UTC()
	}
	return posts, nil
}

var _ repository.PostRepository = (*postRepository)(nil)

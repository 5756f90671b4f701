package sqlite

import (
	"context"
	"fmt"

	"github.com/prn-tf/agora/internal/domain"
	"github.com/prn-tf/agora/internal/repository"
)

// postRepository implements repository.PostRepository for SQLite.
type postRepository struct {
	db *DB
}

// NewPostRepository creates a new SQLite post repository.
func NewPostRepository(db *DB) repository.PostRepository {
	return &postRepository{db: db}
}

// Create creates a new post.
func (r *postRepository) Create(ctx context.Context, post *domain.Post) error {
	query := `
		INSERT INTO posts (id, title, content, created_by, topic_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		post.ID,
		post.Title,
		post.Content,
		post.CreatedBy,
		post.TopicID,
		formatTime(post.CreatedAt),
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
	query := `
		SELECT id, title, content, created_by, topic_id, created_at
		FROM posts
		WHERE topic_id = ?
		ORDER BY created_at, id
	`

	rows, err := r.db.QueryContext(ctx, query, topicID)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	defer rows.Close()

	posts := make([]*domain.Post, 0)
	for rows.Next() {
		post := &domain.Post{}
		var createdAt string
		if err := rows.Scan(
			&post.ID,
			&post.Title,
			&post.Content,
			&post.CreatedBy,
			&post.TopicID,
			&createdAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}
		post.CreatedAt = parseTime(createdAt)
		posts = append(posts, post)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate posts: %w", err)
	}

	return posts, nil
}

var _ repository.PostRepository = (*postRepository)(nil)

package sqlite

import (
	"context"
	"fmt"

	"github.com/prn-tf/agora/internal/domain"
	"github.com/prn-tf/agora/internal/repository"
)

// commentRepository implements repository.CommentRepository for SQLite.
type commentRepository struct {
	db *DB
}

// NewCommentRepository creates a new SQLite comment repository.
func NewCommentRepository(db *DB) repository.CommentRepository {
	return &commentRepository{db: db}
}

// Create creates a new comment.
func (r *commentRepository) Create(ctx context.Context, comment *domain.Comment) error {
	query := `
		INSERT INTO comments (id, content, created_by, post_id, created_at)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		comment.ID,
		comment.Content,
		comment.CreatedBy,
		comment.PostID,
		formatTime(comment.CreatedAt),
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: post %s or creator %s", domain.ErrReferenceNotFound, comment.PostID, comment.CreatedBy)
		}
		return fmt.Errorf("failed to create comment: %w", err)
	}

	return nil
}

// ListByPost returns the comments of a post.
func (r *commentRepository) ListByPost(ctx context.Context, postID string) ([]*domain.Comment, error) {
	query := `
		SELECT id, content, created_by, post_id, created_at
		FROM comments
		WHERE post_id = ?
		ORDER BY created_at, id
	`

	rows, err := r.db.QueryContext(ctx, query, postID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	defer rows.Close()

	comments := make([]*domain.Comment, 0)
	for rows.Next() {
		comment := &domain.Comment{}
		var createdAt string
		if err := rows.Scan(
			&comment.ID,
			&comment.Content,
			&comment.CreatedBy,
			&comment.PostID,
			&createdAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		comment.CreatedAt = parseTime(createdAt)
		comments = append(comments, comment)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate comments: %w", err)
	}

	return comments, nil
}

var _ repository.CommentRepository = (*commentRepository)(nil)

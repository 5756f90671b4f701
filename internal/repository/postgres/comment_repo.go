package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/prn-tf/agora/internal/domain"
	"github.com/prn-tf/agora/internal/repository"
)

// commentRepository implements repository.CommentRepository for PostgreSQL.
type commentRepository struct {
	db *DB
}

// NewCommentRepository creates a new PostgreSQL comment repository.
func NewCommentRepository(db *DB) repository.CommentRepository {
	return &commentRepository{db: db}
}

// Create creates a new comment.
func (r *commentRepository) Create(ctx context.Context, comment *domain.Comment) error {
	query := `
		INSERT INTO comments (id, content, created_by, post_id, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.Pool.Exec(ctx, query,
		comment.ID,
		comment.Content,
		comment.CreatedBy,
		comment.PostID,
		comment.CreatedAt,
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
	// Column order matches the field order of domain.Comment.
	query := `
		SELECT id, content, created_by, post_id, created_at
		FROM comments
		WHERE post_id = $1
		ORDER BY created_at, id
	`

	rows, err := r.db.Pool.Query(ctx, query, postID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}

	comments, err := pgx.CollectRows(rows, pgx.RowToAddrOfStructByPos[domain.Comment])
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	for _, c := range comments {
		c.CreatedAt = c.CreatedAt.UTC()
	}
	return comments, nil
}

var _ repository.CommentRepository = (*commentRepository)(nil)

package service

import (
	"context"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/prn-tf/agora/internal/domain"
	"github.com/prn-tf/agora/internal/repository"
)

// CommentService handles comments and replies.
type CommentService struct {
	commentRepo repository.CommentRepository
	logger      zerolog.Logger
}

// NewCommentService creates a new CommentService.
func NewCommentService(commentRepo repository.CommentRepository, logger zerolog.Logger) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		logger:      logger.With().Str("service", "comment").Logger(),
	}
}

// CommentInput contains the caller-supplied fields of a comment or reply.
type CommentInput struct {
	Content string `json:"content"`
	PostID  string `json:"postId"`
}

// Validate checks that every field is present.
func (in CommentInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Content, validation.Required),
		validation.Field(&in.PostID, validation.Required),
	)
}

// Create stores a comment on input.PostID authored by creatorID.
func (s *CommentService) Create(ctx context.Context, creatorID string, input CommentInput) (*domain.Comment, error) {
	return s.create(ctx, creatorID, input, "comment created")
}

// Reply stores a reply. Replies carry no parent reference and are stored
// exactly like comments on input.PostID.
func (s *CommentService) Reply(ctx context.Context, creatorID string, input CommentInput) (*domain.Comment, error) {
	return s.create(ctx, creatorID, input, "reply created")
}

func (s *CommentService) create(ctx context.Context, creatorID string, input CommentInput, msg string) (*domain.Comment, error) {
	if err := validationError(input.Validate()); err != nil {
		return nil, err
	}

	comment := domain.NewComment(uuid.NewString(), input.Content, input.PostID, creatorID)
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, creationFailure(s.logger, "comment", err)
	}

	s.logger.Info().
		Str("comment_id", comment.ID).
		Str("post_id", comment.PostID).
		Str("created_by", comment.CreatedBy).
		Msg(msg)

	return comment, nil
}

// ListByPost returns the comments and replies of a post.
func (s *CommentService) ListByPost(ctx context.Context, postID string) ([]*domain.Comment, error) {
	comments, err := s.commentRepo.ListByPost(ctx, postID)
	if err != nil {
		s.logger.Error().Err(err).Str("post_id", postID).Msg("failed to list comments")
		return nil, fmt.Errorf("%w: %v", domain.ErrInternal, err)
	}
	return comments, nil
}

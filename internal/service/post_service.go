package service

import (
	"context"
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/prn-tf/agora/internal/domain"
	"github.com/prn-tf/agora/internal/repository"
)

// PostService handles post creation and listing.
type PostService struct {
	postRepo repository.PostRepository
	logger   zerolog.Logger
}

// NewPostService creates a new PostService.
func NewPostService(postRepo repository.PostRepository, logger zerolog.Logger) *PostService {
	return &PostService{
		postRepo: postRepo,
		logger:   logger.With().Str("service", "post").Logger(),
	}
}

// PostInput contains the fields of a new post.
// CreatedBy is taken from the caller as given, not from the signed-in identity.
type PostInput struct {
	Title     string `json:"title"`
	Content   string `json:"content"`
	TopicID   string `json:"topicId"`
	CreatedBy string `json:"createdBy"`
}

// Validate checks that every field is present.
func (in PostInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Title, validation.Required),
		validation.Field(&in.Content, validation.Required),
		validation.Field(&in.TopicID, validation.Required),
		validation.Field(&in.CreatedBy, validation.Required),
	)
}

// Create stores a post in input.TopicID authored by input.CreatedBy.
// A topic or author that does not exist fails with domain.ErrCreation and
// nothing is stored.
func (s *PostService) Create(ctx context.Context, input PostInput) (*domain.Post, error) {
	input.Title = strings.TrimSpace(input.Title)

	if err := validationError(input.Validate()); err != nil {
		return nil, err
	}

	post := domain.NewPost(uuid.NewString(), input.Title, input.Content, input.TopicID, input.CreatedBy)
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, creationFailure(s.logger, "post", err)
	}

	s.logger.Info().
		Str("post_id", post.ID).
		Str("topic_id", post.TopicID).
		Str("created_by", post.CreatedBy).
		Msg("post created")

	return post, nil
}

// ListByTopic returns the posts of a topic. An unknown topic has no posts.
func (s *PostService) ListByTopic(ctx context.Context, topicID string) ([]*domain.Post, error) {
	posts, err := s.postRepo.ListByTopic(ctx, topicID)
	if err != nil {
		s.logger.Error().Err(err).Str("topic_id", topicID).Msg("failed to list posts")
		return nil, fmt.Errorf("%w: %v", domain.ErrInternal, err)
	}
	return posts, nil
}

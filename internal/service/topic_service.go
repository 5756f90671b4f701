package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/prn-tf/agora/internal/domain"
	"github.com/prn-tf/agora/internal/repository"
)

// TopicService handles topic creation and lookups.
type TopicService struct {
	topicRepo repository.TopicRepository
	logger    zerolog.Logger
}

// NewTopicService creates a new TopicService.
func NewTopicService(topicRepo repository.TopicRepository, logger zerolog.Logger) *TopicService {
	return &TopicService{
		topicRepo: topicRepo,
		logger:    logger.With().Str("service", "topic").Logger(),
	}
}

// TopicInput contains the caller-supplied fields of a new topic.
type TopicInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Validate checks that every field is present.
func (in TopicInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Title, validation.Required),
		validation.Field(&in.Description, validation.Required),
	)
}

// Create stores a topic owned by creatorID, stamped with the current time.
// Title and description are trimmed before validation.
func (s *TopicService) Create(ctx context.Context, creatorID string, input TopicInput) (*domain.Topic, error) {
	input.Title = strings.TrimSpace(input.Title)
	input.Description = strings.TrimSpace(input.Description)

	if err := validationError(input.Validate()); err != nil {
		return nil, err
	}

	topic := domain.NewTopic(uuid.NewString(), input.Title, input.Description, creatorID)
	if err := s.topicRepo.Create(ctx, topic); err != nil {
		return nil, creationFailure(s.logger, "topic", err)
	}

	s.logger.Info().
		Str("topic_id", topic.ID).
		Str("created_by", topic.CreatedBy).
		Msg("topic created")

	return topic, nil
}

// GetByID retrieves a topic by ID. Returns domain.ErrTopicNotFound if absent.
func (s *TopicService) GetByID(ctx context.Context, id string) (*domain.Topic, error) {
	topic, err := s.topicRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrTopicNotFound) {
			return nil, domain.ErrTopicNotFound
		}
		s.logger.Error().Err(err).Str("topic_id", id).Msg("failed to get topic")
		return nil, fmt.Errorf("%w: %v", domain.ErrInternal, err)
	}
	return topic, nil
}

// List returns all topics.
func (s *TopicService) List(ctx context.Context) ([]*domain.Topic, error) {
	topics, err := s.topicRepo.List(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list topics")
		return nil, fmt.Errorf("%w: %v", domain.ErrInternal, err)
	}
	return topics, nil
}

// creationFailure wraps a repository error as a domain.CreationError.
// Dangling references keep their message; anything else is logged and
// reported as an internal error so storage details stay server-side.
func creationFailure(logger zerolog.Logger, entity string, err error) error {
	if errors.Is(err, domain.ErrReferenceNotFound) {
		logger.Debug().Err(err).Str("entity", entity).Msg("creation rejected by store")
		return domain.NewCreationError(entity, err)
	}
	logger.Error().Err(err).Str("entity", entity).Msg("failed to create record")
	return domain.NewCreationError(entity, domain.ErrInternal)
}

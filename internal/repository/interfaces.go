// Package repository defines data access interfaces for Agora.
// These interfaces abstract database operations, allowing for different implementations
// (SQLite, PostgreSQL, in-memory mocks for testing) while keeping the service layer clean.
//
// The forum is create-and-read-only: no repository exposes update or delete.
package repository

import (
	"context"

	"github.com/prn-tf/agora/internal/domain"
)

// =============================================================================
// User Repository
// =============================================================================

// UserRepository defines the interface for user data access.
type UserRepository interface {
	// Create persists a new user.
	// Returns domain.ErrUserAlreadyExists when the username or email is taken.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by ID.
	// Returns domain.ErrUserNotFound if no such user exists.
	GetByID(ctx context.Context, id string) (*domain.User, error)

	// GetByEmail retrieves a user by email.
	// Returns domain.ErrUserNotFound if no such user exists.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// List returns all users ordered by creation time.
	List(ctx context.Context) ([]*domain.User, error)
}

// =============================================================================
// Topic Repository
// =============================================================================

// TopicRepository defines the interface for topic data access.
type TopicRepository interface {
	// Create persists a new topic.
	// Returns domain.ErrReferenceNotFound if the creator does not exist.
	Create(ctx context.Context, topic *domain.Topic) error

	// GetByID retrieves a topic by ID.
	// Returns domain.ErrTopicNotFound if no such topic exists.
	GetByID(ctx context.Context, id string) (*domain.Topic, error)

	// List returns all topics ordered by creation time.
	List(ctx context.Context) ([]*domain.Topic, error)
}

// =============================================================================
// Post Repository
// =============================================================================

// PostRepository defines the interface for post data access.
type PostRepository interface {
	// Create persists a new post.
	// Returns domain.ErrReferenceNotFound if the topic or creator does not exist.
	Create(ctx context.Context, post *domain.Post) error

	// ListByTopic returns the posts of a topic ordered by creation time.
	ListByTopic(ctx context.Context, topicID string) ([]*domain.Post, error)
}

// =============================================================================
// Comment Repository
// =============================================================================

// CommentRepository defines the interface for comment data access.
type CommentRepository interface {
	// Create persists a new comment.
	// Returns domain.ErrReferenceNotFound if the post or creator does not exist.
	Create(ctx context.Context, comment *domain.Comment) error

	// ListByPost returns the comments of a post ordered by creation time.
	ListByPost(ctx context.Context, postID string) ([]*domain.Comment, error)
}

// =============================================================================
// Aggregates
// =============================================================================

// Repositories holds all repository instances for one backend.
type Repositories struct {
	User    UserRepository
	Topic   TopicRepository
	Post    PostRepository
	Comment CommentRepository
}

// DatabaseHealth is an interface for database health checks.
// This interface satisfies handler.DatabaseChecker for health endpoints.
type DatabaseHealth interface {
	Ping(ctx context.Context) error
	Health(ctx context.Context) error
	Close() error
}

package service

import (
	"context"
	"sync"

	"github.com/prn-tf/agora/internal/domain"
)

// MockUserRepository is a mock implementation of repository.UserRepository.
type MockUserRepository struct {
	mu        sync.Mutex
	users     map[string]*domain.User
	createErr error
	getErr    error
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{users: make(map[string]*domain.User)}
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	for _, u := range m.users {
		if u.Email == user.Email || u.Username == user.Username {
			return domain.ErrUserAlreadyExists
		}
	}
	m.users[user.ID] = user
	return nil
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, domain.ErrUserNotFound
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (m *MockUserRepository) List(ctx context.Context) ([]*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]*domain.User, 0, len(m.users))
	for _, u := range m.users {
		result = append(result, u)
	}
	return result, nil
}

// MockTopicRepository is a mock implementation of repository.TopicRepository.
type MockTopicRepository struct {
	topics    map[string]*domain.Topic
	createErr error
}

func NewMockTopicRepository() *MockTopicRepository {
	return &MockTopicRepository{topics: make(map[string]*domain.Topic)}
}

func (m *MockTopicRepository) Create(ctx context.Context, topic *domain.Topic) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.topics[topic.ID] = topic
	return nil
}

func (m *MockTopicRepository) GetByID(ctx context.Context, id string) (*domain.Topic, error) {
	if t, ok := m.topics[id]; ok {
		return t, nil
	}
	return nil, domain.ErrTopicNotFound
}

func (m *MockTopicRepository) List(ctx context.Context) ([]*domain.Topic, error) {
	result := make([]*domain.Topic, 0, len(m.topics))
	for _, t := range m.topics {
		result = append(result, t)
	}
	return result, nil
}

// MockPostRepository is a mock implementation of repository.PostRepository.
// Posts referencing a topic absent from topics are rejected like a foreign key would.
type MockPostRepository struct {
	topics    *MockTopicRepository
	posts     []*domain.Post
	createErr error
}

func NewMockPostRepository(topics *MockTopicRepository) *MockPostRepository {
	return &MockPostRepository{topics: topics}
}

func (m *MockPostRepository) Create(ctx context.Context, post *domain.Post) error {
	if m.createErr != nil {
		return m.createErr
	}
	if _, ok := m.topics.topics[post.TopicID]; !ok {
		return domain.ErrReferenceNotFound
	}
	m.posts = append(m.posts, post)
	return nil
}

func (m *MockPostRepository) ListByTopic(ctx context.Context, topicID string) ([]*domain.Post, error) {
	result := make([]*domain.Post, 0)
	for _, p := range m.posts {
		if p.TopicID == topicID {
			result = append(result, p)
		}
	}
	return result, nil
}

// MockCommentRepository is a mock implementation of repository.CommentRepository.
type MockCommentRepository struct {
	comments  []*domain.Comment
	createErr error
}

func (m *MockCommentRepository) Create(ctx context.Context, comment *domain.Comment) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.comments = append(m.comments, comment)
	return nil
}

func (m *MockCommentRepository) ListByPost(ctx context.Context, postID string) ([]*domain.Comment, error) {
	result := make([]*domain.Comment, 0)
	for _, c := range m.comments {
		if c.PostID == postID {
			result = append(result, c)
		}
	}
	return result, nil
}

// MockTokenIssuer returns "token-for-<id>".
type MockTokenIssuer struct {
	err error
}

func (m *MockTokenIssuer) Issue(identityID string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	return "token-for-" + identityID, nil
}

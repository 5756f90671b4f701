package sqlite

import (
	"context"
	"fmt"

	"github.com/prn-tf/agora/internal/domain"
	"github.com/prn-tf/agora/internal/repository"
)

const topicColumns = `id, title, description, created_by, created_at`

// topicRepository implements repository.TopicRepository for SQLite.
type topicRepository struct {
	db *DB
}

// NewTopicRepository creates a new SQLite topic repository.
func NewTopicRepository(db *DB) repository.TopicRepository {
	return &topicRepository{db: db}
}

// Create creates a new topic.
func (r *topicRepository) Create(ctx context.Context, topic *domain.Topic) error {
	query := `
		INSERT INTO topics (id, title, description, created_by, created_at)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		topic.ID,
		topic.Title,
		topic.Description,
		topic.CreatedBy,
		formatTime(topic.CreatedAt),
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: creator %s", domain.ErrReferenceNotFound, topic.CreatedBy)
		}
		return fmt.Errorf("failed to create topic: %w", err)
	}

	return nil
}

// GetByID retrieves a topic by ID.
func (r *topicRepository) GetByID(ctx context.Context, id string) (*domain.Topic, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+topicColumns+` FROM topics WHERE id = ?`, id)
	topic, err := scanTopic(row)
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrTopicNotFound
		}
		return nil, fmt.Errorf("failed to get topic by ID: %w", err)
	}
	return topic, nil
}

// List returns all topics.
func (r *topicRepository) List(ctx context.Context) ([]*domain.Topic, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+topicColumns+` FROM topics ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list topics: %w", err)
	}
	defer rows.Close()

	topics := make([]*domain.Topic, 0)
	for rows.Next() {
		topic, err := scanTopic(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan topic: %w", err)
		}
		topics = append(topics, topic)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate topics: %w", err)
	}

	return topics, nil
}

func scanTopic(row rowScanner) (*domain.Topic, error) {
	topic := &domain.Topic{}
	var createdAt string
	if err := row.Scan(
		&topic.ID,
		&topic.Title,
		&topic.Description,
		&topic.CreatedBy,
		&createdAt,
	); err != nil {
		return nil, err
	}
	topic.CreatedAt = parseTime(createdAt)
	return topic, nil
}

var _ repository.TopicRepository = (*topicRepository)(nil)

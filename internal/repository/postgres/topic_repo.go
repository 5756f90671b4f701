package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/prn-tf/agora/internal/domain"
	"github.com/prn-tf/agora/internal/repository"
)

// Column order matches the field order of domain.Topic.
const topicColumns = `id, title, description, created_by, created_at`

// topicRepository implements repository.TopicRepository for PostgreSQL.
type topicRepository struct {
	db *DB
}

// NewTopicRepository creates a new PostgreSQL topic repository.
func NewTopicRepository(db *DB) repository.TopicRepository {
	return &topicRepository{db: db}
}

// Create creates a new topic.
func (r *topicRepository) Create(ctx context.Context, topic *domain.Topic) error {
	query := `
		INSERT INTO topics (id, title, description, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.Pool.Exec(ctx, query,
		topic.ID,
		topic.Title,
		topic.Description,
		topic.CreatedBy,
		topic.CreatedAt,
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
	rows, err := r.db.Pool.Query(ctx, `SELECT `+topicColumns+` FROM topics WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get topic by ID: %w", err)
	}

	topic, err := pgx.CollectOneRow(rows, pgx.RowToAddrOfStructByPos[domain.Topic])
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrTopicNotFound
		}
		return nil, fmt.Errorf("failed to get topic by ID: %w", err)
	}
	topic.CreatedAt = topic.CreatedAt.UTC()
	return topic, nil
}

// List returns all topics.
func (r *topicRepository) List(ctx context.Context) ([]*domain.Topic, error) {
	rows, err := r.db.Pool.Query(ctx, `SELECT `+topicColumns+` FROM topics ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list topics: %w", err)
	}

	topics, err := pgx.CollectRows(rows, pgx.RowToAddrOfStructByPos[domain.Topic])
	if err != nil {
		return nil, fmt.Errorf("failed to list topics: %w", err)
	}
	for _, t := range topics {
		t.CreatedAt = t.CreatedAt.UTC()
	}
	return topics, nil
}

var _ repository.TopicRepository = (*topicRepository)(nil)

package sqlite

import "github.com/prn-tf/agora/internal/repository"

// NewRepositories builds every SQLite repository over db.
func NewRepositories(db *DB) *repository.Repositories {
	return &repository.Repositories{
		User:    NewUserRepository(db),
		Topic:   NewTopicRepository(db),
		Post:    NewPostRepository(db),
		Comment: NewCommentRepository(db),
	}
}

var _ repository.DatabaseHealth = (*DB)(nil)

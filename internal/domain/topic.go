package domain

import "time"

// Topic is a discussion area created by a single user.
type Topic struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	CreatedBy   string    `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewTopic creates a Topic owned by createdBy, stamped with the current time.
func NewTopic(id, title, description, createdBy string) *Topic {
	return &Topic{
		ID:          id,
		Title:       title,
		Description: description,
		CreatedBy:   createdBy,
		CreatedAt:   time.Now().UTC(),
	}
}

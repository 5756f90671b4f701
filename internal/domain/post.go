package domain

import "time"

// Post is a message inside a topic.
type Post struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedBy string    `json:"created_by"`
	TopicID   string    `json:"topic_id"`
	CreatedAt time.Time `json:"created_at"`
}

// NewPost creates a Post in topicID authored by createdBy.
func NewPost(id, title, content, topicID, createdBy string) *Post {
	return &Post{
		ID:        id,
		Title:     title,
		Content:   content,
		CreatedBy: createdBy,
		TopicID:   topicID,
		CreatedAt: time.Now().UTC(),
	}
}

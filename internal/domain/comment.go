package domain

import "time"

// Comment is attached to a post.
//
// Replies are stored exactly like top-level comments: there is no parent
// comment reference, only the post they belong to.
type Comment struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	CreatedBy string    `json:"created_by"`
	PostID    string    `json:"post_id"`
	CreatedAt time.Time `json:"created_at"`
}

// NewComment creates a Comment on postID authored by createdBy.
func NewComment(id, content, postID, createdBy string) *Comment {
	return &Comment{
		ID:        id,
		Content:   content,
		CreatedBy: createdBy,
		PostID:    postID,
		CreatedAt: time.Now().UTC(),
	}
}

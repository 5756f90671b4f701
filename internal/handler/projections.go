package handler

import (
	"time"

	"github.com/prn-tf/agora/internal/domain"
)

// timestampLayout is RFC 3339 with millisecond precision.
const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

// UserView is the public projection of a user. The password digest is never projected.
type UserView struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	CreatedAt string `json:"createdAt"`
}

// TopicView is the public projection of a topic.
type TopicView struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	CreatedBy   string `json:"createdBy"`
	CreatedAt   string `json:"createdAt"`
}

// PostView is the public projection of a post.
type PostView struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	CreatedBy string `json:"createdBy"`
	Topic     string `json:"topic"`
	CreatedAt string `json:"createdAt"`
}

// CommentView is the public projection of a comment or reply.
type CommentView struct {
	ID        string `json:"id"`
	Content   string `json:"content"`
	CreatedBy string `json:"createdBy"`
	Post      string `json:"post"`
	CreatedAt string `json:"createdAt"`
}

func newUserView(u *domain.User) UserView {
	return UserView{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: formatTimestamp(u.CreatedAt),
	}
}

func newTopicView(t *domain.Topic) TopicView {
	return TopicView{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		CreatedBy:   t.CreatedBy,
		CreatedAt:   formatTimestamp(t.CreatedAt),
	}
}

func newPostView(p *domain.Post) PostView {
	return PostView{
		ID:        p.ID,
		Title:     p.Title,
		Content:   p.Content,
		CreatedBy: p.CreatedBy,
		Topic:     p.TopicID,
		CreatedAt: formatTimestamp(p.CreatedAt),
	}
}

func newCommentView(c *domain.Comment) CommentView {
	return CommentView{
		ID:        c.ID,
		Content:   c.Content,
		CreatedBy: c.CreatedBy,
		Post:      c.PostID,
		CreatedAt: formatTimestamp(c.CreatedAt),
	}
}

// project maps every element of items with fn. The result is never nil.
func project[T any, V any](items []T, fn func(T) V) []V {
	views := make([]V, 0, len(items))
	for _, item := range items {
		views = append(views, fn(item))
	}
	return views
}

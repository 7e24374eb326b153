package models

import "time"

// Post is a single link/text submission in the feed. Field names follow the
// persisted JSON layout.
type Post struct {
	ID           int64     `json:"id"`
	Title        string    `json:"title"`
	Content      string    `json:"content"`
	Author       string    `json:"author"`
	Community    string    `json:"community"`
	Score        int       `json:"score"`
	CommentCount int       `json:"comment_count"`
	CreatedAt    time.Time `json:"created_at"`
}

// NewPost carries the caller-supplied fields of a post. Everything else is
// assigned by the store.
type NewPost struct {
	Title     string `json:"title"`
	Content   string `json:"content"`
	Author    string `json:"author"`
	Community string `json:"community"`
}

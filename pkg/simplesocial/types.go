package simplesocial

import (
	"time"
)

// Post is a piece of content shared by an author.
//
// LikedBy keeps insertion order for display; LikeCount always equals len(LikedBy).
type Post struct {
	ID        string    `json:"id"`
	Author    string    `json:"username"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	LikeCount int       `json:"likes"`
	LikedBy   []string  `json:"likes_by"`
}

// Clone returns a deep copy of the post.
func (p *Post) Clone() *Post {
	if p == nil {
		return nil
	}
	c := *p
	c.LikedBy = make([]string, len(p.LikedBy))
	copy(c.LikedBy, p.LikedBy)
	return &c
}

// HasLike reports whether author is in LikedBy.
func (p *Post) HasLike(author string) bool {
	for _, a := range p.LikedBy {
		if a == author {
			return true
		}
	}
	return false
}

// Comment is a reply attached to exactly one post.
type Comment struct {
	ID        string    `json:"id"`
	PostID    string    `json:"post_id"`
	Author    string    `json:"username"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Request types for Service operations

// CreatePostRequest contains parameters for creating a post
type CreatePostRequest struct {
	Author  string
	Content string
}

// UpdatePostRequest contains parameters for updating a post. Author must match
// the stored author.
type UpdatePostRequest struct {
	ID      string
	Author  string
	Content string
}

// CreateCommentRequest contains parameters for commenting on a post
type CreateCommentRequest struct {
	PostID  string
	Author  string
	Content string
}

// UpdateCommentRequest contains parameters for updating a comment
type UpdateCommentRequest struct {
	PostID    string
	CommentID string
	Author    string
	Content   string
}

// Store parameter types

// UpdatePostParams is passed to Store.UpdatePost
type UpdatePostParams struct {
	ID        string
	Author    string
	Content   string
	UpdatedAt time.Time
}

// UpdateCommentParams is passed to Store.UpdateComment
type UpdateCommentParams struct {
	PostID    string
	CommentID string
	Author    string
	Content   string
	UpdatedAt time.Time
}

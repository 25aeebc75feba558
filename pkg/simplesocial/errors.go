package simplesocial

import (
	"errors"
	"fmt"
)

// Error types
var (
	// ErrNotFound is matched by every not-found error below
	ErrNotFound = errors.New("not found")

	// ErrPostNotFound indicates a post was not found
	ErrPostNotFound = fmt.Errorf("post %w", ErrNotFound)

	// ErrCommentNotFound indicates a comment was not found or belongs to another post
	ErrCommentNotFound = fmt.Errorf("comment %w", ErrNotFound)

	// ErrForbidden indicates the supplied author does not own the entity
	ErrForbidden = errors.New("author does not own this resource")
)

// PostError represents an error related to post operations
type PostError struct {
	PostID string
	Op     string
	Err    error
}

func (e *PostError) Error() string {
	return fmt.Sprintf("post operation %s failed for post %s: %v", e.Op, e.PostID, e.Err)
}

func (e *PostError) Unwrap() error {
	return e.Err
}

// CommentError represents an error related to comment operations
type CommentError struct {
	PostID    string
	CommentID string
	Op        string
	Err       error
}

func (e *CommentError) Error() string {
	return fmt.Sprintf("comment operation %s failed for comment %s on post %s: %v", e.Op, e.CommentID, e.PostID, e.Err)
}

func (e *CommentError) Unwrap() error {
	return e.Err
}

// IsNotFound reports whether err is any not-found outcome.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsForbidden reports whether err is an ownership failure.
func IsForbidden(err error) bool {
	return errors.Is(err, ErrForbidden)
}

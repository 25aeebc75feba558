package simplesocial

import (
	"context"
)

// Store owns posts, comments and likes and enforces their integrity rules.
//
// Implementations must make every method atomic with respect to the others:
// a DeletePost cascade is never observed half-applied. Outcomes are reported
// through ErrPostNotFound, ErrCommentNotFound and ErrForbidden.
type Store interface {
	// Post operations
	ListPosts(ctx context.Context) ([]*Post, error)
	CreatePost(ctx context.Context, post *Post) error
	GetPost(ctx context.Context, id string) (*Post, error)
	UpdatePost(ctx context.Context, params UpdatePostParams) (*Post, error)
	DeletePost(ctx context.Context, id string) error

	// Comment operations
	ListComments(ctx context.Context, postID string) ([]*Comment, error)
	GetComment(ctx context.Context, postID, commentID string) (*Comment, error)
	CreateComment(ctx context.Context, comment *Comment) error
	UpdateComment(ctx context.Context, params UpdateCommentParams) (*Comment, error)
	DeleteComment(ctx context.Context, postID, commentID string) error

	// Like operations. The bool reports whether the like set changed.
	AddLike(ctx context.Context, postID, author string) (*Post, bool, error)
	RemoveLike(ctx context.Context, postID, author string) (*Post, bool, error)
}

// EventSink receives notifications after a store mutation has been applied
type EventSink interface {
	PostCreated(ctx context.Context, post *Post) error
	PostUpdated(ctx context.Context, post *Post) error
	PostDeleted(ctx context.Context, postID string) error

	CommentCreated(ctx context.Context, comment *Comment) error
	CommentUpdated(ctx context.Context, comment *Comment) error
	CommentDeleted(ctx context.Context, postID, commentID string) error

	PostLiked(ctx context.Context, post *Post, author string) error
	PostUnliked(ctx context.Context, post *Post, author string) error
}

// Service is the entry point used by the request layer
type Service interface {
	// Post operations
	ListPosts(ctx context.Context) ([]*Post, error)
	CreatePost(ctx context.Context, req CreatePostRequest) (*Post, error)
	GetPost(ctx context.Context, id string) (*Post, error)
	UpdatePost(ctx context.Context, req UpdatePostRequest) (*Post, error)
	DeletePost(ctx context.Context, id string) error

	// Comment operations
	ListComments(ctx context.Context, postID string) ([]*Comment, error)
	GetComment(ctx context.Context, postID, commentID string) (*Comment, error)
	CreateComment(ctx context.Context, req CreateCommentRequest) (*Comment, error)
	UpdateComment(ctx context.Context, req UpdateCommentRequest) (*Comment, error)
	DeleteComment(ctx context.Context, postID, commentID string) error

	// Like operations
	AddLike(ctx context.Context, postID, author string) (*Post, error)
	RemoveLike(ctx context.Context, postID, author string) (*Post, error)
}

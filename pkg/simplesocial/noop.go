package simplesocial

import (
	"context"
)

// NoopEventSink is a no-operation implementation of EventSink
// Useful for production when you don't need event handling or for testing
type NoopEventSink struct{}

// NewNoopEventSink creates a new no-operation event sink
func NewNoopEventSink() EventSink {
	return &NoopEventSink{}
}

// PostCreated does nothing and returns nil
func (n *NoopEventSink) PostCreated(ctx context.Context, post *Post) error {
	return nil
}

// PostUpdated does nothing and returns nil
func (n *NoopEventSink) PostUpdated(ctx context.Context, post *Post) error {
	return nil
}

// PostDeleted does nothing and returns nil
func (n *NoopEventSink) PostDeleted(ctx context.Context, postID string) error {
	return nil
}

// CommentCreated does nothing and returns nil
func (n *NoopEventSink) CommentCreated(ctx context.Context, comment *Comment) error {
	return nil
}

// CommentUpdated does nothing and returns nil
func (n *NoopEventSink) CommentUpdated(ctx context.Context, comment *Comment) error {
	return nil
}

// CommentDeleted does nothing and returns nil
func (n *NoopEventSink) CommentDeleted(ctx context.Context, postID, commentID string) error {
	return nil
}

// PostLiked does nothing and returns nil
func (n *NoopEventSink) PostLiked(ctx context.Context, post *Post, author string) error {
	return nil
}

// PostUnliked does nothing and returns nil
func (n *NoopEventSink) PostUnliked(ctx context.Context, post *Post, author string) error {
	return nil
}

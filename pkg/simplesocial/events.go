package simplesocial

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// EventType names a store mutation.
type EventType string

const (
	EventPostCreated    EventType = "post.created"
	EventPostUpdated    EventType = "post.updated"
	EventPostDeleted    EventType = "post.deleted"
	EventCommentCreated EventType = "comment.created"
	EventCommentUpdated EventType = "comment.updated"
	EventCommentDeleted EventType = "comment.deleted"
	EventPostLiked      EventType = "post.liked"
	EventPostUnliked    EventType = "post.unliked"
)

// Event is the serializable form of a store mutation.
type Event struct {
	Type       EventType `json:"type"`
	PostID     string    `json:"post_id"`
	CommentID  string    `json:"comment_id,omitempty"`
	Author     string    `json:"username,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
	Post       *Post     `json:"post,omitempty"`
	Comment    *Comment  `json:"comment,omitempty"`
}

// EventHandler consumes events built by FuncEventSink.
type EventHandler func(ctx context.Context, event Event) error

// FuncEventSink adapts an EventHandler to the EventSink interface.
type FuncEventSink struct {
	handle EventHandler
	now    func() time.Time
}

// NewFuncEventSink wraps handle as an EventSink.
func NewFuncEventSink(handle EventHandler) *FuncEventSink {
	return &FuncEventSink{
		handle: handle,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (f *FuncEventSink) emit(ctx context.Context, e Event) error {
	e.OccurredAt = f.now()
	return f.handle(ctx, e)
}

func (f *FuncEventSink) PostCreated(ctx context.Context, post *Post) error {
	return f.emit(ctx, Event{Type: EventPostCreated, PostID: post.ID, Author: post.Author, Post: post})
}

func (f *FuncEventSink) PostUpdated(ctx context.Context, post *Post) error {
	return f.emit(ctx, Event{Type: EventPostUpdated, PostID: post.ID, Author: post.Author, Post: post})
}

func (f *FuncEventSink) PostDeleted(ctx context.Context, postID string) error {
	return f.emit(ctx, Event{Type: EventPostDeleted, PostID: postID})
}

func (f *FuncEventSink) CommentCreated(ctx context.Context, comment *Comment) error {
	return f.emit(ctx, Event{Type: EventCommentCreated, PostID: comment.PostID, CommentID: comment.ID, Author: comment.Author, Comment: comment})
}

func (f *FuncEventSink) CommentUpdated(ctx context.Context, comment *Comment) error {
	return f.emit(ctx, Event{Type: EventCommentUpdated, PostID: comment.PostID, CommentID: comment.ID, Author: comment.Author, Comment: comment})
}

func (f *FuncEventSink) CommentDeleted(ctx context.Context, postID, commentID string) error {
	return f.emit(ctx, Event{Type: EventCommentDeleted, PostID: postID, CommentID: commentID})
}

func (f *FuncEventSink) PostLiked(ctx context.Context, post *Post, author string) error {
	return f.emit(ctx, Event{Type: EventPostLiked, PostID: post.ID, Author: author, Post: post})
}

func (f *FuncEventSink) PostUnliked(ctx context.Context, post *Post, author string) error {
	return f.emit(ctx, Event{Type: EventPostUnliked, PostID: post.ID, Author: author, Post: post})
}

// NewLoggingEventSink returns a sink that writes one slog record per event.
func NewLoggingEventSink(logger *slog.Logger) EventSink {
	if logger == nil {
		logger = slog.Default()
	}
	return NewFuncEventSink(func(ctx context.Context, e Event) error {
		logger.InfoContext(ctx, "Store event",
			"type", string(e.Type),
			"post_id", e.PostID,
			"comment_id", e.CommentID,
			"username", e.Author,
		)
		return nil
	})
}

// MultiEventSink fans every event out to all of its sinks.
type MultiEventSink []EventSink

// NewMultiEventSink drops nil sinks and returns the remaining ones as one sink.
func NewMultiEventSink(sinks ...EventSink) EventSink {
	var m MultiEventSink
	for _, s := range sinks {
		if s != nil {
			m = append(m, s)
		}
	}
	return m
}

func (m MultiEventSink) each(fn func(EventSink) error) error {
	var errs []error
	for _, s := range m {
		if err := fn(s); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m MultiEventSink) PostCreated(ctx context.Context, post *Post) error {
	return m.each(func(s EventSink) error { return s.PostCreated(ctx, post) })
}

func (m MultiEventSink) PostUpdated(ctx context.Context, post *Post) error {
	return m.each(func(s EventSink) error { return s.PostUpdated(ctx, post) })
}

func (m MultiEventSink) PostDeleted(ctx context.Context, postID string) error {
	return m.each(func(s EventSink) error { return s.PostDeleted(ctx, postID) })
}

func (m MultiEventSink) CommentCreated(ctx context.Context, comment *Comment) error {
	return m.each(func(s EventSink) error { return s.CommentCreated(ctx, comment) })
}

func (m MultiEventSink) CommentUpdated(ctx context.Context, comment *Comment) error {
	return m.each(func(s EventSink) error { return s.CommentUpdated(ctx, comment) })
}

func (m MultiEventSink) CommentDeleted(ctx context.Context, postID, commentID string) error {
	return m.each(func(s EventSink) error { return s.CommentDeleted(ctx, postID, commentID) })
}

func (m MultiEventSink) PostLiked(ctx context.Context, post *Post, author string) error {
	return m.each(func(s EventSink) error { return s.PostLiked(ctx, post, author) })
}

func (m MultiEventSink) PostUnliked(ctx context.Context, post *Post, author string) error {
	return m.each(func(s EventSink) error { return s.PostUnliked(ctx, post, author) })
}

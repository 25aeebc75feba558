package simplesocial

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// service implements the Service interface
type service struct {
	store     Store
	eventSink EventSink
	now       func() time.Time
	newID     func() string
	logger    *slog.Logger
}

// Option represents a functional option for configuring the service
type Option func(*service)

// WithStore sets the store for the service
func WithStore(store Store) Option {
	return func(s *service) {
		s.store = store
	}
}

// WithEventSink sets the event sink for the service
func WithEventSink(sink EventSink) Option {
	return func(s *service) {
		s.eventSink = sink
	}
}

// WithClock overrides the time source used for created_at/updated_at
func WithClock(now func() time.Time) Option {
	return func(s *service) {
		s.now = now
	}
}

// WithIDGenerator overrides how post and comment ids are generated
func WithIDGenerator(newID func() string) Option {
	return func(s *service) {
		s.newID = newID
	}
}

// WithLogger sets the logger used to report event sink failures
func WithLogger(logger *slog.Logger) Option {
	return func(s *service) {
		s.logger = logger
	}
}

// New creates a new service instance with the given options
func New(options ...Option) (Service, error) {
	s := &service{
		// postgres keeps microseconds; truncating keeps round trips exact
		now:    func() time.Time { return time.Now().UTC().Truncate(time.Microsecond) },
		newID:  func() string { return uuid.New().String() },
		logger: slog.Default(),
	}

	for _, option := range options {
		option(s)
	}

	if s.store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if s.eventSink == nil {
		s.eventSink = NewNoopEventSink()
	}

	return s, nil
}

// Post operations

func (s *service) ListPosts(ctx context.Context) ([]*Post, error) {
	posts, err := s.store.ListPosts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	return posts, nil
}

func (s *service) CreatePost(ctx context.Context, req CreatePostRequest) (*Post, error) {
	now := s.now()
	post := &Post{
		ID:        s.newID(),
		Author:    req.Author,
		Content:   req.Content,
		CreatedAt: now,
		UpdatedAt: now,
		LikeCount: 0,
		LikedBy:   []string{},
	}

	if err := s.store.CreatePost(ctx, post); err != nil {
		return nil, &PostError{PostID: post.ID, Op: "create", Err: err}
	}

	s.notify(ctx, EventPostCreated, s.eventSink.PostCreated(ctx, post.Clone()))
	return post, nil
}

func (s *service) GetPost(ctx context.Context, id string) (*Post, error) {
	post, err := s.store.GetPost(ctx, id)
	if err != nil {
		return nil, &PostError{PostID: id, Op: "get", Err: err}
	}
	return post, nil
}

func (s *service) UpdatePost(ctx context.Context, req UpdatePostRequest) (*Post, error) {
	post, err := s.store.UpdatePost(ctx, UpdatePostParams{
		ID:        req.ID,
		Author:    req.Author,
		Content:   req.Content,
		UpdatedAt: s.now(),
	})
	if err != nil {
		return nil, &PostError{PostID: req.ID, Op: "update", Err: err}
	}

	s.notify(ctx, EventPostUpdated, s.eventSink.PostUpdated(ctx, post.Clone()))
	return post, nil
}

func (s *service) DeletePost(ctx context.Context, id string) error {
	if err := s.store.DeletePost(ctx, id); err != nil {
		return &PostError{PostID: id, Op: "delete", Err: err}
	}

	s.notify(ctx, EventPostDeleted, s.eventSink.PostDeleted(ctx, id))
	return nil
}

// Comment operations

func (s *service) ListComments(ctx context.Context, postID string) ([]*Comment, error) {
	comments, err := s.store.ListComments(ctx, postID)
	if err != nil {
		return nil, &PostError{PostID: postID, Op: "list comments", Err: err}
	}
	return comments, nil
}

func (s *service) GetComment(ctx context.Context, postID, commentID string) (*Comment, error) {
	comment, err := s.store.GetComment(ctx, postID, commentID)
	if err != nil {
		return nil, &CommentError{PostID: postID, CommentID: commentID, Op: "get", Err: err}
	}
	return comment, nil
}

func (s *service) CreateComment(ctx context.Context, req CreateCommentRequest) (*Comment, error) {
	now := s.now()
	comment := &Comment{
		ID:        s.newID(),
		PostID:    req.PostID,
		Author:    req.Author,
		Content:   req.Content,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.store.CreateComment(ctx, comment); err != nil {
		return nil, &CommentError{PostID: req.PostID, CommentID: comment.ID, Op: "create", Err: err}
	}

	commentCopy := *comment
	s.notify(ctx, EventCommentCreated, s.eventSink.CommentCreated(ctx, &commentCopy))
	return comment, nil
}

func (s *service) UpdateComment(ctx context.Context, req UpdateCommentRequest) (*Comment, error) {
	comment, err := s.store.UpdateComment(ctx, UpdateCommentParams{
		PostID:    req.PostID,
		CommentID: req.CommentID,
		Author:    req.Author,
		Content:   req.Content,
		UpdatedAt: s.now(),
	})
	if err != nil {
		return nil, &CommentError{PostID: req.PostID, CommentID: req.CommentID, Op: "update", Err: err}
	}

	commentCopy := *comment
	s.notify(ctx, EventCommentUpdated, s.eventSink.CommentUpdated(ctx, &commentCopy))
	return comment, nil
}

func (s *service) DeleteComment(ctx context.Context, postID, commentID string) error {
	if err := s.store.DeleteComment(ctx, postID, commentID); err != nil {
		return &CommentError{PostID: postID, CommentID: commentID, Op: "delete", Err: err}
	}

	s.notify(ctx, EventCommentDeleted, s.eventSink.CommentDeleted(ctx, postID, commentID))
	return nil
}

// Like operations

func (s *service) AddLike(ctx context.Context, postID, author string) (*Post, error) {
	post, changed, err := s.store.AddLike(ctx, postID, author)
	if err != nil {
		return nil, &PostError{PostID: postID, Op: "like", Err: err}
	}

	if changed {
		s.notify(ctx, EventPostLiked, s.eventSink.PostLiked(ctx, post.Clone(), author))
	}
	return post, nil
}

func (s *service) RemoveLike(ctx context.Context, postID, author string) (*Post, error) {
	post, changed, err := s.store.RemoveLike(ctx, postID, author)
	if err != nil {
		return nil, &PostError{PostID: postID, Op: "unlike", Err: err}
	}

	if changed {
		s.notify(ctx, EventPostUnliked, s.eventSink.PostUnliked(ctx, post.Clone(), author))
	}
	return post, nil
}

// notify logs event sink failures; they never fail the operation.
func (s *service) notify(ctx context.Context, event EventType, err error) {
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to deliver event", "event", string(event), "error", err)
	}
}

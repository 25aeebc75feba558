package simplesocial_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-social/pkg/simplesocial"
	"github.com/tendant/simple-social/pkg/simplesocial/repo/memory"
)

type recordingSink struct {
	mu     sync.Mutex
	events []simplesocial.Event
}

func (r *recordingSink) handle(ctx context.Context, e simplesocial.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recordingSink) types() []simplesocial.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]simplesocial.EventType, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

type fixedClock struct {
	t time.Time
}

func (c *fixedClock) now() time.Time { return c.t }

func (c *fixedClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func setupService(t *testing.T) (simplesocial.Service, *recordingSink, *fixedClock) {
	t.Helper()

	rec := &recordingSink{}
	clock := &fixedClock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	svc, err := simplesocial.New(
		simplesocial.WithStore(memory.New()),
		simplesocial.WithEventSink(simplesocial.NewFuncEventSink(rec.handle)),
		simplesocial.WithClock(clock.now),
		simplesocial.WithIDGenerator(sequentialIDs()),
	)
	require.NoError(t, err)
	return svc, rec, clock
}

func TestNew_RequiresStore(t *testing.T) {
	svc, err := simplesocial.New()
	assert.Nil(t, svc)
	assert.Error(t, err)
}

func TestService_PostLifecycle(t *testing.T) {
	svc, rec, clock := setupService(t)
	ctx := context.Background()

	post, err := svc.CreatePost(ctx, simplesocial.CreatePostRequest{Author: "alice", Content: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "id-1", post.ID)
	assert.Equal(t, "alice", post.Author)
	assert.Equal(t, 0, post.LikeCount)
	assert.Empty(t, post.LikedBy)
	assert.Equal(t, clock.t, post.CreatedAt)
	assert.Equal(t, post.CreatedAt, post.UpdatedAt)

	clock.advance(time.Minute)
	updated, err := svc.UpdatePost(ctx, simplesocial.UpdatePostRequest{ID: post.ID, Author: "alice", Content: "edited"})
	require.NoError(t, err)
	assert.Equal(t, "edited", updated.Content)
	assert.Equal(t, post.CreatedAt, updated.CreatedAt)
	assert.True(t, updated.UpdatedAt.After(updated.CreatedAt))

	require.NoError(t, svc.DeletePost(ctx, post.ID))

	_, err = svc.GetPost(ctx, post.ID)
	assert.True(t, simplesocial.IsNotFound(err))

	var postErr *simplesocial.PostError
	require.ErrorAs(t, err, &postErr)
	assert.Equal(t, "get", postErr.Op)
	assert.Equal(t, post.ID, postErr.PostID)

	assert.Equal(t, []simplesocial.EventType{
		simplesocial.EventPostCreated,
		simplesocial.EventPostUpdated,
		simplesocial.EventPostDeleted,
	}, rec.types())
}

func TestService_UpdatePostForbidden(t *testing.T) {
	svc, rec, _ := setupService(t)
	ctx := context.Background()

	post, err := svc.CreatePost(ctx, simplesocial.CreatePostRequest{Author: "alice", Content: "mine"})
	require.NoError(t, err)

	_, err = svc.UpdatePost(ctx, simplesocial.UpdatePostRequest{ID: post.ID, Author: "bob", Content: "x"})
	assert.True(t, simplesocial.IsForbidden(err))
	assert.False(t, simplesocial.IsNotFound(err))

	_, err = svc.UpdatePost(ctx, simplesocial.UpdatePostRequest{ID: "nope", Author: "bob", Content: "x"})
	assert.ErrorIs(t, err, simplesocial.ErrPostNotFound)

	// failed mutations emit nothing
	assert.Equal(t, []simplesocial.EventType{simplesocial.EventPostCreated}, rec.types())
}

func TestService_Comments(t *testing.T) {
	svc, rec, clock := setupService(t)
	ctx := context.Background()

	postA, err := svc.CreatePost(ctx, simplesocial.CreatePostRequest{Author: "alice", Content: "A"})
	require.NoError(t, err)
	postB, err := svc.CreatePost(ctx, simplesocial.CreatePostRequest{Author: "alice", Content: "B"})
	require.NoError(t, err)

	_, err = svc.CreateComment(ctx, simplesocial.CreateCommentRequest{PostID: "nope", Author: "bob", Content: "x"})
	assert.ErrorIs(t, err, simplesocial.ErrPostNotFound)

	comment, err := svc.CreateComment(ctx, simplesocial.CreateCommentRequest{PostID: postA.ID, Author: "bob", Content: "nice"})
	require.NoError(t, err)
	assert.Equal(t, postA.ID, comment.PostID)
	assert.Equal(t, comment.CreatedAt, comment.UpdatedAt)

	_, err = svc.GetComment(ctx, postB.ID, comment.ID)
	assert.ErrorIs(t, err, simplesocial.ErrCommentNotFound)

	var commentErr *simplesocial.CommentError
	require.ErrorAs(t, err, &commentErr)
	assert.Equal(t, comment.ID, commentErr.CommentID)

	_, err = svc.UpdateComment(ctx, simplesocial.UpdateCommentRequest{PostID: postA.ID, CommentID: comment.ID, Author: "alice", Content: "x"})
	assert.True(t, simplesocial.IsForbidden(err))

	clock.advance(time.Second)
	updated, err := svc.UpdateComment(ctx, simplesocial.UpdateCommentRequest{PostID: postA.ID, CommentID: comment.ID, Author: "bob", Content: "nicer"})
	require.NoError(t, err)
	assert.Equal(t, "nicer", updated.Content)
	assert.True(t, updated.UpdatedAt.After(updated.CreatedAt))

	comments, err := svc.ListComments(ctx, postA.ID)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, "nicer", comments[0].Content)

	require.NoError(t, svc.DeleteComment(ctx, postA.ID, comment.ID))
	assert.ErrorIs(t, svc.DeleteComment(ctx, postA.ID, comment.ID), simplesocial.ErrCommentNotFound)

	assert.Equal(t, []simplesocial.EventType{
		simplesocial.EventPostCreated,
		simplesocial.EventPostCreated,
		simplesocial.EventCommentCreated,
		simplesocial.EventCommentUpdated,
		simplesocial.EventCommentDeleted,
	}, rec.types())
}

func TestService_LikesEmitOnlyOnChange(t *testing.T) {
	svc, rec, _ := setupService(t)
	ctx := context.Background()

	post, err := svc.CreatePost(ctx, simplesocial.CreatePostRequest{Author: "alice", Content: "hi"})
	require.NoError(t, err)

	liked, err := svc.AddLike(ctx, post.ID, "bob")
	require.NoError(t, err)
	assert.Equal(t, 1, liked.LikeCount)
	assert.Equal(t, []string{"bob"}, liked.LikedBy)

	liked, err = svc.AddLike(ctx, post.ID, "bob")
	require.NoError(t, err)
	assert.Equal(t, 1, liked.LikeCount)

	unliked, err := svc.RemoveLike(ctx, post.ID, "carol")
	require.NoError(t, err)
	assert.Equal(t, 1, unliked.LikeCount)

	unliked, err = svc.RemoveLike(ctx, post.ID, "bob")
	require.NoError(t, err)
	assert.Equal(t, 0, unliked.LikeCount)
	assert.Empty(t, unliked.LikedBy)

	_, err = svc.AddLike(ctx, "nope", "bob")
	assert.ErrorIs(t, err, simplesocial.ErrPostNotFound)

	assert.Equal(t, []simplesocial.EventType{
		simplesocial.EventPostCreated,
		simplesocial.EventPostLiked,
		simplesocial.EventPostUnliked,
	}, rec.types())

	rec.mu.Lock()
	defer rec.mu.Unlock()
	assert.Equal(t, "bob", rec.events[1].Author)
	assert.Equal(t, 1, rec.events[1].Post.LikeCount)
}

func TestService_SinkFailureDoesNotFailOperation(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	failing := simplesocial.NewFuncEventSink(func(ctx context.Context, e simplesocial.Event) error {
		return errors.New("broker unavailable")
	})
	svc, err := simplesocial.New(
		simplesocial.WithStore(memory.New()),
		simplesocial.WithEventSink(failing),
		simplesocial.WithLogger(logger),
	)
	require.NoError(t, err)

	post, err := svc.CreatePost(context.Background(), simplesocial.CreatePostRequest{Author: "alice", Content: "hi"})
	require.NoError(t, err)
	assert.NotEmpty(t, post.ID)

	got, err := svc.GetPost(context.Background(), post.ID)
	require.NoError(t, err)
	assert.Equal(t, post.ID, got.ID)

	assert.Contains(t, buf.String(), "broker unavailable")
	assert.Contains(t, buf.String(), "post.created")
}

func TestService_DefaultTimestampsAreUTC(t *testing.T) {
	svc, err := simplesocial.New(simplesocial.WithStore(memory.New()))
	require.NoError(t, err)

	post, err := svc.CreatePost(context.Background(), simplesocial.CreatePostRequest{Author: "alice", Content: "hi"})
	require.NoError(t, err)
	assert.Equal(t, time.UTC, post.CreatedAt.Location())
	assert.Equal(t, post.CreatedAt, post.CreatedAt.Truncate(time.Microsecond))
	assert.Len(t, post.ID, 36)
}

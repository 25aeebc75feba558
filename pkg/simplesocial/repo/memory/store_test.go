package memory_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-social/pkg/simplesocial"
	"github.com/tendant/simple-social/pkg/simplesocial/repo/memory"
)

func newPost(author, content string) *simplesocial.Post {
	now := time.Now().UTC()
	return &simplesocial.Post{
		ID:        uuid.New().String(),
		Author:    author,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
		LikedBy:   []string{},
	}
}

func newComment(postID, author, content string) *simplesocial.Comment {
	now := time.Now().UTC()
	return &simplesocial.Comment{
		ID:        uuid.New().String(),
		PostID:    postID,
		Author:    author,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestMemoryStore_PostOperations(t *testing.T) {
	store := memory.New()
	ctx := context.Background()

	t.Run("CreatePost_GetPost", func(t *testing.T) {
		post := newPost("alice", "hi")
		require.NoError(t, store.CreatePost(ctx, post))

		retrieved, err := store.GetPost(ctx, post.ID)
		require.NoError(t, err)
		assert.Equal(t, post, retrieved)
		assert.Equal(t, 0, retrieved.LikeCount)
		assert.Empty(t, retrieved.LikedBy)
		assert.Equal(t, retrieved.CreatedAt, retrieved.UpdatedAt)
	})

	t.Run("GetPost_NotFound", func(t *testing.T) {
		post, err := store.GetPost(ctx, "missing-id")
		assert.Nil(t, post)
		assert.ErrorIs(t, err, simplesocial.ErrPostNotFound)
		assert.True(t, simplesocial.IsNotFound(err))
	})

	t.Run("ReturnedPostIsACopy", func(t *testing.T) {
		post := newPost("alice", "original")
		require.NoError(t, store.CreatePost(ctx, post))

		retrieved, err := store.GetPost(ctx, post.ID)
		require.NoError(t, err)
		retrieved.Content = "tampered"
		retrieved.LikedBy = append(retrieved.LikedBy, "mallory")

		again, err := store.GetPost(ctx, post.ID)
		require.NoError(t, err)
		assert.Equal(t, "original", again.Content)
		assert.Empty(t, again.LikedBy)
	})

	t.Run("UpdatePost_Owner", func(t *testing.T) {
		post := newPost("alice", "before")
		require.NoError(t, store.CreatePost(ctx, post))

		later := post.UpdatedAt.Add(time.Minute)
		updated, err := store.UpdatePost(ctx, simplesocial.UpdatePostParams{
			ID:        post.ID,
			Author:    "alice",
			Content:   "after",
			UpdatedAt: later,
		})
		require.NoError(t, err)
		assert.Equal(t, "after", updated.Content)
		assert.Equal(t, "alice", updated.Author)
		assert.Equal(t, post.CreatedAt, updated.CreatedAt)
		assert.Equal(t, later, updated.UpdatedAt)
	})

	t.Run("UpdatePost_Forbidden", func(t *testing.T) {
		post := newPost("alice", "mine")
		require.NoError(t, store.CreatePost(ctx, post))

		updated, err := store.UpdatePost(ctx, simplesocial.UpdatePostParams{
			ID:        post.ID,
			Author:    "bob",
			Content:   "hijacked",
			UpdatedAt: time.Now(),
		})
		assert.Nil(t, updated)
		assert.ErrorIs(t, err, simplesocial.ErrForbidden)

		unchanged, err := store.GetPost(ctx, post.ID)
		require.NoError(t, err)
		assert.Equal(t, "mine", unchanged.Content)
		assert.Equal(t, post.UpdatedAt, unchanged.UpdatedAt)
	})

	t.Run("UpdatePost_NotFound", func(t *testing.T) {
		_, err := store.UpdatePost(ctx, simplesocial.UpdatePostParams{ID: "missing-id", Author: "alice"})
		assert.ErrorIs(t, err, simplesocial.ErrPostNotFound)
	})

	t.Run("DeletePost_NotFound", func(t *testing.T) {
		assert.ErrorIs(t, store.DeletePost(ctx, "missing-id"), simplesocial.ErrPostNotFound)
	})

	t.Run("DeletePost_AnyAuthor", func(t *testing.T) {
		post := newPost("alice", "bye")
		require.NoError(t, store.CreatePost(ctx, post))
		require.NoError(t, store.DeletePost(ctx, post.ID))

		_, err := store.GetPost(ctx, post.ID)
		assert.ErrorIs(t, err, simplesocial.ErrPostNotFound)
	})
}

func TestMemoryStore_ListPosts(t *testing.T) {
	store := memory.New()
	ctx := context.Background()

	posts, err := store.ListPosts(ctx)
	require.NoError(t, err)
	assert.Empty(t, posts)

	ids := map[string]bool{}
	for i := 0; i < 3; i++ {
		post := newPost("alice", fmt.Sprintf("post %d", i))
		require.NoError(t, store.CreatePost(ctx, post))
		ids[post.ID] = true
	}

	posts, err = store.ListPosts(ctx)
	require.NoError(t, err)
	require.Len(t, posts, 3)
	for _, p := range posts {
		assert.True(t, ids[p.ID])
	}
}

func TestMemoryStore_CommentOperations(t *testing.T) {
	store := memory.New()
	ctx := context.Background()

	postA := newPost("alice", "A")
	postB := newPost("bob", "B")
	require.NoError(t, store.CreatePost(ctx, postA))
	require.NoError(t, store.CreatePost(ctx, postB))

	t.Run("CreateComment_MissingPost", func(t *testing.T) {
		err := store.CreateComment(ctx, newComment("missing-id", "alice", "hey"))
		assert.ErrorIs(t, err, simplesocial.ErrPostNotFound)
	})

	t.Run("ListComments_Empty", func(t *testing.T) {
		comments, err := store.ListComments(ctx, postB.ID)
		require.NoError(t, err)
		assert.NotNil(t, comments)
		assert.Empty(t, comments)

		comments, err = store.ListComments(ctx, "missing-id")
		require.NoError(t, err)
		assert.Empty(t, comments)
	})

	t.Run("CreateComment_ListInCreationOrder", func(t *testing.T) {
		first := newComment(postA.ID, "bob", "first")
		second := newComment(postA.ID, "carol", "second")
		require.NoError(t, store.CreateComment(ctx, first))
		require.NoError(t, store.CreateComment(ctx, second))

		comments, err := store.ListComments(ctx, postA.ID)
		require.NoError(t, err)
		require.Len(t, comments, 2)
		assert.Equal(t, first.ID, comments[0].ID)
		assert.Equal(t, second.ID, comments[1].ID)
	})

	t.Run("GetComment_CrossPostIsNotFound", func(t *testing.T) {
		c := newComment(postA.ID, "bob", "on A")
		require.NoError(t, store.CreateComment(ctx, c))

		got, err := store.GetComment(ctx, postA.ID, c.ID)
		require.NoError(t, err)
		assert.Equal(t, c, got)

		got, err = store.GetComment(ctx, postB.ID, c.ID)
		assert.Nil(t, got)
		assert.ErrorIs(t, err, simplesocial.ErrCommentNotFound)
	})

	t.Run("UpdateComment", func(t *testing.T) {
		c := newComment(postA.ID, "bob", "draft")
		require.NoError(t, store.CreateComment(ctx, c))

		_, err := store.UpdateComment(ctx, simplesocial.UpdateCommentParams{
			PostID: postB.ID, CommentID: c.ID, Author: "bob", Content: "x", UpdatedAt: time.Now(),
		})
		assert.ErrorIs(t, err, simplesocial.ErrCommentNotFound)

		_, err = store.UpdateComment(ctx, simplesocial.UpdateCommentParams{
			PostID: postA.ID, CommentID: c.ID, Author: "alice", Content: "x", UpdatedAt: time.Now(),
		})
		assert.ErrorIs(t, err, simplesocial.ErrForbidden)

		later := c.UpdatedAt.Add(time.Second)
		updated, err := store.UpdateComment(ctx, simplesocial.UpdateCommentParams{
			PostID: postA.ID, CommentID: c.ID, Author: "bob", Content: "final", UpdatedAt: later,
		})
		require.NoError(t, err)
		assert.Equal(t, "final", updated.Content)
		assert.Equal(t, later, updated.UpdatedAt)
		assert.Equal(t, c.CreatedAt, updated.CreatedAt)
	})

	t.Run("DeleteComment", func(t *testing.T) {
		c := newComment(postB.ID, "alice", "temp")
		require.NoError(t, store.CreateComment(ctx, c))

		assert.ErrorIs(t, store.DeleteComment(ctx, postA.ID, c.ID), simplesocial.ErrCommentNotFound)
		require.NoError(t, store.DeleteComment(ctx, postB.ID, c.ID))
		assert.ErrorIs(t, store.DeleteComment(ctx, postB.ID, c.ID), simplesocial.ErrCommentNotFound)

		comments, err := store.ListComments(ctx, postB.ID)
		require.NoError(t, err)
		assert.Empty(t, comments)
	})
}

func TestMemoryStore_Likes(t *testing.T) {
	store := memory.New()
	ctx := context.Background()

	post := newPost("alice", "hi")
	require.NoError(t, store.CreatePost(ctx, post))

	liked, changed, err := store.AddLike(ctx, post.ID, "bob")
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, 1, liked.LikeCount)
	assert.Equal(t, []string{"bob"}, liked.LikedBy)

	liked, changed, err = store.AddLike(ctx, post.ID, "bob")
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, 1, liked.LikeCount)
	assert.Equal(t, []string{"bob"}, liked.LikedBy)

	_, _, err = store.AddLike(ctx, post.ID, "carol")
	require.NoError(t, err)

	unliked, changed, err := store.RemoveLike(ctx, post.ID, "dave")
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, []string{"bob", "carol"}, unliked.LikedBy)

	unliked, changed, err = store.RemoveLike(ctx, post.ID, "bob")
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, 1, unliked.LikeCount)
	assert.Equal(t, []string{"carol"}, unliked.LikedBy)

	unliked, _, err = store.RemoveLike(ctx, post.ID, "carol")
	require.NoError(t, err)
	assert.Equal(t, 0, unliked.LikeCount)
	assert.Empty(t, unliked.LikedBy)

	_, _, err = store.AddLike(ctx, "missing-id", "bob")
	assert.ErrorIs(t, err, simplesocial.ErrPostNotFound)
	_, _, err = store.RemoveLike(ctx, "missing-id", "bob")
	assert.ErrorIs(t, err, simplesocial.ErrPostNotFound)
}

func TestMemoryStore_DeletePostCascades(t *testing.T) {
	store := memory.New()
	ctx := context.Background()

	post := newPost("alice", "doomed")
	other := newPost("bob", "survivor")
	require.NoError(t, store.CreatePost(ctx, post))
	require.NoError(t, store.CreatePost(ctx, other))

	c1 := newComment(post.ID, "bob", "one")
	c2 := newComment(post.ID, "carol", "two")
	kept := newComment(other.ID, "alice", "kept")
	for _, c := range []*simplesocial.Comment{c1, c2, kept} {
		require.NoError(t, store.CreateComment(ctx, c))
	}
	for _, who := range []string{"bob", "carol", "dave"} {
		_, _, err := store.AddLike(ctx, post.ID, who)
		require.NoError(t, err)
	}

	require.NoError(t, store.DeletePost(ctx, post.ID))

	comments, err := store.ListComments(ctx, post.ID)
	require.NoError(t, err)
	assert.Empty(t, comments)

	for _, c := range []*simplesocial.Comment{c1, c2} {
		_, err := store.GetComment(ctx, post.ID, c.ID)
		assert.ErrorIs(t, err, simplesocial.ErrCommentNotFound)
	}

	_, err = store.GetComment(ctx, other.ID, kept.ID)
	assert.NoError(t, err)

	posts, comments2 := store.Len()
	assert.Equal(t, 1, posts)
	assert.Equal(t, 1, comments2)

	_, _, err = store.AddLike(ctx, post.ID, "bob")
	assert.ErrorIs(t, err, simplesocial.ErrPostNotFound)
}

func TestMemoryStore_ConcurrentLikes(t *testing.T) {
	store := memory.New()
	ctx := context.Background()

	post := newPost("alice", "popular")
	require.NoError(t, store.CreatePost(ctx, post))

	const users = 50
	var wg sync.WaitGroup
	for i := 0; i < users; i++ {
		for j := 0; j < 3; j++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, _, err := store.AddLike(ctx, post.ID, fmt.Sprintf("user-%d", i))
				assert.NoError(t, err)
			}(i)
		}
	}
	wg.Wait()

	got, err := store.GetPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, users, got.LikeCount)
	assert.Len(t, got.LikedBy, users)
}

func TestMemoryStore_ConcurrentDeleteIsAtomic(t *testing.T) {
	store := memory.New()
	ctx := context.Background()

	post := newPost("alice", "racing")
	require.NoError(t, store.CreatePost(ctx, post))
	for i := 0; i < 20; i++ {
		require.NoError(t, store.CreateComment(ctx, newComment(post.ID, "bob", fmt.Sprintf("c%d", i))))
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		assert.NoError(t, store.DeletePost(ctx, post.ID))
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			comments, err := store.ListComments(ctx, post.ID)
			assert.NoError(t, err)
			// all or nothing
			assert.Contains(t, []int{0, 20}, len(comments))
		}
	}()
	wg.Wait()
}

package seed_test

import (
	"context"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-social/pkg/simplesocial"
	"github.com/tendant/simple-social/pkg/simplesocial/repo/memory"
	"github.com/tendant/simple-social/pkg/simplesocial/seed"
)

func newService(t *testing.T) simplesocial.Service {
	t.Helper()
	svc, err := simplesocial.New(simplesocial.WithStore(memory.New()))
	require.NoError(t, err)
	return svc
}

func TestSeederPosts(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	res, err := seed.New(svc, 42).Posts(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, 10, res.Posts)

	posts, err := svc.ListPosts(ctx)
	require.NoError(t, err)
	require.Len(t, posts, 10)

	comments, likes := 0, 0
	for _, p := range posts {
		assert.NotEmpty(t, p.Author)
		assert.LessOrEqual(t, utf8.RuneCountInString(p.Content), 500)
		assert.LessOrEqual(t, p.LikeCount, 3)
		assert.False(t, p.HasLike(p.Author), "authors do not like their own posts")
		likes += p.LikeCount

		cs, err := svc.ListComments(ctx, p.ID)
		require.NoError(t, err)
		assert.LessOrEqual(t, len(cs), 3)
		for _, c := range cs {
			assert.LessOrEqual(t, utf8.RuneCountInString(c.Content), 300)
		}
		comments += len(cs)
	}
	assert.Equal(t, res.Comments, comments)
	assert.Equal(t, res.Likes, likes)
}

func TestPostsZero(t *testing.T) {
	svc := newService(t)

	res, err := seed.Posts(context.Background(), svc, 0)
	require.NoError(t, err)
	assert.Equal(t, seed.Result{}, res)
}

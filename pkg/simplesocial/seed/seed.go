// Package seed fills a Service with demo posts, comments and likes. It is
// intended for development and testing only.
package seed

import (
	"context"
	"fmt"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/tendant/simple-social/pkg/simplesocial"
)

// Result counts what a seeding run created.
type Result struct {
	Posts    int
	Comments int
	Likes    int
}

// Seeder creates fake content through a Service so that events fire as for
// real traffic.
type Seeder struct {
	svc   simplesocial.Service
	faker *gofakeit.Faker
}

// New creates a Seeder. A zero seed picks one from the clock.
func New(svc simplesocial.Service, seed int64) *Seeder {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Seeder{svc: svc, faker: gofakeit.New(seed)}
}

// Posts creates n posts from a fresh Seeder.
func Posts(ctx context.Context, svc simplesocial.Service, n int) (Result, error) {
	return New(svc, 0).Posts(ctx, n)
}

// Posts creates n posts, each with 0-3 comments and 0-3 likes by other users.
func (s *Seeder) Posts(ctx context.Context, n int) (Result, error) {
	var res Result
	for i := 0; i < n; i++ {
		author := s.username()
		post, err := s.svc.CreatePost(ctx, simplesocial.CreatePostRequest{
			Author:  author,
			Content: s.faker.Sentence(s.faker.Number(4, 20)),
		})
		if err != nil {
			return res, fmt.Errorf("failed to seed post %d: %w", i, err)
		}
		res.Posts++

		for c := s.faker.Number(0, 3); c > 0; c-- {
			_, err := s.svc.CreateComment(ctx, simplesocial.CreateCommentRequest{
				PostID:  post.ID,
				Author:  s.username(),
				Content: s.faker.Sentence(s.faker.Number(3, 12)),
			})
			if err != nil {
				return res, fmt.Errorf("failed to seed comment on post %s: %w", post.ID, err)
			}
			res.Comments++
		}

		for l := s.faker.Number(0, 3); l > 0; l-- {
			liker := s.username()
			if liker == author {
				continue
			}
			liked, err := s.svc.AddLike(ctx, post.ID, liker)
			if err != nil {
				return res, fmt.Errorf("failed to seed like on post %s: %w", post.ID, err)
			}
			post = liked
		}
		res.Likes += post.LikeCount
	}
	return res, nil
}

func (s *Seeder) username() string {
	return s.faker.Username()
}

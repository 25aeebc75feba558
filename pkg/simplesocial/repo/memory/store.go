package memory

import (
	"context"
	"sync"

	"github.com/tendant/simple-social/pkg/simplesocial"
)

// Store implements simplesocial.Store using in-memory storage.
//
// A single RWMutex guards all collections so that a post delete and its
// cascade are observed atomically by readers.
type Store struct {
	mu             sync.RWMutex
	posts          map[string]*simplesocial.Post
	comments       map[string]*simplesocial.Comment
	commentsByPost map[string][]string            // post_id -> []comment_id, creation order
	likes          map[string]map[string]struct{} // post_id -> set of authors
}

// New creates a new in-memory store
func New() *Store {
	return &Store{
		posts:          make(map[string]*simplesocial.Post),
		comments:       make(map[string]*simplesocial.Comment),
		commentsByPost: make(map[string][]string),
		likes:          make(map[string]map[string]struct{}),
	}
}

var _ simplesocial.Store = (*Store)(nil)

// Post operations

func (s *Store) ListPosts(ctx context.Context) ([]*simplesocial.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*simplesocial.Post, 0, len(s.posts))
	for _, post := range s.posts {
		result = append(result, post.Clone())
	}
	return result, nil
}

func (s *Store) CreatePost(ctx context.Context, post *simplesocial.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Create a copy to avoid external modifications
	postCopy := post.Clone()
	postCopy.LikedBy = postCopy.LikedBy[:0]
	postCopy.LikeCount = 0
	s.posts[post.ID] = postCopy
	s.likes[post.ID] = make(map[string]struct{})

	return nil
}

func (s *Store) GetPost(ctx context.Context, id string) (*simplesocial.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	post, exists := s.posts[id]
	if !exists {
		return nil, simplesocial.ErrPostNotFound
	}
	return post.Clone(), nil
}

func (s *Store) UpdatePost(ctx context.Context, params simplesocial.UpdatePostParams) (*simplesocial.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	post, exists := s.posts[params.ID]
	if !exists {
		return nil, simplesocial.ErrPostNotFound
	}
	if post.Author != params.Author {
		return nil, simplesocial.ErrForbidden
	}

	post.Content = params.Content
	post.UpdatedAt = params.UpdatedAt
	return post.Clone(), nil
}

func (s *Store) DeletePost(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.posts[id]; !exists {
		return simplesocial.ErrPostNotFound
	}

	delete(s.posts, id)
	for _, commentID := range s.commentsByPost[id] {
		delete(s.comments, commentID)
	}
	delete(s.commentsByPost, id)
	delete(s.likes, id)

	return nil
}

// Comment operations

func (s *Store) ListComments(ctx context.Context, postID string) ([]*simplesocial.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.commentsByPost[postID]
	result := make([]*simplesocial.Comment, 0, len(ids))
	for _, id := range ids {
		commentCopy := *s.comments[id]
		result = append(result, &commentCopy)
	}
	return result, nil
}

// comment returns the stored comment only if it belongs to postID.
// Callers must hold the lock.
func (s *Store) comment(postID, commentID string) (*simplesocial.Comment, bool) {
	c, exists := s.comments[commentID]
	if !exists || c.PostID != postID {
		return nil, false
	}
	return c, true
}

func (s *Store) GetComment(ctx context.Context, postID, commentID string) (*simplesocial.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.comment(postID, commentID)
	if !ok {
		return nil, simplesocial.ErrCommentNotFound
	}
	commentCopy := *c
	return &commentCopy, nil
}

func (s *Store) CreateComment(ctx context.Context, comment *simplesocial.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Verify post exists
	if _, exists := s.posts[comment.PostID]; !exists {
		return simplesocial.ErrPostNotFound
	}

	commentCopy := *comment
	s.comments[comment.ID] = &commentCopy
	s.commentsByPost[comment.PostID] = append(s.commentsByPost[comment.PostID], comment.ID)

	return nil
}

func (s *Store) UpdateComment(ctx context.Context, params simplesocial.UpdateCommentParams) (*simplesocial.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.comment(params.PostID, params.CommentID)
	if !ok {
		return nil, simplesocial.ErrCommentNotFound
	}
	if c.Author != params.Author {
		return nil, simplesocial.ErrForbidden
	}

	c.Content = params.Content
	c.UpdatedAt = params.UpdatedAt
	commentCopy := *c
	return &commentCopy, nil
}

func (s *Store) DeleteComment(ctx context.Context, postID, commentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.comment(postID, commentID); !ok {
		return simplesocial.ErrCommentNotFound
	}

	delete(s.comments, commentID)
	ids := s.commentsByPost[postID]
	for i, id := range ids {
		if id == commentID {
			s.commentsByPost[postID] = append(ids[:i:i], ids[i+1:]...)
			break
		}
	}

	return nil
}

// Like operations

func (s *Store) AddLike(ctx context.Context, postID, author string) (*simplesocial.Post, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	post, exists := s.posts[postID]
	if !exists {
		return nil, false, simplesocial.ErrPostNotFound
	}

	likedBy := s.likes[postID]
	if _, liked := likedBy[author]; liked {
		return post.Clone(), false, nil
	}

	likedBy[author] = struct{}{}
	post.LikedBy = append(post.LikedBy, author)
	post.LikeCount = len(post.LikedBy)
	return post.Clone(), true, nil
}

func (s *Store) RemoveLike(ctx context.Context, postID, author string) (*simplesocial.Post, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	post, exists := s.posts[postID]
	if !exists {
		return nil, false, simplesocial.ErrPostNotFound
	}

	likedBy := s.likes[postID]
	if _, liked := likedBy[author]; !liked {
		return post.Clone(), false, nil
	}

	delete(likedBy, author)
	for i, a := range post.LikedBy {
		if a == author {
			post.LikedBy = append(post.LikedBy[:i:i], post.LikedBy[i+1:]...)
			break
		}
	}
	post.LikeCount = len(post.LikedBy)
	return post.Clone(), true, nil
}

// Len returns the number of stored posts and comments.
func (s *Store) Len() (posts, comments int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.posts), len(s.comments)
}

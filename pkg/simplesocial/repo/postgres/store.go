package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tendant/simple-social/pkg/simplesocial"
)

// DBTX is an interface that allows us to use either a database connection or a transaction
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
	Begin(context.Context) (pgx.Tx, error)
}

// Store implements simplesocial.Store using PostgreSQL
type Store struct {
	db DBTX
}

// New creates a new PostgreSQL store
func New(db DBTX) *Store {
	return &Store{db: db}
}

// NewWithPool creates a new PostgreSQL store with connection pool
func NewWithPool(pool *pgxpool.Pool) *Store {
	return &Store{db: pool}
}

var _ simplesocial.Store = (*Store)(nil)

const dropSchema = `DROP TABLE IF EXISTS likes, comments, posts`

const createSchema = `
	CREATE TABLE posts (
		id         TEXT PRIMARY KEY,
		username   VARCHAR(100) NOT NULL,
		content    TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	);

	CREATE TABLE comments (
		id         TEXT PRIMARY KEY,
		seq        BIGSERIAL,
		post_id    TEXT NOT NULL REFERENCES posts(id) ON DELETE CASCADE,
		username   VARCHAR(100) NOT NULL,
		content    TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	);
	CREATE INDEX comments_post_id_seq_idx ON comments (post_id, seq);

	CREATE TABLE likes (
		post_id  TEXT NOT NULL REFERENCES posts(id) ON DELETE CASCADE,
		username VARCHAR(100) NOT NULL,
		seq      BIGSERIAL,
		PRIMARY KEY (post_id, username)
	);`

// Reset drops and recreates the tables in the connection's search_path.
// Data never survives a restart.
func (s *Store) Reset(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, dropSchema); err != nil {
		return s.handlePostgresError("drop schema", err)
	}
	if _, err := s.db.Exec(ctx, createSchema); err != nil {
		return s.handlePostgresError("create schema", err)
	}
	return nil
}

// Error handling helper
func (s *Store) handlePostgresError(operation string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23503": // foreign_key_violation; comments and likes only reference posts
			return simplesocial.ErrPostNotFound
		case "23505": // unique_violation
			return fmt.Errorf("duplicate entry in %s: %s", operation, pgErr.ConstraintName)
		case "23502": // not_null_violation
			return fmt.Errorf("required field %s is missing", pgErr.ColumnName)
		case "42P01": // undefined_table
			return fmt.Errorf("table does not exist - store reset required")
		default:
			return fmt.Errorf("database error in %s: %s (code: %s)", operation, pgErr.Message, pgErr.Code)
		}
	}

	return fmt.Errorf("database error in %s: %w", operation, err)
}

// withTx runs fn in a transaction, committing only when fn succeeds.
func (s *Store) withTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return s.handlePostgresError("begin", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return s.handlePostgresError("commit", err)
	}
	return nil
}

// Post operations

const selectPost = `
	SELECT p.id, p.username, p.content, p.created_at, p.updated_at,
	       COALESCE((SELECT array_agg(l.username ORDER BY l.seq)
	                 FROM likes l WHERE l.post_id = p.id), '{}')
	FROM posts p`

func scanPost(row pgx.Row) (*simplesocial.Post, error) {
	var post simplesocial.Post
	if err := row.Scan(&post.ID, &post.Author, &post.Content,
		&post.CreatedAt, &post.UpdatedAt, &post.LikedBy); err != nil {
		return nil, err
	}
	post.CreatedAt = post.CreatedAt.UTC()
	post.UpdatedAt = post.UpdatedAt.UTC()
	if post.LikedBy == nil {
		post.LikedBy = []string{}
	}
	post.LikeCount = len(post.LikedBy)
	return &post, nil
}

func (s *Store) getPost(ctx context.Context, db DBTX, id string) (*simplesocial.Post, error) {
	post, err := scanPost(db.QueryRow(ctx, selectPost+` WHERE p.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, simplesocial.ErrPostNotFound
		}
		return nil, s.handlePostgresError("get post", err)
	}
	return post, nil
}

// lockPost takes a row lock on the post and returns its author.
func (s *Store) lockPost(ctx context.Context, tx pgx.Tx, id string) (string, error) {
	var author string
	err := tx.QueryRow(ctx, `SELECT username FROM posts WHERE id = $1 FOR UPDATE`, id).Scan(&author)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", simplesocial.ErrPostNotFound
		}
		return "", s.handlePostgresError("lock post", err)
	}
	return author, nil
}

func (s *Store) ListPosts(ctx context.Context) ([]*simplesocial.Post, error) {
	rows, err := s.db.Query(ctx, selectPost)
	if err != nil {
		return nil, s.handlePostgresError("list posts", err)
	}
	defer rows.Close()

	posts := []*simplesocial.Post{}
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, s.handlePostgresError("scan post", err)
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, s.handlePostgresError("list posts", err)
	}
	return posts, nil
}

func (s *Store) CreatePost(ctx context.Context, post *simplesocial.Post) error {
	query := `
		INSERT INTO posts (id, username, content, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := s.db.Exec(ctx, query, post.ID, post.Author, post.Content, post.CreatedAt, post.UpdatedAt)
	if err != nil {
		return s.handlePostgresError("create post", err)
	}
	return nil
}

func (s *Store) GetPost(ctx context.Context, id string) (*simplesocial.Post, error) {
	return s.getPost(ctx, s.db, id)
}

func (s *Store) UpdatePost(ctx context.Context, params simplesocial.UpdatePostParams) (*simplesocial.Post, error) {
	var post *simplesocial.Post
	err := s.withTx(ctx, func(tx pgx.Tx) error {
		author, err := s.lockPost(ctx, tx, params.ID)
		if err != nil {
			return err
		}
		if author != params.Author {
			return simplesocial.ErrForbidden
		}

		_, err = tx.Exec(ctx, `UPDATE posts SET content = $2, updated_at = $3 WHERE id = $1`,
			params.ID, params.Content, params.UpdatedAt)
		if err != nil {
			return s.handlePostgresError("update post", err)
		}

		post, err = s.getPost(ctx, tx, params.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return post, nil
}

// DeletePost removes the post; comments and likes go with it through ON DELETE CASCADE
// in the same statement.
func (s *Store) DeletePost(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return s.handlePostgresError("delete post", err)
	}
	if tag.RowsAffected() == 0 {
		return simplesocial.ErrPostNotFound
	}
	return nil
}

// Comment operations

const selectComment = `
	SELECT id, post_id, username, content, created_at, updated_at
	FROM comments`

func scanComment(row pgx.Row) (*simplesocial.Comment, error) {
	var c simplesocial.Comment
	if err := row.Scan(&c.ID, &c.PostID, &c.Author, &c.Content, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	c.CreatedAt = c.CreatedAt.UTC()
	c.UpdatedAt = c.UpdatedAt.UTC()
	return &c, nil
}

func (s *Store) ListComments(ctx context.Context, postID string) ([]*simplesocial.Comment, error) {
	rows, err := s.db.Query(ctx, selectComment+` WHERE post_id = $1 ORDER BY seq`, postID)
	if err != nil {
		return nil, s.handlePostgresError("list comments", err)
	}
	defer rows.Close()

	comments := []*simplesocial.Comment{}
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, s.handlePostgresError("scan comment", err)
		}
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, s.handlePostgresError("list comments", err)
	}
	return comments, nil
}

func (s *Store) getComment(ctx context.Context, db DBTX, postID, commentID string) (*simplesocial.Comment, error) {
	c, err := scanComment(db.QueryRow(ctx, selectComment+` WHERE id = $1 AND post_id = $2`, commentID, postID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, simplesocial.ErrCommentNotFound
		}
		return nil, s.handlePostgresError("get comment", err)
	}
	return c, nil
}

func (s *Store) GetComment(ctx context.Context, postID, commentID string) (*simplesocial.Comment, error) {
	return s.getComment(ctx, s.db, postID, commentID)
}

func (s *Store) CreateComment(ctx context.Context, comment *simplesocial.Comment) error {
	query := `
		INSERT INTO comments (id, post_id, username, content, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := s.db.Exec(ctx, query, comment.ID, comment.PostID, comment.Author,
		comment.Content, comment.CreatedAt, comment.UpdatedAt)
	if err != nil {
		return s.handlePostgresError("create comment", err)
	}
	return nil
}

func (s *Store) UpdateComment(ctx context.Context, params simplesocial.UpdateCommentParams) (*simplesocial.Comment, error) {
	var comment *simplesocial.Comment
	err := s.withTx(ctx, func(tx pgx.Tx) error {
		var author string
		err := tx.QueryRow(ctx,
			`SELECT username FROM comments WHERE id = $1 AND post_id = $2 FOR UPDATE`,
			params.CommentID, params.PostID).Scan(&author)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return simplesocial.ErrCommentNotFound
			}
			return s.handlePostgresError("lock comment", err)
		}
		if author != params.Author {
			return simplesocial.ErrForbidden
		}

		_, err = tx.Exec(ctx, `UPDATE comments SET content = $2, updated_at = $3 WHERE id = $1`,
			params.CommentID, params.Content, params.UpdatedAt)
		if err != nil {
			return s.handlePostgresError("update comment", err)
		}

		comment, err = s.getComment(ctx, tx, params.PostID, params.CommentID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return comment, nil
}

func (s *Store) DeleteComment(ctx context.Context, postID, commentID string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM comments WHERE id = $1 AND post_id = $2`, commentID, postID)
	if err != nil {
		return s.handlePostgresError("delete comment", err)
	}
	if tag.RowsAffected() == 0 {
		return simplesocial.ErrCommentNotFound
	}
	return nil
}

// Like operations

func (s *Store) AddLike(ctx context.Context, postID, author string) (*simplesocial.Post, bool, error) {
	return s.toggleLike(ctx, postID,
		`INSERT INTO likes (post_id, username) VALUES ($1, $2) ON CONFLICT DO NOTHING`, author)
}

func (s *Store) RemoveLike(ctx context.Context, postID, author string) (*simplesocial.Post, bool, error) {
	return s.toggleLike(ctx, postID,
		`DELETE FROM likes WHERE post_id = $1 AND username = $2`, author)
}

func (s *Store) toggleLike(ctx context.Context, postID, stmt, author string) (*simplesocial.Post, bool, error) {
	var (
		post    *simplesocial.Post
		changed bool
	)
	err := s.withTx(ctx, func(tx pgx.Tx) error {
		if _, err := s.lockPost(ctx, tx, postID); err != nil {
			return err
		}

		tag, err := tx.Exec(ctx, stmt, postID, author)
		if err != nil {
			return s.handlePostgresError("toggle like", err)
		}
		changed = tag.RowsAffected() == 1

		post, err = s.getPost(ctx, tx, postID)
		return err
	})
	if err != nil {
		return nil, false, err
	}
	return post, changed, nil
}

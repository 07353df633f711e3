// Package blog implements the blog app's posts and comments: a public
// hydrated feed, authenticated creation, and comment appends. Appending a
// comment is a single INSERT, so concurrent commenters on the same post
// cannot overwrite each other.
package blog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/user/miniweb-go/apperror"
	"github.com/user/miniweb-go/auth"
)

// pgForeignKeyViolation is the PostgreSQL foreign key violation code.
const pgForeignKeyViolation = "23503"

// Store is the post/comment persistence interface the handlers depend on.
type Store interface {
	CreatePost(ctx context.Context, post *Post) (*Post, error)
	ListPosts(ctx context.Context) ([]PostView, error)
	GetPost(ctx context.Context, id int64) (*PostView, error)
	AddComment(ctx context.Context, comment *Comment) (*Comment, error)
	PostsByAuthor(ctx context.Context, authorID int64) ([]Post, error)
}

// PGStore implements Store against the blog database.
type PGStore struct {
	db *pgxpool.Pool
}

// NewPGStore creates a PGStore.
func NewPGStore(db *pgxpool.Pool) *PGStore {
	return &PGStore{db: db}
}

// CreatePost inserts a post and returns it with id and creation time set.
func (s *PGStore) CreatePost(ctx context.Context, post *Post) (*Post, error) {
	query := `INSERT INTO posts (title, content, author_id)
	          VALUES ($1, $2, $3)
	          RETURNING id, created_at`
	err := s.db.QueryRow(ctx, query, post.Title, post.Content, post.AuthorID).
		Scan(&post.ID, &post.CreatedAt)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to create post", err)
	}
	return post, nil
}

// scanAuthor builds the hydrated author from LEFT JOIN columns. All columns
// are null together when the referenced user is gone.
func scanAuthor(id sql.NullInt64, username, email sql.NullString, createdAt sql.NullTime) *auth.User {
	if !id.Valid {
		return nil
	}
	return &auth.User{
		ID:        id.Int64,
		Username:  username.String,
		Email:     email.String,
		CreatedAt: createdAt.Time,
	}
}

// ListPosts returns every post with its author resolved, oldest first.
func (s *PGStore) ListPosts(ctx context.Context) ([]PostView, error) {
	query := `
		SELECT p.id, p.title, p.content, p.created_at,
		       u.id, u.username, u.email, u.created_at
		FROM posts p
		LEFT JOIN users u ON u.id = p.author_id
		ORDER BY p.id`
	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to list posts", err)
	}
	defer rows.Close()

	posts := []PostView{}
	for rows.Next() {
		var pv PostView
		var uID sql.NullInt64
		var uName, uEmail sql.NullString
		var uCreated sql.NullTime
		if err := rows.Scan(&pv.ID, &pv.Title, &pv.Content, &pv.CreatedAt,
			&uID, &uName, &uEmail, &uCreated); err != nil {
			return nil, apperror.NewDatabaseError("failed to scan post", err)
		}
		pv.Author = scanAuthor(uID, uName, uEmail, uCreated)
		posts = append(posts, pv)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewDatabaseError("failed to list posts", err)
	}
	return posts, nil
}

// GetPost returns one post with its author and all comments resolved, the
// comments in append order.
func (s *PGStore) GetPost(ctx context.Context, id int64) (*PostView, error) {
	query := `
		SELECT p.id, p.title, p.content, p.created_at,
		       u.id, u.username, u.email, u.created_at
		FROM posts p
		LEFT JOIN users u ON u.id = p.author_id
		WHERE p.id = $1`
	var pv PostView
	var uID sql.NullInt64
	var uName, uEmail sql.NullString
	var uCreated sql.NullTime
	err := s.db.QueryRow(ctx, query, id).Scan(&pv.ID, &pv.Title, &pv.Content, &pv.CreatedAt,
		&uID, &uName, &uEmail, &uCreated)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFoundError(fmt.Sprintf("post %d not found", id), nil)
		}
		return nil, apperror.NewDatabaseError("failed to get post", err)
	}
	pv.Author = scanAuthor(uID, uName, uEmail, uCreated)

	commentsQuery := `
		SELECT c.id, c.content, c.created_at,
		       u.id, u.username, u.email, u.created_at
		FROM comments c
		LEFT JOIN users u ON u.id = c.author_id
		WHERE c.post_id = $1
		ORDER BY c.id`
	rows, err := s.db.Query(ctx, commentsQuery, id)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to list comments", err)
	}
	defer rows.Close()

	for rows.Next() {
		var cv CommentView
		var cuID sql.NullInt64
		var cuName, cuEmail sql.NullString
		var cuCreated sql.NullTime
		if err := rows.Scan(&cv.ID, &cv.Content, &cv.CreatedAt,
			&cuID, &cuName, &cuEmail, &cuCreated); err != nil {
			return nil, apperror.NewDatabaseError("failed to scan comment", err)
		}
		cv.Author = scanAuthor(cuID, cuName, cuEmail, cuCreated)
		pv.Comments = append(pv.Comments, cv)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewDatabaseError("failed to list comments", err)
	}
	return &pv, nil
}

// AddComment appends a comment to a post. The insert is atomic; there is no
// read-modify-write of the post record.
func (s *PGStore) AddComment(ctx context.Context, comment *Comment) (*Comment, error) {
	query := `INSERT INTO comments (post_id, author_id, content)
	          VALUES ($1, $2, $3)
	          RETURNING id, created_at`
	err := s.db.QueryRow(ctx, query, comment.PostID, comment.AuthorID, comment.Content).
		Scan(&comment.ID, &comment.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
			return nil, apperror.NewNotFoundError(fmt.Sprintf("post %d not found", comment.PostID), nil)
		}
		return nil, apperror.NewDatabaseError("failed to add comment", err)
	}
	return comment, nil
}

// PostsByAuthor returns the raw posts created by one user, oldest first.
func (s *PGStore) PostsByAuthor(ctx context.Context, authorID int64) ([]Post, error) {
	query := `SELECT id, title, content, author_id, created_at
	          FROM posts WHERE author_id = $1 ORDER BY id`
	rows, err := s.db.Query(ctx, query, authorID)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to list posts by author", err)
	}
	defer rows.Close()

	posts := []Post{}
	for rows.Next() {
		var p Post
		if err := rows.Scan(&p.ID, &p.Title, &p.Content, &p.AuthorID, &p.CreatedAt); err != nil {
			return nil, apperror.NewDatabaseError("failed to scan post", err)
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewDatabaseError("failed to list posts by author", err)
	}
	return posts, nil
}

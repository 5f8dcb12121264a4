package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
)

const pgUniqueViolation = "23505"

// PostgresStore implements Store on top of PostgreSQL via the pgx stdlib
// driver.
type PostgresStore struct {
	db *sql.DB
}

// OpenPostgres opens a connection pool for the given DSN. Schema management
// is handled separately by cmd/migrate.
func OpenPostgres(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres connection: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) CreateUser(ctx context.Context, user *User) error {
	// Existence check before insert mirrors the write path's contract; the
	// unique index on email still backstops it, so a lost race maps to the
	// same error.
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`, user.Email,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check email existence: %w", err)
	}
	if exists {
		return ErrEmailTaken
	}

	err = s.db.QueryRowContext(ctx, `
		INSERT INTO users (name, email, password, active)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, user.Name, user.Email, user.Password, user.Active).Scan(&user.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return ErrEmailTaken
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

func (s *PostgresStore) UserByEmail(ctx context.Context, email string) (*User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx, `
		SELECT id, name, email, password, active FROM users WHERE email = $1
	`, email))
}

func (s *PostgresStore) UserByID(ctx context.Context, id int64) (*User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx, `
		SELECT id, name, email, password, active FROM users WHERE id = $1
	`, id))
}

func (s *PostgresStore) scanUser(row *sql.Row) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Password, &u.Active)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	return &u, nil
}

func (s *PostgresStore) TagByName(ctx context.Context, name string) (*Tag, error) {
	var t Tag
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name FROM tags WHERE name = $1 ORDER BY id LIMIT 1
	`, name).Scan(&t.ID, &t.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to query tag: %w", err)
	}
	return &t, nil
}

func (s *PostgresStore) CreatePost(ctx context.Context, post *Post) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, tag := range post.Tags {
		if tag.ID != 0 {
			continue
		}
		err := tx.QueryRowContext(ctx,
			`INSERT INTO tags (name) VALUES ($1) RETURNING id`, tag.Name,
		).Scan(&tag.ID)
		if err != nil {
			return fmt.Errorf("failed to insert tag: %w", err)
		}
	}

	err = tx.QueryRowContext(ctx, `
		INSERT INTO posts (title, excerpt, context, published_at, publish_status,
			created_at, updated_at, author, user_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`, post.Title, post.Excerpt, post.Content, post.PublishedAt, post.PublishStatus,
		post.CreatedAt, post.UpdatedAt, post.Author, post.UserID).Scan(&post.ID)
	if err != nil {
		return fmt.Errorf("failed to insert post: %w", err)
	}

	for _, tag := range post.Tags {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO post_tags (post_id, tag_id) VALUES ($1, $2)`,
			post.ID, tag.ID)
		if err != nil {
			return fmt.Errorf("failed to link tag: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit post: %w", err)
	}
	return nil
}

func (s *PostgresStore) PostsByOwner(ctx context.Context, ownerID int64, offset, limit int) ([]*Post, int, error) {
	var total int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM posts WHERE user_id = $1`, ownerID,
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count posts: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, excerpt, context, published_at, publish_status,
			created_at, updated_at, author, user_id
		FROM posts
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`, ownerID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query posts: %w", err)
	}
	defer rows.Close()

	var posts []*Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, 0, err
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("row iteration error: %w", err)
	}

	if err := s.loadAggregates(ctx, posts); err != nil {
		return nil, 0, err
	}
	if posts == nil {
		posts = []*Post{}
	}
	return posts, total, nil
}

func (s *PostgresStore) PostByID(ctx context.Context, id, ownerID int64) (*Post, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, title, excerpt, context, published_at, publish_status,
			created_at, updated_at, author, user_id
		FROM posts
		WHERE id = $1 AND user_id = $2
	`, id, ownerID)

	p, err := scanPost(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if err := s.loadAggregates(ctx, []*Post{p}); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(row rowScanner) (*Post, error) {
	var p Post
	err := row.Scan(&p.ID, &p.Title, &p.Excerpt, &p.Content, &p.PublishedAt,
		&p.PublishStatus, &p.CreatedAt, &p.UpdatedAt, &p.Author, &p.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan post: %w", err)
	}
	return &p, nil
}

// loadAggregates fills tags and comments for a page of posts with two batch
// queries instead of one pair per post.
func (s *PostgresStore) loadAggregates(ctx context.Context, posts []*Post) error {
	if len(posts) == 0 {
		return nil
	}

	byID := make(map[int64]*Post, len(posts))
	ids := make([]int64, 0, len(posts))
	for _, p := range posts {
		p.Tags = []*Tag{}
		p.Comments = []*Comment{}
		byID[p.ID] = p
		ids = append(ids, p.ID)
	}

	tagRows, err := s.db.QueryContext(ctx, `
		SELECT pt.post_id, t.id, t.name
		FROM post_tags pt
		JOIN tags t ON t.id = pt.tag_id
		WHERE pt.post_id = ANY($1)
		ORDER BY pt.post_id, t.id
	`, ids)
	if err != nil {
		return fmt.Errorf("failed to query post tags: %w", err)
	}
	defer tagRows.Close()

	for tagRows.Next() {
		var postID int64
		var t Tag
		if err := tagRows.Scan(&postID, &t.ID, &t.Name); err != nil {
			return fmt.Errorf("failed to scan post tag: %w", err)
		}
		if p, ok := byID[postID]; ok {
			p.Tags = append(p.Tags, &t)
		}
	}
	if err := tagRows.Err(); err != nil {
		return fmt.Errorf("row iteration error: %w", err)
	}

	commentRows, err := s.db.QueryContext(ctx, `
		SELECT id, post_id, author, content, created_at
		FROM comments
		WHERE post_id = ANY($1)
		ORDER BY post_id, id
	`, ids)
	if err != nil {
		return fmt.Errorf("failed to query comments: %w", err)
	}
	defer commentRows.Close()

	for commentRows.Next() {
		var c Comment
		if err := commentRows.Scan(&c.ID, &c.PostID, &c.Author, &c.Content, &c.CreatedAt); err != nil {
			return fmt.Errorf("failed to scan comment: %w", err)
		}
		if p, ok := byID[c.PostID]; ok {
			p.Comments = append(p.Comments, &c)
		}
	}
	if err := commentRows.Err(); err != nil {
		return fmt.Errorf("row iteration error: %w", err)
	}
	return nil
}

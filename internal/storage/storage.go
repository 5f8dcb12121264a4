package storage

import (
	"context"
	"errors"
	"fmt"
)

// Common storage errors.
var (
	ErrNotFound   = errors.New("record not found")
	ErrEmailTaken = errors.New("email already in use")
)

// Store is the durable state behind the auth and blog services. All methods
// are safe for concurrent use.
type Store interface {
	// CreateUser inserts a new user and assigns its ID. Returns
	// ErrEmailTaken when the email is already registered.
	CreateUser(ctx context.Context, user *User) error

	// UserByEmail looks up a user by its unique email.
	UserByEmail(ctx context.Context, email string) (*User, error)

	// UserByID looks up a user by primary key.
	UserByID(ctx context.Context, id int64) (*User, error)

	// TagByName looks up a tag by its exact name. Returns ErrNotFound on
	// miss; it never creates anything.
	TagByName(ctx context.Context, name string) (*Tag, error)

	// CreatePost persists the post, any attached tags that do not exist yet
	// (ID zero), and the post-tag links as a single atomic unit. Tag IDs are
	// filled in on the attached entities.
	CreatePost(ctx context.Context, post *Post) error

	// PostsByOwner returns one page of the owner's posts ordered newest
	// first, with tags and comments populated, plus the owner's total post
	// count.
	PostsByOwner(ctx context.Context, ownerID int64, offset, limit int) ([]*Post, int, error)

	// PostByID returns the post only when it belongs to ownerID. A post
	// owned by someone else is reported as ErrNotFound, same as a missing
	// one.
	PostByID(ctx context.Context, id, ownerID int64) (*Post, error)

	// Ping reports whether the backing store is reachable.
	Ping(ctx context.Context) error

	// Close releases the underlying resources.
	Close() error
}

// Config selects and configures a storage backend.
type Config struct {
	Backend     string // "memory" or "postgres"
	PostgresDSN string
}

// Open creates a Store for the configured backend. An empty backend defaults
// to the in-memory store so the service runs without external infrastructure.
func Open(cfg Config) (Store, error) {
	switch cfg.Backend {
	case "", "memory":
		return NewMemoryStore(), nil
	case "postgres":
		if cfg.PostgresDSN == "" {
			return nil, fmt.Errorf("postgres backend requires a DSN")
		}
		return OpenPostgres(cfg.PostgresDSN)
	default:
		return nil, fmt.Errorf("unsupported storage backend: %s", cfg.Backend)
	}
}

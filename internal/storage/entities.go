package storage

import "time"

// User represents a registered account. Password holds the bcrypt digest,
// never the plaintext, and is excluded from JSON output.
type User struct {
	ID       int64  `json:"id" db:"id"`
	Name     string `json:"name" db:"name"`
	Email    string `json:"email" db:"email"`
	Password string `json:"-" db:"password"`
	Active   int    `json:"active" db:"active"`
}

// Post is the aggregate returned by all read paths: tags and comments are
// always populated eagerly, there is no lazy variant.
//
// Content keeps its original wire name "context" for client compatibility.
// Author is a snapshot of the owner's display name (or email) taken at
// creation time and is intentionally not kept in sync with later user edits.
type Post struct {
	ID            int64      `json:"id" db:"id"`
	Title         string     `json:"title" db:"title"`
	Excerpt       string     `json:"excerpt" db:"excerpt"`
	Content       string     `json:"context" db:"context"`
	PublishedAt   *time.Time `json:"publishedAt,omitempty" db:"published_at"`
	PublishStatus bool       `json:"publishStatus" db:"publish_status"`
	CreatedAt     time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time  `json:"updatedAt" db:"updated_at"`
	Author        string     `json:"author" db:"author"`
	UserID        int64      `json:"userId" db:"user_id"`
	Tags          []*Tag     `json:"tags"`
	Comments      []*Comment `json:"comments"`
}

// Tag is deduplicated by name at reconciliation time. Storage does not
// enforce name uniqueness, so concurrent creation can still produce
// duplicate rows (see the reconciler in internal/blog).
type Tag struct {
	ID   int64  `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}

// Comment is a child of Post. It is only ever read back as part of a post
// aggregate; there is no comment write path.
type Comment struct {
	ID        int64     `json:"id" db:"id"`
	PostID    int64     `json:"postId" db:"post_id"`
	Author    string    `json:"author" db:"author"`
	Content   string    `json:"content" db:"content"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// Role is modeled in the schema but never consulted by any access-control
// decision.
type Role struct {
	ID   int64  `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}

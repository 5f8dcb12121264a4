package api

import (
	"time"

	"github.com/bloghq/blog-backend/internal/storage"
)

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expiresIn"`
	UserID    int64  `json:"userId"`
	Email     string `json:"email"`
	Name      string `json:"name"`
}

// CreatePostRequest carries the post body under the legacy "context" key,
// which existing clients depend on.
type CreatePostRequest struct {
	Title         string     `json:"title"`
	Excerpt       string     `json:"excerpt"`
	Content       string     `json:"context"`
	PublishedAt   *time.Time `json:"publishedAt"`
	PublishStatus bool       `json:"publishStatus"`
	Tags          []string   `json:"tags"`
}

type PagedPostsResponse struct {
	Items      []*storage.Post `json:"items"`
	PageNumber int             `json:"pageNumber"`
	PageSize   int             `json:"pageSize"`
	TotalCount int             `json:"totalCount"`
	TotalPages int             `json:"totalPages"`
}

type HealthResponse struct {
	Status string `json:"status"`
}

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

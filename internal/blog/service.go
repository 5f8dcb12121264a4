package blog

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/bloghq/blog-backend/internal/auth"
	"github.com/bloghq/blog-backend/internal/storage"
)

// ErrTitleRequired is returned when a post is created with an empty or
// whitespace-only title.
var ErrTitleRequired = errors.New("title is required")

// MaxPageSize caps the page size of post listings.
const MaxPageSize = 100

// MetricsRecorder receives domain counters. May be nil.
type MetricsRecorder interface {
	RecordPostCreated(ctx context.Context)
	RecordTagCreated(ctx context.Context)
}

// Service owns the post lifecycle: creation with tag reconciliation and
// ownership-scoped reads.
type Service struct {
	store   storage.Store
	logger  *zap.SugaredLogger
	metrics MetricsRecorder
	now     func() time.Time
}

// CreatePostInput is the validated payload for a new post.
type CreatePostInput struct {
	Title         string
	Excerpt       string
	Content       string
	PublishedAt   *time.Time
	PublishStatus bool
	Tags          []string
}

// PagedPosts is one page of a user's posts plus the paging envelope.
type PagedPosts struct {
	Items      []*storage.Post
	PageNumber int
	PageSize   int
	TotalCount int
	TotalPages int
}

func NewService(store storage.Store, logger *zap.SugaredLogger, metrics MetricsRecorder) *Service {
	return &Service{
		store:   store,
		logger:  logger,
		metrics: metrics,
		now:     time.Now,
	}
}

// CreatePost validates the input, reconciles the tag names and persists the
// post together with its tag links as one atomic unit. The author label is a
// snapshot of the owner's current name (email when the name is blank) and is
// never re-derived afterwards.
func (s *Service) CreatePost(ctx context.Context, ownerID int64, input CreatePostInput) (*storage.Post, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, ErrTitleRequired
	}

	owner, err := s.store.UserByID(ctx, ownerID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, auth.ErrUnauthenticated
		}
		return nil, err
	}

	author := owner.Name
	if strings.TrimSpace(author) == "" {
		author = owner.Email
	}

	tags, created, err := s.reconcileTags(ctx, input.Tags)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	post := &storage.Post{
		Title:         input.Title,
		Excerpt:       input.Excerpt,
		Content:       input.Content,
		PublishedAt:   input.PublishedAt,
		PublishStatus: input.PublishStatus,
		CreatedAt:     now,
		UpdatedAt:     now,
		Author:        author,
		UserID:        owner.ID,
		Tags:          tags,
	}
	if err := s.store.CreatePost(ctx, post); err != nil {
		return nil, err
	}
	if post.Comments == nil {
		post.Comments = []*storage.Comment{}
	}

	if s.metrics != nil {
		s.metrics.RecordPostCreated(ctx)
		for i := 0; i < created; i++ {
			s.metrics.RecordTagCreated(ctx)
		}
	}
	s.logger.Infow("Post created",
		"post_id", post.ID,
		"user_id", owner.ID,
		"tags", len(tags),
	)
	return post, nil
}

// ListPosts returns the owner's posts newest first. The page number is
// clamped to a minimum of 1 and the page size to [1, MaxPageSize].
func (s *Service) ListPosts(ctx context.Context, ownerID int64, pageNumber, pageSize int) (*PagedPosts, error) {
	if pageNumber < 1 {
		pageNumber = 1
	}
	if pageSize < 1 {
		pageSize = 1
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}

	offset := (pageNumber - 1) * pageSize
	items, total, err := s.store.PostsByOwner(ctx, ownerID, offset, pageSize)
	if err != nil {
		return nil, err
	}

	return &PagedPosts{
		Items:      items,
		PageNumber: pageNumber,
		PageSize:   pageSize,
		TotalCount: total,
		TotalPages: (total + pageSize - 1) / pageSize,
	}, nil
}

// GetPost fetches a single post scoped to its owner. A post belonging to a
// different user is indistinguishable from a missing one: both are
// storage.ErrNotFound.
func (s *Service) GetPost(ctx context.Context, id, ownerID int64) (*storage.Post, error) {
	return s.store.PostByID(ctx, id, ownerID)
}

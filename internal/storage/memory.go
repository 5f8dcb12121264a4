package storage

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore keeps all state in process memory. It is the default backend
// for development and the one the test suites run against.
type MemoryStore struct {
	mu sync.RWMutex

	users    map[int64]*User
	tags     map[int64]*Tag
	posts    map[int64]*Post
	comments map[int64][]*Comment // keyed by post ID
	postTags map[int64][]int64    // post ID -> tag IDs, insertion order

	nextUserID    int64
	nextTagID     int64
	nextPostID    int64
	nextCommentID int64
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:    make(map[int64]*User),
		tags:     make(map[int64]*Tag),
		posts:    make(map[int64]*Post),
		comments: make(map[int64][]*Comment),
		postTags: make(map[int64][]int64),
	}
}

func (s *MemoryStore) CreateUser(ctx context.Context, user *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Email == user.Email {
			return ErrEmailTaken
		}
	}

	s.nextUserID++
	user.ID = s.nextUserID

	stored := *user
	s.users[stored.ID] = &stored
	return nil
}

func (s *MemoryStore) UserByEmail(ctx context.Context, email string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) UserByID(ctx context.Context, id int64) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func (s *MemoryStore) TagByName(ctx context.Context, name string) (*Tag, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	// First match wins; duplicate rows are possible by design.
	var found *Tag
	for _, t := range s.tags {
		if t.Name == name && (found == nil || t.ID < found.ID) {
			found = t
		}
	}
	if found == nil {
		return nil, ErrNotFound
	}
	copied := *found
	return &copied, nil
}

func (s *MemoryStore) CreatePost(ctx context.Context, post *Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Single lock scope stands in for the transaction: the post, its new
	// tags and the links all become visible together.
	for _, tag := range post.Tags {
		if tag.ID != 0 {
			continue
		}
		s.nextTagID++
		tag.ID = s.nextTagID
		stored := *tag
		s.tags[stored.ID] = &stored
	}

	s.nextPostID++
	post.ID = s.nextPostID

	stored := *post
	stored.Tags = nil
	stored.Comments = nil
	s.posts[stored.ID] = &stored

	links := make([]int64, 0, len(post.Tags))
	for _, tag := range post.Tags {
		links = append(links, tag.ID)
	}
	s.postTags[post.ID] = links
	return nil
}

func (s *MemoryStore) PostsByOwner(ctx context.Context, ownerID int64, offset, limit int) ([]*Post, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var owned []*Post
	for _, p := range s.posts {
		if p.UserID == ownerID {
			owned = append(owned, p)
		}
	}

	// Newest first, ID as the stable tiebreak.
	sort.Slice(owned, func(i, j int) bool {
		if owned[i].CreatedAt.Equal(owned[j].CreatedAt) {
			return owned[i].ID > owned[j].ID
		}
		return owned[i].CreatedAt.After(owned[j].CreatedAt)
	})

	total := len(owned)
	if offset >= total {
		return []*Post{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}

	page := make([]*Post, 0, end-offset)
	for _, p := range owned[offset:end] {
		page = append(page, s.loadAggregate(p))
	}
	return page, total, nil
}

func (s *MemoryStore) PostByID(ctx context.Context, id, ownerID int64) (*Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.posts[id]
	if !ok || p.UserID != ownerID {
		return nil, ErrNotFound
	}
	return s.loadAggregate(p), nil
}

// AddComment attaches a comment to a post. Comments have no API write path;
// this exists for seeding and tests.
func (s *MemoryStore) AddComment(ctx context.Context, comment *Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.posts[comment.PostID]; !ok {
		return ErrNotFound
	}
	s.nextCommentID++
	comment.ID = s.nextCommentID

	stored := *comment
	s.comments[stored.PostID] = append(s.comments[stored.PostID], &stored)
	return nil
}

func (s *MemoryStore) Ping(ctx context.Context) error { return nil }

func (s *MemoryStore) Close() error { return nil }

// loadAggregate copies the post and fills its tag and comment collections.
// Callers must hold at least a read lock.
func (s *MemoryStore) loadAggregate(p *Post) *Post {
	copied := *p
	copied.Tags = make([]*Tag, 0, len(s.postTags[p.ID]))
	for _, tagID := range s.postTags[p.ID] {
		if t, ok := s.tags[tagID]; ok {
			tc := *t
			copied.Tags = append(copied.Tags, &tc)
		}
	}
	copied.Comments = make([]*Comment, 0, len(s.comments[p.ID]))
	for _, c := range s.comments[p.ID] {
		cc := *c
		copied.Comments = append(copied.Comments, &cc)
	}
	return &copied
}

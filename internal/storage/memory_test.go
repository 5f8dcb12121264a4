package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_CreateUser(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	user := &User{Name: "Ada", Email: "ada@example.com", Password: "digest", Active: 1}
	require.NoError(t, store.CreateUser(ctx, user))
	assert.NotZero(t, user.ID)

	dup := &User{Email: "ada@example.com", Password: "digest"}
	assert.ErrorIs(t, store.CreateUser(ctx, dup), ErrEmailTaken)

	found, err := store.UserByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)

	_, err = store.UserByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_CreatePost_AssignsTagIDs(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	owner := &User{Email: "ada@example.com", Password: "x"}
	require.NoError(t, store.CreateUser(ctx, owner))

	post := &Post{
		Title:     "hello",
		UserID:    owner.ID,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
		Tags:      []*Tag{{Name: "go"}, {Name: "news"}},
	}
	require.NoError(t, store.CreatePost(ctx, post))
	assert.NotZero(t, post.ID)
	for _, tag := range post.Tags {
		assert.NotZero(t, tag.ID)
	}

	// The tag is now visible to name lookups.
	tag, err := store.TagByName(ctx, "go")
	require.NoError(t, err)
	assert.Equal(t, post.Tags[0].ID, tag.ID)
}

func TestMemoryStore_PostByID_OwnerScoped(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	owner := &User{Email: "ada@example.com", Password: "x"}
	require.NoError(t, store.CreateUser(ctx, owner))

	post := &Post{Title: "hello", UserID: owner.ID, CreatedAt: time.Now(), UpdatedAt: time.Now()}
	require.NoError(t, store.CreatePost(ctx, post))

	got, err := store.PostByID(ctx, post.ID, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, "hello", got.Title)
	assert.NotNil(t, got.Tags)
	assert.NotNil(t, got.Comments)

	_, err = store.PostByID(ctx, post.ID, owner.ID+1)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = store.PostByID(ctx, 12345, owner.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_EagerComments(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	owner := &User{Email: "ada@example.com", Password: "x"}
	require.NoError(t, store.CreateUser(ctx, owner))
	post := &Post{Title: "hello", UserID: owner.ID, CreatedAt: time.Now(), UpdatedAt: time.Now()}
	require.NoError(t, store.CreatePost(ctx, post))

	require.NoError(t, store.AddComment(ctx, &Comment{PostID: post.ID, Author: "Bob", Content: "nice"}))
	require.NoError(t, store.AddComment(ctx, &Comment{PostID: post.ID, Author: "Cam", Content: "+1"}))

	got, err := store.PostByID(ctx, post.ID, owner.ID)
	require.NoError(t, err)
	require.Len(t, got.Comments, 2)
	assert.Equal(t, "Bob", got.Comments[0].Author)

	assert.ErrorIs(t, store.AddComment(ctx, &Comment{PostID: 999}), ErrNotFound)
}

func TestMemoryStore_PostsByOwner_OrderAndPaging(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	owner := &User{Email: "ada@example.com", Password: "x"}
	require.NoError(t, store.CreateUser(ctx, owner))

	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		post := &Post{
			Title:     "post",
			UserID:    owner.ID,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
			UpdatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, store.CreatePost(ctx, post))
	}

	page, total, err := store.PostsByOwner(ctx, owner.ID, 0, 3)
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	require.Len(t, page, 3)
	assert.True(t, page[0].CreatedAt.After(page[1].CreatedAt))

	rest, total, err := store.PostsByOwner(ctx, owner.ID, 3, 3)
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	assert.Len(t, rest, 2)

	beyond, total, err := store.PostsByOwner(ctx, owner.ID, 30, 3)
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	assert.Empty(t, beyond)
}

func TestMemoryStore_TiesBreakByID(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	owner := &User{Email: "ada@example.com", Password: "x"}
	require.NoError(t, store.CreateUser(ctx, owner))

	stamp := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		post := &Post{Title: "same instant", UserID: owner.ID, CreatedAt: stamp, UpdatedAt: stamp}
		require.NoError(t, store.CreatePost(ctx, post))
	}

	page, _, err := store.PostsByOwner(ctx, owner.ID, 0, 10)
	require.NoError(t, err)
	require.Len(t, page, 3)
	assert.Greater(t, page[0].ID, page[1].ID)
	assert.Greater(t, page[1].ID, page[2].ID)
}

func TestOpen_DefaultsToMemory(t *testing.T) {
	store, err := Open(Config{})
	require.NoError(t, err)
	_, ok := store.(*MemoryStore)
	assert.True(t, ok)

	_, err = Open(Config{Backend: "postgres"})
	assert.Error(t, err, "postgres without a DSN must be rejected")

	_, err = Open(Config{Backend: "oracle"})
	assert.Error(t, err)
}

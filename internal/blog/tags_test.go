package blog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bloghq/blog-backend/internal/storage"
)

func newTagService(t *testing.T) (*Service, *storage.MemoryStore) {
	t.Helper()
	store := storage.NewMemoryStore()
	return NewService(store, zap.NewNop().Sugar(), nil), store
}

func TestReconcileTags_DedupesWithinCall(t *testing.T) {
	svc, _ := newTagService(t)

	tags, created, err := svc.reconcileTags(context.Background(), []string{"go", "Go ", "rust", "go"})
	require.NoError(t, err)

	// Exactly two entities, never three or four; the first occurrence sets
	// the stored casing.
	require.Len(t, tags, 2)
	assert.Equal(t, 2, created)
	assert.Equal(t, "go", tags[0].Name)
	assert.Equal(t, "rust", tags[1].Name)
}

func TestReconcileTags_SkipsBlankNames(t *testing.T) {
	svc, _ := newTagService(t)

	tags, created, err := svc.reconcileTags(context.Background(), []string{"  ", "", "\t", "news "})
	require.NoError(t, err)

	require.Len(t, tags, 1)
	assert.Equal(t, 1, created)
	assert.Equal(t, "news", tags[0].Name)
}

func TestReconcileTags_ReusesExistingRows(t *testing.T) {
	svc, store := newTagService(t)
	ctx := context.Background()

	// Seed one tag through a post so it has a real ID.
	seedPost := &storage.Post{Title: "seed", UserID: 1, Tags: []*storage.Tag{{Name: "go"}}}
	require.NoError(t, store.CreatePost(ctx, seedPost))
	existingID := seedPost.Tags[0].ID
	require.NotZero(t, existingID)

	tags, created, err := svc.reconcileTags(ctx, []string{"go", "rust"})
	require.NoError(t, err)

	require.Len(t, tags, 2)
	assert.Equal(t, 1, created)
	assert.Equal(t, existingID, tags[0].ID, "existing tag must be reused, not re-created")
	assert.Zero(t, tags[1].ID, "new tag stays pending until the post is persisted")
}

func TestReconcileTags_RepeatedNewNameIsOneEntity(t *testing.T) {
	svc, _ := newTagService(t)

	tags, created, err := svc.reconcileTags(context.Background(), []string{"fresh", "fresh"})
	require.NoError(t, err)

	require.Len(t, tags, 1)
	assert.Equal(t, 1, created)
}

package blog

import (
	"context"
	"errors"
	"strings"

	"github.com/bloghq/blog-backend/internal/storage"
)

// reconcileTags resolves raw tag names to existing-or-pending Tag entities.
// Names are trimmed and empty ones skipped. Repeats of the same trimmed name
// within one call resolve to the same entity via the in-call map; the map key
// folds case, and the first occurrence decides the stored casing. Pending
// tags (ID zero) are inserted by the store together with the post.
//
// The lookup-then-insert sequence is not serialized against concurrent
// requests and storage has no unique constraint on tag name, so two requests
// creating the same tag simultaneously can both insert. Later lookups resolve
// to the lowest id.
//
// Returns the resolved tags and how many of them are new in this call.
func (s *Service) reconcileTags(ctx context.Context, rawNames []string) ([]*storage.Tag, int, error) {
	tags := make([]*storage.Tag, 0, len(rawNames))
	seen := make(map[string]*storage.Tag, len(rawNames))
	created := 0

	for _, raw := range rawNames {
		name := strings.TrimSpace(raw)
		if name == "" {
			continue
		}
		key := strings.ToLower(name)
		if _, ok := seen[key]; ok {
			continue
		}

		existing, err := s.store.TagByName(ctx, name)
		switch {
		case err == nil:
			seen[key] = existing
			tags = append(tags, existing)
		case errors.Is(err, storage.ErrNotFound):
			tag := &storage.Tag{Name: name}
			seen[key] = tag
			tags = append(tags, tag)
			created++
		default:
			return nil, 0, err
		}
	}
	return tags, created, nil
}

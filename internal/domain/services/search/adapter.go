package search

import (
	"context"

	searchModels "tabkeep/internal/domain/models/search"
)

// PlatformAdapter is the integration with one external search backend. An
// adapter maps its backend's native payload into NormalizedResults and
// returns an error for any backend failure (HTTP error, malformed payload,
// auth failure); it never panics past its boundary and keeps no shared state.
type PlatformAdapter interface {
	// Platform returns the identifier this adapter serves.
	Platform() searchModels.Platform

	// Search runs one query against the backend. Every returned result has
	// ID, Platform, Title and URL populated; other fields are best-effort.
	Search(ctx context.Context, query string, count int) ([]searchModels.NormalizedResult, error)
}

// MediaSearcher is the optional capability of fetching video and image
// results alongside web results. The answer pipeline uses it to enrich the
// sources frame when the query calls for media.
type MediaSearcher interface {
	VideoSearch(ctx context.Context, query string, count int) ([]searchModels.VideoRef, error)
	ImageSearch(ctx context.Context, query string, count int) ([]searchModels.ImageRef, error)
}

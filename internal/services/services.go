package services

import (
	"context"

	"github.com/spotfetch/spotfetch/internal/models"
)

// Catalog fetches playlist, album, and track metadata by opaque identifier.
//
// Implementations distinguish an unrecognized identifier
// ([shared.ErrInvalidID]) from a transient failure ([shared.ErrAPIRequest]);
// callers switch on the variant with errors.Is.
type Catalog interface {
	// Playlist fetches a playlist snapshot by ID.
	Playlist(ctx context.Context, id string) (*models.Snapshot, error)

	// Album fetches an album snapshot by ID.
	Album(ctx context.Context, id string) (*models.Snapshot, error)

	// Track fetches a single track by ID.
	Track(ctx context.Context, id string) (*models.Track, error)
}

// Resolver locates and retrieves media from an external video index.
type Resolver interface {
	// Search returns a locatable URL for the best match of the query, or
	// [shared.ErrNoMatch] when the index has nothing for it.
	Search(ctx context.Context, query string) (string, error)

	// Download fetches the media at url and writes an audio file to dest.
	Download(ctx context.Context, url, dest string) error
}

// TrackResolver is the cache-aware contract the dispatcher consumes:
// resolution by (name, artist) pair plus retrieval of a resolved URL.
type TrackResolver interface {
	// Resolve maps a track name and primary artist to a media URL,
	// consulting the resolution cache before the underlying index.
	Resolve(ctx context.Context, name, artist string) (string, error)

	// Download fetches the media at url and writes an audio file to dest.
	Download(ctx context.Context, url, dest string) error
}

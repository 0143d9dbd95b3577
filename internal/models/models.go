package models

// Track represents a single catalog track. Immutable once fetched.
type Track struct {
	ID      string   // opaque catalog identifier
	Name    string   // display name
	Artists []string // ordered; first is primary
}

// PrimaryArtist returns the first artist display name, or "" when none is known.
func (t Track) PrimaryArtist() string {
	if len(t.Artists) == 0 {
		return ""
	}
	return t.Artists[0]
}

// SnapshotKind distinguishes the catalog entity a snapshot was fetched from.
type SnapshotKind string

const (
	KindPlaylist SnapshotKind = "playlist"
	KindAlbum    SnapshotKind = "album"
)

// Snapshot is an immutable fetched playlist or album plus its track listing,
// as of fetch time. Re-fetching replaces rather than merges.
type Snapshot struct {
	ID     string
	Name   string
	Kind   SnapshotKind
	Tracks []Track
}

// Empty reports whether the snapshot carries no tracks.
func (s *Snapshot) Empty() bool {
	return s == nil || len(s.Tracks) == 0
}

// Inbound is a single chat message delivered to the dispatcher.
type Inbound struct {
	ChatID    int64
	FirstName string // sender display name, used by the welcome reply
	Text      string
}

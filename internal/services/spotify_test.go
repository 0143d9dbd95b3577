package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/spotfetch/spotfetch/internal/shared"
)

func newTestCatalog(t *testing.T, handler http.Handler) *SpotifyCatalog {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return &SpotifyCatalog{
		baseURL:    server.URL,
		httpClient: server.Client(),
	}
}

func TestSpotifyCatalog(t *testing.T) {
	ctx := context.Background()

	t.Run("Playlist", func(t *testing.T) {
		catalog := newTestCatalog(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/playlists/pl1" {
				t.Errorf("unexpected path %s", r.URL.Path)
			}
			w.Write([]byte(`{
				"id": "pl1",
				"name": "Road Trip",
				"tracks": {"items": [
					{"track": {"id": "t1", "name": "First Song", "artists": [{"name": "Artist A"}, {"name": "Artist X"}]}},
					{"track": null},
					{"track": {"id": "t3", "name": "Third Song", "artists": [{"name": "Artist C"}]}}
				]}
			}`))
		}))

		snapshot, err := catalog.Playlist(ctx, "pl1")
		if err != nil {
			t.Fatal(err)
		}

		if snapshot.ID != "pl1" || snapshot.Name != "Road Trip" {
			t.Errorf("unexpected snapshot header %+v", snapshot)
		}
		if len(snapshot.Tracks) != 2 {
			t.Fatalf("null playlist entries must be dropped, got %d tracks", len(snapshot.Tracks))
		}
		if snapshot.Tracks[0].Name != "First Song" || snapshot.Tracks[0].PrimaryArtist() != "Artist A" {
			t.Errorf("unexpected first track %+v", snapshot.Tracks[0])
		}
		if snapshot.Tracks[1].Name != "Third Song" {
			t.Errorf("unexpected second track %+v", snapshot.Tracks[1])
		}
	})

	t.Run("Album", func(t *testing.T) {
		catalog := newTestCatalog(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/albums/al1" {
				t.Errorf("unexpected path %s", r.URL.Path)
			}
			w.Write([]byte(`{
				"id": "al1",
				"name": "Greatest Hits",
				"tracks": {"items": [
					{"id": "t1", "name": "Opener", "artists": [{"name": "Band"}]}
				]}
			}`))
		}))

		snapshot, err := catalog.Album(ctx, "al1")
		if err != nil {
			t.Fatal(err)
		}
		if snapshot.Name != "Greatest Hits" || len(snapshot.Tracks) != 1 {
			t.Errorf("unexpected snapshot %+v", snapshot)
		}
	})

	t.Run("Track", func(t *testing.T) {
		catalog := newTestCatalog(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/tracks/t1" {
				t.Errorf("unexpected path %s", r.URL.Path)
			}
			w.Write([]byte(`{"id": "t1", "name": "Single", "artists": [{"name": "Solo"}]}`))
		}))

		track, err := catalog.Track(ctx, "t1")
		if err != nil {
			t.Fatal(err)
		}
		if track.Name != "Single" || track.PrimaryArtist() != "Solo" {
			t.Errorf("unexpected track %+v", track)
		}
	})

	t.Run("Unknown ID", func(t *testing.T) {
		catalog := newTestCatalog(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, `{"error": {"status": 404}}`, http.StatusNotFound)
		}))

		if _, err := catalog.Playlist(ctx, "nope"); !errors.Is(err, shared.ErrInvalidID) {
			t.Errorf("expected ErrInvalidID for 404, got %v", err)
		}
	})

	t.Run("Malformed ID", func(t *testing.T) {
		catalog := newTestCatalog(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, `{"error": {"status": 400}}`, http.StatusBadRequest)
		}))

		if _, err := catalog.Track(ctx, "!!"); !errors.Is(err, shared.ErrInvalidID) {
			t.Errorf("expected ErrInvalidID for 400, got %v", err)
		}
	})

	t.Run("Server Error", func(t *testing.T) {
		catalog := newTestCatalog(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		}))

		if _, err := catalog.Album(ctx, "al1"); !errors.Is(err, shared.ErrAPIRequest) {
			t.Errorf("expected ErrAPIRequest for 500, got %v", err)
		}
	})
}

func TestNewSpotifyCatalog(t *testing.T) {
	ctx := context.Background()

	if _, err := NewSpotifyCatalog(ctx, "", "secret"); !errors.Is(err, shared.ErrMissingCredentials) {
		t.Errorf("expected ErrMissingCredentials without client id, got %v", err)
	}
	if _, err := NewSpotifyCatalog(ctx, "id", ""); !errors.Is(err, shared.ErrMissingCredentials) {
		t.Errorf("expected ErrMissingCredentials without client secret, got %v", err)
	}
	if _, err := NewSpotifyCatalog(ctx, "id", "secret"); err != nil {
		t.Errorf("expected catalog construction to succeed, got %v", err)
	}
}

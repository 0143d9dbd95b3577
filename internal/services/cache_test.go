package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/spotfetch/spotfetch/internal/shared"
)

// countingResolver counts Search invocations so cache short-circuits are
// observable.
type countingResolver struct {
	mu        sync.Mutex
	urls      map[string]string
	searches  int
	searchErr error
	downloads []string
}

func (c *countingResolver) Search(_ context.Context, query string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.searches++
	if c.searchErr != nil {
		return "", c.searchErr
	}
	if url, ok := c.urls[query]; ok {
		return url, nil
	}
	return "", fmt.Errorf("%w: %q", shared.ErrNoMatch, query)
}

func (c *countingResolver) Download(_ context.Context, url, _ string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.downloads = append(c.downloads, url)
	return nil
}

func TestCachingResolver(t *testing.T) {
	ctx := context.Background()

	t.Run("Second Resolve Skips The Search", func(t *testing.T) {
		inner := &countingResolver{urls: map[string]string{"Song Artist": "https://yt/v1"}}
		resolver := NewCachingResolver(inner, NewMemoryStore(8))

		first, err := resolver.Resolve(ctx, "Song", "Artist")
		if err != nil {
			t.Fatal(err)
		}
		second, err := resolver.Resolve(ctx, "Song", "Artist")
		if err != nil {
			t.Fatal(err)
		}

		if first != second || first != "https://yt/v1" {
			t.Errorf("resolutions diverged: %q vs %q", first, second)
		}
		if inner.searches != 1 {
			t.Errorf("expected exactly one search, got %d", inner.searches)
		}
	})

	t.Run("Key Is Case And Whitespace Insensitive", func(t *testing.T) {
		inner := &countingResolver{urls: map[string]string{
			"Song Artist":  "https://yt/v1",
			"SONG  ARTIST": "https://yt/v2",
		}}
		resolver := NewCachingResolver(inner, NewMemoryStore(8))

		first, err := resolver.Resolve(ctx, "Song", "Artist")
		if err != nil {
			t.Fatal(err)
		}
		second, err := resolver.Resolve(ctx, "SONG ", " ARTIST")
		if err != nil {
			t.Fatal(err)
		}

		if inner.searches != 1 {
			t.Errorf("expected the variant spelling to hit the cache, got %d searches", inner.searches)
		}
		if first != second {
			t.Errorf("cache returned a different URL for an equivalent key: %q vs %q", first, second)
		}
	})

	t.Run("No Match Is Never Cached", func(t *testing.T) {
		inner := &countingResolver{urls: map[string]string{}}
		resolver := NewCachingResolver(inner, NewMemoryStore(8))

		if _, err := resolver.Resolve(ctx, "Ghost", "Nobody"); !errors.Is(err, shared.ErrNoMatch) {
			t.Fatalf("expected ErrNoMatch, got %v", err)
		}

		// the track shows up later; a retry must reach the search again
		inner.urls["Ghost Nobody"] = "https://yt/v9"
		url, err := resolver.Resolve(ctx, "Ghost", "Nobody")
		if err != nil {
			t.Fatal(err)
		}
		if url != "https://yt/v9" {
			t.Errorf("unexpected URL %q", url)
		}
		if inner.searches != 2 {
			t.Errorf("expected both attempts to search, got %d", inner.searches)
		}
	})

	t.Run("Transient Failure Is Never Cached", func(t *testing.T) {
		inner := &countingResolver{
			urls:      map[string]string{"Song Artist": "https://yt/v1"},
			searchErr: shared.ErrAPIRequest,
		}
		resolver := NewCachingResolver(inner, NewMemoryStore(8))

		if _, err := resolver.Resolve(ctx, "Song", "Artist"); !errors.Is(err, shared.ErrAPIRequest) {
			t.Fatalf("expected the search error to pass through, got %v", err)
		}

		inner.searchErr = nil
		url, err := resolver.Resolve(ctx, "Song", "Artist")
		if err != nil {
			t.Fatal(err)
		}
		if url != "https://yt/v1" {
			t.Errorf("unexpected URL %q", url)
		}
	})

	t.Run("Download Delegates", func(t *testing.T) {
		inner := &countingResolver{}
		resolver := NewCachingResolver(inner, NewMemoryStore(8))

		if err := resolver.Download(ctx, "https://yt/v1", "/tmp/x.mp3"); err != nil {
			t.Fatal(err)
		}
		if len(inner.downloads) != 1 || inner.downloads[0] != "https://yt/v1" {
			t.Errorf("download not delegated: %v", inner.downloads)
		}
	})
}

func TestMemoryStore(t *testing.T) {
	t.Run("First Resolution Wins", func(t *testing.T) {
		store := NewMemoryStore(8)
		if err := store.Put("song artist", "https://yt/first"); err != nil {
			t.Fatal(err)
		}
		if err := store.Put("song artist", "https://yt/second"); err != nil {
			t.Fatal(err)
		}

		url, ok, err := store.Get("song artist")
		if err != nil || !ok {
			t.Fatalf("expected a hit, got ok=%v err=%v", ok, err)
		}
		if url != "https://yt/first" {
			t.Errorf("expected the first URL to stick, got %q", url)
		}
	})

	t.Run("Evicts Oldest At Capacity", func(t *testing.T) {
		store := NewMemoryStore(2)
		store.Put("a", "1")
		store.Put("b", "2")
		store.Put("c", "3")

		if store.Len() != 2 {
			t.Fatalf("expected the store to stay bounded, got %d entries", store.Len())
		}
		if _, ok, _ := store.Get("a"); ok {
			t.Error("oldest entry should have been evicted")
		}
		for _, key := range []string{"b", "c"} {
			if _, ok, _ := store.Get(key); !ok {
				t.Errorf("entry %q should have survived", key)
			}
		}
	})

	t.Run("Minimum Capacity Is One", func(t *testing.T) {
		store := NewMemoryStore(0)
		store.Put("a", "1")
		store.Put("b", "2")

		if store.Len() != 1 {
			t.Errorf("expected a single slot, got %d", store.Len())
		}
		if _, ok, _ := store.Get("b"); !ok {
			t.Error("latest entry should be present")
		}
	})
}
